package service

import (
	"context"
	"time"

	"docvault-be/internal/entity"
	"docvault-be/internal/pkg/logger"
	"docvault-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IAuditService interface {
	// Record appends an audit event. Failures are logged, never propagated:
	// auditing must not take the primary operation down with it.
	Record(ctx context.Context, tenant entity.TenantContext, action, resourceType string, resourceId *uuid.UUID)
}

type auditService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewAuditService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) IAuditService {
	return &auditService{
		uowFactory: uowFactory,
		logger:     log,
	}
}

func (s *auditService) Record(ctx context.Context, tenant entity.TenantContext, action, resourceType string, resourceId *uuid.UUID) {
	tenantId := tenant.TenantId
	userId := tenant.UserId

	event := &entity.AuditEvent{
		Id:           uuid.New(),
		TenantId:     &tenantId,
		UserId:       &userId,
		Action:       action,
		ResourceType: &resourceType,
		ResourceId:   resourceId,
		IpAddress:    tenant.ClientIP,
		UserAgent:    tenant.UserAgent,
		CreatedAt:    time.Now(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.AuditEventRepository().Create(ctx, event); err != nil {
		s.logger.Error("audit", "failed to append audit event", map[string]interface{}{
			"action": action,
			"error":  err.Error(),
		})
	}
}
