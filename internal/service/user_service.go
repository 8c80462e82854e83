package service

import (
	"context"
	"time"

	"docvault-be/internal/entity"
	"docvault-be/internal/pkg/apperrors"
	"docvault-be/internal/pkg/logger"
	"docvault-be/internal/repository/specification"
	"docvault-be/internal/repository/unitofwork"
	"docvault-be/pkg/crypto"

	"github.com/google/uuid"
)

type IUserService interface {
	// Resolve maps an identity-provider subject to a local user, creating
	// the user and its tenant on first sight.
	Resolve(ctx context.Context, subjectId, email string) (*entity.User, error)
}

type userService struct {
	uowFactory unitofwork.RepositoryFactory
	vault      crypto.Vault
	logger     logger.ILogger
}

func NewUserService(
	uowFactory unitofwork.RepositoryFactory,
	vault crypto.Vault,
	log logger.ILogger,
) IUserService {
	return &userService{
		uowFactory: uowFactory,
		vault:      vault,
		logger:     log,
	}
}

func (s *userService) Resolve(ctx context.Context, subjectId, email string) (*entity.User, error) {
	if subjectId == "" {
		return nil, apperrors.New(apperrors.KindValidation, "subject id is required")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.BySubjectID{SubjectID: subjectId})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to look up user", err)
	}

	if user != nil {
		// Touch last_active lazily; losing an update here is harmless.
		if time.Since(user.LastActiveAt) > time.Minute {
			user.LastActiveAt = time.Now()
			if err := uow.UserRepository().Update(ctx, user); err != nil {
				s.logger.Warn("user", "failed to touch last_active", map[string]interface{}{
					"user_id": user.Id.String(),
					"error":   err.Error(),
				})
			}
		}
		return user, nil
	}

	// First sight: tenant and user are created together, 1:1.
	tenantId := uuid.New()
	now := time.Now()

	var emailEnc []byte
	if email != "" {
		emailEnc, err = s.vault.Encrypt(s.vault.KeyRefFor(tenantId), []byte(email))
		if err != nil {
			return nil, err
		}
	}

	user = &entity.User{
		Id:             uuid.New(),
		SubjectId:      subjectId,
		TenantId:       tenantId,
		EmailEncrypted: emailEnc,
		CreatedAt:      now,
		LastActiveAt:   now,
	}

	if err := uow.UserRepository().Create(ctx, user); err != nil {
		// Concurrent first request won the unique subject index. Use theirs.
		winner, findErr := uow.UserRepository().FindOne(ctx, specification.BySubjectID{SubjectID: subjectId})
		if findErr == nil && winner != nil {
			return winner, nil
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to create user", err)
	}

	s.logger.Info("user", "provisioned new tenant", map[string]interface{}{
		"tenant_id": tenantId.String(),
	})
	return user, nil
}
