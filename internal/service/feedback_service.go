package service

import (
	"context"
	"strings"
	"time"

	"docvault-be/internal/constant"
	"docvault-be/internal/dto"
	"docvault-be/internal/entity"
	"docvault-be/internal/pkg/apperrors"
	"docvault-be/internal/pkg/logger"
	"docvault-be/internal/repository/specification"
	"docvault-be/internal/repository/unitofwork"
	"docvault-be/pkg/crypto"
	"docvault-be/pkg/events"
	pkgnats "docvault-be/pkg/nats"

	"github.com/google/uuid"
)

type IFeedbackService interface {
	// Submit records a rating for an assistant message. Re-submitting for
	// the same message replaces the rating instead of creating a second row.
	Submit(ctx context.Context, tenant entity.TenantContext, req *dto.SubmitFeedbackRequest) (*dto.FeedbackResponse, error)
	GetForMessage(ctx context.Context, tenant entity.TenantContext, messageId uuid.UUID) (*dto.FeedbackResponse, error)
}

type feedbackService struct {
	uowFactory       unitofwork.RepositoryFactory
	vault            crypto.Vault
	publisherService IPublisherService
	auditService     IAuditService
	eventPublisher   *pkgnats.Publisher
	logger           logger.ILogger
}

func NewFeedbackService(
	uowFactory unitofwork.RepositoryFactory,
	vault crypto.Vault,
	publisherService IPublisherService,
	auditService IAuditService,
	eventPublisher *pkgnats.Publisher,
	log logger.ILogger,
) IFeedbackService {
	return &feedbackService{
		uowFactory:       uowFactory,
		vault:            vault,
		publisherService: publisherService,
		auditService:     auditService,
		eventPublisher:   eventPublisher,
		logger:           log,
	}
}

func (s *feedbackService) Submit(ctx context.Context, tenant entity.TenantContext, req *dto.SubmitFeedbackRequest) (*dto.FeedbackResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	msg, err := uow.ChatMessageRepository().FindOne(ctx,
		specification.ByID{ID: req.MessageId},
		specification.TenantOwnedBy{TenantID: tenant.TenantId},
	)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to load message", err)
	}
	if msg == nil {
		return nil, apperrors.New(apperrors.KindNotFound, "message not found")
	}
	if msg.Role != constant.RoleAssistant {
		return nil, apperrors.New(apperrors.KindValidation, "feedback applies to assistant messages only")
	}

	keyRef := s.vault.KeyRefFor(tenant.TenantId)
	var commentEnc []byte
	if comment := strings.TrimSpace(req.Comment); comment != "" {
		commentEnc, err = s.vault.Encrypt(keyRef, []byte(comment))
		if err != nil {
			return nil, err
		}
	}

	now := time.Now()
	feedback := &entity.Feedback{
		Id:               uuid.New(),
		TenantId:         tenant.TenantId,
		UserId:           tenant.UserId,
		SessionId:        msg.SessionId,
		MessageId:        msg.Id,
		Rating:           req.Rating,
		CommentEncrypted: commentEnc,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	// Upsert keys on (message_id, user_id) and re-reads the surviving row,
	// so feedback.Id and EmailSent reflect what is actually stored.
	if err := uow.FeedbackRepository().Upsert(ctx, feedback); err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to store feedback", err)
	}

	s.auditService.Record(ctx, tenant, constant.ActionFeedbackSubmitted, constant.ResourceFeedback, &feedback.Id)

	if s.eventPublisher != nil {
		event := events.NewFeedbackSubmitted(tenant.TenantId.String(), feedback.Id.String(), feedback.Rating)
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("feedback", "failed to publish feedback event", map[string]interface{}{
				"feedback_id": feedback.Id.String(),
				"error":       err.Error(),
			})
		}
	}

	// Dispatch is at-least-once. The consumer checks the email_sent latch,
	// so queueing an already-notified feedback is harmless.
	if !feedback.EmailSent {
		if err := s.publisherService.PublishFeedbackEmail(ctx, feedback.Id); err != nil {
			s.logger.Warn("feedback", "failed to queue notification", map[string]interface{}{
				"feedback_id": feedback.Id.String(),
				"error":       err.Error(),
			})
		}
	}

	return s.toResponse(tenant, feedback)
}

func (s *feedbackService) GetForMessage(ctx context.Context, tenant entity.TenantContext, messageId uuid.UUID) (*dto.FeedbackResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	feedback, err := uow.FeedbackRepository().FindOne(ctx,
		specification.ByMessageID{MessageID: messageId},
		specification.TenantOwnedBy{TenantID: tenant.TenantId},
		specification.OwnedByUser{UserID: tenant.UserId},
	)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to load feedback", err)
	}
	if feedback == nil {
		return nil, apperrors.New(apperrors.KindNotFound, "feedback not found")
	}

	return s.toResponse(tenant, feedback)
}

func (s *feedbackService) toResponse(tenant entity.TenantContext, feedback *entity.Feedback) (*dto.FeedbackResponse, error) {
	comment := ""
	if len(feedback.CommentEncrypted) > 0 {
		plaintext, err := s.vault.Decrypt(s.vault.KeyRefFor(tenant.TenantId), feedback.CommentEncrypted)
		if err != nil {
			return nil, err
		}
		comment = string(plaintext)
	}

	return &dto.FeedbackResponse{
		Id:        feedback.Id,
		MessageId: feedback.MessageId,
		Rating:    feedback.Rating,
		Comment:   comment,
		EmailSent: feedback.EmailSent,
		CreatedAt: feedback.CreatedAt,
	}, nil
}
