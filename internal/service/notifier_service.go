package service

import (
	"context"
	"encoding/json"
	"time"

	"docvault-be/internal/dto"
	"docvault-be/internal/pkg/logger"
	"docvault-be/internal/pkg/mailer"
	"docvault-be/internal/repository/specification"
	"docvault-be/internal/repository/unitofwork"
	"docvault-be/pkg/crypto"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub       *gochannel.GoChannel
	uowFactory   unitofwork.RepositoryFactory
	vault        crypto.Vault
	emailService mailer.IEmailService
	logger       logger.ILogger
	topicName    string
	notifyEmail  string
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	uowFactory unitofwork.RepositoryFactory,
	vault crypto.Vault,
	emailService mailer.IEmailService,
	log logger.ILogger,
	topicName string,
	notifyEmail string,
) IConsumerService {
	return &consumerService{
		pubSub:       pubSub,
		uowFactory:   uowFactory,
		vault:        vault,
		emailService: emailService,
		logger:       log,
		topicName:    topicName,
		notifyEmail:  notifyEmail,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	cs.logger.Info("notifier", "feedback notification consumer started", map[string]interface{}{
		"topic": cs.topicName,
	})
	return nil
}

// processMessage delivers one feedback notification. Delivery is
// at-least-once: transient failures Nack for redelivery, poison messages
// Ack so they stop cycling, and the email_sent latch keeps a redelivered
// message from sending twice.
func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.FeedbackEmailMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("notifier", "dropping malformed message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		msg.Ack()
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	feedback, err := uow.FeedbackRepository().FindOne(ctx, specification.ByID{ID: payload.FeedbackId})
	if err != nil {
		cs.logger.Error("notifier", "failed to load feedback, will retry", map[string]interface{}{
			"feedback_id": payload.FeedbackId.String(),
			"error":       err.Error(),
		})
		msg.Nack()
		return
	}
	if feedback == nil {
		// Row gone, nothing to notify about.
		msg.Ack()
		return
	}

	if feedback.EmailSent {
		msg.Ack()
		return
	}

	comment := ""
	if len(feedback.CommentEncrypted) > 0 {
		plaintext, err := cs.vault.Decrypt(cs.vault.KeyRefFor(feedback.TenantId), feedback.CommentEncrypted)
		if err != nil {
			// Undecryptable rows never become decryptable; retrying is futile.
			cs.logger.Error("notifier", "dropping undecryptable feedback", map[string]interface{}{
				"feedback_id": feedback.Id.String(),
				"error":       err.Error(),
			})
			msg.Ack()
			return
		}
		comment = string(plaintext)
	}

	if err := cs.emailService.SendFeedbackNotification(cs.notifyEmail, feedback.Rating, comment, feedback.SessionId.String()); err != nil {
		cs.logger.Error("notifier", "failed to send notification, will retry", map[string]interface{}{
			"feedback_id": feedback.Id.String(),
			"error":       err.Error(),
		})
		msg.Nack()
		return
	}

	if err := uow.FeedbackRepository().MarkEmailSent(ctx, feedback.Id, time.Now()); err != nil {
		// The mail went out but the latch did not stick. Nack so the latch
		// is retried; a duplicate mail is the accepted cost.
		cs.logger.Error("notifier", "failed to latch email_sent", map[string]interface{}{
			"feedback_id": feedback.Id.String(),
			"error":       err.Error(),
		})
		msg.Nack()
		return
	}

	cs.logger.Info("notifier", "feedback notification sent", map[string]interface{}{
		"feedback_id": feedback.Id.String(),
	})
	msg.Ack()
}
