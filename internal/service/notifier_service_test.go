package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"docvault-be/internal/dto"
	"docvault-be/internal/entity"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	sent []string
	err  error
}

func (f *fakeMailer) SendFeedbackNotification(toEmail, rating, comment, sessionId string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, comment)
	return nil
}

func newTestConsumer(t *testing.T, uow *fakeUow, mail *fakeMailer) *consumerService {
	t.Helper()
	return &consumerService{
		pubSub:       gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{}),
		uowFactory:   &fakeUowFactory{uow: uow},
		vault:        testVault(t),
		emailService: mail,
		logger:       nopLogger{},
		topicName:    "feedback.email",
		notifyEmail:  "ops@example.com",
	}
}

func feedbackPayload(t *testing.T, id uuid.UUID) *message.Message {
	t.Helper()
	data, err := json.Marshal(dto.FeedbackEmailMessage{FeedbackId: id})
	require.NoError(t, err)
	return message.NewMessage(watermill.NewUUID(), data)
}

func TestProcessMessageSendsAndLatches(t *testing.T) {
	uow := newFakeUow()
	mail := &fakeMailer{}
	cs := newTestConsumer(t, uow, mail)

	tenantId := uuid.New()
	sealed, err := cs.vault.Encrypt(cs.vault.KeyRefFor(tenantId), []byte("too vague"))
	require.NoError(t, err)

	fb := &entity.Feedback{
		Id:               uuid.New(),
		TenantId:         tenantId,
		UserId:           uuid.New(),
		SessionId:        uuid.New(),
		MessageId:        uuid.New(),
		Rating:           "no",
		CommentEncrypted: sealed,
		CreatedAt:        time.Now(),
	}
	uow.feedback.rows = append(uow.feedback.rows, fb)

	msg := feedbackPayload(t, fb.Id)
	cs.processMessage(context.Background(), msg)

	require.Len(t, mail.sent, 1)
	assert.Equal(t, "too vague", mail.sent[0])
	assert.True(t, uow.feedback.rows[0].EmailSent)
	assertAcked(t, msg)
}

func TestProcessMessageSkipsAlreadySent(t *testing.T) {
	uow := newFakeUow()
	mail := &fakeMailer{}
	cs := newTestConsumer(t, uow, mail)

	fb := &entity.Feedback{
		Id:        uuid.New(),
		TenantId:  uuid.New(),
		UserId:    uuid.New(),
		Rating:    "yes",
		EmailSent: true,
	}
	uow.feedback.rows = append(uow.feedback.rows, fb)

	msg := feedbackPayload(t, fb.Id)
	cs.processMessage(context.Background(), msg)

	// The latch makes redelivery a no-op.
	assert.Empty(t, mail.sent)
	assertAcked(t, msg)
}

func TestProcessMessageNacksOnSendFailure(t *testing.T) {
	uow := newFakeUow()
	mail := &fakeMailer{err: errors.New("smtp down")}
	cs := newTestConsumer(t, uow, mail)

	tenantId := uuid.New()
	fb := &entity.Feedback{Id: uuid.New(), TenantId: tenantId, UserId: uuid.New(), Rating: "no"}
	uow.feedback.rows = append(uow.feedback.rows, fb)

	msg := feedbackPayload(t, fb.Id)
	cs.processMessage(context.Background(), msg)

	assert.False(t, uow.feedback.rows[0].EmailSent)
	assertNacked(t, msg)
}

func TestProcessMessageDropsMalformedAndMissing(t *testing.T) {
	uow := newFakeUow()
	cs := newTestConsumer(t, uow, &fakeMailer{})

	bad := message.NewMessage(watermill.NewUUID(), []byte("not json"))
	cs.processMessage(context.Background(), bad)
	assertAcked(t, bad)

	gone := feedbackPayload(t, uuid.New())
	cs.processMessage(context.Background(), gone)
	assertAcked(t, gone)
}

func assertAcked(t *testing.T, msg *message.Message) {
	t.Helper()
	select {
	case <-msg.Acked():
	default:
		t.Fatal("expected message to be acked")
	}
}

func assertNacked(t *testing.T, msg *message.Message) {
	t.Helper()
	select {
	case <-msg.Nacked():
	default:
		t.Fatal("expected message to be nacked")
	}
}
