package dto

import (
	"time"

	"github.com/google/uuid"
)

type SubmitFeedbackRequest struct {
	MessageId uuid.UUID `json:"message_id" validate:"required"`
	Rating    string    `json:"rating" validate:"required,oneof=yes no"`
	Comment   string    `json:"comment" validate:"max=4000"`
}

type FeedbackResponse struct {
	Id        uuid.UUID `json:"id"`
	MessageId uuid.UUID `json:"message_id"`
	Rating    string    `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	EmailSent bool      `json:"email_sent"`
	CreatedAt time.Time `json:"created_at"`
}

// FeedbackEmailMessage is the queue payload for notification dispatch.
// Ids only: the consumer re-reads the row and decrypts there.
type FeedbackEmailMessage struct {
	FeedbackId uuid.UUID `json:"feedback_id"`
}
