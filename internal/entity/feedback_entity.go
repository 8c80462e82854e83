package entity

import (
	"time"

	"github.com/google/uuid"
)

type Feedback struct {
	Id               uuid.UUID
	TenantId         uuid.UUID
	UserId           uuid.UUID
	SessionId        uuid.UUID
	MessageId        uuid.UUID
	Rating           string
	CommentEncrypted []byte
	EmailSent        bool
	EmailSentAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
