package model

import (
	"time"

	"github.com/google/uuid"
)

type Feedback struct {
	Id               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantId         uuid.UUID `gorm:"type:uuid;not null;index"`
	UserId           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_feedback_message_user"`
	SessionId        uuid.UUID `gorm:"type:uuid;not null;index"`
	MessageId        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_feedback_message_user"`
	Rating           string    `gorm:"type:varchar(10);not null"`
	CommentEncrypted []byte    `gorm:"type:bytea"`
	EmailSent        bool      `gorm:"not null;default:false;index"`
	EmailSentAt      *time.Time
	CreatedAt        time.Time `gorm:"autoCreateTime"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime"`
}

func (Feedback) TableName() string {
	return "feedback"
}
