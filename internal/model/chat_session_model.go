package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatSession struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantId       uuid.UUID `gorm:"type:uuid;not null;index"`
	UserId         uuid.UUID `gorm:"type:uuid;not null;index"`
	TitleEncrypted []byte    `gorm:"type:bytea"`
	IsActive       bool      `gorm:"not null;default:true"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	LastMessageAt  time.Time
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}
