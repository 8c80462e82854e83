package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ChatMessage struct {
	Id               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId        uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_messages_session_sequence"`
	TenantId         uuid.UUID `gorm:"type:uuid;not null;index"`
	Role             string    `gorm:"type:varchar(20);not null"`
	TextEncrypted    []byte    `gorm:"type:bytea;not null"`
	ResponseSequence int       `gorm:"not null;uniqueIndex:idx_messages_session_sequence"`
	RetrievedChunks  datatypes.JSON `gorm:"type:jsonb"` // provenance: [{chunk_id, distance}]
	ModelUsed        *string        `gorm:"type:varchar(100)"`
	CreatedAt        time.Time      `gorm:"autoCreateTime"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
