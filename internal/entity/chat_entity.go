package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatSession struct {
	Id             uuid.UUID
	TenantId       uuid.UUID
	UserId         uuid.UUID
	TitleEncrypted []byte
	IsActive       bool
	CreatedAt      time.Time
	LastMessageAt  time.Time
}

// ChunkRef is the provenance record persisted on assistant messages.
type ChunkRef struct {
	ChunkId  uuid.UUID `json:"chunk_id"`
	Distance float64   `json:"distance"`
}

type ChatMessage struct {
	Id               uuid.UUID
	SessionId        uuid.UUID
	TenantId         uuid.UUID
	Role             string
	TextEncrypted    []byte
	ResponseSequence int
	RetrievedChunks  []ChunkRef
	ModelUsed        *string
	CreatedAt        time.Time
}
