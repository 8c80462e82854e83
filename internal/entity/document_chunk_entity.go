package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChunkMetadata is the non-sensitive provenance stored next to each chunk.
// Extra carries provider-specific values without schema churn.
type ChunkMetadata struct {
	Page   int            `json:"page"`
	Offset int            `json:"offset"`
	OCR    bool           `json:"ocr,omitempty"`
	Extra  map[string]any `json:"extra,omitempty"`
}

type DocumentChunk struct {
	Id            uuid.UUID
	DocumentId    uuid.UUID
	TenantId      uuid.UUID
	ChunkIndex    int
	TextEncrypted []byte
	Embedding     []float32
	Metadata      ChunkMetadata
	CreatedAt     time.Time
}
