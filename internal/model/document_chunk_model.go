package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type DocumentChunk struct {
	Id            uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId    uuid.UUID         `gorm:"type:uuid;not null;index;uniqueIndex:idx_chunks_document_index"`
	TenantId      uuid.UUID         `gorm:"type:uuid;not null;index"`
	ChunkIndex    int               `gorm:"not null;uniqueIndex:idx_chunks_document_index"`
	TextEncrypted []byte            `gorm:"type:bytea;not null"`
	Embedding     pgvector.Vector   `gorm:"type:vector(768)"`
	Metadata      datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt     time.Time         `gorm:"autoCreateTime"`
	DeletedAt     gorm.DeletedAt    `gorm:"index"`
}

func (DocumentChunk) TableName() string {
	return "document_chunks"
}
