package entity

import (
	"time"

	"github.com/google/uuid"
)

type Document struct {
	Id                  uuid.UUID
	TenantId            uuid.UUID
	UserId              uuid.UUID
	DocumentHash        string
	EncryptionKeyRef    string
	FilenameEncrypted   []byte
	ContentType         string
	StorageBucket       string
	StorageKeyEncrypted []byte
	FileSizeBytes       int64
	EmbeddingModel      string
	TotalChunks         *int
	UploadedAt          time.Time
	ProcessedAt         *time.Time
}

// Processed reports whether ingestion fully completed for this document.
// Unprocessed documents are invisible to retrieval.
func (d *Document) Processed() bool {
	return d.ProcessedAt != nil
}
