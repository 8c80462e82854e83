package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Document struct {
	Id                  uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantId            uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_documents_tenant_hash"`
	UserId              uuid.UUID `gorm:"type:uuid;not null;index"`
	DocumentHash        string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_documents_tenant_hash"` // sha256 of raw bytes
	EncryptionKeyRef    string    `gorm:"type:varchar(255);not null"`
	FilenameEncrypted   []byte    `gorm:"type:bytea;not null"`
	ContentType         string    `gorm:"type:varchar(100);not null"`
	StorageBucket       string    `gorm:"type:varchar(255);not null"`
	StorageKeyEncrypted []byte    `gorm:"type:bytea;not null"`
	FileSizeBytes       int64     `gorm:"not null"`
	EmbeddingModel      string    `gorm:"type:varchar(100)"`
	TotalChunks         *int
	UploadedAt          time.Time `gorm:"autoCreateTime"`
	ProcessedAt         *time.Time
	DeletedAt           gorm.DeletedAt `gorm:"index"`
}

func (Document) TableName() string {
	return "documents"
}
