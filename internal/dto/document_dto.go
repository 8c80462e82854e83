package dto

import (
	"time"

	"github.com/google/uuid"
)

// UploadDocumentRequest is built by the controller from the multipart form;
// services never touch fiber types.
type UploadDocumentRequest struct {
	Filename    string `validate:"required,max=255"`
	ContentType string `validate:"required"`
	Data        []byte `validate:"required"`
}

type PageFailure struct {
	Page   int    `json:"page"`
	Reason string `json:"reason"`
}

type UploadDocumentResponse struct {
	Id           uuid.UUID     `json:"id"`
	Filename     string        `json:"filename"`
	Duplicate    bool          `json:"duplicate"`
	TotalChunks  int           `json:"total_chunks"`
	PageFailures []PageFailure `json:"page_failures,omitempty"`
	UploadedAt   time.Time     `json:"uploaded_at"`
}

type DocumentResponse struct {
	Id            uuid.UUID `json:"id"`
	Filename      string    `json:"filename"`
	ContentType   string    `json:"content_type"`
	FileSizeBytes int64     `json:"file_size_bytes"`
	TotalChunks   *int      `json:"total_chunks,omitempty"`
	Processed     bool      `json:"processed"`
	UploadedAt    time.Time `json:"uploaded_at"`
}
