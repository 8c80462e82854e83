package contract

import (
	"context"

	"docvault-be/internal/entity"
	"docvault-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredChunk is a retrieval hit. KeyRef carries the owning document's
// encryption key reference so the caller can decrypt the chunk text.
type ScoredChunk struct {
	Chunk    *entity.DocumentChunk
	Distance float64 // cosine distance, 0.0 = identical
	KeyRef   string
}

type DocumentChunkRepository interface {
	CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error
	HardDeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchSimilar runs tenant-filtered cosine search over processed,
	// non-deleted documents. Ties on distance break by newest chunk first,
	// then by chunk index.
	SearchSimilar(ctx context.Context, tenantId uuid.UUID, queryVector []float32, limit int) ([]*ScoredChunk, error)
}
