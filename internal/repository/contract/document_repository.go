package contract

import (
	"context"

	"docvault-be/internal/entity"
	"docvault-be/internal/repository/specification"

	"github.com/google/uuid"
)

type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	Update(ctx context.Context, doc *entity.Document) error
	Delete(ctx context.Context, id uuid.UUID) error
	// PurgeDeletedByTenantAndHash hard-deletes soft-deleted rows so a
	// re-upload of the same content does not trip the dedup unique index.
	PurgeDeletedByTenantAndHash(ctx context.Context, tenantId uuid.UUID, hash string) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
