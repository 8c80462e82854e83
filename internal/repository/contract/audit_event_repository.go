package contract

import (
	"context"

	"docvault-be/internal/entity"
	"docvault-be/internal/repository/specification"
)

// AuditEventRepository is append-only on purpose: no update, no delete.
type AuditEventRepository interface {
	Create(ctx context.Context, event *entity.AuditEvent) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AuditEvent, error)
}
