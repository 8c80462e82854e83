package contract

import (
	"context"

	"docvault-be/internal/entity"
	"docvault-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ChatSessionRepository interface {
	Create(ctx context.Context, session *entity.ChatSession) error
	Update(ctx context.Context, session *entity.ChatSession) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error)
	// LockForUpdate takes a row lock on the session. Must run inside a
	// transaction; it serializes concurrent writers on the same session.
	LockForUpdate(ctx context.Context, id uuid.UUID) (*entity.ChatSession, error)
}
