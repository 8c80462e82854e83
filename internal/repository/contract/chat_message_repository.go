package contract

import (
	"context"

	"docvault-be/internal/entity"
	"docvault-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ChatMessageRepository interface {
	Create(ctx context.Context, message *entity.ChatMessage) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatMessage, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// NextResponseSequence returns max(response_sequence)+1 for the session,
	// so the first message of an empty session gets 0. Callers must hold the
	// session row lock for the result to be safe.
	NextResponseSequence(ctx context.Context, sessionId uuid.UUID) (int, error)
}
