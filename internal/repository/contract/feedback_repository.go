package contract

import (
	"context"
	"time"

	"docvault-be/internal/entity"
	"docvault-be/internal/repository/specification"

	"github.com/google/uuid"
)

type FeedbackRepository interface {
	// Upsert inserts or, on the (message_id, user_id) conflict, replaces
	// rating and comment. The email_sent latch survives the update.
	Upsert(ctx context.Context, feedback *entity.Feedback) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Feedback, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Feedback, error)
	MarkEmailSent(ctx context.Context, id uuid.UUID, at time.Time) error
}
