package implementation

import (
	"context"
	"errors"
	"time"

	"docvault-be/internal/entity"
	"docvault-be/internal/mapper"
	"docvault-be/internal/model"
	"docvault-be/internal/repository/contract"
	"docvault-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FeedbackRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.FeedbackMapper
}

func NewFeedbackRepository(db *gorm.DB) contract.FeedbackRepository {
	return &FeedbackRepositoryImpl{
		db:     db,
		mapper: mapper.NewFeedbackMapper(),
	}
}

func (r *FeedbackRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

// Upsert keys on (message_id, user_id). A re-submit replaces rating and
// comment only; email_sent is deliberately not in the update list so the
// notification latch survives.
func (r *FeedbackRepositoryImpl) Upsert(ctx context.Context, feedback *entity.Feedback) error {
	m := r.mapper.ToModel(feedback)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "message_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"rating", "comment_encrypted", "updated_at"}),
		}).
		Create(m).Error
	if err != nil {
		return err
	}

	// Re-read so the caller sees the surviving row, not the insert attempt.
	var saved model.Feedback
	err = r.db.WithContext(ctx).
		Where("message_id = ? AND user_id = ?", m.MessageId, m.UserId).
		First(&saved).Error
	if err != nil {
		return err
	}
	*feedback = *r.mapper.ToEntity(&saved)
	return nil
}

func (r *FeedbackRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Feedback, error) {
	var m model.Feedback
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *FeedbackRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Feedback, error) {
	var models []*model.Feedback
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Feedback, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *FeedbackRepositoryImpl) MarkEmailSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Feedback{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"email_sent":    true,
			"email_sent_at": at,
		}).Error
}
