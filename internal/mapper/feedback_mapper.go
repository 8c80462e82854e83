package mapper

import (
	"docvault-be/internal/entity"
	"docvault-be/internal/model"
)

type FeedbackMapper struct{}

func NewFeedbackMapper() *FeedbackMapper {
	return &FeedbackMapper{}
}

func (m *FeedbackMapper) ToEntity(e *model.Feedback) *entity.Feedback {
	if e == nil {
		return nil
	}

	return &entity.Feedback{
		Id:               e.Id,
		TenantId:         e.TenantId,
		UserId:           e.UserId,
		SessionId:        e.SessionId,
		MessageId:        e.MessageId,
		Rating:           e.Rating,
		CommentEncrypted: e.CommentEncrypted,
		EmailSent:        e.EmailSent,
		EmailSentAt:      e.EmailSentAt,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

func (m *FeedbackMapper) ToModel(e *entity.Feedback) *model.Feedback {
	if e == nil {
		return nil
	}

	return &model.Feedback{
		Id:               e.Id,
		TenantId:         e.TenantId,
		UserId:           e.UserId,
		SessionId:        e.SessionId,
		MessageId:        e.MessageId,
		Rating:           e.Rating,
		CommentEncrypted: e.CommentEncrypted,
		EmailSent:        e.EmailSent,
		EmailSentAt:      e.EmailSentAt,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}
