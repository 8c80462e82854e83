package mapper

import (
	"encoding/json"

	"docvault-be/internal/entity"
	"docvault-be/internal/model"

	"gorm.io/datatypes"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

func (m *ChatMapper) ToSessionEntity(e *model.ChatSession) *entity.ChatSession {
	if e == nil {
		return nil
	}

	return &entity.ChatSession{
		Id:             e.Id,
		TenantId:       e.TenantId,
		UserId:         e.UserId,
		TitleEncrypted: e.TitleEncrypted,
		IsActive:       e.IsActive,
		CreatedAt:      e.CreatedAt,
		LastMessageAt:  e.LastMessageAt,
	}
}

func (m *ChatMapper) ToSessionModel(e *entity.ChatSession) *model.ChatSession {
	if e == nil {
		return nil
	}

	return &model.ChatSession{
		Id:             e.Id,
		TenantId:       e.TenantId,
		UserId:         e.UserId,
		TitleEncrypted: e.TitleEncrypted,
		IsActive:       e.IsActive,
		CreatedAt:      e.CreatedAt,
		LastMessageAt:  e.LastMessageAt,
	}
}

func (m *ChatMapper) ToSessionEntities(sessions []*model.ChatSession) []*entity.ChatSession {
	entities := make([]*entity.ChatSession, len(sessions))
	for i, s := range sessions {
		entities[i] = m.ToSessionEntity(s)
	}
	return entities
}

func (m *ChatMapper) ToMessageEntity(e *model.ChatMessage) *entity.ChatMessage {
	if e == nil {
		return nil
	}

	var refs []entity.ChunkRef
	if len(e.RetrievedChunks) > 0 {
		// Corrupt provenance degrades to none rather than failing the read.
		_ = json.Unmarshal(e.RetrievedChunks, &refs)
	}

	return &entity.ChatMessage{
		Id:               e.Id,
		SessionId:        e.SessionId,
		TenantId:         e.TenantId,
		Role:             e.Role,
		TextEncrypted:    e.TextEncrypted,
		ResponseSequence: e.ResponseSequence,
		RetrievedChunks:  refs,
		ModelUsed:        e.ModelUsed,
		CreatedAt:        e.CreatedAt,
	}
}

func (m *ChatMapper) ToMessageModel(e *entity.ChatMessage) *model.ChatMessage {
	if e == nil {
		return nil
	}

	var refs datatypes.JSON
	if len(e.RetrievedChunks) > 0 {
		if data, err := json.Marshal(e.RetrievedChunks); err == nil {
			refs = data
		}
	}

	return &model.ChatMessage{
		Id:               e.Id,
		SessionId:        e.SessionId,
		TenantId:         e.TenantId,
		Role:             e.Role,
		TextEncrypted:    e.TextEncrypted,
		ResponseSequence: e.ResponseSequence,
		RetrievedChunks:  refs,
		ModelUsed:        e.ModelUsed,
		CreatedAt:        e.CreatedAt,
	}
}

func (m *ChatMapper) ToMessageEntities(messages []*model.ChatMessage) []*entity.ChatMessage {
	entities := make([]*entity.ChatMessage, len(messages))
	for i, msg := range messages {
		entities[i] = m.ToMessageEntity(msg)
	}
	return entities
}
