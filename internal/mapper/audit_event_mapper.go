package mapper

import (
	"docvault-be/internal/entity"
	"docvault-be/internal/model"
)

type AuditEventMapper struct{}

func NewAuditEventMapper() *AuditEventMapper {
	return &AuditEventMapper{}
}

func (m *AuditEventMapper) ToEntity(e *model.AuditEvent) *entity.AuditEvent {
	if e == nil {
		return nil
	}

	return &entity.AuditEvent{
		Id:           e.Id,
		TenantId:     e.TenantId,
		UserId:       e.UserId,
		Action:       e.Action,
		ResourceType: e.ResourceType,
		ResourceId:   e.ResourceId,
		IpAddress:    e.IpAddress,
		UserAgent:    e.UserAgent,
		CreatedAt:    e.CreatedAt,
	}
}

func (m *AuditEventMapper) ToModel(e *entity.AuditEvent) *model.AuditEvent {
	if e == nil {
		return nil
	}

	return &model.AuditEvent{
		Id:           e.Id,
		TenantId:     e.TenantId,
		UserId:       e.UserId,
		Action:       e.Action,
		ResourceType: e.ResourceType,
		ResourceId:   e.ResourceId,
		IpAddress:    e.IpAddress,
		UserAgent:    e.UserAgent,
		CreatedAt:    e.CreatedAt,
	}
}

func (m *AuditEventMapper) ToEntities(events []*model.AuditEvent) []*entity.AuditEvent {
	entities := make([]*entity.AuditEvent, len(events))
	for i, e := range events {
		entities[i] = m.ToEntity(e)
	}
	return entities
}
