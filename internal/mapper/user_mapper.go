package mapper

import (
	"docvault-be/internal/entity"
	"docvault-be/internal/model"
)

type UserMapper struct{}

func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

func (m *UserMapper) ToEntity(e *model.User) *entity.User {
	if e == nil {
		return nil
	}

	return &entity.User{
		Id:             e.Id,
		SubjectId:      e.SubjectId,
		TenantId:       e.TenantId,
		EmailEncrypted: e.EmailEncrypted,
		CreatedAt:      e.CreatedAt,
		LastActiveAt:   e.LastActiveAt,
	}
}

func (m *UserMapper) ToModel(e *entity.User) *model.User {
	if e == nil {
		return nil
	}

	return &model.User{
		Id:             e.Id,
		SubjectId:      e.SubjectId,
		TenantId:       e.TenantId,
		EmailEncrypted: e.EmailEncrypted,
		CreatedAt:      e.CreatedAt,
		LastActiveAt:   e.LastActiveAt,
	}
}
