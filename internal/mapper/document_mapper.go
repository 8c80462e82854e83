package mapper

import (
	"docvault-be/internal/entity"
	"docvault-be/internal/model"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(e *model.Document) *entity.Document {
	if e == nil {
		return nil
	}

	return &entity.Document{
		Id:                  e.Id,
		TenantId:            e.TenantId,
		UserId:              e.UserId,
		DocumentHash:        e.DocumentHash,
		EncryptionKeyRef:    e.EncryptionKeyRef,
		FilenameEncrypted:   e.FilenameEncrypted,
		ContentType:         e.ContentType,
		StorageBucket:       e.StorageBucket,
		StorageKeyEncrypted: e.StorageKeyEncrypted,
		FileSizeBytes:       e.FileSizeBytes,
		EmbeddingModel:      e.EmbeddingModel,
		TotalChunks:         e.TotalChunks,
		UploadedAt:          e.UploadedAt,
		ProcessedAt:         e.ProcessedAt,
	}
}

func (m *DocumentMapper) ToModel(e *entity.Document) *model.Document {
	if e == nil {
		return nil
	}

	return &model.Document{
		Id:                  e.Id,
		TenantId:            e.TenantId,
		UserId:              e.UserId,
		DocumentHash:        e.DocumentHash,
		EncryptionKeyRef:    e.EncryptionKeyRef,
		FilenameEncrypted:   e.FilenameEncrypted,
		ContentType:         e.ContentType,
		StorageBucket:       e.StorageBucket,
		StorageKeyEncrypted: e.StorageKeyEncrypted,
		FileSizeBytes:       e.FileSizeBytes,
		EmbeddingModel:      e.EmbeddingModel,
		TotalChunks:         e.TotalChunks,
		UploadedAt:          e.UploadedAt,
		ProcessedAt:         e.ProcessedAt,
	}
}

func (m *DocumentMapper) ToEntities(docs []*model.Document) []*entity.Document {
	entities := make([]*entity.Document, len(docs))
	for i, d := range docs {
		entities[i] = m.ToEntity(d)
	}
	return entities
}
