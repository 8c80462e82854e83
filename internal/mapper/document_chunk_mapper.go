package mapper

import (
	"docvault-be/internal/entity"
	"docvault-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type DocumentChunkMapper struct{}

func NewDocumentChunkMapper() *DocumentChunkMapper {
	return &DocumentChunkMapper{}
}

func (m *DocumentChunkMapper) ToEntity(e *model.DocumentChunk) *entity.DocumentChunk {
	if e == nil {
		return nil
	}

	return &entity.DocumentChunk{
		Id:            e.Id,
		DocumentId:    e.DocumentId,
		TenantId:      e.TenantId,
		ChunkIndex:    e.ChunkIndex,
		TextEncrypted: e.TextEncrypted,
		Embedding:     e.Embedding.Slice(),
		Metadata:      metadataToEntity(e.Metadata),
		CreatedAt:     e.CreatedAt,
	}
}

func (m *DocumentChunkMapper) ToModel(e *entity.DocumentChunk) *model.DocumentChunk {
	if e == nil {
		return nil
	}

	return &model.DocumentChunk{
		Id:            e.Id,
		DocumentId:    e.DocumentId,
		TenantId:      e.TenantId,
		ChunkIndex:    e.ChunkIndex,
		TextEncrypted: e.TextEncrypted,
		Embedding:     pgvector.NewVector(e.Embedding),
		Metadata:      metadataToMap(e.Metadata),
		CreatedAt:     e.CreatedAt,
	}
}

func (m *DocumentChunkMapper) ToEntities(chunks []*model.DocumentChunk) []*entity.DocumentChunk {
	entities := make([]*entity.DocumentChunk, len(chunks))
	for i, c := range chunks {
		entities[i] = m.ToEntity(c)
	}
	return entities
}

func (m *DocumentChunkMapper) ToModels(chunks []*entity.DocumentChunk) []*model.DocumentChunk {
	models := make([]*model.DocumentChunk, len(chunks))
	for i, c := range chunks {
		models[i] = m.ToModel(c)
	}
	return models
}

func metadataToMap(meta entity.ChunkMetadata) datatypes.JSONMap {
	out := datatypes.JSONMap{
		"page":   meta.Page,
		"offset": meta.Offset,
	}
	if meta.OCR {
		out["ocr"] = true
	}
	if len(meta.Extra) > 0 {
		out["extra"] = meta.Extra
	}
	return out
}

func metadataToEntity(raw datatypes.JSONMap) entity.ChunkMetadata {
	meta := entity.ChunkMetadata{
		Page:   intFromAny(raw["page"]),
		Offset: intFromAny(raw["offset"]),
	}
	if ocr, ok := raw["ocr"].(bool); ok {
		meta.OCR = ocr
	}
	if extra, ok := raw["extra"].(map[string]any); ok {
		meta.Extra = extra
	}
	return meta
}

// JSONB numbers come back as float64 after a round trip.
func intFromAny(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
