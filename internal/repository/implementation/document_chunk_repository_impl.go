package implementation

import (
	"context"

	"docvault-be/internal/entity"
	"docvault-be/internal/mapper"
	"docvault-be/internal/model"
	"docvault-be/internal/repository/contract"
	"docvault-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type DocumentChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DocumentChunkMapper
}

func NewDocumentChunkRepository(db *gorm.DB) contract.DocumentChunkRepository {
	return &DocumentChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewDocumentChunkMapper(),
	}
}

func (r *DocumentChunkRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *DocumentChunkRepositoryImpl) CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	models := r.mapper.ToModels(chunks)
	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}

	for i, m := range models {
		*chunks[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *DocumentChunkRepositoryImpl) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("document_id = ?", documentId).Delete(&model.DocumentChunk{}).Error
}

func (r *DocumentChunkRepositoryImpl) HardDeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	return r.db.WithContext(ctx).Unscoped().Where("document_id = ?", documentId).Delete(&model.DocumentChunk{}).Error
}

func (r *DocumentChunkRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error) {
	var models []*model.DocumentChunk
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *DocumentChunkRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.DocumentChunk{}).Count(&count).Error
	return count, err
}

// SearchSimilar orders by pgvector cosine distance. The tenant filter and
// the join on live, processed documents are the retrieval isolation
// boundary; half-ingested documents never surface here.
func (r *DocumentChunkRepositoryImpl) SearchSimilar(ctx context.Context, tenantId uuid.UUID, queryVector []float32, limit int) ([]*contract.ScoredChunk, error) {
	if limit <= 0 {
		limit = 5
	}

	type result struct {
		model.DocumentChunk
		Distance float64
		KeyRef   string
	}
	var results []result

	qv := pgvector.NewVector(queryVector)

	err := r.db.WithContext(ctx).
		Table("document_chunks").
		Select("document_chunks.*, document_chunks.embedding <=> ? AS distance, documents.encryption_key_ref AS key_ref", qv).
		Joins("JOIN documents ON documents.id = document_chunks.document_id").
		Where("document_chunks.tenant_id = ?", tenantId).
		Where("document_chunks.deleted_at IS NULL").
		Where("documents.deleted_at IS NULL").
		Where("documents.processed_at IS NOT NULL").
		Order("distance ASC, document_chunks.created_at DESC, document_chunks.chunk_index ASC").
		Limit(limit).
		Scan(&results).Error

	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredChunk, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredChunk{
			Chunk:    r.mapper.ToEntity(&res.DocumentChunk),
			Distance: res.Distance,
			KeyRef:   res.KeyRef,
		}
	}
	return scored, nil
}
