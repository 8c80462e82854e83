package rag

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"docvault-be/internal/entity"
	"docvault-be/internal/pkg/apperrors"
	"docvault-be/internal/pkg/logger"
	"docvault-be/internal/repository/contract"
	"docvault-be/internal/repository/unitofwork"
	"docvault-be/pkg/crypto"
	"docvault-be/pkg/embedding"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ContextChunk is a decrypted retrieval hit ready for prompt assembly.
type ContextChunk struct {
	ChunkId    uuid.UUID
	DocumentId uuid.UUID
	ChunkIndex int
	Page       int
	Text       string
	Distance   float64
}

// ChunkSearcher is the vector search dependency. The chunk repository
// satisfies it; tests substitute a fake.
type ChunkSearcher interface {
	SearchSimilar(ctx context.Context, tenantId uuid.UUID, queryVector []float32, limit int) ([]*contract.ScoredChunk, error)
}

// RepositorySearcher adapts the unit-of-work chunk repository to ChunkSearcher.
type RepositorySearcher struct {
	UowFactory unitofwork.RepositoryFactory
}

func (s *RepositorySearcher) SearchSimilar(ctx context.Context, tenantId uuid.UUID, queryVector []float32, limit int) ([]*contract.ScoredChunk, error) {
	uow := s.UowFactory.NewUnitOfWork(ctx)
	return uow.DocumentChunkRepository().SearchSimilar(ctx, tenantId, queryVector, limit)
}

const embedCacheTTL = 10 * time.Minute

type Retriever struct {
	embedder embedding.EmbeddingProvider
	searcher ChunkSearcher
	vault    crypto.Vault
	rdb      *redis.Client // optional, nil disables the embedding cache
	logger   logger.ILogger
}

func NewRetriever(
	embedder embedding.EmbeddingProvider,
	searcher ChunkSearcher,
	vault crypto.Vault,
	rdb *redis.Client,
	log logger.ILogger,
) *Retriever {
	return &Retriever{
		embedder: embedder,
		searcher: searcher,
		vault:    vault,
		rdb:      rdb,
		logger:   log,
	}
}

// Retrieve embeds the query, searches the tenant's chunks and decrypts the
// hits. An empty corpus yields an empty slice, not an error.
func (r *Retriever) Retrieve(ctx context.Context, tenant entity.TenantContext, query string, topK int) ([]ContextChunk, error) {
	vector, err := r.embedQuery(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindEmbeddingService, "failed to embed query", err)
	}

	hits, err := r.searcher.SearchSimilar(ctx, tenant.TenantId, vector, topK)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "similarity search failed", err)
	}

	chunks := make([]ContextChunk, 0, len(hits))
	for _, hit := range hits {
		plaintext, err := r.vault.Decrypt(hit.KeyRef, hit.Chunk.TextEncrypted)
		if err != nil {
			// Fail closed: a chunk we cannot authenticate is dropped, never
			// served as garbage.
			r.logger.Error("rag", "failed to decrypt retrieved chunk", map[string]interface{}{
				"chunk_id": hit.Chunk.Id.String(),
				"error":    err.Error(),
			})
			return nil, err
		}
		chunks = append(chunks, ContextChunk{
			ChunkId:    hit.Chunk.Id,
			DocumentId: hit.Chunk.DocumentId,
			ChunkIndex: hit.Chunk.ChunkIndex,
			Page:       hit.Chunk.Metadata.Page,
			Text:       string(plaintext),
			Distance:   hit.Distance,
		})
	}
	return chunks, nil
}

// embedQuery consults the redis cache first. A cache outage degrades to a
// provider call, never to a failed retrieval.
func (r *Retriever) embedQuery(ctx context.Context, query string) ([]float32, error) {
	key := r.cacheKey(query)

	if r.rdb != nil {
		if cached, err := r.rdb.Get(ctx, key).Bytes(); err == nil {
			var vector []float32
			if err := json.Unmarshal(cached, &vector); err == nil {
				return vector, nil
			}
		}
	}

	res, err := r.embedder.Generate(ctx, query, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, err
	}
	vector := res.Embedding.Values

	if r.rdb != nil {
		if data, err := json.Marshal(vector); err == nil {
			if err := r.rdb.Set(ctx, key, data, embedCacheTTL).Err(); err != nil {
				r.logger.Warn("rag", "failed to cache query embedding", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}
	}

	return vector, nil
}

func (r *Retriever) cacheKey(query string) string {
	sum := sha256.Sum256([]byte(query))
	return "docvault:qemb:" + hex.EncodeToString(sum[:])
}
