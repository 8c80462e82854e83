package rag

import (
	"context"
	"errors"
	"testing"

	"docvault-be/internal/entity"
	"docvault-be/internal/pkg/apperrors"
	"docvault-be/internal/repository/contract"
	"docvault-be/pkg/crypto"
	"docvault-be/pkg/embedding"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	vector []float32
	err    error
	calls  int
}

func (f *fakeEmbedder) Generate(_ context.Context, _ string, _ string) (*embedding.EmbeddingResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: f.vector},
	}, nil
}

type fakeSearcher struct {
	hits     []*contract.ScoredChunk
	err      error
	gotLimit int
	gotTid   uuid.UUID
}

func (f *fakeSearcher) SearchSimilar(_ context.Context, tenantId uuid.UUID, _ []float32, limit int) ([]*contract.ScoredChunk, error) {
	f.gotTid = tenantId
	f.gotLimit = limit
	return f.hits, f.err
}

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

func testVault(t *testing.T) crypto.Vault {
	t.Helper()
	vault, err := crypto.NewAesGcmVault("0123456789abcdef0123456789abcdef")
	require.NoError(t, err)
	return vault
}

func sealedChunk(t *testing.T, vault crypto.Vault, keyRef, text string, index int, distance float64) *contract.ScoredChunk {
	t.Helper()
	sealed, err := vault.Encrypt(keyRef, []byte(text))
	require.NoError(t, err)
	return &contract.ScoredChunk{
		Chunk: &entity.DocumentChunk{
			Id:            uuid.New(),
			DocumentId:    uuid.New(),
			ChunkIndex:    index,
			TextEncrypted: sealed,
			Metadata:      entity.ChunkMetadata{Page: index + 1},
		},
		Distance: distance,
		KeyRef:   keyRef,
	}
}

func TestRetrieveEmptyCorpus(t *testing.T) {
	vault := testVault(t)
	searcher := &fakeSearcher{hits: nil}
	r := NewRetriever(&fakeEmbedder{vector: []float32{0.1}}, searcher, vault, nil, nopLogger{})

	tenant := entity.TenantContext{TenantId: uuid.New(), UserId: uuid.New()}
	chunks, err := r.Retrieve(context.Background(), tenant, "anything", 5)

	require.NoError(t, err)
	assert.Empty(t, chunks)
	assert.Equal(t, tenant.TenantId, searcher.gotTid)
	assert.Equal(t, 5, searcher.gotLimit)
}

func TestRetrieveDecryptsHitsInOrder(t *testing.T) {
	vault := testVault(t)
	tenant := entity.TenantContext{TenantId: uuid.New(), UserId: uuid.New()}
	keyRef := vault.KeyRefFor(tenant.TenantId)

	searcher := &fakeSearcher{hits: []*contract.ScoredChunk{
		sealedChunk(t, vault, keyRef, "closest chunk", 0, 0.05),
		sealedChunk(t, vault, keyRef, "second chunk", 3, 0.21),
	}}
	r := NewRetriever(&fakeEmbedder{vector: []float32{0.1, 0.2}}, searcher, vault, nil, nopLogger{})

	chunks, err := r.Retrieve(context.Background(), tenant, "question", 2)
	require.NoError(t, err)

	require.Len(t, chunks, 2)
	assert.Equal(t, "closest chunk", chunks[0].Text)
	assert.Equal(t, 0.05, chunks[0].Distance)
	assert.Equal(t, 1, chunks[0].Page)
	assert.Equal(t, "second chunk", chunks[1].Text)
	assert.Equal(t, 3, chunks[1].ChunkIndex)
}

func TestRetrieveEmbeddingFailure(t *testing.T) {
	vault := testVault(t)
	r := NewRetriever(&fakeEmbedder{err: errors.New("provider down")}, &fakeSearcher{}, vault, nil, nopLogger{})

	tenant := entity.TenantContext{TenantId: uuid.New()}
	_, err := r.Retrieve(context.Background(), tenant, "question", 5)

	require.Error(t, err)
	assert.Equal(t, apperrors.KindEmbeddingService, apperrors.KindOf(err))
}

func TestRetrieveFailsClosedOnForeignKeyRef(t *testing.T) {
	vault := testVault(t)
	tenant := entity.TenantContext{TenantId: uuid.New()}
	otherRef := vault.KeyRefFor(uuid.New())

	// Chunk sealed under another tenant's key but labelled with this
	// tenant's reference: authentication must fail.
	hit := sealedChunk(t, vault, otherRef, "foreign secret", 0, 0.1)
	hit.KeyRef = vault.KeyRefFor(tenant.TenantId)

	r := NewRetriever(&fakeEmbedder{vector: []float32{0.1}}, &fakeSearcher{hits: []*contract.ScoredChunk{hit}}, vault, nil, nopLogger{})

	_, err := r.Retrieve(context.Background(), tenant, "question", 5)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindCrypto, apperrors.KindOf(err))
}
