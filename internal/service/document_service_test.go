package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"testing"
	"time"

	"docvault-be/internal/config"
	"docvault-be/internal/constant"
	"docvault-be/internal/dto"
	"docvault-be/internal/entity"
	"docvault-be/internal/pkg/apperrors"
	"docvault-be/pkg/crypto"
	"docvault-be/pkg/extractor"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIngestConfig() config.IngestConfig {
	return config.IngestConfig{
		ChunkSize:     200,
		ChunkOverlap:  20,
		MaxFileSizeMB: 1,
		RetrievalTopK: 5,
	}
}

func newTestDocumentService(uow *fakeUow, vault crypto.Vault, embedder *fakeEmbedder, store *fakeStore) IDocumentService {
	factory := &fakeUowFactory{uow: uow}
	return NewDocumentService(
		factory,
		vault,
		extractor.New(nil),
		store,
		embedder,
		NewAuditService(factory, nopLogger{}),
		nil,
		nopLogger{},
		testIngestConfig(),
		"documents",
		"test-embedding-model",
		3,
	)
}

func TestUploadProcessesDocument(t *testing.T) {
	vault := testVault(t)
	uow := newFakeUow()
	embedder := &fakeEmbedder{vector: []float32{0.1, 0.2, 0.3}}
	store := newFakeStore()
	svc := newTestDocumentService(uow, vault, embedder, store)

	tenant := entity.TenantContext{TenantId: uuid.New(), UserId: uuid.New()}
	text := strings.Repeat("searchable words all over this report. ", 20)

	res, err := svc.Upload(context.Background(), tenant, &dto.UploadDocumentRequest{
		Filename:    "report.txt",
		ContentType: "text/plain",
		Data:        []byte(text),
	})
	require.NoError(t, err)

	assert.False(t, res.Duplicate)
	assert.Equal(t, "report.txt", res.Filename)
	assert.Greater(t, res.TotalChunks, 1)

	require.Len(t, uow.documents.docs, 1)
	doc := uow.documents.docs[0]
	assert.True(t, doc.Processed())
	require.NotNil(t, doc.TotalChunks)
	assert.Equal(t, res.TotalChunks, *doc.TotalChunks)
	assert.Equal(t, tenant.TenantId, doc.TenantId)

	// Stored ciphertext decrypts back to the original filename.
	filename, err := vault.Decrypt(doc.EncryptionKeyRef, doc.FilenameEncrypted)
	require.NoError(t, err)
	assert.Equal(t, "report.txt", string(filename))

	// Chunk rows carry contiguous indices and sealed text.
	require.Len(t, uow.chunks.chunks, res.TotalChunks)
	for i, chunk := range uow.chunks.chunks {
		assert.Equal(t, i, chunk.ChunkIndex)
		assert.Equal(t, tenant.TenantId, chunk.TenantId)
		assert.NotEmpty(t, chunk.Embedding)
		plaintext, err := vault.Decrypt(doc.EncryptionKeyRef, chunk.TextEncrypted)
		require.NoError(t, err)
		assert.NotEmpty(t, plaintext)
	}

	assert.Equal(t, 1, store.puts)
	require.Len(t, uow.audits.events, 1)
	assert.Equal(t, constant.ActionDocumentUpload, uow.audits.events[0].Action)
}

func TestUploadDeduplicatesByContent(t *testing.T) {
	vault := testVault(t)
	uow := newFakeUow()
	embedder := &fakeEmbedder{vector: []float32{0.1, 0.2, 0.3}}
	store := newFakeStore()
	svc := newTestDocumentService(uow, vault, embedder, store)

	tenant := entity.TenantContext{TenantId: uuid.New(), UserId: uuid.New()}
	data := []byte("the very same bytes, uploaded twice")
	sum := sha256.Sum256(data)

	keyRef := vault.KeyRefFor(tenant.TenantId)
	filenameEnc, err := vault.Encrypt(keyRef, []byte("original.txt"))
	require.NoError(t, err)

	total := 3
	now := time.Now()
	uow.documents.docs = append(uow.documents.docs, &entity.Document{
		Id:                uuid.New(),
		TenantId:          tenant.TenantId,
		UserId:            tenant.UserId,
		DocumentHash:      hex.EncodeToString(sum[:]),
		EncryptionKeyRef:  keyRef,
		FilenameEncrypted: filenameEnc,
		TotalChunks:       &total,
		UploadedAt:        now,
		ProcessedAt:       &now,
	})

	res, err := svc.Upload(context.Background(), tenant, &dto.UploadDocumentRequest{
		Filename:    "renamed.txt",
		ContentType: "text/plain",
		Data:        data,
	})
	require.NoError(t, err)

	// Existing record wins; nothing is re-extracted, re-stored or re-embedded.
	assert.True(t, res.Duplicate)
	assert.Equal(t, "original.txt", res.Filename)
	assert.Equal(t, 3, res.TotalChunks)
	assert.Equal(t, 0, embedder.calls)
	assert.Equal(t, 0, store.puts)
	assert.Len(t, uow.documents.docs, 1)
}

func TestUploadSameContentDifferentTenants(t *testing.T) {
	vault := testVault(t)
	uow := newFakeUow()
	embedder := &fakeEmbedder{vector: []float32{0.1, 0.2, 0.3}}
	svc := newTestDocumentService(uow, vault, embedder, newFakeStore())

	data := []byte("shared corpus text that both tenants upload independently here")

	for i := 0; i < 2; i++ {
		tenant := entity.TenantContext{TenantId: uuid.New(), UserId: uuid.New()}
		res, err := svc.Upload(context.Background(), tenant, &dto.UploadDocumentRequest{
			Filename:    "shared.txt",
			ContentType: "text/plain",
			Data:        data,
		})
		require.NoError(t, err)
		assert.False(t, res.Duplicate)
	}

	assert.Len(t, uow.documents.docs, 2)
}

func TestUploadEmbeddingFailureLeavesUnprocessed(t *testing.T) {
	vault := testVault(t)
	uow := newFakeUow()
	embedder := &fakeEmbedder{err: errors.New("embedding service down")}
	svc := newTestDocumentService(uow, vault, embedder, newFakeStore())

	tenant := entity.TenantContext{TenantId: uuid.New(), UserId: uuid.New()}
	_, err := svc.Upload(context.Background(), tenant, &dto.UploadDocumentRequest{
		Filename:    "doomed.txt",
		ContentType: "text/plain",
		Data:        []byte("content that will fail to embed"),
	})

	require.Error(t, err)
	assert.Equal(t, apperrors.KindEmbeddingService, apperrors.KindOf(err))

	// The record exists but never became visible to retrieval: no chunk
	// rows landed and processed_at stayed unset.
	require.Len(t, uow.documents.docs, 1)
	assert.False(t, uow.documents.docs[0].Processed())
	assert.Equal(t, 0, uow.chunks.bulkCreates)
	assert.Empty(t, uow.audits.events)
}

func TestUploadRejectsMismatchedEmbeddingWidth(t *testing.T) {
	vault := testVault(t)
	uow := newFakeUow()
	// Two dimensions against the configured three: the provider and the
	// vector column disagree, so no chunk rows may land.
	embedder := &fakeEmbedder{vector: []float32{0.1, 0.2}}
	svc := newTestDocumentService(uow, vault, embedder, newFakeStore())

	tenant := entity.TenantContext{TenantId: uuid.New(), UserId: uuid.New()}
	_, err := svc.Upload(context.Background(), tenant, &dto.UploadDocumentRequest{
		Filename:    "narrow.txt",
		ContentType: "text/plain",
		Data:        []byte("content embedded at the wrong width"),
	})

	require.Error(t, err)
	assert.Equal(t, apperrors.KindEmbeddingService, apperrors.KindOf(err))

	require.Len(t, uow.documents.docs, 1)
	assert.False(t, uow.documents.docs[0].Processed())
	assert.Empty(t, uow.chunks.chunks)
}

func TestUploadRejectsEmptyAndOversized(t *testing.T) {
	vault := testVault(t)
	svc := newTestDocumentService(newFakeUow(), vault, &fakeEmbedder{}, newFakeStore())
	tenant := entity.TenantContext{TenantId: uuid.New(), UserId: uuid.New()}

	_, err := svc.Upload(context.Background(), tenant, &dto.UploadDocumentRequest{
		Filename: "empty.txt", ContentType: "text/plain", Data: nil,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	_, err = svc.Upload(context.Background(), tenant, &dto.UploadDocumentRequest{
		Filename: "huge.txt", ContentType: "text/plain", Data: make([]byte, 2*1024*1024),
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestUploadUnsupportedType(t *testing.T) {
	vault := testVault(t)
	svc := newTestDocumentService(newFakeUow(), vault, &fakeEmbedder{}, newFakeStore())
	tenant := entity.TenantContext{TenantId: uuid.New(), UserId: uuid.New()}

	_, err := svc.Upload(context.Background(), tenant, &dto.UploadDocumentRequest{
		Filename: "movie.mp4", ContentType: "video/mp4", Data: []byte{0, 1, 2},
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestDeleteRemovesRowsAndObject(t *testing.T) {
	vault := testVault(t)
	uow := newFakeUow()
	store := newFakeStore()
	svc := newTestDocumentService(uow, vault, &fakeEmbedder{vector: []float32{0.5, 0.6, 0.7}}, store)

	tenant := entity.TenantContext{TenantId: uuid.New(), UserId: uuid.New()}
	res, err := svc.Upload(context.Background(), tenant, &dto.UploadDocumentRequest{
		Filename:    "gone.txt",
		ContentType: "text/plain",
		Data:        []byte("short lived document body"),
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), tenant, res.Id))

	assert.Empty(t, uow.documents.docs)
	assert.Empty(t, uow.chunks.chunks)
	assert.Equal(t, 1, store.deletes)
	assert.Empty(t, store.objects)
}

func TestDeleteForeignDocumentNotFound(t *testing.T) {
	vault := testVault(t)
	uow := newFakeUow()
	svc := newTestDocumentService(uow, vault, &fakeEmbedder{vector: []float32{0.5, 0.6, 0.7}}, newFakeStore())

	owner := entity.TenantContext{TenantId: uuid.New(), UserId: uuid.New()}
	res, err := svc.Upload(context.Background(), owner, &dto.UploadDocumentRequest{
		Filename:    "private.txt",
		ContentType: "text/plain",
		Data:        []byte("content belonging to the owner tenant"),
	})
	require.NoError(t, err)

	intruder := entity.TenantContext{TenantId: uuid.New(), UserId: uuid.New()}
	err = svc.Delete(context.Background(), intruder, res.Id)

	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	assert.Len(t, uow.documents.docs, 1)
}

func TestListDecryptsFilenames(t *testing.T) {
	vault := testVault(t)
	uow := newFakeUow()
	svc := newTestDocumentService(uow, vault, &fakeEmbedder{vector: []float32{0.5, 0.6, 0.7}}, newFakeStore())

	tenant := entity.TenantContext{TenantId: uuid.New(), UserId: uuid.New()}
	_, err := svc.Upload(context.Background(), tenant, &dto.UploadDocumentRequest{
		Filename:    "visible.txt",
		ContentType: "text/plain",
		Data:        []byte("some listable content for this tenant"),
	})
	require.NoError(t, err)

	docs, err := svc.List(context.Background(), tenant)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "visible.txt", docs[0].Filename)
	assert.True(t, docs[0].Processed)

	other := entity.TenantContext{TenantId: uuid.New(), UserId: uuid.New()}
	docs, err = svc.List(context.Background(), other)
	require.NoError(t, err)
	assert.Empty(t, docs)
}
