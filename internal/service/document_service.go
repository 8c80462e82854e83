package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"docvault-be/internal/constant"
	"docvault-be/internal/dto"
	"docvault-be/internal/entity"
	"docvault-be/internal/pkg/apperrors"
	"docvault-be/internal/pkg/logger"
	"docvault-be/internal/repository/specification"
	"docvault-be/internal/repository/unitofwork"
	"docvault-be/pkg/chunker"
	"docvault-be/pkg/crypto"
	"docvault-be/pkg/embedding"
	"docvault-be/pkg/events"
	"docvault-be/pkg/extractor"
	pkgnats "docvault-be/pkg/nats"
	"docvault-be/pkg/storage"

	"docvault-be/internal/config"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const embedConcurrency = 4

type IDocumentService interface {
	Upload(ctx context.Context, tenant entity.TenantContext, req *dto.UploadDocumentRequest) (*dto.UploadDocumentResponse, error)
	List(ctx context.Context, tenant entity.TenantContext) ([]*dto.DocumentResponse, error)
	Delete(ctx context.Context, tenant entity.TenantContext, id uuid.UUID) error
}

type documentService struct {
	uowFactory     unitofwork.RepositoryFactory
	vault          crypto.Vault
	extractor      *extractor.Extractor
	store          storage.ObjectStore
	embedder       embedding.EmbeddingProvider
	auditService   IAuditService
	eventPublisher *pkgnats.Publisher
	logger         logger.ILogger
	cfg            config.IngestConfig
	bucket         string
	embeddingModel string
	embeddingDim   int
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	vault crypto.Vault,
	ext *extractor.Extractor,
	store storage.ObjectStore,
	embedder embedding.EmbeddingProvider,
	auditService IAuditService,
	eventPublisher *pkgnats.Publisher,
	log logger.ILogger,
	cfg config.IngestConfig,
	bucket string,
	embeddingModel string,
	embeddingDim int,
) IDocumentService {
	return &documentService{
		uowFactory:     uowFactory,
		vault:          vault,
		extractor:      ext,
		store:          store,
		embedder:       embedder,
		auditService:   auditService,
		eventPublisher: eventPublisher,
		logger:         log,
		cfg:            cfg,
		bucket:         bucket,
		embeddingModel: embeddingModel,
		embeddingDim:   embeddingDim,
	}
}

// Upload runs the whole ingestion pipeline synchronously: dedup, object
// storage, extraction, chunking, embedding and persistence. The document is
// marked processed only after every chunk row is committed; a failure at any
// stage leaves it invisible to retrieval.
func (s *documentService) Upload(ctx context.Context, tenant entity.TenantContext, req *dto.UploadDocumentRequest) (*dto.UploadDocumentResponse, error) {
	if len(req.Data) == 0 {
		return nil, apperrors.New(apperrors.KindValidation, "uploaded file is empty")
	}
	if len(req.Data) > s.cfg.MaxFileSizeMB*1024*1024 {
		return nil, apperrors.New(apperrors.KindValidation,
			fmt.Sprintf("file exceeds the %d MB limit", s.cfg.MaxFileSizeMB))
	}

	sum := sha256.Sum256(req.Data)
	hash := hex.EncodeToString(sum[:])

	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.DocumentRepository().FindOne(ctx,
		specification.TenantOwnedBy{TenantID: tenant.TenantId},
		specification.ByDocumentHash{Hash: hash},
	)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "dedup lookup failed", err)
	}
	if existing != nil {
		return s.duplicateResponse(existing)
	}

	// Clear soft-deleted rows with the same hash so the dedup index accepts
	// the re-upload.
	if err := uow.DocumentRepository().PurgeDeletedByTenantAndHash(ctx, tenant.TenantId, hash); err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to purge deleted duplicates", err)
	}

	result, err := s.extractor.Extract(ctx, req.Data, req.ContentType)
	if err != nil {
		return nil, err
	}

	docId := uuid.New()
	keyRef := s.vault.KeyRefFor(tenant.TenantId)
	storageKey := fmt.Sprintf("%s/%s/%s", tenant.TenantId, docId, req.Filename)

	if err := s.store.Put(ctx, storageKey, req.Data, req.ContentType); err != nil {
		return nil, apperrors.Wrap(apperrors.KindStorageService, "failed to store raw document", err)
	}

	filenameEnc, err := s.vault.Encrypt(keyRef, []byte(req.Filename))
	if err != nil {
		return nil, err
	}
	storageKeyEnc, err := s.vault.Encrypt(keyRef, []byte(storageKey))
	if err != nil {
		return nil, err
	}

	doc := &entity.Document{
		Id:                  docId,
		TenantId:            tenant.TenantId,
		UserId:              tenant.UserId,
		DocumentHash:        hash,
		EncryptionKeyRef:    keyRef,
		FilenameEncrypted:   filenameEnc,
		ContentType:         req.ContentType,
		StorageBucket:       s.bucket,
		StorageKeyEncrypted: storageKeyEnc,
		FileSizeBytes:       int64(len(req.Data)),
		EmbeddingModel:      s.embeddingModel,
		UploadedAt:          time.Now(),
	}

	if err := uow.DocumentRepository().Create(ctx, doc); err != nil {
		// A concurrent upload of the same bytes may have won the dedup
		// index between our lookup and this insert. Converge on the winner.
		winner, findErr := uow.DocumentRepository().FindOne(ctx,
			specification.TenantOwnedBy{TenantID: tenant.TenantId},
			specification.ByDocumentHash{Hash: hash},
		)
		if findErr == nil && winner != nil && winner.Id != docId {
			return s.duplicateResponse(winner)
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to create document record", err)
	}

	total, err := s.process(ctx, tenant, doc, result)
	if err != nil {
		// The record stays unprocessed so a retry can supersede it.
		s.logger.Error("ingest", "ingestion failed", map[string]interface{}{
			"document_id": doc.Id.String(),
			"error":       err.Error(),
		})
		return nil, err
	}

	s.auditService.Record(ctx, tenant, constant.ActionDocumentUpload, constant.ResourceDocument, &doc.Id)
	s.publishEvent(ctx, events.NewDocumentProcessed(tenant.TenantId.String(), doc.Id.String(), total))

	return &dto.UploadDocumentResponse{
		Id:           doc.Id,
		Filename:     req.Filename,
		TotalChunks:  total,
		PageFailures: pageFailures(result),
		UploadedAt:   doc.UploadedAt,
	}, nil
}

// process chunks, embeds, encrypts and persists. The final transaction is
// the join barrier: chunk rows and processed_at land atomically.
func (s *documentService) process(ctx context.Context, tenant entity.TenantContext, doc *entity.Document, result *extractor.Result) (int, error) {
	units := make([]chunker.Unit, len(result.Pages))
	ocrPages := make(map[int]bool, len(result.Pages))
	for i, page := range result.Pages {
		units[i] = chunker.Unit{Page: page.Number, Text: page.Text}
		ocrPages[page.Number] = page.OCR
	}

	chunks := chunker.Split(units, s.cfg.ChunkSize, s.cfg.ChunkOverlap)
	if len(chunks) == 0 {
		return 0, apperrors.New(apperrors.KindExtraction, "document produced no chunks")
	}

	keyRef := s.vault.KeyRefFor(tenant.TenantId)
	embedded := make([]*entity.DocumentChunk, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrency)
	for i, ch := range chunks {
		i, ch := i, ch
		g.Go(func() error {
			res, err := s.embedder.Generate(gctx, ch.Text, "RETRIEVAL_DOCUMENT")
			if err != nil {
				return apperrors.Wrap(apperrors.KindEmbeddingService,
					fmt.Sprintf("failed to embed chunk %d", ch.Index), err)
			}
			// The vector column has a fixed width; a provider configured
			// for a different dimension must not write rows.
			if len(res.Embedding.Values) != s.embeddingDim {
				return apperrors.New(apperrors.KindEmbeddingService,
					fmt.Sprintf("embedding provider returned %d dimensions, expected %d",
						len(res.Embedding.Values), s.embeddingDim))
			}
			sealed, err := s.vault.Encrypt(keyRef, []byte(ch.Text))
			if err != nil {
				return err
			}
			embedded[i] = &entity.DocumentChunk{
				Id:            uuid.New(),
				DocumentId:    doc.Id,
				TenantId:      tenant.TenantId,
				ChunkIndex:    ch.Index,
				TextEncrypted: sealed,
				Embedding:     res.Embedding.Values,
				Metadata: entity.ChunkMetadata{
					Page:   ch.Page,
					Offset: ch.Offset,
					OCR:    ocrPages[ch.Page],
				},
				CreatedAt: time.Now(),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return 0, apperrors.Wrap(apperrors.KindInternal, "failed to begin transaction", err)
	}
	defer uow.Rollback()

	// Supersede chunks from an earlier failed attempt on the same record.
	if err := uow.DocumentChunkRepository().HardDeleteByDocumentId(ctx, doc.Id); err != nil {
		return 0, apperrors.Wrap(apperrors.KindInternal, "failed to clear stale chunks", err)
	}
	if err := uow.DocumentChunkRepository().CreateBulk(ctx, embedded); err != nil {
		return 0, apperrors.Wrap(apperrors.KindInternal, "failed to persist chunks", err)
	}

	now := time.Now()
	total := len(embedded)
	doc.TotalChunks = &total
	doc.ProcessedAt = &now
	if err := uow.DocumentRepository().Update(ctx, doc); err != nil {
		return 0, apperrors.Wrap(apperrors.KindInternal, "failed to mark document processed", err)
	}

	if err := uow.Commit(); err != nil {
		return 0, apperrors.Wrap(apperrors.KindInternal, "failed to commit ingestion", err)
	}
	return total, nil
}

func (s *documentService) List(ctx context.Context, tenant entity.TenantContext) ([]*dto.DocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	docs, err := uow.DocumentRepository().FindAll(ctx,
		specification.TenantOwnedBy{TenantID: tenant.TenantId},
		specification.OrderBy{Field: "uploaded_at", Desc: true},
	)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to list documents", err)
	}

	out := make([]*dto.DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		filename, err := s.vault.Decrypt(doc.EncryptionKeyRef, doc.FilenameEncrypted)
		if err != nil {
			return nil, err
		}
		out = append(out, &dto.DocumentResponse{
			Id:            doc.Id,
			Filename:      string(filename),
			ContentType:   doc.ContentType,
			FileSizeBytes: doc.FileSizeBytes,
			TotalChunks:   doc.TotalChunks,
			Processed:     doc.Processed(),
			UploadedAt:    doc.UploadedAt,
		})
	}
	return out, nil
}

// Delete removes the document in two phases: rows first in one transaction,
// then the stored object. A failed object removal is logged and left to
// operators; the data is already unreachable.
func (s *documentService) Delete(ctx context.Context, tenant entity.TenantContext, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.TenantOwnedBy{TenantID: tenant.TenantId},
	)
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "failed to load document", err)
	}
	if doc == nil {
		return apperrors.New(apperrors.KindNotFound, "document not found")
	}

	if err := uow.Begin(ctx); err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "failed to begin transaction", err)
	}
	defer uow.Rollback()

	if err := uow.DocumentChunkRepository().DeleteByDocumentId(ctx, doc.Id); err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "failed to delete chunks", err)
	}
	if err := uow.DocumentRepository().Delete(ctx, doc.Id); err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "failed to delete document", err)
	}
	if err := uow.Commit(); err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "failed to commit delete", err)
	}

	if key, decErr := s.vault.Decrypt(doc.EncryptionKeyRef, doc.StorageKeyEncrypted); decErr == nil {
		if err := s.store.Delete(ctx, string(key)); err != nil {
			s.logger.Warn("ingest", "failed to remove stored object", map[string]interface{}{
				"document_id": doc.Id.String(),
				"error":       err.Error(),
			})
		}
	} else {
		s.logger.Error("ingest", "cannot resolve storage key for deleted document", map[string]interface{}{
			"document_id": doc.Id.String(),
			"error":       decErr.Error(),
		})
	}

	s.auditService.Record(ctx, tenant, constant.ActionDocumentDelete, constant.ResourceDocument, &doc.Id)
	s.publishEvent(ctx, events.NewDocumentDeleted(tenant.TenantId.String(), doc.Id.String()))
	return nil
}

func (s *documentService) duplicateResponse(doc *entity.Document) (*dto.UploadDocumentResponse, error) {
	filename, err := s.vault.Decrypt(doc.EncryptionKeyRef, doc.FilenameEncrypted)
	if err != nil {
		return nil, err
	}
	total := 0
	if doc.TotalChunks != nil {
		total = *doc.TotalChunks
	}
	return &dto.UploadDocumentResponse{
		Id:          doc.Id,
		Filename:    string(filename),
		Duplicate:   true,
		TotalChunks: total,
		UploadedAt:  doc.UploadedAt,
	}, nil
}

func (s *documentService) publishEvent(ctx context.Context, event events.Event) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Warn("ingest", "failed to publish event", map[string]interface{}{
			"event": event.EventType(),
			"error": err.Error(),
		})
	}
}

func pageFailures(result *extractor.Result) []dto.PageFailure {
	if len(result.Failures) == 0 {
		return nil
	}
	out := make([]dto.PageFailure, len(result.Failures))
	for i, f := range result.Failures {
		out[i] = dto.PageFailure{Page: f.Page, Reason: f.Reason}
	}
	return out
}
