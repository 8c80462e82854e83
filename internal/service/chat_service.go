package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"docvault-be/internal/config"
	"docvault-be/internal/constant"
	"docvault-be/internal/dto"
	"docvault-be/internal/entity"
	"docvault-be/internal/pkg/apperrors"
	"docvault-be/internal/pkg/logger"
	"docvault-be/internal/repository/specification"
	"docvault-be/internal/repository/unitofwork"
	"docvault-be/pkg/crypto"
	"docvault-be/pkg/llm"
	"docvault-be/pkg/rag"

	"github.com/google/uuid"
)

const historyWindow = 20

type IChatService interface {
	Ask(ctx context.Context, tenant entity.TenantContext, req *dto.AskRequest) (*dto.AskResponse, error)
	// RetryAnswer generates an answer for an already-persisted user message.
	// Retrying after an LLM failure goes through here so the user message is
	// never duplicated.
	RetryAnswer(ctx context.Context, tenant entity.TenantContext, sessionId, messageId uuid.UUID) (*dto.AskResponse, error)
	GetSessions(ctx context.Context, tenant entity.TenantContext) ([]*dto.SessionResponse, error)
	GetHistory(ctx context.Context, tenant entity.TenantContext, sessionId uuid.UUID) ([]*dto.MessageResponse, error)
	DeleteSession(ctx context.Context, tenant entity.TenantContext, sessionId uuid.UUID) error
}

type chatService struct {
	uowFactory   unitofwork.RepositoryFactory
	retriever    *rag.Retriever
	llmProvider  llm.LLMProvider
	vault        crypto.Vault
	auditService IAuditService
	logger       logger.ILogger
	cfg          config.IngestConfig
	modelName    string
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	retriever *rag.Retriever,
	llmProvider llm.LLMProvider,
	vault crypto.Vault,
	auditService IAuditService,
	log logger.ILogger,
	cfg config.IngestConfig,
	modelName string,
) IChatService {
	return &chatService{
		uowFactory:   uowFactory,
		retriever:    retriever,
		llmProvider:  llmProvider,
		vault:        vault,
		auditService: auditService,
		logger:       log,
		cfg:          cfg,
		modelName:    modelName,
	}
}

func (s *chatService) Ask(ctx context.Context, tenant entity.TenantContext, req *dto.AskRequest) (*dto.AskResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, apperrors.New(apperrors.KindValidation, "message must not be empty")
	}

	session, err := s.resolveSession(ctx, tenant, req.SessionId, message)
	if err != nil {
		return nil, err
	}

	// The user message commits before any model call. If generation fails
	// the question survives and can be retried.
	if _, err := s.persistMessage(ctx, session.Id, tenant, constant.RoleUser, message, nil, nil); err != nil {
		return nil, err
	}

	s.auditService.Record(ctx, tenant, constant.ActionChatMessage, constant.ResourceSession, &session.Id)

	return s.answer(ctx, tenant, session, message)
}

func (s *chatService) RetryAnswer(ctx context.Context, tenant entity.TenantContext, sessionId, messageId uuid.UUID) (*dto.AskResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.findSession(ctx, tenant, sessionId)
	if err != nil {
		return nil, err
	}

	msg, err := uow.ChatMessageRepository().FindOne(ctx,
		specification.ByID{ID: messageId},
		specification.BySessionID{SessionID: session.Id},
		specification.TenantOwnedBy{TenantID: tenant.TenantId},
	)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to load message", err)
	}
	if msg == nil {
		return nil, apperrors.New(apperrors.KindNotFound, "message not found")
	}
	if msg.Role != constant.RoleUser {
		return nil, apperrors.New(apperrors.KindValidation, "only user messages can be answered")
	}

	// Only the last message may be retried; anything older was answered.
	later, err := uow.ChatMessageRepository().Count(ctx,
		specification.BySessionID{SessionID: session.Id},
		specification.AfterSequence{Sequence: msg.ResponseSequence},
	)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to inspect session tail", err)
	}
	if later > 0 {
		return nil, apperrors.New(apperrors.KindConflict, "message already has an answer")
	}

	plaintext, err := s.vault.Decrypt(s.vault.KeyRefFor(tenant.TenantId), msg.TextEncrypted)
	if err != nil {
		return nil, err
	}

	return s.answer(ctx, tenant, session, string(plaintext))
}

// answer retrieves context, calls the model and persists the assistant turn
// with its provenance. Zero retrieval hits short-circuit to a fixed reply
// without touching the model.
func (s *chatService) answer(ctx context.Context, tenant entity.TenantContext, session *entity.ChatSession, question string) (*dto.AskResponse, error) {
	contextChunks, err := s.retriever.Retrieve(ctx, tenant, question, s.cfg.RetrievalTopK)
	if err != nil {
		return nil, err
	}

	if len(contextChunks) == 0 {
		assistantMsg, err := s.persistMessage(ctx, session.Id, tenant, constant.RoleAssistant, constant.NoContextAnswer, nil, nil)
		if err != nil {
			return nil, err
		}
		return &dto.AskResponse{
			SessionId:        session.Id,
			MessageId:        assistantMsg.Id,
			Answer:           constant.NoContextAnswer,
			ResponseSequence: assistantMsg.ResponseSequence,
		}, nil
	}

	history, err := s.loadHistory(ctx, tenant, session.Id)
	if err != nil {
		return nil, err
	}

	prompt := buildPrompt(contextChunks)
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: constant.RoleSystem, Content: prompt})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: constant.RoleUser, Content: question})

	answer, err := s.llmProvider.Chat(ctx, messages)
	if err != nil {
		// The user message is already committed; nothing is fabricated.
		return nil, apperrors.Wrap(apperrors.KindLLMService, "answer generation failed", err)
	}

	refs := make([]entity.ChunkRef, len(contextChunks))
	sources := make([]dto.SourceRef, len(contextChunks))
	for i, c := range contextChunks {
		refs[i] = entity.ChunkRef{ChunkId: c.ChunkId, Distance: c.Distance}
		sources[i] = dto.SourceRef{ChunkId: c.ChunkId, Distance: c.Distance}
	}

	modelName := s.modelName
	assistantMsg, err := s.persistMessage(ctx, session.Id, tenant, constant.RoleAssistant, answer, refs, &modelName)
	if err != nil {
		return nil, err
	}

	return &dto.AskResponse{
		SessionId:        session.Id,
		MessageId:        assistantMsg.Id,
		Answer:           answer,
		ModelUsed:        modelName,
		Sources:          sources,
		ResponseSequence: assistantMsg.ResponseSequence,
	}, nil
}

// persistMessage assigns the next response_sequence under the session row
// lock, so concurrent writers on one session serialize instead of racing.
func (s *chatService) persistMessage(
	ctx context.Context,
	sessionId uuid.UUID,
	tenant entity.TenantContext,
	role, text string,
	refs []entity.ChunkRef,
	modelUsed *string,
) (*entity.ChatMessage, error) {
	sealed, err := s.vault.Encrypt(s.vault.KeyRefFor(tenant.TenantId), []byte(text))
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to begin transaction", err)
	}
	defer uow.Rollback()

	locked, err := uow.ChatSessionRepository().LockForUpdate(ctx, sessionId)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to lock session", err)
	}
	if locked == nil {
		return nil, apperrors.New(apperrors.KindNotFound, "session not found")
	}

	seq, err := uow.ChatMessageRepository().NextResponseSequence(ctx, sessionId)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to allocate sequence", err)
	}

	msg := &entity.ChatMessage{
		Id:               uuid.New(),
		SessionId:        sessionId,
		TenantId:         tenant.TenantId,
		Role:             role,
		TextEncrypted:    sealed,
		ResponseSequence: seq,
		RetrievedChunks:  refs,
		ModelUsed:        modelUsed,
		CreatedAt:        time.Now(),
	}
	if err := uow.ChatMessageRepository().Create(ctx, msg); err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to persist message", err)
	}

	locked.LastMessageAt = msg.CreatedAt
	if err := uow.ChatSessionRepository().Update(ctx, locked); err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to touch session", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to commit message", err)
	}
	return msg, nil
}

func (s *chatService) resolveSession(ctx context.Context, tenant entity.TenantContext, sessionId *uuid.UUID, firstMessage string) (*entity.ChatSession, error) {
	if sessionId != nil {
		return s.findSession(ctx, tenant, *sessionId)
	}

	title := firstMessage
	if runes := []rune(title); len(runes) > constant.SessionTitleMaxRunes {
		title = string(runes[:constant.SessionTitleMaxRunes])
	}
	titleEnc, err := s.vault.Encrypt(s.vault.KeyRefFor(tenant.TenantId), []byte(title))
	if err != nil {
		return nil, err
	}

	session := &entity.ChatSession{
		Id:             uuid.New(),
		TenantId:       tenant.TenantId,
		UserId:         tenant.UserId,
		TitleEncrypted: titleEnc,
		IsActive:       true,
		CreatedAt:      time.Now(),
		LastMessageAt:  time.Now(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to create session", err)
	}
	return session, nil
}

func (s *chatService) findSession(ctx context.Context, tenant entity.TenantContext, sessionId uuid.UUID) (*entity.ChatSession, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.TenantOwnedBy{TenantID: tenant.TenantId},
		specification.OwnedByUser{UserID: tenant.UserId},
	)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to load session", err)
	}
	if session == nil {
		return nil, apperrors.New(apperrors.KindNotFound, "session not found")
	}
	return session, nil
}

func (s *chatService) loadHistory(ctx context.Context, tenant entity.TenantContext, sessionId uuid.UUID) ([]llm.Message, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	msgs, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.OrderBy{Field: "response_sequence", Desc: true},
		specification.Pagination{Limit: historyWindow, Offset: 0},
	)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to load history", err)
	}

	// The newest message is the question being answered right now; it is
	// appended separately, so keep it out of the history.
	if len(msgs) > 0 && msgs[0].Role == constant.RoleUser {
		msgs = msgs[1:]
	}

	keyRef := s.vault.KeyRefFor(tenant.TenantId)
	history := make([]llm.Message, 0, len(msgs))
	for i := len(msgs) - 1; i >= 0; i-- {
		plaintext, err := s.vault.Decrypt(keyRef, msgs[i].TextEncrypted)
		if err != nil {
			return nil, err
		}
		history = append(history, llm.Message{Role: msgs[i].Role, Content: string(plaintext)})
	}
	return history, nil
}

func (s *chatService) GetSessions(ctx context.Context, tenant entity.TenantContext) ([]*dto.SessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.TenantOwnedBy{TenantID: tenant.TenantId},
		specification.OwnedByUser{UserID: tenant.UserId},
		specification.OrderBy{Field: "last_message_at", Desc: true},
	)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to list sessions", err)
	}

	keyRef := s.vault.KeyRefFor(tenant.TenantId)
	out := make([]*dto.SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		title := ""
		if len(session.TitleEncrypted) > 0 {
			plaintext, err := s.vault.Decrypt(keyRef, session.TitleEncrypted)
			if err != nil {
				return nil, err
			}
			title = string(plaintext)
		}
		out = append(out, &dto.SessionResponse{
			Id:            session.Id,
			Title:         title,
			IsActive:      session.IsActive,
			CreatedAt:     session.CreatedAt,
			LastMessageAt: session.LastMessageAt,
		})
	}
	return out, nil
}

func (s *chatService) GetHistory(ctx context.Context, tenant entity.TenantContext, sessionId uuid.UUID) ([]*dto.MessageResponse, error) {
	session, err := s.findSession(ctx, tenant, sessionId)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	msgs, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.BySessionID{SessionID: session.Id},
		specification.OrderBy{Field: "response_sequence", Desc: false},
	)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to load history", err)
	}

	keyRef := s.vault.KeyRefFor(tenant.TenantId)
	out := make([]*dto.MessageResponse, 0, len(msgs))
	for _, msg := range msgs {
		plaintext, err := s.vault.Decrypt(keyRef, msg.TextEncrypted)
		if err != nil {
			return nil, err
		}
		var sources []dto.SourceRef
		for _, ref := range msg.RetrievedChunks {
			sources = append(sources, dto.SourceRef{ChunkId: ref.ChunkId, Distance: ref.Distance})
		}
		out = append(out, &dto.MessageResponse{
			Id:               msg.Id,
			Role:             msg.Role,
			Text:             string(plaintext),
			ResponseSequence: msg.ResponseSequence,
			ModelUsed:        msg.ModelUsed,
			Sources:          sources,
			CreatedAt:        msg.CreatedAt,
		})
	}
	return out, nil
}

func (s *chatService) DeleteSession(ctx context.Context, tenant entity.TenantContext, sessionId uuid.UUID) error {
	session, err := s.findSession(ctx, tenant, sessionId)
	if err != nil {
		return err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatSessionRepository().Delete(ctx, session.Id); err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "failed to delete session", err)
	}

	s.auditService.Record(ctx, tenant, constant.ActionSessionDelete, constant.ResourceSession, &session.Id)
	return nil
}

func buildPrompt(chunks []rag.ContextChunk) string {
	var b strings.Builder
	for i, c := range chunks {
		fmt.Fprintf(&b, "[Source %d, page %d]\n%s\n\n", i+1, c.Page, c.Text)
	}
	return fmt.Sprintf(constant.RagSystemPrompt, strings.TrimSpace(b.String()))
}
