package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"docvault-be/internal/entity"
	"docvault-be/internal/repository/contract"
	"docvault-be/internal/repository/specification"
	"docvault-be/internal/repository/unitofwork"
	"docvault-be/pkg/crypto"
	"docvault-be/pkg/embedding"
	"docvault-be/pkg/llm"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

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

// fakeUow is a shared in-memory unit of work. Begin/Commit/Rollback only
// count calls; the stores mutate immediately, which is enough to observe
// what each service persists and in what state it leaves the data.
type fakeUow struct {
	users     *fakeUserRepo
	documents *fakeDocumentRepo
	chunks    *fakeChunkRepo
	sessions  *fakeSessionRepo
	messages  *fakeMessageRepo
	feedback  *fakeFeedbackRepo
	audits    *fakeAuditRepo

	begins, commits, rollbacks int
}

func newFakeUow() *fakeUow {
	return &fakeUow{
		users:     &fakeUserRepo{},
		documents: &fakeDocumentRepo{},
		chunks:    &fakeChunkRepo{},
		sessions:  &fakeSessionRepo{},
		messages:  &fakeMessageRepo{},
		feedback:  &fakeFeedbackRepo{},
		audits:    &fakeAuditRepo{},
	}
}

func (u *fakeUow) Begin(context.Context) error { u.begins++; return nil }
func (u *fakeUow) Commit() error               { u.commits++; return nil }
func (u *fakeUow) Rollback() error             { u.rollbacks++; return nil }

func (u *fakeUow) UserRepository() contract.UserRepository                   { return u.users }
func (u *fakeUow) DocumentRepository() contract.DocumentRepository           { return u.documents }
func (u *fakeUow) DocumentChunkRepository() contract.DocumentChunkRepository { return u.chunks }
func (u *fakeUow) ChatSessionRepository() contract.ChatSessionRepository     { return u.sessions }
func (u *fakeUow) ChatMessageRepository() contract.ChatMessageRepository     { return u.messages }
func (u *fakeUow) FeedbackRepository() contract.FeedbackRepository           { return u.feedback }
func (u *fakeUow) AuditEventRepository() contract.AuditEventRepository       { return u.audits }

type fakeUowFactory struct {
	uow *fakeUow
}

func (f *fakeUowFactory) NewUnitOfWork(context.Context) unitofwork.UnitOfWork { return f.uow }

type fakeUserRepo struct {
	users []*entity.User
}

func (r *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	for _, existing := range r.users {
		if existing.SubjectId == u.SubjectId {
			return errors.New("duplicate subject")
		}
	}
	r.users = append(r.users, u)
	return nil
}

func (r *fakeUserRepo) Update(context.Context, *entity.User) error { return nil }

func (r *fakeUserRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.User, error) {
	for _, u := range r.users {
		if matchUser(u, specs) {
			return u, nil
		}
	}
	return nil, nil
}

func matchUser(u *entity.User, specs []specification.Specification) bool {
	for _, s := range specs {
		switch spec := s.(type) {
		case specification.ByID:
			if u.Id != spec.ID {
				return false
			}
		case specification.BySubjectID:
			if u.SubjectId != spec.SubjectID {
				return false
			}
		}
	}
	return true
}

type fakeDocumentRepo struct {
	docs      []*entity.Document
	updates   int
	createErr error
}

func (r *fakeDocumentRepo) Create(_ context.Context, d *entity.Document) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.docs = append(r.docs, d)
	return nil
}

func (r *fakeDocumentRepo) Update(_ context.Context, d *entity.Document) error {
	r.updates++
	for i, existing := range r.docs {
		if existing.Id == d.Id {
			r.docs[i] = d
		}
	}
	return nil
}

func (r *fakeDocumentRepo) Delete(_ context.Context, id uuid.UUID) error {
	out := r.docs[:0]
	for _, d := range r.docs {
		if d.Id != id {
			out = append(out, d)
		}
	}
	r.docs = out
	return nil
}

func (r *fakeDocumentRepo) PurgeDeletedByTenantAndHash(context.Context, uuid.UUID, string) error {
	return nil
}

func (r *fakeDocumentRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.Document, error) {
	for _, d := range r.docs {
		if matchDocument(d, specs) {
			return d, nil
		}
	}
	return nil, nil
}

func (r *fakeDocumentRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.Document, error) {
	var out []*entity.Document
	for _, d := range r.docs {
		if matchDocument(d, specs) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeDocumentRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	docs, _ := r.FindAll(ctx, specs...)
	return int64(len(docs)), nil
}

func matchDocument(d *entity.Document, specs []specification.Specification) bool {
	for _, s := range specs {
		switch spec := s.(type) {
		case specification.ByID:
			if d.Id != spec.ID {
				return false
			}
		case specification.TenantOwnedBy:
			if d.TenantId != spec.TenantID {
				return false
			}
		case specification.ByDocumentHash:
			if d.DocumentHash != spec.Hash {
				return false
			}
		}
	}
	return true
}

type fakeChunkRepo struct {
	chunks      []*entity.DocumentChunk
	bulkCreates int
	hardDeletes int
}

func (r *fakeChunkRepo) CreateBulk(_ context.Context, chunks []*entity.DocumentChunk) error {
	r.bulkCreates++
	r.chunks = append(r.chunks, chunks...)
	return nil
}

func (r *fakeChunkRepo) DeleteByDocumentId(ctx context.Context, id uuid.UUID) error {
	return r.HardDeleteByDocumentId(ctx, id)
}

func (r *fakeChunkRepo) HardDeleteByDocumentId(_ context.Context, id uuid.UUID) error {
	r.hardDeletes++
	out := r.chunks[:0]
	for _, c := range r.chunks {
		if c.DocumentId != id {
			out = append(out, c)
		}
	}
	r.chunks = out
	return nil
}

func (r *fakeChunkRepo) FindAll(context.Context, ...specification.Specification) ([]*entity.DocumentChunk, error) {
	return r.chunks, nil
}

func (r *fakeChunkRepo) Count(context.Context, ...specification.Specification) (int64, error) {
	return int64(len(r.chunks)), nil
}

func (r *fakeChunkRepo) SearchSimilar(context.Context, uuid.UUID, []float32, int) ([]*contract.ScoredChunk, error) {
	return nil, nil
}

type fakeSessionRepo struct {
	sessions []*entity.ChatSession
	locks    int
}

func (r *fakeSessionRepo) Create(_ context.Context, s *entity.ChatSession) error {
	r.sessions = append(r.sessions, s)
	return nil
}

func (r *fakeSessionRepo) Update(_ context.Context, s *entity.ChatSession) error {
	for i, existing := range r.sessions {
		if existing.Id == s.Id {
			r.sessions[i] = s
		}
	}
	return nil
}

func (r *fakeSessionRepo) Delete(_ context.Context, id uuid.UUID) error {
	out := r.sessions[:0]
	for _, s := range r.sessions {
		if s.Id != id {
			out = append(out, s)
		}
	}
	r.sessions = out
	return nil
}

func (r *fakeSessionRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.ChatSession, error) {
	for _, s := range r.sessions {
		if matchSession(s, specs) {
			return s, nil
		}
	}
	return nil, nil
}

func (r *fakeSessionRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error) {
	var out []*entity.ChatSession
	for _, s := range r.sessions {
		if matchSession(s, specs) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) LockForUpdate(ctx context.Context, id uuid.UUID) (*entity.ChatSession, error) {
	r.locks++
	return r.FindOne(ctx, specification.ByID{ID: id})
}

func matchSession(s *entity.ChatSession, specs []specification.Specification) bool {
	for _, sp := range specs {
		switch spec := sp.(type) {
		case specification.ByID:
			if s.Id != spec.ID {
				return false
			}
		case specification.TenantOwnedBy:
			if s.TenantId != spec.TenantID {
				return false
			}
		case specification.OwnedByUser:
			if s.UserId != spec.UserID {
				return false
			}
		}
	}
	return true
}

type fakeMessageRepo struct {
	messages []*entity.ChatMessage
}

func (r *fakeMessageRepo) Create(_ context.Context, m *entity.ChatMessage) error {
	for _, existing := range r.messages {
		if existing.SessionId == m.SessionId && existing.ResponseSequence == m.ResponseSequence {
			return errors.New("duplicate response sequence")
		}
	}
	r.messages = append(r.messages, m)
	return nil
}

func (r *fakeMessageRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.ChatMessage, error) {
	for _, m := range r.messages {
		if matchMessage(m, specs) {
			return m, nil
		}
	}
	return nil, nil
}

func (r *fakeMessageRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	var out []*entity.ChatMessage
	for _, m := range r.messages {
		if matchMessage(m, specs) {
			out = append(out, m)
		}
	}
	desc := false
	for _, s := range specs {
		if o, ok := s.(specification.OrderBy); ok && o.Field == "response_sequence" {
			desc = o.Desc
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if desc {
			return out[i].ResponseSequence > out[j].ResponseSequence
		}
		return out[i].ResponseSequence < out[j].ResponseSequence
	})
	return out, nil
}

func (r *fakeMessageRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	msgs, _ := r.FindAll(ctx, specs...)
	return int64(len(msgs)), nil
}

func (r *fakeMessageRepo) NextResponseSequence(_ context.Context, sessionId uuid.UUID) (int, error) {
	max := -1
	for _, m := range r.messages {
		if m.SessionId == sessionId && m.ResponseSequence > max {
			max = m.ResponseSequence
		}
	}
	return max + 1, nil
}

func matchMessage(m *entity.ChatMessage, specs []specification.Specification) bool {
	for _, s := range specs {
		switch spec := s.(type) {
		case specification.ByID:
			if m.Id != spec.ID {
				return false
			}
		case specification.BySessionID:
			if m.SessionId != spec.SessionID {
				return false
			}
		case specification.TenantOwnedBy:
			if m.TenantId != spec.TenantID {
				return false
			}
		case specification.AfterSequence:
			if m.ResponseSequence <= spec.Sequence {
				return false
			}
		}
	}
	return true
}

type fakeFeedbackRepo struct {
	rows []*entity.Feedback
}

func (r *fakeFeedbackRepo) Upsert(_ context.Context, f *entity.Feedback) error {
	for _, existing := range r.rows {
		if existing.MessageId == f.MessageId && existing.UserId == f.UserId {
			existing.Rating = f.Rating
			existing.CommentEncrypted = f.CommentEncrypted
			existing.UpdatedAt = f.UpdatedAt
			*f = *existing
			return nil
		}
	}
	copied := *f
	r.rows = append(r.rows, &copied)
	return nil
}

func (r *fakeFeedbackRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.Feedback, error) {
	for _, f := range r.rows {
		if matchFeedback(f, specs) {
			return f, nil
		}
	}
	return nil, nil
}

func (r *fakeFeedbackRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.Feedback, error) {
	var out []*entity.Feedback
	for _, f := range r.rows {
		if matchFeedback(f, specs) {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *fakeFeedbackRepo) MarkEmailSent(_ context.Context, id uuid.UUID, at time.Time) error {
	for _, f := range r.rows {
		if f.Id == id {
			f.EmailSent = true
			sent := at
			f.EmailSentAt = &sent
		}
	}
	return nil
}

func matchFeedback(f *entity.Feedback, specs []specification.Specification) bool {
	for _, s := range specs {
		switch spec := s.(type) {
		case specification.ByID:
			if f.Id != spec.ID {
				return false
			}
		case specification.ByMessageID:
			if f.MessageId != spec.MessageID {
				return false
			}
		case specification.TenantOwnedBy:
			if f.TenantId != spec.TenantID {
				return false
			}
		case specification.OwnedByUser:
			if f.UserId != spec.UserID {
				return false
			}
		}
	}
	return true
}

type fakeAuditRepo struct {
	events []*entity.AuditEvent
}

func (r *fakeAuditRepo) Create(_ context.Context, e *entity.AuditEvent) error {
	r.events = append(r.events, e)
	return nil
}

func (r *fakeAuditRepo) FindAll(context.Context, ...specification.Specification) ([]*entity.AuditEvent, error) {
	return r.events, nil
}

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

type fakeLLM struct {
	answer string
	err    error
	calls  int
}

func (f *fakeLLM) Chat(_ context.Context, _ []llm.Message, _ ...llm.Option) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

type fakeSearcher struct {
	hits []*contract.ScoredChunk
	err  error
}

func (f *fakeSearcher) SearchSimilar(context.Context, uuid.UUID, []float32, int) ([]*contract.ScoredChunk, error) {
	return f.hits, f.err
}

type fakeStore struct {
	objects map[string][]byte
	puts    int
	deletes int
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}}
}

func (f *fakeStore) Put(_ context.Context, key string, data []byte, _ string) error {
	f.puts++
	f.objects[key] = data
	return nil
}

func (f *fakeStore) Get(_ context.Context, key string) ([]byte, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, errors.New("object not found")
	}
	return data, nil
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	f.deletes++
	delete(f.objects, key)
	return nil
}
