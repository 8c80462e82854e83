package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TenantOwnedBy is the mandatory tenant filter. Every tenant-scoped query
// includes it; forgetting it is a data leak, not a bug.
type TenantOwnedBy struct {
	TenantID uuid.UUID
}

func (s TenantOwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("tenant_id = ?", s.TenantID)
}

type OwnedByUser struct {
	UserID uuid.UUID
}

func (s OwnedByUser) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

type BySubjectID struct {
	SubjectID string
}

func (s BySubjectID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("subject_id = ?", s.SubjectID)
}

type ByDocumentHash struct {
	Hash string
}

func (s ByDocumentHash) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("document_hash = ?", s.Hash)
}

type ByDocumentID struct {
	DocumentID uuid.UUID
}

func (s ByDocumentID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("document_id = ?", s.DocumentID)
}

type BySessionID struct {
	SessionID uuid.UUID
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

type ByMessageID struct {
	MessageID uuid.UUID
}

func (s ByMessageID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("message_id = ?", s.MessageID)
}

type ByAction struct {
	Action string
}

func (s ByAction) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("action = ?", s.Action)
}

// AfterSequence keeps messages that come after the given response sequence.
type AfterSequence struct {
	Sequence int
}

func (s AfterSequence) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("response_sequence > ?", s.Sequence)
}

// Processed keeps documents whose ingestion fully completed.
type Processed struct{}

func (s Processed) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("processed_at IS NOT NULL")
}

type ActiveOnly struct{}

func (s ActiveOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = true")
}

// EmailPending keeps feedback rows whose notification has not been sent.
type EmailPending struct{}

func (s EmailPending) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("email_sent = false")
}
