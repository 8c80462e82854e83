package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "DOCUMENT_PROCESSED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Event codes emitted on the bus. Payloads carry ids only, never document
// content or other plaintext.
const (
	TypeDocumentProcessed = "DOCUMENT_PROCESSED"
	TypeDocumentDeleted   = "DOCUMENT_DELETED"
	TypeFeedbackSubmitted = "FEEDBACK_SUBMITTED"
)

func NewDocumentProcessed(tenantId, documentId string, totalChunks int) Event {
	return BaseEvent{
		Type: TypeDocumentProcessed,
		Data: map[string]interface{}{
			"tenant_id":    tenantId,
			"document_id":  documentId,
			"total_chunks": totalChunks,
		},
		OccurredAt: time.Now(),
	}
}

func NewDocumentDeleted(tenantId, documentId string) Event {
	return BaseEvent{
		Type: TypeDocumentDeleted,
		Data: map[string]interface{}{
			"tenant_id":   tenantId,
			"document_id": documentId,
		},
		OccurredAt: time.Now(),
	}
}

func NewFeedbackSubmitted(tenantId, feedbackId, rating string) Event {
	return BaseEvent{
		Type: TypeFeedbackSubmitted,
		Data: map[string]interface{}{
			"tenant_id":   tenantId,
			"feedback_id": feedbackId,
			"rating":      rating,
		},
		OccurredAt: time.Now(),
	}
}
