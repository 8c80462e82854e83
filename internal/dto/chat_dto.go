package dto

import (
	"time"

	"github.com/google/uuid"
)

type AskRequest struct {
	SessionId *uuid.UUID `json:"session_id"`
	Message   string     `json:"message" validate:"required,max=8000"`
}

type SourceRef struct {
	ChunkId  uuid.UUID `json:"chunk_id"`
	Distance float64   `json:"distance"`
}

type AskResponse struct {
	SessionId        uuid.UUID   `json:"session_id"`
	MessageId        uuid.UUID   `json:"message_id"`
	Answer           string      `json:"answer"`
	ModelUsed        string      `json:"model_used,omitempty"`
	Sources          []SourceRef `json:"sources,omitempty"`
	ResponseSequence int         `json:"response_sequence"`
}

type SessionResponse struct {
	Id            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	LastMessageAt time.Time `json:"last_message_at"`
}

type MessageResponse struct {
	Id               uuid.UUID   `json:"id"`
	Role             string      `json:"role"`
	Text             string      `json:"text"`
	ResponseSequence int         `json:"response_sequence"`
	ModelUsed        *string     `json:"model_used,omitempty"`
	Sources          []SourceRef `json:"sources,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
}
