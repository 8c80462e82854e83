package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error so transport layers can map it to a status code
// and callers can branch without string matching.
type Kind string

const (
	KindValidation       Kind = "validation"
	KindNotFound         Kind = "not_found"
	KindConflict         Kind = "conflict"
	KindExtraction       Kind = "extraction"
	KindCrypto           Kind = "crypto"
	KindEmbeddingService Kind = "embedding_service"
	KindStorageService   Kind = "storage_service"
	KindLLMService       Kind = "llm_service"
	KindInternal         Kind = "internal"
)

type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of the outermost AppError in the chain,
// or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
