package turn

import (
	"errors"
	"fmt"
)

// Kind discriminates turn-level failures at the API boundary.
type Kind string

const (
	KindClassificationUnavailable Kind = "classification_unavailable"
	KindGenerationFailed          Kind = "generation_failed"
	KindPersistenceUnavailable    Kind = "persistence_unavailable"
	KindConversationNotFound      Kind = "conversation_not_found"
	KindVariantMismatch           Kind = "variant_mismatch"
)

// Error is the single discriminated failure a turn can surface. None of the
// kinds are retried inside the service; retry is the caller's concern.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("turn %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// KindOf extracts the failure kind, or "" for non-turn errors.
func KindOf(err error) Kind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return ""
}
