package gita

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors returned by the content and sync packages.
var (
	// ErrDocumentNotFound is returned when a unit's content document does not exist.
	// Callers treat it as "nothing to synchronize for this unit".
	ErrDocumentNotFound = errors.New("content document not found")

	// ErrInvalidContent is returned when a document violates a content invariant.
	ErrInvalidContent = errors.New("invalid content")

	// ErrUnknownLesson is returned when an edit references a lesson that does not exist.
	ErrUnknownLesson = errors.New("unknown lesson")

	// ErrUnknownSection is returned when an edit references a section that does not exist.
	ErrUnknownSection = errors.New("unknown section")

	// ErrInvalidOrdering is returned when a target lesson ordering is incomplete or malformed.
	ErrInvalidOrdering = errors.New("invalid lesson ordering")

	// ErrInvalidQuestionType is returned for a question type outside the fixed set.
	ErrInvalidQuestionType = errors.New("invalid question type")

	// ErrTooManyQuestions is returned when a lesson would carry more than MaxQuestionsPerLesson.
	ErrTooManyQuestions = errors.New("too many questions for lesson")

	// ErrCredentialsNotFound is returned when the credential file is missing.
	ErrCredentialsNotFound = errors.New("credentials file not found")

	// ErrMissingRefreshToken is returned when the credential file has no refresh token.
	ErrMissingRefreshToken = errors.New("refresh token not found in credentials")
)

// ValidationError is returned when configuration validation fails.
// Extractable via errors.As().
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// ContentError lists every invariant violation found in one unit document.
// Wraps ErrInvalidContent.
type ContentError struct {
	UnitID     string
	Violations []string
}

func (e *ContentError) Error() string {
	return fmt.Sprintf("content: %s: %d violation(s): %s", e.UnitID, len(e.Violations), strings.Join(e.Violations, "; "))
}

func (e *ContentError) Unwrap() error { return ErrInvalidContent }

// OrderingError is returned when a target lesson ordering does not cover
// every lesson exactly once. Wraps ErrInvalidOrdering.
type OrderingError struct {
	Missing   []string
	Duplicate []string
	Unknown   []string
}

func (e *OrderingError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ","))
	}
	if len(e.Duplicate) > 0 {
		parts = append(parts, "duplicate "+strings.Join(e.Duplicate, ","))
	}
	if len(e.Unknown) > 0 {
		parts = append(parts, "unknown "+strings.Join(e.Unknown, ","))
	}
	return fmt.Sprintf("ordering: %s", strings.Join(parts, "; "))
}

func (e *OrderingError) Unwrap() error { return ErrInvalidOrdering }

// SyncError is returned when a remote store operation fails with details.
// Extractable via errors.As(). Supports Unwrap().
type SyncError struct {
	Operation  string
	Collection string
	DocumentID string
	StatusCode int
	Err        error
}

func (e *SyncError) Error() string {
	if e.DocumentID != "" {
		return fmt.Sprintf("sync: %s %s/%s failed (status %d): %v", e.Operation, e.Collection, e.DocumentID, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("sync: %s %s failed (status %d): %v", e.Operation, e.Collection, e.StatusCode, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

// AuthError is returned when a bearer token cannot be obtained.
// It is fatal for a run: no write is attempted after it.
type AuthError struct {
	StatusCode int
	Err        error
}

func (e *AuthError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("auth: token refresh failed (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("auth: %v", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }
