package repositories

import (
	"context"
	"errors"
	"time"

	"docqa/internal/models"
)

// SessionRepository persists per-browser client state between requests.
// Snapshots expire after the repository's TTL; nothing is kept longer.
type SessionRepository interface {
	Save(ctx context.Context, snap *SessionSnapshot) error
	Get(ctx context.Context, sessionID string) (*SessionSnapshot, error)
	Delete(ctx context.Context, sessionID string) error

	Ping(ctx context.Context) error
	Close() error
}

// SessionSnapshot is everything a page needs to re-render a session
type SessionSnapshot struct {
	ID            string                `json:"session_id"`
	UploadResult  *models.UploadResult  `json:"upload_result,omitempty"`
	History       []models.HistoryEntry `json:"history"`
	DocumentReady bool                  `json:"document_ready"`
	LastChunks    int                   `json:"last_chunks"`
	LastSizeMB    float64               `json:"last_size_mb"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// Validate checks the snapshot can be stored
func (s *SessionSnapshot) Validate() error {
	if s.ID == "" {
		return InvalidSessionError("", "session ID is required")
	}
	if s.LastChunks < 0 {
		return InvalidSessionError(s.ID, "chunk count cannot be negative")
	}
	return nil
}

// ErrSessionNotFound is wrapped by every not-found error
var ErrSessionNotFound = errors.New("session not found")

// SessionRepositoryError represents errors from a session repository
type SessionRepositoryError struct {
	Operation string
	SessionID string
	Err       error
	Message   string
}

func (e *SessionRepositoryError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	prefix := e.Operation
	if e.SessionID != "" {
		prefix += " (session: " + e.SessionID + ")"
	}
	if e.Err != nil {
		return prefix + ": " + e.Err.Error()
	}
	return prefix + ": unknown error"
}

func (e *SessionRepositoryError) Unwrap() error {
	return e.Err
}

// NewSessionRepositoryError creates a new session repository error
func NewSessionRepositoryError(operation string, sessionID string, err error, message string) *SessionRepositoryError {
	return &SessionRepositoryError{
		Operation: operation,
		SessionID: sessionID,
		Err:       err,
		Message:   message,
	}
}

func SessionNotFoundError(sessionID string) error {
	return NewSessionRepositoryError(
		"get_session",
		sessionID,
		ErrSessionNotFound,
		"session not found: "+sessionID,
	)
}

func InvalidSessionError(sessionID string, reason string) error {
	return NewSessionRepositoryError(
		"validate_session",
		sessionID,
		nil,
		"invalid session: "+reason,
	)
}
