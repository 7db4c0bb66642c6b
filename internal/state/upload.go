package state

import (
	"context"
	"io"
	"sync"

	"docqa/internal/models"
)

// Uploader is the part of the QA client the upload state needs
type Uploader interface {
	UploadDocument(ctx context.Context, filename string, file io.Reader) (*models.UploadResult, error)
}

// UploadState tracks one upload widget: whether an upload is in flight, the
// last successful result and the last error. The lock is never held across
// the network call, so overlapping triggers race and the last to resolve wins.
type UploadState struct {
	client Uploader

	mu        sync.RWMutex
	uploading bool
	result    *models.UploadResult
	err       string
}

// NewUploadState creates an idle upload state
func NewUploadState(client Uploader) *UploadState {
	return &UploadState{client: client}
}

// Uploading reports whether an upload is in flight
func (s *UploadState) Uploading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.uploading
}

// Result returns a copy of the last successful upload, or nil
func (s *UploadState) Result() *models.UploadResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.result == nil {
		return nil
	}
	r := *s.result
	return &r
}

// Error returns the display message of the last failure, or ""
func (s *UploadState) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Trigger uploads the file. On success the result is stored and returned; on
// failure the display message is stored and the error returned to the caller.
func (s *UploadState) Trigger(ctx context.Context, filename string, file io.Reader) (*models.UploadResult, error) {
	s.mu.Lock()
	s.uploading = true
	s.err = ""
	s.mu.Unlock()

	result, err := s.client.UploadDocument(ctx, filename, file)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploading = false

	if err != nil {
		s.err = DisplayMessage(err, UploadFallbackMessage)
		return nil, err
	}

	s.result = result
	r := *result
	return &r, nil
}

// Fail records a failure that happened before any request was made, such as
// a rejected file type.
func (s *UploadState) Fail(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = message
}

// Reset discards the result and error together
func (s *UploadState) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = nil
	s.err = ""
}

// Restore seeds the state from a persisted result
func (s *UploadState) Restore(result *models.UploadResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if result == nil {
		s.result = nil
		return
	}
	r := *result
	s.result = &r
}
