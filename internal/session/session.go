// Package session keeps one pair of client state holders per browser
// session and persists their snapshots between requests.
package session

import (
	"sync"
	"time"

	"docqa/internal/models"
	"docqa/internal/repositories"
	"docqa/internal/state"
)

// Session is one browser's view of the QA service: the upload widget state,
// the question history and the page-level readiness flag.
type Session struct {
	ID        string
	Upload    *state.UploadState
	Questions *state.QuestionHistory

	mu            sync.RWMutex
	documentReady bool
	lastChunks    int
	lastSizeMB    float64
	lastSeen      time.Time
	notice        string
}

// Client is what a session's state holders call
type Client interface {
	state.Uploader
	state.Asker
}

func newSession(id string, client Client) *Session {
	return &Session{
		ID:        id,
		Upload:    state.NewUploadState(client),
		Questions: state.NewQuestionHistory(client),
		lastSeen:  time.Now(),
	}
}

// DocumentReady reports whether a document has been uploaded in this session
func (s *Session) DocumentReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.documentReady
}

// Metrics returns the chunk count and size of the last successful upload.
// They survive a widget reset so the status strip keeps showing them.
func (s *Session) Metrics() (chunks int, sizeMB float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastChunks, s.lastSizeMB
}

// MarkUploaded records a successful upload at page level
func (s *Session) MarkUploaded(result *models.UploadResult) {
	if result == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documentReady = true
	s.lastChunks = result.ChunksCreated
	s.lastSizeMB = result.FileSizeMB
}

// ClearAll returns the session to its initial shape, used after the remote
// service has been reset.
func (s *Session) ClearAll() {
	s.Upload.Reset()
	s.Questions.Clear()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.documentReady = false
	s.lastChunks = 0
	s.lastSizeMB = 0
}

// SetNotice stores a one-shot message for the next page render
func (s *Session) SetNotice(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notice = msg
}

// TakeNotice returns and clears the pending notice
func (s *Session) TakeNotice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := s.notice
	s.notice = ""
	return msg
}

// Snapshot captures the persisted part of the session
func (s *Session) Snapshot() *repositories.SessionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &repositories.SessionSnapshot{
		ID:            s.ID,
		UploadResult:  s.Upload.Result(),
		History:       s.Questions.History(),
		DocumentReady: s.documentReady,
		LastChunks:    s.lastChunks,
		LastSizeMB:    s.lastSizeMB,
	}
}

func (s *Session) restore(snap *repositories.SessionSnapshot) {
	s.Upload.Restore(snap.UploadResult)
	s.Questions.Restore(snap.History)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.documentReady = snap.DocumentReady
	s.lastChunks = snap.LastChunks
	s.lastSizeMB = snap.LastSizeMB
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = now
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return now.Sub(s.lastSeen)
}

// busy reports whether a call is in flight; busy sessions are never evicted
func (s *Session) busy() bool {
	return s.Upload.Uploading() || s.Questions.Asking()
}
