package state

import (
	"context"
	"strconv"
	"sync"
	"time"

	"docqa/internal/models"
)

// Asker is the part of the QA client the question history needs
type Asker interface {
	AskQuestion(ctx context.Context, question string) (*models.AskResponse, error)
}

// QuestionHistory tracks asked questions, newest first
type QuestionHistory struct {
	client Asker
	now    func() time.Time

	mu      sync.RWMutex
	asking  bool
	history []models.HistoryEntry
	err     string
	lastID  int64
}

// NewQuestionHistory creates an empty history
func NewQuestionHistory(client Asker) *QuestionHistory {
	return &QuestionHistory{
		client:  client,
		now:     time.Now,
		history: []models.HistoryEntry{},
	}
}

// Asking reports whether a question is in flight
func (q *QuestionHistory) Asking() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.asking
}

// History returns the entries, newest first. The slice is a copy.
func (q *QuestionHistory) History() []models.HistoryEntry {
	q.mu.RLock()
	defer q.mu.RUnlock()
	out := make([]models.HistoryEntry, len(q.history))
	copy(out, q.history)
	return out
}

// Len returns the number of entries
func (q *QuestionHistory) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.history)
}

// Error returns the display message of the last failure, or ""
func (q *QuestionHistory) Error() string {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.err
}

// Trigger asks the question and prepends the answered entry on success
func (q *QuestionHistory) Trigger(ctx context.Context, text string) (*models.HistoryEntry, error) {
	q.mu.Lock()
	q.asking = true
	q.err = ""
	q.mu.Unlock()

	return q.ask(ctx, text)
}

// TryTrigger is Trigger guarded against overlap: while a question is in flight
// it returns ErrBusy without calling the service.
func (q *QuestionHistory) TryTrigger(ctx context.Context, text string) (*models.HistoryEntry, error) {
	q.mu.Lock()
	if q.asking {
		q.mu.Unlock()
		return nil, ErrBusy
	}
	q.asking = true
	q.err = ""
	q.mu.Unlock()

	return q.ask(ctx, text)
}

func (q *QuestionHistory) ask(ctx context.Context, text string) (*models.HistoryEntry, error) {
	resp, err := q.client.AskQuestion(ctx, text)

	q.mu.Lock()
	defer q.mu.Unlock()
	q.asking = false

	if err != nil {
		q.err = DisplayMessage(err, AskFallbackMessage)
		return nil, err
	}

	sources := make([]string, len(resp.SourceDocuments))
	copy(sources, resp.SourceDocuments)

	ts := q.now()
	entry := models.HistoryEntry{
		ID:              q.nextID(ts),
		Question:        text,
		Answer:          resp.Answer,
		SourceDocuments: sources,
		Timestamp:       ts,
	}
	q.history = append([]models.HistoryEntry{entry}, q.history...)

	return &entry, nil
}

// Clear empties the history unconditionally
func (q *QuestionHistory) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.history = []models.HistoryEntry{}
	q.err = ""
}

// Restore seeds the history from persisted entries, newest first
func (q *QuestionHistory) Restore(entries []models.HistoryEntry) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.history = make([]models.HistoryEntry, len(entries))
	copy(q.history, entries)
	for _, e := range entries {
		if id, err := strconv.ParseInt(e.ID, 10, 64); err == nil && id > q.lastID {
			q.lastID = id
		}
	}
}

// nextID derives an ID from the creation time, bumped past the previous one
// so IDs stay unique and increasing even within the same nanosecond.
// Caller holds q.mu.
func (q *QuestionHistory) nextID(ts time.Time) string {
	id := ts.UnixNano()
	if id <= q.lastID {
		id = q.lastID + 1
	}
	q.lastID = id
	return strconv.FormatInt(id, 10)
}
