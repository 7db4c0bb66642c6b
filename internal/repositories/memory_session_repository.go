package repositories

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemorySessionRepository keeps snapshots in process memory. Snapshots are
// stored serialised so callers never share slices with the store.
type MemorySessionRepository struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemorySessionRepository creates an in-memory repository. A ttl of zero
// keeps snapshots until deleted.
func NewMemorySessionRepository(ttl time.Duration) *MemorySessionRepository {
	return &MemorySessionRepository{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Save stores or replaces a snapshot and refreshes its expiry
func (r *MemorySessionRepository) Save(ctx context.Context, snap *SessionSnapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}

	snap.UpdatedAt = r.now()
	data, err := json.Marshal(snap)
	if err != nil {
		return NewSessionRepositoryError("save", snap.ID, err, "failed to marshal session")
	}

	entry := memoryEntry{data: data}
	if r.ttl > 0 {
		entry.expiresAt = snap.UpdatedAt.Add(r.ttl)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[snap.ID] = entry
	return nil
}

// Get returns the snapshot for sessionID
func (r *MemorySessionRepository) Get(ctx context.Context, sessionID string) (*SessionSnapshot, error) {
	r.mu.Lock()
	entry, ok := r.entries[sessionID]
	if ok && r.expired(entry) {
		delete(r.entries, sessionID)
		ok = false
	}
	r.mu.Unlock()

	if !ok {
		return nil, SessionNotFoundError(sessionID)
	}

	var snap SessionSnapshot
	if err := json.Unmarshal(entry.data, &snap); err != nil {
		return nil, NewSessionRepositoryError("get", sessionID, err, "failed to unmarshal session")
	}
	return &snap, nil
}

// Delete removes a snapshot. Deleting a missing session is not an error.
func (r *MemorySessionRepository) Delete(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, sessionID)
	return nil
}

// Cleanup drops expired snapshots and returns how many were removed
func (r *MemorySessionRepository) Cleanup(ctx context.Context) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, entry := range r.entries {
		if r.expired(entry) {
			delete(r.entries, id)
			removed++
		}
	}
	return removed
}

func (r *MemorySessionRepository) Ping(ctx context.Context) error {
	return nil
}

func (r *MemorySessionRepository) Close() error {
	return nil
}

func (r *MemorySessionRepository) expired(entry memoryEntry) bool {
	return !entry.expiresAt.IsZero() && !r.now().Before(entry.expiresAt)
}
