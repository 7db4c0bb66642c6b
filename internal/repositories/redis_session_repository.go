package repositories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Redis key prefix for session snapshots
	sessionKeyPrefix = "docqa:session:"
)

// RedisSessionRepository implements SessionRepository using Redis, relying on
// key expiry for the session lifetime.
type RedisSessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionRepository creates a new Redis-based session repository
func NewRedisSessionRepository(client *redis.Client, ttl time.Duration) *RedisSessionRepository {
	return &RedisSessionRepository{
		client: client,
		ttl:    ttl,
	}
}

// Save stores the snapshot and resets its expiry
func (r *RedisSessionRepository) Save(ctx context.Context, snap *SessionSnapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}

	snap.UpdatedAt = time.Now()

	snapJSON, err := json.Marshal(snap)
	if err != nil {
		return NewSessionRepositoryError("save", snap.ID, err, "failed to marshal session")
	}

	if err := r.client.Set(ctx, sessionKeyPrefix+snap.ID, snapJSON, r.ttl).Err(); err != nil {
		return NewSessionRepositoryError("save", snap.ID, err, "")
	}

	return nil
}

// Get retrieves a snapshot by session ID
func (r *RedisSessionRepository) Get(ctx context.Context, sessionID string) (*SessionSnapshot, error) {
	snapJSON, err := r.client.Get(ctx, sessionKeyPrefix+sessionID).Result()
	if err == redis.Nil {
		return nil, SessionNotFoundError(sessionID)
	}
	if err != nil {
		return nil, NewSessionRepositoryError("get", sessionID, err, "")
	}

	var snap SessionSnapshot
	if err := json.Unmarshal([]byte(snapJSON), &snap); err != nil {
		return nil, NewSessionRepositoryError("get", sessionID, err, "failed to unmarshal session")
	}

	return &snap, nil
}

// Delete removes a snapshot
func (r *RedisSessionRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, sessionKeyPrefix+sessionID).Err(); err != nil {
		return NewSessionRepositoryError("delete", sessionID, err, "")
	}
	return nil
}

// TTL returns the remaining lifetime of a stored session
func (r *RedisSessionRepository) TTL(ctx context.Context, sessionID string) (time.Duration, error) {
	return r.client.TTL(ctx, sessionKeyPrefix+sessionID).Result()
}

// Ping checks Redis connectivity
func (r *RedisSessionRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (r *RedisSessionRepository) Close() error {
	return r.client.Close()
}
