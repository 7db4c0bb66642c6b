package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"docqa/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot(id string) *SessionSnapshot {
	return &SessionSnapshot{
		ID:            id,
		UploadResult:  &models.UploadResult{Filename: "a.pdf", ChunksCreated: 12, FileSizeMB: 1.4},
		DocumentReady: true,
		LastChunks:    12,
		LastSizeMB:    1.4,
		History: []models.HistoryEntry{
			{ID: "2", Question: "Q2", Answer: "A2", SourceDocuments: []string{"p.3"}},
			{ID: "1", Question: "Q1", Answer: "A1", SourceDocuments: []string{}},
		},
	}
}

func TestMemorySessionRepository_SaveGet(t *testing.T) {
	repo := NewMemorySessionRepository(time.Hour)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, sampleSnapshot("s-1")))

	got, err := repo.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, "s-1", got.ID)
	assert.True(t, got.DocumentReady)
	assert.Equal(t, 12, got.UploadResult.ChunksCreated)
	require.Len(t, got.History, 2)
	assert.Equal(t, "Q2", got.History[0].Question)
	assert.NotZero(t, got.UpdatedAt)
}

func TestMemorySessionRepository_GetReturnsIndependentCopies(t *testing.T) {
	repo := NewMemorySessionRepository(0)
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, sampleSnapshot("s-1")))

	first, err := repo.Get(ctx, "s-1")
	require.NoError(t, err)
	first.History[0].Question = "mutated"

	second, err := repo.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, "Q2", second.History[0].Question)
}

func TestMemorySessionRepository_NotFound(t *testing.T) {
	repo := NewMemorySessionRepository(time.Hour)

	_, err := repo.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSessionNotFound))
	assert.Contains(t, err.Error(), "session not found")
}

func TestMemorySessionRepository_Expiry(t *testing.T) {
	repo := NewMemorySessionRepository(time.Minute)
	ctx := context.Background()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }
	require.NoError(t, repo.Save(ctx, sampleSnapshot("s-1")))
	require.NoError(t, repo.Save(ctx, sampleSnapshot("s-2")))

	now = now.Add(2 * time.Minute)
	_, err := repo.Get(ctx, "s-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.Equal(t, 1, repo.Cleanup(ctx))
	assert.Equal(t, 0, repo.Cleanup(ctx))
}

func TestMemorySessionRepository_Delete(t *testing.T) {
	repo := NewMemorySessionRepository(time.Hour)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, sampleSnapshot("s-1")))
	require.NoError(t, repo.Delete(ctx, "s-1"))
	require.NoError(t, repo.Delete(ctx, "s-1"))

	_, err := repo.Get(ctx, "s-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemorySessionRepository_Validation(t *testing.T) {
	repo := NewMemorySessionRepository(time.Hour)
	ctx := context.Background()

	err := repo.Save(ctx, &SessionSnapshot{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "required")

	err = repo.Save(ctx, &SessionSnapshot{ID: "s", LastChunks: -1})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "negative")
}
