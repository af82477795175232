package email

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStateStore(t *testing.T) *SQLiteStateStore {
	t.Helper()

	store, err := NewSQLiteStateStore(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func TestStateStoreMarkAndCheck(t *testing.T) {
	store := newTestStateStore(t)

	processed, err := store.IsProcessed("msg-1")
	require.NoError(t, err)
	assert.False(t, processed)

	err = store.MarkProcessed(&StateEntry{
		MessageID:      "msg-1",
		ThreadID:       "thread-1",
		NewsletterName: "Substack Newsletter",
		Subject:        "AI Weekly",
		Sender:         "news@substack.com",
		PrimaryURL:     "https://example.substack.com/p/ai-weekly",
		Status:         "processed",
	})
	require.NoError(t, err)

	processed, err = store.IsProcessed("msg-1")
	require.NoError(t, err)
	assert.True(t, processed)

	entry, err := store.GetEntry("msg-1")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "AI Weekly", entry.Subject)
	assert.Equal(t, "processed", entry.Status)
	assert.False(t, entry.ProcessedAt.IsZero())
}

func TestStateStoreUpsert(t *testing.T) {
	store := newTestStateStore(t)

	require.NoError(t, store.MarkProcessed(&StateEntry{
		MessageID:    "msg-1",
		Status:       "error",
		ErrorMessage: "embedding request failed",
	}))

	require.NoError(t, store.MarkProcessed(&StateEntry{
		MessageID: "msg-1",
		Status:    "processed",
	}))

	entry, err := store.GetEntry("msg-1")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "processed", entry.Status)
	assert.Equal(t, "", entry.ErrorMessage)

	stats, err := store.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalMessages)
}

func TestStateStoreStats(t *testing.T) {
	store := newTestStateStore(t)

	entries := []StateEntry{
		{MessageID: "a", Status: "processed"},
		{MessageID: "b", Status: "processed"},
		{MessageID: "c", Status: "skipped"},
		{MessageID: "d", Status: "error", ErrorMessage: "boom"},
	}
	for i := range entries {
		require.NoError(t, store.MarkProcessed(&entries[i]))
	}

	stats, err := store.GetStats()
	require.NoError(t, err)

	assert.Equal(t, 4, stats.TotalMessages)
	assert.Equal(t, 2, stats.ProcessedMessages)
	assert.Equal(t, 1, stats.SkippedMessages)
	assert.Equal(t, 1, stats.ErrorMessages)
	assert.False(t, stats.LastProcessed.IsZero())
}

func TestStateStoreRecentEntries(t *testing.T) {
	store := newTestStateStore(t)

	base := time.Now().Add(-time.Hour)
	for i, id := range []string{"old", "mid", "new"} {
		require.NoError(t, store.MarkProcessed(&StateEntry{
			MessageID:   id,
			ProcessedAt: base.Add(time.Duration(i) * time.Minute),
			Status:      "processed",
		}))
	}

	entries, err := store.GetRecentEntries(2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "new", entries[0].MessageID)
	assert.Equal(t, "mid", entries[1].MessageID)
}

func TestStateStoreCleanup(t *testing.T) {
	store := newTestStateStore(t)

	require.NoError(t, store.MarkProcessed(&StateEntry{
		MessageID:   "old",
		ProcessedAt: time.Now().Add(-48 * time.Hour),
		Status:      "processed",
	}))
	require.NoError(t, store.MarkProcessed(&StateEntry{
		MessageID: "new",
		Status:    "processed",
	}))

	require.NoError(t, store.Cleanup(time.Now().Add(-24*time.Hour)))

	old, err := store.IsProcessed("old")
	require.NoError(t, err)
	assert.False(t, old)

	recent, err := store.IsProcessed("new")
	require.NoError(t, err)
	assert.True(t, recent)
}

func TestStateStoreGetEntryUnknown(t *testing.T) {
	store := newTestStateStore(t)

	entry, err := store.GetEntry("never-seen")
	require.NoError(t, err)
	assert.Nil(t, entry)
}
