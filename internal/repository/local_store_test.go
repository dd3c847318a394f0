package repository

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ontheway/internal/models"
	"ontheway/internal/plan"
)

func TestLocalStorePersistsToFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store", "otw.json")

	s, err := NewLocalStore(path)
	require.NoError(t, err)

	u := newUser("file@example.com")
	require.NoError(t, s.CreateUser(ctx, u, plan.Generate(2026)))
	days, _, err := plan.Toggle(plan.Generate(2026), "2026-01-01", "2026-01-01")
	require.NoError(t, err)
	require.NoError(t, s.SaveReading(ctx, u.ID, days[0]))
	require.NoError(t, s.SavePreferences(ctx, &models.Preferences{UserID: u.ID, DarkMode: true}))
	require.NoError(t, s.Close())

	reopened, err := NewLocalStore(path)
	require.NoError(t, err)

	got, err := reopened.GetUserByEmail(ctx, "file@example.com")
	require.NoError(t, err)
	assert.Equal(t, "hash", got.PasswordHash)

	loaded, err := reopened.GetPlan(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, loaded, 365)
	assert.True(t, loaded[0].IsCompleted)
	assert.Equal(t, "2026-01-01", loaded[0].CompletedAt)

	prefs, err := reopened.GetPreferences(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, prefs.DarkMode)

	next := newUser("second@example.com")
	require.NoError(t, reopened.CreateUser(ctx, next, nil))
	assert.Equal(t, u.ID+1, next.ID)
}

func TestLocalStoreBlobKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "otw.json")
	s, err := NewLocalStore(path)
	require.NoError(t, err)
	require.NoError(t, s.CreateUser(context.Background(), newUser("keys@example.com"), nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var blobs map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &blobs))

	for _, key := range []string{KeyUsers, KeyReadings, KeySessions, KeyPreferences, KeyDevotionals} {
		assert.Contains(t, blobs, key)
	}

	inMemory, err := s.Blobs()
	require.NoError(t, err)
	assert.Len(t, inMemory, 5)
}

func TestLocalStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "otw.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"otw_db_users": 12}`), 0o600))

	_, err := NewLocalStore(path)
	assert.Error(t, err)
}

func TestLocalStoreGetPlanReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStore("")
	require.NoError(t, err)
	u := newUser("copy@example.com")
	require.NoError(t, s.CreateUser(ctx, u, plan.Generate(2026)))

	days, err := s.GetPlan(ctx, u.ID)
	require.NoError(t, err)
	days[0].IsCompleted = true
	days[0].Chapters[0] = "changed"

	again, err := s.GetPlan(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, again[0].IsCompleted)
	assert.Equal(t, "Gênesis 1", again[0].Chapters[0])
}

func TestLocalStoreRollsBackFailedWrites(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "otw.json")
	s, err := NewLocalStore(path)
	require.NoError(t, err)

	u := newUser("ana@example.com")
	require.NoError(t, s.CreateUser(ctx, u, plan.Generate(2026)))
	_, err = s.CreateSession(ctx, "session-1", u.ID, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	// a directory where the temp file goes makes every flush fail
	blocker := path + ".tmp"
	require.NoError(t, os.Mkdir(blocker, 0o755))

	t.Run("create user", func(t *testing.T) {
		err := s.CreateUser(ctx, newUser("bia@example.com"), plan.Generate(2026))
		require.Error(t, err)
		_, err = s.GetUserByEmail(ctx, "bia@example.com")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("save reading", func(t *testing.T) {
		days, _, err := plan.Toggle(plan.Generate(2026), "2026-01-01", "2026-01-01")
		require.NoError(t, err)
		require.Error(t, s.SaveReading(ctx, u.ID, days[0]))

		stored, err := s.GetPlan(ctx, u.ID)
		require.NoError(t, err)
		assert.False(t, stored[0].IsCompleted)
	})

	t.Run("update score", func(t *testing.T) {
		require.Error(t, s.UpdateScore(ctx, u.ID, models.Score{Points: 9, ProgressPercent: 1}))
		stored, err := s.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Zero(t, stored.Points)
	})

	t.Run("expired sessions", func(t *testing.T) {
		_, err := s.DeleteExpiredSessions(ctx)
		require.Error(t, err)
		_, err = s.GetSession(ctx, "session-1")
		assert.NoError(t, err)
	})

	require.NoError(t, os.Remove(blocker))
	next := newUser("bia@example.com")
	require.NoError(t, s.CreateUser(ctx, next, nil))
	assert.Equal(t, u.ID+1, next.ID)
}
