package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ontheway/internal/database"
	"ontheway/internal/models"
	"ontheway/internal/plan"
)

// forEachStore runs fn against the SQL store on a temp SQLite file and the in-memory local store
func forEachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("sql", func(t *testing.T) {
		if testing.Short() {
			t.Skip("Skipping SQLite store in short mode")
		}
		db, err := database.Initialize(filepath.Join(t.TempDir(), "otw.db"))
		require.NoError(t, err)
		s := NewSQLStore(db)
		t.Cleanup(func() { s.Close() })
		fn(t, s)
	})

	t.Run("local", func(t *testing.T) {
		s, err := NewLocalStore("")
		require.NoError(t, err)
		fn(t, s)
	})
}

func newUser(email string) *models.User {
	return &models.User{Email: email, PasswordHash: "hash", Name: "Ana", GroupName: "Shalom"}
}

func TestCreateAndGetUser(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		u := newUser("ana@example.com")
		require.NoError(t, s.CreateUser(ctx, u, plan.Generate(2026)))
		assert.NotZero(t, u.ID)
		assert.False(t, u.CreatedAt.IsZero())

		got, err := s.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "ana@example.com", got.Email)
		assert.Equal(t, "hash", got.PasswordHash)
		assert.Equal(t, "Shalom", got.GroupName)
		assert.Equal(t, 0, got.Points)

		byEmail, err := s.GetUserByEmail(ctx, "ana@example.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, byEmail.ID)

		_, err = s.GetUserByID(ctx, 9999)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = s.GetUserByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, ErrNotFound)

		days, err := s.GetPlan(ctx, u.ID)
		require.NoError(t, err)
		assert.Len(t, days, 365)
	})
}

func TestDuplicateEmail(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.CreateUser(ctx, newUser("dup@example.com"), nil))
		err := s.CreateUser(ctx, newUser("dup@example.com"), plan.Generate(2026))
		assert.ErrorIs(t, err, ErrDuplicateEmail)

		users, err := s.ListUsers(ctx)
		require.NoError(t, err)
		assert.Len(t, users, 1)
	})
}

func TestPlanRoundTrip(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		u := newUser("plan@example.com")
		require.NoError(t, s.CreateUser(ctx, u, plan.Generate(2026)))

		days := plan.Generate(2026)
		var err error
		days, _, err = plan.Toggle(days, "2026-01-01", "2026-01-01")
		require.NoError(t, err)
		days, _, err = plan.Toggle(days, "2026-02-10", "2026-02-14")
		require.NoError(t, err)
		days, _, err = plan.SetNotes(days, "2026-02-10", "Êxodo é bom")
		require.NoError(t, err)
		require.NoError(t, s.SavePlan(ctx, u.ID, days))

		loaded, err := s.GetPlan(ctx, u.ID)
		require.NoError(t, err)
		require.Len(t, loaded, len(days))
		for i := range days {
			assert.Equal(t, days[i].IsCompleted, loaded[i].IsCompleted, days[i].Date)
			assert.Equal(t, days[i].CompletedAt, loaded[i].CompletedAt, days[i].Date)
		}
		assert.Equal(t, days, loaded)
	})
}

func TestSaveReading(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		u := newUser("single@example.com")
		require.NoError(t, s.CreateUser(ctx, u, plan.Generate(2026)))

		days, err := s.GetPlan(ctx, u.ID)
		require.NoError(t, err)
		_, day, err := plan.Toggle(days, "2026-03-03", "2026-03-05")
		require.NoError(t, err)
		require.NoError(t, s.SaveReading(ctx, u.ID, day))

		loaded, err := s.GetPlan(ctx, u.ID)
		require.NoError(t, err)
		require.Len(t, loaded, 365)
		got := loaded[plan.Find(loaded, "2026-03-03")]
		assert.True(t, got.IsCompleted)
		assert.Equal(t, "2026-03-05", got.CompletedAt)
		assert.Equal(t, day.Chapters, got.Chapters)
	})
}

func TestEmptyPlanForUnknownUser(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		days, err := s.GetPlan(context.Background(), 42)
		require.NoError(t, err)
		assert.Empty(t, days)
	})
}

func TestUpdateProfileAndScore(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		u := newUser("edit@example.com")
		require.NoError(t, s.CreateUser(ctx, u, nil))

		name := "Ana Maria"
		avatar := "data:image/png;base64,AA=="
		updated, err := s.UpdateProfile(ctx, u.ID, models.ProfileUpdate{Name: &name, Avatar: &avatar})
		require.NoError(t, err)
		assert.Equal(t, "Ana Maria", updated.Name)
		assert.Equal(t, avatar, updated.Avatar)
		assert.Equal(t, "Shalom", updated.GroupName, "untouched field")

		_, err = s.UpdateProfile(ctx, 9999, models.ProfileUpdate{Name: &name})
		assert.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, s.UpdateScore(ctx, u.ID, models.Score{Points: 12, ProgressPercent: 2}))
		got, err := s.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, 12, got.Points)
		assert.Equal(t, 2, got.ProgressPercent)
	})
}

func TestOAuthLink(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		u := newUser("oauth@example.com")
		require.NoError(t, s.CreateUser(ctx, u, nil))
		require.NoError(t, s.LinkOAuthProvider(ctx, u.ID, "google", "sub-123"))

		got, err := s.GetUserByOAuth(ctx, "google", "sub-123")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)

		_, err = s.GetUserByOAuth(ctx, "google", "other")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestSessions(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		u := newUser("session@example.com")
		require.NoError(t, s.CreateUser(ctx, u, nil))

		live, err := s.CreateSession(ctx, "live", u.ID, time.Now().Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, u.ID, live.UserID)
		_, err = s.CreateSession(ctx, "stale", u.ID, time.Now().Add(-time.Hour))
		require.NoError(t, err)

		got, err := s.GetSession(ctx, "live")
		require.NoError(t, err)
		assert.False(t, got.IsExpired())

		n, err := s.DeleteExpiredSessions(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		_, err = s.GetSession(ctx, "stale")
		assert.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, s.DeleteSession(ctx, "live"))
		_, err = s.GetSession(ctx, "live")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestPreferences(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		u := newUser("prefs@example.com")
		require.NoError(t, s.CreateUser(ctx, u, nil))

		p, err := s.GetPreferences(ctx, u.ID)
		require.NoError(t, err)
		assert.False(t, p.DarkMode)
		assert.False(t, p.NotificationsEnabled)

		require.NoError(t, s.SavePreferences(ctx, &models.Preferences{UserID: u.ID, DarkMode: true, NotificationsEnabled: true}))
		require.NoError(t, s.MarkReminderSent(ctx, u.ID, "2026-05-01"))

		recipients, err := s.ListNotificationRecipients(ctx)
		require.NoError(t, err)
		require.Len(t, recipients, 1)
		assert.Equal(t, "2026-05-01", recipients[0].LastReminderDate)

		// saving flags keeps the reminder date
		require.NoError(t, s.SavePreferences(ctx, &models.Preferences{UserID: u.ID, DarkMode: false, NotificationsEnabled: true}))
		p, err = s.GetPreferences(ctx, u.ID)
		require.NoError(t, err)
		assert.False(t, p.DarkMode)
		assert.Equal(t, "2026-05-01", p.LastReminderDate)
	})
}

func TestDevotionals(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		_, err := s.GetDevotional(ctx, "2026-01-01")
		assert.ErrorIs(t, err, ErrNotFound)

		first := &models.Devotional{Date: "2026-01-01", Title: "No princípio", Summary: "s", Reflection: "r", Prayer: "p", KeyVerse: "Gn 1:1"}
		require.NoError(t, s.PutDevotional(ctx, first))
		second := &models.Devotional{Date: "2026-01-01", Title: "Outro", Summary: "s", Reflection: "r", Prayer: "p", KeyVerse: "k"}
		require.NoError(t, s.PutDevotional(ctx, second))

		got, err := s.GetDevotional(ctx, "2026-01-01")
		require.NoError(t, err)
		assert.Equal(t, "No princípio", got.Title)

		all, err := s.ListDevotionals(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})
}

func TestRestoreUser(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		now := time.Now().UTC().Truncate(time.Second)
		u := &models.User{ID: 7, Email: "restored@example.com", PasswordHash: "h", Name: "R", Points: 9, CreatedAt: now, UpdatedAt: now}
		require.NoError(t, s.RestoreUser(ctx, u))

		got, err := s.GetUserByID(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, 9, got.Points)

		next := newUser("next@example.com")
		require.NoError(t, s.CreateUser(ctx, next, nil))
		assert.Greater(t, next.ID, int64(7))

		assert.ErrorIs(t, s.RestoreUser(ctx, u), ErrDuplicateEmail)
	})
}
