package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionIsExpired(t *testing.T) {
	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{
			name:      "future expiration",
			expiresAt: time.Now().Add(1 * time.Hour),
			want:      false,
		},
		{
			name:      "just expired",
			expiresAt: time.Now().Add(-1 * time.Second),
			want:      true,
		},
		{
			name:      "expired yesterday",
			expiresAt: time.Now().Add(-24 * time.Hour),
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := Session{
				ID:        "test-session",
				UserID:    1,
				ExpiresAt: tt.expiresAt,
				CreatedAt: time.Now().Add(-1 * time.Hour),
			}
			assert.Equal(t, tt.want, session.IsExpired())
		})
	}
}

func TestReadingDayOnTime(t *testing.T) {
	tests := []struct {
		name string
		day  ReadingDay
		want bool
	}{
		{"incomplete", ReadingDay{Date: "2026-03-01"}, false},
		{"same day", ReadingDay{Date: "2026-03-01", IsCompleted: true, CompletedAt: "2026-03-01"}, true},
		{"late", ReadingDay{Date: "2026-03-01", IsCompleted: true, CompletedAt: "2026-03-04"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.day.OnTime())
		})
	}
}

func TestReadingDayJSONOmitsUnsetCompletion(t *testing.T) {
	data, err := json.Marshal(ReadingDay{Date: "2026-01-01", Title: "Gênesis 1-3", Chapters: []string{"Gênesis 1"}})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "completedAt")
	assert.Contains(t, string(data), `"isCompleted":false`)
}

func TestUserJSONHidesSecrets(t *testing.T) {
	u := User{ID: 1, Email: "a@b.c", PasswordHash: "hash", OAuthSubject: "sub-1", Name: "Ana"}
	data, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hash")
	assert.NotContains(t, string(data), "sub-1")
}

func TestUserApplyScore(t *testing.T) {
	u := User{}
	u.ApplyScore(Score{Points: 7, ProgressPercent: 3, CompletedCount: 4, TotalCount: 365})
	assert.Equal(t, 7, u.Points)
	assert.Equal(t, 3, u.ProgressPercent)
}

func TestProfileUpdateIsEmpty(t *testing.T) {
	name := "Ana"
	assert.True(t, ProfileUpdate{}.IsEmpty())
	assert.False(t, ProfileUpdate{Name: &name}.IsEmpty())
}

func TestDevotionalComplete(t *testing.T) {
	d := Devotional{Title: "t", Summary: "s", Reflection: "r", Prayer: "p", KeyVerse: "k"}
	assert.True(t, d.Complete())
	d.Prayer = ""
	assert.False(t, d.Complete())
}
