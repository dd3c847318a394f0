package plan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToday(t *testing.T) {
	saoPaulo, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Skip("tzdata not available")
	}
	now := time.Date(2026, 3, 2, 1, 30, 0, 0, time.UTC)

	assert.Equal(t, "2026-03-02", Today(now, time.UTC))
	assert.Equal(t, "2026-03-01", Today(now, saoPaulo))
	assert.Equal(t, "2026-03-02", Today(now, nil))
}

func TestReadingDate(t *testing.T) {
	tests := []struct {
		today string
		want  string
	}{
		{"2025-12-31", "2026-01-01"},
		{"2026-01-01", "2026-01-01"},
		{"2026-06-15", "2026-06-15"},
		{"2026-12-31", "2026-12-31"},
		{"2027-01-05", "2026-12-31"},
	}
	for _, tt := range tests {
		t.Run(tt.today, func(t *testing.T) {
			assert.Equal(t, tt.want, ReadingDate(tt.today, 2026))
		})
	}
}

func TestValidDate(t *testing.T) {
	assert.True(t, ValidDate("2026-02-28"))
	assert.False(t, ValidDate("2026-02-30"))
	assert.False(t, ValidDate("2026-2-3"))
	assert.False(t, ValidDate("today"))
}

func TestFilterMonth(t *testing.T) {
	days := Generate(2026)

	feb := FilterMonth(days, 2)
	assert.Len(t, feb, 28)
	assert.Equal(t, "2026-02-01", feb[0].Date)
	assert.Equal(t, "2026-02-28", feb[27].Date)

	assert.Len(t, FilterMonth(days, 12), 31)
	assert.Empty(t, FilterMonth(days, 13))
}
