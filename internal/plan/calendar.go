package plan

import (
	"fmt"
	"time"

	"ontheway/internal/models"
)

// Today formats now as a calendar date in loc
func Today(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return now.In(loc).Format(models.DateLayout)
}

// ReadingDate clamps today into the plan year: dates before it map to the
// first day, dates after it to the last.
func ReadingDate(today string, year int) string {
	first := fmt.Sprintf("%04d-01-01", year)
	last := fmt.Sprintf("%04d-12-31", year)
	switch {
	case today < first:
		return first
	case today > last:
		return last
	default:
		return today
	}
}

// ValidDate reports whether s is a YYYY-MM-DD calendar date
func ValidDate(s string) bool {
	t, err := time.Parse(models.DateLayout, s)
	return err == nil && t.Format(models.DateLayout) == s
}

// FilterMonth returns the entries of month (1..12) in plan order
func FilterMonth(days []models.ReadingDay, month int) []models.ReadingDay {
	out := make([]models.ReadingDay, 0, 31)
	for _, d := range days {
		t, err := time.Parse(models.DateLayout, d.Date)
		if err != nil {
			continue
		}
		if int(t.Month()) == month {
			out = append(out, d)
		}
	}
	return out
}
