package plan

import (
	"errors"

	"ontheway/internal/models"
)

// ErrDayNotFound is returned when a date has no entry in the plan
var ErrDayNotFound = errors.New("reading day not found")

// Find returns the index of the entry for date, or -1
func Find(days []models.ReadingDay, date string) int {
	for i := range days {
		if days[i].Date == date {
			return i
		}
	}
	return -1
}

// Toggle flips the completion of the entry for date. Completing stamps
// completedAt with today; un-completing clears it. The input is not modified.
func Toggle(days []models.ReadingDay, date, today string) ([]models.ReadingDay, models.ReadingDay, error) {
	i := Find(days, date)
	if i < 0 {
		return days, models.ReadingDay{}, ErrDayNotFound
	}
	return SetCompletion(days, date, !days[i].IsCompleted, today)
}

// SetCompletion sets the completion of the entry for date. Setting the state
// the entry already has returns it unchanged, keeping its completedAt.
func SetCompletion(days []models.ReadingDay, date string, completed bool, today string) ([]models.ReadingDay, models.ReadingDay, error) {
	i := Find(days, date)
	if i < 0 {
		return days, models.ReadingDay{}, ErrDayNotFound
	}

	out := clone(days)
	if out[i].IsCompleted == completed {
		return out, out[i], nil
	}

	out[i].IsCompleted = completed
	if completed {
		out[i].CompletedAt = today
	} else {
		out[i].CompletedAt = ""
	}
	return out, out[i], nil
}

// SetNotes replaces the notes of the entry for date
func SetNotes(days []models.ReadingDay, date, notes string) ([]models.ReadingDay, models.ReadingDay, error) {
	i := Find(days, date)
	if i < 0 {
		return days, models.ReadingDay{}, ErrDayNotFound
	}
	out := clone(days)
	out[i].Notes = notes
	return out, out[i], nil
}

func clone(days []models.ReadingDay) []models.ReadingDay {
	out := make([]models.ReadingDay, len(days))
	copy(out, days)
	return out
}
