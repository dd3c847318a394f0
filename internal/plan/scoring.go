package plan

import (
	"math"

	"ontheway/internal/models"
)

const (
	onTimePoints = 2
	latePoints   = 1
)

// Points is what a single entry contributes: 2 when completed on its own
// date, 1 when completed on any other date, 0 while incomplete.
func Points(d models.ReadingDay) int {
	switch {
	case !d.IsCompleted:
		return 0
	case d.OnTime():
		return onTimePoints
	default:
		return latePoints
	}
}

// Score aggregates points and progress for a plan. Progress rounds half away
// from zero, so 1 of 8 completed is 13%.
func Score(days []models.ReadingDay) models.Score {
	s := models.Score{TotalCount: len(days)}
	for _, d := range days {
		if !d.IsCompleted {
			continue
		}
		s.CompletedCount++
		s.Points += Points(d)
	}
	s.ProgressPercent = ProgressPercent(s.CompletedCount, s.TotalCount)
	return s
}

// ProgressPercent is round(100 * completed / total), 0 for an empty plan
func ProgressPercent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}
