package plan

import (
	"time"

	"ontheway/internal/models"
)

// Generate returns the reading schedule for year: one entry per calendar date,
// with the curriculum spread evenly in canonical order. Output depends only on year.
func Generate(year int) []models.ReadingDay {
	c := loadCurriculum()
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	n := DaysInYear(year)
	total := len(c.chapters)

	days := make([]models.ReadingDay, n)
	for i := 0; i < n; i++ {
		refs := c.chapters[i*total/n : (i+1)*total/n]
		chapters := make([]string, len(refs))
		for k, ref := range refs {
			chapters[k] = c.label(ref)
		}
		days[i] = models.ReadingDay{
			Date:     start.AddDate(0, 0, i).Format(models.DateLayout),
			Title:    c.title(refs),
			Chapters: chapters,
		}
	}
	return days
}

// DaysInYear is 366 for leap years and 365 otherwise
func DaysInYear(year int) int {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return int(start.AddDate(1, 0, 0).Sub(start).Hours() / 24)
}
