package models

// DateLayout is the calendar-date format used for plan entries
const DateLayout = "2006-01-02"

// ReadingDay is one entry of a reader's plan, keyed by Date
type ReadingDay struct {
	Date        string   `json:"date"`
	Title       string   `json:"title"`
	Chapters    []string `json:"chapters"`
	IsCompleted bool     `json:"isCompleted"`
	// CompletedAt is the date the reader marked the entry done; empty while incomplete
	CompletedAt string `json:"completedAt,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// OnTime reports whether the entry was completed on its own scheduled date
func (d ReadingDay) OnTime() bool {
	return d.IsCompleted && d.CompletedAt == d.Date
}

// Score is the aggregate derived from a plan
type Score struct {
	Points          int `json:"points"`
	ProgressPercent int `json:"progressPercent"`
	CompletedCount  int `json:"completedCount"`
	TotalCount      int `json:"totalCount"`
}
