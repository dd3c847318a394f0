package models

import "time"

// Devotional is the reflection shared by every reader for one date
type Devotional struct {
	Date       string    `json:"date"`
	Title      string    `json:"title"`
	Summary    string    `json:"summary"`
	Reflection string    `json:"reflection"`
	Prayer     string    `json:"prayer"`
	KeyVerse   string    `json:"keyVerse"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Complete reports whether every content field is present
func (d *Devotional) Complete() bool {
	return d.Title != "" && d.Summary != "" && d.Reflection != "" && d.Prayer != "" && d.KeyVerse != ""
}
