package plan

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurriculumTable(t *testing.T) {
	books := Books()
	assert.Len(t, books, 66)
	assert.Equal(t, 1189, TotalChapters())
	assert.Equal(t, Book{Name: "Gênesis", Chapters: 50}, books[0])
	assert.Equal(t, Book{Name: "Apocalipse", Chapters: 22}, books[65])
}

func TestParseCurriculumRejectsBadTables(t *testing.T) {
	_, err := parseCurriculum([]byte("books: []"))
	assert.Error(t, err)

	_, err = parseCurriculum([]byte("books:\n  - {name: \"X\", chapters: 0}\n"))
	assert.Error(t, err)

	_, err = parseCurriculum([]byte("books: ["))
	assert.Error(t, err)
}

func TestGenerate(t *testing.T) {
	days := Generate(2026)
	require.Len(t, days, 365)

	assert.Equal(t, "2026-01-01", days[0].Date)
	assert.Equal(t, "Gênesis 1-3", days[0].Title)
	assert.Equal(t, []string{"Gênesis 1", "Gênesis 2", "Gênesis 3"}, days[0].Chapters)

	assert.Equal(t, "2026-12-31", days[364].Date)
	assert.Equal(t, "Apocalipse 19-22", days[364].Title)

	for _, d := range days {
		assert.False(t, d.IsCompleted, d.Date)
		assert.Empty(t, d.CompletedAt, d.Date)
		assert.GreaterOrEqual(t, len(d.Chapters), 3, d.Date)
		assert.LessOrEqual(t, len(d.Chapters), 4, d.Date)
	}
}

func TestGenerateTitles(t *testing.T) {
	days := Generate(2026)
	byDate := map[string]string{}
	for _, d := range days {
		byDate[d.Date] = d.Title
	}

	tests := map[string]string{
		"2026-01-16": "Gênesis 49-50; Êxodo 1-2",
		"2026-07-03": "Salmos 119-121",
		"2026-09-30": "Amós 8-9; Obadias 1",
		"2026-10-07": "Sofonias 3; Ageu 1-2; Zacarias 1",
		"2026-12-24": "1 João 4-5; 2 João 1; 3 João 1",
	}
	for date, want := range tests {
		assert.Equal(t, want, byDate[date], date)
	}
}

func TestGenerateCoversEveryChapterOnce(t *testing.T) {
	seen := map[string]bool{}
	count := 0
	for _, d := range Generate(2026) {
		for _, ch := range d.Chapters {
			assert.False(t, seen[ch], "chapter %s assigned twice", ch)
			seen[ch] = true
			count++
		}
	}
	assert.Equal(t, 1189, count)
}

func TestGenerateIsIdempotent(t *testing.T) {
	a := Generate(2026)
	b := Generate(2026)
	assert.True(t, reflect.DeepEqual(a, b))

	// mutating one result must not leak into the next
	a[0].Chapters[0] = "changed"
	assert.Equal(t, "Gênesis 1", Generate(2026)[0].Chapters[0])
}

func TestGenerateLeapYear(t *testing.T) {
	days := Generate(2028)
	require.Len(t, days, 366)
	assert.Equal(t, "2028-02-29", days[59].Date)
	assert.Equal(t, "Apocalipse 19-22", days[365].Title)
}

func TestDaysInYear(t *testing.T) {
	assert.Equal(t, 365, DaysInYear(2026))
	assert.Equal(t, 366, DaysInYear(2024))
	assert.Equal(t, 365, DaysInYear(2100))
	assert.Equal(t, 366, DaysInYear(2000))
}
