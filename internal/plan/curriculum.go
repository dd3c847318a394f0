// Package plan holds the reading-plan core: the yearly schedule, completion
// tracking and scoring. Everything here is pure and safe for concurrent use.
package plan

import (
	_ "embed"
	"fmt"
	"strconv"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed curriculum.yaml
var curriculumYAML []byte

// Book is one entry of the curriculum table
type Book struct {
	Name     string `yaml:"name"`
	Chapters int    `yaml:"chapters"`
}

// chapterRef is a single chapter in canonical order
type chapterRef struct {
	book    int
	chapter int
}

type curriculum struct {
	books    []Book
	chapters []chapterRef
}

var loadCurriculum = sync.OnceValue(func() *curriculum {
	c, err := parseCurriculum(curriculumYAML)
	if err != nil {
		// The table is compiled in; a parse failure is a build defect.
		panic(err)
	}
	return c
})

func parseCurriculum(data []byte) (*curriculum, error) {
	var doc struct {
		Books []Book `yaml:"books"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse curriculum: %w", err)
	}
	if len(doc.Books) == 0 {
		return nil, fmt.Errorf("curriculum has no books")
	}

	c := &curriculum{books: doc.Books}
	for i, b := range doc.Books {
		if b.Name == "" || b.Chapters <= 0 {
			return nil, fmt.Errorf("invalid curriculum entry %d: %+v", i, b)
		}
		for ch := 1; ch <= b.Chapters; ch++ {
			c.chapters = append(c.chapters, chapterRef{book: i, chapter: ch})
		}
	}
	return c, nil
}

// Books returns a copy of the curriculum table in canonical order
func Books() []Book {
	books := loadCurriculum().books
	out := make([]Book, len(books))
	copy(out, books)
	return out
}

// TotalChapters is the number of chapters covered by one full plan
func TotalChapters() int {
	return len(loadCurriculum().chapters)
}

func (c *curriculum) label(ref chapterRef) string {
	return c.books[ref.book].Name + " " + strconv.Itoa(ref.chapter)
}

// title joins per-book ranges, e.g. "Gênesis 49-50; Êxodo 1-2"
func (c *curriculum) title(refs []chapterRef) string {
	var out []byte
	for i := 0; i < len(refs); {
		j := i
		for j+1 < len(refs) && refs[j+1].book == refs[i].book {
			j++
		}
		if len(out) > 0 {
			out = append(out, "; "...)
		}
		out = append(out, c.books[refs[i].book].Name...)
		out = append(out, ' ')
		out = strconv.AppendInt(out, int64(refs[i].chapter), 10)
		if j > i {
			out = append(out, '-')
			out = strconv.AppendInt(out, int64(refs[j].chapter), 10)
		}
		i = j + 1
	}
	return string(out)
}
