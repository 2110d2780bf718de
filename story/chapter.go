package story

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// LineIDBase is the id stride between chapters: chapter n numbers its lines
// from n*LineIDBase.
const LineIDBase = 1000

// Chapter is an ordered sequence of lines plus the provenance of how it was
// generated. Chapters are read-only once produced.
type Chapter struct {
	ID           int       `json:"id"`
	Lines        []Line    `json:"lines"`
	Prompt       string    `json:"prompt,omitempty"`
	Snapshot     GameState `json:"snapshot"`
	GenerationID string    `json:"generation_id,omitempty"`
	GeneratedAt  time.Time `json:"generated_at"`
}

func (c Chapter) Len() int {
	return len(c.Lines)
}

// Line returns the line at position i. ok is false when i is out of range.
func (c Chapter) Line(i int) (Line, bool) {
	if i < 0 || i >= len(c.Lines) {
		return Line{}, false
	}
	return c.Lines[i], true
}

// IndexOf returns the position of the line with the given id, or -1.
func (c Chapter) IndexOf(id int) int {
	for i, line := range c.Lines {
		if line.ID == id {
			return i
		}
	}
	return -1
}

// First returns the opening line of the chapter.
func (c Chapter) First() (Line, bool) {
	return c.Line(0)
}

// Clone returns a deep copy of the chapter.
func (c Chapter) Clone() Chapter {
	out := c
	out.Snapshot = c.Snapshot.Clone()
	if c.Lines != nil {
		out.Lines = make([]Line, len(c.Lines))
		for i, line := range c.Lines {
			out.Lines[i] = line.Clone()
		}
	}
	return out
}

// ErrInvalidContent marks content that failed ingestion checks.
var ErrInvalidContent = errors.New("invalid content")

// ValidateLines checks a line sequence once, when it enters the system.
// Navigation code relies on these guarantees and never re-checks them.
func ValidateLines(lines []Line) error {
	if len(lines) == 0 {
		return fmt.Errorf("%w: no lines", ErrInvalidContent)
	}
	seen := make(map[int]struct{}, len(lines))
	for i, line := range lines {
		if _, ok := seen[line.ID]; ok {
			return fmt.Errorf("%w: duplicate line id %d at position %d", ErrInvalidContent, line.ID, i)
		}
		seen[line.ID] = struct{}{}
		if line.ID == EndOfStory {
			return fmt.Errorf("%w: line at position %d uses reserved id %d", ErrInvalidContent, i, EndOfStory)
		}
		for j, choice := range line.Choices {
			if strings.TrimSpace(choice.Text) == "" {
				return fmt.Errorf("%w: line %d choice %d has no text", ErrInvalidContent, line.ID, j)
			}
		}
	}
	return nil
}
