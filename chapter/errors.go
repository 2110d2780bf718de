package chapter

import (
	"errors"
	"fmt"
)

var (
	// ErrGeneration matches every *GenerationError via errors.Is.
	ErrGeneration = errors.New("chapter generation failed")
	// ErrEmptyChapter is the cause when the generator returns no lines.
	ErrEmptyChapter = errors.New("generator returned no lines")
)

// GenerationError is the fatal failure to produce a chapter. The engine cannot
// continue the story without the chapter, so it is always surfaced.
type GenerationError struct {
	ProjectID string
	ChapterID int
	Cause     error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate chapter %d of %s: %v", e.ChapterID, e.ProjectID, e.Cause)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrGeneration.
func (e *GenerationError) Is(target error) bool {
	return target == ErrGeneration
}
