package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrBusy rejects input while a chapter is being resolved.
	ErrBusy           = errors.New("please wait")
	ErrChoiceRequired = errors.New("the current line requires a choice")
	ErrInvalidChoice  = errors.New("invalid choice")
	ErrNotRunning     = errors.New("no story is running")
	ErrStoryComplete  = errors.New("the story is complete")
	// ErrFailed rejects input after a chapter failed to load, until Retry.
	ErrFailed = errors.New("the chapter failed to load")
)

// NavigationError reports a jump to a line id missing from the current
// chapter. The engine logs it and advances sequentially instead.
type NavigationError struct {
	ChapterID int
	FromID    int
	TargetID  int
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigation target not found: line %d of chapter %d points to missing line %d", e.FromID, e.ChapterID, e.TargetID)
}
