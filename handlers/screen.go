package handlers

import (
	"sync"

	"novel_ai/ending"
	"novel_ai/engine"
	"novel_ai/story"
)

// Frame is the last thing the engine showed. At most one field is set.
type Frame struct {
	Line     *story.Line
	Ending   *ending.Result
	Epilogue []story.Line
	Failure  error
}

// Screen is the engine.Presenter of the web player. Requests render its
// current frame.
type Screen struct {
	mu    sync.Mutex
	frame Frame
}

var _ engine.Presenter = (*Screen)(nil)

func (s *Screen) set(f Frame) {
	s.mu.Lock()
	s.frame = f
	s.mu.Unlock()
}

func (s *Screen) DisplayLine(line story.Line) {
	s.set(Frame{Line: &line})
}

func (s *Screen) ShowEnding(result ending.Result, epilogue []story.Line) {
	s.set(Frame{Ending: &result, Epilogue: epilogue})
}

func (s *Screen) ShowFailure(err error) {
	s.set(Frame{Failure: err})
}

func (s *Screen) Frame() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame
}
