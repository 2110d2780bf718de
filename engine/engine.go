// Package engine walks a story's chapters line by line, applying choices and
// deciding the ending when the story completes.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"novel_ai/ending"
	"novel_ai/score"
	"novel_ai/story"
)

// Presenter shows the story to the player. Calls are made after the session
// releases its lock, in the order the session produced them.
type Presenter interface {
	DisplayLine(line story.Line)
	ShowEnding(result ending.Result, epilogue []story.Line)
	ShowFailure(err error)
}

// Saver persists the auto save.
type Saver interface {
	AutoSave(ctx context.Context, state story.GameState) error
}

// Resolver supplies chapters. *chapter.Orchestrator implements it.
type Resolver interface {
	Resolve(ctx context.Context, chapterID int, snapshot story.GameState) (story.Chapter, error)
	Generating() bool
}

// LogEntry is one record of the dialogue log: a displayed line, or, when
// Choice is set, the choice made on line LineID.
type LogEntry struct {
	ChapterID int
	LineID    int
	Speaker   string
	Text      string
	Choice    string
}

type Config struct {
	Project   story.Project
	Policy    ending.Policy
	Catalog   *ending.Catalog
	Resolver  Resolver
	Presenter Presenter
	// Saver is optional; without it nothing is auto saved.
	Saver  Saver
	Logger *log.Logger
}

// target is a chapter load decided under the lock and performed without it.
type target struct {
	chapterID int
	lineID    int
	snapshot  story.GameState
}

// Session is one playthrough. It is safe for concurrent use; input that
// arrives while a chapter is loading is rejected with ErrBusy.
type Session struct {
	project   story.Project
	policy    ending.Policy
	catalog   *ending.Catalog
	resolver  Resolver
	presenter Presenter
	saver     Saver
	logger    *log.Logger

	mu      sync.Mutex
	phase   State
	loading bool
	state   story.GameState
	scores  *score.Accumulator
	chapter story.Chapter
	index   int
	entries []LogEntry
	result  *ending.Result
	failure error
	retry   *target
	outbox  []func()
}

func New(cfg Config) (*Session, error) {
	if cfg.Resolver == nil {
		return nil, errors.New("engine requires a chapter resolver")
	}
	if cfg.Presenter == nil {
		return nil, errors.New("engine requires a presenter")
	}
	if err := cfg.Project.Validate(); err != nil {
		return nil, fmt.Errorf("engine project: %w", err)
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	return &Session{
		project:   cfg.Project,
		policy:    cfg.Policy.WithDefaults(),
		catalog:   cfg.Catalog,
		resolver:  cfg.Resolver,
		presenter: cfg.Presenter,
		saver:     cfg.Saver,
		logger:    cfg.Logger,
		phase:     Idle,
	}, nil
}

// unlock releases the lock and then delivers queued presenter calls.
func (s *Session) unlock() {
	out := s.outbox
	s.outbox = nil
	s.mu.Unlock()
	for _, f := range out {
		f()
	}
}

func (s *Session) busy() bool {
	return s.loading || s.resolver.Generating()
}

// Start begins a new game at the first line of chapter 1.
func (s *Session) Start(ctx context.Context) error {
	next, err := s.start()
	if err != nil {
		return err
	}
	return s.load(ctx, next)
}

func (s *Session) start() (target, error) {
	s.mu.Lock()
	defer s.unlock()
	if s.busy() {
		return target{}, ErrBusy
	}
	s.reset(story.NewGameState())
	if err := s.scores.Initialize(s.project.CoreValues, s.project.NPCs); err != nil {
		return target{}, err
	}
	s.logger.Printf("engine: new game project=%s", s.project.ID)
	return s.beginLoad(1, story.LineIDBase), nil
}

// Resume continues a saved game at the saved line, or at the first line of
// the saved chapter when that line no longer exists.
func (s *Session) Resume(ctx context.Context, saved story.GameState) error {
	next, err := s.resume(saved)
	if err != nil {
		return err
	}
	return s.load(ctx, next)
}

func (s *Session) resume(saved story.GameState) (target, error) {
	s.mu.Lock()
	defer s.unlock()
	if s.busy() {
		return target{}, ErrBusy
	}
	if saved.ChapterID < 1 || saved.ChapterID > s.project.TotalChapters {
		return target{}, fmt.Errorf("resume: chapter %d is outside 1..%d", saved.ChapterID, s.project.TotalChapters)
	}
	s.reset(saved.Clone())
	if err := s.scores.Restore(s.project.CoreValues, s.project.NPCs); err != nil {
		return target{}, err
	}
	s.logger.Printf("engine: resume project=%s chapter=%d line=%d", s.project.ID, saved.ChapterID, saved.LineID)
	return s.beginLoad(s.state.ChapterID, s.state.LineID), nil
}

func (s *Session) reset(state story.GameState) {
	s.state = state
	s.scores = score.New(&s.state)
	s.chapter = story.Chapter{}
	s.index = 0
	s.entries = nil
	s.result = nil
	s.failure = nil
	s.retry = nil
}

// Retry reloads the chapter whose load failed.
func (s *Session) Retry(ctx context.Context) error {
	next, err := s.prepareRetry()
	if err != nil {
		return err
	}
	return s.load(ctx, next)
}

func (s *Session) prepareRetry() (target, error) {
	s.mu.Lock()
	defer s.unlock()
	if s.busy() {
		return target{}, ErrBusy
	}
	if s.phase != Failed || s.retry == nil {
		return target{}, fmt.Errorf("retry: nothing to retry in state %s", s.phase)
	}
	r := *s.retry
	return s.beginLoad(r.chapterID, r.lineID), nil
}

// beginLoad raises the loading gate and captures what the load needs.
func (s *Session) beginLoad(chapterID, lineID int) target {
	s.loading = true
	s.phase = ChapterComplete
	return target{chapterID: chapterID, lineID: lineID, snapshot: s.state.Clone()}
}

// load resolves the chapter without holding the lock and displays the line
// the target names.
func (s *Session) load(ctx context.Context, t target) error {
	ch, err := s.resolver.Resolve(ctx, t.chapterID, t.snapshot)

	s.mu.Lock()
	defer s.unlock()
	s.loading = false
	if err == nil && ch.Len() == 0 {
		err = fmt.Errorf("chapter %d has no lines", t.chapterID)
	}
	if err != nil {
		s.phase = Failed
		s.failure = err
		s.retry = &t
		s.logger.Printf("engine: chapter %d failed to load: %v", t.chapterID, err)
		s.outbox = append(s.outbox, func() { s.presenter.ShowFailure(err) })
		return err
	}

	s.chapter = ch
	s.state.ChapterID = t.chapterID
	s.failure = nil
	s.retry = nil
	i := ch.IndexOf(t.lineID)
	if i < 0 {
		i = 0
	}
	s.display(i)
	return nil
}

// Advance moves past the current line.
func (s *Session) Advance(ctx context.Context) error {
	next, err := s.advance(ctx)
	if err != nil || next == nil {
		return err
	}
	return s.load(ctx, *next)
}

func (s *Session) advance(ctx context.Context) (*target, error) {
	s.mu.Lock()
	defer s.unlock()
	if err := s.ready(); err != nil {
		return nil, err
	}
	if s.phase == AwaitingChoice {
		return nil, ErrChoiceRequired
	}
	return s.navigate(ctx), nil
}

// Choose applies the i-th choice of the current line and follows its target.
func (s *Session) Choose(ctx context.Context, i int) error {
	next, err := s.choose(ctx, i)
	if err != nil || next == nil {
		return err
	}
	return s.load(ctx, *next)
}

func (s *Session) choose(ctx context.Context, i int) (*target, error) {
	s.mu.Lock()
	defer s.unlock()
	if err := s.ready(); err != nil {
		return nil, err
	}
	line := s.chapter.Lines[s.index]
	choice, ok := line.Choice(i)
	if !ok {
		return nil, fmt.Errorf("%w: %d (line %d has %d choices)", ErrInvalidChoice, i, line.ID, line.ChoiceCount())
	}

	s.scores.ApplyChoice(choice)
	s.entries = append(s.entries, LogEntry{ChapterID: s.state.ChapterID, LineID: line.ID, Choice: choice.Text})
	s.phase = Navigating

	if choice.HasTarget() {
		if j := s.chapter.IndexOf(choice.Target); j >= 0 {
			s.display(j)
			return nil, nil
		}
		s.logger.Printf("engine: %v", &NavigationError{ChapterID: s.state.ChapterID, FromID: line.ID, TargetID: choice.Target})
	}
	return s.sequential(ctx), nil
}

// ready rejects input the current state cannot accept.
func (s *Session) ready() error {
	if s.busy() {
		return ErrBusy
	}
	switch s.phase {
	case Idle:
		return ErrNotRunning
	case StoryComplete:
		return ErrStoryComplete
	case Failed:
		return fmt.Errorf("%w: %v", ErrFailed, s.failure)
	}
	return nil
}

// navigate applies the transition rules from the current line: an explicit
// end, then an explicit jump, then the next line in sequence.
func (s *Session) navigate(ctx context.Context) *target {
	line := s.chapter.Lines[s.index]
	s.phase = Navigating

	if line.HasExplicitNext() {
		next := line.NextID()
		if next == story.EndOfStory {
			s.complete(ctx)
			return nil
		}
		if j := s.chapter.IndexOf(next); j >= 0 {
			s.display(j)
			return nil
		}
		s.logger.Printf("engine: %v", &NavigationError{ChapterID: s.state.ChapterID, FromID: line.ID, TargetID: next})
	}
	return s.sequential(ctx)
}

func (s *Session) sequential(ctx context.Context) *target {
	if s.index+1 < s.chapter.Len() {
		s.display(s.index + 1)
		return nil
	}
	return s.chapterComplete(ctx)
}

// chapterComplete auto saves and either requests the next chapter or ends the
// story. The save points at the next chapter so resuming starts there.
func (s *Session) chapterComplete(ctx context.Context) *target {
	s.phase = ChapterComplete
	if !s.project.HasNextChapter(s.state.ChapterID) {
		s.complete(ctx)
		return nil
	}
	next := s.state.ChapterID + 1
	s.logger.Printf("engine: chapter %d complete, loading chapter %d", s.state.ChapterID, next)
	s.state.ChapterID = next
	s.state.LineID = next * story.LineIDBase
	s.autoSave(ctx)
	t := s.beginLoad(next, s.state.LineID)
	return &t
}

// complete evaluates the ending, records it and shows it with its epilogue.
func (s *Session) complete(ctx context.Context) {
	res := ending.Evaluate(s.state, s.project.CoreValues, s.project.NPCs, s.project.TrueValue, s.policy)
	s.state.RecordEnding(res.ID())
	s.result = &res
	s.phase = StoryComplete
	s.autoSave(ctx)
	s.logger.Printf("engine: story complete ending=%s romances=%v", res.ID(), res.Romances)

	var epilogue []story.Line
	if e, ok := s.catalog.Lookup(res); ok {
		epilogue = e.Playable()
	}
	s.outbox = append(s.outbox, func() { s.presenter.ShowEnding(res, epilogue) })
}

// display shows the line at position i of the current chapter.
func (s *Session) display(i int) {
	line := s.chapter.Lines[i].Clone()
	s.index = i
	s.state.LineID = line.ID
	if cg := line.Directives.CG; cg != "" && s.state.Unlock(cg) {
		s.logger.Printf("engine: unlocked %s", cg)
	}
	s.entries = append(s.entries, LogEntry{
		ChapterID: s.state.ChapterID,
		LineID:    line.ID,
		Speaker:   line.Speaker,
		Text:      line.Text,
	})
	if line.HasChoices() {
		s.phase = AwaitingChoice
	} else {
		s.phase = Displaying
	}
	s.outbox = append(s.outbox, func() { s.presenter.DisplayLine(line) })
}

func (s *Session) autoSave(ctx context.Context) {
	if s.saver == nil {
		return
	}
	if err := s.saver.AutoSave(ctx, s.state.Clone()); err != nil {
		s.logger.Printf("engine: auto save failed: %v", err)
	}
}

// State returns the current progression state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Busy reports whether input would currently be rejected with ErrBusy.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy()
}

// Current returns the line on screen.
func (s *Session) Current() (story.Line, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.phase {
	case Displaying, AwaitingChoice:
		return s.chapter.Lines[s.index].Clone(), true
	}
	return story.Line{}, false
}

// Snapshot returns a copy of the game state.
func (s *Session) Snapshot() story.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Log returns the dialogue log of chapterID, or of the whole session when
// chapterID is 0.
func (s *Session) Log(chapterID int) []LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]LogEntry, 0, len(s.entries))
	for _, e := range s.entries {
		if chapterID == 0 || e.ChapterID == chapterID {
			out = append(out, e)
		}
	}
	return out
}

// Result returns the ending once the story is complete.
func (s *Session) Result() (ending.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return ending.Result{}, false
	}
	return *s.result, true
}

// Err returns the failure that put the session in the Failed state.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failure
}

func (s *Session) Project() story.Project {
	return s.project
}
