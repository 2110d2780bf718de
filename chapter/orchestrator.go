// Package chapter resolves chapters from the cache or, on a miss, from the
// content generator.
package chapter

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"novel_ai/story"
)

// DefaultGenerateTimeout bounds a single generator call.
const DefaultGenerateTimeout = 90 * time.Second

// Context is the generator's read-only view of the game. State is a deep
// copy; the generator never sees the live session state.
type Context struct {
	ProjectID string
	ChapterID int
	State     story.GameState
}

// NewContext copies snapshot into a generator context.
func NewContext(projectID string, chapterID int, snapshot story.GameState) Context {
	return Context{
		ProjectID: projectID,
		ChapterID: chapterID,
		State:     snapshot.Clone(),
	}
}

// Draft is what the generator produces for one chapter.
type Draft struct {
	Lines  []story.Line
	Prompt string
}

// Generator produces chapter content.
type Generator interface {
	Generate(ctx context.Context, gc Context) (Draft, error)
}

// Options configures an Orchestrator.
type Options struct {
	ProjectID string
	// GenerateTimeout bounds each generator call. Zero uses
	// DefaultGenerateTimeout.
	GenerateTimeout time.Duration
	// CacheByState keys chapters by StateVariant of the requesting state.
	CacheByState bool
	Logger       *log.Logger
}

// Orchestrator resolves chapters. At most one generator call runs per key;
// concurrent requests for the same key wait for it.
type Orchestrator struct {
	cache     Cache
	generator Generator
	projectID string
	timeout   time.Duration
	byState   bool
	logger    *log.Logger
	tracer    trace.Tracer
	now       func() time.Time

	group    singleflight.Group
	inFlight atomic.Int32
}

// New creates an orchestrator.
func New(cache Cache, generator Generator, opts Options) (*Orchestrator, error) {
	if cache == nil || generator == nil {
		return nil, errors.New("chapter orchestrator requires a cache and a generator")
	}
	if opts.ProjectID == "" {
		return nil, errors.New("chapter orchestrator requires a project id")
	}
	if opts.GenerateTimeout <= 0 {
		opts.GenerateTimeout = DefaultGenerateTimeout
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Orchestrator{
		cache:     cache,
		generator: generator,
		projectID: opts.ProjectID,
		timeout:   opts.GenerateTimeout,
		byState:   opts.CacheByState,
		logger:    opts.Logger,
		tracer:    otel.Tracer("novel_ai/chapter"),
		now:       time.Now,
	}, nil
}

// Generating reports whether a generator call is in flight.
func (o *Orchestrator) Generating() bool {
	return o.inFlight.Load() > 0
}

// Key returns the cache key for chapterID requested from snapshot.
func (o *Orchestrator) Key(chapterID int, snapshot story.GameState) Key {
	key := Key{ProjectID: o.projectID, ChapterID: chapterID}
	if o.byState {
		key.Variant = StateVariant(snapshot)
	}
	return key
}

// Resolve returns the chapter from the cache, generating and caching it on a
// miss. Generation failures are returned as *GenerationError.
func (o *Orchestrator) Resolve(ctx context.Context, chapterID int, snapshot story.GameState) (story.Chapter, error) {
	ctx, span := o.tracer.Start(ctx, "chapter.Resolve", trace.WithAttributes(
		attribute.String("project.id", o.projectID),
		attribute.Int("chapter.id", chapterID),
	))
	defer span.End()

	key := o.Key(chapterID, snapshot)
	if ch, ok := o.lookup(ctx, key); ok {
		span.SetAttributes(attribute.Bool("chapter.cache_hit", true))
		return ch, nil
	}
	span.SetAttributes(attribute.Bool("chapter.cache_hit", false))
	o.logger.Printf("chapter: cache miss key=%s", key)

	gc := NewContext(o.projectID, chapterID, snapshot)
	// The shared call outlives any single waiter; it is bounded by the
	// generation timeout instead.
	shared := context.WithoutCancel(ctx)
	result := o.group.DoChan(key.String(), func() (any, error) {
		return o.generate(shared, key, gc)
	})

	select {
	case <-ctx.Done():
		err := &GenerationError{ProjectID: o.projectID, ChapterID: chapterID, Cause: ctx.Err()}
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolve canceled")
		return story.Chapter{}, err
	case res := <-result:
		if res.Err != nil {
			span.RecordError(res.Err)
			span.SetStatus(codes.Error, "generation failed")
			return story.Chapter{}, res.Err
		}
		span.SetAttributes(attribute.Bool("chapter.shared", res.Shared))
		return res.Val.(story.Chapter).Clone(), nil
	}
}

func (o *Orchestrator) lookup(ctx context.Context, key Key) (story.Chapter, bool) {
	ch, ok, err := o.cache.Get(ctx, key)
	if err != nil {
		o.logger.Printf("chapter: cache read failed key=%s, regenerating: %v", key, err)
		return story.Chapter{}, false
	}
	if !ok {
		return story.Chapter{}, false
	}
	if err := story.ValidateLines(ch.Lines); err != nil {
		o.logger.Printf("chapter: cached chapter key=%s is unusable, regenerating: %v", key, err)
		return story.Chapter{}, false
	}
	return ch, true
}

func (o *Orchestrator) generate(ctx context.Context, key Key, gc Context) (story.Chapter, error) {
	// A flight for this key may have completed between the caller's miss and
	// this call starting.
	if ch, ok := o.lookup(ctx, key); ok {
		return ch, nil
	}

	o.inFlight.Add(1)
	defer o.inFlight.Add(-1)

	genCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	fail := func(cause error) (story.Chapter, error) {
		o.logger.Printf("chapter: generation failed key=%s: %v", key, cause)
		return story.Chapter{}, &GenerationError{ProjectID: o.projectID, ChapterID: gc.ChapterID, Cause: cause}
	}

	start := o.now()
	draft, err := o.generator.Generate(genCtx, gc)
	if err != nil {
		return fail(err)
	}
	if len(draft.Lines) == 0 {
		return fail(ErrEmptyChapter)
	}
	if err := story.ValidateLines(draft.Lines); err != nil {
		return fail(err)
	}

	ch := story.Chapter{
		ID:           gc.ChapterID,
		Lines:        draft.Lines,
		Prompt:       draft.Prompt,
		Snapshot:     gc.State,
		GenerationID: uuid.NewString(),
		GeneratedAt:  o.now().UTC(),
	}
	if err := o.cache.Put(ctx, key, ch); err != nil {
		o.logger.Printf("chapter: cache write failed key=%s: %v", key, err)
	}
	o.logger.Printf("chapter: generated key=%s id=%s lines=%d in %s", key, ch.GenerationID, len(ch.Lines), o.now().Sub(start).Round(time.Millisecond))
	return ch, nil
}

// String describes the orchestrator for logs.
func (o *Orchestrator) String() string {
	return fmt.Sprintf("chapter orchestrator project=%s timeout=%s by_state=%v", o.projectID, o.timeout, o.byState)
}
