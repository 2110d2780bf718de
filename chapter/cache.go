package chapter

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"

	"novel_ai/story"
)

// Key identifies a cached chapter. Variant is empty unless chapters branch by
// game state, in which case it holds StateVariant of the requesting state.
type Key struct {
	ProjectID string
	ChapterID int
	Variant   string
}

func (k Key) String() string {
	s := fmt.Sprintf("%s_Ch%d", k.ProjectID, k.ChapterID)
	if k.Variant != "" {
		s += "_" + k.Variant
	}
	return s
}

// Cache stores generated chapters. A Put followed by a Get with the same key
// must return an equivalent chapter.
type Cache interface {
	Get(ctx context.Context, key Key) (story.Chapter, bool, error)
	Put(ctx context.Context, key Key, ch story.Chapter) error
}

// initialVariant is the variant of a state with no scores at all.
const initialVariant = "00000000"

// StateVariant buckets a state's core values and affections to the nearest
// ten below and hashes them, so nearby playthroughs share cached chapters.
func StateVariant(state story.GameState) string {
	parts := make([]string, 0, len(state.CoreValueScores)+len(state.Affections))
	for _, name := range story.SortedKeys(state.CoreValueScores) {
		parts = append(parts, fmt.Sprintf("CV:%s:%d", name, bucket(state.CoreValueScores[name])))
	}
	for _, name := range story.SortedKeys(state.Affections) {
		parts = append(parts, fmt.Sprintf("AF:%s:%d", name, bucket(state.Affections[name])))
	}
	if len(parts) == 0 {
		return initialVariant
	}
	return fmt.Sprintf("%016x", xxhash.Sum64String(strings.Join(parts, ",")))
}

func bucket(v int) int {
	return (v / 10) * 10
}

// MemoryCache is an in-process Cache. It hands out copies so cached chapters
// cannot be modified by callers.
type MemoryCache struct {
	mu       sync.RWMutex
	chapters map[string]story.Chapter
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{chapters: make(map[string]story.Chapter)}
}

func (c *MemoryCache) Get(_ context.Context, key Key) (story.Chapter, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ch, ok := c.chapters[key.String()]
	if !ok {
		return story.Chapter{}, false, nil
	}
	return ch.Clone(), true, nil
}

func (c *MemoryCache) Put(_ context.Context, key Key, ch story.Chapter) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chapters[key.String()] = ch.Clone()
	return nil
}

// Len returns the number of cached chapters.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.chapters)
}
