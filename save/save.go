// Package save manages the fixed set of save slots of a project.
package save

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"novel_ai/story"
)

const (
	SlotCount = 10
	QuickSlot = 0
	AutoSlot  = SlotCount - 1
)

var (
	ErrInvalidSlot = errors.New("invalid save slot")
	ErrNotFound    = errors.New("save not found")
)

// Slot is one stored save.
type Slot struct {
	Index   int
	Name    string
	SavedAt time.Time
	State   story.GameState
}

// Store persists slots per project. GetSave returns ErrNotFound for an empty
// slot.
type Store interface {
	PutSave(ctx context.Context, projectID string, slot Slot) error
	GetSave(ctx context.Context, projectID string, index int) (Slot, error)
	DeleteSave(ctx context.Context, projectID string, index int) error
	ListSaves(ctx context.Context, projectID string) ([]Slot, error)
}

// ValidSlot returns ErrInvalidSlot when index is outside the slot range.
func ValidSlot(index int) error {
	if index < 0 || index >= SlotCount {
		return fmt.Errorf("%w: %d", ErrInvalidSlot, index)
	}
	return nil
}

// DefaultName is the name given to a save without one.
func DefaultName(index int) string {
	switch index {
	case QuickSlot:
		return "Quick Save"
	case AutoSlot:
		return "Auto Save"
	default:
		return fmt.Sprintf("Save %d", index+1)
	}
}

type Manager struct {
	store     Store
	projectID string
	logger    *log.Logger
	now       func() time.Time
}

func NewManager(store Store, projectID string, logger *log.Logger) (*Manager, error) {
	if store == nil {
		return nil, errors.New("save manager requires a store")
	}
	if projectID == "" {
		return nil, errors.New("save manager requires a project id")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{store: store, projectID: projectID, logger: logger, now: time.Now}, nil
}

// Save writes a copy of state into the slot, replacing what was there.
func (m *Manager) Save(ctx context.Context, index int, name string, state story.GameState) (Slot, error) {
	if err := ValidSlot(index); err != nil {
		return Slot{}, err
	}
	if name == "" {
		name = DefaultName(index)
	}
	slot := Slot{
		Index:   index,
		Name:    name,
		SavedAt: m.now().UTC().Truncate(time.Millisecond),
		State:   state.Clone(),
	}
	if err := m.store.PutSave(ctx, m.projectID, slot); err != nil {
		return Slot{}, fmt.Errorf("save slot %d: %w", index, err)
	}
	m.logger.Printf("save: slot %d saved at chapter %d line %d", index, state.ChapterID, state.LineID)
	return slot, nil
}

func (m *Manager) QuickSave(ctx context.Context, state story.GameState) (Slot, error) {
	return m.Save(ctx, QuickSlot, "", state)
}

// AutoSave writes the auto save slot. The engine calls it at chapter
// boundaries and on story completion.
func (m *Manager) AutoSave(ctx context.Context, state story.GameState) error {
	_, err := m.Save(ctx, AutoSlot, "", state)
	return err
}

// Load returns the state stored in the slot.
func (m *Manager) Load(ctx context.Context, index int) (story.GameState, error) {
	if err := ValidSlot(index); err != nil {
		return story.GameState{}, err
	}
	slot, err := m.store.GetSave(ctx, m.projectID, index)
	if err != nil {
		return story.GameState{}, fmt.Errorf("load slot %d: %w", index, err)
	}
	return slot.State, nil
}

func (m *Manager) Delete(ctx context.Context, index int) error {
	if err := ValidSlot(index); err != nil {
		return err
	}
	if err := m.store.DeleteSave(ctx, m.projectID, index); err != nil {
		return fmt.Errorf("delete slot %d: %w", index, err)
	}
	return nil
}

// List returns the occupied slots ordered by index.
func (m *Manager) List(ctx context.Context) ([]Slot, error) {
	slots, err := m.store.ListSaves(ctx, m.projectID)
	if err != nil {
		return nil, fmt.Errorf("list saves: %w", err)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].Index < slots[j].Index })
	return slots, nil
}
