// Package storage persists generated chapters and save slots in SQLite.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"novel_ai/chapter"
	"novel_ai/save"
	"novel_ai/storage/migrations"
	"novel_ai/story"
)

// Store implements chapter.Cache and save.Store.
type Store struct {
	db *sql.DB
}

var (
	_ chapter.Cache = (*Store)(nil)
	_ save.Store    = (*Store)(nil)
)

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

// Open opens the database at path and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(context.Background(), db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get returns the cached chapter for key.
func (s *Store) Get(ctx context.Context, key chapter.Key) (story.Chapter, bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM chapters WHERE project_id = ? AND chapter_id = ? AND variant = ?`,
		key.ProjectID, key.ChapterID, key.Variant,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return story.Chapter{}, false, nil
	}
	if err != nil {
		return story.Chapter{}, false, fmt.Errorf("get chapter %s: %w", key, err)
	}
	var ch story.Chapter
	if err := json.Unmarshal([]byte(payload), &ch); err != nil {
		return story.Chapter{}, false, fmt.Errorf("decode chapter %s: %w", key, err)
	}
	return ch, true, nil
}

// Put stores ch under key, replacing any previous entry.
func (s *Store) Put(ctx context.Context, key chapter.Key, ch story.Chapter) error {
	payload, err := json.Marshal(ch)
	if err != nil {
		return fmt.Errorf("encode chapter %s: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO chapters (project_id, chapter_id, variant, payload, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (project_id, chapter_id, variant) DO UPDATE SET
		   payload = excluded.payload,
		   created_at = excluded.created_at`,
		key.ProjectID, key.ChapterID, key.Variant, string(payload), toMillis(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("put chapter %s: %w", key, err)
	}
	return nil
}

func (s *Store) PutSave(ctx context.Context, projectID string, slot save.Slot) error {
	state, err := json.Marshal(slot.State)
	if err != nil {
		return fmt.Errorf("encode save state: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO saves (project_id, slot, name, chapter_id, line_id, saved_at, state)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (project_id, slot) DO UPDATE SET
		   name = excluded.name,
		   chapter_id = excluded.chapter_id,
		   line_id = excluded.line_id,
		   saved_at = excluded.saved_at,
		   state = excluded.state`,
		projectID, slot.Index, slot.Name, slot.State.ChapterID, slot.State.LineID, toMillis(slot.SavedAt), string(state),
	)
	if err != nil {
		return fmt.Errorf("put save: %w", err)
	}
	return nil
}

func (s *Store) GetSave(ctx context.Context, projectID string, index int) (save.Slot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT slot, name, saved_at, state FROM saves WHERE project_id = ? AND slot = ?`,
		projectID, index,
	)
	slot, err := scanSlot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return save.Slot{}, save.ErrNotFound
	}
	if err != nil {
		return save.Slot{}, fmt.Errorf("get save: %w", err)
	}
	return slot, nil
}

func (s *Store) DeleteSave(ctx context.Context, projectID string, index int) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM saves WHERE project_id = ? AND slot = ?`, projectID, index); err != nil {
		return fmt.Errorf("delete save: %w", err)
	}
	return nil
}

func (s *Store) ListSaves(ctx context.Context, projectID string) ([]save.Slot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT slot, name, saved_at, state FROM saves WHERE project_id = ? ORDER BY slot`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("list saves: %w", err)
	}
	defer rows.Close()

	var slots []save.Slot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list saves: %w", err)
	}
	return slots, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSlot(row scanner) (save.Slot, error) {
	var (
		slot    save.Slot
		savedAt int64
		state   string
	)
	if err := row.Scan(&slot.Index, &slot.Name, &savedAt, &state); err != nil {
		return save.Slot{}, err
	}
	slot.SavedAt = fromMillis(savedAt)
	if err := json.Unmarshal([]byte(state), &slot.State); err != nil {
		return save.Slot{}, fmt.Errorf("decode save slot %d: %w", slot.Index, err)
	}
	return slot, nil
}
