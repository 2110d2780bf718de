package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"novel_ai/ending"
)

const minimalProject = `
title: Test Story
total_chapters: 2
true_value: Courage
core_values:
  - name: Courage
    skills: [Swordplay]
npcs:
  - name: Elise
    romanceable: true
    initial_affection: 5
ending_policy:
  value: 50
epilogues:
  - kind: normal
    title: Quiet
    lines:
      - speaker: Narrator
        text: It ends.
`

func TestParseProject(t *testing.T) {
	def, err := ParseProject([]byte(minimalProject))
	if err != nil {
		t.Fatalf("parse project: %v", err)
	}
	p := def.Project
	if p.Title != "Test Story" || p.TotalChapters != 2 || p.TrueValue != "Courage" {
		t.Fatalf("unexpected project %+v", p)
	}
	if len(p.NPCs) != 1 || !p.NPCs[0].Romanceable || p.NPCs[0].InitialAffection != 5 {
		t.Fatalf("unexpected npcs %+v", p.NPCs)
	}
	if def.Policy.Value != 50 || def.Policy.TrueValue != 70 || def.Policy.Romance != 80 {
		t.Fatalf("unexpected policy %+v", def.Policy)
	}
	e, ok := def.Catalog.Lookup(ending.Result{Kind: ending.KindNormal})
	if !ok || e.Lines[0].Text != "It ends." {
		t.Fatalf("expected normal epilogue, got %+v", e)
	}
}

func TestParseProjectDerivesStableID(t *testing.T) {
	a, err := ParseProject([]byte(minimalProject))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	b, err := ParseProject([]byte(minimalProject))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if a.Project.ID == "" || a.Project.ID != b.Project.ID {
		t.Fatalf("ids %q and %q should be equal and non-empty", a.Project.ID, b.Project.ID)
	}

	explicit, err := ParseProject([]byte("id: ashen\n" + minimalProject))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if explicit.Project.ID != "ashen" {
		t.Fatalf("explicit id = %q", explicit.Project.ID)
	}
}

func TestParseProjectRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{name: "syntax", yaml: "title: [", want: "decode project file"},
		{name: "no chapters", yaml: "title: x\n", want: "total chapters"},
		{name: "unknown true value", yaml: "title: x\ntotal_chapters: 1\ntrue_value: Greed\n", want: "true value"},
		{name: "bad epilogue", yaml: "title: x\ntotal_chapters: 1\nepilogues:\n  - kind: secret\n    title: y\n", want: "unknown kind"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseProject([]byte(tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadProject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "project.yaml")
	if err := os.WriteFile(path, []byte(minimalProject), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadProject(path); err != nil {
		t.Fatalf("load project: %v", err)
	}
	if _, err := LoadProject(filepath.Join(t.TempDir(), "none.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not exist error, got %v", err)
	}
}

func TestSampleProjectIsValid(t *testing.T) {
	def, err := LoadProject(filepath.Join("..", "project.yaml"))
	if err != nil {
		t.Fatalf("load sample project: %v", err)
	}
	if missing := def.Catalog.Missing(); len(missing) != 0 {
		t.Fatalf("sample project lacks epilogues for %v", missing)
	}
}
