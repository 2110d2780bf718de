package story

import (
	"fmt"
	"sort"
	"strings"
)

// CoreValue is a named score derived as the sum of its skills.
type CoreValue struct {
	Name   string   `json:"name" yaml:"name"`
	Skills []string `json:"skills" yaml:"skills"`
}

// Character is a person in the story. Only NPCs carry affection.
type Character struct {
	Name             string `json:"name" yaml:"name"`
	Role             string `json:"role,omitempty" yaml:"role,omitempty"`
	Personality      string `json:"personality,omitempty" yaml:"personality,omitempty"`
	Background       string `json:"background,omitempty" yaml:"background,omitempty"`
	Romanceable      bool   `json:"romanceable,omitempty" yaml:"romanceable,omitempty"`
	InitialAffection int    `json:"initial_affection,omitempty" yaml:"initial_affection,omitempty"`
}

// GameState is the mutable state of one play session.
type GameState struct {
	ChapterID       int            `json:"chapter_id"`
	LineID          int            `json:"line_id"`
	SkillScores     map[string]int `json:"skill_scores"`
	CoreValueScores map[string]int `json:"core_value_scores"`
	Affections      map[string]int `json:"affections"`
	PreviousChoices []string       `json:"previous_choices"`
	UnlockedContent []string       `json:"unlocked_content"`
	UnlockedEndings []string       `json:"unlocked_endings,omitempty"`
}

// NewGameState returns an empty state positioned at the start of chapter 1.
func NewGameState() GameState {
	return GameState{
		ChapterID:       1,
		LineID:          LineIDBase,
		SkillScores:     map[string]int{},
		CoreValueScores: map[string]int{},
		Affections:      map[string]int{},
		PreviousChoices: []string{},
		UnlockedContent: []string{},
	}
}

// Clone returns a deep copy of the state.
func (s GameState) Clone() GameState {
	out := s
	out.SkillScores = cloneInts(s.SkillScores)
	out.CoreValueScores = cloneInts(s.CoreValueScores)
	out.Affections = cloneInts(s.Affections)
	out.PreviousChoices = cloneStrings(s.PreviousChoices)
	out.UnlockedContent = cloneStrings(s.UnlockedContent)
	out.UnlockedEndings = cloneStrings(s.UnlockedEndings)
	return out
}

// Unlock records a content id once. It reports whether the id was new.
func (s *GameState) Unlock(id string) bool {
	return appendUnique(&s.UnlockedContent, id)
}

// RecordEnding records a reached ending once.
func (s *GameState) RecordEnding(id string) bool {
	return appendUnique(&s.UnlockedEndings, id)
}

// PromptString renders the state for generator prompts. Map entries are
// sorted so identical states render identically.
func (s GameState) PromptString() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Current Chapter: %d\n", s.ChapterID)
	writeScores(&b, "Core Values", s.CoreValueScores)
	writeScores(&b, "Skills", s.SkillScores)
	writeScores(&b, "Character Affections", s.Affections)
	if len(s.PreviousChoices) > 0 {
		fmt.Fprintf(&b, "Previous Choices: %s\n", strings.Join(s.PreviousChoices, ", "))
	}
	return b.String()
}

func writeScores(b *strings.Builder, label string, scores map[string]int) {
	if len(scores) == 0 {
		return
	}
	parts := make([]string, 0, len(scores))
	for _, name := range SortedKeys(scores) {
		parts = append(parts, fmt.Sprintf("%s=%d", name, scores[name]))
	}
	fmt.Fprintf(b, "%s: %s\n", label, strings.Join(parts, ", "))
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DeclaredSkills returns the set of every skill named by any core value.
func DeclaredSkills(values []CoreValue) map[string]struct{} {
	skills := make(map[string]struct{})
	for _, v := range values {
		for _, s := range v.Skills {
			skills[s] = struct{}{}
		}
	}
	return skills
}

func appendUnique(list *[]string, id string) bool {
	if id == "" {
		return false
	}
	for _, existing := range *list {
		if existing == id {
			return false
		}
	}
	*list = append(*list, id)
	return true
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string{}, in...)
}
