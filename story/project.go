package story

import (
	"errors"
	"fmt"
	"strings"
)

// Project is the static definition of one visual novel.
type Project struct {
	ID            string      `json:"id" yaml:"id"`
	Title         string      `json:"title" yaml:"title"`
	Premise       string      `json:"premise" yaml:"premise"`
	Genre         string      `json:"genre,omitempty" yaml:"genre,omitempty"`
	Tone          string      `json:"tone,omitempty" yaml:"tone,omitempty"`
	TotalChapters int         `json:"total_chapters" yaml:"total_chapters"`
	CoreValues    []CoreValue `json:"core_values" yaml:"core_values"`
	TrueValue     string      `json:"true_value,omitempty" yaml:"true_value,omitempty"`
	Player        Character   `json:"player" yaml:"player"`
	NPCs          []Character `json:"npcs" yaml:"npcs"`
}

// HasNextChapter reports whether the project defines a chapter after id.
func (p Project) HasNextChapter(id int) bool {
	return id < p.TotalChapters
}

// Validate checks the project definition for structural mistakes.
func (p Project) Validate() error {
	var errs []error
	if strings.TrimSpace(p.ID) == "" {
		errs = append(errs, errors.New("project id is required"))
	}
	if p.TotalChapters < 1 {
		errs = append(errs, fmt.Errorf("total chapters must be at least 1, got %d", p.TotalChapters))
	}
	values := make(map[string]struct{}, len(p.CoreValues))
	for _, v := range p.CoreValues {
		if strings.TrimSpace(v.Name) == "" {
			errs = append(errs, errors.New("core value name is required"))
			continue
		}
		if _, dup := values[v.Name]; dup {
			errs = append(errs, fmt.Errorf("duplicate core value %q", v.Name))
		}
		values[v.Name] = struct{}{}
	}
	if p.TrueValue != "" {
		if _, ok := values[p.TrueValue]; !ok {
			errs = append(errs, fmt.Errorf("true value %q is not a declared core value", p.TrueValue))
		}
	}
	npcs := make(map[string]struct{}, len(p.NPCs))
	for _, c := range p.NPCs {
		if strings.TrimSpace(c.Name) == "" {
			errs = append(errs, errors.New("npc name is required"))
			continue
		}
		if _, dup := npcs[c.Name]; dup {
			errs = append(errs, fmt.Errorf("duplicate npc %q", c.Name))
		}
		npcs[c.Name] = struct{}{}
	}
	return errors.Join(errs...)
}
