// Package score owns the numeric game state: skills, the core values derived
// from them, character affection and the choice history.
//
// Scores are deliberately unbounded. Nothing here clamps a value, because
// bounds would change which ending a playthrough reaches.
package score

import (
	"errors"

	"novel_ai/story"
)

// ErrAlreadyInitialized is returned when Initialize runs twice in a session.
var ErrAlreadyInitialized = errors.New("score accumulator already initialized")

// Accumulator applies choice impacts to a GameState it does not own the
// lifetime of. It is not safe for concurrent use.
type Accumulator struct {
	state       *story.GameState
	values      []story.CoreValue
	skills      map[string]struct{}
	characters  map[string]struct{}
	initialized bool
}

// New returns an accumulator bound to state.
func New(state *story.GameState) *Accumulator {
	return &Accumulator{state: state}
}

// Initialize zeroes every declared skill and core value and sets each
// character's affection to its declared starting value.
func (a *Accumulator) Initialize(values []story.CoreValue, characters []story.Character) error {
	if a.initialized {
		return ErrAlreadyInitialized
	}
	a.bind(values, characters)

	a.state.SkillScores = make(map[string]int, len(a.skills))
	for skill := range a.skills {
		a.state.SkillScores[skill] = 0
	}
	a.state.Affections = make(map[string]int, len(characters))
	for _, c := range characters {
		if c.Name == "" {
			continue
		}
		a.state.Affections[c.Name] = c.InitialAffection
	}
	if a.state.PreviousChoices == nil {
		a.state.PreviousChoices = []string{}
	}
	a.Recompute()
	a.initialized = true
	return nil
}

// Restore attaches to a state loaded from a save. Declared keys missing from
// the save are filled in and core values are recomputed from skills.
func (a *Accumulator) Restore(values []story.CoreValue, characters []story.Character) error {
	if a.initialized {
		return ErrAlreadyInitialized
	}
	a.bind(values, characters)

	if a.state.SkillScores == nil {
		a.state.SkillScores = map[string]int{}
	}
	for skill := range a.skills {
		if _, ok := a.state.SkillScores[skill]; !ok {
			a.state.SkillScores[skill] = 0
		}
	}
	if a.state.Affections == nil {
		a.state.Affections = map[string]int{}
	}
	for _, c := range characters {
		if _, ok := a.state.Affections[c.Name]; !ok && c.Name != "" {
			a.state.Affections[c.Name] = c.InitialAffection
		}
	}
	a.Recompute()
	a.initialized = true
	return nil
}

func (a *Accumulator) bind(values []story.CoreValue, characters []story.Character) {
	a.values = values
	a.skills = story.DeclaredSkills(values)
	a.characters = make(map[string]struct{}, len(characters))
	for _, c := range characters {
		a.characters[c.Name] = struct{}{}
	}
}

// ApplyChoice applies the choice's skill deltas, recomputes every core value,
// applies affection deltas and records the choice text. Impacts naming an
// undeclared skill or character are ignored.
func (a *Accumulator) ApplyChoice(choice story.Choice) {
	for skill, delta := range choice.SkillImpacts {
		if _, ok := a.skills[skill]; !ok {
			continue
		}
		a.state.SkillScores[skill] += delta
	}
	a.Recompute()

	for name, delta := range choice.AffectionImpacts {
		if _, ok := a.characters[name]; !ok {
			continue
		}
		a.state.Affections[name] += delta
	}
	a.state.PreviousChoices = append(a.state.PreviousChoices, choice.Text)
}

// Recompute rebuilds every core value score from its skills.
func (a *Accumulator) Recompute() {
	scores := make(map[string]int, len(a.values))
	for _, v := range a.values {
		total := 0
		for _, skill := range v.Skills {
			total += a.state.SkillScores[skill]
		}
		scores[v.Name] = total
	}
	a.state.CoreValueScores = scores
}

// Initialized reports whether Initialize or Restore has run.
func (a *Accumulator) Initialized() bool {
	return a.initialized
}
