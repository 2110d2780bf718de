// Package ending classifies a finished playthrough.
package ending

import (
	"fmt"
	"sort"

	"novel_ai/story"
)

// Kind is the mutually exclusive ending classification.
type Kind string

const (
	KindTrue   Kind = "true"
	KindValue  Kind = "value"
	KindNormal Kind = "normal"
)

// Policy holds the thresholds used by Evaluate.
type Policy struct {
	TrueValue     int `json:"true_value" yaml:"true_value"`
	TrueAffection int `json:"true_affection" yaml:"true_affection"`
	Value         int `json:"value" yaml:"value"`
	Romance       int `json:"romance" yaml:"romance"`
}

// DefaultPolicy returns the standard thresholds.
func DefaultPolicy() Policy {
	return Policy{
		TrueValue:     70,
		TrueAffection: 70,
		Value:         60,
		Romance:       80,
	}
}

// WithDefaults fills zero thresholds from DefaultPolicy.
func (p Policy) WithDefaults() Policy {
	d := DefaultPolicy()
	if p.TrueValue == 0 {
		p.TrueValue = d.TrueValue
	}
	if p.TrueAffection == 0 {
		p.TrueAffection = d.TrueAffection
	}
	if p.Value == 0 {
		p.Value = d.Value
	}
	if p.Romance == 0 {
		p.Romance = d.Romance
	}
	return p
}

// Result is the outcome of a playthrough.
type Result struct {
	Kind          Kind     `json:"kind"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	DominantValue string   `json:"dominant_value"`
	Romances      []string `json:"romances"`
}

// ID identifies the ending for the unlocked endings list.
func (r Result) ID() string {
	if r.Kind == KindValue {
		return fmt.Sprintf("%s:%s", r.Kind, r.DominantValue)
	}
	return string(r.Kind)
}

// Evaluate decides the ending reached by state. It does not modify state.
func Evaluate(state story.GameState, values []story.CoreValue, characters []story.Character, trueValue string, policy Policy) Result {
	dominant, score := Dominant(state.CoreValueScores, values)
	res := Result{DominantValue: dominant, Romances: []string{}}

	switch {
	case trueValue != "" && dominant == trueValue && score >= policy.TrueValue && MaxAffection(state.Affections) >= policy.TrueAffection:
		res.Kind = KindTrue
		res.Title = "True Ending"
		res.Description = fmt.Sprintf("You have mastered %s and reached the ultimate ending.", dominant)
	case dominant != "" && score >= policy.Value:
		res.Kind = KindValue
		res.Title = fmt.Sprintf("%s Ending", dominant)
		res.Description = fmt.Sprintf("Your journey ends with %s as your guiding principle.", dominant)
	default:
		res.Kind = KindNormal
		res.Title = "Normal Ending"
		res.Description = "Your journey ends, though your path remains unclear."
	}

	for _, c := range characters {
		if !c.Romanceable {
			continue
		}
		affection, ok := state.Affections[c.Name]
		if ok && affection >= policy.Romance {
			res.Romances = append(res.Romances, c.Name)
		}
	}
	return res
}

// Dominant returns the declared core value with the highest score. Ties go to
// the value declared first. It returns "" when no values are declared.
func Dominant(scores map[string]int, values []story.CoreValue) (string, int) {
	if len(values) == 0 {
		return "", 0
	}
	ordered := make([]story.CoreValue, len(values))
	copy(ordered, values)
	sort.SliceStable(ordered, func(i, j int) bool {
		return scores[ordered[i].Name] > scores[ordered[j].Name]
	})
	top := ordered[0].Name
	return top, scores[top]
}

// MaxAffection returns the highest affection, or 0 when there are none.
func MaxAffection(affections map[string]int) int {
	first := true
	best := 0
	for _, v := range affections {
		if first || v > best {
			best = v
			first = false
		}
	}
	return best
}
