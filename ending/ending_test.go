package ending

import (
	"reflect"
	"testing"

	"novel_ai/story"
)

var values = []story.CoreValue{
	{Name: "Courage", Skills: []string{"Swordplay", "Defense"}},
	{Name: "Wisdom", Skills: []string{"Lore"}},
	{Name: "Ambition", Skills: []string{"Charm"}},
}

var characters = []story.Character{
	{Name: "Elise", Romanceable: true},
	{Name: "Marcus"},
	{Name: "Nadia", Romanceable: true},
}

func stateWith(coreValues, affections map[string]int) story.GameState {
	s := story.NewGameState()
	s.CoreValueScores = coreValues
	s.Affections = affections
	return s
}

func TestEvaluateScenarios(t *testing.T) {
	tests := []struct {
		name       string
		core       map[string]int
		affections map[string]int
		trueValue  string
		want       Kind
		dominant   string
	}{
		{
			name:       "true ending",
			core:       map[string]int{"Courage": 75, "Wisdom": 10, "Ambition": 0},
			affections: map[string]int{"Elise": 72, "Marcus": 5},
			trueValue:  "Courage",
			want:       KindTrue,
			dominant:   "Courage",
		},
		{
			name:       "true fails on affection only",
			core:       map[string]int{"Courage": 75, "Wisdom": 10, "Ambition": 0},
			affections: map[string]int{"Elise": 40, "Marcus": 5},
			trueValue:  "Courage",
			want:       KindValue,
			dominant:   "Courage",
		},
		{
			name:       "normal when every value is low",
			core:       map[string]int{"Courage": 40, "Wisdom": 59, "Ambition": -3},
			affections: map[string]int{"Elise": 95},
			trueValue:  "Courage",
			want:       KindNormal,
			dominant:   "Wisdom",
		},
		{
			name:       "true requires dominant to be the true value",
			core:       map[string]int{"Courage": 70, "Wisdom": 90},
			affections: map[string]int{"Elise": 90},
			trueValue:  "Courage",
			want:       KindValue,
			dominant:   "Wisdom",
		},
		{
			name:       "no true value configured",
			core:       map[string]int{"Courage": 100},
			affections: map[string]int{"Elise": 100},
			trueValue:  "",
			want:       KindValue,
			dominant:   "Courage",
		},
		{
			name:       "thresholds are inclusive",
			core:       map[string]int{"Courage": 70},
			affections: map[string]int{"Marcus": 70},
			trueValue:  "Courage",
			want:       KindTrue,
			dominant:   "Courage",
		},
		{
			name:       "value threshold inclusive",
			core:       map[string]int{"Ambition": 60},
			affections: map[string]int{},
			trueValue:  "Courage",
			want:       KindValue,
			dominant:   "Ambition",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(stateWith(tt.core, tt.affections), values, characters, tt.trueValue, DefaultPolicy())
			if got.Kind != tt.want {
				t.Fatalf("kind = %s, want %s", got.Kind, tt.want)
			}
			if got.DominantValue != tt.dominant {
				t.Fatalf("dominant = %q, want %q", got.DominantValue, tt.dominant)
			}
		})
	}
}

func TestEvaluateTitles(t *testing.T) {
	got := Evaluate(stateWith(map[string]int{"Wisdom": 65}, nil), values, characters, "Courage", DefaultPolicy())
	if got.Title != "Wisdom Ending" {
		t.Fatalf("title = %q", got.Title)
	}
	if got.ID() != "value:Wisdom" {
		t.Fatalf("id = %q", got.ID())
	}
}

func TestRomanceIsIndependentOfKind(t *testing.T) {
	for _, core := range []map[string]int{
		{"Courage": 90},
		{"Courage": 65},
		{"Courage": 10},
	} {
		affections := map[string]int{"Elise": 85, "Marcus": 99, "Nadia": 79}
		got := Evaluate(stateWith(core, affections), values, characters, "Courage", DefaultPolicy())
		if !reflect.DeepEqual(got.Romances, []string{"Elise"}) {
			t.Fatalf("%s ending: romances = %v, want [Elise]", got.Kind, got.Romances)
		}
	}
}

func TestDominantTieGoesToFirstDeclared(t *testing.T) {
	scores := map[string]int{"Courage": 50, "Wisdom": 80, "Ambition": 80}
	for i := 0; i < 20; i++ {
		name, score := Dominant(scores, values)
		if name != "Wisdom" || score != 80 {
			t.Fatalf("dominant = %s (%d), want Wisdom (80)", name, score)
		}
	}
	if name, _ := Dominant(scores, nil); name != "" {
		t.Fatalf("expected empty dominant without values, got %q", name)
	}
}

func TestNoCoreValuesIsNormal(t *testing.T) {
	got := Evaluate(stateWith(nil, nil), nil, nil, "", DefaultPolicy())
	if got.Kind != KindNormal || got.DominantValue != "" {
		t.Fatalf("unexpected result %+v", got)
	}
}

func TestMaxAffection(t *testing.T) {
	if got := MaxAffection(nil); got != 0 {
		t.Fatalf("empty = %d", got)
	}
	if got := MaxAffection(map[string]int{"a": -30, "b": -10}); got != -10 {
		t.Fatalf("negative = %d", got)
	}
}

func TestCustomPolicy(t *testing.T) {
	policy := Policy{Value: 20}.WithDefaults()
	if policy.TrueValue != 70 || policy.Romance != 80 || policy.Value != 20 {
		t.Fatalf("unexpected policy %+v", policy)
	}
	got := Evaluate(stateWith(map[string]int{"Courage": 25}, nil), values, characters, "", policy)
	if got.Kind != KindValue {
		t.Fatalf("kind = %s, want value", got.Kind)
	}
}

func TestCatalogLookup(t *testing.T) {
	catalog := NewCatalog([]Epilogue{
		{Kind: KindValue, Title: "Path of Wisdom", Lines: []story.Line{{Text: "w"}}},
		{Kind: KindValue, Title: "Generic", Lines: []story.Line{{Text: "g"}}},
		{Kind: KindNormal, Title: "Normal", Lines: []story.Line{{Text: "n1"}, {Text: "n2", Choices: []story.Choice{{Text: "x"}}}}},
		{Kind: KindTrue, Title: "With Elise", Lines: []story.Line{{Text: "t"}}},
	})

	e, ok := catalog.Lookup(Result{Kind: KindValue, DominantValue: "Wisdom"})
	if !ok || e.Title != "Path of Wisdom" {
		t.Fatalf("expected value-specific epilogue, got %+v", e)
	}
	e, ok = catalog.Lookup(Result{Kind: KindValue, DominantValue: "Courage"})
	if !ok || e.Title != "Path of Wisdom" {
		t.Fatalf("expected first value epilogue as fallback, got %+v", e)
	}
	if e, ok := catalog.Romance("Elise"); !ok || e.Kind != KindTrue {
		t.Fatalf("expected romance epilogue, got %+v", e)
	}
	if missing := catalog.Missing(); len(missing) != 0 {
		t.Fatalf("expected no missing kinds, got %v", missing)
	}

	e, _ = catalog.Lookup(Result{Kind: KindNormal})
	lines := e.Playable()
	if lines[0].ID != EpilogueIDBase || lines[1].ID != EpilogueIDBase+1 {
		t.Fatalf("unexpected ids %d %d", lines[0].ID, lines[1].ID)
	}
	if lines[0].HasExplicitNext() || !lines[1].Ends() || lines[1].HasChoices() {
		t.Fatal("expected auto-advance then end without choices")
	}
	if !e.Lines[1].HasChoices() {
		t.Fatal("playable must not modify the catalog entry")
	}
}

func TestNilCatalog(t *testing.T) {
	var c *Catalog
	if _, ok := c.Lookup(Result{Kind: KindTrue}); ok {
		t.Fatal("expected nil catalog miss")
	}
	if got := c.Missing(); len(got) != 3 {
		t.Fatalf("expected all kinds missing, got %v", got)
	}
}
