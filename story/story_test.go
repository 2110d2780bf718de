package story

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestLineAccessors(t *testing.T) {
	line := Line{
		ID:   1000,
		Text: "Which way?",
		Choices: []Choice{
			{Text: "Left", Target: 1002},
			{Text: "Right"},
		},
	}

	if !line.HasChoices() || line.ChoiceCount() != 2 {
		t.Fatalf("expected 2 choices, got %d", line.ChoiceCount())
	}
	if c, ok := line.Choice(0); !ok || c.Text != "Left" || !c.HasTarget() {
		t.Fatalf("unexpected first choice: %+v ok=%v", c, ok)
	}
	if c, _ := line.Choice(1); c.HasTarget() {
		t.Fatal("expected second choice without target")
	}
	for _, i := range []int{-1, 2, 99} {
		if _, ok := line.Choice(i); ok {
			t.Fatalf("expected choice %d to be out of range", i)
		}
	}
	if line.HasExplicitNext() || line.NextID() != -1 || line.Ends() {
		t.Fatal("expected line without explicit next")
	}
}

func TestLineNextPointer(t *testing.T) {
	jump := Line{ID: 1, Next: NextPtr(5)}
	if !jump.HasExplicitNext() || jump.NextID() != 5 || jump.Ends() {
		t.Fatalf("unexpected jump line state: next=%d ends=%v", jump.NextID(), jump.Ends())
	}
	end := Line{ID: 2, Next: NextPtr(EndOfStory)}
	if !end.HasExplicitNext() || !end.Ends() {
		t.Fatal("expected sentinel next to end the story")
	}
}

func TestChapterIndexOf(t *testing.T) {
	ch := Chapter{ID: 1, Lines: []Line{{ID: 1000}, {ID: 1001}, {ID: 1005}}}
	if got := ch.IndexOf(1005); got != 2 {
		t.Fatalf("expected index 2, got %d", got)
	}
	if got := ch.IndexOf(9999); got != -1 {
		t.Fatalf("expected -1 for missing id, got %d", got)
	}
	if _, ok := ch.Line(3); ok {
		t.Fatal("expected out of range line")
	}
	if first, ok := ch.First(); !ok || first.ID != 1000 {
		t.Fatalf("unexpected first line %+v", first)
	}
}

func TestChapterCloneIsIndependent(t *testing.T) {
	ch := Chapter{ID: 1, Lines: []Line{{
		ID:      1000,
		Next:    NextPtr(1001),
		Choices: []Choice{{Text: "a", SkillImpacts: map[string]int{"Swordplay": 1}}},
	}}}
	cp := ch.Clone()
	cp.Lines[0].Choices[0].SkillImpacts["Swordplay"] = 99
	*cp.Lines[0].Next = 7
	cp.Lines[0].Text = "changed"

	if ch.Lines[0].Choices[0].SkillImpacts["Swordplay"] != 1 {
		t.Fatal("clone shares skill impact map")
	}
	if *ch.Lines[0].Next != 1001 {
		t.Fatal("clone shares next pointer")
	}
	if ch.Lines[0].Text != "" {
		t.Fatal("clone shares line storage")
	}
}

func TestValidateLines(t *testing.T) {
	tests := []struct {
		name  string
		lines []Line
		want  string
	}{
		{name: "empty", lines: nil, want: "no lines"},
		{name: "duplicate", lines: []Line{{ID: 1}, {ID: 1}}, want: "duplicate line id 1"},
		{name: "reserved", lines: []Line{{ID: 0}}, want: "reserved id"},
		{name: "blank choice", lines: []Line{{ID: 1, Choices: []Choice{{Text: " "}}}}, want: "has no text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLines(tt.lines)
			if !errors.Is(err, ErrInvalidContent) {
				t.Fatalf("expected ErrInvalidContent, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q in %v", tt.want, err)
			}
		})
	}
	if err := ValidateLines([]Line{{ID: 1000}, {ID: 1001}}); err != nil {
		t.Fatalf("expected valid lines, got %v", err)
	}
}

func TestGameStateJSONRoundTrip(t *testing.T) {
	state := NewGameState()
	state.ChapterID = 3
	state.LineID = 3004
	state.SkillScores = map[string]int{"Swordplay": 10, "Defense": -5, "Lore": 0}
	state.CoreValueScores = map[string]int{"Courage": 5, "Wisdom": 0}
	state.Affections = map[string]int{"Elise": 85, "Marcus": -20}
	state.PreviousChoices = []string{"Draw the sword", "Run", "Draw the sword"}
	state.UnlockedContent = []string{"Ch2_CG1", "Ch1_CG1"}
	state.UnlockedEndings = []string{"value:Courage"}

	data, err := json.Marshal(state)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got GameState
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(state, got) {
		t.Fatalf("round trip mismatch:\nwant %+v\ngot  %+v", state, got)
	}
}

func TestGameStateUnlockIsSet(t *testing.T) {
	state := NewGameState()
	if !state.Unlock("Ch1_CG1") {
		t.Fatal("expected first unlock to be new")
	}
	if state.Unlock("Ch1_CG1") {
		t.Fatal("expected repeat unlock to be ignored")
	}
	if state.Unlock("") {
		t.Fatal("expected empty id to be ignored")
	}
	if len(state.UnlockedContent) != 1 {
		t.Fatalf("expected 1 unlocked id, got %v", state.UnlockedContent)
	}
}

func TestPromptStringIsSorted(t *testing.T) {
	state := NewGameState()
	state.CoreValueScores = map[string]int{"Wisdom": 2, "Courage": 1}
	state.PreviousChoices = []string{"a", "b"}

	got := state.PromptString()
	if !strings.Contains(got, "Core Values: Courage=1, Wisdom=2") {
		t.Fatalf("expected sorted core values, got %q", got)
	}
	if !strings.Contains(got, "Previous Choices: a, b") {
		t.Fatalf("expected previous choices, got %q", got)
	}
}

func TestProjectValidate(t *testing.T) {
	p := Project{
		ID:            "p1",
		TotalChapters: 2,
		CoreValues:    []CoreValue{{Name: "Courage"}, {Name: "Courage"}},
		TrueValue:     "Wisdom",
		NPCs:          []Character{{Name: "Elise"}, {Name: ""}},
	}
	err := p.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"duplicate core value", "true value \"Wisdom\"", "npc name is required"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %v", want, err)
		}
	}

	ok := Project{ID: "p1", TotalChapters: 1, CoreValues: []CoreValue{{Name: "Courage"}}, TrueValue: "Courage"}
	if err := ok.Validate(); err != nil {
		t.Fatalf("expected valid project, got %v", err)
	}
	if ok.HasNextChapter(1) {
		t.Fatal("expected no chapter after the last one")
	}
}
