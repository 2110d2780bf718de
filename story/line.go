package story

// EndOfStory is the explicit next pointer that terminates the story.
const EndOfStory = 0

// Choice is a player-selectable option on a Line.
type Choice struct {
	Text             string         `json:"text" yaml:"text"`
	Target           int            `json:"target,omitempty" yaml:"target,omitempty"`
	SkillImpacts     map[string]int `json:"skill_impacts,omitempty" yaml:"skill_impacts,omitempty"`
	AffectionImpacts map[string]int `json:"affection_impacts,omitempty" yaml:"affection_impacts,omitempty"`
}

// HasTarget reports whether the choice names a line to jump to.
func (c Choice) HasTarget() bool {
	return c.Target != 0
}

// Sprite places a character on screen for a line.
type Sprite struct {
	Name     string `json:"name" yaml:"name"`
	Look     string `json:"look,omitempty" yaml:"look,omitempty"`
	Position string `json:"position,omitempty" yaml:"position,omitempty"`
}

// Directives are presentation hints carried by a line. The engine passes them
// through untouched, except that a CG id unlocks gallery content on display.
type Directives struct {
	Background string   `json:"background,omitempty" yaml:"background,omitempty"`
	BGM        string   `json:"bgm,omitempty" yaml:"bgm,omitempty"`
	SFX        string   `json:"sfx,omitempty" yaml:"sfx,omitempty"`
	Sprites    []Sprite `json:"sprites,omitempty" yaml:"sprites,omitempty"`
	CG         string   `json:"cg,omitempty" yaml:"cg,omitempty"`
	CGTitle    string   `json:"cg_title,omitempty" yaml:"cg_title,omitempty"`
}

// Line is one narrative node of a chapter.
//
// Next distinguishes three cases: nil advances sequentially, EndOfStory ends
// the story, and any other value jumps to that line id.
type Line struct {
	ID         int        `json:"id" yaml:"id"`
	Speaker    string     `json:"speaker" yaml:"speaker"`
	Text       string     `json:"text" yaml:"text"`
	Choices    []Choice   `json:"choices,omitempty" yaml:"choices,omitempty"`
	Next       *int       `json:"next,omitempty" yaml:"next,omitempty"`
	Directives Directives `json:"directives,omitempty" yaml:"directives,omitempty"`
}

func (l Line) HasChoices() bool {
	return len(l.Choices) > 0
}

func (l Line) ChoiceCount() int {
	return len(l.Choices)
}

// Choice returns the i-th choice. ok is false when i is out of range.
func (l Line) Choice(i int) (Choice, bool) {
	if i < 0 || i >= len(l.Choices) {
		return Choice{}, false
	}
	return l.Choices[i], true
}

func (l Line) HasExplicitNext() bool {
	return l.Next != nil
}

// NextID returns the explicit next pointer, or -1 when there is none.
func (l Line) NextID() int {
	if l.Next == nil {
		return -1
	}
	return *l.Next
}

// Ends reports whether the line terminates the story.
func (l Line) Ends() bool {
	return l.Next != nil && *l.Next == EndOfStory
}

// NextPtr is a helper for building lines with an explicit next pointer.
func NextPtr(id int) *int {
	return &id
}

// Clone returns a deep copy of the line.
func (l Line) Clone() Line {
	out := l
	if l.Next != nil {
		out.Next = NextPtr(*l.Next)
	}
	if l.Choices != nil {
		out.Choices = make([]Choice, len(l.Choices))
		for i, c := range l.Choices {
			c.SkillImpacts = cloneInts(c.SkillImpacts)
			c.AffectionImpacts = cloneInts(c.AffectionImpacts)
			out.Choices[i] = c
		}
	}
	if l.Directives.Sprites != nil {
		out.Directives.Sprites = append([]Sprite(nil), l.Directives.Sprites...)
	}
	return out
}

func cloneInts(m map[string]int) map[string]int {
	if m == nil {
		return nil
	}
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
