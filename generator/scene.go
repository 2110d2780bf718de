package generator

import (
	"strings"

	"novel_ai/story"
)

// sceneLine matches one element of the JSON array the model returns.
type sceneLine struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`

	Character1Name       string `json:"character1_name"`
	Character1Expression string `json:"character1_expression"`
	Character1Pose       string `json:"character1_pose"`
	Character1Position   string `json:"character1_position"`
	Character2Name       string `json:"character2_name"`
	Character2Expression string `json:"character2_expression"`
	Character2Pose       string `json:"character2_pose"`
	Character2Position   string `json:"character2_position"`

	Background string `json:"bg_name"`
	BGM        string `json:"bgm_name"`
	SFX        string `json:"sfx_name"`

	Choices []sceneChoice `json:"choices"`

	CGID    string `json:"cg_id"`
	CGTitle string `json:"cg_title"`
}

type sceneChoice struct {
	Text            string            `json:"text"`
	NextID          int               `json:"next_id"`
	ValueImpact     []valueImpact     `json:"value_impact"`
	AffectionImpact []affectionImpact `json:"affection_impact"`
}

type valueImpact struct {
	ValueName string `json:"value_name"`
	Change    int    `json:"change"`
}

type affectionImpact struct {
	CharacterName string `json:"character_name"`
	Change        int    `json:"change"`
}

// line converts the scene line into a story line with the given id. Choices
// without text are dropped and at most maxChoices are kept.
func (sl sceneLine) line(id int) story.Line {
	line := story.Line{
		ID:      id,
		Speaker: strings.TrimSpace(sl.Speaker),
		Text:    strings.TrimSpace(sl.Text),
		Directives: story.Directives{
			Background: sl.Background,
			BGM:        sl.BGM,
			SFX:        sl.SFX,
			CG:         sl.CGID,
			CGTitle:    sl.CGTitle,
		},
	}
	if line.Speaker == "" {
		line.Speaker = "Narrator"
	}
	if s, ok := sprite(sl.Character1Name, sl.Character1Expression, sl.Character1Pose, sl.Character1Position, "Center"); ok {
		line.Directives.Sprites = append(line.Directives.Sprites, s)
	}
	if s, ok := sprite(sl.Character2Name, sl.Character2Expression, sl.Character2Pose, sl.Character2Position, "Left"); ok {
		line.Directives.Sprites = append(line.Directives.Sprites, s)
	}

	for _, c := range sl.Choices {
		if len(line.Choices) == maxChoices {
			break
		}
		if strings.TrimSpace(c.Text) == "" {
			continue
		}
		choice := story.Choice{Text: strings.TrimSpace(c.Text), Target: c.NextID}
		for _, impact := range c.ValueImpact {
			if choice.SkillImpacts == nil {
				choice.SkillImpacts = make(map[string]int)
			}
			choice.SkillImpacts[impact.ValueName] += impact.Change
		}
		for _, impact := range c.AffectionImpact {
			if choice.AffectionImpacts == nil {
				choice.AffectionImpacts = make(map[string]int)
			}
			choice.AffectionImpacts[impact.CharacterName] += impact.Change
		}
		line.Choices = append(line.Choices, choice)
	}
	return line
}

func sprite(name, expression, pose, position, defaultPosition string) (story.Sprite, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return story.Sprite{}, false
	}
	if position == "" {
		position = defaultPosition
	}
	var look string
	if expression != "" || pose != "" {
		look = expression + "_" + pose
	}
	return story.Sprite{Name: name, Look: look, Position: position}, true
}
