package ending

import (
	"strings"

	"novel_ai/story"
)

// EpilogueIDBase numbers epilogue lines apart from chapter lines.
const EpilogueIDBase = 999000

// Epilogue is a fixed closing scene shown after an ending is decided.
type Epilogue struct {
	Kind  Kind         `json:"kind" yaml:"kind"`
	Title string       `json:"title" yaml:"title"`
	Lines []story.Line `json:"lines" yaml:"lines"`
}

// Catalog looks up epilogues by ending.
type Catalog struct {
	epilogues []Epilogue
}

func NewCatalog(epilogues []Epilogue) *Catalog {
	return &Catalog{epilogues: epilogues}
}

// Lookup returns the epilogue for res. A value ending prefers an epilogue
// whose title names the dominant value before falling back to any value
// epilogue.
func (c *Catalog) Lookup(res Result) (Epilogue, bool) {
	if c == nil {
		return Epilogue{}, false
	}
	if res.Kind == KindValue && res.DominantValue != "" {
		for _, e := range c.epilogues {
			if e.Kind == KindValue && strings.Contains(e.Title, res.DominantValue) {
				return e, true
			}
		}
	}
	for _, e := range c.epilogues {
		if e.Kind == res.Kind {
			return e, true
		}
	}
	return Epilogue{}, false
}

// Romance returns an epilogue whose title names the character.
func (c *Catalog) Romance(character string) (Epilogue, bool) {
	if c == nil || character == "" {
		return Epilogue{}, false
	}
	for _, e := range c.epilogues {
		if strings.Contains(e.Title, character) {
			return e, true
		}
	}
	return Epilogue{}, false
}

// Missing lists the ending kinds without any epilogue.
func (c *Catalog) Missing() []Kind {
	var missing []Kind
	for _, k := range []Kind{KindTrue, KindValue, KindNormal} {
		found := false
		if c != nil {
			for _, e := range c.epilogues {
				if e.Kind == k {
					found = true
					break
				}
			}
		}
		if !found {
			missing = append(missing, k)
		}
	}
	return missing
}

// Playable returns the epilogue as lines: ids from EpilogueIDBase, each
// line auto-advancing and the last one ending the story.
func (e Epilogue) Playable() []story.Line {
	out := make([]story.Line, len(e.Lines))
	for i, line := range e.Lines {
		line = line.Clone()
		line.ID = EpilogueIDBase + i
		line.Choices = nil
		if i == len(e.Lines)-1 {
			line.Next = story.NextPtr(story.EndOfStory)
		} else {
			line.Next = nil
		}
		out[i] = line
	}
	return out
}
