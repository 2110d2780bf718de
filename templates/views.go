// Package templates renders the HTML of the web player. Components write
// markup directly; every piece of story text is escaped.
package templates

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"novel_ai/ending"
	"novel_ai/save"
	"novel_ai/story"
)

// htmlWriter stops writing after the first error.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) printf(format string, args ...any) {
	if h.err != nil {
		return
	}
	_, h.err = fmt.Fprintf(h.w, format, args...)
}

func (h *htmlWriter) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

func esc(s string) string {
	return templ.EscapeString(s)
}

const style = `
<style>
	body { background: #272822; color: #f8f8f2; font-family: Georgia, serif; margin: 0; }
	main { max-width: 760px; margin: 2rem auto; padding: 0 1rem; }
	#story-container { position: relative; background: #1e1e1e; border-radius: 8px; padding: 1.5rem; min-height: 240px; }
	.stage { color: #75715e; font-size: 0.85rem; margin-bottom: 0.75rem; }
	.speaker { color: #66d9ef; font-weight: bold; }
	.cg { color: #ae81ff; font-size: 0.85rem; }
	.choices form, .controls form { display: inline-block; margin: 0.25rem; }
	button { background: #49483e; color: #f8f8f2; border: 1px solid #75715e; border-radius: 4px; padding: 0.4rem 0.9rem; cursor: pointer; }
	button:hover { background: #75715e; }
	.status { margin-top: 1rem; font-size: 0.85rem; }
	.error { color: #f92672; }
	#notice { min-height: 1.5rem; color: #e6db74; margin-top: 0.5rem; }
</style>`

// Index renders the whole page. body fills the story container; when nil the
// container offers a new game.
func Index(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.printf(`<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="utf-8">
	<meta name="viewport" content="width=device-width, initial-scale=1">
	<title>%s</title>
	<script src="https://unpkg.com/htmx.org@1.9.12"></script>`, esc(title))
		h.raw(style)
		h.printf(`
</head>
<body>
<main>
	<h1>%s</h1>
	<div id="story-container">`, esc(title))
		if h.err != nil {
			return h.err
		}
		if body == nil {
			body = StartView()
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		h.raw(`</div>
	<div class="controls">
		<form hx-post="/save" hx-target="#notice"><input type="hidden" name="slot" value="quick"><button>Quick Save</button></form>
		<form hx-get="/saves" hx-target="#story-container"><button>Load</button></form>
		<a href="/download"><button type="button">Download Transcript</button></a>
	</div>
	<div id="notice"></div>
</main>
</body>
</html>`)
		return h.err
	})
}

// StartView offers a new game.
func StartView() templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<form hx-post="/start" hx-target="#story-container"><button>Begin</button></form>`)
		return err
	})
}

// LineView renders the line on screen with its choices, or a button to move on
// when it has none, followed by the player's standing.
func LineView(line story.Line, state story.GameState, project story.Project) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(VignetteStyle(ProgressTension(state.ChapterID, project.TotalChapters)))

		d := line.Directives
		var stage []string
		if d.Background != "" {
			stage = append(stage, "Scene: "+d.Background)
		}
		if d.BGM != "" {
			stage = append(stage, "Music: "+d.BGM)
		}
		if d.SFX != "" {
			stage = append(stage, "Sound: "+d.SFX)
		}
		if sprites := FormatSprites(d.Sprites); sprites != "" {
			stage = append(stage, "On stage: "+sprites)
		}
		h.printf(`<div class="stage">Chapter %d of %d`, state.ChapterID, project.TotalChapters)
		for _, s := range stage {
			h.printf(` &middot; %s`, esc(s))
		}
		h.raw(`</div>`)
		if d.CG != "" {
			title := d.CGTitle
			if title == "" {
				title = d.CG
			}
			h.printf(`<div class="cg">Gallery unlocked: %s</div>`, esc(title))
		}

		h.printf(`<p><span class="speaker">%s</span><br>%s</p>`, esc(line.Speaker), esc(line.Text))

		if line.HasChoices() {
			h.raw(`<div class="choices">`)
			for i, c := range line.Choices {
				h.printf(`<form hx-post="/choose" hx-target="#story-container"><input type="hidden" name="index" value="%d"><button>%s</button></form>`, i, esc(c.Text))
			}
			h.raw(`</div>`)
		} else {
			h.raw(`<form hx-post="/advance" hx-target="#story-container"><button>Next</button></form>`)
		}

		h.raw(`<div class="status">`)
		if values := FormatScores(state.CoreValueScores); values != "" {
			h.printf(`<div>%s</div>`, esc(values))
		}
		for _, npc := range project.NPCs {
			affection := state.Affections[npc.Name]
			status := GetAffectionStatus(affection)
			h.printf(`<div>%s: <span style="color: %s">%s</span> (%d)</div>`, esc(npc.Name), status.Color, status.Description, affection)
		}
		h.raw(`</div>`)
		return h.err
	})
}

// EndingView renders the reached ending and its epilogue.
func EndingView(result ending.Result, epilogue []story.Line) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(VignetteStyle(0))
		h.printf(`<h2>%s</h2><p>%s</p>`, esc(result.Title), esc(result.Description))
		for _, line := range epilogue {
			if line.Speaker == "" {
				h.printf(`<p>%s</p>`, esc(line.Text))
				continue
			}
			h.printf(`<p><span class="speaker">%s</span><br>%s</p>`, esc(line.Speaker), esc(line.Text))
		}
		if len(result.Romances) > 0 {
			h.printf(`<p class="cg">Romance: %s</p>`, esc(strings.Join(result.Romances, ", ")))
		}
		h.raw(`<form hx-post="/start" hx-target="#story-container"><button>New Game</button></form>`)
		return h.err
	})
}

// ErrorView reports a failure. canRetry offers to load the chapter again.
func ErrorView(message string, canRetry bool) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.printf(`<p class="error">%s</p>`, esc(message))
		if canRetry {
			h.raw(`<form hx-post="/retry" hx-target="#story-container"><button>Try Again</button></form>`)
		}
		h.raw(`<form hx-get="/saves" hx-target="#story-container"><button>Load a Save</button></form>`)
		return h.err
	})
}

// SavesView lists the save slots, empty ones included.
func SavesView(slots []save.Slot) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		used := make(map[int]save.Slot, len(slots))
		for _, s := range slots {
			used[s.Index] = s
		}

		h := &htmlWriter{w: w}
		h.raw(`<h2>Saves</h2><ul class="saves">`)
		for i := 0; i < save.SlotCount; i++ {
			s, ok := used[i]
			if !ok {
				h.printf(`<li>%s: empty</li>`, esc(save.DefaultName(i)))
				continue
			}
			h.printf(`<li>%s &middot; Chapter %d &middot; %s `, esc(s.Name), s.State.ChapterID, s.SavedAt.Local().Format("2006-01-02 15:04"))
			h.printf(`<form hx-post="/load" hx-target="#story-container"><input type="hidden" name="slot" value="%d"><button>Load</button></form></li>`, i)
		}
		h.raw(`</ul><form hx-post="/start" hx-target="#story-container"><button>New Game</button></form>`)
		return h.err
	})
}

// Notice is a short status message.
func Notice(message string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<span>%s</span>`, esc(message))
		return err
	})
}
