// Package generator produces chapters with a Gemini model. A chapter is
// written as a sequence of scenes, each prompted with the scenes before it.
package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"novel_ai/chapter"
	"novel_ai/prompts"
	"novel_ai/story"
)

// DefaultScenes is the number of scenes per chapter.
const DefaultScenes = 3

// maxChoices caps the choices kept from one line.
const maxChoices = 4

var (
	ErrNoContent = errors.New("model returned no content")
	ErrMalformed = errors.New("model response is not a JSON array of lines")
)

// Model is the part of *genai.GenerativeModel the generator uses.
type Model interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// NewModel configures a Gemini model for scene generation.
func NewModel(client *genai.Client, name string) *genai.GenerativeModel {
	model := client.GenerativeModel(name)
	model.ResponseMIMEType = "application/json"
	model.SystemInstruction = genai.NewUserContent(genai.Text(prompts.SystemPrompt))
	return model
}

type Options struct {
	// Scenes per chapter. Zero uses DefaultScenes.
	Scenes int
	Logger *log.Logger
}

// Gemini implements chapter.Generator.
type Gemini struct {
	model   Model
	project story.Project
	scenes  int
	logger  *log.Logger
	tracer  trace.Tracer
}

func NewGemini(model Model, project story.Project, opts Options) *Gemini {
	if opts.Scenes <= 0 {
		opts.Scenes = DefaultScenes
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Gemini{
		model:   model,
		project: project,
		scenes:  opts.Scenes,
		logger:  opts.Logger,
		tracer:  otel.Tracer("novel_ai/generator"),
	}
}

// Generate writes every scene of the chapter. A failed scene is skipped; the
// chapter fails only when no scene produced lines.
func (g *Gemini) Generate(ctx context.Context, gc chapter.Context) (chapter.Draft, error) {
	ctx, span := g.tracer.Start(ctx, "generator.Generate", trace.WithAttributes(
		attribute.Int("chapter.id", gc.ChapterID),
		attribute.Int("chapter.scenes", g.scenes),
	))
	defer span.End()

	base := gc.ChapterID * story.LineIDBase
	var (
		lines    []story.Line
		asked    []string
		previous strings.Builder
		lastErr  error
	)
	for n := 1; n <= g.scenes; n++ {
		prompt := g.scenePrompt(gc, n, previous.String())
		asked = append(asked, prompt)

		scene, err := g.scene(ctx, prompt)
		if err != nil {
			if ctx.Err() != nil {
				return chapter.Draft{}, fmt.Errorf("scene %d: %w", n, ctx.Err())
			}
			g.logger.Printf("generator: chapter %d scene %d/%d failed, continuing: %v", gc.ChapterID, n, g.scenes, err)
			lastErr = err
			continue
		}

		fmt.Fprintf(&previous, "=== Scene %d ===\n", n)
		for _, sl := range scene {
			line := sl.line(base + len(lines))
			fmt.Fprintf(&previous, "%s: %s\n", line.Speaker, line.Text)
			lines = append(lines, line)
		}
	}

	if len(lines) == 0 {
		if lastErr == nil {
			lastErr = ErrNoContent
		}
		span.RecordError(lastErr)
		return chapter.Draft{}, fmt.Errorf("chapter %d: every scene failed: %w", gc.ChapterID, lastErr)
	}
	span.SetAttributes(attribute.Int("chapter.lines", len(lines)))
	return chapter.Draft{Lines: lines, Prompt: strings.Join(asked, "\n---\n")}, nil
}

// scene asks for one scene, with a single repair round trip when the reply is
// not a usable JSON array.
func (g *Gemini) scene(ctx context.Context, prompt string) ([]sceneLine, error) {
	text, err := g.ask(ctx, prompt)
	if err != nil {
		return nil, err
	}
	scene, err := parseScene(text)
	if err == nil {
		return scene, nil
	}
	g.logger.Printf("generator: asking the model to repair its response: %v", err)

	repaired, err := g.ask(ctx, fmt.Sprintf(prompts.JsonRetryPrompt, text))
	if err != nil {
		return nil, err
	}
	return parseScene(repaired)
}

func (g *Gemini) ask(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return responseText(resp)
}

func (g *Gemini) scenePrompt(gc chapter.Context, n int, previous string) string {
	p := g.project
	names := []string{"Player: " + p.Player.Name}
	for _, npc := range p.NPCs {
		names = append(names, npc.Name)
	}
	var skills []string
	for _, v := range p.CoreValues {
		skills = append(skills, fmt.Sprintf("%s (%s)", v.Name, strings.Join(v.Skills, ", ")))
	}

	carried := ""
	if previous != "" {
		carried = fmt.Sprintf(prompts.PreviousScenesPrompt, previous)
	}
	prompt := fmt.Sprintf(prompts.ScenePrompt,
		p.Title, p.Premise, p.Genre, p.Tone, p.TotalChapters,
		strings.Join(names, ", "), strings.Join(skills, "; "),
		gc.State.PromptString(), carried,
		n, g.scenes, gc.ChapterID)
	if !p.HasNextChapter(gc.ChapterID) {
		prompt += prompts.FinalChapterPrompt
	}
	return prompt
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrNoContent
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", ErrNoContent
	}
	return b.String(), nil
}

// parseScene decodes the outermost [...] of text. Models sometimes wrap the
// array in markdown or prose.
func parseScene(text string) ([]sceneLine, error) {
	start := strings.IndexByte(text, '[')
	end := strings.LastIndexByte(text, ']')
	if start < 0 || end < start {
		return nil, ErrMalformed
	}
	var scene []sceneLine
	if err := json.Unmarshal([]byte(text[start:end+1]), &scene); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(scene) == 0 {
		return nil, fmt.Errorf("%w: empty array", ErrMalformed)
	}
	return scene, nil
}
