package templates

import (
	"fmt"
	"strings"

	"novel_ai/story"
)

// AffectionStatus represents how an NPC feels about the player and its corresponding color.
type AffectionStatus struct {
	Description string
	Color       string
}

// GetAffectionStatus returns an AffectionStatus based on the NPC's affection score.
func GetAffectionStatus(affection int) AffectionStatus {
	switch {
	case affection >= 80:
		return AffectionStatus{"Devoted", "#f92672"} // Pink/Red
	case affection >= 50:
		return AffectionStatus{"Close", "#fd971f"} // Orange
	case affection >= 20:
		return AffectionStatus{"Friendly", "#e6db74"} // Yellow
	case affection >= 0:
		return AffectionStatus{"Distant", "#a6e22e"} // Lime Green
	default:
		return AffectionStatus{"Hostile", "#75715e"} // Gray
	}
}

// FormatScores creates a "Name 12, Other 3" string from a score map, sorted by name.
func FormatScores(scores map[string]int) string {
	if len(scores) == 0 {
		return ""
	}
	parts := make([]string, 0, len(scores))
	for _, name := range story.SortedKeys(scores) {
		parts = append(parts, fmt.Sprintf("%s %d", name, scores[name]))
	}
	return strings.Join(parts, ", ")
}

// FormatSprites describes the characters on screen, e.g. "Elise (happy_waving, Center)".
func FormatSprites(sprites []story.Sprite) string {
	parts := make([]string, 0, len(sprites))
	for _, s := range sprites {
		var details []string
		if s.Look != "" {
			details = append(details, s.Look)
		}
		if s.Position != "" {
			details = append(details, s.Position)
		}
		if len(details) == 0 {
			parts = append(parts, s.Name)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", s.Name, strings.Join(details, ", ")))
	}
	return strings.Join(parts, ", ")
}

// ProgressTension maps how far the story has come to a 0..100 tension value.
func ProgressTension(chapterID, totalChapters int) int {
	if totalChapters <= 0 || chapterID <= 0 {
		return 0
	}
	if chapterID >= totalChapters {
		return 100
	}
	return chapterID * 100 / totalChapters
}

// VignetteStyle generates a CSS style for the vignette effect based on story tension.
func VignetteStyle(tension int) string {
	opacity := float64(tension) / 200.0 // Scale opacity from 0.0 to 0.5
	spread := tension / 2
	blur := tension / 4

	return fmt.Sprintf(`
		<style>
			#story-container::before {
				content: '';
				position: absolute;
				inset: 0;
				box-shadow: inset 0 0 %dpx %dpx rgba(0,0,0,%.2f);
				transition: box-shadow 0.5s ease-in-out;
				pointer-events: none;
				border-radius: 8px;
			}
		</style>
	`, blur, spread, opacity)
}
