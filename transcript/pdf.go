// Package transcript exports a session's dialogue log.
package transcript

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"novel_ai/engine"
	"novel_ai/ending"
)

// WritePDF renders the dialogue log, grouped by chapter, followed by the
// ending when the story is complete. result may be nil.
func WritePDF(w io.Writer, title string, entries []engine.LogEntry, result *ending.Result) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(title, true)
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.MultiCell(0, 10, tr(title), "", "C", false)
	pdf.Ln(4)

	chapter := 0
	for _, e := range entries {
		if e.ChapterID != chapter {
			chapter = e.ChapterID
			pdf.Ln(3)
			pdf.SetFont("Arial", "B", 14)
			pdf.CellFormat(0, 9, fmt.Sprintf("Chapter %d", chapter), "B", 1, "L", false, 0, "")
			pdf.Ln(2)
		}
		if e.Choice != "" {
			pdf.SetFont("Arial", "I", 11)
			pdf.MultiCell(0, 6, tr("> "+e.Choice), "", "L", false)
			continue
		}
		pdf.SetFont("Arial", "", 11)
		text := e.Text
		if speaker := strings.TrimSpace(e.Speaker); speaker != "" {
			text = speaker + ": " + text
		}
		pdf.MultiCell(0, 6, tr(text), "", "L", false)
	}

	if result != nil {
		pdf.Ln(6)
		pdf.SetFont("Arial", "B", 14)
		pdf.MultiCell(0, 9, tr(result.Title), "", "L", false)
		pdf.SetFont("Arial", "", 11)
		pdf.MultiCell(0, 6, tr(result.Description), "", "L", false)
		if len(result.Romances) > 0 {
			pdf.MultiCell(0, 6, tr("Romance: "+strings.Join(result.Romances, ", ")), "", "L", false)
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write transcript pdf: %w", err)
	}
	return nil
}
