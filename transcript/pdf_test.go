package transcript

import (
	"bytes"
	"testing"

	"novel_ai/engine"
	"novel_ai/ending"
)

func TestWritePDF(t *testing.T) {
	entries := []engine.LogEntry{
		{ChapterID: 1, LineID: 1000, Speaker: "Narrator", Text: "Rain on the keep."},
		{ChapterID: 1, LineID: 1001, Speaker: "Élise", Text: "Will you fight?"},
		{ChapterID: 1, LineID: 1001, Choice: "Fight"},
		{ChapterID: 2, LineID: 2000, Text: "Dawn."},
	}
	result := &ending.Result{Kind: ending.KindTrue, Title: "True Ending", Description: "It ends well.", Romances: []string{"Elise"}}

	var buf bytes.Buffer
	if err := WritePDF(&buf, "The Ashen Crown", entries, result); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("output is not a PDF: %q", buf.Bytes()[:min(16, buf.Len())])
	}
}

func TestWritePDFWithoutEnding(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePDF(&buf, "Unfinished", nil, nil); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("expected output")
	}
}
