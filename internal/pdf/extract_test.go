package pdf

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExtractMissingFile(t *testing.T) {
	_, err := Extract(filepath.Join(t.TempDir(), "nope.pdf"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestExtractNotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.pdf")
	if err := os.WriteFile(path, []byte("just plain text"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	_, err := Extract(path)
	if err == nil {
		t.Fatal("expected error for non-PDF content")
	}
}

func TestExtractionText(t *testing.T) {
	ext := &Extraction{
		Path: "a.pdf",
		Pages: []Page{
			{Number: 1, Text: "first page"},
			{Number: 2, Text: "second page"},
		},
	}
	if got := ext.Text(); got != "first page\nsecond page" {
		t.Errorf("Text() = %q", got)
	}
}
