package pdf

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrNoText indicates the PDF was readable but contained no extractable text
// (scanned images, empty pages).
var ErrNoText = errors.New("pdf: no extractable text")

// Page holds the extracted text of a single PDF page.
type Page struct {
	Number int // 1-based
	Text   string
}

// Extraction is the result of extracting text from one PDF file.
type Extraction struct {
	Path  string
	Pages []Page
}

// Text joins all page texts into a single string.
func (e *Extraction) Text() string {
	parts := make([]string, 0, len(e.Pages))
	for _, p := range e.Pages {
		parts = append(parts, p.Text)
	}
	return strings.Join(parts, "\n")
}

// Extract reads the PDF at path and returns per-page text. Pages that fail to
// decode individually are skipped; extraction fails only if the file itself
// cannot be opened or no page yields any text.
func Extract(path string) (*Extraction, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pdf %s: %w", path, err)
	}
	defer f.Close()

	ext := &Extraction{Path: path}
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		ext.Pages = append(ext.Pages, Page{Number: i, Text: text})
	}

	if len(ext.Pages) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoText)
	}
	return ext, nil
}
