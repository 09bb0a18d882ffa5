package chunker

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ziadkadry99/deepdoc/internal/pdf"
)

// Chunk is a bounded contiguous text fragment extracted from a source
// document for independent embedding and retrieval.
type Chunk struct {
	Text   string
	Page   int // 1-based page the chunk starts on; 0 when unknown
	Index  int // position in document order
	Offset int // rune offset into the filtered document text
}

// Chunker splits document text into overlapping fixed-size fragments.
type Chunker struct {
	maxSize int
	overlap int
	minLine int
}

// bulletRe matches list-item lines that should keep their own line when
// merged, so bullet structure survives into the chunk text.
var bulletRe = regexp.MustCompile(`^(\*|-|•|\d+[.)])\s+`)

// New creates a Chunker. overlap must be strictly smaller than maxSize;
// anything else would make the scan loop forever, so it fails fast instead.
func New(maxSize, overlap, minLine int) (*Chunker, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("chunker: max size must be positive, got %d", maxSize)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("chunker: overlap must be non-negative, got %d", overlap)
	}
	if overlap >= maxSize {
		return nil, fmt.Errorf("chunker: overlap (%d) must be smaller than max size (%d)", overlap, maxSize)
	}
	if minLine < 0 {
		return nil, fmt.Errorf("chunker: min line length must be non-negative, got %d", minLine)
	}
	return &Chunker{maxSize: maxSize, overlap: overlap, minLine: minLine}, nil
}

// ChunkDocument chunks a multi-page extraction. Page attribution is
// best-effort: each chunk is tagged with the page its window starts on.
func (c *Chunker) ChunkDocument(ext *pdf.Extraction) []Chunk {
	var (
		runes []rune
		spans []pageSpan
	)
	for _, page := range ext.Pages {
		filtered := c.filterLines(page.Text)
		if filtered == "" {
			continue
		}
		if len(runes) > 0 {
			runes = append(runes, ' ')
		}
		start := len(runes)
		runes = append(runes, []rune(filtered)...)
		spans = append(spans, pageSpan{start: start, end: len(runes), page: page.Number})
	}
	return c.window(runes, spans)
}

// ChunkText chunks a plain text string with no page information.
func (c *Chunker) ChunkText(text string) []Chunk {
	filtered := c.filterLines(text)
	if filtered == "" {
		return nil
	}
	return c.window([]rune(filtered), nil)
}

type pageSpan struct {
	start, end, page int
}

// filterLines drops blank lines, lines shorter than the minimum length, and
// lines ending in "?" (question prompts would otherwise pollute retrieval).
// Bullet lines keep a leading newline; everything else is joined with spaces.
func (c *Chunker) filterLines(text string) string {
	var b strings.Builder
	for _, line := range strings.Split(text, "\n") {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			continue
		}
		if strings.HasSuffix(stripped, "?") {
			continue
		}
		if len([]rune(stripped)) < c.minLine {
			continue
		}
		if b.Len() > 0 {
			if bulletRe.MatchString(stripped) {
				b.WriteByte('\n')
			} else {
				b.WriteByte(' ')
			}
		}
		b.WriteString(stripped)
	}
	return b.String()
}

// window slides a fixed-size window over the filtered text. Consecutive
// chunks share exactly `overlap` runes; the final chunk may be shorter. A
// tail already covered by the previous chunk is not re-emitted.
func (c *Chunker) window(runes []rune, spans []pageSpan) []Chunk {
	n := len(runes)
	if n == 0 {
		return nil
	}

	step := c.maxSize - c.overlap
	var chunks []Chunk
	for start := 0; start < n; start += step {
		end := start + c.maxSize
		if end > n {
			end = n
		}
		if start > 0 && n-start <= c.overlap {
			break
		}
		chunks = append(chunks, Chunk{
			Text:   string(runes[start:end]),
			Page:   pageAt(spans, start),
			Index:  len(chunks),
			Offset: start,
		})
		if end == n {
			break
		}
	}
	return chunks
}

func pageAt(spans []pageSpan, offset int) int {
	for _, s := range spans {
		if offset >= s.start && offset < s.end {
			return s.page
		}
	}
	return 0
}
