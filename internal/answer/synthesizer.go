package answer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ziadkadry99/deepdoc/internal/llm"
	"github.com/ziadkadry99/deepdoc/internal/vectordb"
	"go.uber.org/zap"
)

// ErrGenerationFailed indicates the model could not produce an answer after
// all retry attempts. Callers render a friendly failure, never a crash.
var ErrGenerationFailed = errors.New("answer generation failed")

// Source describes one chunk an answer was grounded in.
type Source struct {
	ContentPreview string  `json:"content_preview"`
	Similarity     float32 `json:"similarity"`
	Source         string  `json:"source"`
	Page           int     `json:"page,omitempty"`
}

// Answer is the synthesized response to a question.
type Answer struct {
	Text       string   `json:"answer"`
	Confidence float64  `json:"confidence"`
	Sources    []Source `json:"sources"`
	ChunksUsed int      `json:"chunks_used"`
	Generated  bool     `json:"generated"` // false when the model was never consulted
}

const previewLimit = 200

// Synthesizer turns retrieved chunks into an answer via an LLM provider.
type Synthesizer struct {
	provider llm.Provider
	model    string
	log      *zap.Logger
}

// NewSynthesizer creates a Synthesizer. Transient provider failures are
// retried up to maxRetries times with retryDelay between attempts.
func NewSynthesizer(provider llm.Provider, model string, maxRetries int, retryDelay time.Duration, log *zap.Logger) *Synthesizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Synthesizer{
		provider: llm.NewRetryProvider(provider, maxRetries, retryDelay),
		model:    model,
		log:      log,
	}
}

// Synthesize answers the question from the given chunks. With no chunks it
// short-circuits to an insufficient-information answer without calling the
// provider.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, results []vectordb.SearchResult, marks int) (*Answer, error) {
	if len(results) == 0 {
		s.log.Info("no relevant chunks, skipping generation", zap.String("question", question))
		return &Answer{
			Text:       insufficientContextMessage,
			Confidence: 0,
			Generated:  false,
		}, nil
	}

	prompt := BuildPrompt(question, results, marks)

	resp, err := s.provider.Complete(ctx, llm.CompletionRequest{
		Model: s.model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: systemPrompt},
			{Role: llm.RoleUser, Content: prompt},
		},
		Temperature: 0.3,
	})
	if err != nil {
		s.log.Error("generation failed", zap.Error(err), zap.String("provider", s.provider.Name()))
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	ans := &Answer{
		Text:       resp.Content,
		Confidence: Confidence(results),
		Sources:    buildSources(results),
		ChunksUsed: len(results),
		Generated:  true,
	}

	s.log.Debug("answer generated",
		zap.Int("chunks_used", ans.ChunksUsed),
		zap.Float64("confidence", ans.Confidence),
		zap.Int("output_tokens", resp.OutputTokens))

	return ans, nil
}

func buildSources(results []vectordb.SearchResult) []Source {
	sources := make([]Source, 0, len(results))
	for _, res := range results {
		preview := res.Text
		if runes := []rune(preview); len(runes) > previewLimit {
			preview = string(runes[:previewLimit])
		}
		sources = append(sources, Source{
			ContentPreview: preview,
			Similarity:     res.Similarity,
			Source:         res.Source,
			Page:           res.Page,
		})
	}
	return sources
}
