package retriever

import (
	"context"
	"fmt"

	"github.com/ziadkadry99/deepdoc/internal/embeddings"
	"github.com/ziadkadry99/deepdoc/internal/vectordb"
	"go.uber.org/zap"
)

// Marks bounds. Questions worth fewer marks get short, focused answers built
// from fewer chunks; higher marks pull in more context.
const (
	MinMarks = 2
	MaxMarks = 5

	shortAnswerTopK = 3
	longAnswerTopK  = 7
)

// Retriever embeds a question and finds the most relevant chunks in the store.
type Retriever struct {
	embedder  embeddings.Embedder
	store     vectordb.Store
	threshold float32
	log       *zap.Logger
}

// New creates a Retriever. threshold is the minimum cosine similarity a chunk
// must score to be included in results; chunks below it are discarded.
func New(embedder embeddings.Embedder, store vectordb.Store, threshold float32, log *zap.Logger) *Retriever {
	if log == nil {
		log = zap.NewNop()
	}
	return &Retriever{
		embedder:  embedder,
		store:     store,
		threshold: threshold,
		log:       log,
	}
}

// ClampMarks bounds the requested marks to the supported range.
func ClampMarks(marks int) int {
	if marks < MinMarks {
		return MinMarks
	}
	if marks > MaxMarks {
		return MaxMarks
	}
	return marks
}

// TopKForMarks returns how many chunks to retrieve for a question worth the
// given (already clamped) marks.
func TopKForMarks(marks int) int {
	if marks <= MinMarks {
		return shortAnswerTopK
	}
	return longAnswerTopK
}

// Search embeds the query and returns up to limit raw results ordered by
// descending similarity, with no threshold filtering. Used for direct
// similarity search where the caller wants to see the scores.
func (r *Retriever) Search(ctx context.Context, query string, limit int) ([]vectordb.SearchResult, error) {
	if query == "" {
		return nil, fmt.Errorf("query must not be empty")
	}
	if limit <= 0 {
		limit = 5
	}

	vecs, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for one query", len(vecs))
	}

	return r.store.Query(ctx, vecs[0], limit)
}

// Retrieve embeds the question and returns the chunks scoring at or above the
// similarity threshold, ordered by descending similarity. An empty store or a
// question with no sufficiently similar chunks yields an empty result, not an
// error.
func (r *Retriever) Retrieve(ctx context.Context, question string, marks int) ([]vectordb.SearchResult, error) {
	if question == "" {
		return nil, fmt.Errorf("question must not be empty")
	}

	marks = ClampMarks(marks)
	topK := TopKForMarks(marks)

	vecs, err := r.embedder.Embed(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for one question", len(vecs))
	}

	results, err := r.store.Query(ctx, vecs[0], topK)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	filtered := results[:0]
	for _, res := range results {
		if res.Similarity >= r.threshold {
			filtered = append(filtered, res)
		}
	}

	r.log.Debug("retrieved chunks",
		zap.Int("marks", marks),
		zap.Int("top_k", topK),
		zap.Int("candidates", len(results)),
		zap.Int("above_threshold", len(filtered)))

	return filtered, nil
}
