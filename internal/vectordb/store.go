package vectordb

import (
	"context"
	"errors"
)

// ErrStoreUnavailable indicates the vector store itself could not be reached
// or opened. An empty result set is not an error and is never reported as one.
var ErrStoreUnavailable = errors.New("vector store unavailable")

// Store defines the interface for persisting and searching chunk embeddings.
type Store interface {
	// AddChunks adds or replaces entries in the store (upsert by ID).
	AddChunks(ctx context.Context, entries []Entry) error

	// Query returns at most topK entries ordered by descending similarity to
	// the given vector. An empty store yields an empty, non-error result.
	Query(ctx context.Context, vector []float32, topK int) ([]SearchResult, error)

	// DeleteBySource removes all entries belonging to the given source document.
	DeleteBySource(ctx context.Context, source string) error

	// Count returns the total number of stored chunks.
	Count() int
}
