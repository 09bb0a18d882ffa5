package vectordb

import (
	"context"
	"fmt"
	"strconv"

	chromem "github.com/philippgille/chromem-go"

	"github.com/ziadkadry99/deepdoc/internal/embeddings"
)

// ChromemStore implements Store using chromem-go backed by a persistent
// on-disk database, so ingested chunks survive process restarts.
type ChromemStore struct {
	db         *chromem.DB
	collection *chromem.Collection
}

// NewChromemStore opens (or creates) a persistent chromem database at path
// and binds the named collection to the given embedder.
func NewChromemStore(path, collectionName string, embedder embeddings.Embedder) (*ChromemStore, error) {
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ErrStoreUnavailable, path, err)
	}
	return newStore(db, collectionName, embedder)
}

// NewMemoryStore creates an in-memory store, used in tests and for throwaway
// sessions.
func NewMemoryStore(collectionName string, embedder embeddings.Embedder) (*ChromemStore, error) {
	return newStore(chromem.NewDB(), collectionName, embedder)
}

func newStore(db *chromem.DB, collectionName string, embedder embeddings.Embedder) (*ChromemStore, error) {
	col, err := db.GetOrCreateCollection(collectionName, nil, embeddings.ToChromemFunc(embedder))
	if err != nil {
		return nil, fmt.Errorf("%w: collection %q: %v", ErrStoreUnavailable, collectionName, err)
	}
	return &ChromemStore{db: db, collection: col}, nil
}

func (s *ChromemStore) AddChunks(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	docs := make([]chromem.Document, len(entries))
	for i, e := range entries {
		docs[i] = chromem.Document{
			ID:       e.ID,
			Content:  e.Text,
			Metadata: metadataToMap(e.Metadata),
		}
	}

	if err := s.collection.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("adding %d chunks: %w", len(entries), err)
	}
	return nil
}

func (s *ChromemStore) Query(ctx context.Context, vector []float32, topK int) ([]SearchResult, error) {
	if topK <= 0 {
		topK = 10
	}

	// chromem-go requires nResults <= collection size.
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if topK > count {
		topK = count
	}

	results, err := s.collection.QueryEmbedding(ctx, vector, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	searchResults := make([]SearchResult, len(results))
	for i, r := range results {
		searchResults[i] = SearchResult{
			Entry: Entry{
				ID:       r.ID,
				Text:     r.Content,
				Metadata: mapToMetadata(r.Metadata),
			},
			Similarity: r.Similarity,
		}
	}

	return searchResults, nil
}

func (s *ChromemStore) DeleteBySource(ctx context.Context, source string) error {
	if s.collection.Count() == 0 {
		return nil
	}
	where := map[string]string{"source": source}
	if err := s.collection.Delete(ctx, where, nil); err != nil {
		return fmt.Errorf("deleting chunks of %s: %w", source, err)
	}
	return nil
}

func (s *ChromemStore) Count() int {
	return s.collection.Count()
}

// metadataToMap converts Metadata to a flat map[string]string for chromem.
func metadataToMap(m Metadata) map[string]string {
	return map[string]string{
		"source":       m.Source,
		"page":         strconv.Itoa(m.Page),
		"chunk_index":  strconv.Itoa(m.ChunkIndex),
		"content_hash": m.ContentHash,
	}
}

// mapToMetadata converts a flat map[string]string back to Metadata.
func mapToMetadata(m map[string]string) Metadata {
	page, _ := strconv.Atoi(m["page"])
	idx, _ := strconv.Atoi(m["chunk_index"])
	return Metadata{
		Source:      m["source"],
		Page:        page,
		ChunkIndex:  idx,
		ContentHash: m["content_hash"],
	}
}
