package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/ziadkadry99/deepdoc/internal/chunker"
	"github.com/ziadkadry99/deepdoc/internal/db"
	"github.com/ziadkadry99/deepdoc/internal/pdf"
	"github.com/ziadkadry99/deepdoc/internal/vectordb"
	"go.uber.org/zap"
)

// ExtractFunc extracts the page text of a document. Defaults to pdf.Extract.
type ExtractFunc func(path string) (*pdf.Extraction, error)

// IngestResult summarizes one successfully ingested file.
type IngestResult struct {
	Source string `json:"source"`
	Pages  int    `json:"pages"`
	Chunks int    `json:"chunks"`
}

// Service runs the extract → chunk → embed → store pipeline for documents.
type Service struct {
	extract  ExtractFunc
	chunker  *chunker.Chunker
	store    vectordb.Store
	registry *db.DB
	log      *zap.Logger
}

// New creates an ingestion Service. registry may be nil when no document
// registry is configured.
func New(ch *chunker.Chunker, store vectordb.Store, registry *db.DB, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		extract:  pdf.Extract,
		chunker:  ch,
		store:    store,
		registry: registry,
		log:      log,
	}
}

// WithExtractor overrides the extraction function. Used by tests and by
// callers feeding pre-extracted text.
func (s *Service) WithExtractor(fn ExtractFunc) *Service {
	s.extract = fn
	return s
}

// IngestFile extracts, chunks, and stores one document. source names the
// document in the store and registry, typically the file's base name.
// Re-ingesting an existing source replaces its chunks.
func (s *Service) IngestFile(ctx context.Context, path, source string) (*IngestResult, error) {
	ext, err := s.extract(path)
	if err != nil {
		return nil, fmt.Errorf("extracting %q: %w", path, err)
	}

	chunks := s.chunker.ChunkDocument(ext)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no usable text in %q: %w", path, pdf.ErrNoText)
	}

	// Drop any chunks from a prior ingest of the same source so the store
	// never holds two generations of one document.
	if err := s.store.DeleteBySource(ctx, source); err != nil {
		return nil, fmt.Errorf("clearing previous chunks of %q: %w", source, err)
	}

	entries := make([]vectordb.Entry, 0, len(chunks))
	docHash := sha256.New()
	for _, ch := range chunks {
		sum := sha256.Sum256([]byte(ch.Text))
		chunkHash := hex.EncodeToString(sum[:])
		docHash.Write(sum[:])

		entries = append(entries, vectordb.Entry{
			ID:   fmt.Sprintf("%s:%d:%s", source, ch.Index, chunkHash[:8]),
			Text: ch.Text,
			Metadata: vectordb.Metadata{
				Source:      source,
				Page:        ch.Page,
				ChunkIndex:  ch.Index,
				ContentHash: chunkHash,
			},
		})
	}

	if err := s.store.AddChunks(ctx, entries); err != nil {
		return nil, fmt.Errorf("storing chunks of %q: %w", source, err)
	}

	if s.registry != nil {
		err := s.registry.UpsertDocument(ctx, db.Document{
			Source:      source,
			Pages:       len(ext.Pages),
			Chunks:      len(entries),
			ContentHash: hex.EncodeToString(docHash.Sum(nil)),
		})
		if err != nil {
			return nil, fmt.Errorf("registering %q: %w", source, err)
		}
	}

	s.log.Info("document ingested",
		zap.String("source", source),
		zap.Int("pages", len(ext.Pages)),
		zap.Int("chunks", len(entries)))

	return &IngestResult{
		Source: source,
		Pages:  len(ext.Pages),
		Chunks: len(entries),
	}, nil
}
