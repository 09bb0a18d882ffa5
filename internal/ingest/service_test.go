package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/ziadkadry99/deepdoc/internal/chunker"
	"github.com/ziadkadry99/deepdoc/internal/db"
	"github.com/ziadkadry99/deepdoc/internal/pdf"
	"github.com/ziadkadry99/deepdoc/internal/vectordb"
)

type recordingStore struct {
	entries []vectordb.Entry
	deleted []string
	addErr  error
	delErr  error
}

func (s *recordingStore) AddChunks(ctx context.Context, entries []vectordb.Entry) error {
	if s.addErr != nil {
		return s.addErr
	}
	s.entries = append(s.entries, entries...)
	return nil
}

func (s *recordingStore) Query(ctx context.Context, vector []float32, topK int) ([]vectordb.SearchResult, error) {
	return nil, nil
}

func (s *recordingStore) DeleteBySource(ctx context.Context, source string) error {
	if s.delErr != nil {
		return s.delErr
	}
	s.deleted = append(s.deleted, source)
	var kept []vectordb.Entry
	for _, e := range s.entries {
		if e.Source != source {
			kept = append(kept, e)
		}
	}
	s.entries = kept
	return nil
}

func (s *recordingStore) Count() int { return len(s.entries) }

func fakeExtractor(pages ...string) ExtractFunc {
	return func(path string) (*pdf.Extraction, error) {
		ext := &pdf.Extraction{Path: path}
		for i, text := range pages {
			ext.Pages = append(ext.Pages, pdf.Page{Number: i + 1, Text: text})
		}
		return ext, nil
	}
}

func newService(t *testing.T, store vectordb.Store, registry *db.DB) *Service {
	t.Helper()
	ch, err := chunker.New(100, 10, 5)
	if err != nil {
		t.Fatalf("chunker.New: %v", err)
	}
	return New(ch, store, registry, nil)
}

func TestIngestFileStoresChunksAndRegistry(t *testing.T) {
	store := &recordingStore{}
	registry, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer registry.Close()

	svc := newService(t, store, registry).WithExtractor(fakeExtractor(
		"This page talks about relational databases and indexes at length.",
		"This page covers transactions, isolation levels, and write-ahead logging.",
	))

	result, err := svc.IngestFile(context.Background(), "/tmp/notes.pdf", "notes.pdf")
	if err != nil {
		t.Fatalf("IngestFile: %v", err)
	}

	if result.Source != "notes.pdf" || result.Pages != 2 {
		t.Errorf("unexpected result: %+v", result)
	}
	if result.Chunks != len(store.entries) {
		t.Errorf("result reports %d chunks, store has %d", result.Chunks, len(store.entries))
	}
	if len(store.entries) == 0 {
		t.Fatal("expected chunks in store")
	}

	for i, e := range store.entries {
		if e.Source != "notes.pdf" {
			t.Errorf("entry %d: wrong source %q", i, e.Source)
		}
		if e.ChunkIndex != i {
			t.Errorf("entry %d: wrong chunk index %d", i, e.ChunkIndex)
		}
		if len(e.ContentHash) != 64 {
			t.Errorf("entry %d: expected sha256 hex hash, got %q", i, e.ContentHash)
		}
		wantPrefix := fmt.Sprintf("notes.pdf:%d:", i)
		if !strings.HasPrefix(e.ID, wantPrefix) {
			t.Errorf("entry %d: ID %q missing prefix %q", i, e.ID, wantPrefix)
		}
	}

	doc, err := registry.GetDocument(context.Background(), "notes.pdf")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if doc == nil {
		t.Fatal("expected registry row")
	}
	if doc.Pages != 2 || doc.Chunks != result.Chunks || doc.ContentHash == "" {
		t.Errorf("unexpected registry row: %+v", doc)
	}
}

func TestIngestFileReplacesPreviousChunks(t *testing.T) {
	store := &recordingStore{}
	svc := newService(t, store, nil).WithExtractor(fakeExtractor(
		"A reasonably long line of page text that survives the line filters.",
	))

	ctx := context.Background()
	if _, err := svc.IngestFile(ctx, "/tmp/a.pdf", "a.pdf"); err != nil {
		t.Fatalf("first ingest: %v", err)
	}
	first := len(store.entries)

	if _, err := svc.IngestFile(ctx, "/tmp/a.pdf", "a.pdf"); err != nil {
		t.Fatalf("second ingest: %v", err)
	}

	if len(store.deleted) != 2 {
		t.Errorf("expected DeleteBySource before each ingest, got %d calls", len(store.deleted))
	}
	if len(store.entries) != first {
		t.Errorf("re-ingest should replace chunks: had %d, now %d", first, len(store.entries))
	}
}

func TestIngestFileNoUsableText(t *testing.T) {
	store := &recordingStore{}
	svc := newService(t, store, nil).WithExtractor(fakeExtractor("?", "a?"))

	_, err := svc.IngestFile(context.Background(), "/tmp/empty.pdf", "empty.pdf")
	if !errors.Is(err, pdf.ErrNoText) {
		t.Fatalf("expected ErrNoText, got %v", err)
	}
	if len(store.deleted) != 0 {
		t.Error("store should be untouched when extraction yields nothing")
	}
}

func TestIngestFilePropagatesExtractError(t *testing.T) {
	wantErr := errors.New("file is encrypted")
	store := &recordingStore{}
	svc := newService(t, store, nil).WithExtractor(func(path string) (*pdf.Extraction, error) {
		return nil, wantErr
	})

	_, err := svc.IngestFile(context.Background(), "/tmp/x.pdf", "x.pdf")
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped extract error, got %v", err)
	}
}

func TestIngestFilePropagatesStoreError(t *testing.T) {
	wantErr := errors.New("store write failed")
	store := &recordingStore{addErr: wantErr}
	svc := newService(t, store, nil).WithExtractor(fakeExtractor(
		"A reasonably long line of page text that survives the line filters.",
	))

	_, err := svc.IngestFile(context.Background(), "/tmp/x.pdf", "x.pdf")
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}
