package db

import (
	"context"
	"testing"
)

func TestOpenMemory(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer d.Close()

	for _, table := range []string{"documents", "qa_history"} {
		var count int
		if err := d.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
			t.Errorf("table %s: %v", table, err)
		}
	}
}

func TestMigrateIdempotent(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer d.Close()

	if err := d.migrate(); err != nil {
		t.Fatalf("second migrate() error: %v", err)
	}
}

func TestUpsertDocumentReplacesExisting(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer d.Close()
	ctx := context.Background()

	if err := d.UpsertDocument(ctx, Document{Source: "notes.pdf", Pages: 10, Chunks: 40, ContentHash: "aaa"}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := d.UpsertDocument(ctx, Document{Source: "notes.pdf", Pages: 12, Chunks: 48, ContentHash: "bbb"}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	doc, err := d.GetDocument(ctx, "notes.pdf")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if doc == nil {
		t.Fatal("expected document, got nil")
	}
	if doc.Pages != 12 || doc.Chunks != 48 || doc.ContentHash != "bbb" {
		t.Errorf("upsert did not replace row: %+v", doc)
	}

	n, err := d.CountDocuments(ctx)
	if err != nil {
		t.Fatalf("CountDocuments: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 document, got %d", n)
	}
}

func TestGetDocumentAbsent(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer d.Close()

	doc, err := d.GetDocument(context.Background(), "missing.pdf")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if doc != nil {
		t.Errorf("expected nil for absent source, got %+v", doc)
	}
}

func TestListAndDeleteDocuments(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer d.Close()
	ctx := context.Background()

	for _, src := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		if err := d.UpsertDocument(ctx, Document{Source: src, Pages: 1, Chunks: 2}); err != nil {
			t.Fatalf("upsert %s: %v", src, err)
		}
	}

	docs, err := d.ListDocuments(ctx)
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("expected 3 documents, got %d", len(docs))
	}

	if err := d.DeleteDocument(ctx, "b.pdf"); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	docs, err = d.ListDocuments(ctx)
	if err != nil {
		t.Fatalf("ListDocuments after delete: %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("expected 2 documents after delete, got %d", len(docs))
	}

	// Deleting again is a no-op.
	if err := d.DeleteDocument(ctx, "b.pdf"); err != nil {
		t.Errorf("repeat delete should not error: %v", err)
	}
}

func TestRecordAndListQA(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer d.Close()
	ctx := context.Background()

	id, err := d.RecordQA(ctx, QARecord{
		Question:   "What is a B-tree?",
		Marks:      3,
		Answer:     "A balanced tree structure...",
		Confidence: 0.82,
		ChunksUsed: 4,
	})
	if err != nil {
		t.Fatalf("RecordQA: %v", err)
	}
	if id == "" {
		t.Fatal("expected generated ID")
	}

	recs, err := d.RecentQA(ctx, 10)
	if err != nil {
		t.Fatalf("RecentQA: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	rec := recs[0]
	if rec.ID != id || rec.Question != "What is a B-tree?" || rec.Marks != 3 || rec.ChunksUsed != 4 {
		t.Errorf("unexpected record: %+v", rec)
	}
}
