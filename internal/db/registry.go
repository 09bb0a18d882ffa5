package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Document is one registry row describing an ingested file.
type Document struct {
	Source      string    `json:"source"`
	Pages       int       `json:"pages"`
	Chunks      int       `json:"chunks"`
	ContentHash string    `json:"content_hash"`
	IngestedAt  time.Time `json:"ingested_at"`
}

// QARecord is one answered question from the history table.
type QARecord struct {
	ID         string    `json:"id"`
	Question   string    `json:"question"`
	Marks      int       `json:"marks"`
	Answer     string    `json:"answer"`
	Confidence float64   `json:"confidence"`
	ChunksUsed int       `json:"chunks_used"`
	CreatedAt  time.Time `json:"created_at"`
}

// UpsertDocument records an ingested file, replacing any prior row for the
// same source.
func (d *DB) UpsertDocument(ctx context.Context, doc Document) error {
	_, err := d.ExecContext(ctx, `
		INSERT INTO documents (source, pages, chunks, content_hash, ingested_at)
		VALUES (?, ?, ?, ?, datetime('now'))
		ON CONFLICT(source) DO UPDATE SET
			pages = excluded.pages,
			chunks = excluded.chunks,
			content_hash = excluded.content_hash,
			ingested_at = excluded.ingested_at`,
		doc.Source, doc.Pages, doc.Chunks, doc.ContentHash)
	if err != nil {
		return fmt.Errorf("upserting document %q: %w", doc.Source, err)
	}
	return nil
}

// GetDocument returns the registry row for a source, or (nil, nil) if absent.
func (d *DB) GetDocument(ctx context.Context, source string) (*Document, error) {
	row := d.QueryRowContext(ctx, `
		SELECT source, pages, chunks, content_hash, ingested_at
		FROM documents WHERE source = ?`, source)

	var doc Document
	err := row.Scan(&doc.Source, &doc.Pages, &doc.Chunks, &doc.ContentHash, &doc.IngestedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading document %q: %w", source, err)
	}
	return &doc, nil
}

// ListDocuments returns all registry rows, most recently ingested first.
func (d *DB) ListDocuments(ctx context.Context) ([]Document, error) {
	rows, err := d.QueryContext(ctx, `
		SELECT source, pages, chunks, content_hash, ingested_at
		FROM documents ORDER BY ingested_at DESC, source`)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.Source, &doc.Pages, &doc.Chunks, &doc.ContentHash, &doc.IngestedAt); err != nil {
			return nil, fmt.Errorf("scanning document row: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// DeleteDocument removes a registry row. Deleting an absent source is a no-op.
func (d *DB) DeleteDocument(ctx context.Context, source string) error {
	_, err := d.ExecContext(ctx, `DELETE FROM documents WHERE source = ?`, source)
	if err != nil {
		return fmt.Errorf("deleting document %q: %w", source, err)
	}
	return nil
}

// CountDocuments returns the number of registered documents.
func (d *DB) CountDocuments(ctx context.Context) (int, error) {
	var n int
	if err := d.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return n, nil
}

// RecordQA appends a question/answer pair to the history and returns its ID.
func (d *DB) RecordQA(ctx context.Context, rec QARecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	_, err := d.ExecContext(ctx, `
		INSERT INTO qa_history (id, question, marks, answer, confidence, chunks_used, created_at)
		VALUES (?, ?, ?, ?, ?, ?, datetime('now'))`,
		rec.ID, rec.Question, rec.Marks, rec.Answer, rec.Confidence, rec.ChunksUsed)
	if err != nil {
		return "", fmt.Errorf("recording qa history: %w", err)
	}
	return rec.ID, nil
}

// RecentQA returns up to limit history rows, newest first.
func (d *DB) RecentQA(ctx context.Context, limit int) ([]QARecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.QueryContext(ctx, `
		SELECT id, question, marks, answer, confidence, chunks_used, created_at
		FROM qa_history ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing qa history: %w", err)
	}
	defer rows.Close()

	var recs []QARecord
	for rows.Next() {
		var rec QARecord
		if err := rows.Scan(&rec.ID, &rec.Question, &rec.Marks, &rec.Answer,
			&rec.Confidence, &rec.ChunksUsed, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning qa row: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
