package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ziadkadry99/deepdoc/internal/answer"
	"github.com/ziadkadry99/deepdoc/internal/chunker"
	"github.com/ziadkadry99/deepdoc/internal/db"
	"github.com/ziadkadry99/deepdoc/internal/ingest"
	"github.com/ziadkadry99/deepdoc/internal/llm"
	"github.com/ziadkadry99/deepdoc/internal/pdf"
	"github.com/ziadkadry99/deepdoc/internal/retriever"
	"github.com/ziadkadry99/deepdoc/internal/vectordb"
)

type stubEmbedder struct{}

func (stubEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}
func (stubEmbedder) Dimensions() int { return 3 }
func (stubEmbedder) Name() string    { return "stub" }

type stubStore struct {
	results []vectordb.SearchResult
	added   []vectordb.Entry
}

func (s *stubStore) AddChunks(ctx context.Context, entries []vectordb.Entry) error {
	s.added = append(s.added, entries...)
	return nil
}

func (s *stubStore) Query(ctx context.Context, vector []float32, topK int) ([]vectordb.SearchResult, error) {
	if topK < len(s.results) {
		return s.results[:topK], nil
	}
	return s.results, nil
}

func (s *stubStore) DeleteBySource(ctx context.Context, source string) error { return nil }
func (s *stubStore) Count() int                                              { return len(s.results) }

type stubProvider struct{ content string }

func (p stubProvider) Name() string { return "stub" }
func (p stubProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return &llm.CompletionResponse{Content: p.content, FinishReason: "stop"}, nil
}

func testServer(t *testing.T, store *stubStore) (*Server, *db.DB) {
	t.Helper()

	registry, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { registry.Close() })

	ret := retriever.New(stubEmbedder{}, store, 0.3, nil)
	synth := answer.NewSynthesizer(stubProvider{content: "stub answer"}, "stub-model", 1, time.Millisecond, nil)

	ch, err := chunker.New(100, 10, 5)
	if err != nil {
		t.Fatalf("chunker.New: %v", err)
	}
	ingestor := ingest.New(ch, store, registry, nil).WithExtractor(func(path string) (*pdf.Extraction, error) {
		return &pdf.Extraction{
			Path:  path,
			Pages: []pdf.Page{{Number: 1, Text: "A page of text long enough to survive filtering and become chunks."}},
		}, nil
	})

	return New(Config{Port: 0}, ret, synth, ingestor, registry, store, nil, nil), registry
}

func relevantChunks() []vectordb.SearchResult {
	return []vectordb.SearchResult{
		{
			Entry: vectordb.Entry{
				Text:     "Photosynthesis converts light energy into glucose.",
				Metadata: vectordb.Metadata{Source: "bio.pdf", Page: 3},
			},
			Similarity: 0.85,
		},
	}
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := testServer(t, &stubStore{})

	rec := doJSON(t, srv, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status ok, got %v", resp["status"])
	}
}

func TestAskReturnsAnswer(t *testing.T) {
	srv, registry := testServer(t, &stubStore{results: relevantChunks()})

	rec := doJSON(t, srv, http.MethodPost, "/ask", askRequest{Question: "What is photosynthesis?", Marks: 3})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp askResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Text != "stub answer" {
		t.Errorf("unexpected answer: %q", resp.Text)
	}
	if !resp.Generated {
		t.Error("expected Generated=true")
	}
	if resp.Marks != 3 {
		t.Errorf("expected marks 3, got %d", resp.Marks)
	}
	if len(resp.Sources) != 1 || resp.Sources[0].Source != "bio.pdf" {
		t.Errorf("unexpected sources: %+v", resp.Sources)
	}

	recs, err := registry.RecentQA(context.Background(), 10)
	if err != nil {
		t.Fatalf("RecentQA: %v", err)
	}
	if len(recs) != 1 || recs[0].Question != "What is photosynthesis?" {
		t.Errorf("expected question in history, got %+v", recs)
	}
}

func TestAskClampsMarks(t *testing.T) {
	srv, _ := testServer(t, &stubStore{results: relevantChunks()})

	rec := doJSON(t, srv, http.MethodPost, "/ask", askRequest{Question: "q", Marks: 50})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp askResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Marks != 5 {
		t.Errorf("expected marks clamped to 5, got %d", resp.Marks)
	}
}

func TestAskRequiresQuestion(t *testing.T) {
	srv, _ := testServer(t, &stubStore{})

	rec := doJSON(t, srv, http.MethodPost, "/ask", askRequest{Marks: 3})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestAskWithNoRelevantChunks(t *testing.T) {
	srv, _ := testServer(t, &stubStore{})

	rec := doJSON(t, srv, http.MethodPost, "/ask", askRequest{Question: "anything", Marks: 3})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp askResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Generated {
		t.Error("expected Generated=false with empty store")
	}
	if resp.Confidence != 0 {
		t.Errorf("expected confidence 0, got %f", resp.Confidence)
	}
}

func TestSearchEndpoint(t *testing.T) {
	srv, _ := testServer(t, &stubStore{results: relevantChunks()})

	rec := doJSON(t, srv, http.MethodPost, "/search", searchRequest{Query: "photosynthesis", Limit: 5})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Results []searchResult `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(resp.Results))
	}
	if resp.Results[0].Source != "bio.pdf" || resp.Results[0].Page != 3 {
		t.Errorf("unexpected result: %+v", resp.Results[0])
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	srv, _ := testServer(t, &stubStore{})

	rec := doJSON(t, srv, http.MethodPost, "/search", searchRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestUploadIngestsFiles(t *testing.T) {
	store := &stubStore{}
	srv, registry := testServer(t, store)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("files", "lecture.pdf")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	fw.Write([]byte("%PDF-1.4 fake content"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Results []uploadResult `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(resp.Results))
	}
	if resp.Results[0].Error != "" {
		t.Fatalf("unexpected upload error: %s", resp.Results[0].Error)
	}
	if resp.Results[0].Source != "lecture.pdf" || resp.Results[0].Chunks == 0 {
		t.Errorf("unexpected result: %+v", resp.Results[0])
	}
	if len(store.added) == 0 {
		t.Error("expected chunks added to store")
	}

	doc, err := registry.GetDocument(context.Background(), "lecture.pdf")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if doc == nil {
		t.Error("expected registry row for uploaded file")
	}
}

func TestUploadWithoutFiles(t *testing.T) {
	srv, _ := testServer(t, &stubStore{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestDocumentsEndpoint(t *testing.T) {
	srv, registry := testServer(t, &stubStore{})

	if err := registry.UpsertDocument(context.Background(), db.Document{Source: "a.pdf", Pages: 2, Chunks: 8}); err != nil {
		t.Fatalf("UpsertDocument: %v", err)
	}

	rec := doJSON(t, srv, http.MethodGet, "/documents", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "a.pdf") {
		t.Errorf("expected document listing, got %s", rec.Body.String())
	}
}

func TestStatsEndpoint(t *testing.T) {
	srv, _ := testServer(t, &stubStore{results: relevantChunks()})

	rec := doJSON(t, srv, http.MethodGet, "/stats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["chunks"].(float64) != 1 {
		t.Errorf("expected 1 chunk, got %v", resp["chunks"])
	}
	if resp["cache_enabled"] != false {
		t.Errorf("expected cache_enabled=false, got %v", resp["cache_enabled"])
	}
}
