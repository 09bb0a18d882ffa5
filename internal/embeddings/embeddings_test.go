package embeddings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOllamaEmbedderEmbedsTexts(t *testing.T) {
	var requests []ollamaEmbedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var req ollamaEmbedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		requests = append(requests, req)
		json.NewEncoder(w).Encode(ollamaEmbedResponse{
			Embeddings: [][]float32{{0.1, 0.2, 0.3}},
		})
	}))
	defer server.Close()

	e := NewOllamaEmbedder("all-minilm", 3, server.URL)

	vecs, err := e.Embed(context.Background(), []string{"first chunk", "second chunk"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vecs) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(vecs))
	}
	for i, v := range vecs {
		if len(v) != 3 {
			t.Errorf("vector %d: expected 3 dimensions, got %d", i, len(v))
		}
	}

	if len(requests) != 2 {
		t.Fatalf("expected 2 API calls, got %d", len(requests))
	}
	if requests[0].Model != "all-minilm" {
		t.Errorf("expected model 'all-minilm', got %q", requests[0].Model)
	}
	if requests[0].Input != "first chunk" || requests[1].Input != "second chunk" {
		t.Errorf("inputs not forwarded in order: %q, %q", requests[0].Input, requests[1].Input)
	}
}

func TestOllamaEmbedderEmptyInput(t *testing.T) {
	e := NewOllamaEmbedder("all-minilm", 384, "http://localhost:1")

	vecs, err := e.Embed(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vecs != nil {
		t.Errorf("expected nil for empty input, got %v", vecs)
	}
}

func TestOllamaEmbedderServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	e := NewOllamaEmbedder("missing-model", 384, server.URL)

	_, err := e.Embed(context.Background(), []string{"text"})
	if err == nil {
		t.Fatal("expected error for non-OK status")
	}
}

func TestOllamaEmbedderNoEmbeddingsInResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ollamaEmbedResponse{})
	}))
	defer server.Close()

	e := NewOllamaEmbedder("all-minilm", 384, server.URL)

	_, err := e.Embed(context.Background(), []string{"text"})
	if err == nil {
		t.Fatal("expected error for empty embeddings response")
	}
}

func TestOllamaEmbedderDefaultBaseURL(t *testing.T) {
	e := NewOllamaEmbedder("all-minilm", 384, "")
	if e.baseURL != defaultOllamaBaseURL {
		t.Errorf("expected default base URL, got %q", e.baseURL)
	}
	if e.Dimensions() != 384 {
		t.Errorf("expected 384 dimensions, got %d", e.Dimensions())
	}
	if e.Name() != "ollama/all-minilm" {
		t.Errorf("unexpected name %q", e.Name())
	}
}

func TestOpenAIModelDimensions(t *testing.T) {
	tests := []struct {
		model OpenAIModel
		want  int
	}{
		{ModelTextEmbedding3Small, 1536},
		{ModelTextEmbedding3Large, 3072},
		{OpenAIModel("unknown"), 1536},
	}

	for _, tt := range tests {
		if got := tt.model.dimensions(); got != tt.want {
			t.Errorf("dimensions(%q) = %d, want %d", tt.model, got, tt.want)
		}
	}
}

func TestOpenAIEmbedderEmptyInput(t *testing.T) {
	e := NewOpenAIEmbedder("test-key", ModelTextEmbedding3Small)

	vecs, err := e.Embed(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vecs != nil {
		t.Errorf("expected nil for empty input, got %v", vecs)
	}
}
