package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ziadkadry99/deepdoc/internal/answer"
	"github.com/ziadkadry99/deepdoc/internal/db"
	"github.com/ziadkadry99/deepdoc/internal/pdf"
	"github.com/ziadkadry99/deepdoc/internal/retriever"
)

const maxUploadSize = 100 << 20 // 100 MiB across all files

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status": "ok",
		"chunks": s.store.Count(),
	}
	if s.registry != nil {
		n, err := s.registry.CountDocuments(r.Context())
		if err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status": "degraded",
				"error":  err.Error(),
			})
			return
		}
		resp["documents"] = n
	}
	writeJSON(w, http.StatusOK, resp)
}

type askRequest struct {
	Question string `json:"question"`
	Marks    int    `json:"marks"`
}

type askResponse struct {
	*answer.Answer
	Question string `json:"question"`
	Marks    int    `json:"marks"`
	Cached   bool   `json:"cached"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}
	marks := retriever.ClampMarks(req.Marks)

	ctx := r.Context()

	if cached := s.cache.Get(ctx, req.Question, marks); cached != nil {
		writeJSON(w, http.StatusOK, askResponse{Answer: cached, Question: req.Question, Marks: marks, Cached: true})
		return
	}

	results, err := s.retriever.Retrieve(ctx, req.Question, marks)
	if err != nil {
		s.log.Error("retrieval failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "retrieval failed")
		return
	}

	ans, err := s.synth.Synthesize(ctx, req.Question, results, marks)
	if err != nil {
		if errors.Is(err, answer.ErrGenerationFailed) {
			writeError(w, http.StatusBadGateway, "could not generate an answer, please try again")
			return
		}
		s.log.Error("synthesis failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "answer synthesis failed")
		return
	}

	if ans.Generated {
		s.cache.Set(ctx, req.Question, marks, ans)
	}

	if s.registry != nil {
		if _, err := s.registry.RecordQA(ctx, db.QARecord{
			Question:   req.Question,
			Marks:      marks,
			Answer:     ans.Text,
			Confidence: ans.Confidence,
			ChunksUsed: ans.ChunksUsed,
		}); err != nil {
			s.log.Warn("failed to record qa history", zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, askResponse{Answer: ans, Question: req.Question, Marks: marks})
}

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type searchResult struct {
	Content    string  `json:"content"`
	Similarity float32 `json:"similarity"`
	Source     string  `json:"source"`
	Page       int     `json:"page,omitempty"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	results, err := s.retriever.Search(r.Context(), req.Query, req.Limit)
	if err != nil {
		s.log.Error("search failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	out := make([]searchResult, 0, len(results))
	for _, res := range results {
		out = append(out, searchResult{
			Content:    res.Text,
			Similarity: res.Similarity,
			Source:     res.Source,
			Page:       res.Page,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"query": req.Query, "results": out})
}

type uploadResult struct {
	Source string `json:"source"`
	Pages  int    `json:"pages,omitempty"`
	Chunks int    `json:"chunks,omitempty"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "no files provided")
		return
	}

	results := make([]uploadResult, 0, len(files))
	for _, fh := range files {
		results = append(results, s.ingestUpload(r, fh))
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (s *Server) ingestUpload(r *http.Request, fh *multipart.FileHeader) uploadResult {
	source := filepath.Base(fh.Filename)

	f, err := fh.Open()
	if err != nil {
		return uploadResult{Source: source, Error: "could not read upload"}
	}
	defer f.Close()

	path, err := saveUpload(f, source)
	if err != nil {
		s.log.Error("saving upload failed", zap.String("source", source), zap.Error(err))
		return uploadResult{Source: source, Error: "could not save upload"}
	}
	defer os.Remove(path)

	res, err := s.ingestor.IngestFile(r.Context(), path, source)
	if err != nil {
		s.log.Error("ingest failed", zap.String("source", source), zap.Error(err))
		if errors.Is(err, pdf.ErrNoText) {
			return uploadResult{Source: source, Error: "no extractable text in file"}
		}
		return uploadResult{Source: source, Error: "ingestion failed"}
	}
	return uploadResult{Source: source, Pages: res.Pages, Chunks: res.Chunks}
}

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	if s.registry == nil {
		writeJSON(w, http.StatusOK, map[string]any{"documents": []db.Document{}})
		return
	}
	docs, err := s.registry.ListDocuments(r.Context())
	if err != nil {
		s.log.Error("listing documents failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not list documents")
		return
	}
	if docs == nil {
		docs = []db.Document{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]any{
		"chunks":        s.store.Count(),
		"cache_enabled": s.cache != nil,
	}
	if s.registry != nil {
		if n, err := s.registry.CountDocuments(r.Context()); err == nil {
			stats["documents"] = n
		}
	}
	writeJSON(w, http.StatusOK, stats)
}

// saveUpload writes an uploaded file to a temp path and returns it. The
// caller removes the file when done.
func saveUpload(src io.Reader, name string) (string, error) {
	f, err := os.CreateTemp("", "upload-*"+filepath.Ext(name))
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, src); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("writing upload: %w", err)
	}
	return f.Name(), nil
}
