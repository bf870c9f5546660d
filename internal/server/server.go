// Package server exposes the assistant over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/hanen-gb/gcrbot/internal/app"
	"github.com/hanen-gb/gcrbot/internal/docindex"
)

// Asker answers one question; satisfied by *app.App and by test stubs.
type Asker interface {
	Ask(ctx context.Context, question string) (app.Answer, error)
}

// Server is the HTTP facade. Index and UploadDir are optional; without
// them the document endpoints report that uploads are disabled.
type Server struct {
	App       Asker
	Index     *docindex.Index
	UploadDir string
	// AskTimeout bounds one question end to end. Zero means 2 minutes.
	AskTimeout time.Duration
}

const maxUploadBytes = 32 << 20

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/ask", s.handleAsk).Methods(http.MethodPost)
	r.HandleFunc("/api/documents", s.handleListDocuments).Methods(http.MethodGet)
	r.HandleFunc("/api/documents", s.handleUploadDocument).Methods(http.MethodPost)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type askRequest struct {
	Question string `json:"question"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	timeout := s.AskTimeout
	if timeout == 0 {
		timeout = 2 * time.Minute
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	ans, err := s.App.Ask(ctx, req.Question)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			writeError(w, http.StatusGatewayTimeout, "question timed out")
			return
		}
		log.Error().Err(err).Msg("ask failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, ans)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, _ *http.Request) {
	if s.Index == nil {
		writeError(w, http.StatusNotFound, "document index is not configured")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": s.Index.List()})
}

func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	if s.Index == nil || s.UploadDir == "" {
		writeError(w, http.StatusNotFound, "document uploads are not configured")
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if name == "" || name == "." {
		writeError(w, http.StatusBadRequest, "invalid filename")
		return
	}
	if err := os.MkdirAll(s.UploadDir, 0o755); err != nil {
		log.Error().Err(err).Msg("create upload dir")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	dst := filepath.Join(s.UploadDir, name)
	out, err := os.Create(dst)
	if err != nil {
		log.Error().Err(err).Msg("create upload file")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	_, copyErr := io.Copy(out, io.LimitReader(file, maxUploadBytes))
	closeErr := out.Close()
	if copyErr != nil || closeErr != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	doc, err := s.Index.Process(dst)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
