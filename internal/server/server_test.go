package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hanen-gb/gcrbot/internal/app"
	"github.com/hanen-gb/gcrbot/internal/docindex"
)

type askerFunc func(ctx context.Context, question string) (app.Answer, error)

func (f askerFunc) Ask(ctx context.Context, question string) (app.Answer, error) {
	return f(ctx, question)
}

func TestHealth(t *testing.T) {
	s := &Server{App: askerFunc(nil)}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestAsk(t *testing.T) {
	s := &Server{App: askerFunc(func(_ context.Context, q string) (app.Answer, error) {
		return app.Answer{Question: q, Text: "réponse", SourceURL: "https://site.test/"}, nil
	})}

	body := bytes.NewBufferString(`{"question":"C'est quoi Mitacs ?"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/ask", body)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var ans app.Answer
	if err := json.Unmarshal(rec.Body.Bytes(), &ans); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ans.Text != "réponse" || ans.SourceURL != "https://site.test/" {
		t.Fatalf("answer = %+v", ans)
	}
}

func TestAskRejectsEmptyQuestion(t *testing.T) {
	s := &Server{App: askerFunc(func(context.Context, string) (app.Answer, error) {
		t.Fatal("Ask must not run for an empty question")
		return app.Answer{}, nil
	})}
	req := httptest.NewRequest(http.MethodPost, "/api/ask", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestAskRejectsInvalidJSON(t *testing.T) {
	s := &Server{App: askerFunc(nil)}
	req := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestDocumentEndpointsWithoutIndex(t *testing.T) {
	s := &Server{App: askerFunc(nil)}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/documents", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("list status = %d", rec.Code)
	}
}

func TestUploadAndListDocuments(t *testing.T) {
	dir := t.TempDir()
	idx, err := docindex.Open(filepath.Join(dir, "index.json"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	s := &Server{App: askerFunc(nil), Index: idx, UploadDir: filepath.Join(dir, "uploads")}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "notes.txt")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	fw.Write([]byte(strings.Repeat("Les délais de dépôt des conventions sont stricts. ", 10)))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("upload status = %d, body %s", rec.Code, rec.Body.String())
	}
	var doc docindex.Document
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Filename != "notes.txt" || doc.TotalChunks == 0 {
		t.Fatalf("doc = %+v", doc)
	}

	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/documents", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "notes.txt") {
		t.Fatalf("list body = %s", rec.Body.String())
	}
}
