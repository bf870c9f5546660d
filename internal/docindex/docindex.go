// Package docindex holds a small local document index for uploaded
// files: extraction, chunking, keyword-feature embeddings and a JSON
// store that survives restarts. It answers "search in my documents"
// questions without any external vector database.
package docindex

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hanen-gb/gcrbot/internal/pdftext"
)

const (
	chunkSize    = 1000
	chunkOverlap = 200
)

// Document records one indexed file.
type Document struct {
	Filename    string    `json:"filename"`
	TotalChunks int       `json:"total_chunks"`
	TotalChars  int       `json:"total_chars"`
	IndexedAt   time.Time `json:"indexed_at"`
}

// Chunk is one overlapping slice of a document's text plus its
// embedding vector.
type Chunk struct {
	DocHash   string    `json:"doc_hash"`
	ID        int       `json:"chunk_id"`
	Text      string    `json:"text"`
	Embedding []float64 `json:"embedding"`
}

// Hit is one search result.
type Hit struct {
	Filename string
	Text     string
	Score    float64
}

type store struct {
	Documents map[string]Document `json:"documents"`
	Chunks    []Chunk             `json:"chunks"`
}

// Index is safe for concurrent use. The zero value is not usable; call
// Open.
type Index struct {
	path string
	pdf  *pdftext.Extractor

	mu   sync.Mutex
	data store
}

// Open loads the index stored at path, or starts an empty one if the
// file does not exist yet.
func Open(path string) (*Index, error) {
	idx := &Index{
		path: path,
		pdf:  &pdftext.Extractor{},
		data: store{Documents: make(map[string]Document)},
	}
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return idx, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	if err := json.Unmarshal(raw, &idx.data); err != nil {
		return nil, fmt.Errorf("parse index %s: %w", path, err)
	}
	if idx.data.Documents == nil {
		idx.data.Documents = make(map[string]Document)
	}
	return idx, nil
}

func (x *Index) save() error {
	raw, err := json.MarshalIndent(x.data, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(x.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(x.path, raw, 0o644)
}

// Process extracts, chunks and indexes one file. Supported formats are
// PDF and plain text (txt, md). Re-processing an unchanged file is a
// no-op.
func (x *Index) Process(filePath string) (Document, error) {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return Document{}, fmt.Errorf("read document: %w", err)
	}
	sum := md5.Sum(raw)
	hash := hex.EncodeToString(sum[:])[:12]

	x.mu.Lock()
	if doc, ok := x.data.Documents[hash]; ok {
		x.mu.Unlock()
		return doc, nil
	}
	x.mu.Unlock()

	text, err := x.extractText(filePath)
	if err != nil {
		return Document{}, err
	}
	chunks := splitChunks(text)
	if len(chunks) == 0 {
		return Document{}, fmt.Errorf("no text extracted from %s", filepath.Base(filePath))
	}

	doc := Document{
		Filename:    filepath.Base(filePath),
		TotalChunks: len(chunks),
		TotalChars:  len(text),
		IndexedAt:   time.Now().UTC(),
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	x.data.Documents[hash] = doc
	for i, c := range chunks {
		x.data.Chunks = append(x.data.Chunks, Chunk{
			DocHash:   hash,
			ID:        i,
			Text:      c,
			Embedding: embed(c),
		})
	}
	if err := x.save(); err != nil {
		return Document{}, fmt.Errorf("save index: %w", err)
	}
	log.Info().Str("file", doc.Filename).Int("chunks", len(chunks)).Msg("document indexed")
	return doc, nil
}

func (x *Index) extractText(filePath string) (string, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".pdf":
		doc, err := x.pdf.ExtractFile(filePath)
		if err != nil {
			return "", err
		}
		if doc.Status != pdftext.StatusOK {
			return "", fmt.Errorf("pdf %s not extractable", filepath.Base(filePath))
		}
		var b strings.Builder
		for _, p := range doc.Pages {
			b.WriteString(p.Text)
			b.WriteString("\n")
		}
		return b.String(), nil
	case ".txt", ".md":
		raw, err := os.ReadFile(filePath)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	default:
		return "", fmt.Errorf("unsupported document format: %s", filepath.Ext(filePath))
	}
}

// Search returns the topK most relevant chunks for the query, blending
// embedding similarity with direct word overlap. Hits below a minimal
// relevance are dropped entirely.
func (x *Index) Search(query string, topK int) []Hit {
	if topK <= 0 {
		topK = 5
	}
	qEmb := embed(query)
	qWords := wordSet(query)

	x.mu.Lock()
	defer x.mu.Unlock()

	var hits []Hit
	for _, c := range x.data.Chunks {
		overlap := 0
		cWords := wordSet(c.Text)
		for w := range qWords {
			if cWords[w] {
				overlap++
			}
		}
		wordScore := float64(overlap) / math.Max(float64(len(qWords)), 1)
		score := cosine(qEmb, c.Embedding)*0.4 + wordScore*0.6
		if score < 0.1 {
			continue
		}
		hits = append(hits, Hit{
			Filename: x.data.Documents[c.DocHash].Filename,
			Text:     c.Text,
			Score:    score,
		})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits
}

// List returns the indexed documents sorted by filename.
func (x *Index) List() []Document {
	x.mu.Lock()
	defer x.mu.Unlock()
	docs := make([]Document, 0, len(x.data.Documents))
	for _, d := range x.data.Documents {
		docs = append(docs, d)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Filename < docs[j].Filename })
	return docs
}

// Filenames returns the indexed filenames, used by question routing to
// spot references to a known document.
func (x *Index) Filenames() []string {
	docs := x.List()
	names := make([]string, len(docs))
	for i, d := range docs {
		names[i] = d.Filename
	}
	return names
}

// Overview assembles the head and tail chunks of a document as raw
// material for a summary. An empty name targets every document.
func (x *Index) Overview(name string) string {
	x.mu.Lock()
	defer x.mu.Unlock()

	var b strings.Builder
	for hash, doc := range x.data.Documents {
		if name != "" && !strings.Contains(strings.ToLower(doc.Filename), strings.ToLower(name)) {
			continue
		}
		var chunks []Chunk
		for _, c := range x.data.Chunks {
			if c.DocHash == hash {
				chunks = append(chunks, c)
			}
		}
		if len(chunks) == 0 {
			continue
		}
		fmt.Fprintf(&b, "DOCUMENT : %s (%d sections, %d caractères)\n\n", doc.Filename, doc.TotalChunks, doc.TotalChars)
		b.WriteString(chunks[0].Text)
		if len(chunks) > 2 {
			b.WriteString("\n\n[...]\n\n")
			b.WriteString(chunks[len(chunks)-1].Text)
		}
		b.WriteString("\n\n")
	}
	return strings.TrimSpace(b.String())
}

// splitChunks cuts text into chunkSize slices with chunkOverlap carry,
// preferring to cut at a sentence or line end past the halfway point.
func splitChunks(text string) []string {
	text = strings.TrimSpace(text)
	var chunks []string
	start := 0
	for start < len(text) {
		end := start + chunkSize
		if end > len(text) {
			end = len(text)
		}
		chunk := text[start:end]
		if end < len(text) {
			cut := strings.LastIndexByte(chunk, '.')
			if nl := strings.LastIndexByte(chunk, '\n'); nl > cut {
				cut = nl
			}
			if cut > chunkSize/2 {
				chunk = chunk[:cut+1]
				end = start + cut + 1
			}
		}
		if trimmed := strings.TrimSpace(chunk); trimmed != "" {
			chunks = append(chunks, trimmed)
		}
		start = end - chunkOverlap
		if start < 0 || end == len(text) {
			break
		}
	}
	return chunks
}

var wordRe = regexp.MustCompile(`\w+`)

// commonWords anchor the embedding's feature dimensions. The vector is
// deliberately crude; it only needs to separate chunks well enough for
// the word-overlap term to do the real ranking.
var commonWords = []string{
	"le", "la", "de", "et", "en", "un", "une", "est", "pour", "que",
	"the", "a", "an", "is", "for", "that", "with", "on", "at", "to",
}

var digitRe = regexp.MustCompile(`\d+`)

func embed(text string) []float64 {
	lower := strings.ToLower(text)
	words := wordRe.FindAllString(lower, -1)
	total := math.Max(float64(len(words)), 1)

	counts := make(map[string]int, len(words))
	for _, w := range words {
		counts[w]++
	}

	features := make([]float64, 0, len(commonWords)+3)
	for _, w := range commonWords {
		features = append(features, float64(counts[w])/total)
	}
	features = append(features, math.Min(float64(len(text))/5000, 1.0))
	features = append(features, float64(len(words))/500)
	features = append(features, float64(len(digitRe.FindAllString(text, -1)))/100)
	return features
}

func cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, magA, magB float64
	for i := range a {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

func wordSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range wordRe.FindAllString(strings.ToLower(text), -1) {
		set[w] = true
	}
	return set
}
