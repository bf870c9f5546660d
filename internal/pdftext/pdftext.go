// Package pdftext downloads PDF documents and reconstructs their text.
//
// Extraction runs a fixed three-strategy fallback: layout-aware row
// reconstruction tuned for timetable-like tables, then plain full-text
// extraction, then character-level reconstruction for degraded layouts.
// Each strategy is tried in full; output sufficiency alone decides the
// fallback.
package pdftext

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"

	"github.com/hanen-gb/gcrbot/internal/fetch"
)

// Status tags the outcome of one PDF extraction.
type Status int

const (
	// StatusOK means at least one page yielded usable text.
	StatusOK Status = iota
	// StatusNotPDF means the URL did not serve a PDF document.
	StatusNotPDF
	// StatusUnextractable means every page stayed under the minimum
	// character threshold after all strategies, typically a scanned or
	// image-only document.
	StatusUnextractable
)

// Page is one page's worth of reconstructed text.
type Page struct {
	Number int
	Text   string
}

// Document is the outcome of extracting one PDF.
type Document struct {
	Status      Status
	URL         string
	Filename    string
	PageCount   int
	Pages       []Page
	ContentType string // set for StatusNotPDF
}

// Getter fetches a PDF body. *fetch.Client satisfies it.
type Getter interface {
	GetPDF(ctx context.Context, url string) ([]byte, string, error)
}

// strategyFunc reconstructs per-page text from a PDF file on disk.
type strategyFunc func(path string) ([]Page, error)

// Extractor downloads PDFs to a scoped temporary file and runs the
// strategy pipeline. The zero thresholds fall back to the defaults below.
type Extractor struct {
	Client Getter

	// DayNames drive the day-section detection of the layout strategy.
	// Nil means DefaultDayNames.
	DayNames []string
	// FallbackThreshold is the minimum total character count a strategy
	// must produce before the next one is tried. Zero means 200.
	FallbackThreshold int
	// MinPageChars is the per-page floor under which a document counts
	// as unextractable. Zero means 20.
	MinPageChars int
	// RowTolerance is the vertical band, in PDF points, within which
	// positioned text elements belong to one row. Zero means 8.
	RowTolerance float64

	// strategies overrides the pipeline in tests.
	strategies []strategyFunc
}

// DefaultDayNames covers French and English weekday labels found in
// school timetables.
var DefaultDayNames = []string{
	"lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi", "dimanche",
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}

// Extract downloads the PDF at url and reconstructs its text. Network and
// filesystem failures surface as errors; "not a PDF" and "unextractable"
// are ordinary outcomes reported through Document.Status.
func (e *Extractor) Extract(ctx context.Context, url string) (Document, error) {
	body, contentType, err := e.Client.GetPDF(ctx, url)
	if err != nil {
		return Document{}, fmt.Errorf("download pdf: %w", err)
	}
	if fetch.Classify(contentType, url) != fetch.KindPDF {
		log.Warn().Str("url", url).Str("contentType", contentType).Msg("link does not serve a PDF")
		return Document{Status: StatusNotPDF, URL: url, Filename: baseName(url), ContentType: contentType}, nil
	}
	log.Debug().Str("url", url).Int("bytes", len(body)).Msg("pdf downloaded")

	tmp, err := os.CreateTemp("", "gcrbot-*.pdf")
	if err != nil {
		return Document{}, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)
	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return Document{}, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return Document{}, fmt.Errorf("close temp file: %w", err)
	}

	doc, err := e.ExtractFile(tmpPath)
	if err != nil {
		return Document{}, err
	}
	doc.URL = url
	doc.Filename = baseName(url)
	return doc, nil
}

// ExtractFile runs the strategy pipeline over a PDF already on disk.
// Document indexing uses this entry point directly for uploaded files.
func (e *Extractor) ExtractFile(filePath string) (Document, error) {
	pageCount, err := numPages(filePath)
	if err != nil {
		return Document{}, fmt.Errorf("open pdf: %w", err)
	}

	var pages []Page
	for i, strat := range e.pipeline() {
		got, err := strat(filePath)
		if err != nil {
			log.Debug().Int("strategy", i+1).Err(err).Msg("pdf strategy failed")
			continue
		}
		pages = got
		if totalChars(pages) >= e.fallbackThreshold() {
			break
		}
		log.Debug().Int("strategy", i+1).Int("chars", totalChars(pages)).Msg("thin pdf extraction, trying next strategy")
	}

	doc := Document{
		URL:       filePath,
		Filename:  path.Base(filePath),
		PageCount: pageCount,
		Pages:     pages,
	}
	if e.unextractable(pages) {
		doc.Status = StatusUnextractable
		doc.Pages = nil
		return doc, nil
	}
	return doc, nil
}

func (e *Extractor) pipeline() []strategyFunc {
	if e.strategies != nil {
		return e.strategies
	}
	return []strategyFunc{e.extractRows, e.extractPlain, e.extractGlyphs}
}

// unextractable reports whether every page's trimmed text is under the
// per-page floor.
func (e *Extractor) unextractable(pages []Page) bool {
	for _, p := range pages {
		if len(strings.TrimSpace(p.Text)) >= e.minPageChars() {
			return false
		}
	}
	return true
}

func (e *Extractor) fallbackThreshold() int {
	if e.FallbackThreshold > 0 {
		return e.FallbackThreshold
	}
	return 200
}

func (e *Extractor) minPageChars() int {
	if e.MinPageChars > 0 {
		return e.MinPageChars
	}
	return 20
}

func (e *Extractor) rowTolerance() float64 {
	if e.RowTolerance > 0 {
		return e.RowTolerance
	}
	return 8
}

func (e *Extractor) dayNames() []string {
	if e.DayNames != nil {
		return e.DayNames
	}
	return DefaultDayNames
}

// Format renders the document for inclusion in a crawl result, in the
// shape the answering layer expects: a document header, page blocks, and
// a closing marker. Failure statuses render as tagged one-liners that
// still carry the direct link so it can be surfaced to the user.
func (d Document) Format() string {
	switch d.Status {
	case StatusNotPDF:
		return fmt.Sprintf("[Le lien ne pointe pas vers un PDF : %s]", d.ContentType)
	case StatusUnextractable:
		return fmt.Sprintf(
			"[PDF détecté mais contenu non extractible (peut-être scanné/image) : %s]\nLien direct: %s",
			d.Filename, d.URL)
	}

	divider := strings.Repeat("=", 60)
	var b strings.Builder
	fmt.Fprintf(&b, "DOCUMENT PDF : %s\n", d.Filename)
	fmt.Fprintf(&b, "Nombre de pages : %d\n", d.PageCount)
	fmt.Fprintf(&b, "Lien direct: %s\n", d.URL)
	for _, p := range d.Pages {
		b.WriteString("\n")
		b.WriteString(divider)
		fmt.Fprintf(&b, "\nPAGE %d\n", p.Number)
		b.WriteString(divider)
		b.WriteString("\n")
		if strings.TrimSpace(p.Text) == "" {
			b.WriteString("[Page vide ou image]\n")
			continue
		}
		b.WriteString(p.Text)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\n%s\nFIN DU DOCUMENT (%d pages)\n%s\n", divider, d.PageCount, divider)
	return b.String()
}

func totalChars(pages []Page) int {
	n := 0
	for _, p := range pages {
		n += len(p.Text)
	}
	return n
}

func numPages(filePath string) (int, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return r.NumPage(), nil
}

func baseName(url string) string {
	u := url
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	return path.Base(u)
}
