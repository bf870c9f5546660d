// Package crawler drives adaptive content discovery: fetch a start
// page, score it against the query, and explore the highest scoring
// internal links until a good enough match is found or the page budget
// runs out.
package crawler

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hanen-gb/gcrbot/internal/extract"
	"github.com/hanen-gb/gcrbot/internal/fetch"
	"github.com/hanen-gb/gcrbot/internal/links"
	"github.com/hanen-gb/gcrbot/internal/pdftext"
	"github.com/hanen-gb/gcrbot/internal/report"
	"github.com/hanen-gb/gcrbot/internal/score"
)

// Kind tags the outcome of a discovery call so callers branch on a
// typed value instead of sniffing marker strings in the content.
type Kind int

const (
	// KindFound means usable content was extracted; Score says how well
	// it matched the query.
	KindFound Kind = iota
	// KindNotFound means the start page was unreachable or yielded no
	// text at all.
	KindNotFound
)

// Result is the outcome of one discovery session.
type Result struct {
	Kind      Kind
	Content   string
	SourceURL string
	Score     int
	PDFLinks  []string
}

// Format renders the result for the calling layer, applying the given
// character budget.
func (r Result) Format(budget int) string {
	if r.Kind == KindNotFound {
		return report.NotFound(r.SourceURL)
	}
	return report.Format(r.Content, r.SourceURL, r.PDFLinks, budget)
}

// Request describes one discovery call.
type Request struct {
	StartURL string
	// MaxPages bounds the internal link candidates considered beyond
	// the start page.
	MaxPages int
	// DeepCrawl enables exploring internal links when the start page
	// does not match well enough on its own.
	DeepCrawl bool
	// ExtractPDFContent switches from merely listing discovered PDF
	// links to extracting their text inline.
	ExtractPDFContent bool
	// Keywords from the user's question, joined into the search query.
	Keywords []string
}

// Thresholds are the stop conditions of the exploration loop. The
// defaults come from tuning against institutional sites and are not
// claimed optimal; override per deployment if a labeled relevance set
// says otherwise.
type Thresholds struct {
	// FastPath returns the start page immediately when its content
	// score reaches this value.
	FastPath int
	// Stop ends exploration the first time a combined score reaches
	// this value.
	Stop int
	// Acceptable ends exploration once the running best reaches this
	// value and at least AcceptableAfter pages were explored.
	Acceptable      int
	AcceptableAfter int
}

// DefaultThresholds returns the stock stop conditions.
func DefaultThresholds() Thresholds {
	return Thresholds{FastPath: 60, Stop: 70, Acceptable: 50, AcceptableAfter: 4}
}

// Fetcher retrieves one page and classifies the payload.
type Fetcher interface {
	GetPage(ctx context.Context, rawURL string) ([]byte, fetch.Kind, error)
}

// PDFExtractor turns a PDF URL into an extracted document.
type PDFExtractor interface {
	Extract(ctx context.Context, rawURL string) (pdftext.Document, error)
}

// Controller orchestrates fetching, extraction and scoring for one
// deployment. It holds no per-call state; every Discover call owns its
// own session, so a shared Controller is safe for concurrent requests.
type Controller struct {
	Fetcher    Fetcher
	PDF        PDFExtractor
	LinkConfig links.Config
	Thresholds Thresholds
	// MaxPDFExtractionsPerPage caps inline PDF extraction per HTML
	// page. Zero means the default of 3.
	MaxPDFExtractionsPerPage int
}

// New returns a Controller with default link scoring and thresholds.
func New(f Fetcher, pdf PDFExtractor) *Controller {
	return &Controller{
		Fetcher:    f,
		PDF:        pdf,
		LinkConfig: links.Config{},
		Thresholds: DefaultThresholds(),
	}
}

// session is the per-call state: visited URLs keyed by their cleaned
// form and the ordered list of discovered PDF links.
type session struct {
	visited map[string]bool
	pdfs    []string
}

func newSession() *session {
	return &session{visited: make(map[string]bool)}
}

func (s *session) seen(rawURL string) bool {
	return s.visited[links.Clean(rawURL)]
}

func (s *session) markVisited(rawURL string) {
	s.visited[links.Clean(rawURL)] = true
}

func (s *session) addPDF(rawURL string) bool {
	for _, p := range s.pdfs {
		if p == rawURL {
			return false
		}
	}
	s.pdfs = append(s.pdfs, rawURL)
	return true
}

// Discover runs one discovery session and returns the best result it
// could find. It never fails on ordinary network or content problems;
// a fully unreachable start page yields a KindNotFound result.
func (c *Controller) Discover(ctx context.Context, req Request) Result {
	s := newSession()
	query := strings.Join(req.Keywords, " ")

	log.Debug().Str("url", req.StartURL).Str("query", query).Msg("discovery started")

	mainContent, mainHTML := c.extractPage(ctx, s, req.StartURL, req.ExtractPDFContent)

	mainScore := 0
	if mainContent != "" {
		mainScore = score.Match(mainContent, query)
		if mainScore >= c.Thresholds.FastPath {
			log.Debug().Int("score", mainScore).Msg("start page matched, skipping crawl")
			return c.found(s, mainContent, req.StartURL, mainScore)
		}
	}

	if !req.DeepCrawl {
		return c.found(s, mainContent, req.StartURL, mainScore)
	}

	candidates := links.Score(mainHTML, req.StartURL, query, c.LinkConfig)
	if len(candidates) == 0 {
		log.Debug().Msg("no internal links to explore")
		return c.found(s, mainContent, req.StartURL, mainScore)
	}
	if req.MaxPages > 0 && len(candidates) > req.MaxPages {
		candidates = candidates[:req.MaxPages]
	}

	best := Result{Content: mainContent, SourceURL: req.StartURL, Score: mainScore}
	pagesExplored := 1

	for _, cand := range candidates {
		if err := ctx.Err(); err != nil {
			log.Debug().Err(err).Msg("discovery cancelled")
			break
		}
		if s.seen(cand.URL) {
			continue
		}
		pagesExplored++
		log.Debug().Str("url", cand.URL).Int("titleScore", cand.Score).Msg("exploring link")

		content, _ := c.extractPage(ctx, s, cand.URL, req.ExtractPDFContent)
		if content == "" {
			continue
		}

		contentScore := score.Match(content, query)
		combined := (cand.Score + contentScore) / 2

		if combined > best.Score {
			best = Result{Content: content, SourceURL: cand.URL, Score: combined}
		}
		if combined >= c.Thresholds.Stop {
			log.Debug().Int("score", combined).Msg("sufficient match, stopping")
			return c.found(s, best.Content, best.SourceURL, best.Score)
		}
		if best.Score >= c.Thresholds.Acceptable && pagesExplored >= c.Thresholds.AcceptableAfter {
			log.Debug().Int("score", best.Score).Int("pages", pagesExplored).Msg("acceptable match, stopping")
			break
		}
	}

	return c.found(s, best.Content, best.SourceURL, best.Score)
}

func (c *Controller) found(s *session, content, sourceURL string, matchScore int) Result {
	kind := KindFound
	if content == "" {
		kind = KindNotFound
	}
	return Result{
		Kind:      kind,
		Content:   content,
		SourceURL: sourceURL,
		Score:     matchScore,
		PDFLinks:  append([]string(nil), s.pdfs...),
	}
}

// extractPage fetches one URL and returns its extracted text plus, for
// HTML pages, the raw body for link scoring. Already visited URLs and
// fetch failures yield empty content; the URL counts as visited either
// way so it is never retried within the session.
func (c *Controller) extractPage(ctx context.Context, s *session, rawURL string, extractPDF bool) (string, []byte) {
	if s.seen(rawURL) {
		return "", nil
	}
	s.markVisited(rawURL)

	body, kind, err := c.Fetcher.GetPage(ctx, rawURL)
	if err != nil {
		log.Warn().Str("url", rawURL).Err(err).Msg("fetch failed")
		return "", nil
	}

	if kind == fetch.KindPDF {
		s.addPDF(rawURL)
		if extractPDF && c.PDF != nil {
			doc, err := c.PDF.Extract(ctx, rawURL)
			if err != nil {
				log.Warn().Str("url", rawURL).Err(err).Msg("pdf extraction failed")
				return "", nil
			}
			return doc.Format(), nil
		}
		return fmt.Sprintf("[PDF détecté : %s]", path.Base(rawURL)), nil
	}

	text := extract.FromHTML(body).Text

	fileLinks := links.Files(body, rawURL)
	pdfLinks := links.PDFs(fileLinks)

	var extracted []string
	maxExtract := c.MaxPDFExtractionsPerPage
	if maxExtract <= 0 {
		maxExtract = 3
	}
	for _, link := range pdfLinks {
		if !s.addPDF(link) {
			continue
		}
		if !extractPDF || c.PDF == nil || len(extracted) >= maxExtract {
			continue
		}
		doc, err := c.PDF.Extract(ctx, link)
		if err != nil {
			log.Warn().Str("url", link).Err(err).Msg("pdf extraction failed")
			continue
		}
		if doc.Status != pdftext.StatusOK {
			continue
		}
		if formatted := doc.Format(); len(formatted) > 100 {
			extracted = append(extracted, formatted)
		}
	}

	if len(extracted) > 0 {
		text += "\n\n" + strings.Repeat("=", 60) + "\n" +
			"CONTENU DES PDFs EXTRAITS\n" +
			strings.Repeat("=", 60) + "\n\n" +
			strings.Join(extracted, "\n\n")
	} else if extractPDF && len(s.pdfs) > 0 {
		text += "\n\n" + strings.Repeat("=", 60) + "\n" +
			"LIENS PDF DISPONIBLES (contenu non extrait)\n" +
			strings.Repeat("=", 60) + "\n"
		for _, link := range s.pdfs {
			text += link + "\n"
		}
	}

	return text, body
}
