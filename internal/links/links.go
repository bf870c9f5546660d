// Package links discovers and ranks same-domain links on a fetched page.
package links

import (
	"bytes"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/hanen-gb/gcrbot/internal/score"
)

// ScoredLink pairs a candidate URL with its pre-fetch relevance score and
// the anchor text it was discovered under.
type ScoredLink struct {
	URL   string
	Text  string
	Score int
}

// Config holds the keyword tables used during link scoring. Both lists are
// data, not control flow, so locale or domain extensions only touch
// configuration.
type Config struct {
	// ExcludeTerms drop a candidate outright when present in its URL.
	ExcludeTerms []string
	// PriorityTerms earn a flat bonus when present in anchor text or URL.
	PriorityTerms []string
}

// DefaultExcludeTerms filter navigation and legal pages that never answer
// a content question.
var DefaultExcludeTerms = []string{"login", "contact", "privacy", "cookie", "footer"}

// DefaultPriorityTerms mark pages that tend to hold programme and
// procedure listings on institutional sites.
var DefaultPriorityTerms = []string{"programme", "stage", "internship", "procedure", "list", "all", "nos-"}

func (c Config) withDefaults() Config {
	if c.ExcludeTerms == nil {
		c.ExcludeTerms = DefaultExcludeTerms
	}
	if c.PriorityTerms == nil {
		c.PriorityTerms = DefaultPriorityTerms
	}
	return c
}

const (
	combinedMatchPoints = 30
	pathMatchPoints     = 20
	priorityTermPoints  = 10
)

// Clean strips the query string and fragment from a URL so that visited-set
// lookups and link dedup agree on one canonical form.
func Clean(raw string) string {
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		raw = raw[:i]
	}
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		raw = raw[:i]
	}
	return raw
}

// Score extracts the same-domain links of pageHTML and ranks them against
// the query. Candidates keep discovery order on equal scores; zero-score
// candidates are dropped. A nil or unparsable page yields no links, which
// callers must treat as "nothing to explore", not as an error.
func Score(pageHTML []byte, pageURL string, query string, cfg Config) []ScoredLink {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(pageHTML))
	if err != nil {
		return nil
	}
	base, err := url.Parse(pageURL)
	if err != nil || base.Host == "" {
		return nil
	}
	cfg = cfg.withDefaults()

	queryWords := score.Words(query)
	ownURL := Clean(pageURL)

	seen := map[string]struct{}{}
	var out []ScoredLink

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href := strings.TrimSpace(sel.AttrOr("href", ""))
		if href == "" || strings.HasPrefix(href, "#") ||
			strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "javascript:") {
			return
		}
		resolved, err := base.Parse(href)
		if err != nil || resolved.Host != base.Host {
			return
		}
		clean := Clean(resolved.String())
		if clean == ownURL {
			return
		}
		if _, ok := seen[clean]; ok {
			return
		}
		seen[clean] = struct{}{}

		urlLower := strings.ToLower(clean)
		if containsAny(urlLower, cfg.ExcludeTerms) {
			return
		}

		linkText := strings.ToLower(strings.TrimSpace(sel.Text()))
		lastSegment := urlLower
		if i := strings.LastIndexByte(urlLower, '/'); i >= 0 {
			lastSegment = urlLower[i+1:]
		}
		combined := linkText + " " + lastSegment

		pts := 0
		for _, w := range queryWords {
			if strings.Contains(combined, w) {
				pts += combinedMatchPoints
			}
			if strings.Contains(lastSegment, w) {
				pts += pathMatchPoints
			}
		}
		for _, term := range cfg.PriorityTerms {
			if strings.Contains(combined, term) {
				pts += priorityTermPoints
			}
		}
		if pts > 0 {
			out = append(out, ScoredLink{URL: clean, Text: linkText, Score: pts})
		}
	})

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

var fileExtRe = regexp.MustCompile(`(?i)\.(pdf|docx?|xlsx?|pptx?|zip|rar)$`)

// Files returns downloadable-document links discovered on the page, in
// insertion order and deduplicated. Besides plain anchors it inspects
// embed, iframe and object elements, which is how timetable PDFs are
// commonly inlined on institutional pages.
func Files(pageHTML []byte, pageURL string) []string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(pageHTML))
	if err != nil {
		return nil
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	seen := map[string]struct{}{}
	var out []string
	add := func(raw string) {
		resolved, err := base.Parse(raw)
		if err != nil {
			return
		}
		full := resolved.String()
		if _, ok := seen[full]; ok {
			return
		}
		seen[full] = struct{}{}
		out = append(out, full)
	}

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href := strings.TrimSpace(sel.AttrOr("href", ""))
		if href != "" && fileExtRe.MatchString(Clean(href)) {
			add(href)
		}
	})
	doc.Find("embed, iframe, object").Each(func(_ int, sel *goquery.Selection) {
		for _, attr := range []string{"src", "data", "href"} {
			v := strings.TrimSpace(sel.AttrOr(attr, ""))
			if v != "" && strings.Contains(strings.ToLower(v), ".pdf") {
				add(v)
				return
			}
		}
	})
	return out
}

// PDFs filters a file-link list down to PDF targets.
func PDFs(fileLinks []string) []string {
	var out []string
	for _, l := range fileLinks {
		if strings.HasSuffix(strings.ToLower(Clean(l)), ".pdf") {
			out = append(out, l)
		}
	}
	return out
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
