// Package report cleans and renders crawl results for the answering layer.
package report

import (
	"fmt"
	"path"
	"strings"
	"unicode/utf8"
)

// Character budgets for rendered results. The web budget applies to the
// top-level crawl report, the tool budget to the larger tool-facing
// extraction result.
const (
	WebBudget  = 6000
	ToolBudget = 8000
)

// TruncationMark is appended whenever content is cut to budget.
const TruncationMark = "\n\n[...contenu tronqué]"

const sourcePrefix = "Source:"

// NotFound renders the fixed empty-result message.
func NotFound(sourceURL string) string {
	return fmt.Sprintf("Aucun contenu trouvé\nURL: %s", sourceURL)
}

// Format renders a crawl result: cleaned and deduplicated content cut to
// the character budget, one source line, and up to three discovered PDF
// basenames.
func Format(content, sourceURL string, pdfLinks []string, budget int) string {
	if strings.TrimSpace(content) == "" {
		return NotFound(sourceURL)
	}

	var b strings.Builder
	b.WriteString(Truncate(Clean(content), budget))
	b.WriteString("\n\n")
	b.WriteString(sourcePrefix)
	b.WriteByte(' ')
	b.WriteString(sourceURL)

	if names := pdfNames(pdfLinks, 3); len(names) > 0 {
		fmt.Fprintf(&b, "\nPDFs: %s", strings.Join(names, ", "))
	}
	return b.String()
}

// Clean removes repeated boilerplate from extracted content: inline
// source lines (a single one is appended at format time), structural
// divider lines, runs of blank lines, and duplicated long lines. Short
// lines are never merged, so legitimately repeated table cells survive.
func Clean(content string) string {
	if content == "" {
		return ""
	}

	lines := strings.Split(content, "\n")
	cleaned := make([]string, 0, len(lines))
	seen := map[string]struct{}{}
	lastBlank := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, sourcePrefix) {
			continue
		}
		if strings.HasPrefix(trimmed, "===") {
			continue
		}
		if trimmed == "" {
			if lastBlank {
				continue
			}
			lastBlank = true
			cleaned = append(cleaned, line)
			continue
		}
		lastBlank = false

		if len(trimmed) > 50 {
			key := strings.ToLower(trimmed)
			if len(key) > 100 {
				key = key[:100]
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
		}
		cleaned = append(cleaned, line)
	}

	out := strings.Join(cleaned, "\n")
	for strings.Contains(out, "\n\n\n") {
		out = strings.ReplaceAll(out, "\n\n\n", "\n\n")
	}
	return strings.TrimSpace(out)
}

// Truncate cuts content to the byte budget, backing off to the nearest
// rune boundary, and marks the cut.
func Truncate(content string, budget int) string {
	if budget <= 0 || len(content) <= budget {
		return content
	}
	for budget > 0 && !utf8.RuneStart(content[budget]) {
		budget--
	}
	return content[:budget] + TruncationMark
}

func pdfNames(links []string, max int) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, l := range links {
		name := path.Base(l)
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
		if len(out) == max {
			break
		}
	}
	return out
}
