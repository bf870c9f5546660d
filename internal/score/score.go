// Package score ranks extracted content against a user query.
package score

import (
	"strings"
	"unicode/utf8"
)

// Max is the upper bound of a content match score.
const Max = 100

const (
	perOccurrence = 8
	perWordCap    = 25
	coverageMax   = 30

	richLen  = 500
	modestLen = 200
)

// Words tokenizes a query into lowercase terms longer than two runes.
// Shorter terms ("a", "de", "le") carry no signal and are discarded.
func Words(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	out := make([]string, 0, len(fields))
	for _, w := range fields {
		if utf8.RuneCountInString(w) > 2 {
			out = append(out, w)
		}
	}
	return out
}

// Match scores how well content answers query on a 0–100 scale.
// This is a keyword-density heuristic, not an IR model: each query word
// earns points per case-insensitive occurrence with a per-word cap, then
// a coverage bonus for the fraction of query words matched at all, then
// a small bonus for non-trivial content length. Deterministic and cheap.
//
// With an empty query (or one with no usable words) the score degrades
// to a pure richness check: 20 for content above 200 characters, else 0.
func Match(content, query string) int {
	words := Words(query)
	if content == "" || len(words) == 0 {
		if len(content) > modestLen {
			return 20
		}
		return 0
	}

	lower := strings.ToLower(content)
	total := 0
	matched := 0
	for _, w := range words {
		n := strings.Count(lower, w)
		if n == 0 {
			continue
		}
		matched++
		pts := n * perOccurrence
		if pts > perWordCap {
			pts = perWordCap
		}
		total += pts
	}

	total += coverageMax * matched / len(words)

	switch {
	case len(content) >= richLen:
		total += 10
	case len(content) >= modestLen:
		total += 5
	}

	if total > Max {
		return Max
	}
	return total
}
