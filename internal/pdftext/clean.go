package pdftext

import (
	"regexp"
	"strings"
)

var (
	ctrlRe    = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]`)
	hspaceRe  = regexp.MustCompile(`[ \t]+`)
	blankRe   = regexp.MustCompile(`\n{3,}`)
	sepOnlyRe = regexp.MustCompile(`^[\s|_\-=]+$`)
)

// Clean normalizes reconstructed PDF text while preserving its line
// structure: control characters except newlines are stripped, horizontal
// whitespace runs collapse to single spaces, three or more consecutive
// blank lines collapse to one, and every line is trimmed.
func Clean(text string) string {
	text = ctrlRe.ReplaceAllString(text, "")
	text = hspaceRe.ReplaceAllString(text, " ")
	text = blankRe.ReplaceAllString(text, "\n\n")
	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// cleanRow normalizes one reconstructed table row and drops separator-only
// or sub-3-character noise.
func cleanRow(row string) string {
	row = strings.TrimSpace(hspaceRe.ReplaceAllString(row, " "))
	if row == "" || sepOnlyRe.MatchString(row) || len(row) < 3 {
		return ""
	}
	return row
}
