package report

import (
	"bufio"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// WriteAnswerPDF renders an answer transcript to a minimal PDF, keeping
// paragraph breaks and sizing heading-like lines up. Layout is
// intentionally simple; the transcript is plain text with occasional
// section markers, not Markdown.
func WriteAnswerPDF(answer string, outPath string) error {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetFont("Helvetica", "", 11)
	doc.AddPage()

	scanner := bufio.NewScanner(strings.NewReader(answer))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		s := strings.TrimSpace(scanner.Text())
		if s == "" {
			doc.Ln(5)
			continue
		}
		// Upper-case section labels from the extraction pipeline
		// ("PAGE 2", "LUNDI") read better as bold headers.
		if len(s) < 40 && s == strings.ToUpper(s) && strings.IndexFunc(s, isLetter) >= 0 {
			doc.SetFont("Helvetica", "B", 12)
			doc.CellFormat(0, 8, s, "", 1, "L", false, 0, "")
			doc.SetFont("Helvetica", "", 11)
			continue
		}
		doc.MultiCell(0, 5, s, "", "L", false)
	}

	return doc.OutputFileAndClose(outPath)
}

func isLetter(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
}
