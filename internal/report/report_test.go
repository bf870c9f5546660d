package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestFormatEmptyContent(t *testing.T) {
	out := Format("", "https://example.org/p", nil, WebBudget)
	if !strings.HasPrefix(out, "Aucun contenu trouvé") {
		t.Fatalf("expected not-found message, got %q", out)
	}
	if !strings.Contains(out, "https://example.org/p") {
		t.Fatalf("expected source URL in not-found message, got %q", out)
	}
}

func TestFormatAppendsSourceLine(t *testing.T) {
	out := Format("Programme du bloc hydraulique.", "https://example.org/programme", nil, WebBudget)
	if !strings.Contains(out, "Source: https://example.org/programme") {
		t.Fatalf("missing source line in %q", out)
	}
}

func TestFormatStripsStaleSourceLines(t *testing.T) {
	content := "Contenu principal.\nSource: https://old.example.org/\nSuite du contenu."
	out := Format(content, "https://example.org/new", nil, WebBudget)
	if strings.Contains(out, "old.example.org") {
		t.Fatalf("stale source line survived: %q", out)
	}
	if !strings.Contains(out, "Source: https://example.org/new") {
		t.Fatalf("missing fresh source line in %q", out)
	}
}

func TestFormatListsAtMostThreePDFs(t *testing.T) {
	pdfs := []string{
		"https://example.org/docs/a.pdf",
		"https://example.org/docs/b.pdf",
		"https://example.org/docs/c.pdf",
		"https://example.org/docs/d.pdf",
	}
	out := Format("Du contenu utile pour la question.", "https://example.org/", pdfs, WebBudget)
	if !strings.Contains(out, "PDFs: ") {
		t.Fatalf("missing PDFs line in %q", out)
	}
	for _, name := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		if !strings.Contains(out, name) {
			t.Fatalf("expected %s listed in %q", name, out)
		}
	}
	if strings.Contains(out, "d.pdf") {
		t.Fatalf("fourth PDF should be dropped: %q", out)
	}
}

func TestCleanDeduplicatesLongLines(t *testing.T) {
	long := strings.Repeat("Les inscriptions au programme ouvrent en septembre. ", 2)
	in := long + "\n" + long + "\nok\nok"
	out := Clean(in)
	if strings.Count(out, "Les inscriptions au programme ouvrent") != 2 {
		t.Fatalf("long duplicate line not removed:\n%s", out)
	}
	// Short repeated lines are common in tables and must survive.
	if strings.Count(out, "ok") != 2 {
		t.Fatalf("short duplicate lines should be kept:\n%s", out)
	}
}

func TestCleanCollapsesBlankRuns(t *testing.T) {
	out := Clean("a\n\n\n\n\nb")
	if strings.Contains(out, "\n\n\n") {
		t.Fatalf("blank run survived: %q", out)
	}
}

func TestTruncateAtBudget(t *testing.T) {
	content := strings.Repeat("x", 100)
	out := Truncate(content, 40)
	if !strings.HasSuffix(out, TruncationMark) {
		t.Fatalf("missing truncation marker: %q", out)
	}
	if len(out) != 40+len(TruncationMark) {
		t.Fatalf("unexpected length %d", len(out))
	}
}

func TestTruncateUnderBudgetUnchanged(t *testing.T) {
	if got := Truncate("court", 100); got != "court" {
		t.Fatalf("content under budget must pass through, got %q", got)
	}
}

func TestTruncateKeepsRuneBoundary(t *testing.T) {
	content := strings.Repeat("é", 50)
	out := Truncate(content, 33)
	body := strings.TrimSuffix(out, TruncationMark)
	if !utf8.ValidString(body) {
		t.Fatalf("truncation split a rune: %q", body)
	}
}

func TestWriteAnswerPDF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "answer.pdf")
	answer := "PROGRAMME\n\nLes cours débutent le lundi.\nDurée : deux heures."
	if err := WriteAnswerPDF(answer, path); err != nil {
		t.Fatalf("WriteAnswerPDF: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(data) == 0 || !strings.HasPrefix(string(data[:5]), "%PDF-") {
		t.Fatalf("output is not a PDF (%d bytes)", len(data))
	}
}
