package docindex

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jung-kurt/gofpdf"
)

func writeTextFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestProcessAndSearch(t *testing.T) {
	dir := t.TempDir()
	idx, err := Open(filepath.Join(dir, "index.json"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	content := "Le programme Mitacs Globalink accueille des stagiaires chaque été.\n" +
		"Les candidatures ouvrent en septembre et ferment en décembre.\n" +
		strings.Repeat("Le règlement intérieur précise les horaires d'ouverture des salles. ", 20)
	path := writeTextFile(t, dir, "stages.txt", content)

	doc, err := idx.Process(path)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if doc.Filename != "stages.txt" {
		t.Fatalf("filename = %q", doc.Filename)
	}
	if doc.TotalChunks < 2 {
		t.Fatalf("chunks = %d, content should span several chunks", doc.TotalChunks)
	}

	hits := idx.Search("candidatures Mitacs", 3)
	if len(hits) == 0 {
		t.Fatal("no hits for indexed keywords")
	}
	if !strings.Contains(hits[0].Text, "Mitacs") {
		t.Fatalf("top hit does not mention the keyword: %q", hits[0].Text)
	}
	if hits[0].Filename != "stages.txt" {
		t.Fatalf("hit filename = %q", hits[0].Filename)
	}
}

func TestProcessIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	idx, err := Open(filepath.Join(dir, "index.json"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	path := writeTextFile(t, dir, "note.txt", strings.Repeat("Une note sur les conventions de stage. ", 10))

	if _, err := idx.Process(path); err != nil {
		t.Fatalf("first Process: %v", err)
	}
	first := len(idx.data.Chunks)
	if _, err := idx.Process(path); err != nil {
		t.Fatalf("second Process: %v", err)
	}
	if len(idx.data.Chunks) != first {
		t.Fatalf("chunks grew from %d to %d on reprocessing", first, len(idx.data.Chunks))
	}
}

func TestIndexPersistsAcrossOpens(t *testing.T) {
	dir := t.TempDir()
	indexPath := filepath.Join(dir, "index.json")

	idx, err := Open(indexPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	path := writeTextFile(t, dir, "reglement.txt", strings.Repeat("Les absences doivent être justifiées par écrit. ", 10))
	if _, err := idx.Process(path); err != nil {
		t.Fatalf("Process: %v", err)
	}

	reopened, err := Open(indexPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	names := reopened.Filenames()
	if len(names) != 1 || names[0] != "reglement.txt" {
		t.Fatalf("filenames after reopen = %v", names)
	}
	if hits := reopened.Search("absences justifiées", 3); len(hits) == 0 {
		t.Fatal("no hits after reopen")
	}
}

func TestUnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	idx, err := Open(filepath.Join(dir, "index.json"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	path := writeTextFile(t, dir, "photo.jpg", "not text")
	if _, err := idx.Process(path); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestProcessPDF(t *testing.T) {
	dir := t.TempDir()
	idx, err := Open(filepath.Join(dir, "index.json"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	pdfPath := filepath.Join(dir, "programme.pdf")
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetFont("Helvetica", "", 12)
	doc.AddPage()
	for i := 0; i < 30; i++ {
		doc.CellFormat(0, 6, "Le programme des visites industrielles commence en octobre.", "", 1, "L", false, 0, "")
	}
	if err := doc.OutputFileAndClose(pdfPath); err != nil {
		t.Fatalf("write pdf: %v", err)
	}

	d, err := idx.Process(pdfPath)
	if err != nil {
		t.Fatalf("Process pdf: %v", err)
	}
	if d.TotalChars == 0 {
		t.Fatal("no characters extracted from pdf")
	}
	if hits := idx.Search("visites industrielles", 2); len(hits) == 0 {
		t.Fatal("no hits from pdf content")
	}
}

func TestOverview(t *testing.T) {
	dir := t.TempDir()
	idx, err := Open(filepath.Join(dir, "index.json"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	path := writeTextFile(t, dir, "guide.txt", strings.Repeat("Chapitre sur les procédures administratives. ", 60))
	if _, err := idx.Process(path); err != nil {
		t.Fatalf("Process: %v", err)
	}

	out := idx.Overview("guide")
	if !strings.Contains(out, "guide.txt") {
		t.Fatalf("overview missing filename: %q", out)
	}
	if !strings.Contains(out, "procédures administratives") {
		t.Fatal("overview missing document text")
	}
	if idx.Overview("inconnu") != "" {
		t.Fatal("overview for unknown name should be empty")
	}
}
