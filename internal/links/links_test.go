package links

import (
	"strings"
	"testing"
)

const basePage = "https://enig.example.tn/accueil"

func TestScore_SameDomainOnly(t *testing.T) {
	html := `<html><body>
	  <a href="https://enig.example.tn/stages">Offres de stage</a>
	  <a href="https://other.example.com/stages">Stage ailleurs</a>
	</body></html>`

	got := Score([]byte(html), basePage, "stage", Config{})
	if len(got) != 1 {
		t.Fatalf("expected 1 link, got %d: %v", len(got), got)
	}
	if strings.Contains(got[0].URL, "other.example.com") {
		t.Fatalf("cross-domain link leaked through: %q", got[0].URL)
	}
}

func TestScore_SkipsOwnURLAndAnchors(t *testing.T) {
	html := `<html><body>
	  <a href="https://enig.example.tn/accueil?utm=1">Accueil stage</a>
	  <a href="#section">Stage anchor</a>
	  <a href="mailto:x@enig.example.tn">Stage mail</a>
	  <a href="javascript:void(0)">Stage js</a>
	</body></html>`

	got := Score([]byte(html), basePage, "stage", Config{})
	if len(got) != 0 {
		t.Fatalf("expected no links, got %v", got)
	}
}

func TestScore_ExclusionTerms(t *testing.T) {
	html := `<html><body>
	  <a href="/nous-contacter">Stage contact</a>
	  <a href="/login">Stage login</a>
	  <a href="/privacy">Stage privacy</a>
	  <a href="/stages-liste">Tous les stages</a>
	</body></html>`

	got := Score([]byte(html), basePage, "stage", Config{})
	if len(got) != 1 {
		t.Fatalf("expected only the listing link, got %v", got)
	}
	for _, term := range DefaultExcludeTerms {
		if strings.Contains(got[0].URL, term) {
			t.Fatalf("excluded term %q survived: %q", term, got[0].URL)
		}
	}
}

func TestScore_PathAndCombinedPoints(t *testing.T) {
	// URL path contains the query keyword, anchor text does not:
	// 30 (combined, since path is part of combined text) + 20 (path).
	html := `<html><body><a href="/mitacs-2026">Details ici</a></body></html>`
	got := Score([]byte(html), basePage, "mitacs", Config{})
	if len(got) != 1 {
		t.Fatalf("expected 1 link, got %v", got)
	}
	if got[0].Score != 50 {
		t.Fatalf("expected score 50, got %d", got[0].Score)
	}
}

func TestScore_PriorityTermBonus(t *testing.T) {
	html := `<html><body><a href="/nos-programmes">Nos programmes</a></body></html>`
	got := Score([]byte(html), basePage, "bourse", Config{})
	if len(got) != 1 {
		t.Fatalf("expected 1 link, got %v", got)
	}
	// "programme" and "nos-" both present, no query word matches.
	if got[0].Score != 2*priorityTermPoints {
		t.Fatalf("expected %d, got %d", 2*priorityTermPoints, got[0].Score)
	}
}

func TestScore_DescendingStableOrder(t *testing.T) {
	html := `<html><body>
	  <a href="/page-un">divers</a>
	  <a href="/stage-mitacs">stage mitacs</a>
	  <a href="/autre-stage">le stage</a>
	</body></html>`

	got := Score([]byte(html), basePage, "stage mitacs", Config{})
	if len(got) != 2 {
		t.Fatalf("expected 2 scored links (zero scores dropped), got %v", got)
	}
	if got[0].Score < got[1].Score {
		t.Fatalf("expected descending order, got %v", got)
	}
	if !strings.HasSuffix(got[0].URL, "/stage-mitacs") {
		t.Fatalf("expected the two-keyword link first, got %q", got[0].URL)
	}
}

func TestFiles_CollectsDocumentsOnce(t *testing.T) {
	html := `<html><body>
	  <a href="/docs/emploi-semaine-11.pdf">EDT</a>
	  <a href="/docs/emploi-semaine-11.pdf">EDT again</a>
	  <a href="/docs/convention.docx">Convention</a>
	  <iframe src="/docs/embedded.pdf"></iframe>
	  <a href="/page">Not a file</a>
	</body></html>`

	got := Files([]byte(html), basePage)
	if len(got) != 3 {
		t.Fatalf("expected 3 file links, got %v", got)
	}
	if !strings.HasSuffix(got[0], "emploi-semaine-11.pdf") {
		t.Fatalf("expected insertion order preserved, got %v", got)
	}

	pdfs := PDFs(got)
	if len(pdfs) != 2 {
		t.Fatalf("expected 2 pdf links, got %v", pdfs)
	}
}

func TestClean(t *testing.T) {
	if got := Clean("https://a.tn/p?x=1#frag"); got != "https://a.tn/p" {
		t.Fatalf("unexpected clean url: %q", got)
	}
}
