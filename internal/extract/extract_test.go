package extract

import (
	"strings"
	"testing"
)

func TestFromHTML_PrefersMainOverBody(t *testing.T) {
	html := `<!doctype html>
	<html>
	  <head><title>Test Page</title></head>
	  <body>
	    <nav><a href="/">Nav link should be ignored</a></nav>
	    <main>
	      <h1>Main Heading</h1>
	      <p>This is the main content paragraph.</p>
	    </main>
	    <footer>Footer text</footer>
	  </body>
	</html>`

	doc := FromHTML([]byte(html))
	if doc.Title != "Test Page" {
		t.Fatalf("expected title 'Test Page', got %q", doc.Title)
	}
	if !strings.Contains(doc.Text, "Main Heading") {
		t.Fatalf("expected to contain main heading")
	}
	if !strings.Contains(doc.Text, "This is the main content paragraph.") {
		t.Fatalf("expected to contain main paragraph")
	}
	if strings.Contains(doc.Text, "Nav link should be ignored") {
		t.Fatalf("did not expect nav text in extracted content")
	}
	if strings.Contains(doc.Text, "Footer text") {
		t.Fatalf("did not expect footer text in extracted content")
	}
}

func TestFromHTML_ContentClassedDiv(t *testing.T) {
	html := `<!doctype html>
	<html>
	  <head><title>Classed</title></head>
	  <body>
	    <div class="sidebar"><p>Sidebar junk here</p></div>
	    <div class="entry-content">
	      <h2>Procedure de stage</h2>
	      <p>Deposer la convention au service concerne.</p>
	    </div>
	  </body>
	</html>`

	doc := FromHTML([]byte(html))
	if !strings.Contains(doc.Text, "Procedure de stage") {
		t.Fatalf("expected heading from content div, got %q", doc.Text)
	}
	if strings.Contains(doc.Text, "Sidebar junk here") {
		t.Fatalf("did not expect sidebar text, got %q", doc.Text)
	}
}

func TestFromHTML_FallbackToBody(t *testing.T) {
	html := `<!doctype html>
	<html>
	  <head><title>No Main</title></head>
	  <body>
	    <h2>Body Heading</h2>
	    <p>Body paragraph</p>
	  </body>
	</html>`

	doc := FromHTML([]byte(html))
	if doc.Title != "No Main" {
		t.Fatalf("expected title 'No Main', got %q", doc.Title)
	}
	if !strings.Contains(doc.Text, "Body Heading") {
		t.Fatalf("expected to contain body heading")
	}
	if !strings.Contains(doc.Text, "Body paragraph") {
		t.Fatalf("expected to contain body paragraph")
	}
}

func TestFromHTML_CollectsTableCellsAndLinks(t *testing.T) {
	html := `<!doctype html>
	<html>
	  <head><title>Schedule</title></head>
	  <body>
	    <main>
	      <table>
	        <tr><td>Lundi 08:30</td><td>Mecanique des sols</td></tr>
	      </table>
	      <a href="/docs/emploi.pdf">Emploi du temps semaine 11</a>
	    </main>
	  </body>
	</html>`

	doc := FromHTML([]byte(html))
	if !strings.Contains(doc.Text, "Lundi 08:30") || !strings.Contains(doc.Text, "Mecanique des sols") {
		t.Fatalf("expected table cell text, got %q", doc.Text)
	}
	if !strings.Contains(doc.Text, "Emploi du temps semaine 11") {
		t.Fatalf("expected anchor text, got %q", doc.Text)
	}
}

func TestFromHTML_DropsTinyFragments(t *testing.T) {
	html := `<html><body><main><p>ok</p><p>A real sentence.</p></main></body></html>`
	doc := FromHTML([]byte(html))
	if strings.Contains(doc.Text, "ok") {
		t.Fatalf("fragments of three characters or fewer should be dropped, got %q", doc.Text)
	}
	if !strings.Contains(doc.Text, "A real sentence.") {
		t.Fatalf("expected real paragraph, got %q", doc.Text)
	}
}

func TestFromHTML_InvalidInput(t *testing.T) {
	doc := FromHTML([]byte{})
	if doc.Text != "" {
		t.Fatalf("expected empty text for empty input, got %q", doc.Text)
	}
}
