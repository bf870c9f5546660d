package pdftext

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// The underlying parser panics on malformed cross-reference tables and
// damaged content streams, so every strategy converts panics into errors
// and lets the pipeline fall through to the next one.

// extractRows is the primary strategy: reconstruct each page as rows of
// cells ordered top-to-bottom and left-to-right, with day-of-week section
// headers. Optimized for timetable-like tabular layouts; for anything
// else the sufficiency threshold decides whether its output stands.
func (e *Extractor) extractRows(filePath string) (pages []Page, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("layout extraction: %v", r)
		}
	}()

	f, r, err := pdf.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, Page{Number: i})
			continue
		}
		rows := groupRows(p.Content().Text, e.rowTolerance())

		var lines []string
		currentDay := ""
		for _, cells := range rows {
			rowText := strings.Join(cells, " | ")
			if day := detectDay(rowText, e.dayNames()); day != "" && day != currentDay {
				currentDay = day
				lines = append(lines, "", strings.ToUpper(day), strings.Repeat("-", 40))
			}
			if clean := cleanRow(rowText); clean != "" {
				lines = append(lines, clean)
			}
		}

		text := strings.TrimSpace(strings.Join(lines, "\n"))
		if len(text) <= 10 {
			// Kept as an empty page so the count reflects the true
			// document length.
			text = ""
		}
		pages = append(pages, Page{Number: i, Text: text})
	}
	return pages, nil
}

// extractPlain is the first fallback: the whole document as flat text,
// split into pseudo-pages on form-feed markers when present, otherwise
// into roughly three equal line-count chunks.
func (e *Extractor) extractPlain(filePath string) (pages []Page, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("plain extraction: %v", r)
		}
	}()

	f, r, err := pdf.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tr, err := r.GetPlainText()
	if err != nil {
		return nil, err
	}
	raw, err := io.ReadAll(tr)
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(raw))) < 20 {
		return nil, nil
	}

	chunks := strings.Split(string(raw), "\f")
	if len(chunks) == 1 {
		lines := strings.Split(string(raw), "\n")
		size := len(lines) / 3
		if size < 50 {
			size = 50
		}
		chunks = chunks[:0]
		for i := 0; i < len(lines); i += size {
			end := i + size
			if end > len(lines) {
				end = len(lines)
			}
			chunks = append(chunks, strings.Join(lines[i:end], "\n"))
		}
	}

	for i, c := range chunks {
		c = Clean(c)
		if c == "" {
			continue
		}
		pages = append(pages, Page{Number: i + 1, Text: c})
	}
	return pages, nil
}

// extractGlyphs is the last resort for fragmented layouts: walk each
// page's positioned glyphs in content-stream order, inferring breaks from
// coordinate jumps, and append annotation text gathered from the page's
// value tree.
func (e *Extractor) extractGlyphs(filePath string) (pages []Page, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("glyph extraction: %v", r)
		}
	}()

	f, r, err := pdf.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, Page{Number: i})
			continue
		}

		var b strings.Builder
		havePrev := false
		var prev pdf.Text
		for _, g := range p.Content().Text {
			if havePrev {
				fs := g.FontSize
				if fs <= 0 {
					fs = 10
				}
				switch {
				case math.Abs(g.Y-prev.Y) > fs/2:
					b.WriteByte('\n')
				case g.X-(prev.X+prev.W) > fs/4:
					b.WriteByte(' ')
				}
			}
			b.WriteString(g.S)
			prev = g
			havePrev = true
		}
		for _, note := range annotationText(p.V.Key("Annots")) {
			b.WriteByte('\n')
			b.WriteString(note)
		}

		text := Clean(b.String())
		if len(text) <= 10 {
			text = ""
		}
		pages = append(pages, Page{Number: i, Text: text})
	}
	return pages, nil
}

// annotationText collects the Contents strings of a page's annotations.
// The walk is iterative with an explicit stack and a hard iteration cap:
// tree depth is data-dependent and untrusted input must not control
// call-stack depth.
func annotationText(v pdf.Value) []string {
	var out []string
	stack := []pdf.Value{v}
	for steps := 0; len(stack) > 0 && steps < 512; steps++ {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch cur.Kind() {
		case pdf.Array:
			for i := cur.Len() - 1; i >= 0; i-- {
				stack = append(stack, cur.Index(i))
			}
		case pdf.Dict:
			// Dicts are not descended further: annotation dicts link back
			// to their page via Parent, which would loop.
			c := cur.Key("Contents")
			if c.Kind() == pdf.String {
				if t := strings.TrimSpace(c.Text()); t != "" {
					out = append(out, t)
				}
			}
		}
	}
	return out
}

// groupRows bands positioned text elements into rows by vertical
// proximity, top-to-bottom, and merges each row's glyphs into cells
// left-to-right.
func groupRows(texts []pdf.Text, tolerance float64) [][]string {
	if len(texts) == 0 {
		return nil
	}
	glyphs := make([]pdf.Text, len(texts))
	copy(glyphs, texts)
	sort.SliceStable(glyphs, func(i, j int) bool {
		if glyphs[i].Y != glyphs[j].Y {
			return glyphs[i].Y > glyphs[j].Y
		}
		return glyphs[i].X < glyphs[j].X
	})

	var rows [][]string
	var band []pdf.Text
	bandY := glyphs[0].Y
	flush := func() {
		if cells := mergeCells(band); len(cells) > 0 {
			rows = append(rows, cells)
		}
		band = band[:0]
	}
	for _, g := range glyphs {
		if len(band) > 0 && math.Abs(g.Y-bandY) >= tolerance {
			flush()
			bandY = g.Y
		} else if len(band) > 0 {
			// Drift the band center so slightly sloped rows stay together.
			bandY = (bandY + g.Y) / 2
		} else {
			bandY = g.Y
		}
		band = append(band, g)
	}
	flush()
	return rows
}

// mergeCells joins a row's glyphs into cell strings. A horizontal gap
// wider than the font size starts a new cell; smaller gaps become
// spaces.
func mergeCells(glyphs []pdf.Text) []string {
	sorted := make([]pdf.Text, len(glyphs))
	copy(sorted, glyphs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	var cells []string
	var b strings.Builder
	lastEnd := 0.0
	for i, g := range sorted {
		if i > 0 {
			fs := g.FontSize
			if fs <= 0 {
				fs = 10
			}
			gap := g.X - lastEnd
			switch {
			case gap > fs:
				if s := strings.TrimSpace(b.String()); s != "" {
					cells = append(cells, s)
				}
				b.Reset()
			case gap > fs/4:
				b.WriteByte(' ')
			}
		}
		b.WriteString(g.S)
		if end := g.X + g.W; end > lastEnd {
			lastEnd = end
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		cells = append(cells, s)
	}
	return cells
}

func detectDay(rowText string, days []string) string {
	lower := strings.ToLower(rowText)
	for _, d := range days {
		if strings.Contains(lower, d) {
			return d
		}
	}
	return ""
}
