package score

import (
	"strings"
	"testing"
)

func TestMatch_Bounds(t *testing.T) {
	cases := []struct {
		content string
		query   string
	}{
		{"", ""},
		{"", "stage mitacs"},
		{strings.Repeat("stage mitacs ", 200), "stage mitacs"},
		{"short", "stage"},
		{strings.Repeat("x", 10000), strings.Repeat("programme ", 50)},
	}
	for _, c := range cases {
		got := Match(c.content, c.query)
		if got < 0 || got > Max {
			t.Fatalf("Match(%.20q, %.20q) = %d, out of [0,%d]", c.content, c.query, got, Max)
		}
	}
}

func TestMatch_EmptyQuery(t *testing.T) {
	long := strings.Repeat("a", 201)
	if got := Match(long, ""); got != 20 {
		t.Fatalf("expected 20 for long content without query, got %d", got)
	}
	if got := Match("tiny", ""); got != 0 {
		t.Fatalf("expected 0 for short content without query, got %d", got)
	}
	// A query made only of stop-length words degrades the same way.
	if got := Match(long, "le de a"); got != 20 {
		t.Fatalf("expected 20 when no usable query words, got %d", got)
	}
}

func TestMatch_EmptyContent(t *testing.T) {
	if got := Match("", "stage mitacs globalink"); got != 0 {
		t.Fatalf("expected 0 for empty content, got %d", got)
	}
}

// The documented worked example: "Mitacs" five times and "stage" twice in
// 600 characters of content should land on exactly 81 and trigger the
// crawl fast path.
func TestMatch_WorkedExample(t *testing.T) {
	var b strings.Builder
	b.WriteString("Mitacs Mitacs Mitacs Mitacs Mitacs stage stage ")
	for b.Len() < 600 {
		b.WriteString("filler text without keywords here ")
	}
	content := b.String()[:600]

	got := Match(content, "stage mitacs")
	// min(5*8,25) + min(2*8,25) = 41, coverage 30, richness 10
	if got != 81 {
		t.Fatalf("expected score 81, got %d", got)
	}
}

func TestMatch_PerWordCap(t *testing.T) {
	// Four or more occurrences saturate a word's contribution at 25.
	four := strings.Repeat("mitacs ", 4)
	forty := strings.Repeat("mitacs ", 40)
	a := Match(four, "mitacs")
	b := Match(forty, "mitacs")
	// forty is longer so only the richness bonus may differ
	if b-a > 10 {
		t.Fatalf("occurrence points should saturate: %d vs %d", a, b)
	}
}

func TestMatch_MonotoneInOccurrences(t *testing.T) {
	query := "programme internship procedure"
	base := "the programme page "
	prev := 0
	for i := 1; i < 30; i++ {
		content := strings.Repeat(base, i)
		got := Match(content, query)
		if got < prev {
			t.Fatalf("score decreased from %d to %d at %d repetitions", prev, got, i)
		}
		prev = got
	}
}

func TestWords_DropsShortTokens(t *testing.T) {
	got := Words("le GCR de Stage")
	if len(got) != 2 || got[0] != "gcr" || got[1] != "stage" {
		t.Fatalf("unexpected tokens: %v", got)
	}
}
