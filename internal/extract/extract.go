package extract

import (
	"bytes"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Document is a simplified representation of extracted page content.
type Document struct {
	Title string
	Text  string
}

// skipTags are containers that never hold answer content.
var skipTags = map[string]bool{
	"script": true, "style": true, "noscript": true,
	"nav": true, "footer": true, "aside": true, "iframe": true,
}

// contentTags are the elements whose visible text is collected. Tables and
// anchors are included on purpose: institutional pages publish schedules and
// document lists as table cells and link text.
var contentTags = map[string]bool{
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
	"p": true, "li": true, "td": true, "a": true,
}

var contentClassRe = regexp.MustCompile(`(?i)content|main|entry|post`)

// FromHTML extracts readable text from HTML. It prefers <main> or
// <article>, then a <div> whose class hints at primary content, falling
// back to <body>, and collects the visible text of content-bearing
// elements inside that root while skipping obvious boilerplate.
func FromHTML(input []byte) Document {
	node, err := html.Parse(bytes.NewReader(input))
	if err != nil || node == nil {
		return Document{}
	}

	title := strings.TrimSpace(findTitle(node))

	content := findFirst(node, "main")
	if content == nil {
		content = findFirst(node, "article")
	}
	if content == nil {
		content = findContentDiv(node)
	}
	if content == nil {
		content = findFirst(node, "body")
	}
	if content == nil {
		return Document{Title: title}
	}

	parts := make([]string, 0, 64)
	collectParts(&parts, content)
	text := strings.Join(parts, "\n\n")
	text = collapseBlankRuns(text)
	return Document{Title: title, Text: strings.TrimSpace(text)}
}

func findTitle(n *html.Node) string {
	head := findFirst(n, "head")
	if head == nil {
		return ""
	}
	t := findFirst(head, "title")
	if t == nil || t.FirstChild == nil {
		return ""
	}
	return t.FirstChild.Data
}

func findFirst(n *html.Node, tag string) *html.Node {
	var res *html.Node
	var dfs func(*html.Node)
	dfs = func(cur *html.Node) {
		if res != nil {
			return
		}
		if cur.Type == html.ElementNode && strings.EqualFold(cur.Data, tag) {
			res = cur
			return
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			dfs(c)
			if res != nil {
				return
			}
		}
	}
	dfs(n)
	return res
}

// findContentDiv locates the first <div> whose class suggests it wraps the
// page's primary content.
func findContentDiv(n *html.Node) *html.Node {
	var res *html.Node
	var dfs func(*html.Node)
	dfs = func(cur *html.Node) {
		if res != nil {
			return
		}
		if cur.Type == html.ElementNode && strings.EqualFold(cur.Data, "div") {
			for _, attr := range cur.Attr {
				if strings.EqualFold(attr.Key, "class") && contentClassRe.MatchString(attr.Val) {
					res = cur
					return
				}
			}
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			dfs(c)
			if res != nil {
				return
			}
		}
	}
	dfs(n)
	return res
}

// collectParts walks the content root and appends the inner text of each
// content-bearing element. Fragments of three characters or fewer are
// dropped as noise.
func collectParts(parts *[]string, n *html.Node) {
	if n.Type == html.ElementNode {
		name := strings.ToLower(n.Data)
		if skipTags[name] {
			return
		}
		if contentTags[name] {
			text := innerText(n)
			if len(text) > 3 {
				*parts = append(*parts, text)
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectParts(parts, c)
	}
}

// innerText flattens all text nodes under n, skipping boilerplate
// subtrees, with whitespace runs collapsed to single spaces.
func innerText(n *html.Node) string {
	var b strings.Builder
	var dfs func(*html.Node)
	dfs = func(cur *html.Node) {
		if cur.Type == html.ElementNode && skipTags[strings.ToLower(cur.Data)] {
			return
		}
		if cur.Type == html.TextNode {
			b.WriteString(cur.Data)
			b.WriteByte(' ')
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			dfs(c)
		}
	}
	dfs(n)
	return strings.TrimSpace(collapseSpaces(b.String()))
}

func collapseSpaces(s string) string {
	var b strings.Builder
	lastSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	return b.String()
}

var blankRunRe = regexp.MustCompile(`\n{3,}`)

func collapseBlankRuns(s string) string {
	return blankRunRe.ReplaceAllString(s, "\n\n")
}
