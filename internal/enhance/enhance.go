// Package enhance derives page decorations (reading time, table of contents)
// and crawl metadata from rendered HTML.
package enhance

import (
	"strings"

	"golang.org/x/net/html"
)

// Heading is one table-of-contents entry extracted from h2/h3 elements.
type Heading struct {
	Level int
	ID    string
	Text  string
}

// Document is the metadata and visible text pulled from one HTML page.
type Document struct {
	Title       string
	H1          string
	Description string
	Keywords    []string
	Text        string
	Headings    []Heading
}

// wordsPerMinute is the assumed reading speed.
const wordsPerMinute = 200

// ReadingTime estimates whole minutes for the given text, never below 1
// for non-empty input.
func ReadingTime(text string) int {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

// Parse walks an HTML document collecting the title, h1, meta
// description/keywords, h2/h3 headings, and visible body text. Text inside
// nav, footer, aside, script, and style elements is skipped.
func Parse(raw string) (Document, error) {
	root, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return Document{}, err
	}

	var doc Document
	var textParts []string
	skipDepth := 0
	inBody := false

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		skipped := false
		switch {
		case n.Type == html.ElementNode:
			switch n.Data {
			case "nav", "footer", "aside", "script", "style":
				skipDepth++
				skipped = true
			case "body":
				inBody = true
			case "meta":
				name := strings.ToLower(attr(n, "name"))
				content := attr(n, "content")
				if name == "description" {
					doc.Description = content
				} else if name == "keywords" {
					for _, k := range strings.Split(content, ",") {
						if k = strings.TrimSpace(k); k != "" {
							doc.Keywords = append(doc.Keywords, k)
						}
					}
				}
			case "title":
				doc.Title = strings.TrimSpace(nodeText(n))
			case "h1":
				if doc.H1 == "" {
					doc.H1 = strings.TrimSpace(nodeText(n))
				}
			case "h2", "h3":
				if skipDepth == 0 {
					level := 2
					if n.Data == "h3" {
						level = 3
					}
					doc.Headings = append(doc.Headings, Heading{
						Level: level,
						ID:    attr(n, "id"),
						Text:  strings.TrimSpace(nodeText(n)),
					})
				}
			}
		case n.Type == html.TextNode:
			if inBody && skipDepth == 0 {
				if t := strings.TrimSpace(n.Data); t != "" {
					textParts = append(textParts, t)
				}
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if skipped {
			skipDepth--
		}
	}
	walk(root)

	doc.Text = strings.Join(textParts, " ")
	return doc, nil
}

// TOC extracts h2/h3 headings from an HTML fragment. Headings without an id
// get one slugged from their text so anchors always resolve.
func TOC(fragment string) []Heading {
	doc, err := Parse(fragment)
	if err != nil {
		return nil
	}
	headings := doc.Headings
	for i := range headings {
		if headings[i].ID == "" {
			headings[i].ID = slugID(headings[i].Text)
		}
	}
	return headings
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func slugID(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	var b strings.Builder
	lastHyphen := true
	for _, r := range text {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
