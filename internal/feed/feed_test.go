package feed

import (
	"strings"
	"testing"
	"time"

	"steeleworks.org/atelier-web/internal/content"
)

func fixedOpts() Options {
	return Options{
		Title:    "Sullivan Steele",
		Subtitle: "Portfolio and workshop notes",
		SiteURL:  "https://steeleworks.org/",
		Author:   "Sullivan Steele",
		Now:      func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) },
	}
}

func sampleIndex() *content.Index {
	return content.NewIndex([]content.Entry{
		{Title: "Etched Glass Process", Href: "/pages/blog/etched-glass.html", Preview: "Notes on etching.", Tags: []string{"glasswork"}, Category: "article", Date: "2025-03-01T00:00:00Z"},
		{Title: "About", Href: "/pages/about.html", Category: "about", Date: "2025-01-01T00:00:00Z"},
		{Title: "Shop", Href: "/pages/shop.html", Category: "shop", Date: "2025-02-01T00:00:00Z"},
	})
}

func TestAtomIncludesOnlyFeedCategories(t *testing.T) {
	out, err := Atom(sampleIndex(), fixedOpts())
	if err != nil {
		t.Fatalf("atom: %v", err)
	}
	body := string(out)
	if got := strings.Count(body, "<entry>"); got != 2 {
		t.Fatalf("expected 2 entries (article + shop), got %d:\n%s", got, body)
	}
	if !strings.Contains(body, "https://steeleworks.org/pages/blog/etched-glass.html") {
		t.Error("expected absolute entry URL")
	}
	if strings.Contains(body, "about.html") {
		t.Error("navigational page must not appear in the feed")
	}
	if !strings.Contains(body, `term="glasswork"`) {
		t.Error("expected tag categories")
	}
	if !strings.Contains(body, `xmlns="http://www.w3.org/2005/Atom"`) {
		t.Error("missing Atom namespace")
	}
}

func TestAtomNewestFirst(t *testing.T) {
	out, err := Atom(sampleIndex(), fixedOpts())
	if err != nil {
		t.Fatalf("atom: %v", err)
	}
	body := string(out)
	article := strings.Index(body, "Etched Glass Process")
	shop := strings.Index(body, "<title>Shop</title>")
	if article < 0 || shop < 0 || article > shop {
		t.Fatalf("expected newest entry first (article@%d shop@%d)", article, shop)
	}
}

func TestSitemapCoversAllEntries(t *testing.T) {
	out, err := Sitemap(sampleIndex(), fixedOpts())
	if err != nil {
		t.Fatalf("sitemap: %v", err)
	}
	body := string(out)
	if got := strings.Count(body, "<url>"); got != 3 {
		t.Fatalf("expected 3 urls, got %d", got)
	}
	if !strings.Contains(body, "<lastmod>2025-03-01</lastmod>") {
		t.Error("expected lastmod truncated to date")
	}
	if !strings.Contains(body, "<priority>0.8</priority>") {
		t.Error("expected article priority 0.8")
	}
	if !strings.Contains(body, "<priority>0.5</priority>") {
		t.Error("expected default priority 0.5 for unknown category")
	}
}
