// Package feed renders the Atom feed and sitemap from the content index.
package feed

import (
	"encoding/xml"
	"sort"
	"strings"
	"time"

	"steeleworks.org/atelier-web/internal/content"
)

// Categories included in the Atom feed; navigational pages are left out.
var feedCategories = map[string]bool{
	"article":        true,
	"project-detail": true,
	"work":           true,
	"music":          true,
	"shop":           true,
}

// Options carries the site identity stamped on generated documents.
type Options struct {
	Title    string
	Subtitle string
	SiteURL  string
	Author   string
	Now      func() time.Time
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

type atomFeed struct {
	XMLName  xml.Name    `xml:"feed"`
	XMLNS    string      `xml:"xmlns,attr"`
	Title    string      `xml:"title"`
	Subtitle string      `xml:"subtitle,omitempty"`
	Links    []atomLink  `xml:"link"`
	ID       string      `xml:"id"`
	Updated  string      `xml:"updated"`
	Author   atomAuthor  `xml:"author"`
	Entries  []atomEntry `xml:"entry"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr,omitempty"`
	Type string `xml:"type,attr,omitempty"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type atomEntry struct {
	Title      string         `xml:"title"`
	Link       atomLink       `xml:"link"`
	ID         string         `xml:"id"`
	Updated    string         `xml:"updated"`
	Summary    string         `xml:"summary"`
	Categories []atomCategory `xml:"category"`
}

type atomCategory struct {
	Term string `xml:"term,attr"`
}

// Atom renders the Atom feed for feed-worthy index entries, newest first.
func Atom(idx *content.Index, opts Options) ([]byte, error) {
	site := strings.TrimRight(opts.SiteURL, "/")
	now := opts.now().UTC().Format("2006-01-02T15:04:05Z")

	entries := idx.Entries()
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Time().After(entries[j].Time())
	})

	doc := atomFeed{
		XMLNS:    "http://www.w3.org/2005/Atom",
		Title:    opts.Title,
		Subtitle: opts.Subtitle,
		Links: []atomLink{
			{Href: site + "/feed.xml", Rel: "self", Type: "application/atom+xml"},
			{Href: site + "/", Rel: "alternate", Type: "text/html"},
		},
		ID:      site + "/",
		Updated: now,
		Author:  atomAuthor{Name: opts.Author},
	}

	for _, e := range entries {
		if !feedCategories[e.Category] {
			continue
		}
		updated := e.Date
		if updated == "" {
			updated = now
		}
		item := atomEntry{
			Title:   e.Title,
			Link:    atomLink{Href: absoluteHref(site, e.Href)},
			ID:      absoluteHref(site, e.Href),
			Updated: updated,
			Summary: e.Preview,
		}
		for _, tag := range e.Tags {
			item.Categories = append(item.Categories, atomCategory{Term: tag})
		}
		doc.Entries = append(doc.Entries, item)
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}

// Sitemap priorities by category; unknown categories default to 0.5.
var priorityByCategory = map[string]string{
	"home":    "1.0",
	"article": "0.8",
	"work":    "0.8",
	"gallery": "0.6",
	"music":   "0.6",
	"shop":    "0.6",
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc      string `xml:"loc"`
	LastMod  string `xml:"lastmod,omitempty"`
	Priority string `xml:"priority"`
}

// Sitemap renders sitemap.xml covering every index entry.
func Sitemap(idx *content.Index, opts Options) ([]byte, error) {
	site := strings.TrimRight(opts.SiteURL, "/")
	doc := urlSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}

	for _, e := range idx.Entries() {
		priority, ok := priorityByCategory[e.Category]
		if !ok {
			priority = "0.5"
		}
		lastMod := ""
		if len(e.Date) >= 10 {
			lastMod = e.Date[:10]
		}
		doc.URLs = append(doc.URLs, sitemapURL{
			Loc:      absoluteHref(site, e.Href),
			LastMod:  lastMod,
			Priority: priority,
		})
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}

func absoluteHref(site, href string) string {
	if strings.HasPrefix(href, "/") {
		return site + href
	}
	return href
}
