package main

import (
	"net/http"

	"steeleworks.org/atelier-web/internal/feed"
	mw "steeleworks.org/atelier-web/internal/middleware"
)

func (a *app) feedOptions() feed.Options {
	return feed.Options{
		Title:    a.cfg.Site.Name,
		Subtitle: "Portfolio and workshop notes",
		SiteURL:  a.cfg.Site.BaseURL,
		Author:   a.cfg.Site.Name,
	}
}

// FeedHandler serves the Atom feed built from the content index.
func (a *app) FeedHandler(w http.ResponseWriter, r *http.Request) {
	idx, err := a.index.Index()
	if err != nil {
		mw.WriteError(w, r, http.StatusServiceUnavailable, "feed unavailable")
		return
	}
	out, err := feed.Atom(idx, a.feedOptions())
	if err != nil {
		mw.WriteError(w, r, http.StatusInternalServerError, "feed rendering failed")
		return
	}
	w.Header().Set("Content-Type", "application/atom+xml; charset=utf-8")
	_, _ = w.Write(out)
}

// SitemapHandler serves sitemap.xml covering every index entry.
func (a *app) SitemapHandler(w http.ResponseWriter, r *http.Request) {
	idx, err := a.index.Index()
	if err != nil {
		mw.WriteError(w, r, http.StatusServiceUnavailable, "sitemap unavailable")
		return
	}
	out, err := feed.Sitemap(idx, a.feedOptions())
	if err != nil {
		mw.WriteError(w, r, http.StatusInternalServerError, "sitemap rendering failed")
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write(out)
}
