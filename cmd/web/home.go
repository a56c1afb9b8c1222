package main

import (
	"net/http"
	"sort"

	"steeleworks.org/atelier-web/internal/catalog"
	"steeleworks.org/atelier-web/internal/content"
	"steeleworks.org/atelier-web/internal/seo"
)

// HomeView is the landing page payload.
type HomeView struct {
	Featured []catalog.GalleryItem
	Recent   []content.Entry
}

// HomeHandler renders the landing page.
func (a *app) HomeHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	view := HomeView{}
	if items, err := a.catalog.Gallery(); err == nil {
		if len(items) > 4 {
			items = items[:4]
		}
		view.Featured = items
	}
	if idx, err := a.index.Index(); err == nil {
		entries := idx.Entries()
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Time().After(entries[j].Time())
		})
		if len(entries) > 6 {
			entries = entries[:6]
		}
		view.Recent = entries
	}

	vm := a.basePageData(r, "Home")
	vm.Home = view
	vm.SEO.Title = a.cfg.Site.Name
	vm.SEO.OG.Title = a.cfg.Site.Name
	vm.SEO.Description = "Portfolio, workshop notes, and small-batch shop of " + a.cfg.Site.Name + "."
	vm.SEO.OG.Description = vm.SEO.Description
	vm.SEO.JSONLD = []string{
		seo.JSON(seo.Person(a.cfg.Site.Name, a.cfg.Site.BaseURL)),
		seo.JSON(seo.WebSite(a.cfg.Site.Name, a.cfg.Site.BaseURL, a.absoluteURL("/search?q="))),
	}
	renderPage(w, r, "home", vm)
}
