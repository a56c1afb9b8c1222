package main

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"steeleworks.org/atelier-web/internal/catalog"
	mw "steeleworks.org/atelier-web/internal/middleware"
)

// GalleryView is the gallery page payload.
type GalleryView struct {
	Items     []catalog.GalleryItem
	Tags      []string
	ActiveTag string
}

// LightboxView is one lightbox frame with wraparound navigation. Position is
// the 1-based index shown to the visitor.
type LightboxView struct {
	Item     catalog.GalleryItem
	Index    int
	Position int
	Prev     int
	Next     int
	Count    int
	Tag      string
}

// GalleryHandler renders the gallery grid, optionally filtered by ?tag=.
func (a *app) GalleryHandler(w http.ResponseWriter, r *http.Request) {
	items, err := a.catalog.Gallery()
	if err != nil {
		a.renderUnavailable(w, r, "Gallery")
		return
	}
	tag := strings.TrimSpace(r.URL.Query().Get("tag"))
	view := GalleryView{
		Items:     catalog.FilterGalleryByTag(items, tag),
		Tags:      galleryTags(items),
		ActiveTag: tag,
	}
	vm := a.basePageData(r, "Gallery")
	vm.SEO.Description = "Selected works and studio pieces."
	vm.Gallery = view
	renderPage(w, r, "gallery", vm)
}

// GalleryLightboxFrag renders a single lightbox frame. Prev and next wrap
// around the ends of the filtered set.
func (a *app) GalleryLightboxFrag(w http.ResponseWriter, r *http.Request) {
	items, err := a.catalog.Gallery()
	if err != nil {
		mw.WriteError(w, r, http.StatusServiceUnavailable, "gallery unavailable")
		return
	}
	tag := strings.TrimSpace(r.URL.Query().Get("tag"))
	filtered := catalog.FilterGalleryByTag(items, tag)
	if len(filtered) == 0 {
		mw.WriteError(w, r, http.StatusNotFound, "no gallery items")
		return
	}

	i, _ := strconv.Atoi(r.URL.Query().Get("i"))
	// clamp into range; wraparound applies to prev/next, not the entry point
	if i < 0 {
		i = 0
	}
	if i >= len(filtered) {
		i = len(filtered) - 1
	}

	view := LightboxView{
		Item:     filtered[i],
		Index:    i,
		Position: i + 1,
		Prev:     (i - 1 + len(filtered)) % len(filtered),
		Next:     (i + 1) % len(filtered),
		Count:    len(filtered),
		Tag:      tag,
	}
	renderTemplate(w, r, "frag_lightbox", view)
}

func galleryTags(items []catalog.GalleryItem) []string {
	seen := map[string]bool{}
	var tags []string
	for _, it := range items {
		for _, t := range it.Tags {
			key := strings.ToLower(t)
			if !seen[key] {
				seen[key] = true
				tags = append(tags, t)
			}
		}
	}
	sort.Strings(tags)
	return tags
}
