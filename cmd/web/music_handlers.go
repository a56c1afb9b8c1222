package main

import (
	"net/http"

	"steeleworks.org/atelier-web/internal/catalog"
)

// MusicView is the music page payload.
type MusicView struct {
	Tracks []catalog.Track
}

// MusicHandler renders the recordings list with inline players.
func (a *app) MusicHandler(w http.ResponseWriter, r *http.Request) {
	tracks, err := a.catalog.Tracks()
	if err != nil {
		a.renderUnavailable(w, r, "Music")
		return
	}
	vm := a.basePageData(r, "Music")
	vm.SEO.Description = "Recordings and practice sessions."
	vm.Music = MusicView{Tracks: tracks}
	renderPage(w, r, "music", vm)
}
