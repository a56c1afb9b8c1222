package main

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"steeleworks.org/atelier-web/internal/background"
	mw "steeleworks.org/atelier-web/internal/middleware"
)

// ThemeToggleHandler flips the visitor's theme between dark and light.
func (a *app) ThemeToggleHandler(w http.ResponseWriter, r *http.Request) {
	sd := mw.GetSession(r)
	next := "light"
	if background.NormalizeTheme(sd.Theme) == "light" {
		next = "dark"
	}
	sd.SetTheme(next)

	if mw.IsHTMX(r.Context()) {
		w.Header().Set("HX-Refresh", "true")
		w.WriteHeader(http.StatusOK)
		return
	}
	redirectBack(w, r)
}

// SidebarToggleHandler flips one sidebar section's collapsed flag.
func (a *app) SidebarToggleHandler(w http.ResponseWriter, r *http.Request) {
	sd := mw.GetSession(r)
	sd.ToggleSidebar(chi.URLParam(r, "section"))

	if mw.IsHTMX(r.Context()) {
		vm := a.basePageData(r, "")
		renderTemplate(w, r, "frag_sidebar", vm)
		return
	}
	redirectBack(w, r)
}

// BackgroundHandler reports the active background image and its credit.
func (a *app) BackgroundHandler(w http.ResponseWriter, r *http.Request) {
	theme := background.NormalizeTheme(r.URL.Query().Get("theme"))
	if r.URL.Query().Get("theme") == "" {
		theme = background.NormalizeTheme(mw.GetSession(r).Theme)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	meta, err := a.bg.Metadata(theme)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "background unavailable"})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"theme": theme,
		"image": a.bg.ImagePath(theme),
		"meta":  meta,
	})
}

func redirectBack(w http.ResponseWriter, r *http.Request) {
	to := r.Referer()
	if to == "" {
		to = "/"
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}
