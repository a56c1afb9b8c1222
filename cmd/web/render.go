package main

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"steeleworks.org/atelier-web/internal/background"
	"steeleworks.org/atelier-web/internal/format"
	handlersPkg "steeleworks.org/atelier-web/internal/handlers"
	mw "steeleworks.org/atelier-web/internal/middleware"
	"steeleworks.org/atelier-web/internal/nav"
)

var (
	templatesDir = "templates"
	// devMode reparses templates on every request
	devMode   bool
	tmplCache *template.Template
)

// parseTemplates recursively discovers and parses all .tmpl files. Note:
// ParseGlob doesn't support **.
func parseTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"now":      time.Now,
		"price":    format.Price,
		"currency": format.Currency,
		"date":     format.Date,
		// jsonld marks pre-marshalled JSON-LD safe for script tags
		"jsonld": func(s string) template.JS { return template.JS(s) },
	}
	var files []string
	if err := filepath.WalkDir(templatesDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), ".tmpl") {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no templates found under %s", templatesDir)
	}
	return template.New("_root").Funcs(funcMap).ParseFiles(files...)
}

func templates(w http.ResponseWriter) *template.Template {
	if devMode {
		tc, err := parseTemplates()
		if err != nil {
			http.Error(w, fmt.Sprintf("template parse error: %v", err), http.StatusInternalServerError)
			return nil
		}
		return tc
	}
	if tmplCache == nil {
		http.Error(w, "template not initialized", http.StatusInternalServerError)
		return nil
	}
	return tmplCache
}

// renderPage executes a full page template against the shared layout data.
func renderPage(w http.ResponseWriter, r *http.Request, name string, vm handlersPkg.PageData) {
	t := templates(w)
	if t == nil {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.ExecuteTemplate(w, name, vm); err != nil {
		http.Error(w, fmt.Sprintf("template exec error: %v", err), http.StatusInternalServerError)
	}
}

// renderTemplate executes a fragment template with arbitrary data.
func renderTemplate(w http.ResponseWriter, r *http.Request, name string, data any) {
	t := templates(w)
	if t == nil {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.ExecuteTemplate(w, name, data); err != nil {
		http.Error(w, fmt.Sprintf("template exec error: %v", err), http.StatusInternalServerError)
	}
}

// basePageData fills the layout fields every page shares: navigation, the
// visitor's theme and background, the sidebar state, and the cart badge count.
func (a *app) basePageData(r *http.Request, title string) handlersPkg.PageData {
	sd := mw.GetSession(r)
	theme := background.NormalizeTheme(sd.Theme)

	vm := handlersPkg.PageData{
		Title:       title,
		SiteName:    a.cfg.Site.Name,
		Path:        r.URL.Path,
		Nav:         nav.Build(r.URL.Path),
		Breadcrumbs: nav.Breadcrumbs(r.URL.Path),
		Sidebar:     handlersPkg.BuildSidebar(sd.Sidebar),
		Analytics: handlersPkg.Analytics{
			GA4MeasurementID: a.cfg.Analytics.GA4MeasurementID,
			Debug:            a.cfg.Analytics.Debug,
		},
		Theme:     theme,
		CartCount: sd.CartView().Count(),
	}

	vm.BackgroundImage = a.bg.ImagePath(theme)
	if meta, err := a.bg.Metadata(theme); err == nil {
		vm.BackgroundCredit = meta
	}

	vm.SEO.Title = title + " | " + a.cfg.Site.Name
	vm.SEO.Canonical = a.absoluteURL(r.URL.Path)
	vm.SEO.OG.Title = vm.SEO.Title
	vm.SEO.OG.Type = "website"
	vm.SEO.OG.URL = vm.SEO.Canonical
	vm.SEO.OG.SiteName = a.cfg.Site.Name
	vm.SEO.Twitter.Card = "summary_large_image"
	return vm
}

// renderUnavailable shows the degraded-content notice when a backing index
// cannot be read. The page itself still renders.
func (a *app) renderUnavailable(w http.ResponseWriter, r *http.Request, title string) {
	vm := a.basePageData(r, title)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusServiceUnavailable)
	renderPage(w, r, "unavailable", vm)
}

func (a *app) absoluteURL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return a.cfg.Site.BaseURL + path
}
