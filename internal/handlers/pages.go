// Package handlers holds the view models shared by the page templates.
package handlers

import (
	"steeleworks.org/atelier-web/internal/background"
	"steeleworks.org/atelier-web/internal/nav"
	"steeleworks.org/atelier-web/internal/seo"
)

// SidebarSection is one collapsible sidebar group with its persisted state.
type SidebarSection struct {
	Key       string
	Label     string
	Collapsed bool
}

// PageData is the view model for pages using the shared layout.
type PageData struct {
	Title     string
	SiteName  string
	SEO       seo.Meta
	Analytics Analytics

	Path        string
	Nav         []nav.RenderedItem
	Breadcrumbs []nav.Crumb
	Sidebar     []SidebarSection

	Theme            string
	BackgroundImage  string
	BackgroundCredit background.Metadata

	CartCount int

	// Per-page view model payloads
	Home    any
	Shop    any
	Product any
	Gallery any
	Music   any
	Blog    any
	Post    any
	Search  any
	Cart    any
	Order   any
}

// BuildSidebar merges the section definitions with the visitor's collapsed
// flags.
func BuildSidebar(collapsed map[string]bool) []SidebarSection {
	out := make([]SidebarSection, 0, len(nav.SidebarSections))
	for _, s := range nav.SidebarSections {
		out = append(out, SidebarSection{
			Key:       s.Path,
			Label:     s.Label,
			Collapsed: collapsed[s.Path],
		})
	}
	return out
}
