package main

import (
	"encoding/json"
	"net/http"
	"strings"

	"steeleworks.org/atelier-web/internal/content"
	mw "steeleworks.org/atelier-web/internal/middleware"
)

// SearchView is the search page and results fragment payload.
type SearchView struct {
	Query   string
	Results []content.Result
}

// SearchHandler renders the search page; with a ?q= it includes results.
func (a *app) SearchHandler(w http.ResponseWriter, r *http.Request) {
	view, err := a.searchView(r)
	if err != nil {
		a.renderUnavailable(w, r, "Search")
		return
	}
	vm := a.basePageData(r, "Search")
	vm.SEO.Description = "Search across works, writing, and the shop."
	vm.SEO.Robots = "noindex"
	vm.Search = view
	renderPage(w, r, "search", vm)
}

// SearchResultsFrag renders just the ranked result list for live typing.
func (a *app) SearchResultsFrag(w http.ResponseWriter, r *http.Request) {
	view, err := a.searchView(r)
	if err != nil {
		mw.WriteError(w, r, http.StatusServiceUnavailable, "search unavailable")
		return
	}
	push := "/search"
	if view.Query != "" {
		push += "?q=" + strings.ReplaceAll(view.Query, " ", "+")
	}
	w.Header().Set("HX-Push-Url", push)
	renderTemplate(w, r, "frag_search_results", view)
}

// SearchJSONHandler answers the machine-readable search endpoint.
func (a *app) SearchJSONHandler(w http.ResponseWriter, r *http.Request) {
	view, err := a.searchView(r)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "search unavailable"})
		return
	}

	type jsonResult struct {
		Title    string   `json:"title"`
		Href     string   `json:"href"`
		Preview  string   `json:"preview,omitempty"`
		Category string   `json:"category,omitempty"`
		Tags     []string `json:"tags,omitempty"`
		Score    int      `json:"score"`
	}
	out := struct {
		Query   string       `json:"query"`
		Results []jsonResult `json:"results"`
	}{Query: view.Query, Results: []jsonResult{}}
	for _, res := range view.Results {
		out.Results = append(out.Results, jsonResult{
			Title:    res.Entry.Title,
			Href:     res.Entry.Href,
			Preview:  res.Entry.Preview,
			Category: res.Entry.Category,
			Tags:     res.Entry.Tags,
			Score:    res.Score,
		})
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(out)
}

func (a *app) searchView(r *http.Request) (SearchView, error) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	view := SearchView{Query: query}
	if query == "" {
		return view, nil
	}
	idx, err := a.index.Index()
	if err != nil {
		return SearchView{}, err
	}
	view.Results = idx.Search(query)
	return view, nil
}
