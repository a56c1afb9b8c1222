package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"steeleworks.org/atelier-web/internal/blog"
	"steeleworks.org/atelier-web/internal/content"
	"steeleworks.org/atelier-web/internal/enhance"
	"steeleworks.org/atelier-web/internal/seo"
)

// BlogIndexView lists published posts, newest first, optionally narrowed by
// a free-text query.
type BlogIndexView struct {
	Posts []blog.Post
	Query string
}

// BlogPostView is one rendered post with its derived decorations.
type BlogPostView struct {
	Post        blog.Post
	ReadingTime int
	TOC         []enhance.Heading
	Related     []content.Entry
}

// BlogIndexHandler renders the post list, narrowed by ?q= when present.
func (a *app) BlogIndexHandler(w http.ResponseWriter, r *http.Request) {
	posts, err := a.blog.List()
	if err != nil {
		a.renderUnavailable(w, r, "Blog")
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q != "" {
		posts = a.filterPosts(posts, q)
	}
	vm := a.basePageData(r, "Blog")
	vm.SEO.Description = "Workshop notes and process writeups."
	vm.Blog = BlogIndexView{Posts: posts, Query: q}
	renderPage(w, r, "blog", vm)
}

// filterPosts keeps posts whose article entry matches the query in the
// content index. Posts absent from the index fall back to a title match so
// freshly written posts stay findable before the next index rebuild.
func (a *app) filterPosts(posts []blog.Post, q string) []blog.Post {
	indexed := map[string]bool{}
	matched := map[string]bool{}
	if idx, err := a.index.Index(); err == nil {
		articles := idx.ByCategory("article")
		for _, e := range articles {
			indexed[e.Slug] = true
		}
		for _, e := range content.FilterText(articles, q) {
			matched[e.Slug] = true
		}
	}
	lower := strings.ToLower(q)
	var out []blog.Post
	for _, p := range posts {
		if matched[p.Slug] || (!indexed[p.Slug] && strings.Contains(strings.ToLower(p.Title), lower)) {
			out = append(out, p)
		}
	}
	return out
}

// BlogPostHandler renders a single post with reading time, a table of
// contents, and related entries from the content index.
func (a *app) BlogPostHandler(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	post, err := a.blog.Get(slug)
	if err != nil {
		if errors.Is(err, blog.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		a.renderUnavailable(w, r, "Blog")
		return
	}

	body := string(post.Body)
	view := BlogPostView{
		Post:        post,
		ReadingTime: enhance.ReadingTime(body),
		TOC:         enhance.TOC(body),
	}
	if idx, err := a.index.Index(); err == nil {
		if entry, ok := idx.BySlug(slug); ok {
			view.Related = idx.Related(entry, 3)
		}
	}

	vm := a.basePageData(r, post.Title)
	vm.SEO.Description = post.Summary
	vm.SEO.OG.Description = post.Summary
	vm.SEO.OG.Type = "article"
	vm.SEO.JSONLD = []string{
		seo.JSON(seo.Article(post.Title, vm.SEO.Canonical, "", a.cfg.Site.Name, post.Date.Format("2006-01-02"))),
	}
	vm.Post = view
	renderPage(w, r, "post", vm)
}
