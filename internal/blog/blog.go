// Package blog renders markdown posts with YAML front matter from the
// content directory. Rendered HTML is sanitized before it reaches templates.
package blog

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"gopkg.in/yaml.v3"
)

// ErrNotFound indicates no post exists for the slug.
var ErrNotFound = errors.New("blog: post not found")

// Post is one rendered blog entry.
type Post struct {
	Slug    string
	Title   string
	Summary string
	Tags    []string
	Date    time.Time
	Body    template.HTML
	Draft   bool
}

type frontMatter struct {
	Title   string   `yaml:"title"`
	Summary string   `yaml:"summary"`
	Tags    []string `yaml:"tags"`
	Date    string   `yaml:"date"`
	Draft   bool     `yaml:"draft"`
}

var (
	markdown = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)
	// heading ids survive sanitization so the table of contents can anchor
	policy = func() *bluemonday.Policy {
		p := bluemonday.UGCPolicy()
		p.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")
		return p
	}()
)

// Repo reads posts from <dir>/blog.
type Repo struct {
	dir string
}

// NewRepo constructs a Repo rooted at the content directory.
func NewRepo(contentDir string) *Repo {
	return &Repo{dir: filepath.Join(contentDir, "blog")}
}

// Get loads and renders a single post by slug.
func (r *Repo) Get(slug string) (Post, error) {
	slug = sanitizeSlug(slug)
	if slug == "" {
		return Post{}, ErrNotFound
	}
	data, err := os.ReadFile(filepath.Join(r.dir, slug+".md"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Post{}, ErrNotFound
		}
		return Post{}, err
	}
	return renderPost(slug, data)
}

// List returns all non-draft posts, newest first.
func (r *Repo) List() ([]Post, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var posts []Post
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		slug := strings.TrimSuffix(entry.Name(), ".md")
		post, err := r.Get(slug)
		if err != nil {
			continue
		}
		if post.Draft {
			continue
		}
		posts = append(posts, post)
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Date.After(posts[j].Date)
	})
	return posts, nil
}

func renderPost(slug string, data []byte) (Post, error) {
	fm, body := splitFrontMatter(string(data))
	front := frontMatter{}
	if strings.TrimSpace(fm) != "" {
		if err := yaml.Unmarshal([]byte(fm), &front); err != nil {
			return Post{}, fmt.Errorf("blog: parse front matter for %s: %w", slug, err)
		}
	}

	var buf bytes.Buffer
	if err := markdown.Convert([]byte(body), &buf); err != nil {
		return Post{}, fmt.Errorf("blog: render %s: %w", slug, err)
	}
	safe := policy.SanitizeBytes(buf.Bytes())

	title := strings.TrimSpace(front.Title)
	if title == "" {
		title = titleFromSlug(slug)
	}
	tags := front.Tags
	if tags == nil {
		tags = []string{}
	}

	return Post{
		Slug:    slug,
		Title:   title,
		Summary: strings.TrimSpace(front.Summary),
		Tags:    tags,
		Date:    parseDate(front.Date),
		Body:    template.HTML(safe),
		Draft:   front.Draft,
	}, nil
}

// splitFrontMatter separates a leading --- YAML block from the body.
func splitFrontMatter(s string) (string, string) {
	trimmed := strings.TrimLeft(s, "\ufeff\n\r")
	if !strings.HasPrefix(trimmed, "---") {
		return "", s
	}
	rest := trimmed[3:]
	idx := strings.Index(rest, "\n---")
	if idx < 0 {
		return "", s
	}
	fm := rest[:idx]
	body := rest[idx+4:]
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	} else {
		body = ""
	}
	return fm, body
}

func sanitizeSlug(slug string) string {
	slug = strings.TrimSpace(strings.ToLower(slug))
	slug = strings.Trim(slug, "/")
	if slug == "" || strings.Contains(slug, "..") || strings.ContainsAny(slug, "\\/") {
		return ""
	}
	return slug
}

func titleFromSlug(slug string) string {
	s := strings.ReplaceAll(slug, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	if s == "" {
		return s
	}
	r := []rune(s)
	if r[0] >= 'a' && r[0] <= 'z' {
		r[0] -= 'a' - 'A'
	}
	return string(r)
}

func parseDate(val string) time.Time {
	val = strings.TrimSpace(val)
	if val == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02", "Jan 2, 2006"} {
		if ts, err := time.Parse(layout, val); err == nil {
			return ts
		}
	}
	return time.Time{}
}
