package blog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writePost(t *testing.T, dir, slug, body string) {
	t.Helper()
	blogDir := filepath.Join(dir, "blog")
	if err := os.MkdirAll(blogDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(blogDir, slug+".md"), []byte(body), 0o600); err != nil {
		t.Fatalf("write post: %v", err)
	}
}

const samplePost = `---
title: Etched Glass Process
summary: How the sand etching works.
tags: [glasswork, craft]
date: 2025-03-01
---

## Setup

Some **bold** text and a [link](https://example.com).

<script>alert("nope")</script>
`

func TestGetRendersMarkdownAndSanitizes(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "etched-glass", samplePost)

	repo := NewRepo(dir)
	post, err := repo.Get("etched-glass")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if post.Title != "Etched Glass Process" {
		t.Errorf("unexpected title %q", post.Title)
	}
	if post.Date.IsZero() {
		t.Error("expected parsed date")
	}
	body := string(post.Body)
	if !strings.Contains(body, "<h2") || !strings.Contains(body, "<strong>bold</strong>") {
		t.Errorf("markdown not rendered: %s", body)
	}
	if strings.Contains(body, "<script") {
		t.Errorf("script tag survived sanitization: %s", body)
	}
	if len(post.Tags) != 2 {
		t.Errorf("expected 2 tags, got %v", post.Tags)
	}
}

func TestGetMissingPost(t *testing.T) {
	repo := NewRepo(t.TempDir())
	if _, err := repo.Get("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetRejectsTraversalSlugs(t *testing.T) {
	repo := NewRepo(t.TempDir())
	for _, slug := range []string{"../secret", "a/b", "", "..\\x"} {
		if _, err := repo.Get(slug); !errors.Is(err, ErrNotFound) {
			t.Errorf("slug %q: expected ErrNotFound, got %v", slug, err)
		}
	}
}

func TestListSkipsDraftsAndSortsNewestFirst(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "old", "---\ntitle: Old\ndate: 2024-01-01\n---\nbody\n")
	writePost(t, dir, "new", "---\ntitle: New\ndate: 2025-01-01\n---\nbody\n")
	writePost(t, dir, "wip", "---\ntitle: WIP\ndate: 2025-02-01\ndraft: true\n---\nbody\n")

	repo := NewRepo(dir)
	posts, err := repo.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(posts))
	}
	if posts[0].Title != "New" || posts[1].Title != "Old" {
		t.Fatalf("unexpected order: %q then %q", posts[0].Title, posts[1].Title)
	}
}

func TestListMissingDirIsEmpty(t *testing.T) {
	repo := NewRepo(filepath.Join(t.TempDir(), "absent"))
	posts, err := repo.List()
	if err != nil || posts != nil {
		t.Fatalf("expected empty list without error, got %d posts err=%v", len(posts), err)
	}
}

func TestPostWithByteOrderMark(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "bom-note", "\ufeff---\ntitle: Exported Note\ndate: 2025-04-01\n---\nbody\n")

	repo := NewRepo(dir)
	post, err := repo.Get("bom-note")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if post.Title != "Exported Note" {
		t.Errorf("front matter behind a BOM not parsed, got title %q", post.Title)
	}
}

func TestPostWithoutFrontMatter(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "plain-note", "Just a paragraph.\n")

	repo := NewRepo(dir)
	post, err := repo.Get("plain-note")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if post.Title != "Plain note" {
		t.Errorf("expected title derived from slug, got %q", post.Title)
	}
	if !strings.Contains(string(post.Body), "Just a paragraph.") {
		t.Errorf("body missing: %s", post.Body)
	}
}
