package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeIndex(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestProductsDefaultsApplied(t *testing.T) {
	dir := t.TempDir()
	writeIndex(t, dir, "shop.json", `[
		{"title": "Sand-Etched Pint Glass", "price": "$35", "link": "https://example.com/listing"},
		{"title": "Print", "price": "12.50", "type": "digital", "tags": ["art"]}
	]`)

	store := NewStore(dir, time.Minute)
	products, err := store.Products()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
	glass := products[0]
	if glass.Type != "physical" {
		t.Errorf("expected default type physical, got %q", glass.Type)
	}
	if glass.LinkLabel != "Inquire" {
		t.Errorf("expected default link label, got %q", glass.LinkLabel)
	}
	if glass.Tags == nil || glass.Variants == nil {
		t.Error("expected empty slices, not nil")
	}
	if got := glass.PriceCents(); got != 3500 {
		t.Errorf("expected 3500 cents, got %d", got)
	}
	if got := products[1].PriceCents(); got != 1250 {
		t.Errorf("expected 1250 cents, got %d", got)
	}
}

func TestProductAvailability(t *testing.T) {
	zero, two, ten := 0, 2, 10
	cases := []struct {
		name     string
		stock    *int
		avail    bool
		lowStock bool
	}{
		{"untracked", nil, true, false},
		{"sold out", &zero, false, false},
		{"low", &two, true, true},
		{"plenty", &ten, true, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := Product{Title: "x", Stock: tc.stock}
			if p.Available() != tc.avail {
				t.Errorf("Available() = %v, want %v", p.Available(), tc.avail)
			}
			if p.LowStock() != tc.lowStock {
				t.Errorf("LowStock() = %v, want %v", p.LowStock(), tc.lowStock)
			}
		})
	}
}

func TestMissingIndexReturnsError(t *testing.T) {
	store := NewStore(t.TempDir(), time.Minute)
	_, err := store.Products()
	if !errors.Is(err, ErrIndexUnavailable) {
		t.Fatalf("expected ErrIndexUnavailable, got %v", err)
	}
}

func TestCorruptIndexReturnsError(t *testing.T) {
	dir := t.TempDir()
	writeIndex(t, dir, "gallery.json", `{not json`)
	store := NewStore(dir, time.Minute)
	_, err := store.Gallery()
	if !errors.Is(err, ErrIndexUnavailable) {
		t.Fatalf("expected ErrIndexUnavailable, got %v", err)
	}
}

func TestCacheExpiry(t *testing.T) {
	dir := t.TempDir()
	writeIndex(t, dir, "music.json", `[{"title": "River Song", "artist": "Sullivan Steele"}]`)

	store := NewStore(dir, time.Minute)
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return now })

	tracks, err := store.Tracks()
	if err != nil || len(tracks) != 1 {
		t.Fatalf("first load: tracks=%d err=%v", len(tracks), err)
	}

	// Replace the file; within TTL the cached copy is still served.
	writeIndex(t, dir, "music.json", `[]`)
	tracks, err = store.Tracks()
	if err != nil || len(tracks) != 1 {
		t.Fatalf("cached load: tracks=%d err=%v", len(tracks), err)
	}

	// Past TTL the fresh copy wins.
	now = now.Add(2 * time.Minute)
	tracks, err = store.Tracks()
	if err != nil || len(tracks) != 0 {
		t.Fatalf("expired load: tracks=%d err=%v", len(tracks), err)
	}
}

func TestFilterByTag(t *testing.T) {
	products := []Product{
		{Title: "a", Tags: []string{"glasswork", "custom"}},
		{Title: "b", Tags: []string{"print"}},
	}
	filtered := FilterProductsByTag(products, "Glasswork")
	if len(filtered) != 1 || filtered[0].Title != "a" {
		t.Fatalf("unexpected filter result: %+v", filtered)
	}
	if got := FilterProductsByTag(products, ""); len(got) != 2 {
		t.Fatalf("empty tag should return all, got %d", len(got))
	}
}

func TestFindProduct(t *testing.T) {
	dir := t.TempDir()
	writeIndex(t, dir, "shop.json", `[{"title": "Pint Glass", "price": "$35"}]`)
	store := NewStore(dir, time.Minute)

	p, ok, err := store.FindProduct("Pint Glass")
	if err != nil || !ok {
		t.Fatalf("expected hit: ok=%v err=%v", ok, err)
	}
	if p.Title != "Pint Glass" {
		t.Errorf("unexpected product %+v", p)
	}
	_, ok, err = store.FindProduct("Missing")
	if err != nil || ok {
		t.Fatalf("expected miss without error: ok=%v err=%v", ok, err)
	}
}
