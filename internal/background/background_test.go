package background

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeMeta(t *testing.T, dir, theme string, meta Metadata) {
	t.Helper()
	b, _ := json.Marshal(meta)
	if err := os.WriteFile(filepath.Join(dir, "bg-"+theme+".json"), b, 0o600); err != nil {
		t.Fatalf("write metadata: %v", err)
	}
}

func TestMetadataLoadsAndCaches(t *testing.T) {
	dir := t.TempDir()
	writeMeta(t, dir, "dark", Metadata{Title: "Crab Nebula", Source: "NASA APOD", Href: "https://apod.nasa.gov"})

	p := NewProvider(dir, time.Hour)
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	p.SetClock(func() time.Time { return now })

	meta, err := p.Metadata("dark")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if meta.Title != "Crab Nebula" {
		t.Errorf("unexpected title %q", meta.Title)
	}

	// Within the TTL the cached copy is reused even after the file changes.
	writeMeta(t, dir, "dark", Metadata{Title: "Replaced"})
	meta, err = p.Metadata("dark")
	if err != nil || meta.Title != "Crab Nebula" {
		t.Fatalf("expected cached copy, got %q err=%v", meta.Title, err)
	}

	now = now.Add(2 * time.Hour)
	meta, err = p.Metadata("dark")
	if err != nil || meta.Title != "Replaced" {
		t.Fatalf("expected fresh copy after TTL, got %q err=%v", meta.Title, err)
	}
}

func TestMetadataMissingFile(t *testing.T) {
	p := NewProvider(t.TempDir(), time.Hour)
	if _, err := p.Metadata("light"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestNormalizeTheme(t *testing.T) {
	cases := map[string]string{"light": "light", " LIGHT ": "light", "dark": "dark", "": "dark", "sepia": "dark"}
	for in, want := range cases {
		if got := NormalizeTheme(in); got != want {
			t.Errorf("NormalizeTheme(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestImagePath(t *testing.T) {
	p := NewProvider("x", time.Hour)
	if got := p.ImagePath("light"); got != "/assets/backgrounds/bg-light.jpg" {
		t.Errorf("unexpected path %q", got)
	}
}

func TestFetchDarkWritesImageAndSidecar(t *testing.T) {
	var imageServer *httptest.Server
	imageServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("jpegbytes"))
	}))
	defer imageServer.Close()

	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/planetary/apod" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"title":      "Crab Nebula",
			"media_type": "image",
			"hdurl":      imageServer.URL + "/crab.jpg",
		})
	}))
	defer apiServer.Close()

	dir := t.TempDir()
	f := &Fetcher{
		NASAAPIKey:  "test",
		NASABaseURL: apiServer.URL,
		Now:         func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) },
	}
	meta, err := f.FetchDark(context.Background(), dir)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if meta.Title != "Crab Nebula" || meta.Source != "NASA APOD" {
		t.Errorf("unexpected metadata %+v", meta)
	}

	img, err := os.ReadFile(filepath.Join(dir, "bg-dark.jpg"))
	if err != nil || string(img) != "jpegbytes" {
		t.Fatalf("image not written: %v", err)
	}
	p := NewProvider(dir, time.Hour)
	loaded, err := p.Metadata("dark")
	if err != nil || loaded.Title != "Crab Nebula" {
		t.Fatalf("sidecar not readable: %+v err=%v", loaded, err)
	}
}

func TestFetchLightNoPhotos(t *testing.T) {
	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"photos": []any{}})
	}))
	defer apiServer.Close()

	f := &Fetcher{PexelsAPIKey: "test", PexelsBaseURL: apiServer.URL}
	if _, err := f.FetchLight(context.Background(), t.TempDir()); err == nil {
		t.Fatal("expected error when no photos are returned")
	}
}

func TestFetchDarkAPIError(t *testing.T) {
	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer apiServer.Close()

	f := &Fetcher{NASABaseURL: apiServer.URL}
	if _, err := f.FetchDark(context.Background(), t.TempDir()); err == nil {
		t.Fatal("expected error on API failure")
	}
}
