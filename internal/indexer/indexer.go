// Package indexer rebuilds the JSON indexes the site serves: the shop,
// gallery, and music manifests, the search index, and the static feed and
// sitemap documents. It is run offline whenever content changes.
package indexer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"steeleworks.org/atelier-web/internal/blog"
	"steeleworks.org/atelier-web/internal/catalog"
	"steeleworks.org/atelier-web/internal/content"
	"steeleworks.org/atelier-web/internal/feed"
)

var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}
var audioExts = map[string]bool{".mp3": true, ".ogg": true, ".m4a": true, ".flac": true}

var titleCaser = cases.Title(language.English)

// Builder scans the content tree and writes the derived indexes into the
// assets directory.
type Builder struct {
	AssetsDir  string
	ContentDir string
	Log        *zap.Logger
}

func (b *Builder) logger() *zap.Logger {
	if b.Log != nil {
		return b.Log
	}
	return zap.NewNop()
}

// gallerySidecar is the optional YAML file next to a gallery image.
type gallerySidecar struct {
	Title       string   `yaml:"title"`
	Alt         string   `yaml:"alt"`
	Description string   `yaml:"description"`
	Link        string   `yaml:"link"`
	Tags        []string `yaml:"tags"`
}

// BuildGallery scans images/gallery, merges sidecar metadata, and writes
// gallery.json. Images without a sidecar get a title derived from the
// filename.
func (b *Builder) BuildGallery() ([]catalog.GalleryItem, error) {
	dir := filepath.Join(b.AssetsDir, "images", "gallery")
	files, err := scanDir(dir, imageExts)
	if err != nil {
		return nil, err
	}

	items := make([]catalog.GalleryItem, 0, len(files))
	for _, name := range files {
		item := catalog.GalleryItem{
			Src:   "/assets/images/gallery/" + name,
			Title: titleFromFilename(name),
			Tags:  []string{},
		}
		var sc gallerySidecar
		if ok, err := readSidecar(filepath.Join(dir, name), &sc); err != nil {
			return nil, err
		} else if ok {
			applyString(&item.Title, sc.Title)
			applyString(&item.Alt, sc.Alt)
			applyString(&item.Description, sc.Description)
			applyString(&item.Link, sc.Link)
			if sc.Tags != nil {
				item.Tags = sc.Tags
			}
		}
		if item.Alt == "" {
			item.Alt = item.Title
		}
		items = append(items, item)
	}

	if err := b.writeJSON("gallery.json", items); err != nil {
		return nil, err
	}
	b.logger().Info("gallery index written", zap.Int("items", len(items)))
	return items, nil
}

// musicSidecar is the optional YAML file next to an audio file.
type musicSidecar struct {
	Title       string   `yaml:"title"`
	Artist      string   `yaml:"artist"`
	Instrument  string   `yaml:"instrument"`
	Date        string   `yaml:"date"`
	Description string   `yaml:"description"`
	Tags        []string `yaml:"tags"`
}

// BuildMusic scans the audio directory, merges sidecar metadata, and writes
// music.json sorted newest first by sidecar date.
func (b *Builder) BuildMusic() ([]catalog.Track, error) {
	dir := filepath.Join(b.AssetsDir, "audio")
	files, err := scanDir(dir, audioExts)
	if err != nil {
		return nil, err
	}

	tracks := make([]catalog.Track, 0, len(files))
	for _, name := range files {
		track := catalog.Track{
			Src:   "/assets/audio/" + name,
			Title: titleFromFilename(name),
			Tags:  []string{},
		}
		var sc musicSidecar
		if ok, err := readSidecar(filepath.Join(dir, name), &sc); err != nil {
			return nil, err
		} else if ok {
			applyString(&track.Title, sc.Title)
			applyString(&track.Artist, sc.Artist)
			applyString(&track.Instrument, sc.Instrument)
			applyString(&track.Date, sc.Date)
			applyString(&track.Description, sc.Description)
			if sc.Tags != nil {
				track.Tags = sc.Tags
			}
		}
		tracks = append(tracks, track)
	}
	sort.SliceStable(tracks, func(i, j int) bool {
		return tracks[i].Date > tracks[j].Date
	})

	if err := b.writeJSON("music.json", tracks); err != nil {
		return nil, err
	}
	b.logger().Info("music index written", zap.Int("tracks", len(tracks)))
	return tracks, nil
}

// productManifest is one YAML file under content/shop.
type productManifest struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Price       string   `yaml:"price"`
	Type        string   `yaml:"type"`
	Image       string   `yaml:"image"`
	Link        string   `yaml:"link"`
	LinkLabel   string   `yaml:"linkLabel"`
	Tags        []string `yaml:"tags"`
	Stock       *int     `yaml:"stock"`
	Variants    []struct {
		Name    string   `yaml:"name"`
		Options []string `yaml:"options"`
	} `yaml:"variants"`
	Fulfillment string `yaml:"fulfillment"`
}

func (m productManifest) product() catalog.Product {
	p := catalog.Product{
		Title:       m.Title,
		Description: m.Description,
		Price:       m.Price,
		Type:        m.Type,
		Image:       m.Image,
		Link:        m.Link,
		LinkLabel:   m.LinkLabel,
		Tags:        m.Tags,
		Stock:       m.Stock,
		Fulfillment: m.Fulfillment,
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	for _, v := range m.Variants {
		p.Variants = append(p.Variants, catalog.Variant{Name: v.Name, Options: v.Options})
	}
	return p
}

// BuildShop reads the product manifests under content/shop and writes
// shop.json in manifest filename order.
func (b *Builder) BuildShop() ([]catalog.Product, error) {
	dir := filepath.Join(b.ContentDir, "shop")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			entries = nil
		} else {
			return nil, err
		}
	}

	var products []catalog.Product
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || (!strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml")) {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		var m productManifest
		if err := yaml.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("indexer: parse product manifest %s: %w", name, err)
		}
		p := m.product()
		if strings.TrimSpace(p.Title) == "" {
			p.Title = titleFromFilename(name)
		}
		products = append(products, p)
	}

	if err := b.writeJSON("shop.json", products); err != nil {
		return nil, err
	}
	b.logger().Info("shop index written", zap.Int("products", len(products)))
	return products, nil
}

// BuildSearchIndex folds every content source into search-index.json: the
// fixed section pages, blog posts, gallery items, products, and tracks.
func (b *Builder) BuildSearchIndex() ([]content.Entry, error) {
	// section pages use categories outside the feed set so only real
	// content lands in feed.xml
	entries := []content.Entry{
		{Title: "Home", Slug: "home", Href: "/", Category: "home"},
		{Title: "Gallery", Slug: "gallery", Href: "/gallery", Category: "gallery"},
		{Title: "Music", Slug: "music-page", Href: "/music", Category: "section"},
		{Title: "Blog", Slug: "blog", Href: "/blog", Category: "section"},
		{Title: "Shop", Slug: "shop-page", Href: "/shop", Category: "section"},
	}

	posts, err := blog.NewRepo(b.ContentDir).List()
	if err != nil {
		return nil, err
	}
	for _, p := range posts {
		entries = append(entries, content.Entry{
			Title:    p.Title,
			Slug:     p.Slug,
			Href:     "/blog/" + p.Slug,
			Preview:  p.Summary,
			Tags:     p.Tags,
			Category: "article",
			Date:     p.Date.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}

	store := catalog.NewStore(b.AssetsDir, 0)
	if items, err := store.Gallery(); err == nil {
		for _, it := range items {
			entries = append(entries, content.Entry{
				Title:    it.Title,
				Slug:     slugify(it.Title),
				Href:     "/gallery",
				Preview:  it.Description,
				Tags:     it.Tags,
				Category: "work",
			})
		}
	}
	if products, err := store.Products(); err == nil {
		for _, p := range products {
			entries = append(entries, content.Entry{
				Title:    p.Title,
				Slug:     slugify(p.Title),
				Href:     "/shop/" + slugify(p.Title),
				Preview:  p.Description,
				Tags:     p.Tags,
				Category: "shop",
			})
		}
	}
	if tracks, err := store.Tracks(); err == nil {
		for _, tr := range tracks {
			entries = append(entries, content.Entry{
				Title:    tr.Title,
				Slug:     slugify(tr.Title),
				Href:     "/music",
				Preview:  tr.Description,
				Tags:     tr.Tags,
				Category: "music",
				Date:     normalizeDate(tr.Date),
			})
		}
	}

	for i := range entries {
		if entries[i].Tags == nil {
			entries[i].Tags = []string{}
		}
	}

	if err := b.writeJSON("search-index.json", entries); err != nil {
		return nil, err
	}
	b.logger().Info("search index written", zap.Int("entries", len(entries)))
	return entries, nil
}

// WriteFeeds renders feed.xml and sitemap.xml from the freshly built search
// index into outDir.
func (b *Builder) WriteFeeds(outDir string, opts feed.Options) error {
	raw, err := os.ReadFile(filepath.Join(b.AssetsDir, "search-index.json"))
	if err != nil {
		return err
	}
	idx, err := content.Parse(raw)
	if err != nil {
		return err
	}

	atom, err := feed.Atom(idx, opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(outDir, "feed.xml"), atom, 0o644); err != nil {
		return err
	}

	sm, err := feed.Sitemap(idx, opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(outDir, "sitemap.xml"), sm, 0o644); err != nil {
		return err
	}
	b.logger().Info("feed and sitemap written", zap.String("dir", outDir))
	return nil
}

func (b *Builder) writeJSON(name string, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	out = append(out, '\n')
	return os.WriteFile(filepath.Join(b.AssetsDir, name), out, 0o644)
}

// scanDir lists files in dir with one of the given extensions, sorted by
// name. A missing directory yields an empty list.
func scanDir(dir string, exts map[string]bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if exts[strings.ToLower(filepath.Ext(entry.Name()))] {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// readSidecar loads <file>.yaml (extension replaced) when present.
func readSidecar(path string, dest any) (bool, error) {
	sidecar := strings.TrimSuffix(path, filepath.Ext(path)) + ".yaml"
	raw, err := os.ReadFile(sidecar)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if err := yaml.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("indexer: parse sidecar %s: %w", sidecar, err)
	}
	return true, nil
}

func applyString(dst *string, val string) {
	if strings.TrimSpace(val) != "" {
		*dst = strings.TrimSpace(val)
	}
}

// titleFromFilename turns "etched-wave_study.jpg" into "Etched Wave Study".
func titleFromFilename(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.ReplaceAll(base, "-", " ")
	base = strings.ReplaceAll(base, "_", " ")
	return titleCaser.String(strings.TrimSpace(base))
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var out strings.Builder
	lastHyphen := true
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				out.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(out.String(), "-")
}

func normalizeDate(d string) string {
	d = strings.TrimSpace(d)
	if d == "" {
		return ""
	}
	if len(d) == 10 {
		return d + "T00:00:00Z"
	}
	return d
}
