// Package catalog loads the read-only JSON indexes the site is built from:
// shop products, gallery items, and music tracks. Records are never mutated;
// each page load re-reads the index once its cache entry expires.
package catalog

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	productsFile = "shop.json"
	galleryFile  = "gallery.json"
	musicFile    = "music.json"

	defaultTTL = 5 * time.Minute

	// LowStockThreshold triggers a low-stock notice on product cards.
	LowStockThreshold = 3
)

// ErrIndexUnavailable indicates the backing JSON file could not be read or parsed.
var ErrIndexUnavailable = errors.New("catalog: index unavailable")

// Variant describes one selectable product dimension (e.g. size, color).
type Variant struct {
	Name    string   `json:"name"`
	Options []string `json:"options"`
}

// Product is one entry of shop.json.
type Product struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	Type        string    `json:"type"`
	Image       string    `json:"image"`
	Link        string    `json:"link"`
	LinkLabel   string    `json:"linkLabel"`
	Tags        []string  `json:"tags"`
	Stock       *int      `json:"stock"`
	Variants    []Variant `json:"variants"`
	Fulfillment string    `json:"fulfillment"`
}

// PriceCents parses the display price into minor units. Unparseable or
// missing prices yield zero (inquiry-only items carry no price).
func (p Product) PriceCents() int64 {
	return parsePriceCents(p.Price)
}

// Available reports whether the product can be added to the cart.
// A nil stock means untracked inventory and is always available.
func (p Product) Available() bool {
	return p.Stock == nil || *p.Stock > 0
}

// LowStock reports whether a low-stock notice should be shown.
func (p Product) LowStock() bool {
	return p.Stock != nil && *p.Stock > 0 && *p.Stock <= LowStockThreshold
}

// StockLimit returns the declared stock ceiling, or -1 when untracked.
func (p Product) StockLimit() int {
	if p.Stock == nil {
		return -1
	}
	return *p.Stock
}

// GalleryItem is one entry of gallery.json.
type GalleryItem struct {
	Src         string   `json:"src"`
	Alt         string   `json:"alt"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Link        string   `json:"link"`
	Tags        []string `json:"tags"`
}

// Track is one entry of music.json.
type Track struct {
	Title       string   `json:"title"`
	Artist      string   `json:"artist"`
	Instrument  string   `json:"instrument"`
	Date        string   `json:"date"`
	Description string   `json:"description"`
	Src         string   `json:"src"`
	Tags        []string `json:"tags"`
}

// Store reads and caches the catalog indexes from the assets directory.
type Store struct {
	dir string
	ttl time.Duration
	now func() time.Time

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

type cacheEntry struct {
	raw     []byte
	expires time.Time
}

// NewStore constructs a Store rooted at dir. A non-positive ttl falls back
// to the default.
func NewStore(dir string, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Store{
		dir:   dir,
		ttl:   ttl,
		now:   time.Now,
		cache: map[string]cacheEntry{},
	}
}

// SetClock overrides the time source (tests).
func (s *Store) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Products returns the shop index with per-record defaults applied.
func (s *Store) Products() ([]Product, error) {
	var products []Product
	if err := s.load(productsFile, &products); err != nil {
		return nil, err
	}
	for i := range products {
		normalizeProduct(&products[i])
	}
	return products, nil
}

// Gallery returns the gallery index with per-record defaults applied.
func (s *Store) Gallery() ([]GalleryItem, error) {
	var items []GalleryItem
	if err := s.load(galleryFile, &items); err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].Alt == "" {
			items[i].Alt = items[i].Title
		}
		if items[i].Tags == nil {
			items[i].Tags = []string{}
		}
	}
	return items, nil
}

// Tracks returns the music index with per-record defaults applied.
func (s *Store) Tracks() ([]Track, error) {
	var tracks []Track
	if err := s.load(musicFile, &tracks); err != nil {
		return nil, err
	}
	for i := range tracks {
		if tracks[i].Tags == nil {
			tracks[i].Tags = []string{}
		}
	}
	return tracks, nil
}

// FindProduct looks up a product by exact title. The second return reports
// whether it was found.
func (s *Store) FindProduct(title string) (Product, bool, error) {
	products, err := s.Products()
	if err != nil {
		return Product{}, false, err
	}
	for _, p := range products {
		if p.Title == title {
			return p, true, nil
		}
	}
	return Product{}, false, nil
}

func (s *Store) load(name string, dest any) error {
	raw, ok := s.cached(name)
	if !ok {
		b, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			return errors.Join(ErrIndexUnavailable, err)
		}
		raw = b
		s.mu.Lock()
		s.cache[name] = cacheEntry{raw: b, expires: s.now().Add(s.ttl)}
		s.mu.Unlock()
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return errors.Join(ErrIndexUnavailable, err)
	}
	return nil
}

func (s *Store) cached(name string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.cache[name]
	if !ok || s.now().After(entry.expires) {
		return nil, false
	}
	return entry.raw, true
}

func normalizeProduct(p *Product) {
	if p.Type == "" {
		p.Type = "physical"
	}
	if p.LinkLabel == "" && p.Link != "" {
		p.LinkLabel = "Inquire"
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Variants == nil {
		p.Variants = []Variant{}
	}
}

// FilterProductsByTag returns products carrying the tag; an empty tag
// returns the input unchanged.
func FilterProductsByTag(products []Product, tag string) []Product {
	if tag == "" {
		return products
	}
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if hasTag(p.Tags, tag) {
			out = append(out, p)
		}
	}
	return out
}

// FilterGalleryByTag returns gallery items carrying the tag; an empty tag
// returns the input unchanged.
func FilterGalleryByTag(items []GalleryItem, tag string) []GalleryItem {
	if tag == "" {
		return items
	}
	out := make([]GalleryItem, 0, len(items))
	for _, it := range items {
		if hasTag(it.Tags, tag) {
			out = append(out, it)
		}
	}
	return out
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

func parsePriceCents(price string) int64 {
	cleaned := strings.TrimSpace(price)
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return 0
	}
	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || amount < 0 {
		return 0
	}
	return int64(math.Round(amount * 100))
}
