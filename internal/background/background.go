// Package background serves the daily background image metadata per theme,
// reusing a cached copy inside a time-boxed window. Images and their JSON
// sidecars are produced offline by the indexer.
package background

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ErrUnavailable indicates no background metadata exists for the theme.
var ErrUnavailable = errors.New("background: metadata unavailable")

// Metadata is the sidecar record accompanying a background image.
type Metadata struct {
	Title  string `json:"title"`
	Source string `json:"source"`
	Href   string `json:"href"`
	Date   string `json:"date"`
}

// Provider reads per-theme background metadata from the backgrounds directory.
type Provider struct {
	dir string
	ttl time.Duration
	now func() time.Time

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

type cacheEntry struct {
	meta    Metadata
	expires time.Time
}

// NewProvider constructs a Provider rooted at the backgrounds directory.
func NewProvider(dir string, ttl time.Duration) *Provider {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Provider{
		dir:   dir,
		ttl:   ttl,
		now:   time.Now,
		cache: map[string]cacheEntry{},
	}
}

// SetClock overrides the time source (tests).
func (p *Provider) SetClock(now func() time.Time) {
	if now != nil {
		p.now = now
	}
}

// NormalizeTheme maps arbitrary input onto the two supported themes,
// defaulting to dark.
func NormalizeTheme(theme string) string {
	if strings.EqualFold(strings.TrimSpace(theme), "light") {
		return "light"
	}
	return "dark"
}

// Metadata returns the sidecar for the theme, consulting the cache first.
func (p *Provider) Metadata(theme string) (Metadata, error) {
	theme = NormalizeTheme(theme)

	p.mu.RLock()
	entry, ok := p.cache[theme]
	p.mu.RUnlock()
	if ok && p.now().Before(entry.expires) {
		return entry.meta, nil
	}

	raw, err := os.ReadFile(filepath.Join(p.dir, "bg-"+theme+".json"))
	if err != nil {
		return Metadata{}, errors.Join(ErrUnavailable, err)
	}
	var meta Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return Metadata{}, errors.Join(ErrUnavailable, err)
	}

	p.mu.Lock()
	p.cache[theme] = cacheEntry{meta: meta, expires: p.now().Add(p.ttl)}
	p.mu.Unlock()
	return meta, nil
}

// ImagePath is the site-relative path of the theme's background image.
func (p *Provider) ImagePath(theme string) string {
	return "/assets/backgrounds/bg-" + NormalizeTheme(theme) + ".jpg"
}
