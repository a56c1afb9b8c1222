// Package content loads the flat site content index (search-index.json) and
// provides the search scoring and filtering consumed by the search overlay,
// the blog list, and the related-posts block.
package content

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const indexFile = "search-index.json"

// ErrIndexUnavailable indicates the content index could not be read or parsed.
var ErrIndexUnavailable = errors.New("content: index unavailable")

// Entry is one denormalized record per page/post.
type Entry struct {
	Title    string   `json:"title"`
	Slug     string   `json:"slug"`
	Href     string   `json:"href"`
	Preview  string   `json:"preview"`
	Tags     []string `json:"tags"`
	Category string   `json:"category"`
	Icon     string   `json:"icon"`
	Date     string   `json:"date"`
}

// Time parses the entry date; zero time when missing or malformed.
func (e Entry) Time() time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if ts, err := time.Parse(layout, e.Date); err == nil {
			return ts
		}
	}
	return time.Time{}
}

// Index holds the loaded entries.
type Index struct {
	entries []Entry
}

// Store reads and caches the content index from the assets directory.
type Store struct {
	dir string
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	idx     *Index
	expires time.Time
}

// NewStore constructs a Store rooted at dir with the given cache duration.
func NewStore(dir string, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Store{dir: dir, ttl: ttl, now: time.Now}
}

// SetClock overrides the time source (tests).
func (s *Store) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Index returns the content index, re-reading the file once the cache expires.
func (s *Store) Index() (*Index, error) {
	s.mu.RLock()
	if s.idx != nil && s.now().Before(s.expires) {
		idx := s.idx
		s.mu.RUnlock()
		return idx, nil
	}
	s.mu.RUnlock()

	raw, err := os.ReadFile(filepath.Join(s.dir, indexFile))
	if err != nil {
		return nil, errors.Join(ErrIndexUnavailable, err)
	}
	idx, err := Parse(raw)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.idx = idx
	s.expires = s.now().Add(s.ttl)
	s.mu.Unlock()
	return idx, nil
}

// Parse decodes a raw JSON index, applying per-entry defaults.
func Parse(raw []byte) (*Index, error) {
	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, errors.Join(ErrIndexUnavailable, err)
	}
	for i := range entries {
		if entries[i].Tags == nil {
			entries[i].Tags = []string{}
		}
		if entries[i].Href == "" && entries[i].Slug != "" {
			entries[i].Href = "/" + strings.TrimPrefix(entries[i].Slug, "/")
		}
	}
	return &Index{entries: entries}, nil
}

// NewIndex constructs an index from entries (tests and the feed builder).
func NewIndex(entries []Entry) *Index {
	return &Index{entries: entries}
}

// Entries returns a copy of all entries.
func (idx *Index) Entries() []Entry {
	out := make([]Entry, len(idx.entries))
	copy(out, idx.entries)
	return out
}

// Len is the number of entries.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// ByCategory returns entries matching the category, newest first.
func (idx *Index) ByCategory(category string) []Entry {
	var out []Entry
	for _, e := range idx.entries {
		if strings.EqualFold(e.Category, category) {
			out = append(out, e)
		}
	}
	sortByDateDesc(out)
	return out
}

// BySlug returns the entry with the given slug.
func (idx *Index) BySlug(slug string) (Entry, bool) {
	for _, e := range idx.entries {
		if e.Slug == slug {
			return e, true
		}
	}
	return Entry{}, false
}

func sortByDateDesc(entries []Entry) {
	// insertion sort keeps it stable for equal dates
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j].Time().After(entries[j-1].Time()); j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}
}
