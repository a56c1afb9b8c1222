package content

import (
	"sort"
	"strings"
)

// Field weights for the search scoring. Title matches dominate, then
// category, tags, and finally preview text.
const (
	weightTitle    = 8
	weightCategory = 4
	weightTag      = 3
	weightPreview  = 1
)

// Result pairs an entry with its relevance score.
type Result struct {
	Entry Entry
	Score int
}

// Search scores every entry against the query using case-insensitive
// substring containment and returns matches stable-sorted by descending
// score. Zero-scoring entries are excluded entirely. An empty query matches
// nothing.
func (idx *Index) Search(query string) []Result {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}
	terms := strings.Fields(query)

	var results []Result
	for _, e := range idx.entries {
		score := scoreEntry(e, terms)
		if score == 0 {
			continue
		}
		results = append(results, Result{Entry: e, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

func scoreEntry(e Entry, terms []string) int {
	title := strings.ToLower(e.Title)
	category := strings.ToLower(e.Category)
	preview := strings.ToLower(e.Preview)

	score := 0
	for _, term := range terms {
		if strings.Contains(title, term) {
			score += weightTitle
		}
		if strings.Contains(category, term) {
			score += weightCategory
		}
		for _, tag := range e.Tags {
			if strings.Contains(strings.ToLower(tag), term) {
				score += weightTag
				break
			}
		}
		if strings.Contains(preview, term) {
			score += weightPreview
		}
	}
	return score
}

// FilterText keeps entries whose title, preview, or tags contain the query,
// preserving input order. An empty query keeps everything.
func FilterText(entries []Entry, query string) []Entry {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return entries
	}
	var out []Entry
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Title), query) ||
			strings.Contains(strings.ToLower(e.Preview), query) {
			out = append(out, e)
			continue
		}
		for _, tag := range e.Tags {
			if strings.Contains(strings.ToLower(tag), query) {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// Related returns up to limit entries related to the given one, ranked by
// shared tag count with a small bonus for matching category. The entry
// itself is excluded.
func (idx *Index) Related(entry Entry, limit int) []Entry {
	if limit <= 0 {
		return nil
	}

	type scored struct {
		entry Entry
		score int
	}
	var candidates []scored
	for _, e := range idx.entries {
		if e.Slug == entry.Slug {
			continue
		}
		score := sharedTags(entry.Tags, e.Tags) * 2
		if entry.Category != "" && strings.EqualFold(e.Category, entry.Category) {
			score++
		}
		if score == 0 {
			continue
		}
		candidates = append(candidates, scored{entry: e, score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	out := make([]Entry, len(candidates))
	for i, c := range candidates {
		out[i] = c.entry
	}
	return out
}

func sharedTags(a, b []string) int {
	count := 0
	for _, ta := range a {
		for _, tb := range b {
			if strings.EqualFold(ta, tb) {
				count++
				break
			}
		}
	}
	return count
}
