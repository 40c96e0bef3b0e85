package index

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/campusqa/forumsearch/internal/forum"
)

// MemoryStore is an in-process Store guarded by a RWMutex. It backs tests
// and embedded deployments that have no database. Post and category rows are
// seeded through AddPost/AddCategory and treated as read-only reference data,
// mirroring the content-store join the SQL store performs.
type MemoryStore struct {
	mu         sync.RWMutex
	postings   map[string]map[int64]float64
	posts      map[int64]forum.Post
	categories map[int64]forum.Category
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		postings:   make(map[string]map[int64]float64),
		posts:      make(map[int64]forum.Post),
		categories: make(map[int64]forum.Category),
	}
}

// AddPost seeds a content-store post row.
func (m *MemoryStore) AddPost(p forum.Post) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.Score = 0
	m.posts[p.ID] = p
}

// AddCategory seeds a content-store category row.
func (m *MemoryStore) AddCategory(c forum.Category) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categories[c.ID] = c
}

// UpsertPostings implements Store. Last writer wins per (stem, post) pair.
func (m *MemoryStore) UpsertPostings(ctx context.Context, postID int64, weights map[string]float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for stem, weight := range weights {
		byPost, ok := m.postings[stem]
		if !ok {
			byPost = make(map[int64]float64)
			m.postings[stem] = byPost
		}
		byPost[postID] = weight
	}
	return nil
}

// Postings returns the weight stored for (stem, postID) and whether such a
// posting exists. Intended for inspection in tests.
func (m *MemoryStore) Postings(stem string, postID int64) (float64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.postings[stem][postID]
	return w, ok
}

// SearchRanked implements Store.
func (m *MemoryStore) SearchRanked(ctx context.Context, stems []string, f forum.Filters, limit, offset int) ([]forum.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	matches := m.rankedMatches(stems, f)
	m.mu.RUnlock()
	return slicePage(matches, limit, offset), nil
}

// CountRanked implements Store.
func (m *MemoryStore) CountRanked(ctx context.Context, stems []string, f forum.Filters, max int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	n := len(m.rankedMatches(stems, f))
	m.mu.RUnlock()
	if n > max {
		n = max
	}
	return n, nil
}

// SearchRecent implements Store.
func (m *MemoryStore) SearchRecent(ctx context.Context, f forum.Filters, limit, offset int) ([]forum.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	matches := m.recentMatches(f)
	m.mu.RUnlock()
	return slicePage(matches, limit, offset), nil
}

// CountRecent implements Store.
func (m *MemoryStore) CountRecent(ctx context.Context, f forum.Filters, max int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	n := len(m.recentMatches(f))
	m.mu.RUnlock()
	if n > max {
		n = max
	}
	return n, nil
}

// rankedMatches accumulates summed posting weights per post across all
// indexed stems that any query stem is a prefix of, drops posts failing the
// filters, and orders by score descending with most recent post first on
// ties. Caller holds the read lock.
func (m *MemoryStore) rankedMatches(stems []string, f forum.Filters) []forum.Post {
	scores := make(map[int64]float64)
	for indexed, byPost := range m.postings {
		if !matchesAnyPrefix(indexed, stems) {
			continue
		}
		for postID, weight := range byPost {
			scores[postID] += weight
		}
	}

	matches := make([]forum.Post, 0, len(scores))
	for postID, score := range scores {
		post, ok := m.posts[postID]
		if !ok || !m.passesFilters(post, f) {
			continue
		}
		post.CategoryName = m.categoryName(post.CategoryID)
		post.Score = score
		matches = append(matches, post)
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID > matches[j].ID
	})
	return matches
}

// recentMatches returns filter-passing posts most recent first. Caller holds
// the read lock.
func (m *MemoryStore) recentMatches(f forum.Filters) []forum.Post {
	matches := make([]forum.Post, 0, len(m.posts))
	for _, post := range m.posts {
		if !m.passesFilters(post, f) {
			continue
		}
		post.CategoryName = m.categoryName(post.CategoryID)
		matches = append(matches, post)
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].ID > matches[j].ID
	})
	return matches
}

func (m *MemoryStore) passesFilters(p forum.Post, f forum.Filters) bool {
	if f.Category != 0 && p.CategoryID != f.Category {
		return false
	}
	if f.Author != 0 && p.AuthorID != f.Author {
		return false
	}
	switch f.Answered {
	case forum.AnsweredOnly:
		return p.AnswerCount > 0
	case forum.UnansweredOnly:
		return p.AnswerCount == 0
	}
	return true
}

func (m *MemoryStore) categoryName(categoryID int64) string {
	if categoryID == 0 {
		return ""
	}
	return m.categories[categoryID].Name
}

func matchesAnyPrefix(indexed string, stems []string) bool {
	for _, s := range stems {
		if strings.HasPrefix(indexed, s) {
			return true
		}
	}
	return false
}

func slicePage(matches []forum.Post, limit, offset int) []forum.Post {
	if offset >= len(matches) || limit <= 0 {
		return []forum.Post{}
	}
	end := offset + limit
	if end > len(matches) {
		end = len(matches)
	}
	return matches[offset:end]
}
