package search

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/campusqa/forumsearch/internal/forum"
	"github.com/campusqa/forumsearch/internal/query"
	"github.com/campusqa/forumsearch/pkg/config"
	pkgredis "github.com/campusqa/forumsearch/pkg/redis"
)

const cacheKeyPrefix = "search:"

// Cache stores rendered result pages in Redis, keyed by the normalized
// predicate, filters, and page number. Concurrent misses for the same key
// collapse into one store query via singleflight. Index writes invalidate
// the whole search keyspace.
type Cache struct {
	client *pkgredis.Client
	cfg    config.RedisConfig
	group  singleflight.Group
	logger *slog.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

// NewCache creates a Cache on the given Redis client.
func NewCache(client *pkgredis.Client, cfg config.RedisConfig) *Cache {
	return &Cache{
		client: client,
		cfg:    cfg,
		logger: slog.Default().With("component", "search-cache"),
	}
}

// GetOrCompute returns the cached page for key, computing and storing it on
// a miss. The bool result reports whether the page came from the cache.
func (c *Cache) GetOrCompute(ctx context.Context, key string, computeFn func() (*forum.ResultPage, error)) (*forum.ResultPage, bool, error) {
	if page, ok := c.get(ctx, key); ok {
		return page, true, nil
	}
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		if page, ok := c.get(ctx, key); ok {
			return page, nil
		}
		page, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.set(ctx, key, page)
		return page, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.(*forum.ResultPage), false, nil
}

// Invalidate drops every cached search page. Called after index writes.
func (c *Cache) Invalidate(ctx context.Context) error {
	deleted, err := c.client.FlushByPattern(ctx, cacheKeyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating search cache: %w", err)
	}
	c.logger.Debug("search cache invalidated", "keys_deleted", deleted)
	return nil
}

// Stats returns the hit and miss counts since startup.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *Cache) get(ctx context.Context, key string) (*forum.ResultPage, bool) {
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.misses.Add(1)
		return nil, false
	}
	var page forum.ResultPage
	if err := json.Unmarshal([]byte(data), &page); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return &page, true
}

func (c *Cache) set(ctx context.Context, key string, page *forum.ResultPage) {
	data, err := json.Marshal(page)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.cfg.CacheTTL); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// cacheKey derives a stable key from the parsed predicate, filters, and page.
// Stems are sorted so that queries differing only in word order share a key.
func cacheKey(pred *query.Predicate, f forum.Filters, page int) string {
	var stems string
	if pred != nil {
		sorted := make([]string, len(pred.Stems))
		copy(sorted, pred.Stems)
		sort.Strings(sorted)
		stems = strings.Join(sorted, ",")
	}
	raw := fmt.Sprintf("%s|c=%d|a=%d|u=%d|p=%d", stems, f.Category, f.Answered, f.Author, page)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", cacheKeyPrefix, hash[:16])
}
