// Package cache provides the bounded article cache used by the fetch
// client. Eviction is least-recently-used; capacity is fixed at
// construction.
package cache

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/kvasirlabs/grokipedia-go/pkg/models"
)

// DefaultCapacity is used when no capacity is configured.
const DefaultCapacity = 1000

// ArticleCache is a thread-safe LRU cache of fetched articles keyed by
// slug. The embedded LRU is already safe on its own; the extra mutex
// makes compound check-then-insert operations atomic.
type ArticleCache struct {
	mu  sync.Mutex
	lru *lru.Cache[string, *models.Article]
}

// New returns a cache holding at most capacity articles. Capacity must
// be at least 1.
func New(capacity int) (*ArticleCache, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("cache capacity must be >= 1, got %d", capacity)
	}

	inner, err := lru.New[string, *models.Article](capacity)
	if err != nil {
		return nil, fmt.Errorf("create lru: %w", err)
	}

	return &ArticleCache{lru: inner}, nil
}

// Get returns the cached article for slug, marking it most recently
// used on a hit.
func (c *ArticleCache) Get(slug string) (*models.Article, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Get(slug)
}

// Put inserts or overwrites the article for slug, evicting the least
// recently used entry if the cache is full.
func (c *ArticleCache) Put(slug string, article *models.Article) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(slug, article)
}

// PutIfAbsent re-checks the cache under the lock before inserting.
// When two concurrent misses fetch the same slug, the first writer
// wins and the second writer's article is discarded; both callers get
// a usable article back.
func (c *ArticleCache) PutIfAbsent(slug string, article *models.Article) *models.Article {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.lru.Get(slug); ok {
		return existing
	}
	c.lru.Add(slug, article)
	return article
}

// Len returns the number of cached articles.
func (c *ArticleCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}
