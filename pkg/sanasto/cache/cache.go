// Package cache holds decomposition results shared by every filter created
// from one factory.
package cache

import (
	"fmt"
	"hash/maphash"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/cognicore/sanasto/pkg/sanasto/compound"
	"github.com/cognicore/sanasto/pkg/sanasto/internalerr"
)

const (
	minShardSize = 256
	maxShards    = 16
)

// Stats is a point-in-time view of cache activity.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int
}

// Cache is a bounded LRU map from lowercased surface word to its
// decomposition. Keys are spread over independently locked shards.
// Stored slices must not be modified by callers.
type Cache struct {
	shards []*lru.Cache[string, []compound.Token]
	mask   uint64
	seed   maphash.Seed

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// New creates a cache holding at most size entries.
func New(size int) (*Cache, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: cache size must be positive, got %d", internalerr.ErrInvalidConfig, size)
	}

	n := 1
	for n < maxShards && size/(n*2) >= minShardSize {
		n *= 2
	}

	c := &Cache{
		shards: make([]*lru.Cache[string, []compound.Token], n),
		mask:   uint64(n - 1),
		seed:   maphash.MakeSeed(),
	}
	onEvict := func(string, []compound.Token) { c.evictions.Add(1) }

	per, extra := size/n, size%n
	for i := range c.shards {
		capacity := per
		if i < extra {
			capacity++
		}
		shard, err := lru.NewWithEvict[string, []compound.Token](capacity, onEvict)
		if err != nil {
			return nil, fmt.Errorf("create shard: %w", err)
		}
		c.shards[i] = shard
	}
	return c, nil
}

func (c *Cache) shard(key string) *lru.Cache[string, []compound.Token] {
	return c.shards[maphash.String(c.seed, key)&c.mask]
}

// Get returns the cached decomposition for key. An empty slice with ok set
// means the word is known to have no decomposition.
func (c *Cache) Get(key string) ([]compound.Token, bool) {
	tokens, ok := c.shard(key).Get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return tokens, ok
}

// Put stores the decomposition for key, replacing any previous value.
func (c *Cache) Put(key string, tokens []compound.Token) {
	if tokens == nil {
		tokens = []compound.Token{}
	}
	c.shard(key).Add(key, tokens)
}

// Len returns the number of cached words.
func (c *Cache) Len() int {
	n := 0
	for _, s := range c.shards {
		n += s.Len()
	}
	return n
}

// Purge drops every entry. Counters are kept.
func (c *Cache) Purge() {
	for _, s := range c.shards {
		s.Purge()
	}
}

// Stats returns current counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Size:      c.Len(),
	}
}
