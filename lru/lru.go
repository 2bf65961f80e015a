package lru

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/Jyjays/MyLRU/internal/index"
	"github.com/Jyjays/MyLRU/internal/rhash"
	"github.com/Jyjays/MyLRU/internal/shard"
	"github.com/Jyjays/MyLRU/internal/singleflight"
	"github.com/Jyjays/MyLRU/internal/util"
	"github.com/Jyjays/MyLRU/metrics"
)

// ErrNoLoader is returned by GetOrLoad when no Loader was configured.
var ErrNoLoader = errors.New("lru: no Loader configured")

// Cache is the shard router (C5): a fixed array of shard engines,
// partitioning the key space by a hash distinct from the one each
// shard's index uses internally (internal/rhash). All methods are safe
// for concurrent use by multiple goroutines; no operation ever holds
// more than one shard's lock.
type Cache[K comparable, V any] struct {
	shards []*shard.Engine[K, V]
	mask   uint64

	coord  *index.Coordinator
	opt    Options[K, V]
	sf     singleflight.Group[K, V]
	closed atomic.Bool
}

// New constructs a Cache per opt. PerShardCapacity must be > 0.
func New[K comparable, V any](opt Options[K, V]) *Cache[K, V] {
	bits := opt.ShardBits
	if bits <= 0 {
		bits = util.ReasonableShardBits()
	}
	return newWithShardBits(opt, bits)
}

// newWithShardBits builds a Cache with exactly 2^bits shards, bypassing
// ShardBits<=0's "auto" translation. New() uses it after resolving the
// auto default; tests use it directly to pin shard counts for
// scenarios whose expected outcome depends on a specific lock-domain
// count (e.g. a single global recency order).
func newWithShardBits[K comparable, V any](opt Options[K, V], bits int) *Cache[K, V] {
	if opt.PerShardCapacity <= 0 {
		panic("lru: Options.PerShardCapacity must be > 0")
	}
	if bits < 0 {
		bits = 0
	}
	n := 1 << uint(bits)

	m := opt.Metrics
	if m == nil {
		m = metrics.NoopMetrics{}
	}

	var coord *index.Coordinator
	var resizer index.Resizer
	if opt.ResizeWorkers > 0 {
		coord = index.NewCoordinator(opt.ResizeWorkers, opt.Logger)
		resizer = coord
	}

	shards := make([]*shard.Engine[K, V], n)
	for i := range shards {
		shards[i] = shard.New[K, V](opt.PerShardCapacity, shard.Config[K, V]{
			IndexHash: rhash.Index[K],
			Resizer:   resizer,
			Allocator: opt.NodeAllocator,
			Metrics:   m,
		})
	}

	return &Cache[K, V]{
		shards: shards,
		mask:   uint64(n - 1),
		coord:  coord,
		opt:    opt,
	}
}

// Find looks up key and, on a hit, promotes it to most-recently-used
// within its shard.
func (c *Cache[K, V]) Find(key K) (V, bool) {
	return c.shardFor(key).Find(key)
}

// Insert admits key->val as the new most-recently-used entry in its
// shard, evicting that shard's LRU victim first if the shard is full.
// Returns false without modifying anything if key is already present
// (insert-only contract — see Set).
func (c *Cache[K, V]) Insert(key K, val V) bool {
	return c.shardFor(key).Insert(key, val)
}

// Remove deletes key if present.
func (c *Cache[K, V]) Remove(key K) bool {
	return c.shardFor(key).Remove(key)
}

// Set inserts or overwrites key->val and promotes it to
// most-recently-used. Unlike Insert, Set reports no result — it
// composes a Remove (ignoring whether key was present) with an Insert,
// since the index itself is insert-only and never overwrites a live
// entry (spec's Open Question on insert vs. insert-or-update).
func (c *Cache[K, V]) Set(key K, val V) {
	s := c.shardFor(key)
	s.Remove(key)
	s.Insert(key, val)
}

// Clear drops every entry across every shard.
func (c *Cache[K, V]) Clear() {
	for _, s := range c.shards {
		s.Clear()
	}
}

// Resize changes the per-shard capacity, evicting down to it in any
// shard currently holding more entries.
func (c *Cache[K, V]) Resize(perShardCapacity int) {
	for _, s := range c.shards {
		s.Resize(perShardCapacity)
	}
}

// Size returns the total number of resident entries across all shards.
func (c *Cache[K, V]) Size() int {
	total := 0
	for _, s := range c.shards {
		total += s.Len()
	}
	return total
}

// Capacity returns the total capacity across all shards.
func (c *Cache[K, V]) Capacity() int {
	total := 0
	for _, s := range c.shards {
		total += s.Capacity()
	}
	return total
}

// IsEmpty reports whether every shard is empty.
func (c *Cache[K, V]) IsEmpty() bool {
	for _, s := range c.shards {
		if !s.IsEmpty() {
			return false
		}
	}
	return true
}

// IsFull reports whether every shard has reached its capacity.
func (c *Cache[K, V]) IsFull() bool {
	for _, s := range c.shards {
		if !s.IsFull() {
			return false
		}
	}
	return true
}

// GetOrLoad returns the value for key, loading it via Options.Loader on
// a miss. Concurrent GetOrLoad calls for the same key are coalesced so
// the loader runs at most once per miss. Returns ErrNoLoader if no
// Loader was configured.
func (c *Cache[K, V]) GetOrLoad(ctx context.Context, key K) (V, error) {
	if v, ok := c.Find(key); ok {
		return v, nil
	}
	if c.opt.Loader == nil {
		var zero V
		return zero, ErrNoLoader
	}
	return c.sf.Do(ctx, key, func() (V, error) {
		if v, ok := c.Find(key); ok {
			return v, nil
		}
		v, err := c.opt.Loader(ctx, key)
		if err == nil {
			c.Insert(key, v)
		}
		return v, err
	})
}

// Close shuts down the background resize coordinator, if one was
// configured. Safe to call more than once; future operations on the
// Cache remain valid (closing only affects background resizing).
func (c *Cache[K, V]) Close() error {
	if c.closed.CompareAndSwap(false, true) && c.coord != nil {
		c.coord.Shutdown()
	}
	return nil
}

// shardFor routes key to its shard via a hash decorrelated from the
// one the shard's own index uses for in-table bucket selection.
func (c *Cache[K, V]) shardFor(key K) *shard.Engine[K, V] {
	idx := rhash.Route(key) & c.mask
	return c.shards[idx]
}
