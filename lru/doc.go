// Package lru provides a sharded, concurrent LRU cache for embedding in
// a high-throughput, read-heavy process that must serve many lookups
// per second with bounded memory.
//
// Design
//
//   - Concurrency: the cache is split into 2^ShardBits shards, each
//     guarded by one mutex covering both its recency list and its index
//     (internal/shard, internal/index). Sharding collapses contention to
//     a fixed, small number of lock domains; the shard-selection hash is
//     deliberately decorrelated from the hash each shard's index uses
//     internally (internal/rhash), so their low bits are uncorrelated.
//
//   - Storage: each shard composes a hand-rolled chaining hash index
//     with an intrusive doubly-linked recency list. The index grows by
//     incremental, background rehashing: past a load-factor threshold it
//     hands itself to a shared worker pool (Options.ResizeWorkers) while
//     a small staging array absorbs concurrent writes until the rehash
//     publishes.
//
//   - Insert-only index: Insert never overwrites an existing key's
//     value. Set is a caller-side convenience that composes Remove then
//     Insert; it is not a hidden overwrite inside the index.
//
//   - Node allocation: heap by default, or a preallocated per-shard slab
//     with an index-based free list (Options.NodeAllocator) to remove
//     per-operation allocation traffic.
//
//   - Metrics: Options.Metrics receives Hit/Miss/Evict/Size signals. The
//     default is a no-op; metrics/prom adapts it to Prometheus.
//
// Basic usage
//
//	c := lru.New[int64, [16]byte](lru.Options[int64, [16]byte]{
//	    PerShardCapacity: 10_000,
//	    ShardBits:        4,
//	})
//	c.Insert(1, [16]byte{1})
//	if v, ok := c.Find(1); ok {
//	    _ = v
//	}
//	c.Remove(1)
//
// With background resizing
//
//	c := lru.New[int64, [16]byte](lru.Options[int64, [16]byte]{
//	    PerShardCapacity: 100_000,
//	    ResizeWorkers:    2,
//	})
//	defer c.Close()
//
// With GetOrLoad (singleflight)
//
//	c := lru.New[string, string](lru.Options[string, string]{
//	    PerShardCapacity: 1024,
//	    Loader: func(ctx context.Context, k string) (string, error) {
//	        return fetch(ctx, k)
//	    },
//	})
//	v, err := c.GetOrLoad(context.Background(), "key")
//
// Exporting metrics
//
//	m := prom.New(nil, "mylru", "demo", nil)
//	c := lru.New[int64, [16]byte](lru.Options[int64, [16]byte]{
//	    PerShardCapacity: 10_000,
//	    Metrics:          m,
//	})
//
// Thread-safety & complexity
//
// All methods on Cache are safe for concurrent use. Find/Insert/Remove
// are amortized O(1): one shard-routing hash, one index lookup, and a
// constant number of list pointer fixes, all under a single shard
// mutex. No operation ever holds more than one shard's lock.
package lru
