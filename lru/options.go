package lru

import (
	"context"
	"log"

	"github.com/Jyjays/MyLRU/internal/shard"
	"github.com/Jyjays/MyLRU/metrics"
)

// Options configures a Cache. Zero values are safe; defaults are applied
// in New():
//   - ShardBits <= 0      => util.ReasonableShardBits() (CPU-scaled)
//   - ResizeWorkers <= 0  => synchronous inline Resize, no background pool
//   - nil Metrics         => metrics.NoopMetrics
//   - nil Logger          => log.Default()
type Options[K comparable, V any] struct {
	// PerShardCapacity is the entry limit for each of the 2^ShardBits
	// shards. The cache's total capacity is PerShardCapacity * 2^ShardBits.
	PerShardCapacity int

	// ShardBits is S in 2^S shards. 0 picks a CPU-scaled default.
	ShardBits int

	// ResizeWorkers sizes the background resize coordinator's worker
	// pool, shared across all shards. 0 disables it: each shard's index
	// resizes synchronously, under its own shard lock, when triggered.
	ResizeWorkers int

	// NodeAllocator selects heap (default) or preallocated-slab node
	// allocation.
	NodeAllocator shard.AllocatorKind

	// Metrics receives hit/miss/eviction/size observations from every
	// shard.
	Metrics metrics.Metrics

	// Logger receives the resize coordinator's swallowed-panic
	// diagnostics. Nil uses log.Default().
	Logger *log.Logger

	// Loader fetches a value on a GetOrLoad miss. Concurrent GetOrLoad
	// calls for the same key are coalesced (see internal/singleflight).
	// GetOrLoad returns ErrNoLoader if this is nil.
	Loader func(ctx context.Context, key K) (V, error)
}
