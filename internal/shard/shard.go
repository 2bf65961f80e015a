// Package shard implements the per-shard LRU engine (C4): a bounded
// dictionary composing a chaining hash index (internal/index) with an
// intrusive recency list under a single mutex. See SPEC_FULL.md §4.
package shard

import (
	"sync"

	"github.com/Jyjays/MyLRU/internal/index"
	"github.com/Jyjays/MyLRU/internal/util"
	"github.com/Jyjays/MyLRU/metrics"
)

// AllocatorKind selects the node allocation strategy (C6).
type AllocatorKind int

const (
	// AllocatorHeap allocates one node per Insert; the default.
	AllocatorHeap AllocatorKind = iota
	// AllocatorSlab preallocates capacity node slots and hands them out
	// from a free list, trading a fixed up-front allocation for zero
	// per-operation allocation traffic.
	AllocatorSlab
)

// Config configures an Engine at construction time.
type Config[K comparable, V any] struct {
	// IndexHash computes the in-table bucket hash. Required.
	IndexHash func(K) uint64

	// InitialBuckets seeds the index's main array length (rounded up to a
	// power of two). Zero picks a small default.
	InitialBuckets int

	// Resizer drives the index's background resize. Nil means Insert
	// performs a synchronous Resize under the shard's own lock instead.
	Resizer index.Resizer

	// Allocator selects the node allocation strategy.
	Allocator AllocatorKind

	// Metrics receives hit/miss/eviction/size observations. Nil means
	// metrics.NoopMetrics.
	Metrics metrics.Metrics
}

// Engine is a single shard: capacity-bounded, guarded by one mutex,
// composing the chaining index and the recency list (C4).
type Engine[K comparable, V any] struct {
	mu sync.Mutex

	idx      *index.Table[K, *node[K, V]]
	list     *recencyList[K, V]
	alloc    allocator[K, V]
	capacity int
	size     int
	metrics  metrics.Metrics

	_         util.CacheLinePad
	hits      util.PaddedAtomicUint64
	misses    util.PaddedAtomicUint64
	evictions util.PaddedAtomicUint64
}

// New constructs an Engine with the given capacity.
func New[K comparable, V any](capacity int, cfg Config[K, V]) *Engine[K, V] {
	if capacity < 0 {
		capacity = 0
	}
	if cfg.IndexHash == nil {
		panic("shard: Config.IndexHash is required")
	}
	initial := cfg.InitialBuckets
	if initial < 1 {
		initial = 16
	}
	m := cfg.Metrics
	if m == nil {
		m = metrics.NoopMetrics{}
	}

	var a allocator[K, V]
	if cfg.Allocator == AllocatorSlab && capacity > 0 {
		a = newSlabAllocator[K, V](capacity)
	} else {
		a = heapAllocator[K, V]{}
	}

	idx := index.New[K, *node[K, V]](initial, cfg.IndexHash)
	idx.SetResizer(cfg.Resizer)

	return &Engine[K, V]{
		idx:      idx,
		list:     newRecencyList[K, V](),
		alloc:    a,
		capacity: capacity,
		metrics:  m,
	}
}

// Find looks the key up and, on a hit, promotes it to the front of the
// recency list before returning its value.
func (e *Engine[K, V]) Find(key K) (V, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	n, ok := e.idx.Lookup(key)
	if !ok {
		e.misses.Add(1)
		e.metrics.Miss()
		var zero V
		return zero, false
	}
	e.list.MoveToFront(n)
	e.hits.Add(1)
	e.metrics.Hit()
	return n.val, true
}

// Insert admits (key, val) as the new front-most entry. If the shard is
// already at capacity it evicts the current LRU victim first. Returns
// false without evicting or inserting if key is already present.
func (e *Engine[K, V]) Insert(key K, val V) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.idx.Lookup(key); ok {
		return false
	}
	if e.size >= e.capacity {
		e.evictLocked()
	}

	n := e.alloc.Alloc(key, val)
	assert(n != nil, "allocator exhausted at size=%d capacity=%d", e.size, e.capacity)

	if !e.idx.Insert(key, n) {
		e.alloc.Free(n)
		return false
	}
	e.list.PushFront(n)
	e.size++
	if e.size > e.capacity {
		// Only reachable with capacity 0: the node just pushed is both
		// the front and the back of the list, so this evicts itself.
		e.evictLocked()
	}
	e.metrics.Size(e.size)
	return true
}

// Remove deletes key if present.
func (e *Engine[K, V]) Remove(key K) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	n, ok := e.idx.Lookup(key)
	if !ok {
		return false
	}
	e.list.Unlink(n)
	ok = e.idx.Remove(key)
	assert(ok, "index.Remove(%v) missed a key Lookup just found", key)
	e.alloc.Free(n)
	e.size--
	e.metrics.Size(e.size)
	return true
}

// Clear drains the list and the index, releasing every node.
func (e *Engine[K, V]) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for {
		n := e.list.Back()
		if n == nil {
			break
		}
		e.list.Unlink(n)
		e.alloc.Free(n)
	}
	e.idx.Clear()
	e.size = 0
	e.metrics.Size(0)
}

// Resize changes the shard's capacity, evicting down to n if it is
// smaller than the current size.
func (e *Engine[K, V]) Resize(n int) {
	if n < 0 {
		n = 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	for e.size > n {
		e.evictLocked()
	}
	e.capacity = n
	e.metrics.Size(e.size)
}

// Len returns the current number of resident entries.
func (e *Engine[K, V]) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.size
}

// Capacity returns the configured capacity.
func (e *Engine[K, V]) Capacity() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.capacity
}

// IsFull reports whether size has reached capacity.
func (e *Engine[K, V]) IsFull() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.size >= e.capacity
}

// IsEmpty reports whether the shard holds no entries.
func (e *Engine[K, V]) IsEmpty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.size == 0
}

// evictLocked removes the node adjacent to the tail sentinel. Called with
// mu held; a no-op if the list is empty (the capacity-0 case: Insert
// calls evictLocked before allocating, finds nothing to evict, and then
// immediately evicts the node it just inserted below).
func (e *Engine[K, V]) evictLocked() {
	victim := e.list.Back()
	if victim == nil {
		return
	}
	e.list.Unlink(victim)
	ok := e.idx.Remove(victim.Key())
	if !ok {
		// Legitimately reachable only under programming error: the list
		// and index are supposed to agree on membership at all times.
		assert(false, "evicted node %v was absent from the index", victim.Key())
	}
	e.alloc.Free(victim)
	e.size--
	e.evictions.Add(1)
	e.metrics.Evict(metrics.EvictLRU)
}
