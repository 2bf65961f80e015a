// Package index implements the chaining hash index (C1): a key->handle
// mapping with insert-if-absent semantics and incremental, background
// resize via a small staging array. See SPEC_FULL.md §4 / spec.md §4.1.
package index

import (
	"sync"

	"github.com/Jyjays/MyLRU/internal/util"
)

// stagingLength is fixed at 8, per spec.md §4.1/§6.
const stagingLength = 8

type entry[K comparable, H any] struct {
	key K
	val H
}

type bucket[K comparable, H any] []entry[K, H]

// Resizer enqueues a Table for asynchronous background rehashing. A nil
// Resizer on a Table means Insert performs a synchronous Resize under the
// table's own lock instead, matching the index state machine's rule that
// PENDING only exists "if a resize coordinator is attached".
type Resizer interface {
	Enqueue(t Resizable)
}

// Resizable is anything the background resize coordinator can drive. The
// coordinator's worker goroutines hold no table lock when calling Resize;
// Resize must acquire it.
type Resizable interface {
	Resize()
}

// Table is a chaining hash index mapping K to an opaque handle H.
//
// The table owns its own mutex, independent of whatever lock its caller
// (a shard) might hold: a background resize worker mutates the table from
// outside any shard lock, so the table must be able to serialize against
// it on its own. Shard-level callers reach the table only while already
// holding the shard mutex, which is how the "exclusive" reader policy
// (SPEC_FULL.md §4) is realized without the table needing to know about
// shards at all.
type Table[K comparable, H any] struct {
	mu sync.Mutex

	main     []bucket[K, H]
	staging  []bucket[K, H]
	resizing bool
	count    int

	hash    func(K) uint64
	resizer Resizer
}

// New constructs a table with the given initial bucket count (rounded up
// to a power of two, minimum 1) and the hash function used for both main
// and staging bucket selection.
func New[K comparable, H any](initialBuckets int, hash func(K) uint64) *Table[K, H] {
	if initialBuckets < 1 {
		initialBuckets = 1
	}
	length := int(util.NextPow2(uint64(initialBuckets)))
	return &Table[K, H]{
		main: make([]bucket[K, H], length),
		hash: hash,
	}
}

// SetResizer attaches a background resize coordinator. Intended to be
// called once at construction time, before the table is shared across
// goroutines.
func (t *Table[K, H]) SetResizer(r Resizer) { t.resizer = r }

// Lookup returns the handle stored for key. It consults the staging array
// first (if a resize is in flight) and then the main array, per spec.md
// §4.1's Lookup contract. Lookup is infallible: a missing key is a
// successful "absent" result, not an error.
func (t *Table[K, H]) Lookup(key K) (H, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.staging != nil {
		if h, ok := findIn(t.staging, t.stagingIndex(key), key); ok {
			return h, true
		}
	}
	return findIn(t.main, t.mainIndex(key), key)
}

// Insert adds key->val if key is absent from both the staging and main
// arrays. It never overwrites an existing key's value — this index is
// insert-only; callers that want update-and-promote semantics must
// Remove then Insert at the shard layer (spec.md §4.1/§9). Returns true
// if the key was newly inserted, false if it was already present.
func (t *Table[K, H]) Insert(key K, val H) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.staging != nil {
		if _, ok := findIn(t.staging, t.stagingIndex(key), key); ok {
			return false
		}
	}
	if _, ok := findIn(t.main, t.mainIndex(key), key); ok {
		return false
	}

	if t.staging != nil {
		idx := t.stagingIndex(key)
		t.staging[idx] = append(t.staging[idx], entry[K, H]{key: key, val: val})
	} else {
		idx := t.mainIndex(key)
		t.main[idx] = append(t.main[idx], entry[K, H]{key: key, val: val})
	}
	t.count++

	if t.staging == nil && t.count > 2*len(t.main) {
		t.maybeStartResize()
	}
	return true
}

// Remove deletes key from whichever array currently holds it, staging
// first. Returns true if a key was removed.
func (t *Table[K, H]) Remove(key K) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.staging != nil {
		if removeFrom(t.staging, t.stagingIndex(key), key) {
			t.count--
			return true
		}
	}
	if removeFrom(t.main, t.mainIndex(key), key) {
		t.count--
		return true
	}
	return false
}

// Size returns the number of resident entries.
func (t *Table[K, H]) Size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}

// Clear drops all entries and any in-flight staging array, without
// shrinking the main array's bucket count.
func (t *Table[K, H]) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.main {
		t.main[i] = nil
	}
	t.staging = nil
	t.resizing = false
	t.count = 0
}

// SetSize resizes the main array to the smallest power of two >= n and
// rehashes all resident entries into it.
func (t *Table[K, H]) SetSize(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n < 1 {
		n = 1
	}
	t.rehashTo(int(util.NextPow2(uint64(n))))
}

// maybeStartResize is called with mu held, right after an Insert has
// pushed the load factor above 2x (spec.md §4.1's growth trigger). With a
// coordinator attached it hands the table off for background rehashing;
// otherwise it resizes synchronously, in place, under this same lock.
func (t *Table[K, H]) maybeStartResize() {
	if t.resizing {
		return
	}
	if t.resizer == nil {
		t.rehashTo(len(t.main) * 2)
		return
	}
	t.resizing = true
	t.staging = make([]bucket[K, H], stagingLength)
	t.resizer.Enqueue(t)
}

// Resize performs one full rehash pass, doubling the main array's length.
// It is what the background coordinator calls on a dequeued table; it
// acquires the table's own lock since the coordinator's worker holds
// none of it beforehand.
func (t *Table[K, H]) Resize() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rehashTo(len(t.main) * 2)
}

// rehashTo rebuilds the main array at newLen buckets, draining any
// staging array into it, and clears the resizing flag. Must be called
// with mu held. Publication is just the assignment to t.main: since every
// reader and writer takes mu first, the new array is visible to anyone
// who acquires the lock after this function returns (spec.md §4.1's
// "Publication must be total-ordered").
func (t *Table[K, H]) rehashTo(newLen int) {
	if newLen < 1 {
		newLen = 1
	}
	newMain := make([]bucket[K, H], newLen)
	mask := uint64(newLen - 1)

	for _, b := range t.main {
		for _, e := range b {
			idx := t.hash(e.key) & mask
			newMain[idx] = append(newMain[idx], e)
		}
	}
	for _, b := range t.staging {
		for _, e := range b {
			idx := t.hash(e.key) & mask
			newMain[idx] = append(newMain[idx], e)
		}
	}

	t.main = newMain
	t.staging = nil
	t.resizing = false
}

func (t *Table[K, H]) mainIndex(key K) int {
	return int(t.hash(key) & uint64(len(t.main)-1))
}

func (t *Table[K, H]) stagingIndex(key K) int {
	return int(t.hash(key) & uint64(stagingLength-1))
}

func findIn[K comparable, H any](arr []bucket[K, H], idx int, key K) (H, bool) {
	for _, e := range arr[idx] {
		if e.key == key {
			return e.val, true
		}
	}
	var zero H
	return zero, false
}

func removeFrom[K comparable, H any](arr []bucket[K, H], idx int, key K) bool {
	chain := arr[idx]
	for i, e := range chain {
		if e.key == key {
			arr[idx] = append(chain[:i], chain[i+1:]...)
			return true
		}
	}
	return false
}
