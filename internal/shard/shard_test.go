package shard

import (
	"testing"

	"github.com/Jyjays/MyLRU/internal/rhash"
)

func newEngine[V any](capacity int) *Engine[int64, V] {
	return New[int64, V](capacity, Config[int64, V]{IndexHash: rhash.Index[int64]})
}

func TestScenario1SingleThreadEviction(t *testing.T) {
	e := newEngine[int](10)
	for i := int64(0); i < 10; i++ {
		if !e.Insert(i, int(i)) {
			t.Fatalf("Insert(%d) failed", i)
		}
	}
	if !e.Insert(10, 10) {
		t.Fatal("Insert(10) failed")
	}

	if _, ok := e.Find(0); ok {
		t.Fatal("key 0 should have been evicted")
	}
	if v, ok := e.Find(10); !ok || v != 10 {
		t.Fatalf("Find(10) = %v, %v; want 10, true", v, ok)
	}
	for i := int64(1); i <= 9; i++ {
		if v, ok := e.Find(i); !ok || v != int(i) {
			t.Fatalf("Find(%d) = %v, %v", i, v, ok)
		}
	}
	if e.Len() != 10 {
		t.Fatalf("Len() = %d, want 10", e.Len())
	}
}

func TestScenario2PromoteByFind(t *testing.T) {
	e := newEngine[int](5)
	for i := int64(0); i < 5; i++ {
		e.Insert(i, int(i))
	}
	e.Find(0)
	e.Find(1)
	e.Find(2)
	e.Insert(5, 5)

	if _, ok := e.Find(3); ok {
		t.Fatal("key 3 should have become LRU and been evicted")
	}
	for _, k := range []int64{0, 1, 2, 4, 5} {
		if _, ok := e.Find(k); !ok {
			t.Fatalf("Find(%d) should be present", k)
		}
	}
	if e.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", e.Len())
	}
}

func TestScenario3InsertOnlySemantics(t *testing.T) {
	e := newEngine[string](10)
	if !e.Insert(7, "A") {
		t.Fatal("first Insert(7) must succeed")
	}
	if e.Insert(7, "B") {
		t.Fatal("second Insert(7) must return false")
	}
	if v, ok := e.Find(7); !ok || v != "A" {
		t.Fatalf("Find(7) = %v, %v; want A, true", v, ok)
	}
	if !e.Remove(7) {
		t.Fatal("Remove(7) must succeed")
	}
	if !e.Insert(7, "B") {
		t.Fatal("Insert(7) after Remove must succeed")
	}
	if v, _ := e.Find(7); v != "B" {
		t.Fatalf("Find(7) after Remove+Insert = %v, want B", v)
	}
}

func TestScenario6ClearAndReuse(t *testing.T) {
	e := newEngine[int](100)
	for i := int64(0); i < 50; i++ {
		e.Insert(i, int(i))
	}
	e.Clear()
	if e.Len() != 0 {
		t.Fatalf("Len() after Clear = %d, want 0", e.Len())
	}
	if !e.Insert(100, 100) {
		t.Fatal("Insert after Clear must succeed")
	}
	if e.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", e.Len())
	}
	if v, ok := e.Find(100); !ok || v != 100 {
		t.Fatalf("Find(100) = %v, %v; want 100, true", v, ok)
	}
	for i := int64(0); i < 50; i++ {
		if _, ok := e.Find(i); ok {
			t.Fatalf("Find(%d) should be false after Clear", i)
		}
	}
}

func TestCapacityOneEviction(t *testing.T) {
	e := newEngine[int](1)
	e.Insert(1, 1)
	e.Insert(2, 2)
	if _, ok := e.Find(1); ok {
		t.Fatal("key 1 should have been evicted")
	}
	if v, ok := e.Find(2); !ok || v != 2 {
		t.Fatalf("Find(2) = %v, %v; want 2, true", v, ok)
	}
}

func TestCapacityZeroAlwaysEvictsImmediately(t *testing.T) {
	e := newEngine[int](0)
	if !e.Insert(1, 1) {
		t.Fatal("Insert into a zero-capacity shard must still return true")
	}
	if e.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", e.Len())
	}
	if _, ok := e.Find(1); ok {
		t.Fatal("a zero-capacity shard must never retain an entry")
	}
}

func TestDuplicateInsertsDoNotGrowSize(t *testing.T) {
	e := newEngine[int](10)
	e.Insert(1, 1)
	e.Insert(1, 2)
	e.Insert(1, 3)
	if e.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", e.Len())
	}
}

func TestRemoveThenFind(t *testing.T) {
	e := newEngine[int](10)
	e.Insert(1, 1)
	e.Remove(1)
	if _, ok := e.Find(1); ok {
		t.Fatal("Find after Remove must return false")
	}
}

func TestResizeShrinksByEviction(t *testing.T) {
	e := newEngine[int](10)
	for i := int64(0); i < 10; i++ {
		e.Insert(i, int(i))
	}
	e.Resize(5)
	if e.Len() != 5 {
		t.Fatalf("Len() after Resize(5) = %d, want 5", e.Len())
	}
	if e.Capacity() != 5 {
		t.Fatalf("Capacity() = %d, want 5", e.Capacity())
	}
	// The 5 most recently inserted keys (5..9) must survive; 0..4 (LRU) are gone.
	for i := int64(0); i < 5; i++ {
		if _, ok := e.Find(i); ok {
			t.Fatalf("key %d should have been evicted by Resize(5)", i)
		}
	}
	for i := int64(5); i < 10; i++ {
		if _, ok := e.Find(i); !ok {
			t.Fatalf("key %d should have survived Resize(5)", i)
		}
	}
}

func TestSlabAllocatorMatchesHeapSemantics(t *testing.T) {
	e := New[int64, int](10, Config[int64, int]{IndexHash: rhash.Index[int64], Allocator: AllocatorSlab})
	for i := int64(0); i < 20; i++ {
		e.Insert(i, int(i))
	}
	if e.Len() != 10 {
		t.Fatalf("Len() = %d, want 10", e.Len())
	}
	for i := int64(10); i < 20; i++ {
		if v, ok := e.Find(i); !ok || v != int(i) {
			t.Fatalf("Find(%d) = %v, %v", i, v, ok)
		}
	}
}
