package index

import (
	"testing"

	"github.com/Jyjays/MyLRU/internal/rhash"
)

func newIntTable(initial int) *Table[int64, int] {
	return New[int64, int](initial, rhash.Index[int64])
}

func TestInsertLookupRemove(t *testing.T) {
	tbl := newIntTable(4)

	if ok := tbl.Insert(1, 100); !ok {
		t.Fatal("Insert new key must succeed")
	}
	if v, ok := tbl.Lookup(1); !ok || v != 100 {
		t.Fatalf("Lookup(1) = %v, %v; want 100, true", v, ok)
	}
	if ok := tbl.Insert(1, 200); ok {
		t.Fatal("Insert of an existing key must return false")
	}
	if v, _ := tbl.Lookup(1); v != 100 {
		t.Fatal("Insert must not overwrite an existing value (insert-only contract)")
	}
	if ok := tbl.Remove(1); !ok {
		t.Fatal("Remove of present key must succeed")
	}
	if _, ok := tbl.Lookup(1); ok {
		t.Fatal("key must be absent after Remove")
	}
	if ok := tbl.Remove(1); ok {
		t.Fatal("Remove of absent key must return false")
	}
}

func TestSynchronousResizeGrowsWithoutLoss(t *testing.T) {
	tbl := newIntTable(2)

	const n = 500
	for i := int64(0); i < n; i++ {
		if !tbl.Insert(i, int(i)) {
			t.Fatalf("Insert(%d) failed", i)
		}
	}
	if got := tbl.Size(); got != n {
		t.Fatalf("Size() = %d, want %d", got, n)
	}
	for i := int64(0); i < n; i++ {
		v, ok := tbl.Lookup(i)
		if !ok || v != int(i) {
			t.Fatalf("Lookup(%d) = %v, %v; want %d, true", i, v, ok, i)
		}
	}
}

func TestClear(t *testing.T) {
	tbl := newIntTable(4)
	for i := int64(0); i < 20; i++ {
		tbl.Insert(i, int(i))
	}
	tbl.Clear()
	if got := tbl.Size(); got != 0 {
		t.Fatalf("Size() after Clear = %d, want 0", got)
	}
	if _, ok := tbl.Lookup(0); ok {
		t.Fatal("lookups after Clear must miss")
	}
	if !tbl.Insert(0, 0) {
		t.Fatal("table must accept inserts after Clear")
	}
}

func TestSetSize(t *testing.T) {
	tbl := newIntTable(4)
	for i := int64(0); i < 10; i++ {
		tbl.Insert(i, int(i))
	}
	tbl.SetSize(1024)
	for i := int64(0); i < 10; i++ {
		if v, ok := tbl.Lookup(i); !ok || v != int(i) {
			t.Fatalf("Lookup(%d) after SetSize = %v, %v", i, v, ok)
		}
	}
}

// fakeCoordinator records enqueued tables and resizes them, on the test's
// goroutine, only when drain is called. Enqueue runs with the table's
// mutex held, so Resize cannot be called from inside it. This exercises
// the staging-array code paths deterministically, without depending on
// background worker timing.
type fakeCoordinator struct {
	ran     int
	pending []Resizable
}

func (f *fakeCoordinator) Enqueue(t Resizable) {
	f.ran++
	f.pending = append(f.pending, t)
}

func (f *fakeCoordinator) drain() {
	for _, t := range f.pending {
		t.Resize()
	}
	f.pending = nil
}

func TestBackgroundResizeUsesStagingArrayAndPreservesEntries(t *testing.T) {
	tbl := newIntTable(2)
	fc := &fakeCoordinator{}
	tbl.SetResizer(fc)

	const n = 200
	for i := int64(0); i < n; i++ {
		if !tbl.Insert(i, int(i)) {
			t.Fatalf("Insert(%d) failed", i)
		}
		// Let writes pile up in the staging array between resizes.
		if i%16 == 15 {
			fc.drain()
		}
	}
	fc.drain()
	if fc.ran == 0 {
		t.Fatal("expected at least one resize to have been enqueued")
	}
	if got := tbl.Size(); got != n {
		t.Fatalf("Size() = %d, want %d", got, n)
	}
	for i := int64(0); i < n; i++ {
		if v, ok := tbl.Lookup(i); !ok || v != int(i) {
			t.Fatalf("Lookup(%d) = %v, %v; want %d, true", i, v, ok, i)
		}
	}
}

// stallingCoordinator defers the actual Resize call until Run is invoked,
// letting the test simulate writes landing in the staging array while a
// resize is "in flight".
type stallingCoordinator struct {
	pending Resizable
}

func (s *stallingCoordinator) Enqueue(t Resizable) { s.pending = t }
func (s *stallingCoordinator) Run() {
	if s.pending != nil {
		s.pending.Resize()
		s.pending = nil
	}
}

func TestWritesDuringPendingResizeLandInStagingAndSurvive(t *testing.T) {
	tbl := newIntTable(2)
	sc := &stallingCoordinator{}
	tbl.SetResizer(sc)

	// Push the table over its growth threshold without letting the
	// coordinator actually run yet.
	for i := int64(0); i < 10; i++ {
		tbl.Insert(i, int(i))
	}
	if sc.pending == nil {
		t.Fatal("expected a resize to have been enqueued")
	}

	// More writes while PENDING must go to the staging array and must
	// still be visible to Lookup.
	tbl.Insert(100, 100)
	if v, ok := tbl.Lookup(100); !ok || v != 100 {
		t.Fatalf("Lookup(100) during pending resize = %v, %v", v, ok)
	}
	if !tbl.Remove(0) {
		t.Fatal("Remove during pending resize must still work")
	}

	sc.Run()

	if _, ok := tbl.Lookup(0); ok {
		t.Fatal("0 was removed before the resize drained staging; must stay absent")
	}
	if v, ok := tbl.Lookup(100); !ok || v != 100 {
		t.Fatalf("Lookup(100) after resize = %v, %v; want 100, true", v, ok)
	}
	for i := int64(1); i < 10; i++ {
		if v, ok := tbl.Lookup(i); !ok || v != int(i) {
			t.Fatalf("Lookup(%d) after resize = %v, %v", i, v, ok)
		}
	}
}
