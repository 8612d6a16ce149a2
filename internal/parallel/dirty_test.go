package parallel

import (
	"slices"
	"sync"
	"testing"
)

func TestDirtySetMark(t *testing.T) {
	d := NewDirtySet(130)
	for _, i := range []int{0, 63, 64, 129, -1, 130} {
		d.Mark(i)
	}
	if d.Count() != 4 {
		t.Errorf("Count() = %d, want 4", d.Count())
	}
	if !d.IsDirty(64) || d.IsDirty(65) || d.IsDirty(130) {
		t.Error("IsDirty mismatch")
	}

	var got []int
	d.ForEach(func(i int) { got = append(got, i) })
	if !slices.Equal(got, []int{0, 63, 64, 129}) {
		t.Errorf("ForEach visited %v", got)
	}
}

// Reset clears marks and reuses or grows the bitmap.
func TestDirtySetReset(t *testing.T) {
	d := NewDirtySet(200)
	d.Mark(150)
	d.Reset(100)
	if d.Len() != 100 || d.Count() != 0 {
		t.Errorf("after Reset: Len %d Count %d", d.Len(), d.Count())
	}
	d.Mark(150)
	if d.Count() != 0 {
		t.Error("Mark beyond Len was recorded")
	}
	d.Reset(500)
	d.Mark(499)
	if !d.IsDirty(499) {
		t.Error("grown set lost a mark")
	}
	d.Reset(0)
	if d.Count() != 0 {
		t.Error("empty set not clean")
	}
}

func TestDirtySetConcurrentMark(t *testing.T) {
	const n = 1000
	d := NewDirtySet(n)
	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := g; i < n; i += 8 {
				d.Mark(i)
			}
		}()
	}
	wg.Wait()
	if d.Count() != n {
		t.Errorf("Count() = %d, want %d", d.Count(), n)
	}
}
