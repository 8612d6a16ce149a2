package parallel

import (
	"math/bits"
	"sync/atomic"
)

// DirtySet records which items of a batch changed, one bit per item in
// uint64 words. Mark may be called from many goroutines at once; Reset
// and the readers must not race with Mark.
type DirtySet struct {
	words []atomic.Uint64
	n     int
}

// NewDirtySet returns a clean set for n items.
func NewDirtySet(n int) *DirtySet {
	d := &DirtySet{}
	d.Reset(n)
	return d
}

// Reset clears the set and resizes it to n items, reusing the bitmap
// when it is large enough.
func (d *DirtySet) Reset(n int) {
	n = max(n, 0)
	need := (n + 63) / 64
	if cap(d.words) < need {
		d.words = make([]atomic.Uint64, need)
	} else {
		d.words = d.words[:need]
		for i := range d.words {
			d.words[i].Store(0)
		}
	}
	d.n = n
}

// Mark flags item i. Out of range indices are ignored.
func (d *DirtySet) Mark(i int) {
	if i < 0 || i >= d.n {
		return
	}
	d.words[i/64].Or(1 << (i & 63))
}

// IsDirty reports whether item i is flagged.
func (d *DirtySet) IsDirty(i int) bool {
	if i < 0 || i >= d.n {
		return false
	}
	return d.words[i/64].Load()&(1<<(i&63)) != 0
}

// Count returns the number of flagged items.
func (d *DirtySet) Count() int {
	count := 0
	for i := range d.words {
		count += bits.OnesCount64(d.words[i].Load())
	}
	return count
}

// Len returns the number of items the set covers.
func (d *DirtySet) Len() int { return d.n }

// ForEach calls fn for each flagged item in ascending order.
func (d *DirtySet) ForEach(fn func(i int)) {
	for w := range d.words {
		word := d.words[w].Load()
		for word != 0 {
			b := bits.TrailingZeros64(word)
			fn(w*64 + b)
			word &^= 1 << b
		}
	}
}
