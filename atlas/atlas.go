// Package atlas keeps the animated tile textures of a scene and advances
// all of them once per frame.
//
// Entries are keyed by texture ID and reference counted: scene builders
// Acquire a texture for every surface that uses it and Release it when the
// surface goes away. Walks and per-frame animation follow insertion order.
package atlas

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/gogpu/tileanim"
	"github.com/gogpu/tileanim/internal/parallel"
)

// Errors returned by Atlas.
var (
	// ErrDuplicate is returned by Add when the ID is already registered,
	// and by Add and Replace when the texture is registered under another ID.
	ErrDuplicate = errors.New("atlas: texture already registered")

	// ErrNilTexture is returned by Add for a nil texture.
	ErrNilTexture = errors.New("atlas: nil texture")
)

// DefaultParallelThreshold is the number of textures below which a frame
// is animated on the calling goroutine.
const DefaultParallelThreshold = 16

type entry struct {
	tex  *tileanim.Texture
	refs int
}

// Atlas is a ref-counted registry of animated textures.
//
// A texture is registered under at most one ID, so a frame never hands the
// same texture to two workers.
//
// Thread safety: all methods are safe for concurrent use. AnimateAll and
// AdvanceAll are serialized with each other, so no texture is transformed
// by two frames at once. Callers must not animate a registered texture
// directly while a frame is running.
type Atlas struct {
	mu      sync.RWMutex
	entries map[int]*entry
	owners  map[*tileanim.Texture]int
	order   []int

	frameMu   sync.Mutex
	batch     []*tileanim.Texture
	ids       []int
	dirty     *parallel.DirtySet
	changed   []int
	pool      *parallel.WorkerPool
	threshold int
}

// Option configures an Atlas.
type Option func(*options)

type options struct {
	workers   int
	threshold int
}

func defaultOptions() options {
	return options{
		workers:   0,
		threshold: DefaultParallelThreshold,
	}
}

// WithWorkers sets the number of goroutines used to animate a frame.
// Zero or negative means GOMAXPROCS; one animates on the calling goroutine.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithParallelThreshold sets the minimum number of textures in a frame
// before the work is spread across workers.
func WithParallelThreshold(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.threshold = n
		}
	}
}

// New creates an empty Atlas.
func New(opts ...Option) *Atlas {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	a := &Atlas{
		entries:   make(map[int]*entry),
		owners:    make(map[*tileanim.Texture]int),
		dirty:     parallel.NewDirtySet(0),
		threshold: o.threshold,
	}
	if o.workers != 1 {
		a.pool = parallel.NewWorkerPool(o.workers)
	}
	return a
}

// Add registers tex under id with a reference count of one.
func (a *Atlas) Add(id int, tex *tileanim.Texture) error {
	if tex == nil {
		return fmt.Errorf("%w: id %d", ErrNilTexture, id)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.entries[id]; ok {
		return fmt.Errorf("%w: id %d", ErrDuplicate, id)
	}
	if owner, ok := a.owners[tex]; ok {
		return fmt.Errorf("%w: id %d already holds this texture", ErrDuplicate, owner)
	}
	a.insertLocked(id, tex)
	return nil
}

func (a *Atlas) insertLocked(id int, tex *tileanim.Texture) {
	a.entries[id] = &entry{tex: tex, refs: 1}
	a.owners[tex] = id
	a.order = append(a.order, id)
}

// Replace swaps the texture registered under id, keeping its reference
// count and position, or adds it when id is new. It returns the previous
// texture, if any, and ErrDuplicate when tex is registered under another ID.
func (a *Atlas) Replace(id int, tex *tileanim.Texture) (*tileanim.Texture, error) {
	if tex == nil {
		return nil, fmt.Errorf("%w: id %d", ErrNilTexture, id)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if owner, ok := a.owners[tex]; ok && owner != id {
		return nil, fmt.Errorf("%w: id %d already holds this texture", ErrDuplicate, owner)
	}
	if e, ok := a.entries[id]; ok {
		prev := e.tex
		delete(a.owners, prev)
		e.tex = tex
		a.owners[tex] = id
		return prev, nil
	}
	a.insertLocked(id, tex)
	return nil, nil
}

// Get returns the texture registered under id without touching its count.
func (a *Atlas) Get(id int) (*tileanim.Texture, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	e, ok := a.entries[id]
	if !ok {
		return nil, false
	}
	return e.tex, true
}

// Contains reports whether id is registered.
func (a *Atlas) Contains(id int) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()

	_, ok := a.entries[id]
	return ok
}

// Acquire returns the texture under id and increments its reference count.
func (a *Atlas) Acquire(id int) (*tileanim.Texture, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	e, ok := a.entries[id]
	if !ok {
		return nil, false
	}
	e.refs++
	return e.tex, true
}

// Release decrements the reference count of id and removes the entry when
// it reaches zero. It reports whether the entry was removed.
func (a *Atlas) Release(id int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	e, ok := a.entries[id]
	if !ok {
		return false
	}
	e.refs--
	if e.refs > 0 {
		return false
	}
	a.removeLocked(id)
	return true
}

// Refs returns the reference count of id, or 0 when it is not registered.
func (a *Atlas) Refs(id int) int {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if e, ok := a.entries[id]; ok {
		return e.refs
	}
	return 0
}

// Remove unregisters id regardless of its reference count and returns the
// texture that was registered.
func (a *Atlas) Remove(id int) (*tileanim.Texture, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	e, ok := a.entries[id]
	if !ok {
		return nil, false
	}
	a.removeLocked(id)
	return e.tex, true
}

func (a *Atlas) removeLocked(id int) {
	if e, ok := a.entries[id]; ok {
		delete(a.owners, e.tex)
	}
	delete(a.entries, id)
	if i := slices.Index(a.order, id); i >= 0 {
		a.order = slices.Delete(a.order, i, i+1)
	}
}

// Len returns the number of registered textures.
func (a *Atlas) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return len(a.entries)
}

// IDs returns the registered IDs in insertion order.
func (a *Atlas) IDs() []int {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return slices.Clone(a.order)
}

// Walk calls fn for each texture in insertion order until fn returns false.
// fn runs without the registry lock held and may call other Atlas methods.
func (a *Atlas) Walk(fn func(id int, tex *tileanim.Texture) bool) {
	a.mu.RLock()
	ids := slices.Clone(a.order)
	texs := make([]*tileanim.Texture, len(ids))
	for i, id := range ids {
		texs[i] = a.entries[id].tex
	}
	a.mu.RUnlock()

	for i, id := range ids {
		if !fn(id, texs[i]) {
			return
		}
	}
}

// AnimateAll brings every registered texture to its arrangement for tick
// and returns the number of textures whose pixels can move.
func (a *Atlas) AnimateAll(tick int) int {
	return a.frame(func(t *tileanim.Texture) { t.Animate(tick) })
}

// AdvanceAll advances every registered texture by cycles ticks and returns
// the number of textures whose pixels can move.
func (a *Atlas) AdvanceAll(cycles int) int {
	return a.frame(func(t *tileanim.Texture) { t.Advance(cycles) })
}

func (a *Atlas) frame(step func(*tileanim.Texture)) int {
	a.frameMu.Lock()
	defer a.frameMu.Unlock()

	a.mu.RLock()
	batch, ids := a.batch[:0], a.ids[:0]
	animated := 0
	for _, id := range a.order {
		tex := a.entries[id].tex
		if tex.Animated() {
			animated++
		}
		batch = append(batch, tex)
		ids = append(ids, id)
	}
	a.mu.RUnlock()

	a.dirty.Reset(len(batch))
	run := func(i int) {
		tex := batch[i]
		v := tex.Version()
		step(tex)
		if tex.Version() != v {
			a.dirty.Mark(i)
		}
	}

	if a.pool != nil && animated >= a.threshold {
		tileanim.Logger().Debug("atlas: parallel frame",
			slog.Int("textures", len(batch)),
			slog.Int("workers", a.pool.Workers()))
		a.pool.ForEach(len(batch), run)
	} else {
		for i := range batch {
			run(i)
		}
	}

	changed := a.changed[:0]
	a.dirty.ForEach(func(i int) { changed = append(changed, ids[i]) })
	a.changed = changed

	clear(batch)
	a.batch, a.ids = batch[:0], ids[:0]
	return animated
}

// AppendChanged appends to dst the IDs whose pixels changed during the
// latest AnimateAll or AdvanceAll, in insertion order, and returns the
// extended slice.
func (a *Atlas) AppendChanged(dst []int) []int {
	a.frameMu.Lock()
	defer a.frameMu.Unlock()

	return append(dst, a.changed...)
}

// Close stops the worker pool after the running frame, if any. Afterwards
// frames run on the calling goroutine. Close is safe to call multiple times.
func (a *Atlas) Close() {
	a.frameMu.Lock()
	defer a.frameMu.Unlock()

	if a.pool != nil {
		a.pool.Close()
	}
}
