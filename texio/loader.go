package texio

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gogpu/tileanim"
	"github.com/gogpu/tileanim/cache"
)

// Loader decodes texture files and keeps the decoded pixels in a sharded
// LRU cache. A cached entry is reused while the file's size and
// modification time are unchanged.
//
// Every Load returns a private copy because animation rewrites the buffer
// it is given.
//
// Thread safety: Loader is safe for concurrent use.
type Loader struct {
	fit   FitMode
	cache *cache.ShardedCache[string, *loaded]
}

type loaded struct {
	modTime time.Time
	size    int64
	img     *Image
}

// LoaderOption configures a Loader.
type LoaderOption func(*loaderOptions)

type loaderOptions struct {
	fit      FitMode
	capacity int
}

// WithFit sets how images of unsupported size are handled.
func WithFit(fit FitMode) LoaderOption {
	return func(o *loaderOptions) {
		o.fit = fit
	}
}

// WithCapacity sets the per-shard number of decoded textures kept.
func WithCapacity(n int) LoaderOption {
	return func(o *loaderOptions) {
		o.capacity = n
	}
}

// NewLoader creates a Loader.
func NewLoader(opts ...LoaderOption) *Loader {
	o := loaderOptions{fit: FitNone, capacity: 8}
	for _, opt := range opts {
		opt(&o)
	}
	return &Loader{
		fit:   o.fit,
		cache: cache.NewSharded[string, *loaded](o.capacity, cache.StringHasher),
	}
}

// Fit returns the loader's fit mode.
func (l *Loader) Fit() FitMode { return l.fit }

// Load returns the texture stored at path.
func (l *Loader) Load(path string) (*Image, error) {
	path = filepath.Clean(path)
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("texio: stat: %w", err)
	}

	log := tileanim.Logger()
	if e, ok := l.cache.Get(path); ok && e.size == fi.Size() && e.modTime.Equal(fi.ModTime()) {
		log.Debug("texio: cache hit", slog.String("path", path))
		return e.img.Clone(), nil
	}

	img, err := LoadFile(path, l.fit)
	if err != nil {
		return nil, err
	}
	l.cache.Set(path, &loaded{modTime: fi.ModTime(), size: fi.Size(), img: img})
	log.Debug("texio: decoded",
		slog.String("path", path),
		slog.Int("side", img.Side))
	return img.Clone(), nil
}

// Invalidate drops the cached decode of path.
func (l *Loader) Invalidate(path string) bool {
	return l.cache.Delete(filepath.Clean(path))
}

// Stats reports cache counters.
func (l *Loader) Stats() cache.Stats {
	return l.cache.Stats()
}
