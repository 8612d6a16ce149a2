package manifest

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"

	"github.com/gogpu/tileanim"
	"github.com/gogpu/tileanim/atlas"
	"github.com/gogpu/tileanim/texio"
)

// SyncResult counts what Sync did to the atlas.
type SyncResult struct {
	Added    int
	Replaced int
	Removed  int
	Failed   int
}

// Sync makes the atlas match the manifest.
//
// Every entry is loaded through l and installed as a fresh texture
// animated to tick, so frames already in flight keep working on the old
// texture. Reference counts of existing IDs are preserved. IDs that are no
// longer listed are removed. When an image fails to load, an existing
// texture under that ID is kept and the error is returned alongside the
// others once every entry has been tried.
func Sync(m *Manifest, l *texio.Loader, a *atlas.Atlas, tick int) (SyncResult, error) {
	log := tileanim.ComponentLogger("manifest")

	var (
		res  SyncResult
		errs []error
	)
	listed := make(map[int]bool, len(m.Textures))
	for _, e := range m.Textures {
		listed[e.ID] = true

		tex, err := build(e, l, tick)
		if err != nil {
			res.Failed++
			errs = append(errs, err)
			if a.Contains(e.ID) {
				log.Warn("keeping previous texture",
					slog.Int("id", e.ID),
					slog.String("path", e.Path),
					slog.Any("error", err))
			}
			continue
		}

		prev, err := a.Replace(e.ID, tex)
		if err != nil {
			res.Failed++
			errs = append(errs, err)
			continue
		}
		if prev != nil {
			res.Replaced++
		} else {
			res.Added++
		}
	}

	for _, id := range a.IDs() {
		if listed[id] {
			continue
		}
		if _, ok := a.Remove(id); ok {
			res.Removed++
		}
	}

	log.Debug("atlas synced",
		slog.Int("added", res.Added),
		slog.Int("replaced", res.Replaced),
		slog.Int("removed", res.Removed),
		slog.Int("failed", res.Failed))
	return res, errors.Join(errs...)
}

// Build creates a new atlas populated from the manifest. The loader uses
// the manifest's fit mode.
func Build(m *Manifest, opts ...atlas.Option) (*atlas.Atlas, *texio.Loader, error) {
	fit, err := m.FitMode()
	if err != nil {
		return nil, nil, err
	}
	l := texio.NewLoader(texio.WithFit(fit), texio.WithCapacity(max(len(m.Textures), 1)))
	a := atlas.New(opts...)
	if _, err := Sync(m, l, a, 0); err != nil {
		a.Close()
		return nil, nil, err
	}
	return a, l, nil
}

func build(e Entry, l *texio.Loader, tick int) (*tileanim.Texture, error) {
	mode, err := e.AnimationMode()
	if err != nil {
		return nil, err
	}
	img, err := l.Load(e.Path)
	if err != nil {
		return nil, fmt.Errorf("manifest: texture %d: %w", e.ID, err)
	}
	tex, err := tileanim.NewTexture(img.Pix, mode, e.Speed)
	if err != nil {
		return nil, fmt.Errorf("manifest: texture %d: %w", e.ID, err)
	}
	tex.Animate(tick)
	return tex, nil
}

// Changed reports whether any of the given paths belongs to the manifest.
// Paths are compared after cleaning.
func (m *Manifest) Changed(paths ...string) bool {
	files := m.Files()
	for _, p := range paths {
		if slices.Contains(files, filepath.Clean(p)) {
			return true
		}
	}
	return false
}
