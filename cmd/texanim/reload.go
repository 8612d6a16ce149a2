package main

import (
	"log/slog"
	"slices"

	"github.com/gogpu/tileanim/atlas"
	"github.com/gogpu/tileanim/manifest"
	"github.com/gogpu/tileanim/texio"
)

// session is the state carried between reloads in watch mode.
type session struct {
	cfg config
	m   *manifest.Manifest
	l   *texio.Loader
	a   *atlas.Atlas
	log *slog.Logger
}

// reload handles one changed file: it reloads the manifest, syncs the atlas
// and renders again. It reports whether the set of files to watch changed.
// A manifest that fails to load leaves the session untouched. Textures that
// fail to load are logged and keep their previous pixels.
func (s *session) reload(name string) (bool, error) {
	s.l.Invalidate(name)

	next, err := manifest.Load(s.cfg.manifest)
	if err != nil {
		return false, err
	}
	if fit, _ := next.FitMode(); fit != s.l.Fit() {
		s.l = texio.NewLoader(texio.WithFit(fit), texio.WithCapacity(max(len(next.Textures), 1)))
	}
	if _, err := manifest.Sync(next, s.l, s.a, s.cfg.start); err != nil {
		s.log.Warn("some textures failed to reload", "error", err)
	}

	filesChanged := !slices.Equal(next.Files(), s.m.Files())
	s.m = next

	n, err := render(s.a, s.cfg)
	if err != nil {
		return filesChanged, err
	}
	s.log.Info("frames rewritten", "changed", name, "files", n)
	return filesChanged, nil
}
