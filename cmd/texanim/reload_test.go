package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/gogpu/tileanim"
	"github.com/gogpu/tileanim/atlas"
	"github.com/gogpu/tileanim/manifest"
	"github.com/gogpu/tileanim/texio"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
}

func solid(c uint32) []uint32 {
	pix := make([]uint32, tileanim.LenSmall)
	for i := range pix {
		pix[i] = 0xff000000 | c
	}
	return pix
}

func newSession(t *testing.T, dir string) *session {
	t.Helper()
	cfg := config{
		manifest: filepath.Join(dir, "scene.yaml"),
		out:      filepath.Join(dir, "out"),
		ticks:    2,
		format:   "png",
	}
	m, err := manifest.Load(cfg.manifest)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	a, l, err := manifest.Build(m, atlas.WithWorkers(1))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(a.Close)
	return &session{cfg: cfg, m: m, l: l, a: a, log: discardLogger()}
}

// TestSessionReloadImage rewrites a texture image and checks that the
// atlas picks up the new pixels without the watched file set changing.
func TestSessionReloadImage(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "water.png")
	if err := texio.SavePNG(img, solid(0x0000ff)); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "scene.yaml"), "textures:\n  - {id: 1, path: water.png, mode: scroll_down, speed: 1}\n")
	s := newSession(t, dir)

	if err := texio.SavePNG(img, solid(0xff0000)); err != nil {
		t.Fatal(err)
	}
	filesChanged, err := s.reload(img)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if filesChanged {
		t.Error("reload reported a changed file set")
	}
	tex, _ := s.a.Get(1)
	if tex.Pixels()[0] != 0xffff0000 {
		t.Errorf("pixel = %#x after reload, want 0xffff0000", tex.Pixels()[0])
	}
	if _, err := os.Stat(filepath.Join(s.cfg.out, "tex1_0001.png")); err != nil {
		t.Errorf("frames not rendered: %v", err)
	}
}

// TestSessionReloadManifest adds a texture to the manifest and checks that
// the new file set is reported so the watcher can be rebuilt.
func TestSessionReloadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yaml")
	for name, c := range map[string]uint32{"water.png": 0x0000ff, "lava.png": 0xff0000} {
		if err := texio.SavePNG(filepath.Join(dir, name), solid(c)); err != nil {
			t.Fatal(err)
		}
	}
	writeFile(t, path, "textures:\n  - {id: 1, path: water.png, mode: scroll_down, speed: 1}\n")
	s := newSession(t, dir)

	writeFile(t, path, "textures:\n  - {id: 1, path: water.png, mode: scroll_down, speed: 1}\n  - {id: 2, path: lava.png, mode: scroll_left, speed: 1}\n")
	filesChanged, err := s.reload(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !filesChanged {
		t.Error("reload did not report the new texture file")
	}
	if !slices.Equal(s.a.IDs(), []int{1, 2}) {
		t.Errorf("IDs() = %v", s.a.IDs())
	}
	if !s.m.Changed(filepath.Join(dir, "lava.png")) {
		t.Error("session manifest not updated")
	}
}

// TestSessionReloadBadManifest keeps the previous state when the manifest
// no longer parses.
func TestSessionReloadBadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yaml")
	if err := texio.SavePNG(filepath.Join(dir, "water.png"), solid(0x00ff00)); err != nil {
		t.Fatal(err)
	}
	writeFile(t, path, "textures:\n  - {id: 1, path: water.png, mode: scroll_down, speed: 1}\n")
	s := newSession(t, dir)
	prev := s.m

	writeFile(t, path, "textures:\n  - {id: 1, path: water.png, speed: -1}\n")
	if _, err := s.reload(path); err == nil {
		t.Fatal("reload accepted an invalid manifest")
	}
	if s.m != prev || !s.a.Contains(1) {
		t.Error("failed reload changed the session")
	}
}
