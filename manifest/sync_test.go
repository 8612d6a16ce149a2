package manifest

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/gogpu/tileanim"
	"github.com/gogpu/tileanim/atlas"
	"github.com/gogpu/tileanim/texio"
)

func pattern(seed uint32) []uint32 {
	pix := make([]uint32, tileanim.LenSmall)
	for i := range pix {
		pix[i] = 0xff000000 | (uint32(i)*2654435761+seed)&0xffffff
	}
	return pix
}

func writeImage(t *testing.T, path string, pix []uint32) {
	t.Helper()
	if err := texio.SavePNG(path, pix); err != nil {
		t.Fatalf("SavePNG: %v", err)
	}
}

func writeManifest(t *testing.T, path, doc string) *Manifest {
	t.Helper()
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return m
}

func shifted(t *testing.T, src []uint32, mode tileanim.Mode, speed, tick int) []uint32 {
	t.Helper()
	out := make([]uint32, len(src))
	if err := tileanim.Shift(out, src, mode, speed, tick); err != nil {
		t.Fatal(err)
	}
	return out
}

func TestBuild(t *testing.T) {
	dir := t.TempDir()
	water, lava := pattern(1), pattern(2)
	writeImage(t, filepath.Join(dir, "water.png"), water)
	writeImage(t, filepath.Join(dir, "lava.png"), lava)
	m := writeManifest(t, filepath.Join(dir, "scene.yaml"), `
textures:
  - {id: 17, path: water.png, mode: scroll_down, speed: 2}
  - {id: 24, path: lava.png, direction: 2, speed: 1}
`)

	a, _, err := Build(m, atlas.WithWorkers(1))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer a.Close()

	if !slices.Equal(a.IDs(), []int{17, 24}) {
		t.Fatalf("IDs() = %v", a.IDs())
	}
	a.AnimateAll(3)

	tex, _ := a.Get(17)
	if !slices.Equal(tex.Pixels(), shifted(t, water, tileanim.ModeScrollDown, 2, 3)) {
		t.Error("texture 17 pixels wrong")
	}
	tex, _ = a.Get(24)
	if !slices.Equal(tex.Pixels(), shifted(t, lava, tileanim.ModeScrollLeft, 1, 3)) {
		t.Error("texture 24 pixels wrong")
	}
}

func TestBuildMissingImage(t *testing.T) {
	dir := t.TempDir()
	m := writeManifest(t, filepath.Join(dir, "scene.yaml"), "textures:\n  - {id: 1, path: nope.png}\n")
	if _, _, err := Build(m); err == nil {
		t.Error("Build succeeded with a missing image")
	}
}

// A reload replaces, adds and removes textures and animates new ones
// to the current tick while keeping reference counts.
func TestSyncReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yaml")
	water, lava := pattern(1), pattern(2)
	writeImage(t, filepath.Join(dir, "water.png"), water)
	writeImage(t, filepath.Join(dir, "lava.png"), lava)
	m := writeManifest(t, path, `
textures:
  - {id: 17, path: water.png, mode: scroll_down, speed: 2}
  - {id: 24, path: lava.png, mode: scroll_left, speed: 1}
`)

	a, l, err := Build(m, atlas.WithWorkers(1))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer a.Close()
	a.Acquire(17)
	a.AnimateAll(5)

	// Texture 24 is dropped, 17 changes direction and 40 is new.
	m = writeManifest(t, path, `
textures:
  - {id: 17, path: water.png, mode: scroll_up, speed: 2}
  - {id: 40, path: lava.png, mode: scroll_right, speed: 3}
`)
	res, err := Sync(m, l, a, 5)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if res != (SyncResult{Added: 1, Replaced: 1, Removed: 1}) {
		t.Errorf("SyncResult = %+v", res)
	}
	if !slices.Equal(a.IDs(), []int{17, 40}) {
		t.Errorf("IDs() = %v", a.IDs())
	}
	if a.Refs(17) != 2 {
		t.Errorf("Refs(17) = %d, want 2", a.Refs(17))
	}

	tex, _ := a.Get(17)
	if tex.Tick() != 5 || !slices.Equal(tex.Pixels(), shifted(t, water, tileanim.ModeScrollUp, 2, 5)) {
		t.Error("reloaded texture 17 not animated to the current tick")
	}
	tex, _ = a.Get(40)
	if !slices.Equal(tex.Pixels(), shifted(t, lava, tileanim.ModeScrollRight, 3, 5)) {
		t.Error("new texture 40 not animated to the current tick")
	}
}

// A texture whose image no longer decodes keeps its previous pixels.
func TestSyncKeepsTextureOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yaml")
	img := filepath.Join(dir, "water.png")
	water := pattern(3)
	writeImage(t, img, water)
	m := writeManifest(t, path, "textures:\n  - {id: 1, path: water.png, mode: scroll_down, speed: 1}\n")

	a, l, err := Build(m, atlas.WithWorkers(1))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer a.Close()
	before, _ := a.Get(1)

	if err := os.WriteFile(img, []byte("not a png"), 0o600); err != nil {
		t.Fatal(err)
	}
	l.Invalidate(img)

	res, err := Sync(m, l, a, 0)
	if err == nil {
		t.Fatal("Sync succeeded with a corrupt image")
	}
	if res.Failed != 1 {
		t.Errorf("Failed = %d, want 1", res.Failed)
	}
	if after, ok := a.Get(1); !ok || after != before {
		t.Error("previous texture was not kept")
	}
}
