package main

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/gogpu/tileanim"
	"github.com/gogpu/tileanim/atlas"
	"github.com/gogpu/tileanim/texio"
)

// frameCount returns cfg.ticks, or the longest animation period in the
// atlas when it is zero.
func frameCount(a *atlas.Atlas, cfg config) int {
	if cfg.ticks > 0 {
		return cfg.ticks
	}
	n := 1
	a.Walk(func(_ int, tex *tileanim.Texture) bool {
		n = max(n, tileanim.Period(tex.Mode(), tex.Speed(), tex.Side()))
		return true
	})
	return n
}

// render animates the atlas through the configured ticks and writes the
// frames of every loaded texture. It returns the number of files written.
func render(a *atlas.Atlas, cfg config) (int, error) {
	if err := os.MkdirAll(cfg.out, 0o755); err != nil {
		return 0, fmt.Errorf("texanim: %w", err)
	}

	ticks := frameCount(a, cfg)
	frames := make(map[int][][]uint32)
	written := 0

	for tick := cfg.start; tick < cfg.start+ticks; tick++ {
		a.AnimateAll(tick)

		var err error
		a.Walk(func(id int, tex *tileanim.Texture) bool {
			if tex.Empty() {
				return true
			}
			if cfg.format == "gif" {
				frames[id] = append(frames[id], slices.Clone(tex.Pixels()))
				return true
			}
			name := filepath.Join(cfg.out, fmt.Sprintf("tex%d_%04d.png", id, tick))
			if err = texio.SavePNG(name, tex.Pixels()); err != nil {
				return false
			}
			written++
			return true
		})
		if err != nil {
			return written, err
		}
	}

	for _, id := range a.IDs() {
		f, ok := frames[id]
		if !ok {
			continue
		}
		name := filepath.Join(cfg.out, fmt.Sprintf("tex%d.gif", id))
		if err := texio.SaveGIF(name, f, cfg.delay); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}
