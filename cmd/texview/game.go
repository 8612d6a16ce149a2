package main

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/gogpu/tileanim"
	"github.com/gogpu/tileanim/atlas"
	"github.com/gogpu/tileanim/texio"
)

const gap = 4

type game struct {
	atlas *atlas.Atlas
	scale int
	cols  int

	images  map[int]*ebiten.Image
	stale   map[int]bool
	changed []int
	buf     []byte
	ticks   int
}

func newGame(a *atlas.Atlas, scale, cols int) *game {
	return &game{
		atlas:  a,
		scale:  scale,
		cols:   cols,
		images: make(map[int]*ebiten.Image),
		stale:  make(map[int]bool),
	}
}

func (g *game) Update() error {
	g.atlas.AdvanceAll(1)
	g.changed = g.atlas.AppendChanged(g.changed[:0])
	for _, id := range g.changed {
		g.stale[id] = true
	}
	g.ticks++
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	cell := tileanim.SideLarge*g.scale + gap
	i := 0
	g.atlas.Walk(func(id int, tex *tileanim.Texture) bool {
		if tex.Empty() {
			return true
		}
		img, fresh := g.image(id, tex.Side())
		if fresh || g.stale[id] {
			g.buf = grow(g.buf, tex.Len()*4)
			texio.WriteNRGBA(g.buf, tex.Pixels())
			img.WritePixels(g.buf)
			delete(g.stale, id)
		}

		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(float64(g.scale), float64(g.scale))
		op.GeoM.Translate(float64(gap+(i%g.cols)*cell), float64(gap+(i/g.cols)*cell))
		screen.DrawImage(img, op)
		i++
		return true
	})

	ebitenutil.DebugPrint(screen, fmt.Sprintf("tick %d  textures %d  TPS %0.1f", g.ticks, g.atlas.Len(), ebiten.ActualTPS()))
}

// image returns the upload target for id and whether it was just created.
// It is recreated when the texture size changed.
func (g *game) image(id, side int) (*ebiten.Image, bool) {
	img, ok := g.images[id]
	if ok && img.Bounds().Dx() == side {
		return img, false
	}
	if ok {
		img.Deallocate()
	}
	img = ebiten.NewImage(side, side)
	g.images[id] = img
	return img, true
}

func (g *game) Layout(_, _ int) (int, int) {
	return layout(g.atlas.Len(), g.cols, g.scale)
}

// layout returns the screen size for n textures in rows of cols cells.
func layout(n, cols, scale int) (int, int) {
	cell := tileanim.SideLarge*scale + gap
	rows := max((n+cols-1)/cols, 1)
	return gap + min(max(n, 1), cols)*cell, gap + rows*cell
}

func grow(b []byte, n int) []byte {
	if cap(b) < n {
		return make([]byte, n)
	}
	return b[:n]
}
