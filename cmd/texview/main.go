// Command texview opens a window showing the animated textures of a
// manifest, advanced once per update tick.
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/gogpu/tileanim"
	"github.com/gogpu/tileanim/atlas"
	"github.com/gogpu/tileanim/manifest"
)

func main() {
	var (
		path    = flag.String("manifest", "textures.yaml", "texture manifest")
		scale   = flag.Int("scale", 2, "pixel scale")
		cols    = flag.Int("cols", 4, "textures per row")
		tps     = flag.Int("tps", 50, "animation ticks per second")
		verbose = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	tileanim.SetLogger(log)

	m, err := manifest.Load(*path)
	if err != nil {
		log.Error("load manifest", "error", err)
		os.Exit(1)
	}
	a, _, err := manifest.Build(m, atlas.WithWorkers(0))
	if err != nil {
		log.Error("build atlas", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	g := newGame(a, max(*scale, 1), max(*cols, 1))
	w, h := g.Layout(0, 0)
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle("texview - " + *path)
	ebiten.SetTPS(max(*tps, 1))

	if err := ebiten.RunGame(g); err != nil {
		log.Error("run", "error", err)
		os.Exit(1)
	}
}
