// Command texanim renders the frames of the animated textures listed in a
// manifest to PNG or GIF files.
//
//	texanim -manifest scene.yaml -out frames -ticks 64 -format gif
//
// With -watch it renders again whenever the manifest or one of its images
// changes, until interrupted.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gogpu/tileanim"
	"github.com/gogpu/tileanim/atlas"
	"github.com/gogpu/tileanim/manifest"
	"github.com/gogpu/tileanim/texio"
)

func main() {
	var cfg config
	flag.StringVar(&cfg.manifest, "manifest", "textures.yaml", "texture manifest")
	flag.StringVar(&cfg.out, "out", "frames", "output directory")
	flag.IntVar(&cfg.ticks, "ticks", 0, "number of ticks to render (0 means one full period)")
	flag.IntVar(&cfg.start, "start", 0, "first tick")
	flag.StringVar(&cfg.format, "format", "png", "output format: png or gif")
	flag.IntVar(&cfg.delay, "delay", 5, "GIF frame delay in 100ths of a second")
	flag.IntVar(&cfg.workers, "workers", 0, "animation workers (0 means GOMAXPROCS)")
	watch := flag.Bool("watch", false, "render again when inputs change")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	tileanim.SetLogger(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *watch, log); err != nil {
		log.Error("texanim failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config, watch bool, log *slog.Logger) error {
	if err := cfg.validate(); err != nil {
		return err
	}

	m, err := manifest.Load(cfg.manifest)
	if err != nil {
		return err
	}
	a, l, err := manifest.Build(m, atlas.WithWorkers(cfg.workers))
	if err != nil {
		return err
	}
	defer a.Close()

	n, err := render(a, cfg)
	if err != nil {
		return err
	}
	log.Info("frames written", "files", n, "dir", cfg.out)

	if !watch {
		return nil
	}
	return watchLoop(ctx, cfg, m, l, a, log)
}

func watchLoop(ctx context.Context, cfg config, m *manifest.Manifest, l *texio.Loader, a *atlas.Atlas, log *slog.Logger) error {
	s := &session{cfg: cfg, m: m, l: l, a: a, log: log}

	w, err := manifest.NewWatcher(m.Files()...)
	if err != nil {
		return fmt.Errorf("texanim: watch: %w", err)
	}
	defer func() { _ = w.Close() }()
	log.Info("watching for changes", "files", len(m.Files()))

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", "error", err)
		case name, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !s.m.Changed(name) {
				continue
			}
			filesChanged, err := s.reload(name)
			if err != nil {
				log.Warn("reload failed", "changed", name, "error", err)
			}
			if !filesChanged {
				continue
			}
			nw, err := manifest.NewWatcher(s.m.Files()...)
			if err != nil {
				return fmt.Errorf("texanim: watch: %w", err)
			}
			_ = w.Close()
			w = nw
		}
	}
}

type config struct {
	manifest string
	out      string
	ticks    int
	start    int
	format   string
	delay    int
	workers  int
}

var errBadFlag = errors.New("texanim: bad flag")

func (c config) validate() error {
	if c.format != "png" && c.format != "gif" {
		return fmt.Errorf("%w: -format %q (want png or gif)", errBadFlag, c.format)
	}
	if c.ticks < 0 {
		return fmt.Errorf("%w: -ticks %d", errBadFlag, c.ticks)
	}
	if c.delay < 0 {
		return fmt.Errorf("%w: -delay %d", errBadFlag, c.delay)
	}
	return nil
}
