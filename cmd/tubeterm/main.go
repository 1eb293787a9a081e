// Terminal background - the tube field drawn with cell background colours.
//
// Usage: go run ./cmd/tubeterm [-seed N] [-fps N]
// Quit with Esc, q or Ctrl-C.
package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/tubeglow/background"
	"github.com/pthm-cable/tubeglow/config"
	"github.com/pthm-cable/tubeglow/terminal"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	fps := flag.Int("fps", 0, "Frames per second (0 = screen.target_fps from config)")
	logPath := flag.String("log", "", "Write JSON logs to this file (the terminal is the display)")
	cellW := flag.Int("cell-width", terminal.DefaultCellWidth, "Virtual pixels per cell, horizontally")
	cellH := flag.Int("cell-height", terminal.DefaultCellHeight, "Virtual pixels per cell, vertically")
	flag.Parse()

	var logOut io.Writer = io.Discard
	if *logPath != "" {
		f, err := os.Create(*logPath)
		if err != nil {
			slog.Error("failed to open log", "error", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}
	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := run(config.Cfg(), *seed, *fps, *cellW, *cellH); err != nil {
		slog.Error("tubeterm failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, seed int64, fps, cellW, cellH int) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	screen.HideCursor()

	fps = frameRate(fps, cfg)
	surface := terminal.NewSurface(screen, cellW, cellH)
	h := terminal.NewHost(screen, surface, fps, slog.Default())
	defer h.Close()

	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	bg, err := background.New(surface, cfg, rand.New(rand.NewSource(seed)))
	if err != nil {
		return err
	}
	defer bg.Stop()

	ctx := context.Background()
	if err := bg.Start(ctx, h.Loop(), h.Loop()); err != nil {
		return err
	}

	if err := h.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// frameRate returns the -fps flag, or the configured target when it is unset.
func frameRate(fps int, cfg *config.Config) int {
	if fps > 0 {
		return fps
	}
	return cfg.Screen.TargetFPS
}
