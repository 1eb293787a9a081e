package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/tubeglow/background"
	"github.com/pthm-cable/tubeglow/config"
	"github.com/pthm-cable/tubeglow/geometry"
	"github.com/pthm-cable/tubeglow/host"
	"github.com/pthm-cable/tubeglow/renderer"
	"github.com/pthm-cable/tubeglow/telemetry"
	"github.com/pthm-cable/tubeglow/ui"
)

// options holds the parsed command line.
type options struct {
	headless      bool
	logStats      bool
	seed          int64
	maxFrames     uint64
	outputDir     string
	snapshotDir   string
	snapshotEvery uint64
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Render offscreen without a window")
	logStats := flag.Bool("log-stats", false, "Output perf stats via slog")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxFrames := flag.Uint64("max-frames", 0, "Stop after N frames (0 = unlimited)")
	outputDir := flag.String("output-dir", "", "Output directory for perf CSV and config snapshot")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for field snapshots and PNG frames")
	snapshotEvery := flag.Uint64("snapshot-every", 0, "Write a snapshot every N frames (0 = only at exit)")
	width := flag.Int("width", 0, "Override screen width")
	height := flag.Int("height", 0, "Override screen height")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *width > 0 {
		cfg.Screen.Width = *width
	}
	if *height > 0 {
		cfg.Screen.Height = *height
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := options{
		headless:      *headless,
		logStats:      *logStats,
		seed:          rngSeed,
		maxFrames:     *maxFrames,
		outputDir:     *outputDir,
		snapshotDir:   *snapshotDir,
		snapshotEvery: *snapshotEvery,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	if opts.headless {
		err = runHeadless(ctx, cfg, opts)
	} else {
		err = runWindow(ctx, cfg, opts)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

// session wires the renderer to perf logging and file output for either mode.
type session struct {
	cfg    *config.Config
	opts   options
	perf   *telemetry.PerfCollector
	output *telemetry.OutputManager
	bg     *background.Renderer

	// Set in headless mode; PNG frames are only written from the software surface.
	software *renderer.SoftwareSurface
}

func newSession(cfg *config.Config, opts options, surface renderer.Surface) (*session, error) {
	output, err := telemetry.NewOutputManager(opts.outputDir)
	if err != nil {
		return nil, err
	}
	if err := output.WriteConfig(cfg); err != nil {
		output.Close()
		return nil, fmt.Errorf("writing config: %w", err)
	}

	s := &session{
		cfg:    cfg,
		opts:   opts,
		perf:   telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		output: output,
	}
	if sw, ok := surface.(*renderer.SoftwareSurface); ok {
		s.software = sw
	}

	bg, err := background.New(surface, cfg, rand.New(rand.NewSource(s.opts.seed)),
		background.WithPerf(s.perf),
		background.WithFrameHook(s.afterFrame),
	)
	if err != nil {
		output.Close()
		return nil, err
	}
	s.bg = bg
	return s, nil
}

// afterFrame runs on the frame goroutine after every drawn frame.
func (s *session) afterFrame(frame uint64) {
	if n := s.cfg.Derived.LogInterval; n > 0 && frame%uint64(n) == 0 {
		stats := s.perf.Stats()
		if s.opts.logStats {
			stats.LogStats(slog.Default())
		}
		if err := s.output.WritePerf(stats, frame, len(s.bg.Tubes())); err != nil {
			slog.Warn("failed to write perf", "error", err)
		}
	}
	if s.opts.snapshotEvery > 0 && frame%s.opts.snapshotEvery == 0 {
		s.snapshot(frame)
	}
}

// snapshot writes the field JSON and, in headless mode, the frame as PNG.
func (s *session) snapshot(frame uint64) {
	if s.opts.snapshotDir == "" {
		return
	}
	path, err := telemetry.SaveSnapshot(s.bg.Snapshot(s.opts.seed), s.opts.snapshotDir)
	if err != nil {
		slog.Warn("failed to save snapshot", "error", err)
		return
	}
	slog.Info("snapshot saved", "path", path, "frame", frame)

	if s.software != nil {
		png := filepath.Join(s.opts.snapshotDir, fmt.Sprintf("frame_%d.png", frame))
		if err := s.software.SavePNG(png); err != nil {
			slog.Warn("failed to save frame", "error", err)
		}
	}
}

// hudData collects what the window HUD shows.
func (s *session) hudData(vp geometry.Viewport) ui.HUDData {
	tubes := s.bg.Tubes()
	lit := 0
	for _, t := range tubes {
		if t.Pulse.Visible(t.Segment.Length) {
			lit++
		}
	}
	return ui.HUDData{
		Title:   s.cfg.Screen.Title,
		Tubes:   len(tubes),
		Lit:     lit,
		Frame:   s.bg.Frames(),
		FPS:     rl.GetFPS(),
		Width:   vp.Width,
		Height:  vp.Height,
		Seed:    s.opts.seed,
		Running: s.bg.Running(),
	}
}

func (s *session) close() {
	s.snapshot(s.bg.Frames())
	s.bg.Stop()
	if err := s.output.Close(); err != nil {
		slog.Warn("failed to close output", "error", err)
	}
}

func runHeadless(ctx context.Context, cfg *config.Config, opts options) error {
	vp := geometry.Viewport{Width: cfg.Screen.Width, Height: cfg.Screen.Height}
	surface := renderer.NewSoftwareSurface(vp.Width, vp.Height)
	loop := host.NewLoop(vp)
	defer loop.Close()

	s, err := newSession(cfg, opts, surface)
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.bg.Start(ctx, loop, loop); err != nil {
		return fmt.Errorf("starting background: %w", err)
	}

	slog.Info("starting headless render",
		"seed", opts.seed,
		"width", vp.Width,
		"height", vp.Height,
		"max_frames", opts.maxFrames,
	)

	for s.bg.Running() {
		if err := ctx.Err(); err != nil {
			return err
		}
		loop.RunFrame()

		if opts.maxFrames > 0 && s.bg.Frames() >= opts.maxFrames {
			slog.Info("max frames reached", "frame", s.bg.Frames())
			return nil
		}
	}
	return nil
}

func runWindow(ctx context.Context, cfg *config.Config, opts options) error {
	win := host.OpenWindow(host.WindowOptions{
		Width:     cfg.Screen.Width,
		Height:    cfg.Screen.Height,
		Title:     cfg.Screen.Title,
		TargetFPS: cfg.Screen.TargetFPS,
		Resizable: cfg.Screen.Resizable,
	}, slog.Default())
	defer win.Close()

	vp := win.Loop().Viewport()
	s, err := newSession(cfg, opts, renderer.NewRaylibSurface(vp.Width, vp.Height))
	if err != nil {
		return err
	}
	defer s.close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	hud := ui.NewHUD(10, 10, 300)
	showHUD := false
	win.SetOverlay(func() {
		if rl.IsKeyPressed(rl.KeyF1) {
			showHUD = !showHUD
		}
		if rl.IsKeyPressed(rl.KeyF11) {
			rl.ToggleFullscreen()
		}
		if showHUD {
			hud.Draw(s.hudData(win.Loop().Viewport()), s.perf.Stats())
		}
		if opts.maxFrames > 0 && s.bg.Frames() >= opts.maxFrames {
			slog.Info("max frames reached", "frame", s.bg.Frames())
			cancel()
		}
	})

	if err := s.bg.Start(ctx, win.Loop(), win.Loop()); err != nil {
		// No surface: the window stays up without a background
		slog.Warn("background not started", "error", err)
	}

	return win.Run(ctx)
}
