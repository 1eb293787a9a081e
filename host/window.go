package host

import (
	"context"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/tubeglow/geometry"
)

// WindowOptions configures a raylib window.
type WindowOptions struct {
	Width, Height int
	Title         string
	TargetFPS     int
	Resizable     bool
}

// Window is a raylib window pumping a Loop once per displayed frame.
// All methods must be called from the goroutine that opened it.
type Window struct {
	loop    *Loop
	logger  *slog.Logger
	overlay func()

	width, height int
}

// OpenWindow creates the window and its loop.
func OpenWindow(opts WindowOptions, logger *slog.Logger) *Window {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Resizable {
		rl.SetConfigFlags(rl.FlagWindowResizable)
	}
	rl.InitWindow(int32(opts.Width), int32(opts.Height), opts.Title)
	rl.SetTargetFPS(int32(opts.TargetFPS))

	w, h := rl.GetScreenWidth(), rl.GetScreenHeight()
	logger.Info("window opened", "width", w, "height", h, "resizable", opts.Resizable)

	return &Window{
		loop:   NewLoop(geometry.Viewport{Width: w, Height: h}),
		logger: logger,
		width:  w,
		height: h,
	}
}

// Loop returns the scheduler and screen backing this window.
func (w *Window) Loop() *Loop {
	return w.loop
}

// SetOverlay sets fn to draw after the frame callbacks, before the frame is presented.
func (w *Window) SetOverlay(fn func()) {
	w.overlay = fn
}

// Run presents frames until the window is closed or ctx is done.
func (w *Window) Run(ctx context.Context) error {
	for !rl.WindowShouldClose() {
		if err := ctx.Err(); err != nil {
			return err
		}
		w.handleResize()

		rl.BeginDrawing()
		w.loop.RunFrame()
		if w.overlay != nil {
			w.overlay()
		}
		rl.EndDrawing()
	}
	return nil
}

// handleResize checks for window resize and propagates new dimensions.
func (w *Window) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	width, height := rl.GetScreenWidth(), rl.GetScreenHeight()
	if width == w.width && height == w.height {
		return
	}
	w.width, w.height = width, height
	w.logger.Debug("window resized", "width", width, "height", height)
	w.loop.SetViewport(geometry.Viewport{Width: width, Height: height})
}

// Close drops every pending callback and closes the window.
func (w *Window) Close() {
	w.loop.Close()
	rl.CloseWindow()
}
