package terminal

import (
	"context"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/tubeglow/geometry"
	"github.com/pthm-cable/tubeglow/host"
)

// Host pumps a host.Loop from a tcell screen: a ticker drives frames and
// screen events drive resizes and quitting.
type Host struct {
	screen   tcell.Screen
	surface  *Surface
	loop     *host.Loop
	interval time.Duration
	logger   *slog.Logger
}

// NewHost creates a host presenting surface on screen at fps frames per second.
func NewHost(screen tcell.Screen, surface *Surface, fps int, logger *slog.Logger) *Host {
	if logger == nil {
		logger = slog.Default()
	}
	w, h := surface.Size()
	return &Host{
		screen:   screen,
		surface:  surface,
		loop:     host.NewLoop(geometry.Viewport{Width: w, Height: h}),
		interval: host.FrameInterval(fps),
		logger:   logger,
	}
}

// Loop returns the scheduler and screen renderers attach to.
func (h *Host) Loop() *host.Loop {
	return h.loop
}

// Run presents frames until a quit key is pressed or ctx is done. It returns
// nil on a quit key and ctx.Err() on cancellation. The caller finalizes the screen.
func (h *Host) Run(ctx context.Context) error {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	done := make(chan struct{})
	defer close(done)

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := h.screen.PollEvent()
			if ev == nil {
				// Screen finalized
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-events:
			if !h.handleEvent(ev) {
				return nil
			}
		case <-ticker.C:
			h.loop.RunFrame()
			h.surface.Present()
		}
	}
}

// handleEvent applies one screen event and reports whether to keep running.
func (h *Host) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
			(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
			return false
		}
	case *tcell.EventResize:
		cols, rows := ev.Size()
		cw, ch := h.surface.CellSize()
		h.logger.Debug("terminal resized", "cols", cols, "rows", rows)
		h.screen.Sync()
		h.loop.SetViewport(geometry.Viewport{Width: cols * cw, Height: rows * ch})
	}
	return true
}

// Close drops every pending callback and listener.
func (h *Host) Close() {
	h.loop.Close()
}
