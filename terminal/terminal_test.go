package terminal

import (
	"context"
	"errors"
	"image/color"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/tubeglow/geometry"
	"github.com/pthm-cable/tubeglow/renderer"
)

func newScreen(t *testing.T, cols, rows int) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	screen.SetSize(cols, rows)
	t.Cleanup(screen.Fini)
	return screen
}

func TestSurfaceSizeInVirtualPixels(t *testing.T) {
	s := NewSurface(newScreen(t, 20, 10), 8, 16)

	if w, h := s.Size(); w != 160 || h != 160 {
		t.Errorf("expected 160x160, got %dx%d", w, h)
	}

	s.Resize(80, 50) // partial cells are dropped
	if w, h := s.Size(); w != 80 || h != 48 {
		t.Errorf("expected 80x48, got %dx%d", w, h)
	}
}

func TestSurfaceClearAndPresent(t *testing.T) {
	screen := newScreen(t, 4, 2)
	s := NewSurface(screen, 8, 16)

	s.Clear(color.NRGBA{R: 0x1a, G: 0x1a, B: 0x1a, A: 0xff})
	s.Present()

	_, _, style, _ := screen.GetContent(3, 1)
	_, bg, _ := style.Decompose()
	r, g, b := bg.RGB()
	if r != 0x1a || g != 0x1a || b != 0x1a {
		t.Errorf("expected #1a1a1a background, got %d,%d,%d", r, g, b)
	}
}

func TestSurfaceStrokeBlendsAlongLine(t *testing.T) {
	s := NewSurface(newScreen(t, 10, 3), 8, 16)
	s.Clear(color.NRGBA{A: 0xff})

	// Row 1 (y 16..32), full width
	s.StrokeLine(r2.Vec{X: -40, Y: 24}, r2.Vec{X: 200, Y: 24}, renderer.Stroke{
		Color: color.NRGBA{G: 200, A: 128},
		Width: 2,
	})

	for x := 0; x < 10; x++ {
		if c := s.At(x, 1); c.G != 100 {
			t.Errorf("cell (%d,1) expected half-blended green 100, got %d", x, c.G)
		}
		if c := s.At(x, 0); c.G != 0 {
			t.Errorf("cell (%d,0) off the line was touched: %+v", x, c)
		}
	}
}

func TestSurfaceGradientFollowsStops(t *testing.T) {
	s := NewSurface(newScreen(t, 11, 1), 8, 16)
	s.Clear(color.NRGBA{A: 0xff})

	stops := []renderer.ColorStop{
		{Offset: 0, Color: color.NRGBA{R: 0, A: 255}},
		{Offset: 1, Color: color.NRGBA{R: 250, A: 255}},
	}
	s.StrokeGradient(r2.Vec{X: 4, Y: 8}, r2.Vec{X: 84, Y: 8}, stops, renderer.Stroke{Width: 2})

	if c := s.At(0, 0); c.R != 0 {
		t.Errorf("expected tail colour at the start, got %d", c.R)
	}
	if c := s.At(10, 0); c.R != 250 {
		t.Errorf("expected head colour at the end, got %d", c.R)
	}
	if c := s.At(5, 0); c.R != 125 {
		t.Errorf("expected midpoint colour 125, got %d", c.R)
	}
}

func TestHostResizeUpdatesViewport(t *testing.T) {
	screen := newScreen(t, 10, 5)
	s := NewSurface(screen, 8, 16)
	h := NewHost(screen, s, 60, nil)
	defer h.Close()

	if vp := h.Loop().Viewport(); vp != (geometry.Viewport{Width: 80, Height: 80}) {
		t.Fatalf("expected initial 80x80 viewport, got %v", vp)
	}

	var got geometry.Viewport
	h.Loop().AddResizeListener(func(vp geometry.Viewport) { got = vp })

	if !h.handleEvent(tcell.NewEventResize(20, 10)) {
		t.Fatal("resize should not quit")
	}
	if got != (geometry.Viewport{Width: 160, Height: 160}) {
		t.Errorf("expected listeners to see 160x160, got %v", got)
	}
}

func TestHostQuitKeys(t *testing.T) {
	screen := newScreen(t, 4, 4)
	h := NewHost(screen, NewSurface(screen, 8, 16), 60, nil)
	defer h.Close()

	tests := []struct {
		name string
		ev   *tcell.EventKey
		quit bool
	}{
		{"escape", tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), true},
		{"ctrl-c", tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl), true},
		{"q", tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone), true},
		{"other", tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if keep := h.handleEvent(tt.ev); keep == tt.quit {
				t.Errorf("expected quit=%v", tt.quit)
			}
		})
	}
}

func TestHostRunRunsFramesUntilCancelled(t *testing.T) {
	screen := newScreen(t, 4, 4)
	h := NewHost(screen, NewSurface(screen, 8, 16), 200, nil)
	defer h.Close()

	frames := 0
	var rearm func()
	rearm = func() {
		frames++
		h.Loop().RequestFrame(rearm)
	}
	h.Loop().RequestFrame(rearm)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	if err := h.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	if frames == 0 {
		t.Error("expected frames to run")
	}
}
