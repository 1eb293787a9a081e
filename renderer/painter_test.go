package renderer

import (
	"image/color"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/tubeglow/config"
	"github.com/pthm-cable/tubeglow/field"
	"github.com/pthm-cable/tubeglow/geometry"
	"github.com/pthm-cable/tubeglow/pulse"
)

type strokeCall struct {
	from, to r2.Vec
	stroke   Stroke
	stops    []ColorStop // nil for solid strokes
}

// recordingSurface captures draw calls instead of rasterizing them.
type recordingSurface struct {
	w, h    int
	cleared []color.NRGBA
	strokes []strokeCall
}

func (r *recordingSurface) Size() (int, int) { return r.w, r.h }
func (r *recordingSurface) Resize(w, h int) { r.w, r.h = w, h }
func (r *recordingSurface) Clear(c color.NRGBA) { r.cleared = append(r.cleared, c) }

func (r *recordingSurface) StrokeLine(from, to r2.Vec, s Stroke) {
	r.strokes = append(r.strokes, strokeCall{from: from, to: to, stroke: s})
}

func (r *recordingSurface) StrokeGradient(from, to r2.Vec, stops []ColorStop, s Stroke) {
	r.strokes = append(r.strokes, strokeCall{from: from, to: to, stroke: s, stops: stops})
}

func testTube(position float64) field.Tube {
	return field.Tube{
		YAnchor:   100,
		Segment:   geometry.NewSegment(r2.Vec{X: 0, Y: 100}, r2.Vec{X: 300, Y: 100}),
		Pulse:     pulse.Pulse{Position: position, Speed: 2, Length: 100, Intensity: 0.9},
		Thickness: 2,
	}
}

func TestPainterDrawsBodyOnlyWhenPulseHidden(t *testing.T) {
	p := NewPainter(config.Default())
	s := &recordingSurface{w: 300, h: 200}

	p.Draw(s, testTube(-200))

	if len(s.strokes) != 3 {
		t.Fatalf("expected 3 body strokes, got %d", len(s.strokes))
	}
	shadow, border, core := s.strokes[0], s.strokes[1], s.strokes[2]
	if shadow.from != (r2.Vec{X: 1, Y: 101}) {
		t.Errorf("expected shadow offset by (1,1), got %v", shadow.from)
	}
	if shadow.stroke.Width != 4 || border.stroke.Width != 3 || core.stroke.Width != 2 {
		t.Errorf("unexpected body widths %v/%v/%v", shadow.stroke.Width, border.stroke.Width, core.stroke.Width)
	}
	if border.stroke.Color.A <= core.stroke.Color.A {
		t.Errorf("expected border (%d) more opaque than core (%d)", border.stroke.Color.A, core.stroke.Color.A)
	}
}

func TestPainterDrawsGlowAndCore(t *testing.T) {
	p := NewPainter(config.Default())
	s := &recordingSurface{w: 300, h: 200}

	p.Draw(s, testTube(-50))

	if len(s.strokes) != 5 {
		t.Fatalf("expected 5 strokes, got %d", len(s.strokes))
	}
	glow, core := s.strokes[3], s.strokes[4]

	if glow.stops == nil {
		t.Fatal("expected the glow stroke to use a gradient")
	}
	if len(glow.stops) != 4 || glow.stops[0].Offset != 0 || glow.stops[3].Offset != 1 {
		t.Errorf("unexpected gradient stops %+v", glow.stops)
	}
	if glow.stops[0].Color.A != 0 {
		t.Errorf("expected transparent pulse tail, got alpha %d", glow.stops[0].Color.A)
	}
	if glow.stroke.Width != 6 || !glow.stroke.Round || glow.stroke.ShadowBlur != 8 {
		t.Errorf("unexpected glow stroke %+v", glow.stroke)
	}

	// Lit span is [0, 50] of a horizontal tube starting at x=0
	if math.Abs(glow.from.X) > 1e-9 || math.Abs(glow.to.X-50) > 1e-9 {
		t.Errorf("expected glow from x=0 to x=50, got %v -> %v", glow.from, glow.to)
	}
	if core.stops != nil || core.stroke.Width != 3 {
		t.Errorf("unexpected core stroke %+v", core.stroke)
	}
	if core.stroke.Color.A != uint8(255*0.9+0.5) {
		t.Errorf("expected core alpha scaled by intensity, got %d", core.stroke.Color.A)
	}
}

func TestPainterSkipsDegenerateTube(t *testing.T) {
	p := NewPainter(config.Default())
	s := &recordingSurface{}

	tube := testTube(10)
	tube.Segment = geometry.DefaultLayout.Span(geometry.Viewport{}, 10)
	p.Draw(s, tube)

	if len(s.strokes) != 0 {
		t.Errorf("expected no strokes for a zero-length tube, got %d", len(s.strokes))
	}
}

func TestGradientAt(t *testing.T) {
	stops := []ColorStop{
		{Offset: 0, Color: color.NRGBA{R: 0, A: 0}},
		{Offset: 0.5, Color: color.NRGBA{R: 100, A: 200}},
		{Offset: 1, Color: color.NRGBA{R: 200, A: 200}},
	}

	tests := []struct {
		t    float64
		want color.NRGBA
	}{
		{-1, stops[0].Color},
		{0.25, color.NRGBA{R: 50, A: 100}},
		{0.5, stops[1].Color},
		{0.75, color.NRGBA{R: 150, A: 200}},
		{2, stops[2].Color},
	}
	for _, tt := range tests {
		if got := GradientAt(stops, tt.t); got != tt.want {
			t.Errorf("GradientAt(%v) = %+v, want %+v", tt.t, got, tt.want)
		}
	}
}
