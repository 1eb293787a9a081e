// Package field owns the set of tubes covering the viewport.
package field

import (
	"math"

	"github.com/pthm-cable/tubeglow/geometry"
	"github.com/pthm-cable/tubeglow/pulse"
)

// Tube is one diagonal strip and the pulse traveling along it.
type Tube struct {
	Index     int
	YAnchor   float64          // Fixed for the tube's lifetime
	Segment   geometry.Segment // Recomputed on every reflow
	Pulse     pulse.Pulse
	Thickness float64
}

// Config holds the field layout.
type Config struct {
	Spacing      float64 // Vertical distance between anchors
	MarginFactor float64 // Coverage above and below the viewport, as a fraction of the diagonal
	Thickness    float64
	Layout       geometry.Layout
}

// DefaultConfig is the stock layout: 200px spacing, 30% diagonal margin.
var DefaultConfig = Config{
	Spacing:      200,
	MarginFactor: 0.3,
	Thickness:    2,
	Layout:       geometry.DefaultLayout,
}

// Margin returns how far the field extends past the top and bottom of vp.
func (c Config) Margin(vp geometry.Viewport) float64 {
	return vp.Diagonal() * c.MarginFactor
}

// Count returns how many tubes cover vp.
func (c Config) Count(vp geometry.Viewport) int {
	if vp.Degenerate() || c.Spacing <= 0 {
		return 0
	}
	extent := float64(vp.Height) + 2*c.Margin(vp)
	return int(math.Ceil(extent / c.Spacing))
}

// Field is the ordered tube set. It exclusively owns its tubes.
type Field struct {
	cfg      Config
	sim      *pulse.Simulator
	viewport geometry.Viewport
	tubes    []Tube
}

// Generate creates the tubes covering vp, ordered by ascending anchor.
func Generate(vp geometry.Viewport, cfg Config, sim *pulse.Simulator) *Field {
	f := &Field{cfg: cfg, sim: sim}
	f.Regenerate(vp)
	return f
}

// Regenerate replaces the tube set with a fresh one for vp.
// Pulses restart; use Reflow to follow a resize.
func (f *Field) Regenerate(vp geometry.Viewport) {
	n := f.cfg.Count(vp)
	top := -f.cfg.Margin(vp)

	f.viewport = vp
	f.tubes = make([]Tube, n)
	for i := range f.tubes {
		y := top + float64(i)*f.cfg.Spacing
		f.tubes[i] = Tube{
			Index:     i,
			YAnchor:   y,
			Segment:   f.cfg.Layout.Span(vp, y),
			Pulse:     f.sim.Spawn(i),
			Thickness: f.cfg.Thickness,
		}
	}
}

// Reflow recomputes every tube's geometry for vp. Anchors, pulses and the
// tube count are left alone.
func (f *Field) Reflow(vp geometry.Viewport) {
	f.viewport = vp
	for i := range f.tubes {
		t := &f.tubes[i]
		t.Segment = f.cfg.Layout.Span(vp, t.YAnchor)
	}
}

// Step advances every pulse by one frame in anchor order, handing each
// updated tube to draw right after its advance. draw may be nil.
func (f *Field) Step(draw func(Tube)) {
	for i := range f.tubes {
		t := &f.tubes[i]
		f.sim.Advance(&t.Pulse, t.Segment.Length, t.Index)
		if draw != nil {
			draw(*t)
		}
	}
}

// Len returns the number of tubes.
func (f *Field) Len() int {
	return len(f.tubes)
}

// Tubes returns a copy of the tube set.
func (f *Field) Tubes() []Tube {
	out := make([]Tube, len(f.tubes))
	copy(out, f.tubes)
	return out
}

// Viewport returns the viewport the geometry was last computed for.
func (f *Field) Viewport() geometry.Viewport {
	return f.viewport
}

// Config returns the layout in use.
func (f *Field) Config() Config {
	return f.cfg
}
