// Package renderer draws tubes and their pulses onto a Surface.
//
// The painter only issues stroke calls; each Surface backend (raylib window,
// software canvas, terminal) decides how strokes, gradients and blur map to
// its primitives.
package renderer

import (
	"image/color"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/tubeglow/config"
	"github.com/pthm-cable/tubeglow/field"
)

// shadowOffset is the drop-shadow displacement of the tube body.
var shadowOffset = r2.Vec{X: 1, Y: 1}

// Palette holds the colours of one tube.
type Palette struct {
	Shadow     color.NRGBA
	Border     color.NRGBA
	Core       color.NRGBA
	GlowShadow color.NRGBA
	PulseCore  color.NRGBA
	Gradient   [4]color.NRGBA // Stops at 0, 0.3, 0.7 and 1 from pulse tail to head
}

// Painter draws tubes with the three-layer body and the pulse glow.
type Painter struct {
	Palette         Palette
	GlowWidthFactor float64
	CoreWidthFactor float64
	GlowBlur        float64
}

// NewPainter creates a painter from the glow and colour settings.
func NewPainter(cfg *config.Config) *Painter {
	c := cfg.Colors
	p := &Painter{
		Palette: Palette{
			Shadow:     c.Shadow.NRGBA(),
			Border:     c.Border.NRGBA(),
			Core:       c.Core.NRGBA(),
			GlowShadow: c.GlowShadow.NRGBA(),
			PulseCore:  c.PulseCore.NRGBA(),
		},
		GlowWidthFactor: cfg.Glow.WidthFactor,
		CoreWidthFactor: cfg.Glow.CoreWidthFactor,
		GlowBlur:        cfg.Glow.Blur,
	}
	for i := range p.Palette.Gradient {
		p.Palette.Gradient[i] = c.Gradient[i].NRGBA()
	}
	return p
}

// Draw paints one tube. Degenerate tubes are skipped.
func (p *Painter) Draw(s Surface, t field.Tube) {
	seg := t.Segment
	if seg.Degenerate() {
		return
	}

	// Body: drop shadow, outer border, inner core
	shadow := seg.Offset(shadowOffset)
	s.StrokeLine(shadow.Start, shadow.End, Stroke{Color: p.Palette.Shadow, Width: t.Thickness + 2})
	s.StrokeLine(seg.Start, seg.End, Stroke{Color: p.Palette.Border, Width: t.Thickness + 1})
	s.StrokeLine(seg.Start, seg.End, Stroke{Color: p.Palette.Core, Width: t.Thickness})

	from, to, ok := t.Pulse.Span(seg.Length)
	if !ok {
		return
	}
	lit, ok := seg.Sub(from, to)
	if !ok {
		return
	}

	s.StrokeGradient(lit.Start, lit.End, p.gradient(t.Pulse.Intensity), Stroke{
		Width:       t.Thickness * p.GlowWidthFactor,
		Round:       true,
		ShadowColor: p.Palette.GlowShadow,
		ShadowBlur:  p.GlowBlur,
	})
	s.StrokeLine(lit.Start, lit.End, Stroke{
		Color: scaleAlpha(p.Palette.PulseCore, t.Pulse.Intensity),
		Width: t.Thickness * p.CoreWidthFactor,
		Round: true,
	})
}

// gradient returns the glow stops for a pulse of the given intensity.
func (p *Painter) gradient(intensity float64) []ColorStop {
	g := p.Palette.Gradient
	return []ColorStop{
		{Offset: 0, Color: scaleAlpha(g[0], intensity)},
		{Offset: 0.3, Color: scaleAlpha(g[1], intensity)},
		{Offset: 0.7, Color: scaleAlpha(g[2], intensity)},
		{Offset: 1, Color: scaleAlpha(g[3], intensity)},
	}
}
