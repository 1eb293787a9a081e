package renderer

import (
	"image/color"
	"reflect"

	"gonum.org/v1/gonum/spatial/r2"
)

// Surface is a 2D drawing target sized to the viewport.
// Implementations are not safe for concurrent use.
type Surface interface {
	// Size returns the surface size in pixels.
	Size() (w, h int)
	// Resize changes the surface to w x h pixels.
	Resize(w, h int)
	// Clear fills the whole surface with c.
	Clear(c color.NRGBA)
	// StrokeLine strokes a straight line in a solid colour.
	StrokeLine(from, to r2.Vec, s Stroke)
	// StrokeGradient strokes a straight line whose colour follows stops
	// from `from` (offset 0) to `to` (offset 1). s.Color is ignored.
	StrokeGradient(from, to r2.Vec, stops []ColorStop, s Stroke)
}

// Missing reports whether s is nil, including a nil pointer stored in the
// interface.
func Missing(s Surface) bool {
	if s == nil {
		return true
	}
	v := reflect.ValueOf(s)
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

// Stroke describes how a line is painted.
type Stroke struct {
	Color color.NRGBA
	Width float64
	Round bool // Round caps instead of butt caps

	// Shadow is drawn under the stroke, blurred by ShadowBlur pixels.
	// A zero ShadowBlur disables it.
	ShadowColor color.NRGBA
	ShadowBlur  float64
}

// ColorStop is one stop of a linear gradient.
type ColorStop struct {
	Offset float64 // 0..1 along the gradient
	Color  color.NRGBA
}

// GradientAt interpolates stops at offset t. Stops must be sorted by offset.
func GradientAt(stops []ColorStop, t float64) color.NRGBA {
	if len(stops) == 0 {
		return color.NRGBA{}
	}
	if t <= stops[0].Offset {
		return stops[0].Color
	}
	for i := 1; i < len(stops); i++ {
		if t <= stops[i].Offset {
			a, b := stops[i-1], stops[i]
			span := b.Offset - a.Offset
			if span <= 0 {
				return b.Color
			}
			return lerpColor(a.Color, b.Color, (t-a.Offset)/span)
		}
	}
	return stops[len(stops)-1].Color
}

func lerpColor(a, b color.NRGBA, t float64) color.NRGBA {
	lerp := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*t + 0.5)
	}
	return color.NRGBA{R: lerp(a.R, b.R), G: lerp(a.G, b.G), B: lerp(a.B, b.B), A: lerp(a.A, b.A)}
}

// scaleAlpha multiplies the alpha of c by f, clamped to [0, 1].
func scaleAlpha(c color.NRGBA, f float64) color.NRGBA {
	f = max(0, min(1, f))
	c.A = uint8(float64(c.A)*f + 0.5)
	return c
}
