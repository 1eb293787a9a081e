// Package geometry computes full-bleed diagonal segments through a viewport.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// epsilon is the shortest segment worth drawing.
const epsilon = 1e-9

// Viewport is the pixel size of the drawing area.
type Viewport struct {
	Width, Height int
}

// Diagonal returns the length of the viewport diagonal.
func (v Viewport) Diagonal() float64 {
	return math.Hypot(float64(v.Width), float64(v.Height))
}

// Degenerate reports whether the viewport has no drawable area.
func (v Viewport) Degenerate() bool {
	return v.Width <= 0 || v.Height <= 0
}

// Center returns the middle of the viewport.
func (v Viewport) Center() r2.Vec {
	return r2.Vec{X: float64(v.Width) / 2, Y: float64(v.Height) / 2}
}

// Segment is a straight line with its length kept alongside the endpoints.
type Segment struct {
	Start, End r2.Vec
	Length     float64
}

// NewSegment builds a segment and its length in one step.
func NewSegment(start, end r2.Vec) Segment {
	return Segment{Start: start, End: end, Length: r2.Norm(r2.Sub(end, start))}
}

// Degenerate reports whether the segment is too short (or too broken) to draw.
func (s Segment) Degenerate() bool {
	return !(s.Length > epsilon) || math.IsInf(s.Length, 0)
}

// PointAt returns the point at the given distance from Start.
func (s Segment) PointAt(distance float64) r2.Vec {
	if s.Degenerate() {
		return s.Start
	}
	t := distance / s.Length
	return r2.Add(s.Start, r2.Scale(t, r2.Sub(s.End, s.Start)))
}

// Sub returns the part of the segment between two distances from Start,
// clipped to [0, Length]. ok is false when nothing remains.
func (s Segment) Sub(from, to float64) (sub Segment, ok bool) {
	from = math.Max(from, 0)
	to = math.Min(to, s.Length)
	if s.Degenerate() || from >= to {
		return Segment{}, false
	}
	return Segment{Start: s.PointAt(from), End: s.PointAt(to), Length: to - from}, true
}

// Offset returns the segment translated by d.
func (s Segment) Offset(d r2.Vec) Segment {
	return Segment{Start: r2.Add(s.Start, d), End: r2.Add(s.End, d), Length: s.Length}
}

// Layout describes how a tube is laid across the viewport.
type Layout struct {
	AngleDegrees float64 // Angle of every segment
	Extension    float64 // Extra length on each end, as a fraction of the diagonal
}

// DefaultLayout is the 135° layout with half a diagonal of overshoot per end.
var DefaultLayout = Layout{AngleDegrees: 135, Extension: 0.5}

// Direction returns the unit vector along the layout angle.
func (l Layout) Direction() r2.Vec {
	rad := l.AngleDegrees * math.Pi / 180
	return r2.Vec{X: math.Cos(rad), Y: math.Sin(rad)}
}

// SpanLength returns the full length of a segment laid through vp.
func (l Layout) SpanLength(vp Viewport) float64 {
	d := vp.Diagonal()
	return d + 2*l.Extension*d
}

// Span lays a segment through vp whose centerline sits at yAnchor.
// The segment is long enough to cover every corner of the viewport.
// A degenerate viewport yields a zero-length segment.
func (l Layout) Span(vp Viewport, yAnchor float64) Segment {
	if vp.Degenerate() {
		c := r2.Vec{X: float64(max(vp.Width, 0)) / 2, Y: yAnchor}
		return Segment{Start: c, End: c}
	}

	center := r2.Vec{X: float64(vp.Width) / 2, Y: yAnchor}
	half := r2.Scale(l.SpanLength(vp)/2, l.Direction())
	return NewSegment(r2.Sub(center, half), r2.Add(center, half))
}
