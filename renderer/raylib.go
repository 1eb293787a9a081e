package renderer

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"
)

// gradientSteps is how many solid pieces approximate one gradient stroke.
const gradientSteps = 24

// blurLayers is how many widening translucent strokes fake one shadow blur.
const blurLayers = 4

// RaylibSurface draws into the current raylib framebuffer.
// Calls must happen between rl.BeginDrawing and rl.EndDrawing on the window thread.
type RaylibSurface struct {
	width, height int
}

// NewRaylibSurface creates a surface for a window of the given size.
func NewRaylibSurface(width, height int) *RaylibSurface {
	return &RaylibSurface{width: width, height: height}
}

// Size returns the tracked framebuffer size.
func (s *RaylibSurface) Size() (int, int) {
	return s.width, s.height
}

// Resize records the new framebuffer size; raylib resizes the framebuffer with the window.
func (s *RaylibSurface) Resize(w, h int) {
	s.width, s.height = w, h
}

// Clear fills the framebuffer.
func (s *RaylibSurface) Clear(c color.NRGBA) {
	rl.ClearBackground(toRL(c))
}

// StrokeLine draws a thick line with optional round caps and blurred shadow.
func (s *RaylibSurface) StrokeLine(from, to r2.Vec, st Stroke) {
	a, b := vec(from), vec(to)
	if st.ShadowBlur > 0 {
		drawBlur(a, b, st)
	}
	drawLine(a, b, float32(st.Width), st.Round, toRL(st.Color))
}

// StrokeGradient approximates a linear gradient with short solid pieces,
// each coloured at its midpoint.
func (s *RaylibSurface) StrokeGradient(from, to r2.Vec, stops []ColorStop, st Stroke) {
	if st.ShadowBlur > 0 {
		drawBlur(vec(from), vec(to), st)
	}

	d := r2.Sub(to, from)
	for i := 0; i < gradientSteps; i++ {
		t0 := float64(i) / gradientSteps
		t1 := float64(i+1) / gradientSteps
		c := toRL(GradientAt(stops, (t0+t1)/2))
		if c.A == 0 {
			continue
		}
		a := vec(r2.Add(from, r2.Scale(t0, d)))
		b := vec(r2.Add(from, r2.Scale(t1, d)))
		// Only the outer ends get caps; inner joins would double the alpha.
		round := st.Round && (i == 0 || i == gradientSteps-1)
		drawLine(a, b, float32(st.Width), round, c)
	}
}

// drawBlur fakes a gaussian shadow with widening low-alpha strokes,
// widest and faintest first.
func drawBlur(a, b rl.Vector2, st Stroke) {
	for i := blurLayers; i >= 1; i-- {
		t := float32(i) / blurLayers
		width := float32(st.Width) + float32(st.ShadowBlur)*t*2
		c := toRL(st.ShadowColor)
		c.A = uint8(float32(c.A) * (1 - t) / 2)
		if c.A == 0 {
			continue
		}
		drawLine(a, b, width, true, c)
	}
}

func drawLine(a, b rl.Vector2, width float32, round bool, c rl.Color) {
	rl.DrawLineEx(a, b, width, c)
	if round {
		rl.DrawCircleV(a, width/2, c)
		rl.DrawCircleV(b, width/2, c)
	}
}

func vec(v r2.Vec) rl.Vector2 {
	return rl.Vector2{X: float32(v.X), Y: float32(v.Y)}
}

// toRL converts a straight-alpha colour; raylib blends with straight alpha.
func toRL(c color.NRGBA) rl.Color {
	return rl.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}
