// Package terminal renders the tube field in a terminal with tcell.
//
// Every cell stands for a block of virtual pixels, so the renderer keeps
// working in pixel units. Strokes are rasterized one cell wide and
// alpha-blended into the cell background colours.
package terminal

import (
	"image/color"
	"math"

	"github.com/gdamore/tcell/v2"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/tubeglow/renderer"
)

// Default virtual pixels per cell. Cells are about twice as tall as wide.
const (
	DefaultCellWidth  = 8
	DefaultCellHeight = 16
)

// rgb is a cell colour with float channels in 0..255.
type rgb struct{ r, g, b float64 }

// Surface is a renderer.Surface drawing into a tcell screen.
// Nothing reaches the screen until Present.
type Surface struct {
	screen       tcell.Screen
	cellW, cellH int
	cols, rows   int
	cells        []rgb
}

// NewSurface creates a surface for screen with cellW x cellH virtual pixels per cell.
func NewSurface(screen tcell.Screen, cellW, cellH int) *Surface {
	s := &Surface{
		screen: screen,
		cellW:  max(cellW, 1),
		cellH:  max(cellH, 1),
	}
	cols, rows := screen.Size()
	s.Resize(cols*s.cellW, rows*s.cellH)
	return s
}

// CellSize returns the virtual pixels per cell.
func (s *Surface) CellSize() (w, h int) {
	return s.cellW, s.cellH
}

// Size returns the size in virtual pixels.
func (s *Surface) Size() (int, int) {
	return s.cols * s.cellW, s.rows * s.cellH
}

// Resize sets the grid to cover w x h virtual pixels.
func (s *Surface) Resize(w, h int) {
	cols, rows := max(w, 0)/s.cellW, max(h, 0)/s.cellH
	if cols == s.cols && rows == s.rows {
		return
	}
	s.cols, s.rows = cols, rows
	s.cells = make([]rgb, cols*rows)
}

// Clear fills every cell with c blended over black.
func (s *Surface) Clear(c color.NRGBA) {
	fill := blend(rgb{}, c, 1)
	for i := range s.cells {
		s.cells[i] = fill
	}
}

// StrokeLine blends c into every cell the line crosses. A shadow is blended
// first at half strength, since a blur wider than a cell has no shape here.
func (s *Surface) StrokeLine(from, to r2.Vec, st renderer.Stroke) {
	s.walk(from, to, func(i int, _ float64) {
		if st.ShadowBlur > 0 {
			s.cells[i] = blend(s.cells[i], st.ShadowColor, 0.5)
		}
		s.cells[i] = blend(s.cells[i], st.Color, 1)
	})
}

// StrokeGradient blends the gradient colour at each crossed cell.
func (s *Surface) StrokeGradient(from, to r2.Vec, stops []renderer.ColorStop, st renderer.Stroke) {
	s.walk(from, to, func(i int, t float64) {
		if st.ShadowBlur > 0 {
			s.cells[i] = blend(s.cells[i], st.ShadowColor, 0.5)
		}
		s.cells[i] = blend(s.cells[i], renderer.GradientAt(stops, t), 1)
	})
}

// walk visits the on-grid cells of the line from..to once each, passing the
// cell index and the position along the line in 0..1.
func (s *Surface) walk(from, to r2.Vec, visit func(i int, t float64)) {
	if s.cols == 0 || s.rows == 0 {
		return
	}
	x0 := int(math.Floor(from.X / float64(s.cellW)))
	y0 := int(math.Floor(from.Y / float64(s.cellH)))
	x1 := int(math.Floor(to.X / float64(s.cellW)))
	y1 := int(math.Floor(to.Y / float64(s.cellH)))

	// Bresenham over cells
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	steps := max(dx, -dy)
	e := dx + dy
	for n := 0; ; n++ {
		if x0 >= 0 && x0 < s.cols && y0 >= 0 && y0 < s.rows {
			t := 0.0
			if steps > 0 {
				t = float64(n) / float64(steps)
			}
			visit(y0*s.cols+x0, t)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// Present copies the cells to the screen and shows it.
func (s *Surface) Present() {
	for y := 0; y < s.rows; y++ {
		for x := 0; x < s.cols; x++ {
			c := s.cells[y*s.cols+x]
			bg := tcell.NewRGBColor(int32(c.r+0.5), int32(c.g+0.5), int32(c.b+0.5))
			s.screen.SetContent(x, y, ' ', nil, tcell.StyleDefault.Background(bg))
		}
	}
	s.screen.Show()
}

// At returns the colour of a cell, for tests and debugging.
func (s *Surface) At(col, row int) color.NRGBA {
	if col < 0 || col >= s.cols || row < 0 || row >= s.rows {
		return color.NRGBA{}
	}
	c := s.cells[row*s.cols+col]
	return color.NRGBA{R: uint8(c.r + 0.5), G: uint8(c.g + 0.5), B: uint8(c.b + 0.5), A: 0xff}
}

// blend composites c at strength f over dst.
func blend(dst rgb, c color.NRGBA, f float64) rgb {
	a := float64(c.A) / 255 * f
	return rgb{
		r: dst.r + (float64(c.R)-dst.r)*a,
		g: dst.g + (float64(c.G)-dst.g)*a,
		b: dst.b + (float64(c.B)-dst.b)*a,
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
