package renderer

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/tfriedel6/canvas"
	"github.com/tfriedel6/canvas/backend/softwarebackend"
	"gonum.org/v1/gonum/spatial/r2"
)

// SoftwareSurface renders offscreen into an RGBA image using the canvas
// software backend. It needs no window or GPU, so headless runs and
// snapshot tests use it.
type SoftwareSurface struct {
	backend *softwarebackend.SoftwareBackend
	cv      *canvas.Canvas
}

// NewSoftwareSurface creates an offscreen surface of w x h pixels.
func NewSoftwareSurface(w, h int) *SoftwareSurface {
	backend := softwarebackend.New(max(w, 1), max(h, 1))
	return &SoftwareSurface{backend: backend, cv: canvas.New(backend)}
}

// Size returns the image size.
func (s *SoftwareSurface) Size() (int, int) {
	return s.backend.Size()
}

// Resize reallocates the backing image. The content is lost.
func (s *SoftwareSurface) Resize(w, h int) {
	cw, ch := s.backend.Size()
	w, h = max(w, 1), max(h, 1)
	if cw == w && ch == h {
		return
	}
	s.backend.SetSize(w, h)
}

// Clear fills the image with c.
func (s *SoftwareSurface) Clear(c color.NRGBA) {
	w, h := s.backend.Size()
	s.cv.SetFillStyle(c)
	s.cv.FillRect(0, 0, float64(w), float64(h))
}

// StrokeLine strokes a solid line.
func (s *SoftwareSurface) StrokeLine(from, to r2.Vec, st Stroke) {
	s.cv.SetStrokeStyle(st.Color)
	s.stroke(from, to, st)
}

// StrokeGradient strokes a line with a linear gradient running from `from` to `to`.
func (s *SoftwareSurface) StrokeGradient(from, to r2.Vec, stops []ColorStop, st Stroke) {
	g := s.cv.CreateLinearGradient(from.X, from.Y, to.X, to.Y)
	for _, stop := range stops {
		g.AddColorStop(stop.Offset, stop.Color)
	}
	s.cv.SetStrokeStyle(g)
	s.stroke(from, to, st)
}

func (s *SoftwareSurface) stroke(from, to r2.Vec, st Stroke) {
	s.cv.Save()
	defer s.cv.Restore()

	s.cv.SetLineWidth(st.Width)
	if st.Round {
		s.cv.SetLineCap(canvas.Round)
	} else {
		s.cv.SetLineCap(canvas.Butt)
	}
	if st.ShadowBlur > 0 {
		s.cv.SetShadowColor(st.ShadowColor)
		s.cv.SetShadowBlur(st.ShadowBlur)
	}

	s.cv.BeginPath()
	s.cv.MoveTo(from.X, from.Y)
	s.cv.LineTo(to.X, to.Y)
	s.cv.Stroke()
}

// Image returns the backing image. It is reallocated by Resize.
func (s *SoftwareSurface) Image() *image.RGBA {
	return s.backend.Image
}

// SavePNG writes the current image to path.
func (s *SoftwareSurface) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := png.Encode(f, s.backend.Image); err != nil {
		f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close png: %w", err)
	}
	return nil
}
