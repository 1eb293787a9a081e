// Tube layout preview tool - live background with sliders for the layout.
//
// Usage: go run ./cmd/tubepreview
package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	gui "github.com/gen2brain/raylib-go/raygui"

	"github.com/pthm-cable/tubeglow/background"
	"github.com/pthm-cable/tubeglow/config"
	"github.com/pthm-cable/tubeglow/field"
	"github.com/pthm-cable/tubeglow/host"
	"github.com/pthm-cable/tubeglow/renderer"
	"github.com/pthm-cable/tubeglow/ui"
)

const (
	windowWidth  = 1280
	windowHeight = 720
	panelWidth   = 300
)

// slider describes one layout control.
type slider struct {
	label  string
	format string
	lo, hi float32
	get    func(*field.Config) float64
	set    func(*field.Config, float64)
}

var sliders = []slider{
	{"Spacing (px between anchors)", "%.0f", 40, 400,
		func(c *field.Config) float64 { return c.Spacing },
		func(c *field.Config, v float64) { c.Spacing = v }},
	{"Margin (fraction of diagonal)", "%.2f", 0, 1,
		func(c *field.Config) float64 { return c.MarginFactor },
		func(c *field.Config, v float64) { c.MarginFactor = v }},
	{"Thickness (px)", "%.1f", 0.5, 8,
		func(c *field.Config) float64 { return c.Thickness },
		func(c *field.Config, v float64) { c.Thickness = v }},
	{"Angle (degrees)", "%.0f", 90, 180,
		func(c *field.Config) float64 { return c.Layout.AngleDegrees },
		func(c *field.Config, v float64) { c.Layout.AngleDegrees = v }},
	{"Extension (fraction of diagonal)", "%.2f", config.MinExtension, 1,
		func(c *field.Config) float64 { return c.Layout.Extension },
		func(c *field.Config, v float64) { c.Layout.Extension = v }},
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.Default()

	win := host.OpenWindow(host.WindowOptions{
		Width:     windowWidth,
		Height:    windowHeight,
		Title:     "Tube Layout Preview",
		TargetFPS: 60,
		Resizable: true,
	}, logger)
	defer win.Close()

	vp := win.Loop().Viewport()
	seed := time.Now().UnixNano()
	bg, err := background.New(renderer.NewRaylibSurface(vp.Width, vp.Height), cfg, rand.New(rand.NewSource(seed)))
	if err != nil {
		slog.Error("failed to create background", "error", err)
		os.Exit(1)
	}
	defer bg.Stop()

	ctx := context.Background()
	if err := bg.Start(ctx, win.Loop(), win.Loop()); err != nil {
		slog.Error("failed to start background", "error", err)
		os.Exit(1)
	}

	layout := background.FieldConfig(cfg)
	panel := ui.NewRenderer()
	win.SetOverlay(func() {
		if drawPanel(panel, &layout, bg) {
			bg.SetLayout(layout)
		}
	})

	if err := win.Run(ctx); err != nil {
		slog.Error("preview stopped", "error", err)
	}
}

// drawPanel draws the controls and reports whether the layout changed.
func drawPanel(panel *ui.Renderer, layout *field.Config, bg *background.Renderer) bool {
	panelX := float32(10)
	panelY := float32(10)

	panel.DrawPanel(0, 0, panelWidth+20, int32(len(sliders))*53+120)
	panelY = float32(panel.DrawSectionHeader(int32(panelX), int32(panelY), "Tube Layout")) + 10

	changed := false
	for _, s := range sliders {
		rl.DrawText(s.label, int32(panelX), int32(panelY), 14, rl.LightGray)
		panelY += 18
		cur := float32(s.get(layout))
		next := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: panelWidth - 80, Height: 20},
			"", "",
			cur, s.lo, s.hi,
		)
		rl.DrawText(fmt.Sprintf(s.format, cur), int32(panelX+panelWidth-70), int32(panelY+2), 16, rl.RayWhite)
		if next != cur {
			s.set(layout, float64(next))
			changed = true
		}
		panelY += 35
	}

	rl.DrawText(fmt.Sprintf("Tubes: %d  Frames: %d  FPS: %d", len(bg.Tubes()), bg.Frames(), rl.GetFPS()),
		int32(panelX), int32(panelY), 16, rl.RayWhite)
	panelY += 25

	if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Regenerate") {
		changed = true
	}
	return changed
}
