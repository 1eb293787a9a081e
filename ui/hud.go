package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/tubeglow/telemetry"
)

// HUDData holds all the data needed to render the HUD.
type HUDData struct {
	Title   string
	Tubes   int
	Lit     int // Tubes whose pulse is on screen
	Frame   uint64
	FPS     int32
	Width   int
	Height  int
	Seed    int64
	Running bool
}

// Lines returns the HUD text, one entry per line.
func (d HUDData) Lines() []string {
	status := "Running"
	if !d.Running {
		status = "STOPPED"
	}
	return []string{
		fmt.Sprintf("Tubes: %d | Lit: %d | %dx%d", d.Tubes, d.Lit, d.Width, d.Height),
		fmt.Sprintf("Frame: %d | FPS: %d | Seed: %d", d.Frame, d.FPS, d.Seed),
		status,
	}
}

// HUD renders the heads-up display and the perf panel.
type HUD struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewHUD creates a HUD anchored at x, y.
func NewHUD(x, y, width int32) *HUD {
	return &HUD{renderer: NewRenderer(), x: x, y: y, width: width}
}

// Renderer returns the styling renderer, for panels drawn next to the HUD.
func (h *HUD) Renderer() *Renderer {
	return h.renderer
}

// Draw renders the HUD and, when stats holds samples, the frame timing breakdown.
func (h *HUD) Draw(data HUDData, stats telemetry.PerfStats) {
	r := h.renderer
	lines := data.Lines()
	height := r.Theme.Padding*2 + r.Theme.LineHeight + 4 + int32(len(lines))*r.Theme.LineHeight
	if stats.AvgFrameDuration > 0 {
		height += r.Theme.LineHeight*3 + int32(len(stats.PhasePct))*(r.Theme.LineHeight+2) + 8
	}
	r.DrawPanel(h.x, h.y, h.width, height)

	x := h.x + r.Theme.Padding
	y := r.DrawSectionHeader(x, h.y+r.Theme.Padding, data.Title)
	for i, line := range lines {
		c := r.Theme.ValueColor
		if i == len(lines)-1 && !data.Running {
			c = r.Theme.WarnColor
		}
		rl.DrawText(line, x, y, r.Theme.FontSize, c)
		y += r.Theme.LineHeight
	}

	if stats.AvgFrameDuration <= 0 {
		return
	}
	y += 8
	y = r.DrawLabelValue(x, y, "avg", stats.AvgFrameDuration.Round(time.Microsecond).String())
	y = r.DrawLabelValue(x, y, "p95", stats.P95FrameDuration.Round(time.Microsecond).String())
	y = r.DrawLabelValue(x, y, "max", stats.MaxFrameDuration.Round(time.Microsecond).String())
	for _, phase := range []string{telemetry.PhaseClear, telemetry.PhaseTubes} {
		if pct, ok := stats.PhasePct[phase]; ok {
			y = r.DrawBar(x, y, phase, pct/100, h.width-2*r.Theme.Padding)
		}
	}
}
