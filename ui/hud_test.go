package ui

import (
	"strings"
	"testing"
)

func TestHUDDataLines(t *testing.T) {
	d := HUDData{Tubes: 6, Lit: 2, Frame: 120, FPS: 60, Width: 800, Height: 600, Seed: 42, Running: true}

	lines := d.Lines()
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "Tubes: 6") || !strings.Contains(lines[0], "800x600") {
		t.Errorf("unexpected first line %q", lines[0])
	}
	if !strings.Contains(lines[1], "Seed: 42") {
		t.Errorf("unexpected second line %q", lines[1])
	}
	if lines[2] != "Running" {
		t.Errorf("expected Running status, got %q", lines[2])
	}

	d.Running = false
	if got := d.Lines()[2]; got != "STOPPED" {
		t.Errorf("expected STOPPED status, got %q", got)
	}
}

func TestPctColor(t *testing.T) {
	r := NewRenderer()

	if r.PctColor(10) != r.Theme.BarFill {
		t.Error("expected normal fill for a small share")
	}
	if r.PctColor(60) != r.Theme.WarnColor {
		t.Error("expected warn colour above 50%")
	}
	if r.PctColor(90) != r.Theme.HotColor {
		t.Error("expected hot colour above 80%")
	}
}
