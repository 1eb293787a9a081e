package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}

	if cfg.Tubes.Spacing != 200 {
		t.Errorf("expected spacing 200, got %v", cfg.Tubes.Spacing)
	}
	if cfg.Tubes.AngleDegrees != 135 {
		t.Errorf("expected angle 135, got %v", cfg.Tubes.AngleDegrees)
	}
	if cfg.Tubes.MarginFactor != 0.3 {
		t.Errorf("expected margin factor 0.3, got %v", cfg.Tubes.MarginFactor)
	}
	if got := cfg.Colors.Background.String(); got != "#1a1a1a" {
		t.Errorf("expected background #1a1a1a, got %s", got)
	}
	if cfg.Derived.Diagonal <= 0 {
		t.Error("expected derived diagonal to be computed")
	}
	if cfg.Derived.LogInterval != 600 {
		t.Errorf("expected log interval 600, got %d", cfg.Derived.LogInterval)
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "override.yaml")
	data := "tubes:\n  spacing: 120\ncolors:\n  background: \"#000000\"\ntelemetry:\n  log_interval: 0\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load overlay: %v", err)
	}

	if cfg.Tubes.Spacing != 120 {
		t.Errorf("expected overridden spacing 120, got %v", cfg.Tubes.Spacing)
	}
	// Untouched fields keep their defaults
	if cfg.Tubes.Thickness != 2 {
		t.Errorf("expected default thickness 2, got %v", cfg.Tubes.Thickness)
	}
	if cfg.Colors.Background.A != 0xff || cfg.Colors.Background.R != 0 {
		t.Errorf("expected opaque black background, got %+v", cfg.Colors.Background)
	}
	if cfg.Derived.LogInterval != cfg.Telemetry.PerfWindow {
		t.Errorf("expected log interval to fall back to perf window, got %d", cfg.Derived.LogInterval)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"zero spacing", "tubes:\n  spacing: 0\n", "tubes.spacing"},
		{"zero reset", "pulse:\n  reset_min: 0\n", "reset_min"},
		{"inverted speed", "pulse:\n  speed_min: 4\n  speed_max: 2\n", "speed range"},
		{"short extension", "tubes:\n  extension: 0.3\n", "tubes.extension"},
		{"bad color", "colors:\n  border: \"green\"\n", "color"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#58bc824d")
	if err != nil {
		t.Fatal(err)
	}
	if c.R != 0x58 || c.G != 0xbc || c.B != 0x82 || c.A != 0x4d {
		t.Errorf("unexpected color %+v", c)
	}

	c, err = ParseColor("c8ff96")
	if err != nil {
		t.Fatal(err)
	}
	if c.A != 0xff {
		t.Errorf("expected implicit full alpha, got %d", c.A)
	}

	if _, err := ParseColor("#abc"); err == nil {
		t.Error("expected short hex to be rejected")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := Default()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load written config: %v", err)
	}
	if loaded.Colors.Border != cfg.Colors.Border {
		t.Errorf("border color changed: %v -> %v", cfg.Colors.Border, loaded.Colors.Border)
	}
	if loaded.Pulse != cfg.Pulse {
		t.Errorf("pulse config changed: %+v -> %+v", cfg.Pulse, loaded.Pulse)
	}
}
