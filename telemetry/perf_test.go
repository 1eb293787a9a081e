package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	// Simulate a few frames
	for i := 0; i < 5; i++ {
		pc.StartFrame()
		pc.StartPhase(PhaseClear)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(PhaseTubes)
		time.Sleep(200 * time.Microsecond)
		pc.EndFrame()
	}

	stats := pc.Stats()

	if stats.AvgFrameDuration <= 0 {
		t.Error("expected positive average frame duration")
	}
	if _, ok := stats.PhaseAvg[PhaseClear]; !ok {
		t.Error("expected clear phase to be tracked")
	}
	if _, ok := stats.PhaseAvg[PhaseTubes]; !ok {
		t.Error("expected tubes phase to be tracked")
	}
	if stats.MinFrameDuration > stats.P95FrameDuration || stats.P95FrameDuration > stats.MaxFrameDuration {
		t.Errorf("expected min <= p95 <= max, got %v / %v / %v",
			stats.MinFrameDuration, stats.P95FrameDuration, stats.MaxFrameDuration)
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5) // Small window

	for i := 0; i < 10; i++ {
		pc.StartFrame()
		pc.StartPhase(PhaseTubes)
		pc.EndFrame()
	}

	if pc.Samples() != 5 {
		t.Errorf("expected window capped at 5 samples, got %d", pc.Samples())
	}
	if pc.Stats().FPS <= 0 {
		t.Error("expected positive FPS after several frames")
	}
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)

	// Simulate with uneven phase durations
	for i := 0; i < 5; i++ {
		pc.StartFrame()
		pc.StartPhase("fast")
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase("slow")
		time.Sleep(100 * time.Microsecond)
		pc.EndFrame()
	}

	stats := pc.Stats()

	fastPct := stats.PhasePct["fast"]
	slowPct := stats.PhasePct["slow"]

	// Slow phase should take more % than fast
	if slowPct <= fastPct {
		t.Errorf("expected slow phase (%v%%) > fast phase (%v%%)", slowPct, fastPct)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	pc := NewPerfCollector(10)

	stats := pc.Stats()

	// Empty collector should return zero values without panicking
	if stats.AvgFrameDuration != 0 {
		t.Error("expected zero avg frame duration for empty collector")
	}
	if stats.PhaseAvg == nil {
		t.Error("expected non-nil PhaseAvg map")
	}
	if stats.PhasePct == nil {
		t.Error("expected non-nil PhasePct map")
	}
}

func TestPerfCollector_SingleSampleHasNoSpread(t *testing.T) {
	pc := NewPerfCollector(10)
	pc.StartFrame()
	pc.EndFrame()

	stats := pc.Stats()
	if stats.StdDevFrameDuration != 0 {
		t.Errorf("expected zero stddev for one sample, got %v", stats.StdDevFrameDuration)
	}
}

func TestPerfCollector_FrameRate(t *testing.T) {
	pc := NewPerfCollector(10)

	// First frame establishes baseline
	pc.StartFrame()
	pc.EndFrame()
	time.Sleep(16 * time.Millisecond) // ~60fps frame time
	pc.StartFrame()
	pc.EndFrame()

	stats := pc.Stats()

	if stats.FrameInterval < 15*time.Millisecond {
		t.Errorf("expected frame interval >= 15ms, got %v", stats.FrameInterval)
	}

	// With 16ms frames, expect ~60 FPS (allow range 20-80)
	if stats.FPS < 20 || stats.FPS > 80 {
		t.Errorf("expected FPS between 20-80 with 16ms frame time, got %v", stats.FPS)
	}
}

func TestPerfStats_ToCSV(t *testing.T) {
	s := PerfStats{
		AvgFrameDuration: 1500 * time.Microsecond,
		P95FrameDuration: 3 * time.Millisecond,
		PhasePct:         map[string]float64{PhaseClear: 10, PhaseTubes: 90},
	}

	row := s.ToCSV(120, 9)
	if row.WindowEnd != 120 || row.Tubes != 9 {
		t.Errorf("unexpected window/tubes %d/%d", row.WindowEnd, row.Tubes)
	}
	if row.AvgFrameUS != 1500 || row.P95FrameUS != 3000 {
		t.Errorf("unexpected timings avg=%d p95=%d", row.AvgFrameUS, row.P95FrameUS)
	}
	if row.ClearPct != 10 || row.TubesPct != 90 {
		t.Errorf("unexpected phase pcts %v/%v", row.ClearPct, row.TubesPct)
	}
}
