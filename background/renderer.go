// Package background runs the animated tube field on a host: it generates the
// field when started, draws one frame per scheduled callback, reflows on
// resize and releases everything on Stop.
package background

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/pthm-cable/tubeglow/config"
	"github.com/pthm-cable/tubeglow/field"
	"github.com/pthm-cable/tubeglow/geometry"
	"github.com/pthm-cable/tubeglow/host"
	"github.com/pthm-cable/tubeglow/pulse"
	"github.com/pthm-cable/tubeglow/renderer"
	"github.com/pthm-cable/tubeglow/telemetry"
)

var (
	// ErrNoSurface is returned by Start when there is nothing to draw on.
	ErrNoSurface = errors.New("background: no drawing surface")
	// ErrAlreadyRunning is returned by Start on a running renderer.
	ErrAlreadyRunning = errors.New("background: already running")
)

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) { r.logger = l }
}

// WithPerf records frame timings into pc.
func WithPerf(pc *telemetry.PerfCollector) Option {
	return func(r *Renderer) { r.perf = pc }
}

// WithFrameHook calls fn after every scheduled frame with the frame count.
// It runs on the host's frame goroutine.
func WithFrameHook(fn func(frame uint64)) Option {
	return func(r *Renderer) { r.onFrame = fn }
}

// Renderer draws the tube field onto a surface once per host frame.
type Renderer struct {
	surface    renderer.Surface
	sim        *pulse.Simulator
	painter    *renderer.Painter
	fieldCfg   field.Config
	background color.NRGBA
	logger     *slog.Logger
	perf       *telemetry.PerfCollector
	onFrame    func(frame uint64)

	mu       sync.Mutex
	running  bool
	gen      uint64 // Bumped by Stop so stale frame callbacks bail out
	sched    host.Scheduler
	frameID  host.FrameID
	unlisten func()
	field    *field.Field

	frames atomic.Uint64
}

// PulseParams maps the pulse section of cfg onto simulator parameters.
func PulseParams(cfg *config.Config) pulse.Params {
	c := cfg.Pulse
	return pulse.Params{
		SpeedMin: c.SpeedMin, SpeedMax: c.SpeedMax,
		LengthMin: c.LengthMin, LengthMax: c.LengthMax,
		IntensityMin: c.IntensityMin, IntensityMax: c.IntensityMax,
		ResetMin: c.ResetMin, ResetRange: c.ResetRange, ResetStagger: c.ResetStagger,
		InitialJitter: c.InitialJitter, InitialStagger: c.InitialStagger,
	}
}

// FieldConfig maps the tubes section of cfg onto a field layout.
func FieldConfig(cfg *config.Config) field.Config {
	c := cfg.Tubes
	return field.Config{
		Spacing:      c.Spacing,
		MarginFactor: c.MarginFactor,
		Thickness:    c.Thickness,
		Layout: geometry.Layout{
			AngleDegrees: c.AngleDegrees,
			Extension:    c.Extension,
		},
	}
}

// New creates a stopped renderer. surface may be nil; Start then reports
// ErrNoSurface. rng drives every random pulse parameter.
func New(surface renderer.Surface, cfg *config.Config, rng pulse.Source, opts ...Option) (*Renderer, error) {
	sim, err := pulse.NewSimulator(PulseParams(cfg), rng)
	if err != nil {
		return nil, fmt.Errorf("creating pulse simulator: %w", err)
	}

	r := &Renderer{
		surface:    surface,
		sim:        sim,
		painter:    renderer.NewPainter(cfg),
		fieldCfg:   FieldConfig(cfg),
		background: cfg.Colors.Background.NRGBA(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r, nil
}

// Start generates the field for the screen's viewport, subscribes to resizes
// and schedules the first frame. The renderer runs until Stop is called or ctx
// is done; a cancelled ctx is noticed at the next frame.
func (r *Renderer) Start(ctx context.Context, sched host.Scheduler, screen host.Screen) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return ErrAlreadyRunning
	}
	if renderer.Missing(r.surface) {
		r.logger.Warn("background disabled: no drawing surface")
		return ErrNoSurface
	}

	vp := screen.Viewport()
	r.surface.Resize(vp.Width, vp.Height)
	r.field = field.Generate(vp, r.fieldCfg, r.sim)
	r.sched = sched
	r.running = true
	r.gen++
	r.unlisten = screen.AddResizeListener(r.Resize)
	r.frameID = sched.RequestFrame(r.frameFunc(ctx, r.gen))

	r.logger.Info("background started",
		"width", vp.Width,
		"height", vp.Height,
		"tubes", r.field.Len(),
	)
	return nil
}

// frameFunc returns the self-rescheduling callback for one run.
func (r *Renderer) frameFunc(ctx context.Context, gen uint64) func() {
	var frame func()
	frame = func() {
		if ctx.Err() != nil {
			r.Stop()
			return
		}

		n, ok := r.advance(gen, frame)
		if !ok {
			return
		}

		if r.onFrame != nil {
			r.onFrame(n)
		}
	}
	return frame
}

// advance draws one frame for run gen and schedules next. ok is false when
// the run is over. The lock is released even if drawing panics.
func (r *Renderer) advance(gen uint64, next func()) (n uint64, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running || r.gen != gen {
		return 0, false
	}
	r.step()
	r.frameID = r.sched.RequestFrame(next)
	return r.frames.Load(), true
}

// Stop cancels the pending frame, unsubscribes from resizes and drops the
// field. It is safe to call at any time and more than once.
func (r *Renderer) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return
	}
	r.running = false
	r.gen++
	r.sched.CancelFrame(r.frameID)
	r.frameID = 0
	r.sched = nil
	if r.unlisten != nil {
		r.unlisten()
		r.unlisten = nil
	}
	r.field = nil

	r.logger.Info("background stopped", "frames", r.frames.Load())
}

// Step renders one frame immediately: clear, then advance and draw every
// tube in anchor order. It does nothing while stopped.
func (r *Renderer) Step() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.field == nil {
		return
	}
	r.step()
}

func (r *Renderer) step() {
	if r.perf != nil {
		r.perf.StartFrame()
		r.perf.StartPhase(telemetry.PhaseClear)
	}
	r.surface.Clear(r.background)

	if r.perf != nil {
		r.perf.StartPhase(telemetry.PhaseTubes)
	}
	r.field.Step(func(t field.Tube) {
		r.painter.Draw(r.surface, t)
	})

	if r.perf != nil {
		r.perf.EndFrame()
	}
	r.frames.Add(1)
}

// Resize follows a viewport change: the surface is resized and every tube's
// geometry recomputed from its anchor. Pulses and the tube count are kept.
func (r *Renderer) Resize(vp geometry.Viewport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.field == nil {
		return
	}
	r.surface.Resize(vp.Width, vp.Height)
	r.field.Reflow(vp)
	r.logger.Debug("background reflowed", "width", vp.Width, "height", vp.Height)
}

// SetLayout replaces the field layout and regenerates the tubes for the
// current viewport. Pulses restart. A stopped renderer only keeps the layout
// for the next Start.
func (r *Renderer) SetLayout(cfg field.Config) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fieldCfg = cfg
	if r.field == nil {
		return
	}
	vp := r.field.Viewport()
	r.field = field.Generate(vp, cfg, r.sim)
	r.logger.Debug("background regenerated", "tubes", r.field.Len())
}

// Running reports whether the renderer is started.
func (r *Renderer) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Frames returns how many frames have been drawn since New.
func (r *Renderer) Frames() uint64 {
	return r.frames.Load()
}

// Tubes returns a copy of the current tubes, or nil while stopped.
func (r *Renderer) Tubes() []field.Tube {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.field == nil {
		return nil
	}
	return r.field.Tubes()
}

// Snapshot captures the field for the telemetry output.
func (r *Renderer) Snapshot(seed int64) *telemetry.FieldSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return telemetry.NewFieldSnapshot(r.field, r.frames.Load(), seed)
}
