// Package host provides the frame scheduling and viewport notification a
// renderer runs on.
//
// A Loop is the shared primitive. Window (raylib) and RunTicker (timer driven)
// pump it; the terminal package pumps it from tcell events.
package host

import (
	"slices"
	"sync"

	"github.com/pthm-cable/tubeglow/geometry"
)

// FrameID identifies one requested frame callback. The zero ID is never issued.
type FrameID uint64

// Scheduler runs callbacks before the next frame is presented.
type Scheduler interface {
	// RequestFrame schedules fn for the next frame.
	RequestFrame(fn func()) FrameID
	// CancelFrame drops a pending callback. Unknown IDs are ignored.
	CancelFrame(id FrameID)
}

// Screen reports the viewport and notifies listeners when it changes.
type Screen interface {
	Viewport() geometry.Viewport
	// AddResizeListener registers fn and returns a func that removes it.
	AddResizeListener(fn func(geometry.Viewport)) (remove func())
}

// Loop is a Scheduler and Screen driven by explicit calls to RunFrame and
// SetViewport. Callbacks run on the goroutine that calls those methods;
// no lock is held while they run, so they may call back into the Loop.
type Loop struct {
	mu           sync.Mutex
	viewport     geometry.Viewport
	nextFrame    FrameID
	frames       map[FrameID]func()
	nextListener uint64
	listeners    map[uint64]func(geometry.Viewport)
	closed       bool
}

// NewLoop creates a loop reporting vp as the initial viewport.
func NewLoop(vp geometry.Viewport) *Loop {
	return &Loop{
		viewport:  vp,
		frames:    make(map[FrameID]func()),
		listeners: make(map[uint64]func(geometry.Viewport)),
	}
}

// RequestFrame schedules fn for the next RunFrame. A closed loop returns 0
// and never runs fn.
func (l *Loop) RequestFrame(fn func()) FrameID {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || fn == nil {
		return 0
	}
	l.nextFrame++
	l.frames[l.nextFrame] = fn
	return l.nextFrame
}

// CancelFrame drops a pending callback.
func (l *Loop) CancelFrame(id FrameID) {
	l.mu.Lock()
	delete(l.frames, id)
	l.mu.Unlock()
}

// RunFrame runs, in request order, every callback pending when it was called
// and returns how many ran. Callbacks requested while it runs wait for the
// next call; callbacks cancelled while it runs are skipped.
func (l *Loop) RunFrame() int {
	l.mu.Lock()
	ids := make([]FrameID, 0, len(l.frames))
	for id := range l.frames {
		ids = append(ids, id)
	}
	l.mu.Unlock()
	slices.Sort(ids)

	ran := 0
	for _, id := range ids {
		l.mu.Lock()
		fn, ok := l.frames[id]
		delete(l.frames, id)
		l.mu.Unlock()
		if !ok {
			continue
		}
		fn()
		ran++
	}
	return ran
}

// Viewport returns the current viewport.
func (l *Loop) Viewport() geometry.Viewport {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.viewport
}

// AddResizeListener registers fn for viewport changes.
func (l *Loop) AddResizeListener(fn func(geometry.Viewport)) (remove func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || fn == nil {
		return func() {}
	}
	l.nextListener++
	id := l.nextListener
	l.listeners[id] = fn
	return func() {
		l.mu.Lock()
		delete(l.listeners, id)
		l.mu.Unlock()
	}
}

// SetViewport records vp and, if it differs from the current viewport,
// calls every listener with it before returning.
func (l *Loop) SetViewport(vp geometry.Viewport) {
	l.mu.Lock()
	if l.closed || vp == l.viewport {
		l.mu.Unlock()
		return
	}
	l.viewport = vp
	ids := make([]uint64, 0, len(l.listeners))
	for id := range l.listeners {
		ids = append(ids, id)
	}
	l.mu.Unlock()
	slices.Sort(ids)

	for _, id := range ids {
		l.mu.Lock()
		fn, ok := l.listeners[id]
		l.mu.Unlock()
		if ok {
			fn(vp)
		}
	}
}

// Pending returns the number of scheduled callbacks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.frames)
}

// Listeners returns the number of registered resize listeners.
func (l *Loop) Listeners() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.listeners)
}

// Close drops every callback and listener. Later requests are ignored.
func (l *Loop) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	clear(l.frames)
	clear(l.listeners)
}
