package host

import (
	"context"
	"time"

	"github.com/pthm-cable/tubeglow/geometry"
)

// RunTicker pumps loop every interval until ctx is done, applying viewport
// changes received on resizes between frames. A nil or closed resizes channel
// is fine. It returns ctx.Err().
func RunTicker(ctx context.Context, loop *Loop, interval time.Duration, resizes <-chan geometry.Viewport) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case vp, ok := <-resizes:
			if !ok {
				resizes = nil
				continue
			}
			loop.SetViewport(vp)
		case <-ticker.C:
			loop.RunFrame()
		}
	}
}

// FrameInterval converts a target frame rate into a ticker interval.
// Non-positive rates fall back to 60 fps.
func FrameInterval(fps int) time.Duration {
	if fps <= 0 {
		fps = 60
	}
	return time.Second / time.Duration(fps)
}
