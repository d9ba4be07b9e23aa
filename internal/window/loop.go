package window

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// Surface is the platform side of the loop.
type Surface interface {
	// PollEvents dispatches pending input to the App callbacks.
	PollEvents()
	SwapBuffers()
	ShouldClose() bool
}

// Loop polls events, draws and presents until the surface closes, the app
// asks to quit or ctx is done. Frames are paced to maxFPS when positive.
func Loop(ctx context.Context, surface Surface, app App, maxFPS int) error {
	var limiter *rate.Limiter
	if maxFPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(maxFPS), 1)
	}

	for {
		if ctx.Err() != nil {
			return nil
		}
		surface.PollEvents()
		if surface.ShouldClose() {
			return nil
		}
		app.Draw()
		surface.SwapBuffers()
		if app.ShouldQuit() {
			return nil
		}
		if limiter == nil {
			continue
		}
		if err := limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("frame pacing: %w", err)
		}
	}
}
