package browser

import (
	"context"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"

	"github.com/xkilldash9x/tickbox/api/schemas"
)

// DispatchMouseEvent translates one pointer event to a raw CDP Input command
// on the main target. This is the humanoid.Executor implementation: the
// motion engine's entire output funnels through here.
func (s *Session) DispatchMouseEvent(ctx context.Context, ev schemas.MouseEventData) error {
	runCtx, cancel := s.boundedCtx(ctx, 0)
	defer cancel()

	p := input.DispatchMouseEvent(input.MouseType(ev.Type), ev.X, ev.Y)
	if ev.Button != "" && ev.Button != schemas.ButtonNone {
		p = p.WithButton(input.MouseButton(ev.Button))
	}
	if ev.Buttons != 0 {
		p = p.WithButtons(ev.Buttons)
	}
	if ev.ClickCount != 0 {
		p = p.WithClickCount(ev.ClickCount)
	}
	if ev.Type == schemas.MouseWheel {
		p = p.WithDeltaX(ev.DeltaX).WithDeltaY(ev.DeltaY)
	}

	return chromedp.Run(runCtx, chromedp.ActionFunc(func(c context.Context) error {
		return p.Do(c)
	}))
}

// Sleep pauses for the given duration, respecting context cancellation.
func (s *Session) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.tabCtx.Done():
		return s.tabCtx.Err()
	}
}
