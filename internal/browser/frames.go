package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/tickbox/api/schemas"
)

// Frames enumerates the page's frames: the main document first, then every
// out-of-process iframe target. Cross-origin widget frames always run out of
// process, which is exactly the case this tool cares about.
func (s *Session) Frames(ctx context.Context) ([]schemas.FrameHandle, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	infos, err := chromedp.Targets(s.tabCtx)
	if err != nil {
		return nil, fmt.Errorf("target enumeration failed: %w", err)
	}

	frames := []schemas.FrameHandle{
		&frameHandle{session: s, url: s.URL(), main: true},
	}
	for _, info := range infos {
		if info.Type != "iframe" {
			continue
		}
		frames = append(frames, &frameHandle{
			session:  s,
			targetID: info.TargetID,
			url:      info.URL,
		})
	}
	return frames, nil
}

// frameHandle is a transient view of one frame. Handles are rebuilt on every
// enumeration; queries attach to the frame's target for the duration of a
// single call and detach again.
type frameHandle struct {
	session  *Session
	targetID target.ID
	url      string
	main     bool
}

var _ schemas.FrameHandle = (*frameHandle)(nil)

func (f *frameHandle) URL() string {
	return f.url
}

// ElementBox returns the bounding box of the first matching element, offset
// into main-viewport coordinates.
func (f *frameHandle) ElementBox(ctx context.Context, selector string, timeout time.Duration) (schemas.Box, error) {
	probe, err := f.probe(ctx, selector, timeout)
	if err != nil {
		return schemas.Box{}, err
	}
	if !probe.Found {
		return schemas.Box{}, schemas.ErrElementNotFound
	}

	box := schemas.Box{X: probe.X, Y: probe.Y, Width: probe.Width, Height: probe.Height}
	if f.main {
		return box, nil
	}

	// Frame-local coordinates shift by the embedding iframe's position in
	// the main document.
	offX, offY, err := f.embeddingOffset(ctx, timeout)
	if err != nil {
		return schemas.Box{}, err
	}
	box.X += offX
	box.Y += offY
	return box, nil
}

// ElementVisible reports whether the first matching element is rendered with
// a non-empty area. Absence is not an error.
func (f *frameHandle) ElementVisible(ctx context.Context, selector string, timeout time.Duration) (bool, error) {
	probe, err := f.probe(ctx, selector, timeout)
	if err != nil {
		return false, err
	}
	return probe.Found && probe.Visible, nil
}

// FieldValue returns the value of the first matching form field.
func (f *frameHandle) FieldValue(ctx context.Context, selector string, timeout time.Duration) (string, error) {
	probe, err := f.probe(ctx, selector, timeout)
	if err != nil {
		return "", err
	}
	if !probe.Found {
		return "", schemas.ErrElementNotFound
	}
	return probe.Value, nil
}

// probe evaluates the element probe inside this frame's document.
func (f *frameHandle) probe(ctx context.Context, selector string, timeout time.Duration) (elementProbe, error) {
	runCtx, cancel, err := f.frameCtx(ctx, timeout)
	if err != nil {
		return elementProbe{}, err
	}
	defer cancel()
	return runProbe(runCtx, selector)
}

// frameCtx returns a context whose CDP traffic is routed to this frame's
// target, bounded by the caller's cancellation and the per-call timeout. The
// returned cancel detaches from the target.
func (f *frameHandle) frameCtx(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc, error) {
	if f.main {
		runCtx, cancel := f.session.boundedCtx(ctx, timeout)
		return runCtx, cancel, nil
	}

	attachCtx, attachCancel := chromedp.NewContext(f.session.tabCtx, chromedp.WithTargetID(f.targetID))

	var runCtx context.Context
	var timeoutCancel context.CancelFunc
	if timeout > 0 {
		runCtx, timeoutCancel = context.WithTimeout(attachCtx, timeout)
	} else {
		runCtx, timeoutCancel = context.WithCancel(attachCtx)
	}
	stop := context.AfterFunc(ctx, timeoutCancel)

	cancel := func() {
		stop()
		timeoutCancel()
		attachCancel()
	}
	return runCtx, cancel, nil
}

// embeddingOffset locates the iframe element hosting this frame in the main
// document and returns its top-left corner. A frame nested deeper than one
// level, or one whose src no longer matches, contributes no offset; the
// resolver treats the resulting misclick like any other failed attempt.
func (f *frameHandle) embeddingOffset(ctx context.Context, timeout time.Duration) (float64, float64, error) {
	runCtx, cancel := f.session.boundedCtx(ctx, timeout)
	defer cancel()

	var off iframeOffset
	script := iframeOffsetScript(f.url)
	if err := chromedp.Run(runCtx, chromedp.Evaluate(script, &off)); err != nil {
		return 0, 0, fmt.Errorf("iframe offset lookup failed: %w", err)
	}
	if !off.Found {
		f.session.logger.Debug("Embedding iframe not found in main document, assuming zero offset",
			zap.String("frame_url", f.url))
		return 0, 0, nil
	}
	return off.X, off.Y, nil
}
