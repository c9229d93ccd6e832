package browser

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/tickbox/api/schemas"
	"github.com/xkilldash9x/tickbox/internal/config"
	"github.com/xkilldash9x/tickbox/internal/humanoid"
)

// Session is one isolated tab. It implements both the page surface the
// resolver reads from and the raw input sink the motion engine writes to.
type Session struct {
	id      string
	logger  *zap.Logger
	cfg     config.BrowserConfig
	manager *Manager

	// tabCtx is the chromedp context for this tab. All CDP traffic runs on
	// it; per-call deadlines wrap it, never replace it.
	tabCtx    context.Context
	tabCancel context.CancelFunc

	mu         sync.Mutex
	currentURL string
	closed     bool
	rng        *rand.Rand
}

var (
	_ schemas.PageSession = (*Session)(nil)
	_ humanoid.Executor   = (*Session)(nil)
)

func newSession(tabCtx context.Context, tabCancel context.CancelFunc, m *Manager, logger *zap.Logger, cfg config.BrowserConfig) *Session {
	id := uuid.New().String()
	return &Session{
		id:        id,
		logger:    logger.Named("session").With(zap.String("session_id", id)),
		cfg:       cfg,
		manager:   m,
		tabCtx:    tabCtx,
		tabCancel: tabCancel,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// Navigate loads the given URL and waits for the document to be ready.
func (s *Session) Navigate(ctx context.Context, url string) error {
	timeout := s.cfg.NavigationTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	runCtx, cancel := s.boundedCtx(ctx, timeout)
	defer cancel()

	if err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return err
	}

	s.mu.Lock()
	s.currentURL = url
	s.mu.Unlock()
	return nil
}

// URL returns the last URL this session navigated to.
func (s *Session) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentURL
}

// FieldValue reads a form field from the main document.
func (s *Session) FieldValue(ctx context.Context, selector string, timeout time.Duration) (string, error) {
	runCtx, cancel := s.boundedCtx(ctx, timeout)
	defer cancel()

	probe, err := runProbe(runCtx, selector)
	if err != nil {
		return "", err
	}
	if !probe.Found {
		return "", schemas.ErrElementNotFound
	}
	return probe.Value, nil
}

// MoveMouse teleports the pointer to the given viewport coordinate with a
// single raw move event.
func (s *Session) MoveMouse(ctx context.Context, x, y float64) error {
	return s.DispatchMouseEvent(ctx, schemas.MouseEventData{
		Type:   schemas.MouseMove,
		X:      x,
		Y:      y,
		Button: schemas.ButtonNone,
	})
}

// Click presses and releases the primary button at the coordinate, holding
// it for a human-plausible 40-120ms.
func (s *Session) Click(ctx context.Context, x, y float64) error {
	press := schemas.MouseEventData{
		Type:       schemas.MousePress,
		X:          x,
		Y:          y,
		Button:     schemas.ButtonLeft,
		Buttons:    1,
		ClickCount: 1,
	}
	if err := s.DispatchMouseEvent(ctx, press); err != nil {
		return err
	}

	s.mu.Lock()
	hold := time.Duration(40+s.rng.Intn(81)) * time.Millisecond
	s.mu.Unlock()
	if err := s.Sleep(ctx, hold); err != nil {
		// The button is virtually down; release it even on cancellation so
		// the page isn't left mid-drag.
		release := schemas.MouseEventData{
			Type: schemas.MouseRelease, X: x, Y: y,
			Button: schemas.ButtonLeft, ClickCount: 1,
		}
		_ = s.DispatchMouseEvent(context.WithoutCancel(ctx), release)
		return err
	}

	release := schemas.MouseEventData{
		Type:       schemas.MouseRelease,
		X:          x,
		Y:          y,
		Button:     schemas.ButtonLeft,
		ClickCount: 1,
	}
	return s.DispatchMouseEvent(ctx, release)
}

// Close tears down the tab and unregisters it from the manager.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.manager.unregister(s.id)
	s.tabCancel()
	s.logger.Debug("Browser session closed")
	return nil
}

// boundedCtx derives a CDP run context that honors both the caller's
// cancellation and an optional per-call timeout. CDP actions must run on the
// tab context, so the caller's ctx is bridged in via a watcher.
func (s *Session) boundedCtx(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	var runCtx context.Context
	var cancel context.CancelFunc
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(s.tabCtx, timeout)
	} else {
		runCtx, cancel = context.WithCancel(s.tabCtx)
	}

	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}
