package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/tickbox/internal/config"
)

// Manager owns the browser executable and the creation of isolated sessions
// (tabs). Sessions register themselves so Shutdown can close them all.
type Manager struct {
	logger *zap.Logger
	cfg    config.BrowserConfig

	allocatorCtx    context.Context
	allocatorCancel context.CancelFunc

	sessions map[string]*Session
	mu       sync.Mutex
}

// NewManager configures the allocator and prepares the browser process. The
// process itself starts lazily with the first session.
func NewManager(ctx context.Context, logger *zap.Logger, cfg config.BrowserConfig) *Manager {
	m := &Manager{
		logger:   logger.Named("browser_manager"),
		cfg:      cfg,
		sessions: make(map[string]*Session),
	}

	opts := m.generateAllocatorOptions()
	m.allocatorCtx, m.allocatorCancel = chromedp.NewExecAllocator(ctx, opts...)

	m.logger.Info("Browser manager initialized",
		zap.Bool("headless", cfg.Headless),
	)
	return m
}

// generateAllocatorOptions configures the flags for the browser executable.
func (m *Manager) generateAllocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)

	if m.cfg.Headless {
		opts = append(opts, chromedp.Headless)
	}

	opts = append(opts,
		// Challenge widgets inspect these; a browser announcing automation
		// is escalated before any behavior is scored.
		chromedp.Flag("enable-automation", false),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),

		// Stability flags for long-lived containerized runs.
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("metrics-recording-only", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-hang-monitor", true),
		chromedp.Flag("disable-prompt-on-repost", true),
		chromedp.Flag("disable-extensions", true),

		// GPU often causes issues in headless/containerized environments.
		chromedp.Flag("disable-gpu", m.cfg.Headless),

		chromedp.Flag("ignore-certificate-errors", m.cfg.IgnoreTLSErrors),
	)

	if m.cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(m.cfg.UserAgent))
	}
	if m.cfg.WindowWidth > 0 && m.cfg.WindowHeight > 0 {
		opts = append(opts, chromedp.WindowSize(m.cfg.WindowWidth, m.cfg.WindowHeight))
	}
	if m.cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(m.cfg.ExecPath))
	}

	return opts
}

// NewSession opens an isolated tab and navigates it to the given URL.
func (m *Manager) NewSession(ctx context.Context, url string) (*Session, error) {
	tabCtx, tabCancel := chromedp.NewContext(m.allocatorCtx,
		chromedp.WithLogf(m.logger.Sugar().Debugf),
		chromedp.WithErrorf(m.logger.Sugar().Errorf),
	)

	// Tie the tab to the caller's lifecycle.
	go func() {
		select {
		case <-ctx.Done():
			tabCancel()
		case <-tabCtx.Done():
		}
	}()

	s := newSession(tabCtx, tabCancel, m, m.logger, m.cfg)

	if err := s.Navigate(ctx, url); err != nil {
		tabCancel()
		return nil, fmt.Errorf("failed to open session for %s: %w", url, err)
	}

	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()

	m.logger.Debug("Browser session opened",
		zap.String("session_id", s.ID()),
		zap.String("url", url),
	)
	return s, nil
}

// unregister removes a closed session from tracking.
func (m *Manager) unregister(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}

// Shutdown closes all sessions and terminates the browser process.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.logger.Info("Shutting down browser manager")

	m.mu.Lock()
	toClose := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		toClose = append(toClose, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	var wg sync.WaitGroup
	for _, s := range toClose {
		wg.Add(1)
		go func(s *Session) {
			defer wg.Done()
			closeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			if err := s.Close(closeCtx); err != nil {
				m.logger.Warn("Error closing session during shutdown",
					zap.String("session_id", s.ID()), zap.Error(err))
			}
		}(s)
	}
	wg.Wait()

	if m.allocatorCancel != nil {
		m.allocatorCancel()
	}

	m.logger.Info("Browser manager shutdown complete")
	return nil
}
