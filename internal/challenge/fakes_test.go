package challenge_test

import (
	"context"
	"sync"
	"time"

	"github.com/xkilldash9x/tickbox/api/schemas"
	"github.com/xkilldash9x/tickbox/internal/challenge"
)

// fakeClock is a virtual clock: Sleep advances it instantly, so resolutions
// that span many wall-clock seconds run in microseconds.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
	return nil
}

// sinceStart returns virtual time elapsed from the fixed epoch.
func (c *fakeClock) sinceStart() time.Duration {
	return c.Now().Sub(time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC))
}

// fakeFrame is a scripted frame. Visibility and values are closures so tests
// can key them off the virtual clock.
type fakeFrame struct {
	url      string
	box      schemas.Box
	boxErr   error
	visible  func() bool
	value    string
	valueErr error
}

func (f *fakeFrame) URL() string { return f.url }

func (f *fakeFrame) ElementBox(context.Context, string, time.Duration) (schemas.Box, error) {
	if f.boxErr != nil {
		return schemas.Box{}, f.boxErr
	}
	return f.box, nil
}

func (f *fakeFrame) ElementVisible(context.Context, string, time.Duration) (bool, error) {
	if f.visible == nil {
		return false, nil
	}
	return f.visible(), nil
}

func (f *fakeFrame) FieldValue(context.Context, string, time.Duration) (string, error) {
	if f.valueErr != nil {
		return "", f.valueErr
	}
	return f.value, nil
}

// fakePage scripts the frame tree and the token field, and records pointer
// actions for assertions.
type fakePage struct {
	mu     sync.Mutex
	frames func() []schemas.FrameHandle
	token  func() (string, error)
	moves  []schemas.Point
	clicks []schemas.Point
}

func (p *fakePage) Frames(context.Context) ([]schemas.FrameHandle, error) {
	if p.frames == nil {
		return nil, nil
	}
	return p.frames(), nil
}

func (p *fakePage) FieldValue(context.Context, string, time.Duration) (string, error) {
	if p.token == nil {
		return "", schemas.ErrElementNotFound
	}
	return p.token()
}

func (p *fakePage) MoveMouse(_ context.Context, x, y float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.moves = append(p.moves, schemas.Point{X: x, Y: y})
	return nil
}

func (p *fakePage) Click(_ context.Context, x, y float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clicks = append(p.clicks, schemas.Point{X: x, Y: y})
	return nil
}

func (p *fakePage) clickCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.clicks)
}

// fakeMotionState carries the pointer position for the fake engine.
type fakeMotionState struct {
	mu   sync.Mutex
	x, y float64
}

func (s *fakeMotionState) Position() (float64, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.x, s.y
}

// fakeMotion advances the virtual clock instead of emulating movement, so
// the resolver's timing logic is exercised without real sleeps.
type fakeMotion struct {
	clock     challenge.Clock
	startErr  error
	pathErr   error
	pathCalls int
	state     *fakeMotionState
}

func (m *fakeMotion) StartBrowsing(_ context.Context, x, y float64) (challenge.MotionState, error) {
	if m.startErr != nil {
		return nil, m.startErr
	}
	m.state = &fakeMotionState{x: x, y: y}
	return m.state, nil
}

func (m *fakeMotion) ReplayBrowseChunk(ctx context.Context, _ challenge.MotionState, d time.Duration) error {
	return m.clock.Sleep(ctx, d)
}

func (m *fakeMotion) ReplayPath(_ context.Context, _ challenge.MotionState, toX, toY float64) error {
	m.pathCalls++
	if m.pathErr != nil {
		return m.pathErr
	}
	m.state.mu.Lock()
	m.state.x, m.state.y = toX, toY
	m.state.mu.Unlock()
	return nil
}
