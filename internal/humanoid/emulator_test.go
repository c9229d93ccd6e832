package humanoid

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/tickbox/api/schemas"
)

// recordingExecutor captures dispatched events and completes sleeps
// instantly, so simulations run at test speed.
type recordingExecutor struct {
	mu     sync.Mutex
	events []schemas.MouseEventData
	slept  time.Duration

	dispatchErr error
}

func (r *recordingExecutor) DispatchMouseEvent(_ context.Context, ev schemas.MouseEventData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.dispatchErr != nil {
		return r.dispatchErr
	}
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingExecutor) Sleep(ctx context.Context, d time.Duration) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	r.mu.Lock()
	r.slept += d
	r.mu.Unlock()
	return nil
}

func (r *recordingExecutor) moves() []schemas.MouseEventData {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []schemas.MouseEventData
	for _, ev := range r.events {
		if ev.Type == schemas.MouseMove {
			out = append(out, ev)
		}
	}
	return out
}

func TestStartBrowsingSeedsPointer(t *testing.T) {
	exec := &recordingExecutor{}
	e := NewTestEmulator(exec, 42)

	s, err := e.StartBrowsing(context.Background(), 450, 300)
	require.NoError(t, err)

	require.Len(t, exec.events, 1)
	assert.Equal(t, schemas.MouseMove, exec.events[0].Type)
	assert.Equal(t, 450.0, exec.events[0].X)
	assert.Equal(t, 300.0, exec.events[0].Y)
	assert.Equal(t, Vector2D{X: 450, Y: 300}, s.Position())
	assert.NotEmpty(t, s.ID())
}

func TestReplayBrowseChunkDriftsNearAnchor(t *testing.T) {
	exec := &recordingExecutor{}
	e := NewTestEmulator(exec, 7)

	s, err := e.StartBrowsing(context.Background(), 400, 250)
	require.NoError(t, err)

	err = e.ReplayBrowseChunk(context.Background(), s, 2*time.Second)
	require.NoError(t, err)

	moves := exec.moves()
	// 2s at a 20ms tick plus the seed move.
	assert.GreaterOrEqual(t, len(moves), 50)

	// Idle drift wanders but stays in the anchor's neighborhood.
	for _, ev := range moves {
		assert.InDelta(t, 400, ev.X, 25, "drift strayed too far on X")
		assert.InDelta(t, 250, ev.Y, 25, "drift strayed too far on Y")
	}

	// Sleeps account for the requested wall-clock duration.
	assert.Equal(t, 2*time.Second, exec.slept)
}

func TestReplayBrowseChunkHonorsCancellation(t *testing.T) {
	exec := &recordingExecutor{}
	e := NewTestEmulator(exec, 7)

	s, err := e.StartBrowsing(context.Background(), 400, 250)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = e.ReplayBrowseChunk(ctx, s, time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReplayPathReachesTarget(t *testing.T) {
	exec := &recordingExecutor{}
	e := NewTestEmulator(exec, 99)

	s, err := e.StartBrowsing(context.Background(), 100, 100)
	require.NoError(t, err)

	err = e.ReplayPath(context.Background(), s, 500, 350)
	require.NoError(t, err)

	// The trajectory terminates near the target; tremor keeps it from being
	// pixel exact.
	final := s.Position()
	assert.InDelta(t, 500, final.X, 10.0)
	assert.InDelta(t, 350, final.Y, 10.0)

	// A 470px movement at 200Hz produces a dense event stream.
	assert.Greater(t, len(exec.moves()), 20)
}

func TestReplayPathSkipsTinyMovements(t *testing.T) {
	exec := &recordingExecutor{}
	e := NewTestEmulator(exec, 3)

	s, err := e.StartBrowsing(context.Background(), 100, 100)
	require.NoError(t, err)
	seedEvents := len(exec.events)

	err = e.ReplayPath(context.Background(), s, 100.5, 100.5)
	require.NoError(t, err)
	assert.Len(t, exec.events, seedEvents, "sub-pixel movement should dispatch nothing")
}

func TestReplayPathDisabledReportsUnavailable(t *testing.T) {
	exec := &recordingExecutor{}
	cfg := DefaultConfig()
	cfg.Enabled = false
	cfg.Rng = nil
	e := New(cfg, zap.NewNop(), exec)

	s, err := e.StartBrowsing(context.Background(), 100, 100)
	require.NoError(t, err)

	err = e.ReplayPath(context.Background(), s, 500, 350)
	assert.ErrorIs(t, err, ErrPathUnavailable)
}

func TestReplayPathPropagatesDispatchFailure(t *testing.T) {
	exec := &recordingExecutor{}
	e := NewTestEmulator(exec, 11)

	s, err := e.StartBrowsing(context.Background(), 100, 100)
	require.NoError(t, err)

	exec.dispatchErr = errors.New("target detached")
	err = e.ReplayPath(context.Background(), s, 500, 350)
	assert.ErrorContains(t, err, "target detached")
}

func TestTerminalFittsPauseScalesWithDistance(t *testing.T) {
	e := NewTestEmulator(&recordingExecutor{}, 5)

	short := e.terminalFittsPause(30)
	long := e.terminalFittsPause(900)

	assert.Greater(t, long, short)
	assert.Greater(t, short, time.Duration(0))
}
