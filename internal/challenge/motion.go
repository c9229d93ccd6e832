package challenge

import (
	"context"
	"errors"
	"time"

	"github.com/xkilldash9x/tickbox/internal/humanoid"
)

// ErrPathUnavailable is returned by Motion.ReplayPath when the engine cannot
// produce a plausible path for the requested movement. The resolver falls
// back to a direct pointer move and still proceeds with the click.
var ErrPathUnavailable = errors.New("challenge: no motion path available")

// MotionState is the pointer state threaded through one resolution. Exactly
// one goroutine owns it at a time; the resolver passes it back into every
// motion call.
type MotionState interface {
	// Position returns the pointer's current viewport coordinate.
	Position() (x, y float64)
}

// Motion is the human-behavior capability the resolver drives. Implementations
// block for the wall-clock duration the emulated behavior takes.
type Motion interface {
	// StartBrowsing seeds the pointer at the given coordinate and returns the
	// state for subsequent calls.
	StartBrowsing(ctx context.Context, x, y float64) (MotionState, error)

	// ReplayBrowseChunk emulates idle browsing for roughly the given duration.
	ReplayBrowseChunk(ctx context.Context, st MotionState, d time.Duration) error

	// ReplayPath moves the pointer from its current position to the target
	// along a human-plausible path. May fail with ErrPathUnavailable.
	ReplayPath(ctx context.Context, st MotionState, toX, toY float64) error
}

// humanoidMotion adapts the humanoid emulator to the Motion interface.
type humanoidMotion struct {
	emu *humanoid.Emulator
}

// NewHumanoidMotion wraps a humanoid emulator as the resolver's motion source.
func NewHumanoidMotion(emu *humanoid.Emulator) Motion {
	return &humanoidMotion{emu: emu}
}

type humanoidState struct {
	session *humanoid.Session
}

func (s *humanoidState) Position() (float64, float64) {
	p := s.session.Position()
	return p.X, p.Y
}

func (m *humanoidMotion) StartBrowsing(ctx context.Context, x, y float64) (MotionState, error) {
	session, err := m.emu.StartBrowsing(ctx, x, y)
	if err != nil {
		return nil, err
	}
	return &humanoidState{session: session}, nil
}

func (m *humanoidMotion) ReplayBrowseChunk(ctx context.Context, st MotionState, d time.Duration) error {
	hs, ok := st.(*humanoidState)
	if !ok {
		return errors.New("challenge: motion state does not belong to this engine")
	}
	return m.emu.ReplayBrowseChunk(ctx, hs.session, d)
}

func (m *humanoidMotion) ReplayPath(ctx context.Context, st MotionState, toX, toY float64) error {
	hs, ok := st.(*humanoidState)
	if !ok {
		return errors.New("challenge: motion state does not belong to this engine")
	}
	err := m.emu.ReplayPath(ctx, hs.session, toX, toY)
	if errors.Is(err, humanoid.ErrPathUnavailable) {
		return ErrPathUnavailable
	}
	return err
}
