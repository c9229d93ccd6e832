package humanoid

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/aquilax/go-perlin"
	"go.uber.org/zap"

	"github.com/xkilldash9x/tickbox/api/schemas"
)

// browseTick is the update cadence for idle drift (50Hz).
const browseTick = 20 * time.Millisecond

// Emulator generates human-plausible pointer behavior and delivers it through
// an Executor. The emulator itself holds only configuration and noise
// sources; all per-session state lives in Session values.
type Emulator struct {
	cfg      Config
	logger   *zap.Logger
	executor Executor
	rng      *rand.Rand
	noiseX   *perlin.Perlin
	noiseY   *perlin.Perlin
}

// New creates an emulator. When cfg.Rng is nil, a time-seeded source is used.
func New(cfg Config, logger *zap.Logger, executor Executor) *Emulator {
	seed := time.Now().UnixNano()
	rng := cfg.Rng
	if rng == nil {
		rng = rand.New(rand.NewSource(seed))
	}

	// Standard Perlin noise parameters.
	alpha, beta, n := 2.0, 2.0, int32(3)

	return &Emulator{
		cfg:      cfg,
		logger:   logger.Named("humanoid"),
		executor: executor,
		rng:      rng,
		noiseX:   perlin.NewPerlin(alpha, beta, n, seed),
		noiseY:   perlin.NewPerlin(alpha, beta, n, seed+1),
	}
}

// NewTestEmulator builds a fully deterministic emulator for tests: seeded
// rng, seeded noise, fixed tuning.
func NewTestEmulator(executor Executor, seed int64) *Emulator {
	cfg := DefaultConfig()
	cfg.Rng = rand.New(rand.NewSource(seed))
	e := New(cfg, zap.NewNop(), executor)
	e.noiseX = perlin.NewPerlin(2, 2, 3, seed)
	e.noiseY = perlin.NewPerlin(2, 2, 3, seed+1)
	return e
}

// StartBrowsing seeds the pointer at the given coordinate and returns the
// session state used by every subsequent call.
func (e *Emulator) StartBrowsing(ctx context.Context, x, y float64) (*Session, error) {
	s := newSession(Vector2D{X: x, Y: y})

	ev := schemas.MouseEventData{
		Type:   schemas.MouseMove,
		X:      x,
		Y:      y,
		Button: schemas.ButtonNone,
	}
	if err := e.executor.DispatchMouseEvent(ctx, ev); err != nil {
		return nil, err
	}

	e.logger.Debug("Browse session started",
		zap.String("session_id", s.id),
		zap.Float64("x", x),
		zap.Float64("y", y),
	)
	return s, nil
}

// ReplayBrowseChunk emulates idle reading behavior for roughly the requested
// duration: the pointer drifts on low-frequency Perlin noise with tremor on
// top, and occasionally nudges the scroll wheel. The elapsed time is
// accounted through the executor's Sleep so a test executor controls pacing.
func (e *Emulator) ReplayBrowseChunk(ctx context.Context, s *Session, duration time.Duration) error {
	if duration <= 0 {
		return ctx.Err()
	}

	anchor := s.pos
	driftAmplitude := e.cfg.PerlinAmplitude * 1.5 * (1.0 + s.fatigueLevel)
	const driftFrequency = 0.5

	for elapsed := time.Duration(0); elapsed < duration; {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		s.noiseTime += browseTick.Seconds()
		drift := Vector2D{
			X: e.noiseX.Noise1D(s.noiseTime*driftFrequency) * driftAmplitude,
			Y: e.noiseY.Noise1D(s.noiseTime*driftFrequency) * driftAmplitude,
		}
		pos := e.applyTremor(anchor.Add(drift))

		ev := schemas.MouseEventData{
			Type:   schemas.MouseMove,
			X:      pos.X,
			Y:      pos.Y,
			Button: schemas.ButtonNone,
		}
		if err := e.executor.DispatchMouseEvent(ctx, ev); err != nil {
			return err
		}
		s.pos = pos

		if e.rng.Float64() < e.cfg.WheelProbability {
			if err := e.idleScroll(ctx, s); err != nil {
				return err
			}
		}

		tick := browseTick
		if remaining := duration - elapsed; remaining < tick {
			tick = remaining
		}
		if err := e.executor.Sleep(ctx, tick); err != nil {
			return err
		}
		elapsed += tick
	}

	e.recoverFatigue(s, duration)
	return nil
}

// idleScroll sends a small wheel movement, mostly downward, like a reader
// skimming a page.
func (e *Emulator) idleScroll(ctx context.Context, s *Session) error {
	// Wheel detents arrive in multiples of the line height; 3 lines is the
	// common desktop default.
	detents := 1 + e.rng.Intn(3)
	deltaY := float64(detents) * 40.0
	if e.rng.Float64() < 0.2 {
		deltaY = -deltaY
	}

	ev := schemas.MouseEventData{
		Type:   schemas.MouseWheel,
		X:      s.pos.X,
		Y:      s.pos.Y,
		Button: schemas.ButtonNone,
		DeltaY: deltaY,
	}
	return e.executor.DispatchMouseEvent(ctx, ev)
}

// applyTremor adds high-frequency noise to a coordinate, the hand's
// involuntary micro-movement.
func (e *Emulator) applyTremor(p Vector2D) Vector2D {
	strength := e.cfg.GaussianStrength * (0.5 + e.rng.Float64())
	return Vector2D{
		X: p.X + e.rng.NormFloat64()*strength,
		Y: p.Y + e.rng.NormFloat64()*strength,
	}
}

func (e *Emulator) updateFatigue(s *Session, intensity float64) {
	s.fatigueLevel = math.Min(1.0, s.fatigueLevel+e.cfg.FatigueIncreaseRate*intensity)
}

func (e *Emulator) recoverFatigue(s *Session, d time.Duration) {
	s.fatigueLevel = math.Max(0.0, s.fatigueLevel-e.cfg.FatigueRecoveryRate*d.Seconds())
}
