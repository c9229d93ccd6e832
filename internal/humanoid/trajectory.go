package humanoid

import (
	"context"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/tickbox/api/schemas"
)

// ErrPathUnavailable means the engine cannot produce a path for the requested
// movement. Callers fall back to whatever direct movement they have.
var ErrPathUnavailable = errors.New("humanoid: no path available for movement")

// Constants for the simulation loop.
const (
	// timeStep is the granularity of the physics simulation (200Hz).
	timeStep = 5 * time.Millisecond
	// maxSimulationTime bounds a single movement if the target is never reached.
	maxSimulationTime = 10 * time.Second
)

// ReplayPath moves the pointer from its current position to the target along
// a spring-damped trajectory with drift and tremor layered on. The movement
// ends with a short Fitts's-law verification pause. The session's position is
// updated as the path is dispatched.
func (e *Emulator) ReplayPath(ctx context.Context, s *Session, toX, toY float64) error {
	if !e.cfg.Enabled {
		return ErrPathUnavailable
	}

	start := s.pos
	end := Vector2D{X: toX, Y: toY}
	dist := start.Dist(end)
	if dist < 1.5 {
		return nil
	}

	e.updateFatigue(s, dist/1000.0)

	if err := e.simulateTrajectory(ctx, s, end); err != nil {
		return err
	}

	// Significant movements end with a verification pause while the eye
	// confirms the target before the hand acts.
	if dist > 20.0 {
		pause := e.terminalFittsPause(dist)
		e.recoverFatigue(s, pause)
		if err := e.ReplayBrowseChunk(ctx, s, pause); err != nil {
			return err
		}
	}

	e.logger.Debug("Path replay completed",
		zap.String("session_id", s.id),
		zap.Float64("distance", dist),
	)
	return nil
}

// simulateTrajectory runs the spring-damped integration loop, dispatching a
// pointer move per step. Mid-flight micro-corrections retarget the spring the
// way a real hand adjusts before arrival.
func (e *Emulator) simulateTrajectory(ctx context.Context, s *Session, end Vector2D) error {
	origin := s.pos
	currentPos := s.pos
	velocity := Vector2D{}
	t := time.Duration(0)

	// Fatigue slows the hand and loosens its damping slightly.
	omega := e.cfg.Omega * (1.0 - s.fatigueLevel*0.3)
	zeta := e.cfg.Zeta * (1.0 - s.fatigueLevel*0.1)

	perlinMagnitude := e.cfg.PerlinAmplitude
	const perlinFrequency = 0.8

	currentTarget := end
	isMicroCorrection := false
	initialDist := currentPos.Dist(end)

	for t < maxSimulationTime {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		distanceToTarget := currentPos.Dist(currentTarget)
		speed := velocity.Mag()

		// Arrived: close to the target and nearly stopped.
		if distanceToTarget < 1.0 && speed < 50.0 {
			if currentTarget == end {
				break
			}
			// A submovement finished; retarget the final destination.
			currentTarget = end
			isMicroCorrection = false
			continue
		}

		// Optimized submovement model: when arrival is imminent but the
		// pointer is still off, occasionally split the movement.
		if !isMicroCorrection && initialDist > e.cfg.MicroCorrectionThreshold {
			ttc := distanceToTarget / math.Max(1.0, speed)
			if ttc < 0.1 && distanceToTarget > 15.0 && e.rng.Float64() < 0.3 {
				isMicroCorrection = true
				adjustment := 0.8 + e.rng.Float64()*0.4
				currentTarget = currentPos.Add(end.Sub(currentPos).Mul(adjustment))
			}
		}

		// Spring toward the target (k = omega^2, m = 1) with damping
		// (c = 2*zeta*omega).
		springForce := currentTarget.Sub(currentPos).Mul(omega * omega)
		dampingForce := velocity.Mul(-2.0 * zeta * omega)
		acceleration := springForce.Add(dampingForce)

		// Semi-implicit Euler.
		dt := timeStep.Seconds()
		velocity = velocity.Add(acceleration.Mul(dt))
		if velocity.Mag() > e.cfg.MaxVelocity {
			velocity = velocity.Normalize().Mul(e.cfg.MaxVelocity)
		}
		currentPos = currentPos.Add(velocity.Mul(dt))

		// Low-frequency waver plus high-frequency tremor.
		s.noiseTime += dt
		drift := Vector2D{
			X: e.noiseX.Noise1D(s.noiseTime*perlinFrequency) * perlinMagnitude,
			Y: e.noiseY.Noise1D(s.noiseTime*perlinFrequency) * perlinMagnitude,
		}
		dispatchPos := e.applyTremor(currentPos.Add(drift))

		ev := schemas.MouseEventData{
			Type:   schemas.MouseMove,
			X:      dispatchPos.X,
			Y:      dispatchPos.Y,
			Button: schemas.ButtonNone,
		}
		if err := e.executor.DispatchMouseEvent(ctx, ev); err != nil {
			if ctx.Err() == nil {
				e.logger.Warn("Failed to dispatch pointer move", zap.Error(err))
			}
			return err
		}
		s.pos = dispatchPos
		t += timeStep

		// Jitter the step sleep slightly to avoid perfect periodicity.
		sleep := timeStep + time.Duration(e.rng.Intn(3)-1)*time.Millisecond
		if sleep > 0 {
			if err := e.executor.Sleep(ctx, sleep); err != nil {
				return err
			}
		}
	}

	if t >= maxSimulationTime {
		e.logger.Warn("Movement simulation timed out",
			zap.Any("start", origin), zap.Any("end", end))
	}
	return nil
}

// terminalFittsPause estimates the verification pause after a movement using
// Fitts's law with a fixed terminal target width.
func (e *Emulator) terminalFittsPause(distance float64) time.Duration {
	const w = 20.0
	id := math.Log2(1.0 + distance/w)

	mt := e.cfg.FittsA + e.cfg.FittsB*id
	mt += mt * (e.rng.Float64()*0.3 - 0.15) // +/- 15%
	if mt < 0 {
		mt = 0
	}
	return time.Duration(mt) * time.Millisecond
}
