package humanoid

import "github.com/google/uuid"

// Session is the mutable pointer state for one emulated browsing session.
// The emulator mutates it; exactly one goroutine may use a session at a time.
type Session struct {
	id           string
	pos          Vector2D
	fatigueLevel float64
	// noiseTime advances with every emulated tick so drift stays continuous
	// across separate browse chunks instead of restarting from zero.
	noiseTime float64
}

func newSession(start Vector2D) *Session {
	return &Session{
		id:  uuid.NewString(),
		pos: start,
	}
}

// ID returns the session's unique identifier, used for log correlation.
func (s *Session) ID() string {
	return s.id
}

// Position returns the pointer's current viewport coordinate.
func (s *Session) Position() Vector2D {
	return s.pos
}
