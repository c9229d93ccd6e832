package challenge

import "time"

// Deadlines tracks the two clocks a resolution runs against: the overall
// budget supplied by the caller and the shorter grace window within which the
// challenge frame must appear. Both are sampled once at construction so every
// later check compares against the same instants.
type Deadlines struct {
	clock   Clock
	started time.Time
	overall time.Time
	grace   time.Time
}

// NewDeadlines captures the current instant and derives both deadlines from it.
func NewDeadlines(clock Clock, total, grace time.Duration) Deadlines {
	now := clock.Now()
	return Deadlines{
		clock:   clock,
		started: now,
		overall: now.Add(total),
		grace:   now.Add(grace),
	}
}

// OverallExpired reports whether the caller's total budget is spent.
func (d Deadlines) OverallExpired() bool {
	return !d.clock.Now().Before(d.overall)
}

// GraceExpired reports whether the frame-discovery window has closed.
func (d Deadlines) GraceExpired() bool {
	return !d.clock.Now().Before(d.grace)
}

// Elapsed returns the time spent since the resolution started.
func (d Deadlines) Elapsed() time.Duration {
	return d.clock.Now().Sub(d.started)
}

// Remaining returns how much of the overall budget is left, never negative.
func (d Deadlines) Remaining() time.Duration {
	r := d.overall.Sub(d.clock.Now())
	if r < 0 {
		return 0
	}
	return r
}
