package challenge

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/tickbox/api/schemas"
)

// phase tracks where a resolution is in its lifecycle. Phases only ever move
// forward; terminal outcomes are represented by the returned schemas.Outcome.
type phase int

const (
	phaseInit phase = iota
	phaseBrowsing
	phaseAwaitingFrame
	phaseApproaching
	phaseClicked
	phasePolling
)

func (p phase) String() string {
	switch p {
	case phaseInit:
		return "INIT"
	case phaseBrowsing:
		return "BROWSING"
	case phaseAwaitingFrame:
		return "AWAITING_FRAME"
	case phaseApproaching:
		return "APPROACHING"
	case phaseClicked:
		return "CLICKED"
	case phasePolling:
		return "POLLING"
	default:
		return "UNKNOWN"
	}
}

// Config holds every tunable of the resolution flow. Defaults mirror the
// production values the vendor's widget is known to tolerate.
type Config struct {
	// URLMarker must appear in a frame URL for the frame to be considered
	// part of the challenge widget at all.
	URLMarker string `mapstructure:"url_marker"`
	// CheckboxFragment identifies the frame hosting the clickable checkbox.
	CheckboxFragment string `mapstructure:"checkbox_fragment"`
	// ChallengeFragment identifies the frame hosting the secondary challenge.
	ChallengeFragment string `mapstructure:"challenge_fragment"`

	CheckboxSelector  string `mapstructure:"checkbox_selector"`
	ChallengeSelector string `mapstructure:"challenge_selector"`
	TokenSelector     string `mapstructure:"token_selector"`

	// GracePeriod bounds how long the checkbox frame may take to appear
	// before the page is judged unprotected.
	GracePeriod       time.Duration `mapstructure:"grace_period"`
	FramePollInterval time.Duration `mapstructure:"frame_poll_interval"`
	BoxTimeout        time.Duration `mapstructure:"box_timeout"`
	ProbeTimeout      time.Duration `mapstructure:"probe_timeout"`
	PollBrowseChunk   time.Duration `mapstructure:"poll_browse_chunk"`

	BrowseMin   time.Duration `mapstructure:"browse_min"`
	BrowseMax   time.Duration `mapstructure:"browse_max"`
	PreClickMin time.Duration `mapstructure:"pre_click_min"`
	PreClickMax time.Duration `mapstructure:"pre_click_max"`

	// Seed window for the initial pointer position, in viewport pixels.
	SeedXMin float64 `mapstructure:"seed_x_min"`
	SeedXMax float64 `mapstructure:"seed_x_max"`
	SeedYMin float64 `mapstructure:"seed_y_min"`
	SeedYMax float64 `mapstructure:"seed_y_max"`

	// Rng overrides the randomness source. Tests pin it for determinism.
	Rng *rand.Rand `mapstructure:"-"`
}

// DefaultConfig returns the production tuning.
func DefaultConfig() Config {
	return Config{
		URLMarker:         "hcaptcha",
		CheckboxFragment:  "frame=checkbox",
		ChallengeFragment: "frame=challenge",
		CheckboxSelector:  "#checkbox",
		ChallengeSelector: ".challenge-container",
		TokenSelector:     `textarea[name="h-captcha-response"]`,
		GracePeriod:       5 * time.Second,
		FramePollInterval: 300 * time.Millisecond,
		BoxTimeout:        3 * time.Second,
		ProbeTimeout:      500 * time.Millisecond,
		PollBrowseChunk:   1 * time.Second,
		BrowseMin:         2 * time.Second,
		BrowseMax:         4 * time.Second,
		PreClickMin:       100 * time.Millisecond,
		PreClickMax:       300 * time.Millisecond,
		SeedXMin:          300,
		SeedXMax:          600,
		SeedYMin:          200,
		SeedYMax:          400,
	}
}

// session is the per-resolution record. It is created inside Resolve, owned
// by the calling goroutine for the whole attempt, and never reused.
type session struct {
	id        string
	deadlines Deadlines
	motion    MotionState
	phase     phase
}

// Resolver runs checkbox resolutions against a live page. It is stateless
// across calls; every Resolve builds a fresh session record.
type Resolver struct {
	cfg    Config
	page   schemas.PageSession
	motion Motion
	clock  Clock
	logger *zap.Logger
	rng    *rand.Rand
}

// NewResolver wires a resolver to a page, a motion engine and a clock.
func NewResolver(page schemas.PageSession, motion Motion, clock Clock, cfg Config, logger *zap.Logger) *Resolver {
	rng := cfg.Rng
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Resolver{
		cfg:    cfg,
		page:   page,
		motion: motion,
		clock:  clock,
		logger: logger.Named("resolver"),
		rng:    rng,
	}
}

// Resolve runs one full resolution attempt bounded by the given total
// timeout and returns how it ended. It never panics and never retries; a
// failed attempt is reported, not repeated.
func (r *Resolver) Resolve(ctx context.Context, timeout time.Duration) schemas.Outcome {
	s := &session{
		id:        uuid.NewString(),
		deadlines: NewDeadlines(r.clock, timeout, r.cfg.GracePeriod),
		phase:     phaseInit,
	}
	log := r.logger.With(zap.String("resolution_id", s.id))
	log.Info("Starting challenge resolution", zap.Duration("timeout", timeout))

	outcome := r.run(ctx, s, log)

	log.Info("Challenge resolution finished",
		zap.String("outcome", outcome.String()),
		zap.String("last_phase", s.phase.String()),
		zap.Duration("elapsed", s.deadlines.Elapsed()),
	)
	return outcome
}

func (r *Resolver) run(ctx context.Context, s *session, log *zap.Logger) schemas.Outcome {
	// -- BROWSING --
	// Establish a pointer presence and dwell like a reader would before the
	// widget is even looked for. Challenge scoring penalizes sessions that
	// interact instantly after load.
	seedX := r.uniform(r.cfg.SeedXMin, r.cfg.SeedXMax)
	seedY := r.uniform(r.cfg.SeedYMin, r.cfg.SeedYMax)
	browseFor := r.uniformDuration(r.cfg.BrowseMin, r.cfg.BrowseMax)

	st, err := r.motion.StartBrowsing(ctx, seedX, seedY)
	if err != nil {
		log.Warn("Failed to start browse emulation", zap.Error(err))
		return schemas.OutcomeAborted
	}
	s.motion = st
	s.phase = phaseBrowsing

	log.Debug("Browsing before engaging",
		zap.Float64("seed_x", seedX),
		zap.Float64("seed_y", seedY),
		zap.Duration("duration", browseFor),
	)
	if err := r.motion.ReplayBrowseChunk(ctx, st, browseFor); err != nil {
		log.Warn("Browse emulation interrupted", zap.Error(err))
		return schemas.OutcomeAborted
	}

	// -- AWAITING_FRAME --
	s.phase = phaseAwaitingFrame
	frame, outcome := r.awaitCheckboxFrame(ctx, s, log)
	if frame == nil {
		return outcome
	}

	// -- APPROACHING --
	s.phase = phaseApproaching
	box, err := frame.ElementBox(ctx, r.cfg.CheckboxSelector, r.cfg.BoxTimeout)
	if err != nil || !box.Valid() {
		// The frame appeared but its content never became measurable. The
		// widget is in an unknown state, so bail out rather than click blind.
		log.Warn("Checkbox geometry unavailable",
			zap.String("selector", r.cfg.CheckboxSelector),
			zap.Error(err),
		)
		return schemas.OutcomeAborted
	}
	target := box.Center()

	err = r.motion.ReplayPath(ctx, st, target.X, target.Y)
	switch {
	case errors.Is(err, ErrPathUnavailable):
		// Motion plausibility is best-effort; a teleported pointer still
		// resolves most sessions.
		log.Debug("No emulated path for approach, moving pointer directly")
		if err := r.page.MoveMouse(ctx, target.X, target.Y); err != nil {
			log.Warn("Direct pointer move failed", zap.Error(err))
			return schemas.OutcomeAborted
		}
	case err != nil:
		log.Warn("Approach path replay failed", zap.Error(err))
		return schemas.OutcomeAborted
	}

	if err := r.clock.Sleep(ctx, r.uniformDuration(r.cfg.PreClickMin, r.cfg.PreClickMax)); err != nil {
		return schemas.OutcomeAborted
	}

	// -- CLICKED --
	s.phase = phaseClicked
	if err := r.page.Click(ctx, target.X, target.Y); err != nil {
		log.Warn("Checkbox click failed", zap.Error(err))
		return schemas.OutcomeAborted
	}
	log.Debug("Checkbox clicked", zap.Float64("x", target.X), zap.Float64("y", target.Y))

	// -- POLLING --
	s.phase = phasePolling
	return r.pollForVerdict(ctx, s, log)
}

// awaitCheckboxFrame polls the frame tree until the checkbox frame appears or
// the grace window closes. A nil frame means the returned outcome is final.
func (r *Resolver) awaitCheckboxFrame(ctx context.Context, s *session, log *zap.Logger) (schemas.FrameHandle, schemas.Outcome) {
	for {
		frames, err := r.page.Frames(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, schemas.OutcomeAborted
			}
			// Frame enumeration races page navigation; treat a failed read
			// as "not there yet" and keep polling.
			log.Debug("Frame enumeration failed, retrying", zap.Error(err))
		} else if f := FindFrame(frames, r.cfg.URLMarker, r.cfg.CheckboxFragment); f != nil {
			log.Debug("Checkbox frame located", zap.String("url", f.URL()))
			return f, ""
		}

		if s.deadlines.GraceExpired() {
			// No widget within the grace window means the page isn't gating
			// this session. That is the common, healthy case.
			log.Info("No challenge frame appeared within grace window",
				zap.Duration("elapsed", s.deadlines.Elapsed()))
			return nil, schemas.OutcomeNotEngaged
		}
		if err := r.clock.Sleep(ctx, r.cfg.FramePollInterval); err != nil {
			return nil, schemas.OutcomeAborted
		}
	}
}

// pollForVerdict watches for the completion token or a visible secondary
// challenge until the overall deadline. The token check always runs first so
// that a same-iteration race resolves in the caller's favor.
func (r *Resolver) pollForVerdict(ctx context.Context, s *session, log *zap.Logger) schemas.Outcome {
	for {
		if s.deadlines.OverallExpired() {
			log.Warn("Challenge did not settle before the deadline",
				zap.Duration("elapsed", s.deadlines.Elapsed()))
			return schemas.OutcomeTimedOut
		}

		token, err := r.page.FieldValue(ctx, r.cfg.TokenSelector, r.cfg.ProbeTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return schemas.OutcomeAborted
			}
			// Token field not mounted yet, or the read raced a DOM update.
			log.Debug("Token probe failed, treating as not ready", zap.Error(err))
		} else if token != "" {
			log.Info("Completion token present, challenge resolved",
				zap.Duration("elapsed", s.deadlines.Elapsed()))
			return schemas.OutcomeResolved
		}

		if escalated := r.escalationVisible(ctx, log); escalated {
			log.Warn("Secondary challenge presented, escalating",
				zap.Duration("elapsed", s.deadlines.Elapsed()))
			return schemas.OutcomeEscalated
		}
		if ctx.Err() != nil {
			return schemas.OutcomeAborted
		}

		if err := r.motion.ReplayBrowseChunk(ctx, s.motion, r.cfg.PollBrowseChunk); err != nil {
			if ctx.Err() != nil {
				return schemas.OutcomeAborted
			}
			log.Warn("Browse emulation failed during polling", zap.Error(err))
			return schemas.OutcomeAborted
		}
	}
}

// escalationVisible reports whether the secondary challenge frame exists and
// its container is actually rendered. Any probe failure reads as "no": the
// frame tree churns while the widget settles, and a missed escalation only
// costs one more poll iteration.
func (r *Resolver) escalationVisible(ctx context.Context, log *zap.Logger) bool {
	frames, err := r.page.Frames(ctx)
	if err != nil {
		log.Debug("Frame enumeration failed during escalation probe", zap.Error(err))
		return false
	}
	f := FindFrame(frames, r.cfg.URLMarker, r.cfg.ChallengeFragment)
	if f == nil {
		return false
	}
	visible, err := f.ElementVisible(ctx, r.cfg.ChallengeSelector, r.cfg.ProbeTimeout)
	if err != nil {
		log.Debug("Escalation visibility probe failed", zap.Error(err))
		return false
	}
	return visible
}

func (r *Resolver) uniform(min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + r.rng.Float64()*(max-min)
}

func (r *Resolver) uniformDuration(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(r.rng.Int63n(int64(max-min)))
}
