package humanoid

import "math/rand"

// Config holds the tunable parameters of the motion models. These control the
// physics of pointer movement and the statistical texture layered on top of
// it. All of them load from the application config under browser.humanoid.
type Config struct {
	// Enabled gates path replay. When false, ReplayPath reports
	// ErrPathUnavailable and callers use their fallback movement.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// -- Movement physics (spring-damped model) --
	Omega       float64 `mapstructure:"omega" yaml:"omega"` // natural frequency (speed)
	Zeta        float64 `mapstructure:"zeta" yaml:"zeta"`   // damping ratio (smoothness)
	MaxVelocity float64 `mapstructure:"max_velocity" yaml:"max_velocity"`

	// -- Fitts's law (terminal verification pause) --
	FittsA float64 `mapstructure:"fitts_a" yaml:"fitts_a"`
	FittsB float64 `mapstructure:"fitts_b" yaml:"fitts_b"`

	// -- Noise and perturbations --
	PerlinAmplitude  float64 `mapstructure:"perlin_amplitude" yaml:"perlin_amplitude"`
	GaussianStrength float64 `mapstructure:"gaussian_strength" yaml:"gaussian_strength"`

	// -- Trajectory behavior --
	MicroCorrectionThreshold float64 `mapstructure:"micro_correction_threshold" yaml:"micro_correction_threshold"`

	// -- Idle browsing --
	// WheelProbability is the per-tick chance of an idle scroll nudge while
	// browsing between actions.
	WheelProbability float64 `mapstructure:"wheel_probability" yaml:"wheel_probability"`

	// -- Fatigue --
	FatigueIncreaseRate float64 `mapstructure:"fatigue_increase_rate" yaml:"fatigue_increase_rate"`
	FatigueRecoveryRate float64 `mapstructure:"fatigue_recovery_rate" yaml:"fatigue_recovery_rate"`

	// Rng overrides the randomness source. Tests pin it for determinism.
	Rng *rand.Rand `mapstructure:"-" yaml:"-"`
}

// DefaultConfig returns tuning that produces unremarkable, mid-skill pointer
// behavior on a desktop-sized viewport.
func DefaultConfig() Config {
	return Config{
		Enabled:                  true,
		Omega:                    22.0,
		Zeta:                     0.85,
		MaxVelocity:              6000.0,
		FittsA:                   120.0,
		FittsB:                   160.0,
		PerlinAmplitude:          1.8,
		GaussianStrength:         0.4,
		MicroCorrectionThreshold: 120.0,
		WheelProbability:         0.02,
		FatigueIncreaseRate:      0.05,
		FatigueRecoveryRate:      0.01,
	}
}
