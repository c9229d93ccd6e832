package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/spf13/viper"

	"github.com/xkilldash9x/tickbox/internal/challenge"
	"github.com/xkilldash9x/tickbox/internal/humanoid"
)

var (
	instance *Config
	once     sync.Once
)

// Config is the root configuration structure for the application.
type Config struct {
	Logger    LoggerConfig     `mapstructure:"logger"`
	Browser   BrowserConfig    `mapstructure:"browser"`
	Challenge challenge.Config `mapstructure:"challenge"`
}

// ColorConfig defines the color settings for different log levels.
// These are used for console output to make logs more readable.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" json:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" json:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" json:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" json:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" json:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" json:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" json:"fatal" yaml:"fatal"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" json:"level" yaml:"level"`
	Format      string      `mapstructure:"format" json:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" json:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" json:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" json:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" json:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" json:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" json:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" json:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" json:"colors" yaml:"colors"`
}

// BrowserConfig holds settings for the driven browser.
type BrowserConfig struct {
	Headless          bool            `mapstructure:"headless"`
	IgnoreTLSErrors   bool            `mapstructure:"ignore_tls_errors"`
	ExecPath          string          `mapstructure:"exec_path"`
	UserAgent         string          `mapstructure:"user_agent"`
	WindowWidth       int             `mapstructure:"window_width"`
	WindowHeight      int             `mapstructure:"window_height"`
	NavigationTimeout time.Duration   `mapstructure:"navigation_timeout"`
	Humanoid          humanoid.Config `mapstructure:"humanoid"`
}

// SetDefaults registers defaults so the tool runs with an empty config file.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "tickbox")
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.fatal", "red")

	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.window_width", 1366)
	v.SetDefault("browser.window_height", 768)
	v.SetDefault("browser.navigation_timeout", 30*time.Second)

	hd := humanoid.DefaultConfig()
	v.SetDefault("browser.humanoid.enabled", hd.Enabled)
	v.SetDefault("browser.humanoid.omega", hd.Omega)
	v.SetDefault("browser.humanoid.zeta", hd.Zeta)
	v.SetDefault("browser.humanoid.max_velocity", hd.MaxVelocity)
	v.SetDefault("browser.humanoid.fitts_a", hd.FittsA)
	v.SetDefault("browser.humanoid.fitts_b", hd.FittsB)
	v.SetDefault("browser.humanoid.perlin_amplitude", hd.PerlinAmplitude)
	v.SetDefault("browser.humanoid.gaussian_strength", hd.GaussianStrength)
	v.SetDefault("browser.humanoid.micro_correction_threshold", hd.MicroCorrectionThreshold)
	v.SetDefault("browser.humanoid.wheel_probability", hd.WheelProbability)
	v.SetDefault("browser.humanoid.fatigue_increase_rate", hd.FatigueIncreaseRate)
	v.SetDefault("browser.humanoid.fatigue_recovery_rate", hd.FatigueRecoveryRate)

	cd := challenge.DefaultConfig()
	v.SetDefault("challenge.url_marker", cd.URLMarker)
	v.SetDefault("challenge.checkbox_fragment", cd.CheckboxFragment)
	v.SetDefault("challenge.challenge_fragment", cd.ChallengeFragment)
	v.SetDefault("challenge.checkbox_selector", cd.CheckboxSelector)
	v.SetDefault("challenge.challenge_selector", cd.ChallengeSelector)
	v.SetDefault("challenge.token_selector", cd.TokenSelector)
	v.SetDefault("challenge.grace_period", cd.GracePeriod)
	v.SetDefault("challenge.frame_poll_interval", cd.FramePollInterval)
	v.SetDefault("challenge.box_timeout", cd.BoxTimeout)
	v.SetDefault("challenge.probe_timeout", cd.ProbeTimeout)
	v.SetDefault("challenge.poll_browse_chunk", cd.PollBrowseChunk)
	v.SetDefault("challenge.browse_min", cd.BrowseMin)
	v.SetDefault("challenge.browse_max", cd.BrowseMax)
	v.SetDefault("challenge.pre_click_min", cd.PreClickMin)
	v.SetDefault("challenge.pre_click_max", cd.PreClickMax)
	v.SetDefault("challenge.seed_x_min", cd.SeedXMin)
	v.SetDefault("challenge.seed_x_max", cd.SeedXMax)
	v.SetDefault("challenge.seed_y_min", cd.SeedYMin)
	v.SetDefault("challenge.seed_y_max", cd.SeedYMax)
}

// Validate rejects configurations the resolver cannot run with.
func (c *Config) Validate() error {
	if c.Challenge.URLMarker == "" {
		return fmt.Errorf("challenge.url_marker must not be empty")
	}
	if c.Challenge.CheckboxSelector == "" || c.Challenge.TokenSelector == "" {
		return fmt.Errorf("challenge selectors must not be empty")
	}
	if c.Challenge.FramePollInterval <= 0 {
		return fmt.Errorf("challenge.frame_poll_interval must be positive, got %s", c.Challenge.FramePollInterval)
	}
	if c.Challenge.PollBrowseChunk <= 0 {
		return fmt.Errorf("challenge.poll_browse_chunk must be positive, got %s", c.Challenge.PollBrowseChunk)
	}
	if c.Challenge.BrowseMax < c.Challenge.BrowseMin {
		return fmt.Errorf("challenge.browse_max (%s) below browse_min (%s)", c.Challenge.BrowseMax, c.Challenge.BrowseMin)
	}
	if c.Challenge.PreClickMax < c.Challenge.PreClickMin {
		return fmt.Errorf("challenge.pre_click_max (%s) below pre_click_min (%s)", c.Challenge.PreClickMax, c.Challenge.PreClickMin)
	}
	return nil
}

// Load initializes the configuration singleton from Viper.
func Load(v *viper.Viper) error {
	var loadErr error
	once.Do(func() {
		var cfg Config
		if err := v.Unmarshal(&cfg); err != nil {
			loadErr = fmt.Errorf("error unmarshaling config: %w", err)
			return
		}
		if err := cfg.Validate(); err != nil {
			loadErr = err
			return
		}
		instance = &cfg
	})
	return loadErr
}

// Get returns the loaded configuration instance.
func Get() *Config {
	if instance == nil {
		panic("Configuration not initialized. Call config.Load() in the root command.")
	}
	return instance
}
