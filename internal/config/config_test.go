package config

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetSingleton gives each test a clean slate.
func resetSingleton() {
	instance = nil
	once = sync.Once{}
}

// TestGetUninitialized verifies that calling Get() before Load() causes a panic.
func TestGetUninitialized(t *testing.T) {
	resetSingleton()

	assert.Panics(t, func() {
		Get()
	}, "Get() should panic if configuration is not initialized")
}

// TestLoadDefaults verifies the tool runs with an empty config file: the
// defaults carry the full production tuning.
func TestLoadDefaults(t *testing.T) {
	resetSingleton()

	v := viper.New()
	SetDefaults(v)

	require.NoError(t, Load(v))
	cfg := Get()

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "tickbox", cfg.Logger.ServiceName)
	assert.True(t, cfg.Browser.Headless)
	assert.True(t, cfg.Browser.Humanoid.Enabled)

	assert.Equal(t, "hcaptcha", cfg.Challenge.URLMarker)
	assert.Equal(t, "frame=checkbox", cfg.Challenge.CheckboxFragment)
	assert.Equal(t, "frame=challenge", cfg.Challenge.ChallengeFragment)
	assert.Equal(t, "#checkbox", cfg.Challenge.CheckboxSelector)
	assert.Equal(t, `textarea[name="h-captcha-response"]`, cfg.Challenge.TokenSelector)
	assert.Equal(t, 5*time.Second, cfg.Challenge.GracePeriod)
	assert.Equal(t, 300*time.Millisecond, cfg.Challenge.FramePollInterval)
	assert.Equal(t, 2*time.Second, cfg.Challenge.BrowseMin)
	assert.Equal(t, 4*time.Second, cfg.Challenge.BrowseMax)
}

// TestLoadAndGet verifies the singleton load-once behavior.
func TestLoadAndGet(t *testing.T) {
	resetSingleton()

	yamlConfig := []byte(`
logger:
  level: debug
browser:
  headless: false
`)

	v := viper.New()
	SetDefaults(v)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewBuffer(yamlConfig)))

	require.NoError(t, Load(v))
	cfg := Get()
	require.NotNil(t, cfg)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.False(t, cfg.Browser.Headless)

	// Subsequent Load calls do not replace the instance.
	v2 := viper.New()
	SetDefaults(v2)
	v2.SetConfigType("yaml")
	_ = v2.ReadConfig(bytes.NewBuffer([]byte(`logger: {level: error}`)))
	require.NoError(t, Load(v2))

	cfg2 := Get()
	assert.Same(t, cfg, cfg2, "Get() should return the same instance")
	assert.Equal(t, "debug", cfg2.Logger.Level, "configuration should not be reloaded")
}

// TestConfigValidation verifies the Validate() method.
func TestConfigValidation(t *testing.T) {
	valid := func(t *testing.T) Config {
		t.Helper()
		v := viper.New()
		SetDefaults(v)
		var cfg Config
		require.NoError(t, v.Unmarshal(&cfg))
		return cfg
	}

	t.Run("defaults are valid", func(t *testing.T) {
		cfg := valid(t)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("empty marker rejected", func(t *testing.T) {
		cfg := valid(t)
		cfg.Challenge.URLMarker = ""
		assert.ErrorContains(t, cfg.Validate(), "url_marker")
	})

	t.Run("empty selectors rejected", func(t *testing.T) {
		cfg := valid(t)
		cfg.Challenge.TokenSelector = ""
		assert.ErrorContains(t, cfg.Validate(), "selectors")
	})

	t.Run("non-positive poll interval rejected", func(t *testing.T) {
		cfg := valid(t)
		cfg.Challenge.FramePollInterval = 0
		assert.ErrorContains(t, cfg.Validate(), "frame_poll_interval")
	})

	t.Run("inverted browse range rejected", func(t *testing.T) {
		cfg := valid(t)
		cfg.Challenge.BrowseMin = 5 * time.Second
		cfg.Challenge.BrowseMax = 2 * time.Second
		assert.ErrorContains(t, cfg.Validate(), "browse_max")
	})

	t.Run("inverted pre-click range rejected", func(t *testing.T) {
		cfg := valid(t)
		cfg.Challenge.PreClickMin = 400 * time.Millisecond
		cfg.Challenge.PreClickMax = 100 * time.Millisecond
		assert.ErrorContains(t, cfg.Validate(), "pre_click_max")
	})
}
