package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "Europe/London", cfg.Timezone)
	assert.Equal(t, "XXBTZGBP", cfg.Pair)
	assert.Equal(t, 4*time.Hour, cfg.CheckEvery)
	assert.Equal(t, 24*time.Hour, cfg.Cooldown)
	assert.Equal(t, 25.0, cfg.MinOrder)
	assert.Equal(t, 2, cfg.MaxBuysPerWeek)
	assert.Equal(t, 30, cfg.MaxWaitDays)
	assert.Equal(t, 0.90, cfg.MassiveBearFactor)
	assert.Equal(t, 14, cfg.Triggers.RSIPeriod)
	assert.True(t, cfg.Triggers.BearAllowRSIOnly)

	require.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("COOL_DOWN_HOURS", "12")
	t.Setenv("BEAR_RSI_EARLY", "40")
	t.Setenv("BEAR_ALLOW_RSI_ONLY", "false")

	cfg := Load()
	assert.Equal(t, 12*time.Hour, cfg.Cooldown)
	assert.Equal(t, 40.0, cfg.Triggers.BearRSIEarly)
	assert.False(t, cfg.Triggers.BearAllowRSIOnly)
}

func TestLocation(t *testing.T) {
	cfg := Load()
	assert.Equal(t, "Europe/London", cfg.Location().String())

	// An unresolvable zone degrades to UTC instead of panicking.
	cfg.Timezone = "Atlantis/Lost"
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestValidate_RejectsBadSettings(t *testing.T) {
	cases := map[string]func(*Config){
		"unknown timezone":     func(c *Config) { c.Timezone = "Atlantis/Lost" },
		"zero rsi period":      func(c *Config) { c.Triggers.RSIPeriod = 0 },
		"negative min order":   func(c *Config) { c.MinOrder = -5 },
		"fast ema above slow":  func(c *Config) { c.Triggers.FastEMAPeriod = 50 },
		"zero max wait":        func(c *Config) { c.MaxWaitDays = 0 },
		"bear factor over one": func(c *Config) { c.MassiveBearFactor = 1.5 },
		"buy day 31":           func(c *Config) { c.Backtest.BuyDay = 31 },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Load()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
