package config

import (
	"os"
	"strconv"
	"time"

	"github.com/smartdca/kraken-smart-dca/internal/errors"
	"github.com/smartdca/kraken-smart-dca/internal/triggers"
)

// Config carries every tunable as a named setting, built once at
// startup and passed into each component. Decision functions never
// read the environment themselves.
type Config struct {
	Timezone string
	DryRun   bool

	// Pair is the Kraken REST pair code; DisplayPair is the websocket
	// subscription name for the same market.
	Pair        string
	DisplayPair string
	QuoteAsset  string

	CheckEvery     time.Duration
	FeeBuffer      float64
	MinOrder       float64
	Cooldown       time.Duration
	MaxBuysPerWeek int
	MaxWaitDays    int

	MassiveBearFactor float64
	Triggers          triggers.Config

	StatePath  string
	DryBalance float64

	Kraken struct {
		BaseURL   string
		WSURL     string
		APIKey    string
		APISecret string
	}

	Notifications struct {
		TelegramToken  string
		TelegramChatID string
	}

	Monitoring struct {
		MetricsPort int
		HealthPort  int
	}

	Backtest struct {
		Years   int
		Deposit float64
		BuyDay  int
		BuyTime string // HH:MM, UTC
	}
}

// Load builds the configuration from the environment with the stock
// defaults.
func Load() *Config {
	cfg := &Config{
		Timezone: getEnv("TIMEZONE", "Europe/London"),
		DryRun:   getEnv("DRY_RUN", "0") == "1",

		Pair:        getEnv("PAIR", "XXBTZGBP"),
		DisplayPair: getEnv("DISPLAY_PAIR", "XBT/GBP"),
		QuoteAsset:  getEnv("QUOTE_ASSET", "ZGBP"),

		CheckEvery:     getEnvHours("CHECK_BALANCE_EVERY_HOURS", 4),
		FeeBuffer:      getEnvFloat("FEE_BUFFER", 0.0015),
		MinOrder:       getEnvFloat("MIN_GBP_ORDER", 25),
		Cooldown:       getEnvHours("COOL_DOWN_HOURS", 24),
		MaxBuysPerWeek: getEnvInt("MAX_BUYS_PER_WEEK", 2),
		MaxWaitDays:    getEnvInt("NONBULL_MAX_WAIT_DAYS", 30),

		MassiveBearFactor: getEnvFloat("MASSIVE_BEAR_SMA_FACTOR", 0.90),

		StatePath:  getEnv("STATE_PATH", "state.json"),
		DryBalance: getEnvFloat("DRY_BALANCE_GBP", 50),
	}

	cfg.Triggers = loadTriggerConfig()

	cfg.Kraken.BaseURL = getEnv("KRAKEN_BASE", "https://api.kraken.com")
	cfg.Kraken.WSURL = getEnv("KRAKEN_WS", "wss://ws.kraken.com/")
	cfg.Kraken.APIKey = getEnv("KRAKEN_API_KEY", "")
	cfg.Kraken.APISecret = getEnv("KRAKEN_API_SECRET", "")

	cfg.Notifications.TelegramToken = getEnv("TELEGRAM_TOKEN", "")
	cfg.Notifications.TelegramChatID = getEnv("TELEGRAM_CHAT_ID", "")

	cfg.Monitoring.MetricsPort = getEnvInt("PROMETHEUS_PORT", 8080)
	cfg.Monitoring.HealthPort = getEnvInt("HEALTH_PORT", 8081)

	cfg.Backtest.Years = getEnvInt("BACKTEST_YEARS", 2)
	cfg.Backtest.Deposit = getEnvFloat("BACKTEST_DEPOSIT", 100)
	cfg.Backtest.BuyDay = getEnvInt("BACKTEST_BUY_DAY", 25)
	cfg.Backtest.BuyTime = getEnv("BACKTEST_BUY_TIME", "12:00")

	return cfg
}

func loadTriggerConfig() triggers.Config {
	t := triggers.DefaultConfig()
	t.RSIPeriod = getEnvInt("RSI_PERIOD", t.RSIPeriod)
	t.BBPeriod = getEnvInt("BB_PERIOD", t.BBPeriod)
	t.BBStdDev = getEnvFloat("BB_STDDEV", t.BBStdDev)
	t.FastEMAPeriod = getEnvInt("FAST_EMA", t.FastEMAPeriod)
	t.SlowEMAPeriod = getEnvInt("SLOW_EMA", t.SlowEMAPeriod)
	t.BullRSIMax = getEnvFloat("BULL_RSI_MAX", t.BullRSIMax)
	t.BullPullbackPct = getEnvFloat("BULL_PULLBACK_PCT", t.BullPullbackPct)
	t.SidewaysRSIMax = getEnvFloat("SIDEWAYS_RSI_MAX", t.SidewaysRSIMax)
	t.BearRSIMax = getEnvFloat("BEAR_RSI_MAX", t.BearRSIMax)
	t.BearRSIEarly = getEnvFloat("BEAR_RSI_EARLY", t.BearRSIEarly)
	t.BearAllowRSIOnly = getEnv("BEAR_ALLOW_RSI_ONLY", "true") == "true"
	t.BearAllowLowerBBOnly = getEnv("BEAR_ALLOW_LOWER_BB_ONLY", "true") == "true"
	t.BearBelowSMAPct = getEnvFloat("BEAR_BELOW_SMA_PCT", t.BearBelowSMAPct)
	return t
}

// Location resolves the configured timezone for the monthly and weekly
// purchase buckets. Validate has already vetted the name, so an
// unknown zone here falls back to UTC.
func (c *Config) Location() *time.Location {
	if loc, err := time.LoadLocation(c.Timezone); err == nil {
		return loc
	}
	return time.UTC
}

// Validate refuses to run with settings that would silently misbehave.
func (c *Config) Validate() error {
	_, tzErr := time.LoadLocation(c.Timezone)

	checks := []struct {
		ok      bool
		message string
	}{
		{tzErr == nil, "TIMEZONE must name a valid IANA timezone"},
		{c.Pair != "", "PAIR must not be empty"},
		{c.CheckEvery > 0, "CHECK_BALANCE_EVERY_HOURS must be positive"},
		{c.FeeBuffer >= 0 && c.FeeBuffer < 1, "FEE_BUFFER must be in [0,1)"},
		{c.MinOrder > 0, "MIN_GBP_ORDER must be positive"},
		{c.Cooldown >= 0, "COOL_DOWN_HOURS must not be negative"},
		{c.MaxBuysPerWeek > 0, "MAX_BUYS_PER_WEEK must be positive"},
		{c.MaxWaitDays > 0, "NONBULL_MAX_WAIT_DAYS must be positive"},
		{c.MassiveBearFactor > 0 && c.MassiveBearFactor < 1, "MASSIVE_BEAR_SMA_FACTOR must be in (0,1)"},
		{c.Triggers.RSIPeriod > 0, "RSI_PERIOD must be positive"},
		{c.Triggers.BBPeriod > 0, "BB_PERIOD must be positive"},
		{c.Triggers.BBStdDev > 0, "BB_STDDEV must be positive"},
		{c.Triggers.FastEMAPeriod > 0, "FAST_EMA must be positive"},
		{c.Triggers.SlowEMAPeriod > c.Triggers.FastEMAPeriod, "SLOW_EMA must exceed FAST_EMA"},
		{c.Triggers.SMAPeriod > 0, "SMA period must be positive"},
		{c.Backtest.Years > 0, "BACKTEST_YEARS must be positive"},
		{c.Backtest.Deposit > 0, "BACKTEST_DEPOSIT must be positive"},
		{c.Backtest.BuyDay >= 1 && c.Backtest.BuyDay <= 28, "BACKTEST_BUY_DAY must be within 1..28"},
	}

	for _, check := range checks {
		if !check.ok {
			return errors.NewConfigurationError("config", check.message)
		}
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvHours(key string, defaultHours float64) time.Duration {
	hours := getEnvFloat(key, defaultHours)
	return time.Duration(hours * float64(time.Hour))
}
