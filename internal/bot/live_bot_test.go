package bot

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartdca/kraken-smart-dca/internal/config"
	"github.com/smartdca/kraken-smart-dca/internal/logger"
	"github.com/smartdca/kraken-smart-dca/internal/monitoring"
	"github.com/smartdca/kraken-smart-dca/internal/triggers"
	"github.com/smartdca/kraken-smart-dca/pkg/types"
)

type stubExchange struct {
	candlesByInterval map[int][]types.Candle
	balances          map[string]float64
	ticker            *types.Ticker
	tickerErr         error
	buyErr            error

	boughtVolumes []float64
	dryConsumed   bool
}

func (s *stubExchange) GetTicker(ctx context.Context, pair string) (*types.Ticker, error) {
	if s.tickerErr != nil {
		return nil, s.tickerErr
	}
	return s.ticker, nil
}

func (s *stubExchange) GetOHLC(ctx context.Context, pair string, intervalMinutes int, since time.Time) ([]types.Candle, error) {
	return s.candlesByInterval[intervalMinutes], nil
}

func (s *stubExchange) GetBalance(ctx context.Context) (map[string]float64, error) {
	return s.balances, nil
}

func (s *stubExchange) PlaceMarketBuy(ctx context.Context, pair string, volume float64) (string, error) {
	if s.buyErr != nil {
		return "", s.buyErr
	}
	s.boughtVolumes = append(s.boughtVolumes, volume)
	return "tx-1", nil
}

func (s *stubExchange) DryConsume(quoteSpent, baseBought float64) {
	s.dryConsumed = true
}

type recordingNotifier struct {
	levels   []string
	messages []string
}

func (r *recordingNotifier) SendAlert(level, message string) error {
	r.levels = append(r.levels, level)
	r.messages = append(r.messages, message)
	return nil
}

func testConfig() *config.Config {
	cfg := &config.Config{
		DryRun:            true,
		Pair:              "XXBTZGBP",
		DisplayPair:       "XBT/GBP",
		QuoteAsset:        "ZGBP",
		CheckEvery:        4 * time.Hour,
		FeeBuffer:         0.0015,
		MinOrder:          25,
		Cooldown:          24 * time.Hour,
		MaxBuysPerWeek:    2,
		MaxWaitDays:       30,
		MassiveBearFactor: 0.90,
		Triggers:          triggers.DefaultConfig(),
		StatePath:         "state.json",
	}
	return cfg
}

func candlesFromCloses(start time.Time, step time.Duration, closes []float64) []types.Candle {
	out := make([]types.Candle, len(closes))
	for i, c := range closes {
		out[i] = types.Candle{Time: start.Add(time.Duration(i) * step), Close: c}
	}
	return out
}

// Daily makes sideways RSI and lower band fire; the 4h spike produces
// a fresh fast-over-slow cross.
func triggeringCandles() (daily, fourHour []types.Candle) {
	dailyCloses := make([]float64, 60)
	fourHourCloses := make([]float64, 60)
	for i := range dailyCloses {
		dailyCloses[i] = 100
		fourHourCloses[i] = 100
	}
	dailyCloses[59] = 80
	fourHourCloses[59] = 110

	now := time.Now().UTC()
	daily = candlesFromCloses(now.AddDate(0, 0, -60), 24*time.Hour, dailyCloses)
	fourHour = candlesFromCloses(now.Add(-60*4*time.Hour), 4*time.Hour, fourHourCloses)
	return daily, fourHour
}

func newTestBot(t *testing.T, cfg *config.Config, ex *stubExchange, n *recordingNotifier) *LiveBot {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	log, err := logger.NewLogger(cfg.DisplayPair)
	require.NoError(t, err)
	t.Cleanup(func() { log.Close() })

	return New(cfg, ex, n, log, monitoring.NewHealthChecker())
}

func TestSeedHistory(t *testing.T) {
	now := time.Now().UTC()
	ex := &stubExchange{
		candlesByInterval: map[int][]types.Candle{
			1440: candlesFromCloses(now.AddDate(0, 0, -10), 24*time.Hour, []float64{1, 2, 3}),
			240:  candlesFromCloses(now.Add(-40*time.Hour), 4*time.Hour, []float64{1, 2, 3, 4}),
			60:   candlesFromCloses(now.Add(-5*time.Hour), time.Hour, []float64{1, 2}),
		},
	}
	b := newTestBot(t, testConfig(), ex, &recordingNotifier{})

	require.NoError(t, b.SeedHistory(context.Background()))
	assert.Equal(t, 3, b.daily.Len())
	assert.Equal(t, 4, b.fourHour.Len())
	assert.Equal(t, 2, b.hourly.Len())
}

func TestHandleOHLC_RoutesAndPrunes(t *testing.T) {
	b := newTestBot(t, testConfig(), &stubExchange{}, &recordingNotifier{})
	now := time.Now().UTC()

	b.HandleOHLC(1440, types.Candle{Time: now, Close: 100})
	b.HandleOHLC(240, types.Candle{Time: now, Close: 101})
	b.HandleOHLC(60, types.Candle{Time: now.Add(-48 * time.Hour), Close: 99})
	b.HandleOHLC(60, types.Candle{Time: now, Close: 102})

	assert.Equal(t, 1, b.daily.Len())
	assert.Equal(t, 1, b.fourHour.Len())
	// The two-day-old hourly candle was pruned.
	assert.Equal(t, 1, b.hourly.Len())
	assert.Equal(t, []float64{102}, b.hourly.Closes())
}

func TestHandleOHLC_UpsertsFormingBar(t *testing.T) {
	b := newTestBot(t, testConfig(), &stubExchange{}, &recordingNotifier{})
	barTime := time.Now().UTC()

	b.HandleOHLC(1440, types.Candle{Time: barTime, Close: 100})
	b.HandleOHLC(1440, types.Candle{Time: barTime, Close: 105})

	assert.Equal(t, 1, b.daily.Len())
	assert.Equal(t, []float64{105}, b.daily.Closes())
}

func TestRunCycle_ExecutesTriggeredPurchase(t *testing.T) {
	cfg := testConfig()
	notifier := &recordingNotifier{}
	ex := &stubExchange{
		balances: map[string]float64{"ZGBP": 50},
		ticker:   &types.Ticker{Pair: cfg.Pair, Ask: 50000, Bid: 49900, Last: 49950},
	}
	b := newTestBot(t, cfg, ex, notifier)

	daily, fourHour := triggeringCandles()
	b.daily.Seed(daily)
	b.fourHour.Seed(fourHour)

	b.runCycle(context.Background())

	require.Len(t, ex.boughtVolumes, 1)
	assert.InDelta(t, 50.0/50000*(1-cfg.FeeBuffer), ex.boughtVolumes[0], 1e-12)
	assert.True(t, ex.dryConsumed)

	st := b.State()
	assert.Equal(t, time.Now().UTC().Format("2006-01"), st.LastTradeMonth)
	assert.Nil(t, st.WindowStartedAt)

	require.Len(t, notifier.messages, 1)
	assert.Equal(t, "success", notifier.levels[0])
	assert.Contains(t, notifier.messages[0], "sideways")
	assert.Contains(t, notifier.messages[0], "tx-1")
}

func TestRunCycle_TickerFailureLeavesWindowOpen(t *testing.T) {
	cfg := testConfig()
	ex := &stubExchange{
		balances:  map[string]float64{"ZGBP": 50},
		tickerErr: errors.New("kraken unavailable"),
	}
	b := newTestBot(t, cfg, ex, &recordingNotifier{})

	daily, fourHour := triggeringCandles()
	b.daily.Seed(daily)
	b.fourHour.Seed(fourHour)

	b.runCycle(context.Background())

	assert.Empty(t, ex.boughtVolumes)
	st := b.State()
	assert.Empty(t, st.LastTradeMonth)
	assert.NotNil(t, st.WindowStartedAt)
}

func TestRunCycle_NoFundsDoesNotBuy(t *testing.T) {
	cfg := testConfig()
	ex := &stubExchange{
		balances: map[string]float64{"ZGBP": 10},
		ticker:   &types.Ticker{Ask: 50000},
	}
	b := newTestBot(t, cfg, ex, &recordingNotifier{})

	daily, fourHour := triggeringCandles()
	b.daily.Seed(daily)
	b.fourHour.Seed(fourHour)

	b.runCycle(context.Background())

	assert.Empty(t, ex.boughtVolumes)
	assert.Nil(t, b.State().WindowStartedAt)
}
