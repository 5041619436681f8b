package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/smartdca/kraken-smart-dca/internal/config"
	boterrors "github.com/smartdca/kraken-smart-dca/internal/errors"
	"github.com/smartdca/kraken-smart-dca/internal/exchange"
	"github.com/smartdca/kraken-smart-dca/internal/exchange/kraken"
	"github.com/smartdca/kraken-smart-dca/internal/logger"
	"github.com/smartdca/kraken-smart-dca/internal/monitoring"
	"github.com/smartdca/kraken-smart-dca/internal/notifications"
	"github.com/smartdca/kraken-smart-dca/internal/regime"
	"github.com/smartdca/kraken-smart-dca/internal/series"
	"github.com/smartdca/kraken-smart-dca/internal/state"
	"github.com/smartdca/kraken-smart-dca/internal/triggers"
	"github.com/smartdca/kraken-smart-dca/internal/window"
	"github.com/smartdca/kraken-smart-dca/pkg/types"
)

// Buffer capacities. Daily must cover the 200-bar regime window with
// headroom; the hourly buffer only backs the last-price reading and is
// pruned to a day.
const (
	dailyBufferMax    = 400
	fourHourBufferMax = 800
	hourlyBufferMax   = 48
	hourlyRetention   = 24 * time.Hour
)

// dryConsumer is implemented by the exchange client in dry-run mode to
// settle simulated purchases against its in-memory balances.
type dryConsumer interface {
	DryConsume(quoteSpent, baseBought float64)
}

// LiveBot runs the periodic evaluation loop: it owns the candle
// buffers the feed writes into, hands snapshots to the purchase window
// machine and executes the buys the machine authorizes.
type LiveBot struct {
	cfg      *config.Config
	exchange exchange.Exchange
	machine  *window.Machine
	store    *state.Store
	notifier notifications.Notifier
	log      *logger.Logger
	health   *monitoring.HealthChecker

	daily    *series.Buffer
	fourHour *series.Buffer
	hourly   *series.Buffer

	// lastBuy carries execution details from ExecuteBuy back to the
	// cycle that requested it. Safe without a lock: the machine
	// serializes cycles and calls the executor synchronously.
	lastBuy *executedBuy
}

type executedBuy struct {
	txID   string
	price  float64
	spend  float64
	volume float64
}

// New creates a live bot resuming from the persisted trader state.
func New(cfg *config.Config, ex exchange.Exchange, notifier notifications.Notifier, log *logger.Logger, health *monitoring.HealthChecker) *LiveBot {
	store := state.NewStore(cfg.StatePath)

	machine := window.NewMachine(window.Config{
		MinOrder:       cfg.MinOrder,
		Cooldown:       cfg.Cooldown,
		MaxBuysPerWeek: cfg.MaxBuysPerWeek,
		MaxWaitDays:    cfg.MaxWaitDays,
		Location:       cfg.Location(),
	}, regime.NewClassifier(cfg.MassiveBearFactor), triggers.NewEvaluator(cfg.Triggers), store.Load())

	return &LiveBot{
		cfg:      cfg,
		exchange: ex,
		machine:  machine,
		store:    store,
		notifier: notifier,
		log:      log,
		health:   health,
		daily:    series.NewBuffer(dailyBufferMax),
		fourHour: series.NewBuffer(fourHourBufferMax),
		hourly:   series.NewBuffer(hourlyBufferMax),
	}
}

// SeedHistory fills the candle buffers from REST before the live feed
// takes over.
func (b *LiveBot) SeedHistory(ctx context.Context) error {
	now := time.Now().UTC()

	daily, err := b.exchange.GetOHLC(ctx, b.cfg.Pair, 1440, now.AddDate(0, 0, -dailyBufferMax))
	if err != nil {
		return fmt.Errorf("seed daily history: %w", err)
	}
	b.daily.Seed(daily)

	fourHour, err := b.exchange.GetOHLC(ctx, b.cfg.Pair, 240, now.AddDate(0, 0, -fourHourBufferMax/6))
	if err != nil {
		return fmt.Errorf("seed 4h history: %w", err)
	}
	b.fourHour.Seed(fourHour)

	hourly, err := b.exchange.GetOHLC(ctx, b.cfg.Pair, 60, now.Add(-hourlyRetention))
	if err != nil {
		return fmt.Errorf("seed 1h history: %w", err)
	}
	b.hourly.Seed(hourly)

	b.log.Info("history seeded: %d daily, %d 4h, %d 1h candles",
		b.daily.Len(), b.fourHour.Len(), b.hourly.Len())
	return nil
}

// HandleOHLC routes a live candle update into the matching buffer.
// Wired as the websocket stream's handler.
func (b *LiveBot) HandleOHLC(intervalMinutes int, candle types.Candle) {
	switch intervalMinutes {
	case 1440:
		b.daily.Upsert(candle)
	case 240:
		b.fourHour.Upsert(candle)
	case 60:
		b.hourly.Upsert(candle)
		b.hourly.PruneOlderThan(time.Now().UTC().Add(-hourlyRetention))
		monitoring.UpdatePrice(b.cfg.DisplayPair, candle.Close)
	}
	b.health.SetConnected(true)
}

// Run seeds history and then evaluates on the configured interval
// until the context is cancelled.
func (b *LiveBot) Run(ctx context.Context) error {
	if err := b.SeedHistory(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(b.cfg.CheckEvery)
	defer ticker.Stop()

	b.runCycle(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			b.runCycle(ctx)
		}
	}
}

// runCycle performs one evaluation cycle: fetch balance, snapshot the
// buffers, run the window machine and persist whatever it decided.
func (b *LiveBot) runCycle(ctx context.Context) {
	balances, err := b.exchange.GetBalance(ctx)
	if err != nil {
		b.log.LogError("balance fetch", err)
		b.health.RecordError(err.Error())
		monitoring.RecordError("balance")
		return
	}

	input := window.CycleInput{
		Now:            time.Now().UTC(),
		Available:      balances[b.cfg.QuoteAsset],
		DailyCloses:    b.daily.Closes(),
		FourHourCloses: b.fourHour.Closes(),
	}

	b.lastBuy = nil
	res, err := b.machine.RunCycle(ctx, input, b)
	if err != nil {
		b.log.LogError("purchase execution", err)
		b.health.RecordError(err.Error())
		monitoring.RecordError("execution")
		return
	}

	b.log.LogCycle(res.Outcome.String(), regimeLabel(res), res.Verdict.String(), res.WindowAgeDays)
	if res.AbortReason != "" {
		b.log.Warning("purchase aborted: %s", res.AbortReason)
	}

	monitoring.UpdateRegime(b.cfg.DisplayPair, int(res.Regime))
	monitoring.UpdateWindowAge(b.cfg.DisplayPair, res.WindowAgeDays)

	lastPrice := 0.0
	if closes := b.hourly.Closes(); len(closes) > 0 {
		lastPrice = closes[len(closes)-1]
	}
	b.health.RecordCycle(lastPrice)

	if res.Outcome == window.OutcomePurchased && b.lastBuy != nil {
		b.reportPurchase(res, *b.lastBuy)
	}

	if err := b.store.Save(b.machine.State()); err != nil {
		b.log.LogError("state save", err)
	}
}

// ExecuteBuy implements window.Executor: price the spend against the
// current ask, place the market order and settle dry-run balances.
func (b *LiveBot) ExecuteBuy(ctx context.Context, spend float64, verdict triggers.Verdict) error {
	ticker, err := b.exchange.GetTicker(ctx, b.cfg.Pair)
	if err != nil {
		return boterrors.Wrap(err, categoryFor(err), "bot", "fetch_ticker")
	}
	if ticker.Ask <= 0 {
		return boterrors.NewValidationError("bot", "execute_buy",
			fmt.Sprintf("ticker ask %.2f is not a usable price", ticker.Ask))
	}

	volume := spend / ticker.Ask * (1 - b.cfg.FeeBuffer)
	txID, err := b.exchange.PlaceMarketBuy(ctx, b.cfg.Pair, volume)
	if err != nil {
		return boterrors.Wrap(err, categoryFor(err), "bot", "place_order")
	}

	if dc, ok := b.exchange.(dryConsumer); ok {
		dc.DryConsume(spend, volume)
	}

	b.lastBuy = &executedBuy{txID: txID, price: ticker.Ask, spend: spend, volume: volume}
	return nil
}

func (b *LiveBot) reportPurchase(res window.CycleResult, buy executedBuy) {
	kind := "triggered"
	if res.Fallback {
		kind = "fallback"
	}
	monitoring.RecordPurchase(b.cfg.DisplayPair, kind, buy.spend)
	b.log.LogPurchase(res.Verdict.Rule, buy.txID, buy.price, buy.spend, buy.volume, res.Fallback)

	msg := notifications.FormatPurchase(notifications.PurchaseEvent{
		Pair:        b.cfg.DisplayPair,
		DryRun:      b.cfg.DryRun,
		Fallback:    res.Fallback,
		Regime:      res.Regime,
		MassiveBear: res.MassiveBear,
		Price:       buy.price,
		Spend:       buy.spend,
		Volume:      buy.volume,
		TxID:        buy.txID,
		Verdict:     res.Verdict,
	})
	if err := b.notifier.SendAlert("success", msg); err != nil {
		b.log.LogError("purchase notification", err)
		monitoring.RecordError("notification")
	}
}

// State exposes the machine state for shutdown persistence.
func (b *LiveBot) State() window.TraderState {
	return b.machine.State()
}

// categoryFor separates the exchange rejecting a request from the
// exchange being unreachable.
func categoryFor(err error) boterrors.ErrorCategory {
	if kraken.IsAPIError(err) {
		return boterrors.ErrorCategoryExchange
	}
	return boterrors.ErrorCategoryNetwork
}

func regimeLabel(res window.CycleResult) string {
	label := res.Regime.String()
	if res.MassiveBear {
		label += "|massive"
	}
	if res.Fallback {
		label += " fallback"
	}
	return label
}
