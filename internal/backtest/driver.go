package backtest

import (
	"fmt"
	"sort"
	"time"

	"github.com/smartdca/kraken-smart-dca/internal/regime"
	"github.com/smartdca/kraken-smart-dca/internal/triggers"
	"github.com/smartdca/kraken-smart-dca/internal/window"
	"github.com/smartdca/kraken-smart-dca/pkg/types"
)

// Config holds the replay parameters.
type Config struct {
	Deposit     float64 // quote currency spent per monthly cycle
	FeeBuffer   float64 // fraction shaved off acquired volume for fees
	BuyDay      int     // day of month the window opens, 1..28
	BuyTime     string  // time of day the window opens, "HH:MM" UTC
	MaxWaitDays int     // window bound before the fallback purchase
}

// Purchase is one simulated buy, either triggered or forced by window
// expiry.
type Purchase struct {
	Anchor      time.Time
	Time        time.Time
	Price       float64
	Cost        float64
	Volume      float64
	Regime      regime.Regime
	MassiveBear bool
	Fallback    bool
	WaitDays    float64
	Verdict     triggers.Verdict
}

// Baseline is the plain monthly purchase series used as the benchmark:
// the same deposit bought at every anchor with no timing at all.
type Baseline struct {
	TotalInvested float64
	TotalVolume   float64
	FinalValue    float64
	ReturnPct     float64
}

// Result aggregates a full replay.
type Result struct {
	Purchases     []Purchase
	TotalInvested float64
	TotalVolume   float64
	FinalPrice    float64
	FinalValue    float64
	ReturnPct     float64
	Baseline      Baseline

	// EdgePct is the strategy's return minus the baseline's, in
	// percentage points.
	EdgePct float64
}

// Driver replays historical candles through the same classifier and
// evaluator the live engine runs. The regime is fixed at each monthly
// anchor, then the driver walks forward day by day re-evaluating
// triggers until one fires or the window expires.
type Driver struct {
	cfg        Config
	classifier *regime.Classifier
	evaluator  *triggers.Evaluator
}

func NewDriver(cfg Config, classifier *regime.Classifier, evaluator *triggers.Evaluator) *Driver {
	return &Driver{cfg: cfg, classifier: classifier, evaluator: evaluator}
}

// Run simulates every monthly cycle covered by the daily series. The
// four-hour series feeds the confirmation triggers and the baseline
// fill prices; it may be empty, in which case confirmation-dependent
// paths simply never fire.
func (d *Driver) Run(daily, fourHour []types.Candle) (*Result, error) {
	if len(daily) == 0 {
		return nil, fmt.Errorf("backtest needs at least one daily candle")
	}
	hour, minute, err := parseBuyTime(d.cfg.BuyTime)
	if err != nil {
		return nil, err
	}

	dailyIdx := newSeriesIndex(daily)
	fourIdx := newSeriesIndex(fourHour)

	res := &Result{FinalPrice: daily[len(daily)-1].Close}

	anchors := monthlyAnchors(daily[0].Time, daily[len(daily)-1].Time, d.cfg.BuyDay, hour, minute)
	for _, anchor := range anchors {
		p := d.simulateCycle(anchor, daily, dailyIdx, fourIdx)
		res.Purchases = append(res.Purchases, p)
		res.TotalInvested += p.Cost
		res.TotalVolume += p.Volume

		if price, ok := nearestClose(fourIdx, anchor); ok {
			res.Baseline.TotalInvested += d.cfg.Deposit
			res.Baseline.TotalVolume += d.acquiredVolume(price)
		} else if price, ok := nearestClose(dailyIdx, anchor); ok {
			res.Baseline.TotalInvested += d.cfg.Deposit
			res.Baseline.TotalVolume += d.acquiredVolume(price)
		}
	}

	res.FinalValue = res.TotalVolume * res.FinalPrice
	res.ReturnPct = returnPct(res.FinalValue, res.TotalInvested)
	res.Baseline.FinalValue = res.Baseline.TotalVolume * res.FinalPrice
	res.Baseline.ReturnPct = returnPct(res.Baseline.FinalValue, res.Baseline.TotalInvested)
	res.EdgePct = res.ReturnPct - res.Baseline.ReturnPct
	return res, nil
}

// simulateCycle runs one monthly window: classify at the anchor, walk
// forward re-evaluating triggers with the anchor regime held fixed,
// fall back when the window expires.
func (d *Driver) simulateCycle(anchor time.Time, daily []types.Candle, dailyIdx, fourIdx seriesIndex) Purchase {
	anchorCloses := dailyIdx.upTo(anchor)
	reg := d.classifier.Classify(anchorCloses)
	massive := d.classifier.IsMassivelyBearish(anchorCloses)
	maxWait := d.maxWaitDaysFor(reg)

	start := sort.Search(len(daily), func(i int) bool { return !daily[i].Time.Before(anchor) })
	for i := start; i < len(daily); i++ {
		candle := daily[i]
		verdict := d.evaluator.Evaluate(reg, massive, dailyIdx.closes[:i+1], fourIdx.upTo(candle.Time))
		if verdict.Ok {
			return d.record(anchor, candle, reg, massive, false, verdict)
		}
		// Same precedence as the live cycle: an ok verdict outranks a
		// due fallback, so the window-end candle is still evaluated.
		if window.FallbackDue(window.WindowAgeDays(candle.Time, anchor), maxWait) {
			break
		}
	}

	windowEnd := anchor.AddDate(0, 0, maxWait)
	fill := fallbackFill(daily, windowEnd)
	age := window.WindowAgeDays(fill.Time, anchor)
	return d.record(anchor, fill, reg, massive, true, window.FallbackVerdict(reg, massive, age, maxWait))
}

func (d *Driver) record(anchor time.Time, candle types.Candle, reg regime.Regime, massive, fallback bool, verdict triggers.Verdict) Purchase {
	return Purchase{
		Anchor:      anchor,
		Time:        candle.Time,
		Price:       candle.Close,
		Cost:        d.cfg.Deposit,
		Volume:      d.acquiredVolume(candle.Close),
		Regime:      reg,
		MassiveBear: massive,
		Fallback:    fallback,
		WaitDays:    window.WindowAgeDays(candle.Time, anchor),
		Verdict:     verdict,
	}
}

// maxWaitDaysFor mirrors the live machine: one configured bound
// regardless of regime, kept behind a method for per-regime values
// later.
func (d *Driver) maxWaitDaysFor(regime.Regime) int {
	return d.cfg.MaxWaitDays
}

func (d *Driver) acquiredVolume(price float64) float64 {
	return d.cfg.Deposit / price * (1 - d.cfg.FeeBuffer)
}

// fallbackFill picks the first daily candle at or after the window end,
// or the last available candle when the series ends first.
func fallbackFill(daily []types.Candle, windowEnd time.Time) types.Candle {
	i := sort.Search(len(daily), func(i int) bool { return !daily[i].Time.Before(windowEnd) })
	if i == len(daily) {
		return daily[len(daily)-1]
	}
	return daily[i]
}

// monthlyAnchors lists every window-open instant inside [start, end].
func monthlyAnchors(start, end time.Time, day, hour, minute int) []time.Time {
	var anchors []time.Time
	cursor := time.Date(start.Year(), start.Month(), day, hour, minute, 0, 0, time.UTC)
	if cursor.Before(start) {
		cursor = cursor.AddDate(0, 1, 0)
	}
	for !cursor.After(end) {
		anchors = append(anchors, cursor)
		cursor = cursor.AddDate(0, 1, 0)
	}
	return anchors
}

func parseBuyTime(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("parse buy time %q: %w", s, err)
	}
	return t.Hour(), t.Minute(), nil
}

func returnPct(finalValue, invested float64) float64 {
	if invested == 0 {
		return 0
	}
	return (finalValue - invested) / invested * 100
}

// seriesIndex is a time-sorted view over candles for cheap
// "closes up to t" slicing during the walk.
type seriesIndex struct {
	times  []time.Time
	closes []float64
}

func newSeriesIndex(candles []types.Candle) seriesIndex {
	idx := seriesIndex{
		times:  make([]time.Time, len(candles)),
		closes: make([]float64, len(candles)),
	}
	for i, c := range candles {
		idx.times[i] = c.Time
		idx.closes[i] = c.Close
	}
	return idx
}

// upTo returns the closes at or before t. The returned slice aliases
// the index and must not be mutated.
func (s seriesIndex) upTo(t time.Time) []float64 {
	i := sort.Search(len(s.times), func(i int) bool { return s.times[i].After(t) })
	return s.closes[:i]
}

// nearestClose finds the close whose timestamp is closest to t.
func nearestClose(s seriesIndex, t time.Time) (float64, bool) {
	if len(s.times) == 0 {
		return 0, false
	}
	i := sort.Search(len(s.times), func(i int) bool { return !s.times[i].Before(t) })
	switch i {
	case 0:
		return s.closes[0], true
	case len(s.times):
		return s.closes[len(s.closes)-1], true
	}
	if s.times[i].Sub(t) < t.Sub(s.times[i-1]) {
		return s.closes[i], true
	}
	return s.closes[i-1], true
}
