package window

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/smartdca/kraken-smart-dca/internal/regime"
	"github.com/smartdca/kraken-smart-dca/internal/triggers"
)

// Config holds the purchase-pacing settings.
type Config struct {
	MinOrder       float64
	Cooldown       time.Duration
	MaxBuysPerWeek int

	// MaxWaitDays bounds how long an open window may wait for a
	// trigger before a fallback purchase is forced. One constant for
	// every regime today; MaxWaitDaysFor keeps the door open for
	// per-regime values.
	MaxWaitDays int

	// Location sets the wall clock for the month and week buckets, so
	// "one buy per month" follows the owner's calendar rather than
	// UTC. Nil means UTC.
	Location *time.Location
}

// Executor places the actual market order. It is invoked with the
// spend amount and the verdict that authorized the purchase; any error
// leaves TraderState untouched and the window open for the next cycle.
type Executor interface {
	ExecuteBuy(ctx context.Context, spend float64, verdict triggers.Verdict) error
}

// Outcome describes what a single evaluation cycle did.
type Outcome int

const (
	OutcomeMonthDone Outcome = iota // this month already traded
	OutcomeNoFunds                  // below minimum order, window not opened
	OutcomeWaiting                  // window open, no trigger yet
	OutcomePurchased
	OutcomeAborted // cooldown, weekly cap or minimum order stopped the buy
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMonthDone:
		return "month-done"
	case OutcomeNoFunds:
		return "no-funds"
	case OutcomeWaiting:
		return "waiting"
	case OutcomePurchased:
		return "purchased"
	case OutcomeAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// CycleInput carries one evaluation cycle's inputs as plain data. All
// network I/O happens before the machine runs.
type CycleInput struct {
	Now            time.Time
	Available      float64
	DailyCloses    []float64
	FourHourCloses []float64
}

// CycleResult reports what the cycle observed and decided.
type CycleResult struct {
	Outcome       Outcome
	Regime        regime.Regime
	MassiveBear   bool
	Verdict       triggers.Verdict
	WindowAgeDays float64
	MaxWaitDays   int
	Fallback      bool
	AbortReason   string
}

// Machine is the purchase window state machine. It owns TraderState
// exclusively and serializes cycles behind a mutex so at most one
// evaluation-and-purchase sequence is ever in flight.
type Machine struct {
	mu         sync.Mutex
	cfg        Config
	classifier *regime.Classifier
	evaluator  *triggers.Evaluator
	state      TraderState
}

// NewMachine creates a machine resuming from a previously persisted
// trader state (zero value for a fresh start).
func NewMachine(cfg Config, classifier *regime.Classifier, evaluator *triggers.Evaluator, initial TraderState) *Machine {
	return &Machine{
		cfg:        cfg,
		classifier: classifier,
		evaluator:  evaluator,
		state:      initial,
	}
}

// State returns a copy of the current trader state for persistence.
func (m *Machine) State() TraderState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// MaxWaitDaysFor returns the window bound for a regime. Currently a
// single configured constant regardless of regime.
func (m *Machine) MaxWaitDaysFor(regime.Regime) int {
	return m.cfg.MaxWaitDays
}

func (m *Machine) loc() *time.Location {
	if m.cfg.Location != nil {
		return m.cfg.Location
	}
	return time.UTC
}

// RunCycle advances the state machine by one evaluation cycle:
// month gate, funds gate, window open, trigger dispatch, fallback on
// expiry. A non-nil error means external I/O failed mid-purchase; the
// state is unchanged and the next scheduled cycle retries.
func (m *Machine) RunCycle(ctx context.Context, in CycleInput, exec Executor) (CycleResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	res := CycleResult{MaxWaitDays: m.cfg.MaxWaitDays}

	if m.state.LastTradeMonth == MonthKey(in.Now.In(m.loc())) {
		res.Outcome = OutcomeMonthDone
		return res, nil
	}

	if in.Available < m.cfg.MinOrder {
		res.Outcome = OutcomeNoFunds
		return res, nil
	}

	if m.state.WindowStartedAt == nil {
		startedAt := in.Now
		m.state.WindowStartedAt = &startedAt
	}

	res.Regime = m.classifier.Classify(in.DailyCloses)
	res.MassiveBear = m.classifier.IsMassivelyBearish(in.DailyCloses)
	res.MaxWaitDays = m.MaxWaitDaysFor(res.Regime)
	res.WindowAgeDays = WindowAgeDays(in.Now, *m.state.WindowStartedAt)

	res.Verdict = m.evaluator.Evaluate(res.Regime, res.MassiveBear, in.DailyCloses, in.FourHourCloses)

	switch {
	case res.Verdict.Ok:
		// triggered purchase
	case FallbackDue(res.WindowAgeDays, res.MaxWaitDays):
		res.Fallback = true
		res.Verdict = FallbackVerdict(res.Regime, res.MassiveBear, res.WindowAgeDays, res.MaxWaitDays)
	default:
		res.Outcome = OutcomeWaiting
		return res, nil
	}

	outcome, reason, err := m.executeBuy(ctx, in.Now, in.Available, res.Verdict, exec)
	res.Outcome = outcome
	res.AbortReason = reason
	return res, err
}

// executeBuy enforces cooldown, the weekly cap and the minimum order
// size, then hands off to the executor. TraderState is committed only
// after the executor succeeds; every abort leaves the window open so
// the next cycle retries.
func (m *Machine) executeBuy(ctx context.Context, now time.Time, spend float64, verdict triggers.Verdict, exec Executor) (Outcome, string, error) {
	if !m.state.LastBuyAt.IsZero() && now.Sub(m.state.LastBuyAt) < m.cfg.Cooldown {
		return OutcomeAborted, fmt.Sprintf("cooldown active (%s since last buy)", now.Sub(m.state.LastBuyAt)), nil
	}

	weekKey := WeekKeyFor(now.In(m.loc()))
	if m.state.WeekKey != weekKey {
		m.state.WeekKey = weekKey
		m.state.WeekBuys = 0
	}
	if m.state.WeekBuys >= m.cfg.MaxBuysPerWeek {
		return OutcomeAborted, fmt.Sprintf("weekly cap reached (%d)", m.cfg.MaxBuysPerWeek), nil
	}

	if spend < m.cfg.MinOrder {
		return OutcomeAborted, fmt.Sprintf("spend %.2f below minimum order %.2f", spend, m.cfg.MinOrder), nil
	}

	if err := exec.ExecuteBuy(ctx, spend, verdict); err != nil {
		return OutcomeAborted, "executor failed", err
	}

	m.state.LastTradeMonth = MonthKey(now.In(m.loc()))
	m.state.LastBuyAt = now
	m.state.WeekBuys++
	m.state.WindowStartedAt = nil
	return OutcomePurchased, "", nil
}

// FallbackVerdict builds the verdict recorded for a forced purchase
// after the window outlived its maximum wait. The live machine and the
// backtest replay both use it so fallback purchases are labelled the
// same way in either mode.
func FallbackVerdict(reg regime.Regime, massive bool, ageDays float64, maxWaitDays int) triggers.Verdict {
	label := reg.String()
	if massive {
		label += "|massive"
	}
	return triggers.Verdict{
		Ok:   true,
		Rule: "fallback/" + label,
		Conditions: []triggers.Condition{
			{
				Name:   "window-expired",
				Met:    true,
				Detail: fmt.Sprintf("window age %.2fd >= max %dd", ageDays, maxWaitDays),
			},
		},
	}
}
