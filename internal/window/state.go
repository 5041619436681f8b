package window

import (
	"fmt"
	"time"
)

// TraderState is the persisted aggregate owned by the purchase window
// state machine. It is mutated only as a side effect of a completed
// evaluation cycle or an executed purchase, and it survives restarts
// through the state store.
type TraderState struct {
	LastTradeMonth  string     `json:"last_trade_month"`
	LastBuyAt       time.Time  `json:"last_buy_at"`
	WeekKey         string     `json:"week_key"`
	WeekBuys        int        `json:"week_buys"`
	WindowStartedAt *time.Time `json:"window_started_at,omitempty"`
}

// MonthKey returns the calendar-month bucket used for the
// one-purchase-per-month gate.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// WeekKeyFor returns the ISO-week bucket used for the weekly buy cap.
func WeekKeyFor(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// WindowAgeDays measures how long a purchase window has been open, in
// fractional days.
func WindowAgeDays(now, startedAt time.Time) float64 {
	return now.Sub(startedAt).Hours() / 24
}

// FallbackDue reports whether an open window has outlived its maximum
// wait and must force a fallback purchase. The live machine and the
// backtest replay share this test so their window semantics cannot
// drift apart.
func FallbackDue(ageDays float64, maxWaitDays int) bool {
	return ageDays >= float64(maxWaitDays)
}
