package regime

import (
	"github.com/smartdca/kraken-smart-dca/internal/indicators"
)

const (
	shortWindow = 50
	longWindow  = 200

	// The ±2% band is hysteresis against oscillation near the crossover.
	bullFactor = 1.02
	bearFactor = 0.98
)

// Classifier labels a daily closing series as bullish, bearish or
// sideways, and separately flags deeply depressed bearish markets.
type Classifier struct {
	shortSMA *indicators.SMA
	longSMA  *indicators.SMA

	// MassiveBearFactor is the fraction of the 200-day SMA below which
	// a bearish market counts as massively bearish.
	massiveBearFactor float64
}

// NewClassifier creates a classifier with the given massive-bear
// factor (the latest close must be at or below factor x SMA200).
func NewClassifier(massiveBearFactor float64) *Classifier {
	return &Classifier{
		shortSMA:          indicators.NewSMA(shortWindow),
		longSMA:           indicators.NewSMA(longWindow),
		massiveBearFactor: massiveBearFactor,
	}
}

// Classify labels the regime from the 50/200-day moving averages.
// With fewer than 200 closes it returns Sideways as a conservative
// data-insufficiency fallback, not a market judgment.
func (c *Classifier) Classify(dailyCloses []float64) Regime {
	ma50, err := c.shortSMA.Calculate(dailyCloses)
	if err != nil {
		return Sideways
	}
	ma200, err := c.longSMA.Calculate(dailyCloses)
	if err != nil {
		return Sideways
	}

	switch {
	case ma50 > ma200*bullFactor:
		return Bullish
	case ma50 < ma200*bearFactor:
		return Bearish
	default:
		return Sideways
	}
}

// IsMassivelyBearish reports whether the market is bearish and the
// latest close sits a further configured margin below the 200-day SMA.
// It is false for any non-bearish regime and whenever fewer than 200
// closes are available.
func (c *Classifier) IsMassivelyBearish(dailyCloses []float64) bool {
	if c.Classify(dailyCloses) != Bearish {
		return false
	}

	sma200, err := c.longSMA.Calculate(dailyCloses)
	if err != nil {
		return false
	}

	last := dailyCloses[len(dailyCloses)-1]
	return last <= sma200*c.massiveBearFactor
}
