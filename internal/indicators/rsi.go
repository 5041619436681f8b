package indicators

import "math"

// RSI calculates the Relative Strength Index over the trailing
// period+1 closing prices.
type RSI struct {
	period int
}

// NewRSI creates a new RSI instance with the given period.
func NewRSI(period int) *RSI {
	return &RSI{period: period}
}

// Calculate computes the RSI value from the last period+1 prices.
// The result is always within [0, 100]. Returns ErrInsufficientData
// when fewer than period+1 prices are available.
func (r *RSI) Calculate(prices []float64) (float64, error) {
	if len(prices) < r.period+1 {
		return 0, ErrInsufficientData
	}

	window := prices[len(prices)-(r.period+1):]

	var gains, losses float64
	for i := 1; i < len(window); i++ {
		change := window[i] - window[i-1]
		if change > 0 {
			gains += change
		} else {
			losses += math.Abs(change)
		}
	}

	avgGain := gains / float64(r.period)
	avgLoss := losses / float64(r.period)

	if avgLoss == 0 {
		return 100, nil
	}

	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs)), nil
}

// Period returns the configured lookback length.
func (r *RSI) Period() int {
	return r.period
}
