package indicators

// SMA represents the Simple Moving Average technical indicator.
type SMA struct {
	period int
}

// NewSMA creates a new SMA indicator with the given period.
func NewSMA(period int) *SMA {
	return &SMA{period: period}
}

// Calculate computes the arithmetic mean of the last period closing
// prices. Returns ErrInsufficientData when the series is too short.
func (s *SMA) Calculate(prices []float64) (float64, error) {
	if len(prices) < s.period {
		return 0, ErrInsufficientData
	}

	sum := 0.0
	for _, p := range prices[len(prices)-s.period:] {
		sum += p
	}
	return sum / float64(s.period), nil
}

// Period returns the configured lookback length.
func (s *SMA) Period() int {
	return s.period
}
