package indicators

import "math"

// Bands holds one Bollinger Bands reading.
type Bands struct {
	Upper  float64
	Middle float64
	Lower  float64
}

// BollingerBands represents the Bollinger Bands indicator.
type BollingerBands struct {
	period         int
	stdDevMultiple float64
}

// NewBollingerBands creates a new BollingerBands instance with the given
// period and standard deviation multiplier.
func NewBollingerBands(period int, stdDev float64) *BollingerBands {
	return &BollingerBands{
		period:         period,
		stdDevMultiple: stdDev,
	}
}

// Calculate computes the upper, middle and lower bands from the SMA and
// standard deviation of the trailing period window. Returns
// ErrInsufficientData when fewer than period+1 prices are available.
func (bb *BollingerBands) Calculate(prices []float64) (Bands, error) {
	if len(prices) < bb.period+1 {
		return Bands{}, ErrInsufficientData
	}

	recent := prices[len(prices)-bb.period:]
	middle := mean(recent)
	stdDev := standardDeviation(recent, middle)

	return Bands{
		Upper:  middle + bb.stdDevMultiple*stdDev,
		Middle: middle,
		Lower:  middle - bb.stdDevMultiple*stdDev,
	}, nil
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func standardDeviation(values []float64, mean float64) float64 {
	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	return math.Sqrt(variance / float64(len(values)))
}
