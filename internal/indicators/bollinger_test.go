package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBollingerBands_InsufficientData(t *testing.T) {
	bb := NewBollingerBands(20, 2)

	_, err := bb.Calculate(make([]float64, 20)) // needs period+1
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestBollingerBands_FlatSeries(t *testing.T) {
	bb := NewBollingerBands(20, 2)

	prices := make([]float64, 25)
	for i := range prices {
		prices[i] = 100
	}

	bands, err := bb.Calculate(prices)
	require.NoError(t, err)

	assert.InDelta(t, 100.0, bands.Middle, 1e-9)
	assert.InDelta(t, 100.0, bands.Upper, 1e-9)
	assert.InDelta(t, 100.0, bands.Lower, 1e-9)
}

func TestBollingerBands_KnownValues(t *testing.T) {
	bb := NewBollingerBands(4, 2)

	// Trailing window {10, 20, 10, 20}: mean 15, stddev 5.
	prices := []float64{99, 10, 20, 10, 20}

	bands, err := bb.Calculate(prices)
	require.NoError(t, err)

	assert.InDelta(t, 15.0, bands.Middle, 1e-9)
	assert.InDelta(t, 25.0, bands.Upper, 1e-9)
	assert.InDelta(t, 5.0, bands.Lower, 1e-9)
}

func TestBollingerBands_PlungeBreaksLowerBand(t *testing.T) {
	bb := NewBollingerBands(20, 2)

	prices := make([]float64, 30)
	for i := range prices {
		prices[i] = 100
	}
	prices[len(prices)-1] = 80

	bands, err := bb.Calculate(prices)
	require.NoError(t, err)

	last := prices[len(prices)-1]
	assert.True(t, last <= bands.Lower, "plunge close %.2f should breach lower band %.2f", last, bands.Lower)
	assert.False(t, math.IsNaN(bands.Lower))
}
