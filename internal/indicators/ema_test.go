package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEMA_Series_SeededWithSMA(t *testing.T) {
	ema := NewEMA(3)

	series, err := ema.Series([]float64{1, 2, 3, 4})
	require.NoError(t, err)
	require.Len(t, series, 2)

	// Seed is SMA(1,2,3) = 2, then 4*0.5 + 2*0.5 = 3.
	assert.InDelta(t, 2.0, series[0], 1e-9)
	assert.InDelta(t, 3.0, series[1], 1e-9)
}

func TestEMA_Calculate_InsufficientData(t *testing.T) {
	ema := NewEMA(10)

	_, err := ema.Calculate(make([]float64, 9))
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestEMACrossover_NotEnoughData(t *testing.T) {
	cross := NewEMACrossover(9, 21)

	// Fewer than slow+2 points always reads as "not crossed".
	result := cross.Calculate(make([]float64, 22))
	assert.False(t, result.Crossed)
}

func TestEMACrossover_FlatThenSpike(t *testing.T) {
	cross := NewEMACrossover(9, 21)

	// Flat series keeps both averages equal; a final spike lifts the
	// fast average above the slow one, so the cross fires now.
	prices := make([]float64, 60)
	for i := range prices {
		prices[i] = 100
	}
	prices[len(prices)-1] = 110

	result := cross.Calculate(prices)
	assert.True(t, result.Crossed)
	assert.Greater(t, result.FastLast, result.SlowLast)
	assert.LessOrEqual(t, result.FastPrev, result.SlowPrev)
}

func TestEMACrossover_AlreadyAbove_NoCross(t *testing.T) {
	cross := NewEMACrossover(9, 21)

	// A steady uptrend keeps the fast average above the slow one on
	// both samples, so no fresh cross is reported.
	prices := make([]float64, 60)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}

	result := cross.Calculate(prices)
	assert.False(t, result.Crossed)
	assert.Greater(t, result.FastPrev, result.SlowPrev)
}

func TestEMACrossover_FlatSeries_NoCross(t *testing.T) {
	cross := NewEMACrossover(9, 21)

	prices := make([]float64, 60)
	for i := range prices {
		prices[i] = 100
	}

	result := cross.Calculate(prices)
	assert.False(t, result.Crossed)
}
