package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRSI_Calculate_InsufficientData(t *testing.T) {
	rsi := NewRSI(14)

	_, err := rsi.Calculate(make([]float64, 14)) // needs period+1
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestRSI_Calculate_AllGains(t *testing.T) {
	rsi := NewRSI(14)

	prices := make([]float64, 15)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}

	value, err := rsi.Calculate(prices)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, value, 1e-9)
}

func TestRSI_Calculate_AllLosses(t *testing.T) {
	rsi := NewRSI(14)

	prices := make([]float64, 15)
	for i := range prices {
		prices[i] = 100 - float64(i)
	}

	value, err := rsi.Calculate(prices)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, value, 1e-9)
}

func TestRSI_Calculate_MixedRange(t *testing.T) {
	rsi := NewRSI(14)

	// Alternating +1/-1 changes: average gain equals average loss,
	// so RS = 1 and RSI = 50.
	prices := make([]float64, 15)
	prices[0] = 100
	for i := 1; i < len(prices); i++ {
		if i%2 == 1 {
			prices[i] = prices[i-1] + 1
		} else {
			prices[i] = prices[i-1] - 1
		}
	}

	value, err := rsi.Calculate(prices)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, value, 1e-9)
}

func TestRSI_Calculate_IgnoresOldHistory(t *testing.T) {
	rsi := NewRSI(14)

	// A huge spike outside the trailing period+1 window must not leak in.
	prices := append([]float64{1e6}, make([]float64, 15)...)
	for i := 1; i < len(prices); i++ {
		prices[i] = 100 + float64(i)
	}

	value, err := rsi.Calculate(prices)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, value, 1e-9)
}
