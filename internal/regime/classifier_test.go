package regime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// seriesWithAverages builds 200 closes whose last 50 average to ma50
// and whose full 200 average to ma200.
func seriesWithAverages(ma50, ma200 float64) []float64 {
	head := (200*ma200 - 50*ma50) / 150
	closes := make([]float64, 200)
	for i := 0; i < 150; i++ {
		closes[i] = head
	}
	for i := 150; i < 200; i++ {
		closes[i] = ma50
	}
	return closes
}

func TestClassify_ShortHistoryDefaultsToSideways(t *testing.T) {
	c := NewClassifier(0.90)

	for _, n := range []int{0, 1, 50, 199} {
		closes := make([]float64, n)
		for i := range closes {
			closes[i] = 100
		}
		assert.Equal(t, Sideways, c.Classify(closes), "length %d", n)
	}
}

func TestClassify_Bullish(t *testing.T) {
	c := NewClassifier(0.90)

	// ma50=105 > ma200*1.02 = 102
	assert.Equal(t, Bullish, c.Classify(seriesWithAverages(105, 100)))
}

func TestClassify_Bearish(t *testing.T) {
	c := NewClassifier(0.90)

	// ma50=97 < ma200*0.98 = 98
	assert.Equal(t, Bearish, c.Classify(seriesWithAverages(97, 100)))
}

func TestClassify_SidewaysInsideHysteresisBand(t *testing.T) {
	c := NewClassifier(0.90)

	assert.Equal(t, Sideways, c.Classify(seriesWithAverages(99.5, 100)))
	assert.Equal(t, Sideways, c.Classify(seriesWithAverages(101, 100)))
}

func TestIsMassivelyBearish_FalseWhenNotBearish(t *testing.T) {
	c := NewClassifier(0.90)

	// Bullish and sideways markets are never massively bearish, even
	// when the last close is far below the long average.
	bull := seriesWithAverages(105, 100)
	assert.False(t, c.IsMassivelyBearish(bull))

	flat := seriesWithAverages(100, 100)
	assert.False(t, c.IsMassivelyBearish(flat))
}

func TestIsMassivelyBearish_FalseOnShortHistory(t *testing.T) {
	c := NewClassifier(0.90)

	closes := make([]float64, 150)
	for i := range closes {
		closes[i] = 100
	}
	assert.False(t, c.IsMassivelyBearish(closes))
}

func TestIsMassivelyBearish_DeepBelowBaseline(t *testing.T) {
	c := NewClassifier(0.90)

	// Bearish series whose last close is far below 90% of the SMA200.
	closes := seriesWithAverages(97, 100)
	closes[len(closes)-1] = 50
	// Moving the last close shifts the averages slightly, but stays
	// well inside bearish territory.
	assert.Equal(t, Bearish, c.Classify(closes))
	assert.True(t, c.IsMassivelyBearish(closes))
}

func TestIsMassivelyBearish_BearishButNotDeep(t *testing.T) {
	c := NewClassifier(0.90)

	// Bearish, but the last close sits just under the SMA200, far
	// above the 90% massive-bear line.
	closes := seriesWithAverages(97, 100)
	assert.Equal(t, Bearish, c.Classify(closes))
	assert.False(t, c.IsMassivelyBearish(closes))
}
