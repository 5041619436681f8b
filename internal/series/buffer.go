// Package series provides the owned candle buffers the live feed
// writes into. Evaluation cycles never read the live slices directly;
// they take an immutable snapshot so a half-applied feed update can
// never leak into a decision.
package series

import (
	"sync"
	"time"

	"github.com/smartdca/kraken-smart-dca/pkg/types"
)

// Buffer is a bounded, timestamp-ordered candle series. The websocket
// feed upserts the forming bar in place; older bars are pruned past
// the configured capacity.
type Buffer struct {
	mu      sync.RWMutex
	max     int
	candles []types.Candle
}

// NewBuffer creates a buffer that keeps at most max candles.
func NewBuffer(max int) *Buffer {
	return &Buffer{
		max:     max,
		candles: make([]types.Candle, 0, max),
	}
}

// Seed replaces the whole series, keeping only the trailing max bars.
func (b *Buffer) Seed(candles []types.Candle) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(candles) > b.max {
		candles = candles[len(candles)-b.max:]
	}
	b.candles = append(b.candles[:0], candles...)
}

// Upsert records a candle: a bar with the same timestamp as the latest
// one replaces it (the bar is still forming), otherwise it is appended.
// The buffer is trimmed from the front past capacity.
func (b *Buffer) Upsert(c types.Candle) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := len(b.candles)
	if n > 0 && b.candles[n-1].Time.Equal(c.Time) {
		b.candles[n-1] = c
		return
	}

	b.candles = append(b.candles, c)
	if len(b.candles) > b.max {
		b.candles = b.candles[len(b.candles)-b.max:]
	}
}

// PruneOlderThan drops every candle before the cutoff.
func (b *Buffer) PruneOlderThan(cutoff time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := 0
	for i < len(b.candles) && b.candles[i].Time.Before(cutoff) {
		i++
	}
	b.candles = b.candles[i:]
}

// Snapshot returns an immutable copy of the series.
func (b *Buffer) Snapshot() []types.Candle {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]types.Candle, len(b.candles))
	copy(out, b.candles)
	return out
}

// Closes returns a copy of the closing prices in order.
func (b *Buffer) Closes() []float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return types.Closes(b.candles)
}

// Len returns the current number of candles.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.candles)
}
