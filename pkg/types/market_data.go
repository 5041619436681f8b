package types

import "time"

// Candle is a single OHLC bar. Candles in a series are ordered by
// timestamp ascending and never duplicated; the feed layer upserts the
// still-forming bar in place.
type Candle struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Ticker is a point-in-time quote for a trading pair.
type Ticker struct {
	Pair string
	Ask  float64
	Bid  float64
	Last float64
}

// Closes extracts the closing prices of a candle series, preserving order.
func Closes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}
