package regime

// Regime labels the broader price trend derived from the 50/200-day
// moving average relationship. It is recomputed on every evaluation
// tick, never stored.
type Regime int

const (
	Sideways Regime = iota
	Bullish
	Bearish
)

func (r Regime) String() string {
	switch r {
	case Bullish:
		return "bullish"
	case Bearish:
		return "bearish"
	case Sideways:
		return "sideways"
	default:
		return "unknown"
	}
}
