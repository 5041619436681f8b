package triggers

// Config holds every trigger threshold as a named, independently
// overridable setting.
type Config struct {
	RSIPeriod     int
	BBPeriod      int
	BBStdDev      float64
	FastEMAPeriod int
	SlowEMAPeriod int
	SMAPeriod     int

	// Bullish regime: either mild overbought relief or a shallow
	// pullback from the 10-day high is enough.
	BullRSIMax      float64
	BullPullbackPct float64

	// Sideways regime: all conditions must confirm.
	SidewaysRSIMax float64

	// Bearish regime thresholds.
	BearRSIMax           float64
	BearRSIEarly         float64
	BearAllowRSIOnly     bool
	BearAllowLowerBBOnly bool
	BearBelowSMAPct      float64
}

// DefaultConfig returns the stock trigger thresholds.
func DefaultConfig() Config {
	return Config{
		RSIPeriod:     14,
		BBPeriod:      20,
		BBStdDev:      2,
		FastEMAPeriod: 9,
		SlowEMAPeriod: 21,
		SMAPeriod:     200,

		BullRSIMax:      55,
		BullPullbackPct: 0.015,

		SidewaysRSIMax: 45,

		BearRSIMax:           55,
		BearRSIEarly:         50,
		BearAllowRSIOnly:     true,
		BearAllowLowerBBOnly: true,
		BearBelowSMAPct:      0.07,
	}
}
