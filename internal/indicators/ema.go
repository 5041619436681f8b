package indicators

// EMA represents the Exponential Moving Average technical indicator.
type EMA struct {
	period int
	alpha  float64
}

// NewEMA creates a new EMA indicator.
func NewEMA(period int) *EMA {
	return &EMA{
		period: period,
		alpha:  2.0 / float64(period+1),
	}
}

// Series computes the EMA sequence over the whole input, seeded with
// the SMA of the first period values. The result has
// len(prices)-period+1 entries, one per price from the seed onwards.
func (e *EMA) Series(prices []float64) ([]float64, error) {
	if len(prices) < e.period {
		return nil, ErrInsufficientData
	}

	seed := mean(prices[:e.period])
	out := make([]float64, 0, len(prices)-e.period+1)
	out = append(out, seed)

	prev := seed
	for _, p := range prices[e.period:] {
		prev = p*e.alpha + prev*(1-e.alpha)
		out = append(out, prev)
	}
	return out, nil
}

// Calculate computes the latest EMA value.
func (e *EMA) Calculate(prices []float64) (float64, error) {
	series, err := e.Series(prices)
	if err != nil {
		return 0, err
	}
	return series[len(series)-1], nil
}

// Crossover reports whether a fast EMA crossed from at-or-below to
// above a slow EMA between the last two samples.
type Crossover struct {
	Crossed  bool
	FastPrev float64
	SlowPrev float64
	FastLast float64
	SlowLast float64
}

// EMACrossover detects a fast-over-slow EMA cross on the latest sample.
type EMACrossover struct {
	fast *EMA
	slow *EMA
}

// NewEMACrossover creates a crossover detector for the given fast and
// slow periods.
func NewEMACrossover(fastPeriod, slowPeriod int) *EMACrossover {
	return &EMACrossover{
		fast: NewEMA(fastPeriod),
		slow: NewEMA(slowPeriod),
	}
}

// Calculate reports whether the fast EMA crossed above the slow EMA
// between the second-to-last and last price. When either average cannot
// be computed over at least two trailing points the result is simply
// "not crossed"; insufficient data is never an error here.
func (x *EMACrossover) Calculate(prices []float64) Crossover {
	if len(prices) < x.slow.period+2 {
		return Crossover{}
	}

	fastSeries, err := x.fast.Series(prices)
	if err != nil {
		return Crossover{}
	}
	slowSeries, err := x.slow.Series(prices)
	if err != nil {
		return Crossover{}
	}

	n := len(fastSeries)
	if len(slowSeries) < n {
		n = len(slowSeries)
	}
	if n < 2 {
		return Crossover{}
	}

	f0, s0 := fastSeries[len(fastSeries)-2], slowSeries[len(slowSeries)-2]
	f1, s1 := fastSeries[len(fastSeries)-1], slowSeries[len(slowSeries)-1]

	return Crossover{
		Crossed:  f0 <= s0 && f1 > s1,
		FastPrev: f0,
		SlowPrev: s0,
		FastLast: f1,
		SlowLast: s1,
	}
}
