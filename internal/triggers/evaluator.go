package triggers

import (
	"github.com/smartdca/kraken-smart-dca/internal/indicators"
	"github.com/smartdca/kraken-smart-dca/internal/regime"
)

const (
	minDailyCloses       = 60
	minBearMassiveCloses = 20
)

// Evaluator holds the configured indicator set and produces a buy/wait
// verdict per regime. It is stateless between calls, so the live engine
// and the backtest replay share one instance safely.
type Evaluator struct {
	cfg   Config
	rsi   *indicators.RSI
	bands *indicators.BollingerBands
	sma   *indicators.SMA
	cross *indicators.EMACrossover
}

// NewEvaluator creates an evaluator from the given trigger config.
func NewEvaluator(cfg Config) *Evaluator {
	return &Evaluator{
		cfg:   cfg,
		rsi:   indicators.NewRSI(cfg.RSIPeriod),
		bands: indicators.NewBollingerBands(cfg.BBPeriod, cfg.BBStdDev),
		sma:   indicators.NewSMA(cfg.SMAPeriod),
		cross: indicators.NewEMACrossover(cfg.FastEMAPeriod, cfg.SlowEMAPeriod),
	}
}

// Evaluate dispatches to the regime-specific evaluator. This is the
// single entry point used by both the live purchase window and the
// backtest replay, which is what keeps their verdicts byte-identical.
func (e *Evaluator) Evaluate(reg regime.Regime, massivelyBearish bool, dailyCloses, fourHourCloses []float64) Verdict {
	switch reg {
	case regime.Bullish:
		return e.EvalBullishFastDaily(dailyCloses)
	case regime.Sideways:
		return e.EvalSidewaysDailyPlus4H(dailyCloses, fourHourCloses)
	default:
		if massivelyBearish {
			return e.EvalBearMassiveDaily(dailyCloses)
		}
		return e.EvalBearNormalDailyPlus4H(dailyCloses, fourHourCloses)
	}
}

// EvalBullishFastDaily buys in an uptrend on either mild overbought
// relief (RSI below the bull ceiling) or a shallow pullback from the
// 10-day high. No secondary confirmation is required.
func (e *Evaluator) EvalBullishFastDaily(dailyCloses []float64) Verdict {
	if len(dailyCloses) < minDailyCloses {
		return notEnoughData("bullish", detailShortfall("daily", len(dailyCloses), minDailyCloses))
	}

	last := dailyCloses[len(dailyCloses)-1]

	rsiMet := false
	rsiDetail := "RSI n/a"
	if r, err := e.rsi.Calculate(dailyCloses); err == nil {
		rsiMet = r < e.cfg.BullRSIMax
		rsiDetail = rsiDetailf(e.cfg.RSIPeriod, r, '<', e.cfg.BullRSIMax)
	}

	hi10 := dailyCloses[len(dailyCloses)-1]
	for _, v := range dailyCloses[len(dailyCloses)-10:] {
		if v > hi10 {
			hi10 = v
		}
	}
	drawdown := (hi10 - last) / hi10
	ddMet := drawdown >= e.cfg.BullPullbackPct

	return Verdict{
		Ok:   rsiMet || ddMet,
		Rule: "bullish",
		Conditions: []Condition{
			condition("rsi-relief", rsiMet, "%s", rsiDetail),
			condition("pullback", ddMet, "dd10=%.2f%% >= %.2f%%", drawdown*100, e.cfg.BullPullbackPct*100),
		},
	}
}

// EvalSidewaysDailyPlus4H requires full confirmation: depressed daily
// RSI, a lower-band touch and a fresh 4h fast-over-slow EMA cross.
// With no trend to lean on, all three are mandatory.
func (e *Evaluator) EvalSidewaysDailyPlus4H(dailyCloses, fourHourCloses []float64) Verdict {
	if len(dailyCloses) < minDailyCloses || len(fourHourCloses) < minDailyCloses {
		return notEnoughData("sideways",
			detailShortfall("daily", len(dailyCloses), minDailyCloses)+", "+
				detailShortfall("4h", len(fourHourCloses), minDailyCloses))
	}

	rsiMet := false
	rsiDetail := "RSI n/a"
	if r, err := e.rsi.Calculate(dailyCloses); err == nil {
		rsiMet = r <= e.cfg.SidewaysRSIMax
		rsiDetail = rsiDetailf(e.cfg.RSIPeriod, r, '≤', e.cfg.SidewaysRSIMax)
	}

	lowerHit, bandDetail := e.lowerBandTouch(dailyCloses)

	cross := e.cross.Calculate(fourHourCloses)

	return Verdict{
		Ok:   rsiMet && lowerHit && cross.Crossed,
		Rule: "sideways",
		Conditions: []Condition{
			condition("rsi", rsiMet, "%s", rsiDetail),
			condition("lower-band", lowerHit, "%s", bandDetail),
			condition("ema-cross-4h", cross.Crossed, "EMA%d/%d fast %.2f->%.2f slow %.2f->%.2f",
				e.cfg.FastEMAPeriod, e.cfg.SlowEMAPeriod,
				cross.FastPrev, cross.FastLast, cross.SlowPrev, cross.SlowLast),
		},
	}
}

// EvalBearMassiveDaily treats a deeply depressed bearish market as
// urgent: either weak signal alone (lower-band touch or early RSI)
// fires a buy, with no 4h confirmation.
func (e *Evaluator) EvalBearMassiveDaily(dailyCloses []float64) Verdict {
	if len(dailyCloses) < minBearMassiveCloses {
		return notEnoughData("bear-massive", detailShortfall("daily", len(dailyCloses), minBearMassiveCloses))
	}

	lowerHit, bandDetail := e.lowerBandTouch(dailyCloses)
	bandAllowed := e.cfg.BearAllowLowerBBOnly && lowerHit

	rsiEarly := false
	rsiDetail := "RSI n/a"
	if r, err := e.rsi.Calculate(dailyCloses); err == nil {
		rsiEarly = r <= e.cfg.BearRSIEarly
		rsiDetail = rsiDetailf(e.cfg.RSIPeriod, r, '≤', e.cfg.BearRSIEarly)
	}
	rsiAllowed := e.cfg.BearAllowRSIOnly && rsiEarly

	return Verdict{
		Ok:   bandAllowed || rsiAllowed,
		Rule: "bear-massive",
		Conditions: []Condition{
			condition("lower-band", bandAllowed, "%s (enabled=%t)", bandDetail, e.cfg.BearAllowLowerBBOnly),
			condition("rsi-early", rsiAllowed, "%s (enabled=%t)", rsiDetail, e.cfg.BearAllowRSIOnly),
		},
	}
}

// EvalBearNormalDailyPlus4H evaluates an ordered cascade of early-exit
// paths; the first match wins and later paths are not evaluated. The
// cheap daily signals are allowed to fire without waiting for the
// slower four-hour confirmation.
func (e *Evaluator) EvalBearNormalDailyPlus4H(dailyCloses, fourHourCloses []float64) Verdict {
	if len(dailyCloses) < minDailyCloses {
		return notEnoughData("bear", detailShortfall("daily", len(dailyCloses), minDailyCloses))
	}

	last := dailyCloses[len(dailyCloses)-1]

	rsiValue := 0.0
	rsiKnown := false
	if r, err := e.rsi.Calculate(dailyCloses); err == nil {
		rsiValue = r
		rsiKnown = true
	}

	lowerHit, bandDetail := e.lowerBandTouch(dailyCloses)

	// Path 1: early RSI-only buy, no 4h confirmation.
	if e.cfg.BearAllowRSIOnly && rsiKnown && rsiValue <= e.cfg.BearRSIEarly {
		return Verdict{
			Ok:   true,
			Rule: "bear/rsi-early",
			Conditions: []Condition{
				condition("rsi-early", true, "%s", rsiDetailf(e.cfg.RSIPeriod, rsiValue, '≤', e.cfg.BearRSIEarly)),
			},
		}
	}

	// Path 2: lower-band-only buy, no 4h confirmation.
	if e.cfg.BearAllowLowerBBOnly && lowerHit {
		return Verdict{
			Ok:   true,
			Rule: "bear/lower-band",
			Conditions: []Condition{
				condition("lower-band", true, "%s", bandDetail),
			},
		}
	}

	// Path 3: deep-value filter against the 200-day SMA.
	if sma, err := e.sma.Calculate(dailyCloses); err == nil {
		below := (sma - last) / sma
		if below >= e.cfg.BearBelowSMAPct {
			return Verdict{
				Ok:   true,
				Rule: "bear/deep-value",
				Conditions: []Condition{
					condition("below-sma", true, "%.1f%% below SMA%d >= %.1f%%",
						below*100, e.cfg.SMAPeriod, e.cfg.BearBelowSMAPct*100),
				},
			}
		}
	}

	// Path 4: classic confirmed entry, only reachable with enough 4h data.
	slowest := e.cfg.SlowEMAPeriod
	if e.cfg.FastEMAPeriod > slowest {
		slowest = e.cfg.FastEMAPeriod
	}
	if len(fourHourCloses) >= slowest+2 {
		cross := e.cross.Calculate(fourHourCloses)
		rsiMet := rsiKnown && rsiValue <= e.cfg.BearRSIMax
		return Verdict{
			Ok:   rsiMet && lowerHit && cross.Crossed,
			Rule: "bear/confirmed",
			Conditions: []Condition{
				condition("rsi", rsiMet, "%s", rsiDetailf(e.cfg.RSIPeriod, rsiValue, '≤', e.cfg.BearRSIMax)),
				condition("lower-band", lowerHit, "%s", bandDetail),
				condition("ema-cross-4h", cross.Crossed, "EMA%d/%d fast %.2f->%.2f slow %.2f->%.2f",
					e.cfg.FastEMAPeriod, e.cfg.SlowEMAPeriod,
					cross.FastPrev, cross.FastLast, cross.SlowPrev, cross.SlowLast),
			},
		}
	}

	return Verdict{
		Ok:   false,
		Rule: "bear/waiting",
		Conditions: []Condition{
			condition("waiting", false, "no early/band/value path matched, 4h closes %d < %d",
				len(fourHourCloses), slowest+2),
		},
	}
}

func (e *Evaluator) lowerBandTouch(dailyCloses []float64) (bool, string) {
	bands, err := e.bands.Calculate(dailyCloses)
	if err != nil {
		return false, "BB n/a"
	}
	last := dailyCloses[len(dailyCloses)-1]
	hit := last <= bands.Lower
	return hit, bandDetailf(last, bands.Lower)
}
