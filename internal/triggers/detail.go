package triggers

import "fmt"

func rsiDetailf(period int, value float64, op rune, threshold float64) string {
	return fmt.Sprintf("RSI%d=%.2f %c%.2f", period, value, op, threshold)
}

func bandDetailf(last, lower float64) string {
	return fmt.Sprintf("close=%.2f lower=%.2f", last, lower)
}

func detailShortfall(series string, have, want int) string {
	return fmt.Sprintf("need %s>=%d (have %d)", series, want, have)
}
