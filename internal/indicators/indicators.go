package indicators

import "errors"

// ErrInsufficientData is returned by every indicator when the input
// series is shorter than the indicator's required length. Callers must
// treat it as "condition not satisfied", never as a zero reading.
var ErrInsufficientData = errors.New("insufficient data")
