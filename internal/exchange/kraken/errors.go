package kraken

import (
	"errors"
	"fmt"
	"strings"
)

// APIError is a rejection reported by the Kraken API itself, as
// opposed to a transport failure reaching it. Callers can rely on the
// distinction: errors.As(err, *APIError) means the exchange answered
// and said no.
type APIError struct {
	Endpoint string
	Messages []string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("kraken API error on %s: %s", e.Endpoint, strings.Join(e.Messages, ", "))
}

// IsAPIError reports whether the error is an exchange-side rejection.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}
