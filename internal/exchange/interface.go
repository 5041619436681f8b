package exchange

import (
	"context"
	"time"

	"github.com/smartdca/kraken-smart-dca/pkg/types"
)

// Exchange is the contract the decision engine consumes. All calls are
// made before an evaluation cycle runs; their results are handed to
// the engine as plain data.
type Exchange interface {
	// GetTicker returns the current quote for a pair.
	GetTicker(ctx context.Context, pair string) (*types.Ticker, error)

	// GetOHLC returns candles for the pair at the given interval,
	// ordered by time ascending. A zero since fetches the default
	// recent history.
	GetOHLC(ctx context.Context, pair string, intervalMinutes int, since time.Time) ([]types.Candle, error)

	// GetBalance returns available amounts keyed by asset code.
	GetBalance(ctx context.Context) (map[string]float64, error)

	// PlaceMarketBuy submits a market buy for the given volume and
	// returns the order/transaction id.
	PlaceMarketBuy(ctx context.Context, pair string, volume float64) (string, error)
}
