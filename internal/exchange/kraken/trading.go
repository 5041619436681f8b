package kraken

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// PlaceMarketBuy submits a market buy for the given base-asset volume
// and returns the transaction id. In dry-run mode no request is made
// and a fake id is returned; the caller settles balances through
// DryConsume.
func (c *Client) PlaceMarketBuy(ctx context.Context, pair string, volume float64) (string, error) {
	if volume <= 0 {
		return "", fmt.Errorf("market buy volume must be positive, got %.8f", volume)
	}

	if c.dryRun {
		return fmt.Sprintf("dry-%d", time.Now().UnixMilli()), nil
	}

	params := url.Values{}
	params.Set("pair", pair)
	params.Set("type", "buy")
	params.Set("ordertype", "market")
	params.Set("volume", fmt.Sprintf("%.8f", volume))

	var result struct {
		TxID  []string `json:"txid"`
		Descr struct {
			Order string `json:"order"`
		} `json:"descr"`
	}
	if err := c.private(ctx, "/0/private/AddOrder", params, &result); err != nil {
		return "", err
	}
	if len(result.TxID) == 0 {
		return "", fmt.Errorf("AddOrder for %s returned no transaction id", pair)
	}
	return result.TxID[0], nil
}
