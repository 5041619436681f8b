package kraken

import (
	"context"
	"fmt"
	"strconv"
)

// GetBalance returns available amounts keyed by Kraken asset code
// (e.g. ZGBP, XXBT). In dry-run mode the simulated balances are
// returned without touching the network.
func (c *Client) GetBalance(ctx context.Context) (map[string]float64, error) {
	if c.dryRun {
		c.dryMu.Lock()
		defer c.dryMu.Unlock()
		return map[string]float64{"ZGBP": c.dryGBP, "XXBT": c.dryXBT}, nil
	}

	var result map[string]string
	if err := c.private(ctx, "/0/private/Balance", nil, &result); err != nil {
		return nil, err
	}

	balances := make(map[string]float64, len(result))
	for asset, amount := range result {
		parsed, err := strconv.ParseFloat(amount, 64)
		if err != nil {
			return nil, fmt.Errorf("parse balance for %s: %w", asset, err)
		}
		balances[asset] = parsed
	}
	return balances, nil
}

// DryConsume settles a simulated purchase against the in-memory
// balances. No-op outside dry-run mode.
func (c *Client) DryConsume(quoteSpent, baseBought float64) {
	if !c.dryRun {
		return
	}
	c.dryMu.Lock()
	defer c.dryMu.Unlock()

	c.dryGBP -= quoteSpent
	if c.dryGBP < 0 {
		c.dryGBP = 0
	}
	if baseBought > 0 {
		c.dryXBT += baseBought
	}
}
