package kraken

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/smartdca/kraken-smart-dca/pkg/types"
)

// GetTicker fetches the current quote for a pair.
func (c *Client) GetTicker(ctx context.Context, pair string) (*types.Ticker, error) {
	params := url.Values{}
	params.Set("pair", pair)

	var result map[string]struct {
		Ask  []string `json:"a"`
		Bid  []string `json:"b"`
		Last []string `json:"c"`
	}
	if err := c.public(ctx, "/0/public/Ticker", params, &result); err != nil {
		return nil, err
	}

	for _, entry := range result {
		if len(entry.Ask) == 0 || len(entry.Bid) == 0 || len(entry.Last) == 0 {
			break
		}
		ask, err := strconv.ParseFloat(entry.Ask[0], 64)
		if err != nil {
			return nil, fmt.Errorf("parse ticker ask: %w", err)
		}
		bid, err := strconv.ParseFloat(entry.Bid[0], 64)
		if err != nil {
			return nil, fmt.Errorf("parse ticker bid: %w", err)
		}
		last, err := strconv.ParseFloat(entry.Last[0], 64)
		if err != nil {
			return nil, fmt.Errorf("parse ticker last: %w", err)
		}
		return &types.Ticker{Pair: pair, Ask: ask, Bid: bid, Last: last}, nil
	}
	return nil, fmt.Errorf("ticker response for %s contained no usable entry", pair)
}

// GetOHLC fetches candles at the given interval, ordered by time
// ascending. Kraken returns at most ~720 bars per request.
func (c *Client) GetOHLC(ctx context.Context, pair string, intervalMinutes int, since time.Time) ([]types.Candle, error) {
	params := url.Values{}
	params.Set("pair", pair)
	params.Set("interval", strconv.Itoa(intervalMinutes))
	if !since.IsZero() {
		params.Set("since", strconv.FormatInt(since.Unix(), 10))
	}

	// The result maps the pair name to candle rows, next to a "last"
	// cursor we don't need.
	var result map[string]json.RawMessage
	if err := c.public(ctx, "/0/public/OHLC", params, &result); err != nil {
		return nil, err
	}

	for key, raw := range result {
		if key == "last" {
			continue
		}
		return parseCandleRows(raw)
	}
	return nil, fmt.Errorf("OHLC response for %s contained no candle series", pair)
}

func parseCandleRows(raw json.RawMessage) ([]types.Candle, error) {
	var rows [][]interface{}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode OHLC rows: %w", err)
	}

	candles := make([]types.Candle, 0, len(rows))
	for _, row := range rows {
		// Row layout: time, open, high, low, close, vwap, volume, count.
		if len(row) < 7 {
			return nil, fmt.Errorf("OHLC row has %d fields, want at least 7", len(row))
		}
		candle, err := candleFromFields(row[0], row[1], row[2], row[3], row[4], row[6])
		if err != nil {
			return nil, err
		}
		candles = append(candles, candle)
	}

	sort.Slice(candles, func(i, j int) bool {
		return candles[i].Time.Before(candles[j].Time)
	})
	return candles, nil
}

func candleFromFields(ts, open, high, low, close, volume interface{}) (types.Candle, error) {
	tsFloat, err := fieldFloat(ts)
	if err != nil {
		return types.Candle{}, fmt.Errorf("parse candle time: %w", err)
	}

	c := types.Candle{Time: time.Unix(int64(tsFloat), 0).UTC()}
	for _, field := range []struct {
		dst *float64
		src interface{}
		tag string
	}{
		{&c.Open, open, "open"},
		{&c.High, high, "high"},
		{&c.Low, low, "low"},
		{&c.Close, close, "close"},
		{&c.Volume, volume, "volume"},
	} {
		v, err := fieldFloat(field.src)
		if err != nil {
			return types.Candle{}, fmt.Errorf("parse candle %s: %w", field.tag, err)
		}
		*field.dst = v
	}
	return c, nil
}

// fieldFloat coerces Kraken's mixed numeric encoding: timestamps come
// as numbers, prices and volumes as strings.
func fieldFloat(v interface{}) (float64, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case string:
		return strconv.ParseFloat(val, 64)
	default:
		return 0, fmt.Errorf("unexpected field type %T", v)
	}
}
