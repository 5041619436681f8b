package kraken

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/smartdca/kraken-smart-dca/pkg/types"
)

const reconnectDelay = 5 * time.Second

// OHLCHandler receives live candle updates from the websocket feed.
type OHLCHandler func(intervalMinutes int, candle types.Candle)

// Stream subscribes to Kraken's public OHLC websocket channels and
// forwards candle updates to a handler. It reconnects with a fixed
// delay until the context is cancelled.
type Stream struct {
	url       string
	pair      string
	intervals []int
	handler   OHLCHandler
}

// NewStream creates an OHLC stream for the display pair (e.g.
// "XBT/GBP") at the given intervals in minutes.
func NewStream(wsURL, displayPair string, intervals []int, handler OHLCHandler) *Stream {
	if wsURL == "" {
		wsURL = "wss://ws.kraken.com/"
	}
	return &Stream{
		url:       wsURL,
		pair:      displayPair,
		intervals: intervals,
		handler:   handler,
	}
}

// Run connects and consumes messages until the context is cancelled.
func (s *Stream) Run(ctx context.Context) {
	for {
		if err := s.connectAndConsume(ctx); err != nil {
			log.Printf("OHLC websocket: %v, reconnecting in %s", err, reconnectDelay)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func (s *Stream) connectAndConsume(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", s.url, err)
	}
	defer conn.Close()

	// Close the connection when the context ends so ReadMessage
	// unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for _, interval := range s.intervals {
		sub := map[string]interface{}{
			"event": "subscribe",
			"pair":  []string{s.pair},
			"subscription": map[string]interface{}{
				"name":     "ohlc",
				"interval": interval,
			},
		}
		if err := conn.WriteJSON(sub); err != nil {
			return fmt.Errorf("subscribe ohlc-%d: %w", interval, err)
		}
	}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		s.dispatch(raw)
	}
}

// dispatch parses one websocket frame. Candle updates arrive as
// [channelID, payload, "ohlc-<interval>", pair]; everything else
// (heartbeats, subscription acks) is ignored.
func (s *Stream) dispatch(raw []byte) {
	var frame []json.RawMessage
	if err := json.Unmarshal(raw, &frame); err != nil || len(frame) < 4 {
		return
	}

	var channel string
	if err := json.Unmarshal(frame[2], &channel); err != nil {
		return
	}
	interval, ok := intervalFromChannel(channel)
	if !ok {
		return
	}

	candle, err := parseWSCandle(frame[1])
	if err != nil {
		log.Printf("OHLC websocket: skipping malformed candle: %v", err)
		return
	}
	s.handler(interval, candle)
}

func intervalFromChannel(channel string) (int, bool) {
	rest, found := strings.CutPrefix(channel, "ohlc-")
	if !found {
		return 0, false
	}
	interval, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return interval, true
}

// parseWSCandle decodes the ohlc payload: [time, etime, open, high,
// low, close, vwap, volume, count]. The bar's end time identifies it,
// so in-progress updates for the same bar upsert cleanly.
func parseWSCandle(raw json.RawMessage) (types.Candle, error) {
	var fields []interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return types.Candle{}, err
	}
	if len(fields) < 8 {
		return types.Candle{}, fmt.Errorf("ohlc payload has %d fields, want at least 8", len(fields))
	}

	etime, err := fieldFloat(fields[1])
	if err != nil {
		return types.Candle{}, fmt.Errorf("parse etime: %w", err)
	}

	candle := types.Candle{Time: time.Unix(int64(etime), 0).UTC()}
	for _, field := range []struct {
		dst *float64
		src interface{}
		tag string
	}{
		{&candle.Open, fields[2], "open"},
		{&candle.High, fields[3], "high"},
		{&candle.Low, fields[4], "low"},
		{&candle.Close, fields[5], "close"},
		{&candle.Volume, fields[7], "volume"},
	} {
		v, err := fieldFloat(field.src)
		if err != nil {
			return types.Candle{}, fmt.Errorf("parse %s: %w", field.tag, err)
		}
		*field.dst = v
	}
	return candle, nil
}
