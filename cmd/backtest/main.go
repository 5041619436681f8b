package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/smartdca/kraken-smart-dca/internal/backtest"
	"github.com/smartdca/kraken-smart-dca/internal/config"
	"github.com/smartdca/kraken-smart-dca/internal/exchange/kraken"
	"github.com/smartdca/kraken-smart-dca/internal/regime"
	"github.com/smartdca/kraken-smart-dca/internal/reporting"
	"github.com/smartdca/kraken-smart-dca/internal/triggers"
	"github.com/smartdca/kraken-smart-dca/pkg/types"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Could not load .env: %v", err)
	}

	cfg := config.Load()

	years := flag.Int("years", cfg.Backtest.Years, "history window in years")
	deposit := flag.Float64("deposit", cfg.Backtest.Deposit, "quote spend per monthly cycle")
	buyDay := flag.Int("buy-day", cfg.Backtest.BuyDay, "day of month the window opens (1..28)")
	buyTime := flag.String("buy-time", cfg.Backtest.BuyTime, "time of day the window opens, HH:MM UTC")
	output := flag.String("output", "", "write the purchase log to this .csv or .xlsx file")
	flag.Parse()

	cfg.Backtest.Years = *years
	cfg.Backtest.Deposit = *deposit
	cfg.Backtest.BuyDay = *buyDay
	cfg.Backtest.BuyTime = *buyTime
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	client := kraken.NewClient(kraken.Config{BaseURL: cfg.Kraken.BaseURL})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	since := time.Now().UTC().AddDate(-cfg.Backtest.Years, 0, 0)
	log.Printf("Fetching %s history since %s...", cfg.DisplayPair, since.Format("2006-01-02"))

	daily, err := fetchAll(ctx, client, cfg.Pair, 1440, since)
	if err != nil {
		log.Fatalf("Fetch daily history: %v", err)
	}
	fourHour, err := fetchAll(ctx, client, cfg.Pair, 240, since)
	if err != nil {
		log.Fatalf("Fetch 4h history: %v", err)
	}
	log.Printf("Loaded %d daily and %d 4h candles", len(daily), len(fourHour))

	driver := backtest.NewDriver(backtest.Config{
		Deposit:     cfg.Backtest.Deposit,
		FeeBuffer:   cfg.FeeBuffer,
		BuyDay:      cfg.Backtest.BuyDay,
		BuyTime:     cfg.Backtest.BuyTime,
		MaxWaitDays: cfg.MaxWaitDays,
	}, regime.NewClassifier(cfg.MassiveBearFactor), triggers.NewEvaluator(cfg.Triggers))

	res, err := driver.Run(daily, fourHour)
	if err != nil {
		log.Fatalf("Backtest failed: %v", err)
	}

	reporting.PrintBacktestReport(res, cfg.DisplayPair)

	if *output != "" {
		if err := reporting.WritePurchasesCSV(res, *output); err != nil {
			log.Fatalf("Write purchase log: %v", err)
		}
		log.Printf("Purchase log written to %s", *output)
	}
}

// fetchAll pages through the OHLC endpoint, which caps each response at
// roughly 720 bars, until the series is caught up.
func fetchAll(ctx context.Context, client *kraken.Client, pair string, intervalMinutes int, since time.Time) ([]types.Candle, error) {
	var all []types.Candle
	cursor := since

	for {
		batch, err := client.GetOHLC(ctx, pair, intervalMinutes, cursor)
		if err != nil {
			return nil, err
		}

		fresh := 0
		for _, c := range batch {
			if len(all) == 0 || c.Time.After(all[len(all)-1].Time) {
				all = append(all, c)
				fresh++
			}
		}
		if fresh == 0 {
			return all, nil
		}
		cursor = all[len(all)-1].Time
	}
}
