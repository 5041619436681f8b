package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/smartdca/kraken-smart-dca/internal/bot"
	"github.com/smartdca/kraken-smart-dca/internal/config"
	"github.com/smartdca/kraken-smart-dca/internal/exchange/kraken"
	"github.com/smartdca/kraken-smart-dca/internal/logger"
	"github.com/smartdca/kraken-smart-dca/internal/monitoring"
	"github.com/smartdca/kraken-smart-dca/internal/notifications"
)

func main() {
	// Load .env if present; real environment variables win.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Could not load .env: %v", err)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	mode := "live"
	if cfg.DryRun {
		mode = "dry-run"
	}
	log.Printf("Starting smart DCA bot for %s in %s mode", cfg.DisplayPair, mode)

	fileLog, err := logger.NewLogger(cfg.DisplayPair)
	if err != nil {
		log.Fatalf("Could not open log file: %v", err)
	}
	defer fileLog.Close()

	healthChecker := monitoring.NewHealthChecker()

	var notifier notifications.Notifier = notifications.Noop{}
	if cfg.Notifications.TelegramToken != "" {
		notifier = notifications.NewTelegramNotifier(cfg.Notifications.TelegramToken, cfg.Notifications.TelegramChatID)
	} else {
		log.Println("Telegram notifications disabled (no token configured)")
	}

	client := kraken.NewClient(kraken.Config{
		BaseURL:    cfg.Kraken.BaseURL,
		APIKey:     cfg.Kraken.APIKey,
		APISecret:  cfg.Kraken.APISecret,
		DryRun:     cfg.DryRun,
		DryBalance: cfg.DryBalance,
	})

	b := bot.New(cfg, client, notifier, fileLog, healthChecker)

	go setupMonitoringServers(cfg, healthChecker)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Live candle feed keeps the buffers the evaluation cycles read.
	stream := kraken.NewStream(cfg.Kraken.WSURL, cfg.DisplayPair, []int{60, 240, 1440}, b.HandleOHLC)
	go stream.Run(ctx)

	go func() {
		if err := b.Run(ctx); err != nil && ctx.Err() == nil {
			log.Printf("Bot error: %v", err)
			cancel()
		}
	}()

	if err := notifier.SendAlert("info", fmt.Sprintf("Smart DCA bot started for %s (%s)", cfg.DisplayPair, mode)); err != nil {
		log.Printf("Failed to send startup notification: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down...")
	cancel()

	if err := notifier.SendAlert("info", "Smart DCA bot stopped"); err != nil {
		log.Printf("Failed to send shutdown notification: %v", err)
	}
	log.Println("Bot stopped successfully")
}

func setupMonitoringServers(cfg *config.Config, healthChecker *monitoring.HealthChecker) {
	healthMux := http.NewServeMux()
	healthMux.Handle("/health", healthChecker)

	go func() {
		log.Printf("Starting health server on port %d", cfg.Monitoring.HealthPort)
		if err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.Monitoring.HealthPort), healthMux); err != nil {
			log.Printf("Health server error: %v", err)
		}
	}()

	go func() {
		log.Printf("Starting Prometheus server on port %d", cfg.Monitoring.MetricsPort)
		if err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.Monitoring.MetricsPort), monitoring.NewMetricsHandler()); err != nil {
			log.Printf("Prometheus server error: %v", err)
		}
	}()
}
