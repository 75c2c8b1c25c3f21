package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"strength-tracker/internal/client"
	"strength-tracker/internal/config"
	"strength-tracker/internal/engine"
	"strength-tracker/internal/models"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// The strength engine daemon: samples the rate source on every 5-minute
// candle close and ships one snapshot to the tracker API per cycle.
func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("no .env file found")
	}

	cfg := config.Load()
	if cfg.RatesURL == "" {
		logrus.Fatal("RATES_URL must be set")
	}
	if cfg.AdminPassword == "" {
		logrus.Fatal("ADMIN_PASSWORD must be set for engine ingest access")
	}

	apiClient := client.New(cfg.APIBaseURL)
	if _, err := apiClient.Login(models.AdminUsername, cfg.AdminPassword); err != nil {
		logrus.WithError(err).Fatal("engine login failed")
	}

	source := engine.NewHTTPRateSource(cfg.RatesURL, engine.MarketTimezone)
	eng := engine.New(source, apiClient)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := eng.Run(ctx); err != nil && ctx.Err() == nil {
		logrus.WithError(err).Fatal("engine exited")
	}
}
