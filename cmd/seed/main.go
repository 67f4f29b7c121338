package main

import (
	"context"
	"flag"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/bikestore/internal/app"
	"github.com/mamadbah2/bikestore/internal/config"
	"github.com/mamadbah2/bikestore/internal/seed"
	"github.com/mamadbah2/bikestore/pkg/logger"
)

func main() {
	clearData := flag.Bool("clear", false, "delete existing customers, bikes and suppliers before seeding")
	envFile := flag.String("env", "", "optional .env file to load")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container, err := app.New(ctx, cfg, baseLogger)
	if err != nil {
		baseLogger.Fatal("failed to initialize application", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		container.Close(shutdownCtx)
	}()

	seeder := seed.NewSeeder(
		container.Store,
		container.Catalog,
		container.Customers,
		container.Sales,
		rand.New(rand.NewSource(time.Now().UnixNano())),
		container.Logger().Named("seed"),
	)

	if *clearData {
		if err := seeder.Clear(ctx); err != nil {
			baseLogger.Error("failed to clear data", zap.Error(err))
			return
		}
	}

	summary, err := seeder.Run(ctx)
	if err != nil {
		baseLogger.Error("seeding failed", zap.Error(err))
		return
	}
	baseLogger.Info("seeding complete",
		zap.Int("suppliers", summary.Suppliers),
		zap.Int("bikes", summary.Bikes),
		zap.Int("customers", summary.Customers),
		zap.Int("sales", summary.Sales),
	)
}
