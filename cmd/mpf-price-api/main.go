package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/mpfapps/mpf-price-api/internal/api"
	"github.com/mpfapps/mpf-price-api/internal/catalog"
	"github.com/mpfapps/mpf-price-api/internal/config"
	"github.com/mpfapps/mpf-price-api/internal/performance"
	"github.com/mpfapps/mpf-price-api/internal/prices"
	"github.com/mpfapps/mpf-price-api/internal/store"
	"github.com/mpfapps/mpf-price-api/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Load configuration ---
	cfg := config.Load()

	logger.Init(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	defer logger.Sync()
	logg := logger.S()
	logg.Info("starting [mpf-price-api]...")

	// --- DynamoDB store (shared, read-only, built once) ---
	client, err := store.NewClient(ctx, cfg.AWSRegion, cfg.DynamoEndpoint)
	if err != nil {
		logg.Fatalw("failed to create DynamoDB client", "error", err)
	}
	st := store.New(client, store.Tables{
		Catalog:      cfg.CatalogTable,
		PriceDaily:   cfg.PriceDailyTable,
		PriceWeekly:  cfg.PriceWeeklyTable,
		PriceMonthly: cfg.PriceMonthlyTable,
		Performance:  cfg.PerformanceTable,
	}, logg.Desugar())

	// --- Services ---
	catalogSvc := catalog.NewService(logg.Desugar(), st)
	priceAgg := prices.NewAggregator(logg.Desugar(), st)
	performanceSvc := performance.NewService(logg.Desugar(), st)

	// --- Fiber HTTP server ---
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
		BodyLimit:    cfg.HTTPBodyLimit,
	})

	handler := api.NewHandler(logg.Desugar(), catalogSvc, priceAgg, performanceSvc)
	api.RegisterRoutes(app, st, handler)

	go func() {
		logg.Infof("HTTP API listening on :%d", cfg.Port)
		if err := app.Listen(fmt.Sprintf(":%d", cfg.Port)); err != nil {
			logg.Fatalw("fiber.listen_failed", "error", err)
		}
	}()

	logg.Infow("[mpf-price-api] running",
		"env", cfg.Env,
		"region", cfg.AWSRegion,
		"catalog_table", cfg.CatalogTable)

	<-ctx.Done()
	logg.Info("shutting down [mpf-price-api]...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logg.Warnw("fiber.shutdown_failed", "error", err)
	}
}
