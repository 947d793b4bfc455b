package config

import (
	"time"

	"github.com/joho/godotenv"

	pkgconfig "github.com/mpfapps/mpf-price-api/pkg/config"
)

// Config holds the runtime configuration for the service. It supports
// environment-based initialization with sensible defaults.
type Config struct {
	ServiceName string // e.g. "mpf-price-api"
	Env         string // e.g. "dev", "uat", "prod"
	LogLevel    string // "debug", "info", etc.
	Port        int

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	HTTPBodyLimit    int

	AWSRegion      string
	DynamoEndpoint string // optional endpoint override for dynamodb-local

	// Table names. Daily/weekly/monthly price tables are pre-aggregated
	// by the ingestion pipeline; this service only reads them.
	CatalogTable      string
	PriceDailyTable   string
	PriceWeeklyTable  string
	PriceMonthlyTable string
	PerformanceTable  string

	QueryTimeout time.Duration // per-request budget for store lookups
}

// Load loads configuration from environment variables and .env file if present.
func Load() *Config {
	// load .env silently (no error if missing)
	_ = godotenv.Load()

	return &Config{
		ServiceName: pkgconfig.GetEnv("SERVICE_NAME", "mpf-price-api"),
		Env:         pkgconfig.GetEnv("ENV", "dev"),
		LogLevel:    pkgconfig.GetEnv("LOG_LEVEL", "info"),
		Port:        pkgconfig.GetEnvInt("PORT", 9040),

		HTTPReadTimeout:  pkgconfig.GetEnvDuration("HTTP_READ_TIMEOUT", 10*time.Second),
		HTTPWriteTimeout: pkgconfig.GetEnvDuration("HTTP_WRITE_TIMEOUT", 10*time.Second),
		HTTPIdleTimeout:  pkgconfig.GetEnvDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
		HTTPBodyLimit:    pkgconfig.GetEnvInt("HTTP_BODY_LIMIT", 1*1024*1024),

		AWSRegion:      pkgconfig.GetEnv("AWS_REGION", "us-east-2"),
		DynamoEndpoint: pkgconfig.GetEnv("DYNAMO_ENDPOINT", ""),

		CatalogTable:      pkgconfig.GetEnv("CATALOG_TABLE", "MPFCatalog"),
		PriceDailyTable:   pkgconfig.GetEnv("PRICE_DAILY_TABLE", "MPFPriceDaily"),
		PriceWeeklyTable:  pkgconfig.GetEnv("PRICE_WEEKLY_TABLE", "MPFPriceWeekly"),
		PriceMonthlyTable: pkgconfig.GetEnv("PRICE_MONTHLY_TABLE", "MPFPriceMonthly"),
		PerformanceTable:  pkgconfig.GetEnv("PERFORMANCE_TABLE", "MPFFundPerformance"),

		QueryTimeout: pkgconfig.GetEnvDuration("QUERY_TIMEOUT", 15*time.Second),
	}
}
