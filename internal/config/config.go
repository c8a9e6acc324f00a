package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
)

// Config holds application configuration
type Config struct {
	Port            string
	DBConn          string
	LogLevel        string
	CBRURL          string
	RateMarginPct   decimal.Decimal
	RedisAddr       string
	RateCacheTTL    time.Duration
	AccrualSchedule string
	Timezone        *time.Location
	DueGraceDays    int
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		DBConn:          getEnv("DB_CONN", "host=localhost port=5436 user=test password=test dbname=budget sslmode=disable"),
		LogLevel:        getEnv("LOG_LEVEL", "INFO"),
		CBRURL:          getEnv("CBR_URL", "https://www.cbr.ru/DailyInfoWebServ/DailyInfo.asmx"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		AccrualSchedule: getEnv("ACCRUAL_SCHEDULE", "0 3 * * *"),
	}

	if cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}

	margin, err := decimal.NewFromString(getEnv("RATE_MARGIN_PCT", "5.0"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_MARGIN_PCT: %w", err)
	}
	cfg.RateMarginPct = margin

	ttl, err := time.ParseDuration(getEnv("RATE_CACHE_TTL", "12h"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_CACHE_TTL: %w", err)
	}
	cfg.RateCacheTTL = ttl

	if _, err := cron.ParseStandard(cfg.AccrualSchedule); err != nil {
		return nil, fmt.Errorf("invalid ACCRUAL_SCHEDULE: %w", err)
	}

	tz, err := time.LoadLocation(getEnv("TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	cfg.Timezone = tz

	grace, err := strconv.Atoi(getEnv("DUE_GRACE_DAYS", "5"))
	if err != nil || grace < 0 {
		return nil, fmt.Errorf("DUE_GRACE_DAYS must be a non-negative integer")
	}
	cfg.DueGraceDays = grace

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
