package config

import (
	"log/slog"
	"os"
	"strconv"
)

type Config struct {
	Port         string
	SalesChannel string
	OrderStatus  string
	CacheEntries int
	LogLevel     slog.Level
}

func FromEnv() Config {
	entries := 10
	if v := os.Getenv("CACHE_ENTRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			entries = n
		}
	}
	lvl := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		lvl = slog.LevelDebug
	}
	return Config{
		Port:         envOr("PORT", "8080"),
		SalesChannel: envOr("SALES_CHANNEL", "Amazon.com"),
		OrderStatus:  envOr("ORDER_STATUS", "Shipped"),
		CacheEntries: entries,
		LogLevel:     lvl,
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
