package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/awu339/LeadIn-LeadOut/internal/config"
	"github.com/awu339/LeadIn-LeadOut/internal/httpx"
	"github.com/awu339/LeadIn-LeadOut/internal/pipeline"
	"github.com/awu339/LeadIn-LeadOut/internal/store"
)

func main() {
	cfg := config.FromEnv()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	pipe := pipeline.New(cfg, logger)
	st := store.NewMemory()

	r := httpx.NewRouter(logger, pipe, st)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("starting server",
		slog.String("port", cfg.Port),
		slog.String("sales_channel", cfg.SalesChannel),
		slog.String("order_status", cfg.OrderStatus))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", slog.String("err", err.Error()))
		os.Exit(1)
	}
}
