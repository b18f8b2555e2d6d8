package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"NewsSentiment/internal/app"
	"NewsSentiment/internal/config"
	"NewsSentiment/internal/logging"
)

func main() {
	company := flag.String("company", "", "company to analyze once")
	watch := flag.Bool("watch", false, "analyze the configured watchlist on every scheduler tick")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := logging.NewWithWriter(os.Stderr, cfg.Logging.Level)

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("application init failed", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	switch {
	case *watch:
		if err := application.Watch(ctx); err != nil {
			logger.Error("watch stopped", "error", err)
			os.Exit(1)
		}
	case *company != "":
		out, err := application.Analyze(ctx, *company)
		if err != nil {
			logger.Error("analysis failed", "company", *company, "error", err)
			os.Exit(1)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			logger.Error("encode result", "error", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintln(os.Stderr, "usage: newssentiment -company <name> | -watch")
		flag.PrintDefaults()
		os.Exit(2)
	}
}
