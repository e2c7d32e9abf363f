package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/wanderlist/internal/bucket"
	"github.com/felixgeelhaar/wanderlist/internal/config"
	"github.com/felixgeelhaar/wanderlist/internal/flights"
	mcpserver "github.com/felixgeelhaar/wanderlist/internal/mcp"
	"github.com/felixgeelhaar/wanderlist/internal/storage/sqlite"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "wanderlist-mcp: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if _, err := config.EnsureWanderlistDir(); err != nil {
		return fmt.Errorf("ensure wanderlist dir: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	localCfg, err := config.LoadLocalConfig()
	if err != nil {
		return fmt.Errorf("load local config: %w", err)
	}
	if cfg.AmadeusAPIKey == "" {
		cfg.AmadeusAPIKey = localCfg.Amadeus.APIKey
		cfg.AmadeusAPISecret = localCfg.Amadeus.APISecret
	}

	// Stdio is the MCP transport, so logs must stay on stderr.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	// The MCP server always uses the local sqlite store; point
	// SQLITE_PATH at the daemon's database to share one bucket.
	db, err := sqlite.Open(cfg.SQLitePath)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migrate sqlite: %w", err)
	}

	store := sqlite.NewStore(db)

	client := flights.NewAmadeusClient(flights.AmadeusConfig{
		BaseURL:   cfg.AmadeusBaseURL,
		APIKey:    cfg.AmadeusAPIKey,
		APISecret: cfg.AmadeusAPISecret,
	})
	pricing := flights.NewResilientPricing(client, flights.DefaultResilientConfig())
	defer pricing.Close()

	aggregator := flights.NewAggregator(pricing, store, nil, slog.Default())

	mcpSrv := mcpserver.NewServer(mcpserver.Config{
		Buckets:    bucket.NewService(store),
		Aggregator: aggregator,
	})

	// Setup context with signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	// Serve on stdio
	return mcpSrv.ServeStdio(ctx)
}
