package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/felixgeelhaar/wanderlist/internal/api"
	"github.com/felixgeelhaar/wanderlist/internal/config"
	"github.com/felixgeelhaar/wanderlist/internal/flights"
	"github.com/felixgeelhaar/wanderlist/internal/queue"
	"github.com/felixgeelhaar/wanderlist/internal/storage/postgres"
	"github.com/felixgeelhaar/wanderlist/internal/storage/sqlite"
)

const (
	pidFileName = "wanderlistd.pid"
)

func main() {
	if err := run(); err != nil {
		slog.Error("daemon error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Ensure ~/.wanderlist directory exists
	wanderlistDir, err := config.EnsureWanderlistDir()
	if err != nil {
		return fmt.Errorf("ensure wanderlist dir: %w", err)
	}

	// Environment variables take precedence; the local config file fills
	// the gaps (log level, Amadeus secrets).
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
	if cfg.AMQPURL == "" {
		cfg.AMQPURL = localCfg.Queue.URL
	}

	// Setup logging
	logLevel := parseLogLevel(localCfg.Daemon.LogLevel)
	if cfg.Debug {
		logLevel = slog.LevelDebug
	}
	logFile, err := setupLogging(wanderlistDir, logLevel)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	// Write PID file
	pidPath := filepath.Join(wanderlistDir, pidFileName)
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	ctx := context.Background()

	// Open storage: postgres when DATABASE_URL is set, sqlite otherwise
	store, ping, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer closeStore()

	// Optional event publishing over RabbitMQ
	var events flights.EventPublisher
	if cfg.AMQPURL != "" {
		conn, err := queue.NewConnection(cfg.AMQPURL)
		if err != nil {
			return fmt.Errorf("connect queue: %w", err)
		}
		defer conn.Close()
		events = queue.NewProducer(conn)
	}

	app := api.NewApp(api.AppConfig{
		Config: cfg,
		Store:  store,
		Events: events,
		Ping:   ping,
	})

	server := api.NewServer(app)

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh

		slog.Info("received signal, shutting down", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
		close(done)
	}()

	// Start server
	if err := server.Start(); err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	<-done
	slog.Info("daemon stopped")
	return nil
}

// openStore selects the storage backend and returns the store, a readiness
// ping and a cleanup function.
func openStore(ctx context.Context, cfg *config.Config) (api.Store, func(context.Context) error, func(), error) {
	if cfg.DatabaseURL != "" {
		pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, nil, fmt.Errorf("migrate postgres: %w", err)
		}
		slog.Info("using postgres store")
		return postgres.NewStore(pool), pool.Ping, pool.Close, nil
	}

	db, err := sqlite.Open(cfg.SQLitePath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	slog.Info("using sqlite store", "path", cfg.SQLitePath)
	return sqlite.NewStore(db), db.PingContext, func() { db.Close() }, nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func setupLogging(wanderlistDir string, level slog.Level) (*os.File, error) {
	logPath := filepath.Join(wanderlistDir, "logs", "wanderlistd.log")

	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	// JSON to the log file, text to stderr for foreground mode
	multiHandler := &multiHandler{
		handlers: []slog.Handler{
			slog.NewJSONHandler(logFile, &slog.HandlerOptions{
				Level: level,
			}),
			slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			}),
		},
	}

	slog.SetDefault(slog.New(multiHandler))

	return logFile, nil
}

func writePIDFile(path string) error {
	pid := os.Getpid()
	return os.WriteFile(path, []byte(fmt.Sprintf("%d\n", pid)), 0644)
}

// multiHandler logs to multiple handlers
type multiHandler struct {
	handlers []slog.Handler
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, r.Level) {
			if err := handler.Handle(ctx, r); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}
