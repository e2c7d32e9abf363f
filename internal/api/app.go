package api

import (
	"context"
	"log/slog"

	"github.com/felixgeelhaar/wanderlist/internal/auth"
	"github.com/felixgeelhaar/wanderlist/internal/bucket"
	"github.com/felixgeelhaar/wanderlist/internal/config"
	"github.com/felixgeelhaar/wanderlist/internal/domain"
	"github.com/felixgeelhaar/wanderlist/internal/flights"
	"github.com/felixgeelhaar/wanderlist/internal/session"
)

// Store is the persistence surface the API needs. Both the sqlite and
// postgres stores satisfy it.
type Store interface {
	auth.Repository
	bucket.Repository
	flights.Repository

	// ListFlights returns previously saved flight records, optionally
	// filtered by origin.
	ListFlights(ctx context.Context, origin string) ([]domain.FlightRecord, error)
}

// App holds all application dependencies
type App struct {
	Config   *config.Config
	Store    Store
	Sessions *session.Store
	Auth     *auth.Service
	Buckets  *bucket.Service
	Flights  *flights.Aggregator

	ping    func(context.Context) error
	pricing flights.Pricing
}

// AppConfig holds configuration for application initialization
type AppConfig struct {
	Config *config.Config
	Store  Store

	// Pricing overrides the Amadeus client built from Config. Used in tests.
	Pricing flights.Pricing

	// Events is the optional flight-saved publisher. Nil disables publishing.
	Events flights.EventPublisher

	// Ping reports storage health for the readiness endpoint.
	Ping func(context.Context) error
}

// NewApp creates a new application instance with all dependencies wired
func NewApp(cfg AppConfig) *App {
	app := &App{
		Config:   cfg.Config,
		Store:    cfg.Store,
		Sessions: session.NewStore(),
		ping:     cfg.Ping,
	}

	app.Auth = auth.NewService(cfg.Store, app.Sessions)
	app.Buckets = bucket.NewService(cfg.Store)

	pricing := cfg.Pricing
	if pricing == nil {
		client := flights.NewAmadeusClient(flights.AmadeusConfig{
			BaseURL:   cfg.Config.AmadeusBaseURL,
			APIKey:    cfg.Config.AmadeusAPIKey,
			APISecret: cfg.Config.AmadeusAPISecret,
		})
		pricing = flights.NewResilientPricing(client, flights.DefaultResilientConfig())
	}
	app.pricing = pricing

	app.Flights = flights.NewAggregator(pricing, cfg.Store, cfg.Events, slog.Default())

	return app
}

// Close cleans up application resources
func (a *App) Close() error {
	if closer, ok := a.pricing.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
