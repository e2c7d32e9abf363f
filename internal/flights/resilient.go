package flights

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/fortify/bulkhead"
	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/ratelimit"
)

// ResilientPricing wraps a Pricing client with resilience patterns from
// fortify. There is deliberately no retry layer: the pricing call is
// attempted exactly once per request.
type ResilientPricing struct {
	pricing        Pricing
	circuitBreaker circuitbreaker.CircuitBreaker[OfferCursor]
	bulkhead       bulkhead.Bulkhead[OfferCursor]
	rateLimit      ratelimit.RateLimiter
	logger         *slog.Logger
}

// ResilientConfig holds configuration for the resilient pricing wrapper.
type ResilientConfig struct {
	// EnableCircuitBreaker enables circuit breaker pattern
	EnableCircuitBreaker bool

	// EnableBulkhead enables concurrency limiting
	EnableBulkhead bool

	// EnableRateLimit enables rate limiting
	EnableRateLimit bool

	// MaxConcurrent for bulkhead (default: 5)
	MaxConcurrent int

	// RatePerSecond for rate limiting (default: 2)
	RatePerSecond int

	// Logger for resilience events
	Logger *slog.Logger
}

// DefaultResilientConfig returns sensible defaults for the pricing upstream.
func DefaultResilientConfig() ResilientConfig {
	return ResilientConfig{
		EnableCircuitBreaker: true,
		EnableBulkhead:       true,
		EnableRateLimit:      true,
		MaxConcurrent:        5,
		RatePerSecond:        2,
	}
}

// NewResilientPricing wraps a pricing client with resilience patterns.
func NewResilientPricing(pricing Pricing, cfg ResilientConfig) *ResilientPricing {
	rp := &ResilientPricing{
		pricing: pricing,
		logger:  cfg.Logger,
	}

	if cfg.EnableCircuitBreaker {
		rp.circuitBreaker = circuitbreaker.New[OfferCursor](circuitbreaker.Config{
			MaxRequests: 2,
			Interval:    10 * time.Second,
			Timeout:     60 * time.Second,
			ReadyToTrip: func(counts circuitbreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			OnStateChange: func(from, to circuitbreaker.State) {
				if rp.logger != nil {
					rp.logger.Warn("pricing circuit breaker state change",
						"from", from.String(),
						"to", to.String())
				}
			},
		})
	}

	if cfg.EnableBulkhead {
		maxConcurrent := cfg.MaxConcurrent
		if maxConcurrent <= 0 {
			maxConcurrent = 5
		}
		rp.bulkhead = bulkhead.New[OfferCursor](bulkhead.Config{
			MaxConcurrent: maxConcurrent,
			MaxQueue:      maxConcurrent * 2,
			QueueTimeout:  30 * time.Second,
		})
	}

	if cfg.EnableRateLimit {
		rate := cfg.RatePerSecond
		if rate <= 0 {
			rate = 2
		}
		rp.rateLimit = ratelimit.New(&ratelimit.Config{
			Rate:     rate,
			Burst:    rate * 3,
			Interval: time.Second,
		})
	}

	return rp
}

// Token passes through to the underlying client.
func (p *ResilientPricing) Token(ctx context.Context) (string, error) {
	return p.pricing.Token(ctx)
}

// SearchCheapest executes the search under the configured resilience layers.
func (p *ResilientPricing) SearchCheapest(ctx context.Context, origin string, maxPrice int, accessToken string) (OfferCursor, error) {
	if p.rateLimit != nil {
		if !p.rateLimit.Allow(ctx, "pricing") {
			return nil, fmt.Errorf("pricing rate limit exceeded")
		}
	}

	operation := func(ctx context.Context) (OfferCursor, error) {
		return p.pricing.SearchCheapest(ctx, origin, maxPrice, accessToken)
	}

	if p.bulkhead != nil {
		inner := operation
		operation = func(ctx context.Context) (OfferCursor, error) {
			return p.bulkhead.Execute(ctx, inner)
		}
	}

	if p.circuitBreaker != nil {
		return p.circuitBreaker.Execute(ctx, operation)
	}

	return operation(ctx)
}

// Close releases resources held by the resilient wrapper.
func (p *ResilientPricing) Close() error {
	if p.rateLimit != nil {
		return p.rateLimit.Close()
	}
	return nil
}
