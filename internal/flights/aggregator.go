package flights

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/wanderlist/internal/domain"
)

// destinationCap is the hard limit of distinct destinations persisted per
// aggregation run. Offers past the cap are never pulled from the cursor.
const destinationCap = 6

// Aggregator consumes raw offers from the pricing collaborator, keeps the
// first offer seen per destination and persists the survivors.
type Aggregator struct {
	pricing Pricing
	repo    Repository
	events  EventPublisher // optional
	logger  *slog.Logger
}

// NewAggregator creates a flight aggregator. events may be nil when no
// message broker is configured.
func NewAggregator(pricing Pricing, repo Repository, events EventPublisher, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{pricing: pricing, repo: repo, events: events, logger: logger}
}

// Token fetches an access token from the pricing collaborator.
func (a *Aggregator) Token(ctx context.Context) (string, error) {
	token, err := a.pricing.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrPricingUnavailable, err)
	}
	return token, nil
}

// SearchAndPersist runs one aggregation: a single pricing call, first-seen
// dedup by destination, immediate persistence of each survivor. Records are
// returned in persistence order. On a pricing failure the error surfaces but
// records persisted before the failure stay persisted.
func (a *Aggregator) SearchAndPersist(ctx context.Context, origin string, maxPrice int, accessToken string) ([]domain.FlightRecord, error) {
	cursor, err := a.pricing.SearchCheapest(ctx, origin, maxPrice, accessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPricingUnavailable, err)
	}

	seen := make(map[string]struct{}, destinationCap)
	records := make([]domain.FlightRecord, 0, destinationCap)

	for len(seen) < destinationCap {
		offer, ok := cursor.Next()
		if !ok {
			break
		}
		if _, dup := seen[offer.Destination]; dup {
			continue
		}
		seen[offer.Destination] = struct{}{}

		record := domain.FlightRecord{
			Origin:        offer.Origin,
			Destination:   offer.Destination,
			DepartureDate: offer.DepartureDate,
			Price:         offer.Price,
			Raw:           offer.Raw,
			CreatedAt:     time.Now(),
		}
		if err := a.repo.InsertFlight(ctx, &record); err != nil {
			return nil, fmt.Errorf("persist flight to %s: %w", offer.Destination, err)
		}
		records = append(records, record)

		a.publish(ctx, record)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPricingUnavailable, err)
	}

	a.logger.Info("flight aggregation complete",
		"origin", origin,
		"destinations", len(records),
	)
	return records, nil
}

// publish is best-effort: a broker failure must not fail the search.
func (a *Aggregator) publish(ctx context.Context, record domain.FlightRecord) {
	if a.events == nil {
		return
	}
	if err := a.events.PublishFlightSaved(ctx, record); err != nil {
		a.logger.Warn("publish flight event failed",
			"flight_id", record.ID,
			"destination", record.Destination,
			"error", err,
		)
	}
}
