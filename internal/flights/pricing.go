// Package flights searches an external pricing service for cheap flights,
// deduplicates the offers by destination and persists the survivors.
package flights

import (
	"context"

	"github.com/felixgeelhaar/wanderlist/internal/domain"
)

// Pricing is the external flight-pricing collaborator.
type Pricing interface {
	// Token obtains an access token via the service's OAuth client-credentials
	// flow.
	Token(ctx context.Context) (string, error)

	// SearchCheapest runs one search and returns a cursor over the raw
	// offers in upstream order.
	SearchCheapest(ctx context.Context, origin string, maxPrice int, accessToken string) (OfferCursor, error)
}

// OfferCursor is a finite, single-pass sequence of raw offers. It is not
// restartable: once Next returns false the sequence is exhausted, and Err
// reports whether it ended cleanly.
type OfferCursor interface {
	Next() (domain.FlightOffer, bool)
	Err() error
}

// Repository is the storage collaborator for persisted flight records.
type Repository interface {
	// InsertFlight persists the record and assigns it a storage-generated
	// identifier.
	InsertFlight(ctx context.Context, record *domain.FlightRecord) error
}

// EventPublisher announces persisted flight records to downstream consumers.
type EventPublisher interface {
	PublishFlightSaved(ctx context.Context, record domain.FlightRecord) error
}
