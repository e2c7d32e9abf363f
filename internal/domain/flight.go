package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// FlightOffer is a raw offer as returned by the pricing collaborator.
// Raw carries the full upstream payload untouched.
type FlightOffer struct {
	Origin        string          `json:"origin"`
	Destination   string          `json:"destination"`
	DepartureDate string          `json:"departureDate"`
	Price         float64         `json:"price"`
	Raw           json.RawMessage `json:"raw,omitempty"`
}

// FlightRecord is a persisted flight offer. Records are written once per
// distinct destination per aggregation run and never updated or deleted.
type FlightRecord struct {
	ID            uuid.UUID       `json:"id"`
	Origin        string          `json:"origin"`
	Destination   string          `json:"destination"`
	DepartureDate string          `json:"departureDate"`
	Price         float64         `json:"price"`
	Raw           json.RawMessage `json:"raw,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}
