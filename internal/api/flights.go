package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/felixgeelhaar/wanderlist/internal/flights"
)

// FlightsHandler handles flight search endpoints
type FlightsHandler struct {
	aggregator *flights.Aggregator
	store      Store
}

// NewFlightsHandler creates a new flights handler
func NewFlightsHandler(aggregator *flights.Aggregator, store Store) *FlightsHandler {
	return &FlightsHandler{aggregator: aggregator, store: store}
}

// FlightRecordResponse is the response for a persisted flight record
type FlightRecordResponse struct {
	ID            string          `json:"id"`
	Origin        string          `json:"origin"`
	Destination   string          `json:"destination"`
	DepartureDate string          `json:"departure_date"`
	Price         float64         `json:"price"`
	Raw           json.RawMessage `json:"raw,omitempty"`
	CreatedAt     string          `json:"created_at"`
}

// SearchResponse is the response for a flight search
type SearchResponse struct {
	Flights []FlightRecordResponse `json:"flights"`
}

// TokenResponse is the response for a pricing access token
type TokenResponse struct {
	AccessToken string `json:"access_token"`
}

// Search runs a cheapest-destination search and returns the persisted records
func (h *FlightsHandler) Search(w http.ResponseWriter, r *http.Request) {
	if _, ok := BucketFromContext(r.Context()); !ok {
		Unauthorized(w, r, "authentication required")
		return
	}

	origin := r.URL.Query().Get("origin")
	if origin == "" {
		BadRequest(w, r, "origin is required")
		return
	}

	maxPrice := 100
	if raw := r.URL.Query().Get("max_price"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			BadRequest(w, r, "max_price must be a positive integer")
			return
		}
		maxPrice = parsed
	}

	accessToken := r.URL.Query().Get("access_token")
	if accessToken == "" {
		token, err := h.aggregator.Token(r.Context())
		if err != nil {
			WriteDomainError(w, r, err)
			return
		}
		accessToken = token
	}

	records, err := h.aggregator.SearchAndPersist(r.Context(), origin, maxPrice, accessToken)
	if err != nil {
		WriteDomainError(w, r, err)
		return
	}

	result := make([]FlightRecordResponse, 0, len(records))
	for _, rec := range records {
		result = append(result, FlightRecordResponse{
			ID:            rec.ID.String(),
			Origin:        rec.Origin,
			Destination:   rec.Destination,
			DepartureDate: rec.DepartureDate,
			Price:         rec.Price,
			Raw:           rec.Raw,
			CreatedAt:     rec.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	WriteJSON(w, http.StatusOK, SearchResponse{Flights: result})
}

// List returns previously saved flight records, optionally filtered by origin
func (h *FlightsHandler) List(w http.ResponseWriter, r *http.Request) {
	if _, ok := BucketFromContext(r.Context()); !ok {
		Unauthorized(w, r, "authentication required")
		return
	}

	records, err := h.store.ListFlights(r.Context(), r.URL.Query().Get("origin"))
	if err != nil {
		WriteDomainError(w, r, err)
		return
	}

	result := make([]FlightRecordResponse, 0, len(records))
	for _, rec := range records {
		result = append(result, FlightRecordResponse{
			ID:            rec.ID.String(),
			Origin:        rec.Origin,
			Destination:   rec.Destination,
			DepartureDate: rec.DepartureDate,
			Price:         rec.Price,
			Raw:           rec.Raw,
			CreatedAt:     rec.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	WriteJSON(w, http.StatusOK, SearchResponse{Flights: result})
}

// Token returns a fresh pricing access token
func (h *FlightsHandler) Token(w http.ResponseWriter, r *http.Request) {
	if _, ok := BucketFromContext(r.Context()); !ok {
		Unauthorized(w, r, "authentication required")
		return
	}

	token, err := h.aggregator.Token(r.Context())
	if err != nil {
		WriteDomainError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, TokenResponse{AccessToken: token})
}
