package flights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/wanderlist/internal/domain"
)

// scriptedCursor yields predefined offers and counts how many were pulled.
type scriptedCursor struct {
	offers []domain.FlightOffer
	pos    int
	pulls  int
	failAt int // fail after this many pulls; 0 disables
	err    error
}

func (c *scriptedCursor) Next() (domain.FlightOffer, bool) {
	if c.err != nil {
		return domain.FlightOffer{}, false
	}
	c.pulls++
	if c.failAt > 0 && c.pulls > c.failAt {
		c.err = errors.New("upstream hiccup")
		return domain.FlightOffer{}, false
	}
	if c.pos >= len(c.offers) {
		return domain.FlightOffer{}, false
	}
	offer := c.offers[c.pos]
	c.pos++
	return offer, true
}

func (c *scriptedCursor) Err() error { return c.err }

// mockPricing returns a fixed cursor or an error.
type mockPricing struct {
	cursor *scriptedCursor
	err    error
	calls  int
}

func (m *mockPricing) Token(ctx context.Context) (string, error) {
	return "test-token", nil
}

func (m *mockPricing) SearchCheapest(ctx context.Context, origin string, maxPrice int, accessToken string) (OfferCursor, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.cursor, nil
}

// mockFlightRepo records inserts and assigns ids like the storage layer.
type mockFlightRepo struct {
	inserted []domain.FlightRecord
	err      error
}

func (m *mockFlightRepo) InsertFlight(ctx context.Context, record *domain.FlightRecord) error {
	if m.err != nil {
		return m.err
	}
	record.ID = uuid.New()
	m.inserted = append(m.inserted, *record)
	return nil
}

// mockPublisher records published events.
type mockPublisher struct {
	published []domain.FlightRecord
	err       error
}

func (m *mockPublisher) PublishFlightSaved(ctx context.Context, record domain.FlightRecord) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, record)
	return nil
}

func offersTo(destinations ...string) []domain.FlightOffer {
	offers := make([]domain.FlightOffer, 0, len(destinations))
	for i, dest := range destinations {
		offers = append(offers, domain.FlightOffer{
			Origin:        "MAD",
			Destination:   dest,
			DepartureDate: "2026-09-01",
			Price:         float64(100 + i),
			Raw:           json.RawMessage(fmt.Sprintf(`{"destination":%q}`, dest)),
		})
	}
	return offers
}

func TestAggregator_DedupAndCap(t *testing.T) {
	cursor := &scriptedCursor{offers: offersTo("A", "A", "B", "C", "C", "C", "D", "E", "F", "G")}
	pricing := &mockPricing{cursor: cursor}
	repo := &mockFlightRepo{}

	agg := NewAggregator(pricing, repo, nil, nil)
	records, err := agg.SearchAndPersist(context.Background(), "MAD", 200, "tok")
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	want := []string{"A", "B", "C", "D", "E", "F"}
	if len(records) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(records))
	}
	for i, dest := range want {
		if records[i].Destination != dest {
			t.Errorf("record %d: destination = %s, want %s", i, records[i].Destination, dest)
		}
		if records[i].ID == uuid.Nil {
			t.Errorf("record %d: missing storage-assigned id", i)
		}
	}

	// G sits behind the cap and must never be pulled from the cursor.
	// Pulls: A A B C C C D E F = 9, then the cap stops the loop.
	if cursor.pulls != 9 {
		t.Errorf("cursor pulled %d times, want 9 (offers past the cap inspected)", cursor.pulls)
	}
	if len(repo.inserted) != 6 {
		t.Errorf("expected 6 persisted records, got %d", len(repo.inserted))
	}
	if pricing.calls != 1 {
		t.Errorf("pricing called %d times, want exactly 1", pricing.calls)
	}
}

func TestAggregator_FirstSeenWins(t *testing.T) {
	offers := offersTo("A", "A")
	offers[0].Price = 50 // first occurrence, kept
	offers[1].Price = 10 // cheaper but later, skipped
	pricing := &mockPricing{cursor: &scriptedCursor{offers: offers}}
	repo := &mockFlightRepo{}

	records, err := NewAggregator(pricing, repo, nil, nil).SearchAndPersist(context.Background(), "MAD", 0, "tok")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(records) != 1 || records[0].Price != 50 {
		t.Errorf("expected the first-seen offer to survive, got %+v", records)
	}
}

func TestAggregator_FewerThanCap(t *testing.T) {
	pricing := &mockPricing{cursor: &scriptedCursor{offers: offersTo("A", "B")}}
	repo := &mockFlightRepo{}

	records, err := NewAggregator(pricing, repo, nil, nil).SearchAndPersist(context.Background(), "MAD", 0, "tok")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("expected 2 records, got %d", len(records))
	}
}

func TestAggregator_PricingError(t *testing.T) {
	pricing := &mockPricing{err: errors.New("connection refused")}
	repo := &mockFlightRepo{}

	_, err := NewAggregator(pricing, repo, nil, nil).SearchAndPersist(context.Background(), "MAD", 0, "tok")
	if !errors.Is(err, domain.ErrPricingUnavailable) {
		t.Errorf("expected ErrPricingUnavailable, got %v", err)
	}
	if len(repo.inserted) != 0 {
		t.Errorf("no records should persist when the call itself fails")
	}
}

func TestAggregator_MidStreamFailureKeepsPersisted(t *testing.T) {
	cursor := &scriptedCursor{offers: offersTo("A", "B", "C", "D"), failAt: 2}
	pricing := &mockPricing{cursor: cursor}
	repo := &mockFlightRepo{}

	_, err := NewAggregator(pricing, repo, nil, nil).SearchAndPersist(context.Background(), "MAD", 0, "tok")
	if !errors.Is(err, domain.ErrPricingUnavailable) {
		t.Fatalf("expected ErrPricingUnavailable, got %v", err)
	}

	// no rollback: the two records persisted before the failure remain
	if len(repo.inserted) != 2 {
		t.Errorf("expected 2 surviving records, got %d", len(repo.inserted))
	}
}

func TestAggregator_PersistsBeforePublishing(t *testing.T) {
	pricing := &mockPricing{cursor: &scriptedCursor{offers: offersTo("A", "B")}}
	repo := &mockFlightRepo{}
	events := &mockPublisher{}

	records, err := NewAggregator(pricing, repo, events, nil).SearchAndPersist(context.Background(), "MAD", 0, "tok")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(events.published) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events.published))
	}
	for i, ev := range events.published {
		if ev.ID != records[i].ID {
			t.Errorf("event %d published before the record had its id", i)
		}
	}
}

func TestAggregator_PublishFailureDoesNotFailSearch(t *testing.T) {
	pricing := &mockPricing{cursor: &scriptedCursor{offers: offersTo("A")}}
	repo := &mockFlightRepo{}
	events := &mockPublisher{err: errors.New("broker down")}

	records, err := NewAggregator(pricing, repo, events, nil).SearchAndPersist(context.Background(), "MAD", 0, "tok")
	if err != nil {
		t.Fatalf("publish failure must not fail the search: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("expected 1 record, got %d", len(records))
	}
}

func TestAggregator_EmptyResult(t *testing.T) {
	pricing := &mockPricing{cursor: &scriptedCursor{}}
	repo := &mockFlightRepo{}

	records, err := NewAggregator(pricing, repo, nil, nil).SearchAndPersist(context.Background(), "MAD", 0, "tok")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}
