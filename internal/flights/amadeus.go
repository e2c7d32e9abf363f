package flights

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/wanderlist/internal/domain"
)

// AmadeusClient implements Pricing against the Amadeus flight-destinations
// API.
type AmadeusClient struct {
	baseURL    string
	apiKey     string
	apiSecret  string
	httpClient *http.Client
}

// AmadeusConfig holds configuration for the Amadeus client.
type AmadeusConfig struct {
	BaseURL   string // default: https://test.api.amadeus.com
	APIKey    string
	APISecret string
}

// NewAmadeusClient creates a new Amadeus pricing client.
func NewAmadeusClient(cfg AmadeusConfig) *AmadeusClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://test.api.amadeus.com"
	}
	return &AmadeusClient{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		apiSecret:  cfg.APISecret,
		httpClient: &http.Client{},
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Token runs the OAuth2 client-credentials flow.
func (c *AmadeusClient) Token(ctx context.Context) (string, error) {
	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {c.apiKey},
		"client_secret": {c.apiSecret},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/security/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("token endpoint (status %d): %s", resp.StatusCode, string(body))
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	return tok.AccessToken, nil
}

type destinationsResponse struct {
	Data []json.RawMessage `json:"data"`
}

type destinationItem struct {
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"departureDate"`
	Price         struct {
		Total string `json:"total"`
	} `json:"price"`
}

// SearchCheapest queries the flight-destinations endpoint once and returns a
// cursor over the offers in response order.
func (c *AmadeusClient) SearchCheapest(ctx context.Context, origin string, maxPrice int, accessToken string) (OfferCursor, error) {
	query := url.Values{"origin": {origin}}
	if maxPrice > 0 {
		query.Set("maxPrice", strconv.Itoa(maxPrice))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/v1/shopping/flight-destinations?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("search endpoint (status %d): %s", resp.StatusCode, string(body))
	}

	var payload destinationsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	return &sliceCursor{raw: payload.Data}, nil
}

// sliceCursor walks a decoded response body one offer at a time. Malformed
// entries end the sequence with an error rather than being skipped.
type sliceCursor struct {
	raw []json.RawMessage
	pos int
	err error
}

func (c *sliceCursor) Next() (domain.FlightOffer, bool) {
	if c.err != nil || c.pos >= len(c.raw) {
		return domain.FlightOffer{}, false
	}

	entry := c.raw[c.pos]
	c.pos++

	var item destinationItem
	if err := json.Unmarshal(entry, &item); err != nil {
		c.err = fmt.Errorf("decode offer %d: %w", c.pos-1, err)
		return domain.FlightOffer{}, false
	}

	price, err := strconv.ParseFloat(item.Price.Total, 64)
	if err != nil && item.Price.Total != "" {
		c.err = fmt.Errorf("parse offer %d price %q: %w", c.pos-1, item.Price.Total, err)
		return domain.FlightOffer{}, false
	}

	return domain.FlightOffer{
		Origin:        item.Origin,
		Destination:   item.Destination,
		DepartureDate: item.DepartureDate,
		Price:         price,
		Raw:           entry,
	}, true
}

func (c *sliceCursor) Err() error {
	return c.err
}
