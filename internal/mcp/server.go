package mcp

import (
	"context"
	"fmt"

	mcp "github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/mcp-go/server"
	"github.com/google/uuid"

	"github.com/felixgeelhaar/wanderlist/internal/bucket"
	"github.com/felixgeelhaar/wanderlist/internal/domain"
	"github.com/felixgeelhaar/wanderlist/internal/flights"
)

// Server wraps the MCP server with wanderlist functionality
type Server struct {
	mcpServer  *server.Server
	buckets    *bucket.Service
	aggregator *flights.Aggregator
}

// Config contains configuration for the MCP server
type Config struct {
	Buckets    *bucket.Service
	Aggregator *flights.Aggregator
}

// NewServer creates a new MCP server for wanderlist
func NewServer(cfg Config) *Server {
	s := &Server{
		buckets:    cfg.Buckets,
		aggregator: cfg.Aggregator,
	}

	s.mcpServer = server.New(server.Info{
		Name:    "wanderlist",
		Version: "0.1.0",
	}, server.WithInstructions(`
Wanderlist tracks a personal travel bucket list and finds cheap flights.

Available tools:
- wanderlist_get: Read a bucket list
- wanderlist_add: Add an item to a bucket list
- wanderlist_complete: Mark an item completed or uncompleted
- wanderlist_remove: Remove an item from a bucket list
- wanderlist_flights: Search cheapest flight destinations from an origin

Tools address the bucket list by its id. The stdio transport is owner-local,
so no session authentication applies here.
`))

	s.registerTools()

	return s
}

// registerTools registers all wanderlist MCP tools
func (s *Server) registerTools() {
	s.mcpServer.Tool("wanderlist_get").
		Description("Read the full bucket list, items in insertion order.").
		Handler(s.handleGet)

	s.mcpServer.Tool("wanderlist_add").
		Description("Append a new item to the bucket list.").
		Handler(s.handleAdd)

	s.mcpServer.Tool("wanderlist_complete").
		Description("Mark a bucket list item completed (or uncompleted).").
		Handler(s.handleComplete)

	s.mcpServer.Tool("wanderlist_remove").
		Description("Remove an item from the bucket list.").
		Handler(s.handleRemove)

	s.mcpServer.Tool("wanderlist_flights").
		Description("Search the cheapest flight destinations from an origin airport and save them.").
		Handler(s.handleFlights)
}

// Input/Output types for tools

type GetInput struct {
	BucketID string `json:"bucket_id" jsonschema:"description=Bucket list id"`
}

type AddInput struct {
	BucketID    string `json:"bucket_id" jsonschema:"description=Bucket list id"`
	Description string `json:"description" jsonschema:"description=What to do before you die"`
}

type CompleteInput struct {
	BucketID  string `json:"bucket_id" jsonschema:"description=Bucket list id"`
	ItemID    string `json:"item_id" jsonschema:"description=Item id"`
	Completed *bool  `json:"completed,omitempty" jsonschema:"description=Completion state (default: true)"`
}

type RemoveInput struct {
	BucketID string `json:"bucket_id" jsonschema:"description=Bucket list id"`
	ItemID   string `json:"item_id" jsonschema:"description=Item id"`
}

type FlightsInput struct {
	Origin   string `json:"origin" jsonschema:"description=IATA origin airport code"`
	MaxPrice int    `json:"max_price,omitempty" jsonschema:"description=Maximum price (default: 100)"`
}

type Item struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

type BucketOutput struct {
	BucketID string `json:"bucket_id"`
	Items    []Item `json:"items"`
}

type AddOutput struct {
	Item Item `json:"item"`
}

type Flight struct {
	Destination   string  `json:"destination"`
	DepartureDate string  `json:"departure_date"`
	Price         float64 `json:"price"`
}

type FlightsOutput struct {
	Origin  string   `json:"origin"`
	Flights []Flight `json:"flights"`
}

// Tool handlers

func (s *Server) handleGet(ctx context.Context, input GetInput) (BucketOutput, error) {
	bucketID, err := uuid.Parse(input.BucketID)
	if err != nil {
		return BucketOutput{}, fmt.Errorf("invalid bucket id: %w", err)
	}

	list, err := s.buckets.Get(ctx, bucketID)
	if err != nil {
		return BucketOutput{}, fmt.Errorf("get bucket: %w", err)
	}

	return toBucketOutput(list), nil
}

func (s *Server) handleAdd(ctx context.Context, input AddInput) (AddOutput, error) {
	bucketID, err := uuid.Parse(input.BucketID)
	if err != nil {
		return AddOutput{}, fmt.Errorf("invalid bucket id: %w", err)
	}
	if input.Description == "" {
		return AddOutput{}, fmt.Errorf("description is required")
	}

	_, item, err := s.buckets.AddItem(ctx, bucketID, input.Description)
	if err != nil {
		return AddOutput{}, fmt.Errorf("add item: %w", err)
	}

	return AddOutput{
		Item: Item{
			ID:          item.ID.String(),
			Description: item.Description,
			Completed:   item.Completed,
		},
	}, nil
}

func (s *Server) handleComplete(ctx context.Context, input CompleteInput) (BucketOutput, error) {
	bucketID, err := uuid.Parse(input.BucketID)
	if err != nil {
		return BucketOutput{}, fmt.Errorf("invalid bucket id: %w", err)
	}
	itemID, err := uuid.Parse(input.ItemID)
	if err != nil {
		return BucketOutput{}, fmt.Errorf("invalid item id: %w", err)
	}

	completed := true
	if input.Completed != nil {
		completed = *input.Completed
	}

	list, err := s.buckets.SetItemCompleted(ctx, bucketID, itemID, completed)
	if err != nil {
		return BucketOutput{}, fmt.Errorf("complete item: %w", err)
	}

	return toBucketOutput(list), nil
}

func (s *Server) handleRemove(ctx context.Context, input RemoveInput) (BucketOutput, error) {
	bucketID, err := uuid.Parse(input.BucketID)
	if err != nil {
		return BucketOutput{}, fmt.Errorf("invalid bucket id: %w", err)
	}
	itemID, err := uuid.Parse(input.ItemID)
	if err != nil {
		return BucketOutput{}, fmt.Errorf("invalid item id: %w", err)
	}

	list, err := s.buckets.DeleteItem(ctx, bucketID, itemID)
	if err != nil {
		return BucketOutput{}, fmt.Errorf("remove item: %w", err)
	}

	return toBucketOutput(list), nil
}

func (s *Server) handleFlights(ctx context.Context, input FlightsInput) (FlightsOutput, error) {
	if input.Origin == "" {
		return FlightsOutput{}, fmt.Errorf("origin is required")
	}

	maxPrice := input.MaxPrice
	if maxPrice <= 0 {
		maxPrice = 100
	}

	token, err := s.aggregator.Token(ctx)
	if err != nil {
		return FlightsOutput{}, fmt.Errorf("obtain pricing token: %w", err)
	}

	records, err := s.aggregator.SearchAndPersist(ctx, input.Origin, maxPrice, token)
	if err != nil {
		return FlightsOutput{}, fmt.Errorf("search flights: %w", err)
	}

	result := make([]Flight, 0, len(records))
	for _, rec := range records {
		result = append(result, Flight{
			Destination:   rec.Destination,
			DepartureDate: rec.DepartureDate,
			Price:         rec.Price,
		})
	}

	return FlightsOutput{
		Origin:  input.Origin,
		Flights: result,
	}, nil
}

func toBucketOutput(list *domain.BucketList) BucketOutput {
	items := make([]Item, 0, len(list.Items))
	for _, item := range list.Items {
		items = append(items, Item{
			ID:          item.ID.String(),
			Description: item.Description,
			Completed:   item.Completed,
		})
	}
	return BucketOutput{
		BucketID: list.ID.String(),
		Items:    items,
	}
}

// ServeStdio starts the MCP server on stdio (for agent integration)
func (s *Server) ServeStdio(ctx context.Context) error {
	return mcp.ServeStdio(ctx, s.mcpServer)
}

// ServeHTTP starts the MCP server on HTTP (alternative transport)
func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	return mcp.ServeHTTP(ctx, s.mcpServer, addr)
}

// GetMCPServer returns the underlying MCP server (for testing)
func (s *Server) GetMCPServer() *server.Server {
	return s.mcpServer
}
