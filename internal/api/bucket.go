package api

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/wanderlist/internal/bucket"
	"github.com/felixgeelhaar/wanderlist/internal/domain"
)

// BucketHandler handles bucket list endpoints
type BucketHandler struct {
	buckets *bucket.Service
}

// NewBucketHandler creates a new bucket handler
func NewBucketHandler(buckets *bucket.Service) *BucketHandler {
	return &BucketHandler{buckets: buckets}
}

// AddItemRequest is the request body for adding a bucket list item
type AddItemRequest struct {
	Description string `json:"description"`
}

// ItemResponse is the response for a single bucket list item
type ItemResponse struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// BucketResponse is the response for a full bucket list
type BucketResponse struct {
	ID    string         `json:"id"`
	Items []ItemResponse `json:"items"`
}

// Get returns the caller's bucket list
func (h *BucketHandler) Get(w http.ResponseWriter, r *http.Request) {
	bucketID, ok := BucketFromContext(r.Context())
	if !ok {
		Unauthorized(w, r, "authentication required")
		return
	}

	list, err := h.buckets.Get(r.Context(), bucketID)
	if err != nil {
		WriteDomainError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, toBucketResponse(list))
}

// AddItem appends a new item to the caller's bucket list
func (h *BucketHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	bucketID, ok := BucketFromContext(r.Context())
	if !ok {
		Unauthorized(w, r, "authentication required")
		return
	}

	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, r, "invalid request body")
		return
	}
	if req.Description == "" {
		BadRequest(w, r, "description is required")
		return
	}

	_, item, err := h.buckets.AddItem(r.Context(), bucketID, req.Description)
	if err != nil {
		WriteDomainError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusCreated, ItemResponse{
		ID:          item.ID.String(),
		Description: item.Description,
		Completed:   item.Completed,
	})
}

// SetItemCompleted marks an item completed or uncompleted
func (h *BucketHandler) SetItemCompleted(w http.ResponseWriter, r *http.Request) {
	bucketID, ok := BucketFromContext(r.Context())
	if !ok {
		Unauthorized(w, r, "authentication required")
		return
	}

	itemID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, r, "invalid item id")
		return
	}

	// Completed defaults to true; body may override for un-completing.
	completed := true
	if r.Body != nil && r.ContentLength > 0 {
		var req struct {
			Completed *bool `json:"completed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			BadRequest(w, r, "invalid request body")
			return
		}
		if req.Completed != nil {
			completed = *req.Completed
		}
	}

	list, err := h.buckets.SetItemCompleted(r.Context(), bucketID, itemID, completed)
	if err != nil {
		WriteDomainError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, toBucketResponse(list))
}

// DeleteItem removes an item from the caller's bucket list
func (h *BucketHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	bucketID, ok := BucketFromContext(r.Context())
	if !ok {
		Unauthorized(w, r, "authentication required")
		return
	}

	itemID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, r, "invalid item id")
		return
	}

	list, err := h.buckets.DeleteItem(r.Context(), bucketID, itemID)
	if err != nil {
		WriteDomainError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, toBucketResponse(list))
}

func toBucketResponse(list *domain.BucketList) BucketResponse {
	items := make([]ItemResponse, 0, len(list.Items))
	for _, item := range list.Items {
		items = append(items, ItemResponse{
			ID:          item.ID.String(),
			Description: item.Description,
			Completed:   item.Completed,
		})
	}
	return BucketResponse{
		ID:    list.ID.String(),
		Items: items,
	}
}
