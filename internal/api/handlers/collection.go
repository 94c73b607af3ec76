package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/carddex/internal/api/response"
	"github.com/ramonehamilton/carddex/internal/inventory"
	"github.com/ramonehamilton/carddex/internal/query"
	"github.com/ramonehamilton/carddex/internal/storage/models"
)

// CollectionService is the inventory surface used by the collection endpoints.
type CollectionService interface {
	ListCards(ctx context.Context) ([]*models.Card, error)
	GetCard(ctx context.Context, id string) (*models.Card, error)
	ListSets(ctx context.Context) ([]*models.Set, error)
	Acquire(ctx context.Context, cardID string, quantity int) (*models.Card, error)
	BulkAdd(ctx context.Context, cardIDs []string, quantity int) (*inventory.BulkResult, error)
	UpdateOwnedQuantity(ctx context.Context, cardID string, quantity int) (*models.Card, error)
	IncrementOwned(ctx context.Context, cardID string, by int) (*models.Card, error)
	DecrementOwned(ctx context.Context, cardID string, by int) (*models.Card, error)
	DeleteCard(ctx context.Context, cardID string) error
}

// CollectionHandler handles the owned card collection.
type CollectionHandler struct {
	inventory CollectionService
}

// NewCollectionHandler creates a new CollectionHandler.
func NewCollectionHandler(svc CollectionService) *CollectionHandler {
	return &CollectionHandler{inventory: svc}
}

// GetCards lists owned cards. Filters: q, supertype, type, rarity, set;
// sort: name, date_added, set, number, rarity, type.
func (h *CollectionHandler) GetCards(w http.ResponseWriter, r *http.Request) {
	cards, err := h.inventory.ListCards(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}

	cards = query.FilterCards(cards, cardFilter(r))
	cards = query.SortCards(cards, query.ParseCardSort(r.URL.Query().Get("sort")))
	response.Success(w, cards)
}

// GetCard returns one owned card.
func (h *CollectionHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	card, err := h.inventory.GetCard(r.Context(), chi.URLParam(r, "cardID"))
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, card)
}

// AcquireRequest adds copies of one catalog card.
type AcquireRequest struct {
	CardID   string `json:"card_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"min=0,max=9999"`
}

// Acquire adds copies of a card, fetching it from the catalog when new.
// Quantity defaults to 1.
func (h *CollectionHandler) Acquire(w http.ResponseWriter, r *http.Request) {
	var req AcquireRequest
	if err := decode(r, &req); err != nil {
		response.FromError(w, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	card, err := h.inventory.Acquire(r.Context(), req.CardID, req.Quantity)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Created(w, card)
}

// BulkAddRequest adds the same quantity of several cards.
type BulkAddRequest struct {
	CardIDs  []string `json:"card_ids" validate:"required,min=1,dive,required"`
	Quantity int      `json:"quantity" validate:"min=0,max=9999"`
}

// BulkAdd adds many cards at once. Individual failures are reported in the
// result, not as an error status.
func (h *CollectionHandler) BulkAdd(w http.ResponseWriter, r *http.Request) {
	var req BulkAddRequest
	if err := decode(r, &req); err != nil {
		response.FromError(w, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	result, err := h.inventory.BulkAdd(r.Context(), req.CardIDs, req.Quantity)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, result)
}

// UpdateQuantity sets the owned quantity of a card. Negative values clamp to 0.
func (h *CollectionHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if err := decode(r, &req); err != nil {
		response.FromError(w, err)
		return
	}

	card, err := h.inventory.UpdateOwnedQuantity(r.Context(), chi.URLParam(r, "cardID"), req.value())
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, card)
}

// Increment adds copies of an owned card; the body {"by": n} is optional.
func (h *CollectionHandler) Increment(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, h.inventory.IncrementOwned)
}

// Decrement removes copies of an owned card, never going below 0.
func (h *CollectionHandler) Decrement(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, h.inventory.DecrementOwned)
}

func (h *CollectionHandler) step(w http.ResponseWriter, r *http.Request, apply func(context.Context, string, int) (*models.Card, error)) {
	by, err := decodeStep(r)
	if err != nil {
		response.FromError(w, err)
		return
	}
	card, err := apply(r.Context(), chi.URLParam(r, "cardID"), by)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, card)
}

// DeleteCard removes a card and every deck entry referencing it.
func (h *CollectionHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	if err := h.inventory.DeleteCard(r.Context(), chi.URLParam(r, "cardID")); err != nil {
		response.FromError(w, err)
		return
	}
	response.NoContent(w)
}

// FilterOptions lists the values present in the collection for each filter.
type FilterOptions struct {
	Types    []string          `json:"types"`
	Rarities []string          `json:"rarities"`
	Sets     []query.SetOption `json:"sets"`
}

// CollectionStatsResponse is the body of GET /collection/stats.
type CollectionStatsResponse struct {
	*query.CollectionStats
	Filters FilterOptions `json:"filters"`
}

// GetStats returns collection totals and the available filter values.
func (h *CollectionHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	cards, err := h.inventory.ListCards(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, CollectionStatsResponse{
		CollectionStats: query.ComputeCollectionStats(cards),
		Filters: FilterOptions{
			Types:    query.DistinctTypes(cards),
			Rarities: query.DistinctRarities(cards),
			Sets:     query.DistinctSets(cards),
		},
	})
}

// GetSets returns completion progress for every known set.
func (h *CollectionHandler) GetSets(w http.ResponseWriter, r *http.Request) {
	sets, err := h.inventory.ListSets(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}
	cards, err := h.inventory.ListCards(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, query.SetCompletions(sets, cards))
}
