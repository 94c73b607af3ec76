package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/carddex/internal/api/response"
	"github.com/ramonehamilton/carddex/internal/storage/models"
)

// EnergyService manages the owned basic-energy pool.
type EnergyService interface {
	EnergyPool(ctx context.Context) ([]models.BasicEnergy, error)
	TotalEnergy(ctx context.Context) (int, error)
	SetEnergy(ctx context.Context, energyType string, count int) (int, error)
	IncrementEnergy(ctx context.Context, energyType string, by int) (int, error)
	DecrementEnergy(ctx context.Context, energyType string, by int) (int, error)
	ResetEnergy(ctx context.Context, energyType string) error
	ResetAllEnergy(ctx context.Context) error
	EnergyTypesOwned(ctx context.Context) ([]string, error)
	BasicEnergyAvailable(ctx context.Context, energyType string) (int, error)
	CanAddBasicEnergy(ctx context.Context, energyType string, quantity int) (bool, error)
}

// EnergyHandler handles the owned basic-energy pool.
type EnergyHandler struct {
	energy EnergyService
}

// NewEnergyHandler creates a new EnergyHandler.
func NewEnergyHandler(svc EnergyService) *EnergyHandler {
	return &EnergyHandler{energy: svc}
}

// EnergyPoolResponse lists every basic energy type with its owned count.
type EnergyPoolResponse struct {
	Pool       []models.BasicEnergy `json:"pool"`
	Total      int                  `json:"total"`
	OwnedTypes []string             `json:"owned_types"`
}

// EnergyAvailabilityResponse is how much of one type the decks can still use.
type EnergyAvailabilityResponse struct {
	Type      string `json:"type"`
	Available int    `json:"available"`
	Quantity  int    `json:"quantity"`
	CanAdd    bool   `json:"can_add"`
}

// EnergyCountResponse is the owned count of one type after a change.
type EnergyCountResponse struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// GetPool returns the pool.
func (h *EnergyHandler) GetPool(w http.ResponseWriter, r *http.Request) {
	pool, err := h.energy.EnergyPool(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}
	total, err := h.energy.TotalEnergy(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}
	owned, err := h.energy.EnergyTypesOwned(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}
	if owned == nil {
		owned = []string{}
	}
	response.Success(w, EnergyPoolResponse{Pool: pool, Total: total, OwnedTypes: owned})
}

// GetAvailability reports the unallocated count of one type and whether
// ?quantity=n (default 1) more fits in a deck.
func (h *EnergyHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	quantity, err := intParam(r, "quantity", 1)
	if err != nil {
		response.FromError(w, err)
		return
	}
	energyType := chi.URLParam(r, "energyType")
	available, err := h.energy.BasicEnergyAvailable(r.Context(), energyType)
	if err != nil {
		response.FromError(w, err)
		return
	}
	canAdd, err := h.energy.CanAddBasicEnergy(r.Context(), energyType, quantity)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, EnergyAvailabilityResponse{
		Type:      energyType,
		Available: available,
		Quantity:  quantity,
		CanAdd:    canAdd,
	})
}

// SetCount sets the owned count of one type. Negative counts clamp to 0.
func (h *EnergyHandler) SetCount(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if err := decode(r, &req); err != nil {
		response.FromError(w, err)
		return
	}
	energyType := chi.URLParam(r, "energyType")
	count, err := h.energy.SetEnergy(r.Context(), energyType, req.value())
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, EnergyCountResponse{Type: energyType, Count: count})
}

// Increment adds to one type; the body {"by": n} is optional and defaults to 1.
func (h *EnergyHandler) Increment(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, h.energy.IncrementEnergy)
}

// Decrement removes from one type, never going below 0.
func (h *EnergyHandler) Decrement(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, h.energy.DecrementEnergy)
}

func (h *EnergyHandler) step(w http.ResponseWriter, r *http.Request, apply func(context.Context, string, int) (int, error)) {
	by, err := decodeStep(r)
	if err != nil {
		response.FromError(w, err)
		return
	}
	energyType := chi.URLParam(r, "energyType")
	count, err := apply(r.Context(), energyType, by)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, EnergyCountResponse{Type: energyType, Count: count})
}

// Reset zeroes one type.
func (h *EnergyHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.energy.ResetEnergy(r.Context(), chi.URLParam(r, "energyType")); err != nil {
		response.FromError(w, err)
		return
	}
	response.NoContent(w)
}

// ResetAll zeroes every type.
func (h *EnergyHandler) ResetAll(w http.ResponseWriter, r *http.Request) {
	if err := h.energy.ResetAllEnergy(r.Context()); err != nil {
		response.FromError(w, err)
		return
	}
	response.NoContent(w)
}
