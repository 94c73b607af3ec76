package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/carddex/internal/api/response"
	"github.com/ramonehamilton/carddex/internal/deckbuilder"
	"github.com/ramonehamilton/carddex/internal/deckexport"
	"github.com/ramonehamilton/carddex/internal/query"
	"github.com/ramonehamilton/carddex/internal/storage/models"
)

// DeckService is the deck engine surface used by the deck endpoints.
type DeckService interface {
	ListDecks(ctx context.Context) ([]*models.Deck, error)
	GetDeck(ctx context.Context, id string) (*models.Deck, error)
	CreateDeck(ctx context.Context, name string, description *string) (*models.Deck, error)
	UpdateDeck(ctx context.Context, id, name string, description *string) (*models.Deck, error)
	DeleteDeck(ctx context.Context, id string) error
	DuplicateDeck(ctx context.Context, id string) (*models.Deck, error)
	ToggleFavorite(ctx context.Context, id string) (*models.Deck, error)
	Statistics(ctx context.Context) (*deckbuilder.Stats, error)
	ValidateDeck(ctx context.Context, id string) (*deckbuilder.Report, error)
	Candidates(ctx context.Context, deckID string, filter query.CardFilter) ([]deckbuilder.Candidate, error)
	AddCard(ctx context.Context, deckID, cardID string, quantity int) (*deckbuilder.Change, error)
	RemoveCard(ctx context.Context, deckID, cardID string, quantity int) (*deckbuilder.Change, error)
	SetQuantity(ctx context.Context, deckID, cardID string, quantity int) (*deckbuilder.Change, error)
	AddBasicEnergy(ctx context.Context, deckID, energyType string, quantity int) (*deckbuilder.Change, error)
	RemoveBasicEnergy(ctx context.Context, deckID, energyType string, quantity int) (*deckbuilder.Change, error)
	SetBasicEnergy(ctx context.Context, deckID, energyType string, quantity int) (*deckbuilder.Change, error)
	EnergyBreakdown(ctx context.Context, deckID string) (map[string]int, error)
}

// DeckHandler handles deck-related API requests.
type DeckHandler struct {
	decks DeckService
}

// NewDeckHandler creates a new DeckHandler.
func NewDeckHandler(svc DeckService) *DeckHandler {
	return &DeckHandler{decks: svc}
}

// DeckView is a deck with its derived counts.
type DeckView struct {
	*models.Deck
	TotalCards   int  `json:"total_cards"`
	UniqueCards  int  `json:"unique_cards"`
	PokemonCount int  `json:"pokemon_count"`
	TrainerCount int  `json:"trainer_count"`
	EnergyCount  int  `json:"energy_count"`
	IsValid      bool `json:"is_valid"`
	NeedsMore    int  `json:"needs_more_cards"`
}

func viewOf(deck *models.Deck) DeckView {
	return DeckView{
		Deck:         deck,
		TotalCards:   deck.TotalCards(),
		UniqueCards:  deck.UniqueCards(),
		PokemonCount: deck.PokemonCount(),
		TrainerCount: deck.TrainerCount(),
		EnergyCount:  deck.EnergyCount(),
		IsValid:      deck.IsValid(),
		NeedsMore:    deck.NeedsMoreCards(),
	}
}

// GetDecks lists decks. Filters: q, favorites=true; sort: name, created,
// modified, card_count.
func (h *DeckHandler) GetDecks(w http.ResponseWriter, r *http.Request) {
	decks, err := h.decks.ListDecks(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}

	favorites, _ := strconv.ParseBool(r.URL.Query().Get("favorites"))
	decks = query.FilterDecks(decks, query.DeckFilter{
		SearchText:    r.URL.Query().Get("q"),
		FavoritesOnly: favorites,
	})
	decks = query.SortDecks(decks, query.ParseDeckSort(r.URL.Query().Get("sort")))

	views := make([]DeckView, 0, len(decks))
	for _, d := range decks {
		views = append(views, viewOf(d))
	}
	response.Success(w, views)
}

// DeckRequest is the body of create and update.
type DeckRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description,omitempty"`
}

// CreateDeck creates a new empty deck.
func (h *DeckHandler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	var req DeckRequest
	if err := decode(r, &req); err != nil {
		response.FromError(w, err)
		return
	}

	deck, err := h.decks.CreateDeck(r.Context(), req.Name, req.Description)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Created(w, viewOf(deck))
}

// GetDeck returns a deck; entry_sort orders its entries (name, type,
// quantity, added).
func (h *DeckHandler) GetDeck(w http.ResponseWriter, r *http.Request) {
	deck, err := h.decks.GetDeck(r.Context(), chi.URLParam(r, "deckID"))
	if err != nil {
		response.FromError(w, err)
		return
	}
	if sortBy := r.URL.Query().Get("entry_sort"); sortBy != "" {
		deck.Entries = query.SortEntries(deck.Entries, query.ParseEntrySort(sortBy))
	}
	response.Success(w, viewOf(deck))
}

// UpdateDeck renames a deck and replaces its description.
func (h *DeckHandler) UpdateDeck(w http.ResponseWriter, r *http.Request) {
	var req DeckRequest
	if err := decode(r, &req); err != nil {
		response.FromError(w, err)
		return
	}

	deck, err := h.decks.UpdateDeck(r.Context(), chi.URLParam(r, "deckID"), req.Name, req.Description)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, viewOf(deck))
}

// DeleteDeck removes a deck with its entries and basic energy.
func (h *DeckHandler) DeleteDeck(w http.ResponseWriter, r *http.Request) {
	if err := h.decks.DeleteDeck(r.Context(), chi.URLParam(r, "deckID")); err != nil {
		response.FromError(w, err)
		return
	}
	response.NoContent(w)
}

// DuplicateDeck copies a deck under the name "<name> (Copy)".
func (h *DeckHandler) DuplicateDeck(w http.ResponseWriter, r *http.Request) {
	deck, err := h.decks.DuplicateDeck(r.Context(), chi.URLParam(r, "deckID"))
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Created(w, viewOf(deck))
}

// ToggleFavorite flips the favourite flag.
func (h *DeckHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	deck, err := h.decks.ToggleFavorite(r.Context(), chi.URLParam(r, "deckID"))
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, viewOf(deck))
}

// GetStats summarises the deck list.
func (h *DeckHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.decks.Statistics(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, stats)
}

// GetValidation returns the validation report. An invalid deck is still a
// 200 response.
func (h *DeckHandler) GetValidation(w http.ResponseWriter, r *http.Request) {
	report, err := h.decks.ValidateDeck(r.Context(), chi.URLParam(r, "deckID"))
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, report)
}

// GetCandidates lists owned cards the deck can still take, using the same
// filters as the collection list.
func (h *DeckHandler) GetCandidates(w http.ResponseWriter, r *http.Request) {
	candidates, err := h.decks.Candidates(r.Context(), chi.URLParam(r, "deckID"), cardFilter(r))
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, candidates)
}

// AddCardRequest is the body of POST /decks/{id}/cards.
type AddCardRequest struct {
	CardID   string `json:"card_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"min=0,max=60"`
}

// AddCard adds copies of an owned card. The result carries the achieved
// quantity; a request beyond the copy or ownership limit is clamped, not
// rejected.
func (h *DeckHandler) AddCard(w http.ResponseWriter, r *http.Request) {
	var req AddCardRequest
	if err := decode(r, &req); err != nil {
		response.FromError(w, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	change, err := h.decks.AddCard(r.Context(), chi.URLParam(r, "deckID"), req.CardID, req.Quantity)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, change)
}

// RemoveCard removes copies of a card; ?quantity= defaults to 1.
func (h *DeckHandler) RemoveCard(w http.ResponseWriter, r *http.Request) {
	quantity, err := intParam(r, "quantity", 1)
	if err != nil {
		response.FromError(w, err)
		return
	}

	change, err := h.decks.RemoveCard(r.Context(), chi.URLParam(r, "deckID"), chi.URLParam(r, "cardID"), quantity)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, change)
}

// SetCardQuantity sets the copies of a card already in the deck.
func (h *DeckHandler) SetCardQuantity(w http.ResponseWriter, r *http.Request) {
	var req deckQuantityRequest
	if err := decode(r, &req); err != nil {
		response.FromError(w, err)
		return
	}

	change, err := h.decks.SetQuantity(r.Context(), chi.URLParam(r, "deckID"), chi.URLParam(r, "cardID"), req.value())
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, change)
}

// GetEnergy returns the energy-type breakdown of the deck.
func (h *DeckHandler) GetEnergy(w http.ResponseWriter, r *http.Request) {
	breakdown, err := h.decks.EnergyBreakdown(r.Context(), chi.URLParam(r, "deckID"))
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, breakdown)
}

// AddEnergy adds basic energy of one type; the body {"quantity": n} is
// optional and defaults to 1.
func (h *DeckHandler) AddEnergy(w http.ResponseWriter, r *http.Request) {
	quantity := 1
	var req deckQuantityRequest
	ok, err := decodeOptional(r, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}
	if ok {
		quantity = req.value()
	}

	change, err := h.decks.AddBasicEnergy(r.Context(), chi.URLParam(r, "deckID"), chi.URLParam(r, "energyType"), quantity)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, change)
}

// RemoveEnergy removes basic energy of one type; ?quantity= defaults to 1.
func (h *DeckHandler) RemoveEnergy(w http.ResponseWriter, r *http.Request) {
	quantity, err := intParam(r, "quantity", 1)
	if err != nil {
		response.FromError(w, err)
		return
	}

	change, err := h.decks.RemoveBasicEnergy(r.Context(), chi.URLParam(r, "deckID"), chi.URLParam(r, "energyType"), quantity)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, change)
}

// SetEnergy sets the basic energy count of one type.
func (h *DeckHandler) SetEnergy(w http.ResponseWriter, r *http.Request) {
	var req deckQuantityRequest
	if err := decode(r, &req); err != nil {
		response.FromError(w, err)
		return
	}

	change, err := h.decks.SetBasicEnergy(r.Context(), chi.URLParam(r, "deckID"), chi.URLParam(r, "energyType"), req.value())
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, change)
}

// ExportDeck renders the deck as text (default) or json. With
// ?download=true the content is sent as an attachment instead of JSON.
func (h *DeckHandler) ExportDeck(w http.ResponseWriter, r *http.Request) {
	format, err := deckexport.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	deck, err := h.decks.GetDeck(r.Context(), chi.URLParam(r, "deckID"))
	if err != nil {
		response.FromError(w, err)
		return
	}

	export, err := deckexport.Export(deck, &deckexport.ExportOptions{
		Format:         format,
		IncludeHeaders: true,
		IncludeStats:   true,
	})
	if err != nil {
		response.FromError(w, err)
		return
	}

	if download, _ := strconv.ParseBool(r.URL.Query().Get("download")); download {
		contentType := "text/plain; charset=utf-8"
		if format == deckexport.FormatJSON {
			contentType = "application/json"
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Disposition", `attachment; filename="`+strings.ReplaceAll(export.Filename, `"`, "")+`"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(export.Content))
		return
	}
	response.Success(w, export)
}
