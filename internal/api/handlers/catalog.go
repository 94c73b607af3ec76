package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/carddex/internal/api/response"
	"github.com/ramonehamilton/carddex/internal/apperrors"
	"github.com/ramonehamilton/carddex/internal/catalog"
)

// CatalogService is the part of the catalog client the API exposes.
type CatalogService interface {
	Search(ctx context.Context, query string) (*catalog.SearchResult, error)
	SearchSetsByName(ctx context.Context, name string) ([]catalog.SetBrief, error)
	SearchCardsByName(ctx context.Context, name string) ([]catalog.CardBrief, error)
	SearchCardsByNumber(ctx context.Context, localID, total string) ([]catalog.CardBrief, error)
	GetCard(ctx context.Context, id string) (*catalog.CardDetail, error)
	GetAllSets(ctx context.Context) ([]catalog.SetBrief, error)
	GetSet(ctx context.Context, id string) (*catalog.SetDetail, error)
	ClearCache(ctx context.Context) error
}

// CatalogHandler handles catalog lookups.
type CatalogHandler struct {
	catalog CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(svc CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: svc}
}

// catalogError maps client failures onto application codes.
func catalogError(err error) error {
	if apperrors.As(err) != nil {
		return err
	}
	var ce *catalog.Error
	if !errors.As(err, &ce) {
		return apperrors.Wrap(apperrors.CodeDependency, err, "card catalog request failed")
	}
	switch ce.Kind {
	case catalog.KindNotFound:
		return apperrors.Wrap(apperrors.CodeNotFound, err, "not found in the card catalog")
	case catalog.KindRateLimited:
		return apperrors.Wrap(apperrors.CodeRateLimit, err, "card catalog rate limit reached")
	case catalog.KindInvalidURL:
		return apperrors.Wrap(apperrors.CodeValidation, err, "invalid catalog query")
	default:
		return apperrors.Wrap(apperrors.CodeDependency, err, ce.Error())
	}
}

// Search runs a catalog search. With no mode (or mode=smart) the pattern
// ("25/167", "25" or a name) is detected from q and names prefer set
// matches. mode=set, mode=card and mode=number force one kind of lookup.
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if err := requireParam(q, "q"); err != nil {
		response.FromError(w, err)
		return
	}

	result, err := h.search(r.Context(), r.URL.Query().Get("mode"), q)
	if err != nil {
		response.FromError(w, catalogError(err))
		return
	}
	response.Success(w, result)
}

func (h *CatalogHandler) search(ctx context.Context, mode, q string) (*catalog.SearchResult, error) {
	name := strings.TrimSpace(q)
	switch mode {
	case "", "smart":
		return h.catalog.Search(ctx, q)
	case "set":
		sets, err := h.catalog.SearchSetsByName(ctx, name)
		if err != nil {
			return nil, err
		}
		return &catalog.SearchResult{
			Pattern: catalog.SearchPattern{Kind: catalog.PatternCardName, Name: name},
			Sets:    sets,
		}, nil
	case "card":
		cards, err := h.catalog.SearchCardsByName(ctx, name)
		if err != nil {
			return nil, err
		}
		return &catalog.SearchResult{
			Pattern: catalog.SearchPattern{Kind: catalog.PatternCardName, Name: name},
			Cards:   cards,
		}, nil
	case "number":
		pattern := catalog.DetectPattern(q)
		if pattern.Kind != catalog.PatternCardNumber {
			return nil, apperrors.Validation("q must be a card number such as 25 or 25/167")
		}
		cards, err := h.catalog.SearchCardsByNumber(ctx, pattern.LocalID, pattern.Total)
		if err != nil {
			return nil, err
		}
		return &catalog.SearchResult{Pattern: pattern, Cards: cards}, nil
	default:
		return nil, apperrors.Validation("mode must be one of smart, set, card or number")
	}
}

// GetCard returns catalog detail for one card.
func (h *CatalogHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	card, err := h.catalog.GetCard(r.Context(), chi.URLParam(r, "cardID"))
	if err != nil {
		response.FromError(w, catalogError(err))
		return
	}
	response.Success(w, card)
}

// GetSets lists every catalog set.
func (h *CatalogHandler) GetSets(w http.ResponseWriter, r *http.Request) {
	sets, err := h.catalog.GetAllSets(r.Context())
	if err != nil {
		response.FromError(w, catalogError(err))
		return
	}
	response.Success(w, sets)
}

// GetSet returns one catalog set with its card list.
func (h *CatalogHandler) GetSet(w http.ResponseWriter, r *http.Request) {
	set, err := h.catalog.GetSet(r.Context(), chi.URLParam(r, "setID"))
	if err != nil {
		response.FromError(w, catalogError(err))
		return
	}
	response.Success(w, set)
}

// ClearCache drops every cached catalog response.
func (h *CatalogHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.ClearCache(r.Context()); err != nil {
		response.FromError(w, apperrors.Wrap(apperrors.CodeDependency, err, "failed to clear catalog cache"))
		return
	}
	response.NoContent(w)
}
