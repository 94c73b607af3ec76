// Package handlers implements the REST endpoints of the CardDex API.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ramonehamilton/carddex/internal/apperrors"
	"github.com/ramonehamilton/carddex/internal/query"
)

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decode reads a JSON body into dst and checks its validate tags.
func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.Validation("invalid request body")
	}
	return check(dst)
}

// decodeOptional is decode for endpoints whose body may be omitted. It
// reports false when the body is empty, whether or not a Content-Length
// was sent.
func decodeOptional(r *http.Request, dst any) (bool, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return false, nil
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, apperrors.Validation("invalid request body")
	}
	return true, check(dst)
}

func check(dst any) error {
	if err := validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return apperrors.Validation("%s failed %s validation", fe.Field(), fe.Tag())
		}
		return apperrors.Validation("invalid request body")
	}
	return nil
}

// intParam parses an optional integer query parameter.
func intParam(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.Validation("%s must be an integer", name)
	}
	return n, nil
}

// listParam collects a repeatable, comma-separated query parameter.
func listParam(r *http.Request, name string) []string {
	var out []string
	for _, raw := range r.URL.Query()[name] {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

// cardFilter reads the shared card filter parameters.
func cardFilter(r *http.Request) query.CardFilter {
	return query.CardFilter{
		SearchText: r.URL.Query().Get("q"),
		Supertypes: listParam(r, "supertype"),
		Types:      listParam(r, "type"),
		Rarities:   listParam(r, "rarity"),
		SetIDs:     listParam(r, "set"),
	}
}

func requireParam(value, name string) error {
	if strings.TrimSpace(value) == "" {
		return apperrors.Validation("%s is required", name)
	}
	return nil
}

// quantityRequest is the body of collection and energy pool endpoints that
// take a single quantity.
type quantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,max=9999"`
}

func (q quantityRequest) value() int {
	return *q.Quantity
}

// deckQuantityRequest is quantityRequest for deck contents, which never
// exceed a full deck.
type deckQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,max=60"`
}

func (q deckQuantityRequest) value() int {
	return *q.Quantity
}

// stepRequest is the optional body of increment/decrement endpoints.
type stepRequest struct {
	By int `json:"by" validate:"min=0,max=9999"`
}

// decodeStep returns the requested step, 1 when the body or "by" is omitted.
func decodeStep(r *http.Request) (int, error) {
	var req stepRequest
	ok, err := decodeOptional(r, &req)
	if err != nil {
		return 0, err
	}
	if !ok || req.By == 0 {
		return 1, nil
	}
	return req.By, nil
}
