// Package response writes the JSON envelopes of the REST API.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/ramonehamilton/carddex/internal/apperrors"
)

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Message   string `json:"message,omitempty"`
	Status    int    `json:"status"`
	Retryable bool   `json:"retryable"`
}

// SuccessResponse represents a successful API response with data.
type SuccessResponse struct {
	Data any `json:"data"`
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// Success writes a successful JSON response.
func Success(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, SuccessResponse{Data: data})
}

// Created writes a 201 Created response.
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, SuccessResponse{Data: data})
}

// NoContent writes a 204 No Content response.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// FromError writes err using the status and retry metadata of its
// apperrors code. Errors without a code are reported as internal errors
// and their text is not exposed.
func FromError(w http.ResponseWriter, err error) {
	code := apperrors.CodeOf(err)
	meta := apperrors.MetadataFor(code)

	message := meta.PublicMessage
	if appErr := apperrors.As(err); appErr != nil && appErr.Message() != "" && code != apperrors.CodeInternal {
		message = appErr.Message()
	}

	JSON(w, meta.HTTPStatus, ErrorResponse{
		Error:     http.StatusText(meta.HTTPStatus),
		Code:      string(code),
		Message:   message,
		Status:    meta.HTTPStatus,
		Retryable: meta.Retryable,
	})
}

// BadRequest writes a 400 validation error with message.
func BadRequest(w http.ResponseWriter, message string) {
	FromError(w, apperrors.New(apperrors.CodeValidation, message))
}

// NotFound writes a 404 with message.
func NotFound(w http.ResponseWriter, message string) {
	FromError(w, apperrors.New(apperrors.CodeNotFound, message))
}
