package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ramonehamilton/carddex/internal/apperrors"
)

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v (%s)", err, w.Body.String())
	}
	return resp
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		status    int
		code      apperrors.Code
		message   string
		retryable bool
	}{
		{
			name:    "validation keeps its message",
			err:     apperrors.Validation("quantity must be positive"),
			status:  http.StatusBadRequest,
			code:    apperrors.CodeValidation,
			message: "quantity must be positive",
		},
		{
			name:    "wrapped not found",
			err:     fmt.Errorf("lookup: %w", apperrors.NotFound("deck %q not found", "d1")),
			status:  http.StatusNotFound,
			code:    apperrors.CodeNotFound,
			message: `deck "d1" not found`,
		},
		{
			name:      "persistence is retryable",
			err:       apperrors.Persistence(errors.New("disk I/O error"), "failed to save card"),
			status:    http.StatusInternalServerError,
			code:      apperrors.CodePersistence,
			message:   "failed to save card",
			retryable: true,
		},
		{
			name:    "plain errors are not exposed",
			err:     errors.New("secret driver detail"),
			status:  http.StatusInternalServerError,
			code:    apperrors.CodeInternal,
			message: "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			FromError(w, tt.err)

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			resp := decodeError(t, w)
			if resp.Code != string(tt.code) {
				t.Errorf("code = %q, want %q", resp.Code, tt.code)
			}
			if resp.Message != tt.message {
				t.Errorf("message = %q, want %q", resp.Message, tt.message)
			}
			if resp.Retryable != tt.retryable {
				t.Errorf("retryable = %v, want %v", resp.Retryable, tt.retryable)
			}
			if resp.Status != tt.status {
				t.Errorf("body status = %d, want %d", resp.Status, tt.status)
			}
		})
	}
}

func TestSuccessEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	Created(w, map[string]int{"count": 2})

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var resp struct {
		Data map[string]int `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Data["count"] != 2 {
		t.Errorf("data = %v", resp.Data)
	}
}

func TestNoContent(t *testing.T) {
	w := httptest.NewRecorder()
	NoContent(w)
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Errorf("status = %d, body %q", w.Code, w.Body.String())
	}
}
