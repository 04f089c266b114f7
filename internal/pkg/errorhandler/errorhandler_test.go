package errorhandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/scholarbee/scholarbee-api/internal/pkg/apperror"
	"github.com/scholarbee/scholarbee-api/internal/pkg/response"
)

func TestHandleMapsKinds(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", apperror.Validation("bad"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"authorization", apperror.Authorization("no"), http.StatusForbidden, "FORBIDDEN"},
		{"not found", apperror.NotFound("missing"), http.StatusNotFound, "NOT_FOUND"},
		{"duplicate", apperror.Duplicate("again"), http.StatusConflict, "DUPLICATE"},
		{"state", apperror.State("wrong state"), http.StatusConflict, "INVALID_STATE"},
		{"capacity", apperror.Capacity("full"), http.StatusConflict, "CAPACITY_EXCEEDED"},
		{"funds", apperror.InsufficientFunds("poor"), http.StatusConflict, "INSUFFICIENT_FUNDS"},
		{"unavailable", apperror.Unavailable("off"), http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
		{"wrapped", fmt.Errorf("decide: %w", apperror.Capacity("full")), http.StatusConflict, "CAPACITY_EXCEEDED"},
		{"internal", errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Handle(context.Background(), rec, tc.err)

			if rec.Code != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, rec.Code)
			}
			var body response.Response
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Success || body.Error == nil || body.Error.Code != tc.code {
				t.Fatalf("expected error code %s, got %+v", tc.code, body.Error)
			}
		})
	}
}

func TestHandleHidesInternalMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	Handle(context.Background(), rec, errors.New("pq: password authentication failed"))

	var body response.Response
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Message != "An unexpected error occurred" {
		t.Fatalf("internal error leaked: %q", body.Error.Message)
	}
}

func TestHandleIncludesDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	Handle(context.Background(), rec, apperror.Validation("invalid").WithDetails(map[string]string{"cvv": "must be 3 or 4 digits"}))

	var body response.Response
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Details["cvv"] == "" {
		t.Fatalf("expected cvv detail, got %+v", body.Error)
	}
}
