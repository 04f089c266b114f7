package scholarship_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/scholarbee/scholarbee-api/internal/domain/scholarship"
	"github.com/scholarbee/scholarbee-api/internal/domain/user"
	"github.com/scholarbee/scholarbee-api/internal/middleware"
)

// asCaller stands in for the JWT middleware
func asCaller(p *user.Principal) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p != nil {
				r = r.WithContext(middleware.WithPrincipal(r.Context(), *p))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func newRouter(svc *scholarship.Service, caller *user.Principal) http.Handler {
	auth := asCaller(caller)
	r := chi.NewRouter()
	r.Mount("/scholarships", scholarship.NewHandler(svc).Routes(auth, auth))
	return r
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func do(t *testing.T, h http.Handler, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))

	var env envelope
	if rec.Code != http.StatusNoContent {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", method, path, err, rec.Body.String())
		}
	}
	return rec, env
}

func TestHandlerCreateAndFetch(t *testing.T) {
	svc, _ := newService()
	owner := sponsor()
	router := newRouter(svc, &owner)

	rec, env := do(t, router, http.MethodPost, "/scholarships", createRequest(1500, 2))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created scholarship.ScholarshipResponse
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if created.TotalBudget != 3000 || created.RemainingAwards != 2 {
		t.Fatalf("unexpected response: %+v", created)
	}

	rec, _ = do(t, router, http.MethodGet, "/scholarships/"+created.ID.String(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("owner get: expected 200, got %d", rec.Code)
	}

	anonymous := newRouter(svc, nil)
	rec, env = do(t, anonymous, http.MethodGet, "/scholarships/"+created.ID.String(), nil)
	if rec.Code != http.StatusNotFound || env.Error.Code != "NOT_FOUND" {
		t.Fatalf("anonymous draft get: expected 404, got %d", rec.Code)
	}
}

func TestHandlerRejectsStudentCreate(t *testing.T) {
	svc, _ := newService()
	caller := student()

	rec, _ := do(t, newRouter(svc, &caller), http.MethodPost, "/scholarships", createRequest(1000, 1))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestHandlerValidation(t *testing.T) {
	svc, _ := newService()
	owner := sponsor()

	rec, env := do(t, newRouter(svc, &owner), http.MethodPost, "/scholarships", map[string]any{
		"title":    "x",
		"deadline": time.Now().Add(time.Hour),
	})
	if rec.Code != http.StatusUnprocessableEntity || env.Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("expected 422 VALIDATION_ERROR, got %d", rec.Code)
	}

	rec, _ = do(t, newRouter(svc, &owner), http.MethodPost, "/scholarships", createRequest(0, 1))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for zero amount, got %d", rec.Code)
	}
}

func TestHandlerDeleteDraft(t *testing.T) {
	svc, _ := newService()
	owner := sponsor()
	router := newRouter(svc, &owner)

	_, env := do(t, router, http.MethodPost, "/scholarships", createRequest(1000, 1))
	var created scholarship.ScholarshipResponse
	_ = json.Unmarshal(env.Data, &created)

	rec, _ := do(t, router, http.MethodDelete, "/scholarships/"+created.ID.String(), nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}
