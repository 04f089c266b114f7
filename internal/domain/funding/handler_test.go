package funding_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/scholarbee/scholarbee-api/internal/domain/funding"
	"github.com/scholarbee/scholarbee-api/internal/domain/user"
	"github.com/scholarbee/scholarbee-api/internal/middleware"
)

func routerFor(svc *funding.Service, p user.Principal) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.WithPrincipal(req.Context(), p)))
		})
	})
	r.Route("/applications", funding.NewHandler(svc).ApplicationRoutes())
	return r
}

func TestHandlerFund(t *testing.T) {
	f := newFixture(t, 500, 1)
	app, _ := f.approved(t)
	router := routerFor(f.funding, f.sponsor)

	var env struct {
		Success bool `json:"success"`
		Data    struct {
			AlreadyFunded bool `json:"already_funded"`
			Transaction   struct {
				Amount int64 `json:"amount"`
			} `json:"transaction"`
		} `json:"data"`
	}

	for i, wantReplay := range []bool{false, true} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/applications/"+app.ID.String()+"/fund", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("fund #%d: expected 200, got %d: %s", i+1, rec.Code, rec.Body.String())
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if env.Data.AlreadyFunded != wantReplay {
			t.Fatalf("fund #%d: expected already_funded=%v", i+1, wantReplay)
		}
		if env.Data.Transaction.Amount != 500 {
			t.Fatalf("fund #%d: expected amount 500, got %d", i+1, env.Data.Transaction.Amount)
		}
	}
}

func TestHandlerFundStatusCodes(t *testing.T) {
	f := newFixture(t, 500, 1)
	app, _ := f.approved(t)

	cases := []struct {
		name   string
		p      user.Principal
		path   string
		status int
	}{
		{"bad id", f.sponsor, "/applications/nope/fund", http.StatusBadRequest},
		{"missing", f.sponsor, "/applications/" + uuid.New().String() + "/fund", http.StatusNotFound},
		{"student", user.NewPrincipal(uuid.New(), "student"), "/applications/" + app.ID.String() + "/fund", http.StatusForbidden},
		{"other sponsor", user.NewPrincipal(uuid.New(), "sponsor"), "/applications/" + app.ID.String() + "/fund", http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			routerFor(f.funding, tc.p).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, tc.path, nil))
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
		})
	}
}
