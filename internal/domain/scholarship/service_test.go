package scholarship_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/scholarbee/scholarbee-api/internal/domain/scholarship"
	"github.com/scholarbee/scholarbee-api/internal/domain/user"
	"github.com/scholarbee/scholarbee-api/internal/store/memory"
)

func sponsor() user.Principal { return user.NewPrincipal(uuid.New(), "sponsor") }
func student() user.Principal { return user.NewPrincipal(uuid.New(), "student") }

func createRequest(amount int64, awards int) *scholarship.CreateScholarshipRequest {
	return &scholarship.CreateScholarshipRequest{
		Title:                "Open Source Fellowship",
		Description:          "Funding for students contributing to open source",
		Category:             "Technology",
		EligibilityCriteria:  "Enrolled students",
		SubmissionGuidelines: "Essay and project plan",
		EvaluationCriteria:   "Impact",
		AmountPerAward:       amount,
		NumberOfAwards:       awards,
		Deadline:             time.Now().Add(30 * 24 * time.Hour),
	}
}

func newService() (*scholarship.Service, scholarship.Repository) {
	repo := memory.New().Scholarships()
	return scholarship.NewService(repo), repo
}

func activate(t *testing.T, repo scholarship.Repository, id uuid.UUID) {
	t.Helper()
	_, err := repo.Mutate(context.Background(), id, func(s *scholarship.Scholarship) error {
		return s.Activate(time.Now())
	})
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
}

func TestCreateComputesBudgetAsUnpaidDraft(t *testing.T) {
	svc, _ := newService()

	sch, err := svc.Create(context.Background(), sponsor(), createRequest(1000, 2))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if sch.TotalBudget != 2000 {
		t.Fatalf("expected total budget 2000, got %d", sch.TotalBudget)
	}
	if sch.Status != scholarship.StatusDraft || sch.PaymentStatus != scholarship.PaymentUnpaid {
		t.Fatalf("expected unpaid draft, got %s/%s", sch.Status, sch.PaymentStatus)
	}
}

func TestCreateRejections(t *testing.T) {
	svc, _ := newService()
	past := createRequest(1000, 1)
	past.Deadline = time.Now().Add(-time.Hour)

	cases := []struct {
		name string
		p    user.Principal
		req  *scholarship.CreateScholarshipRequest
		want error
	}{
		{"student", student(), createRequest(1000, 1), scholarship.ErrOnlySponsorsCanCreate},
		{"zero amount", sponsor(), createRequest(0, 1), scholarship.ErrInvalidAmount},
		{"zero awards", sponsor(), createRequest(1000, 0), scholarship.ErrInvalidAwards},
		{"past deadline", sponsor(), past, scholarship.ErrDeadlineInPast},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), tc.p, tc.req); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestDraftVisibleOnlyToOwner(t *testing.T) {
	svc, _ := newService()
	owner := sponsor()
	sch, _ := svc.Create(context.Background(), owner, createRequest(1000, 1))

	if _, err := svc.Get(context.Background(), owner, sch.ID); err != nil {
		t.Fatalf("owner get: %v", err)
	}
	if _, err := svc.Get(context.Background(), student(), sch.ID); !errors.Is(err, scholarship.ErrScholarshipNotFound) {
		t.Fatalf("expected draft hidden, got %v", err)
	}
	if _, err := svc.Get(context.Background(), user.Principal{}, sch.ID); !errors.Is(err, scholarship.ErrScholarshipNotFound) {
		t.Fatalf("expected draft hidden from anonymous, got %v", err)
	}
}

func TestUpdateFreezesBudgetAfterPayment(t *testing.T) {
	svc, repo := newService()
	owner := sponsor()
	sch, _ := svc.Create(context.Background(), owner, createRequest(1000, 2))

	awards := 3
	updated, err := svc.Update(context.Background(), owner, sch.ID, &scholarship.UpdateScholarshipRequest{NumberOfAwards: &awards})
	if err != nil {
		t.Fatalf("update draft: %v", err)
	}
	if updated.TotalBudget != 3000 {
		t.Fatalf("expected recomputed budget 3000, got %d", updated.TotalBudget)
	}

	activate(t, repo, sch.ID)

	amount := int64(5000)
	if _, err := svc.Update(context.Background(), owner, sch.ID, &scholarship.UpdateScholarshipRequest{AmountPerAward: &amount}); !errors.Is(err, scholarship.ErrBudgetLocked) {
		t.Fatalf("expected ErrBudgetLocked, got %v", err)
	}

	title := "Renamed Fellowship"
	updated, err = svc.Update(context.Background(), owner, sch.ID, &scholarship.UpdateScholarshipRequest{Title: &title})
	if err != nil {
		t.Fatalf("update title: %v", err)
	}
	if updated.Title != title || updated.TotalBudget != 3000 {
		t.Fatalf("unexpected scholarship after title edit: %+v", updated)
	}
}

func TestUpdateByOtherSponsorForbidden(t *testing.T) {
	svc, _ := newService()
	sch, _ := svc.Create(context.Background(), sponsor(), createRequest(1000, 1))

	title := "Hijacked"
	if _, err := svc.Update(context.Background(), sponsor(), sch.ID, &scholarship.UpdateScholarshipRequest{Title: &title}); !errors.Is(err, scholarship.ErrNotScholarshipOwner) {
		t.Fatalf("expected ErrNotScholarshipOwner, got %v", err)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	svc, repo := newService()
	owner := sponsor()
	sch, _ := svc.Create(context.Background(), owner, createRequest(1000, 1))
	activate(t, repo, sch.ID)

	for i := 0; i < 2; i++ {
		closed, err := svc.Close(context.Background(), owner, sch.ID)
		if err != nil {
			t.Fatalf("close #%d: %v", i+1, err)
		}
		if closed.Status != scholarship.StatusClosed {
			t.Fatalf("expected closed, got %s", closed.Status)
		}
	}

	title := "Too late"
	if _, err := svc.Update(context.Background(), owner, sch.ID, &scholarship.UpdateScholarshipRequest{Title: &title}); !errors.Is(err, scholarship.ErrScholarshipClosed) {
		t.Fatalf("expected ErrScholarshipClosed, got %v", err)
	}
}

func TestDeleteOnlyUnpaidDrafts(t *testing.T) {
	svc, repo := newService()
	owner := sponsor()

	draft, _ := svc.Create(context.Background(), owner, createRequest(1000, 1))
	if err := svc.Delete(context.Background(), owner, draft.ID); err != nil {
		t.Fatalf("delete draft: %v", err)
	}
	if _, err := svc.Get(context.Background(), owner, draft.ID); !errors.Is(err, scholarship.ErrScholarshipNotFound) {
		t.Fatalf("expected deleted, got %v", err)
	}

	paid, _ := svc.Create(context.Background(), owner, createRequest(1000, 1))
	activate(t, repo, paid.ID)
	if err := svc.Delete(context.Background(), owner, paid.ID); !errors.Is(err, scholarship.ErrCannotDelete) {
		t.Fatalf("expected ErrCannotDelete, got %v", err)
	}
}

func TestListActiveFiltersAndSorts(t *testing.T) {
	svc, repo := newService()
	owner := sponsor()

	later := createRequest(1000, 1)
	later.Deadline = time.Now().Add(60 * 24 * time.Hour)
	a, _ := svc.Create(context.Background(), owner, later)
	b, _ := svc.Create(context.Background(), owner, createRequest(1000, 1))
	other := createRequest(1000, 1)
	other.Title = "Arts Grant"
	other.Category = "Arts"
	c, _ := svc.Create(context.Background(), owner, other)
	_, _ = svc.Create(context.Background(), owner, createRequest(1000, 1)) // stays draft

	for _, id := range []uuid.UUID{a.ID, b.ID, c.ID} {
		activate(t, repo, id)
	}

	items, total, err := svc.ListActive(context.Background(), &scholarship.ListFilter{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 || len(items) != 3 {
		t.Fatalf("expected 3 active scholarships, got %d/%d", len(items), total)
	}
	if items[len(items)-1].ID != a.ID {
		t.Fatal("expected latest deadline last")
	}

	items, total, _ = svc.ListActive(context.Background(), &scholarship.ListFilter{Category: "Arts", Page: 1, Limit: 10})
	if total != 1 || items[0].ID != c.ID {
		t.Fatalf("category filter returned %d items", total)
	}

	items, total, _ = svc.ListActive(context.Background(), &scholarship.ListFilter{Search: "arts", Page: 1, Limit: 10})
	if total != 1 || items[0].ID != c.ID {
		t.Fatalf("search returned %d items", total)
	}

	items, total, _ = svc.ListActive(context.Background(), &scholarship.ListFilter{Page: 2, Limit: 2})
	if total != 3 || len(items) != 1 {
		t.Fatalf("expected 1 item on page 2, got %d (total %d)", len(items), total)
	}
}
