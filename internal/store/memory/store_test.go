package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/scholarbee/scholarbee-api/internal/domain/application"
	"github.com/scholarbee/scholarbee-api/internal/domain/scholarship"
	"github.com/scholarbee/scholarbee-api/internal/domain/wallet"
)

func TestPage(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	cases := []struct {
		page, limit int
		want        []int
	}{
		{1, 2, []int{1, 2}},
		{3, 2, []int{5}},
		{4, 2, []int{}},
		{0, 0, []int{1, 2, 3, 4, 5}},
	}
	for _, tc := range cases {
		got := page(items, tc.page, tc.limit)
		if len(got) != len(tc.want) {
			t.Fatalf("page(%d,%d) = %v, want %v", tc.page, tc.limit, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("page(%d,%d) = %v, want %v", tc.page, tc.limit, got, tc.want)
			}
		}
	}
}

func TestCanceledContext(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Wallets().GetOrCreate(ctx, uuid.New()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestApplyRejectsDuplicateReference(t *testing.T) {
	s := New()
	studentID := uuid.New()
	credit := func(w *wallet.Wallet, _ *wallet.Transaction) (*wallet.Transaction, error) {
		return w.Credit(100, "REF_1", "test", time.Now())
	}

	if _, _, err := s.Wallets().Apply(context.Background(), studentID, "REF_1", credit); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	// fn ignoring the existing entry must not double credit
	if _, _, err := s.Wallets().Apply(context.Background(), studentID, "REF_1", credit); !errors.Is(err, wallet.ErrDuplicateReference) {
		t.Fatalf("expected ErrDuplicateReference, got %v", err)
	}
	w, _ := s.Wallets().GetOrCreate(context.Background(), studentID)
	if w.Balance != 100 {
		t.Fatalf("expected balance 100, got %d", w.Balance)
	}
}

func TestReturnedValuesAreCopies(t *testing.T) {
	s := New()
	studentID := uuid.New()

	w, _ := s.Wallets().GetOrCreate(context.Background(), studentID)
	w.Balance = 1_000_000

	again, _ := s.Wallets().GetOrCreate(context.Background(), studentID)
	if again.Balance != 0 {
		t.Fatalf("caller mutation leaked into store: %d", again.Balance)
	}
}

func TestAwardCountsFollowApplications(t *testing.T) {
	s := New()
	ctx := context.Background()
	sch := &scholarship.Scholarship{
		ID:             uuid.New(),
		SponsorID:      uuid.New(),
		Title:          "Counts",
		AmountPerAward: 10,
		NumberOfAwards: 2,
		Status:         scholarship.StatusActive,
		PaymentStatus:  scholarship.PaymentPaid,
		Deadline:       time.Now().Add(time.Hour),
	}
	sch.RecomputeBudget()
	if err := s.Scholarships().Create(ctx, sch); err != nil {
		t.Fatalf("create: %v", err)
	}

	for _, status := range []application.Status{application.StatusApproved, application.StatusFunded, application.StatusRejected} {
		s.applications[uuid.New()] = &application.Application{
			ScholarshipID: sch.ID,
			StudentID:     uuid.New(),
			Status:        status,
		}
	}

	got, err := s.Scholarships().GetByID(ctx, sch.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.AwardedCount != 2 || got.FundedCount != 1 || got.RemainingAwards() != 0 {
		t.Fatalf("unexpected counts awarded=%d funded=%d", got.AwardedCount, got.FundedCount)
	}
}
