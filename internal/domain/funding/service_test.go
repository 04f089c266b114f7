package funding_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/scholarbee/scholarbee-api/internal/domain/application"
	"github.com/scholarbee/scholarbee-api/internal/domain/funding"
	"github.com/scholarbee/scholarbee-api/internal/domain/scholarship"
	"github.com/scholarbee/scholarbee-api/internal/domain/user"
	"github.com/scholarbee/scholarbee-api/internal/domain/wallet"
	"github.com/scholarbee/scholarbee-api/internal/store/memory"
)

type fixture struct {
	store        *memory.Store
	funding      *funding.Service
	applications *application.Service
	wallets      *wallet.Service
	sponsor      user.Principal
	scholarship  *scholarship.Scholarship
}

func newFixture(t *testing.T, amount int64, awards int) *fixture {
	t.Helper()
	store := memory.New()
	f := &fixture{
		store:        store,
		funding:      funding.NewService(store),
		applications: application.NewService(store.Applications(), store.Scholarships()),
		wallets:      wallet.NewService(store.Wallets()),
		sponsor:      user.NewPrincipal(uuid.New(), "sponsor"),
	}

	ctx := context.Background()
	sch, err := scholarship.NewService(store.Scholarships()).Create(ctx, f.sponsor, &scholarship.CreateScholarshipRequest{
		Title:                "Climate Research Grant",
		Description:          "Funding for climate research projects",
		EligibilityCriteria:  "Undergraduates",
		SubmissionGuidelines: "Proposal",
		EvaluationCriteria:   "Feasibility",
		AmountPerAward:       amount,
		NumberOfAwards:       awards,
		Deadline:             time.Now().Add(30 * 24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create scholarship: %v", err)
	}
	f.scholarship, err = store.Scholarships().Mutate(ctx, sch.ID, func(s *scholarship.Scholarship) error {
		return s.Activate(time.Now())
	})
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	return f
}

// approved submits for a new student and approves the application
func (f *fixture) approved(t *testing.T) (*application.Application, user.Principal) {
	t.Helper()
	s := user.NewPrincipal(uuid.New(), "student")
	app, err := f.applications.Submit(context.Background(), s, f.scholarship.ID, &application.SubmitRequest{
		Essay:      "A proposal to measure urban heat islands with low cost sensors.",
		Motivation: "Climate",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	app, err = f.applications.Decide(context.Background(), f.sponsor, app.ID, application.StatusApproved)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	return app, s
}

func (f *fixture) audit(t *testing.T, s user.Principal) *wallet.AuditResult {
	t.Helper()
	res, err := f.wallets.Audit(context.Background(), s)
	if err != nil {
		t.Fatalf("audit: %v", err)
	}
	if !res.Consistent {
		t.Fatalf("ledger mismatch: stored %d ledger %d", res.StoredBalance, res.LedgerBalance)
	}
	return res
}

func TestFundCreditsWalletAndCompletesScholarship(t *testing.T) {
	f := newFixture(t, 1000, 2)
	a, sa := f.approved(t)
	b, sb := f.approved(t)

	res, err := f.funding.Fund(context.Background(), f.sponsor, a.ID)
	if err != nil {
		t.Fatalf("fund a: %v", err)
	}
	if res.Application.Status != application.StatusFunded || res.Application.FundedAt == nil {
		t.Fatalf("expected funded application, got %s", res.Application.Status)
	}
	if res.Wallet.Balance != 1000 || res.Transaction.Reference != funding.Reference(a.ID) {
		t.Fatalf("unexpected payout: balance=%d ref=%s", res.Wallet.Balance, res.Transaction.Reference)
	}
	if !res.Transaction.ApplicationID.Valid || res.Transaction.ApplicationID.UUID != a.ID {
		t.Fatal("expected ledger entry to reference the application")
	}

	sch, _ := f.store.Scholarships().GetByID(context.Background(), f.scholarship.ID)
	if sch.Status != scholarship.StatusActive || sch.FundedCount != 1 {
		t.Fatalf("expected active scholarship with one funded award, got %s/%d", sch.Status, sch.FundedCount)
	}

	if _, err := f.funding.Fund(context.Background(), f.sponsor, b.ID); err != nil {
		t.Fatalf("fund b: %v", err)
	}
	sch, _ = f.store.Scholarships().GetByID(context.Background(), f.scholarship.ID)
	if sch.Status != scholarship.StatusCompleted || sch.FundedCount != 2 {
		t.Fatalf("expected completed scholarship, got %s/%d", sch.Status, sch.FundedCount)
	}

	for _, s := range []user.Principal{sa, sb} {
		if got := f.audit(t, s); got.StoredBalance != 1000 {
			t.Fatalf("expected balance 1000, got %d", got.StoredBalance)
		}
	}
}

func TestFundTwiceCreditsOnce(t *testing.T) {
	f := newFixture(t, 1000, 1)
	app, s := f.approved(t)

	if _, err := f.funding.Fund(context.Background(), f.sponsor, app.ID); err != nil {
		t.Fatalf("fund: %v", err)
	}
	again, err := f.funding.Fund(context.Background(), f.sponsor, app.ID)
	if err != nil {
		t.Fatalf("second fund: %v", err)
	}
	if !again.AlreadyFunded {
		t.Fatal("expected AlreadyFunded on second call")
	}

	audit := f.audit(t, s)
	if audit.StoredBalance != 1000 || audit.CompletedCredit != 1000 {
		t.Fatalf("expected one credit of 1000, got %+v", audit)
	}
	sch, _ := f.store.Scholarships().GetByID(context.Background(), f.scholarship.ID)
	if sch.FundedCount != 1 {
		t.Fatalf("expected funded count 1, got %d", sch.FundedCount)
	}
}

func TestConcurrentFundCreditsOnce(t *testing.T) {
	f := newFixture(t, 1000, 1)
	app, s := f.approved(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.funding.Fund(context.Background(), f.sponsor, app.ID); err != nil {
				t.Errorf("fund: %v", err)
			}
		}()
	}
	wg.Wait()

	audit := f.audit(t, s)
	if audit.StoredBalance != 1000 {
		t.Fatalf("expected a single credit, balance %d", audit.StoredBalance)
	}
	txs, total, _ := f.wallets.Transactions(context.Background(), s, &wallet.TransactionFilter{Page: 1, Limit: 50})
	if total != 1 || len(txs) != 1 {
		t.Fatalf("expected one ledger entry, got %d", total)
	}
}

func TestFundRejections(t *testing.T) {
	f := newFixture(t, 1000, 2)
	app, _ := f.approved(t)

	pending, err := f.applications.Submit(context.Background(), user.NewPrincipal(uuid.New(), "student"), f.scholarship.ID, &application.SubmitRequest{
		Essay:      "Another proposal that is long enough to pass validation rules.",
		Motivation: "x",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	cases := []struct {
		name string
		p    user.Principal
		id   uuid.UUID
		want error
	}{
		{"not approved", f.sponsor, pending.ID, application.ErrNotApproved},
		{"other sponsor", user.NewPrincipal(uuid.New(), "sponsor"), app.ID, application.ErrNotScholarshipOwner},
		{"missing", f.sponsor, uuid.New(), application.ErrApplicationNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.funding.Fund(context.Background(), tc.p, tc.id); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestFundDetectsLedgerMismatch(t *testing.T) {
	f := newFixture(t, 1000, 1)
	app, s := f.approved(t)

	// a payout entry exists while the application still says approved
	ref := funding.Reference(app.ID)
	_, _, err := f.store.Wallets().Apply(context.Background(), s.ID, ref, func(w *wallet.Wallet, _ *wallet.Transaction) (*wallet.Transaction, error) {
		return w.Credit(1000, ref, "stray", time.Now())
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := f.funding.Fund(context.Background(), f.sponsor, app.ID); !errors.Is(err, funding.ErrLedgerMismatch) {
		t.Fatalf("expected ErrLedgerMismatch, got %v", err)
	}
	if got := f.audit(t, s); got.StoredBalance != 1000 {
		t.Fatalf("expected no second credit, got %d", got.StoredBalance)
	}
}

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) Publish(_ uuid.UUID, eventType string, _ any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, eventType)
}

func TestAutoFundingOnApproval(t *testing.T) {
	f := newFixture(t, 750, 1)
	events := &recorder{}
	f.funding.SetEventPublisher(events)
	f.applications.SetFunder(f.funding)

	app, s := f.approved(t)
	if app.Status != application.StatusFunded {
		t.Fatalf("expected auto funded application, got %s", app.Status)
	}
	if got := f.audit(t, s); got.StoredBalance != 750 {
		t.Fatalf("expected balance 750, got %d", got.StoredBalance)
	}
	if len(events.events) != 2 || events.events[0] != funding.EventApplicationFunded || events.events[1] != funding.EventWalletCredited {
		t.Fatalf("unexpected events: %v", events.events)
	}
}
