package funding_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/scholarbee/scholarbee-api/internal/domain/application"
	"github.com/scholarbee/scholarbee-api/internal/domain/funding"
	"github.com/scholarbee/scholarbee-api/internal/domain/payment"
	"github.com/scholarbee/scholarbee-api/internal/domain/scholarship"
	"github.com/scholarbee/scholarbee-api/internal/domain/user"
	"github.com/scholarbee/scholarbee-api/internal/domain/wallet"
	"github.com/scholarbee/scholarbee-api/internal/pkg/apperror"
	"github.com/scholarbee/scholarbee-api/internal/pkg/database"
	gateway "github.com/scholarbee/scholarbee-api/internal/pkg/payment"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skipf("TEST_DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := database.NewPostgres(ctx, url)
	if err != nil {
		t.Skipf("postgres unavailable: %v", err)
	}
	if err := database.RunMigrations(ctx, db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

type pgFixture struct {
	db           *sqlx.DB
	scholarships scholarship.Repository
	applications *application.Service
	funding      *funding.Service
	wallets      *wallet.Service
	sponsor      user.Principal
	students     []uuid.UUID
}

func newPostgresFixture(t *testing.T) *pgFixture {
	db := openTestDB(t)
	f := &pgFixture{
		db:           db,
		scholarships: scholarship.NewRepository(db),
		funding:      funding.NewService(funding.NewRepository(db)),
		wallets:      wallet.NewService(wallet.NewRepository(db)),
		sponsor:      user.NewPrincipal(uuid.New(), "sponsor"),
	}
	f.applications = application.NewService(application.NewRepository(db), f.scholarships)
	t.Cleanup(func() {
		for _, id := range f.students {
			_, _ = db.Exec(`DELETE FROM wallet_transactions WHERE student_id = $1`, id)
			_, _ = db.Exec(`DELETE FROM wallets WHERE student_id = $1`, id)
		}
		_, _ = db.Exec(`DELETE FROM applications WHERE scholarship_id IN (SELECT id FROM scholarships WHERE sponsor_id = $1)`, f.sponsor.ID)
		_, _ = db.Exec(`DELETE FROM payments WHERE sponsor_id = $1`, f.sponsor.ID)
		_, _ = db.Exec(`DELETE FROM scholarships WHERE sponsor_id = $1`, f.sponsor.ID)
	})
	return f
}

func (f *pgFixture) draft(t *testing.T, amount int64, awards int) *scholarship.Scholarship {
	t.Helper()
	sch, err := scholarship.NewService(f.scholarships).Create(context.Background(), f.sponsor, &scholarship.CreateScholarshipRequest{
		Title:                "Rural Teachers Fund",
		Description:          "Support for students training to teach in rural schools",
		EligibilityCriteria:  "Education majors",
		SubmissionGuidelines: "Statement",
		EvaluationCriteria:   "Commitment",
		AmountPerAward:       amount,
		NumberOfAwards:       awards,
		Deadline:             time.Now().Add(30 * 24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create scholarship: %v", err)
	}
	return sch
}

func (f *pgFixture) active(t *testing.T, amount int64, awards int) *scholarship.Scholarship {
	t.Helper()
	sch := f.draft(t, amount, awards)
	sch, err := f.scholarships.Mutate(context.Background(), sch.ID, func(s *scholarship.Scholarship) error {
		return s.Activate(time.Now())
	})
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	return sch
}

func (f *pgFixture) submit(t *testing.T, scholarshipID uuid.UUID) (*application.Application, user.Principal) {
	t.Helper()
	s := user.NewPrincipal(uuid.New(), "student")
	f.students = append(f.students, s.ID)
	app, err := f.applications.Submit(context.Background(), s, scholarshipID, &application.SubmitRequest{
		Essay:      "I want to return to my district and teach mathematics in the village school.",
		Motivation: "Teaching",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	return app, s
}

func TestPostgresConcurrentApprovalsRespectCapacity(t *testing.T) {
	f := newPostgresFixture(t)
	sch := f.active(t, 1000, 2)

	var apps []*application.Application
	for i := 0; i < 8; i++ {
		app, _ := f.submit(t, sch.ID)
		apps = append(apps, app)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		approved int
		full     int
	)
	for _, app := range apps {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			_, err := f.applications.Decide(context.Background(), f.sponsor, id, application.StatusApproved)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				approved++
			case apperror.IsKind(err, apperror.KindCapacity):
				full++
			default:
				t.Errorf("decide: %v", err)
			}
		}(app.ID)
	}
	wg.Wait()

	if approved != 2 || full != 6 {
		t.Fatalf("expected 2 approvals and 6 capacity errors, got %d and %d", approved, full)
	}
	got, err := f.scholarships.GetByID(context.Background(), sch.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.AwardedCount != 2 {
		t.Fatalf("expected 2 awards held, got %d", got.AwardedCount)
	}
}

func TestPostgresConcurrentFundCreditsOnce(t *testing.T) {
	f := newPostgresFixture(t)
	sch := f.active(t, 1500, 1)
	app, s := f.submit(t, sch.ID)
	if _, err := f.applications.Decide(context.Background(), f.sponsor, app.ID, application.StatusApproved); err != nil {
		t.Fatalf("approve: %v", err)
	}

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

	audit, err := f.wallets.Audit(context.Background(), s)
	if err != nil {
		t.Fatalf("audit: %v", err)
	}
	if !audit.Consistent || audit.StoredBalance != 1500 {
		t.Fatalf("expected one consistent credit of 1500, stored %d ledger %d", audit.StoredBalance, audit.LedgerBalance)
	}
	got, _ := f.scholarships.GetByID(context.Background(), sch.ID)
	if got.Status != scholarship.StatusCompleted {
		t.Fatalf("expected completed scholarship, got %s", got.Status)
	}
}

func TestPostgresConcurrentFundAndWithdraw(t *testing.T) {
	f := newPostgresFixture(t)
	sch := f.active(t, 1000, 1)
	app, s := f.submit(t, sch.ID)
	if _, err := f.applications.Decide(context.Background(), f.sponsor, app.ID, application.StatusApproved); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := f.wallets.UpdateUPI(context.Background(), s, "teacher@oksbi"); err != nil {
		t.Fatalf("set upi: %v", err)
	}
	if _, err := f.funding.Fund(context.Background(), f.sponsor, app.ID); err != nil {
		t.Fatalf("fund: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.wallets.Withdraw(context.Background(), s, 300, "")
			if err != nil && !errors.Is(err, wallet.ErrInsufficientFunds) {
				t.Errorf("withdraw: %v", err)
			}
		}()
	}
	wg.Wait()

	audit, err := f.wallets.Audit(context.Background(), s)
	if err != nil {
		t.Fatalf("audit: %v", err)
	}
	if !audit.Consistent || audit.StoredBalance != 100 {
		t.Fatalf("expected balance 100 after three withdrawals, stored %d ledger %d", audit.StoredBalance, audit.LedgerBalance)
	}
}

func TestPostgresBudgetLockedWhileDepositOpen(t *testing.T) {
	f := newPostgresFixture(t)
	sch := f.draft(t, 2500, 4)

	payments := payment.NewService(payment.NewRepository(f.db), f.scholarships, gateway.FixedSimulator{Success: true}, payment.Config{})
	if _, err := payments.Initiate(context.Background(), f.sponsor, &payment.InitiateRequest{
		ScholarshipID: sch.ID,
		Method:        "upi",
		UPIID:         "sponsor@okicici",
	}); err != nil {
		t.Fatalf("initiate: %v", err)
	}

	amount := int64(5000)
	_, err := scholarship.NewService(f.scholarships).Update(context.Background(), f.sponsor, sch.ID, &scholarship.UpdateScholarshipRequest{AmountPerAward: &amount})
	if !errors.Is(err, scholarship.ErrBudgetLocked) {
		t.Fatalf("expected ErrBudgetLocked with a pending deposit, got %v", err)
	}
}
