package funding

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/scholarbee/scholarbee-api/internal/domain/application"
	"github.com/scholarbee/scholarbee-api/internal/domain/scholarship"
	"github.com/scholarbee/scholarbee-api/internal/domain/user"
	"github.com/scholarbee/scholarbee-api/internal/domain/wallet"
)

// Realtime event types
const (
	EventApplicationFunded = "application.funded"
	EventWalletCredited    = "wallet.credited"
)

// EventPublisher pushes events to connected users
type EventPublisher interface {
	Publish(userID uuid.UUID, eventType string, data any)
}

// Result of a payout
type Result struct {
	Application   *application.Application
	Wallet        *wallet.Wallet
	Transaction   *wallet.Transaction
	AlreadyFunded bool
}

// Service pays approved applications into student wallets
type Service struct {
	repo   Repository
	events EventPublisher
	now    func() time.Time
}

// NewService creates funding service
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// SetClock overrides the time source
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// SetEventPublisher sets realtime publisher
func (s *Service) SetEventPublisher(p EventPublisher) { s.events = p }

// Reference is the ledger reference of an application's payout
func Reference(applicationID uuid.UUID) string {
	return "FUND_" + applicationID.String()
}

// Fund credits the student's wallet with the application's award.
// Funding an already funded application succeeds without a second credit.
func (s *Service) Fund(ctx context.Context, p user.Principal, applicationID uuid.UUID) (*Result, error) {
	alreadyFunded := false
	reference := Reference(applicationID)

	locked, err := s.repo.Fund(ctx, applicationID, reference, func(sch *scholarship.Scholarship, a *application.Application, w *wallet.Wallet, existing *wallet.Transaction) (*wallet.Transaction, error) {
		if !sch.IsOwnedBy(p.ID) {
			return nil, application.ErrNotScholarshipOwner
		}
		if a.Status == application.StatusFunded {
			alreadyFunded = true
			return nil, nil
		}
		if a.Status != application.StatusApproved {
			return nil, application.ErrNotApproved
		}
		if existing != nil {
			return nil, ErrLedgerMismatch
		}

		now := s.now()
		entry, err := w.Credit(a.Amount, reference, fmt.Sprintf("Scholarship award: %s", sch.Title), now)
		if err != nil {
			return nil, err
		}
		entry.ScholarshipID = uuid.NullUUID{UUID: sch.ID, Valid: true}
		entry.ApplicationID = uuid.NullUUID{UUID: a.ID, Valid: true}
		entry.UPITransactionID = wallet.NewUPITransactionID("CREDIT", now)

		if err := a.MarkFunded(now); err != nil {
			return nil, err
		}
		sch.RecordFunding(now)
		return entry, nil
	})
	if err != nil {
		return nil, err
	}

	result := &Result{
		Application:   locked.Application,
		Wallet:        locked.Wallet,
		Transaction:   locked.Transaction,
		AlreadyFunded: alreadyFunded,
	}
	if alreadyFunded {
		return result, nil
	}

	log.Info().
		Str("application_id", applicationID.String()).
		Str("student_id", result.Application.StudentID.String()).
		Int64("amount", result.Transaction.Amount).
		Int64("balance", result.Wallet.Balance).
		Str("scholarship_status", string(locked.Scholarship.Status)).
		Msg("application funded")

	if s.events != nil {
		studentID := result.Application.StudentID
		s.events.Publish(studentID, EventApplicationFunded, map[string]any{
			"application_id": applicationID,
			"scholarship_id": result.Application.ScholarshipID,
			"amount":         result.Transaction.Amount,
		})
		s.events.Publish(studentID, EventWalletCredited, map[string]any{
			"transaction_id": result.Transaction.ID,
			"amount":         result.Transaction.Amount,
			"balance":        result.Wallet.Balance,
		})
	}
	return result, nil
}

// FundApplication lets the application service fund right after approval
func (s *Service) FundApplication(ctx context.Context, p user.Principal, applicationID uuid.UUID) error {
	_, err := s.Fund(ctx, p, applicationID)
	return err
}
