package payment

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/scholarbee/scholarbee-api/internal/domain/scholarship"
	"github.com/scholarbee/scholarbee-api/internal/domain/user"
	gateway "github.com/scholarbee/scholarbee-api/internal/pkg/payment"
)

// EventPaymentResolved is pushed to the sponsor when a deposit settles
const EventPaymentResolved = "payment.resolved"

const (
	refundReasonClosed = "Scholarship was closed before the deposit cleared"
	refundReasonBudget = "Scholarship budget no longer matches the deposit"
	statsMonths        = 6
)

// EventPublisher pushes events to connected users
type EventPublisher interface {
	Publish(userID uuid.UUID, eventType string, data any)
}

// Config controls the simulated gateway
type Config struct {
	Currency        string
	ProcessingDelay time.Duration
	AutoProcess     bool
}

// Service handles scholarship deposits
type Service struct {
	repo         Repository
	scholarships scholarship.Repository
	sim          gateway.Simulator
	queue        Queue
	events       EventPublisher
	cfg          Config
	now          func() time.Time
}

// NewService creates payment service
func NewService(repo Repository, scholarships scholarship.Repository, sim gateway.Simulator, cfg Config) *Service {
	if cfg.Currency == "" {
		cfg.Currency = "INR"
	}
	return &Service{
		repo:         repo,
		scholarships: scholarships,
		sim:          sim,
		cfg:          cfg,
		now:          time.Now,
	}
}

// SetQueue sets the deferred job queue. Without one the resolver polls the database.
func (s *Service) SetQueue(q Queue) { s.queue = q }

// SetEventPublisher sets realtime publisher
func (s *Service) SetEventPublisher(p EventPublisher) { s.events = p }

// SetClock overrides the time source
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// Initiate creates a pending deposit for the scholarship's full budget
func (s *Service) Initiate(ctx context.Context, p user.Principal, req *InitiateRequest) (*Payment, error) {
	if !p.IsSponsor() {
		return nil, ErrOnlySponsors
	}
	now := s.now()
	details, fieldErrs := req.validateDetails(now)
	if fieldErrs != nil {
		return nil, ErrInvalidPaymentDetails.WithDetails(fieldErrs)
	}

	sch, err := s.scholarships.GetByID(ctx, req.ScholarshipID)
	if err != nil {
		return nil, err
	}
	if sch == nil {
		return nil, scholarship.ErrScholarshipNotFound
	}
	if !sch.IsOwnedBy(p.ID) {
		return nil, ErrNotScholarshipOwner
	}
	if sch.IsPaid() {
		return nil, ErrAlreadyPaid
	}
	if sch.Status == scholarship.StatusClosed {
		return nil, ErrScholarshipClosed
	}

	pay := &Payment{
		ID:               uuid.New(),
		SponsorID:        p.ID,
		ScholarshipID:    sch.ID,
		Amount:           sch.TotalBudget,
		Currency:         s.cfg.Currency,
		Method:           Method(req.Method),
		Status:           StatusPending,
		TransactionID:    NewTransactionID(now),
		UPIID:            details.UPIID,
		CardLast4:        details.CardLast4,
		CardBrand:        details.CardBrand,
		BankName:         details.BankName,
		BankAccountLast4: details.BankAccountLast4,
		Description:      strings.TrimSpace(req.Description),
		CreatedAt:        now,
		UpdatedAt:        now,
		ScholarshipTitle: sch.Title,
	}
	if pay.Description == "" {
		pay.Description = fmt.Sprintf("Scholarship deposit: %s", sch.Title)
	}
	if err := s.repo.Create(ctx, pay); err != nil {
		return nil, err
	}

	log.Info().
		Str("payment_id", pay.ID.String()).
		Str("scholarship_id", sch.ID.String()).
		Str("method", string(pay.Method)).
		Int64("amount", pay.Amount).
		Msg("payment initiated")

	if s.cfg.AutoProcess {
		return s.Process(ctx, p, pay.ID)
	}
	return pay, nil
}

// Process moves a pending deposit to processing and schedules its resolution
func (s *Service) Process(ctx context.Context, p user.Principal, id uuid.UUID) (*Payment, error) {
	changed := false
	pay, err := s.repo.Mutate(ctx, id, func(pay *Payment) error {
		if pay.SponsorID != p.ID {
			return ErrNotPaymentOwner
		}
		var err error
		changed, err = pay.StartProcessing(s.now(), s.cfg.ProcessingDelay)
		return err
	})
	if err != nil {
		return nil, err
	}

	if changed && s.queue != nil {
		if err := s.queue.Schedule(ctx, pay.ID, *pay.ResolveAfter); err != nil {
			// The resolver's database sweep still picks it up
			log.Warn().Err(err).Str("payment_id", pay.ID.String()).Msg("failed to enqueue payment")
		}
	}
	return pay, nil
}

// Resolve settles a processing deposit. Anything else is left untouched.
func (s *Service) Resolve(ctx context.Context, id uuid.UUID) (*Payment, bool, error) {
	resolved := false
	pay, err := s.repo.Resolve(ctx, id, func(pay *Payment, sch *scholarship.Scholarship) error {
		if pay.Status != StatusProcessing {
			return nil
		}
		resolved = true
		now := s.now()

		if sch.Status == scholarship.StatusClosed {
			pay.Refund(refundReasonClosed, now)
			return nil
		}
		if pay.Amount != sch.TotalBudget {
			pay.Refund(refundReasonBudget, now)
			return nil
		}
		outcome := s.sim.Settle(string(pay.Method))
		if !outcome.Success {
			pay.Fail(outcome.FailureReason, now)
			return nil
		}
		if err := sch.Activate(now); err != nil {
			pay.Refund(err.Error(), now)
			return nil
		}
		pay.Complete(now)
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if !resolved {
		return pay, false, nil
	}

	log.Info().
		Str("payment_id", pay.ID.String()).
		Str("scholarship_id", pay.ScholarshipID.String()).
		Str("status", string(pay.Status)).
		Str("reason", pay.FailureReason).
		Msg("payment resolved")

	if s.events != nil {
		s.events.Publish(pay.SponsorID, EventPaymentResolved, map[string]any{
			"payment_id":     pay.ID,
			"scholarship_id": pay.ScholarshipID,
			"status":         pay.Status,
			"failure_reason": pay.FailureReason,
		})
	}
	return pay, true, nil
}

// DueIDs lists processing payments ready to resolve
func (s *Service) DueIDs(ctx context.Context, limit int) ([]uuid.UUID, error) {
	return s.repo.ListDue(ctx, s.now(), limit)
}

// Get returns a deposit for status polling
func (s *Service) Get(ctx context.Context, p user.Principal, id uuid.UUID) (*Payment, error) {
	pay, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if pay == nil {
		return nil, ErrPaymentNotFound
	}
	if pay.SponsorID != p.ID {
		return nil, ErrNotPaymentOwner
	}
	return pay, nil
}

// History lists the sponsor's deposits, newest first
func (s *Service) History(ctx context.Context, p user.Principal, filter *HistoryFilter) ([]*Payment, int, error) {
	if !p.IsSponsor() {
		return nil, 0, ErrOnlySponsors
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, 0, ErrInvalidStatusFilter
	}
	return s.repo.ListBySponsor(ctx, p.ID, filter)
}

// Stats aggregates deposits by status and the last six months of completed deposits
func (s *Service) Stats(ctx context.Context, p user.Principal) (*Stats, error) {
	if !p.IsSponsor() {
		return nil, ErrOnlySponsors
	}
	byStatus, err := s.repo.StatusTotals(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	since := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(statsMonths - 1), 0)
	monthly, err := s.repo.MonthlyCompleted(ctx, p.ID, since)
	if err != nil {
		return nil, err
	}

	stats := &Stats{ByStatus: byStatus, Monthly: monthly}
	if stats.ByStatus == nil {
		stats.ByStatus = []StatusTotal{}
	}
	if stats.Monthly == nil {
		stats.Monthly = []MonthTotal{}
	}
	for _, t := range byStatus {
		if t.Status == StatusCompleted {
			stats.TotalDeposited = t.Amount
		}
	}
	return stats, nil
}

const txnAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewTransactionID returns PAY_<unixms>_<9 random chars>
func NewTransactionID(now time.Time) string {
	b := make([]byte, 9)
	for i := range b {
		b[i] = txnAlphabet[rand.Intn(len(txnAlphabet))]
	}
	return fmt.Sprintf("PAY_%d_%s", now.UnixMilli(), b)
}
