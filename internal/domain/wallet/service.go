package wallet

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/scholarbee/scholarbee-api/internal/domain/user"
	"github.com/scholarbee/scholarbee-api/internal/pkg/validator"
)

const recentTransactions = 10

// Service handles wallet business logic
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates wallet service
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// SetClock overrides the time source
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// GetWallet returns the student's wallet with recent transactions
func (s *Service) GetWallet(ctx context.Context, p user.Principal) (*WalletView, error) {
	if !p.IsStudent() {
		return nil, ErrOnlyStudents
	}
	w, err := s.repo.GetOrCreate(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	recent, _, err := s.repo.ListTransactions(ctx, p.ID, &TransactionFilter{Page: 1, Limit: recentTransactions})
	if err != nil {
		return nil, err
	}
	if recent == nil {
		recent = []*Transaction{}
	}
	return &WalletView{Wallet: w, RecentTransactions: recent}, nil
}

// UpdateUPI sets the payout address
func (s *Service) UpdateUPI(ctx context.Context, p user.Principal, upiID string) (*Wallet, error) {
	if !p.IsStudent() {
		return nil, ErrOnlyStudents
	}
	upiID = strings.TrimSpace(upiID)
	if !validator.IsUPIID(upiID) {
		return nil, ErrInvalidUPIID
	}
	return s.repo.SetUPI(ctx, p.ID, upiID)
}

// Transactions lists ledger entries, newest first
func (s *Service) Transactions(ctx context.Context, p user.Principal, filter *TransactionFilter) ([]*Transaction, int, error) {
	if !p.IsStudent() {
		return nil, 0, ErrOnlyStudents
	}
	if filter.Type != "" && filter.Type != TransactionTypeCredit && filter.Type != TransactionTypeDebit {
		return nil, 0, ErrInvalidTypeFilter
	}
	return s.repo.ListTransactions(ctx, p.ID, filter)
}

// Withdraw moves money out to the student's UPI id.
// A non-empty idempotencyKey makes retries with the same amount return the original debit.
func (s *Service) Withdraw(ctx context.Context, p user.Principal, amount int64, idempotencyKey string) (*WithdrawResult, error) {
	if !p.IsStudent() {
		return nil, ErrOnlyStudents
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	now := s.now()
	upiTxnID := NewUPITransactionID("WITHDRAW", now)
	reference := upiTxnID
	if key := strings.TrimSpace(idempotencyKey); key != "" {
		reference = "WITHDRAW_" + key
	}

	replayed := false
	w, tx, err := s.repo.Apply(ctx, p.ID, reference, func(w *Wallet, existing *Transaction) (*Transaction, error) {
		if existing != nil {
			if existing.Type != TransactionTypeDebit || existing.Amount != amount {
				return nil, ErrReferenceConflict
			}
			replayed = true
			return nil, nil
		}
		if !w.IsActive {
			return nil, ErrWalletInactive
		}
		if amount > w.Balance {
			return nil, ErrInsufficientFunds
		}
		if w.UPIID == "" {
			return nil, ErrUPIRequired
		}
		entry, err := w.Debit(amount, reference, fmt.Sprintf("Withdrawal to %s", w.UPIID), now)
		if err != nil {
			return nil, err
		}
		entry.UPITransactionID = upiTxnID
		return entry, nil
	})
	if err != nil {
		return nil, err
	}

	if !replayed {
		log.Info().
			Str("student_id", p.ID.String()).
			Int64("amount", amount).
			Str("reference", reference).
			Int64("balance", w.Balance).
			Msg("wallet withdrawal applied")
	}
	return &WithdrawResult{Wallet: w, Transaction: tx, Replayed: replayed}, nil
}

// Stats returns balance totals and monthly earnings
func (s *Service) Stats(ctx context.Context, p user.Principal) (*Stats, error) {
	if !p.IsStudent() {
		return nil, ErrOnlyStudents
	}
	w, err := s.repo.GetOrCreate(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	lastMonth := thisMonth.AddDate(0, -1, 0)

	all, err := s.repo.Totals(ctx, p.ID, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}
	current, err := s.repo.Totals(ctx, p.ID, thisMonth, time.Time{})
	if err != nil {
		return nil, err
	}
	previous, err := s.repo.Totals(ctx, p.ID, lastMonth, thisMonth)
	if err != nil {
		return nil, err
	}

	return &Stats{
		Balance:           w.Balance,
		TotalEarned:       w.TotalEarned,
		TotalWithdrawn:    w.TotalWithdrawn,
		TransactionCount:  all.Count,
		ThisMonthEarnings: current.Credits,
		LastMonthEarnings: previous.Credits,
	}, nil
}

// Audit recomputes the balance from the ledger and compares it with the stored value
func (s *Service) Audit(ctx context.Context, p user.Principal) (*AuditResult, error) {
	if !p.IsStudent() {
		return nil, ErrOnlyStudents
	}
	w, err := s.repo.GetOrCreate(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	totals, err := s.repo.Totals(ctx, p.ID, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}

	result := &AuditResult{
		StudentID:       p.ID.String(),
		StoredBalance:   w.Balance,
		LedgerBalance:   totals.Net(),
		CompletedCredit: totals.Credits,
		CompletedDebit:  totals.Debits,
		Consistent:      totals.Net() == w.Balance,
		CheckedAt:       s.now().UTC(),
	}
	if !result.Consistent {
		log.Error().
			Str("student_id", p.ID.String()).
			Int64("stored", result.StoredBalance).
			Int64("ledger", result.LedgerBalance).
			Msg("wallet balance does not match ledger")
	}
	return result, nil
}

// NewUPITransactionID returns UPI_<kind>_<unixms>_<rand>
func NewUPITransactionID(kind string, now time.Time) string {
	return fmt.Sprintf("UPI_%s_%d_%s", kind, now.UnixMilli(), randomSuffix(9))
}

const suffixAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func randomSuffix(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = suffixAlphabet[rand.Intn(len(suffixAlphabet))]
	}
	return string(b)
}
