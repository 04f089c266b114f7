// Package memory keeps every aggregate in process memory behind one mutex.
// It backs STORE_DRIVER=memory and the domain tests; a single lock gives the
// same serialization the Postgres row locks give.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/scholarbee/scholarbee-api/internal/domain/application"
	"github.com/scholarbee/scholarbee-api/internal/domain/dashboard"
	"github.com/scholarbee/scholarbee-api/internal/domain/funding"
	"github.com/scholarbee/scholarbee-api/internal/domain/payment"
	"github.com/scholarbee/scholarbee-api/internal/domain/scholarship"
	"github.com/scholarbee/scholarbee-api/internal/domain/wallet"
)

var (
	_ scholarship.Repository = (*scholarshipRepo)(nil)
	_ application.Repository = (*applicationRepo)(nil)
	_ wallet.Repository      = (*walletRepo)(nil)
	_ payment.Repository     = (*paymentRepo)(nil)
	_ funding.Repository     = (*Store)(nil)
	_ dashboard.Repository   = (*Store)(nil)
)

// Store is a process-local implementation of the repositories
type Store struct {
	mu sync.Mutex

	scholarships map[uuid.UUID]*scholarship.Scholarship
	applications map[uuid.UUID]*application.Application
	wallets      map[uuid.UUID]*wallet.Wallet
	transactions []*wallet.Transaction
	payments     map[uuid.UUID]*payment.Payment

	now func() time.Time
}

// New creates an empty store
func New() *Store {
	return &Store{
		scholarships: make(map[uuid.UUID]*scholarship.Scholarship),
		applications: make(map[uuid.UUID]*application.Application),
		wallets:      make(map[uuid.UUID]*wallet.Wallet),
		payments:     make(map[uuid.UUID]*payment.Payment),
		now:          time.Now,
	}
}

// SetClock overrides the clock used for defaults such as lazy wallet creation
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

func (s *Store) Scholarships() scholarship.Repository { return &scholarshipRepo{s} }
func (s *Store) Applications() application.Repository { return &applicationRepo{s} }
func (s *Store) Wallets() wallet.Repository { return &walletRepo{s} }
func (s *Store) Payments() payment.Repository { return &paymentRepo{s} }

// lock takes the store mutex unless ctx is already done
func (s *Store) lock(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	return nil
}

// scholarshipLocked returns a copy with award and open deposit counts filled in. Caller holds mu.
func (s *Store) scholarshipLocked(id uuid.UUID) *scholarship.Scholarship {
	stored, ok := s.scholarships[id]
	if !ok {
		return nil
	}
	out := cloneScholarship(stored)
	out.AwardedCount, out.FundedCount, out.OpenDeposits = 0, 0, 0
	for _, a := range s.applications {
		if a.ScholarshipID != id {
			continue
		}
		if a.HoldsAward() {
			out.AwardedCount++
		}
		if a.Status == application.StatusFunded {
			out.FundedCount++
		}
	}
	for _, p := range s.payments {
		if p.ScholarshipID == id && p.IsOpen() {
			out.OpenDeposits++
		}
	}
	return out
}

// walletLocked creates the wallet on first access and returns a copy. Caller holds mu.
func (s *Store) walletLocked(studentID uuid.UUID) *wallet.Wallet {
	w, ok := s.wallets[studentID]
	if !ok {
		w = wallet.NewWallet(studentID, s.now().UTC())
		s.wallets[studentID] = w
	}
	c := *w
	return &c
}

func (s *Store) findReferenceLocked(studentID uuid.UUID, reference string) *wallet.Transaction {
	if reference == "" {
		return nil
	}
	for _, t := range s.transactions {
		if t.StudentID == studentID && t.Reference == reference {
			c := *t
			return &c
		}
	}
	return nil
}

// appendEntryLocked enforces the same constraints as the wallet tables. Caller holds mu.
func (s *Store) appendEntryLocked(w *wallet.Wallet, entry *wallet.Transaction) error {
	if w.Balance < 0 {
		return wallet.ErrInsufficientFunds
	}
	if s.findReferenceLocked(entry.StudentID, entry.Reference) != nil {
		return wallet.ErrDuplicateReference
	}
	c := *entry
	s.transactions = append(s.transactions, &c)
	stored := *w
	s.wallets[w.StudentID] = &stored
	return nil
}

func cloneScholarship(in *scholarship.Scholarship) *scholarship.Scholarship {
	out := *in
	out.Requirements = append([]string(nil), in.Requirements...)
	out.Tags = append([]string(nil), in.Tags...)
	return &out
}

func cloneApplication(in *application.Application) *application.Application {
	out := *in
	out.Documents = append([]string(nil), in.Documents...)
	return &out
}

func clonePayment(in *payment.Payment) *payment.Payment {
	out := *in
	return &out
}

func page[T any](items []T, pageNum, limit int) []T {
	offset := 0
	if pageNum > 1 {
		offset = (pageNum - 1) * limit
	}
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

func sortByTime[T any](items []T, at func(T) time.Time, desc bool) {
	sort.SliceStable(items, func(i, j int) bool {
		if desc {
			return at(items[i]).After(at(items[j]))
		}
		return at(items[i]).Before(at(items[j]))
	})
}
