package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/scholarbee/scholarbee-api/internal/domain/wallet"
)

type walletRepo struct {
	s *Store
}

func (r *walletRepo) GetOrCreate(ctx context.Context, studentID uuid.UUID) (*wallet.Wallet, error) {
	if err := r.s.lock(ctx); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()
	return r.s.walletLocked(studentID), nil
}

func (r *walletRepo) SetUPI(ctx context.Context, studentID uuid.UUID, upiID string) (*wallet.Wallet, error) {
	if err := r.s.lock(ctx); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	w := r.s.walletLocked(studentID)
	w.UPIID = upiID
	w.UpdatedAt = r.s.now().UTC()
	stored := *w
	r.s.wallets[studentID] = &stored
	return w, nil
}

func (r *walletRepo) Apply(ctx context.Context, studentID uuid.UUID, reference string, fn wallet.ApplyFunc) (*wallet.Wallet, *wallet.Transaction, error) {
	if err := r.s.lock(ctx); err != nil {
		return nil, nil, err
	}
	defer r.s.mu.Unlock()

	w := r.s.walletLocked(studentID)
	existing := r.s.findReferenceLocked(studentID, reference)
	entry, err := fn(w, existing)
	if err != nil {
		return nil, nil, err
	}
	if entry == nil {
		return w, existing, nil
	}
	if err := r.s.appendEntryLocked(w, entry); err != nil {
		return nil, nil, err
	}
	return w, entry, nil
}

func (r *walletRepo) ListTransactions(ctx context.Context, studentID uuid.UUID, filter *wallet.TransactionFilter) ([]*wallet.Transaction, int, error) {
	if err := r.s.lock(ctx); err != nil {
		return nil, 0, err
	}
	defer r.s.mu.Unlock()

	var items []*wallet.Transaction
	// newest appended first so equal timestamps keep ledger order
	for i := len(r.s.transactions) - 1; i >= 0; i-- {
		t := r.s.transactions[i]
		if t.StudentID != studentID || (filter.Type != "" && t.Type != filter.Type) {
			continue
		}
		c := *t
		items = append(items, &c)
	}
	sortByTime(items, func(t *wallet.Transaction) time.Time { return t.CreatedAt }, true)
	return page(items, filter.Page, filter.Limit), len(items), nil
}

func (r *walletRepo) Totals(ctx context.Context, studentID uuid.UUID, from, to time.Time) (*wallet.Totals, error) {
	if err := r.s.lock(ctx); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	totals := &wallet.Totals{}
	for _, t := range r.s.transactions {
		if t.StudentID != studentID || t.Status != wallet.TransactionCompleted {
			continue
		}
		if !from.IsZero() && t.CreatedAt.Before(from) {
			continue
		}
		if !to.IsZero() && !t.CreatedAt.Before(to) {
			continue
		}
		switch t.Type {
		case wallet.TransactionTypeCredit:
			totals.Credits += t.Amount
		case wallet.TransactionTypeDebit:
			totals.Debits += t.Amount
		}
		totals.Count++
	}
	return totals, nil
}
