package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/scholarbee/scholarbee-api/internal/domain/payment"
	"github.com/scholarbee/scholarbee-api/internal/domain/scholarship"
)

type paymentRepo struct {
	s *Store
}

func (r *paymentRepo) Create(ctx context.Context, p *payment.Payment) error {
	if err := r.s.lock(ctx); err != nil {
		return err
	}
	defer r.s.mu.Unlock()

	if _, ok := r.s.scholarships[p.ScholarshipID]; !ok {
		return scholarship.ErrScholarshipNotFound
	}
	for _, existing := range r.s.payments {
		if existing.ScholarshipID == p.ScholarshipID && existing.IsOpen() {
			return payment.ErrPaymentInProgress
		}
	}
	r.s.payments[p.ID] = clonePayment(p)
	return nil
}

func (r *paymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	if err := r.s.lock(ctx); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	p, ok := r.s.payments[id]
	if !ok {
		return nil, nil
	}
	return r.s.paymentWithTitle(p), nil
}

func (r *paymentRepo) ListBySponsor(ctx context.Context, sponsorID uuid.UUID, filter *payment.HistoryFilter) ([]*payment.Payment, int, error) {
	if err := r.s.lock(ctx); err != nil {
		return nil, 0, err
	}
	defer r.s.mu.Unlock()

	var items []*payment.Payment
	for _, p := range r.s.payments {
		if p.SponsorID != sponsorID || (filter.Status != "" && p.Status != filter.Status) {
			continue
		}
		items = append(items, r.s.paymentWithTitle(p))
	}
	sortByTime(items, func(p *payment.Payment) time.Time { return p.CreatedAt }, true)
	return page(items, filter.Page, filter.Limit), len(items), nil
}

func (r *paymentRepo) Mutate(ctx context.Context, id uuid.UUID, fn func(p *payment.Payment) error) (*payment.Payment, error) {
	if err := r.s.lock(ctx); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	stored, ok := r.s.payments[id]
	if !ok {
		return nil, payment.ErrPaymentNotFound
	}
	p := clonePayment(stored)
	if err := fn(p); err != nil {
		return nil, err
	}
	r.s.payments[id] = clonePayment(p)
	return p, nil
}

func (r *paymentRepo) Resolve(ctx context.Context, id uuid.UUID, fn func(p *payment.Payment, s *scholarship.Scholarship) error) (*payment.Payment, error) {
	if err := r.s.lock(ctx); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	stored, ok := r.s.payments[id]
	if !ok {
		return nil, payment.ErrPaymentNotFound
	}
	sch := r.s.scholarshipLocked(stored.ScholarshipID)
	if sch == nil {
		return nil, scholarship.ErrScholarshipNotFound
	}
	p := clonePayment(stored)
	if err := fn(p, sch); err != nil {
		return nil, err
	}
	r.s.payments[id] = clonePayment(p)
	r.s.scholarships[sch.ID] = cloneScholarship(sch)
	p.ScholarshipTitle = sch.Title
	return p, nil
}

func (r *paymentRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	if err := r.s.lock(ctx); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	var due []*payment.Payment
	for _, p := range r.s.payments {
		if p.Status == payment.StatusProcessing && p.ResolveAfter != nil && !p.ResolveAfter.After(now) {
			due = append(due, p)
		}
	}
	sortByTime(due, func(p *payment.Payment) time.Time { return *p.ResolveAfter }, false)
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	ids := make([]uuid.UUID, len(due))
	for i, p := range due {
		ids[i] = p.ID
	}
	return ids, nil
}

func (r *paymentRepo) StatusTotals(ctx context.Context, sponsorID uuid.UUID) ([]payment.StatusTotal, error) {
	if err := r.s.lock(ctx); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	byStatus := make(map[payment.Status]*payment.StatusTotal)
	for _, p := range r.s.payments {
		if p.SponsorID != sponsorID {
			continue
		}
		t, ok := byStatus[p.Status]
		if !ok {
			t = &payment.StatusTotal{Status: p.Status}
			byStatus[p.Status] = t
		}
		t.Count++
		t.Amount += p.Amount
	}

	items := make([]payment.StatusTotal, 0, len(byStatus))
	for _, t := range byStatus {
		items = append(items, *t)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Status < items[j].Status })
	return items, nil
}

func (r *paymentRepo) MonthlyCompleted(ctx context.Context, sponsorID uuid.UUID, since time.Time) ([]payment.MonthTotal, error) {
	if err := r.s.lock(ctx); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	byMonth := make(map[string]*payment.MonthTotal)
	for _, p := range r.s.payments {
		if p.SponsorID != sponsorID || p.Status != payment.StatusCompleted || p.ProcessedAt == nil {
			continue
		}
		if p.ProcessedAt.Before(since) {
			continue
		}
		month := p.ProcessedAt.UTC().Format("2006-01")
		t, ok := byMonth[month]
		if !ok {
			t = &payment.MonthTotal{Month: month}
			byMonth[month] = t
		}
		t.Count++
		t.Amount += p.Amount
	}

	items := make([]payment.MonthTotal, 0, len(byMonth))
	for _, t := range byMonth {
		items = append(items, *t)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Month < items[j].Month })
	return items, nil
}

// paymentWithTitle copies p and joins the scholarship title. Caller holds mu.
func (s *Store) paymentWithTitle(p *payment.Payment) *payment.Payment {
	out := clonePayment(p)
	if sch, ok := s.scholarships[p.ScholarshipID]; ok {
		out.ScholarshipTitle = sch.Title
	}
	return out
}
