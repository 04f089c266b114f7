package memory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/scholarbee/scholarbee-api/internal/domain/scholarship"
)

type scholarshipRepo struct {
	s *Store
}

func (r *scholarshipRepo) Create(ctx context.Context, sch *scholarship.Scholarship) error {
	if err := r.s.lock(ctx); err != nil {
		return err
	}
	defer r.s.mu.Unlock()
	r.s.scholarships[sch.ID] = cloneScholarship(sch)
	return nil
}

func (r *scholarshipRepo) GetByID(ctx context.Context, id uuid.UUID) (*scholarship.Scholarship, error) {
	if err := r.s.lock(ctx); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()
	return r.s.scholarshipLocked(id), nil
}

func (r *scholarshipRepo) ListBySponsor(ctx context.Context, sponsorID uuid.UUID) ([]*scholarship.Scholarship, error) {
	if err := r.s.lock(ctx); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	var items []*scholarship.Scholarship
	for id, sch := range r.s.scholarships {
		if sch.SponsorID == sponsorID {
			items = append(items, r.s.scholarshipLocked(id))
		}
	}
	sortByTime(items, func(s *scholarship.Scholarship) time.Time { return s.CreatedAt }, true)
	return items, nil
}

func (r *scholarshipRepo) ListActive(ctx context.Context, filter *scholarship.ListFilter) ([]*scholarship.Scholarship, int, error) {
	if err := r.s.lock(ctx); err != nil {
		return nil, 0, err
	}
	defer r.s.mu.Unlock()

	now := r.s.now()
	search := strings.ToLower(filter.Search)
	var items []*scholarship.Scholarship
	for id, sch := range r.s.scholarships {
		if sch.Status != scholarship.StatusActive || !sch.Deadline.After(now) {
			continue
		}
		if filter.Category != "" && sch.Category != filter.Category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(sch.Title), search) &&
			!strings.Contains(strings.ToLower(sch.Description), search) {
			continue
		}
		items = append(items, r.s.scholarshipLocked(id))
	}
	sortByTime(items, func(s *scholarship.Scholarship) time.Time { return s.Deadline }, false)
	return page(items, filter.Page, filter.Limit), len(items), nil
}

func (r *scholarshipRepo) Mutate(ctx context.Context, id uuid.UUID, fn func(s *scholarship.Scholarship) error) (*scholarship.Scholarship, error) {
	if err := r.s.lock(ctx); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	sch := r.s.scholarshipLocked(id)
	if sch == nil {
		return nil, scholarship.ErrScholarshipNotFound
	}
	if err := fn(sch); err != nil {
		return nil, err
	}
	r.s.scholarships[id] = cloneScholarship(sch)
	return sch, nil
}

func (r *scholarshipRepo) Delete(ctx context.Context, id uuid.UUID, check func(s *scholarship.Scholarship) error) error {
	if err := r.s.lock(ctx); err != nil {
		return err
	}
	defer r.s.mu.Unlock()

	sch := r.s.scholarshipLocked(id)
	if sch == nil {
		return scholarship.ErrScholarshipNotFound
	}
	if err := check(sch); err != nil {
		return err
	}
	for pid, p := range r.s.payments {
		if p.ScholarshipID == id {
			delete(r.s.payments, pid)
		}
	}
	delete(r.s.scholarships, id)
	return nil
}
