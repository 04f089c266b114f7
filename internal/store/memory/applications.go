package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/scholarbee/scholarbee-api/internal/domain/application"
	"github.com/scholarbee/scholarbee-api/internal/domain/scholarship"
)

type applicationRepo struct {
	s *Store
}

func (r *applicationRepo) Create(ctx context.Context, a *application.Application) error {
	if err := r.s.lock(ctx); err != nil {
		return err
	}
	defer r.s.mu.Unlock()

	if _, ok := r.s.scholarships[a.ScholarshipID]; !ok {
		return scholarship.ErrScholarshipNotFound
	}
	for _, existing := range r.s.applications {
		if existing.StudentID == a.StudentID &&
			existing.ScholarshipID == a.ScholarshipID &&
			existing.Status != application.StatusRejected {
			return application.ErrAlreadyApplied
		}
	}
	r.s.applications[a.ID] = cloneApplication(a)
	return nil
}

func (r *applicationRepo) GetByID(ctx context.Context, id uuid.UUID) (*application.Application, error) {
	if err := r.s.lock(ctx); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	a, ok := r.s.applications[id]
	if !ok {
		return nil, nil
	}
	return r.s.withTitle(a), nil
}

func (r *applicationRepo) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*application.Application, error) {
	return r.list(ctx, func(a *application.Application) bool { return a.StudentID == studentID }, true)
}

func (r *applicationRepo) ListByScholarship(ctx context.Context, scholarshipID uuid.UUID, status application.Status) ([]*application.Application, error) {
	return r.list(ctx, func(a *application.Application) bool {
		return a.ScholarshipID == scholarshipID && (status == "" || a.Status == status)
	}, false)
}

func (r *applicationRepo) list(ctx context.Context, match func(a *application.Application) bool, newestFirst bool) ([]*application.Application, error) {
	if err := r.s.lock(ctx); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	var items []*application.Application
	for _, a := range r.s.applications {
		if match(a) {
			items = append(items, r.s.withTitle(a))
		}
	}
	sortByTime(items, func(a *application.Application) time.Time { return a.SubmittedAt }, newestFirst)
	return items, nil
}

func (r *applicationRepo) Transition(ctx context.Context, id uuid.UUID, fn func(a *application.Application, s *scholarship.Scholarship) error) (*application.Application, error) {
	if err := r.s.lock(ctx); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	stored, ok := r.s.applications[id]
	if !ok {
		return nil, application.ErrApplicationNotFound
	}
	sch := r.s.scholarshipLocked(stored.ScholarshipID)
	if sch == nil {
		return nil, scholarship.ErrScholarshipNotFound
	}
	a := cloneApplication(stored)
	if err := fn(a, sch); err != nil {
		return nil, err
	}
	r.s.applications[id] = cloneApplication(a)
	r.s.scholarships[sch.ID] = cloneScholarship(sch)
	a.ScholarshipTitle = sch.Title
	return a, nil
}

// withTitle copies a and joins the scholarship title. Caller holds mu.
func (s *Store) withTitle(a *application.Application) *application.Application {
	out := cloneApplication(a)
	if sch, ok := s.scholarships[a.ScholarshipID]; ok {
		out.ScholarshipTitle = sch.Title
	}
	return out
}
