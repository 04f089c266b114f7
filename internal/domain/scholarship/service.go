package scholarship

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/scholarbee/scholarbee-api/internal/domain/user"
)

// Service handles scholarship business logic
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates scholarship service
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// SetClock overrides the time source
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Create creates an unpaid draft scholarship
func (s *Service) Create(ctx context.Context, p user.Principal, req *CreateScholarshipRequest) (*Scholarship, error) {
	if !p.IsSponsor() {
		return nil, ErrOnlySponsorsCanCreate
	}
	now := s.now()
	if err := validateBudget(req.AmountPerAward, req.NumberOfAwards, req.Deadline, now); err != nil {
		return nil, err
	}

	sch := &Scholarship{
		ID:                   uuid.New(),
		SponsorID:            p.ID,
		Title:                strings.TrimSpace(req.Title),
		Description:          strings.TrimSpace(req.Description),
		Category:             strings.TrimSpace(req.Category),
		Difficulty:           Difficulty(req.Difficulty),
		EligibilityCriteria:  req.EligibilityCriteria,
		SubmissionGuidelines: req.SubmissionGuidelines,
		EvaluationCriteria:   req.EvaluationCriteria,
		Requirements:         nonNil(req.Requirements),
		Tags:                 nonNil(req.Tags),
		AmountPerAward:       req.AmountPerAward,
		NumberOfAwards:       req.NumberOfAwards,
		Status:               StatusDraft,
		PaymentStatus:        PaymentUnpaid,
		Deadline:             req.Deadline.UTC(),
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	sch.RecomputeBudget()

	if err := s.repo.Create(ctx, sch); err != nil {
		return nil, err
	}

	log.Info().
		Str("scholarship_id", sch.ID.String()).
		Str("sponsor_id", p.ID.String()).
		Int64("total_budget", sch.TotalBudget).
		Msg("scholarship created")
	return sch, nil
}

func validateBudget(amount int64, awards int, deadline time.Time, now time.Time) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if awards < 1 {
		return ErrInvalidAwards
	}
	if !deadline.After(now) {
		return ErrDeadlineInPast
	}
	return nil
}

// Get returns a scholarship. Drafts are only visible to their sponsor.
func (s *Service) Get(ctx context.Context, viewer user.Principal, id uuid.UUID) (*Scholarship, error) {
	sch, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sch == nil {
		return nil, ErrScholarshipNotFound
	}
	if sch.Status == StatusDraft && !sch.IsOwnedBy(viewer.ID) {
		return nil, ErrScholarshipNotFound
	}
	return sch, nil
}

// ListMine lists the calling sponsor's scholarships
func (s *Service) ListMine(ctx context.Context, p user.Principal) ([]*Scholarship, error) {
	if !p.IsSponsor() {
		return nil, ErrNotScholarshipOwner
	}
	return s.repo.ListBySponsor(ctx, p.ID)
}

// ListActive lists scholarships open for applications
func (s *Service) ListActive(ctx context.Context, filter *ListFilter) ([]*Scholarship, int, error) {
	return s.repo.ListActive(ctx, filter)
}

// Update edits a scholarship. Budget fields are frozen once a deposit is started.
func (s *Service) Update(ctx context.Context, p user.Principal, id uuid.UUID, req *UpdateScholarshipRequest) (*Scholarship, error) {
	return s.repo.Mutate(ctx, id, func(sch *Scholarship) error {
		if !sch.IsOwnedBy(p.ID) {
			return ErrNotScholarshipOwner
		}
		switch sch.Status {
		case StatusClosed:
			return ErrScholarshipClosed
		case StatusCompleted:
			return ErrScholarshipCompleted
		}
		if req.changesBudget() && sch.BudgetLocked() {
			return ErrBudgetLocked
		}
		now := s.now()
		applyUpdate(sch, req)
		if req.changesBudget() {
			if err := validateBudget(sch.AmountPerAward, sch.NumberOfAwards, sch.Deadline, now); err != nil {
				return err
			}
			sch.RecomputeBudget()
		}
		sch.UpdatedAt = now
		return nil
	})
}

func applyUpdate(sch *Scholarship, req *UpdateScholarshipRequest) {
	if req.Title != nil {
		sch.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		sch.Description = strings.TrimSpace(*req.Description)
	}
	if req.Category != nil {
		sch.Category = strings.TrimSpace(*req.Category)
	}
	if req.Difficulty != nil {
		sch.Difficulty = Difficulty(*req.Difficulty)
	}
	if req.EligibilityCriteria != nil {
		sch.EligibilityCriteria = *req.EligibilityCriteria
	}
	if req.SubmissionGuidelines != nil {
		sch.SubmissionGuidelines = *req.SubmissionGuidelines
	}
	if req.EvaluationCriteria != nil {
		sch.EvaluationCriteria = *req.EvaluationCriteria
	}
	if req.Requirements != nil {
		sch.Requirements = req.Requirements
	}
	if req.Tags != nil {
		sch.Tags = req.Tags
	}
	if req.AmountPerAward != nil {
		sch.AmountPerAward = *req.AmountPerAward
	}
	if req.NumberOfAwards != nil {
		sch.NumberOfAwards = *req.NumberOfAwards
	}
	if req.Deadline != nil {
		sch.Deadline = req.Deadline.UTC()
	}
}

// Close stops a scholarship. Closing twice is a no-op.
func (s *Service) Close(ctx context.Context, p user.Principal, id uuid.UUID) (*Scholarship, error) {
	changed := false
	sch, err := s.repo.Mutate(ctx, id, func(sch *Scholarship) error {
		if !sch.IsOwnedBy(p.ID) {
			return ErrNotScholarshipOwner
		}
		var err error
		changed, err = sch.Close(s.now())
		return err
	})
	if err != nil {
		return nil, err
	}
	if changed {
		log.Info().Str("scholarship_id", id.String()).Msg("scholarship closed")
	}
	return sch, nil
}

// Delete removes an unpaid draft
func (s *Service) Delete(ctx context.Context, p user.Principal, id uuid.UUID) error {
	return s.repo.Delete(ctx, id, func(sch *Scholarship) error {
		if !sch.IsOwnedBy(p.ID) {
			return ErrNotScholarshipOwner
		}
		if !sch.CanDelete() {
			return ErrCannotDelete
		}
		return nil
	})
}
