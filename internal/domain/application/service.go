package application

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/scholarbee/scholarbee-api/internal/domain/scholarship"
	"github.com/scholarbee/scholarbee-api/internal/domain/user"
	"github.com/scholarbee/scholarbee-api/internal/pkg/storage"
)

// Realtime event types
const (
	EventApplicationDecided = "application.decided"
)

// Funder pays out an approved application
type Funder interface {
	FundApplication(ctx context.Context, p user.Principal, applicationID uuid.UUID) error
}

// EventPublisher pushes events to connected users
type EventPublisher interface {
	Publish(userID uuid.UUID, eventType string, data any)
}

// DocumentChecker confirms uploads exist in object storage
type DocumentChecker interface {
	Exists(ctx context.Context, key string) (bool, error)
}

// Service handles application business logic
type Service struct {
	repo         Repository
	scholarships scholarship.Repository
	now          func() time.Time

	funder    Funder
	events    EventPublisher
	documents DocumentChecker
}

// NewService creates application service
func NewService(repo Repository, scholarships scholarship.Repository) *Service {
	return &Service{repo: repo, scholarships: scholarships, now: time.Now}
}

// SetClock overrides the time source
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// SetFunder enables funding right after approval
func (s *Service) SetFunder(f Funder) { s.funder = f }

// SetEventPublisher sets realtime publisher
func (s *Service) SetEventPublisher(p EventPublisher) { s.events = p }

// SetDocumentChecker sets the object store used to verify receipts
func (s *Service) SetDocumentChecker(d DocumentChecker) { s.documents = d }

func (s *Service) publish(userID uuid.UUID, eventType string, data any) {
	if s.events != nil {
		s.events.Publish(userID, eventType, data)
	}
}

// Submit creates a pending application for an active scholarship
func (s *Service) Submit(ctx context.Context, p user.Principal, scholarshipID uuid.UUID, req *SubmitRequest) (*Application, error) {
	if !p.IsStudent() {
		return nil, ErrOnlyStudentsCanApply
	}

	sch, err := s.scholarships.GetByID(ctx, scholarshipID)
	if err != nil {
		return nil, err
	}
	if sch == nil {
		return nil, scholarship.ErrScholarshipNotFound
	}
	now := s.now()
	if err := sch.AcceptsApplications(now); err != nil {
		return nil, err
	}

	app := &Application{
		ID:               uuid.New(),
		StudentID:        p.ID,
		ScholarshipID:    sch.ID,
		Status:           StatusPending,
		Essay:            strings.TrimSpace(req.Essay),
		Motivation:       strings.TrimSpace(req.Motivation),
		ProjectPlan:      strings.TrimSpace(req.ProjectPlan),
		Timeline:         strings.TrimSpace(req.Timeline),
		Documents:        nonNil(req.Documents),
		Amount:           sch.AmountPerAward,
		SubmittedAt:      now,
		UpdatedAt:        now,
		ScholarshipTitle: sch.Title,
	}
	if err := s.repo.Create(ctx, app); err != nil {
		return nil, err
	}

	log.Info().
		Str("application_id", app.ID.String()).
		Str("scholarship_id", sch.ID.String()).
		Str("student_id", p.ID.String()).
		Msg("application submitted")
	return app, nil
}

// StartReview moves a pending application to in_review
func (s *Service) StartReview(ctx context.Context, p user.Principal, id uuid.UUID) (*Application, error) {
	return s.repo.Transition(ctx, id, func(a *Application, sch *scholarship.Scholarship) error {
		if !sch.IsOwnedBy(p.ID) {
			return ErrNotScholarshipOwner
		}
		if a.Status != StatusPending {
			return ErrInvalidStatusTransition
		}
		return a.moveTo(StatusInReview, p.ID, s.now())
	})
}

// Decide approves or rejects an application.
// Approval takes an award slot; the slot check runs under the scholarship lock.
func (s *Service) Decide(ctx context.Context, p user.Principal, id uuid.UUID, decision Status) (*Application, error) {
	if decision != StatusApproved && decision != StatusRejected {
		return nil, ErrInvalidDecision
	}

	app, err := s.repo.Transition(ctx, id, func(a *Application, sch *scholarship.Scholarship) error {
		if !sch.IsOwnedBy(p.ID) {
			return ErrNotScholarshipOwner
		}
		if !a.CanBeUpdatedTo(decision) {
			return ErrInvalidStatusTransition
		}
		if decision == StatusApproved {
			if !sch.IsActive() {
				return ErrScholarshipNotActive
			}
			if sch.RemainingAwards() <= 0 {
				return ErrNoAwardsRemaining
			}
			sch.AwardedCount++
		}
		return a.moveTo(decision, p.ID, s.now())
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("application_id", app.ID.String()).
		Str("status", string(app.Status)).
		Str("reviewer_id", p.ID.String()).
		Msg("application decided")
	s.publish(app.StudentID, EventApplicationDecided, map[string]any{
		"application_id": app.ID,
		"scholarship_id": app.ScholarshipID,
		"status":         app.Status,
	})

	if decision == StatusApproved && s.funder != nil {
		if err := s.funder.FundApplication(ctx, p, app.ID); err != nil {
			// Approval stands; sponsor can retry funding manually
			log.Warn().Err(err).Str("application_id", app.ID.String()).Msg("auto funding failed")
			return app, nil
		}
		if funded, err := s.repo.GetByID(ctx, app.ID); err == nil && funded != nil {
			return funded, nil
		}
	}
	return app, nil
}

// Get returns an application visible to its student or the scholarship sponsor
func (s *Service) Get(ctx context.Context, p user.Principal, id uuid.UUID) (*Application, error) {
	app, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, ErrApplicationNotFound
	}
	if app.StudentID == p.ID || p.IsAdmin() {
		return app, nil
	}

	sch, err := s.scholarships.GetByID(ctx, app.ScholarshipID)
	if err != nil {
		return nil, err
	}
	if sch == nil || !sch.IsOwnedBy(p.ID) {
		return nil, ErrNotApplicationOwner
	}
	return app, nil
}

// ListMine lists the calling student's applications
func (s *Service) ListMine(ctx context.Context, p user.Principal) ([]*Application, error) {
	if !p.IsStudent() {
		return nil, ErrOnlyStudentsCanApply
	}
	return s.repo.ListByStudent(ctx, p.ID)
}

// ListForScholarship lists applications for a sponsor's scholarship
func (s *Service) ListForScholarship(ctx context.Context, p user.Principal, scholarshipID uuid.UUID, status Status) ([]*Application, error) {
	if status != "" && !status.IsValid() {
		return nil, ErrInvalidStatusFilter
	}
	sch, err := s.scholarships.GetByID(ctx, scholarshipID)
	if err != nil {
		return nil, err
	}
	if sch == nil {
		return nil, scholarship.ErrScholarshipNotFound
	}
	if !sch.IsOwnedBy(p.ID) {
		return nil, ErrNotScholarshipOwner
	}
	return s.repo.ListByScholarship(ctx, scholarshipID, status)
}

// AttachReceipt records a spending receipt on a funded application
func (s *Service) AttachReceipt(ctx context.Context, p user.Principal, id uuid.UUID, key string) (*Application, error) {
	if s.documents == nil {
		return nil, ErrUploadsUnavailable
	}
	if !storage.IsOwnedKey(key, storage.KindReceipt, p.ID) {
		return nil, ErrInvalidReceiptKey
	}

	existing, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if existing.StudentID != p.ID {
		return nil, ErrNotApplicationOwner
	}
	if existing.Status != StatusFunded {
		return nil, ErrNotFunded
	}

	ok, err := s.documents.Exists(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrReceiptNotUploaded
	}

	return s.repo.Transition(ctx, id, func(a *Application, _ *scholarship.Scholarship) error {
		if a.StudentID != p.ID {
			return ErrNotApplicationOwner
		}
		if a.Status != StatusFunded {
			return ErrNotFunded
		}
		a.ReceiptKey = key
		a.ReceiptVerified = false
		a.ReceiptVerifiedAt = nil
		a.UpdatedAt = s.now()
		return nil
	})
}

// VerifyReceipt marks the receipt as checked by the sponsor
func (s *Service) VerifyReceipt(ctx context.Context, p user.Principal, id uuid.UUID) (*Application, error) {
	return s.repo.Transition(ctx, id, func(a *Application, sch *scholarship.Scholarship) error {
		if !sch.IsOwnedBy(p.ID) {
			return ErrNotScholarshipOwner
		}
		if a.ReceiptKey == "" {
			return ErrReceiptMissing
		}
		if a.ReceiptVerified {
			return nil
		}
		now := s.now()
		a.ReceiptVerified = true
		a.ReceiptVerifiedAt = &now
		a.UpdatedAt = now
		return nil
	})
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
