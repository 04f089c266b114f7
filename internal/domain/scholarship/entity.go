package scholarship

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Status represents scholarship lifecycle status
type Status string

const (
	StatusDraft     Status = "draft"
	StatusActive    Status = "active"
	StatusClosed    Status = "closed"
	StatusCompleted Status = "completed"
)

// PaymentStatus tracks whether the sponsor deposit has cleared
type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

// Difficulty is an informational label shown to students
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "Beginner"
	DifficultyIntermediate Difficulty = "Intermediate"
	DifficultyAdvanced     Difficulty = "Advanced"
)

// Scholarship is a sponsor-funded award offering (matches scholarships table)
type Scholarship struct {
	ID        uuid.UUID `db:"id"`
	SponsorID uuid.UUID `db:"sponsor_id"`

	Title                string         `db:"title"`
	Description          string         `db:"description"`
	Category             string         `db:"category"`
	Difficulty           Difficulty     `db:"difficulty"`
	EligibilityCriteria  string         `db:"eligibility_criteria"`
	SubmissionGuidelines string         `db:"submission_guidelines"`
	EvaluationCriteria   string         `db:"evaluation_criteria"`
	Requirements         pq.StringArray `db:"requirements"`
	Tags                 pq.StringArray `db:"tags"`

	AmountPerAward int64 `db:"amount_per_award"`
	NumberOfAwards int   `db:"number_of_awards"`
	TotalBudget    int64 `db:"total_budget"`

	Status        Status        `db:"status"`
	PaymentStatus PaymentStatus `db:"payment_status"`
	Deadline      time.Time     `db:"deadline"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	// Computed from applications on read
	AwardedCount int `db:"awarded_count"`
	FundedCount  int `db:"funded_count"`
	// Pending or processing deposits; filled only under the row lock
	OpenDeposits int `db:"open_deposits"`
}

// RecomputeBudget keeps total_budget = amount_per_award * number_of_awards
func (s *Scholarship) RecomputeBudget() {
	s.TotalBudget = s.AmountPerAward * int64(s.NumberOfAwards)
}

// RemainingAwards returns award slots not yet taken by approved or funded applications
func (s *Scholarship) RemainingAwards() int {
	remaining := s.NumberOfAwards - s.AwardedCount
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsOwnedBy returns true if sponsorID created the scholarship
func (s *Scholarship) IsOwnedBy(sponsorID uuid.UUID) bool {
	return s.SponsorID == sponsorID
}

// IsActive returns true if scholarship is accepting work
func (s *Scholarship) IsActive() bool {
	return s.Status == StatusActive
}

// IsPaid returns true once the deposit completed
func (s *Scholarship) IsPaid() bool {
	return s.PaymentStatus == PaymentPaid
}

// BudgetLocked reports whether amount, awards and deadline are fixed.
// An in-flight deposit was priced from the current budget, so it locks it too.
func (s *Scholarship) BudgetLocked() bool {
	return s.IsPaid() || s.OpenDeposits > 0
}

// IsTerminal returns true for closed or completed scholarships
func (s *Scholarship) IsTerminal() bool {
	return s.Status == StatusClosed || s.Status == StatusCompleted
}

// AcceptsApplications checks whether a student may apply at now
func (s *Scholarship) AcceptsApplications(now time.Time) error {
	if s.Status != StatusActive {
		return ErrNotAcceptingApplications
	}
	if !now.Before(s.Deadline) {
		return ErrDeadlinePassed
	}
	return nil
}

// Activate marks the deposit as cleared and opens the scholarship
func (s *Scholarship) Activate(now time.Time) error {
	switch s.Status {
	case StatusClosed:
		return ErrScholarshipClosed
	case StatusCompleted:
		return ErrScholarshipCompleted
	}
	s.Status = StatusActive
	s.PaymentStatus = PaymentPaid
	s.UpdatedAt = now
	return nil
}

// Close stops the scholarship. Returns false if it was already closed.
func (s *Scholarship) Close(now time.Time) (bool, error) {
	switch s.Status {
	case StatusClosed:
		return false, nil
	case StatusCompleted:
		return false, ErrScholarshipCompleted
	}
	s.Status = StatusClosed
	s.UpdatedAt = now
	return true, nil
}

// RecordFunding marks one more award as paid out and completes the scholarship when all awards are funded
func (s *Scholarship) RecordFunding(now time.Time) {
	s.FundedCount++
	if s.FundedCount >= s.NumberOfAwards && s.Status == StatusActive {
		s.Status = StatusCompleted
	}
	s.UpdatedAt = now
}

// CanDelete returns true for drafts that were never paid
func (s *Scholarship) CanDelete() bool {
	return s.Status == StatusDraft && s.PaymentStatus == PaymentUnpaid && s.OpenDeposits == 0
}
