package application

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Status represents application status
type Status string

const (
	StatusPending  Status = "pending"
	StatusInReview Status = "in_review"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusFunded   Status = "funded"
)

// IsValid returns true for known statuses
func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// transitions only move forward; rejected and funded are final
var transitions = map[Status][]Status{
	StatusPending:  {StatusInReview, StatusApproved, StatusRejected},
	StatusInReview: {StatusApproved, StatusRejected},
	StatusApproved: {StatusFunded},
	StatusRejected: {},
	StatusFunded:   {},
}

// Application is a student's request for one award (matches applications table)
type Application struct {
	ID            uuid.UUID `db:"id"`
	StudentID     uuid.UUID `db:"student_id"`
	ScholarshipID uuid.UUID `db:"scholarship_id"`
	Status        Status    `db:"status"`

	Essay       string         `db:"essay"`
	Motivation  string         `db:"motivation"`
	ProjectPlan string         `db:"project_plan"`
	Timeline    string         `db:"timeline"`
	Documents   pq.StringArray `db:"documents"`

	// Award amount at submission time; later edits to the scholarship do not change it
	Amount int64 `db:"amount"`

	ReviewedAt *time.Time    `db:"reviewed_at"`
	ReviewedBy uuid.NullUUID `db:"reviewed_by"`
	FundedAt   *time.Time    `db:"funded_at"`

	ReceiptKey        string     `db:"receipt_key"`
	ReceiptVerified   bool       `db:"receipt_verified"`
	ReceiptVerifiedAt *time.Time `db:"receipt_verified_at"`

	SubmittedAt time.Time `db:"submitted_at"`
	UpdatedAt   time.Time `db:"updated_at"`

	// Joined data (list queries only)
	ScholarshipTitle string `db:"scholarship_title"`
}

// IsTerminal returns true when no further transition is possible
func (a *Application) IsTerminal() bool {
	return len(transitions[a.Status]) == 0
}

// HoldsAward returns true if the application occupies an award slot
func (a *Application) HoldsAward() bool {
	return a.Status == StatusApproved || a.Status == StatusFunded
}

// CanBeUpdatedTo checks if status transition is valid
func (a *Application) CanBeUpdatedTo(newStatus Status) bool {
	for _, s := range transitions[a.Status] {
		if s == newStatus {
			return true
		}
	}
	return false
}

// moveTo applies a reviewer transition
func (a *Application) moveTo(status Status, reviewer uuid.UUID, now time.Time) error {
	if !a.CanBeUpdatedTo(status) {
		return ErrInvalidStatusTransition
	}
	a.Status = status
	a.ReviewedAt = &now
	a.ReviewedBy = uuid.NullUUID{UUID: reviewer, Valid: true}
	a.UpdatedAt = now
	return nil
}

// MarkFunded records the payout
func (a *Application) MarkFunded(now time.Time) error {
	if !a.CanBeUpdatedTo(StatusFunded) {
		return ErrNotApproved
	}
	a.Status = StatusFunded
	a.FundedAt = &now
	a.UpdatedAt = now
	return nil
}
