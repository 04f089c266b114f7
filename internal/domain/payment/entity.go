package payment

import (
	"time"

	"github.com/google/uuid"
)

// Status represents deposit status
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusRefunded   Status = "refunded"
)

// IsValid returns true for known statuses
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed, StatusRefunded:
		return true
	}
	return false
}

// Method represents how the sponsor pays
type Method string

const (
	MethodUPI        Method = "upi"
	MethodCard       Method = "card"
	MethodNetBanking Method = "netbanking"
	MethodWallet     Method = "wallet"
)

// Payment is a sponsor's deposit of a scholarship budget.
// Only the last four digits of card and account numbers are stored.
type Payment struct {
	ID            uuid.UUID `db:"id" json:"id"`
	SponsorID     uuid.UUID `db:"sponsor_id" json:"sponsor_id"`
	ScholarshipID uuid.UUID `db:"scholarship_id" json:"scholarship_id"`
	Amount        int64     `db:"amount" json:"amount"`
	Currency      string    `db:"currency" json:"currency"`
	Method        Method    `db:"method" json:"method"`
	Status        Status    `db:"status" json:"status"`
	TransactionID string    `db:"transaction_id" json:"transaction_id"`

	UPIID            string `db:"upi_id" json:"upi_id,omitempty"`
	CardLast4        string `db:"card_last4" json:"card_last4,omitempty"`
	CardBrand        string `db:"card_brand" json:"card_brand,omitempty"`
	BankName         string `db:"bank_name" json:"bank_name,omitempty"`
	BankAccountLast4 string `db:"bank_account_last4" json:"bank_account_last4,omitempty"`

	Description   string     `db:"description" json:"description,omitempty"`
	FailureReason string     `db:"failure_reason" json:"failure_reason,omitempty"`
	ResolveAfter  *time.Time `db:"resolve_after" json:"resolve_after,omitempty"`
	ProcessedAt   *time.Time `db:"processed_at" json:"processed_at,omitempty"`
	RefundedAt    *time.Time `db:"refunded_at" json:"refunded_at,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`

	// Joined data (list queries only)
	ScholarshipTitle string `db:"scholarship_title" json:"scholarship_title,omitempty"`
}

// IsOpen returns true while the deposit awaits an outcome
func (p *Payment) IsOpen() bool {
	return p.Status == StatusPending || p.Status == StatusProcessing
}

// StartProcessing hands the deposit to the gateway. Already processing is a no-op.
func (p *Payment) StartProcessing(now time.Time, delay time.Duration) (bool, error) {
	switch p.Status {
	case StatusProcessing:
		return false, nil
	case StatusPending:
	default:
		return false, ErrNotPending
	}
	due := now.Add(delay)
	p.Status = StatusProcessing
	p.ResolveAfter = &due
	p.UpdatedAt = now
	return true, nil
}

// Complete marks the deposit as cleared
func (p *Payment) Complete(now time.Time) {
	p.Status = StatusCompleted
	p.ProcessedAt = &now
	p.UpdatedAt = now
}

// Fail records a declined deposit
func (p *Payment) Fail(reason string, now time.Time) {
	p.Status = StatusFailed
	p.FailureReason = reason
	p.ProcessedAt = &now
	p.UpdatedAt = now
}

// Refund returns a deposit that can no longer be applied
func (p *Payment) Refund(reason string, now time.Time) {
	p.Status = StatusRefunded
	p.FailureReason = reason
	p.ProcessedAt = &now
	p.RefundedAt = &now
	p.UpdatedAt = now
}
