package wallet

import (
	"time"

	"github.com/google/uuid"
)

type TransactionType string

const (
	TransactionTypeCredit TransactionType = "credit"
	TransactionTypeDebit  TransactionType = "debit"
)

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
)

// Wallet holds a student's scholarship money. balance >= 0 always.
type Wallet struct {
	StudentID      uuid.UUID `db:"student_id" json:"student_id"`
	Balance        int64     `db:"balance" json:"balance"`
	TotalEarned    int64     `db:"total_earned" json:"total_earned"`
	TotalWithdrawn int64     `db:"total_withdrawn" json:"total_withdrawn"`
	UPIID          string    `db:"upi_id" json:"upi_id"`
	IsActive       bool      `db:"is_active" json:"is_active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Transaction is an append-only ledger entry. Reference is unique per wallet.
type Transaction struct {
	ID               uuid.UUID         `db:"id" json:"id"`
	StudentID        uuid.UUID         `db:"student_id" json:"student_id"`
	Type             TransactionType   `db:"type" json:"type"`
	Amount           int64             `db:"amount" json:"amount"`
	Status           TransactionStatus `db:"status" json:"status"`
	ScholarshipID    uuid.NullUUID     `db:"scholarship_id" json:"scholarship_id"`
	ApplicationID    uuid.NullUUID     `db:"application_id" json:"application_id"`
	Description      string            `db:"description" json:"description"`
	Reference        string            `db:"reference" json:"reference"`
	UPITransactionID string            `db:"upi_transaction_id" json:"upi_transaction_id,omitempty"`
	CreatedAt        time.Time         `db:"created_at" json:"created_at"`
}

// NewWallet returns an empty active wallet
func NewWallet(studentID uuid.UUID, now time.Time) *Wallet {
	return &Wallet{StudentID: studentID, IsActive: true, CreatedAt: now, UpdatedAt: now}
}

// Credit adds a completed credit to the wallet and returns the ledger entry
func (w *Wallet) Credit(amount int64, reference, description string, now time.Time) (*Transaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	w.Balance += amount
	w.TotalEarned += amount
	w.UpdatedAt = now
	return w.entry(TransactionTypeCredit, amount, reference, description, now), nil
}

// Debit removes a completed debit from the wallet
func (w *Wallet) Debit(amount int64, reference, description string, now time.Time) (*Transaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if amount > w.Balance {
		return nil, ErrInsufficientFunds
	}
	w.Balance -= amount
	w.TotalWithdrawn += amount
	w.UpdatedAt = now
	return w.entry(TransactionTypeDebit, amount, reference, description, now), nil
}

func (w *Wallet) entry(t TransactionType, amount int64, reference, description string, now time.Time) *Transaction {
	return &Transaction{
		ID:          uuid.New(),
		StudentID:   w.StudentID,
		Type:        t,
		Amount:      amount,
		Status:      TransactionCompleted,
		Description: description,
		Reference:   reference,
		CreatedAt:   now,
	}
}

// Signed returns the amount with its ledger sign
func (t *Transaction) Signed() int64 {
	if t.Type == TransactionTypeDebit {
		return -t.Amount
	}
	return t.Amount
}

// Totals summarises completed ledger entries over a period
type Totals struct {
	Credits int64 `db:"credits" json:"credits"`
	Debits  int64 `db:"debits" json:"debits"`
	Count   int   `db:"count" json:"count"`
}

// Net returns credits minus debits
func (t *Totals) Net() int64 {
	return t.Credits - t.Debits
}
