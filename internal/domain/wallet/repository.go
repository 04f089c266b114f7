package wallet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/scholarbee/scholarbee-api/internal/pkg/database"
)

// ApplyFunc decides the ledger entry for a locked wallet.
// existing is the entry already stored under the same reference, if any.
// Returning a nil transaction leaves the wallet untouched.
type ApplyFunc func(w *Wallet, existing *Transaction) (*Transaction, error)

// Repository defines wallet data access
type Repository interface {
	// GetOrCreate returns the student's wallet, creating an empty one on first access
	GetOrCreate(ctx context.Context, studentID uuid.UUID) (*Wallet, error)
	SetUPI(ctx context.Context, studentID uuid.UUID, upiID string) (*Wallet, error)
	// Apply locks the wallet and persists the balance with fn's ledger entry atomically
	Apply(ctx context.Context, studentID uuid.UUID, reference string, fn ApplyFunc) (*Wallet, *Transaction, error)
	ListTransactions(ctx context.Context, studentID uuid.UUID, filter *TransactionFilter) ([]*Transaction, int, error)
	// Totals sums completed entries created in [from, to). Zero times mean unbounded.
	Totals(ctx context.Context, studentID uuid.UUID, from, to time.Time) (*Totals, error)
}

const walletColumns = `student_id, balance, total_earned, total_withdrawn, upi_id, is_active, created_at, updated_at`

const transactionColumns = `
	id, student_id, type, amount, status, scholarship_id, application_id,
	description, reference, upi_transaction_id, created_at`

const referenceConstraint = "wallet_transactions_reference_unique"

type repository struct {
	db *sqlx.DB
}

// NewRepository creates wallet repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetOrCreate(ctx context.Context, studentID uuid.UUID) (*Wallet, error) {
	if err := ensureWallet(ctx, r.db, studentID); err != nil {
		return nil, err
	}
	var w Wallet
	err := r.db.GetContext(ctx, &w, `SELECT `+walletColumns+` FROM wallets WHERE student_id = $1`, studentID)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *repository) SetUPI(ctx context.Context, studentID uuid.UUID, upiID string) (*Wallet, error) {
	if err := ensureWallet(ctx, r.db, studentID); err != nil {
		return nil, err
	}
	var w Wallet
	err := r.db.GetContext(ctx, &w, `
		UPDATE wallets SET upi_id = $2, updated_at = NOW()
		WHERE student_id = $1
		RETURNING `+walletColumns, studentID, upiID)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *repository) Apply(ctx context.Context, studentID uuid.UUID, reference string, fn ApplyFunc) (*Wallet, *Transaction, error) {
	var (
		outWallet *Wallet
		outTx     *Transaction
	)
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		w, err := LockForUpdate(ctx, tx, studentID)
		if err != nil {
			return err
		}
		existing, err := FindByReferenceTx(ctx, tx, studentID, reference)
		if err != nil {
			return err
		}
		entry, err := fn(w, existing)
		if err != nil {
			return err
		}
		outWallet, outTx = w, existing
		if entry == nil {
			return nil
		}
		if err := InsertTransactionTx(ctx, tx, entry); err != nil {
			return err
		}
		if err := SaveTx(ctx, tx, w); err != nil {
			return err
		}
		outTx = entry
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return outWallet, outTx, nil
}

func (r *repository) ListTransactions(ctx context.Context, studentID uuid.UUID, filter *TransactionFilter) ([]*Transaction, int, error) {
	where := "student_id = $1"
	args := []interface{}{studentID}
	if filter.Type != "" {
		args = append(args, string(filter.Type))
		where += " AND type = $2"
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM wallet_transactions WHERE `+where, args...); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit, filter.offset())
	query := fmt.Sprintf(`
		SELECT %s FROM wallet_transactions
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, transactionColumns, where, len(args)-1, len(args))

	var items []*Transaction
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repository) Totals(ctx context.Context, studentID uuid.UUID, from, to time.Time) (*Totals, error) {
	query := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE type = 'credit'), 0) AS credits,
			COALESCE(SUM(amount) FILTER (WHERE type = 'debit'), 0) AS debits,
			COUNT(*) AS count
		FROM wallet_transactions
		WHERE student_id = $1 AND status = 'completed'`
	args := []interface{}{studentID}
	if !from.IsZero() {
		args = append(args, from)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if !to.IsZero() {
		args = append(args, to)
		query += fmt.Sprintf(" AND created_at < $%d", len(args))
	}

	var t Totals
	if err := r.db.GetContext(ctx, &t, query, args...); err != nil {
		return nil, err
	}
	return &t, nil
}

func ensureWallet(ctx context.Context, db sqlx.ExecerContext, studentID uuid.UUID) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO wallets (student_id, balance, is_active, created_at, updated_at)
		VALUES ($1, 0, TRUE, NOW(), NOW())
		ON CONFLICT (student_id) DO NOTHING`, studentID)
	return err
}

// LockForUpdate creates the wallet if needed and holds its row lock until tx ends
func LockForUpdate(ctx context.Context, tx *sqlx.Tx, studentID uuid.UUID) (*Wallet, error) {
	if err := ensureWallet(ctx, tx, studentID); err != nil {
		return nil, err
	}
	var w Wallet
	err := tx.GetContext(ctx, &w, `SELECT `+walletColumns+` FROM wallets WHERE student_id = $1 FOR UPDATE`, studentID)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// FindByReferenceTx returns the entry stored under reference, or nil
func FindByReferenceTx(ctx context.Context, tx *sqlx.Tx, studentID uuid.UUID, reference string) (*Transaction, error) {
	if reference == "" {
		return nil, nil
	}
	var t Transaction
	err := tx.GetContext(ctx, &t, `
		SELECT `+transactionColumns+`
		FROM wallet_transactions
		WHERE student_id = $1 AND reference = $2`, studentID, reference)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// InsertTransactionTx appends a ledger entry
func InsertTransactionTx(ctx context.Context, tx *sqlx.Tx, t *Transaction) error {
	_, err := tx.NamedExecContext(ctx, `
		INSERT INTO wallet_transactions (
			id, student_id, type, amount, status, scholarship_id, application_id,
			description, reference, upi_transaction_id, created_at
		) VALUES (
			:id, :student_id, :type, :amount, :status, :scholarship_id, :application_id,
			:description, :reference, :upi_transaction_id, :created_at
		)`, t)
	if database.IsUniqueViolation(err, referenceConstraint) {
		return ErrDuplicateReference
	}
	return err
}

// SaveTx writes balance columns of a locked wallet
func SaveTx(ctx context.Context, tx *sqlx.Tx, w *Wallet) error {
	_, err := tx.NamedExecContext(ctx, `
		UPDATE wallets SET
			balance = :balance,
			total_earned = :total_earned,
			total_withdrawn = :total_withdrawn,
			updated_at = :updated_at
		WHERE student_id = :student_id`, w)
	if database.IsCheckViolation(err, "wallets_balance_check") {
		return ErrInsufficientFunds
	}
	return err
}
