package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/scholarbee/scholarbee-api/internal/domain/scholarship"
	"github.com/scholarbee/scholarbee-api/internal/pkg/database"
)

// Repository defines payment data access
type Repository interface {
	// Create returns ErrPaymentInProgress when the scholarship already has an open payment
	Create(ctx context.Context, p *Payment) error
	// GetByID returns nil, nil when the payment does not exist
	GetByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	ListBySponsor(ctx context.Context, sponsorID uuid.UUID, filter *HistoryFilter) ([]*Payment, int, error)
	// Mutate locks the payment row, applies fn and persists the result
	Mutate(ctx context.Context, id uuid.UUID, fn func(p *Payment) error) (*Payment, error)
	// Resolve locks the scholarship, then the payment, and persists both after fn
	Resolve(ctx context.Context, id uuid.UUID, fn func(p *Payment, s *scholarship.Scholarship) error) (*Payment, error)
	// ListDue returns processing payments whose resolve_after has passed
	ListDue(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)
	StatusTotals(ctx context.Context, sponsorID uuid.UUID) ([]StatusTotal, error)
	MonthlyCompleted(ctx context.Context, sponsorID uuid.UUID, since time.Time) ([]MonthTotal, error)
}

const columns = `
	p.id, p.sponsor_id, p.scholarship_id, p.amount, p.currency, p.method, p.status,
	p.transaction_id, p.upi_id, p.card_last4, p.card_brand, p.bank_name, p.bank_account_last4,
	p.description, p.failure_reason, p.resolve_after, p.processed_at, p.refunded_at,
	p.created_at, p.updated_at`

const openUniqueConstraint = "payments_open_unique"

type repository struct {
	db *sqlx.DB
}

// NewRepository creates payment repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, p *Payment) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO payments (
			id, sponsor_id, scholarship_id, amount, currency, method, status,
			transaction_id, upi_id, card_last4, card_brand, bank_name, bank_account_last4,
			description, created_at, updated_at
		) VALUES (
			:id, :sponsor_id, :scholarship_id, :amount, :currency, :method, :status,
			:transaction_id, :upi_id, :card_last4, :card_brand, :bank_name, :bank_account_last4,
			:description, :created_at, :updated_at
		)`, p)
	if database.IsUniqueViolation(err, openUniqueConstraint) {
		return ErrPaymentInProgress
	}
	return err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Payment, error) {
	var p Payment
	err := r.db.GetContext(ctx, &p, `
		SELECT `+columns+`, s.title AS scholarship_title
		FROM payments p
		JOIN scholarships s ON s.id = p.scholarship_id
		WHERE p.id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) ListBySponsor(ctx context.Context, sponsorID uuid.UUID, filter *HistoryFilter) ([]*Payment, int, error) {
	where := "p.sponsor_id = $1"
	args := []interface{}{sponsorID}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where += " AND p.status = $2"
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM payments p WHERE `+where, args...); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit, filter.offset())
	query := fmt.Sprintf(`
		SELECT %s, s.title AS scholarship_title
		FROM payments p
		JOIN scholarships s ON s.id = p.scholarship_id
		WHERE %s
		ORDER BY p.created_at DESC
		LIMIT $%d OFFSET $%d`, columns, where, len(args)-1, len(args))

	var items []*Payment
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repository) Mutate(ctx context.Context, id uuid.UUID, fn func(p *Payment) error) (*Payment, error) {
	var out *Payment
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		p, err := lockPayment(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := fn(p); err != nil {
			return err
		}
		if err := savePayment(ctx, tx, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	return out, err
}

func (r *repository) Resolve(ctx context.Context, id uuid.UUID, fn func(p *Payment, s *scholarship.Scholarship) error) (*Payment, error) {
	var out *Payment
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var scholarshipID uuid.UUID
		err := tx.GetContext(ctx, &scholarshipID, `SELECT scholarship_id FROM payments WHERE id = $1`, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrPaymentNotFound
			}
			return err
		}

		s, err := scholarship.LockForUpdate(ctx, tx, scholarshipID)
		if err != nil {
			return err
		}
		p, err := lockPayment(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := fn(p, s); err != nil {
			return err
		}
		if err := savePayment(ctx, tx, p); err != nil {
			return err
		}
		if err := scholarship.SaveTx(ctx, tx, s); err != nil {
			return err
		}
		p.ScholarshipTitle = s.Title
		out = p
		return nil
	})
	return out, err
}

func (r *repository) ListDue(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.SelectContext(ctx, &ids, `
		SELECT id FROM payments
		WHERE status = 'processing' AND resolve_after <= $1
		ORDER BY resolve_after ASC
		LIMIT $2`, now, limit)
	return ids, err
}

func (r *repository) StatusTotals(ctx context.Context, sponsorID uuid.UUID) ([]StatusTotal, error) {
	var items []StatusTotal
	err := r.db.SelectContext(ctx, &items, `
		SELECT status, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS amount
		FROM payments
		WHERE sponsor_id = $1
		GROUP BY status
		ORDER BY status`, sponsorID)
	return items, err
}

func (r *repository) MonthlyCompleted(ctx context.Context, sponsorID uuid.UUID, since time.Time) ([]MonthTotal, error) {
	var items []MonthTotal
	err := r.db.SelectContext(ctx, &items, `
		SELECT TO_CHAR(DATE_TRUNC('month', processed_at), 'YYYY-MM') AS month,
			COUNT(*) AS count,
			COALESCE(SUM(amount), 0) AS amount
		FROM payments
		WHERE sponsor_id = $1 AND status = 'completed' AND processed_at >= $2
		GROUP BY 1
		ORDER BY 1`, sponsorID, since)
	return items, err
}

func lockPayment(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*Payment, error) {
	var p Payment
	err := tx.GetContext(ctx, &p, `SELECT `+columns+` FROM payments p WHERE p.id = $1 FOR UPDATE`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &p, nil
}

func savePayment(ctx context.Context, tx *sqlx.Tx, p *Payment) error {
	_, err := tx.NamedExecContext(ctx, `
		UPDATE payments SET
			status = :status,
			failure_reason = :failure_reason,
			resolve_after = :resolve_after,
			processed_at = :processed_at,
			refunded_at = :refunded_at,
			updated_at = :updated_at
		WHERE id = :id`, p)
	return err
}
