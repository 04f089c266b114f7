package scholarship

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/scholarbee/scholarbee-api/internal/pkg/database"
)

// Repository defines scholarship data access
type Repository interface {
	Create(ctx context.Context, s *Scholarship) error
	// GetByID returns nil, nil when the scholarship does not exist
	GetByID(ctx context.Context, id uuid.UUID) (*Scholarship, error)
	ListBySponsor(ctx context.Context, sponsorID uuid.UUID) ([]*Scholarship, error)
	ListActive(ctx context.Context, filter *ListFilter) ([]*Scholarship, int, error)
	// Mutate locks the row, applies fn and persists the result atomically
	Mutate(ctx context.Context, id uuid.UUID, fn func(s *Scholarship) error) (*Scholarship, error)
	// Delete locks the row and removes it if check passes
	Delete(ctx context.Context, id uuid.UUID, check func(s *Scholarship) error) error
}

const columns = `
	s.id, s.sponsor_id, s.title, s.description, s.category, s.difficulty,
	s.eligibility_criteria, s.submission_guidelines, s.evaluation_criteria,
	s.requirements, s.tags, s.amount_per_award, s.number_of_awards, s.total_budget,
	s.status, s.payment_status, s.deadline, s.created_at, s.updated_at`

const countColumns = `,
	(SELECT COUNT(*) FROM applications a WHERE a.scholarship_id = s.id AND a.status IN ('approved', 'funded')) AS awarded_count,
	(SELECT COUNT(*) FROM applications a WHERE a.scholarship_id = s.id AND a.status = 'funded') AS funded_count`

type repository struct {
	db *sqlx.DB
}

// NewRepository creates scholarship repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, s *Scholarship) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO scholarships (
			id, sponsor_id, title, description, category, difficulty,
			eligibility_criteria, submission_guidelines, evaluation_criteria,
			requirements, tags, amount_per_award, number_of_awards, total_budget,
			status, payment_status, deadline, created_at, updated_at
		) VALUES (
			:id, :sponsor_id, :title, :description, :category, :difficulty,
			:eligibility_criteria, :submission_guidelines, :evaluation_criteria,
			:requirements, :tags, :amount_per_award, :number_of_awards, :total_budget,
			:status, :payment_status, :deadline, :created_at, :updated_at
		)`, s)
	return err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Scholarship, error) {
	var s Scholarship
	err := r.db.GetContext(ctx, &s, `SELECT `+columns+countColumns+` FROM scholarships s WHERE s.id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *repository) ListBySponsor(ctx context.Context, sponsorID uuid.UUID) ([]*Scholarship, error) {
	var items []*Scholarship
	err := r.db.SelectContext(ctx, &items, `
		SELECT `+columns+countColumns+`
		FROM scholarships s
		WHERE s.sponsor_id = $1
		ORDER BY s.created_at DESC`, sponsorID)
	return items, err
}

func (r *repository) ListActive(ctx context.Context, filter *ListFilter) ([]*Scholarship, int, error) {
	where := []string{"s.status = 'active'", "s.deadline > NOW()"}
	args := []interface{}{}

	if filter.Category != "" {
		args = append(args, filter.Category)
		where = append(where, fmt.Sprintf("s.category = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where = append(where, fmt.Sprintf("(s.title ILIKE $%d OR s.description ILIKE $%d)", len(args), len(args)))
	}
	whereSQL := strings.Join(where, " AND ")

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM scholarships s WHERE `+whereSQL, args...); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit, filter.offset())
	query := fmt.Sprintf(`
		SELECT %s%s
		FROM scholarships s
		WHERE %s
		ORDER BY s.deadline ASC
		LIMIT $%d OFFSET $%d`, columns, countColumns, whereSQL, len(args)-1, len(args))

	var items []*Scholarship
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repository) Mutate(ctx context.Context, id uuid.UUID, fn func(s *Scholarship) error) (*Scholarship, error) {
	var out *Scholarship
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		s, err := LockForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := fn(s); err != nil {
			return err
		}
		if err := SaveTx(ctx, tx, s); err != nil {
			return err
		}
		out = s
		return nil
	})
	return out, err
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID, check func(s *Scholarship) error) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		s, err := LockForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := check(s); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM payments WHERE scholarship_id = $1`, id); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM scholarships WHERE id = $1`, id)
		return err
	})
}

// LockForUpdate loads a scholarship with its award and open deposit counts and holds a row lock until tx ends.
// Approvals and deposit resolution serialize on this lock.
func LockForUpdate(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*Scholarship, error) {
	var s Scholarship
	err := tx.GetContext(ctx, &s, `SELECT `+columns+` FROM scholarships s WHERE s.id = $1 FOR UPDATE`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScholarshipNotFound
		}
		return nil, err
	}

	err = tx.QueryRowxContext(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status IN ('approved', 'funded')),
			COUNT(*) FILTER (WHERE status = 'funded')
		FROM applications
		WHERE scholarship_id = $1`, id).Scan(&s.AwardedCount, &s.FundedCount)
	if err != nil {
		return nil, err
	}

	err = tx.GetContext(ctx, &s.OpenDeposits, `
		SELECT COUNT(*) FROM payments
		WHERE scholarship_id = $1 AND status IN ('pending', 'processing')`, id)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// SaveTx writes the mutable columns of s
func SaveTx(ctx context.Context, tx *sqlx.Tx, s *Scholarship) error {
	_, err := tx.NamedExecContext(ctx, `
		UPDATE scholarships SET
			title = :title,
			description = :description,
			category = :category,
			difficulty = :difficulty,
			eligibility_criteria = :eligibility_criteria,
			submission_guidelines = :submission_guidelines,
			evaluation_criteria = :evaluation_criteria,
			requirements = :requirements,
			tags = :tags,
			amount_per_award = :amount_per_award,
			number_of_awards = :number_of_awards,
			total_budget = :total_budget,
			status = :status,
			payment_status = :payment_status,
			deadline = :deadline,
			updated_at = :updated_at
		WHERE id = :id`, s)
	return err
}
