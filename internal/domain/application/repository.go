package application

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/scholarbee/scholarbee-api/internal/domain/scholarship"
	"github.com/scholarbee/scholarbee-api/internal/pkg/database"
)

// Repository defines application data access
type Repository interface {
	// Create returns ErrAlreadyApplied when the student holds a non-rejected application for the scholarship
	Create(ctx context.Context, a *Application) error
	// GetByID returns nil, nil when the application does not exist
	GetByID(ctx context.Context, id uuid.UUID) (*Application, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*Application, error)
	ListByScholarship(ctx context.Context, scholarshipID uuid.UUID, status Status) ([]*Application, error)
	// Transition locks the parent scholarship, then the application, and persists both after fn
	Transition(ctx context.Context, id uuid.UUID, fn func(a *Application, s *scholarship.Scholarship) error) (*Application, error)
}

const columns = `
	a.id, a.student_id, a.scholarship_id, a.status, a.essay, a.motivation,
	a.project_plan, a.timeline, a.documents, a.amount, a.reviewed_at, a.reviewed_by,
	a.funded_at, a.receipt_key, a.receipt_verified, a.receipt_verified_at,
	a.submitted_at, a.updated_at`

const activeUniqueConstraint = "applications_active_unique"

type repository struct {
	db *sqlx.DB
}

// NewRepository creates application repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, a *Application) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO applications (
			id, student_id, scholarship_id, status, essay, motivation,
			project_plan, timeline, documents, amount, submitted_at, updated_at
		) VALUES (
			:id, :student_id, :scholarship_id, :status, :essay, :motivation,
			:project_plan, :timeline, :documents, :amount, :submitted_at, :updated_at
		)`, a)
	if database.IsUniqueViolation(err, activeUniqueConstraint) {
		return ErrAlreadyApplied
	}
	return err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Application, error) {
	var a Application
	err := r.db.GetContext(ctx, &a, `
		SELECT `+columns+`, s.title AS scholarship_title
		FROM applications a
		JOIN scholarships s ON s.id = a.scholarship_id
		WHERE a.id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *repository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*Application, error) {
	var items []*Application
	err := r.db.SelectContext(ctx, &items, `
		SELECT `+columns+`, s.title AS scholarship_title
		FROM applications a
		JOIN scholarships s ON s.id = a.scholarship_id
		WHERE a.student_id = $1
		ORDER BY a.submitted_at DESC`, studentID)
	return items, err
}

func (r *repository) ListByScholarship(ctx context.Context, scholarshipID uuid.UUID, status Status) ([]*Application, error) {
	query := `
		SELECT ` + columns + `, s.title AS scholarship_title
		FROM applications a
		JOIN scholarships s ON s.id = a.scholarship_id
		WHERE a.scholarship_id = $1`
	args := []interface{}{scholarshipID}
	if status != "" {
		query += ` AND a.status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY a.submitted_at ASC`

	var items []*Application
	err := r.db.SelectContext(ctx, &items, query, args...)
	return items, err
}

func (r *repository) Transition(ctx context.Context, id uuid.UUID, fn func(a *Application, s *scholarship.Scholarship) error) (*Application, error) {
	var out *Application
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var scholarshipID uuid.UUID
		err := tx.GetContext(ctx, &scholarshipID, `SELECT scholarship_id FROM applications WHERE id = $1`, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrApplicationNotFound
			}
			return err
		}

		sch, err := scholarship.LockForUpdate(ctx, tx, scholarshipID)
		if err != nil {
			return err
		}
		a, err := LockForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := fn(a, sch); err != nil {
			return err
		}
		if err := SaveTx(ctx, tx, a); err != nil {
			return err
		}
		if err := scholarship.SaveTx(ctx, tx, sch); err != nil {
			return err
		}
		a.ScholarshipTitle = sch.Title
		out = a
		return nil
	})
	return out, err
}

// LockForUpdate loads an application and holds its row lock until tx ends.
// Callers lock the parent scholarship first.
func LockForUpdate(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*Application, error) {
	var a Application
	err := tx.GetContext(ctx, &a, `SELECT `+columns+` FROM applications a WHERE a.id = $1 FOR UPDATE`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return &a, nil
}

// SaveTx writes the mutable columns of a
func SaveTx(ctx context.Context, tx *sqlx.Tx, a *Application) error {
	_, err := tx.NamedExecContext(ctx, `
		UPDATE applications SET
			status = :status,
			reviewed_at = :reviewed_at,
			reviewed_by = :reviewed_by,
			funded_at = :funded_at,
			receipt_key = :receipt_key,
			receipt_verified = :receipt_verified,
			receipt_verified_at = :receipt_verified_at,
			updated_at = :updated_at
		WHERE id = :id`, a)
	return err
}
