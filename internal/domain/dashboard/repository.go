package dashboard

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository handles dashboard data aggregation
type Repository interface {
	SponsorStats(ctx context.Context, sponsorID uuid.UUID) (*SponsorStats, error)
	StudentStats(ctx context.Context, studentID uuid.UUID) (*StudentStats, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new dashboard repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) SponsorStats(ctx context.Context, sponsorID uuid.UUID) (*SponsorStats, error) {
	stats := &SponsorStats{}

	var byStatus []StatusCount
	if err := r.db.SelectContext(ctx, &byStatus, `
		SELECT status, COUNT(*) AS count
		FROM scholarships
		WHERE sponsor_id = $1
		GROUP BY status`, sponsorID); err != nil {
		return nil, err
	}
	stats.ScholarshipsByStatus, stats.TotalScholarships = countsToMap(byStatus)

	// Budget is committed once the deposit cleared
	if err := r.db.GetContext(ctx, &stats.CommittedBudget, `
		SELECT COALESCE(SUM(total_budget), 0)
		FROM scholarships
		WHERE sponsor_id = $1 AND payment_status = 'paid'`, sponsorID); err != nil {
		return nil, err
	}

	if err := r.db.GetContext(ctx, &stats.TotalDeposited, `
		SELECT COALESCE(SUM(amount), 0)
		FROM payments
		WHERE sponsor_id = $1 AND status = 'completed'`, sponsorID); err != nil {
		return nil, err
	}

	row := r.db.QueryRowxContext(ctx, `
		SELECT
			COUNT(DISTINCT a.student_id),
			COUNT(*) FILTER (WHERE a.status IN ('approved', 'funded')),
			COALESCE(SUM(a.amount) FILTER (WHERE a.status = 'funded'), 0)
		FROM applications a
		JOIN scholarships s ON s.id = a.scholarship_id
		WHERE s.sponsor_id = $1`, sponsorID)
	if err := row.Scan(&stats.Applicants, &stats.Awarded, &stats.FundedAmount); err != nil {
		return nil, err
	}

	return stats, nil
}

func (r *repository) StudentStats(ctx context.Context, studentID uuid.UUID) (*StudentStats, error) {
	stats := &StudentStats{}

	var byStatus []StatusCount
	if err := r.db.SelectContext(ctx, &byStatus, `
		SELECT status, COUNT(*) AS count
		FROM applications
		WHERE student_id = $1
		GROUP BY status`, studentID); err != nil {
		return nil, err
	}
	stats.ApplicationsByStatus, stats.TotalApplications = countsToMap(byStatus)

	// No wallet yet means zeros
	row := r.db.QueryRowxContext(ctx, `
		SELECT
			COALESCE(MAX(balance), 0),
			COALESCE(MAX(total_earned), 0),
			COALESCE(MAX(total_withdrawn), 0)
		FROM wallets
		WHERE student_id = $1`, studentID)
	if err := row.Scan(&stats.Balance, &stats.TotalEarned, &stats.TotalWithdrawn); err != nil {
		return nil, err
	}

	return stats, nil
}
