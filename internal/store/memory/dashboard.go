package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/scholarbee/scholarbee-api/internal/domain/application"
	"github.com/scholarbee/scholarbee-api/internal/domain/dashboard"
	"github.com/scholarbee/scholarbee-api/internal/domain/payment"
)

// SponsorStats aggregates the sponsor dashboard
func (s *Store) SponsorStats(ctx context.Context, sponsorID uuid.UUID) (*dashboard.SponsorStats, error) {
	if err := s.lock(ctx); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	stats := &dashboard.SponsorStats{ScholarshipsByStatus: map[string]int{}}
	owned := make(map[uuid.UUID]bool)
	for id, sch := range s.scholarships {
		if sch.SponsorID != sponsorID {
			continue
		}
		owned[id] = true
		stats.ScholarshipsByStatus[string(sch.Status)]++
		stats.TotalScholarships++
		if sch.IsPaid() {
			stats.CommittedBudget += sch.TotalBudget
		}
	}

	for _, p := range s.payments {
		if p.SponsorID == sponsorID && p.Status == payment.StatusCompleted {
			stats.TotalDeposited += p.Amount
		}
	}

	applicants := make(map[uuid.UUID]bool)
	for _, a := range s.applications {
		if !owned[a.ScholarshipID] {
			continue
		}
		applicants[a.StudentID] = true
		if a.HoldsAward() {
			stats.Awarded++
		}
		if a.Status == application.StatusFunded {
			stats.FundedAmount += a.Amount
		}
	}
	stats.Applicants = len(applicants)
	return stats, nil
}

// StudentStats aggregates the student dashboard. A missing wallet reads as zeros.
func (s *Store) StudentStats(ctx context.Context, studentID uuid.UUID) (*dashboard.StudentStats, error) {
	if err := s.lock(ctx); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	stats := &dashboard.StudentStats{ApplicationsByStatus: map[string]int{}}
	for _, a := range s.applications {
		if a.StudentID == studentID {
			stats.ApplicationsByStatus[string(a.Status)]++
			stats.TotalApplications++
		}
	}
	if w, ok := s.wallets[studentID]; ok {
		stats.Balance = w.Balance
		stats.TotalEarned = w.TotalEarned
		stats.TotalWithdrawn = w.TotalWithdrawn
	}
	return stats, nil
}
