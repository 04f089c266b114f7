package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/scholarbee/scholarbee-api/internal/domain/application"
	"github.com/scholarbee/scholarbee-api/internal/domain/funding"
	"github.com/scholarbee/scholarbee-api/internal/domain/scholarship"
)

// Fund applies a payout to scholarship, application and wallet as one step
func (s *Store) Fund(ctx context.Context, applicationID uuid.UUID, reference string, fn funding.FundFunc) (*funding.Locked, error) {
	if err := s.lock(ctx); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	stored, ok := s.applications[applicationID]
	if !ok {
		return nil, application.ErrApplicationNotFound
	}
	sch := s.scholarshipLocked(stored.ScholarshipID)
	if sch == nil {
		return nil, scholarship.ErrScholarshipNotFound
	}
	a := cloneApplication(stored)
	w := s.walletLocked(a.StudentID)
	existing := s.findReferenceLocked(a.StudentID, reference)

	entry, err := fn(sch, a, w, existing)
	if err != nil {
		return nil, err
	}
	out := &funding.Locked{Scholarship: sch, Application: a, Wallet: w, Transaction: existing}
	if entry != nil {
		if err := s.appendEntryLocked(w, entry); err != nil {
			return nil, err
		}
		s.applications[a.ID] = cloneApplication(a)
		s.scholarships[sch.ID] = cloneScholarship(sch)
		out.Transaction = entry
	}
	a.ScholarshipTitle = sch.Title
	return out, nil
}
