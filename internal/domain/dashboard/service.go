package dashboard

import (
	"context"

	"github.com/scholarbee/scholarbee-api/internal/domain/user"
	"github.com/scholarbee/scholarbee-api/internal/pkg/apperror"
)

var ErrWrongRole = apperror.Authorization("dashboard is not available for your role")

// Service provides dashboard statistics
type Service struct {
	repo Repository
}

// NewService creates dashboard service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Sponsor returns statistics for a sponsor
func (s *Service) Sponsor(ctx context.Context, p user.Principal) (*SponsorStats, error) {
	if !p.IsSponsor() {
		return nil, ErrWrongRole
	}
	return s.repo.SponsorStats(ctx, p.ID)
}

// Student returns statistics for a student
func (s *Service) Student(ctx context.Context, p user.Principal) (*StudentStats, error) {
	if !p.IsStudent() {
		return nil, ErrWrongRole
	}
	return s.repo.StudentStats(ctx, p.ID)
}
