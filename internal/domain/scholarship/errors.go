package scholarship

import "github.com/scholarbee/scholarbee-api/internal/pkg/apperror"

var (
	ErrScholarshipNotFound      = apperror.NotFound("scholarship not found")
	ErrOnlySponsorsCanCreate    = apperror.Authorization("only sponsors can create scholarships")
	ErrNotScholarshipOwner      = apperror.Authorization("you can only manage your own scholarships")
	ErrInvalidAmount            = apperror.Validation("amount per award must be greater than zero")
	ErrInvalidAwards            = apperror.Validation("number of awards must be at least 1")
	ErrDeadlineInPast           = apperror.Validation("deadline must be in the future")
	ErrNotAcceptingApplications = apperror.Validation("scholarship is not accepting applications")
	ErrDeadlinePassed           = apperror.Validation("scholarship deadline has passed")
	ErrBudgetLocked             = apperror.State("award amount, number of awards and deadline cannot change once a deposit has been made or is in progress")
	ErrScholarshipClosed        = apperror.State("scholarship is closed")
	ErrScholarshipCompleted     = apperror.State("scholarship is completed")
	ErrCannotDelete             = apperror.State("only unpaid drafts without a pending deposit can be deleted")
)
