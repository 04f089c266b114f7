package payment

import "github.com/scholarbee/scholarbee-api/internal/pkg/apperror"

var (
	ErrPaymentNotFound       = apperror.NotFound("payment not found")
	ErrOnlySponsors          = apperror.Authorization("only sponsors can make deposits")
	ErrNotPaymentOwner       = apperror.Authorization("you can only access your own payments")
	ErrNotScholarshipOwner   = apperror.Authorization("you can only pay for your own scholarships")
	ErrInvalidPaymentDetails = apperror.Validation("invalid payment details")
	ErrInvalidStatusFilter   = apperror.Validation("unknown payment status")
	ErrAlreadyPaid           = apperror.State("scholarship is already paid")
	ErrScholarshipClosed     = apperror.State("scholarship is closed")
	ErrNotPending            = apperror.State("payment is not pending")
	ErrPaymentInProgress     = apperror.Duplicate("another payment for this scholarship is in progress")
)
