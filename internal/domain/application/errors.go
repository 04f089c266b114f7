package application

import "github.com/scholarbee/scholarbee-api/internal/pkg/apperror"

var (
	ErrApplicationNotFound     = apperror.NotFound("application not found")
	ErrOnlyStudentsCanApply    = apperror.Authorization("only students can apply to scholarships")
	ErrAlreadyApplied          = apperror.Duplicate("you already have an active application for this scholarship")
	ErrNotScholarshipOwner     = apperror.Authorization("only the scholarship sponsor can manage its applications")
	ErrNotApplicationOwner     = apperror.Authorization("you can only access your own applications")
	ErrInvalidDecision         = apperror.Validation("decision must be approved or rejected")
	ErrInvalidStatusFilter     = apperror.Validation("unknown application status")
	ErrInvalidStatusTransition = apperror.State("invalid status transition")
	ErrScholarshipNotActive    = apperror.State("scholarship is not active")
	ErrNoAwardsRemaining       = apperror.Capacity("all awards for this scholarship are taken")
	ErrNotApproved             = apperror.State("application is not approved")
	ErrNotFunded               = apperror.State("receipts can only be attached to funded applications")
	ErrReceiptMissing          = apperror.State("no receipt has been uploaded")
	ErrReceiptNotUploaded      = apperror.Validation("receipt file was not found in storage")
	ErrInvalidReceiptKey       = apperror.Validation("receipt key does not belong to you")
	ErrUploadsUnavailable      = apperror.Unavailable("uploads are not configured")
)
