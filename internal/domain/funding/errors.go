package funding

import "github.com/scholarbee/scholarbee-api/internal/pkg/apperror"

var (
	ErrLedgerMismatch = apperror.State("a payout already exists for this application")
)
