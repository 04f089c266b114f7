package wallet

import "github.com/scholarbee/scholarbee-api/internal/pkg/apperror"

var (
	ErrOnlyStudents       = apperror.Authorization("only students have wallets")
	ErrInvalidAmount      = apperror.Validation("amount must be greater than zero")
	ErrInvalidUPIID       = apperror.Validation("invalid UPI ID format")
	ErrUPIRequired        = apperror.Validation("set a UPI ID before withdrawing")
	ErrInvalidTypeFilter  = apperror.Validation("type must be credit or debit")
	ErrInsufficientFunds  = apperror.InsufficientFunds("insufficient wallet balance")
	ErrWalletInactive     = apperror.State("wallet is inactive")
	ErrReferenceConflict  = apperror.Duplicate("idempotency key already used with a different amount")
	ErrDuplicateReference = apperror.Duplicate("duplicate transaction reference")
)
