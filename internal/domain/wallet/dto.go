package wallet

import "time"

// UpdateUPIRequest for PUT /wallet/upi
type UpdateUPIRequest struct {
	UPIID string `json:"upi_id" validate:"required,max=100,upi_id"`
}

// WithdrawRequest for POST /wallet/withdraw
type WithdrawRequest struct {
	Amount int64 `json:"amount"`
}

// TransactionFilter for GET /wallet/transactions
type TransactionFilter struct {
	Type  TransactionType
	Page  int
	Limit int
}

func (f *TransactionFilter) offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// WalletView is the wallet with its most recent ledger entries
type WalletView struct {
	*Wallet
	RecentTransactions []*Transaction `json:"recent_transactions"`
}

// WithdrawResult is returned by POST /wallet/withdraw
type WithdrawResult struct {
	Wallet      *Wallet      `json:"wallet"`
	Transaction *Transaction `json:"transaction"`
	Replayed    bool         `json:"replayed"`
}

// Stats for GET /wallet/stats
type Stats struct {
	Balance           int64 `json:"balance"`
	TotalEarned       int64 `json:"total_earned"`
	TotalWithdrawn    int64 `json:"total_withdrawn"`
	TransactionCount  int   `json:"transaction_count"`
	ThisMonthEarnings int64 `json:"this_month_earnings"`
	LastMonthEarnings int64 `json:"last_month_earnings"`
}

// AuditResult for GET /wallet/audit
type AuditResult struct {
	StudentID       string    `json:"student_id"`
	StoredBalance   int64     `json:"stored_balance"`
	LedgerBalance   int64     `json:"ledger_balance"`
	CompletedCredit int64     `json:"completed_credits"`
	CompletedDebit  int64     `json:"completed_debits"`
	Consistent      bool      `json:"consistent"`
	CheckedAt       time.Time `json:"checked_at"`
}
