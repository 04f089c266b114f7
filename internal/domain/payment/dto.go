package payment

import (
	"strings"
	"time"

	"github.com/google/uuid"

	gateway "github.com/scholarbee/scholarbee-api/internal/pkg/payment"
	"github.com/scholarbee/scholarbee-api/internal/pkg/validator"
)

// InitiateRequest for POST /payments
type InitiateRequest struct {
	ScholarshipID uuid.UUID `json:"scholarship_id" validate:"required"`
	Method        string    `json:"method" validate:"required,payment_method"`
	Description   string    `json:"description" validate:"max=500"`

	// upi
	UPIID string `json:"upi_id"`

	// card
	CardNumber     string `json:"card_number"`
	ExpiryMonth    int    `json:"expiry_month"`
	ExpiryYear     int    `json:"expiry_year"`
	CVV            string `json:"cvv"`
	CardholderName string `json:"cardholder_name"`

	// netbanking
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
}

// methodDetails is what survives validation; raw card data is dropped here
type methodDetails struct {
	UPIID            string
	CardLast4        string
	CardBrand        string
	BankName         string
	BankAccountLast4 string
}

// validateDetails checks method specific fields and returns field errors
func (r *InitiateRequest) validateDetails(now time.Time) (*methodDetails, map[string]string) {
	errs := map[string]string{}
	d := &methodDetails{}

	switch Method(r.Method) {
	case MethodUPI:
		upi := strings.TrimSpace(r.UPIID)
		if !validator.IsUPIID(upi) {
			errs["upi_id"] = "Invalid UPI ID format"
		}
		d.UPIID = upi

	case MethodCard:
		number, ok := gateway.DigitsOnly(r.CardNumber)
		if !ok || len(number) < 12 || len(number) > 19 {
			errs["card_number"] = "Card number must be 12 to 19 digits"
		}
		if r.ExpiryMonth < 1 || r.ExpiryMonth > 12 {
			errs["expiry_month"] = "Expiry month must be between 1 and 12"
		} else if cardExpired(r.ExpiryMonth, r.ExpiryYear, now) {
			errs["expiry_year"] = "Card has expired"
		}
		cvv, ok := gateway.DigitsOnly(r.CVV)
		if !ok || len(cvv) < 3 || len(cvv) > 4 || len(cvv) != len(r.CVV) {
			errs["cvv"] = "CVV must be 3 or 4 digits"
		}
		if len(errs) == 0 {
			d.CardLast4 = gateway.Last4(number)
			d.CardBrand = gateway.DetectCardBrand(number)
		}

	case MethodNetBanking:
		if strings.TrimSpace(r.BankName) == "" {
			errs["bank_name"] = "Bank name is required"
		}
		account, ok := gateway.DigitsOnly(r.AccountNumber)
		if !ok || account == "" {
			errs["account_number"] = "Account number is required"
		}
		d.BankName = strings.TrimSpace(r.BankName)
		d.BankAccountLast4 = gateway.Last4(account)

	case MethodWallet:

	default:
		errs["method"] = "Invalid payment method. Must be: upi, card, netbanking, or wallet"
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return d, nil
}

// cardExpired treats a card as valid through the last day of its expiry month
func cardExpired(month, year int, now time.Time) bool {
	if year < 100 {
		year += 2000
	}
	endOfMonth := time.Date(year, time.Month(month)+1, 1, 0, 0, 0, 0, time.UTC)
	return !now.UTC().Before(endOfMonth)
}

// HistoryFilter for GET /payments/history
type HistoryFilter struct {
	Status Status
	Page   int
	Limit  int
}

func (f *HistoryFilter) offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// StatusTotal aggregates deposits by status
type StatusTotal struct {
	Status Status `db:"status" json:"status"`
	Count  int    `db:"count" json:"count"`
	Amount int64  `db:"amount" json:"amount"`
}

// MonthTotal aggregates completed deposits per month
type MonthTotal struct {
	Month  string `db:"month" json:"month"` // YYYY-MM
	Count  int    `db:"count" json:"count"`
	Amount int64  `db:"amount" json:"amount"`
}

// Stats for GET /payments/stats
type Stats struct {
	ByStatus       []StatusTotal `json:"by_status"`
	TotalDeposited int64         `json:"total_deposited"`
	Monthly        []MonthTotal  `json:"monthly"`
}
