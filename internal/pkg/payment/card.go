package payment

import "strings"

// Card brands
const (
	BrandVisa       = "visa"
	BrandMastercard = "mastercard"
	BrandAmex       = "amex"
	BrandRuPay      = "rupay"
	BrandUnknown    = "unknown"
)

// DigitsOnly strips spaces and dashes. ok is false if anything else remains.
func DigitsOnly(s string) (digits string, ok bool) {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-':
		default:
			return "", false
		}
	}
	return b.String(), true
}

// DetectCardBrand guesses the network from the card prefix
func DetectCardBrand(number string) string {
	switch {
	case strings.HasPrefix(number, "4"):
		return BrandVisa
	case hasPrefixRange(number, 51, 55), hasPrefixRange(number, 22, 27):
		return BrandMastercard
	case strings.HasPrefix(number, "34"), strings.HasPrefix(number, "37"):
		return BrandAmex
	case strings.HasPrefix(number, "60"), strings.HasPrefix(number, "65"),
		strings.HasPrefix(number, "81"), strings.HasPrefix(number, "82"), strings.HasPrefix(number, "508"):
		return BrandRuPay
	default:
		return BrandUnknown
	}
}

func hasPrefixRange(number string, lo, hi int) bool {
	if len(number) < 2 {
		return false
	}
	p := int(number[0]-'0')*10 + int(number[1]-'0')
	return p >= lo && p <= hi
}

// Last4 returns the last four characters of s
func Last4(s string) string {
	if len(s) <= 4 {
		return s
	}
	return s[len(s)-4:]
}
