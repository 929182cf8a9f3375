package domain

import "strings"

// CanonicalCode is the form used to compare voucher and referral codes.
func CanonicalCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
