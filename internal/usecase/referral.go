package usecase

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/acsaicontentstudio-collab/digistore-app/internal/domain"
)

type ReferralResult struct {
	Affiliates    []domain.Affiliate
	Commission    int64
	AffiliateID   string
	AffiliateName string
	Applied       bool
}

// ApplyReferral credits the commission for subtotal to the affiliate owning code.
// The returned collection is a new slice; the input is never modified. When no
// active affiliate matches, or the commission is not positive, the input slice
// is returned as is.
func ApplyReferral(subtotal int64, code string, affiliates []domain.Affiliate) ReferralResult {
	res := ReferralResult{Affiliates: affiliates}
	idx := FindAffiliate(code, affiliates)
	if idx < 0 {
		return res
	}
	a := affiliates[idx]
	commission := Commission(subtotal, a)
	if commission <= 0 {
		return res
	}

	next := slices.Clone(affiliates)
	next[idx].TotalEarnings += commission

	res.Affiliates = next
	res.Commission = commission
	res.AffiliateID = a.ID
	res.AffiliateName = a.Name
	res.Applied = true
	return res
}

// FindAffiliate returns the index of the active affiliate whose canonical code
// matches, or -1.
func FindAffiliate(code string, affiliates []domain.Affiliate) int {
	code = domain.CanonicalCode(code)
	if code == "" {
		return -1
	}
	for i, a := range affiliates {
		if a.IsActive && domain.CanonicalCode(a.Code) == code {
			return i
		}
	}
	return -1
}

func Commission(subtotal int64, a domain.Affiliate) int64 {
	return PercentOf(subtotal, decimal.NewFromFloat(a.CommissionRate))
}

// CreditAffiliate adds amount to the affiliate with the given id, returning a new slice.
func CreditAffiliate(affiliates []domain.Affiliate, id string, amount int64) ([]domain.Affiliate, bool) {
	for i := range affiliates {
		if affiliates[i].ID == id {
			next := slices.Clone(affiliates)
			next[i].TotalEarnings += amount
			return next, true
		}
	}
	return affiliates, false
}
