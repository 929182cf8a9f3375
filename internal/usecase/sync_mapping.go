package usecase

import (
	"fmt"
	"strings"

	"github.com/acsaicontentstudio-collab/digistore-app/internal/domain"
)

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func ptr[T any](v T) *T { return &v }

func optStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Rows read from the remote store are checked before they reach local state.
// A row that fails the checks is reported and left out of the pulled collection.

func productFromRow(r domain.ProductRow) (domain.Product, error) {
	p := domain.Product{
		ID:            strings.TrimSpace(r.ID),
		Name:          r.Name,
		Category:      r.Category,
		Description:   str(r.Description),
		Price:         r.Price,
		DiscountPrice: r.DiscountPrice,
		Image:         str(r.Image),
		FileURL:       str(r.FileURL),
		IsPopular:     r.IsPopular != nil && *r.IsPopular,
	}
	if p.ID == "" {
		return p, domain.Invalid("id", "required")
	}
	if p.DiscountPrice != nil && *p.DiscountPrice == 0 {
		p.DiscountPrice = nil
	}
	return p, p.Validate()
}

func productToRow(p domain.Product) domain.ProductRow {
	return domain.ProductRow{
		ID:            p.ID,
		Name:          p.Name,
		Category:      p.Category,
		Description:   optStr(p.Description),
		Price:         p.Price,
		DiscountPrice: p.DiscountPrice,
		Image:         optStr(p.Image),
		FileURL:       optStr(p.FileURL),
		IsPopular:     ptr(p.IsPopular),
	}
}

func voucherFromRow(r domain.VoucherRow) (domain.Voucher, error) {
	v := domain.Voucher{
		ID:       strings.TrimSpace(r.ID),
		Code:     domain.CanonicalCode(r.Code),
		Type:     domain.VoucherType(strings.ToUpper(strings.TrimSpace(r.Type))),
		Value:    r.Value,
		IsActive: r.IsActive == nil || *r.IsActive,
	}
	if v.ID == "" {
		return v, domain.Invalid("id", "required")
	}
	return v, v.Validate()
}

func voucherToRow(v domain.Voucher) domain.VoucherRow {
	return domain.VoucherRow{
		ID:       v.ID,
		Code:     domain.CanonicalCode(v.Code),
		Type:     string(v.Type),
		Value:    v.Value,
		IsActive: ptr(v.IsActive),
	}
}

func affiliateFromRow(r domain.AffiliateRow) (domain.Affiliate, error) {
	a := domain.Affiliate{
		ID:             strings.TrimSpace(r.ID),
		Name:           r.Name,
		Code:           domain.CanonicalCode(r.Code),
		Password:       r.Password,
		CommissionRate: r.CommissionRate,
		TotalEarnings:  r.TotalEarnings,
		BankDetails:    str(r.BankDetails),
		IsActive:       r.IsActive == nil || *r.IsActive,
	}
	if a.ID == "" {
		return a, domain.Invalid("id", "required")
	}
	return a, a.Validate()
}

func affiliateToRow(a domain.Affiliate) domain.AffiliateRow {
	return domain.AffiliateRow{
		ID:             a.ID,
		Name:           a.Name,
		Code:           domain.CanonicalCode(a.Code),
		Password:       a.Password,
		CommissionRate: a.CommissionRate,
		TotalEarnings:  a.TotalEarnings,
		BankDetails:    optStr(a.BankDetails),
		IsActive:       ptr(a.IsActive),
	}
}

func paymentMethodFromRow(r domain.PaymentMethodRow) (domain.PaymentMethod, error) {
	m := domain.PaymentMethod{
		ID:            strings.TrimSpace(r.ID),
		Type:          domain.PaymentType(strings.ToUpper(strings.TrimSpace(r.Type))),
		Name:          r.Name,
		AccountNumber: str(r.AccountNumber),
		AccountName:   str(r.AccountName),
		Description:   str(r.Description),
		Logo:          str(r.Logo),
		IsActive:      r.IsActive == nil || *r.IsActive,
	}
	if m.ID == "" {
		return m, domain.Invalid("id", "required")
	}
	return m, m.Validate()
}

func paymentMethodToRow(m domain.PaymentMethod) domain.PaymentMethodRow {
	return domain.PaymentMethodRow{
		ID:            m.ID,
		Type:          string(m.Type),
		Name:          m.Name,
		AccountNumber: optStr(m.AccountNumber),
		AccountName:   optStr(m.AccountName),
		Description:   optStr(m.Description),
		Logo:          optStr(m.Logo),
		IsActive:      ptr(m.IsActive),
	}
}

// mergeSettings overwrites every field from the remote row and keeps the local
// remote credentials, which the row does not carry.
func mergeSettings(local domain.StoreSettings, r domain.SettingsRow) domain.StoreSettings {
	return domain.StoreSettings{
		StoreName:          r.StoreName,
		Address:            str(r.Address),
		WhatsApp:           str(r.WhatsApp),
		Email:              str(r.Email),
		Description:        str(r.Description),
		LogoURL:            str(r.LogoURL),
		TripayAPIKey:       str(r.TripayAPIKey),
		TripayPrivateKey:   str(r.TripayPrivateKey),
		TripayMerchantCode: str(r.TripayMerchantCode),
		RemoteDSN:          local.RemoteDSN,
	}
}

func settingsToRow(s domain.StoreSettings) domain.SettingsRow {
	return domain.SettingsRow{
		ID:                 domain.SettingsRowID,
		StoreName:          s.StoreName,
		Address:            optStr(s.Address),
		WhatsApp:           optStr(s.WhatsApp),
		Email:              optStr(s.Email),
		Description:        optStr(s.Description),
		LogoURL:            optStr(s.LogoURL),
		TripayAPIKey:       optStr(s.TripayAPIKey),
		TripayPrivateKey:   optStr(s.TripayPrivateKey),
		TripayMerchantCode: optStr(s.TripayMerchantCode),
	}
}

// Quarantined describes a remote row that failed validation during a pull.
type Quarantined struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
	Reason     string `json:"reason"`
}

func parseRows[R, T any](collection string, rows []R, parse func(R) (T, error), id func(R) string) ([]T, []Quarantined) {
	out := make([]T, 0, len(rows))
	var bad []Quarantined
	for _, r := range rows {
		v, err := parse(r)
		if err != nil {
			bad = append(bad, Quarantined{Collection: collection, ID: id(r), Reason: fmt.Sprint(err)})
			continue
		}
		out = append(out, v)
	}
	return out, bad
}
