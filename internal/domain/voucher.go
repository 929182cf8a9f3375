package domain

import "strings"

type VoucherType string

const (
	VoucherFixed   VoucherType = "FIXED"
	VoucherPercent VoucherType = "PERCENT"
)

type Voucher struct {
	ID       string      `json:"id"`
	Code     string      `json:"code"`
	Type     VoucherType `json:"type"`
	Value    float64     `json:"value"`
	IsActive bool        `json:"isActive"`
}

func (v Voucher) Validate() error {
	if strings.TrimSpace(v.Code) == "" {
		return Invalid("code", "required")
	}
	switch v.Type {
	case VoucherFixed, VoucherPercent:
	default:
		return Invalid("type", "must be FIXED or PERCENT")
	}
	if v.Value <= 0 {
		return Invalid("value", "must be positive")
	}
	if v.Type == VoucherPercent && v.Value > 100 {
		return Invalid("value", "percent must not exceed 100")
	}
	return nil
}
