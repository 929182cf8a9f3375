package domain

import "strings"

// Affiliate doubles as a login identity (Code + Password) and a referral token.
// Password is stored in plain text; the login is an equality check only.
type Affiliate struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Code           string  `json:"code"`
	Password       string  `json:"password"`
	CommissionRate float64 `json:"commissionRate"`
	TotalEarnings  int64   `json:"totalEarnings"`
	BankDetails    string  `json:"bankDetails"`
	IsActive       bool    `json:"isActive"`
}

func (a Affiliate) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return Invalid("name", "required")
	}
	if strings.TrimSpace(a.Code) == "" {
		return Invalid("code", "required")
	}
	if a.Password == "" {
		return Invalid("password", "required")
	}
	if a.CommissionRate < 0 || a.CommissionRate > 100 {
		return Invalid("commissionRate", "must be between 0 and 100")
	}
	if a.TotalEarnings < 0 {
		return Invalid("totalEarnings", "must not be negative")
	}
	return nil
}
