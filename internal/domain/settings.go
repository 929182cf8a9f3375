package domain

import "strings"

type StoreSettings struct {
	StoreName          string `json:"storeName"`
	Address            string `json:"address"`
	WhatsApp           string `json:"whatsapp"`
	Email              string `json:"email"`
	Description        string `json:"description"`
	LogoURL            string `json:"logoUrl"`
	TripayAPIKey       string `json:"tripayApiKey"`
	TripayPrivateKey   string `json:"tripayPrivateKey"`
	TripayMerchantCode string `json:"tripayMerchantCode"`

	// RemoteDSN is held locally only; the remote settings row never carries it.
	RemoteDSN string `json:"remoteDsn,omitempty"`
}

// Public strips every credential before the settings leave the back office.
func (s StoreSettings) Public() StoreSettings {
	s.TripayAPIKey = ""
	s.TripayPrivateKey = ""
	s.TripayMerchantCode = ""
	s.RemoteDSN = ""
	return s
}

type PaymentType string

const (
	PaymentBank    PaymentType = "BANK"
	PaymentEWallet PaymentType = "EWALLET"
	PaymentQRIS    PaymentType = "QRIS"
	PaymentTripay  PaymentType = "TRIPAY"
)

type PaymentMethod struct {
	ID            string      `json:"id"`
	Type          PaymentType `json:"type"`
	Name          string      `json:"name"`
	AccountNumber string      `json:"accountNumber"`
	AccountName   string      `json:"accountName"`
	Description   string      `json:"description"`
	Logo          string      `json:"logo"`
	IsActive      bool        `json:"isActive"`
}

// Automated reports whether checkout hands off to the payment gateway instead of chat.
func (m PaymentMethod) Automated() bool {
	return m.Type == PaymentTripay
}

func (m PaymentMethod) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return Invalid("name", "required")
	}
	switch m.Type {
	case PaymentBank, PaymentEWallet, PaymentQRIS, PaymentTripay:
	default:
		return Invalid("type", "unknown payment type")
	}
	return nil
}
