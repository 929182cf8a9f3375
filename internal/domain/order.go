package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order is written once at checkout. Items are snapshots, not catalog references.
type Order struct {
	ID                 string      `json:"id"`
	Status             OrderStatus `json:"status"`
	Items              []OrderItem `json:"items"`
	CustomerName       string      `json:"customerName,omitempty"`
	CustomerContact    string      `json:"customerContact,omitempty"`
	Subtotal           int64       `json:"subtotal"`
	DiscountAmount     int64       `json:"discountAmount"`
	Total              int64       `json:"total"`
	PaymentMethodID    string      `json:"paymentMethodId"`
	PaymentMethodName  string      `json:"paymentMethodName"`
	VoucherCode        string      `json:"voucherCode,omitempty"`
	ReferralCode       string      `json:"referralCode,omitempty"`
	AffiliateID        string      `json:"affiliateId,omitempty"`
	Commission         int64       `json:"commission"`
	CommissionCredited bool        `json:"commissionCredited"`
	PaymentReference   string      `json:"paymentReference,omitempty"`
	CreatedAt          time.Time   `json:"createdAt"`
	UpdatedAt          time.Time   `json:"updatedAt"`
}

type OrderItem struct {
	ProductID string `json:"productId"`
	Title     string `json:"title"`
	Qty       int    `json:"qty"`
	UnitPrice int64  `json:"unitPrice"`
	LineTotal int64  `json:"lineTotal"`
	FileURL   string `json:"fileUrl,omitempty"`
}
