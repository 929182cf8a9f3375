package usecase

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/acsaicontentstudio-collab/digistore-app/internal/domain"
)

var (
	hundred  = decimal.NewFromInt(100)
	maxTotal = decimal.NewFromInt(math.MaxInt64)
)

// Quote is the priced view of a cart. VoucherInvalid is set when a code was
// supplied but matched no active voucher; the quote is still usable without it.
type Quote struct {
	Subtotal       int64           `json:"subtotal"`
	Discount       int64           `json:"discount"`
	Total          int64           `json:"total"`
	Voucher        *domain.Voucher `json:"voucher,omitempty"`
	VoucherInvalid bool            `json:"voucherInvalid"`
}

// ComputeCheckout prices a cart. It has no side effects.
func ComputeCheckout(items []domain.CartItem, voucherCode string, vouchers []domain.Voucher) Quote {
	var q Quote
	q.Subtotal, _ = Subtotal(items)

	code := domain.CanonicalCode(voucherCode)
	if code != "" {
		if v, ok := FindVoucher(code, vouchers); ok {
			q.Voucher = &v
			q.Discount = VoucherDiscount(q.Subtotal, v)
		} else {
			q.VoucherInvalid = true
		}
	}

	q.Total = q.Subtotal - q.Discount
	if q.Total < 0 {
		q.Total = 0
	}
	return q
}

// Subtotal sums the line totals of items with a positive quantity. When the
// sum does not fit in an int64 it returns ErrValidation with the largest
// representable amount.
func Subtotal(items []domain.CartItem) (int64, error) {
	sum := decimal.Zero
	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		sum = sum.Add(decimal.NewFromInt(it.Product.EffectivePrice()).Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	if sum.GreaterThan(maxTotal) {
		return math.MaxInt64, domain.Invalid("items", "order amount is too large")
	}
	return sum.IntPart(), nil
}

// FindVoucher matches the canonical code against active vouchers only.
func FindVoucher(code string, vouchers []domain.Voucher) (domain.Voucher, bool) {
	code = domain.CanonicalCode(code)
	if code == "" {
		return domain.Voucher{}, false
	}
	for _, v := range vouchers {
		if v.IsActive && domain.CanonicalCode(v.Code) == code {
			return v, true
		}
	}
	return domain.Voucher{}, false
}

func VoucherDiscount(subtotal int64, v domain.Voucher) int64 {
	value := decimal.NewFromFloat(v.Value)
	switch v.Type {
	case domain.VoucherPercent:
		return PercentOf(subtotal, value)
	case domain.VoucherFixed:
		return value.Round(0).IntPart()
	}
	return 0
}

// PercentOf returns amount*pct/100 rounded half-up to a whole unit.
// Amounts and percentages are non-negative, where decimal's half-away-from-zero
// rounding is half-up.
func PercentOf(amount int64, pct decimal.Decimal) int64 {
	return decimal.NewFromInt(amount).Mul(pct).Div(hundred).Round(0).IntPart()
}
