package usecase

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/acsaicontentstudio-collab/digistore-app/internal/domain"
)

// FormatIDR renders an amount in rupiah with dot thousand separators, e.g. "Rp 249.000".
func FormatIDR(v int64) string {
	s := fmt.Sprintf("%d", v)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	n := len(s)
	if n > 3 {
		rem := n % 3
		if rem == 0 {
			rem = 3
		}
		out := s[:rem]
		for i := rem; i < n; i += 3 {
			out += "." + s[i:i+3]
		}
		s = out
	}
	if neg {
		return "-Rp " + s
	}
	return "Rp " + s
}

// OrderMessage is the chat summary sent to the store for manually paid orders.
func OrderMessage(o domain.Order, s domain.StoreSettings) string {
	var b strings.Builder
	store := strings.TrimSpace(s.StoreName)
	if store == "" {
		store = "Admin"
	}
	fmt.Fprintf(&b, "Halo %s, saya ingin memesan:\n\n", store)
	for i, it := range o.Items {
		fmt.Fprintf(&b, "%d. %s x%d = %s\n", i+1, it.Title, it.Qty, FormatIDR(it.LineTotal))
	}
	fmt.Fprintf(&b, "\nSubtotal: %s\n", FormatIDR(o.Subtotal))
	if o.VoucherCode != "" {
		fmt.Fprintf(&b, "Voucher (%s): -%s\n", o.VoucherCode, FormatIDR(o.DiscountAmount))
	}
	fmt.Fprintf(&b, "Total: %s\n\n", FormatIDR(o.Total))
	fmt.Fprintf(&b, "Metode Pembayaran: %s\n", o.PaymentMethodName)
	if o.ReferralCode != "" {
		fmt.Fprintf(&b, "Kode Referral: %s\n", o.ReferralCode)
	}
	fmt.Fprintf(&b, "ID Pesanan: %s", o.ID)
	return b.String()
}

// WhatsAppLink builds a wa.me link; local numbers starting with 0 get the 62 prefix.
func WhatsAppLink(number, text string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
	if strings.HasPrefix(digits, "0") {
		digits = "62" + digits[1:]
	}
	q := strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
	return "https://wa.me/" + digits + "?text=" + q
}
