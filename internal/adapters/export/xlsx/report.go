package xlsx

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/acsaicontentstudio-collab/digistore-app/internal/domain"
)

const (
	OrdersSheet     = "Orders"
	AffiliatesSheet = "Affiliates"
)

var (
	orderHeader     = []any{"ID", "Date", "Status", "Customer", "Contact", "Items", "Subtotal", "Discount", "Total", "Payment", "Voucher", "Referral", "Commission"}
	affiliateHeader = []any{"ID", "Name", "Code", "Commission %", "Total Earnings", "Bank Details", "Active"}
)

// WriteReport writes an admin workbook with one sheet of orders and one of
// affiliate earnings.
func WriteReport(w io.Writer, orders []domain.Order, affiliates []domain.Affiliate) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", OrdersSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(AffiliatesSheet); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	if err := writeRow(f, OrdersSheet, 1, orderHeader); err != nil {
		return err
	}
	for i, o := range orders {
		items := 0
		for _, it := range o.Items {
			items += it.Qty
		}
		row := []any{
			o.ID, o.CreatedAt.Format("2006-01-02 15:04"), string(o.Status), o.CustomerName, o.CustomerContact, items,
			o.Subtotal, o.DiscountAmount, o.Total, o.PaymentMethodName, o.VoucherCode, o.ReferralCode, o.Commission,
		}
		if err := writeRow(f, OrdersSheet, i+2, row); err != nil {
			return err
		}
	}

	if err := writeRow(f, AffiliatesSheet, 1, affiliateHeader); err != nil {
		return err
	}
	for i, a := range affiliates {
		row := []any{a.ID, a.Name, a.Code, a.CommissionRate, a.TotalEarnings, a.BankDetails, a.IsActive}
		if err := writeRow(f, AffiliatesSheet, i+2, row); err != nil {
			return err
		}
	}

	for _, sheet := range []string{OrdersSheet, AffiliatesSheet} {
		if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
			return err
		}
	}
	_, err = f.WriteTo(w)
	return err
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("%s row %d: %w", sheet, row, err)
	}
	return nil
}
