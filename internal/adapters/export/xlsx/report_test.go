package xlsx

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/acsaicontentstudio-collab/digistore-app/internal/domain"
)

func TestWriteReport(t *testing.T) {
	orders := []domain.Order{{
		ID:                "o-1",
		Status:            domain.OrderStatusPaid,
		CustomerName:      "Budi",
		Items:             []domain.OrderItem{{ProductID: "p1", Title: "Ebook", Qty: 2, UnitPrice: 50000, LineTotal: 100000}},
		Subtotal:          100000,
		Total:             100000,
		PaymentMethodName: "BCA",
		ReferralCode:      "BUDI",
		Commission:        10000,
		CreatedAt:         time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC),
	}}
	affiliates := []domain.Affiliate{{ID: "a-1", Name: "Budi", Code: "BUDI", CommissionRate: 10, TotalEarnings: 10000, IsActive: true}}

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, orders, affiliates))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{OrdersSheet, AffiliatesSheet}, f.GetSheetList())

	rows, err := f.GetRows(OrdersSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "ID", rows[0][0])
	assert.Equal(t, "o-1", rows[1][0])
	assert.Equal(t, "2026-01-02 03:04", rows[1][1])
	assert.Equal(t, "2", rows[1][5])
	assert.Equal(t, "10000", rows[1][12])

	rows, err = f.GetRows(AffiliatesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "BUDI", rows[1][2])
	assert.Equal(t, "10000", rows[1][4])
}
