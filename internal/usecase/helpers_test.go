package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/acsaicontentstudio-collab/digistore-app/internal/domain"
)

type memKV struct {
	mu     sync.Mutex
	data   map[string][]byte
	failOn map[string]error
	writes int
	delay  time.Duration
}

func newMemKV() *memKV {
	return &memKV{data: map[string][]byte{}, failOn: map[string]error{}}
}

func (m *memKV) Read(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[key]
	return b, ok, nil
}

func (m *memKV) Write(_ context.Context, key string, data []byte) error {
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failOn[key]; err != nil {
		return err
	}
	m.writes++
	m.data[key] = append([]byte(nil), data...)
	return nil
}

func (m *memKV) fail(key string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failOn[key] = err
}

func i64(v int64) *int64 { return &v }

const (
	ebookID    = "11111111-1111-4111-8111-111111111111"
	templateID = "22222222-2222-4222-8222-222222222222"
	partnerID  = "33333333-3333-4333-8333-333333333333"
	otherID    = "44444444-4444-4444-8444-444444444444"
	bankID     = "55555555-5555-4555-8555-555555555555"
	gatewayID  = "66666666-6666-4666-8666-666666666666"
)

// testSeed carries the catalog of the worked checkout example.
func testSeed() Seed {
	return Seed{
		Settings: domain.StoreSettings{StoreName: "Digistore", WhatsApp: "081234567890", RemoteDSN: "postgres://local"},
		Products: []domain.Product{
			{ID: ebookID, Name: "E-book", Category: "ebook", Price: 150000, DiscountPrice: i64(99000)},
			{ID: templateID, Name: "Template", Category: "template", Price: 75000},
		},
		PaymentMethods: []domain.PaymentMethod{
			{ID: bankID, Type: domain.PaymentBank, Name: "Transfer BCA", IsActive: true},
			{ID: gatewayID, Type: domain.PaymentTripay, Name: "QRIS", IsActive: true},
		},
		Vouchers: []domain.Voucher{
			{ID: "v1", Code: "DISKON10", Type: domain.VoucherPercent, Value: 10, IsActive: true},
			{ID: "v2", Code: "HEMAT20K", Type: domain.VoucherFixed, Value: 20000, IsActive: true},
			{ID: "v3", Code: "OLD", Type: domain.VoucherFixed, Value: 5000, IsActive: false},
		},
		Affiliates: []domain.Affiliate{
			{ID: partnerID, Name: "Partner", Code: "PARTNER1", Password: "pw", CommissionRate: 10, TotalEarnings: 150000, IsActive: true},
			{ID: otherID, Name: "Other", Code: "OTHER", Password: "pw", CommissionRate: 5, TotalEarnings: 1000, IsActive: true},
		},
	}
}

func newTestState(t *testing.T) (*State, *memKV) {
	t.Helper()
	kv := newMemKV()
	st, err := LoadState(context.Background(), kv, testSeed())
	require.NoError(t, err)
	return st, kv
}

func exampleCart(st *State) []domain.CartItem {
	p := st.Products()
	return []domain.CartItem{{Product: p[0], Quantity: 1}, {Product: p[1], Quantity: 2}}
}
