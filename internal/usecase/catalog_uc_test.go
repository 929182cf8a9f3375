package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/acsaicontentstudio-collab/digistore-app/internal/domain"
)

func TestProductCRUD(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestState(t)
	uc := &CatalogUC{State: st}

	p, err := uc.UpsertProduct(ctx, domain.Product{Name: "Kelas Canva", Category: "course", Price: 350000})
	require.NoError(t, err)
	assert.True(t, domain.IsCanonicalID(p.ID))
	assert.Len(t, uc.ListProducts(), 3)

	got, err := uc.GetProduct("kelas-canva")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	p.Price = 300000
	_, err = uc.UpsertProduct(ctx, p)
	require.NoError(t, err)
	got, err = uc.GetProduct(p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(300000), got.Price)

	require.NoError(t, uc.DeleteProduct(ctx, p.ID))
	assert.ErrorIs(t, uc.DeleteProduct(ctx, p.ID), domain.ErrNotFound)
	_, err = uc.GetProduct(p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductValidationDoesNotMutate(t *testing.T) {
	st, kv := newTestState(t)
	uc := &CatalogUC{State: st}

	_, err := uc.UpsertProduct(context.Background(), domain.Product{Name: "Bad", Price: 1000, DiscountPrice: i64(2000)})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Len(t, uc.ListProducts(), 2)
	assert.Zero(t, kv.writes)
}

func TestVoucherCodesAreCanonicalAndUnique(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestState(t)
	uc := &CatalogUC{State: st}

	v, err := uc.UpsertVoucher(ctx, domain.Voucher{Code: " promo ", Type: domain.VoucherFixed, Value: 1000, IsActive: true})
	require.NoError(t, err)
	assert.Equal(t, "PROMO", v.Code)

	_, err = uc.UpsertVoucher(ctx, domain.Voucher{Code: "diskon10", Type: domain.VoucherPercent, Value: 5, IsActive: true})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.UpsertVoucher(ctx, domain.Voucher{Code: "X", Type: domain.VoucherPercent, Value: 120, IsActive: true})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAffiliateLogin(t *testing.T) {
	st, _ := newTestState(t)
	uc := &CatalogUC{State: st}

	a, err := uc.AffiliateLogin("partner1", "pw")
	require.NoError(t, err)
	assert.Equal(t, partnerID, a.ID)

	_, err = uc.AffiliateLogin("PARTNER1", "wrong")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAffiliateCodesUnique(t *testing.T) {
	st, _ := newTestState(t)
	uc := &CatalogUC{State: st}

	_, err := uc.UpsertAffiliate(context.Background(), domain.Affiliate{Name: "Dup", Code: "other", Password: "x", CommissionRate: 5, IsActive: true})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUpdateSettingsKeepsRemoteCredentials(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestState(t)
	uc := &CatalogUC{State: st}

	changed, err := uc.UpdateSettings(ctx, domain.StoreSettings{StoreName: "Toko Baru"})
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, "postgres://local", uc.Settings().RemoteDSN)
	assert.Equal(t, "Toko Baru", uc.Settings().StoreName)

	changed, err = uc.UpdateSettings(ctx, domain.StoreSettings{StoreName: "Toko Baru", RemoteDSN: "postgres://other"})
	require.NoError(t, err)
	assert.True(t, changed)

	_, err = uc.UpdateSettings(ctx, domain.StoreSettings{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestListPaymentMethodsActiveOnly(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestState(t)
	uc := &CatalogUC{State: st}

	m := st.PaymentMethods()[1]
	m.IsActive = false
	_, err := uc.UpsertPaymentMethod(ctx, m)
	require.NoError(t, err)

	assert.Len(t, uc.ListPaymentMethods(false), 2)
	active := uc.ListPaymentMethods(true)
	require.Len(t, active, 1)
	assert.Equal(t, bankID, active[0].ID)
}

func TestConcurrentUpsertsKeepEveryProduct(t *testing.T) {
	ctx := context.Background()
	st, kv := newTestState(t)
	kv.delay = 2 * time.Millisecond
	uc := &CatalogUC{State: st}

	var g errgroup.Group
	for i := 0; i < 20; i++ {
		i := i
		g.Go(func() error {
			_, err := uc.UpsertProduct(ctx, domain.Product{Name: fmt.Sprintf("Paket %d", i), Category: "bundle", Price: 10000})
			return err
		})
	}
	require.NoError(t, g.Wait())
	assert.Len(t, uc.ListProducts(), 22)

	reloaded, err := LoadState(ctx, kv, Seed{})
	require.NoError(t, err)
	assert.Len(t, reloaded.Products(), 22)
}

func TestConcurrentVoucherCodeClaimedOnce(t *testing.T) {
	ctx := context.Background()
	st, kv := newTestState(t)
	kv.delay = 2 * time.Millisecond
	uc := &CatalogUC{State: st}

	var g errgroup.Group
	errs := make([]error, 10)
	for i := range errs {
		i := i
		g.Go(func() error {
			_, errs[i] = uc.UpsertVoucher(ctx, domain.Voucher{Code: "FLASH", Type: domain.VoucherFixed, Value: 1000, IsActive: true})
			return nil
		})
	}
	require.NoError(t, g.Wait())

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
		} else {
			assert.ErrorIs(t, err, domain.ErrValidation)
		}
	}
	assert.Equal(t, 1, ok)
	count := 0
	for _, v := range uc.ListVouchers() {
		if v.Code == "FLASH" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}
