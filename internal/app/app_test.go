package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acsaicontentstudio-collab/digistore-app/internal/config"
	"github.com/acsaicontentstudio-collab/digistore-app/internal/domain"
	"github.com/acsaicontentstudio-collab/digistore-app/internal/usecase"
)

// emptyRemote is a reachable remote store with no settings row and no rows.
type emptyRemote struct{ closed atomic.Bool }

func (*emptyRemote) ListProducts(context.Context) ([]domain.ProductRow, error) { return nil, nil }
func (*emptyRemote) ListVouchers(context.Context) ([]domain.VoucherRow, error) { return nil, nil }
func (*emptyRemote) ListAffiliates(context.Context) ([]domain.AffiliateRow, error) {
	return nil, nil
}
func (*emptyRemote) GetSettings(context.Context) (*domain.SettingsRow, error) {
	return nil, domain.ErrNotFound
}
func (*emptyRemote) ListPaymentMethods(context.Context) ([]domain.PaymentMethodRow, error) {
	return nil, nil
}
func (*emptyRemote) UpsertProducts(context.Context, []domain.ProductRow) error { return nil }
func (*emptyRemote) UpsertVouchers(context.Context, []domain.VoucherRow) error { return nil }
func (*emptyRemote) UpsertAffiliates(context.Context, []domain.AffiliateRow) error { return nil }
func (*emptyRemote) UpsertSettings(context.Context, domain.SettingsRow) error { return nil }
func (*emptyRemote) UpsertPaymentMethods(context.Context, []domain.PaymentMethodRow) error {
	return nil
}
func (r *emptyRemote) Close() error {
	r.closed.Store(true)
	return nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Port:             "0",
		StoreBackend:     "file",
		StorageDir:       t.TempDir(),
		SessionKey:       "k",
		AdminPassword:    "admin",
		CommissionPolicy: "checkout",
		PublicBaseURL:    "http://localhost",
		TripayBaseURL:    "http://127.0.0.1:1",
	}
}

func TestDemoSeedIsValid(t *testing.T) {
	seed := DemoSeed()
	for _, p := range seed.Products {
		assert.NoError(t, p.Validate(), p.Name)
		assert.True(t, domain.IsCanonicalID(p.ID))
	}
	for _, v := range seed.Vouchers {
		assert.NoError(t, v.Validate(), v.Code)
		assert.True(t, domain.IsCanonicalID(v.ID))
	}
	for _, a := range seed.Affiliates {
		assert.NoError(t, a.Validate(), a.Code)
	}
	for _, m := range seed.PaymentMethods {
		assert.NoError(t, m.Validate(), m.Name)
	}
	assert.Equal(t, seed.Products[0].ID, DemoSeed().Products[0].ID)
}

func TestNewAppServesLocalData(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a, err := NewApp(ctx, testConfig(t), Deps{})
	require.NoError(t, err)
	defer a.Close()
	require.NoError(t, a.Start())

	rec := httptest.NewRecorder()
	a.HTTPHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "DISCONNECTED")
	assert.Equal(t, usecase.SyncDisconnected, a.Sync.Status().Status)
	assert.NotEmpty(t, a.State.Products())
}

func TestStartConnectsWithConfiguredDSN(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cfg := testConfig(t)
	cfg.RemoteDSN = "postgres://remote"
	remote := &emptyRemote{}
	var dialed atomic.Value
	a, err := NewApp(ctx, cfg, Deps{Dial: func(_ context.Context, dsn string) (domain.RemoteStore, error) {
		dialed.Store(dsn)
		return remote, nil
	}})
	require.NoError(t, err)
	require.NoError(t, a.Start())

	require.Eventually(t, func() bool {
		return a.Sync.Status().Status == usecase.SyncSynced
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "postgres://remote", dialed.Load())
	assert.Equal(t, "postgres://remote", a.Catalog.Settings().RemoteDSN)
	assert.Empty(t, a.State.Products(), "an empty remote catalog replaces the seed")

	a.Close()
	assert.True(t, remote.closed.Load())
	assert.Equal(t, usecase.SyncDisconnected, a.Sync.Status().Status)
}

func TestApplyConfigReconnects(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cfg := testConfig(t)
	var dials atomic.Int32
	a, err := NewApp(ctx, cfg, Deps{Dial: func(context.Context, string) (domain.RemoteStore, error) {
		dials.Add(1)
		return &emptyRemote{}, nil
	}})
	require.NoError(t, err)
	defer a.Close()

	next := *cfg
	a.ApplyConfig(cfg, &next)
	assert.Zero(t, dials.Load())

	next.RemoteDSN = "postgres://new"
	a.ApplyConfig(cfg, &next)
	require.Eventually(t, func() bool { return a.Sync.Connected() }, 2*time.Second, 10*time.Millisecond)
	assert.EqualValues(t, 1, dials.Load())
}

func TestUnknownBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.StoreBackend = "etcd"
	_, err := NewApp(context.Background(), cfg, Deps{})
	require.Error(t, err)
}
