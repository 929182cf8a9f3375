package domain

import "context"

// Collection keys of the persistent store.
const (
	CollectionSettings       = "settings"
	CollectionProducts       = "products"
	CollectionPaymentMethods = "payment_methods"
	CollectionVouchers       = "vouchers"
	CollectionAffiliates     = "affiliates"
	CollectionOrders         = "orders"
)

// KVStore is the durable local cache: one JSON document per collection key.
type KVStore interface {
	Read(ctx context.Context, key string) ([]byte, bool, error)
	Write(ctx context.Context, key string, data []byte) error
}

// RemoteStore is the optional managed database. Implementations return rows as stored;
// callers validate them before use.
type RemoteStore interface {
	ListProducts(ctx context.Context) ([]ProductRow, error)
	ListVouchers(ctx context.Context) ([]VoucherRow, error)
	ListAffiliates(ctx context.Context) ([]AffiliateRow, error)
	GetSettings(ctx context.Context) (*SettingsRow, error)
	ListPaymentMethods(ctx context.Context) ([]PaymentMethodRow, error)

	UpsertProducts(ctx context.Context, rows []ProductRow) error
	UpsertVouchers(ctx context.Context, rows []VoucherRow) error
	UpsertAffiliates(ctx context.Context, rows []AffiliateRow) error
	UpsertSettings(ctx context.Context, row SettingsRow) error
	UpsertPaymentMethods(ctx context.Context, rows []PaymentMethodRow) error

	Close() error
}

// RemoteDialer builds a fresh RemoteStore for a set of credentials.
type RemoteDialer func(ctx context.Context, dsn string) (RemoteStore, error)

type PaymentRedirect struct {
	URL       string
	Reference string
}

type PaymentGateway interface {
	CreateTransaction(ctx context.Context, o *Order, method PaymentMethod, s StoreSettings) (*PaymentRedirect, error)
}
