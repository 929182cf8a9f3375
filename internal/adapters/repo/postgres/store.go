package postgres

import (
	"context"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/acsaicontentstudio-collab/digistore-app/internal/domain"
)

const upsertBatch = 200

// Store is the remote copy of the catalog. Each collection lives in its own repo;
// Store bundles them behind domain.RemoteStore.
type Store struct {
	*ProductRepo
	*VoucherRepo
	*AffiliateRepo
	*SettingsRepo
	*PaymentMethodRepo

	db *gorm.DB
}

var _ domain.RemoteStore = (*Store)(nil)

func NewStore(db *gorm.DB) *Store {
	return &Store{
		ProductRepo:       NewProductRepo(db),
		VoucherRepo:       NewVoucherRepo(db),
		AffiliateRepo:     NewAffiliateRepo(db),
		SettingsRepo:      NewSettingsRepo(db),
		PaymentMethodRepo: NewPaymentMethodRepo(db),
		db:                db,
	}
}

// Dial opens a new connection pool for dsn and checks that it answers.
func Dial(ctx context.Context, dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return NewStore(db), nil
}

// Dialer adapts Dial to domain.RemoteDialer. With migrate set the row tables
// are created or extended right after connecting.
func Dialer(migrate bool) domain.RemoteDialer {
	return func(ctx context.Context, dsn string) (domain.RemoteStore, error) {
		s, err := Dial(ctx, dsn)
		if err != nil {
			return nil, err
		}
		if migrate {
			if err := s.EnsureSchema(ctx); err != nil {
				_ = s.Close()
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}
		return s, nil
	}
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(
		&domain.ProductRow{}, &domain.VoucherRow{}, &domain.AffiliateRow{}, &domain.SettingsRow{}, &domain.PaymentMethodRow{},
	)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// upsertOnID inserts rows, overwriting every column of rows whose id already exists.
func upsertOnID[R any](ctx context.Context, db *gorm.DB, rows []R) error {
	if len(rows) == 0 {
		return nil
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		CreateInBatches(&rows, upsertBatch).Error
}

func listAll[R any](ctx context.Context, db *gorm.DB) ([]R, error) {
	var list []R
	if err := db.WithContext(ctx).Order("id asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
