package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/acsaicontentstudio-collab/digistore-app/internal/domain"
)

type VoucherRepo struct{ db *gorm.DB }

func NewVoucherRepo(db *gorm.DB) *VoucherRepo { return &VoucherRepo{db: db} }

func (r *VoucherRepo) ListVouchers(ctx context.Context) ([]domain.VoucherRow, error) {
	return listAll[domain.VoucherRow](ctx, r.db)
}

func (r *VoucherRepo) UpsertVouchers(ctx context.Context, rows []domain.VoucherRow) error {
	return upsertOnID(ctx, r.db, rows)
}
