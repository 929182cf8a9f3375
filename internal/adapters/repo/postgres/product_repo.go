package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/acsaicontentstudio-collab/digistore-app/internal/domain"
)

type ProductRepo struct{ db *gorm.DB }

func NewProductRepo(db *gorm.DB) *ProductRepo { return &ProductRepo{db: db} }

func (r *ProductRepo) ListProducts(ctx context.Context) ([]domain.ProductRow, error) {
	return listAll[domain.ProductRow](ctx, r.db)
}

func (r *ProductRepo) UpsertProducts(ctx context.Context, rows []domain.ProductRow) error {
	return upsertOnID(ctx, r.db, rows)
}
