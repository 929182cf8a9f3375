package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/acsaicontentstudio-collab/digistore-app/internal/domain"
)

type AffiliateRepo struct{ db *gorm.DB }

func NewAffiliateRepo(db *gorm.DB) *AffiliateRepo { return &AffiliateRepo{db: db} }

func (r *AffiliateRepo) ListAffiliates(ctx context.Context) ([]domain.AffiliateRow, error) {
	return listAll[domain.AffiliateRow](ctx, r.db)
}

func (r *AffiliateRepo) UpsertAffiliates(ctx context.Context, rows []domain.AffiliateRow) error {
	return upsertOnID(ctx, r.db, rows)
}
