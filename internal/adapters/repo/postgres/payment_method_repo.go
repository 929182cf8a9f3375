package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/acsaicontentstudio-collab/digistore-app/internal/domain"
)

type PaymentMethodRepo struct{ db *gorm.DB }

func NewPaymentMethodRepo(db *gorm.DB) *PaymentMethodRepo { return &PaymentMethodRepo{db: db} }

func (r *PaymentMethodRepo) ListPaymentMethods(ctx context.Context) ([]domain.PaymentMethodRow, error) {
	return listAll[domain.PaymentMethodRow](ctx, r.db)
}

func (r *PaymentMethodRepo) UpsertPaymentMethods(ctx context.Context, rows []domain.PaymentMethodRow) error {
	return upsertOnID(ctx, r.db, rows)
}
