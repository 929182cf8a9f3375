package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/acsaicontentstudio-collab/digistore-app/internal/domain"
)

// SettingsRepo reads and writes the single store settings row.
type SettingsRepo struct{ db *gorm.DB }

func NewSettingsRepo(db *gorm.DB) *SettingsRepo { return &SettingsRepo{db: db} }

func (r *SettingsRepo) GetSettings(ctx context.Context) (*domain.SettingsRow, error) {
	var row domain.SettingsRow
	if err := r.db.WithContext(ctx).First(&row, "id = ?", domain.SettingsRowID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *SettingsRepo) UpsertSettings(ctx context.Context, row domain.SettingsRow) error {
	row.ID = domain.SettingsRowID
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(&row).Error
}
