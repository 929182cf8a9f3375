package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/acsaicontentstudio-collab/digistore-app/internal/domain"
)

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.Open("host=127.0.0.1 user=x dbname=x sslmode=disable"), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)
	return db
}

func TestUpsertStatementOverwritesOnID(t *testing.T) {
	db := dryRunDB(t)
	rows := []domain.ProductRow{{ID: "6f1d7c2e-4a8b-5e0f-9c31-2b7a5d8e4f10", Name: "Ebook", Category: "ebook", Price: 1000}}

	stmt := db.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).Create(&rows).Statement
	sql := stmt.SQL.String()

	assert.Contains(t, sql, `INSERT INTO "products"`)
	assert.Contains(t, sql, `ON CONFLICT ("id") DO UPDATE SET`)
	assert.Contains(t, sql, `"name"="excluded"."name"`)
	assert.Contains(t, sql, `"discount_price"="excluded"."discount_price"`)
}

func TestSettingsRowUsesFixedTable(t *testing.T) {
	db := dryRunDB(t)
	row := domain.SettingsRow{ID: domain.SettingsRowID, StoreName: "Digistore"}

	stmt := db.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).Create(&row).Statement

	assert.Contains(t, stmt.SQL.String(), `INSERT INTO "store_settings"`)
	assert.Contains(t, stmt.Vars, any(domain.SettingsRowID))
}
