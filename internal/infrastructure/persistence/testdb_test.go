package persistence

import (
	"testing"

	"github.com/condo/backend/internal/domain/billing"
	"github.com/condo/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an in-memory SQLite database with every billing table.
// A single connection keeps the database shared across goroutines.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.ChargeTypeModel{},
		&models.LedgerEntryModel{},
		&models.VehicleFeeConfigModel{},
		&models.HouseholdModel{},
		&models.VehicleModel{},
		&models.HistoryRecordModel{},
	))
	return db
}

func seedHousehold(t *testing.T, db *gorm.DB, code string, area string) uuid.UUID {
	t.Helper()
	m := &models.HouseholdModel{
		Code:            code,
		ApartmentNumber: "A-" + code,
		AreaM2:          decimal.RequireFromString(area),
	}
	m.ID = uuid.New()
	require.NoError(t, db.Create(m).Error)
	return m.ID
}

func seedVehicle(t *testing.T, db *gorm.DB, householdID uuid.UUID, plate, class string, active bool) uuid.UUID {
	t.Helper()
	m := &models.VehicleModel{
		HouseholdID:  householdID,
		LicensePlate: plate,
		VehicleClass: billing.VehicleClass(class),
		Active:       active,
	}
	m.ID = uuid.New()
	require.NoError(t, db.Create(m).Error)
	// a false Active is a zero value and would fall back to the column default
	require.NoError(t, db.Model(m).Update("active", active).Error)
	return m.ID
}
