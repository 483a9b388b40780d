package billing

import (
	"context"
	"testing"
	"time"

	"github.com/condo/backend/internal/domain/billing"
	"github.com/condo/backend/internal/infrastructure/event"
	"github.com/condo/backend/internal/infrastructure/persistence"
	"github.com/condo/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var fixedNow = time.Date(2025, time.January, 15, 9, 30, 0, 0, time.UTC)

// testEnv wires every billing service over one in-memory SQLite database
type testEnv struct {
	db          *gorm.DB
	ledgerRepo  *persistence.GormLedgerEntryRepository
	generation  *GenerationService
	ledger      *LedgerService
	tickets     *TicketService
	settlement  *SettlementService
	stats       *StatsService
	chargeTypes *ChargeTypeService
	feeConfig   *FeeConfigService
	utilities   *UtilityBillService
}

func newTestEnv(t *testing.T) *testEnv {
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

	log := zap.NewNop()
	chargeTypeRepo := persistence.NewGormChargeTypeRepository(db)
	ledgerRepo := persistence.NewGormLedgerEntryRepository(db)
	priceRepo := persistence.NewGormVehicleFeeConfigRepository(db)
	roster := persistence.NewGormPayerRoster(db)
	audit := NewAuditRecorder(persistence.NewGormHistoryRepository(db), log)

	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(NewLedgerAuditHandler(audit))

	pricing := billing.NewPricingResolver(priceRepo)
	clock := func() time.Time { return fixedNow }

	tickets := NewTicketService(roster, ledgerRepo, pricing, bus, audit, log)
	utilities := NewUtilityBillService(roster, ledgerRepo, bus)
	settlement := NewSettlementService(ledgerRepo, bus, nil, clock, log)

	return &testEnv{
		db:          db,
		ledgerRepo:  ledgerRepo,
		generation:  NewGenerationService(chargeTypeRepo, roster, ledgerRepo, pricing, nil, log),
		ledger:      NewLedgerService(ledgerRepo, chargeTypeRepo, roster, tickets, utilities, settlement, bus, audit, log),
		tickets:     tickets,
		settlement:  settlement,
		stats:       NewStatsService(ledgerRepo),
		chargeTypes: NewChargeTypeService(chargeTypeRepo, ledgerRepo, audit, log),
		feeConfig:   NewFeeConfigService(priceRepo, audit, log),
		utilities:   utilities,
	}
}

func (e *testEnv) household(t *testing.T, code, area string) uuid.UUID {
	t.Helper()
	m := &models.HouseholdModel{
		Code:            code,
		ApartmentNumber: "A-" + code,
		AreaM2:          decimal.RequireFromString(area),
	}
	m.ID = uuid.New()
	require.NoError(t, e.db.Create(m).Error)
	return m.ID
}

func (e *testEnv) vehicle(t *testing.T, householdID uuid.UUID, plate string, class billing.VehicleClass, active bool) uuid.UUID {
	t.Helper()
	m := &models.VehicleModel{
		HouseholdID:  householdID,
		LicensePlate: plate,
		VehicleClass: class,
		Active:       active,
	}
	m.ID = uuid.New()
	require.NoError(t, e.db.Create(m).Error)
	require.NoError(t, e.db.Model(m).Update("active", active).Error)
	return m.ID
}

func (e *testEnv) chargeType(t *testing.T, name, mode string, price int64, required bool) *ChargeTypeResponse {
	t.Helper()
	ct, err := e.chargeTypes.Create(context.Background(), CreateChargeTypeRequest{
		Name:        name,
		PricingMode: mode,
		UnitPrice:   decimal.NewFromInt(price),
		Required:    required,
	}, "admin")
	require.NoError(t, err)
	return ct
}

func (e *testEnv) ticketPrice(t *testing.T, class, kind string, price int64) {
	t.Helper()
	_, err := e.feeConfig.SetTicketPrice(context.Background(), SetTicketPriceRequest{
		VehicleClass: class,
		TicketKind:   kind,
		Price:        decimal.NewFromInt(price),
	}, "admin")
	require.NoError(t, err)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
