//go:build integration

package persistence

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/condo/backend/internal/domain/billing"
	"github.com/condo/backend/internal/domain/shared"
	"github.com/condo/backend/internal/domain/shared/valueobject"
	"github.com/condo/backend/internal/infrastructure/migration"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupPostgres starts a PostgreSQL container and applies the embedded schema
func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("condo_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	migrateDB, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	m, err := migration.New(migrateDB, "", zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())
	_ = m.Close()

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestPostgres_LedgerUniqueCharge(t *testing.T) {
	db := setupPostgres(t)
	repo := NewGormLedgerEntryRepository(db)
	ctx := context.Background()

	payer := uuid.New()
	require.NoError(t, repo.Create(ctx, newMonthlyTicket(t, payer, 150000)))

	err := repo.Create(ctx, newMonthlyTicket(t, payer, 150000))
	assert.ErrorIs(t, err, shared.ErrDuplicateCharge)

	entries, err := repo.FindByPayer(ctx, payer)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestPostgres_ConcurrentCreateKeepsOneEntry(t *testing.T) {
	db := setupPostgres(t)
	repo := NewGormLedgerEntryRepository(db)
	ctx := context.Background()

	payer := uuid.New()
	const workers = 8
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		created    int
		duplicates int
	)
	for i := 0; i < workers; i++ {
		entry := newMonthlyTicket(t, payer, 150000)
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.Create(ctx, entry)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, shared.ErrDuplicateCharge):
				duplicates++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, workers-1, duplicates)
}

func TestPostgres_SettleOnce(t *testing.T) {
	db := setupPostgres(t)
	repo := NewGormLedgerEntryRepository(db)
	ctx := context.Background()

	entry := newMonthlyTicket(t, uuid.New(), 150000)
	require.NoError(t, repo.Create(ctx, entry))

	paidOn := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	const workers = 5
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		settled int
		already int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Settle(ctx, entry.ID, func(e *billing.LedgerEntry) error {
				return e.MarkPaid("desk", "clerk", paidOn)
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				settled++
			case errors.Is(err, shared.ErrAlreadyPaid):
				already++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, settled)
	assert.Equal(t, workers-1, already)

	found, err := repo.FindByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.True(t, found.IsPaid())
	require.NotNil(t, found.PaidDate)
	assert.Equal(t, "2024-03-10", found.PaidDate.Format(time.DateOnly))

	assert.Error(t, repo.Delete(ctx, entry.ID), "paid entries stay in the ledger")
}

func TestPostgres_SumByPeriod(t *testing.T) {
	db := setupPostgres(t)
	repo := NewGormLedgerEntryRepository(db)
	ctx := context.Background()

	paid := newMonthlyTicket(t, uuid.New(), 150000)
	require.NoError(t, repo.Create(ctx, paid))
	require.NoError(t, repo.Create(ctx, newMonthlyTicket(t, uuid.New(), 120000)))
	_, err := repo.Settle(ctx, paid.ID, func(e *billing.LedgerEntry) error {
		return e.MarkPaid("", "", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))
	})
	require.NoError(t, err)

	totals, err := repo.SumByPeriod(ctx, march2024.String())
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.Equal(t, billing.VehicleKind(billing.TicketKindMonthly).Key(), totals[0].ChargeKey)
	assert.True(t, totals[0].Expected.Equal(decimal.NewFromInt(270000)))
	assert.True(t, totals[0].Collected.Equal(decimal.NewFromInt(150000)))
	assert.Equal(t, int64(2), totals[0].EntryCount)
	assert.Equal(t, int64(1), totals[0].PaidCount)

	empty, err := repo.SumByPeriod(ctx, valueobject.MustYearMonth(2030, 1).String())
	require.NoError(t, err)
	assert.Empty(t, empty)
}
