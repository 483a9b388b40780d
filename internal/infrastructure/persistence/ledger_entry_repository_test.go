package persistence

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/condo/backend/internal/domain/billing"
	"github.com/condo/backend/internal/domain/shared"
	"github.com/condo/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var march2024 = valueobject.MustYearMonth(2024, 3)

func newMonthlyTicket(t *testing.T, payerID uuid.UUID, amount int64) *billing.LedgerEntry {
	t.Helper()
	entry, err := billing.NewMonthlyEntry(
		payerID,
		billing.VehicleKind(billing.TicketKindMonthly),
		march2024,
		valueobject.NewMoneyVND(decimal.NewFromInt(amount)),
		"tester",
	)
	require.NoError(t, err)
	return entry
}

func newFeeEntry(t *testing.T, payerID, chargeTypeID uuid.UUID, amount string) *billing.LedgerEntry {
	t.Helper()
	entry, err := billing.NewMonthlyEntry(
		payerID,
		billing.FeeKind(chargeTypeID),
		march2024,
		valueobject.NewMoneyVND(decimal.RequireFromString(amount)),
		"",
	)
	require.NoError(t, err)
	return entry
}

func TestLedgerEntryRepository_CreateAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormLedgerEntryRepository(db)
	ctx := context.Background()

	payer := uuid.New()
	chargeType := uuid.New()
	entry := newFeeEntry(t, payer, chargeType, "1234.50")
	require.NoError(t, repo.Create(ctx, entry))

	found, err := repo.FindByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, payer, found.PayerID)
	assert.Equal(t, billing.PayerTypeHousehold, found.PayerType)
	assert.Equal(t, chargeType, found.Kind.ChargeTypeID())
	assert.Equal(t, "2024-03", found.PeriodKey)
	assert.True(t, found.Amount.Amount().Equal(decimal.RequireFromString("1234.50")))
	assert.Equal(t, billing.PaymentStatusUnpaid, found.Status)
	assert.Equal(t, billing.SystemActor, found.CreatedBy)
	assert.True(t, march2024.FirstDay().Equal(found.ValidFrom))
	assert.True(t, march2024.LastDay().Equal(found.ValidTo))

	byCharge, err := repo.FindByChargeType(ctx, chargeType)
	require.NoError(t, err)
	assert.Len(t, byCharge, 1)

	exists, err := repo.ExistsByChargeType(ctx, chargeType)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByChargeType(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestLedgerEntryRepository_CreateDuplicate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormLedgerEntryRepository(db)
	ctx := context.Background()

	payer := uuid.New()
	require.NoError(t, repo.Create(ctx, newMonthlyTicket(t, payer, 1200000)))

	err := repo.Create(ctx, newMonthlyTicket(t, payer, 999))
	assert.ErrorIs(t, err, shared.ErrDuplicateCharge)

	entries, err := repo.FindByPayer(ctx, payer)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Amount.Amount().Equal(decimal.NewFromInt(1200000)))
}

func TestLedgerEntryRepository_ConcurrentCreateKeepsOneRow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormLedgerEntryRepository(db)
	ctx := context.Background()
	payer := uuid.New()

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			entry, err := billing.NewMonthlyEntry(payer, billing.VehicleKind(billing.TicketKindMonthly),
				march2024, valueobject.NewMoneyVND(decimal.NewFromInt(100)), "tester")
			if err != nil {
				errs <- err
				return
			}
			errs <- repo.Create(ctx, entry)
		}()
	}
	wg.Wait()
	close(errs)

	var created, duplicates int
	for err := range errs {
		switch {
		case err == nil:
			created++
		case errors.Is(err, shared.ErrDuplicateCharge):
			duplicates++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, workers-1, duplicates)

	entries, err := repo.FindByPeriod(ctx, "2024-03")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLedgerEntryRepository_Settle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormLedgerEntryRepository(db)
	ctx := context.Background()

	entry := newMonthlyTicket(t, uuid.New(), 1200000)
	require.NoError(t, repo.Create(ctx, entry))

	paidDate := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	settle := func(e *billing.LedgerEntry) error {
		return e.MarkPaid("cashier", "Nguyen Van A", paidDate)
	}

	settled, err := repo.Settle(ctx, entry.ID, settle)
	require.NoError(t, err)
	assert.Equal(t, billing.PaymentStatusPaid, settled.Status)

	found, err := repo.FindByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.PaymentStatusPaid, found.Status)
	require.NotNil(t, found.PaidDate)
	assert.Equal(t, "2024-03-05", found.PaidDate.Format(valueobject.DayKeyLayout))
	require.NotNil(t, found.CollectedBy)
	assert.Equal(t, "cashier", *found.CollectedBy)
	require.NotNil(t, found.PaidBy)
	assert.Equal(t, "Nguyen Van A", *found.PaidBy)
	assert.Equal(t, 2, found.Version)

	_, err = repo.Settle(ctx, entry.ID, settle)
	assert.ErrorIs(t, err, shared.ErrAlreadyPaid)

	_, err = repo.Settle(ctx, uuid.New(), settle)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestLedgerEntryRepository_ConcurrentSettleOneWins(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormLedgerEntryRepository(db)
	ctx := context.Background()

	entry := newMonthlyTicket(t, uuid.New(), 500)
	require.NoError(t, repo.Create(ctx, entry))

	results := make([]error, 2)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = repo.Settle(ctx, entry.ID, func(e *billing.LedgerEntry) error {
				return e.MarkPaid("cashier", "", time.Now())
			})
		}(i)
	}
	wg.Wait()

	var ok, alreadyPaid int
	for _, err := range results {
		if err == nil {
			ok++
		} else if shared.IsAlreadyPaid(err) {
			alreadyPaid++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, alreadyPaid)
}

func TestLedgerEntryRepository_SaveWithLock(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormLedgerEntryRepository(db)
	ctx := context.Background()

	entry := newMonthlyTicket(t, uuid.New(), 100)
	require.NoError(t, repo.Create(ctx, entry))

	stale, err := repo.FindByID(ctx, entry.ID)
	require.NoError(t, err)

	require.NoError(t, entry.CorrectAmount(valueobject.NewMoneyVND(decimal.NewFromInt(150)), "admin"))
	require.NoError(t, repo.SaveWithLock(ctx, entry))

	found, err := repo.FindByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.True(t, found.Amount.Amount().Equal(decimal.NewFromInt(150)))

	require.NoError(t, stale.CorrectAmount(valueobject.NewMoneyVND(decimal.NewFromInt(175)), "admin"))
	err = repo.SaveWithLock(ctx, stale)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
}

func TestLedgerEntryRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormLedgerEntryRepository(db)
	ctx := context.Background()

	unpaid := newMonthlyTicket(t, uuid.New(), 100)
	paid := newMonthlyTicket(t, uuid.New(), 100)
	require.NoError(t, repo.Create(ctx, unpaid))
	require.NoError(t, repo.Create(ctx, paid))
	_, err := repo.Settle(ctx, paid.ID, func(e *billing.LedgerEntry) error {
		return e.MarkPaid("", "", time.Now())
	})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, unpaid.ID))
	_, err = repo.FindByID(ctx, unpaid.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	err = repo.Delete(ctx, paid.ID)
	assert.True(t, shared.IsInvalidState(err))
	_, err = repo.FindByID(ctx, paid.ID)
	assert.NoError(t, err)

	assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), shared.ErrNotFound)
}

func TestLedgerEntryRepository_FindUnpaid(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormLedgerEntryRepository(db)
	ctx := context.Background()

	payer := uuid.New()
	fee := newFeeEntry(t, payer, uuid.New(), "100")
	ticket := newMonthlyTicket(t, uuid.New(), 200)
	paid := newFeeEntry(t, payer, uuid.New(), "300")
	for _, e := range []*billing.LedgerEntry{fee, ticket, paid} {
		require.NoError(t, repo.Create(ctx, e))
	}
	_, err := repo.Settle(ctx, paid.ID, func(e *billing.LedgerEntry) error {
		return e.MarkPaid("", "", time.Now())
	})
	require.NoError(t, err)

	all, err := repo.FindUnpaid(ctx, billing.DefaultLedgerFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Total)

	filter := billing.DefaultLedgerFilter()
	filter.PayerID = &payer
	byPayer, err := repo.FindUnpaid(ctx, filter)
	require.NoError(t, err)
	require.Len(t, byPayer.Items, 1)
	assert.Equal(t, fee.ID, byPayer.Items[0].ID)

	filter = billing.DefaultLedgerFilter()
	filter.Category = billing.CategoryVehicle
	filter.OrderBy = "amount; DROP TABLE ledger_entries"
	byCategory, err := repo.FindUnpaid(ctx, filter)
	require.NoError(t, err)
	require.Len(t, byCategory.Items, 1)
	assert.Equal(t, ticket.ID, byCategory.Items[0].ID)
}

func TestLedgerEntryRepository_SumByPeriod(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormLedgerEntryRepository(db)
	ctx := context.Background()

	cleaning := uuid.New()
	a := newFeeEntry(t, uuid.New(), cleaning, "150000")
	b := newFeeEntry(t, uuid.New(), cleaning, "100000")
	ticket := newMonthlyTicket(t, uuid.New(), 1200000)
	for _, e := range []*billing.LedgerEntry{a, b, ticket} {
		require.NoError(t, repo.Create(ctx, e))
	}
	_, err := repo.Settle(ctx, a.ID, func(e *billing.LedgerEntry) error {
		return e.MarkPaid("", "", time.Now())
	})
	require.NoError(t, err)

	totals, err := repo.SumByPeriod(ctx, "2024-03")
	require.NoError(t, err)
	require.Len(t, totals, 2)

	byKey := map[string]billing.AmountTotals{}
	for _, row := range totals {
		byKey[row.ChargeKey] = row
	}

	fees := byKey[billing.FeeKind(cleaning).Key()]
	assert.True(t, fees.Expected.Equal(decimal.NewFromInt(250000)))
	assert.True(t, fees.Collected.Equal(decimal.NewFromInt(150000)))
	assert.Equal(t, int64(2), fees.EntryCount)
	assert.Equal(t, int64(1), fees.PaidCount)

	tickets := byKey[billing.VehicleKind(billing.TicketKindMonthly).Key()]
	assert.True(t, tickets.Expected.Equal(decimal.NewFromInt(1200000)))
	assert.True(t, tickets.Collected.IsZero())

	empty, err := repo.SumByPeriod(ctx, "2030-01")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
