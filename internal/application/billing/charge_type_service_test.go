package billing

import (
	"context"
	"errors"
	"testing"

	"github.com/condo/backend/internal/domain/billing"
	"github.com/condo/backend/internal/domain/shared"
	"github.com/condo/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChargeTypeService_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	fee := env.chargeType(t, "Service fee", "PER_AREA", 5000, true)
	gym := env.chargeType(t, "Gym", "FLAT", 100000, false)
	assert.Equal(t, "admin", fee.CreatedBy)
	assert.Equal(t, 1, fee.Version)

	_, err := env.chargeTypes.Create(ctx, CreateChargeTypeRequest{Name: " Service fee ", PricingMode: "FLAT"}, "admin")
	assert.True(t, errors.Is(err, shared.ErrAlreadyExists))

	_, err = env.chargeTypes.Create(ctx, CreateChargeTypeRequest{Name: "Parking", PricingMode: "PER_ROOM"}, "admin")
	assert.True(t, errors.Is(err, shared.ErrBadRequest))

	_, err = env.chargeTypes.Create(ctx, CreateChargeTypeRequest{Name: "Negative", PricingMode: "FLAT", UnitPrice: dec("-1")}, "admin")
	assert.True(t, errors.Is(err, shared.ErrValidation))

	required, err := env.chargeTypes.ListRequired(ctx)
	require.NoError(t, err)
	require.Len(t, required, 1)
	assert.Equal(t, fee.ID, required[0].ID)

	all, err := env.chargeTypes.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = env.chargeTypes.Update(ctx, gym.ID, UpdateChargeTypeRequest{Name: "Service fee", PricingMode: "FLAT"}, "admin")
	assert.True(t, errors.Is(err, shared.ErrAlreadyExists))

	updated, err := env.chargeTypes.Update(ctx, gym.ID, UpdateChargeTypeRequest{
		Name:        "Gym & Pool",
		PricingMode: "FLAT",
		UnitPrice:   dec("150000"),
		Required:    true,
	}, "manager")
	require.NoError(t, err)
	assert.Equal(t, "Gym & Pool", updated.Name)
	assert.True(t, updated.Required)
	assert.Equal(t, 2, updated.Version)

	_, err = env.chargeTypes.Update(ctx, uuid.New(), UpdateChargeTypeRequest{Name: "x", PricingMode: "FLAT"}, "admin")
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestChargeTypeService_DeleteBlockedWhileReferenced(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.household(t, "HH01", "50")
	fee := env.chargeType(t, "Service fee", "PER_AREA", 5000, true)
	unused := env.chargeType(t, "Unused", "FLAT", 1000, false)

	_, err := env.generation.GenerateForPeriod(ctx, billing.CohortFees, valueobject.MustYearMonth(2025, 1), "admin")
	require.NoError(t, err)

	err = env.chargeTypes.Delete(ctx, fee.ID, "admin")
	assert.True(t, errors.Is(err, shared.ErrInvalidState))

	require.NoError(t, env.chargeTypes.Delete(ctx, unused.ID, "admin"))
	_, err = env.chargeTypes.GetByID(ctx, unused.ID)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestFeeConfigService_SetTicketPrice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.ticketPrice(t, "CAR", "MONTHLY", 1200000)
	env.ticketPrice(t, "car", "monthly", 1300000)
	env.ticketPrice(t, "MOTORBIKE", "DAILY", 5000)

	prices, err := env.feeConfig.ListTicketPrices(ctx)
	require.NoError(t, err)
	require.Len(t, prices, 2)
	byKey := map[string]TicketPriceResponse{}
	for _, p := range prices {
		byKey[p.VehicleClass+":"+p.TicketKind] = p
	}
	assert.True(t, byKey["CAR:MONTHLY"].Price.Equal(dec("1300000")))
	assert.True(t, byKey["MOTORBIKE:DAILY"].Price.Equal(dec("5000")))

	_, err = env.feeConfig.SetTicketPrice(ctx, SetTicketPriceRequest{VehicleClass: "TRUCK", TicketKind: "MONTHLY"}, "admin")
	assert.True(t, errors.Is(err, shared.ErrBadRequest))

	_, err = env.feeConfig.SetTicketPrice(ctx, SetTicketPriceRequest{VehicleClass: "CAR", TicketKind: "MONTHLY", Price: dec("-5")}, "admin")
	assert.True(t, errors.Is(err, shared.ErrValidation))
}

func TestStatsService_Breakdown(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	hh := env.household(t, "HH01", "50")
	env.chargeType(t, "Service fee", "PER_AREA", 5000, true)
	_, err := env.generation.GenerateForPeriod(ctx, billing.CohortFees, valueobject.MustYearMonth(2025, 1), "admin")
	require.NoError(t, err)
	water, err := env.utilities.CreateUtilityBill(ctx, CreateUtilityBillRequest{
		HouseholdID: hh, UtilityType: "WATER", Year: 2025, Month: 1, Amount: dec("250000"),
	}, "admin")
	require.NoError(t, err)
	_, err = env.settlement.MarkPaid(ctx, water.ID, MarkPaidRequest{}, "cashier")
	require.NoError(t, err)

	stats, err := env.stats.StatsForPeriod(ctx, "2025-01")
	require.NoError(t, err)
	assert.True(t, stats.ExpectedAmount.Amount().Equal(dec("500000")))
	assert.True(t, stats.CollectedAmount.Amount().Equal(dec("250000")))
	assert.True(t, stats.ExpectedAmount.Amount().Equal(stats.CollectedAmount.Amount().Add(stats.RemainingAmount.Amount())))
	assert.True(t, stats.CollectionRate.Equal(dec("50")))

	groups, err := env.stats.BreakdownForPeriod(ctx, "2025-01")
	require.NoError(t, err)
	require.Len(t, groups, 2)
	total := dec("0")
	for _, g := range groups {
		total = total.Add(g.Percentage)
		assert.True(t, g.Percentage.Equal(dec("50")))
	}
	assert.True(t, total.LessThanOrEqual(dec("100")))
	assert.Equal(t, "UTILITY:WATER", groups[1].ChargeKey)
	assert.True(t, groups[1].CollectionRate.Equal(dec("100")))

	empty, err := env.stats.StatsForPeriod(ctx, "2030-01")
	require.NoError(t, err)
	assert.True(t, empty.CollectionRate.IsZero())
	assert.Zero(t, empty.EntryCount)
}
