package models

import (
	"testing"
	"time"

	"github.com/condo/backend/internal/domain/billing"
	"github.com/condo/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerEntryModel_FromDomain(t *testing.T) {
	chargeTypeID := uuid.New()
	entry, err := billing.NewMonthlyEntry(
		uuid.New(),
		billing.FeeKind(chargeTypeID),
		valueobject.MustYearMonth(2025, 2),
		valueobject.NewMoneyVND(decimal.NewFromInt(250000)),
		"admin",
	)
	require.NoError(t, err)

	m := LedgerEntryModelFromDomain(entry)

	assert.Equal(t, billing.CategoryFee, m.Category)
	assert.Equal(t, "FEE:"+chargeTypeID.String(), m.ChargeKey)
	require.NotNil(t, m.ChargeTypeID)
	assert.Equal(t, chargeTypeID, *m.ChargeTypeID)
	assert.Equal(t, "2025-02", m.PeriodKey)
	assert.Equal(t, 28, m.ValidTo.Day())

	back, err := m.ToDomain()
	require.NoError(t, err)
	assert.Equal(t, entry.Kind, back.Kind)
	assert.True(t, entry.Amount.Equals(back.Amount))
	assert.Equal(t, entry.Version, back.Version)
}

func TestLedgerEntryModel_ToDomain_RejectsCorruptKey(t *testing.T) {
	m := &LedgerEntryModel{ChargeKey: "BOGUS"}
	_, err := m.ToDomain()
	assert.Error(t, err)
}

func TestLedgerEntryModel_VehicleKindHasNoChargeType(t *testing.T) {
	entry, err := billing.NewDailyEntry(
		uuid.New(),
		billing.VehicleKind(billing.TicketKindDaily),
		time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC),
		valueobject.NewMoneyVND(decimal.NewFromInt(30000)),
		"guard",
	)
	require.NoError(t, err)

	m := LedgerEntryModelFromDomain(entry)
	assert.Nil(t, m.ChargeTypeID)
	assert.Equal(t, billing.PayerTypeVehicle, m.PayerType)
	assert.Equal(t, "2025-02-14", m.PeriodKey)
}
