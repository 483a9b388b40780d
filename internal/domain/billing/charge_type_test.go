package billing

import (
	"errors"
	"strings"
	"testing"

	"github.com/condo/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChargeType(t *testing.T) {
	t.Run("creates valid charge type", func(t *testing.T) {
		ct, err := NewChargeType(" Management fee ", "monthly upkeep", PricingModePerArea, decimal.NewFromInt(5000), true, "admin")

		require.NoError(t, err)
		assert.Equal(t, "Management fee", ct.Name)
		assert.Equal(t, PricingModePerArea, ct.PricingMode)
		assert.True(t, ct.UnitPrice.Amount().Equal(decimal.NewFromInt(5000)))
		assert.True(t, ct.Required)
		assert.Equal(t, 1, ct.GetVersion())
	})

	t.Run("fails with empty name", func(t *testing.T) {
		ct, err := NewChargeType("  ", "", PricingModeFlat, decimal.NewFromInt(1), false, "admin")

		assert.Nil(t, ct)
		assert.True(t, errors.Is(err, shared.ErrBadRequest))
	})

	t.Run("fails with negative unit price", func(t *testing.T) {
		_, err := NewChargeType("Cleaning", "", PricingModeFlat, decimal.NewFromInt(-1), false, "admin")

		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("fails with unknown pricing mode", func(t *testing.T) {
		_, err := NewChargeType("Cleaning", "", PricingMode("TIERED"), decimal.NewFromInt(1), false, "admin")

		assert.True(t, errors.Is(err, shared.ErrBadRequest))
	})
}

func TestChargeType_Update(t *testing.T) {
	ct, err := NewChargeType("Cleaning", "", PricingModeFlat, decimal.NewFromInt(100000), false, "admin")
	require.NoError(t, err)

	t.Run("rejected update leaves the charge type untouched", func(t *testing.T) {
		err := ct.Update("Cleaning", "", PricingModeFlat, decimal.NewFromInt(-5), true)

		assert.Error(t, err)
		assert.False(t, ct.Required)
		assert.True(t, ct.UnitPrice.Amount().Equal(decimal.NewFromInt(100000)))
		assert.Equal(t, 1, ct.GetVersion())
	})

	t.Run("applies valid update", func(t *testing.T) {
		err := ct.Update("Cleaning service", "weekly", PricingModePerArea, decimal.NewFromInt(2000), true)

		require.NoError(t, err)
		assert.Equal(t, "Cleaning service", ct.Name)
		assert.Equal(t, PricingModePerArea, ct.PricingMode)
		assert.True(t, ct.Required)
		assert.Equal(t, 2, ct.GetVersion())
	})
}

func TestNormalizeChargeTypeName(t *testing.T) {
	decomposed := "Phi\u0301 di\u0323ch vu\u0323" // combining acute and dot below
	precomposed := "Phí dịch vụ"

	assert.Equal(t, precomposed, NormalizeChargeTypeName("  "+decomposed+"  "))
	assert.Equal(t, "Phí dịch vụ", NormalizeChargeTypeName("Phí   dịch\tvụ"))
}

func TestNewChargeType_NameLengthCountsCharacters(t *testing.T) {
	name := strings.Repeat("ệ", 100) // 300 bytes, 100 characters
	_, err := NewChargeType(name, "", PricingModeFlat, decimal.Zero, false, "")
	require.NoError(t, err)

	_, err = NewChargeType(name+"ệ", "", PricingModeFlat, decimal.Zero, false, "")
	assert.Error(t, err)
}

func TestParsePricingMode(t *testing.T) {
	mode, err := ParsePricingMode("per_area")
	require.NoError(t, err)
	assert.Equal(t, PricingModePerArea, mode)

	_, err = ParsePricingMode("free")
	assert.True(t, errors.Is(err, shared.ErrBadRequest))
}
