package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoneyVND(t *testing.T) {
	m, err := ParseMoneyVND("123.45")
	require.NoError(t, err)
	assert.True(t, m.Amount().Equal(decimal.RequireFromString("123.45")))
	assert.Equal(t, VND, m.Currency())

	_, err = ParseMoneyVND("not-a-number")
	assert.Error(t, err)
}

func TestMoney_Arithmetic(t *testing.T) {
	a := NewMoneyVND(decimal.NewFromInt(100))
	b := NewMoneyVND(decimal.NewFromInt(40))

	assert.True(t, a.MustAdd(b).Amount().Equal(decimal.NewFromInt(140)))
	assert.True(t, a.MustSubtract(b).Amount().Equal(decimal.NewFromInt(60)))
	assert.True(t, b.MustSubtract(a).IsNegative())
	assert.True(t, a.IsPositive())
}

func TestMoney_MultiplyAndRound(t *testing.T) {
	price := NewMoneyVND(decimal.RequireFromString("5000.555"))
	total := price.Multiply(decimal.RequireFromString("10"))
	assert.Equal(t, "50005.55", total.Amount().String())

	perArea := NewMoneyVND(decimal.RequireFromString("12345.67")).Multiply(decimal.RequireFromString("75.5"))
	assert.Equal(t, "932098.09", perArea.Round(MonetaryScale).Amount().StringFixed(MonetaryScale))

	halfUp := NewMoneyVND(decimal.RequireFromString("0.125")).Round(MonetaryScale)
	assert.Equal(t, "0.13", halfUp.Amount().String())
}

func TestMoney_ZeroValue(t *testing.T) {
	var m Money
	assert.Equal(t, DefaultCurrency, m.Currency())
	assert.True(t, m.IsZero())
	assert.True(t, m.Equals(NewMoneyVND(decimal.Zero)))
	assert.Equal(t, "0.00 VND", m.String())
}

func TestMoney_JSON(t *testing.T) {
	m := NewMoneyVND(decimal.NewFromInt(250000))
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"250000.00","currency":"VND"}`, string(data))

	var back Money
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.Equals(m))

	assert.Error(t, json.Unmarshal([]byte(`{"amount":"1","currency":"USD"}`), &back))
	assert.Error(t, json.Unmarshal([]byte(`{"amount":"abc"}`), &back))
}

func TestMoney_Scan(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"nil", nil, "0"},
		{"string", "12.50", "12.5"},
		{"bytes", []byte("7"), "7"},
		{"int64", int64(42), "42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m Money
			require.NoError(t, m.Scan(tt.value))
			assert.Equal(t, tt.want, m.Amount().String())
		})
	}

	var m Money
	assert.Error(t, m.Scan(true))
	assert.Error(t, m.Scan("x"))
}
