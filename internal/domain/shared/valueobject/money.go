package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 code
type Currency string

// VND is the only currency the ledger books in
const VND Currency = "VND"

// DefaultCurrency is the currency every Money carries
const DefaultCurrency = VND

// MonetaryScale is the number of fractional digits stored amounts keep
const MonetaryScale int32 = 2

// Money is an immutable amount of Vietnamese dong.
// The ledger is single currency, so arithmetic never has to reconcile codes;
// the currency only appears on the wire.
type Money struct {
	amount decimal.Decimal
}

// NewMoneyVND wraps a decimal amount
func NewMoneyVND(amount decimal.Decimal) Money {
	return Money{amount: amount}
}

// ParseMoneyVND reads an amount written as a decimal string
func ParseMoneyVND(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Money{amount: d}, nil
}

func (m Money) Amount() decimal.Decimal { return m.amount }
func (m Money) Currency() Currency      { return DefaultCurrency }
func (m Money) IsZero() bool            { return m.amount.IsZero() }
func (m Money) IsPositive() bool        { return m.amount.IsPositive() }
func (m Money) IsNegative() bool        { return m.amount.IsNegative() }

// MustAdd returns m + other
func (m Money) MustAdd(other Money) Money {
	return Money{amount: m.amount.Add(other.amount)}
}

// MustSubtract returns m - other. The result may be negative.
func (m Money) MustSubtract(other Money) Money {
	return Money{amount: m.amount.Sub(other.amount)}
}

// Multiply scales the amount exactly. Round fixes the scale afterwards.
func (m Money) Multiply(factor decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(factor)}
}

// Round rounds half away from zero, so 0.125 becomes 0.13 at two places
func (m Money) Round(places int32) Money {
	return Money{amount: m.amount.Round(places)}
}

// Equals compares amounts numerically, so 1.5 equals 1.50
func (m Money) Equals(other Money) bool {
	return m.amount.Equal(other.amount)
}

func (m Money) String() string {
	return m.amount.StringFixed(MonetaryScale) + " " + string(DefaultCurrency)
}

type moneyJSON struct {
	Amount   string   `json:"amount"`
	Currency Currency `json:"currency"`
}

// MarshalJSON writes the amount as a fixed-scale string so clients never
// see binary floating point.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{Amount: m.amount.StringFixed(MonetaryScale), Currency: DefaultCurrency})
}

// UnmarshalJSON accepts the MarshalJSON shape. A currency other than VND is rejected.
func (m *Money) UnmarshalJSON(data []byte) error {
	var v moneyJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v.Currency != "" && v.Currency != DefaultCurrency {
		return fmt.Errorf("unsupported currency %s", v.Currency)
	}
	parsed, err := ParseMoneyVND(v.Amount)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Value stores the bare amount in a NUMERIC column
func (m Money) Value() (driver.Value, error) {
	return m.amount.String(), nil
}

// Scan reads a NUMERIC column. NULL scans as zero.
func (m *Money) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		m.amount = decimal.Zero
	case string:
		return m.scanString(v)
	case []byte:
		return m.scanString(string(v))
	case int64:
		m.amount = decimal.NewFromInt(v)
	case float64:
		m.amount = decimal.NewFromFloat(v)
	default:
		return fmt.Errorf("cannot scan %T into Money", value)
	}
	return nil
}

func (m *Money) scanString(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid decimal value: %w", err)
	}
	m.amount = d
	return nil
}
