package billing

import (
	"sort"

	"github.com/condo/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// AmountTotals is one row of a per-period aggregation grouped by charge kind
type AmountTotals struct {
	ChargeKey  string
	Expected   decimal.Decimal
	Collected  decimal.Decimal
	EntryCount int64
	PaidCount  int64
}

// StatsSummary is the collection rollup for a period
type StatsSummary struct {
	PeriodKey       string            `json:"period_key"`
	ExpectedAmount  valueobject.Money `json:"expected_amount"`
	CollectedAmount valueobject.Money `json:"collected_amount"`
	RemainingAmount valueobject.Money `json:"remaining_amount"`
	CollectionRate  decimal.Decimal   `json:"collection_rate"`
	EntryCount      int64             `json:"entry_count"`
	PaidCount       int64             `json:"paid_count"`
}

// GroupStats is the rollup for one charge kind within a period
type GroupStats struct {
	ChargeKey string `json:"charge_key"`
	StatsSummary
	Percentage decimal.Decimal `json:"percentage"`
}

// CollectionRate returns collected / expected × 100 rounded to 2 places, or 0 when nothing is expected
func CollectionRate(collected, expected decimal.Decimal) decimal.Decimal {
	if !expected.IsPositive() {
		return decimal.Zero
	}
	return collected.Div(expected).Mul(hundred).Round(2)
}

// Share returns part / total × 100 truncated to 2 places, or 0 when total is zero.
// Truncation keeps a set of shares from summing above 100.
func Share(part, total decimal.Decimal) decimal.Decimal {
	if !total.IsPositive() {
		return decimal.Zero
	}
	return part.Mul(hundred).Div(total).Truncate(2)
}

// Summarize rolls grouped totals up into a single period summary
func Summarize(periodKey string, rows []AmountTotals) StatsSummary {
	var total AmountTotals
	for _, r := range rows {
		total.Expected = total.Expected.Add(r.Expected)
		total.Collected = total.Collected.Add(r.Collected)
		total.EntryCount += r.EntryCount
		total.PaidCount += r.PaidCount
	}
	return summarizeRow(periodKey, total)
}

// Breakdown returns per charge kind stats ordered by charge key
func Breakdown(periodKey string, rows []AmountTotals) []GroupStats {
	grand := Summarize(periodKey, rows).ExpectedAmount.Amount()

	groups := make([]GroupStats, 0, len(rows))
	for _, r := range rows {
		groups = append(groups, GroupStats{
			ChargeKey:    r.ChargeKey,
			StatsSummary: summarizeRow(periodKey, r),
			Percentage:   Share(r.Expected, grand),
		})
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].ChargeKey < groups[j].ChargeKey
	})
	return groups
}

func summarizeRow(periodKey string, r AmountTotals) StatsSummary {
	expected := valueobject.NewMoneyVND(r.Expected)
	collected := valueobject.NewMoneyVND(r.Collected)
	return StatsSummary{
		PeriodKey:       periodKey,
		ExpectedAmount:  expected,
		CollectedAmount: collected,
		RemainingAmount: expected.MustSubtract(collected),
		CollectionRate:  CollectionRate(r.Collected, r.Expected),
		EntryCount:      r.EntryCount,
		PaidCount:       r.PaidCount,
	}
}
