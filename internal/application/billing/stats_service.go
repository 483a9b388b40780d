package billing

import (
	"context"

	"github.com/condo/backend/internal/domain/billing"
	"github.com/condo/backend/internal/infrastructure/telemetry"
)

// StatsService computes collection rollups on demand from the ledger
type StatsService struct {
	ledger billing.LedgerEntryRepository
}

// NewStatsService creates a new StatsService
func NewStatsService(ledger billing.LedgerEntryRepository) *StatsService {
	return &StatsService{ledger: ledger}
}

// StatsForPeriod returns expected, collected and remaining amounts for a period key
func (s *StatsService) StatsForPeriod(ctx context.Context, periodKey string) (*billing.StatsSummary, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "billing", "stats_for_period",
		telemetry.WithAttribute(telemetry.SpanAttrPeriod, periodKey),
	)
	defer span.End()

	rows, err := s.ledger.SumByPeriod(ctx, periodKey)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	summary := billing.Summarize(periodKey, rows)
	return &summary, nil
}

// BreakdownForPeriod returns the same rollup per charge kind with each kind's
// share of the period's expected total
func (s *StatsService) BreakdownForPeriod(ctx context.Context, periodKey string) ([]billing.GroupStats, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "billing", "breakdown_for_period",
		telemetry.WithAttribute(telemetry.SpanAttrPeriod, periodKey),
	)
	defer span.End()

	rows, err := s.ledger.SumByPeriod(ctx, periodKey)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return billing.Breakdown(periodKey, rows), nil
}
