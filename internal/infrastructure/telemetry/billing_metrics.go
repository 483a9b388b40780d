package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when a metrics constructor receives a nil meter.
var ErrMeterNil = &MetricsError{Op: "NewBillingMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

// BillingMetrics counts generated, skipped and settled charges.
type BillingMetrics struct {
	generated          *Counter
	skipped            *Counter
	settlements        *Counter
	generationDuration *Histogram
}

// NewBillingMetrics creates the billing instruments on the given meter.
func NewBillingMetrics(meter metric.Meter) (*BillingMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	bm := &BillingMetrics{}
	var err error
	if bm.generated, err = NewCounter(meter,
		"condo_charges_generated_total", "Ledger entries created by generation runs", "{entries}"); err != nil {
		return nil, err
	}
	if bm.skipped, err = NewCounter(meter,
		"condo_charges_skipped_total", "Generation candidates skipped because an entry already existed", "{entries}"); err != nil {
		return nil, err
	}
	if bm.settlements, err = NewCounter(meter,
		"condo_settlements_total", "Settlement attempts by outcome", "{settlements}"); err != nil {
		return nil, err
	}
	if bm.generationDuration, err = NewHistogram(meter,
		"condo_generation_duration_seconds", "Duration of a generation cohort run", "s",
		GenerationDurationBuckets...); err != nil {
		return nil, err
	}
	return bm, nil
}

// RecordGeneration records the outcome of one cohort run. Nil receivers are ignored.
func (bm *BillingMetrics) RecordGeneration(ctx context.Context, cohort string, created, skipped int, elapsed time.Duration) {
	if bm == nil {
		return
	}
	attr := AttrCohort.String(cohort)
	bm.generated.Add(ctx, int64(created), attr)
	bm.skipped.Add(ctx, int64(skipped), attr)
	bm.generationDuration.RecordDuration(ctx, elapsed, attr)
}

// RecordSettlement records one settlement attempt.
func (bm *BillingMetrics) RecordSettlement(ctx context.Context, category, outcome string) {
	if bm == nil {
		return
	}
	bm.settlements.Inc(ctx, AttrCategory.String(category), AttrOutcome.String(outcome))
}
