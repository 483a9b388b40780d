package billing

import (
	"context"
	"errors"
	"time"

	"github.com/condo/backend/internal/domain/billing"
	"github.com/condo/backend/internal/domain/shared"
	"github.com/condo/backend/internal/domain/shared/valueobject"
	"github.com/condo/backend/internal/infrastructure/logger"
	"github.com/condo/backend/internal/infrastructure/scheduler"
	"github.com/condo/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GenerationService materialises the ledger entries of a cohort for one period.
// Every pair is written on its own; the unique ledger key makes re-runs and
// concurrent runs safe.
type GenerationService struct {
	chargeTypes billing.ChargeTypeRepository
	roster      billing.PayerRoster
	ledger      billing.LedgerEntryRepository
	pricing     *billing.PricingResolver
	metrics     *telemetry.BillingMetrics
	logger      *zap.Logger
}

// NewGenerationService creates a new GenerationService
func NewGenerationService(
	chargeTypes billing.ChargeTypeRepository,
	roster billing.PayerRoster,
	ledger billing.LedgerEntryRepository,
	pricing *billing.PricingResolver,
	metrics *telemetry.BillingMetrics,
	logger *zap.Logger,
) *GenerationService {
	return &GenerationService{
		chargeTypes: chargeTypes,
		roster:      roster,
		ledger:      ledger,
		pricing:     pricing,
		metrics:     metrics,
		logger:      logger,
	}
}

// GenerateForPeriod ensures every eligible payer of the cohort has one entry for period.
// Duplicates are counted as skipped. Any other failure stops the run and is
// returned together with the partial report.
func (s *GenerationService) GenerateForPeriod(
	ctx context.Context,
	cohort billing.Cohort,
	period valueobject.YearMonth,
	actor string,
) (*GenerationReport, error) {
	if !cohort.IsValid() {
		return nil, shared.NewDomainError(shared.CodeBadRequest, "Unknown generation cohort: "+string(cohort))
	}
	if period.IsZero() {
		return nil, shared.NewDomainError(shared.CodeBadRequest, "Billing period is required")
	}
	actor = billing.ResolveActor(actor)

	ctx, span := telemetry.StartServiceSpan(ctx, "billing", "generate_for_period",
		telemetry.WithAttribute(telemetry.SpanAttrCohort, string(cohort)),
		telemetry.WithAttribute(telemetry.SpanAttrPeriod, period.String()),
		telemetry.WithAttribute(telemetry.SpanAttrActor, actor),
	)
	defer span.End()

	log := s.logger.With(logger.Cohort(string(cohort)), logger.Period(period.String()), logger.Actor(actor))
	log.Info("generation started")
	started := time.Now()

	report := &GenerationReport{Cohort: string(cohort), PeriodKey: period.String()}
	var err error
	telemetry.WithProfileLabels(ctx, map[string]string{"cohort": string(cohort)}, func(ctx context.Context) {
		switch cohort {
		case billing.CohortFees:
			err = s.generateFees(ctx, period, actor, report)
		case billing.CohortVehicleMonthly:
			err = s.generateVehicleTickets(ctx, period, actor, report)
		}
	})

	s.metrics.RecordGeneration(ctx, string(cohort), report.Created, report.Skipped, time.Since(started))
	telemetry.SetAttributes(span,
		telemetry.SpanAttrCreated, report.Created,
		telemetry.SpanAttrSkipped, report.Skipped,
	)

	if err != nil {
		telemetry.RecordError(span, err)
		fields := []zap.Field{zap.Int("created", report.Created), zap.Int("skipped", report.Skipped), zap.Error(err)}
		if report.FailedAt != nil {
			fields = append(fields, logger.PayerID(report.FailedAt.PayerID), logger.ChargeKey(report.FailedAt.ChargeKey))
		}
		log.Error("generation aborted", fields...)
		return report, err
	}

	log.Info("generation finished",
		zap.Int("created", report.Created),
		zap.Int("skipped", report.Skipped),
		zap.Duration("elapsed", time.Since(started)),
	)
	return report, nil
}

// Execute implements scheduler.JobExecutor
func (s *GenerationService) Execute(ctx context.Context, job *scheduler.Job) error {
	_, err := s.GenerateForPeriod(ctx, job.Cohort, job.Period, job.Actor)
	return err
}

func (s *GenerationService) generateFees(ctx context.Context, period valueobject.YearMonth, actor string, report *GenerationReport) error {
	chargeTypes, err := s.chargeTypes.FindRequired(ctx)
	if err != nil {
		return err
	}
	if len(chargeTypes) == 0 {
		return nil
	}
	households, err := s.roster.ListHouseholds(ctx)
	if err != nil {
		return err
	}

	for _, household := range households {
		for _, ct := range chargeTypes {
			kind := billing.FeeKind(ct.ID)
			amount, err := billing.ResolveFeeAmount(ct, household)
			if err != nil {
				return report.fail(household.ID, kind, err)
			}
			if err := s.createOne(ctx, household.ID, kind, period, amount, actor, report); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *GenerationService) generateVehicleTickets(ctx context.Context, period valueobject.YearMonth, actor string, report *GenerationReport) error {
	vehicles, err := s.roster.ListVehicles(ctx)
	if err != nil {
		return err
	}

	kind := billing.VehicleKind(billing.TicketKindMonthly)
	prices := make(map[billing.VehicleClass]valueobject.Money)
	for _, vehicle := range vehicles {
		if !vehicle.Active {
			continue
		}
		price, ok := prices[vehicle.Class]
		if !ok {
			price, err = s.pricing.ResolveTicketPrice(ctx, vehicle.Class, billing.TicketKindMonthly)
			if err != nil {
				return report.fail(vehicle.ID, kind, err)
			}
			prices[vehicle.Class] = price
		}
		if err := s.createOne(ctx, vehicle.ID, kind, period, price, actor, report); err != nil {
			return err
		}
	}
	return nil
}

func (s *GenerationService) createOne(
	ctx context.Context,
	payerID uuid.UUID,
	kind billing.ChargeKind,
	period valueobject.YearMonth,
	amount valueobject.Money,
	actor string,
	report *GenerationReport,
) error {
	entry, err := billing.NewMonthlyEntry(payerID, kind, period, amount, actor)
	if err != nil {
		return report.fail(payerID, kind, err)
	}
	// bulk runs are summarised by the run log, not audited per entry
	entry.ClearDomainEvents()

	if err := s.ledger.Create(ctx, entry); err != nil {
		if errors.Is(err, shared.ErrDuplicateCharge) {
			report.Skipped++
			return nil
		}
		return report.fail(payerID, kind, err)
	}
	report.Created++
	return nil
}

func (r *GenerationReport) fail(payerID uuid.UUID, kind billing.ChargeKind, err error) error {
	r.FailedAt = &FailedPair{PayerID: payerID, ChargeKey: kind.Key()}
	return err
}

var _ scheduler.JobExecutor = (*GenerationService)(nil)
