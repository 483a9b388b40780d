package billing

import (
	"context"
	"errors"

	"github.com/condo/backend/internal/domain/billing"
	"github.com/condo/backend/internal/domain/shared"
	"github.com/condo/backend/internal/infrastructure/logger"
	"github.com/condo/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Settlement outcomes reported to metrics
const (
	outcomePaid        = "paid"
	outcomeAlreadyPaid = "already_paid"
	outcomeFailed      = "failed"
)

// SettlementService moves ledger entries from UNPAID to PAID
type SettlementService struct {
	ledger  billing.LedgerEntryRepository
	events  shared.EventPublisher
	metrics *telemetry.BillingMetrics
	now     Clock
	logger  *zap.Logger
}

// NewSettlementService creates a new SettlementService
func NewSettlementService(
	ledger billing.LedgerEntryRepository,
	events shared.EventPublisher,
	metrics *telemetry.BillingMetrics,
	now Clock,
	logger *zap.Logger,
) *SettlementService {
	if now == nil {
		now = SystemClock
	}
	return &SettlementService{
		ledger:  ledger,
		events:  events,
		metrics: metrics,
		now:     now,
		logger:  logger,
	}
}

// MarkPaid settles an entry. The collector defaults to the actor and the paid
// date to today. A settled entry yields ErrAlreadyPaid.
func (s *SettlementService) MarkPaid(ctx context.Context, entryID uuid.UUID, req MarkPaidRequest, actor string) (*LedgerEntryResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "billing", "mark_paid",
		telemetry.WithAttribute(telemetry.SpanAttrEntryID, entryID.String()),
	)
	defer span.End()

	paidDate := s.now()
	if req.PaidDate != "" {
		day, err := ParseDay(req.PaidDate)
		if err != nil {
			return nil, err
		}
		paidDate = day
	}
	collector := req.CollectedBy
	if collector == "" {
		collector = actor
	}

	category := "unknown"
	entry, err := s.ledger.Settle(ctx, entryID, func(e *billing.LedgerEntry) error {
		category = string(e.Kind.Category())
		return e.MarkPaid(collector, req.PaidBy, paidDate)
	})
	if err != nil {
		outcome := outcomeFailed
		if errors.Is(err, shared.ErrAlreadyPaid) {
			outcome = outcomeAlreadyPaid
		}
		s.metrics.RecordSettlement(ctx, category, outcome)
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.metrics.RecordSettlement(ctx, category, outcomePaid)
	telemetry.SetAttributes(span,
		telemetry.SpanAttrChargeKey, entry.Kind.Key(),
		telemetry.SpanAttrAmount, entry.Amount.Amount().String(),
	)
	publishEvents(ctx, s.events, entry)

	s.logger.Info("ledger entry settled",
		logger.EntryID(entry.ID),
		logger.ChargeKey(entry.Kind.Key()),
		logger.Actor(*entry.CollectedBy),
		zap.Time("paid_date", *entry.PaidDate),
	)
	resp := ToLedgerEntryResponse(entry)
	return &resp, nil
}
