package billing

import (
	"context"
	"fmt"

	"github.com/condo/backend/internal/domain/billing"
	"github.com/condo/backend/internal/domain/shared"
	"github.com/condo/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuditRecorder writes audit rows. Recording is fire-and-forget: a failed
// write is logged at warn and never fails the business operation.
type AuditRecorder struct {
	history billing.HistoryRepository
	logger  *zap.Logger
}

// NewAuditRecorder creates a new AuditRecorder
func NewAuditRecorder(history billing.HistoryRepository, logger *zap.Logger) *AuditRecorder {
	return &AuditRecorder{history: history, logger: logger}
}

// Record appends an audit row
func (a *AuditRecorder) Record(ctx context.Context, entityType string, entityID uuid.UUID, action, details, actor string) {
	if a == nil || a.history == nil {
		return
	}
	record := billing.NewHistoryRecord(entityType, entityID, action, details, actor)
	if err := a.history.Append(ctx, record); err != nil {
		a.logger.Warn("failed to record audit history",
			zap.String("entity_type", entityType),
			zap.String("entity_id", entityID.String()),
			zap.String("action", action),
			logger.Actor(record.Actor),
			zap.Error(err),
		)
	}
}

// History lists the audit rows of one entity, oldest first
func (a *AuditRecorder) History(ctx context.Context, entityType string, entityID uuid.UUID) ([]HistoryRecordResponse, error) {
	records, err := a.history.FindByEntity(ctx, entityType, entityID)
	if err != nil {
		return nil, err
	}
	responses := make([]HistoryRecordResponse, len(records))
	for i, r := range records {
		responses[i] = HistoryRecordResponse{
			ID:        r.ID,
			Action:    r.Action,
			Details:   r.Details,
			Actor:     r.Actor,
			CreatedAt: r.CreatedAt,
		}
	}
	return responses, nil
}

// LedgerAuditHandler turns ledger domain events into audit rows
type LedgerAuditHandler struct {
	audit *AuditRecorder
}

// NewLedgerAuditHandler creates a new LedgerAuditHandler
func NewLedgerAuditHandler(audit *AuditRecorder) *LedgerAuditHandler {
	return &LedgerAuditHandler{audit: audit}
}

// EventTypes returns the ledger events that are audited
func (h *LedgerAuditHandler) EventTypes() []string {
	return []string{
		billing.EventTypeLedgerEntryCreated,
		billing.EventTypeLedgerEntryPaid,
		billing.EventTypeLedgerEntryAmountCorrected,
	}
}

// Handle records one audit row per event
func (h *LedgerAuditHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *billing.LedgerEntryCreatedEvent:
		h.audit.Record(ctx, billing.EntityLedgerEntry, e.AggregateID(), billing.ActionCreate,
			fmt.Sprintf("Created %s for %s: %s", e.ChargeKey, e.PeriodKey, e.Amount), e.CreatedBy)
	case *billing.LedgerEntryPaidEvent:
		h.audit.Record(ctx, billing.EntityLedgerEntry, e.AggregateID(), billing.ActionPay,
			fmt.Sprintf("Paid %s on %s", e.Amount, e.PaidDate.Format("2006-01-02")), e.CollectedBy)
	case *billing.LedgerEntryAmountCorrectedEvent:
		h.audit.Record(ctx, billing.EntityLedgerEntry, e.AggregateID(), billing.ActionUpdate,
			fmt.Sprintf("Amount corrected from %s to %s", e.PreviousAmount, e.NewAmount), e.CorrectedBy)
	default:
		return fmt.Errorf("unexpected event type %s", event.EventType())
	}
	return nil
}

var _ shared.EventHandler = (*LedgerAuditHandler)(nil)

// publishEvents hands the aggregate's pending events to the publisher and clears them
func publishEvents(ctx context.Context, publisher shared.EventPublisher, entry *billing.LedgerEntry) {
	events := entry.PullDomainEvents()
	if publisher == nil || len(events) == 0 {
		return
	}
	_ = publisher.Publish(ctx, events...)
}
