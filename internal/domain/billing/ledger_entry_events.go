package billing

import (
	"time"

	"github.com/condo/backend/internal/domain/shared"
	"github.com/condo/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeLedgerEntry = "LedgerEntry"

// Event type constants
const (
	EventTypeLedgerEntryCreated         = "LedgerEntryCreated"
	EventTypeLedgerEntryPaid            = "LedgerEntryPaid"
	EventTypeLedgerEntryAmountCorrected = "LedgerEntryAmountCorrected"
)

// LedgerEntryCreatedEvent is raised when a ledger entry is materialised
type LedgerEntryCreatedEvent struct {
	shared.BaseDomainEvent
	PayerID   uuid.UUID         `json:"payer_id"`
	ChargeKey string            `json:"charge_key"`
	PeriodKey string            `json:"period_key"`
	Amount    valueobject.Money `json:"amount"`
	CreatedBy string            `json:"created_by"`
}

// NewLedgerEntryCreatedEvent creates a new LedgerEntryCreatedEvent
func NewLedgerEntryCreatedEvent(e *LedgerEntry) *LedgerEntryCreatedEvent {
	return &LedgerEntryCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLedgerEntryCreated, AggregateTypeLedgerEntry, e.ID),
		PayerID:         e.PayerID,
		ChargeKey:       e.Kind.Key(),
		PeriodKey:       e.PeriodKey,
		Amount:          e.Amount,
		CreatedBy:       e.CreatedBy,
	}
}

// LedgerEntryPaidEvent is raised when a ledger entry is settled
type LedgerEntryPaidEvent struct {
	shared.BaseDomainEvent
	PayerID     uuid.UUID         `json:"payer_id"`
	Amount      valueobject.Money `json:"amount"`
	PaidDate    time.Time         `json:"paid_date"`
	CollectedBy string            `json:"collected_by"`
}

// NewLedgerEntryPaidEvent creates a new LedgerEntryPaidEvent
func NewLedgerEntryPaidEvent(e *LedgerEntry) *LedgerEntryPaidEvent {
	event := &LedgerEntryPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLedgerEntryPaid, AggregateTypeLedgerEntry, e.ID),
		PayerID:         e.PayerID,
		Amount:          e.Amount,
	}
	if e.PaidDate != nil {
		event.PaidDate = *e.PaidDate
	}
	if e.CollectedBy != nil {
		event.CollectedBy = *e.CollectedBy
	}
	return event
}

// LedgerEntryAmountCorrectedEvent is raised when an unpaid amount is corrected
type LedgerEntryAmountCorrectedEvent struct {
	shared.BaseDomainEvent
	PreviousAmount valueobject.Money `json:"previous_amount"`
	NewAmount      valueobject.Money `json:"new_amount"`
	CorrectedBy    string            `json:"corrected_by"`
}

// NewLedgerEntryAmountCorrectedEvent creates a new LedgerEntryAmountCorrectedEvent
func NewLedgerEntryAmountCorrectedEvent(e *LedgerEntry, previous valueobject.Money, actor string) *LedgerEntryAmountCorrectedEvent {
	return &LedgerEntryAmountCorrectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLedgerEntryAmountCorrected, AggregateTypeLedgerEntry, e.ID),
		PreviousAmount:  previous,
		NewAmount:       e.Amount,
		CorrectedBy:     actor,
	}
}
