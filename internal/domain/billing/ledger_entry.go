package billing

import (
	"strings"
	"time"

	"github.com/condo/backend/internal/domain/shared"
	"github.com/condo/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// PaymentStatus is the settlement state of a ledger entry
type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "UNPAID"
	PaymentStatusPaid   PaymentStatus = "PAID"
)

// IsValid returns true if the status is valid
func (s PaymentStatus) IsValid() bool {
	return s == PaymentStatusUnpaid || s == PaymentStatusPaid
}

// SystemActor is recorded when no caller identity is supplied
const SystemActor = "system"

// ResolveActor returns actor, or SystemActor when it is blank
func ResolveActor(actor string) string {
	if strings.TrimSpace(actor) == "" {
		return SystemActor
	}
	return actor
}

// LedgerEntry is one materialised obligation for one payer, charge kind and period.
// At most one entry exists per (PayerID, Kind, PeriodKey).
type LedgerEntry struct {
	shared.BaseAggregateRoot
	PayerID     uuid.UUID
	PayerType   PayerType
	Kind        ChargeKind
	PeriodKey   string
	ValidFrom   time.Time
	ValidTo     time.Time
	Amount      valueobject.Money
	Status      PaymentStatus
	PaidDate    *time.Time
	PaidBy      *string
	CollectedBy *string
	CreatedBy   string
}

// NewMonthlyEntry creates an unpaid entry covering a whole calendar month
func NewMonthlyEntry(
	payerID uuid.UUID,
	kind ChargeKind,
	period valueobject.YearMonth,
	amount valueobject.Money,
	actor string,
) (*LedgerEntry, error) {
	if kind.IsDaily() {
		return nil, shared.NewDomainError(shared.CodeBadRequest, "Daily tickets are billed per day, not per month")
	}
	if period.IsZero() {
		return nil, shared.NewDomainError(shared.CodeBadRequest, "Billing period is required")
	}
	return newEntry(payerID, kind, period.String(), period.Range(), amount, actor)
}

// NewDailyEntry creates an unpaid entry valid for a single day
func NewDailyEntry(
	payerID uuid.UUID,
	kind ChargeKind,
	day time.Time,
	amount valueobject.Money,
	actor string,
) (*LedgerEntry, error) {
	if !kind.IsDaily() {
		return nil, shared.NewDomainError(shared.CodeBadRequest, "Only daily tickets are billed per day")
	}
	if day.IsZero() {
		return nil, shared.NewDomainError(shared.CodeBadRequest, "Day is required for a daily ticket")
	}
	validity := valueobject.SingleDay(day)
	return newEntry(payerID, kind, validity.From().Format(valueobject.DayKeyLayout), validity, amount, actor)
}

func newEntry(
	payerID uuid.UUID,
	kind ChargeKind,
	periodKey string,
	validity valueobject.DateRange,
	amount valueobject.Money,
	actor string,
) (*LedgerEntry, error) {
	if payerID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeBadRequest, "Payer ID cannot be empty")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError(shared.CodeBadRequest, "Invalid charge kind")
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeValidation, "Amount cannot be negative")
	}

	entry := &LedgerEntry{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PayerID:           payerID,
		PayerType:         kind.PayerType(),
		Kind:              kind,
		PeriodKey:         periodKey,
		ValidFrom:         validity.From(),
		ValidTo:           validity.To(),
		Amount:            amount.Round(valueobject.MonetaryScale),
		Status:            PaymentStatusUnpaid,
		CreatedBy:         ResolveActor(actor),
	}
	entry.AddDomainEvent(NewLedgerEntryCreatedEvent(entry))
	return entry, nil
}

// IsPaid reports whether the entry is settled
func (e *LedgerEntry) IsPaid() bool {
	return e.Status == PaymentStatusPaid
}

// Validity returns the inclusive interval the entry covers
func (e *LedgerEntry) Validity() valueobject.DateRange {
	r, err := valueobject.NewDateRange(e.ValidFrom, e.ValidTo)
	if err != nil {
		return valueobject.SingleDay(e.ValidFrom)
	}
	return r
}

// IsActiveOn reports whether day falls inside the entry's validity interval
func (e *LedgerEntry) IsActiveOn(day time.Time) bool {
	return e.Validity().Contains(day)
}

// MarkPaid settles the entry. A settled entry cannot be paid again.
func (e *LedgerEntry) MarkPaid(collector, paidBy string, paidDate time.Time) error {
	if e.IsPaid() {
		return shared.ErrAlreadyPaid
	}
	if paidDate.IsZero() {
		return shared.NewDomainError(shared.CodeBadRequest, "Paid date is required")
	}

	day := valueobject.DateOf(paidDate)
	collectedBy := ResolveActor(collector)
	e.Status = PaymentStatusPaid
	e.PaidDate = &day
	e.CollectedBy = &collectedBy
	if paidBy != "" {
		e.PaidBy = &paidBy
	}
	e.IncrementVersion()

	e.AddDomainEvent(NewLedgerEntryPaidEvent(e))
	return nil
}

// CorrectAmount replaces the computed amount while the entry is unpaid
func (e *LedgerEntry) CorrectAmount(amount valueobject.Money, actor string) error {
	if e.IsPaid() {
		return shared.ErrAlreadyPaid
	}
	if amount.IsNegative() {
		return shared.NewDomainError(shared.CodeValidation, "Amount cannot be negative")
	}

	previous := e.Amount
	e.Amount = amount.Round(valueobject.MonetaryScale)
	e.IncrementVersion()

	e.AddDomainEvent(NewLedgerEntryAmountCorrectedEvent(e, previous, ResolveActor(actor)))
	return nil
}

// EnsureDeletable returns InvalidState for settled entries
func (e *LedgerEntry) EnsureDeletable() error {
	if e.IsPaid() {
		return shared.NewDomainError(shared.CodeInvalidState, "Paid entries cannot be deleted")
	}
	return nil
}

// RenewalPeriod returns the month following a monthly ticket's period
func (e *LedgerEntry) RenewalPeriod() (valueobject.YearMonth, error) {
	if !e.Kind.IsMonthlyTicket() {
		return valueobject.YearMonth{}, shared.NewDomainError(shared.CodeInvalidState, "Only monthly tickets can be renewed")
	}
	period, err := valueobject.ParseYearMonth(e.PeriodKey)
	if err != nil {
		return valueobject.YearMonth{}, shared.NewDomainError(shared.CodeInvalidState, "Monthly ticket has malformed period "+e.PeriodKey)
	}
	return period.Next(), nil
}

// CheckInvariants verifies the amount and payment-state invariants
func (e *LedgerEntry) CheckInvariants() error {
	if e.Amount.IsNegative() {
		return shared.NewDomainError(shared.CodeValidation, "Amount cannot be negative")
	}
	switch e.Status {
	case PaymentStatusPaid:
		if e.PaidDate == nil {
			return shared.NewDomainError(shared.CodeInvalidState, "Paid entry must carry a paid date")
		}
	case PaymentStatusUnpaid:
		if e.PaidDate != nil || e.PaidBy != nil || e.CollectedBy != nil {
			return shared.NewDomainError(shared.CodeInvalidState, "Unpaid entry cannot carry settlement data")
		}
	default:
		return shared.NewDomainError(shared.CodeInvalidState, "Unknown payment status")
	}
	if e.ValidTo.Before(e.ValidFrom) {
		return shared.NewDomainError(shared.CodeInvalidState, "Validity interval is inverted")
	}
	return nil
}
