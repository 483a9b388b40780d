package billing

import (
	"context"

	"github.com/condo/backend/internal/domain/billing"
	"github.com/condo/backend/internal/domain/shared"
	"github.com/condo/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UtilityBillService records metered utility bills
type UtilityBillService struct {
	roster billing.PayerRoster
	ledger billing.LedgerEntryRepository
	events shared.EventPublisher
}

// NewUtilityBillService creates a new UtilityBillService
func NewUtilityBillService(roster billing.PayerRoster, ledger billing.LedgerEntryRepository, events shared.EventPublisher) *UtilityBillService {
	return &UtilityBillService{roster: roster, ledger: ledger, events: events}
}

// CreateUtilityBill stores a household's bill for one utility and month
func (s *UtilityBillService) CreateUtilityBill(ctx context.Context, req CreateUtilityBillRequest, actor string) (*LedgerEntryResponse, error) {
	utility, err := billing.ParseUtilityType(req.UtilityType)
	if err != nil {
		return nil, err
	}
	period, err := NewPeriod(req.Year, req.Month)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, req.HouseholdID, utility, period, req.Amount, actor)
}

func (s *UtilityBillService) create(
	ctx context.Context,
	householdID uuid.UUID,
	utility billing.UtilityType,
	period valueobject.YearMonth,
	amount decimal.Decimal,
	actor string,
) (*LedgerEntryResponse, error) {
	if amount.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeValidation, "Utility amount cannot be negative")
	}
	household, err := s.roster.FindHousehold(ctx, householdID)
	if err != nil {
		return nil, err
	}
	entry, err := billing.NewMonthlyEntry(household.ID, billing.UtilityKind(utility), period, valueobject.NewMoneyVND(amount), actor)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.Create(ctx, entry); err != nil {
		return nil, err
	}
	publishEvents(ctx, s.events, entry)
	resp := ToLedgerEntryResponse(entry)
	return &resp, nil
}
