package billing

import (
	"context"

	"github.com/condo/backend/internal/domain/billing"
	"github.com/condo/backend/internal/domain/shared"
	"github.com/condo/backend/internal/domain/shared/valueobject"
	"github.com/condo/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LedgerService handles single-entry operations on the charge ledger
type LedgerService struct {
	ledger      billing.LedgerEntryRepository
	chargeTypes billing.ChargeTypeRepository
	roster      billing.PayerRoster
	tickets     *TicketService
	utilities   *UtilityBillService
	settlement  *SettlementService
	events      shared.EventPublisher
	audit       *AuditRecorder
	logger      *zap.Logger
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(
	ledger billing.LedgerEntryRepository,
	chargeTypes billing.ChargeTypeRepository,
	roster billing.PayerRoster,
	tickets *TicketService,
	utilities *UtilityBillService,
	settlement *SettlementService,
	events shared.EventPublisher,
	audit *AuditRecorder,
	logger *zap.Logger,
) *LedgerService {
	return &LedgerService{
		ledger:      ledger,
		chargeTypes: chargeTypes,
		roster:      roster,
		tickets:     tickets,
		utilities:   utilities,
		settlement:  settlement,
		events:      events,
		audit:       audit,
		logger:      logger,
	}
}

// CreateLedgerEntry creates one obligation for a payer, dispatching on the charge kind
func (s *LedgerService) CreateLedgerEntry(ctx context.Context, req CreateLedgerEntryRequest, actor string) (*LedgerEntryResponse, error) {
	kind, err := billing.ParseChargeKind(req.ChargeKind)
	if err != nil {
		return nil, err
	}

	if kind.IsDaily() {
		if req.Day == "" {
			return nil, shared.NewDomainError(shared.CodeBadRequest, "Day is required for a daily ticket")
		}
		day, err := ParseDay(req.Day)
		if err != nil {
			return nil, err
		}
		return s.tickets.CreateDaily(ctx, req.PayerID, day, actor)
	}

	if req.Year == 0 || req.Month == 0 {
		return nil, shared.NewDomainError(shared.CodeBadRequest, "Billing period is required")
	}
	period, err := NewPeriod(req.Year, req.Month)
	if err != nil {
		return nil, err
	}

	switch kind.Category() {
	case billing.CategoryVehicle:
		return s.tickets.CreateMonthly(ctx, req.PayerID, period, actor)
	case billing.CategoryUtility:
		if req.Amount == nil {
			return nil, shared.NewDomainError(shared.CodeBadRequest, "Amount is required for a utility bill")
		}
		return s.utilities.create(ctx, req.PayerID, kind.UtilityType(), period, *req.Amount, actor)
	default:
		return s.createFee(ctx, req.PayerID, kind, period, actor)
	}
}

func (s *LedgerService) createFee(
	ctx context.Context,
	householdID uuid.UUID,
	kind billing.ChargeKind,
	period valueobject.YearMonth,
	actor string,
) (*LedgerEntryResponse, error) {
	ct, err := s.chargeTypes.FindByID(ctx, kind.ChargeTypeID())
	if err != nil {
		return nil, err
	}
	household, err := s.roster.FindHousehold(ctx, householdID)
	if err != nil {
		return nil, err
	}
	amount, err := billing.ResolveFeeAmount(ct, *household)
	if err != nil {
		return nil, err
	}
	entry, err := billing.NewMonthlyEntry(household.ID, kind, period, amount, actor)
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

// GetEntry retrieves a ledger entry by ID
func (s *LedgerService) GetEntry(ctx context.Context, id uuid.UUID) (*LedgerEntryResponse, error) {
	entry, err := s.ledger.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToLedgerEntryResponse(entry)
	return &resp, nil
}

// ListByPayer lists every entry of one payer
func (s *LedgerService) ListByPayer(ctx context.Context, payerID uuid.UUID) ([]LedgerEntryResponse, error) {
	entries, err := s.ledger.FindByPayer(ctx, payerID)
	if err != nil {
		return nil, err
	}
	return ToLedgerEntryResponses(entries), nil
}

// ListByPeriod lists every entry of a period key
func (s *LedgerService) ListByPeriod(ctx context.Context, periodKey string) ([]LedgerEntryResponse, error) {
	entries, err := s.ledger.FindByPeriod(ctx, periodKey)
	if err != nil {
		return nil, err
	}
	return ToLedgerEntryResponses(entries), nil
}

// ListUnpaid lists unpaid entries matching the filter
func (s *LedgerService) ListUnpaid(ctx context.Context, filter billing.LedgerFilter) (shared.Paginated[LedgerEntryResponse], error) {
	page, err := s.ledger.FindUnpaid(ctx, filter)
	if err != nil {
		return shared.Paginated[LedgerEntryResponse]{}, err
	}
	return shared.NewPaginated(ToLedgerEntryResponses(page.Items), page.Total, page.Page, page.PageSize), nil
}

// CorrectAmount replaces the amount of an unpaid entry
func (s *LedgerService) CorrectAmount(ctx context.Context, id uuid.UUID, amount decimal.Decimal, actor string) (*LedgerEntryResponse, error) {
	entry, err := s.ledger.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := entry.CorrectAmount(valueobject.NewMoneyVND(amount), actor); err != nil {
		return nil, err
	}
	if err := s.ledger.SaveWithLock(ctx, entry); err != nil {
		return nil, err
	}
	publishEvents(ctx, s.events, entry)
	resp := ToLedgerEntryResponse(entry)
	return &resp, nil
}

// UpdateEntry is the administrative edit of an unpaid entry. It may correct the
// amount, settle the entry, or both. Settled entries yield ErrAlreadyPaid.
func (s *LedgerService) UpdateEntry(ctx context.Context, id uuid.UUID, req UpdateEntryRequest, actor string) (*LedgerEntryResponse, error) {
	entry, err := s.ledger.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.IsPaid() {
		return nil, shared.ErrAlreadyPaid
	}

	resp := ToLedgerEntryResponse(entry)
	if req.Amount != nil {
		corrected, err := s.CorrectAmount(ctx, id, *req.Amount, actor)
		if err != nil {
			return nil, err
		}
		resp = *corrected
	}
	if req.Paid != nil && *req.Paid {
		return s.settlement.MarkPaid(ctx, id, MarkPaidRequest{
			CollectedBy: req.CollectedBy,
			PaidBy:      req.PaidBy,
		}, actor)
	}
	return &resp, nil
}

// DeleteEntry removes an unpaid entry
func (s *LedgerService) DeleteEntry(ctx context.Context, id uuid.UUID, actor string) error {
	if err := s.ledger.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.Record(ctx, billing.EntityLedgerEntry, id, billing.ActionDelete, "Deleted unpaid entry", actor)
	s.logger.Info("ledger entry deleted", logger.EntryID(id), logger.Actor(billing.ResolveActor(actor)))
	return nil
}

// History lists the audit rows of an entry
func (s *LedgerService) History(ctx context.Context, id uuid.UUID) ([]HistoryRecordResponse, error) {
	return s.audit.History(ctx, billing.EntityLedgerEntry, id)
}
