package billing

import (
	"context"
	"time"

	"github.com/condo/backend/internal/domain/billing"
	"github.com/condo/backend/internal/domain/shared"
	"github.com/condo/backend/internal/domain/shared/valueobject"
	"github.com/condo/backend/internal/infrastructure/logger"
	"github.com/condo/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TicketService issues and renews parking tickets
type TicketService struct {
	roster  billing.PayerRoster
	ledger  billing.LedgerEntryRepository
	pricing *billing.PricingResolver
	events  shared.EventPublisher
	audit   *AuditRecorder
	logger  *zap.Logger
}

// NewTicketService creates a new TicketService
func NewTicketService(
	roster billing.PayerRoster,
	ledger billing.LedgerEntryRepository,
	pricing *billing.PricingResolver,
	events shared.EventPublisher,
	audit *AuditRecorder,
	logger *zap.Logger,
) *TicketService {
	return &TicketService{
		roster:  roster,
		ledger:  ledger,
		pricing: pricing,
		events:  events,
		audit:   audit,
		logger:  logger,
	}
}

// CreateMonthly issues a monthly ticket valid from the first to the last day of period
func (s *TicketService) CreateMonthly(ctx context.Context, vehicleID uuid.UUID, period valueobject.YearMonth, actor string) (*LedgerEntryResponse, error) {
	vehicle, price, err := s.vehicleAndPrice(ctx, vehicleID, billing.TicketKindMonthly)
	if err != nil {
		return nil, err
	}
	entry, err := billing.NewMonthlyEntry(vehicle.ID, billing.VehicleKind(billing.TicketKindMonthly), period, price, actor)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, entry)
}

// CreateDaily issues a ticket valid for a single day
func (s *TicketService) CreateDaily(ctx context.Context, vehicleID uuid.UUID, day time.Time, actor string) (*LedgerEntryResponse, error) {
	if day.IsZero() {
		return nil, shared.NewDomainError(shared.CodeBadRequest, "Day is required for a daily ticket")
	}
	vehicle, price, err := s.vehicleAndPrice(ctx, vehicleID, billing.TicketKindDaily)
	if err != nil {
		return nil, err
	}
	entry, err := billing.NewDailyEntry(vehicle.ID, billing.VehicleKind(billing.TicketKindDaily), day, price, actor)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, entry)
}

// Renew issues the next month's ticket for a monthly ticket at the current price.
// The renewed entry is left untouched.
func (s *TicketService) Renew(ctx context.Context, entryID uuid.UUID, actor string) (*LedgerEntryResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "billing", "renew_monthly",
		telemetry.WithAttribute(telemetry.SpanAttrEntryID, entryID.String()),
	)
	defer span.End()

	current, err := s.ledger.FindByID(ctx, entryID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	next, err := current.RenewalPeriod()
	if err != nil {
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrPeriod, next.String())

	resp, err := s.CreateMonthly(ctx, current.PayerID, next, actor)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.audit.Record(ctx, billing.EntityLedgerEntry, current.ID, billing.ActionRenew,
		"Renewed into "+resp.ID.String()+" for "+next.String(), actor)
	s.logger.Info("monthly ticket renewed",
		logger.EntryID(current.ID),
		zap.String("renewed_entry_id", resp.ID.String()),
		logger.Period(next.String()),
	)
	return resp, nil
}

func (s *TicketService) vehicleAndPrice(ctx context.Context, vehicleID uuid.UUID, kind billing.TicketKind) (*billing.Vehicle, valueobject.Money, error) {
	if vehicleID == uuid.Nil {
		return nil, valueobject.Money{}, shared.NewDomainError(shared.CodeBadRequest, "Vehicle ID is required")
	}
	vehicle, err := s.roster.FindVehicle(ctx, vehicleID)
	if err != nil {
		return nil, valueobject.Money{}, err
	}
	price, err := s.pricing.ResolveTicketPrice(ctx, vehicle.Class, kind)
	if err != nil {
		return nil, valueobject.Money{}, err
	}
	return vehicle, price, nil
}

func (s *TicketService) create(ctx context.Context, entry *billing.LedgerEntry) (*LedgerEntryResponse, error) {
	if err := s.ledger.Create(ctx, entry); err != nil {
		return nil, err
	}
	publishEvents(ctx, s.events, entry)
	resp := ToLedgerEntryResponse(entry)
	return &resp, nil
}
