package billing

import (
	"context"
	"fmt"

	"github.com/condo/backend/internal/domain/billing"
	"github.com/condo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ChargeTypeService manages the charge type registry
type ChargeTypeService struct {
	chargeTypes billing.ChargeTypeRepository
	ledger      billing.LedgerEntryRepository
	audit       *AuditRecorder
	logger      *zap.Logger
}

// NewChargeTypeService creates a new ChargeTypeService
func NewChargeTypeService(
	chargeTypes billing.ChargeTypeRepository,
	ledger billing.LedgerEntryRepository,
	audit *AuditRecorder,
	logger *zap.Logger,
) *ChargeTypeService {
	return &ChargeTypeService{
		chargeTypes: chargeTypes,
		ledger:      ledger,
		audit:       audit,
		logger:      logger,
	}
}

// Create registers a new charge type with a unique name
func (s *ChargeTypeService) Create(ctx context.Context, req CreateChargeTypeRequest, actor string) (*ChargeTypeResponse, error) {
	mode, err := billing.ParsePricingMode(req.PricingMode)
	if err != nil {
		return nil, err
	}
	ct, err := billing.NewChargeType(req.Name, req.Description, mode, req.UnitPrice, req.Required, billing.ResolveActor(actor))
	if err != nil {
		return nil, err
	}

	exists, err := s.chargeTypes.ExistsByName(ctx, ct.Name, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "Charge type with this name already exists")
	}

	if err := s.chargeTypes.Save(ctx, ct); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, billing.EntityChargeType, ct.ID, billing.ActionCreate, describeChargeType(ct), actor)
	s.logger.Info("charge type created", zap.String("charge_type_id", ct.ID.String()), zap.String("name", ct.Name))

	resp := ToChargeTypeResponse(ct)
	return &resp, nil
}

// Update replaces the editable attributes of a charge type.
// Entries already generated keep their amounts.
func (s *ChargeTypeService) Update(ctx context.Context, id uuid.UUID, req UpdateChargeTypeRequest, actor string) (*ChargeTypeResponse, error) {
	ct, err := s.chargeTypes.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	mode, err := billing.ParsePricingMode(req.PricingMode)
	if err != nil {
		return nil, err
	}

	exists, err := s.chargeTypes.ExistsByName(ctx, req.Name, &id)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "Charge type with this name already exists")
	}

	if err := ct.Update(req.Name, req.Description, mode, req.UnitPrice, req.Required); err != nil {
		return nil, err
	}
	if err := s.chargeTypes.Save(ctx, ct); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, billing.EntityChargeType, ct.ID, billing.ActionUpdate, describeChargeType(ct), actor)

	resp := ToChargeTypeResponse(ct)
	return &resp, nil
}

// Delete removes a charge type no ledger entry references
func (s *ChargeTypeService) Delete(ctx context.Context, id uuid.UUID, actor string) error {
	ct, err := s.chargeTypes.FindByID(ctx, id)
	if err != nil {
		return err
	}
	referenced, err := s.ledger.ExistsByChargeType(ctx, id)
	if err != nil {
		return err
	}
	if referenced {
		return shared.NewDomainError(shared.CodeInvalidState, "Charge type is referenced by ledger entries")
	}
	if err := s.chargeTypes.Delete(ctx, id); err != nil {
		return err
	}

	s.audit.Record(ctx, billing.EntityChargeType, id, billing.ActionDelete, describeChargeType(ct), actor)
	s.logger.Info("charge type deleted", zap.String("charge_type_id", id.String()), zap.String("name", ct.Name))
	return nil
}

// GetByID retrieves a charge type
func (s *ChargeTypeService) GetByID(ctx context.Context, id uuid.UUID) (*ChargeTypeResponse, error) {
	ct, err := s.chargeTypes.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToChargeTypeResponse(ct)
	return &resp, nil
}

// List returns every charge type ordered by name
func (s *ChargeTypeService) List(ctx context.Context) ([]ChargeTypeResponse, error) {
	return s.list(ctx, s.chargeTypes.FindAll)
}

// ListRequired returns the charge types every household is billed
func (s *ChargeTypeService) ListRequired(ctx context.Context) ([]ChargeTypeResponse, error) {
	return s.list(ctx, s.chargeTypes.FindRequired)
}

func (s *ChargeTypeService) list(ctx context.Context, find func(context.Context) ([]*billing.ChargeType, error)) ([]ChargeTypeResponse, error) {
	chargeTypes, err := find(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]ChargeTypeResponse, len(chargeTypes))
	for i, ct := range chargeTypes {
		responses[i] = ToChargeTypeResponse(ct)
	}
	return responses, nil
}

func describeChargeType(ct *billing.ChargeType) string {
	return fmt.Sprintf("%s (%s, %s, required=%t)", ct.Name, ct.PricingMode, ct.UnitPrice, ct.Required)
}
