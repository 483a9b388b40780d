package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/condo/backend/internal/domain/shared"
	"github.com/condo/backend/internal/domain/shared/valueobject"
)

// ResolveFeeAmount computes one household's amount for a registry fee.
// PER_AREA multiplies area by unit price exactly and rounds half-up once at the end.
func ResolveFeeAmount(ct *ChargeType, household Household) (valueobject.Money, error) {
	if ct == nil {
		return valueobject.Money{}, shared.NewDomainError(shared.CodeBadRequest, "Charge type is required")
	}
	switch ct.PricingMode {
	case PricingModePerArea:
		if household.AreaM2.IsNegative() {
			return valueobject.Money{}, shared.NewDomainError(shared.CodeValidation, "Household area cannot be negative")
		}
		return ct.UnitPrice.Multiply(household.AreaM2).Round(valueobject.MonetaryScale), nil
	case PricingModeFlat:
		return ct.UnitPrice.Round(valueobject.MonetaryScale), nil
	}
	return valueobject.Money{}, shared.NewDomainError(shared.CodeBadRequest, "Unknown pricing mode: "+ct.PricingMode.String())
}

// PricingResolver resolves ticket prices from the vehicle fee table
type PricingResolver struct {
	prices VehicleFeeConfigRepository
}

// NewPricingResolver creates a PricingResolver
func NewPricingResolver(prices VehicleFeeConfigRepository) *PricingResolver {
	return &PricingResolver{prices: prices}
}

// ResolveTicketPrice looks up the price for a class and ticket kind.
// A missing row is ConfigurationMissing, never a zero price.
func (r *PricingResolver) ResolveTicketPrice(ctx context.Context, class VehicleClass, kind TicketKind) (valueobject.Money, error) {
	cfg, err := r.prices.FindByClassAndKind(ctx, class, kind)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return valueobject.Money{}, shared.NewDomainError(
				shared.CodeConfigurationMissing,
				fmt.Sprintf("No ticket price configured for %s %s", class, kind),
			)
		}
		return valueobject.Money{}, err
	}
	return cfg.Price, nil
}
