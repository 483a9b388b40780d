package billing

import (
	"github.com/condo/backend/internal/domain/shared"
	"github.com/condo/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// VehicleFeeConfig is the ticket price for one vehicle class and ticket kind.
// The (VehicleClass, TicketKind) pair is unique.
type VehicleFeeConfig struct {
	shared.BaseEntity
	VehicleClass VehicleClass
	TicketKind   TicketKind
	Price        valueobject.Money
	UpdatedBy    string
}

// NewVehicleFeeConfig creates a price table row
func NewVehicleFeeConfig(class VehicleClass, kind TicketKind, price decimal.Decimal, actor string) (*VehicleFeeConfig, error) {
	if !class.IsValid() {
		return nil, shared.NewDomainError(shared.CodeBadRequest, "Invalid vehicle class")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError(shared.CodeBadRequest, "Invalid ticket kind")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeValidation, "Ticket price cannot be negative")
	}
	return &VehicleFeeConfig{
		BaseEntity:   shared.NewBaseEntity(),
		VehicleClass: class,
		TicketKind:   kind,
		Price:        valueobject.NewMoneyVND(price),
		UpdatedBy:    ResolveActor(actor),
	}, nil
}

// SetPrice changes the ticket price
func (c *VehicleFeeConfig) SetPrice(price decimal.Decimal, actor string) error {
	if price.IsNegative() {
		return shared.NewDomainError(shared.CodeValidation, "Ticket price cannot be negative")
	}
	c.Price = valueobject.NewMoneyVND(price)
	c.UpdatedBy = ResolveActor(actor)
	c.Touch()
	return nil
}
