package billing

import (
	"strings"
	"unicode/utf8"

	"github.com/condo/backend/internal/domain/shared"
	"github.com/condo/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// PricingMode defines how a charge type is priced for a household
type PricingMode string

const (
	// PricingModePerArea multiplies the unit price by the household area in m²
	PricingModePerArea PricingMode = "PER_AREA"

	// PricingModeFlat charges the unit price as is
	PricingModeFlat PricingMode = "FLAT"
)

// String returns the string representation of PricingMode
func (p PricingMode) String() string {
	return string(p)
}

// IsValid returns true if the pricing mode is valid
func (p PricingMode) IsValid() bool {
	switch p {
	case PricingModePerArea, PricingModeFlat:
		return true
	}
	return false
}

// ParsePricingMode parses a pricing mode at the boundary
func ParsePricingMode(s string) (PricingMode, error) {
	mode := PricingMode(strings.ToUpper(strings.TrimSpace(s)))
	if !mode.IsValid() {
		return "", shared.NewDomainError(shared.CodeBadRequest, "Unknown pricing mode: "+s)
	}
	return mode, nil
}

// ChargeType is a recurring maintenance or service fee in the registry
type ChargeType struct {
	shared.BaseAggregateRoot
	Name        string
	Description string
	PricingMode PricingMode
	UnitPrice   valueobject.Money
	Required    bool
	CreatedBy   string
}

// NormalizeChargeTypeName trims and collapses whitespace and composes the
// name to NFC, so names typed with combining diacritics and precomposed
// letters compare equal.
func NormalizeChargeTypeName(name string) string {
	return norm.NFC.String(strings.Join(strings.Fields(name), " "))
}

// NewChargeType creates a new charge type
func NewChargeType(
	name, description string,
	mode PricingMode,
	unitPrice decimal.Decimal,
	required bool,
	actor string,
) (*ChargeType, error) {
	ct := &ChargeType{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              NormalizeChargeTypeName(name),
		Description:       description,
		PricingMode:       mode,
		UnitPrice:         valueobject.NewMoneyVND(unitPrice),
		Required:          required,
		CreatedBy:         actor,
	}
	if err := ct.validate(); err != nil {
		return nil, err
	}
	return ct, nil
}

// Update changes the editable attributes of the charge type
func (c *ChargeType) Update(
	name, description string,
	mode PricingMode,
	unitPrice decimal.Decimal,
	required bool,
) error {
	updated := *c
	updated.Name = NormalizeChargeTypeName(name)
	updated.Description = description
	updated.PricingMode = mode
	updated.UnitPrice = valueobject.NewMoneyVND(unitPrice)
	updated.Required = required
	if err := updated.validate(); err != nil {
		return err
	}

	c.Name = updated.Name
	c.Description = updated.Description
	c.PricingMode = updated.PricingMode
	c.UnitPrice = updated.UnitPrice
	c.Required = updated.Required
	c.IncrementVersion()
	return nil
}

func (c *ChargeType) validate() error {
	if c.Name == "" {
		return shared.NewDomainError(shared.CodeBadRequest, "Charge type name cannot be empty")
	}
	if utf8.RuneCountInString(c.Name) > 100 {
		return shared.NewDomainError(shared.CodeValidation, "Charge type name cannot exceed 100 characters")
	}
	if !c.PricingMode.IsValid() {
		return shared.NewDomainError(shared.CodeBadRequest, "Invalid pricing mode")
	}
	if c.UnitPrice.IsNegative() {
		return shared.NewDomainError(shared.CodeValidation, "Unit price cannot be negative")
	}
	return nil
}
