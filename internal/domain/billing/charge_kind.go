package billing

import (
	"fmt"
	"strings"

	"github.com/condo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Category is the top-level tag of a ChargeKind
type Category string

const (
	CategoryFee     Category = "FEE"
	CategoryVehicle Category = "VEHICLE"
	CategoryUtility Category = "UTILITY"
)

// TicketKind distinguishes monthly and daily parking tickets
type TicketKind string

const (
	TicketKindMonthly TicketKind = "MONTHLY"
	TicketKindDaily   TicketKind = "DAILY"
)

// IsValid returns true if the ticket kind is valid
func (t TicketKind) IsValid() bool {
	switch t {
	case TicketKindMonthly, TicketKindDaily:
		return true
	}
	return false
}

// ParseTicketKind parses a ticket kind at the boundary
func ParseTicketKind(s string) (TicketKind, error) {
	kind := TicketKind(strings.ToUpper(strings.TrimSpace(s)))
	if !kind.IsValid() {
		return "", shared.NewDomainError(shared.CodeBadRequest, "Unknown ticket kind: "+s)
	}
	return kind, nil
}

// UtilityType is a metered utility billed per household and month
type UtilityType string

const (
	UtilityElectricity UtilityType = "ELECTRICITY"
	UtilityWater       UtilityType = "WATER"
	UtilityInternet    UtilityType = "INTERNET"
)

// IsValid returns true if the utility type is valid
func (u UtilityType) IsValid() bool {
	switch u {
	case UtilityElectricity, UtilityWater, UtilityInternet:
		return true
	}
	return false
}

// ParseUtilityType parses a utility type at the boundary
func ParseUtilityType(s string) (UtilityType, error) {
	u := UtilityType(strings.ToUpper(strings.TrimSpace(s)))
	if !u.IsValid() {
		return "", shared.NewDomainError(shared.CodeBadRequest, "Unknown utility type: "+s)
	}
	return u, nil
}

// ChargeKind identifies what a ledger entry charges for. Exactly one of the
// variant fields is set, selected by category. The zero value is invalid.
type ChargeKind struct {
	category     Category
	chargeTypeID uuid.UUID
	ticket       TicketKind
	utility      UtilityType
}

// FeeKind is the kind of a registry fee
func FeeKind(chargeTypeID uuid.UUID) ChargeKind {
	return ChargeKind{category: CategoryFee, chargeTypeID: chargeTypeID}
}

// VehicleKind is the kind of a parking ticket
func VehicleKind(ticket TicketKind) ChargeKind {
	return ChargeKind{category: CategoryVehicle, ticket: ticket}
}

// UtilityKind is the kind of a utility bill
func UtilityKind(utility UtilityType) ChargeKind {
	return ChargeKind{category: CategoryUtility, utility: utility}
}

// Category returns the variant tag
func (k ChargeKind) Category() Category {
	return k.category
}

// ChargeTypeID returns the registry id for FEE kinds and uuid.Nil otherwise
func (k ChargeKind) ChargeTypeID() uuid.UUID {
	return k.chargeTypeID
}

// TicketKind returns the ticket kind for VEHICLE kinds
func (k ChargeKind) TicketKind() TicketKind {
	return k.ticket
}

// UtilityType returns the utility for UTILITY kinds
func (k ChargeKind) UtilityType() UtilityType {
	return k.utility
}

// IsMonthlyTicket reports whether the kind is VEHICLE:MONTHLY
func (k ChargeKind) IsMonthlyTicket() bool {
	return k.category == CategoryVehicle && k.ticket == TicketKindMonthly
}

// IsDaily reports whether entries of this kind are billed per day
func (k ChargeKind) IsDaily() bool {
	return k.category == CategoryVehicle && k.ticket == TicketKindDaily
}

// PayerType returns the kind of payer this charge is billed to
func (k ChargeKind) PayerType() PayerType {
	if k.category == CategoryVehicle {
		return PayerTypeVehicle
	}
	return PayerTypeHousehold
}

// IsValid returns true if the kind is a well-formed variant
func (k ChargeKind) IsValid() bool {
	switch k.category {
	case CategoryFee:
		return k.chargeTypeID != uuid.Nil
	case CategoryVehicle:
		return k.ticket.IsValid()
	case CategoryUtility:
		return k.utility.IsValid()
	}
	return false
}

// Key returns the canonical string form, e.g. FEE:<uuid>, VEHICLE:MONTHLY, UTILITY:WATER
func (k ChargeKind) Key() string {
	switch k.category {
	case CategoryFee:
		return fmt.Sprintf("%s:%s", k.category, k.chargeTypeID)
	case CategoryVehicle:
		return fmt.Sprintf("%s:%s", k.category, k.ticket)
	case CategoryUtility:
		return fmt.Sprintf("%s:%s", k.category, k.utility)
	}
	return ""
}

// String implements fmt.Stringer
func (k ChargeKind) String() string {
	return k.Key()
}

// ParseChargeKind parses the canonical key produced by Key
func ParseChargeKind(key string) (ChargeKind, error) {
	category, value, ok := strings.Cut(key, ":")
	if !ok || value == "" {
		return ChargeKind{}, shared.NewDomainError(shared.CodeBadRequest, "Malformed charge kind: "+key)
	}
	switch Category(strings.ToUpper(category)) {
	case CategoryFee:
		id, err := uuid.Parse(value)
		if err != nil || id == uuid.Nil {
			return ChargeKind{}, shared.NewDomainError(shared.CodeBadRequest, "Invalid charge type id in kind: "+key)
		}
		return FeeKind(id), nil
	case CategoryVehicle:
		ticket, err := ParseTicketKind(value)
		if err != nil {
			return ChargeKind{}, err
		}
		return VehicleKind(ticket), nil
	case CategoryUtility:
		utility, err := ParseUtilityType(value)
		if err != nil {
			return ChargeKind{}, err
		}
		return UtilityKind(utility), nil
	}
	return ChargeKind{}, shared.NewDomainError(shared.CodeBadRequest, "Unknown charge category: "+category)
}
