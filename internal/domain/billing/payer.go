package billing

import (
	"strings"

	"github.com/condo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PayerType identifies which master data record a ledger entry is billed to
type PayerType string

const (
	PayerTypeHousehold PayerType = "HOUSEHOLD"
	PayerTypeVehicle   PayerType = "VEHICLE"
)

// VehicleClass is the pricing class of a vehicle
type VehicleClass string

const (
	VehicleClassCar       VehicleClass = "CAR"
	VehicleClassMotorbike VehicleClass = "MOTORBIKE"
)

// IsValid returns true if the vehicle class is valid
func (v VehicleClass) IsValid() bool {
	switch v {
	case VehicleClassCar, VehicleClassMotorbike:
		return true
	}
	return false
}

// ParseVehicleClass parses a vehicle class at the boundary
func ParseVehicleClass(s string) (VehicleClass, error) {
	class := VehicleClass(strings.ToUpper(strings.TrimSpace(s)))
	if !class.IsValid() {
		return "", shared.NewDomainError(shared.CodeBadRequest, "Unknown vehicle class: "+s)
	}
	return class, nil
}

// Household is a billable apartment. Owned by master data; read-only here.
type Household struct {
	ID              uuid.UUID
	Code            string
	ApartmentNumber string
	AreaM2          decimal.Decimal
}

// Vehicle is a registered vehicle belonging to a household. Read-only here.
type Vehicle struct {
	ID           uuid.UUID
	HouseholdID  uuid.UUID
	LicensePlate string
	Class        VehicleClass
	Active       bool
}
