package models

import (
	"github.com/condo/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HouseholdModel maps the master data households table. Billing only reads it.
type HouseholdModel struct {
	BaseModel
	Code            string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	ApartmentNumber string          `gorm:"type:varchar(50);not null"`
	AreaM2          decimal.Decimal `gorm:"column:area_m2;type:decimal(10,2);not null"`
}

// TableName returns the table name for GORM
func (HouseholdModel) TableName() string {
	return "households"
}

// ToDomain converts the persistence model to a billing Household.
func (m *HouseholdModel) ToDomain() billing.Household {
	return billing.Household{
		ID:              m.ID,
		Code:            m.Code,
		ApartmentNumber: m.ApartmentNumber,
		AreaM2:          m.AreaM2,
	}
}

// VehicleModel maps the master data vehicles table. Billing only reads it.
type VehicleModel struct {
	BaseModel
	HouseholdID  uuid.UUID            `gorm:"type:uuid;not null;index"`
	LicensePlate string               `gorm:"type:varchar(20);not null;uniqueIndex"`
	VehicleClass billing.VehicleClass `gorm:"type:varchar(20);not null"`
	Active       bool                 `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (VehicleModel) TableName() string {
	return "vehicles"
}

// ToDomain converts the persistence model to a billing Vehicle.
func (m *VehicleModel) ToDomain() billing.Vehicle {
	return billing.Vehicle{
		ID:           m.ID,
		HouseholdID:  m.HouseholdID,
		LicensePlate: m.LicensePlate,
		Class:        m.VehicleClass,
		Active:       m.Active,
	}
}
