package persistence

import (
	"context"
	"errors"

	"github.com/condo/backend/internal/domain/billing"
	"github.com/condo/backend/internal/domain/shared"
	"github.com/condo/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPayerRoster reads households and vehicles from the master data tables
type GormPayerRoster struct {
	db *gorm.DB
}

// NewGormPayerRoster creates a new GormPayerRoster
func NewGormPayerRoster(db *gorm.DB) *GormPayerRoster {
	return &GormPayerRoster{db: db}
}

// ListHouseholds lists every household ordered by code
func (r *GormPayerRoster) ListHouseholds(ctx context.Context) ([]billing.Household, error) {
	var householdModels []models.HouseholdModel
	if err := r.db.WithContext(ctx).Order("code ASC").Find(&householdModels).Error; err != nil {
		return nil, err
	}
	households := make([]billing.Household, len(householdModels))
	for i := range householdModels {
		households[i] = householdModels[i].ToDomain()
	}
	return households, nil
}

// ListVehicles lists every registered vehicle ordered by plate
func (r *GormPayerRoster) ListVehicles(ctx context.Context) ([]billing.Vehicle, error) {
	var vehicleModels []models.VehicleModel
	if err := r.db.WithContext(ctx).Order("license_plate ASC").Find(&vehicleModels).Error; err != nil {
		return nil, err
	}
	vehicles := make([]billing.Vehicle, len(vehicleModels))
	for i := range vehicleModels {
		vehicles[i] = vehicleModels[i].ToDomain()
	}
	return vehicles, nil
}

// FindHousehold finds a household by ID
func (r *GormPayerRoster) FindHousehold(ctx context.Context, id uuid.UUID) (*billing.Household, error) {
	var model models.HouseholdModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainError(shared.CodeNotFound, "Household not found")
		}
		return nil, err
	}
	household := model.ToDomain()
	return &household, nil
}

// FindVehicle finds a vehicle by ID
func (r *GormPayerRoster) FindVehicle(ctx context.Context, id uuid.UUID) (*billing.Vehicle, error) {
	var model models.VehicleModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainError(shared.CodeNotFound, "Vehicle not found")
		}
		return nil, err
	}
	vehicle := model.ToDomain()
	return &vehicle, nil
}

// Ensure GormPayerRoster implements PayerRoster
var _ billing.PayerRoster = (*GormPayerRoster)(nil)
