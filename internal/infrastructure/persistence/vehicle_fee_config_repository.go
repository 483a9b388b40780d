package persistence

import (
	"context"
	"errors"

	"github.com/condo/backend/internal/domain/billing"
	"github.com/condo/backend/internal/domain/shared"
	"github.com/condo/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormVehicleFeeConfigRepository implements VehicleFeeConfigRepository using GORM
type GormVehicleFeeConfigRepository struct {
	db *gorm.DB
}

// NewGormVehicleFeeConfigRepository creates a new GormVehicleFeeConfigRepository
func NewGormVehicleFeeConfigRepository(db *gorm.DB) *GormVehicleFeeConfigRepository {
	return &GormVehicleFeeConfigRepository{db: db}
}

// FindByClassAndKind finds the price row for a vehicle class and ticket kind
func (r *GormVehicleFeeConfigRepository) FindByClassAndKind(ctx context.Context, class billing.VehicleClass, kind billing.TicketKind) (*billing.VehicleFeeConfig, error) {
	var model models.VehicleFeeConfigModel
	if err := r.db.WithContext(ctx).
		Where("vehicle_class = ? AND ticket_kind = ?", class, kind).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists every configured price
func (r *GormVehicleFeeConfigRepository) FindAll(ctx context.Context) ([]*billing.VehicleFeeConfig, error) {
	var configModels []models.VehicleFeeConfigModel
	if err := r.db.WithContext(ctx).
		Order("vehicle_class ASC, ticket_kind ASC").
		Find(&configModels).Error; err != nil {
		return nil, err
	}
	configs := make([]*billing.VehicleFeeConfig, len(configModels))
	for i := range configModels {
		configs[i] = configModels[i].ToDomain()
	}
	return configs, nil
}

// Upsert inserts the row or replaces the price of the existing (class, kind) row
func (r *GormVehicleFeeConfigRepository) Upsert(ctx context.Context, cfg *billing.VehicleFeeConfig) error {
	model := models.VehicleFeeConfigModelFromDomain(cfg)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "vehicle_class"}, {Name: "ticket_kind"}},
			DoUpdates: clause.AssignmentColumns([]string{"price", "updated_by", "updated_at"}),
		}).
		Create(model).Error
}

// Ensure GormVehicleFeeConfigRepository implements VehicleFeeConfigRepository
var _ billing.VehicleFeeConfigRepository = (*GormVehicleFeeConfigRepository)(nil)
