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

// GormChargeTypeRepository implements ChargeTypeRepository using GORM
type GormChargeTypeRepository struct {
	db *gorm.DB
}

// NewGormChargeTypeRepository creates a new GormChargeTypeRepository
func NewGormChargeTypeRepository(db *gorm.DB) *GormChargeTypeRepository {
	return &GormChargeTypeRepository{db: db}
}

// WithTx returns a new repository instance with the given transaction
func (r *GormChargeTypeRepository) WithTx(tx *gorm.DB) *GormChargeTypeRepository {
	return &GormChargeTypeRepository{db: tx}
}

// FindByID finds a charge type by its ID
func (r *GormChargeTypeRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.ChargeType, error) {
	var model models.ChargeTypeModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByName finds a charge type by its unique name
func (r *GormChargeTypeRepository) FindByName(ctx context.Context, name string) (*billing.ChargeType, error) {
	var model models.ChargeTypeModel
	if err := r.db.WithContext(ctx).First(&model, "name = ?", billing.NormalizeChargeTypeName(name)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all charge types ordered by name
func (r *GormChargeTypeRepository) FindAll(ctx context.Context) ([]*billing.ChargeType, error) {
	return r.find(ctx, r.db.WithContext(ctx))
}

// FindRequired finds the charge types every household must pay
func (r *GormChargeTypeRepository) FindRequired(ctx context.Context) ([]*billing.ChargeType, error) {
	return r.find(ctx, r.db.WithContext(ctx).Where("required = ?", true))
}

func (r *GormChargeTypeRepository) find(_ context.Context, query *gorm.DB) ([]*billing.ChargeType, error) {
	var typeModels []models.ChargeTypeModel
	if err := query.Order("name ASC").Find(&typeModels).Error; err != nil {
		return nil, err
	}
	types := make([]*billing.ChargeType, len(typeModels))
	for i := range typeModels {
		types[i] = typeModels[i].ToDomain()
	}
	return types, nil
}

// ExistsByName checks whether a name is taken, optionally ignoring one ID
func (r *GormChargeTypeRepository) ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&models.ChargeTypeModel{}).
		Where("name = ?", billing.NormalizeChargeTypeName(name))
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a charge type
func (r *GormChargeTypeRepository) Save(ctx context.Context, ct *billing.ChargeType) error {
	model := models.ChargeTypeModelFromDomain(ct)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes a charge type
func (r *GormChargeTypeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ChargeTypeModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormChargeTypeRepository implements ChargeTypeRepository
var _ billing.ChargeTypeRepository = (*GormChargeTypeRepository)(nil)
