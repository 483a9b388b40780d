package persistence

import (
	"context"

	"github.com/condo/backend/internal/domain/billing"
	"github.com/condo/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormHistoryRepository implements HistoryRepository using GORM
type GormHistoryRepository struct {
	db *gorm.DB
}

// NewGormHistoryRepository creates a new GormHistoryRepository
func NewGormHistoryRepository(db *gorm.DB) *GormHistoryRepository {
	return &GormHistoryRepository{db: db}
}

// Append stores an audit row
func (r *GormHistoryRepository) Append(ctx context.Context, record *billing.HistoryRecord) error {
	model := &models.HistoryRecordModel{
		ID:         record.ID,
		EntityType: record.EntityType,
		EntityID:   record.EntityID,
		Action:     record.Action,
		Details:    record.Details,
		Actor:      record.Actor,
		CreatedAt:  record.CreatedAt,
	}
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByEntity lists the audit trail of one entity, oldest first
func (r *GormHistoryRepository) FindByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]*billing.HistoryRecord, error) {
	var recordModels []models.HistoryRecordModel
	if err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at ASC").
		Find(&recordModels).Error; err != nil {
		return nil, err
	}
	records := make([]*billing.HistoryRecord, len(recordModels))
	for i, m := range recordModels {
		records[i] = &billing.HistoryRecord{
			ID:         m.ID,
			EntityType: m.EntityType,
			EntityID:   m.EntityID,
			Action:     m.Action,
			Details:    m.Details,
			Actor:      m.Actor,
			CreatedAt:  m.CreatedAt,
		}
	}
	return records, nil
}

// Ensure GormHistoryRepository implements HistoryRepository
var _ billing.HistoryRepository = (*GormHistoryRepository)(nil)
