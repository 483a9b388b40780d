package models

import (
	"time"

	"github.com/google/uuid"
)

// HistoryRecordModel is an append-only audit row
type HistoryRecordModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	EntityType string    `gorm:"type:varchar(50);not null;index:idx_history_records_entity,priority:1"`
	EntityID   uuid.UUID `gorm:"type:uuid;not null;index:idx_history_records_entity,priority:2"`
	Action     string    `gorm:"type:varchar(30);not null"`
	Details    string    `gorm:"type:text"`
	Actor      string    `gorm:"type:varchar(100);not null"`
	CreatedAt  time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (HistoryRecordModel) TableName() string {
	return "history_records"
}
