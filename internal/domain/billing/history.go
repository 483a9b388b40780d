package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Audit actions
const (
	ActionCreate = "CREATE"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
	ActionPay    = "PAY"
	ActionRenew  = "RENEW"
)

// Audited entity types
const (
	EntityChargeType  = "CHARGE_TYPE"
	EntityLedgerEntry = "LEDGER_ENTRY"
	EntityFeeConfig   = "VEHICLE_FEE_CONFIG"
)

// HistoryRecord is one audit trail row
type HistoryRecord struct {
	ID         uuid.UUID
	EntityType string
	EntityID   uuid.UUID
	Action     string
	Details    string
	Actor      string
	CreatedAt  time.Time
}

// NewHistoryRecord creates an audit row stamped now
func NewHistoryRecord(entityType string, entityID uuid.UUID, action, details, actor string) *HistoryRecord {
	return &HistoryRecord{
		ID:         uuid.New(),
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Details:    details,
		Actor:      ResolveActor(actor),
		CreatedAt:  time.Now(),
	}
}

// HistoryRepository stores audit rows
type HistoryRepository interface {
	Append(ctx context.Context, record *HistoryRecord) error
	FindByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]*HistoryRecord, error)
}
