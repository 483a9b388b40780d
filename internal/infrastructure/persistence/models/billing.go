package models

import (
	"time"

	"github.com/condo/backend/internal/domain/billing"
	"github.com/condo/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ChargeTypeModel is the persistence model for the ChargeType aggregate root.
type ChargeTypeModel struct {
	AggregateModel
	Name        string              `gorm:"type:varchar(100);not null;uniqueIndex:idx_charge_types_name"`
	Description string              `gorm:"type:text"`
	PricingMode billing.PricingMode `gorm:"type:varchar(20);not null"`
	UnitPrice   decimal.Decimal     `gorm:"type:decimal(18,2);not null"`
	Required    bool                `gorm:"not null;default:false;index"`
	CreatedBy   string              `gorm:"type:varchar(100);not null"`
}

// TableName returns the table name for GORM
func (ChargeTypeModel) TableName() string {
	return "charge_types"
}

// ToDomain converts the persistence model to a domain ChargeType.
func (m *ChargeTypeModel) ToDomain() *billing.ChargeType {
	return &billing.ChargeType{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Description:       m.Description,
		PricingMode:       m.PricingMode,
		UnitPrice:         valueobject.NewMoneyVND(m.UnitPrice),
		Required:          m.Required,
		CreatedBy:         m.CreatedBy,
	}
}

// FromDomain populates the persistence model from a domain ChargeType.
func (m *ChargeTypeModel) FromDomain(ct *billing.ChargeType) {
	m.FromDomainAggregateRoot(ct.BaseAggregateRoot)
	m.Name = ct.Name
	m.Description = ct.Description
	m.PricingMode = ct.PricingMode
	m.UnitPrice = ct.UnitPrice.Amount()
	m.Required = ct.Required
	m.CreatedBy = ct.CreatedBy
}

// ChargeTypeModelFromDomain creates a new persistence model from a domain ChargeType.
func ChargeTypeModelFromDomain(ct *billing.ChargeType) *ChargeTypeModel {
	m := &ChargeTypeModel{}
	m.FromDomain(ct)
	return m
}

// LedgerEntryModel is the persistence model for the LedgerEntry aggregate root.
// (payer_id, charge_key, period_key) is unique.
type LedgerEntryModel struct {
	AggregateModel
	PayerID      uuid.UUID             `gorm:"type:uuid;not null;uniqueIndex:idx_ledger_entries_charge,priority:1"`
	PayerType    billing.PayerType     `gorm:"type:varchar(20);not null"`
	Category     billing.Category      `gorm:"type:varchar(20);not null;index"`
	ChargeKey    string                `gorm:"type:varchar(64);not null;uniqueIndex:idx_ledger_entries_charge,priority:2"`
	ChargeTypeID *uuid.UUID            `gorm:"type:uuid;index"`
	PeriodKey    string                `gorm:"type:varchar(10);not null;uniqueIndex:idx_ledger_entries_charge,priority:3;index"`
	ValidFrom    time.Time             `gorm:"type:date;not null"`
	ValidTo      time.Time             `gorm:"type:date;not null"`
	Amount       decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	Status       billing.PaymentStatus `gorm:"type:varchar(10);not null;default:'UNPAID';index"`
	PaidDate     *time.Time            `gorm:"type:date"`
	PaidBy       *string               `gorm:"type:varchar(200)"`
	CollectedBy  *string               `gorm:"type:varchar(100)"`
	CreatedBy    string                `gorm:"type:varchar(100);not null"`
}

// TableName returns the table name for GORM
func (LedgerEntryModel) TableName() string {
	return "ledger_entries"
}

// ToDomain converts the persistence model to a domain LedgerEntry.
func (m *LedgerEntryModel) ToDomain() (*billing.LedgerEntry, error) {
	kind, err := billing.ParseChargeKind(m.ChargeKey)
	if err != nil {
		return nil, err
	}
	return &billing.LedgerEntry{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		PayerID:           m.PayerID,
		PayerType:         m.PayerType,
		Kind:              kind,
		PeriodKey:         m.PeriodKey,
		ValidFrom:         valueobject.DateOf(m.ValidFrom),
		ValidTo:           valueobject.DateOf(m.ValidTo),
		Amount:            valueobject.NewMoneyVND(m.Amount),
		Status:            m.Status,
		PaidDate:          m.PaidDate,
		PaidBy:            m.PaidBy,
		CollectedBy:       m.CollectedBy,
		CreatedBy:         m.CreatedBy,
	}, nil
}

// FromDomain populates the persistence model from a domain LedgerEntry.
func (m *LedgerEntryModel) FromDomain(e *billing.LedgerEntry) {
	m.FromDomainAggregateRoot(e.BaseAggregateRoot)
	m.PayerID = e.PayerID
	m.PayerType = e.PayerType
	m.Category = e.Kind.Category()
	m.ChargeKey = e.Kind.Key()
	m.ChargeTypeID = nil
	if id := e.Kind.ChargeTypeID(); id != uuid.Nil {
		m.ChargeTypeID = &id
	}
	m.PeriodKey = e.PeriodKey
	m.ValidFrom = e.ValidFrom
	m.ValidTo = e.ValidTo
	m.Amount = e.Amount.Amount()
	m.Status = e.Status
	m.PaidDate = e.PaidDate
	m.PaidBy = e.PaidBy
	m.CollectedBy = e.CollectedBy
	m.CreatedBy = e.CreatedBy
}

// LedgerEntryModelFromDomain creates a new persistence model from a domain LedgerEntry.
func LedgerEntryModelFromDomain(e *billing.LedgerEntry) *LedgerEntryModel {
	m := &LedgerEntryModel{}
	m.FromDomain(e)
	return m
}

// VehicleFeeConfigModel is the persistence model for the ticket price table.
type VehicleFeeConfigModel struct {
	BaseModel
	VehicleClass billing.VehicleClass `gorm:"type:varchar(20);not null;uniqueIndex:idx_vehicle_fee_configs_class_kind,priority:1"`
	TicketKind   billing.TicketKind   `gorm:"type:varchar(20);not null;uniqueIndex:idx_vehicle_fee_configs_class_kind,priority:2"`
	Price        decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	UpdatedBy    string               `gorm:"type:varchar(100);not null"`
}

// TableName returns the table name for GORM
func (VehicleFeeConfigModel) TableName() string {
	return "vehicle_fee_configs"
}

// ToDomain converts the persistence model to a domain VehicleFeeConfig.
func (m *VehicleFeeConfigModel) ToDomain() *billing.VehicleFeeConfig {
	return &billing.VehicleFeeConfig{
		BaseEntity:   m.BaseModel.ToDomain(),
		VehicleClass: m.VehicleClass,
		TicketKind:   m.TicketKind,
		Price:        valueobject.NewMoneyVND(m.Price),
		UpdatedBy:    m.UpdatedBy,
	}
}

// VehicleFeeConfigModelFromDomain creates a new persistence model from a domain VehicleFeeConfig.
func VehicleFeeConfigModelFromDomain(c *billing.VehicleFeeConfig) *VehicleFeeConfigModel {
	m := &VehicleFeeConfigModel{
		VehicleClass: c.VehicleClass,
		TicketKind:   c.TicketKind,
		Price:        c.Price.Amount(),
		UpdatedBy:    c.UpdatedBy,
	}
	m.FromDomainBaseEntity(c.BaseEntity)
	return m
}
