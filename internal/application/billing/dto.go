package billing

import (
	"time"

	"github.com/condo/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GenerateRequest asks for one generation run over an explicit month
type GenerateRequest struct {
	Cohort string `json:"cohort" binding:"required,oneof=FEES VEHICLE_MONTHLY"`
	Year   int    `json:"year" binding:"required,min=2000,max=9999"`
	Month  int    `json:"month" binding:"required,min=1,max=12"`
}

// CreateLedgerEntryRequest creates a single obligation.
// Day is required for VEHICLE:DAILY; Year and Month for every other kind.
// Amount is only read for UTILITY kinds, whose consumption is metered elsewhere.
type CreateLedgerEntryRequest struct {
	PayerID    uuid.UUID        `json:"payer_id" binding:"required"`
	ChargeKind string           `json:"charge_kind" binding:"required,max=64"`
	Year       int              `json:"year" binding:"omitempty,min=2000,max=9999"`
	Month      int              `json:"month" binding:"omitempty,min=1,max=12"`
	Day        string           `json:"day" binding:"omitempty,datetime=2006-01-02"`
	Amount     *decimal.Decimal `json:"amount"`
}

// CreateUtilityBillRequest records a metered utility bill for a household
type CreateUtilityBillRequest struct {
	HouseholdID uuid.UUID       `json:"household_id" binding:"required"`
	UtilityType string          `json:"utility_type" binding:"required"`
	Year        int             `json:"year" binding:"required,min=2000,max=9999"`
	Month       int             `json:"month" binding:"required,min=1,max=12"`
	Amount      decimal.Decimal `json:"amount"`
}

// MarkPaidRequest settles an entry. PaidDate defaults to today.
type MarkPaidRequest struct {
	CollectedBy string `json:"collected_by" binding:"max=100"`
	PaidBy      string `json:"paid_by" binding:"max=100"`
	PaidDate    string `json:"paid_date" binding:"omitempty,datetime=2006-01-02"`
}

// UpdateEntryRequest is the administrative edit of an unpaid entry
type UpdateEntryRequest struct {
	Amount      *decimal.Decimal `json:"amount"`
	Paid        *bool            `json:"paid"`
	CollectedBy string           `json:"collected_by" binding:"max=100"`
	PaidBy      string           `json:"paid_by" binding:"max=100"`
}

// LedgerEntryResponse represents a ledger entry in API responses
type LedgerEntryResponse struct {
	ID          uuid.UUID       `json:"id"`
	PayerID     uuid.UUID       `json:"payer_id"`
	PayerType   string          `json:"payer_type"`
	ChargeKind  string          `json:"charge_kind"`
	Category    string          `json:"category"`
	PeriodKey   string          `json:"period_key"`
	ValidFrom   time.Time       `json:"valid_from"`
	ValidTo     time.Time       `json:"valid_to"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status"`
	PaidDate    *time.Time      `json:"paid_date,omitempty"`
	PaidBy      *string         `json:"paid_by,omitempty"`
	CollectedBy *string         `json:"collected_by,omitempty"`
	CreatedBy   string          `json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Version     int             `json:"version"`
}

// ToLedgerEntryResponse converts a domain LedgerEntry to LedgerEntryResponse
func ToLedgerEntryResponse(e *billing.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:          e.ID,
		PayerID:     e.PayerID,
		PayerType:   string(e.PayerType),
		ChargeKind:  e.Kind.Key(),
		Category:    string(e.Kind.Category()),
		PeriodKey:   e.PeriodKey,
		ValidFrom:   e.ValidFrom,
		ValidTo:     e.ValidTo,
		Amount:      e.Amount.Amount(),
		Status:      string(e.Status),
		PaidDate:    e.PaidDate,
		PaidBy:      e.PaidBy,
		CollectedBy: e.CollectedBy,
		CreatedBy:   e.CreatedBy,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
		Version:     e.Version,
	}
}

// ToLedgerEntryResponses converts a slice of entries
func ToLedgerEntryResponses(entries []*billing.LedgerEntry) []LedgerEntryResponse {
	responses := make([]LedgerEntryResponse, len(entries))
	for i, e := range entries {
		responses[i] = ToLedgerEntryResponse(e)
	}
	return responses
}

// CreateChargeTypeRequest registers a new charge type
type CreateChargeTypeRequest struct {
	Name        string          `json:"name" binding:"required,min=1,max=100"`
	Description string          `json:"description" binding:"max=500"`
	PricingMode string          `json:"pricing_mode" binding:"required,oneof=PER_AREA FLAT"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Required    bool            `json:"required"`
}

// UpdateChargeTypeRequest replaces the editable attributes of a charge type
type UpdateChargeTypeRequest struct {
	Name        string          `json:"name" binding:"required,min=1,max=100"`
	Description string          `json:"description" binding:"max=500"`
	PricingMode string          `json:"pricing_mode" binding:"required,oneof=PER_AREA FLAT"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Required    bool            `json:"required"`
}

// ChargeTypeResponse represents a charge type in API responses
type ChargeTypeResponse struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	PricingMode string          `json:"pricing_mode"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Required    bool            `json:"required"`
	CreatedBy   string          `json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Version     int             `json:"version"`
}

// ToChargeTypeResponse converts a domain ChargeType to ChargeTypeResponse
func ToChargeTypeResponse(ct *billing.ChargeType) ChargeTypeResponse {
	return ChargeTypeResponse{
		ID:          ct.ID,
		Name:        ct.Name,
		Description: ct.Description,
		PricingMode: ct.PricingMode.String(),
		UnitPrice:   ct.UnitPrice.Amount(),
		Required:    ct.Required,
		CreatedBy:   ct.CreatedBy,
		CreatedAt:   ct.CreatedAt,
		UpdatedAt:   ct.UpdatedAt,
		Version:     ct.Version,
	}
}

// SetTicketPriceRequest sets the price of one vehicle class and ticket kind
type SetTicketPriceRequest struct {
	VehicleClass string          `json:"vehicle_class" binding:"required"`
	TicketKind   string          `json:"ticket_kind" binding:"required"`
	Price        decimal.Decimal `json:"price"`
}

// TicketPriceResponse represents a vehicle fee table row
type TicketPriceResponse struct {
	VehicleClass string          `json:"vehicle_class"`
	TicketKind   string          `json:"ticket_kind"`
	Price        decimal.Decimal `json:"price"`
	UpdatedBy    string          `json:"updated_by"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ToTicketPriceResponse converts a fee config row
func ToTicketPriceResponse(cfg *billing.VehicleFeeConfig) TicketPriceResponse {
	return TicketPriceResponse{
		VehicleClass: string(cfg.VehicleClass),
		TicketKind:   string(cfg.TicketKind),
		Price:        cfg.Price.Amount(),
		UpdatedBy:    cfg.UpdatedBy,
		UpdatedAt:    cfg.UpdatedAt,
	}
}

// FailedPair identifies the pair that stopped a generation run
type FailedPair struct {
	PayerID   uuid.UUID `json:"payer_id"`
	ChargeKey string    `json:"charge_key"`
}

// GenerationReport summarises one generation run
type GenerationReport struct {
	Cohort    string      `json:"cohort"`
	PeriodKey string      `json:"period_key"`
	Created   int         `json:"created"`
	Skipped   int         `json:"skipped"`
	FailedAt  *FailedPair `json:"failed_at,omitempty"`
}

// HistoryRecordResponse represents one audit row
type HistoryRecordResponse struct {
	ID        uuid.UUID `json:"id"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	Actor     string    `json:"actor"`
	CreatedAt time.Time `json:"created_at"`
}

// ExportRequest selects the month to export
type ExportRequest struct {
	Year  int `json:"year" binding:"required,min=2000,max=9999"`
	Month int `json:"month" binding:"required,min=1,max=12"`
}

// LedgerExportResponse points at a stored ledger export
type LedgerExportResponse struct {
	PeriodKey   string    `json:"period_key"`
	Key         string    `json:"key"`
	Rows        int       `json:"rows"`
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
}
