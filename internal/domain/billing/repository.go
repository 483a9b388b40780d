package billing

import (
	"context"

	"github.com/condo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ChargeTypeRepository defines the interface for the charge type registry
type ChargeTypeRepository interface {
	// FindByID retrieves a charge type by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*ChargeType, error)

	// FindByName retrieves a charge type by its unique name
	FindByName(ctx context.Context, name string) (*ChargeType, error)

	// FindAll retrieves all charge types ordered by name
	FindAll(ctx context.Context) ([]*ChargeType, error)

	// FindRequired retrieves the charge types every household must pay
	FindRequired(ctx context.Context) ([]*ChargeType, error)

	// ExistsByName checks whether a name is taken, optionally ignoring one ID
	ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error)

	// Save creates or updates a charge type
	Save(ctx context.Context, ct *ChargeType) error

	// Delete removes a charge type
	Delete(ctx context.Context, id uuid.UUID) error
}

// LedgerFilter defines filtering options for ledger queries
type LedgerFilter struct {
	shared.Filter
	PayerID   *uuid.UUID
	PeriodKey string
	Category  Category
	ChargeKey string
}

// DefaultLedgerFilter returns a filter with default values
func DefaultLedgerFilter() LedgerFilter {
	return LedgerFilter{Filter: shared.DefaultFilter()}
}

// Settler applies the settlement transition to a freshly read entry
type Settler func(entry *LedgerEntry) error

// LedgerEntryRepository is the charge ledger
type LedgerEntryRepository interface {
	// Create inserts a new entry. If an entry with the same payer, charge kind
	// and period already exists nothing is written and ErrDuplicateCharge is returned.
	Create(ctx context.Context, entry *LedgerEntry) error

	// FindByID retrieves an entry by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*LedgerEntry, error)

	// FindByPayer retrieves all entries of one payer, newest period first
	FindByPayer(ctx context.Context, payerID uuid.UUID) ([]*LedgerEntry, error)

	// FindByPeriod retrieves all entries of a period key
	FindByPeriod(ctx context.Context, periodKey string) ([]*LedgerEntry, error)

	// FindByChargeType retrieves all entries referencing a registry fee
	FindByChargeType(ctx context.Context, chargeTypeID uuid.UUID) ([]*LedgerEntry, error)

	// FindUnpaid retrieves unpaid entries matching the filter
	FindUnpaid(ctx context.Context, filter LedgerFilter) (shared.Paginated[*LedgerEntry], error)

	// ExistsByChargeType checks whether any entry references a registry fee
	ExistsByChargeType(ctx context.Context, chargeTypeID uuid.UUID) (bool, error)

	// SaveWithLock updates an unpaid entry guarded by its version
	SaveWithLock(ctx context.Context, entry *LedgerEntry) error

	// Settle re-reads the entry inside a transaction, applies fn and writes the
	// result with a conditional update on UNPAID. Exactly one concurrent caller
	// succeeds; the others get ErrAlreadyPaid.
	Settle(ctx context.Context, id uuid.UUID, fn Settler) (*LedgerEntry, error)

	// Delete removes an unpaid entry. Paid entries yield ErrInvalidState.
	Delete(ctx context.Context, id uuid.UUID) error

	// SumByPeriod aggregates expected and collected amounts per charge kind
	SumByPeriod(ctx context.Context, periodKey string) ([]AmountTotals, error)
}

// VehicleFeeConfigRepository is the ticket price table
type VehicleFeeConfigRepository interface {
	// FindByClassAndKind returns ErrNotFound when no row is configured
	FindByClassAndKind(ctx context.Context, class VehicleClass, kind TicketKind) (*VehicleFeeConfig, error)

	// FindAll lists every configured price
	FindAll(ctx context.Context) ([]*VehicleFeeConfig, error)

	// Upsert inserts or replaces the price for the row's class and ticket kind
	Upsert(ctx context.Context, cfg *VehicleFeeConfig) error
}

// PayerRoster reads households and vehicles from master data
type PayerRoster interface {
	ListHouseholds(ctx context.Context) ([]Household, error)
	ListVehicles(ctx context.Context) ([]Vehicle, error)
	FindHousehold(ctx context.Context, id uuid.UUID) (*Household, error)
	FindVehicle(ctx context.Context, id uuid.UUID) (*Vehicle, error)
}
