package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/condo/backend/internal/domain/billing"
	"github.com/condo/backend/internal/domain/shared"
	"github.com/condo/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormLedgerEntryRepository implements LedgerEntryRepository using GORM
type GormLedgerEntryRepository struct {
	db *gorm.DB
}

// NewGormLedgerEntryRepository creates a new GormLedgerEntryRepository
func NewGormLedgerEntryRepository(db *gorm.DB) *GormLedgerEntryRepository {
	return &GormLedgerEntryRepository{db: db}
}

// WithTx returns a new repository instance with the given transaction
func (r *GormLedgerEntryRepository) WithTx(tx *gorm.DB) *GormLedgerEntryRepository {
	return &GormLedgerEntryRepository{db: tx}
}

// Create inserts the entry, doing nothing when the (payer, charge, period) key is taken
func (r *GormLedgerEntryRepository) Create(ctx context.Context, entry *billing.LedgerEntry) error {
	model := models.LedgerEntryModelFromDomain(entry)
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "payer_id"}, {Name: "charge_key"}, {Name: "period_key"}},
			DoNothing: true,
		}).
		Create(model)
	if result.Error != nil {
		return fmt.Errorf("failed to create ledger entry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrDuplicateCharge
	}
	return nil
}

// FindByID finds a ledger entry by its ID
func (r *GormLedgerEntryRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.LedgerEntry, error) {
	var model models.LedgerEntryModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindByPayer finds all entries of one payer
func (r *GormLedgerEntryRepository) FindByPayer(ctx context.Context, payerID uuid.UUID) ([]*billing.LedgerEntry, error) {
	var entryModels []models.LedgerEntryModel
	if err := r.db.WithContext(ctx).
		Where("payer_id = ?", payerID).
		Order("valid_from DESC, charge_key ASC").
		Find(&entryModels).Error; err != nil {
		return nil, err
	}
	return toLedgerEntries(entryModels)
}

// FindByPeriod finds all entries for a period key
func (r *GormLedgerEntryRepository) FindByPeriod(ctx context.Context, periodKey string) ([]*billing.LedgerEntry, error) {
	var entryModels []models.LedgerEntryModel
	if err := r.db.WithContext(ctx).
		Where("period_key = ?", periodKey).
		Order("charge_key ASC, created_at ASC").
		Find(&entryModels).Error; err != nil {
		return nil, err
	}
	return toLedgerEntries(entryModels)
}

// FindByChargeType finds all entries referencing a registry fee
func (r *GormLedgerEntryRepository) FindByChargeType(ctx context.Context, chargeTypeID uuid.UUID) ([]*billing.LedgerEntry, error) {
	var entryModels []models.LedgerEntryModel
	if err := r.db.WithContext(ctx).
		Where("charge_type_id = ?", chargeTypeID).
		Order("period_key DESC").
		Find(&entryModels).Error; err != nil {
		return nil, err
	}
	return toLedgerEntries(entryModels)
}

// FindUnpaid finds unpaid entries with filtering and pagination
func (r *GormLedgerEntryRepository) FindUnpaid(ctx context.Context, filter billing.LedgerFilter) (shared.Paginated[*billing.LedgerEntry], error) {
	query := r.db.WithContext(ctx).
		Model(&models.LedgerEntryModel{}).
		Where("status = ?", billing.PaymentStatusUnpaid)
	query = r.applyFilter(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[*billing.LedgerEntry]{}, err
	}

	orderBy := ValidateSortField(filter.OrderBy, LedgerSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", orderBy, orderDir))
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	var entryModels []models.LedgerEntryModel
	if err := query.Find(&entryModels).Error; err != nil {
		return shared.Paginated[*billing.LedgerEntry]{}, err
	}
	entries, err := toLedgerEntries(entryModels)
	if err != nil {
		return shared.Paginated[*billing.LedgerEntry]{}, err
	}
	return shared.NewPaginated(entries, total, filter.Page, filter.PageSize), nil
}

func (r *GormLedgerEntryRepository) applyFilter(query *gorm.DB, filter billing.LedgerFilter) *gorm.DB {
	if filter.PayerID != nil {
		query = query.Where("payer_id = ?", *filter.PayerID)
	}
	if filter.PeriodKey != "" {
		query = query.Where("period_key = ?", filter.PeriodKey)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.ChargeKey != "" {
		query = query.Where("charge_key = ?", filter.ChargeKey)
	}
	return query
}

// ExistsByChargeType checks whether any entry references a registry fee
func (r *GormLedgerEntryRepository) ExistsByChargeType(ctx context.Context, chargeTypeID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.LedgerEntryModel{}).
		Where("charge_type_id = ?", chargeTypeID).
		Limit(1).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// SaveWithLock writes an unpaid entry, guarded by its version
func (r *GormLedgerEntryRepository) SaveWithLock(ctx context.Context, entry *billing.LedgerEntry) error {
	result := r.db.WithContext(ctx).
		Model(&models.LedgerEntryModel{}).
		Where("id = ? AND version = ? AND status = ?", entry.ID, entry.Version-1, billing.PaymentStatusUnpaid).
		Updates(mutableColumns(entry))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.classifyMissedUpdate(ctx, entry.ID)
	}
	return nil
}

// Settle re-reads the entry, applies fn and writes it back conditionally on UNPAID
func (r *GormLedgerEntryRepository) Settle(ctx context.Context, id uuid.UUID, fn billing.Settler) (*billing.LedgerEntry, error) {
	var settled *billing.LedgerEntry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model models.LedgerEntryModel
		if err := tx.First(&model, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}
		entry, err := model.ToDomain()
		if err != nil {
			return err
		}
		if err := fn(entry); err != nil {
			return err
		}

		result := tx.Model(&models.LedgerEntryModel{}).
			Where("id = ? AND status = ?", id, billing.PaymentStatusUnpaid).
			Updates(mutableColumns(entry))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrAlreadyPaid
		}
		settled = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return settled, nil
}

// Delete removes an unpaid entry
func (r *GormLedgerEntryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, billing.PaymentStatusUnpaid).
		Delete(&models.LedgerEntryModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		err := r.classifyMissedUpdate(ctx, id)
		if errors.Is(err, shared.ErrAlreadyPaid) {
			return shared.NewDomainError(shared.CodeInvalidState, "Paid entries cannot be deleted")
		}
		return err
	}
	return nil
}

// mutableColumns lists the columns an entry may change after creation
func mutableColumns(entry *billing.LedgerEntry) map[string]any {
	return map[string]any{
		"amount":       entry.Amount.Amount(),
		"status":       entry.Status,
		"paid_date":    entry.PaidDate,
		"paid_by":      entry.PaidBy,
		"collected_by": entry.CollectedBy,
		"version":      entry.Version,
		"updated_at":   entry.UpdatedAt,
	}
}

// classifyMissedUpdate explains why a conditional write touched no rows
func (r *GormLedgerEntryRepository) classifyMissedUpdate(ctx context.Context, id uuid.UUID) error {
	var model models.LedgerEntryModel
	if err := r.db.WithContext(ctx).Select("id", "status").First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.ErrNotFound
		}
		return err
	}
	if model.Status == billing.PaymentStatusPaid {
		return shared.ErrAlreadyPaid
	}
	return shared.ErrConcurrencyConflict
}

// ledgerTotalsRow is the scan target for SumByPeriod
type ledgerTotalsRow struct {
	ChargeKey  string
	Expected   string
	Collected  string
	EntryCount int64
	PaidCount  int64
}

// SumByPeriod aggregates amounts per charge kind in SQL
func (r *GormLedgerEntryRepository) SumByPeriod(ctx context.Context, periodKey string) ([]billing.AmountTotals, error) {
	var rows []ledgerTotalsRow
	err := r.db.WithContext(ctx).
		Model(&models.LedgerEntryModel{}).
		Select(`charge_key,
			CAST(COALESCE(SUM(amount), 0) AS TEXT) AS expected,
			CAST(COALESCE(SUM(CASE WHEN status = ? THEN amount ELSE 0 END), 0) AS TEXT) AS collected,
			COUNT(*) AS entry_count,
			SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS paid_count`,
			billing.PaymentStatusPaid, billing.PaymentStatusPaid).
		Where("period_key = ?", periodKey).
		Group("charge_key").
		Order("charge_key ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate ledger for %s: %w", periodKey, err)
	}

	totals := make([]billing.AmountTotals, len(rows))
	for i, row := range rows {
		expected, err := parseDecimal(row.Expected)
		if err != nil {
			return nil, err
		}
		collected, err := parseDecimal(row.Collected)
		if err != nil {
			return nil, err
		}
		totals[i] = billing.AmountTotals{
			ChargeKey:  row.ChargeKey,
			Expected:   expected,
			Collected:  collected,
			EntryCount: row.EntryCount,
			PaidCount:  row.PaidCount,
		}
	}
	return totals, nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid decimal %q: %w", s, err)
	}
	return d, nil
}

func toLedgerEntries(entryModels []models.LedgerEntryModel) ([]*billing.LedgerEntry, error) {
	entries := make([]*billing.LedgerEntry, len(entryModels))
	for i := range entryModels {
		entry, err := entryModels[i].ToDomain()
		if err != nil {
			return nil, fmt.Errorf("ledger entry %s: %w", entryModels[i].ID, err)
		}
		entries[i] = entry
	}
	return entries, nil
}

// Ensure GormLedgerEntryRepository implements LedgerEntryRepository
var _ billing.LedgerEntryRepository = (*GormLedgerEntryRepository)(nil)
