package billing

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"path"
	"sort"
	"time"

	"github.com/condo/backend/internal/domain/billing"
	"github.com/condo/backend/internal/infrastructure/logger"
	"github.com/condo/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const exportContentType = "text/csv; charset=utf-8"

var exportHeader = []string{
	"entry_id", "payer_type", "payer_id", "charge_kind", "category", "period_key",
	"valid_from", "valid_to", "amount", "currency", "status",
	"paid_date", "paid_by", "collected_by", "created_by",
}

// ExportStore keeps export files and hands out time-limited download links
type ExportStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	DownloadURL(ctx context.Context, key string) (string, time.Time, error)
}

// ExportService writes a period's ledger to object storage as CSV
type ExportService struct {
	ledger billing.LedgerEntryRepository
	store  ExportStore
	prefix string
	clock  Clock
	logger *zap.Logger
}

// NewExportService creates a new ExportService. Files are stored under prefix.
func NewExportService(
	ledger billing.LedgerEntryRepository,
	store ExportStore,
	prefix string,
	clock Clock,
	logger *zap.Logger,
) *ExportService {
	return &ExportService{ledger: ledger, store: store, prefix: prefix, clock: clock, logger: logger}
}

// ExportPeriod snapshots every entry of periodKey into a new file and returns
// a download link. A period without entries still yields a header-only file.
func (s *ExportService) ExportPeriod(ctx context.Context, periodKey, actor string) (*LedgerExportResponse, error) {
	if _, err := ParsePeriod(periodKey); err != nil {
		return nil, err
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "billing", "export_period",
		telemetry.WithAttribute(telemetry.SpanAttrPeriod, periodKey),
	)
	defer span.End()

	entries, err := s.ledger.FindByPeriod(ctx, periodKey)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	data, err := encodeLedgerCSV(entries)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	now := s.clock().UTC()
	key := path.Join(s.prefix, periodKey, fmt.Sprintf("%s-%s.csv", now.Format("20060102T150405Z"), uuid.NewString()[:8]))
	if err := s.store.Upload(ctx, key, data, exportContentType); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("upload ledger export: %w", err)
	}
	link, expiresAt, err := s.store.DownloadURL(ctx, key)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("sign ledger export: %w", err)
	}

	logger.WithTraceContext(ctx, s.logger).Info("Ledger exported",
		logger.Period(periodKey),
		logger.Actor(billing.ResolveActor(actor)),
		zap.String("key", key),
		zap.Int("rows", len(entries)),
	)
	return &LedgerExportResponse{
		PeriodKey:   periodKey,
		Key:         key,
		Rows:        len(entries),
		DownloadURL: link,
		ExpiresAt:   expiresAt,
		CreatedAt:   now,
	}, nil
}

// encodeLedgerCSV writes one row per entry ordered by charge kind then payer
func encodeLedgerCSV(entries []*billing.LedgerEntry) ([]byte, error) {
	sorted := make([]*billing.LedgerEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		ki, kj := sorted[i].Kind.Key(), sorted[j].Kind.Key()
		if ki != kj {
			return ki < kj
		}
		return sorted[i].PayerID.String() < sorted[j].PayerID.String()
	})

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}
	for _, e := range sorted {
		row := []string{
			e.ID.String(),
			string(e.PayerType),
			e.PayerID.String(),
			e.Kind.Key(),
			string(e.Kind.Category()),
			e.PeriodKey,
			e.ValidFrom.Format(time.DateOnly),
			e.ValidTo.Format(time.DateOnly),
			e.Amount.Amount().StringFixed(2),
			string(e.Amount.Currency()),
			string(e.Status),
			optionalDay(e.PaidDate),
			optionalString(e.PaidBy),
			optionalString(e.CollectedBy),
			e.CreatedBy,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func optionalDay(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.DateOnly)
}

func optionalString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
