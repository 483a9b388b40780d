package handler

import (
	"strings"

	billingapp "github.com/condo/backend/internal/application/billing"
	"github.com/condo/backend/internal/domain/billing"
	"github.com/condo/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BillingHandler exposes generation, ledger and settlement operations
type BillingHandler struct {
	BaseHandler
	generation *billingapp.GenerationService
	ledger     *billingapp.LedgerService
	tickets    *billingapp.TicketService
	settlement *billingapp.SettlementService
	utilities  *billingapp.UtilityBillService
	stats      *billingapp.StatsService
}

// NewBillingHandler creates a new BillingHandler
func NewBillingHandler(
	generation *billingapp.GenerationService,
	ledger *billingapp.LedgerService,
	tickets *billingapp.TicketService,
	settlement *billingapp.SettlementService,
	utilities *billingapp.UtilityBillService,
	stats *billingapp.StatsService,
) *BillingHandler {
	return &BillingHandler{
		generation: generation,
		ledger:     ledger,
		tickets:    tickets,
		settlement: settlement,
		utilities:  utilities,
		stats:      stats,
	}
}

// Generate runs one cohort for an explicit month.
// A run stopped by a failure still returns its partial report inside the error
// body's data field.
//
// POST /billing/generate
func (h *BillingHandler) Generate(c *gin.Context) {
	var req billingapp.GenerateRequest
	if !h.BindJSON(c, &req) {
		return
	}
	cohort, err := billing.ParseCohort(req.Cohort)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	period, err := billingapp.NewPeriod(req.Year, req.Month)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	report, err := h.generation.GenerateForPeriod(c.Request.Context(), cohort, period, actor(c))
	if err != nil {
		h.HandleErrorWithData(c, err, report)
		return
	}
	h.Success(c, report)
}

// CreateEntry creates a single ledger entry
//
// POST /billing/entries
func (h *BillingHandler) CreateEntry(c *gin.Context) {
	var req billingapp.CreateLedgerEntryRequest
	if !h.BindJSON(c, &req) {
		return
	}
	entry, err := h.ledger.CreateLedgerEntry(c.Request.Context(), req, actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// GetEntry returns one entry
//
// GET /billing/entries/:id
func (h *BillingHandler) GetEntry(c *gin.Context) {
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	entry, err := h.ledger.GetEntry(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// ListEntries lists entries of one payer or one period key
//
// GET /billing/entries?payer_id=... or ?period_key=2025-01
func (h *BillingHandler) ListEntries(c *gin.Context) {
	ctx := c.Request.Context()
	if raw := c.Query("payer_id"); raw != "" {
		payerID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "payer_id must be a UUID")
			return
		}
		entries, err := h.ledger.ListByPayer(ctx, payerID)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, entries)
		return
	}
	if key := strings.TrimSpace(c.Query("period_key")); key != "" {
		entries, err := h.ledger.ListByPeriod(ctx, key)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, entries)
		return
	}
	h.BadRequest(c, "payer_id or period_key is required")
}

// ListUnpaid lists unpaid entries, oldest period first by default
//
// GET /billing/entries/unpaid
func (h *BillingHandler) ListUnpaid(c *gin.Context) {
	var q dto.UnpaidQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter := billing.DefaultLedgerFilter()
	if q.Page > 0 {
		filter.Page = q.Page
	}
	if q.PageSize > 0 {
		filter.PageSize = q.PageSize
	}
	if q.OrderBy != "" {
		filter.OrderBy = q.OrderBy
	}
	if q.OrderDir != "" {
		filter.OrderDir = q.OrderDir
	}
	filter.PeriodKey = q.PeriodKey
	filter.Category = billing.Category(q.Category)
	if q.PayerID != "" {
		payerID := uuid.MustParse(q.PayerID)
		filter.PayerID = &payerID
	}

	page, err := h.ledger.ListUnpaid(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	successPage(c, page)
}

// UpdateEntry corrects the amount of, or settles, an unpaid entry
//
// PATCH /billing/entries/:id
func (h *BillingHandler) UpdateEntry(c *gin.Context) {
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	var req billingapp.UpdateEntryRequest
	if !h.BindJSON(c, &req) {
		return
	}
	entry, err := h.ledger.UpdateEntry(c.Request.Context(), id, req, actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// PayEntry settles an entry. The body is optional.
//
// POST /billing/entries/:id/pay
func (h *BillingHandler) PayEntry(c *gin.Context) {
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	var req billingapp.MarkPaidRequest
	if c.Request.ContentLength > 0 && !h.BindJSON(c, &req) {
		return
	}
	entry, err := h.settlement.MarkPaid(c.Request.Context(), id, req, actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// RenewEntry issues the next month's ticket from a monthly vehicle ticket
//
// POST /billing/entries/:id/renew
func (h *BillingHandler) RenewEntry(c *gin.Context) {
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	entry, err := h.tickets.Renew(c.Request.Context(), id, actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// DeleteEntry removes an unpaid entry
//
// DELETE /billing/entries/:id
func (h *BillingHandler) DeleteEntry(c *gin.Context) {
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	if err := h.ledger.DeleteEntry(c.Request.Context(), id, actor(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// EntryHistory lists the audit trail of an entry
//
// GET /billing/entries/:id/history
func (h *BillingHandler) EntryHistory(c *gin.Context) {
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	records, err := h.ledger.History(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, records)
}

// CreateUtilityBill records a metered utility bill
//
// POST /billing/utility-bills
func (h *BillingHandler) CreateUtilityBill(c *gin.Context) {
	var req billingapp.CreateUtilityBillRequest
	if !h.BindJSON(c, &req) {
		return
	}
	entry, err := h.utilities.CreateUtilityBill(c.Request.Context(), req, actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// Stats summarises one month
//
// GET /billing/stats?year=2025&month=1
func (h *BillingHandler) Stats(c *gin.Context) {
	period, ok := h.periodQuery(c)
	if !ok {
		return
	}
	summary, err := h.stats.StatsForPeriod(c.Request.Context(), period)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// StatsBreakdown summarises one month per charge kind
//
// GET /billing/stats/breakdown?year=2025&month=1
func (h *BillingHandler) StatsBreakdown(c *gin.Context) {
	period, ok := h.periodQuery(c)
	if !ok {
		return
	}
	groups, err := h.stats.BreakdownForPeriod(c.Request.Context(), period)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, groups)
}

func (h *BillingHandler) periodQuery(c *gin.Context) (string, bool) {
	var q dto.PeriodQuery
	if !h.BindQuery(c, &q) {
		return "", false
	}
	period, err := billingapp.NewPeriod(q.Year, q.Month)
	if err != nil {
		h.HandleError(c, err)
		return "", false
	}
	return period.String(), true
}
