package handler

import (
	billingapp "github.com/condo/backend/internal/application/billing"
	"github.com/gin-gonic/gin"
)

// ExportHandler publishes ledger snapshots to object storage
type ExportHandler struct {
	BaseHandler
	exports *billingapp.ExportService
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(exports *billingapp.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// ExportPeriod writes one month of the ledger as CSV and returns a download link
//
// POST /billing/exports
func (h *ExportHandler) ExportPeriod(c *gin.Context) {
	var req billingapp.ExportRequest
	if !h.BindJSON(c, &req) {
		return
	}
	period, err := billingapp.NewPeriod(req.Year, req.Month)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	result, err := h.exports.ExportPeriod(c.Request.Context(), period.String(), actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}
