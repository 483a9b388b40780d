package handler

import (
	billingapp "github.com/condo/backend/internal/application/billing"
	"github.com/gin-gonic/gin"
)

// ChargeTypeHandler manages the charge type catalogue and the vehicle fee table
type ChargeTypeHandler struct {
	BaseHandler
	chargeTypes *billingapp.ChargeTypeService
	feeConfig   *billingapp.FeeConfigService
}

// NewChargeTypeHandler creates a new ChargeTypeHandler
func NewChargeTypeHandler(chargeTypes *billingapp.ChargeTypeService, feeConfig *billingapp.FeeConfigService) *ChargeTypeHandler {
	return &ChargeTypeHandler{
		chargeTypes: chargeTypes,
		feeConfig:   feeConfig,
	}
}

// Create adds a charge type
//
// POST /billing/charge-types
func (h *ChargeTypeHandler) Create(c *gin.Context) {
	var req billingapp.CreateChargeTypeRequest
	if !h.BindJSON(c, &req) {
		return
	}
	ct, err := h.chargeTypes.Create(c.Request.Context(), req, actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, ct)
}

// Get returns one charge type
//
// GET /billing/charge-types/:id
func (h *ChargeTypeHandler) Get(c *gin.Context) {
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	ct, err := h.chargeTypes.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ct)
}

// List returns every charge type, or only the required ones with ?required=true
//
// GET /billing/charge-types
func (h *ChargeTypeHandler) List(c *gin.Context) {
	var (
		list []billingapp.ChargeTypeResponse
		err  error
	)
	if c.Query("required") == "true" {
		list, err = h.chargeTypes.ListRequired(c.Request.Context())
	} else {
		list, err = h.chargeTypes.List(c.Request.Context())
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, list)
}

// Update replaces a charge type's attributes
//
// PUT /billing/charge-types/:id
func (h *ChargeTypeHandler) Update(c *gin.Context) {
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	var req billingapp.UpdateChargeTypeRequest
	if !h.BindJSON(c, &req) {
		return
	}
	ct, err := h.chargeTypes.Update(c.Request.Context(), id, req, actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ct)
}

// Delete removes a charge type
//
// DELETE /billing/charge-types/:id
func (h *ChargeTypeHandler) Delete(c *gin.Context) {
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	if err := h.chargeTypes.Delete(c.Request.Context(), id, actor(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListTicketPrices returns the vehicle fee table
//
// GET /billing/ticket-prices
func (h *ChargeTypeHandler) ListTicketPrices(c *gin.Context) {
	prices, err := h.feeConfig.ListTicketPrices(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, prices)
}

// SetTicketPrice creates or replaces one row of the vehicle fee table
//
// PUT /billing/ticket-prices
func (h *ChargeTypeHandler) SetTicketPrice(c *gin.Context) {
	var req billingapp.SetTicketPriceRequest
	if !h.BindJSON(c, &req) {
		return
	}
	price, err := h.feeConfig.SetTicketPrice(c.Request.Context(), req, actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, price)
}
