package router

import (
	"github.com/condo/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// BillingRoutes builds the /billing route group. mw runs on every
// billing route, typically the idempotency replay.
func BillingRoutes(billing *handler.BillingHandler, chargeTypes *handler.ChargeTypeHandler, mw ...gin.HandlerFunc) *DomainGroup {
	g := NewDomainGroup("billing", "/billing").Use(mw...)

	g.POST("/generate", billing.Generate)

	entries := g.Group("entries", "/entries")
	entries.POST("", billing.CreateEntry)
	entries.GET("", billing.ListEntries)
	entries.GET("/unpaid", billing.ListUnpaid)
	entries.GET("/:id", billing.GetEntry)
	entries.PATCH("/:id", billing.UpdateEntry)
	entries.DELETE("/:id", billing.DeleteEntry)
	entries.POST("/:id/pay", billing.PayEntry)
	entries.POST("/:id/renew", billing.RenewEntry)
	entries.GET("/:id/history", billing.EntryHistory)

	g.POST("/utility-bills", billing.CreateUtilityBill)

	g.GET("/stats", billing.Stats)
	g.GET("/stats/breakdown", billing.StatsBreakdown)

	types := g.Group("charge-types", "/charge-types")
	types.POST("", chargeTypes.Create)
	types.GET("", chargeTypes.List)
	types.GET("/:id", chargeTypes.Get)
	types.PUT("/:id", chargeTypes.Update)
	types.DELETE("/:id", chargeTypes.Delete)

	g.GET("/ticket-prices", chargeTypes.ListTicketPrices)
	g.PUT("/ticket-prices", chargeTypes.SetTicketPrice)

	return g
}
