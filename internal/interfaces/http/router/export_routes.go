package router

import (
	"github.com/condo/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// ExportRoutes builds the /billing/exports group. It is only registered
// when object storage is configured.
func ExportRoutes(exports *handler.ExportHandler, mw ...gin.HandlerFunc) *DomainGroup {
	g := NewDomainGroup("exports", "/billing/exports").Use(mw...)
	g.POST("", exports.ExportPeriod)
	return g
}
