package middleware

import (
	"net/http"

	"github.com/condo/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// maxAttributeLength caps header-derived span attributes
const maxAttributeLength = 128

// Tracing starts the server span through otelgin
func Tracing(serviceName string, enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return otelgin.Middleware(serviceName)
}

// SpanEnricher copies the request id and actor onto the active span and marks
// it as failed for error responses. It must run after both Tracing and
// logger.GinMiddleware.
func SpanEnricher() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			ctx := c.Request.Context()
			if id := logger.GetRequestID(ctx); id != "" {
				span.SetAttributes(attribute.String("request_id", truncate(id)))
			}
			if actor := logger.GetActor(ctx); actor != "" {
				span.SetAttributes(attribute.String("actor", truncate(actor)))
			}
		}

		c.Next()

		if !span.IsRecording() {
			return
		}
		status := c.Writer.Status()
		if status >= http.StatusBadRequest {
			span.SetStatus(codes.Error, http.StatusText(status))
			span.SetAttributes(attribute.Int("http.status_code", status))
		}
	}
}

func truncate(s string) string {
	if len(s) > maxAttributeLength {
		return s[:maxAttributeLength]
	}
	return s
}
