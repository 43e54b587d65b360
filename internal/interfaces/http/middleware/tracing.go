package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Tracing opens a span per request via otelgin and tags it with the
// request and tenant identifiers the log middleware also records, so logs
// and traces correlate. With tracing disabled the global provider is a
// no-op and spans never record.
func Tracing(serviceName string) gin.HandlerFunc {
	base := otelgin.Middleware(serviceName)
	return func(c *gin.Context) {
		base(c)

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}
		if requestID := c.GetString("request_id"); requestID != "" {
			span.SetAttributes(attribute.String("request_id", requestID))
		}
		// tag only well-formed tenant IDs to keep junk out of traces
		if raw := c.GetHeader("X-Tenant-ID"); raw != "" {
			if tenantID, err := uuid.Parse(raw); err == nil {
				span.SetAttributes(attribute.String("tenant_id", tenantID.String()))
			}
		}
	}
}
