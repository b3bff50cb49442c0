package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingMiddleware traces HTTP requests using OpenTelemetry. It wraps the
// official otelgin middleware and annotates spans with the caller's profile
// and the facility being accessed.
func TracingMiddleware(serviceName string) gin.HandlerFunc {
	base := otelgin.Middleware(serviceName)

	return func(c *gin.Context) {
		base(c)

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}

		if profileID, exists := c.Get("profile_id"); exists {
			if id, ok := profileID.(string); ok {
				span.SetAttributes(attribute.String("profile.id", id))
			}
		}
		if facilityType := c.Param("type"); facilityType != "" {
			span.SetAttributes(attribute.String("facility.type", facilityType))
		}
		if code := c.Param("code"); code != "" {
			span.SetAttributes(attribute.String("facility.code", code))
		}

		// Record gin errors as span events
		for _, ginErr := range c.Errors {
			if ginErr.Err != nil {
				span.RecordError(ginErr.Err)
				span.SetStatus(codes.Error, ginErr.Error())
			}
		}
	}
}
