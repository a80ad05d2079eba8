package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Tracing starts a server span per request and marks it failed for 5xx
// answers. Health checks are not traced.
func Tracing(serviceName string, opts ...otelgin.Option) gin.HandlerFunc {
	opts = append([]otelgin.Option{
		otelgin.WithFilter(func(r *http.Request) bool { return r.URL.Path != "/health" }),
	}, opts...)
	return otelgin.Middleware(serviceName, opts...)
}

// SpanErrorMarker tags 4xx and 5xx responses with their status code and
// makes sure a 5xx leaves Tracing with an error attached, which otelgin turns
// into the span status description. Place it after Tracing.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		if status >= http.StatusInternalServerError && len(c.Errors) == 0 {
			_ = c.Error(errors.New(http.StatusText(status))).SetType(gin.ErrorTypePrivate)
		}
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() && status >= http.StatusBadRequest {
			span.SetAttributes(attribute.Int("http.status_code", status))
		}
	}
}

// TracingAttributeInjector adds request and tenant ids to the span. Place it
// after RequestID and JWT.
func TracingAttributeInjector() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			if id := GetRequestID(c); id != "" {
				span.SetAttributes(attribute.String("request_id", id))
			}
			if tenantID := GetTenantID(c); tenantID != "" {
				span.SetAttributes(attribute.String("tenant_id", tenantID))
			}
		}
		c.Next()
	}
}
