// Package middleware provides HTTP middleware for the manufacturing backend.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// maxRequestIDLength caps request ids copied from headers into span
// attributes.
const maxRequestIDLength = 128

// TracingConfig configures the request tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// DefaultTracingConfig enables tracing under the service's own name.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName: "mfgops-backend",
		Enabled:     true,
	}
}

// TracingWithConfig wraps otelgin so every request gets a span named
// "METHOD route_pattern", then tags the span with the request id from
// the RequestID middleware or the X-Request-ID header.
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	otelMiddleware := otelgin.Middleware(cfg.ServiceName)
	return func(c *gin.Context) {
		otelMiddleware(c)

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}
		if requestID := spanRequestID(c); requestID != "" {
			span.SetAttributes(attribute.String("request_id", requestID))
		}
	}
}

func spanRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}

	headerID := c.GetHeader("X-Request-ID")
	if len(headerID) > maxRequestIDLength {
		headerID = headerID[:maxRequestIDLength]
	}
	return headerID
}

// SpanErrorMarker flags the request span as failed for 4xx and 5xx
// responses. Place it after TracingWithConfig in the chain.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}

		status := c.Writer.Status()
		if status < http.StatusBadRequest {
			return
		}

		span.SetStatus(codes.Error, statusMessage(status))
		span.SetAttributes(attribute.Int("http.status_code", status))
	}
}

func statusMessage(status int) string {
	switch {
	case status >= http.StatusInternalServerError:
		return "Internal Server Error"
	case status == http.StatusNotFound:
		return "Not Found"
	case status == http.StatusConflict:
		return "Conflict"
	default:
		return "Client Error"
	}
}
