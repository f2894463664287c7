// Package middleware provides HTTP middleware for the billing API.
package middleware

import (
	"net/http"

	"github.com/erp/billing/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// TracingWithConfig returns OpenTelemetry tracing middleware.
// It wraps otelgin; span names follow "HTTP METHOD route_pattern" and
// 4xx/5xx responses are marked with codes.Error. The request, company
// and user attributes are added once the rest of the chain has run,
// since company resolution happens per route group.
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return otelgin.Middleware(cfg.ServiceName)
}

// SpanEnricher annotates the active span after the handler chain
func SpanEnricher() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}
		enrichSpanWithAttributes(c, span)

		status := c.Writer.Status()
		if status >= http.StatusBadRequest {
			span.SetStatus(codes.Error, http.StatusText(status))
			span.SetAttributes(attribute.Int("http.status_code", status))
		}
	}
}

func enrichSpanWithAttributes(c *gin.Context, span trace.Span) {
	for _, key := range []string{logger.GinRequestIDKey, logger.GinCompanyIDKey, logger.GinUserIDKey} {
		if v := c.GetString(key); v != "" {
			span.SetAttributes(attribute.String(key, v))
		}
	}
}
