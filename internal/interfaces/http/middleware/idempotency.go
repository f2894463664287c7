package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/erp/billing/internal/domain/shared"
	"github.com/erp/billing/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IdempotencyKeyHeader names the client-chosen replay key
const IdempotencyKeyHeader = "Idempotency-Key"

const maxIdempotencyKeyLength = 255

// IdempotencyConfig holds configuration for idempotent POSTs
type IdempotencyConfig struct {
	Store   shared.IdempotencyStore
	TTL     time.Duration
	Logger  *zap.Logger
	Metrics *telemetry.BillingMetrics // optional
}

// Idempotency rejects a repeated Idempotency-Key with 409. Requests without
// the header pass through. The key is scoped to company, user and route, and
// is released again when the request does not succeed, so a client may retry
// a failed posting with the same key.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLength {
			abortWithError(c, shared.InvalidInput("Idempotency-Key is too long"))
			return
		}

		scoped := scopeKey(c, key)
		ctx := c.Request.Context()
		fresh, err := cfg.Store.MarkProcessed(ctx, scoped, cfg.TTL)
		if err != nil {
			log.Error("Idempotency store unavailable", zap.Error(err))
			abortWithError(c, err)
			return
		}
		if !fresh {
			log.Warn("Duplicate request rejected",
				zap.String("idempotency_key", key),
				zap.String("path", c.FullPath()),
			)
			cfg.Metrics.RecordReplay(ctx, c.FullPath())
			abortWithError(c, shared.ErrDuplicateRequest)
			return
		}

		c.Next()

		if status := c.Writer.Status(); status < 200 || status >= 300 {
			if err := cfg.Store.Release(context.WithoutCancel(ctx), scoped); err != nil {
				log.Warn("Failed to release idempotency key", zap.String("idempotency_key", key), zap.Error(err))
			}
		}
	}
}

func scopeKey(c *gin.Context, key string) string {
	company := ""
	if actor, ok := GetActor(c); ok {
		company = actor.CompanyID.String()
	}
	user := ""
	if id, ok := GetJWTUserID(c); ok {
		user = id.String()
	}
	return strings.Join([]string{company, user, c.Request.Method, c.FullPath(), key}, ":")
}
