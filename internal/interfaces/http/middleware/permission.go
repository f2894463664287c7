package middleware

import (
	"context"
	"errors"

	"github.com/erp/billing/internal/domain/identity"
	"github.com/erp/billing/internal/domain/shared"
	"github.com/erp/billing/internal/domain/tenant"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Authorizer decides whether an actor may perform action on module
type Authorizer interface {
	Authorize(ctx context.Context, actor tenant.Actor, module string, action identity.Action) error
}

// PermissionConfig holds configuration for permission middleware
type PermissionConfig struct {
	Logger *zap.Logger
	// OnDenied is called when permission is denied (optional)
	OnDenied func(c *gin.Context, module string, action identity.Action)
}

// RequirePermission creates middleware that requires action on module.
// Owners pass unconditionally; staff need the flag on their role's row.
func RequirePermission(gate Authorizer, module string, action identity.Action) gin.HandlerFunc {
	return RequirePermissionWithConfig(gate, module, action, PermissionConfig{})
}

// RequirePermissionWithConfig creates middleware with custom config
func RequirePermissionWithConfig(gate Authorizer, module string, action identity.Action, cfg PermissionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			abortWithError(c, shared.Forbidden("No company context for this request"))
			return
		}

		if err := gate.Authorize(c.Request.Context(), actor, module, action); err != nil {
			if errors.Is(err, shared.ErrForbidden) {
				if cfg.Logger != nil {
					cfg.Logger.Warn("Permission denied",
						zap.String("user_id", actor.UserID.String()),
						zap.String("company_id", actor.CompanyID.String()),
						zap.String("module", module),
						zap.String("action", string(action)),
						zap.String("path", c.Request.URL.Path),
					)
				}
				if cfg.OnDenied != nil {
					cfg.OnDenied(c, module, action)
					return
				}
			}
			abortWithError(c, err)
			return
		}

		c.Next()
	}
}
