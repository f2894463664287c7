package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	tenantapp "github.com/erp/billing/internal/application/tenant"
	"github.com/erp/billing/internal/domain/shared"
	"github.com/erp/billing/internal/domain/tenant"
	"github.com/erp/billing/internal/infrastructure/logger"
	"github.com/erp/billing/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Company context keys
const (
	ActorKey         = "actor"
	CompanyHeaderKey = "company"
)

// ActorResolver turns the authenticated user and a company into an Actor
type ActorResolver interface {
	ResolveActor(ctx context.Context, userID, companyID uuid.UUID) (tenant.Actor, error)
}

// CompanyLookup finds the company of an invoice, bank account, etc.
type CompanyLookup func(ctx context.Context, id uuid.UUID) (uuid.UUID, error)

// RecordSource derives the referenced record's company when the request
// names no company itself. body is the raw request body, possibly empty.
type RecordSource func(c *gin.Context, body []byte) tenantapp.RecordLookup

// FromPathParam looks up the record named by a path parameter
func FromPathParam(param string, lookup CompanyLookup) RecordSource {
	return func(c *gin.Context, _ []byte) tenantapp.RecordLookup {
		raw := c.Param(param)
		if raw == "" {
			return nil
		}
		return func(ctx context.Context) (uuid.UUID, error) {
			id, err := uuid.Parse(raw)
			if err != nil {
				return uuid.Nil, shared.InvalidInput(param + " must be a valid UUID")
			}
			return lookup(ctx, id)
		}
	}
}

// FromBodyField looks up the record named by a top-level JSON body field
func FromBodyField(field string, lookup CompanyLookup) RecordSource {
	return func(_ *gin.Context, body []byte) tenantapp.RecordLookup {
		raw := jsonField(body, field)
		if raw == "" {
			return nil
		}
		return func(ctx context.Context) (uuid.UUID, error) {
			id, err := uuid.Parse(raw)
			if err != nil {
				return uuid.Nil, shared.InvalidInput(field + " must be a valid UUID")
			}
			return lookup(ctx, id)
		}
	}
}

// CompanyConfig holds configuration for company resolution
type CompanyConfig struct {
	Resolver ActorResolver
	// Record is consulted last, after header, body and query
	Record RecordSource
	Logger *zap.Logger
}

// CompanyContext resolves the company a request acts on and the caller's
// role in it. Must run after JWT authentication.
func CompanyContext(resolver ActorResolver) gin.HandlerFunc {
	return CompanyContextWithConfig(CompanyConfig{Resolver: resolver})
}

// CompanyContextWithConfig returns company middleware with custom configuration
func CompanyContextWithConfig(cfg CompanyConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetJWTUserID(c)
		if !ok {
			abortWithError(c, shared.ErrUnauthorized)
			return
		}

		body, err := peekBody(c)
		if err != nil {
			abortWithError(c, shared.InvalidInput("Request body could not be read"))
			return
		}

		src := tenantapp.CompanySource{
			Header:         c.GetHeader(CompanyHeaderKey),
			BodyCompany:    jsonField(body, "company"),
			BodyCompanyID:  jsonField(body, "company_id"),
			QueryCompany:   c.Query("company"),
			QueryCompanyID: c.Query("company_id"),
		}
		if cfg.Record != nil {
			src.Record = cfg.Record(c, body)
		}

		ctx := c.Request.Context()
		companyID, err := tenantapp.ResolveCompanyID(ctx, src)
		if err != nil {
			abortWithError(c, err)
			return
		}
		actor, err := cfg.Resolver.ResolveActor(ctx, userID, companyID)
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Warn("Company resolution failed",
					zap.String("user_id", userID.String()),
					zap.String("company_id", companyID.String()),
					zap.Error(err),
				)
			}
			abortWithError(c, err)
			return
		}

		c.Set(ActorKey, actor)
		c.Set(logger.GinCompanyIDKey, companyID.String())
		ctx = tenant.WithActor(ctx, actor)
		ctx, _ = logger.WithCompanyID(ctx, logger.FromContext(ctx), companyID.String())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetActor retrieves the resolved actor from gin context
func GetActor(c *gin.Context) (tenant.Actor, bool) {
	if v, exists := c.Get(ActorKey); exists {
		if actor, ok := v.(tenant.Actor); ok {
			return actor, true
		}
	}
	return tenant.Actor{}, false
}

// peekBody reads a JSON body and puts it back for the handler
func peekBody(c *gin.Context) ([]byte, error) {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return nil, nil
	}
	if ct := c.ContentType(); ct != "" && !strings.Contains(ct, "json") {
		return nil, nil
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, err
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}

// jsonField returns a top-level body field as text: strings are unquoted,
// other JSON values are returned raw so they fail UUID parsing downstream.
func jsonField(body []byte, field string) string {
	if len(body) == 0 {
		return ""
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return ""
	}
	raw, ok := fields[field]
	if !ok || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func abortWithError(c *gin.Context, err error) {
	status, resp := dto.FromError(err, c.GetString(logger.GinRequestIDKey))
	c.AbortWithStatusJSON(status, resp)
}
