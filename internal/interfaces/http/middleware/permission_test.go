package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erp/billing/internal/domain/identity"
	"github.com/erp/billing/internal/domain/shared"
	"github.com/erp/billing/internal/domain/tenant"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockAuthorizer struct {
	mock.Mock
}

func (m *mockAuthorizer) Authorize(ctx context.Context, actor tenant.Actor, module string, action identity.Action) error {
	return m.Called(ctx, actor, module, action).Error(0)
}

func permissionRouter(actor *tenant.Actor, gate Authorizer, cfg PermissionConfig) *gin.Engine {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if actor != nil {
			c.Set(ActorKey, *actor)
		}
		c.Next()
	})
	router.POST("/invoices/create",
		RequirePermissionWithConfig(gate, identity.ModuleInvoice, identity.ActionCreate, cfg),
		func(c *gin.Context) { c.Status(http.StatusCreated) })
	return router
}

func TestRequirePermission(t *testing.T) {
	staff := tenant.NewStaff(uuid.New(), uuid.New(), uuid.New())

	t.Run("allowed", func(t *testing.T) {
		gate := &mockAuthorizer{}
		gate.On("Authorize", mock.Anything, staff, identity.ModuleInvoice, identity.ActionCreate).Return(nil)

		w := httptest.NewRecorder()
		permissionRouter(&staff, gate, PermissionConfig{}).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/invoices/create", nil))
		assert.Equal(t, http.StatusCreated, w.Code)
		gate.AssertExpectations(t)
	})

	t.Run("denied", func(t *testing.T) {
		gate := &mockAuthorizer{}
		gate.On("Authorize", mock.Anything, staff, identity.ModuleInvoice, identity.ActionCreate).
			Return(shared.Forbidden("You do not have permission to create Invoice."))

		w := httptest.NewRecorder()
		permissionRouter(&staff, gate, PermissionConfig{}).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/invoices/create", nil))
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "You do not have permission to create Invoice.", decodeError(t, w).Message)
	})

	t.Run("custom denial handler", func(t *testing.T) {
		gate := &mockAuthorizer{}
		gate.On("Authorize", mock.Anything, staff, identity.ModuleInvoice, identity.ActionCreate).Return(shared.ErrForbidden)

		var module string
		cfg := PermissionConfig{OnDenied: func(c *gin.Context, m string, _ identity.Action) {
			module = m
			c.AbortWithStatus(http.StatusForbidden)
		}}
		w := httptest.NewRecorder()
		permissionRouter(&staff, gate, cfg).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/invoices/create", nil))
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, identity.ModuleInvoice, module)
	})

	t.Run("lookup failure is internal", func(t *testing.T) {
		gate := &mockAuthorizer{}
		gate.On("Authorize", mock.Anything, staff, identity.ModuleInvoice, identity.ActionCreate).Return(assert.AnError)

		w := httptest.NewRecorder()
		permissionRouter(&staff, gate, PermissionConfig{}).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/invoices/create", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("no company context", func(t *testing.T) {
		w := httptest.NewRecorder()
		permissionRouter(nil, &mockAuthorizer{}, PermissionConfig{}).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/invoices/create", nil))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
