package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/erp/billing/internal/domain/tenant"
	"github.com/erp/billing/internal/infrastructure/cache"
	"github.com/erp/billing/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func idempotencyRouter(store *cache.InMemoryIdempotencyStore, userID, companyID uuid.UUID, status *int) *gin.Engine {
	router := gin.New()
	router.Use(withUser(userID), func(c *gin.Context) {
		c.Set(ActorKey, tenant.NewOwner(userID, companyID))
		c.Next()
	})
	router.POST("/payments/payment-in", Idempotency(IdempotencyConfig{Store: store, TTL: time.Minute}), func(c *gin.Context) {
		c.Status(*status)
	})
	return router
}

func postWithKey(router *gin.Engine, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/payments/payment-in", nil)
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestIdempotency(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })
	userID := uuid.New()
	status := http.StatusCreated
	router := idempotencyRouter(store, userID, uuid.New(), &status)

	t.Run("replayed key is rejected", func(t *testing.T) {
		require.Equal(t, http.StatusCreated, postWithKey(router, "pay-1").Code)

		w := postWithKey(router, "pay-1")
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, dto.ErrCodeDuplicateRequest, decodeError(t, w).Code)
	})

	t.Run("no key passes through", func(t *testing.T) {
		assert.Equal(t, http.StatusCreated, postWithKey(router, "").Code)
		assert.Equal(t, http.StatusCreated, postWithKey(router, "").Code)
	})

	t.Run("failed request releases its key", func(t *testing.T) {
		status = http.StatusUnprocessableEntity
		assert.Equal(t, http.StatusUnprocessableEntity, postWithKey(router, "pay-2").Code)

		status = http.StatusCreated
		assert.Equal(t, http.StatusCreated, postWithKey(router, "pay-2").Code)
		assert.Equal(t, http.StatusConflict, postWithKey(router, "pay-2").Code)
	})

	t.Run("keys are scoped per company", func(t *testing.T) {
		other := idempotencyRouter(store, userID, uuid.New(), &status)
		assert.Equal(t, http.StatusCreated, postWithKey(other, "pay-1").Code)
	})
}
