package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/erp/billing/internal/infrastructure/logger"
	"github.com/erp/billing/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoLength reports how many body bytes the handler could read
func echoLength(c *gin.Context) {
	n, err := io.Copy(io.Discard, c.Request.Body)
	if err != nil {
		c.String(http.StatusBadRequest, "read %d", n)
		return
	}
	c.String(http.StatusOK, "read %d", n)
}

func TestBodyLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	invoice := `{"party":"p-1","invoice_type":"t-1","items":[{"item":"i-1","quantity":2}]}`

	tests := []struct {
		name       string
		limit      int64
		method     string
		body       string
		streaming  bool
		wantStatus int
		wantBody   string
	}{
		{name: "invoice within limit", limit: 1024, method: http.MethodPost, body: invoice,
			wantStatus: http.StatusOK, wantBody: "read 74"},
		{name: "declared length over limit", limit: 32, method: http.MethodPost, body: invoice,
			wantStatus: http.StatusRequestEntityTooLarge, wantBody: "ERR_REQUEST_TOO_LARGE"},
		{name: "streamed body capped on read", limit: 32, method: http.MethodPost, body: invoice, streaming: true,
			wantStatus: http.StatusBadRequest, wantBody: "read 32"},
		{name: "get without body", limit: 8, method: http.MethodGet,
			wantStatus: http.StatusOK, wantBody: "read 0"},
		{name: "zero limit disables the check", limit: 0, method: http.MethodPost, body: strings.Repeat("x", 4096),
			wantStatus: http.StatusOK, wantBody: "read 4096"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(BodyLimit(tt.limit))
			router.Handle(tt.method, "/api/v1/invoices/create", echoLength)

			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			req := httptest.NewRequest(tt.method, "/api/v1/invoices/create", body)
			if tt.streaming {
				req.ContentLength = -1
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestBodyLimit_ErrorCarriesRequestID(t *testing.T) {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(logger.GinRequestIDKey, "req-413")
		c.Next()
	}, BodyLimit(4))
	router.POST("/api/v1/payments/payment-in", echoLength)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/payments/payment-in", strings.NewReader(`{"amount":"10"}`)))

	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeRequestTooLarge, resp.Error.Code)
	assert.Equal(t, "req-413", resp.Error.RequestID)
}
