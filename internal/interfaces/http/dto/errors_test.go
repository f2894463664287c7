package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/erp/billing/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeTokenExpired, http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeAlreadyExists, http.StatusConflict},
		{ErrCodeConcurrencyConflict, http.StatusConflict},
		{ErrCodeDuplicateRequest, http.StatusConflict},
		{ErrCodeBusinessRule, http.StatusUnprocessableEntity},
		{ErrCodeInsufficientBalance, http.StatusUnprocessableEntity},
		{ErrCodeOverpayment, http.StatusUnprocessableEntity},
		{ErrCodeSameAccount, http.StatusUnprocessableEntity},
		{ErrCodeInvalidInput, http.StatusBadRequest},
		{ErrCodeRequestTooLarge, http.StatusRequestEntityTooLarge},
		// Unknown code should return 500
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{shared.CodeNotFound, ErrCodeNotFound},
		{shared.CodeAlreadyExists, ErrCodeAlreadyExists},
		{shared.CodeInvalidInput, ErrCodeInvalidInput},
		{shared.CodeForbidden, ErrCodeForbidden},
		{shared.CodeConcurrencyConflict, ErrCodeConcurrencyConflict},
		{shared.CodeBusinessRule, ErrCodeBusinessRule},
		{shared.CodeInsufficientBalance, ErrCodeInsufficientBalance},
		{shared.CodeOverpayment, ErrCodeOverpayment},
		{shared.CodeSameAccount, ErrCodeSameAccount},
		{shared.CodeDuplicateRequest, ErrCodeDuplicateRequest},
		{ErrCodeNotFound, ErrCodeNotFound},
		{"CUSTOM_ERROR", "CUSTOM_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeErrorCode(tt.input))
		})
	}
}

func TestEveryDomainCodeHasAStatus(t *testing.T) {
	for domainCode, code := range domainCodeMapping {
		t.Run(domainCode, func(t *testing.T) {
			_, ok := ErrorCodeHTTPStatus[code]
			assert.True(t, ok, "%s has no HTTP status", code)
		})
	}
}

func TestNewDomainErrorResponse(t *testing.T) {
	err := shared.ErrOverpayment.WithDetails(map[string]any{"remaining_balance": "70.00"})
	resp := NewDomainErrorResponse(err, "req-1")

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeOverpayment, resp.Error.Code)
	assert.Equal(t, "req-1", resp.Error.RequestID)
	assert.Equal(t, "70.00", resp.Error.Details["remaining_balance"])
}

func TestNewValidationErrorResponse(t *testing.T) {
	fields := []ValidationDetail{
		{Field: "amount", Message: "amount is required"},
		{Field: "invoice", Message: "invoice must be a valid UUID"},
	}
	resp := NewValidationErrorResponse("Validation failed", fields, "req-789")

	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-789", resp.Error.RequestID)
	require.Len(t, resp.Error.Fields, 2)
	assert.Equal(t, "amount", resp.Error.Fields[0].Field)
}

func TestErrorResponseJSON(t *testing.T) {
	data, err := json.Marshal(NewErrorResponse(shared.CodeNotFound, "Invoice not found"))
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, false, body["success"])
	assert.NotContains(t, body, "data")
	errBody := body["error"].(map[string]any)
	assert.Equal(t, ErrCodeNotFound, errBody["code"])
	assert.Equal(t, "Invoice not found", errBody["message"])
	assert.NotContains(t, errBody, "details")
}

func TestNewSuccessResponseWithMetaPagination(t *testing.T) {
	tests := []struct {
		total         int64
		pageSize      int
		expectedPages int
		expectedSize  int
	}{
		{100, 10, 10, 10},
		{101, 10, 11, 10},
		{0, 10, 0, 10},
		{9, 10, 1, 10},
		// zero or negative page size falls back to the default
		{100, 0, 5, 20},
		{100, -1, 5, 20},
	}

	for _, tt := range tests {
		resp := NewSuccessResponseWithMeta(nil, tt.total, 1, tt.pageSize)
		assert.Equal(t, tt.expectedPages, resp.Meta.TotalPages)
		assert.Equal(t, tt.expectedSize, resp.Meta.PageSize)
	}
}

func TestListRequestFilter(t *testing.T) {
	f := ListRequest{}.Filter()
	assert.Equal(t, shared.DefaultFilter(), f)

	f = ListRequest{Page: 3, PageSize: 5, OrderDir: "asc", Search: "acme"}.Filter()
	assert.Equal(t, 3, f.Page)
	assert.Equal(t, 5, f.PageSize)
	assert.Equal(t, "created_at", f.OrderBy)
	assert.Equal(t, "asc", f.OrderDir)
	assert.Equal(t, "acme", f.Search)
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"overpayment", shared.ErrOverpayment, http.StatusUnprocessableEntity, ErrCodeOverpayment},
		{"wrapped not found", fmt.Errorf("load invoice: %w", shared.NotFound("Invoice not found")), http.StatusNotFound, ErrCodeNotFound},
		{"cross tenant", shared.Forbidden("not yours"), http.StatusForbidden, ErrCodeForbidden},
		{"duplicate role", shared.NewDomainError(shared.CodeAlreadyExists, "Role exists"), http.StatusConflict, ErrCodeAlreadyExists},
		{"infrastructure", errors.New("connection reset"), http.StatusInternalServerError, ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := FromError(tt.err, "req-9")
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Equal(t, "req-9", resp.Error.RequestID)
		})
	}

	_, resp := FromError(errors.New("pq: password authentication failed"), "")
	assert.NotContains(t, resp.Error.Message, "pq")
}
