package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// APIClient sends requests to a gin engine with an optional bearer token
// and company header.
type APIClient struct {
	Engine  *gin.Engine
	Token   string
	Company string
}

// HTTPTestCase represents one request against an engine.
type HTTPTestCase struct {
	Name           string
	Method         string
	Path           string
	Body           interface{}
	Headers        map[string]string
	ExpectedStatus int
	ExpectedCode   string
	Validate       func(t *testing.T, rec *httptest.ResponseRecorder)
}

// Do sends one request. A non-nil body is encoded as JSON unless it is
// already a string.
func (a *APIClient) Do(t *testing.T, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		reader = ToJSONReader(t, b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.Token != "" {
		req.Header.Set("Authorization", "Bearer "+a.Token)
	}
	if a.Company != "" {
		req.Header.Set("company", a.Company)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	a.Engine.ServeHTTP(rec, req)
	return rec
}

// Run executes the cases as subtests.
func (a *APIClient) Run(t *testing.T, cases []HTTPTestCase) {
	t.Helper()
	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			method := tc.Method
			if method == "" {
				method = http.MethodGet
			}
			rec := a.Do(t, method, tc.Path, tc.Body, tc.Headers)
			if tc.ExpectedStatus != 0 {
				assert.Equal(t, tc.ExpectedStatus, rec.Code, "Unexpected status code: %s", rec.Body.String())
			}
			if tc.ExpectedCode != "" {
				AssertErrorCode(t, rec, tc.ExpectedCode)
			}
			if tc.Validate != nil {
				tc.Validate(t, rec)
			}
		})
	}
}

// Envelope is the response body shape of every API endpoint.
type Envelope[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
	Error   *struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
	Meta *struct {
		Total    int64 `json:"total"`
		Page     int   `json:"page"`
		PageSize int   `json:"page_size"`
	} `json:"meta"`
}

// DecodeEnvelope parses the response body into an envelope with typed data.
func DecodeEnvelope[T any](t *testing.T, rec *httptest.ResponseRecorder) Envelope[T] {
	t.Helper()

	var env Envelope[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), "Failed to parse JSON response: %s", rec.Body.String())
	return env
}

// DecodeData asserts success and returns the typed data.
func DecodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	env := DecodeEnvelope[T](t, rec)
	require.True(t, env.Success, "Expected success response, got %s", rec.Body.String())
	return env.Data
}

// AssertErrorCode asserts the response is an error envelope with code.
func AssertErrorCode(t *testing.T, rec *httptest.ResponseRecorder, expectedCode string) {
	t.Helper()

	env := DecodeEnvelope[json.RawMessage](t, rec)
	assert.False(t, env.Success, "Expected success to be false")
	require.NotNil(t, env.Error, "Expected error object in response")
	assert.Equal(t, expectedCode, env.Error.Code, "Unexpected error code")
}

// ToJSONReader converts a value to a JSON io.Reader.
func ToJSONReader(t *testing.T, v interface{}) io.Reader {
	t.Helper()

	data, err := json.Marshal(v)
	require.NoError(t, err, "Failed to marshal to JSON")
	return bytes.NewReader(data)
}
