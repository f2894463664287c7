package testutil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMockDB(t *testing.T) {
	mockDB := NewMockDB(t)

	assert.NotNil(t, mockDB.DB)
	assert.NotNil(t, mockDB.Mock)
	assert.NotNil(t, mockDB.SqlDB)
}

func TestMockDB_Expectations(t *testing.T) {
	mockDB := NewMockDB(t)
	mockDB.Mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))

	var n int
	require.NoError(t, mockDB.DB.Raw("SELECT 1").Scan(&n).Error)
	assert.Equal(t, 1, n)
	mockDB.ExpectationsWereMet(t)
}

func TestNewSQLiteDB_SeedsReferenceData(t *testing.T) {
	db := NewSQLiteDB(t)

	var count int64
	require.NoError(t, db.Table("invoice_types").Count(&count).Error)
	assert.Equal(t, int64(2), count)
	require.NoError(t, db.Table("modules").Count(&count).Error)
	assert.Positive(t, count)
}

func TestNewFixture(t *testing.T) {
	f := NewFixture(t)

	assert.Equal(t, TestOwnerID(), f.Company.OwnerID)
	assert.True(t, f.Owner.IsOwner())
	assert.True(t, decimal.NewFromInt(1000).Equal(f.BankBalance(t, f.Bank.ID)))
	assert.True(t, decimal.NewFromInt(500).Equal(f.CashBalance(t)))
	assert.True(t, decimal.NewFromInt(100).Equal(f.Stock(t, f.Pen.ID)))
	assert.True(t, f.CashPayment.IsCash())
	assert.False(t, f.BankPayment.IsCash())
	assert.NotEqual(t, f.SalesType.ID, f.PurchaseType.ID)
}

func TestNewTestContext(t *testing.T) {
	tc := NewTestContext(t)
	tc.SetHeader("company", "abc")

	assert.NotNil(t, tc.Engine)
	assert.Equal(t, http.MethodGet, tc.Context.Request.Method)
	assert.Equal(t, "abc", tc.Context.GetHeader("company"))

	tc.Context.Status(http.StatusTeapot)
	tc.Context.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusTeapot, tc.ResponseCode())
}

func TestNewTestUUID(t *testing.T) {
	assert.Equal(t, NewTestUUID("a"), NewTestUUID("a"))
	assert.NotEqual(t, NewTestUUID("a"), NewTestUUID("b"))
	assert.Equal(t, NewTestUUID("test-owner"), TestOwnerID())
}

func TestContextWithTimeout(t *testing.T) {
	ctx := ContextWithTimeout(t, time.Minute)
	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.True(t, deadline.After(time.Now()))
	assert.NoError(t, ctx.Err())
	assert.NotEqual(t, context.Background(), ctx)
}

func TestAPIClient(t *testing.T) {
	engine := gin.New()
	engine.POST("/echo", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
			"auth":    c.GetHeader("Authorization"),
			"company": c.GetHeader("company"),
		}})
	})
	engine.GET("/fail", func(c *gin.Context) {
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": gin.H{"code": "ERR_CONFLICT", "message": "no"}})
	})
	client := &APIClient{Engine: engine, Token: "tok", Company: "c-1"}

	rec := client.Do(t, http.MethodPost, "/echo", map[string]string{"a": "b"}, nil)
	data := DecodeData[map[string]string](t, rec)
	assert.Equal(t, "Bearer tok", data["auth"])
	assert.Equal(t, "c-1", data["company"])

	client.Run(t, []HTTPTestCase{
		{Name: "error envelope", Path: "/fail", ExpectedStatus: http.StatusConflict, ExpectedCode: "ERR_CONFLICT"},
		{Name: "custom validation", Method: http.MethodPost, Path: "/echo", Body: "{}", ExpectedStatus: http.StatusOK,
			Validate: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.True(t, DecodeEnvelope[map[string]string](t, rec).Success)
			}},
	})
}
