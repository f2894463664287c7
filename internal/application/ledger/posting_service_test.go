package ledger_test

import (
	"context"
	"testing"

	billingapp "github.com/erp/billing/internal/application/billing"
	ledgerapp "github.com/erp/billing/internal/application/ledger"
	"github.com/erp/billing/internal/domain/shared"
	"github.com/erp/billing/internal/infrastructure/telemetry"
	"github.com/erp/billing/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

// issue posts a 100.00 invoice (two untaxed books) of the given type
func issue(t *testing.T, f *testutil.Fixture, purchase bool) *billingapp.InvoiceResultDTO {
	t.Helper()
	svc := billingapp.NewInvoiceService(f.Scope, f.Repos.InvoiceRepo(), f.Repos.ReferenceRepo(), f.Repos.PartyRepo(), zap.NewNop())
	in := billingapp.CreateInvoiceInput{
		PartyID:       f.Customer.ID,
		InvoiceTypeID: f.SalesType.ID,
		Items:         []billingapp.LineRequest{{ItemID: f.Book.ID, Quantity: decimal.NewFromInt(2)}},
	}
	if purchase {
		in.PartyID = f.Supplier.ID
		in.InvoiceTypeID = f.PurchaseType.ID
	}
	res, err := svc.Create(context.Background(), f.Owner, in)
	require.NoError(t, err)
	require.True(t, decimal.NewFromInt(100).Equal(res.TotalAmount))
	return res
}

func TestPostingService_PaymentIn(t *testing.T) {
	f := testutil.NewFixture(t)
	svc := ledgerapp.NewPostingService(f.Scope, zap.NewNop())
	ctx := context.Background()
	inv := issue(t, f, false)

	t.Run("partial payment to bank", func(t *testing.T) {
		res, err := svc.PaymentIn(ctx, f.Owner, ledgerapp.PaymentInInput{
			InvoiceID:     inv.InvoiceID,
			BankAccountID: &f.Bank.ID,
			Amount:        decimal.NewFromInt(30),
		})
		require.NoError(t, err)
		assert.Equal(t, "Partially Paid", res.PaymentStatus)
		require.NotNil(t, res.RemainingBalance)
		assert.True(t, decimal.NewFromInt(70).Equal(*res.RemainingBalance))
		assert.True(t, decimal.NewFromInt(1030).Equal(res.BalanceAfter))
		assert.Equal(t, &f.Bank.ID, res.BankAccountID)
		assert.True(t, decimal.NewFromInt(1030).Equal(f.BankBalance(t, f.Bank.ID)))
	})

	t.Run("more than the remaining balance is rejected", func(t *testing.T) {
		_, err := svc.PaymentIn(ctx, f.Owner, ledgerapp.PaymentInInput{
			InvoiceID: inv.InvoiceID,
			Amount:    decimal.NewFromInt(71),
		})
		assert.ErrorIs(t, err, shared.ErrOverpayment)
		assert.True(t, decimal.NewFromInt(500).Equal(f.CashBalance(t)))
	})

	t.Run("rest to cash settles the invoice", func(t *testing.T) {
		res, err := svc.PaymentIn(ctx, f.Owner, ledgerapp.PaymentInInput{
			InvoiceID: inv.InvoiceID,
			Amount:    decimal.NewFromInt(70),
			Note:      "final",
		})
		require.NoError(t, err)
		assert.Equal(t, "Paid", res.PaymentStatus)
		assert.True(t, res.RemainingBalance.IsZero())
		assert.Equal(t, &f.Cash.ID, res.CashLedgerID)
		assert.True(t, decimal.NewFromInt(570).Equal(f.CashBalance(t)))

		history, total, err := f.Repos.TransactionRepo().ListCash(ctx, f.Company.ID, f.Cash.ID, shared.Filter{Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, history, 1)
		assert.True(t, decimal.NewFromInt(570).Equal(history[0].BalanceAfterTransaction))
	})

	t.Run("fully paid invoice takes no more", func(t *testing.T) {
		_, err := svc.PaymentIn(ctx, f.Owner, ledgerapp.PaymentInInput{
			InvoiceID: inv.InvoiceID,
			Amount:    decimal.NewFromInt(1),
		})
		assert.ErrorIs(t, err, shared.ErrBusinessRule)
	})

	t.Run("bank account of another company is forbidden", func(t *testing.T) {
		other := f.AddCompany(t, uuid.New(), "Other Co")
		foreign := f.AddBankAccount(t, other.ID, "SBI", "42", decimal.Zero)
		_, err := svc.PaymentIn(ctx, f.Owner, ledgerapp.PaymentInInput{
			InvoiceID:     inv.InvoiceID,
			BankAccountID: &foreign.ID,
			Amount:        decimal.NewFromInt(1),
		})
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("unknown invoice", func(t *testing.T) {
		_, err := svc.PaymentIn(ctx, f.Owner, ledgerapp.PaymentInInput{
			InvoiceID: uuid.New(),
			Amount:    decimal.NewFromInt(1),
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("non-positive amount", func(t *testing.T) {
		fresh := issue(t, f, false)
		_, err := svc.PaymentIn(ctx, f.Owner, ledgerapp.PaymentInInput{
			InvoiceID: fresh.InvoiceID,
			Amount:    decimal.Zero,
		})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestPostingService_PaymentOut(t *testing.T) {
	f := testutil.NewFixture(t)
	svc := ledgerapp.NewPostingService(f.Scope, zap.NewNop())
	ctx := context.Background()

	t.Run("purchase invoice is settled", func(t *testing.T) {
		inv := issue(t, f, true)
		res, err := svc.PaymentOut(ctx, f.Owner, ledgerapp.PaymentOutInput{
			InvoiceID:     &inv.InvoiceID,
			BankAccountID: &f.Bank.ID,
			Amount:        decimal.NewFromInt(100),
		})
		require.NoError(t, err)
		assert.Equal(t, "Paid", res.PaymentStatus)
		assert.True(t, decimal.NewFromInt(900).Equal(res.BalanceAfter))
		assert.True(t, decimal.NewFromInt(900).Equal(f.BankBalance(t, f.Bank.ID)))
	})

	t.Run("sales invoice reference does not settle", func(t *testing.T) {
		inv := issue(t, f, false)
		res, err := svc.PaymentOut(ctx, f.Owner, ledgerapp.PaymentOutInput{
			InvoiceID:     &inv.InvoiceID,
			PaymentTypeID: &f.CashPayment.ID,
			Amount:        decimal.NewFromInt(20),
		})
		require.NoError(t, err)
		assert.Empty(t, res.PaymentStatus)
		assert.Equal(t, inv.InvoiceNumber, res.InvoiceNumber)
		assert.True(t, decimal.NewFromInt(480).Equal(f.CashBalance(t)))
	})

	t.Run("insufficient balance changes nothing", func(t *testing.T) {
		_, err := svc.PaymentOut(ctx, f.Owner, ledgerapp.PaymentOutInput{
			PaymentTypeID: &f.CashPayment.ID,
			Amount:        decimal.NewFromInt(10000),
		})
		assert.ErrorIs(t, err, shared.ErrInsufficientBalance)
		assert.True(t, decimal.NewFromInt(480).Equal(f.CashBalance(t)))
	})

	t.Run("non-cash payment type needs a bank account", func(t *testing.T) {
		_, err := svc.PaymentOut(ctx, f.Owner, ledgerapp.PaymentOutInput{
			PaymentTypeID: &f.BankPayment.ID,
			Amount:        decimal.NewFromInt(1),
		})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("neither bank nor payment type", func(t *testing.T) {
		_, err := svc.PaymentOut(ctx, f.Owner, ledgerapp.PaymentOutInput{Amount: decimal.NewFromInt(1)})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("missing bank is not found", func(t *testing.T) {
		missing := uuid.New()
		_, err := svc.PaymentOut(ctx, f.Owner, ledgerapp.PaymentOutInput{
			BankAccountID: &missing,
			Amount:        decimal.NewFromInt(1),
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestPostingService_NoCashLedger(t *testing.T) {
	f := testutil.NewFixture(t)
	svc := ledgerapp.NewPostingService(f.Scope, zap.NewNop())

	other := f.AddCompany(t, testutil.TestOwnerID(), "Second Branch")

	actor := f.Owner
	actor.CompanyID = other.ID
	_, err := svc.PaymentOut(context.Background(), actor, ledgerapp.PaymentOutInput{
		PaymentTypeID: &f.CashPayment.ID,
		Amount:        decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestPostingService_Metrics(t *testing.T) {
	f := testutil.NewFixture(t)
	reader := sdkmetric.NewManualReader()
	bm, err := telemetry.NewBillingMetrics(telemetry.NewMeterProviderWithReader(reader, zap.NewNop()).Meter("billing"))
	require.NoError(t, err)
	svc := ledgerapp.NewPostingService(f.Scope, zap.NewNop()).WithMetrics(bm)
	ctx := context.Background()
	inv := issue(t, f, false)

	_, err = svc.PaymentIn(ctx, f.Owner, ledgerapp.PaymentInInput{InvoiceID: inv.InvoiceID, Amount: decimal.NewFromInt(40)})
	require.NoError(t, err)
	_, err = svc.PaymentIn(ctx, f.Owner, ledgerapp.PaymentInInput{InvoiceID: inv.InvoiceID, Amount: decimal.NewFromInt(90)})
	require.ErrorIs(t, err, shared.ErrOverpayment)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	points := map[string][]metricdata.DataPoint[int64]{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				points[m.Name] = sum.DataPoints
			}
		}
	}

	outcomes := map[string]int64{}
	for _, dp := range points["billing_payment_total"] {
		outcome, _ := dp.Attributes.Value("outcome")
		kind, _ := dp.Attributes.Value("account_kind")
		assert.Equal(t, "cash", kind.AsString())
		outcomes[outcome.AsString()] += dp.Value
	}
	assert.Equal(t, int64(1), outcomes[telemetry.OutcomeAccepted])
	assert.Equal(t, int64(1), outcomes[telemetry.OutcomeRejected])

	require.Len(t, points["billing_payment_amount_minor_total"], 1)
	assert.Equal(t, int64(4000), points["billing_payment_amount_minor_total"][0].Value)
}
