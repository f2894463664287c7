package integration

import (
	"context"
	"os"
	"sync"
	"testing"

	billingapp "github.com/erp/billing/internal/application/billing"
	ledgerapp "github.com/erp/billing/internal/application/ledger"
	tenantapp "github.com/erp/billing/internal/application/tenant"
	"github.com/erp/billing/internal/domain/shared"
	"github.com/erp/billing/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	code := m.Run()
	CleanupSharedContainer()
	os.Exit(code)
}

func invoiceService(f *testutil.Fixture) *billingapp.InvoiceService {
	return billingapp.NewInvoiceService(f.Scope, f.Repos.InvoiceRepo(), f.Repos.ReferenceRepo(), f.Repos.PartyRepo(), zap.NewNop())
}

// sellBooks posts an untaxed sale of n books at 50.00 each
func sellBooks(t *testing.T, f *testutil.Fixture, n int64) *billingapp.InvoiceResultDTO {
	t.Helper()
	res, err := invoiceService(f).Create(context.Background(), f.Owner, billingapp.CreateInvoiceInput{
		PartyID:       f.Customer.ID,
		InvoiceTypeID: f.SalesType.ID,
		Items:         []billingapp.LineRequest{{ItemID: f.Book.ID, Quantity: decimal.NewFromInt(n)}},
	})
	require.NoError(t, err)
	return res
}

func TestMigrations_SeedReferenceData(t *testing.T) {
	tdb := NewSharedTestDB(t)

	assert.Equal(t, int64(2), tdb.Count("invoice_types", "code IN ?", []string{"sales", "purchase"}))
	assert.Positive(t, tdb.Count("payment_types", "1 = 1"))
	assert.Positive(t, tdb.Count("modules", "name = ?", "Invoice"))

	var version uint
	require.NoError(t, tdb.DB.Raw("SELECT version FROM schema_migrations").Scan(&version).Error)
	assert.Equal(t, uint(2), version)
}

func TestPaymentIn_ConcurrentPaymentsNeverOverpay(t *testing.T) {
	tdb := NewSharedTestDB(t)
	f := tdb.Fixture()
	inv := sellBooks(t, f, 2)
	require.True(t, decimal.NewFromInt(100).Equal(inv.TotalAmount))

	posting := ledgerapp.NewPostingService(f.Scope, zap.NewNop())
	const workers = 8

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		overpaid  int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := posting.PaymentIn(context.Background(), f.Owner, ledgerapp.PaymentInInput{
				InvoiceID: inv.InvoiceID,
				Amount:    decimal.NewFromInt(20),
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case assert.ErrorIs(t, err, shared.ErrOverpayment):
				overpaid++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, succeeded)
	assert.Equal(t, workers-5, overpaid)
	assert.True(t, decimal.NewFromInt(600).Equal(f.CashBalance(t)), "cash balance %s", f.CashBalance(t))

	got, err := invoiceService(f).Get(context.Background(), f.Owner, inv.InvoiceID)
	require.NoError(t, err)
	assert.Equal(t, "Paid", got.PaymentStatus)
	assert.True(t, got.RemainingBalance.IsZero())
	assert.Equal(t, int64(5), tdb.Count("payment_ins", "invoice_id = ?", inv.InvoiceID))
}

func TestInvoiceCreate_ConcurrentNumbersAreUnique(t *testing.T) {
	tdb := NewSharedTestDB(t)
	f := tdb.Fixture()
	const workers = 5

	numbers := make(chan string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := invoiceService(f).Create(context.Background(), f.Owner, billingapp.CreateInvoiceInput{
				PartyID:       f.Customer.ID,
				InvoiceTypeID: f.SalesType.ID,
				Items:         []billingapp.LineRequest{{ItemID: f.Pen.ID, Quantity: decimal.NewFromInt(1)}},
			})
			if assert.NoError(t, err) {
				numbers <- res.InvoiceNumber
			}
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[string]bool)
	for n := range numbers {
		assert.False(t, seen[n], "duplicate invoice number %s", n)
		seen[n] = true
	}
	assert.Len(t, seen, workers)
	assert.True(t, decimal.NewFromInt(95).Equal(f.Stock(t, f.Pen.ID)))
}

func TestTransfer_OpposingTransfersSettle(t *testing.T) {
	tdb := NewSharedTestDB(t)
	f := tdb.Fixture()
	other := f.AddBankAccount(t, f.Company.ID, "ICICI", "000401234567", decimal.NewFromInt(1000))
	transfers := ledgerapp.NewTransferService(f.Scope, f.Repos.TransferRepo(), zap.NewNop())
	const rounds = 10

	var wg sync.WaitGroup
	for i := 0; i < rounds; i++ {
		from, to := f.Bank.ID, other.ID
		if i%2 == 1 {
			from, to = to, from
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := transfers.Create(context.Background(), f.Owner, ledgerapp.TransferInput{
				FromAccountID: from,
				ToAccountID:   to,
				Amount:        decimal.NewFromInt(10),
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.True(t, decimal.NewFromInt(1000).Equal(f.BankBalance(t, f.Bank.ID)))
	assert.True(t, decimal.NewFromInt(1000).Equal(f.BankBalance(t, other.ID)))
	assert.Equal(t, int64(rounds), tdb.Count("bank_transfers", "company_id = ?", f.Company.ID))
}

func TestTenantIsolation(t *testing.T) {
	tdb := NewSharedTestDB(t)
	a := tdb.Fixture()
	b := tdb.Fixture()
	ctx := context.Background()
	inv := sellBooks(t, a, 1)

	t.Run("invoice of another company is not found", func(t *testing.T) {
		_, err := invoiceService(b).Get(ctx, b.Owner, inv.InvoiceID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("payment against another company's invoice is rejected", func(t *testing.T) {
		posting := ledgerapp.NewPostingService(b.Scope, zap.NewNop())
		_, err := posting.PaymentIn(ctx, b.Owner, ledgerapp.PaymentInInput{
			InvoiceID: inv.InvoiceID,
			Amount:    decimal.NewFromInt(10),
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.True(t, decimal.NewFromInt(500).Equal(b.CashBalance(t)))
	})

	t.Run("stranger cannot act in a company", func(t *testing.T) {
		resolver := tenantapp.NewResolver(a.Repos.CompanyRepo(), a.Repos.StaffRepo(), zap.NewNop())
		_, err := resolver.ResolveActor(ctx, uuid.New(), a.Company.ID)
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("listing is scoped", func(t *testing.T) {
		page, err := invoiceService(b).List(ctx, b.Owner, shared.Filter{Page: 1, PageSize: 20})
		require.NoError(t, err)
		assert.Zero(t, page.Total)
	})
}
