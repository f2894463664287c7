package testutil

import (
	"context"
	"testing"

	"github.com/erp/billing/internal/application/uow"
	"github.com/erp/billing/internal/domain/billing"
	"github.com/erp/billing/internal/domain/catalog"
	"github.com/erp/billing/internal/domain/ledger"
	"github.com/erp/billing/internal/domain/tenant"
	"github.com/erp/billing/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Fixture is a seeded company with one customer, one supplier, two items,
// a bank account holding 1000.00 and a cash ledger holding 500.00.
type Fixture struct {
	DB    *gorm.DB
	Scope uow.TransactionScope
	Repos uow.Repositories

	Company  *tenant.Company
	Owner    tenant.Actor
	Customer *catalog.Party
	Supplier *catalog.Party
	Pen      *catalog.Item
	Book     *catalog.Item
	Bank     *ledger.BankAccount
	Cash     *ledger.CashLedger

	SalesType    billing.InvoiceType
	PurchaseType billing.InvoiceType
	CashPayment  billing.PaymentType
	BankPayment  billing.PaymentType
}

// NewFixture builds the fixture on a fresh in-memory database.
func NewFixture(t *testing.T) *Fixture {
	t.Helper()
	return NewFixtureOn(t, NewSQLiteDB(t))
}

// NewFixtureOn builds the fixture on db, which must already hold the schema
// and the reference data. Every call creates a new company, so fixtures can
// share one database.
func NewFixtureOn(t *testing.T, db *gorm.DB) *Fixture {
	t.Helper()
	f := &Fixture{
		DB:    db,
		Scope: persistence.NewGormTransactionScope(db),
		Repos: persistence.NewRepositories(db),
	}
	ctx := context.Background()

	f.Company = f.AddCompany(t, TestOwnerID(), "Acme Traders")
	f.Owner = tenant.NewOwner(TestOwnerID(), f.Company.ID)

	f.Customer = f.AddParty(t, f.Company.ID, "Ravi Kumar", catalog.PartyCustomer)
	f.Supplier = f.AddParty(t, f.Company.ID, "Sharma Supplies", catalog.PartySupplier)

	// Pen: 100 in stock, 10.00 each, 18% tax. Book: 5 in stock, 50.00, untaxed.
	f.Pen = f.AddItem(t, f.Company.ID, catalog.NewItemInput{
		Name: "Pen", Code: "PEN-01",
		Quantity: decimal.NewFromInt(100), Price: decimal.NewFromInt(8), SalesPrice: decimal.NewFromInt(10),
		TaxApplied: true, TaxPercent: decimal.NewFromInt(18),
	})
	f.Book = f.AddItem(t, f.Company.ID, catalog.NewItemInput{
		Name: "Book", Code: "BOOK-01",
		Quantity: decimal.NewFromInt(5), Price: decimal.NewFromInt(40), SalesPrice: decimal.NewFromInt(50),
	})

	f.Bank = f.AddBankAccount(t, f.Company.ID, "HDFC", "50100012345678", decimal.NewFromInt(1000))
	cash, err := ledger.NewCashLedger(f.Company.ID, "", decimal.NewFromInt(500))
	require.NoError(t, err)
	require.NoError(t, f.Repos.CashLedgerRepo().Create(ctx, cash))
	f.Cash = cash

	types, err := f.Repos.ReferenceRepo().ListInvoiceTypes(ctx)
	require.NoError(t, err)
	for _, it := range types {
		switch it.Code {
		case billing.InvoiceTypeSales:
			f.SalesType = it
		case billing.InvoiceTypePurchase:
			f.PurchaseType = it
		}
	}
	payments, err := f.Repos.ReferenceRepo().ListPaymentTypes(ctx)
	require.NoError(t, err)
	for _, pt := range payments {
		if pt.IsCash() {
			f.CashPayment = pt
		} else {
			f.BankPayment = pt
		}
	}
	return f
}

// AddCompany saves an active company owned by ownerID.
func (f *Fixture) AddCompany(t *testing.T, ownerID uuid.UUID, name string) *tenant.Company {
	t.Helper()
	c, err := tenant.NewCompany(ownerID, name)
	require.NoError(t, err)
	require.NoError(t, f.Repos.CompanyRepo().Save(context.Background(), c))
	return c
}

// AddParty saves a party in the company.
func (f *Fixture) AddParty(t *testing.T, companyID uuid.UUID, name string, typ catalog.PartyType) *catalog.Party {
	t.Helper()
	p, err := catalog.NewParty(companyID, name, typ)
	require.NoError(t, err)
	require.NoError(t, f.Repos.PartyRepo().Create(context.Background(), p))
	return p
}

// AddItem saves an item in the company.
func (f *Fixture) AddItem(t *testing.T, companyID uuid.UUID, in catalog.NewItemInput) *catalog.Item {
	t.Helper()
	item, err := catalog.NewItem(companyID, in)
	require.NoError(t, err)
	require.NoError(t, f.Repos.ItemRepo().Create(context.Background(), item))
	return item
}

// AddBankAccount saves a bank account whose balance equals opening.
func (f *Fixture) AddBankAccount(t *testing.T, companyID uuid.UUID, bank, number string, opening decimal.Decimal) *ledger.BankAccount {
	t.Helper()
	a, err := ledger.NewBankAccount(companyID, ledger.NewBankAccountInput{
		BankName:       bank,
		AccountNumber:  number,
		OpeningBalance: opening,
	})
	require.NoError(t, err)
	require.NoError(t, f.Repos.BankAccountRepo().Create(context.Background(), a))
	return a
}

// BankBalance reloads the current balance of a bank account.
func (f *Fixture) BankBalance(t *testing.T, id uuid.UUID) decimal.Decimal {
	t.Helper()
	a, err := f.Repos.BankAccountRepo().FindByID(context.Background(), f.Company.ID, id)
	require.NoError(t, err)
	return a.CurrentBalance
}

// CashBalance reloads the current balance of the fixture cash ledger.
func (f *Fixture) CashBalance(t *testing.T) decimal.Decimal {
	t.Helper()
	l, err := f.Repos.CashLedgerRepo().FindByID(context.Background(), f.Company.ID, f.Cash.ID)
	require.NoError(t, err)
	return l.CurrentBalance
}

// Stock reloads the quantity on hand of an item.
func (f *Fixture) Stock(t *testing.T, itemID uuid.UUID) decimal.Decimal {
	t.Helper()
	item, err := f.Repos.ItemRepo().FindByID(context.Background(), f.Company.ID, itemID)
	require.NoError(t, err)
	return item.Quantity
}

// Dec parses a decimal literal, failing the test on bad input.
func Dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}
