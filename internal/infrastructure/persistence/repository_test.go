package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/billing/internal/application/uow"
	"github.com/erp/billing/internal/domain/billing"
	"github.com/erp/billing/internal/domain/catalog"
	"github.com/erp/billing/internal/domain/identity"
	"github.com/erp/billing/internal/domain/ledger"
	"github.com/erp/billing/internal/domain/shared"
	"github.com/erp/billing/internal/domain/tenant"
	"github.com/erp/billing/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestItem(t *testing.T, companyID uuid.UUID, code string, qty int64) *catalog.Item {
	t.Helper()
	item, err := catalog.NewItem(companyID, catalog.NewItemInput{
		Name:       "Item " + code,
		Code:       code,
		Quantity:   decimal.NewFromInt(qty),
		SalesPrice: decimal.NewFromInt(100),
		TaxApplied: true,
		TaxPercent: decimal.NewFromInt(18),
	})
	require.NoError(t, err)
	return item
}

func TestSeedReferenceData_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, SeedReferenceData(context.Background(), db))

	var count int64
	require.NoError(t, db.Model(&models.InvoiceTypeModel{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
	require.NoError(t, db.Model(&models.ModuleModel{}).Count(&count).Error)
	assert.Equal(t, int64(len(identity.DefaultModules())), count)
	require.NoError(t, db.Model(&models.PaymentStatusModel{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}

func TestCompanyRepository_SaveUpsertsWithVersion(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCompanyRepository(db)
	ctx := context.Background()

	company, err := tenant.NewCompany(uuid.New(), "Acme Traders")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, company))
	assert.Equal(t, 1, company.Version)

	company.Phone = "9999"
	require.NoError(t, repo.Save(ctx, company))
	assert.Equal(t, 2, company.Version)

	stale, err := repo.FindByID(ctx, company.ID)
	require.NoError(t, err)
	assert.Equal(t, "9999", stale.Phone)
	stale.Version = 1
	assert.ErrorIs(t, repo.Save(ctx, stale), shared.ErrConcurrencyConflict)

	owned, err := repo.FindByOwner(ctx, company.OwnerID)
	require.NoError(t, err)
	assert.Len(t, owned, 1)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestItemRepository_UpdateStockVersionConflict(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormItemRepository(db)
	ctx := context.Background()
	companyID := uuid.New()

	item := newTestItem(t, companyID, "SKU-1", 10)
	require.NoError(t, repo.Create(ctx, item))

	first, err := repo.FindByIDForUpdate(ctx, companyID, item.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, companyID, item.ID)
	require.NoError(t, err)

	first.ApplyMovement(catalog.StockOut, decimal.NewFromInt(4))
	require.NoError(t, repo.UpdateStock(ctx, first))
	assert.Equal(t, 2, first.Version)

	second.ApplyMovement(catalog.StockOut, decimal.NewFromInt(1))
	assert.ErrorIs(t, repo.UpdateStock(ctx, second), shared.ErrConcurrencyConflict)

	reloaded, err := repo.FindByID(ctx, companyID, item.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.Quantity.Equal(decimal.NewFromInt(6)))

	_, err = repo.FindByID(ctx, uuid.New(), item.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound, "other company must not see the item")
}

func TestItemRepository_FindAllSearchAndPaging(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormItemRepository(db)
	ctx := context.Background()
	companyID := uuid.New()

	for _, code := range []string{"PEN-1", "PEN-2", "INK-1"} {
		require.NoError(t, repo.Create(ctx, newTestItem(t, companyID, code, 1)))
	}
	require.NoError(t, repo.Create(ctx, newTestItem(t, uuid.New(), "PEN-3", 1)))

	items, total, err := repo.FindAll(ctx, companyID, shared.Filter{Search: "pen", Page: 1, PageSize: 1, OrderBy: "code", OrderDir: "asc"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, items, 1)
	assert.Equal(t, "PEN-1", items[0].Code)

	taken, err := repo.ExistsByCode(ctx, companyID, "INK-1")
	require.NoError(t, err)
	assert.True(t, taken)
}

func newTestInvoice(t *testing.T, db *testDB, companyID uuid.UUID, number string) *billing.Invoice {
	t.Helper()
	invType := db.salesType(t)
	inv, err := billing.NewInvoice(companyID, uuid.New(), invType, number, uuid.New())
	require.NoError(t, err)
	item := newTestItem(t, companyID, "X-"+number, 5)
	c, err := billing.Compute(billing.ComputationInput{
		Direction: catalog.StockOut,
		Lines: []billing.LineInput{
			{Item: item, Quantity: decimal.NewFromInt(2)},
			{Item: item, Quantity: decimal.NewFromInt(1)},
		},
	})
	require.NoError(t, err)
	inv.ApplyComputation(c, decimal.Zero)
	return inv
}

type testDB struct{ *GormReferenceRepository }

func (d *testDB) salesType(t *testing.T) billing.InvoiceType {
	t.Helper()
	types, err := d.ListInvoiceTypes(context.Background())
	require.NoError(t, err)
	for _, it := range types {
		if it.IsSales() {
			return it
		}
	}
	t.Fatal("sales invoice type not seeded")
	return billing.InvoiceType{}
}

func TestInvoiceRepository_Lifecycle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormInvoiceRepository(db)
	refs := &testDB{NewGormReferenceRepository(db)}
	ctx := context.Background()
	companyID := uuid.New()

	inv := newTestInvoice(t, refs, companyID, "INV-2026-001")
	require.NoError(t, repo.Create(ctx, inv))

	loaded, err := repo.FindByIDForUpdate(ctx, companyID, inv.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Lines, 2)
	assert.True(t, loaded.Lines[0].Quantity.Equal(decimal.NewFromInt(2)), "lines keep request order")
	assert.True(t, loaded.Total.Equal(inv.Total))
	assert.Equal(t, billing.PaymentStatusUnpaid, loaded.PaymentStatus)

	loaded.Lines = loaded.Lines[:1]
	require.NoError(t, repo.Update(ctx, loaded))
	again, err := repo.FindByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Len(t, again.Lines, 1)
	assert.Equal(t, 2, again.Version)

	_, err = again.RecordPayment(decimal.NewFromInt(10))
	require.NoError(t, err)
	require.NoError(t, repo.UpdateSettlement(ctx, again))
	assert.ErrorIs(t, repo.UpdateSettlement(ctx, loaded), shared.ErrConcurrencyConflict)

	dupe, err := repo.ExistsByNumber(ctx, companyID, "INV-2026-001", uuid.Nil)
	require.NoError(t, err)
	assert.True(t, dupe)
	self, err := repo.ExistsByNumber(ctx, companyID, "INV-2026-001", inv.ID)
	require.NoError(t, err)
	assert.False(t, self)

	again.AmountPaid = decimal.Zero
	require.NoError(t, again.MarkDeleted())
	require.NoError(t, repo.SoftDelete(ctx, again))
	_, err = repo.FindByID(ctx, inv.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestInvoiceRepository_LastNumberWithPrefix(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormInvoiceRepository(db)
	refs := &testDB{NewGormReferenceRepository(db)}
	ctx := context.Background()
	companyID := uuid.New()

	last, err := repo.LastNumberWithPrefix(ctx, companyID, "INV-2026-")
	require.NoError(t, err)
	assert.Empty(t, last)

	for _, n := range []string{"INV-2026-998", "INV-2026-1000", "INV-2026-999", "INV-2026-CUSTOM", "INV-2025-5000"} {
		require.NoError(t, repo.Create(ctx, newTestInvoice(t, refs, companyID, n)))
	}
	last, err = repo.LastNumberWithPrefix(ctx, companyID, "INV-2026-")
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-1000", last)
	assert.Equal(t, "INV-2026-1001", billing.NextInvoiceNumber(2026, last))
}

func TestInvoiceRepository_LastNumberWithPrefix_PaddedManualNumber(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormInvoiceRepository(db)
	refs := &testDB{NewGormReferenceRepository(db)}
	ctx := context.Background()
	companyID := uuid.New()

	for _, n := range []string{"INV-2026-004", "INV-2026-005", "INV-2026-0005", "INV-2026-0003"} {
		require.NoError(t, repo.Create(ctx, newTestInvoice(t, refs, companyID, n)))
	}
	last, err := repo.LastNumberWithPrefix(ctx, companyID, "INV-2026-")
	require.NoError(t, err)

	next := billing.NextInvoiceNumber(2026, last)
	assert.Equal(t, "INV-2026-006", next)
	taken, err := repo.ExistsByNumber(ctx, companyID, next, uuid.Nil)
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestRoleRepository_SaveReplacesPermissions(t *testing.T) {
	db := setupTestDB(t)
	roles := NewGormRoleRepository(db)
	perms := NewGormPermissionRepository(db)
	ctx := context.Background()
	companyID := uuid.New()

	role, err := identity.NewRole(companyID, "Cashier", "")
	require.NoError(t, err)
	require.NoError(t, role.ReplacePermissions([]identity.ModulePermission{
		{ModuleName: identity.ModuleInvoice, View: true, Create: true},
		{ModuleName: identity.ModulePayment, View: true},
	}))
	require.NoError(t, roles.Save(ctx, role))

	p, err := perms.Find(ctx, role.ID, companyID, identity.ModuleInvoice)
	require.NoError(t, err)
	assert.True(t, p.Allows(identity.ActionCreate))
	assert.False(t, p.Allows(identity.ActionDelete))

	require.NoError(t, role.ReplacePermissions([]identity.ModulePermission{
		{ModuleName: identity.ModuleParty, View: true},
	}))
	require.NoError(t, roles.Save(ctx, role))
	loaded, err := roles.FindByID(ctx, companyID, role.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Permissions, 1)
	assert.Equal(t, identity.ModuleParty, loaded.Permissions[0].ModuleName)

	taken, err := roles.ExistsByName(ctx, companyID, "cashier", uuid.Nil)
	require.NoError(t, err)
	assert.True(t, taken)

	require.NoError(t, loaded.MarkDeleted())
	require.NoError(t, roles.Save(ctx, loaded))
	_, err = perms.Find(ctx, role.ID, companyID, identity.ModuleParty)
	assert.ErrorIs(t, err, shared.ErrNotFound, "deleted roles grant nothing")
}

func TestModuleRepository_ExistsByNames(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormModuleRepository(db)

	missing, err := repo.ExistsByNames(context.Background(), []string{identity.ModuleInvoice, "Payroll"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Payroll"}, missing)
}

func TestTransactionRepository_NewestFirst(t *testing.T) {
	db := setupTestDB(t)
	accounts := NewGormBankAccountRepository(db)
	history := NewGormTransactionRepository(db)
	ctx := context.Background()
	companyID := uuid.New()

	acct, err := ledger.NewBankAccount(companyID, ledger.NewBankAccountInput{
		BankName: "HDFC", AccountNumber: "001", OpeningBalance: decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	require.NoError(t, accounts.Create(ctx, acct))

	credit, err := acct.Credit(decimal.NewFromInt(50), nil, "first")
	require.NoError(t, err)
	debit, err := acct.Debit(decimal.NewFromInt(30), nil, "second")
	require.NoError(t, err)
	debit.CreatedAt = credit.CreatedAt
	require.NoError(t, history.AppendBank(ctx, credit, debit))
	require.NoError(t, accounts.Update(ctx, acct))

	txs, total, err := history.ListBank(ctx, companyID, acct.ID, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, txs, 2)
	assert.Equal(t, "second", txs[0].Description)
	assert.True(t, txs[0].BalanceAfterTransaction.Equal(decimal.NewFromInt(120)))

	reloaded, err := accounts.FindByID(ctx, companyID, acct.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.CurrentBalance.Equal(decimal.NewFromInt(120)))
}

func TestCashLedgerRepository_ActiveLedger(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCashLedgerRepository(db)
	ctx := context.Background()
	companyID := uuid.New()

	has, err := repo.HasActive(ctx, companyID)
	require.NoError(t, err)
	assert.False(t, has)
	_, err = repo.FindActiveForUpdate(ctx, companyID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	l, err := ledger.NewCashLedger(companyID, "", decimal.NewFromInt(500))
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, l))

	active, err := repo.FindActiveForUpdate(ctx, companyID)
	require.NoError(t, err)
	assert.Equal(t, ledger.DefaultCashLedgerName, active.Name)
	assert.True(t, active.CurrentBalance.Equal(decimal.NewFromInt(500)))
}

func TestPaymentRepository_ListByInvoice(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormPaymentRepository(db)
	ctx := context.Background()
	companyID, invoiceID, cashID := uuid.New(), uuid.New(), uuid.New()
	s := ledger.Settlement{CashLedgerID: &cashID}

	in, err := ledger.NewPaymentIn(companyID, invoiceID, s, decimal.NewFromInt(10), "", uuid.New())
	require.NoError(t, err)
	require.NoError(t, repo.CreateIn(ctx, in))
	out, err := ledger.NewPaymentOut(companyID, &invoiceID, s, decimal.NewFromInt(4), "refund", uuid.New())
	require.NoError(t, err)
	out.CreatedAt = in.CreatedAt.Add(time.Second)
	require.NoError(t, repo.CreateOut(ctx, out))

	payments, err := repo.ListByInvoice(ctx, companyID, invoiceID)
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, ledger.DirectionIn, payments[0].Direction)
	assert.Equal(t, ledger.DirectionOut, payments[1].Direction)
}

func TestGormTransactionScope_RollsBackOnError(t *testing.T) {
	db := setupTestDB(t)
	txScope := NewGormTransactionScope(db)
	ctx := context.Background()
	companyID := uuid.New()
	boom := errors.New("boom")

	item := newTestItem(t, companyID, "RB-1", 3)
	err := txScope.Execute(ctx, func(repos uow.Repositories) error {
		if err := repos.ItemRepo().Create(ctx, item); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = NewGormItemRepository(db).FindByID(ctx, companyID, item.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
