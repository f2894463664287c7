package ledger_test

import (
	"context"
	"testing"

	ledgerapp "github.com/erp/billing/internal/application/ledger"
	"github.com/erp/billing/internal/domain/ledger"
	"github.com/erp/billing/internal/domain/shared"
	"github.com/erp/billing/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTransferService_Create(t *testing.T) {
	f := testutil.NewFixture(t)
	svc := ledgerapp.NewTransferService(f.Scope, f.Repos.TransferRepo(), zap.NewNop())
	ctx := context.Background()
	savings := f.AddBankAccount(t, f.Company.ID, "ICICI", "SAV-1", decimal.Zero)

	t.Run("same account", func(t *testing.T) {
		_, err := svc.Create(ctx, f.Owner, ledgerapp.TransferInput{
			FromAccountID: f.Bank.ID, ToAccountID: f.Bank.ID, Amount: decimal.NewFromInt(1),
		})
		assert.ErrorIs(t, err, shared.ErrSameAccount)
	})

	t.Run("insufficient funds leaves both balances", func(t *testing.T) {
		_, err := svc.Create(ctx, f.Owner, ledgerapp.TransferInput{
			FromAccountID: savings.ID, ToAccountID: f.Bank.ID, Amount: decimal.NewFromInt(1),
		})
		assert.ErrorIs(t, err, shared.ErrInsufficientBalance)
		assert.True(t, f.BankBalance(t, savings.ID).IsZero())
		assert.True(t, decimal.NewFromInt(1000).Equal(f.BankBalance(t, f.Bank.ID)))
	})

	t.Run("account of another company", func(t *testing.T) {
		other := f.AddCompany(t, uuid.New(), "Other Co")
		foreign := f.AddBankAccount(t, other.ID, "SBI", "X-1", decimal.NewFromInt(100))
		_, err := svc.Create(ctx, f.Owner, ledgerapp.TransferInput{
			FromAccountID: f.Bank.ID, ToAccountID: foreign.ID, Amount: decimal.NewFromInt(1),
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("history records both legs", func(t *testing.T) {
		_, err := svc.Create(ctx, f.Owner, ledgerapp.TransferInput{
			FromAccountID: f.Bank.ID, ToAccountID: savings.ID, Amount: decimal.NewFromInt(250), Note: "sweep",
		})
		require.NoError(t, err)

		out, _, err := f.Repos.TransactionRepo().ListBank(ctx, f.Company.ID, f.Bank.ID, shared.DefaultFilter())
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, ledger.TransactionDebit, out[0].Type)
		assert.True(t, decimal.NewFromInt(750).Equal(out[0].BalanceAfterTransaction))
		assert.Equal(t, "sweep", out[0].Description)

		in, _, err := f.Repos.TransactionRepo().ListBank(ctx, f.Company.ID, savings.ID, shared.DefaultFilter())
		require.NoError(t, err)
		require.Len(t, in, 1)
		assert.Equal(t, ledger.TransactionCredit, in[0].Type)
		assert.True(t, decimal.NewFromInt(250).Equal(in[0].BalanceAfterTransaction))
	})
}

func TestTransferService_UpdateAndDelete(t *testing.T) {
	f := testutil.NewFixture(t)
	svc := ledgerapp.NewTransferService(f.Scope, f.Repos.TransferRepo(), zap.NewNop())
	ctx := context.Background()
	savings := f.AddBankAccount(t, f.Company.ID, "ICICI", "SAV-1", decimal.NewFromInt(100))

	created, err := svc.Create(ctx, f.Owner, ledgerapp.TransferInput{
		FromAccountID: f.Bank.ID, ToAccountID: savings.ID, Amount: decimal.NewFromInt(300),
	})
	require.NoError(t, err)

	t.Run("revise amount", func(t *testing.T) {
		res, err := svc.Update(ctx, f.Owner, created.ID, ledgerapp.TransferInput{
			FromAccountID: f.Bank.ID, ToAccountID: savings.ID, Amount: decimal.NewFromInt(50),
		})
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(950).Equal(*res.FromBalance))
		assert.True(t, decimal.NewFromInt(150).Equal(*res.ToBalance))
	})

	t.Run("swap direction beyond the reversed funds fails atomically", func(t *testing.T) {
		// after reversal savings holds 100, so moving 500 out of it must fail
		_, err := svc.Update(ctx, f.Owner, created.ID, ledgerapp.TransferInput{
			FromAccountID: savings.ID, ToAccountID: f.Bank.ID, Amount: decimal.NewFromInt(500),
		})
		assert.ErrorIs(t, err, shared.ErrInsufficientBalance)
		assert.True(t, decimal.NewFromInt(950).Equal(f.BankBalance(t, f.Bank.ID)))
		assert.True(t, decimal.NewFromInt(150).Equal(f.BankBalance(t, savings.ID)))
	})

	t.Run("delete reverses the transfer", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, f.Owner, created.ID))
		assert.True(t, decimal.NewFromInt(1000).Equal(f.BankBalance(t, f.Bank.ID)))
		assert.True(t, decimal.NewFromInt(100).Equal(f.BankBalance(t, savings.ID)))

		list, total, err := svc.List(ctx, f.Owner, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, list)
	})

	t.Run("deleted transfer cannot be deleted again", func(t *testing.T) {
		assert.ErrorIs(t, svc.Delete(ctx, f.Owner, created.ID), shared.ErrNotFound)
	})
}
