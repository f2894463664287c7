package ledger

import (
	"errors"
	"testing"

	"github.com/erp/billing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newAccount(t *testing.T, companyID uuid.UUID, opening string) *BankAccount {
	t.Helper()
	a, err := NewBankAccount(companyID, NewBankAccountInput{
		BankName:       "State Bank",
		AccountNumber:  uuid.NewString()[:8],
		OpeningBalance: d(opening),
	})
	require.NoError(t, err)
	return a
}

func TestNewBankAccount(t *testing.T) {
	companyID := uuid.New()
	a := newAccount(t, companyID, "1500.5")
	assert.True(t, d("1500.5").Equal(a.CurrentBalance))
	assert.True(t, a.OpeningBalance.Equal(a.CurrentBalance))
	assert.Equal(t, 1, a.Version)

	_, err := NewBankAccount(companyID, NewBankAccountInput{BankName: "x", AccountNumber: "1", OpeningBalance: d("-1")})
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	_, err = NewBankAccount(companyID, NewBankAccountInput{AccountNumber: "1"})
	assert.Error(t, err)
}

func TestBankAccount_CreditDebit(t *testing.T) {
	a := newAccount(t, uuid.New(), "100")
	invoiceID := uuid.New()

	tx, err := a.Credit(d("50"), &invoiceID, "Payment In")
	require.NoError(t, err)
	assert.Equal(t, TransactionCredit, tx.Type)
	assert.True(t, d("150").Equal(tx.BalanceAfterTransaction))
	assert.True(t, a.CurrentBalance.Equal(tx.BalanceAfterTransaction))
	assert.Equal(t, a.ID, tx.BankAccountID)
	assert.Equal(t, &invoiceID, tx.RelatedInvoiceID)

	tx, err = a.Debit(d("150"), nil, "Payment Out")
	require.NoError(t, err)
	assert.Equal(t, TransactionDebit, tx.Type)
	assert.True(t, a.CurrentBalance.IsZero())
	assert.True(t, tx.BalanceAfterTransaction.IsZero())

	_, err = a.Debit(d("0.01"), nil, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInsufficientBalance))
	assert.Equal(t, "Insufficient bank balance.", err.Error())
	assert.True(t, a.CurrentBalance.IsZero())

	_, err = a.Credit(d("-5"), nil, "")
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
}

func TestBankAccount_DeletedRejectsPostings(t *testing.T) {
	a := newAccount(t, uuid.New(), "100")
	require.NoError(t, a.MarkDeleted())
	_, err := a.Credit(d("1"), nil, "")
	assert.True(t, errors.Is(err, shared.ErrNotFound))
	assert.Error(t, a.MarkDeleted())
}

func TestCashLedger(t *testing.T) {
	l, err := NewCashLedger(uuid.New(), "", d("20"))
	require.NoError(t, err)
	assert.Equal(t, DefaultCashLedgerName, l.Name)

	tx, err := l.Credit(d("5.255"), nil, "sale")
	require.NoError(t, err)
	assert.True(t, d("25.26").Equal(l.CurrentBalance))
	assert.True(t, l.CurrentBalance.Equal(tx.BalanceAfterTransaction))
	assert.Equal(t, l.ID, tx.CashLedgerID)

	_, err = l.Debit(d("100"), nil, "")
	require.Error(t, err)
	assert.Equal(t, "Insufficient cash balance.", err.Error())
}

func TestPaymentDescriptions(t *testing.T) {
	assert.Equal(t, "rent", PaymentOutDescription("rent", "INV-2026-001"))
	assert.Equal(t, "Payment Out (Invoice #INV-2026-001)", PaymentOutDescription("", "INV-2026-001"))
	assert.Equal(t, "Payment Out", PaymentOutDescription("", ""))
	assert.Equal(t, "Payment In (Invoice #7)", PaymentInDescription("", "7"))
}

func TestNewPayment(t *testing.T) {
	companyID := uuid.New()
	bankID := uuid.New()
	cashID := uuid.New()

	t.Run("requires exactly one settlement ledger", func(t *testing.T) {
		_, err := NewPaymentIn(companyID, uuid.New(), Settlement{}, d("1"), "", uuid.New())
		assert.Error(t, err)
		_, err = NewPaymentIn(companyID, uuid.New(), Settlement{BankAccountID: &bankID, CashLedgerID: &cashID}, d("1"), "", uuid.New())
		assert.Error(t, err)
	})

	t.Run("payment in requires invoice", func(t *testing.T) {
		_, err := NewPaymentIn(companyID, uuid.Nil, Settlement{BankAccountID: &bankID}, d("1"), "", uuid.New())
		assert.Error(t, err)
	})

	t.Run("payment out without invoice", func(t *testing.T) {
		p, err := NewPaymentOut(companyID, nil, Settlement{CashLedgerID: &cashID}, d("12.345"), "fuel", uuid.New())
		require.NoError(t, err)
		assert.Equal(t, DirectionOut, p.Direction)
		assert.True(t, d("12.35").Equal(p.Amount))
		assert.True(t, Settlement{CashLedgerID: p.CashLedgerID}.IsCash())
	})

	t.Run("non-positive amount", func(t *testing.T) {
		_, err := NewPaymentOut(companyID, nil, Settlement{BankAccountID: &bankID}, decimal.Zero, "", uuid.New())
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})
}

func accountsOf(list ...*BankAccount) map[uuid.UUID]*BankAccount {
	m := make(map[uuid.UUID]*BankAccount, len(list))
	for _, a := range list {
		m[a.ID] = a
	}
	return m
}

func TestBankTransfer_Create(t *testing.T) {
	companyID := uuid.New()
	from := newAccount(t, companyID, "1000")
	to := newAccount(t, companyID, "200")

	tr, posting, err := NewBankTransfer(from, to, d("300"), "", uuid.New())
	require.NoError(t, err)
	assert.True(t, d("700").Equal(from.CurrentBalance))
	assert.True(t, d("500").Equal(to.CurrentBalance))
	assert.Equal(t, TransactionDebit, posting.Debit.Type)
	assert.Equal(t, from.ID, posting.Debit.BankAccountID)
	assert.True(t, d("700").Equal(posting.Debit.BalanceAfterTransaction))
	assert.Equal(t, to.ID, posting.Credit.BankAccountID)
	assert.True(t, d("500").Equal(posting.Credit.BalanceAfterTransaction))
	assert.Equal(t, companyID, tr.CompanyID)
	assert.Len(t, posting.Entries(), 2)
}

func TestBankTransfer_CreateRejections(t *testing.T) {
	companyID := uuid.New()
	from := newAccount(t, companyID, "100")
	to := newAccount(t, companyID, "0")
	foreign := newAccount(t, uuid.New(), "100")

	_, _, err := NewBankTransfer(from, from, d("1"), "", uuid.New())
	assert.True(t, errors.Is(err, shared.ErrSameAccount))

	_, _, err = NewBankTransfer(from, foreign, d("1"), "", uuid.New())
	assert.True(t, errors.Is(err, shared.ErrForbidden))

	_, _, err = NewBankTransfer(from, to, d("100.01"), "", uuid.New())
	assert.True(t, errors.Is(err, shared.ErrInsufficientBalance))
	assert.True(t, d("100").Equal(from.CurrentBalance))
	assert.True(t, to.CurrentBalance.IsZero())
}

func TestBankTransfer_UpdateThenDeleteRestoresBalances(t *testing.T) {
	companyID := uuid.New()
	a := newAccount(t, companyID, "1000")
	b := newAccount(t, companyID, "500")
	c := newAccount(t, companyID, "50")
	accounts := accountsOf(a, b, c)

	tr, _, err := NewBankTransfer(a, b, d("400"), "", uuid.New())
	require.NoError(t, err)

	assert.True(t, d("600").Equal(a.CurrentBalance))
	assert.True(t, d("900").Equal(b.CurrentBalance))

	postings, err := tr.Revise(accounts, b.ID, c.ID, d("450"), "moved")
	require.NoError(t, err)
	require.Len(t, postings, 2)
	assert.True(t, d("1000").Equal(a.CurrentBalance))
	assert.True(t, d("50").Equal(b.CurrentBalance))
	assert.True(t, d("500").Equal(c.CurrentBalance))
	assert.Equal(t, b.ID, tr.FromAccountID)

	_, err = tr.Delete(accounts)
	require.NoError(t, err)
	assert.True(t, tr.Deleted)
	assert.True(t, d("1000").Equal(a.CurrentBalance))
	assert.True(t, d("500").Equal(b.CurrentBalance))
	assert.True(t, d("50").Equal(c.CurrentBalance))

	_, err = tr.Delete(accounts)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestBankTransfer_ReviseChecksFundsAfterReversal(t *testing.T) {
	companyID := uuid.New()
	a := newAccount(t, companyID, "100")
	b := newAccount(t, companyID, "0")
	accounts := accountsOf(a, b)

	tr, _, err := NewBankTransfer(a, b, d("100"), "", uuid.New())
	require.NoError(t, err)

	// a is empty now but gets 100 back by the reversal
	_, err = tr.Revise(accounts, a.ID, b.ID, d("100"), "")
	require.NoError(t, err)

	_, err = tr.Revise(accounts, a.ID, b.ID, d("150"), "")
	assert.True(t, errors.Is(err, shared.ErrInsufficientBalance))
}

func TestBankTransfer_ReverseNeedsDestinationFunds(t *testing.T) {
	companyID := uuid.New()
	a := newAccount(t, companyID, "100")
	b := newAccount(t, companyID, "0")

	tr, _, err := NewBankTransfer(a, b, d("100"), "", uuid.New())
	require.NoError(t, err)
	_, err = b.Debit(d("60"), nil, "spent")
	require.NoError(t, err)

	_, err = tr.Delete(accountsOf(a, b))
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInsufficientBalance))
	assert.Contains(t, err.Error(), "Destination account")
	assert.False(t, tr.Deleted)
}
