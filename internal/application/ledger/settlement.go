// Package ledger posts payments and transfers against bank accounts and
// cash ledgers.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/billing/internal/application/uow"
	"github.com/erp/billing/internal/domain/ledger"
	"github.com/erp/billing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SettlementAccount is a locked bank account or cash ledger that one
// payment posts to. Exactly one of the fields is set.
type SettlementAccount struct {
	Bank *ledger.BankAccount
	Cash *ledger.CashLedger
}

// LockSettlementAccount locks the named bank account, or the company's
// active cash ledger when bankAccountID is nil. missingBank is returned
// when the bank account does not exist in the company or is deleted.
func LockSettlementAccount(ctx context.Context, repos uow.Repositories, companyID uuid.UUID, bankAccountID *uuid.UUID, missingBank error) (*SettlementAccount, error) {
	if bankAccountID != nil {
		account, err := repos.BankAccountRepo().FindByIDForUpdate(ctx, companyID, *bankAccountID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, missingBank
			}
			return nil, fmt.Errorf("lock bank account: %w", err)
		}
		if account.Deleted {
			return nil, missingBank
		}
		return &SettlementAccount{Bank: account}, nil
	}

	cash, err := repos.CashLedgerRepo().FindActiveForUpdate(ctx, companyID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NotFound("Cash ledger not found for this company.")
		}
		return nil, fmt.Errorf("lock cash ledger: %w", err)
	}
	return &SettlementAccount{Cash: cash}, nil
}

// Settlement returns the ledger reference for a payment record
func (a *SettlementAccount) Settlement() ledger.Settlement {
	if a.Bank != nil {
		id := a.Bank.ID
		return ledger.Settlement{BankAccountID: &id}
	}
	id := a.Cash.ID
	return ledger.Settlement{CashLedgerID: &id}
}

// Balance returns the current balance
func (a *SettlementAccount) Balance() decimal.Decimal {
	if a.Bank != nil {
		return a.Bank.CurrentBalance
	}
	return a.Cash.CurrentBalance
}

// Credit adds money, then persists the balance and its history entry
func (a *SettlementAccount) Credit(ctx context.Context, repos uow.Repositories, amount decimal.Decimal, invoiceID *uuid.UUID, desc string) error {
	return a.post(ctx, repos, ledger.TransactionCredit, amount, invoiceID, desc)
}

// Debit removes money, rejecting when the balance is insufficient
func (a *SettlementAccount) Debit(ctx context.Context, repos uow.Repositories, amount decimal.Decimal, invoiceID *uuid.UUID, desc string) error {
	return a.post(ctx, repos, ledger.TransactionDebit, amount, invoiceID, desc)
}

func (a *SettlementAccount) post(ctx context.Context, repos uow.Repositories, typ ledger.TransactionType, amount decimal.Decimal, invoiceID *uuid.UUID, desc string) error {
	if a.Bank != nil {
		var (
			tx  *ledger.BankTransaction
			err error
		)
		if typ == ledger.TransactionCredit {
			tx, err = a.Bank.Credit(amount, invoiceID, desc)
		} else {
			tx, err = a.Bank.Debit(amount, invoiceID, desc)
		}
		if err != nil {
			return err
		}
		if err := repos.BankAccountRepo().Update(ctx, a.Bank); err != nil {
			return err
		}
		return repos.TransactionRepo().AppendBank(ctx, tx)
	}

	var (
		tx  *ledger.CashTransaction
		err error
	)
	if typ == ledger.TransactionCredit {
		tx, err = a.Cash.Credit(amount, invoiceID, desc)
	} else {
		tx, err = a.Cash.Debit(amount, invoiceID, desc)
	}
	if err != nil {
		return err
	}
	if err := repos.CashLedgerRepo().Update(ctx, a.Cash); err != nil {
		return err
	}
	return repos.TransactionRepo().AppendCash(ctx, tx)
}
