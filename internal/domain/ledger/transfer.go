package ledger

import (
	"errors"
	"fmt"

	"github.com/erp/billing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BankTransfer moves money between two accounts of one company
type BankTransfer struct {
	shared.CompanyAggregateRoot
	FromAccountID uuid.UUID
	ToAccountID   uuid.UUID
	Amount        decimal.Decimal
	Note          string
	Deleted       bool
}

// TransferPosting is the pair of history entries written by one transfer
// movement (apply or reverse)
type TransferPosting struct {
	Debit  *BankTransaction
	Credit *BankTransaction
}

// Entries returns the debit then the credit entry
func (p TransferPosting) Entries() []*BankTransaction {
	return []*BankTransaction{p.Debit, p.Credit}
}

// NewBankTransfer debits from and credits to, returning the transfer and
// the two history entries.
func NewBankTransfer(from, to *BankAccount, amount decimal.Decimal, note string, by uuid.UUID) (*BankTransfer, TransferPosting, error) {
	if err := checkPair(from, to); err != nil {
		return nil, TransferPosting{}, err
	}
	t := &BankTransfer{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(from.CompanyID),
		FromAccountID:        from.ID,
		ToAccountID:          to.ID,
		Amount:               shared.RoundMoney(amount),
		Note:                 note,
	}
	t.SetCreatedBy(by)
	posting, err := move(from, to, t.Amount, t.description())
	if err != nil {
		return nil, TransferPosting{}, err
	}
	return t, posting, nil
}

// Reverse undoes the transfer's effect: from is credited back and to is
// debited by the recorded amount. accounts must contain the transfer's
// from and to accounts.
func (t *BankTransfer) Reverse(accounts map[uuid.UUID]*BankAccount) (TransferPosting, error) {
	if t.Deleted {
		return TransferPosting{}, shared.NotFound("Bank transfer not found for this company.")
	}
	from, to, err := t.accounts(accounts)
	if err != nil {
		return TransferPosting{}, err
	}
	desc := fmt.Sprintf("Reversal: %s", t.description())
	debit, err := to.Debit(t.Amount, nil, desc)
	if err != nil {
		var derr *shared.DomainError
		if errors.As(err, &derr) && derr.Code == shared.CodeInsufficientBalance {
			return TransferPosting{}, shared.NewDomainError(shared.CodeInsufficientBalance,
				"Destination account no longer holds the transferred amount.").WithDetails(derr.Details)
		}
		return TransferPosting{}, err
	}
	credit, err := from.Credit(t.Amount, nil, desc)
	if err != nil {
		return TransferPosting{}, err
	}
	return TransferPosting{Debit: debit, Credit: credit}, nil
}

// Revise reverses the current effect and applies the new accounts and
// amount. accounts must hold the old and the new accounts; when the new
// source lacks funds after the reversal, the whole revision must be rolled
// back by the caller.
func (t *BankTransfer) Revise(accounts map[uuid.UUID]*BankAccount, fromID, toID uuid.UUID, amount decimal.Decimal, note string) ([]TransferPosting, error) {
	reversal, err := t.Reverse(accounts)
	if err != nil {
		return nil, err
	}
	from, ok := accounts[fromID]
	if !ok {
		return nil, shared.NotFound("Bank account not found for this company.")
	}
	to, ok := accounts[toID]
	if !ok {
		return nil, shared.NotFound("Bank account not found for this company.")
	}
	if err := checkPair(from, to); err != nil {
		return nil, err
	}
	if from.CompanyID != t.CompanyID {
		return nil, shared.Forbidden("Bank accounts must belong to the transfer's company.")
	}

	t.FromAccountID = from.ID
	t.ToAccountID = to.ID
	t.Amount = shared.RoundMoney(amount)
	t.Note = note
	applied, err := move(from, to, t.Amount, t.description())
	if err != nil {
		return nil, err
	}
	t.Touch()
	return []TransferPosting{reversal, applied}, nil
}

// Delete reverses the transfer and flags it deleted
func (t *BankTransfer) Delete(accounts map[uuid.UUID]*BankAccount) (TransferPosting, error) {
	posting, err := t.Reverse(accounts)
	if err != nil {
		return TransferPosting{}, err
	}
	t.Deleted = true
	t.Touch()
	return posting, nil
}

func (t *BankTransfer) accounts(accounts map[uuid.UUID]*BankAccount) (*BankAccount, *BankAccount, error) {
	from, ok := accounts[t.FromAccountID]
	if !ok {
		return nil, nil, shared.NotFound("Source bank account not found for this company.")
	}
	to, ok := accounts[t.ToAccountID]
	if !ok {
		return nil, nil, shared.NotFound("Destination bank account not found for this company.")
	}
	return from, to, nil
}

func (t *BankTransfer) description() string {
	if t.Note != "" {
		return t.Note
	}
	return "Bank Transfer"
}

func checkPair(from, to *BankAccount) error {
	if from == nil || to == nil {
		return shared.InvalidInput("from_account and to_account are required")
	}
	if from.ID == to.ID {
		return shared.NewDomainError(shared.CodeSameAccount, "Source and destination accounts must be different.")
	}
	if from.CompanyID != to.CompanyID {
		return shared.Forbidden("Both bank accounts must belong to the same company.")
	}
	return nil
}

func move(from, to *BankAccount, amount decimal.Decimal, desc string) (TransferPosting, error) {
	debit, err := from.Debit(amount, nil, desc)
	if err != nil {
		return TransferPosting{}, err
	}
	credit, err := to.Credit(amount, nil, desc)
	if err != nil {
		return TransferPosting{}, err
	}
	return TransferPosting{Debit: debit, Credit: credit}, nil
}
