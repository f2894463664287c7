package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/billing/internal/application/uow"
	"github.com/erp/billing/internal/domain/ledger"
	"github.com/erp/billing/internal/domain/shared"
	"github.com/erp/billing/internal/domain/tenant"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AccountService manages bank accounts and cash ledgers and reads their
// history. Balances only move through postings and transfers.
type AccountService struct {
	scope        uow.TransactionScope
	banks        ledger.BankAccountRepository
	cash         ledger.CashLedgerRepository
	transactions ledger.TransactionRepository
	logger       *zap.Logger
}

// NewAccountService creates a new account service
func NewAccountService(
	scope uow.TransactionScope,
	banks ledger.BankAccountRepository,
	cash ledger.CashLedgerRepository,
	transactions ledger.TransactionRepository,
	logger *zap.Logger,
) *AccountService {
	return &AccountService{
		scope:        scope,
		banks:        banks,
		cash:         cash,
		transactions: transactions,
		logger:       logger,
	}
}

// CreateBankAccount opens a bank account with current balance = opening balance
func (s *AccountService) CreateBankAccount(ctx context.Context, actor tenant.Actor, input BankAccountInput) (*BankAccountDTO, error) {
	var account *ledger.BankAccount
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		a, err := ledger.NewBankAccount(actor.CompanyID, ledger.NewBankAccountInput(input))
		if err != nil {
			return err
		}
		exists, err := repos.BankAccountRepo().ExistsByAccountNumber(ctx, actor.CompanyID, a.AccountNumber, uuid.Nil)
		if err != nil {
			return fmt.Errorf("check account number: %w", err)
		}
		if exists {
			return shared.NewDomainError(shared.CodeAlreadyExists, "A bank account with this account number already exists for this company.")
		}
		a.SetCreatedBy(actor.UserID)
		if err := repos.BankAccountRepo().Create(ctx, a); err != nil {
			return fmt.Errorf("save bank account: %w", err)
		}
		account = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("bank account created",
		zap.String("company_id", actor.CompanyID.String()),
		zap.String("bank_account_id", account.ID.String()))
	return toBankAccountDTO(account), nil
}

// UpdateBankAccount changes descriptive fields; the opening balance in input is ignored
func (s *AccountService) UpdateBankAccount(ctx context.Context, actor tenant.Actor, id uuid.UUID, input BankAccountInput) (*BankAccountDTO, error) {
	var account *ledger.BankAccount
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		a, err := lockBank(ctx, repos, actor.CompanyID, id)
		if err != nil {
			return err
		}
		exists, err := repos.BankAccountRepo().ExistsByAccountNumber(ctx, actor.CompanyID, input.AccountNumber, a.ID)
		if err != nil {
			return fmt.Errorf("check account number: %w", err)
		}
		if exists {
			return shared.NewDomainError(shared.CodeAlreadyExists, "A bank account with this account number already exists for this company.")
		}
		if err := a.UpdateDetails(input.BankName, input.AccountNumber, input.IFSC, input.AccountHolder); err != nil {
			return err
		}
		if err := repos.BankAccountRepo().Update(ctx, a); err != nil {
			return err
		}
		account = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toBankAccountDTO(account), nil
}

// DeleteBankAccount soft-deletes a bank account
func (s *AccountService) DeleteBankAccount(ctx context.Context, actor tenant.Actor, id uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos uow.Repositories) error {
		a, err := lockBank(ctx, repos, actor.CompanyID, id)
		if err != nil {
			return err
		}
		if err := a.MarkDeleted(); err != nil {
			return err
		}
		return repos.BankAccountRepo().Update(ctx, a)
	})
}

// ListBankAccounts returns the company's non-deleted bank accounts
func (s *AccountService) ListBankAccounts(ctx context.Context, actor tenant.Actor, filter shared.Filter) ([]BankAccountDTO, int64, error) {
	list, total, err := s.banks.FindAll(ctx, actor.CompanyID, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list bank accounts: %w", err)
	}
	out := make([]BankAccountDTO, 0, len(list))
	for i := range list {
		out = append(out, *toBankAccountDTO(&list[i]))
	}
	return out, total, nil
}

// BankTransactions returns a page of the account history, newest first
func (s *AccountService) BankTransactions(ctx context.Context, actor tenant.Actor, id uuid.UUID, filter shared.Filter) (*TransactionPage, error) {
	if _, err := s.banks.FindByID(ctx, actor.CompanyID, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NotFound("Bank account not found for this company.")
		}
		return nil, err
	}
	list, total, err := s.transactions.ListBank(ctx, actor.CompanyID, id, filter)
	if err != nil {
		return nil, fmt.Errorf("list bank transactions: %w", err)
	}
	page := &TransactionPage{Items: make([]TransactionDTO, 0, len(list)), Total: total, Page: filter.Page, PageSize: filter.Limit()}
	for _, t := range list {
		page.Items = append(page.Items, TransactionDTO{
			ID:                      t.ID,
			Type:                    t.Type,
			Amount:                  t.Amount,
			RelatedInvoiceID:        t.RelatedInvoiceID,
			Description:             t.Description,
			BalanceAfterTransaction: t.BalanceAfterTransaction,
			CreatedAt:               t.CreatedAt,
		})
	}
	return page, nil
}

// CreateCashLedger opens the company's cash ledger. Only one may be active.
func (s *AccountService) CreateCashLedger(ctx context.Context, actor tenant.Actor, input CashLedgerInput) (*CashLedgerDTO, error) {
	var cash *ledger.CashLedger
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		l, err := CreateDefaultCashLedger(ctx, repos, actor.CompanyID, input.Name, input.OpeningBalance)
		if err != nil {
			return err
		}
		cash = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toCashLedgerDTO(cash), nil
}

// CreateDefaultCashLedger creates the active cash ledger inside an open unit of work
func CreateDefaultCashLedger(ctx context.Context, repos uow.Repositories, companyID uuid.UUID, name string, opening decimal.Decimal) (*ledger.CashLedger, error) {
	has, err := repos.CashLedgerRepo().HasActive(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("check cash ledger: %w", err)
	}
	if has {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "A cash ledger already exists for this company.")
	}
	l, err := ledger.NewCashLedger(companyID, name, opening)
	if err != nil {
		return nil, err
	}
	if err := repos.CashLedgerRepo().Create(ctx, l); err != nil {
		return nil, fmt.Errorf("save cash ledger: %w", err)
	}
	return l, nil
}

// RenameCashLedger edits the ledger name
func (s *AccountService) RenameCashLedger(ctx context.Context, actor tenant.Actor, id uuid.UUID, name string) (*CashLedgerDTO, error) {
	var cash *ledger.CashLedger
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		l, err := findCash(ctx, repos.CashLedgerRepo(), actor.CompanyID, id)
		if err != nil {
			return err
		}
		if err := l.Rename(name); err != nil {
			return err
		}
		if err := repos.CashLedgerRepo().Update(ctx, l); err != nil {
			return err
		}
		cash = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toCashLedgerDTO(cash), nil
}

// DeleteCashLedger soft-deletes the ledger
func (s *AccountService) DeleteCashLedger(ctx context.Context, actor tenant.Actor, id uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos uow.Repositories) error {
		l, err := findCash(ctx, repos.CashLedgerRepo(), actor.CompanyID, id)
		if err != nil {
			return err
		}
		if err := l.MarkDeleted(); err != nil {
			return err
		}
		return repos.CashLedgerRepo().Update(ctx, l)
	})
}

// GetCashLedger returns one ledger of the company
func (s *AccountService) GetCashLedger(ctx context.Context, actor tenant.Actor, id uuid.UUID) (*CashLedgerDTO, error) {
	l, err := findCash(ctx, s.cash, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}
	return toCashLedgerDTO(l), nil
}

// ListCashLedgers returns the company's non-deleted ledgers
func (s *AccountService) ListCashLedgers(ctx context.Context, actor tenant.Actor) ([]CashLedgerDTO, error) {
	list, err := s.cash.FindAll(ctx, actor.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("list cash ledgers: %w", err)
	}
	out := make([]CashLedgerDTO, 0, len(list))
	for i := range list {
		out = append(out, *toCashLedgerDTO(&list[i]))
	}
	return out, nil
}

// CashTransactions returns a page of the ledger history, newest first
func (s *AccountService) CashTransactions(ctx context.Context, actor tenant.Actor, id uuid.UUID, filter shared.Filter) (*TransactionPage, error) {
	if _, err := findCash(ctx, s.cash, actor.CompanyID, id); err != nil {
		return nil, err
	}
	list, total, err := s.transactions.ListCash(ctx, actor.CompanyID, id, filter)
	if err != nil {
		return nil, fmt.Errorf("list cash transactions: %w", err)
	}
	page := &TransactionPage{Items: make([]TransactionDTO, 0, len(list)), Total: total, Page: filter.Page, PageSize: filter.Limit()}
	for _, t := range list {
		page.Items = append(page.Items, TransactionDTO{
			ID:                      t.ID,
			Type:                    t.Type,
			Amount:                  t.Amount,
			RelatedInvoiceID:        t.RelatedInvoiceID,
			Description:             t.Description,
			BalanceAfterTransaction: t.BalanceAfterTransaction,
			CreatedAt:               t.CreatedAt,
		})
	}
	return page, nil
}

func lockBank(ctx context.Context, repos uow.Repositories, companyID, id uuid.UUID) (*ledger.BankAccount, error) {
	a, err := repos.BankAccountRepo().FindByIDForUpdate(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NotFound("Bank account not found for this company.")
		}
		return nil, err
	}
	if a.Deleted {
		return nil, shared.NotFound("Bank account not found for this company.")
	}
	return a, nil
}

func findCash(ctx context.Context, repo ledger.CashLedgerRepository, companyID, id uuid.UUID) (*ledger.CashLedger, error) {
	l, err := repo.FindByID(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NotFound("Cash ledger not found for this company.")
		}
		return nil, err
	}
	if l.Deleted {
		return nil, shared.NotFound("Cash ledger not found for this company.")
	}
	return l, nil
}
