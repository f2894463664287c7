package ledger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/erp/billing/internal/application/uow"
	"github.com/erp/billing/internal/domain/ledger"
	"github.com/erp/billing/internal/domain/shared"
	"github.com/erp/billing/internal/domain/tenant"
	"github.com/erp/billing/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TransferService moves money between two bank accounts of one company
type TransferService struct {
	scope     uow.TransactionScope
	transfers ledger.TransferRepository
	logger    *zap.Logger
	metrics   *telemetry.BillingMetrics
}

// NewTransferService creates a new transfer service
func NewTransferService(scope uow.TransactionScope, transfers ledger.TransferRepository, logger *zap.Logger) *TransferService {
	return &TransferService{scope: scope, transfers: transfers, logger: logger}
}

// WithMetrics sets the business counters transfers report to.
func (s *TransferService) WithMetrics(m *telemetry.BillingMetrics) *TransferService {
	s.metrics = m
	return s
}

// Create debits the source and credits the destination account
func (s *TransferService) Create(ctx context.Context, actor tenant.Actor, input TransferInput) (*TransferDTO, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "transfer", "create")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.AttrCompanyID, actor.CompanyID.String(),
		telemetry.AttrAmount, input.Amount.String(),
	)

	var result *TransferDTO
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		if input.FromAccountID == input.ToAccountID {
			return shared.NewDomainError(shared.CodeSameAccount, "Source and destination accounts must be different.")
		}
		accounts, err := lockAccounts(ctx, repos, actor.CompanyID, input.FromAccountID, input.ToAccountID)
		if err != nil {
			return err
		}
		t, posting, err := ledger.NewBankTransfer(accounts[input.FromAccountID], accounts[input.ToAccountID], input.Amount, input.Note, actor.UserID)
		if err != nil {
			return err
		}
		if err := persist(ctx, repos, accounts, posting); err != nil {
			return err
		}
		if err := repos.TransferRepo().Create(ctx, t); err != nil {
			return fmt.Errorf("save transfer: %w", err)
		}
		result = transferResult(t, accounts)
		return nil
	})
	s.metrics.RecordTransfer(ctx, actor.CompanyID, err)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("bank transfer created",
		zap.String("company_id", actor.CompanyID.String()),
		zap.String("transfer_id", result.ID.String()),
		zap.String("amount", result.Amount.String()))
	return result, nil
}

// Update reverses the original transfer before applying the new accounts
// and amount. When the new source lacks funds after the reversal nothing is
// changed.
func (s *TransferService) Update(ctx context.Context, actor tenant.Actor, id uuid.UUID, input TransferInput) (*TransferDTO, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "transfer", "update")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.AttrCompanyID, actor.CompanyID.String(),
		telemetry.AttrTransferID, id.String(),
	)

	var result *TransferDTO
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		t, err := findTransfer(ctx, repos, actor.CompanyID, id)
		if err != nil {
			return err
		}
		if input.FromAccountID == input.ToAccountID {
			return shared.NewDomainError(shared.CodeSameAccount, "Source and destination accounts must be different.")
		}
		accounts, err := lockAccounts(ctx, repos, actor.CompanyID, t.FromAccountID, t.ToAccountID, input.FromAccountID, input.ToAccountID)
		if err != nil {
			return err
		}
		postings, err := t.Revise(accounts, input.FromAccountID, input.ToAccountID, input.Amount, input.Note)
		if err != nil {
			return err
		}
		if err := persist(ctx, repos, accounts, postings...); err != nil {
			return err
		}
		if err := repos.TransferRepo().Update(ctx, t); err != nil {
			return err
		}
		result = transferResult(t, accounts)
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("bank transfer revised",
		zap.String("company_id", actor.CompanyID.String()),
		zap.String("transfer_id", id.String()),
		zap.String("amount", result.Amount.String()))
	return result, nil
}

// Delete reverses the transfer on both accounts and flags it deleted
func (s *TransferService) Delete(ctx context.Context, actor tenant.Actor, id uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "transfer", "delete")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.AttrTransferID, id.String())

	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		t, err := findTransfer(ctx, repos, actor.CompanyID, id)
		if err != nil {
			return err
		}
		accounts, err := lockAccounts(ctx, repos, actor.CompanyID, t.FromAccountID, t.ToAccountID)
		if err != nil {
			return err
		}
		posting, err := t.Delete(accounts)
		if err != nil {
			return err
		}
		if err := persist(ctx, repos, accounts, posting); err != nil {
			return err
		}
		return repos.TransferRepo().Update(ctx, t)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	s.logger.Info("bank transfer reversed",
		zap.String("company_id", actor.CompanyID.String()),
		zap.String("transfer_id", id.String()))
	return nil
}

// List returns the company's non-deleted transfers, newest first
func (s *TransferService) List(ctx context.Context, actor tenant.Actor, filter shared.Filter) ([]TransferDTO, int64, error) {
	list, total, err := s.transfers.FindAll(ctx, actor.CompanyID, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list transfers: %w", err)
	}
	out := make([]TransferDTO, 0, len(list))
	for i := range list {
		out = append(out, *toTransferDTO(&list[i]))
	}
	return out, total, nil
}

func findTransfer(ctx context.Context, repos uow.Repositories, companyID, id uuid.UUID) (*ledger.BankTransfer, error) {
	t, err := repos.TransferRepo().FindByIDForUpdate(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NotFound("Bank transfer not found for this company.")
		}
		return nil, err
	}
	if t.Deleted {
		return nil, shared.NotFound("Bank transfer not found for this company.")
	}
	return t, nil
}

// lockAccounts locks the distinct accounts in id order so that concurrent
// transfers over the same accounts cannot deadlock
func lockAccounts(ctx context.Context, repos uow.Repositories, companyID uuid.UUID, ids ...uuid.UUID) (map[uuid.UUID]*ledger.BankAccount, error) {
	unique := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	sort.Slice(unique, func(i, j int) bool { return bytes.Compare(unique[i][:], unique[j][:]) < 0 })

	accounts := make(map[uuid.UUID]*ledger.BankAccount, len(unique))
	for _, id := range unique {
		a, err := repos.BankAccountRepo().FindByIDForUpdate(ctx, companyID, id)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NotFound("Bank account not found for this company.").
					WithDetails(map[string]any{"bank_account": id.String()})
			}
			return nil, fmt.Errorf("lock bank account: %w", err)
		}
		if a.Deleted {
			return nil, shared.NotFound("Bank account not found for this company.").
				WithDetails(map[string]any{"bank_account": id.String()})
		}
		accounts[id] = a
	}
	return accounts, nil
}

// persist writes every account touched by the postings and appends their
// entries in posting order
func persist(ctx context.Context, repos uow.Repositories, accounts map[uuid.UUID]*ledger.BankAccount, postings ...ledger.TransferPosting) error {
	touched := make(map[uuid.UUID]struct{})
	var entries []*ledger.BankTransaction
	for _, p := range postings {
		for _, e := range p.Entries() {
			touched[e.BankAccountID] = struct{}{}
			entries = append(entries, e)
		}
	}
	ids := make([]uuid.UUID, 0, len(touched))
	for id := range touched {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return bytes.Compare(ids[i][:], ids[j][:]) < 0 })
	for _, id := range ids {
		if err := repos.BankAccountRepo().Update(ctx, accounts[id]); err != nil {
			return err
		}
	}
	return repos.TransactionRepo().AppendBank(ctx, entries...)
}

func transferResult(t *ledger.BankTransfer, accounts map[uuid.UUID]*ledger.BankAccount) *TransferDTO {
	dto := toTransferDTO(t)
	if from, ok := accounts[t.FromAccountID]; ok {
		b := from.CurrentBalance
		dto.FromBalance = &b
	}
	if to, ok := accounts[t.ToAccountID]; ok {
		b := to.CurrentBalance
		dto.ToBalance = &b
	}
	return dto
}
