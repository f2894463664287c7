package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/billing/internal/application/uow"
	"github.com/erp/billing/internal/domain/billing"
	"github.com/erp/billing/internal/domain/ledger"
	"github.com/erp/billing/internal/domain/shared"
	"github.com/erp/billing/internal/domain/tenant"
	"github.com/erp/billing/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PostingService records PaymentIn and PaymentOut. Each posting mutates
// exactly one running balance and appends one history entry.
type PostingService struct {
	scope   uow.TransactionScope
	logger  *zap.Logger
	metrics *telemetry.BillingMetrics
}

// NewPostingService creates a new posting service
func NewPostingService(scope uow.TransactionScope, logger *zap.Logger) *PostingService {
	return &PostingService{scope: scope, logger: logger}
}

// WithMetrics sets the business counters postings report to.
func (s *PostingService) WithMetrics(m *telemetry.BillingMetrics) *PostingService {
	s.metrics = m
	return s
}

func accountKind(bankAccountID *uuid.UUID) string {
	if bankAccountID == nil {
		return "cash"
	}
	return "bank"
}

// PaymentIn settles part of an invoice. The amount may not exceed the
// invoice's remaining balance.
func (s *PostingService) PaymentIn(ctx context.Context, actor tenant.Actor, input PaymentInInput) (*PaymentResultDTO, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "payment_in")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.AttrCompanyID, actor.CompanyID.String(),
		telemetry.AttrInvoiceID, input.InvoiceID.String(),
		telemetry.AttrAmount, input.Amount.String(),
	)

	result := &PaymentResultDTO{Warnings: []string{}}
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		if _, err := repos.CompanyRepo().FindByID(ctx, actor.CompanyID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NotFound("Company not found")
			}
			return err
		}

		account, err := LockSettlementAccount(ctx, repos, actor.CompanyID, input.BankAccountID,
			shared.Forbidden("Invalid or inactive bank account for this company"))
		if err != nil {
			return err
		}

		inv, err := repos.InvoiceRepo().FindByIDForUpdate(ctx, actor.CompanyID, input.InvoiceID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NotFound("Invoice not found for this company")
			}
			return err
		}

		outcome, err := inv.RecordPayment(input.Amount)
		if err != nil {
			return err
		}
		if err := account.Credit(ctx, repos, input.Amount, &inv.ID, ledger.PaymentInDescription(input.Note, inv.InvoiceNumber)); err != nil {
			return err
		}

		payment, err := ledger.NewPaymentIn(actor.CompanyID, inv.ID, account.Settlement(), input.Amount, input.Note, actor.UserID)
		if err != nil {
			return err
		}
		if err := repos.PaymentRepo().CreateIn(ctx, payment); err != nil {
			return fmt.Errorf("save payment in: %w", err)
		}
		if err := repos.InvoiceRepo().UpdateSettlement(ctx, inv); err != nil {
			return err
		}

		result.PaymentID = payment.ID
		result.Amount = payment.Amount
		result.BankAccountID = payment.BankAccountID
		result.CashLedgerID = payment.CashLedgerID
		result.BalanceAfter = account.Balance()
		settlementResult(inv, outcome, result)
		return nil
	})
	s.metrics.RecordPayment(ctx, actor.CompanyID, telemetry.DirectionIn, accountKind(input.BankAccountID), input.Amount, err)
	if err != nil {
		telemetry.RecordError(span, err)
		s.logRejection("payment in rejected", actor, err)
		return nil, err
	}

	s.logger.Info("payment in recorded",
		zap.String("company_id", actor.CompanyID.String()),
		zap.String("invoice_id", input.InvoiceID.String()),
		zap.String("amount", result.Amount.String()),
		zap.String("payment_status", result.PaymentStatus))
	return result, nil
}

// PaymentOut pays money out of a bank account or the cash ledger. When it
// names a purchase invoice the invoice is settled by the same amount.
func (s *PostingService) PaymentOut(ctx context.Context, actor tenant.Actor, input PaymentOutInput) (*PaymentResultDTO, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "payment_out")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.AttrCompanyID, actor.CompanyID.String(),
		telemetry.AttrAmount, input.Amount.String(),
	)

	result := &PaymentResultDTO{Warnings: []string{}}
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		if input.BankAccountID == nil {
			if input.PaymentTypeID == nil {
				return shared.InvalidInput("bank_account or a cash payment_type is required")
			}
			pt, err := repos.ReferenceRepo().FindPaymentType(ctx, *input.PaymentTypeID)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					return shared.NotFound("Payment type not found.")
				}
				return err
			}
			if !pt.IsCash() {
				return shared.InvalidInput("Bank account is required for non-cash payments.")
			}
		}

		account, err := LockSettlementAccount(ctx, repos, actor.CompanyID, input.BankAccountID,
			shared.NotFound("Bank account not found for this company."))
		if err != nil {
			return err
		}

		var (
			inv     *billing.Invoice
			outcome billing.PaymentOutcome
		)
		if input.InvoiceID != nil {
			inv, err = repos.InvoiceRepo().FindByIDForUpdate(ctx, actor.CompanyID, *input.InvoiceID)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					return shared.NotFound("Invoice not found for this company")
				}
				return err
			}
			if inv.Type().IsPurchase() {
				if outcome, err = inv.RecordPayment(input.Amount); err != nil {
					return err
				}
			}
		}

		number := ""
		if inv != nil {
			number = inv.InvoiceNumber
		}
		if err := account.Debit(ctx, repos, input.Amount, input.InvoiceID, ledger.PaymentOutDescription(input.Note, number)); err != nil {
			return err
		}

		payment, err := ledger.NewPaymentOut(actor.CompanyID, input.InvoiceID, account.Settlement(), input.Amount, input.Note, actor.UserID)
		if err != nil {
			return err
		}
		if err := repos.PaymentRepo().CreateOut(ctx, payment); err != nil {
			return fmt.Errorf("save payment out: %w", err)
		}

		result.PaymentID = payment.ID
		result.Amount = payment.Amount
		result.BankAccountID = payment.BankAccountID
		result.CashLedgerID = payment.CashLedgerID
		result.BalanceAfter = account.Balance()
		if inv != nil {
			if inv.Type().IsPurchase() {
				if err := repos.InvoiceRepo().UpdateSettlement(ctx, inv); err != nil {
					return err
				}
				settlementResult(inv, outcome, result)
			} else {
				id := inv.ID
				result.InvoiceID = &id
				result.InvoiceNumber = inv.InvoiceNumber
			}
		}
		return nil
	})
	s.metrics.RecordPayment(ctx, actor.CompanyID, telemetry.DirectionOut, accountKind(input.BankAccountID), input.Amount, err)
	if err != nil {
		telemetry.RecordError(span, err)
		s.logRejection("payment out rejected", actor, err)
		return nil, err
	}

	s.logger.Info("payment out recorded",
		zap.String("company_id", actor.CompanyID.String()),
		zap.String("amount", result.Amount.String()),
		zap.String("balance_after", result.BalanceAfter.String()))
	return result, nil
}

func (s *PostingService) logRejection(msg string, actor tenant.Actor, err error) {
	var derr *shared.DomainError
	if errors.As(err, &derr) {
		s.logger.Warn(msg,
			zap.String("company_id", actor.CompanyID.String()),
			zap.String("code", derr.Code),
			zap.String("reason", derr.Message))
		return
	}
	s.logger.Error(msg, zap.String("company_id", actor.CompanyID.String()), zap.Error(err))
}
