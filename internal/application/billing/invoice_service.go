// Package billing orchestrates the invoice lifecycle: pricing, stock
// movement, totals and the initial settlement, all in one unit of work.
package billing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	ledgerapp "github.com/erp/billing/internal/application/ledger"
	"github.com/erp/billing/internal/application/uow"
	"github.com/erp/billing/internal/domain/billing"
	"github.com/erp/billing/internal/domain/catalog"
	"github.com/erp/billing/internal/domain/ledger"
	"github.com/erp/billing/internal/domain/shared"
	"github.com/erp/billing/internal/domain/tenant"
	"github.com/erp/billing/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InvoiceService creates, updates, deletes and reads invoices
type InvoiceService struct {
	scope    uow.TransactionScope
	invoices billing.InvoiceRepository
	refs     billing.ReferenceRepository
	parties  catalog.PartyRepository
	clock    func() time.Time
	logger   *zap.Logger
	metrics  *telemetry.BillingMetrics
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	scope uow.TransactionScope,
	invoices billing.InvoiceRepository,
	refs billing.ReferenceRepository,
	parties catalog.PartyRepository,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		scope:    scope,
		invoices: invoices,
		refs:     refs,
		parties:  parties,
		clock:    time.Now,
		logger:   logger,
	}
}

// WithMetrics sets the business counters posted and deleted invoices
// report to.
func (s *InvoiceService) WithMetrics(m *telemetry.BillingMetrics) *InvoiceService {
	s.metrics = m
	return s
}

// header is the validated, loaded context shared by create and update
type header struct {
	party       *catalog.Party
	invoiceType *billing.InvoiceType
	paymentType *billing.PaymentType
	bank        *ledger.BankAccount
}

// Create posts a new invoice: it prices the lines, moves stock, writes
// totals and, when amount_paid is positive, posts the initial payment.
// Any failure rolls back the whole unit.
func (s *InvoiceService) Create(ctx context.Context, actor tenant.Actor, input CreateInvoiceInput) (*InvoiceResultDTO, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "create")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.AttrCompanyID, actor.CompanyID.String(),
		telemetry.AttrLineCount, len(input.Items),
	)

	var (
		inv      *billing.Invoice
		warnings []string
	)
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		// Locking the company row serializes number generation per company.
		if _, err := repos.CompanyRepo().FindByIDForUpdate(ctx, actor.CompanyID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NotFound("Company not found.")
			}
			return err
		}

		h, err := s.loadHeader(ctx, repos, actor.CompanyID, input.PartyID, input.InvoiceTypeID, input.PaymentTypeID, input.BankAccountID)
		if err != nil {
			return err
		}
		if input.AmountPaid.IsNegative() {
			return shared.InvalidInput("amount_paid cannot be negative")
		}
		cash := isCash(h.paymentType, input.PaymentMode)
		if input.AmountPaid.IsPositive() && h.bank == nil && !cash {
			return shared.InvalidInput("Bank account is required for non-cash payments.")
		}

		items, err := lockItems(ctx, repos, actor.CompanyID, lineItemIDs(input.Items))
		if err != nil {
			return err
		}
		c, err := billing.Compute(computationInput(h.invoiceType.StockDirection(), input.DiscountPercent, input.Items, items))
		if err != nil {
			return err
		}

		now := s.clock()
		last, err := repos.InvoiceRepo().LastNumberWithPrefix(ctx, actor.CompanyID, billing.InvoiceNumberPrefix(now.Year()))
		if err != nil {
			return fmt.Errorf("read last invoice number: %w", err)
		}
		inv, err = billing.NewInvoice(actor.CompanyID, h.party.ID, *h.invoiceType, billing.NextInvoiceNumber(now.Year(), last), actor.UserID)
		if err != nil {
			return err
		}
		inv.InvoiceDate = now
		if input.InvoiceDate != nil {
			inv.InvoiceDate = *input.InvoiceDate
		}
		inv.Notes = input.Notes
		setPayment(inv, h, input.PaymentMode)

		inv.ApplyComputation(c, input.DiscountPercent)
		if err := inv.SetInitialPayment(input.AmountPaid); err != nil {
			return err
		}
		outcome := billing.DerivePaymentStatus(inv.Total, inv.AmountPaid)

		if err := moveStock(ctx, repos, inv, c, items); err != nil {
			return err
		}
		if err := repos.InvoiceRepo().Create(ctx, inv); err != nil {
			return fmt.Errorf("save invoice: %w", err)
		}
		if inv.AmountPaid.IsPositive() {
			if err := postInitialPayment(ctx, repos, actor, inv, h); err != nil {
				return err
			}
		}

		warnings = c.Warnings
		if w := outcome.Warning(); w != "" {
			warnings = append(warnings, w)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.logRejection("invoice create rejected", actor, err)
		return nil, err
	}

	telemetry.SetAttributes(span, telemetry.AttrInvoiceID, inv.ID.String())
	s.metrics.RecordInvoicePosted(ctx, actor.CompanyID, string(inv.InvoiceTypeCode), inv.Total)
	s.logger.Info("invoice posted",
		zap.String("company_id", actor.CompanyID.String()),
		zap.String("invoice_id", inv.ID.String()),
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("total", inv.Total.String()),
		zap.Int("warnings", len(warnings)))
	return toResultDTO(inv, warnings), nil
}

// Update fully replaces the lines of a posted invoice. Stock moved by the
// old lines is returned first, then the new lines are priced and applied.
// The amount already paid is kept; a total below it is reported as an
// overpaid warning.
func (s *InvoiceService) Update(ctx context.Context, actor tenant.Actor, id uuid.UUID, input UpdateInvoiceInput) (*InvoiceResultDTO, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "update")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.AttrCompanyID, actor.CompanyID.String(),
		telemetry.AttrInvoiceID, id.String(),
		telemetry.AttrLineCount, len(input.Items),
	)

	var (
		inv      *billing.Invoice
		warnings []string
	)
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		if len(input.Items) == 0 {
			return shared.InvalidInput("At least one item is required.")
		}
		var err error
		inv, err = repos.InvoiceRepo().FindByIDForUpdate(ctx, actor.CompanyID, id)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NotFound("Invoice not found for this company.")
			}
			return err
		}
		if input.AmountPaid != nil && !input.AmountPaid.Equal(inv.AmountPaid) {
			return shared.InvalidInput("amount_paid cannot be changed on update; record a payment instead.").
				WithDetails(map[string]any{"amount_paid": inv.AmountPaid.StringFixed(shared.MoneyScale)})
		}

		h, err := s.loadHeader(ctx, repos, actor.CompanyID, input.PartyID, input.InvoiceTypeID, input.PaymentTypeID, input.BankAccountID)
		if err != nil {
			return err
		}

		if number := strings.TrimSpace(input.InvoiceNumber); number != "" && number != inv.InvoiceNumber {
			exists, err := repos.InvoiceRepo().ExistsByNumber(ctx, actor.CompanyID, number, inv.ID)
			if err != nil {
				return fmt.Errorf("check invoice number: %w", err)
			}
			if exists {
				return shared.NewDomainError(shared.CodeAlreadyExists, "Invoice number already exists for this company.")
			}
			if err := inv.Renumber(number); err != nil {
				return err
			}
		}

		ids := lineItemIDs(input.Items)
		for _, l := range inv.Lines {
			ids = append(ids, l.ItemID)
		}
		items, err := lockItems(ctx, repos, actor.CompanyID, ids)
		if err != nil {
			return err
		}

		reverse := inv.StockDirection().Reverse()
		for _, l := range inv.Lines {
			items[l.ItemID].ApplyMovement(reverse, l.StockMoved)
		}

		c, err := billing.Compute(computationInput(h.invoiceType.StockDirection(), input.DiscountPercent, input.Items, items))
		if err != nil {
			return err
		}

		inv.PartyID = h.party.ID
		inv.ChangeType(*h.invoiceType)
		inv.Notes = input.Notes
		if input.InvoiceDate != nil {
			inv.InvoiceDate = *input.InvoiceDate
		}
		setPayment(inv, h, input.PaymentMode)
		outcome := inv.ApplyComputation(c, input.DiscountPercent)

		if err := moveStock(ctx, repos, inv, c, items); err != nil {
			return err
		}
		if err := repos.InvoiceRepo().Update(ctx, inv); err != nil {
			return err
		}

		warnings = c.Warnings
		if w := outcome.Warning(); w != "" {
			warnings = append(warnings, w)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.logRejection("invoice update rejected", actor, err)
		return nil, err
	}

	s.logger.Info("invoice updated",
		zap.String("company_id", actor.CompanyID.String()),
		zap.String("invoice_id", inv.ID.String()),
		zap.String("total", inv.Total.String()))
	return toResultDTO(inv, warnings), nil
}

// Delete soft-deletes an invoice. Stock is not moved back; invoices that
// carry payments cannot be deleted.
func (s *InvoiceService) Delete(ctx context.Context, actor tenant.Actor, id uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "delete")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.AttrInvoiceID, id.String())

	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		inv, err := repos.InvoiceRepo().FindByIDForUpdate(ctx, actor.CompanyID, id)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NotFound("Invoice not found for this company.")
			}
			return err
		}
		if err := inv.MarkDeleted(); err != nil {
			return err
		}
		return repos.InvoiceRepo().SoftDelete(ctx, inv)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	s.metrics.RecordInvoiceDeleted(ctx, actor.CompanyID)
	s.logger.Info("invoice deleted",
		zap.String("company_id", actor.CompanyID.String()),
		zap.String("invoice_id", id.String()))
	return nil
}

// Get returns an invoice of the actor's company with its lines
func (s *InvoiceService) Get(ctx context.Context, actor tenant.Actor, id uuid.UUID) (*InvoiceDTO, error) {
	inv, err := s.invoices.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NotFound("Invoice not found for this company.")
		}
		return nil, err
	}
	if !inv.BelongsTo(actor.CompanyID) {
		return nil, shared.NotFound("Invoice not found for this company.")
	}
	dto := toInvoiceDTO(inv, true)
	s.label(ctx, &dto, nil, nil)
	return &dto, nil
}

// List returns the company's non-deleted invoices, newest first
func (s *InvoiceService) List(ctx context.Context, actor tenant.Actor, filter shared.Filter) (*InvoicePage, error) {
	list, total, err := s.invoices.FindAll(ctx, actor.CompanyID, filter)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	types, err := s.refs.ListInvoiceTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list invoice types: %w", err)
	}
	typeNames := make(map[uuid.UUID]string, len(types))
	for _, t := range types {
		typeNames[t.ID] = t.Name
	}
	partyNames := make(map[uuid.UUID]string)

	page := &InvoicePage{Items: make([]InvoiceDTO, 0, len(list)), Total: total, Page: filter.Page, PageSize: filter.Limit()}
	for i := range list {
		dto := toInvoiceDTO(&list[i], false)
		s.label(ctx, &dto, typeNames, partyNames)
		page.Items = append(page.Items, dto)
	}
	return page, nil
}

// CompanyOf returns the company of an invoice; used when a request names
// only the invoice
func (s *InvoiceService) CompanyOf(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	inv, err := s.invoices.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return uuid.Nil, shared.NotFound("Invoice not found.")
		}
		return uuid.Nil, err
	}
	return inv.CompanyID, nil
}

// InvoiceTypes lists the seeded invoice types
func (s *InvoiceService) InvoiceTypes(ctx context.Context) ([]InvoiceTypeDTO, error) {
	types, err := s.refs.ListInvoiceTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list invoice types: %w", err)
	}
	out := make([]InvoiceTypeDTO, 0, len(types))
	for _, t := range types {
		out = append(out, InvoiceTypeDTO{ID: t.ID, Name: t.Name, Code: string(t.Code)})
	}
	return out, nil
}

// PaymentTypes lists the seeded payment types
func (s *InvoiceService) PaymentTypes(ctx context.Context) ([]PaymentTypeDTO, error) {
	types, err := s.refs.ListPaymentTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list payment types: %w", err)
	}
	out := make([]PaymentTypeDTO, 0, len(types))
	for _, t := range types {
		out = append(out, PaymentTypeDTO{ID: t.ID, Name: t.Name})
	}
	return out, nil
}

func (s *InvoiceService) loadHeader(ctx context.Context, repos uow.Repositories, companyID, partyID, typeID uuid.UUID, paymentTypeID, bankID *uuid.UUID) (*header, error) {
	h := &header{}

	party, err := repos.PartyRepo().FindByID(ctx, partyID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NotFound("Party not found.")
		}
		return nil, err
	}
	if party.Deleted {
		return nil, shared.NotFound("Party not found.")
	}
	if !party.BelongsTo(companyID) {
		return nil, shared.Forbidden("Party does not belong to this company.")
	}
	h.party = party

	h.invoiceType, err = repos.ReferenceRepo().FindInvoiceType(ctx, typeID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NotFound("Invoice type not found.")
		}
		return nil, err
	}

	if paymentTypeID != nil {
		h.paymentType, err = repos.ReferenceRepo().FindPaymentType(ctx, *paymentTypeID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NotFound("Payment type not found.")
			}
			return nil, err
		}
	}

	if bankID != nil {
		bank, err := repos.BankAccountRepo().FindByIDForUpdate(ctx, companyID, *bankID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.Forbidden("Invalid or unauthorized bank account for this company.")
			}
			return nil, err
		}
		if bank.Deleted {
			return nil, shared.Forbidden("Invalid or unauthorized bank account for this company.")
		}
		h.bank = bank
	}
	return h, nil
}

func (s *InvoiceService) label(ctx context.Context, dto *InvoiceDTO, typeNames, partyNames map[uuid.UUID]string) {
	if typeNames != nil {
		dto.InvoiceTypeName = typeNames[dto.InvoiceTypeID]
	} else if t, err := s.refs.FindInvoiceType(ctx, dto.InvoiceTypeID); err == nil {
		dto.InvoiceTypeName = t.Name
	}

	if name, ok := partyNames[dto.PartyID]; ok {
		dto.PartyName = name
		return
	}
	if p, err := s.parties.FindByID(ctx, dto.PartyID); err == nil {
		dto.PartyName = p.Name
		if partyNames != nil {
			partyNames[dto.PartyID] = p.Name
		}
	}
}

func (s *InvoiceService) logRejection(msg string, actor tenant.Actor, err error) {
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

func isCash(pt *billing.PaymentType, mode string) bool {
	if pt != nil {
		return pt.IsCash()
	}
	return billing.PaymentType{Name: mode}.IsCash()
}

func setPayment(inv *billing.Invoice, h *header, mode string) {
	inv.PaymentMode = strings.TrimSpace(mode)
	inv.PaymentTypeID = nil
	if h.paymentType != nil {
		id := h.paymentType.ID
		inv.PaymentTypeID = &id
	}
	inv.BankAccountID = nil
	if h.bank != nil {
		id := h.bank.ID
		inv.BankAccountID = &id
	}
}

func lineItemIDs(lines []LineRequest) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ItemID)
	}
	return ids
}

// lockItems locks each distinct item once, in id order
func lockItems(ctx context.Context, repos uow.Repositories, companyID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*catalog.Item, error) {
	unique := make([]uuid.UUID, 0, len(ids))
	items := make(map[uuid.UUID]*catalog.Item, len(ids))
	for _, id := range ids {
		if _, ok := items[id]; ok {
			continue
		}
		items[id] = nil
		unique = append(unique, id)
	}
	sort.Slice(unique, func(i, j int) bool { return bytes.Compare(unique[i][:], unique[j][:]) < 0 })

	for _, id := range unique {
		item, err := repos.ItemRepo().FindByIDForUpdate(ctx, companyID, id)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NotFound(fmt.Sprintf("Item %s not found in this company.", id))
			}
			return nil, fmt.Errorf("lock item: %w", err)
		}
		items[id] = item
	}
	return items, nil
}

func computationInput(dir catalog.StockDirection, headerPct decimal.Decimal, lines []LineRequest, items map[uuid.UUID]*catalog.Item) billing.ComputationInput {
	in := billing.ComputationInput{
		Direction:             dir,
		HeaderDiscountPercent: headerPct,
		Lines:                 make([]billing.LineInput, 0, len(lines)),
	}
	for _, l := range lines {
		in.Lines = append(in.Lines, billing.LineInput{
			Item:            items[l.ItemID],
			Quantity:        l.Quantity,
			DiscountPercent: l.DiscountPercent,
		})
	}
	return in
}

// moveStock applies the computed lines to item stock, records what each
// line actually moved and persists every locked item whose stock changed
func moveStock(ctx context.Context, repos uow.Repositories, inv *billing.Invoice, c *billing.Computation, items map[uuid.UUID]*catalog.Item) error {
	dir := inv.StockDirection()
	for i, cl := range c.Lines {
		m := cl.Item.ApplyMovement(dir, cl.Quantity)
		inv.Lines[i].StockMoved = m.After.Sub(m.Before).Abs()
	}

	ids := make([]uuid.UUID, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return bytes.Compare(ids[i][:], ids[j][:]) < 0 })
	for _, id := range ids {
		if err := repos.ItemRepo().UpdateStock(ctx, items[id]); err != nil {
			return err
		}
	}
	return nil
}

// postInitialPayment settles amount_paid given at creation. Sales invoices
// receive money; purchase invoices pay it out.
func postInitialPayment(ctx context.Context, repos uow.Repositories, actor tenant.Actor, inv *billing.Invoice, h *header) error {
	// the bank account, when named, is already locked by loadHeader
	account := &ledgerapp.SettlementAccount{Bank: h.bank}
	if h.bank == nil {
		var err error
		account, err = ledgerapp.LockSettlementAccount(ctx, repos, actor.CompanyID, nil, nil)
		if err != nil {
			return err
		}
	}

	invoiceID := inv.ID
	if inv.Type().IsPurchase() {
		if err := account.Debit(ctx, repos, inv.AmountPaid, &invoiceID, ledger.PaymentOutDescription("", inv.InvoiceNumber)); err != nil {
			return err
		}
		p, err := ledger.NewPaymentOut(actor.CompanyID, &invoiceID, account.Settlement(), inv.AmountPaid, "", actor.UserID)
		if err != nil {
			return err
		}
		return repos.PaymentRepo().CreateOut(ctx, p)
	}

	if err := account.Credit(ctx, repos, inv.AmountPaid, &invoiceID, ledger.PaymentInDescription("", inv.InvoiceNumber)); err != nil {
		return err
	}
	p, err := ledger.NewPaymentIn(actor.CompanyID, invoiceID, account.Settlement(), inv.AmountPaid, "", actor.UserID)
	if err != nil {
		return err
	}
	return repos.PaymentRepo().CreateIn(ctx, p)
}
