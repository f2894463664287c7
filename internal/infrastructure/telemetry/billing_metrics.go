package telemetry

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Payment directions
const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

// Posting outcomes
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
)

// BillingMetrics counts postings per company. A nil *BillingMetrics is valid
// and records nothing, so services work without a meter.
type BillingMetrics struct {
	invoicesPosted  *Counter
	invoiceAmount   *Counter
	invoicesDeleted *Counter
	payments        *Counter
	paymentAmount   *Counter
	transfers       *Counter
	replays         *Counter
}

// NewBillingMetrics creates the billing instruments on meter.
func NewBillingMetrics(meter metric.Meter) (*BillingMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	bm := &BillingMetrics{}
	specs := []struct {
		target      **Counter
		name        string
		description string
		unit        string
	}{
		{&bm.invoicesPosted, "billing_invoice_posted_total", "Invoices created", "{invoices}"},
		{&bm.invoiceAmount, "billing_invoice_amount_minor_total", "Invoice totals in minor currency units", "{minor_units}"},
		{&bm.invoicesDeleted, "billing_invoice_deleted_total", "Invoices soft-deleted", "{invoices}"},
		{&bm.payments, "billing_payment_total", "Payment postings by direction and outcome", "{payments}"},
		{&bm.paymentAmount, "billing_payment_amount_minor_total", "Accepted payment amounts in minor currency units", "{minor_units}"},
		{&bm.transfers, "billing_bank_transfer_total", "Bank transfers by outcome", "{transfers}"},
		{&bm.replays, "billing_idempotency_replay_total", "Posting requests rejected as replays", "{requests}"},
	}
	for _, s := range specs {
		c, err := NewCounter(meter, s.name, s.description, s.unit)
		if err != nil {
			return nil, err
		}
		*s.target = c
	}
	return bm, nil
}

// RecordInvoicePosted counts a created invoice and its total.
func (bm *BillingMetrics) RecordInvoicePosted(ctx context.Context, companyID uuid.UUID, invoiceType string, total decimal.Decimal) {
	if bm == nil {
		return
	}
	attrs := []attribute.KeyValue{
		MetricCompanyID.String(companyID.String()),
		MetricInvoiceType.String(invoiceType),
	}
	bm.invoicesPosted.Inc(ctx, attrs...)
	bm.invoiceAmount.Add(ctx, minorUnits(total), attrs...)
}

// RecordInvoiceDeleted counts a soft-deleted invoice.
func (bm *BillingMetrics) RecordInvoiceDeleted(ctx context.Context, companyID uuid.UUID) {
	if bm == nil {
		return
	}
	bm.invoicesDeleted.Inc(ctx, MetricCompanyID.String(companyID.String()))
}

// RecordPayment counts a payment posting. accountKind is "bank" or "cash";
// amounts are summed for accepted postings only.
func (bm *BillingMetrics) RecordPayment(ctx context.Context, companyID uuid.UUID, direction, accountKind string, amount decimal.Decimal, err error) {
	if bm == nil {
		return
	}
	outcome := outcomeOf(err)
	bm.payments.Inc(ctx,
		MetricCompanyID.String(companyID.String()),
		MetricDirection.String(direction),
		MetricAccountKind.String(accountKind),
		MetricOutcome.String(outcome),
	)
	if outcome == OutcomeAccepted {
		bm.paymentAmount.Add(ctx, minorUnits(amount),
			MetricCompanyID.String(companyID.String()),
			MetricDirection.String(direction),
		)
	}
}

// RecordTransfer counts a bank transfer attempt.
func (bm *BillingMetrics) RecordTransfer(ctx context.Context, companyID uuid.UUID, err error) {
	if bm == nil {
		return
	}
	bm.transfers.Inc(ctx,
		MetricCompanyID.String(companyID.String()),
		MetricOutcome.String(outcomeOf(err)),
	)
}

// RecordReplay counts a request refused because its idempotency key was seen.
func (bm *BillingMetrics) RecordReplay(ctx context.Context, route string) {
	if bm == nil {
		return
	}
	bm.replays.Inc(ctx, MetricHTTPRoute.String(route))
}

func outcomeOf(err error) string {
	if err != nil {
		return OutcomeRejected
	}
	return OutcomeAccepted
}

// minorUnits converts an amount to hundredths, truncating anything finer.
func minorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).IntPart()
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBillingMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
