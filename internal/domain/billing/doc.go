// Package billing contains the invoice aggregate, the two-pass invoice
// computation and the payment status rules.
//
// Amounts are computed with full decimal precision and rounded to two
// places only when they are written onto the invoice.
package billing
