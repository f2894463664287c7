package billing

import (
	"fmt"
	"strconv"
	"strings"
)

// InvoiceNumberPrefix returns the per-year prefix, e.g. "INV-2026-"
func InvoiceNumberPrefix(year int) string {
	return fmt.Sprintf("INV-%d-", year)
}

// NextInvoiceNumber returns the number following last. An empty or
// unparsable last number restarts the sequence at 001.
func NextInvoiceNumber(year int, last string) string {
	prefix := InvoiceNumberPrefix(year)
	seq := 0
	if strings.HasPrefix(last, prefix) {
		if n, err := strconv.Atoi(strings.TrimPrefix(last, prefix)); err == nil && n > 0 {
			seq = n
		}
	}
	return fmt.Sprintf("%s%03d", prefix, seq+1)
}
