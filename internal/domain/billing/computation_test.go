package billing

import (
	"testing"

	"github.com/erp/billing/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testItem(name string, stock, price, taxPct string, taxed bool) *catalog.Item {
	item, err := catalog.NewItem(uuid.New(), catalog.NewItemInput{
		Name:       name,
		Code:       name,
		Quantity:   d(stock),
		SalesPrice: d(price),
		TaxApplied: taxed,
		TaxPercent: d(taxPct),
	})
	if err != nil {
		panic(err)
	}
	return item
}

func TestCompute_HeaderDiscountAndTax(t *testing.T) {
	item := testItem("Laptop", "5", "1000", "18", true)

	c, err := Compute(ComputationInput{
		Direction:             catalog.StockOut,
		HeaderDiscountPercent: d("10"),
		Lines:                 []LineInput{{Item: item, Quantity: d("1")}},
	})
	require.NoError(t, err)

	assert.True(t, d("1000").Equal(c.Subtotal), c.Subtotal.String())
	assert.True(t, d("100").Equal(c.DiscountAmount))
	require.Len(t, c.Lines, 1)
	line := c.Lines[0]
	assert.True(t, d("1000").Equal(line.Taxable))
	assert.True(t, d("100").Equal(line.InvoiceDiscountShare))
	assert.True(t, d("900").Equal(line.FinalTaxable))
	assert.True(t, d("162").Equal(line.TaxAmount))
	assert.True(t, d("1062").Equal(line.Amount))
	assert.True(t, d("162").Equal(c.TaxAmount))
	assert.True(t, d("1062").Equal(c.Total))
	assert.Empty(t, c.Warnings)
}

func TestCompute_NoHeaderDiscountMeansNoShare(t *testing.T) {
	a := testItem("A", "100", "250", "5", true)
	b := testItem("B", "100", "40", "12", false)

	c, err := Compute(ComputationInput{
		Direction:             catalog.StockOut,
		HeaderDiscountPercent: decimal.Zero,
		Lines: []LineInput{
			{Item: a, Quantity: d("2"), DiscountPercent: d("10")},
			{Item: b, Quantity: d("3")},
		},
	})
	require.NoError(t, err)

	for _, l := range c.Lines {
		assert.True(t, l.InvoiceDiscountShare.IsZero())
		assert.True(t, l.FinalTaxable.Equal(l.Taxable))
	}
	// A: 500 - 50 = 450, tax 22.5 ; B: 120 untaxed
	assert.True(t, d("50").Equal(c.Lines[0].DiscountAmount))
	assert.True(t, d("472.5").Equal(c.Lines[0].Amount))
	assert.True(t, d("120").Equal(c.Lines[1].Amount))
	assert.True(t, d("570").Equal(c.Subtotal))
	assert.True(t, c.Total.Equal(c.Subtotal.Add(c.TaxAmount)))
}

func TestCompute_ProportionalShare(t *testing.T) {
	a := testItem("A", "10", "300", "0", false)
	b := testItem("B", "10", "100", "0", false)

	c, err := Compute(ComputationInput{
		Direction:             catalog.StockIn,
		HeaderDiscountPercent: d("20"),
		Lines: []LineInput{
			{Item: a, Quantity: d("1")},
			{Item: b, Quantity: d("1")},
		},
	})
	require.NoError(t, err)

	assert.True(t, d("80").Equal(c.DiscountAmount))
	assert.True(t, d("60").Equal(c.Lines[0].InvoiceDiscountShare))
	assert.True(t, d("20").Equal(c.Lines[1].InvoiceDiscountShare))
	assert.True(t, d("320").Equal(c.Total))
}

func TestCompute_StockWarnings(t *testing.T) {
	t.Run("oversell on sales warns but succeeds", func(t *testing.T) {
		item := testItem("Widget", "10", "5", "0", false)
		c, err := Compute(ComputationInput{
			Direction: catalog.StockOut,
			Lines:     []LineInput{{Item: item, Quantity: d("12")}},
		})
		require.NoError(t, err)
		require.Len(t, c.Warnings, 1)
		assert.Contains(t, c.Warnings[0], "only 10 in stock")
		assert.True(t, d("10").Equal(item.Quantity), "compute must not mutate stock")
	})

	t.Run("purchase never warns", func(t *testing.T) {
		item := testItem("Widget", "0", "5", "0", false)
		c, err := Compute(ComputationInput{
			Direction: catalog.StockIn,
			Lines:     []LineInput{{Item: item, Quantity: d("12")}},
		})
		require.NoError(t, err)
		assert.Empty(t, c.Warnings)
	})

	t.Run("repeated item is checked cumulatively", func(t *testing.T) {
		item := testItem("Bolt", "5", "1", "0", false)
		c, err := Compute(ComputationInput{
			Direction: catalog.StockOut,
			Lines: []LineInput{
				{Item: item, Quantity: d("3")},
				{Item: item, Quantity: d("3")},
			},
		})
		require.NoError(t, err)
		require.Len(t, c.Warnings, 1)
		assert.Equal(t, "Item 'Bolt' has only 2 in stock, but 3 were requested.", c.Warnings[0])
	})
}

func TestCompute_Validation(t *testing.T) {
	item := testItem("A", "1", "1", "0", false)

	tests := []struct {
		name string
		in   ComputationInput
	}{
		{"no lines", ComputationInput{}},
		{"nil item", ComputationInput{Lines: []LineInput{{Quantity: d("1")}}}},
		{"zero quantity", ComputationInput{Lines: []LineInput{{Item: item, Quantity: decimal.Zero}}}},
		{"line discount above 100", ComputationInput{Lines: []LineInput{{Item: item, Quantity: d("1"), DiscountPercent: d("101")}}}},
		{"negative header discount", ComputationInput{HeaderDiscountPercent: d("-1"), Lines: []LineInput{{Item: item, Quantity: d("1")}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute(tt.in)
			assert.Error(t, err)
		})
	}
}

func TestCompute_ZeroSubtotal(t *testing.T) {
	free := testItem("Sample", "1", "0", "18", true)
	c, err := Compute(ComputationInput{
		Direction:             catalog.StockOut,
		HeaderDiscountPercent: d("10"),
		Lines:                 []LineInput{{Item: free, Quantity: d("1")}},
	})
	require.NoError(t, err)
	assert.True(t, c.Lines[0].InvoiceDiscountShare.IsZero())
	assert.True(t, c.Total.IsZero())
}
