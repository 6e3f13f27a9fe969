// Package invoice reduces line items to totals and turns a finished ledger
// into a Transaction record.
package invoice

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/novatax/internal/currency"
	"github.com/Veraticus/novatax/internal/model"
)

// ErrEmptyLedger is returned when building a transaction from no lines.
var ErrEmptyLedger = errors.New("ledger has no line items")

// Totals is the reduction of a ledger. GrandTotal is always Subtotal + TaxTotal.
type Totals struct {
	Subtotal   float64 `json:"subtotal"`
	TaxTotal   float64 `json:"taxTotal"`
	GrandTotal float64 `json:"grandTotal"`
}

// ComputeTotals sums line totals and per-line tax. It is pure: the same lines
// always give the same totals. Non-finite values count as zero.
func ComputeTotals(lines []model.LineItem) Totals {
	subtotal := decimal.Zero
	tax := decimal.Zero
	for _, l := range lines {
		lineTotal := decimal.NewFromFloat(Finite(l.LineTotal))
		subtotal = subtotal.Add(lineTotal)
		tax = tax.Add(lineTotal.Mul(decimal.NewFromFloat(Finite(l.TaxRate))))
	}

	t := Totals{
		Subtotal: subtotal.InexactFloat64(),
		TaxTotal: tax.InexactFloat64(),
	}
	t.GrandTotal = t.Subtotal + t.TaxTotal
	return t
}

// Meta carries the transaction fields that do not come from the lines.
// Zero values are replaced with defaults.
type Meta struct {
	Date           model.Date
	Description    string
	Type           model.TransactionType
	Currency       string
	Source         model.Source
	Status         model.Status
	Classification model.Classification
}

// BuildTransaction assembles a Transaction from lines. The first line's
// category becomes the transaction category. A zero amount is allowed.
func BuildTransaction(lines []model.LineItem, meta Meta) (model.Transaction, error) {
	if len(lines) == 0 {
		return model.Transaction{}, ErrEmptyLedger
	}

	id, err := uuid.NewV7()
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to generate transaction id: %w", err)
	}

	totals := ComputeTotals(lines)
	items := make([]model.LineItem, len(lines))
	copy(items, lines)

	txnType := meta.Type
	if !txnType.Valid() {
		txnType = model.TypeExpense
	}

	description := meta.Description
	if description == "" {
		description = "New Expense"
		if txnType == model.TypeIncome {
			description = "New Sale"
		}
	}

	category := string(lines[0].Category)
	if category == "" {
		category = model.GeneralCategory
	}

	date := meta.Date
	if date.IsZero() {
		date = model.Today()
	}

	source := meta.Source
	if source == "" {
		source = model.SourceManual
	}
	status := meta.Status
	if status == "" {
		status = model.StatusPaid
	}
	classification := meta.Classification
	if !classification.Valid() {
		classification = model.ClassificationBusiness
	}

	return model.Transaction{
		ID:               id.String(),
		Date:             date,
		Description:      description,
		Amount:           totals.GrandTotal,
		TaxAmount:        totals.TaxTotal,
		OriginalCurrency: currency.Normalize(meta.Currency).String(),
		Category:         category,
		Type:             txnType,
		Source:           source,
		Status:           status,
		Classification:   classification,
		Items:            items,
	}, nil
}

// Finite maps NaN and the infinities to 0.
func Finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
