package export

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/novatax/internal/currency"
	"github.com/Veraticus/novatax/internal/dashboard"
	"github.com/Veraticus/novatax/internal/model"
	"github.com/Veraticus/novatax/internal/service"
)

// BuildTabData prepares the workbook contents for the transactions inside r.
// Totals are in displayCurrency; per-transaction amounts keep their original
// currency alongside the converted value.
func BuildTabData(txns []model.Transaction, displayCurrency string, r service.DateRange) TabData {
	display := currency.Normalize(displayCurrency).String()

	inRange := make([]model.Transaction, 0, len(txns))
	for _, t := range txns {
		if r.Contains(t.Date.Time) {
			inRange = append(inRange, t)
		}
	}

	summary := dashboard.Summarize(inRange, display, r)
	data := TabData{
		DateRange:     r,
		Currency:      display,
		TotalIncome:   decimal.NewFromFloat(summary.TotalIncome),
		TotalExpenses: decimal.NewFromFloat(summary.TotalExpenses),
		TaxCollected:  decimal.NewFromFloat(summary.TaxCollected),
		TaxPaid:       decimal.NewFromFloat(summary.TaxPaid),
		TaxLiability:  decimal.NewFromFloat(summary.TaxLiability),
	}

	categories := make(map[string]*CategorySummaryRow)
	for _, t := range inRange {
		converted := decimal.NewFromFloat(currency.Convert(t.Amount, t.OriginalCurrency, display))
		data.Transactions = append(data.Transactions, TransactionRow{
			ID:               t.ID,
			Date:             t.Date.String(),
			Description:      t.Description,
			Category:         t.Category,
			Type:             string(t.Type),
			Source:           string(t.Source),
			Status:           string(t.Status),
			Classification:   string(t.Classification),
			OriginalCurrency: t.OriginalCurrency,
			Amount:           decimal.NewFromFloat(t.Amount),
			TaxAmount:        decimal.NewFromFloat(t.TaxAmount),
			Converted:        converted,
		})

		for _, item := range t.Items {
			data.LineItems = append(data.LineItems, LineItemRow{
				TransactionID: t.ID,
				LineID:        item.ID,
				Description:   item.Description,
				Category:      string(item.Category),
				Quantity:      decimal.NewFromFloat(item.Quantity),
				UnitPrice:     decimal.NewFromFloat(item.UnitPrice),
				TaxRate:       decimal.NewFromFloat(item.TaxRate),
				Total:         decimal.NewFromFloat(item.LineTotal),
				Tax:           decimal.NewFromFloat(item.Tax()),
			})
		}

		key := string(t.Type) + "|" + t.Category
		row, ok := categories[key]
		if !ok {
			row = &CategorySummaryRow{CategoryName: t.Category, Type: string(t.Type)}
			categories[key] = row
		}
		tax := decimal.NewFromFloat(currency.Convert(t.TaxAmount, t.OriginalCurrency, display))
		row.TransactionCount++
		row.TotalAmount = row.TotalAmount.Add(converted)
		row.TotalTax = row.TotalTax.Add(tax)
		month := t.Date.Month() - 1
		row.MonthlyAmounts[month] = row.MonthlyAmounts[month].Add(converted)
	}

	for _, row := range categories {
		data.CategorySummary = append(data.CategorySummary, *row)
	}
	sort.Slice(data.CategorySummary, func(i, j int) bool {
		a, b := data.CategorySummary[i], data.CategorySummary[j]
		if a.Type != b.Type {
			return a.Type > b.Type // income before expense
		}
		return a.TotalAmount.GreaterThan(b.TotalAmount)
	})

	for _, m := range dashboard.Monthly(inRange, display) {
		data.MonthlyFlow = append(data.MonthlyFlow, MonthlyFlowRow{
			Month:          m.Month,
			TotalIncome:    decimal.NewFromFloat(m.Income),
			TotalExpenses:  decimal.NewFromFloat(m.Expenses),
			NetFlow:        decimal.NewFromFloat(m.NetFlow),
			RunningBalance: decimal.NewFromFloat(m.RunningBalance),
		})
	}

	return data
}
