// Package dashboard derives the read-side summaries shown for a user's
// transactions. All amounts are converted into the display currency.
package dashboard

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/novatax/internal/currency"
	"github.com/Veraticus/novatax/internal/model"
	"github.com/Veraticus/novatax/internal/service"
)

// MonthlyFlow is one month of cash flow.
type MonthlyFlow struct {
	Month          string  `json:"month"` // e.g. "2026-03"
	Income         float64 `json:"income"`
	Expenses       float64 `json:"expenses"`
	NetFlow        float64 `json:"netFlow"`
	RunningBalance float64 `json:"runningBalance"`
}

type categoryTotals struct {
	amount decimal.Decimal
	tax    decimal.Decimal
	count  int
}

// Summarize totals the transactions inside r. Tax liability is tax collected
// on income minus tax paid on expenses.
func Summarize(txns []model.Transaction, displayCurrency string, r service.DateRange) service.CashFlowSummary {
	display := currency.Normalize(displayCurrency).String()

	var income, expenses, collected, paid, credit decimal.Decimal
	incomeByCat := make(map[string]*categoryTotals)
	expenseByCat := make(map[string]*categoryTotals)
	count := 0

	for _, t := range txns {
		if !r.Contains(t.Date.Time) {
			continue
		}
		count++
		amount := convert(t.Amount, t.OriginalCurrency, display)
		tax := convert(t.TaxAmount, t.OriginalCurrency, display)

		byCat := expenseByCat
		if t.Type == model.TypeIncome {
			income = income.Add(amount)
			collected = collected.Add(tax)
			byCat = incomeByCat
		} else {
			expenses = expenses.Add(amount)
			paid = paid.Add(tax)
		}
		if t.Status == model.StatusCredit {
			credit = credit.Add(amount)
		}

		category := t.Category
		if category == "" {
			category = model.GeneralCategory
		}
		ct, ok := byCat[category]
		if !ok {
			ct = &categoryTotals{}
			byCat[category] = ct
		}
		ct.count++
		ct.amount = ct.amount.Add(amount)
		ct.tax = ct.tax.Add(tax)
	}

	return service.CashFlowSummary{
		DateRange:          r,
		Currency:           display,
		IncomeByCategory:   flatten(incomeByCat),
		ExpensesByCategory: flatten(expenseByCat),
		TotalIncome:        income.InexactFloat64(),
		TotalExpenses:      expenses.InexactFloat64(),
		TaxCollected:       collected.InexactFloat64(),
		TaxPaid:            paid.InexactFloat64(),
		TaxLiability:       collected.Sub(paid).InexactFloat64(),
		NetCashFlow:        income.Sub(expenses).InexactFloat64(),
		TransactionCount:   count,
		PendingCredit:      credit.InexactFloat64(),
	}
}

// Monthly groups the transactions by calendar month, oldest first, with a
// running balance.
func Monthly(txns []model.Transaction, displayCurrency string) []MonthlyFlow {
	display := currency.Normalize(displayCurrency).String()

	type bucket struct{ income, expenses decimal.Decimal }
	buckets := make(map[string]*bucket)
	for _, t := range txns {
		month := t.Date.Format("2006-01")
		b, ok := buckets[month]
		if !ok {
			b = &bucket{}
			buckets[month] = b
		}
		amount := convert(t.Amount, t.OriginalCurrency, display)
		if t.Type == model.TypeIncome {
			b.income = b.income.Add(amount)
		} else {
			b.expenses = b.expenses.Add(amount)
		}
	}

	months := make([]string, 0, len(buckets))
	for m := range buckets {
		months = append(months, m)
	}
	sort.Strings(months)

	flows := make([]MonthlyFlow, 0, len(months))
	balance := decimal.Zero
	for _, m := range months {
		b := buckets[m]
		net := b.income.Sub(b.expenses)
		balance = balance.Add(net)
		flows = append(flows, MonthlyFlow{
			Month:          m,
			Income:         b.income.InexactFloat64(),
			Expenses:       b.expenses.InexactFloat64(),
			NetFlow:        net.InexactFloat64(),
			RunningBalance: balance.InexactFloat64(),
		})
	}
	return flows
}

func convert(amount float64, from, to string) decimal.Decimal {
	return decimal.NewFromFloat(currency.Convert(amount, from, to))
}

func flatten(m map[string]*categoryTotals) map[string]service.CategorySummary {
	out := make(map[string]service.CategorySummary, len(m))
	for k, v := range m {
		out[k] = service.CategorySummary{
			Count:  v.count,
			Amount: v.amount.InexactFloat64(),
			Tax:    v.tax.InexactFloat64(),
		}
	}
	return out
}
