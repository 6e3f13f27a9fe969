package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Veraticus/novatax/internal/currency"
	"github.com/Veraticus/novatax/internal/dashboard"
	"github.com/Veraticus/novatax/internal/invoice"
	"github.com/Veraticus/novatax/internal/model"
	"github.com/Veraticus/novatax/internal/service"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(SubtleStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return BoldStyle.PaddingLeft(1).PaddingRight(1)
			}
			return TableCellStyle.PaddingLeft(1)
		})
}

// RenderLines renders the ledger as a numbered table. Lines with a rate
// prediction in flight are marked.
func RenderLines(lines []model.LineItem, code string, pending func(id string) bool) string {
	if len(lines) == 0 {
		return SubtleStyle.Render("No line items. Use 'add' to start.")
	}

	t := newTable("#", "Description", "Category", "Qty", "Unit Price", "Tax", "Total")
	for i, l := range lines {
		rate := formatPercent(l.TaxRate)
		if pending != nil && pending(l.ID) {
			rate += " " + PendingIcon
		}
		t.Row(
			strconv.Itoa(i+1),
			l.Description,
			string(l.Category),
			strconv.FormatFloat(l.Quantity, 'f', -1, 64),
			currency.Format(l.UnitPrice, code),
			rate,
			currency.Format(l.LineTotal, code),
		)
	}
	return t.Render()
}

// RenderTotals renders subtotal, tax and grand total.
func RenderTotals(t invoice.Totals, code string) string {
	rows := []string{
		fmt.Sprintf("Subtotal:     %s", currency.Format(t.Subtotal, code)),
		fmt.Sprintf("Tax:          %s", currency.Format(t.TaxTotal, code)),
		BoldStyle.Render(fmt.Sprintf("Grand total:  %s", currency.Format(t.GrandTotal, code))),
	}
	return strings.Join(rows, "\n")
}

// RenderTransactions renders transactions newest first, converted to the
// display currency.
func RenderTransactions(txns []model.Transaction, display string) string {
	if len(txns) == 0 {
		return SubtleStyle.Render("No transactions recorded.")
	}

	t := newTable("Date", "Description", "Type", "Status", "Amount", "Tax")
	for _, txn := range txns {
		amount := currency.Format(currency.Convert(txn.Amount, txn.OriginalCurrency, display), display)
		if txn.Type == model.TypeIncome {
			amount = IncomeStyle.Render(amount)
		} else {
			amount = ExpenseStyle.Render(amount)
		}
		t.Row(
			txn.Date.String(),
			txn.Description,
			string(txn.Type),
			string(txn.Status),
			amount,
			currency.Format(currency.Convert(txn.TaxAmount, txn.OriginalCurrency, display), display),
		)
	}
	return t.Render()
}

// RenderSummary renders a cash flow summary with per-category breakdowns.
func RenderSummary(s service.CashFlowSummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Income:         %s\n", IncomeStyle.Render(currency.Format(s.TotalIncome, s.Currency)))
	fmt.Fprintf(&b, "Expenses:       %s\n", ExpenseStyle.Render(currency.Format(s.TotalExpenses, s.Currency)))
	fmt.Fprintf(&b, "Net cash flow:  %s\n", BoldStyle.Render(currency.Format(s.NetCashFlow, s.Currency)))
	fmt.Fprintf(&b, "Tax collected:  %s\n", currency.Format(s.TaxCollected, s.Currency))
	fmt.Fprintf(&b, "Tax paid:       %s\n", currency.Format(s.TaxPaid, s.Currency))
	fmt.Fprintf(&b, "Tax liability:  %s\n", currency.Format(s.TaxLiability, s.Currency))
	if s.PendingCredit > 0 {
		fmt.Fprintf(&b, "On credit:      %s\n", WarningStyle.Render(currency.Format(s.PendingCredit, s.Currency)))
	}
	fmt.Fprintf(&b, "Transactions:   %d", s.TransactionCount)

	sections := []string{RenderBox(ChartIcon+" Cash Flow", b.String())}
	if len(s.IncomeByCategory) > 0 {
		sections = append(sections, renderCategories("Income by category", s.IncomeByCategory, s.Currency))
	}
	if len(s.ExpensesByCategory) > 0 {
		sections = append(sections, renderCategories("Expenses by category", s.ExpensesByCategory, s.Currency))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func renderCategories(title string, byCategory map[string]service.CategorySummary, code string) string {
	names := make([]string, 0, len(byCategory))
	for name := range byCategory {
		names = append(names, name)
	}
	sort.Strings(names)

	t := newTable("Category", "Count", "Amount", "Tax")
	for _, name := range names {
		c := byCategory[name]
		t.Row(name, strconv.Itoa(c.Count), currency.Format(c.Amount, code), currency.Format(c.Tax, code))
	}
	return TitleStyle.Render(title) + "\n" + t.Render()
}

// RenderMonthly renders month by month cash flow with a running balance.
func RenderMonthly(months []dashboard.MonthlyFlow, code string) string {
	if len(months) == 0 {
		return ""
	}

	t := newTable("Month", "Income", "Expenses", "Net", "Balance")
	for _, m := range months {
		t.Row(
			m.Month,
			currency.Format(m.Income, code),
			currency.Format(m.Expenses, code),
			currency.Format(m.NetFlow, code),
			currency.Format(m.RunningBalance, code),
		)
	}
	return t.Render()
}

func formatPercent(rate float64) string {
	return decimal.NewFromFloat(rate).Shift(2).String() + "%"
}
