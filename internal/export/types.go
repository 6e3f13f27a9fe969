package export

import (
	"github.com/shopspring/decimal"

	"github.com/Veraticus/novatax/internal/service"
)

// TransactionRow represents a single row in the Transactions tab.
type TransactionRow struct {
	ID               string
	Date             string
	Description      string
	Category         string
	Type             string
	Source           string
	Status           string
	Classification   string
	OriginalCurrency string
	Amount           decimal.Decimal // original currency
	TaxAmount        decimal.Decimal
	Converted        decimal.Decimal // display currency
}

// LineItemRow represents a single row in the Line Items tab.
type LineItemRow struct {
	TransactionID string
	LineID        string
	Description   string
	Category      string
	Quantity      decimal.Decimal
	UnitPrice     decimal.Decimal
	TaxRate       decimal.Decimal
	Total         decimal.Decimal
	Tax           decimal.Decimal
}

// CategorySummaryRow represents a single row in the Category Summary tab.
type CategorySummaryRow struct {
	MonthlyAmounts   [12]decimal.Decimal
	CategoryName     string
	Type             string
	TotalAmount      decimal.Decimal
	TotalTax         decimal.Decimal
	TransactionCount int
}

// MonthlyFlowRow represents a single row in the Monthly Flow tab.
type MonthlyFlowRow struct {
	Month          string // e.g. "2026-03"
	TotalIncome    decimal.Decimal
	TotalExpenses  decimal.Decimal
	NetFlow        decimal.Decimal // Income - Expenses
	RunningBalance decimal.Decimal
}

// TabData holds all the data for the complete workbook.
type TabData struct {
	DateRange       service.DateRange
	Currency        string
	TotalIncome     decimal.Decimal
	TotalExpenses   decimal.Decimal
	TaxCollected    decimal.Decimal
	TaxPaid         decimal.Decimal
	TaxLiability    decimal.Decimal
	Transactions    []TransactionRow
	LineItems       []LineItemRow
	CategorySummary []CategorySummaryRow
	MonthlyFlow     []MonthlyFlowRow
}
