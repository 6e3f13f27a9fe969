package export

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/Veraticus/novatax/internal/common"
)

// Sheet names, in workbook order.
const (
	SheetSummary         = "Summary"
	SheetTransactions    = "Transactions"
	SheetLineItems       = "Line Items"
	SheetCategorySummary = "Category Summary"
	SheetMonthlyFlow     = "Monthly Flow"
)

// numFmtAmount is the built-in "#,##0.00" format.
const numFmtAmount = 4

// Writer renders TabData as an XLSX workbook.
type Writer struct {
	logger *slog.Logger
	config Config
}

// NewWriter creates a new XLSX writer.
func NewWriter(config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Writer{config: config, logger: common.LoggerOrDefault(logger)}, nil
}

// Write saves the workbook to the configured path.
func (w *Writer) Write(ctx context.Context, data TabData) error {
	f, err := w.build(ctx, data)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := f.SaveAs(w.config.Path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	w.logger.Info("export completed",
		"path", w.config.Path,
		"transactions", len(data.Transactions),
		"line_items", len(data.LineItems))
	return nil
}

// WriteTo streams the workbook to out.
func (w *Writer) WriteTo(ctx context.Context, out io.Writer, data TabData) error {
	f, err := w.build(ctx, data)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := f.Write(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (w *Writer) build(ctx context.Context, data TabData) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	steps := []struct {
		sheet string
		rows  [][]any
	}{
		{SheetSummary, summaryRows(data)},
		{SheetTransactions, transactionRows(data)},
		{SheetLineItems, lineItemRows(data)},
		{SheetCategorySummary, categoryRows(data)},
		{SheetMonthlyFlow, monthlyRows(data)},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			_ = f.Close()
			return nil, err
		}
		if step.sheet != SheetSummary {
			if _, err := f.NewSheet(step.sheet); err != nil {
				_ = f.Close()
				return nil, fmt.Errorf("failed to create sheet %s: %w", step.sheet, err)
			}
		}
		if err := writeRows(f, step.sheet, step.rows); err != nil {
			_ = f.Close()
			return nil, err
		}
		if w.config.EnableFormatting {
			if err := applyFormatting(f, step.sheet, step.rows); err != nil {
				// Formatting is cosmetic.
				w.logger.Warn("failed to apply formatting", "sheet", step.sheet, "error", err)
			}
		}
	}

	return f, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// applyFormatting bolds the header row and formats numeric cells as amounts.
func applyFormatting(f *excelize.File, sheet string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	amount, err := f.NewStyle(&excelize.Style{NumFmt: numFmtAmount})
	if err != nil {
		return err
	}

	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	if width == 0 {
		return nil
	}
	last, err := excelize.CoordinatesToCellName(width, 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, header); err != nil {
		return err
	}

	for i, row := range rows[1:] {
		for j, v := range row {
			if _, ok := v.(float64); !ok {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellStyle(sheet, cell, cell, amount); err != nil {
				return err
			}
		}
	}

	lastCol, err := excelize.ColumnNumberToName(width)
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", lastCol, 16)
}

func summaryRows(data TabData) [][]any {
	period := "All time"
	if !data.DateRange.Start.IsZero() || !data.DateRange.End.IsZero() {
		period = fmt.Sprintf("%s - %s", formatBound(data.DateRange.Start), formatBound(data.DateRange.End))
	}
	return [][]any{
		{"NovaTax Report", period},
		{"Currency", data.Currency},
		{"Total Income", num(data.TotalIncome)},
		{"Total Expenses", num(data.TotalExpenses)},
		{"Net Flow", num(data.TotalIncome.Sub(data.TotalExpenses))},
		{"Tax Collected", num(data.TaxCollected)},
		{"Tax Paid", num(data.TaxPaid)},
		{"Tax Liability", num(data.TaxLiability)},
		{"Transactions", len(data.Transactions)},
	}
}

func transactionRows(data TabData) [][]any {
	rows := make([][]any, 0, len(data.Transactions)+1)
	rows = append(rows, []any{
		"ID", "Date", "Description", "Category", "Type", "Source", "Status",
		"Classification", "Currency", "Amount", "Tax", "Amount (" + data.Currency + ")",
	})
	for _, t := range data.Transactions {
		rows = append(rows, []any{
			t.ID, t.Date, t.Description, t.Category, t.Type, t.Source, t.Status,
			t.Classification, t.OriginalCurrency, num(t.Amount), num(t.TaxAmount), num(t.Converted),
		})
	}
	return rows
}

func lineItemRows(data TabData) [][]any {
	rows := make([][]any, 0, len(data.LineItems)+1)
	rows = append(rows, []any{
		"Transaction ID", "Line ID", "Description", "Category", "Quantity", "Unit Price", "Tax Rate", "Total", "Tax",
	})
	for _, l := range data.LineItems {
		rows = append(rows, []any{
			l.TransactionID, l.LineID, l.Description, l.Category,
			num(l.Quantity), num(l.UnitPrice), num(l.TaxRate), num(l.Total), num(l.Tax),
		})
	}
	return rows
}

func categoryRows(data TabData) [][]any {
	header := []any{"Category", "Type", "Count", "Total", "Tax"}
	for m := time.January; m <= time.December; m++ {
		header = append(header, m.String()[:3])
	}
	rows := [][]any{header}
	for _, c := range data.CategorySummary {
		row := []any{c.CategoryName, c.Type, c.TransactionCount, num(c.TotalAmount), num(c.TotalTax)}
		for _, v := range c.MonthlyAmounts {
			row = append(row, num(v))
		}
		rows = append(rows, row)
	}
	return rows
}

func monthlyRows(data TabData) [][]any {
	rows := [][]any{{"Month", "Income", "Expenses", "Net Flow", "Running Balance"}}
	for _, m := range data.MonthlyFlow {
		rows = append(rows, []any{
			m.Month, num(m.TotalIncome), num(m.TotalExpenses), num(m.NetFlow), num(m.RunningBalance),
		})
	}
	return rows
}

func num(d decimal.Decimal) float64 {
	return d.Round(6).InexactFloat64()
}

func formatBound(t time.Time) string {
	if t.IsZero() {
		return "..."
	}
	return t.Format("2006-01-02")
}
