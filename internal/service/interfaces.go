// Package service defines the interfaces shared between application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/novatax/internal/model"
)

// TransactionStore is the per-user, most-recent-first transaction collection.
type TransactionStore interface {
	// Append inserts txn at the head of the user's list.
	Append(ctx context.Context, userID string, txn model.Transaction) error
	// LoadAll returns the user's transactions. It degrades to an empty list
	// rather than surfacing an error when nothing can be read.
	LoadAll(ctx context.Context, userID string) []model.Transaction
	// WipeAll deletes every transaction of the user, or nothing at all.
	WipeAll(ctx context.Context, userID string) error
}

// ProfileStore persists tenant profiles.
type ProfileStore interface {
	SaveProfile(ctx context.Context, profile model.UserProfile) error
	LoadProfiles(ctx context.Context) []model.UserProfile
}

// RateResolver supplies the synchronous tax rate for a line.
type RateResolver interface {
	ResolveRate(jurisdiction string, category model.Category) float64
}

// TaxPredictor asks an external collaborator for a rate based on a free-text
// description. Callers must keep their current rate on error.
type TaxPredictor interface {
	PredictRate(ctx context.Context, jurisdiction, description string, category model.Category) (float64, error)
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DateRange represents a time period with start and end dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the range. A zero bound is open.
func (r DateRange) Contains(t time.Time) bool {
	if !r.Start.IsZero() && t.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && t.After(r.End) {
		return false
	}
	return true
}

// CategorySummary contains aggregated statistics for a category.
type CategorySummary struct {
	Count  int     `json:"count"`
	Amount float64 `json:"amount"`
	Tax    float64 `json:"tax"`
}

// CashFlowSummary contains income, expense and tax totals in one currency.
type CashFlowSummary struct {
	DateRange          DateRange                  `json:"-"`
	Currency           string                     `json:"currency"`
	IncomeByCategory   map[string]CategorySummary `json:"incomeByCategory"`
	ExpensesByCategory map[string]CategorySummary `json:"expensesByCategory"`
	TotalIncome        float64                    `json:"totalIncome"`
	TotalExpenses      float64                    `json:"totalExpenses"`
	TaxCollected       float64                    `json:"taxCollected"`
	TaxPaid            float64                    `json:"taxPaid"`
	TaxLiability       float64                    `json:"taxLiability"`
	NetCashFlow        float64                    `json:"netCashFlow"`
	TransactionCount   int                        `json:"transactionCount"`
	PendingCredit      float64                    `json:"pendingCredit"`
}
