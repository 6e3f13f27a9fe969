// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Veraticus/novatax/internal/model"
	"github.com/Veraticus/novatax/internal/storage"
)

// NewTestStorage returns a migrated in-memory SQLite store that is closed
// when the test ends.
func NewTestStorage(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})

	return store
}

// NewTestRepository returns a local-only repository over NewTestStorage.
func NewTestRepository(t *testing.T) *storage.Repository {
	t.Helper()
	return storage.NewRepository(NewTestStorage(t), nil, nil)
}

// Transactions returns count paid transactions, newest first, alternating
// income and expense. Every line is a single Services item taxed at rate.
func Transactions(count int, currency string, rate float64) []model.Transaction {
	base := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	txns := make([]model.Transaction, count)

	for i := 0; i < count; i++ {
		subtotal := float64(i+1) * 100
		typ := model.TypeIncome
		if i%2 == 1 {
			typ = model.TypeExpense
		}
		txns[count-1-i] = model.Transaction{
			ID:               fmt.Sprintf("txn-%03d", i+1),
			Date:             model.NewDate(base.AddDate(0, i, 0)),
			Description:      fmt.Sprintf("Transaction %d", i+1),
			Amount:           subtotal * (1 + rate),
			TaxAmount:        subtotal * rate,
			OriginalCurrency: currency,
			Category:         string(model.CategoryServices),
			Type:             typ,
			Source:           model.SourceManual,
			Status:           model.StatusPaid,
			Classification:   model.ClassificationBusiness,
			Items: []model.LineItem{{
				ID:          fmt.Sprintf("line-%03d", i+1),
				Description: "Consulting",
				Category:    model.CategoryServices,
				Quantity:    1,
				UnitPrice:   subtotal,
				TaxRate:     rate,
				LineTotal:   subtotal,
			}},
		}
	}
	return txns
}
