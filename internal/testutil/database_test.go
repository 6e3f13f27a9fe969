package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/novatax/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTestRepository(t *testing.T) {
	repo := NewTestRepository(t)
	ctx := context.Background()

	for _, txn := range Transactions(3, "USD", 0.1) {
		require.NoError(t, repo.Append(ctx, "u1", txn))
	}

	got := repo.LoadAll(ctx, "u1")
	require.Len(t, got, 3)
	assert.Empty(t, repo.LoadAll(ctx, "u2"))
}

func TestTransactions(t *testing.T) {
	txns := Transactions(4, "SAR", 0.15)
	require.Len(t, txns, 4)

	assert.Equal(t, "txn-004", txns[0].ID)
	assert.Equal(t, model.TypeExpense, txns[0].Type)
	assert.Equal(t, model.TypeIncome, txns[3].Type)
	for _, txn := range txns {
		assert.InDelta(t, txn.Subtotal()*0.15, txn.TaxAmount, 1e-9)
	}
}
