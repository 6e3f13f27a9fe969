package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/novatax/internal/model"
)

// Helper function to create test storage.
func createTestStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, func() { _ = store.Close() }
}

// Helper function to create test transactions, oldest first.
func createTestTransactions(count int) []model.Transaction {
	txns := make([]model.Transaction, count)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < count; i++ {
		amount := float64(i+1) * 100
		txns[i] = model.Transaction{
			ID:               fmt.Sprintf("txn-%d", i+1),
			Date:             model.NewDate(base.AddDate(0, 0, i)),
			Description:      fmt.Sprintf("Sale #%d", i+1),
			Amount:           amount * 1.15,
			TaxAmount:        amount * 0.15,
			OriginalCurrency: "SAR",
			Category:         string(model.CategoryServices),
			Type:             model.TypeIncome,
			Source:           model.SourceManual,
			Status:           model.StatusPaid,
			Classification:   model.ClassificationBusiness,
			Items: []model.LineItem{{
				ID:        "line-1",
				Category:  model.CategoryServices,
				Quantity:  1,
				UnitPrice: amount,
				TaxRate:   0.15,
				LineTotal: amount,
			}},
		}
	}
	return txns
}

func TestSQLiteStorage_InMemory(t *testing.T) {
	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	require.NoError(t, store.Migrate(ctx))
	require.NoError(t, store.Put(ctx, "a", `1`))

	value, ok, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", value)
	assert.Equal(t, ":memory:", store.Path())
}

func TestSQLiteStorage_KeyValue(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Put(ctx, "k", `"first"`))
	require.NoError(t, store.Put(ctx, "k", `"second"`))
	value, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `"second"`, value)

	require.NoError(t, store.Delete(ctx, "k"))
	require.NoError(t, store.Delete(ctx, "k"))
	_, ok, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	err = store.Put(ctx, " ", "x")
	assert.ErrorIs(t, err, ErrEmptyString)
}

func TestSQLiteStorage_PrependTransaction(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	txns := createTestTransactions(3)
	for _, txn := range txns {
		prepend(t, store, "alice", txn)
	}

	loaded, err := store.LoadTransactions(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, loaded, 3)
	assert.Equal(t, []string{"txn-3", "txn-2", "txn-1"}, ids(loaded))
	assert.Equal(t, txns[0].Amount, loaded[2].Amount)
	assert.Len(t, loaded[2].Items, 1)

	// Re-saving an existing id moves it to the head without duplicating it.
	prepend(t, store, "alice", txns[0])
	loaded, err = store.LoadTransactions(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"txn-1", "txn-3", "txn-2"}, ids(loaded))
	for i := 1; i < len(loaded); i++ {
		assert.True(t, loaded[i-1].RecordedAt.After(loaded[i].RecordedAt), "stamps must decrease down the list")
	}
}

func TestNextStamp(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 1500, time.UTC)

	tests := []struct {
		name     string
		existing []model.Transaction
		want     time.Time
	}{
		{
			name: "empty list uses now at microsecond precision",
			want: time.Date(2026, 3, 1, 9, 0, 0, 1000, time.UTC),
		},
		{
			name:     "older head keeps now",
			existing: []model.Transaction{{RecordedAt: now.Add(-time.Hour)}},
			want:     time.Date(2026, 3, 1, 9, 0, 0, 1000, time.UTC),
		},
		{
			name:     "head in the future moves past it",
			existing: []model.Transaction{{RecordedAt: now.Add(time.Second)}},
			want:     now.Add(time.Second).Add(time.Microsecond),
		},
		{
			name:     "same microsecond moves past the head",
			existing: []model.Transaction{{RecordedAt: time.Date(2026, 3, 1, 9, 0, 0, 1000, time.UTC)}},
			want:     time.Date(2026, 3, 1, 9, 0, 0, 2000, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(nextStamp(tt.existing, now)), "got %v", nextStamp(tt.existing, now))
		})
	}
}

func TestSQLiteStorage_PrependTransactionValidation(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	_, err := store.PrependTransaction(ctx, "", createTestTransactions(1)[0])
	assert.ErrorIs(t, err, ErrEmptyString)

	_, err = store.PrependTransaction(ctx, "alice", model.Transaction{ID: "x"})
	assert.ErrorIs(t, err, ErrInvalidTransaction)
}

func TestSQLiteStorage_LoadTransactionsEmpty(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	loaded, err := store.LoadTransactions(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, loaded)
	assert.Empty(t, loaded)
}

func TestSQLiteStorage_CorruptDocument(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, TransactionsKey("alice"), "{not json"))
	_, err := store.LoadTransactions(ctx, "alice")
	assert.ErrorIs(t, err, ErrCorruptDocument)
}

func TestSQLiteStorage_WipeTransactions(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	for _, txn := range createTestTransactions(3) {
		prepend(t, store, "alice", txn)
		prepend(t, store, "bob", txn)
	}

	t.Run("successful wipe isolates users", func(t *testing.T) {
		require.NoError(t, store.WipeTransactions(ctx, "alice"))

		alice, err := store.LoadTransactions(ctx, "alice")
		require.NoError(t, err)
		assert.Empty(t, alice)

		bob, err := store.LoadTransactions(ctx, "bob")
		require.NoError(t, err)
		assert.Len(t, bob, 3)
	})
}

func TestSQLiteStorage_Profiles(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	profiles, err := store.LoadProfiles(ctx)
	require.NoError(t, err)
	assert.Empty(t, profiles)

	require.NoError(t, store.UpsertProfile(ctx, model.UserProfile{ID: "u1", Name: "Amal", Country: "Saudi Arabia"}))
	require.NoError(t, store.UpsertProfile(ctx, model.UserProfile{ID: "u2", Name: "Ben", Country: "Germany"}))
	require.NoError(t, store.UpsertProfile(ctx, model.UserProfile{ID: "u1", Name: "Amal K", Country: "Saudi Arabia"}))

	profiles, err = store.LoadProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "Amal K", profiles[0].Name)
	assert.Equal(t, "Ben", profiles[1].Name)

	assert.ErrorIs(t, store.UpsertProfile(ctx, model.UserProfile{}), ErrInvalidProfile)
}

func TestSQLiteStorage_Outbox(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	txns := createTestTransactions(2)
	cause := errors.New("connection refused")
	require.NoError(t, store.EnqueueTransaction(ctx, "alice", txns[0], cause))
	require.NoError(t, store.EnqueueTransaction(ctx, "bob", txns[1], cause))
	require.NoError(t, store.EnqueueTransaction(ctx, "alice", txns[0], cause))
	require.NoError(t, store.EnqueueProfile(ctx, model.UserProfile{ID: "alice"}, nil))

	all, err := store.PendingWrites(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)

	alice, err := store.PendingWrites(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, alice, 2)
	assert.Equal(t, kindTransaction, alice[0].Kind)
	assert.Equal(t, "txn-1", alice[0].RecordID)
	assert.Equal(t, 2, alice[0].Attempts)
	assert.Equal(t, "connection refused", alice[0].LastError)
	assert.Equal(t, kindProfile, alice[1].Kind)

	require.NoError(t, store.ResolvePending(ctx, alice[0].ID))
	alice, err = store.PendingWrites(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, alice, 1)

	// Wiping a user's transactions drops their queued transaction writes and
	// the wipe marker, but not queued profiles.
	require.NoError(t, store.EnqueueTransaction(ctx, "alice", txns[0], cause))
	marker, err := store.EnqueueWipe(ctx, "alice")
	require.NoError(t, err)
	assert.NotZero(t, marker)
	require.NoError(t, store.WipeTransactions(ctx, "alice"))
	alice, err = store.PendingWrites(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, alice, 1)
	assert.Equal(t, kindProfile, alice[0].Kind)
}

func prepend(t *testing.T, store *SQLiteStorage, userID string, txn model.Transaction) model.Transaction {
	t.Helper()
	stamped, err := store.PrependTransaction(context.Background(), userID, txn)
	require.NoError(t, err)
	return stamped
}

func ids(txns []model.Transaction) []string {
	out := make([]string, len(txns))
	for i, t := range txns {
		out[i] = t.ID
	}
	return out
}
