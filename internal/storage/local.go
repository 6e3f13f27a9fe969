package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Veraticus/novatax/internal/model"
)

// Cache keys.
const (
	ProfilesKey           = "novatax_profiles"
	transactionsKeyPrefix = "novatax_transactions_"
)

// TransactionsKey is the cache key of one user's transaction list.
func TransactionsKey(userID string) string {
	return transactionsKeyPrefix + userID
}

// LoadTransactions returns the user's cached transactions, most recent first.
func (s *SQLiteStorage) LoadTransactions(ctx context.Context, userID string) ([]model.Transaction, error) {
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	return loadTransactions(ctx, s.db, userID)
}

// PrependTransaction inserts txn at the head of the user's cached list and
// returns it stamped with RecordedAt. The stamp is always later than the
// current head's, so the list stays ordered newest first.
func (s *SQLiteStorage) PrependTransaction(ctx context.Context, userID string, txn model.Transaction) (model.Transaction, error) {
	if err := validateString(userID, "userID"); err != nil {
		return txn, err
	}
	if err := validateTransaction(txn); err != nil {
		return txn, err
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		existing, err := loadTransactions(ctx, tx, userID)
		if err != nil {
			return err
		}
		txn.RecordedAt = nextStamp(existing, time.Now())

		updated := make([]model.Transaction, 0, len(existing)+1)
		updated = append(updated, txn)
		for _, t := range existing {
			if t.ID != txn.ID {
				updated = append(updated, t)
			}
		}
		return storeJSON(ctx, tx, TransactionsKey(userID), updated)
	})
	return txn, err
}

// nextStamp returns now at the microsecond precision Postgres keeps, moved
// past the head of existing when the clock has not advanced.
func nextStamp(existing []model.Transaction, now time.Time) time.Time {
	stamp := now.UTC().Truncate(time.Microsecond)
	if len(existing) > 0 && !stamp.After(existing[0].RecordedAt) {
		stamp = existing[0].RecordedAt.Add(time.Microsecond)
	}
	return stamp
}

// ReplaceTransactions overwrites the user's cached list.
func (s *SQLiteStorage) ReplaceTransactions(ctx context.Context, userID string, txns []model.Transaction) error {
	if err := validateString(userID, "userID"); err != nil {
		return err
	}
	if txns == nil {
		txns = []model.Transaction{}
	}
	return storeJSON(ctx, s.db, TransactionsKey(userID), txns)
}

// WipeTransactions deletes the user's cached list, the queued transaction
// writes and any wipe marker in one local transaction.
func (s *SQLiteStorage) WipeTransactions(ctx context.Context, userID string) error {
	if err := validateString(userID, "userID"); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM kv_cache WHERE key = ?`, TransactionsKey(userID)); err != nil {
			return fmt.Errorf("failed to delete cached transactions: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM pending_sync WHERE user_id = ? AND kind IN (?, ?)`,
			userID, kindTransaction, kindWipe); err != nil {
			return fmt.Errorf("failed to delete pending writes: %w", err)
		}
		return nil
	})
}

// LoadProfiles returns every cached profile.
func (s *SQLiteStorage) LoadProfiles(ctx context.Context) ([]model.UserProfile, error) {
	var profiles []model.UserProfile
	if _, err := loadJSON(ctx, s.db, ProfilesKey, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// UpsertProfile replaces the cached profile with the same ID, or appends it.
func (s *SQLiteStorage) UpsertProfile(ctx context.Context, profile model.UserProfile) error {
	if err := validateProfile(profile); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		var profiles []model.UserProfile
		if _, err := loadJSON(ctx, tx, ProfilesKey, &profiles); err != nil {
			return err
		}
		replaced := false
		for i := range profiles {
			if profiles[i].ID == profile.ID {
				profiles[i] = profile
				replaced = true
			}
		}
		if !replaced {
			profiles = append(profiles, profile)
		}
		return storeJSON(ctx, tx, ProfilesKey, profiles)
	})
}

// ReplaceProfiles overwrites the cached profile list.
func (s *SQLiteStorage) ReplaceProfiles(ctx context.Context, profiles []model.UserProfile) error {
	if profiles == nil {
		profiles = []model.UserProfile{}
	}
	return storeJSON(ctx, s.db, ProfilesKey, profiles)
}

func (s *SQLiteStorage) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func loadTransactions(ctx context.Context, q querier, userID string) ([]model.Transaction, error) {
	txns := []model.Transaction{}
	if _, err := loadJSON(ctx, q, TransactionsKey(userID), &txns); err != nil {
		return nil, err
	}
	return txns, nil
}

func loadJSON(ctx context.Context, q querier, key string, v any) (bool, error) {
	raw, ok, err := getValue(ctx, q, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrCorruptDocument, key, err)
	}
	return true, nil
}

func storeJSON(ctx context.Context, q querier, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return putValue(ctx, q, key, string(data))
}
