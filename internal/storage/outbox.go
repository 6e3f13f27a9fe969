package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Veraticus/novatax/internal/model"
)

const (
	kindTransaction = "transaction"
	kindProfile     = "profile"
	kindWipe        = "wipe"
)

// PendingWrite is a record the hosted datastore has not accepted yet.
type PendingWrite struct {
	Kind      string
	UserID    string
	RecordID  string
	Payload   string
	LastError string
	ID        int64
	Attempts  int
}

// EnqueueTransaction remembers a transaction that still has to reach the remote.
func (s *SQLiteStorage) EnqueueTransaction(ctx context.Context, userID string, txn model.Transaction, cause error) error {
	return s.enqueue(ctx, kindTransaction, userID, txn.ID, txn, cause)
}

// EnqueueProfile remembers a profile that still has to reach the remote.
func (s *SQLiteStorage) EnqueueProfile(ctx context.Context, profile model.UserProfile, cause error) error {
	return s.enqueue(ctx, kindProfile, profile.ID, profile.ID, profile, cause)
}

// EnqueueWipe records that every remote transaction of userID must be
// deleted, and returns the marker's id. Writes queued before the marker are
// replayed first, so the remote delete also covers them.
func (s *SQLiteStorage) EnqueueWipe(ctx context.Context, userID string) (int64, error) {
	if err := s.enqueue(ctx, kindWipe, userID, userID, struct{}{}, nil); err != nil {
		return 0, err
	}

	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM pending_sync WHERE kind = ? AND record_id = ?`, kindWipe, userID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to read wipe marker: %w", err)
	}
	return id, nil
}

func (s *SQLiteStorage) enqueue(ctx context.Context, kind, userID, recordID string, v any, cause error) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode pending %s: %w", kind, err)
	}
	lastErr := ""
	if cause != nil {
		lastErr = cause.Error()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO pending_sync (kind, user_id, record_id, payload, attempts, last_error)
		VALUES (?, ?, ?, ?, 1, ?)
		ON CONFLICT(kind, record_id) DO UPDATE SET
			payload = excluded.payload,
			attempts = pending_sync.attempts + 1,
			last_error = excluded.last_error`,
		kind, userID, recordID, string(payload), lastErr)
	if err != nil {
		return fmt.Errorf("failed to enqueue pending %s: %w", kind, err)
	}
	return nil
}

// PendingWrites lists queued writes, oldest first. An empty userID lists all users.
func (s *SQLiteStorage) PendingWrites(ctx context.Context, userID string) ([]PendingWrite, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT id, kind, user_id, record_id, payload, attempts, COALESCE(last_error, '') FROM pending_sync`
	args := []any{}
	if userID != "" {
		query += ` WHERE user_id = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending writes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []PendingWrite
	for rows.Next() {
		var p PendingWrite
		if err := rows.Scan(&p.ID, &p.Kind, &p.UserID, &p.RecordID, &p.Payload, &p.Attempts, &p.LastError); err != nil {
			return nil, fmt.Errorf("failed to scan pending write: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ResolvePending drops a queued write once the remote has accepted it.
func (s *SQLiteStorage) ResolvePending(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM pending_sync WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to resolve pending write %d: %w", id, err)
	}
	return nil
}
