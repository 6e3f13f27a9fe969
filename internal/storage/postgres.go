package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Veraticus/novatax/internal/model"
)

// RemoteStore is the hosted datastore: rows keyed by user id and record id,
// each holding an opaque JSON payload.
type RemoteStore interface {
	UpsertTransaction(ctx context.Context, userID string, txn model.Transaction) error
	ListTransactions(ctx context.Context, userID string) ([]model.Transaction, error)
	DeleteTransactions(ctx context.Context, userID string) error
	UpsertProfile(ctx context.Context, profile model.UserProfile) error
	ListProfiles(ctx context.Context) ([]model.UserProfile, error)
}

// dbtx is the subset of pgxpool.Pool the store uses.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresStore implements RemoteStore on Postgres.
type PostgresStore struct {
	db   dbtx
	pool *pgxpool.Pool
}

// ConnectPostgres opens a pool and verifies the connection.
func ConnectPostgres(ctx context.Context, url string) (*PostgresStore, error) {
	if err := validateString(url, "url"); err != nil {
		return nil, err
	}

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return &PostgresStore{db: pool, pool: pool}, nil
}

// Close releases the pool.
func (p *PostgresStore) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

// Migrate creates the tables if they do not exist.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS novatax_transactions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			data JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_novatax_transactions_user ON novatax_transactions (user_id, created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS novatax_profiles (
			id TEXT PRIMARY KEY,
			data JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}
	for _, q := range queries {
		if _, err := p.db.Exec(ctx, q); err != nil {
			return fmt.Errorf("failed to migrate postgres: %w", err)
		}
	}
	return nil
}

// UpsertTransaction inserts or replaces one transaction row.
func (p *PostgresStore) UpsertTransaction(ctx context.Context, userID string, txn model.Transaction) error {
	data, err := json.Marshal(txn)
	if err != nil {
		return fmt.Errorf("failed to encode transaction: %w", err)
	}

	var recordedAt *time.Time
	if !txn.RecordedAt.IsZero() {
		recordedAt = &txn.RecordedAt
	}

	query := `
		INSERT INTO novatax_transactions (id, user_id, data, created_at)
		VALUES ($1, $2, $3, COALESCE($4::timestamptz, NOW()))
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, created_at = EXCLUDED.created_at
		WHERE novatax_transactions.user_id = EXCLUDED.user_id
	`
	if _, err := p.db.Exec(ctx, query, txn.ID, userID, data, recordedAt); err != nil {
		return fmt.Errorf("failed to upsert transaction %s: %w", txn.ID, err)
	}
	return nil
}

// ListTransactions returns the user's transactions, most recent first. Rows
// written without a stamp take created_at as their RecordedAt.
func (p *PostgresStore) ListTransactions(ctx context.Context, userID string) ([]model.Transaction, error) {
	query := `
		SELECT data, created_at
		FROM novatax_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := p.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	txns := []model.Transaction{}
	for rows.Next() {
		var data []byte
		var createdAt time.Time
		if err := rows.Scan(&data, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		var txn model.Transaction
		if err := json.Unmarshal(data, &txn); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptDocument, err)
		}
		if txn.RecordedAt.IsZero() {
			txn.RecordedAt = createdAt.UTC()
		}
		txns = append(txns, txn)
	}
	return txns, rows.Err()
}

// DeleteTransactions removes every row of the user.
func (p *PostgresStore) DeleteTransactions(ctx context.Context, userID string) error {
	if _, err := p.db.Exec(ctx, `DELETE FROM novatax_transactions WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete transactions: %w", err)
	}
	return nil
}

// UpsertProfile inserts or replaces one profile row.
func (p *PostgresStore) UpsertProfile(ctx context.Context, profile model.UserProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}

	query := `
		INSERT INTO novatax_profiles (id, data, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
	`
	if _, err := p.db.Exec(ctx, query, profile.ID, data); err != nil {
		return fmt.Errorf("failed to upsert profile %s: %w", profile.ID, err)
	}
	return nil
}

// ListProfiles returns every profile.
func (p *PostgresStore) ListProfiles(ctx context.Context) ([]model.UserProfile, error) {
	rows, err := p.db.Query(ctx, `SELECT data FROM novatax_profiles ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	profiles := []model.UserProfile{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		var profile model.UserProfile
		if err := json.Unmarshal(data, &profile); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptDocument, err)
		}
		profiles = append(profiles, profile)
	}
	return profiles, rows.Err()
}
