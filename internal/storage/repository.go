package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"

	"github.com/Veraticus/novatax/internal/common"
	"github.com/Veraticus/novatax/internal/metrics"
	"github.com/Veraticus/novatax/internal/model"
	"github.com/Veraticus/novatax/internal/service"
)

// Compile-time interface checks.
var (
	_ service.TransactionStore = (*Repository)(nil)
	_ service.ProfileStore     = (*Repository)(nil)
)

// Repository writes to the local cache first and mirrors to the hosted
// datastore on a best-effort basis. Writes the remote rejects are queued
// locally and replayed on the next load or Sync.
type Repository struct {
	local  *SQLiteStorage
	remote RemoteStore
	logger *slog.Logger
}

// NewRepository creates a repository. A nil remote keeps everything local.
func NewRepository(local *SQLiteStorage, remote RemoteStore, logger *slog.Logger) *Repository {
	return &Repository{
		local:  local,
		remote: remote,
		logger: common.LoggerOrDefault(logger),
	}
}

// Local returns the underlying cache.
func (r *Repository) Local() *SQLiteStorage {
	return r.local
}

// Append inserts txn at the head of the user's list. The stamp given by the
// local cache travels with the remote write, so a replayed write keeps its
// place in the order. Only a local failure is returned.
func (r *Repository) Append(ctx context.Context, userID string, txn model.Transaction) error {
	txn, err := r.local.PrependTransaction(ctx, userID, txn)
	if err != nil {
		return fmt.Errorf("failed to save transaction locally: %w", err)
	}
	metrics.TransactionsSaved.Inc()

	if r.remote == nil {
		return nil
	}
	if err := r.remote.UpsertTransaction(ctx, userID, txn); err != nil {
		r.remoteFailed("append", userID, err)
		if qerr := r.local.EnqueueTransaction(ctx, userID, txn, err); qerr != nil {
			r.logger.Warn("failed to queue transaction for sync",
				"user_id", userID, "transaction_id", txn.ID, "error", qerr)
		}
	}
	return nil
}

// LoadAll returns the user's transactions, most recent first. The remote is
// authoritative when reachable; transactions still waiting to be synced are
// merged in by RecordedAt. An unreadable store yields an empty list.
func (r *Repository) LoadAll(ctx context.Context, userID string) []model.Transaction {
	txns, err := r.LoadAllChecked(ctx, userID)
	if err != nil {
		r.logger.Warn("failed to load transactions", "user_id", userID, "error", err)
		return []model.Transaction{}
	}
	return txns
}

// LoadAllChecked is LoadAll for callers that must tell an empty list from an
// unreadable one. It fails only when neither store could be read.
func (r *Repository) LoadAllChecked(ctx context.Context, userID string) ([]model.Transaction, error) {
	if r.remote == nil {
		return r.loadLocal(ctx, userID)
	}

	if _, err := r.flush(ctx, userID); err != nil {
		r.logger.Debug("pending writes not flushed", "user_id", userID, "error", err)
	}

	remote, err := r.remote.ListTransactions(ctx, userID)
	if err != nil {
		r.remoteFailed("load", userID, err)
		metrics.LocalFallbacks.Inc()
		txns, lerr := r.loadLocal(ctx, userID)
		if lerr != nil {
			return nil, fmt.Errorf("%w: %w (%w)", common.ErrRemoteUnavailable, lerr, err)
		}
		return txns, nil
	}

	merged := remote
	pending, err := r.pendingTransactions(ctx, userID)
	if err != nil {
		r.logger.Warn("failed to read pending transactions", "user_id", userID, "error", err)
	} else {
		merged = mergePending(pending, remote)
	}

	if err := r.local.ReplaceTransactions(ctx, userID, merged); err != nil {
		r.logger.Warn("failed to refresh local cache", "user_id", userID, "error", err)
	}
	return merged, nil
}

// WipeAll deletes every transaction of the user from both stores. The remote
// delete runs first, guarded by a wipe marker in the outbox; if it fails the
// marker is dropped and nothing is deleted. If the local delete then fails,
// the marker stays queued and the remote, already empty, rebuilds the cache
// on the next load.
func (r *Repository) WipeAll(ctx context.Context, userID string) error {
	if r.remote == nil {
		if err := r.local.WipeTransactions(ctx, userID); err != nil {
			return fmt.Errorf("failed to wipe transactions: %w", err)
		}
		r.logger.Info("wiped transactions", "user_id", userID)
		return nil
	}

	marker, err := r.local.EnqueueWipe(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to record wipe: %w", err)
	}

	if err := r.remote.DeleteTransactions(ctx, userID); err != nil {
		r.remoteFailed("wipe", userID, err)
		if derr := r.local.ResolvePending(ctx, marker); derr != nil {
			r.logger.Warn("failed to drop wipe marker", "user_id", userID, "error", derr)
		}
		return fmt.Errorf("%w: %w", common.ErrRemoteUnavailable, err)
	}

	if err := r.local.WipeTransactions(ctx, userID); err != nil {
		return fmt.Errorf("remote transactions deleted but local cache was not: %w", err)
	}
	r.logger.Info("wiped transactions", "user_id", userID)
	return nil
}

// SaveProfile stores the profile locally and mirrors it remotely.
func (r *Repository) SaveProfile(ctx context.Context, profile model.UserProfile) error {
	if err := r.local.UpsertProfile(ctx, profile); err != nil {
		return fmt.Errorf("failed to save profile locally: %w", err)
	}
	if r.remote == nil {
		return nil
	}
	if err := r.remote.UpsertProfile(ctx, profile); err != nil {
		r.remoteFailed("save_profile", profile.ID, err)
		if qerr := r.local.EnqueueProfile(ctx, profile, err); qerr != nil {
			r.logger.Warn("failed to queue profile for sync", "user_id", profile.ID, "error", qerr)
		}
	}
	return nil
}

// LoadProfiles returns every profile, preferring the remote copy.
func (r *Repository) LoadProfiles(ctx context.Context) []model.UserProfile {
	if r.remote == nil {
		return r.loadLocalProfiles(ctx)
	}

	remote, err := r.remote.ListProfiles(ctx)
	if err != nil {
		r.remoteFailed("load_profiles", "", err)
		metrics.LocalFallbacks.Inc()
		return r.loadLocalProfiles(ctx)
	}

	pending, err := r.local.PendingWrites(ctx, "")
	if err != nil {
		r.logger.Warn("failed to read pending profiles", "error", err)
		pending = nil
	}
	for _, p := range pending {
		if p.Kind != kindProfile {
			continue
		}
		var profile model.UserProfile
		if err := json.Unmarshal([]byte(p.Payload), &profile); err != nil {
			continue
		}
		remote = upsertProfile(remote, profile)
	}

	if err := r.local.ReplaceProfiles(ctx, remote); err != nil {
		r.logger.Warn("failed to refresh local profiles", "error", err)
	}
	return remote
}

// Sync replays every queued write against the remote and returns how many
// were accepted.
func (r *Repository) Sync(ctx context.Context) (int, error) {
	if r.remote == nil {
		return 0, nil
	}
	return r.flush(ctx, "")
}

// flush replays queued writes for userID (all users when empty). It stops at
// the first remote failure.
func (r *Repository) flush(ctx context.Context, userID string) (int, error) {
	pending, err := r.local.PendingWrites(ctx, userID)
	if err != nil {
		return 0, err
	}

	flushed := 0
	for _, p := range pending {
		if err := r.replay(ctx, p); err != nil {
			r.remoteFailed("sync", p.UserID, err)
			return flushed, err
		}
		if err := r.local.ResolvePending(ctx, p.ID); err != nil {
			return flushed, err
		}
		flushed++
	}
	if flushed > 0 {
		r.logger.Info("synced pending writes", "count", flushed, "user_id", userID)
	}
	return flushed, nil
}

func (r *Repository) replay(ctx context.Context, p PendingWrite) error {
	switch p.Kind {
	case kindTransaction:
		var txn model.Transaction
		if err := json.Unmarshal([]byte(p.Payload), &txn); err != nil {
			return fmt.Errorf("%w: pending transaction %s: %v", ErrCorruptDocument, p.RecordID, err)
		}
		return r.remote.UpsertTransaction(ctx, p.UserID, txn)
	case kindProfile:
		var profile model.UserProfile
		if err := json.Unmarshal([]byte(p.Payload), &profile); err != nil {
			return fmt.Errorf("%w: pending profile %s: %v", ErrCorruptDocument, p.RecordID, err)
		}
		return r.remote.UpsertProfile(ctx, profile)
	case kindWipe:
		return r.remote.DeleteTransactions(ctx, p.UserID)
	default:
		return fmt.Errorf("unknown pending write kind %q", p.Kind)
	}
}

// pendingTransactions returns the user's unsynced transactions, newest first.
func (r *Repository) pendingTransactions(ctx context.Context, userID string) ([]model.Transaction, error) {
	pending, err := r.local.PendingWrites(ctx, userID)
	if err != nil {
		return nil, err
	}

	txns := make([]model.Transaction, 0, len(pending))
	for i := len(pending) - 1; i >= 0; i-- {
		if pending[i].Kind != kindTransaction {
			continue
		}
		var txn model.Transaction
		if err := json.Unmarshal([]byte(pending[i].Payload), &txn); err != nil {
			r.logger.Warn("dropping unreadable pending transaction",
				"user_id", userID, "record_id", pending[i].RecordID, "error", err)
			continue
		}
		txns = append(txns, txn)
	}
	slices.SortStableFunc(txns, newestFirst)
	return txns, nil
}

func (r *Repository) loadLocal(ctx context.Context, userID string) ([]model.Transaction, error) {
	txns, err := r.local.LoadTransactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load local transactions: %w", err)
	}
	if txns == nil {
		txns = []model.Transaction{}
	}
	return txns, nil
}

func (r *Repository) loadLocalProfiles(ctx context.Context) []model.UserProfile {
	profiles, err := r.local.LoadProfiles(ctx)
	if err != nil {
		r.logger.Warn("failed to load local profiles", "error", err)
		return []model.UserProfile{}
	}
	if profiles == nil {
		profiles = []model.UserProfile{}
	}
	return profiles
}

func (r *Repository) remoteFailed(op, userID string, err error) {
	metrics.RemoteFailures.WithLabelValues(op).Inc()
	r.logger.Warn("remote datastore operation failed", "op", op, "user_id", userID, "error", err)
}

// mergePending interleaves unsynced transactions with the remote list, both
// newest first. A pending entry goes ahead of remote entries that are not
// newer than it.
func mergePending(pending, remote []model.Transaction) []model.Transaction {
	seen := make(map[string]bool, len(remote))
	for _, t := range remote {
		seen[t.ID] = true
	}

	merged := make([]model.Transaction, 0, len(pending)+len(remote))
	i := 0
	for _, p := range pending {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		for i < len(remote) && remote[i].RecordedAt.After(p.RecordedAt) {
			merged = append(merged, remote[i])
			i++
		}
		merged = append(merged, p)
	}
	return append(merged, remote[i:]...)
}

func newestFirst(a, b model.Transaction) int {
	return b.RecordedAt.Compare(a.RecordedAt)
}

func upsertProfile(profiles []model.UserProfile, profile model.UserProfile) []model.UserProfile {
	for i := range profiles {
		if profiles[i].ID == profile.ID {
			profiles[i] = profile
			return profiles
		}
	}
	return append(profiles, profile)
}
