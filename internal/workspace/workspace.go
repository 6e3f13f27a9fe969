// Package workspace tracks the active user, their transaction list and the
// ledger being edited.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Veraticus/novatax/internal/common"
	"github.com/Veraticus/novatax/internal/invoice"
	"github.com/Veraticus/novatax/internal/ledger"
	"github.com/Veraticus/novatax/internal/model"
	"github.com/Veraticus/novatax/internal/service"
)

// Workspace errors.
var (
	ErrNoActiveUser = errors.New("no active user")
	ErrSuperseded   = errors.New("user switch superseded by a newer switch")
)

// Workspace owns the state of one interactive session. A switch of user
// clears the visible list before the new user's data is loaded, and loads
// that complete after a newer switch are dropped.
type Workspace struct {
	store    service.TransactionStore
	resolver service.RateResolver
	logger   *slog.Logger
	ledger   *ledger.Ledger
	uc       model.UserContext
	txns     []model.Transaction
	gen      uint64
	loading  bool
	mu       sync.Mutex
}

// New creates a workspace with no active user.
func New(store service.TransactionStore, resolver service.RateResolver, logger *slog.Logger) *Workspace {
	return &Workspace{
		store:    store,
		resolver: resolver,
		logger:   common.LoggerOrDefault(logger),
		txns:     []model.Transaction{},
	}
}

// SwitchUser makes uc the active user. The previous list is cleared and the
// previous ledger closed before the load starts.
func (w *Workspace) SwitchUser(ctx context.Context, uc model.UserContext) error {
	if uc.UserID == "" {
		return ErrNoActiveUser
	}

	w.mu.Lock()
	w.gen++
	gen := w.gen
	w.uc = uc
	w.txns = []model.Transaction{}
	w.loading = true
	if w.ledger != nil {
		w.ledger.Close()
	}
	w.ledger = ledger.New(uc, w.resolver)
	w.mu.Unlock()

	txns := w.store.LoadAll(ctx, uc.UserID)

	w.mu.Lock()
	defer w.mu.Unlock()
	if gen != w.gen {
		w.logger.Debug("discarding stale transaction load", "user_id", uc.UserID)
		return ErrSuperseded
	}
	w.txns = txns
	w.loading = false
	return nil
}

// User returns the active user context.
func (w *Workspace) User() (model.UserContext, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.uc, w.uc.UserID != ""
}

// Loading reports whether the active user's transactions are still loading.
func (w *Workspace) Loading() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.loading
}

// Transactions returns a copy of the active user's list, most recent first.
func (w *Workspace) Transactions() []model.Transaction {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]model.Transaction, len(w.txns))
	copy(out, w.txns)
	return out
}

// Ledger returns the ledger being edited, or nil before the first switch.
func (w *Workspace) Ledger() *ledger.Ledger {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ledger
}

// Commit turns the current ledger into a transaction, saves it and starts a
// fresh ledger. An empty meta currency uses the user's display currency.
func (w *Workspace) Commit(ctx context.Context, meta invoice.Meta) (model.Transaction, error) {
	w.mu.Lock()
	l, uc, gen := w.ledger, w.uc, w.gen
	w.mu.Unlock()
	if l == nil || uc.UserID == "" {
		return model.Transaction{}, ErrNoActiveUser
	}

	if meta.Currency == "" {
		meta.Currency = uc.DisplayCurrency
	}
	txn, err := invoice.BuildTransaction(l.Lines(), meta)
	if err != nil {
		return model.Transaction{}, err
	}
	if err := w.store.Append(ctx, uc.UserID, txn); err != nil {
		return model.Transaction{}, fmt.Errorf("failed to save transaction: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if gen == w.gen {
		w.txns = append([]model.Transaction{txn}, w.txns...)
		w.ledger.Close()
		w.ledger = ledger.New(uc, w.resolver)
	}
	return txn, nil
}

// Wipe deletes every transaction of the active user.
func (w *Workspace) Wipe(ctx context.Context) error {
	w.mu.Lock()
	uc, gen := w.uc, w.gen
	w.mu.Unlock()
	if uc.UserID == "" {
		return ErrNoActiveUser
	}

	if err := w.store.WipeAll(ctx, uc.UserID); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if gen == w.gen {
		w.txns = []model.Transaction{}
	}
	return nil
}
