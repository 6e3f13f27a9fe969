package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/novatax/internal/common"
	"github.com/Veraticus/novatax/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidProfile     = errors.New("invalid profile")
	ErrCorruptDocument    = fmt.Errorf("%w: cached document is not valid JSON", common.ErrDatabaseCorrupted)
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTransaction checks the fields every persisted transaction needs.
func validateTransaction(txn model.Transaction) error {
	if strings.TrimSpace(txn.ID) == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidTransaction)
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	if !txn.Type.Valid() {
		return fmt.Errorf("%w: type %q", ErrInvalidTransaction, txn.Type)
	}
	return nil
}

func validateProfile(p model.UserProfile) error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidProfile)
	}
	return nil
}
