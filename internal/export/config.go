// Package export writes a user's transactions to an XLSX workbook.
package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Veraticus/novatax/internal/currency"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid export config")

// Config holds the configuration for the XLSX writer.
type Config struct {
	Path             string
	Currency         string
	EnableFormatting bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Path:             "novatax-transactions.xlsx",
		Currency:         string(currency.USD),
		EnableFormatting: true,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Path) == "" {
		return fmt.Errorf("%w: output path is required", ErrInvalidConfig)
	}
	if ext := strings.ToLower(filepath.Ext(c.Path)); ext != ".xlsx" {
		return fmt.Errorf("%w: output must be an .xlsx file, got %q", ErrInvalidConfig, ext)
	}
	if _, ok := currency.Parse(c.Currency); !ok {
		return fmt.Errorf("%w: unknown currency %q", ErrInvalidConfig, c.Currency)
	}
	return nil
}
