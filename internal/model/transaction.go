package model

import (
	"strings"
	"time"
)

// TransactionType indicates the direction of money flow.
type TransactionType string

const (
	// TypeIncome is money received, such as a sale.
	TypeIncome TransactionType = "income"
	// TypeExpense is money spent.
	TypeExpense TransactionType = "expense"
)

// Source identifies where a transaction was recorded.
type Source string

// Source constants.
const (
	SourceBank   Source = "Bank"
	SourceCrypto Source = "Crypto"
	SourcePOS    Source = "POS"
	SourceManual Source = "Manual"
)

// Status is the settlement state of a transaction.
type Status string

// Status constants.
const (
	StatusPaid   Status = "Paid"
	StatusCredit Status = "Credit"
)

// GeneralCategory is the transaction category used when no line item provides one.
const GeneralCategory = "General"

// Transaction is a finalized financial record derived from a ledger.
// Transactions are immutable once saved.
type Transaction struct {
	ID               string          `json:"id"`
	Date             Date            `json:"date"`
	Description      string          `json:"description"`
	Amount           float64         `json:"amount"`
	TaxAmount        float64         `json:"taxAmount"`
	OriginalCurrency string          `json:"originalCurrency"`
	Category         string          `json:"category"`
	Type             TransactionType `json:"type"`
	Source           Source          `json:"source"`
	Status           Status          `json:"status"`
	Classification   Classification  `json:"classification"`
	Items            []LineItem      `json:"items,omitempty"`

	// RecordedAt is when the store accepted the transaction. Lists are
	// ordered by it, newest first.
	RecordedAt time.Time `json:"recordedAt,omitzero"`
}

// Subtotal is the pre-tax amount.
func (t Transaction) Subtotal() float64 {
	return t.Amount - t.TaxAmount
}

// ParseTransactionType falls back to TypeExpense for unknown input.
func ParseTransactionType(s string) TransactionType {
	if strings.EqualFold(strings.TrimSpace(s), string(TypeIncome)) {
		return TypeIncome
	}
	return TypeExpense
}

// ParseSource falls back to SourceManual for unknown input.
func ParseSource(s string) Source {
	for _, src := range []Source{SourceBank, SourceCrypto, SourcePOS, SourceManual} {
		if strings.EqualFold(strings.TrimSpace(s), string(src)) {
			return src
		}
	}
	return SourceManual
}

// ParseStatus falls back to StatusPaid for unknown input.
func ParseStatus(s string) Status {
	if strings.EqualFold(strings.TrimSpace(s), string(StatusCredit)) {
		return StatusCredit
	}
	return StatusPaid
}

// Valid reports whether t is income or expense.
func (t TransactionType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}
