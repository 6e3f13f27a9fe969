// Package ledger holds the editable line items of the transaction being
// composed. Every edit keeps line totals and tax rates consistent, and
// asynchronous AI rate predictions are applied only while they are still
// current.
package ledger

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/Veraticus/novatax/internal/invoice"
	"github.com/Veraticus/novatax/internal/model"
	"github.com/Veraticus/novatax/internal/service"
)

// Ledger errors.
var (
	ErrLineNotFound = errors.New("line item not found")
	ErrUnknownField = errors.New("unknown line item field")
)

// Field names an editable line item column.
type Field string

// Editable fields. LineTotal and TaxRate are derived and cannot be set directly.
const (
	FieldDescription Field = "description"
	FieldCategory    Field = "category"
	FieldQuantity    Field = "quantity"
	FieldUnitPrice   Field = "unitPrice"
)

// ParseField accepts the JSON names plus a few CLI friendly aliases.
func ParseField(s string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "description", "desc":
		return FieldDescription, nil
	case "category", "cat":
		return FieldCategory, nil
	case "quantity", "qty":
		return FieldQuantity, nil
	case "unitprice", "unit_price", "price":
		return FieldUnitPrice, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
}

// Ledger is owned by a single editing session. Methods are safe to call from
// prediction goroutines.
type Ledger struct {
	resolver service.RateResolver
	pending  map[string]uint64
	seq      map[string]uint64
	newID    func() string
	uc       model.UserContext
	lines    []model.LineItem
	gen      uint64
	closed   bool
	mu       sync.Mutex
}

// New creates a ledger holding one blank line.
func New(uc model.UserContext, resolver service.RateResolver) *Ledger {
	l := &Ledger{
		resolver: resolver,
		uc:       uc,
		newID:    uuid.NewString,
		pending:  make(map[string]uint64),
		seq:      make(map[string]uint64),
	}
	l.lines = []model.LineItem{l.blankLine(model.DefaultCategory)}
	return l
}

// Context returns the user context the ledger resolves rates for.
func (l *Ledger) Context() model.UserContext {
	return l.uc
}

// Lines returns a copy of the lines in order.
func (l *Ledger) Lines() []model.LineItem {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]model.LineItem, len(l.lines))
	copy(out, l.lines)
	return out
}

// Line returns one line by id.
func (l *Ledger) Line(id string) (model.LineItem, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if i := l.index(id); i >= 0 {
		return l.lines[i], true
	}
	return model.LineItem{}, false
}

// Len is the number of lines. It is never zero.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.lines)
}

// Totals recomputes subtotal, tax and grand total from the current lines.
func (l *Ledger) Totals() invoice.Totals {
	return invoice.ComputeTotals(l.Lines())
}

// AddLine appends a line with quantity 1, price 0 and the category's rate.
func (l *Ledger) AddLine(category model.Category) model.LineItem {
	l.mu.Lock()
	defer l.mu.Unlock()

	line := l.blankLine(category)
	l.lines = append(l.lines, line)
	return line
}

// UpdateLine sets one field from free-text input. Quantity and unit price
// recompute the line total; category recomputes the tax rate; description
// changes nothing else.
func (l *Ledger) UpdateLine(id string, field Field, value string) (model.LineItem, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.index(id)
	if i < 0 {
		return model.LineItem{}, fmt.Errorf("%w: %s", ErrLineNotFound, id)
	}
	line := &l.lines[i]

	switch field {
	case FieldDescription:
		line.Description = value
	case FieldCategory:
		line.Category = model.ParseCategory(value)
		line.TaxRate = l.resolver.ResolveRate(l.uc.Jurisdiction, line.Category)
	case FieldQuantity:
		line.Quantity = math.Max(parseNumber(value), 0)
		line.LineTotal = invoice.Finite(line.Quantity * line.UnitPrice)
	case FieldUnitPrice:
		line.UnitPrice = parseNumber(value)
		line.LineTotal = invoice.Finite(line.Quantity * line.UnitPrice)
	default:
		return model.LineItem{}, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	return *line, nil
}

// RemoveLine deletes a line. Removing the last line replaces it with a blank
// one so the ledger is never empty.
func (l *Ledger) RemoveLine(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrLineNotFound, id)
	}

	l.lines = append(l.lines[:i], l.lines[i+1:]...)
	delete(l.pending, id)
	delete(l.seq, id)
	if len(l.lines) == 0 {
		l.lines = []model.LineItem{l.blankLine(model.DefaultCategory)}
	}
	return nil
}

// ReplaceWithScanned discards all lines and inserts one line for a scanned
// receipt. The scanned total already includes tax, so the rate is zero.
func (l *Ledger) ReplaceWithScanned(description string, category model.Category, total float64) model.LineItem {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.invalidateLocked()
	total = invoice.Finite(total)
	line := model.LineItem{
		ID:          l.newID(),
		Description: description,
		Category:    category,
		Quantity:    1,
		UnitPrice:   total,
		TaxRate:     0,
		LineTotal:   total,
	}
	l.lines = []model.LineItem{line}
	return line
}

// Reset starts a new composition with one blank line. Predictions in flight
// for the old lines are discarded.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.invalidateLocked()
	l.closed = false
	l.lines = []model.LineItem{l.blankLine(model.DefaultCategory)}
}

// Close ends the editing session. Predictions that complete afterwards are
// discarded.
func (l *Ledger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.invalidateLocked()
	l.closed = true
}

// Generation changes every time the ledger is reset, closed or replaced.
func (l *Ledger) Generation() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gen
}

func (l *Ledger) invalidateLocked() {
	l.gen++
	l.pending = make(map[string]uint64)
	l.seq = make(map[string]uint64)
}

func (l *Ledger) blankLine(category model.Category) model.LineItem {
	if !category.Valid() {
		category = model.DefaultCategory
	}
	return model.LineItem{
		ID:        l.newID(),
		Category:  category,
		Quantity:  1,
		UnitPrice: 0,
		TaxRate:   l.resolver.ResolveRate(l.uc.Jurisdiction, category),
		LineTotal: 0,
	}
}

func (l *Ledger) index(id string) int {
	for i := range l.lines {
		if l.lines[i].ID == id {
			return i
		}
	}
	return -1
}

// parseNumber coerces free-text numeric input. Anything unparsable, NaN or
// infinite becomes zero.
func parseNumber(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return invoice.Finite(f)
}
