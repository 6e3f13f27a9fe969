// Package receipt extracts totals from receipt photos with the AI collaborator
// and loads them into a ledger.
package receipt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/Veraticus/novatax/internal/common"
	"github.com/Veraticus/novatax/internal/invoice"
	"github.com/Veraticus/novatax/internal/ledger"
	"github.com/Veraticus/novatax/internal/llm"
	"github.com/Veraticus/novatax/internal/model"
)

// Receipt errors.
var (
	ErrEmptyImage   = errors.New("receipt image is empty")
	ErrNotAnImage   = errors.New("receipt file is not an image")
	ErrInvalidTotal = errors.New("receipt total is missing or invalid")
)

// ScannedDescription is the description given to the line created from a receipt.
const ScannedDescription = "Scanned Item"

// JSONGenerator is the part of the AI collaborator the scanner needs.
type JSONGenerator interface {
	GenerateJSON(ctx context.Context, req llm.Request, v any) error
}

// Receipt is what the collaborator read from a photo.
type Receipt struct {
	Merchant string         `json:"merchant"`
	Date     model.Date     `json:"date"`
	Category model.Category `json:"category"`
	Total    float64        `json:"total"`
}

// Scanner reads receipts.
type Scanner struct {
	ai      JSONGenerator
	logger  *slog.Logger
	timeout time.Duration
}

// NewScanner creates a scanner. A zero timeout means 60 seconds.
func NewScanner(ai JSONGenerator, timeout time.Duration, logger *slog.Logger) *Scanner {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Scanner{ai: ai, timeout: timeout, logger: common.LoggerOrDefault(logger)}
}

// Scan sends the image to the collaborator. An empty mimeType is sniffed
// from the data.
func (s *Scanner) Scan(ctx context.Context, image []byte, mimeType, jurisdiction string) (Receipt, error) {
	if len(image) == 0 {
		return Receipt{}, ErrEmptyImage
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(image)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return Receipt{}, fmt.Errorf("%w: %s", ErrNotAnImage, mimeType)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var out struct {
		Total    *float64 `json:"total"`
		Merchant string   `json:"merchant"`
		Date     string   `json:"date"`
		Category string   `json:"category"`
	}
	err := s.ai.GenerateJSON(ctx, llm.Request{
		Prompt:      scanPrompt(jurisdiction),
		Attachments: []llm.Attachment{{MIMEType: mimeType, Data: image}},
	}, &out)
	if err != nil {
		s.logger.Warn("Receipt scan failed", "jurisdiction", jurisdiction, "error", err)
		return Receipt{}, fmt.Errorf("scan receipt: %w", err)
	}

	if out.Total == nil || math.IsNaN(*out.Total) || math.IsInf(*out.Total, 0) || *out.Total < 0 {
		return Receipt{}, ErrInvalidTotal
	}

	r := Receipt{
		Merchant: strings.TrimSpace(out.Merchant),
		Category: model.ParseCategory(out.Category),
		Total:    *out.Total,
	}
	if d, err := model.ParseDate(strings.TrimSpace(out.Date)); err == nil {
		r.Date = d
	} else if out.Date != "" {
		s.logger.Debug("Ignoring unparseable receipt date", "date", out.Date)
	}
	return r, nil
}

// Apply replaces the ledger's lines with one line for the receipt total and
// returns the metadata the receipt supplies. A zero total leaves the ledger
// as it is.
func Apply(l *ledger.Ledger, r Receipt) invoice.Meta {
	if r.Total > 0 {
		l.ReplaceWithScanned(ScannedDescription, r.Category, r.Total)
	}
	return invoice.Meta{
		Description: r.Merchant,
		Date:        r.Date,
		Type:        model.TypeExpense,
	}
}

func scanPrompt(jurisdiction string) string {
	return fmt.Sprintf(`Extract the following from this receipt issued in %s:
- merchant: the store or vendor name
- date: the purchase date as YYYY-MM-DD
- total: the final amount paid, as a number without currency symbols
- category: one of Goods, Services, Food, Digital, Exempt

Respond with a JSON object with exactly the keys merchant, date, total and category.`, jurisdiction)
}
