package tax

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto"

	"github.com/Veraticus/novatax/internal/common"
	"github.com/Veraticus/novatax/internal/llm"
	"github.com/Veraticus/novatax/internal/metrics"
	"github.com/Veraticus/novatax/internal/model"
)

// Prediction errors.
var (
	ErrNoDescription  = errors.New("description is required for rate prediction")
	ErrRateOutOfRange = errors.New("predicted rate outside [0, 1]")
)

// JSONGenerator is the part of the AI collaborator the predictor needs.
type JSONGenerator interface {
	GenerateJSON(ctx context.Context, req llm.Request, v any) error
}

// PredictorConfig tunes prediction latency and caching.
type PredictorConfig struct {
	Timeout  time.Duration
	CacheTTL time.Duration
}

// Predictor asks the AI collaborator for a description-specific tax rate.
// Successful predictions are cached per (jurisdiction, category, description).
type Predictor struct {
	ai      JSONGenerator
	cache   *ristretto.Cache
	logger  *slog.Logger
	timeout time.Duration
	ttl     time.Duration
}

// NewPredictor creates a predictor. Zero config values pick defaults of a
// 10 second timeout and a 24 hour cache.
func NewPredictor(ai JSONGenerator, cfg PredictorConfig, logger *slog.Logger) (*Predictor, error) {
	if ai == nil {
		return nil, fmt.Errorf("%w: ai collaborator is required", common.ErrMissingConfig)
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10000,
		MaxCost:     10000,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize prediction cache: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &Predictor{
		ai:      ai,
		cache:   cache,
		logger:  common.LoggerOrDefault(logger),
		timeout: timeout,
		ttl:     ttl,
	}, nil
}

// PredictRate returns the AI's rate for the item. On any error the caller
// keeps its synchronously resolved rate.
func (p *Predictor) PredictRate(ctx context.Context, jurisdiction, description string, category model.Category) (float64, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return 0, ErrNoDescription
	}

	cacheKey := predictionKey(jurisdiction, description, category)
	if v, ok := p.cache.Get(cacheKey); ok {
		if rate, ok := v.(float64); ok {
			metrics.TaxPredictions.WithLabelValues(metrics.OutcomeCached).Inc()
			return rate, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var out struct {
		TaxRate *float64 `json:"taxRate"`
	}
	err := p.ai.GenerateJSON(ctx, llm.Request{
		System: predictionSystemPrompt,
		Prompt: predictionPrompt(jurisdiction, description, category),
	}, &out)
	if err != nil {
		metrics.TaxPredictions.WithLabelValues(metrics.OutcomeError).Inc()
		p.logger.Warn("Tax rate prediction failed",
			"jurisdiction", jurisdiction,
			"category", category,
			"error", err)
		return 0, fmt.Errorf("predict tax rate: %w", err)
	}

	if out.TaxRate == nil {
		metrics.TaxPredictions.WithLabelValues(metrics.OutcomeMalformed).Inc()
		return 0, fmt.Errorf("%w: taxRate missing", common.ErrMalformedResponse)
	}
	rate := normalizeRate(*out.TaxRate)
	if math.IsNaN(rate) || rate < 0 || rate > 1 {
		metrics.TaxPredictions.WithLabelValues(metrics.OutcomeMalformed).Inc()
		return 0, fmt.Errorf("%w: %v", ErrRateOutOfRange, *out.TaxRate)
	}

	p.cache.SetWithTTL(cacheKey, rate, 1, p.ttl)
	metrics.TaxPredictions.WithLabelValues(metrics.OutcomeSuccess).Inc()
	return rate, nil
}

// Close releases the cache.
func (p *Predictor) Close() {
	p.cache.Close()
}

// normalizeRate accepts percentages such as 15 for 0.15. Models sometimes
// answer in percent despite the instructions.
func normalizeRate(r float64) float64 {
	if r > 1 && r <= 100 {
		return r / 100
	}
	return r
}

func predictionKey(jurisdiction, description string, category model.Category) string {
	return strings.ToLower(strings.TrimSpace(jurisdiction)) + "|" + string(category) + "|" + strings.ToLower(description)
}

const predictionSystemPrompt = "You are an international indirect tax (VAT, GST, sales tax) expert."

func predictionPrompt(jurisdiction, description string, category model.Category) string {
	return fmt.Sprintf(`Determine the sales tax or VAT rate that applies to the following item sold in %s.

Item description: %s
Declared category: %s

Respond with a JSON object of the form {"taxRate": <number>} where the number is a
fraction between 0 and 1 (for example 0.15 for 15%%). Use 0 for exempt or zero-rated items.`,
		jurisdiction, description, category)
}
