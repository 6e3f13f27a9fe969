package llm

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/novatax/internal/common"
	"github.com/Veraticus/novatax/internal/metrics"
	"github.com/Veraticus/novatax/internal/service"
)

// Collaborator wraps a provider client with rate limiting, retries and metrics.
// It is the Client the rest of the application talks to.
type Collaborator struct {
	client   Client
	limiter  *rateLimiter
	logger   *slog.Logger
	provider string
	retry    service.RetryOptions
}

// NewCollaborator builds the provider named in cfg and wraps it.
func NewCollaborator(ctx context.Context, cfg Config, logger *slog.Logger) (*Collaborator, error) {
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return Wrap(client, cfg, logger), nil
}

// Wrap decorates an existing client. It is used directly by tests.
func Wrap(client Client, cfg Config, logger *slog.Logger) *Collaborator {
	provider := strings.ToLower(cfg.Provider)
	if provider == "" {
		provider = ProviderGemini
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = time.Second
	}

	return &Collaborator{
		client:   client,
		limiter:  newRateLimiter(cfg.RateLimit),
		logger:   common.LoggerOrDefault(logger),
		provider: provider,
		retry: service.RetryOptions{
			MaxAttempts:  maxRetries,
			InitialDelay: retryDelay,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		},
	}
}

// Generate sends req, retrying transient failures.
func (c *Collaborator) Generate(ctx context.Context, req Request) (Response, error) {
	return c.do(ctx, req, nil)
}

// GenerateJSON asks for a JSON object and decodes it into v. Malformed output
// is retried like a transient failure.
func (c *Collaborator) GenerateJSON(ctx context.Context, req Request, v any) error {
	req.JSON = true
	_, err := c.do(ctx, req, func(resp Response) error {
		return DecodeJSON(resp.Text, v)
	})
	return err
}

func (c *Collaborator) do(ctx context.Context, req Request, decode func(Response) error) (Response, error) {
	start := time.Now()
	defer func() {
		metrics.AILatency.WithLabelValues(c.provider).Observe(time.Since(start).Seconds())
	}()

	var resp Response
	err := common.WithRetry(ctx, func() error {
		if err := c.limiter.wait(ctx); err != nil {
			return common.Permanent(err)
		}

		r, err := c.client.Generate(ctx, req)
		if err != nil {
			c.logger.Debug("AI request failed", "provider", c.provider, "error", err)
			return err
		}
		if decode != nil {
			if err := decode(r); err != nil {
				c.logger.Warn("Malformed AI response", "provider", c.provider, "error", err)
				metrics.AIRequests.WithLabelValues(c.provider, metrics.OutcomeMalformed).Inc()
				return common.Transient(err)
			}
		}
		resp = r
		return nil
	}, c.retry)
	if err != nil {
		metrics.AIRequests.WithLabelValues(c.provider, metrics.OutcomeError).Inc()
		return Response{}, err
	}

	metrics.AIRequests.WithLabelValues(c.provider, metrics.OutcomeSuccess).Inc()
	return resp, nil
}

// Provider returns the provider name used for metrics and logs.
func (c *Collaborator) Provider() string {
	return c.provider
}
