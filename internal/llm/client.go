package llm

import (
	"context"
	"time"
)

// Client defines the interface for LLM providers.
type Client interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

// Request is a single prompt sent to a provider.
type Request struct {
	System      string
	Prompt      string
	Model       string // overrides the configured model when set
	Attachments []Attachment
	// ThinkingBudget enables extended reasoning on providers that support it.
	ThinkingBudget int
	// JSON asks the provider for a bare JSON object.
	JSON bool
}

// Attachment is inline binary content such as a receipt photo.
type Attachment struct {
	MIMEType string
	Data     []byte
}

// Response is the provider's text output.
type Response struct {
	Text  string
	Model string
}

// Config holds provider and resilience settings.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	MaxRetries  int
	RetryDelay  time.Duration
	Timeout     time.Duration
	RateLimit   int
	Temperature float64
	MaxTokens   int
}

const jsonSystemSuffix = "You MUST respond with ONLY a valid JSON object. Do not include any explanatory text, markdown formatting, or commentary before or after the JSON."

func systemPrompt(req Request) string {
	if !req.JSON {
		return req.System
	}
	if req.System == "" {
		return jsonSystemSuffix
	}
	return req.System + "\n\n" + jsonSystemSuffix
}
