// Package llm talks to the generative AI collaborator. It supports Gemini,
// OpenAI and Anthropic behind one Client interface, and wraps them with
// retry logic and rate limiting.
package llm
