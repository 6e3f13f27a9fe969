package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Veraticus/novatax/internal/common"
)

// CleanJSON strips markdown code fences and surrounding prose from a model
// response, keeping the outermost JSON object or array.
func CleanJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		idx := strings.Index(s, "\n")
		if idx == -1 {
			return strings.Trim(s, "`")
		}
		s = strings.TrimSpace(s[idx+1:])
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = strings.TrimSpace(s[:idx])
	}

	open := strings.IndexAny(s, "{[")
	if open == -1 {
		return s
	}
	closer := "}"
	if s[open] == '[' {
		closer = "]"
	}
	if end := strings.LastIndex(s, closer); end > open {
		s = s[open : end+1]
	}
	return s
}

// DecodeJSON unmarshals a model response into v. Failures wrap
// common.ErrMalformedResponse.
func DecodeJSON(raw string, v any) error {
	clean := CleanJSON(raw)
	if clean == "" {
		return fmt.Errorf("%w: empty response", common.ErrMalformedResponse)
	}
	if err := json.Unmarshal([]byte(clean), v); err != nil {
		return fmt.Errorf("%w: %v", common.ErrMalformedResponse, err)
	}
	return nil
}
