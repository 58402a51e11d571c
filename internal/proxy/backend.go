package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/acheong08/neuromap/internal/generate"
)

// ErrNotConfigured is returned when a backend has no API key
var ErrNotConfigured = errors.New("API key not configured")

// Backend performs one structured generation and returns a Gemini-shaped
// response envelope
type Backend interface {
	Name() string
	Generate(ctx context.Context, req generate.GenerateRequest) ([]byte, error)
}

// UpstreamError is a failure with an HTTP status worth passing through
type UpstreamError struct {
	StatusCode int
	Details    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.StatusCode, e.Details)
}

// promptText flattens request contents into a single prompt. Contents may be
// a plain string or a list of Gemini content objects.
func promptText(raw json.RawMessage) (string, error) {
	if !gjson.ValidBytes(raw) {
		return "", fmt.Errorf("contents is not valid JSON")
	}
	parsed := gjson.ParseBytes(raw)
	switch {
	case parsed.Type == gjson.String:
		return parsed.Str, nil
	case parsed.IsArray():
		var parts []string
		parsed.ForEach(func(_, content gjson.Result) bool {
			content.Get("parts").ForEach(func(_, part gjson.Result) bool {
				if text := part.Get("text"); text.Exists() {
					parts = append(parts, text.String())
				}
				return true
			})
			return true
		})
		if len(parts) == 0 {
			return "", fmt.Errorf("contents has no text parts")
		}
		return strings.Join(parts, "\n\n"), nil
	default:
		return "", fmt.Errorf("contents must be a string or a list of contents")
	}
}

// stripFences removes a surrounding markdown code fence, if any
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		text = text[nl+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
