package generate

import (
	"fmt"

	"github.com/tidwall/sjson"
)

// envelopeTemplate is the smallest document with a text part at EnvelopeTextPath
const envelopeTemplate = `{"candidates":[{"content":{"role":"model","parts":[{"text":""}]}}]}`

// Envelope wraps generated text into a Gemini-shaped response envelope
func Envelope(text string) ([]byte, error) {
	out, err := sjson.SetBytes([]byte(envelopeTemplate), EnvelopeTextPath, text)
	if err != nil {
		return nil, fmt.Errorf("failed to build envelope: %w", err)
	}
	return out, nil
}
