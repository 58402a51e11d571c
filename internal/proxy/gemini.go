package proxy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"github.com/acheong08/neuromap/internal/generate"
)

// Gemini forwards requests to the Gemini API
type Gemini struct {
	client *genai.Client
}

// NewGemini creates a Gemini backend. An empty key yields ErrNotConfigured.
func NewGemini(ctx context.Context, apiKey string) (*Gemini, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &Gemini{client: client}, nil
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) Generate(ctx context.Context, req generate.GenerateRequest) ([]byte, error) {
	contents, err := geminiContents(req.Contents)
	if err != nil {
		return nil, &UpstreamError{StatusCode: http.StatusBadRequest, Details: err.Error()}
	}

	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: req.Config.ResponseMIMEType,
		ResponseSchema:   req.Config.ResponseSchema,
		Temperature:      req.Config.Temperature,
	}
	if req.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(ctx, req.Model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return nil, &UpstreamError{StatusCode: http.StatusBadGateway, Details: "empty response from model"}
	}
	return generate.Envelope(text)
}

func geminiContents(raw json.RawMessage) ([]*genai.Content, error) {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return genai.Text(text), nil
	}

	var contents []*genai.Content
	if err := json.Unmarshal(raw, &contents); err != nil {
		return nil, fmt.Errorf("contents must be a string or a list of contents: %w", err)
	}
	if len(contents) == 0 {
		return nil, fmt.Errorf("contents is empty")
	}
	return contents, nil
}
