package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/acheong08/neuromap/pkg/models"
)

const (
	// DefaultModel is the model used for both request types
	DefaultModel = "gemini-2.5-flash"

	// DefaultRoadmapTemperature keeps roadmap structure stable between runs
	DefaultRoadmapTemperature float32 = 0.3

	// EnvelopeTextPath locates the generated text inside the response envelope
	EnvelopeTextPath = "candidates.0.content.parts.0.text"

	// ActionGenerateContent is the only action the endpoint understands
	ActionGenerateContent = "generateContent"
)

// Request is the body POSTed to the generation endpoint
type Request struct {
	Action string          `json:"action" validate:"required"`
	Data   GenerateRequest `json:"data"`
}

// GenerateRequest carries the instruction, schema and generation parameters
type GenerateRequest struct {
	Model             string           `json:"model" validate:"required"`
	Contents          json.RawMessage  `json:"contents" validate:"required"`
	SystemInstruction string           `json:"systemInstruction,omitempty"`
	Config            GenerationConfig `json:"config"`
}

// GenerationConfig mirrors the structured-output part of the Gemini config
type GenerationConfig struct {
	ResponseMIMEType string        `json:"responseMimeType"`
	ResponseSchema   *genai.Schema `json:"responseSchema,omitempty"`
	Temperature      *float32      `json:"temperature,omitempty"`
}

// Client talks to the generation endpoint. It keeps no state between calls.
type Client struct {
	endpoint    string
	model       string
	temperature float32
	httpClient  *http.Client
	logger      *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithModel overrides the model identifier
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithTemperature overrides the roadmap temperature
func WithTemperature(t float32) Option {
	return func(c *Client) { c.temperature = t }
}

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger attaches a logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a client for the given endpoint
func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:    endpoint,
		model:       DefaultModel,
		temperature: DefaultRoadmapTemperature,
		httpClient:  http.DefaultClient,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RequestRoadmap asks the model for a combined learning roadmap
func (c *Client) RequestRoadmap(ctx context.Context) (*models.RoadmapData, error) {
	temperature := c.temperature
	req := GenerateRequest{
		Model:             c.model,
		Contents:          textContents(roadmapPrompt),
		SystemInstruction: roadmapSystemInstruction,
		Config: GenerationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   RoadmapSchema(),
			Temperature:      &temperature,
		},
	}

	text, err := c.generate(ctx, "roadmap", req)
	if err != nil {
		return nil, err
	}

	data, err := DecodeRoadmap(text)
	if err != nil {
		return nil, newError(KindParse, "roadmap", err)
	}

	c.logger.Info("Roadmap generated", zap.Int("nodes", len(data.Nodes)))
	return data, nil
}

// RequestNodeDetails asks the model for study material about a single node
func (c *Client) RequestNodeDetails(ctx context.Context, label, description string) (*models.NodeDetailsResponse, error) {
	req := GenerateRequest{
		Model:    c.model,
		Contents: textContents(detailsPrompt(label, description)),
		Config: GenerationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   DetailsSchema(),
		},
	}

	text, err := c.generate(ctx, "details", req)
	if err != nil {
		return nil, err
	}

	details, err := DecodeDetails(text)
	if err != nil {
		return nil, newError(KindParse, "details", err)
	}
	return details, nil
}

// generate sends the request and returns the text field of the envelope
func (c *Client) generate(ctx context.Context, op string, data GenerateRequest) ([]byte, error) {
	body, err := json.Marshal(Request{Action: ActionGenerateContent, Data: data})
	if err != nil {
		return nil, newError(KindTransport, op, fmt.Errorf("failed to marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, newError(KindTransport, op, fmt.Errorf("failed to create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Warn("Generation request failed", zap.String("op", op), zap.Error(err))
		return nil, newError(KindTransport, op, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(KindTransport, op, fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("Generation service returned an error",
			zap.String("op", op),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", truncate(respBody, 512)))
		genErr := newError(KindService, op, fmt.Errorf("API request failed: %s", http.StatusText(resp.StatusCode)))
		genErr.StatusCode = resp.StatusCode
		return nil, genErr
	}

	return extractText(op, respBody)
}

// extractText pulls candidates[0].content.parts[0].text out of the envelope
func extractText(op string, envelope []byte) ([]byte, error) {
	if !gjson.ValidBytes(envelope) {
		return nil, newError(KindEnvelope, op, fmt.Errorf("response is not JSON"))
	}
	text := gjson.GetBytes(envelope, EnvelopeTextPath)
	if !text.Exists() || text.Type != gjson.String || text.Str == "" {
		return nil, newError(KindEnvelope, op, fmt.Errorf("no text at %s", EnvelopeTextPath))
	}
	return []byte(text.Str), nil
}

func textContents(s string) json.RawMessage {
	b, _ := json.Marshal(s)
	return b
}

func truncate(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}
