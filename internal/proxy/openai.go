package proxy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"charm.land/fantasy"
	"charm.land/fantasy/providers/openai"

	"github.com/acheong08/neuromap/internal/generate"
	"github.com/acheong08/neuromap/pkg/models"
)

const (
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultOpenAIModel   = "gpt-5-mini"
)

// OpenAI serves requests from any OpenAI-compatible endpoint. The structured
// output is collected through a submit tool, falling back to the reply text.
type OpenAI struct {
	model fantasy.LanguageModel
}

// NewOpenAI creates an OpenAI-compatible backend. An empty key yields
// ErrNotConfigured.
func NewOpenAI(ctx context.Context, apiKey, baseURL, model string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	if model == "" {
		model = DefaultOpenAIModel
	}

	provider, err := openai.New(
		openai.WithBaseURL(baseURL),
		openai.WithAPIKey(apiKey),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI provider: %w", err)
	}

	lm, err := provider.LanguageModel(ctx, model)
	if err != nil {
		return nil, fmt.Errorf("failed to create language model: %w", err)
	}
	return &OpenAI{model: lm}, nil
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) Generate(ctx context.Context, req generate.GenerateRequest) ([]byte, error) {
	prompt, err := promptText(req.Contents)
	if err != nil {
		return nil, &UpstreamError{StatusCode: http.StatusBadRequest, Details: err.Error()}
	}

	system, err := schemaInstruction(req)
	if err != nil {
		return nil, &UpstreamError{StatusCode: http.StatusBadRequest, Details: err.Error()}
	}

	var submitted []byte
	agent := fantasy.NewAgent(o.model,
		fantasy.WithSystemPrompt(system),
		fantasy.WithTools(submitTool(req, &submitted)),
	)
	result, err := agent.Generate(ctx, fantasy.AgentCall{
		Prompt: prompt,
	})
	if err != nil {
		return nil, fmt.Errorf("agent generation failed: %w", err)
	}

	text := string(submitted)
	if text == "" {
		text = stripFences(result.Response.Content.Text())
	}
	if text == "" {
		return nil, &UpstreamError{StatusCode: http.StatusBadGateway, Details: "empty response from model"}
	}
	return generate.Envelope(text)
}

// schemaInstruction folds the response schema into the system prompt, since
// the OpenAI path has no native schema parameter here
func schemaInstruction(req generate.GenerateRequest) (string, error) {
	var sb strings.Builder
	if req.SystemInstruction != "" {
		sb.WriteString(req.SystemInstruction)
		sb.WriteString("\n\n")
	}
	if req.Config.ResponseSchema != nil {
		schema, err := json.Marshal(req.Config.ResponseSchema)
		if err != nil {
			return "", fmt.Errorf("failed to encode response schema: %w", err)
		}
		sb.WriteString("Submit your answer with the submit_response tool. ")
		sb.WriteString("It must be JSON matching this schema:\n")
		sb.Write(schema)
	} else {
		sb.WriteString("Answer with JSON only.")
	}
	return sb.String(), nil
}

// submitTool picks a typed submit tool for the two known response shapes
func submitTool(req generate.GenerateRequest, out *[]byte) fantasy.AgentTool {
	if schema := req.Config.ResponseSchema; schema != nil {
		if _, ok := schema.Properties["nodes"]; ok {
			return newSubmitTool[models.RoadmapData](out)
		}
	}
	return newSubmitTool[models.NodeDetailsResponse](out)
}

func newSubmitTool[T any](out *[]byte) fantasy.AgentTool {
	return fantasy.NewAgentTool(
		"submit_response",
		"Submit the structured response", func(
			_ context.Context,
			input T,
			_ fantasy.ToolCall,
		) (fantasy.ToolResponse, error) {
			b, err := json.Marshal(input)
			if err != nil {
				return fantasy.ToolResponse{}, err
			}
			*out = b
			return fantasy.ToolResponse{
				Content: "Response received",
			}, nil
		})
}
