package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/jonathan/winlab-analyzer/internal/types"
	"github.com/rs/zerolog"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// SDKClient implements Completer through the generative-ai-go SDK.
type SDKClient struct {
	client *genai.Client
	config *Config
}

// NewSDKClient creates a Gemini SDK client. A non-default endpoint from
// config is passed through to the SDK.
func NewSDKClient(ctx context.Context, config *Config, apiKey string, opts ...option.ClientOption) (*SDKClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if config == nil {
		config = DefaultConfig()
	}
	config = config.normalized()

	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	if config.Endpoint != DefaultEndpoint {
		opts = append(opts, option.WithEndpoint(config.Endpoint))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &SDKClient{
		client: client,
		config: config,
	}, nil
}

// Complete generates a completion with the fixed generation policy.
func (c *SDKClient) Complete(ctx context.Context, prompt string) (*types.RawCompletion, error) {
	budget := callBudget(ctx, c.config.Timeout)
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	model := c.client.GenerativeModel(c.config.Model)
	policy := GenerationPolicy()
	model.SetTemperature(policy.Temperature)
	model.SetTopK(policy.TopK)
	model.SetTopP(policy.TopP)
	model.SetMaxOutputTokens(policy.MaxOutputTokens)
	model.SafetySettings = sdkSafetySettings()

	zerolog.Ctx(ctx).Debug().Str("model", c.config.Model).Msg("sending completion request via SDK")

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, mapError(ctx, budget, err)
	}

	return c.completionFromResponse(resp)
}

// Close releases resources held by the client.
func (c *SDKClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func (c *SDKClient) completionFromResponse(resp *genai.GenerateContentResponse) (*types.RawCompletion, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, &MalformedResponseError{Reason: "no candidates in response"}
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return nil, &MalformedResponseError{Reason: "no content in response"}
	}

	text, ok := candidate.Content.Parts[0].(genai.Text)
	if !ok {
		return nil, &MalformedResponseError{Reason: "first part is not text"}
	}

	return &types.RawCompletion{
		Text:         string(text),
		FinishReason: strings.TrimPrefix(candidate.FinishReason.String(), "FinishReason"),
		Model:        c.config.Model,
	}, nil
}

// mapError translates SDK failures into the completion error taxonomy.
func mapError(ctx context.Context, budget time.Duration, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{After: budget}
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return &UpstreamError{
			StatusCode: apiErr.Code,
			Message:    upstreamMessage(apiErr.Code, apiErr.Message),
		}
	}

	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return &MalformedResponseError{Reason: blocked.Error()}
	}

	return &TransportError{Message: "SDK request failed", Cause: err}
}

func sdkSafetySettings() []*genai.SafetySetting {
	categories := []genai.HarmCategory{
		genai.HarmCategoryHarassment,
		genai.HarmCategoryHateSpeech,
		genai.HarmCategorySexuallyExplicit,
		genai.HarmCategoryDangerousContent,
	}
	settings := make([]*genai.SafetySetting, len(categories))
	for i, category := range categories {
		settings[i] = &genai.SafetySetting{
			Category:  category,
			Threshold: genai.HarmBlockMediumAndAbove,
		}
	}
	return settings
}
