package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/jonathan/winlab-analyzer/internal/types"
	"github.com/rs/zerolog"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 8 << 20

// generateRequest is the generateContent wire body.
type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig GenerationConfig `json:"generationConfig"`
	SafetySettings   []SafetySetting  `json:"safetySettings,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

// generateResponse only declares what is read back. Text is a pointer so a
// missing field can be told apart from an empty completion.
type generateResponse struct {
	Candidates []struct {
		Content *struct {
			Parts []struct {
				Text *string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// RESTClient implements Completer by posting the generateContent body
// directly to the Gemini REST endpoint.
type RESTClient struct {
	httpClient *http.Client
	config     *Config
	apiKey     string
}

// NewRESTClient creates a REST completer. A nil httpClient uses
// http.DefaultClient.
func NewRESTClient(config *Config, apiKey string, httpClient *http.Client) *RESTClient {
	if config == nil {
		config = DefaultConfig()
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &RESTClient{
		httpClient: httpClient,
		config:     config.normalized(),
		apiKey:     apiKey,
	}
}

// URL returns the generateContent endpoint for the configured model.
func (c *RESTClient) URL() string {
	return fmt.Sprintf("%s/models/%s:generateContent", strings.TrimRight(c.config.Endpoint, "/"), c.config.Model)
}

// Complete sends prompt and returns the first candidate's first text part.
func (c *RESTClient) Complete(ctx context.Context, prompt string) (*types.RawCompletion, error) {
	logger := zerolog.Ctx(ctx)

	body, err := json.Marshal(generateRequest{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: GenerationPolicy(),
		SafetySettings:   SafetyPolicy(),
	})
	if err != nil {
		return nil, &TransportError{Message: "failed to encode request", Cause: err}
	}

	budget := callBudget(ctx, c.config.Timeout)
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL(), bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	logger.Debug().Str("model", c.config.Model).Int("prompt_bytes", len(prompt)).Msg("sending completion request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classify(ctx, budget, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, classify(ctx, budget, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp errorResponse
		_ = json.Unmarshal(data, &errResp)
		return nil, &UpstreamError{
			StatusCode: resp.StatusCode,
			Message:    upstreamMessage(resp.StatusCode, errResp.Error.Message),
		}
	}

	var gen generateResponse
	if err := json.Unmarshal(data, &gen); err != nil {
		return nil, &MalformedResponseError{Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if len(gen.Candidates) == 0 {
		return nil, &MalformedResponseError{Reason: "no candidates in response"}
	}
	cand := gen.Candidates[0]
	if cand.Content == nil || len(cand.Content.Parts) == 0 || cand.Content.Parts[0].Text == nil {
		return nil, &MalformedResponseError{Reason: "no text at candidates[0].content.parts[0].text"}
	}

	logger.Debug().Str("finish_reason", cand.FinishReason).Msg("completion received")

	return &types.RawCompletion{
		Text:         *cand.Content.Parts[0].Text,
		FinishReason: cand.FinishReason,
		Model:        c.config.Model,
	}, nil
}

// Close is a no-op; the HTTP client is owned by the caller.
func (c *RESTClient) Close() error {
	return nil
}

// classify turns a client-side failure into a timeout or transport error.
// Cancellation by the caller's own context is reported as transport.
func classify(ctx context.Context, budget time.Duration, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &TimeoutError{After: budget}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TimeoutError{After: budget}
	}
	return &TransportError{Message: "request failed", Cause: err}
}
