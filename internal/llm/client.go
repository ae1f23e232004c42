package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jonathan/winlab-analyzer/internal/types"
)

// Completer sends a prompt to the completion service. Implementations do
// not retry; failures are one of TransportError, TimeoutError,
// UpstreamError or MalformedResponseError.
type Completer interface {
	Complete(ctx context.Context, prompt string) (*types.RawCompletion, error)
	// Close releases any resources held by the client
	Close() error
}

// NewCompleter creates a completer for the configured transport.
func NewCompleter(ctx context.Context, config *Config, apiKey string) (Completer, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	switch config.Transport {
	case TransportSDK:
		return NewSDKClient(ctx, config, apiKey)
	case TransportREST, "":
		return NewRESTClient(config, apiKey, http.DefaultClient), nil
	default:
		return nil, fmt.Errorf("unknown completion transport %q", config.Transport)
	}
}
