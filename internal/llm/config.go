// Package llm provides the completion client that sends analysis prompts to
// the Gemini generative-language API.
package llm

import "time"

// Transport selects how requests reach the completion service.
type Transport string

const (
	// TransportREST posts the generateContent wire body directly over HTTP.
	TransportREST Transport = "rest"
	// TransportSDK goes through the generative-ai-go SDK.
	TransportSDK Transport = "sdk"
)

const (
	// DefaultEndpoint is the Gemini v1beta API root.
	DefaultEndpoint = "https://generativelanguage.googleapis.com/v1beta"
	// DefaultModel is the model used for business analyses.
	DefaultModel = "gemini-1.5-flash"
	// DefaultTimeout bounds a single completion call.
	DefaultTimeout = 60 * time.Second
)

// Config holds the connection settings for the completion service.
type Config struct {
	Transport Transport
	Endpoint  string
	Model     string
	Timeout   time.Duration
}

// DefaultConfig returns the default Gemini configuration.
func DefaultConfig() *Config {
	return &Config{
		Transport: TransportREST,
		Endpoint:  DefaultEndpoint,
		Model:     DefaultModel,
		Timeout:   DefaultTimeout,
	}
}

// WithModel returns a copy of the config using model.
func (c *Config) WithModel(model string) *Config {
	cp := *c
	cp.Model = model
	return &cp
}

// normalized fills zero values with defaults.
func (c *Config) normalized() *Config {
	cp := *c
	if cp.Transport == "" {
		cp.Transport = TransportREST
	}
	if cp.Endpoint == "" {
		cp.Endpoint = DefaultEndpoint
	}
	if cp.Model == "" {
		cp.Model = DefaultModel
	}
	if cp.Timeout <= 0 {
		cp.Timeout = DefaultTimeout
	}
	return &cp
}

// GenerationConfig is the sampling policy sent with every request.
type GenerationConfig struct {
	Temperature     float32 `json:"temperature"`
	TopK            int32   `json:"topK"`
	TopP            float32 `json:"topP"`
	MaxOutputTokens int32   `json:"maxOutputTokens"`
}

// GenerationPolicy returns the fixed sampling parameters used for analyses.
// They are not configurable per request.
func GenerationPolicy() GenerationConfig {
	return GenerationConfig{
		Temperature:     0.2,
		TopK:            40,
		TopP:            0.95,
		MaxOutputTokens: 8192,
	}
}

// SafetySetting blocks one harm category at a threshold.
type SafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

// SafetyPolicy returns the safety settings sent with every request.
func SafetyPolicy() []SafetySetting {
	categories := []string{
		"HARM_CATEGORY_HARASSMENT",
		"HARM_CATEGORY_HATE_SPEECH",
		"HARM_CATEGORY_SEXUALLY_EXPLICIT",
		"HARM_CATEGORY_DANGEROUS_CONTENT",
	}
	settings := make([]SafetySetting, len(categories))
	for i, c := range categories {
		settings[i] = SafetySetting{Category: c, Threshold: "BLOCK_MEDIUM_AND_ABOVE"}
	}
	return settings
}
