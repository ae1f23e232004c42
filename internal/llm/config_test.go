package llm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, TransportREST, config.Transport)
	assert.Equal(t, DefaultEndpoint, config.Endpoint)
	assert.Equal(t, "gemini-1.5-flash", config.Model)
	assert.Equal(t, 60*time.Second, config.Timeout)
}

func TestWithModel(t *testing.T) {
	config := DefaultConfig()
	newConfig := config.WithModel("custom-model")

	// Original should be unchanged
	assert.Equal(t, "gemini-1.5-flash", config.Model)
	assert.Equal(t, "custom-model", newConfig.Model)
	assert.Equal(t, config.Endpoint, newConfig.Endpoint)
}

func TestNormalized_FillsDefaults(t *testing.T) {
	config := (&Config{Model: "other"}).normalized()

	assert.Equal(t, TransportREST, config.Transport)
	assert.Equal(t, DefaultEndpoint, config.Endpoint)
	assert.Equal(t, "other", config.Model)
	assert.Equal(t, DefaultTimeout, config.Timeout)
}

func TestGenerationPolicy(t *testing.T) {
	policy := GenerationPolicy()

	assert.InDelta(t, 0.2, policy.Temperature, 1e-6)
	assert.Equal(t, int32(40), policy.TopK)
	assert.InDelta(t, 0.95, policy.TopP, 1e-6)
	assert.Equal(t, int32(8192), policy.MaxOutputTokens)
}

func TestSafetyPolicy(t *testing.T) {
	settings := SafetyPolicy()

	assert.Len(t, settings, 4)
	for _, s := range settings {
		assert.Equal(t, "BLOCK_MEDIUM_AND_ABOVE", s.Threshold)
	}
}
