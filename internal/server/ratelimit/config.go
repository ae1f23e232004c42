package ratelimit

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// LoadConfig loads rate limiting configuration from environment variables.
func LoadConfig() *Config {
	if !getEnvBool("RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    getEnvInt("RATE_LIMIT_DEFAULT_LIMIT", 1000),
		DefaultWindow:   getEnvDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		Whitelist:       parseIPList(os.Getenv("RATE_LIMIT_WHITELIST")),
		Blacklist:       parseIPList(os.Getenv("RATE_LIMIT_BLACKLIST")),
		EndpointConfigs: DefaultEndpointConfigs(getEnvInt("RATE_LIMIT_ANALYSES_PER_HOUR", 10)),
	}
}

// DefaultEndpointConfigs returns the endpoint-specific limits. analysesPerHour
// bounds the completion-backed endpoint, which is the expensive one.
func DefaultEndpointConfigs(analysesPerHour int) []EndpointConfig {
	return []EndpointConfig{
		{Path: "/api/v1/analyses", Method: http.MethodPost, Limit: analysesPerHour, Window: time.Hour, Burst: 2},

		{Path: "/api/v1/consultations", Method: http.MethodPost, Limit: 20, Window: time.Hour, Burst: 5},
		{Path: "/api/v1/consultations/", Method: http.MethodPatch, Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/api/v1/reports/", Method: http.MethodDelete, Limit: 100, Window: time.Minute, Burst: 10},

		// Exports are rendered per request.
		{Path: "/api/v1/reports/", Method: http.MethodGet, Limit: 120, Window: time.Minute, Burst: 20},
		{Path: "/api/v1/shared/", Method: http.MethodGet, Limit: 60, Window: time.Minute, Burst: 10},
	}
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
