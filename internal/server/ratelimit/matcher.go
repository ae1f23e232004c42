package ratelimit

import (
	"net/http"
	"strings"
)

// MatchEndpoint matches a request path and method to an endpoint configuration.
// Returns the matching EndpointConfig or nil if no match is found.
// Path matching supports prefix matching (e.g., "/api/v1/reports/" matches "/api/v1/reports/{id}").
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	// Health checks are never limited.
	if path == "/health" && method == http.MethodGet {
		return &EndpointConfig{}
	}

	for i := range configs {
		if configs[i].Path == path && configs[i].Method == method {
			return &configs[i]
		}
	}

	// Longest prefix wins.
	var best *EndpointConfig
	for i := range configs {
		cfg := &configs[i]
		if cfg.Method != method || !strings.HasSuffix(cfg.Path, "/") || !strings.HasPrefix(path, cfg.Path) {
			continue
		}
		if best == nil || len(cfg.Path) > len(best.Path) {
			best = cfg
		}
	}
	return best
}
