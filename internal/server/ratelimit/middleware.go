package ratelimit

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// Middleware rejects requests over the limit with 429 and sets the
// X-RateLimit headers on every limited response.
func Middleware(l *Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, info := l.Allow(ClientID(r), r.URL.Path, r.Method)
			setHeaders(w, info)
			if !allowed {
				reject(w, r, info)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientID identifies the caller by remote IP. Forwarding headers are not
// trusted.
func ClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func setHeaders(w http.ResponseWriter, info Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

func reject(w http.ResponseWriter, r *http.Request, info Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.UTC().Format(time.RFC3339)
	}
	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds())
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	zerolog.Ctx(r.Context()).Warn().
		Int("limit", info.Limit).
		Time("reset_at", info.ResetTime).
		Msg("rate limit exceeded")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(response)
}
