package llm

import (
	"context"
	"fmt"
	"time"
)

// TransportError means the request never produced an HTTP response.
type TransportError struct {
	Message string
	Cause   error
}

func (e *TransportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("completion transport error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("completion transport error: %s", e.Message)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// TimeoutError means the completion call exceeded its wall-clock budget.
// After is that budget: the configured timeout, or the shorter time left on
// the caller's deadline when the call started.
type TimeoutError struct {
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("completion timed out after %s", e.After)
}

// UpstreamError is a non-2xx answer from the completion service.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("completion service returned %d: %s", e.StatusCode, e.Message)
}

// MalformedResponseError is a 2xx answer without text at the expected path.
type MalformedResponseError struct {
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed completion response: %s", e.Reason)
}

// upstreamMessage falls back to a status-based message when the service
// sent no structured error.
func upstreamMessage(status int, message string) string {
	if message != "" {
		return message
	}
	return fmt.Sprintf("API error with status code: %d", status)
}

// callBudget returns how long a call started now may run: timeout, or less
// when ctx has an earlier deadline.
func callBudget(ctx context.Context, timeout time.Duration) time.Duration {
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			return max(remaining, 0)
		}
	}
	return timeout
}
