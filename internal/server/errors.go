package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/winlab-analyzer/internal/db"
	"github.com/jonathan/winlab-analyzer/internal/llm"
	"github.com/jonathan/winlab-analyzer/internal/types"
)

// ErrNotFound indicates the requested resource does not exist.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrBadRequest indicates a malformed request that is not a profile
// validation failure, such as an unparsable id or body.
type ErrBadRequest struct {
	Message string
}

func (e *ErrBadRequest) Error() string {
	return e.Message
}

// ErrUnavailable indicates a feature whose backing service is not configured.
type ErrUnavailable struct {
	Feature string
}

func (e *ErrUnavailable) Error() string {
	return fmt.Sprintf("%s is not configured", e.Feature)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr *types.ValidationError
		badRequest    *ErrBadRequest
		notFound      *ErrNotFound
		unavailable   *ErrUnavailable
		shareErr      *ErrInvalidShareToken
		timeoutErr    *llm.TimeoutError
		upstreamErr   *llm.UpstreamError
		transportErr  *llm.TransportError
		malformedErr  *llm.MalformedResponseError
	)

	switch {
	case errors.As(err, &validationErr), errors.As(err, &badRequest):
		return http.StatusBadRequest
	case errors.As(err, &shareErr):
		return http.StatusUnauthorized
	case errors.As(err, &notFound), errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &timeoutErr):
		return http.StatusGatewayTimeout
	case errors.As(err, &upstreamErr), errors.As(err, &transportErr), errors.As(err, &malformedErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func newErrorBody(err error, status int) errorBody {
	if status == http.StatusInternalServerError {
		return errorBody{Error: "internal server error"}
	}

	body := errorBody{Error: err.Error()}
	var validationErr *types.ValidationError
	if errors.As(err, &validationErr) {
		body.Field = validationErr.Field
	}
	return body
}
