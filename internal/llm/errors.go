package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrRateLimit is a 429 from the provider. RetryAfter is zero when the
// provider gave no hint.
type ErrRateLimit struct {
	Provider   string
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("%s rate limited (retry after %s): %v", label(e.Provider), e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse is tutor output that is not JSON, misses the request
// schema, or carries an empty required field.
type ErrInvalidResponse struct {
	Schema  string
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	if e.Schema != "" {
		return fmt.Sprintf("invalid %s response: %v", e.Schema, e.Err)
	}
	return fmt.Sprintf("invalid LLM response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable is a 5xx, a transport failure, or an empty mock queue.
type ErrProviderUnavailable struct {
	Provider string
	Err      error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s unavailable: %v", label(e.Provider), e.Err)
	}
	return label(e.Provider) + " unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrRequestRejected is a 4xx other than 408 and 429: a bad key, an unknown
// model or a schema the provider refuses. Retrying cannot help.
type ErrRequestRejected struct {
	Provider string
	Status   int
	Err      error
}

func (e *ErrRequestRejected) Error() string {
	return fmt.Sprintf("%s rejected request (%d): %v", label(e.Provider), e.Status, e.Err)
}

func (e *ErrRequestRejected) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded is a structured response cut off by MaxTokens. The
// partial content is kept for logging.
type ErrMaxTokensExceeded struct {
	Schema  string
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	if e.Schema != "" {
		return fmt.Sprintf("%s response truncated: max tokens exceeded", e.Schema)
	}
	return "LLM response truncated: max tokens exceeded"
}

// ErrMissingAPIKey names the variable that configures the selected provider.
type ErrMissingAPIKey struct {
	Provider string
	EnvVar   string
}

func (e *ErrMissingAPIKey) Error() string {
	return fmt.Sprintf("%s is required for the %s provider", e.EnvVar, e.Provider)
}

func missingKey(provider string) error {
	return &ErrMissingAPIKey{Provider: provider, EnvVar: apiKeyEnv[provider]}
}

// Retryable reports whether another attempt at the same request may succeed.
// Invalid responses are retryable; RetryProvider caps them separately.
func Retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var (
		maxTok   *ErrMaxTokensExceeded
		rejected *ErrRequestRejected
		missing  *ErrMissingAPIKey
	)
	switch {
	case errors.As(err, &maxTok), errors.As(err, &rejected), errors.As(err, &missing):
		return false
	}
	return true
}

// statusError classifies a provider HTTP failure.
func statusError(provider string, status int, retryAfter time.Duration, err error) error {
	switch {
	case status == http.StatusTooManyRequests:
		return &ErrRateLimit{Provider: provider, RetryAfter: retryAfter, Err: err}
	case status == http.StatusRequestTimeout:
		return &ErrProviderUnavailable{Provider: provider, Err: err}
	case status >= 400 && status < 500:
		return &ErrRequestRejected{Provider: provider, Status: status, Err: err}
	default:
		return &ErrProviderUnavailable{Provider: provider, Err: err}
	}
}

// parseRetryAfter reads the delta-seconds form of Retry-After. HTTP dates
// and garbage yield zero so the caller falls back to its own backoff.
func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func label(provider string) string {
	if provider == "" {
		return "LLM provider"
	}
	return provider
}
