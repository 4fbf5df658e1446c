package llm

import (
	"errors"
	"fmt"
	"net"
)

// Sentinel errors for terminal completion outcomes. Callers distinguish
// them with errors.Is.
var (
	// ErrAuth reports a missing or rejected credential. Fatal for the
	// whole run; surfaced before any batch work begins.
	ErrAuth = errors.New("llm: authentication failed")

	// ErrRateLimitExceeded reports that rate-limit retries were exhausted.
	ErrRateLimitExceeded = errors.New("llm: rate limit retries exhausted")

	// ErrCompletionFailed reports that transient-failure retries were
	// exhausted.
	ErrCompletionFailed = errors.New("llm: completion failed after retries")
)

// RateLimitError is a single 429 response, prior to retry accounting.
type RateLimitError struct {
	Provider string
	Message  string
}

func (e *RateLimitError) Error() string {
	if e == nil {
		return "llm: rate limited"
	}
	if e.Message == "" {
		return fmt.Sprintf("llm: %s: rate limited", e.Provider)
	}
	return fmt.Sprintf("llm: %s: rate limited: %s", e.Provider, e.Message)
}

// InvalidRequestError is a non-retryable client error (malformed
// request, unknown model).
type InvalidRequestError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *InvalidRequestError) Error() string {
	if e == nil {
		return "llm: invalid request"
	}
	return fmt.Sprintf("llm: %s: invalid request (%d): %s", e.Provider, e.StatusCode, e.Message)
}

// ModelNotFound reports whether the error is a 404 for the requested
// model. The runner treats it as systemic misconfiguration and aborts
// the batch instead of marking one question failed.
func (e *InvalidRequestError) ModelNotFound() bool {
	return e != nil && e.StatusCode == 404
}

// TransientError is a retryable failure: a 5xx response or a network
// timeout.
type TransientError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *TransientError) Error() string {
	if e == nil {
		return "llm: transient failure"
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("llm: %s: transient failure (%d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("llm: %s: transient failure: %v", e.Provider, e.Err)
}

func (e *TransientError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// classifyStatus maps an HTTP status to the error taxonomy. Statuses
// outside the taxonomy return nil and the raw error passes through.
func classifyStatus(provider string, status int, msg string, cause error) error {
	switch {
	case status == 401 || status == 403:
		return fmt.Errorf("%w: %s: %s", ErrAuth, provider, msg)
	case status == 429:
		return &RateLimitError{Provider: provider, Message: msg}
	case status >= 400 && status < 500:
		return &InvalidRequestError{Provider: provider, StatusCode: status, Message: msg}
	case status >= 500 && status <= 599:
		return &TransientError{Provider: provider, StatusCode: status, Err: cause}
	default:
		return nil
	}
}

func classifyNetError(provider string, err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TransientError{Provider: provider, Err: err}
	}
	return err
}

func isRateLimited(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}

func isTransient(err error) bool {
	var tr *TransientError
	return errors.As(err, &tr)
}
