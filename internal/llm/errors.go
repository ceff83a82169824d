package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	// ErrInvocation marks every failure of a model call. Call-path errors
	// wrap it together with one of the more specific sentinels below.
	ErrInvocation = errors.New("model invocation failed")

	// ErrMissingAPIKey indicates the provider credential is empty.
	ErrMissingAPIKey = errors.New("llm api key is not set")

	// ErrUnsupportedProvider indicates an unknown provider name in config.
	ErrUnsupportedProvider = errors.New("unsupported llm provider")

	// ErrUnavailable indicates the model service is unreachable.
	ErrUnavailable = errors.New("model service unavailable")

	// ErrTimeout indicates the LLM request exceeded the configured timeout.
	ErrTimeout = errors.New("llm request timed out")

	// ErrRateLimited indicates the provider rejected the call for quota reasons.
	ErrRateLimited = errors.New("model service rate limit exceeded")

	// ErrEmptyResponse indicates the provider answered without any text.
	ErrEmptyResponse = errors.New("model returned an empty response")

	// ErrRejected indicates the provider refused the request outright, for
	// example a bad key or a malformed request. It is never retried.
	ErrRejected = errors.New("model service rejected the request")

	// ErrRetryExhausted indicates all retry attempts have been exhausted.
	ErrRetryExhausted = errors.New("llm retry attempts exhausted")
)

// statusError carries a non-2xx HTTP status returned by a provider.
type statusError struct {
	Code int
	Body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("provider returned status %d: %s", e.Code, e.Body)
}

// classify maps a raw provider error onto the package sentinels.
func classify(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrTimeout), errors.Is(err, ErrUnavailable),
		errors.Is(err, ErrRateLimited), errors.Is(err, ErrEmptyResponse):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	case isConnectionError(err):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var se *statusError
	if errors.As(err, &se) {
		switch {
		case se.Code == 429:
			return fmt.Errorf("%w: %v", ErrRateLimited, err)
		case se.Code >= 500:
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}
	return err
}

// retryable reports whether another attempt could succeed.
// Client errors other than 408 and 429 are permanent.
func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) && se.Code >= 400 && se.Code < 500 {
		return se.Code == 408 || se.Code == 429
	}
	return true
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var netErr *net.OpError
	return errors.As(err, &netErr)
}

// ErrorCode returns a short, log-safe code for a model call error.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrUnavailable):
		return "UNAVAILABLE"
	case errors.Is(err, ErrRateLimited):
		return "RATE_LIMITED"
	case errors.Is(err, ErrEmptyResponse):
		return "EMPTY_RESPONSE"
	case errors.Is(err, ErrMissingAPIKey):
		return "MISSING_API_KEY"
	case errors.Is(err, ErrRejected):
		return "REJECTED"
	case errors.Is(err, ErrRetryExhausted):
		return "RETRY_EXHAUSTED"
	default:
		return "UNKNOWN"
	}
}
