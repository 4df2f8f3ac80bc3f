package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType categorizes provider failures for retry classification. Types
// determine whether a generation attempt should be retried and with what
// backoff, separating transient provider trouble from permanent faults.
type ErrorType string

const (
	// ErrorTypeTimeout indicates request timeout or deadline exceeded (retryable).
	ErrorTypeTimeout ErrorType = "timeout"

	// ErrorTypeRateLimit indicates the provider rate limit was hit (retryable with backoff).
	ErrorTypeRateLimit ErrorType = "rate_limit"

	// ErrorTypeNetwork indicates connectivity issues (retryable).
	ErrorTypeNetwork ErrorType = "network"

	// ErrorTypeProvider indicates the provider service is unavailable (retryable).
	ErrorTypeProvider ErrorType = "provider_unavailable"

	// ErrorTypeAuth indicates authentication failed (non-retryable).
	ErrorTypeAuth ErrorType = "authentication"

	// ErrorTypeQuota indicates the account quota is exhausted (non-retryable).
	ErrorTypeQuota ErrorType = "quota_exceeded"

	// ErrorTypeInvalidRequest indicates the request was rejected as malformed (non-retryable).
	ErrorTypeInvalidRequest ErrorType = "invalid_request"

	// ErrorTypeUnknown indicates an unclassified error.
	ErrorTypeUnknown ErrorType = "unknown"
)

// Common client errors.
var (
	// ErrEmptyResponse indicates the provider returned no completion content.
	ErrEmptyResponse = errors.New("empty completion content")

	// ErrNoJSONArray indicates no top-level JSON array could be extracted
	// from the model output.
	ErrNoJSONArray = errors.New("could not extract a top-level JSON array from model output")
)

// ProviderError describes a failed provider API call with enough context
// for classification and logging.
type ProviderError struct {
	Provider   string    `json:"provider"`
	StatusCode int       `json:"status_code"`
	Message    string    `json:"message"`
	Code       string    `json:"code,omitempty"`
	Type       ErrorType `json:"type"`
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s error (HTTP %d, %s): %s", e.Provider, e.StatusCode, e.Type, e.Message)
}

// IsRetryable reports whether the failure class is worth retrying.
func (e *ProviderError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeTimeout, ErrorTypeRateLimit, ErrorTypeNetwork, ErrorTypeProvider:
		return true
	default:
		return false
	}
}

// classifyStatus maps an HTTP status code to an error type.
func classifyStatus(statusCode int) ErrorType {
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return ErrorTypeAuth
	case statusCode == http.StatusTooManyRequests:
		return ErrorTypeRateLimit
	case statusCode == http.StatusPaymentRequired:
		return ErrorTypeQuota
	case statusCode == http.StatusRequestTimeout || statusCode == http.StatusGatewayTimeout:
		return ErrorTypeTimeout
	case statusCode >= 500:
		return ErrorTypeProvider
	case statusCode >= 400:
		return ErrorTypeInvalidRequest
	default:
		return ErrorTypeUnknown
	}
}
