package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/sashabaranov/go-openai"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// TransientError is a retryable failure (network, rate limit, provider overload)
type TransientError struct {
	Message string
	Cause   error
}

func (e *TransientError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("transient llm error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("transient llm error: %s", e.Message)
}

func (e *TransientError) Unwrap() error {
	return e.Cause
}

// FatalError is a non-retryable failure, typically a malformed or
// schema-violating response
type FatalError struct {
	Message string
	Cause   error
}

func (e *FatalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("llm error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("llm error: %s", e.Message)
}

func (e *FatalError) Unwrap() error {
	return e.Cause
}

// ConfigError means no usable provider is configured. It is never retried.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("llm configuration error: %s", e.Message)
}

// IsTransient reports whether err (or anything it wraps) is a TransientError
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// IsConfig reports whether err (or anything it wraps) is a ConfigError
func IsConfig(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// ClassifyProviderError wraps a raw provider error in the taxonomy.
// Errors that are already classified are returned unchanged.
func ClassifyProviderError(message string, err error) error {
	if err == nil {
		return nil
	}

	var (
		te *TransientError
		fe *FatalError
		ce *ConfigError
	)
	if errors.As(err, &te) || errors.As(err, &fe) || errors.As(err, &ce) {
		return err
	}

	// Caller cancellation is not a provider problem; surface it as-is
	if errors.Is(err, context.Canceled) {
		return err
	}

	if isRetryableProviderError(err) {
		return &TransientError{Message: message, Cause: err}
	}
	return &FatalError{Message: message, Cause: err}
}

func isRetryableProviderError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return retryableStatus(gErr.Code)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.HTTPStatusCode)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return retryableStatus(reqErr.HTTPStatusCode)
	}

	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.Unavailable, codes.ResourceExhausted, codes.DeadlineExceeded, codes.Aborted, codes.Internal:
			return true
		}
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code == http.StatusRequestTimeout || code >= http.StatusInternalServerError
}
