package llm

import (
	"context"
	"errors"
	"fmt"
	"net"

	"google.golang.org/api/googleapi"
)

// TransientError marks a failure worth retrying: timeout, rate limit,
// connection reset, provider 5xx.
type TransientError struct {
	Message string
	Cause   error
}

func (e *TransientError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("transient model failure: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("transient model failure: %s", e.Message)
}

func (e *TransientError) Unwrap() error {
	return e.Cause
}

// MalformedOutputError marks a response that violates the requested schema or
// cannot be parsed. Retrying with the same prompt may still help, but the
// budget is bounded.
type MalformedOutputError struct {
	Message string
	Cause   error
}

func (e *MalformedOutputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed model output: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("malformed model output: %s", e.Message)
}

func (e *MalformedOutputError) Unwrap() error {
	return e.Cause
}

// IsTransient reports whether err is (or wraps) a TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// IsMalformed reports whether err is (or wraps) a MalformedOutputError.
func IsMalformed(err error) bool {
	var me *MalformedOutputError
	return errors.As(err, &me)
}

// classifyCallError wraps a provider call failure in the matching typed
// error. Deadline, rate-limit, and server-side failures are transient;
// anything the provider rejects outright is treated as transient too, since
// the per-call shape never changes between attempts.
func classifyCallError(message string, err error) error {
	if err == nil {
		return nil
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 408, apiErr.Code == 429, apiErr.Code >= 500:
			return &TransientError{Message: message, Cause: err}
		case apiErr.Code == 400:
			return &MalformedOutputError{Message: message, Cause: err}
		}
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.As(err, &netErr) {
		return &TransientError{Message: message, Cause: err}
	}

	return &TransientError{Message: message, Cause: err}
}
