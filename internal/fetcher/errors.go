package fetcher

import (
	"fmt"

	"github.com/rohmanhakim/title-fetcher/internal/metadata"
	"github.com/rohmanhakim/title-fetcher/pkg/failure"
)

type FetchErrorCause string

const (
	ErrCauseEmptyURL              FetchErrorCause = "empty url"
	ErrCauseInvalidURL            FetchErrorCause = "invalid url"
	ErrCauseDNSFailure            FetchErrorCause = "dns resolution failed"
	ErrCauseNetworkFailure        FetchErrorCause = "network issues"
	ErrCauseTimeout               FetchErrorCause = "timeout"
	ErrCauseHTTPStatus            FetchErrorCause = "http status"
	ErrCauseReadResponseBodyError FetchErrorCause = "failed to read response body"
	ErrCauseInternal              FetchErrorCause = "internal error"
)

// FetchError describes why a single URL could not be resolved to a title.
// StatusCode is set only when the server answered.
type FetchError struct {
	Message    string
	Retryable  bool
	Cause      FetchErrorCause
	StatusCode int
}

func (e *FetchError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("fetcher error: %s", e.Cause)
	}
	return fmt.Sprintf("fetcher error: %s: %s", e.Cause, e.Message)
}

func (e *FetchError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

// IsRetryable returns whether this error is retryable
func (e *FetchError) IsRetryable() bool {
	return e.Retryable
}

// NewInternalError builds the error used for unexpected failures, such as
// a recovered panic, while resolving a URL.
func NewInternalError(message string) *FetchError {
	return &FetchError{
		Message:   message,
		Retryable: false,
		Cause:     ErrCauseInternal,
	}
}

// mapFetchErrorToMetadataCause maps fetcher-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapFetchErrorToMetadataCause(err *FetchError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseEmptyURL, ErrCauseInvalidURL:
		return metadata.CauseInvalidInput
	case ErrCauseDNSFailure, ErrCauseNetworkFailure:
		return metadata.CauseNetworkFailure
	case ErrCauseTimeout:
		return metadata.CauseTimeout
	case ErrCauseHTTPStatus:
		return metadata.CauseHTTPStatus
	case ErrCauseReadResponseBodyError:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
