package extractor

import (
	"fmt"

	"github.com/rohmanhakim/title-fetcher/internal/metadata"
	"github.com/rohmanhakim/title-fetcher/pkg/failure"
)

type ExtractionErrorCause string

const (
	ErrCauseParseFailed   ExtractionErrorCause = "parse failed"
	ErrCauseUnclosedTitle ExtractionErrorCause = "unclosed title"
)

type ExtractionError struct {
	Message   string
	Retryable bool
	Cause     ExtractionErrorCause
}

func (e *ExtractionError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("extraction error: %s", e.Cause)
	}
	return fmt.Sprintf("extraction error: %s: %s", e.Cause, e.Message)
}

func (e *ExtractionError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

// mapExtractionErrorToMetadataCause maps extractor-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapExtractionErrorToMetadataCause(err *ExtractionError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseParseFailed, ErrCauseUnclosedTitle:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
