package metadata

import "time"

type FetchEvent struct {
	fetchUrl   string
	httpStatus int
	duration   time.Duration
	attempts   int
	cacheHit   bool
}

/*
batchStats
  - Represents a terminal, derived summary of a completed batch
  - Contains only aggregate counts and durations
  - Is computed by the orchestrator after every fetch has resolved
  - Is recorded exactly once per batch
  - Must not influence fetching or result assembly
*/
type batchStats struct {
	totalURLs   int
	totalErrors int
	totalTitles int
	durationMs  int64
}

/*
	ErrorCause is a closed, canonical classification used exclusively for
	observability (logging, metrics, reporting).

	Rules:
	 - ErrorCause MUST NOT influence control flow.
	 - ErrorCause MUST NOT be used for retry or result-shaping decisions.
	 - Pipeline packages MAY map their local errors to ErrorCause,
	   but MUST NOT invent new meanings.

If a failure does not clearly match a defined cause, CauseUnknown MUST be used.
*/
type ErrorCause int

/*
Canonical ErrorCause Table

# CauseUnknown

  - Unexpected internal errors, recovered panics.

# CauseNetworkFailure

  - DNS resolution failures, refused or reset connections, TLS failures.

# CauseTimeout

  - Per-request timeout or batch deadline reached.

# CauseInvalidInput

  - Empty or malformed URLs, unsupported schemes.

# CauseHTTPStatus

  - The server answered with an error status (4xx, 5xx) or an
    unfollowed redirect.

# CauseContentInvalid

  - Body could not be read or parsed.
*/
const (
	CauseUnknown ErrorCause = iota
	CauseNetworkFailure
	CauseTimeout
	CauseInvalidInput
	CauseHTTPStatus
	CauseContentInvalid
)

func (c ErrorCause) String() string {
	switch c {
	case CauseNetworkFailure:
		return "network_failure"
	case CauseTimeout:
		return "timeout"
	case CauseInvalidInput:
		return "invalid_input"
	case CauseHTTPStatus:
		return "http_status"
	case CauseContentInvalid:
		return "content_invalid"
	default:
		return "unknown"
	}
}

type ErrorRecord struct {
	packageName string
	action      string
	cause       ErrorCause
	errorString string
	observedAt  time.Time
	attrs       []Attribute
}

type Attribute struct {
	Key   AttributeKey
	Value string
}

func NewAttr(key AttributeKey, val string) Attribute {
	return Attribute{
		Key:   key,
		Value: val,
	}
}

type AttributeKey string

const (
	AttrURL        AttributeKey = "url"
	AttrHost       AttributeKey = "host"
	AttrHTTPStatus AttributeKey = "http_status"
	AttrAttempts   AttributeKey = "attempts"
	AttrMessage    AttributeKey = "message"
)
