package fetcher

import (
	"encoding/json"
	"time"

	"github.com/rohmanhakim/title-fetcher/pkg/retry"
)

// UrlResult is the outcome of resolving one URL. A successful result
// carries a status code and possibly a title; a failed one carries an
// error and, when the server answered, its status code.
type UrlResult struct {
	url        string
	title      string
	statusCode int
	err        *FetchError
}

func NewSuccessResult(url string, title string, statusCode int) UrlResult {
	return UrlResult{
		url:        url,
		title:      title,
		statusCode: statusCode,
	}
}

func NewErrorResult(url string, err *FetchError) UrlResult {
	return UrlResult{
		url:        url,
		statusCode: err.StatusCode,
		err:        err,
	}
}

func (r UrlResult) URL() string {
	return r.url
}

// Title is empty when the page had no title or the fetch failed.
func (r UrlResult) Title() string {
	return r.title
}

// StatusCode is zero when no HTTP response was received.
func (r UrlResult) StatusCode() int {
	return r.statusCode
}

func (r UrlResult) Err() *FetchError {
	return r.err
}

func (r UrlResult) IsSuccess() bool {
	return r.err == nil
}

type urlResultDTO struct {
	URL        string `json:"url"`
	Title      string `json:"title,omitempty"`
	StatusCode int    `json:"statusCode,omitempty"`
	Error      string `json:"error,omitempty"`
	ErrorCause string `json:"errorCause,omitempty"`
}

func (r UrlResult) MarshalJSON() ([]byte, error) {
	dto := urlResultDTO{
		URL:        r.url,
		Title:      r.title,
		StatusCode: r.statusCode,
	}
	if r.err != nil {
		dto.Error = r.err.Message
		if dto.Error == "" {
			dto.Error = string(r.err.Cause)
		}
		dto.ErrorCause = string(r.err.Cause)
	}
	return json.Marshal(dto)
}

func (r *UrlResult) UnmarshalJSON(data []byte) error {
	var dto urlResultDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return err
	}
	*r = UrlResult{
		url:        dto.URL,
		title:      dto.Title,
		statusCode: dto.StatusCode,
	}
	if dto.Error != "" || dto.ErrorCause != "" {
		r.err = &FetchError{
			Message:    dto.Error,
			Cause:      FetchErrorCause(dto.ErrorCause),
			StatusCode: dto.StatusCode,
		}
	}
	return nil
}

// FetchParam carries the per-request settings of a TitleFetcher.
type FetchParam struct {
	userAgent    string
	timeout      time.Duration
	maxBodyBytes int64
	cacheTTL     time.Duration
	retryParam   retry.RetryParam
}

func NewFetchParam(
	userAgent string,
	timeout time.Duration,
	maxBodyBytes int64,
	cacheTTL time.Duration,
	retryParam retry.RetryParam,
) FetchParam {
	return FetchParam{
		userAgent:    userAgent,
		timeout:      timeout,
		maxBodyBytes: maxBodyBytes,
		cacheTTL:     cacheTTL,
		retryParam:   retryParam,
	}
}

func (p FetchParam) UserAgent() string {
	return p.userAgent
}

func (p FetchParam) Timeout() time.Duration {
	return p.timeout
}

func (p FetchParam) MaxBodyBytes() int64 {
	return p.maxBodyBytes
}

func (p FetchParam) CacheTTL() time.Duration {
	return p.cacheTTL
}

func (p FetchParam) RetryParam() retry.RetryParam {
	return p.retryParam
}

// page is the raw outcome of a successful HTTP exchange.
type page struct {
	statusCode int
	body       []byte
}
