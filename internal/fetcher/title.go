package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rohmanhakim/title-fetcher/internal/cache"
	"github.com/rohmanhakim/title-fetcher/internal/extractor"
	"github.com/rohmanhakim/title-fetcher/internal/metadata"
	"github.com/rohmanhakim/title-fetcher/pkg/failure"
	"github.com/rohmanhakim/title-fetcher/pkg/limiter"
	"github.com/rohmanhakim/title-fetcher/pkg/retry"
	"github.com/rohmanhakim/title-fetcher/pkg/urlutil"
	"golang.org/x/net/html/charset"
)

/*
Responsibilities

- Serve titles from the cache while they are fresh
- Perform HTTP GET requests with headers and a per-request timeout
- Classify transport and status failures
- Decode bodies to UTF-8 and hand them to the title extractor
- Cache successful results that carry a title

Fetch Semantics

- A blank URL never touches the network
- Redirects are followed by net/http; a final status >= 300 is a failure
- Bodies are read up to a fixed size limit
- Every fetch is reported to the metadata sink
*/

const emptyURLMessage = "Url is null"

type TitleFetcher struct {
	metadataSink metadata.MetadataSink
	httpClient   *http.Client
	cache        cache.Cache[UrlResult]
	hostLimiter  limiter.HostLimiter
	extractor    extractor.TitleExtractor
	param        FetchParam
}

func NewTitleFetcher(
	metadataSink metadata.MetadataSink,
	httpClient *http.Client,
	resultCache cache.Cache[UrlResult],
	hostLimiter limiter.HostLimiter,
	titleExtractor extractor.TitleExtractor,
	param FetchParam,
) *TitleFetcher {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if hostLimiter == nil {
		hostLimiter = limiter.NoopLimiter{}
	}
	return &TitleFetcher{
		metadataSink: metadataSink,
		httpClient:   httpClient,
		cache:        resultCache,
		hostLimiter:  hostLimiter,
		extractor:    titleExtractor,
		param:        param,
	}
}

func (t *TitleFetcher) Fetch(ctx context.Context, rawURL string) (result UrlResult) {
	callerMethod := "TitleFetcher.Fetch"
	startTime := time.Now()

	defer func() {
		if r := recover(); r != nil {
			fetchErr := NewInternalError(fmt.Sprintf("panic: %v", r))
			t.recordFetchError(callerMethod, rawURL, fetchErr, 0)
			result = NewErrorResult(rawURL, fetchErr)
		}
	}()

	if strings.TrimSpace(rawURL) == "" {
		fetchErr := &FetchError{
			Message:   emptyURLMessage,
			Retryable: false,
			Cause:     ErrCauseEmptyURL,
		}
		t.recordFetchError(callerMethod, rawURL, fetchErr, 0)
		return NewErrorResult(rawURL, fetchErr)
	}

	if cached, ok := t.cache.Get(rawURL); ok {
		t.metadataSink.RecordFetch(rawURL, cached.StatusCode(), time.Since(startTime), 0, true)
		return cached
	}

	fetchUrl, err := urlutil.ParseFetchable(rawURL)
	if err != nil {
		fetchErr := &FetchError{
			Message:   fmt.Sprintf("invalid url: %v", err),
			Retryable: false,
			Cause:     ErrCauseInvalidURL,
		}
		t.recordFetchError(callerMethod, rawURL, fetchErr, 0)
		return NewErrorResult(rawURL, fetchErr)
	}

	if err := t.hostLimiter.Wait(ctx, urlutil.HostKey(fetchUrl)); err != nil {
		fetchErr := &FetchError{
			Message:   fmt.Sprintf("gave up waiting for host slot: %v", err),
			Retryable: false,
			Cause:     ErrCauseTimeout,
		}
		t.recordFetchError(callerMethod, rawURL, fetchErr, 0)
		return NewErrorResult(rawURL, fetchErr)
	}

	res := t.fetchWithRetry(ctx, fetchUrl)
	duration := time.Since(startTime)

	if res.IsFailure() {
		fetchErr := unwrapFetchError(res.Err())
		t.metadataSink.RecordFetch(rawURL, fetchErr.StatusCode, duration, res.Attempts(), false)
		t.recordFetchError(callerMethod, rawURL, fetchErr, res.Attempts())
		return NewErrorResult(rawURL, fetchErr)
	}

	fetched := res.Value()
	t.metadataSink.RecordFetch(rawURL, fetched.statusCode, duration, res.Attempts(), false)

	title := t.extractor.Extract(rawURL, fetched.body)
	result = NewSuccessResult(rawURL, title, fetched.statusCode)
	if title != "" {
		t.cache.Set(rawURL, result, t.param.cacheTTL)
	}
	return result
}

func (t *TitleFetcher) fetchWithRetry(ctx context.Context, fetchUrl url.URL) retry.Result[page] {
	fetchTask := func() (page, failure.ClassifiedError) {
		return t.performFetch(ctx, fetchUrl)
	}
	retryParam := t.param.retryParam
	if retryParam.MaxAttempts < 1 {
		retryParam.MaxAttempts = 1
	}
	return retry.Retry(ctx, retryParam, fetchTask)
}

func (t *TitleFetcher) performFetch(ctx context.Context, fetchUrl url.URL) (page, failure.ClassifiedError) {
	if t.param.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.param.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchUrl.String(), nil)
	if err != nil {
		return page{}, &FetchError{
			Message:   fmt.Sprintf("failed to create request: %v", err),
			Retryable: false,
			Cause:     ErrCauseInvalidURL,
		}
	}

	// Apply browser-like headers
	for key, value := range requestHeaders(t.param.userAgent) {
		req.Header.Set(key, value)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return page{}, classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return page{}, &FetchError{
			Message: fmt.Sprintf(
				"server returned an error: (%d) %s",
				resp.StatusCode,
				http.StatusText(resp.StatusCode),
			),
			Retryable:  resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests,
			Cause:      ErrCauseHTTPStatus,
			StatusCode: resp.StatusCode,
		}
	}

	body, err := t.readBody(resp)
	if err != nil {
		if ctx.Err() != nil {
			fetchErr := classifyTransportError(ctx, err)
			fetchErr.StatusCode = resp.StatusCode
			return page{}, fetchErr
		}
		return page{}, &FetchError{
			Message:    fmt.Sprintf("failed to read response body: %v", err),
			Retryable:  true,
			Cause:      ErrCauseReadResponseBodyError,
			StatusCode: resp.StatusCode,
		}
	}

	return page{
		statusCode: resp.StatusCode,
		body:       body,
	}, nil
}

// readBody reads at most maxBodyBytes of the body and converts it to UTF-8
// according to the declared or sniffed charset.
func (t *TitleFetcher) readBody(resp *http.Response) ([]byte, error) {
	var body io.Reader = resp.Body
	if t.param.maxBodyBytes > 0 {
		body = io.LimitReader(body, t.param.maxBodyBytes)
	}

	utf8Body, err := charset.NewReader(body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}
	return io.ReadAll(utf8Body)
}

// classifyTransportError maps an error returned before a usable response
// was obtained to a FetchError.
func classifyTransportError(ctx context.Context, err error) *FetchError {
	var dnsErr *net.DNSError
	var netErr net.Error

	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return &FetchError{
			Message:   fmt.Sprintf("request timed out: %v", err),
			Retryable: true,
			Cause:     ErrCauseTimeout,
		}
	case errors.Is(err, context.Canceled):
		return &FetchError{
			Message:   fmt.Sprintf("request canceled: %v", err),
			Retryable: false,
			Cause:     ErrCauseTimeout,
		}
	case errors.As(err, &dnsErr) && !dnsErr.IsTimeout:
		return &FetchError{
			Message:   fmt.Sprintf("dns resolution failed: %v", err),
			Retryable: dnsErr.IsTemporary,
			Cause:     ErrCauseDNSFailure,
		}
	case errors.As(err, &netErr) && netErr.Timeout():
		return &FetchError{
			Message:   fmt.Sprintf("request timed out: %v", err),
			Retryable: true,
			Cause:     ErrCauseTimeout,
		}
	default:
		return &FetchError{
			Message:   fmt.Sprintf("request failed: %v", err),
			Retryable: true,
			Cause:     ErrCauseNetworkFailure,
		}
	}
}

// unwrapFetchError returns the FetchError behind a retry outcome.
func unwrapFetchError(err failure.ClassifiedError) *FetchError {
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr
	}
	return NewInternalError(err.Error())
}

func (t *TitleFetcher) recordFetchError(callerMethod string, rawURL string, fetchErr *FetchError, attempts int) {
	attrs := []metadata.Attribute{
		metadata.NewAttr(metadata.AttrURL, rawURL),
	}
	if fetchErr.StatusCode != 0 {
		attrs = append(attrs, metadata.NewAttr(metadata.AttrHTTPStatus, fmt.Sprintf("%d", fetchErr.StatusCode)))
	}
	if attempts > 0 {
		attrs = append(attrs, metadata.NewAttr(metadata.AttrAttempts, fmt.Sprintf("%d", attempts)))
	}

	t.metadataSink.RecordError(
		time.Now(),
		"fetcher",
		callerMethod,
		mapFetchErrorToMetadataCause(fetchErr),
		fetchErr.Error(),
		attrs,
	)
}

func requestHeaders(userAgent string) map[string]string {
	return map[string]string{
		"User-Agent":      userAgent,
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.5",
		"DNT":             "1",
	}
}
