package fetcher_test

import (
	"context"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/rohmanhakim/title-fetcher/internal/cache"
	"github.com/rohmanhakim/title-fetcher/internal/extractor"
	"github.com/rohmanhakim/title-fetcher/internal/fetcher"
	"github.com/rohmanhakim/title-fetcher/internal/metadata"
	"github.com/rohmanhakim/title-fetcher/pkg/retry"
	"github.com/rohmanhakim/title-fetcher/pkg/timeutil"
)

// mockMetadataSink is a test double for metadata.MetadataSink
type mockMetadataSink struct {
	mu          sync.Mutex
	fetchEvents []fetchEvent
	errorEvents []errorEvent
}

type fetchEvent struct {
	fetchUrl   string
	httpStatus int
	duration   time.Duration
	attempts   int
	cacheHit   bool
}

type errorEvent struct {
	packageName string
	action      string
	cause       metadata.ErrorCause
	details     string
	attrs       []metadata.Attribute
}

func (m *mockMetadataSink) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	attempts int,
	cacheHit bool,
) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchEvents = append(m.fetchEvents, fetchEvent{
		fetchUrl:   fetchUrl,
		httpStatus: httpStatus,
		duration:   duration,
		attempts:   attempts,
		cacheHit:   cacheHit,
	})
}

func (m *mockMetadataSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorEvents = append(m.errorEvents, errorEvent{
		packageName: packageName,
		action:      action,
		cause:       cause,
		details:     details,
		attrs:       attrs,
	})
}

func (m *mockMetadataSink) errors() []errorEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]errorEvent(nil), m.errorEvents...)
}

func (m *mockMetadataSink) fetches() []fetchEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]fetchEvent(nil), m.fetchEvents...)
}

// fakeClock is a manually advanced clock for TTL tests
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// createTestRetryParam creates retry parameters with negligible backoff
func createTestRetryParam(maxAttempts int) retry.RetryParam {
	return retry.NewRetryParam(
		0,
		42,
		maxAttempts,
		timeutil.NewBackoffParam(
			time.Millisecond,
			2.0,
			5*time.Millisecond,
		),
	)
}

func createTestFetchParam(timeout time.Duration, maxAttempts int) fetcher.FetchParam {
	return fetcher.NewFetchParam(
		"title-fetcher-test/1.0",
		timeout,
		10<<20,
		time.Hour,
		createTestRetryParam(maxAttempts),
	)
}

type testFetcher struct {
	fetcher *fetcher.TitleFetcher
	sink    *mockMetadataSink
	cache   *cache.MemoryCache[fetcher.UrlResult]
}

func setupFetcher(t *testing.T, client *http.Client, param fetcher.FetchParam) testFetcher {
	t.Helper()
	return setupFetcherWithCache(t, client, param, cache.NewMemoryCache[fetcher.UrlResult]())
}

func setupFetcherWithCache(
	t *testing.T,
	client *http.Client,
	param fetcher.FetchParam,
	c *cache.MemoryCache[fetcher.UrlResult],
) testFetcher {
	t.Helper()
	sink := &mockMetadataSink{}
	f := fetcher.NewTitleFetcher(
		sink,
		client,
		c,
		nil,
		extractor.NewTitleExtractor(&metadata.NoopSink{}),
		param,
	)
	return testFetcher{fetcher: f, sink: sink, cache: c}
}

// dnsFailingClient returns a client whose dialer always fails name resolution.
func dnsFailingClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				host, _, _ := net.SplitHostPort(addr)
				return nil, &net.OpError{
					Op:  "dial",
					Net: network,
					Err: &net.DNSError{
						Err:        "no such host",
						Name:       host,
						IsNotFound: true,
					},
				}
			},
		},
	}
}

func htmlPage(title string) string {
	return "<!DOCTYPE html><html><head><title>" + title + "</title></head><body><p>content</p></body></html>"
}
