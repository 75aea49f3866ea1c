package batch_test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rohmanhakim/title-fetcher/internal/fetcher"
	"github.com/rohmanhakim/title-fetcher/internal/metadata"
	"github.com/stretchr/testify/mock"
)

// fetcherMock is a testify mock for the Fetcher
type fetcherMock struct {
	mock.Mock
}

func (f *fetcherMock) Fetch(ctx context.Context, rawURL string) fetcher.UrlResult {
	args := f.Called(ctx, rawURL)
	if fn, ok := args.Get(0).(func(context.Context, string) fetcher.UrlResult); ok {
		return fn(ctx, rawURL)
	}
	return args.Get(0).(fetcher.UrlResult)
}

// finalizerSpy captures the batch summary
type finalizerSpy struct {
	metadata.NoopSink
	mu    sync.Mutex
	calls []capturedStats
}

type capturedStats struct {
	totalURLs   int
	totalErrors int
	totalTitles int
	duration    time.Duration
}

func (f *finalizerSpy) RecordFinalBatchStats(
	totalURLs int,
	totalErrors int,
	totalTitles int,
	duration time.Duration,
) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, capturedStats{
		totalURLs:   totalURLs,
		totalErrors: totalErrors,
		totalTitles: totalTitles,
		duration:    duration,
	})
}

// sinkSpy captures recorded errors
type sinkSpy struct {
	metadata.NoopSink
	mu     sync.Mutex
	causes []metadata.ErrorCause
}

func (s *sinkSpy) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.causes = append(s.causes, cause)
}

// gaugeFetcher tracks how many fetches run at once
type gaugeFetcher struct {
	inFlight atomic.Int32
	peak     atomic.Int32
	delay    time.Duration
}

func (g *gaugeFetcher) Fetch(ctx context.Context, rawURL string) fetcher.UrlResult {
	n := g.inFlight.Add(1)
	defer g.inFlight.Add(-1)
	for {
		peak := g.peak.Load()
		if n <= peak || g.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	time.Sleep(g.delay)
	return fetcher.NewSuccessResult(rawURL, "T", 200)
}

// panicFetcher panics for one URL and succeeds for the rest
type panicFetcher struct {
	panicOn string
}

func (p panicFetcher) Fetch(ctx context.Context, rawURL string) fetcher.UrlResult {
	if rawURL == p.panicOn {
		panic("boom")
	}
	return fetcher.NewSuccessResult(rawURL, "OK", 200)
}

// blockingFetcher waits for ctx and reports a timeout
type blockingFetcher struct{}

func (blockingFetcher) Fetch(ctx context.Context, rawURL string) fetcher.UrlResult {
	<-ctx.Done()
	return fetcher.NewErrorResult(rawURL, &fetcher.FetchError{
		Message: ctx.Err().Error(),
		Cause:   fetcher.ErrCauseTimeout,
	})
}
