package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/rohmanhakim/title-fetcher/internal/fetcher"
	"github.com/rohmanhakim/title-fetcher/internal/input"
	"github.com/rohmanhakim/title-fetcher/internal/metadata"
	"golang.org/x/sync/errgroup"
)

/*
 Orchestrator runs one fetch per URL concurrently and collects the results.

 Guarantees:
 - Every input URL yields exactly one result, including duplicates and
   URLs whose fetch panicked or outlived the batch deadline.
 - Results are appended in the order fetches complete, not input order.
 - A failing URL never affects the others.
 - Only an input without any URL fails the batch as a whole.

 Metadata emission is observational only and MUST NOT influence
 result assembly.
*/
type Orchestrator struct {
	fetcher        fetcher.Fetcher
	metadataSink   metadata.MetadataSink
	batchFinalizer metadata.BatchFinalizer
	param          BatchParam
}

func NewOrchestrator(
	titleFetcher fetcher.Fetcher,
	metadataSink metadata.MetadataSink,
	batchFinalizer metadata.BatchFinalizer,
	param BatchParam,
) *Orchestrator {
	return &Orchestrator{
		fetcher:        titleFetcher,
		metadataSink:   metadataSink,
		batchFinalizer: batchFinalizer,
		param:          param,
	}
}

// Process parses raw into URLs and runs them as one batch.
func (o *Orchestrator) Process(ctx context.Context, raw string) BatchResult {
	urls, err := input.Parse(raw)
	if err != nil {
		o.metadataSink.RecordError(
			time.Now(),
			"batch",
			"Orchestrator.Process",
			metadata.CauseInvalidInput,
			err.Error(),
			nil,
		)
		return BatchResult{Results: []fetcher.UrlResult{}, Error: err.Error()}
	}
	return o.Run(ctx, urls)
}

// Run fetches every URL and returns once all of them have resolved.
func (o *Orchestrator) Run(ctx context.Context, urls []string) BatchResult {
	startTime := time.Now()

	if o.param.batchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.param.batchTimeout)
		defer cancel()
	}

	completed := make(chan fetcher.UrlResult, len(urls))

	var g errgroup.Group
	if o.param.concurrency > 0 {
		g.SetLimit(o.param.concurrency)
	}
	for _, rawURL := range urls {
		rawURL := rawURL
		g.Go(func() error {
			completed <- o.fetchOne(ctx, rawURL)
			return nil
		})
	}
	// Tasks never return errors; failures are carried in each UrlResult.
	_ = g.Wait()
	close(completed)

	results := make([]fetcher.UrlResult, 0, len(urls))
	for result := range completed {
		results = append(results, result)
	}

	o.recordStats(results, time.Since(startTime))

	return BatchResult{Results: results}
}

func (o *Orchestrator) fetchOne(ctx context.Context, rawURL string) (result fetcher.UrlResult) {
	defer func() {
		if r := recover(); r != nil {
			fetchErr := fetcher.NewInternalError(fmt.Sprintf("panic: %v", r))
			o.metadataSink.RecordError(
				time.Now(),
				"batch",
				"Orchestrator.fetchOne",
				metadata.CauseUnknown,
				fetchErr.Error(),
				[]metadata.Attribute{
					metadata.NewAttr(metadata.AttrURL, rawURL),
				},
			)
			result = fetcher.NewErrorResult(rawURL, fetchErr)
		}
	}()
	return o.fetcher.Fetch(ctx, rawURL)
}

func (o *Orchestrator) recordStats(results []fetcher.UrlResult, duration time.Duration) {
	var totalErrors, totalTitles int
	for _, r := range results {
		if !r.IsSuccess() {
			totalErrors++
		}
		if r.Title() != "" {
			totalTitles++
		}
	}
	o.batchFinalizer.RecordFinalBatchStats(len(results), totalErrors, totalTitles, duration)
}
