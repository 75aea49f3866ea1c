package batch

import (
	"time"

	"github.com/rohmanhakim/title-fetcher/internal/fetcher"
)

// BatchResult is the outcome of one batch. Error is set only when the
// input held no URLs, in which case Results is empty.
type BatchResult struct {
	Results []fetcher.UrlResult `json:"results"`
	Error   string              `json:"error,omitempty"`
}

// HasError reports whether the batch failed as a whole.
func (b BatchResult) HasError() bool {
	return b.Error != ""
}

// BatchParam bounds how a batch runs.
type BatchParam struct {
	concurrency  int
	batchTimeout time.Duration
}

// NewBatchParam creates a BatchParam. A concurrency of zero or less runs
// every URL at once; a batchTimeout of zero or less disables the deadline.
func NewBatchParam(concurrency int, batchTimeout time.Duration) BatchParam {
	return BatchParam{
		concurrency:  concurrency,
		batchTimeout: batchTimeout,
	}
}

func (p BatchParam) Concurrency() int {
	return p.concurrency
}

func (p BatchParam) BatchTimeout() time.Duration {
	return p.batchTimeout
}
