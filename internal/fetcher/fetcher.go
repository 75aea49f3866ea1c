package fetcher

import (
	"context"
)

// Fetcher resolves a URL to a UrlResult. Implementations never return an
// error or panic: every failure is carried in the result.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) UrlResult
}
