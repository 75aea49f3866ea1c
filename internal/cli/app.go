package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rohmanhakim/title-fetcher/internal/batch"
	"github.com/rohmanhakim/title-fetcher/internal/cache"
	"github.com/rohmanhakim/title-fetcher/internal/config"
	"github.com/rohmanhakim/title-fetcher/internal/extractor"
	"github.com/rohmanhakim/title-fetcher/internal/fetcher"
	"github.com/rohmanhakim/title-fetcher/internal/metadata"
	"github.com/rohmanhakim/title-fetcher/pkg/limiter"
	"github.com/rohmanhakim/title-fetcher/pkg/retry"
	"github.com/rohmanhakim/title-fetcher/pkg/timeutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// app holds the components shared by the fetch and serve commands.
type app struct {
	logger       *zap.Logger
	registry     *prometheus.Registry
	cache        *cache.MemoryCache[fetcher.UrlResult]
	orchestrator *batch.Orchestrator
}

func newApp(cfg config.Config, logger *zap.Logger) (*app, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := metadata.NewMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}
	recorder := metadata.NewRecorder(logger, metrics)

	resultCache := cache.NewMemoryCache[fetcher.UrlResult]()
	hostLimiter := limiter.NewConcurrentHostLimiter(cfg.HostDelay())
	titleExtractor := extractor.NewTitleExtractor(recorder)

	retryParam := retry.NewRetryParam(
		cfg.Jitter(),
		cfg.RandomSeed(),
		cfg.MaxAttempts(),
		timeutil.NewBackoffParam(
			cfg.BackoffInitialDuration(),
			cfg.BackoffMultiplier(),
			cfg.BackoffMaxDuration(),
		),
	)
	fetchParam := fetcher.NewFetchParam(
		cfg.UserAgent(),
		cfg.Timeout(),
		cfg.MaxBodyBytes(),
		cfg.CacheTTL(),
		retryParam,
	)
	titleFetcher := fetcher.NewTitleFetcher(
		recorder,
		&http.Client{},
		resultCache,
		hostLimiter,
		titleExtractor,
		fetchParam,
	)

	orchestrator := batch.NewOrchestrator(
		titleFetcher,
		recorder,
		recorder,
		batch.NewBatchParam(cfg.Concurrency(), cfg.BatchTimeout()),
	)

	return &app{
		logger:       logger,
		registry:     registry,
		cache:        resultCache,
		orchestrator: orchestrator,
	}, nil
}

// newLogger builds a JSON production logger writing to w.
func newLogger(level string, w io.Writer) (*zap.Logger, error) {
	atomicLevel, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.AddSync(w),
		atomicLevel,
	)
	return zap.New(core), nil
}

// runCacheJanitor drops expired cache entries every interval until ctx is done.
func runCacheJanitor(ctx context.Context, c *cache.MemoryCache[fetcher.UrlResult], interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := c.DeleteExpired(); n > 0 {
				logger.Debug("Expired cache entries removed", zap.Int("count", n), zap.Int("remaining", c.Size()))
			}
		}
	}
}
