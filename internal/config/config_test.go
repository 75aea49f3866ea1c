package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rohmanhakim/title-fetcher/internal/config"
)

func writeConfigFile(t *testing.T, name string, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestWithDefault(t *testing.T) {
	cfg, err := config.WithDefault().Build()
	if err != nil {
		t.Fatalf("should not have any error, got %v", err)
	}

	if cfg.Timeout() != 15*time.Second {
		t.Errorf("expected Timeout 15s, got %v", cfg.Timeout())
	}
	if cfg.CacheTTL() != 12*time.Hour {
		t.Errorf("expected CacheTTL 12h, got %v", cfg.CacheTTL())
	}
	if cfg.Concurrency() != config.DefaultConcurrency {
		t.Errorf("expected Concurrency %d, got %d", config.DefaultConcurrency, cfg.Concurrency())
	}
	if cfg.BatchTimeout() != 60*time.Second {
		t.Errorf("expected BatchTimeout 60s, got %v", cfg.BatchTimeout())
	}
	if cfg.MaxBodyBytes() != 10<<20 {
		t.Errorf("expected MaxBodyBytes 10MiB, got %d", cfg.MaxBodyBytes())
	}
	if cfg.MaxAttempts() != 1 {
		t.Errorf("expected MaxAttempts 1, got %d", cfg.MaxAttempts())
	}
	if cfg.HostDelay() != 0 {
		t.Errorf("expected HostDelay 0, got %v", cfg.HostDelay())
	}
	if cfg.UserAgent() != config.DefaultUserAgent {
		t.Errorf("expected UserAgent %q, got %q", config.DefaultUserAgent, cfg.UserAgent())
	}
	if cfg.ListenAddr() != ":8080" {
		t.Errorf("expected ListenAddr ':8080', got %q", cfg.ListenAddr())
	}
	if cfg.LogLevel() != "info" {
		t.Errorf("expected LogLevel 'info', got %q", cfg.LogLevel())
	}
	if cfg.BackoffMultiplier() != 2.0 {
		t.Errorf("expected BackoffMultiplier 2.0, got %v", cfg.BackoffMultiplier())
	}
}

func TestBuilderOverrides(t *testing.T) {
	cfg, err := config.WithDefault().
		WithTimeout(3 * time.Second).
		WithCacheTTL(time.Minute).
		WithConcurrency(0).
		WithBatchTimeout(0).
		WithHostDelay(250 * time.Millisecond).
		WithJitter(time.Millisecond).
		WithRandomSeed(7).
		WithMaxAttempts(4).
		WithBackoffInitialDuration(10 * time.Millisecond).
		WithBackoffMultiplier(3).
		WithBackoffMaxDuration(time.Second).
		WithMaxBodyBytes(2048).
		WithUserAgent("custom/1.0").
		WithListenAddr("127.0.0.1:9000").
		WithLogLevel("debug").
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Timeout() != 3*time.Second {
		t.Errorf("expected Timeout 3s, got %v", cfg.Timeout())
	}
	if cfg.CacheTTL() != time.Minute {
		t.Errorf("expected CacheTTL 1m, got %v", cfg.CacheTTL())
	}
	if cfg.Concurrency() != 0 {
		t.Errorf("expected Concurrency 0, got %d", cfg.Concurrency())
	}
	if cfg.BatchTimeout() != 0 {
		t.Errorf("expected BatchTimeout 0, got %v", cfg.BatchTimeout())
	}
	if cfg.HostDelay() != 250*time.Millisecond {
		t.Errorf("expected HostDelay 250ms, got %v", cfg.HostDelay())
	}
	if cfg.RandomSeed() != 7 {
		t.Errorf("expected RandomSeed 7, got %d", cfg.RandomSeed())
	}
	if cfg.MaxAttempts() != 4 {
		t.Errorf("expected MaxAttempts 4, got %d", cfg.MaxAttempts())
	}
	if cfg.BackoffInitialDuration() != 10*time.Millisecond {
		t.Errorf("expected BackoffInitialDuration 10ms, got %v", cfg.BackoffInitialDuration())
	}
	if cfg.BackoffMaxDuration() != time.Second {
		t.Errorf("expected BackoffMaxDuration 1s, got %v", cfg.BackoffMaxDuration())
	}
	if cfg.MaxBodyBytes() != 2048 {
		t.Errorf("expected MaxBodyBytes 2048, got %d", cfg.MaxBodyBytes())
	}
	if cfg.UserAgent() != "custom/1.0" {
		t.Errorf("expected UserAgent 'custom/1.0', got %q", cfg.UserAgent())
	}
	if cfg.ListenAddr() != "127.0.0.1:9000" {
		t.Errorf("expected ListenAddr '127.0.0.1:9000', got %q", cfg.ListenAddr())
	}
	if cfg.LogLevel() != "debug" {
		t.Errorf("expected LogLevel 'debug', got %q", cfg.LogLevel())
	}
}

func TestBuild_Invalid(t *testing.T) {
	tests := []struct {
		name string
		cfg  *config.Config
	}{
		{"zero timeout", config.WithDefault().WithTimeout(0)},
		{"zero cache ttl", config.WithDefault().WithCacheTTL(0)},
		{"negative concurrency", config.WithDefault().WithConcurrency(-1)},
		{"negative batch timeout", config.WithDefault().WithBatchTimeout(-time.Second)},
		{"negative host delay", config.WithDefault().WithHostDelay(-time.Second)},
		{"zero max attempts", config.WithDefault().WithMaxAttempts(0)},
		{"multiplier below one", config.WithDefault().WithBackoffMultiplier(0.5)},
		{"backoff max below initial", config.WithDefault().WithBackoffInitialDuration(time.Second).WithBackoffMaxDuration(time.Millisecond)},
		{"zero body limit", config.WithDefault().WithMaxBodyBytes(0)},
		{"empty user agent", config.WithDefault().WithUserAgent("  ")},
		{"unknown log level", config.WithDefault().WithLogLevel("chatty")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.cfg.Build()
			if !errors.Is(err, config.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestWithConfigFile_FileDoesNotExist(t *testing.T) {
	_, err := config.WithConfigFile(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, config.ErrFileDoesNotExist) {
		t.Errorf("expected ErrFileDoesNotExist, got %v", err)
	}
}

func TestWithConfigFile_UnsupportedFormat(t *testing.T) {
	path := writeConfigFile(t, "config.toml", `timeout = "5s"`)

	_, err := config.WithConfigFile(path)
	if !errors.Is(err, config.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestWithConfigFile_InvalidJSON(t *testing.T) {
	path := writeConfigFile(t, "config.json", `{"timeout": `)

	_, err := config.WithConfigFile(path)
	if !errors.Is(err, config.ErrConfigParsingFail) {
		t.Errorf("expected ErrConfigParsingFail, got %v", err)
	}
}

func TestWithConfigFile_InvalidDuration(t *testing.T) {
	path := writeConfigFile(t, "config.json", `{"cacheTTL": "twelve hours"}`)

	_, err := config.WithConfigFile(path)
	if !errors.Is(err, config.ErrConfigParsingFail) {
		t.Errorf("expected ErrConfigParsingFail, got %v", err)
	}
}

func TestWithConfigFile_InvalidValue(t *testing.T) {
	path := writeConfigFile(t, "config.json", `{"maxAttempts": -2}`)

	_, err := config.WithConfigFile(path)
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestWithConfigFile_ValidJSON(t *testing.T) {
	path := writeConfigFile(t, "config.json", `{
		"timeout": "5s",
		"cacheTTL": "30m",
		"concurrency": 4,
		"batchTimeout": "20s",
		"userAgent": "json-agent/1.0",
		"maxBodyBytes": 4096,
		"maxAttempts": 3,
		"hostDelay": "100ms",
		"randomSeed": 99,
		"listenAddr": ":9090",
		"logLevel": "warn"
	}`)

	cfg, err := config.WithConfigFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Timeout() != 5*time.Second {
		t.Errorf("expected Timeout 5s, got %v", cfg.Timeout())
	}
	if cfg.CacheTTL() != 30*time.Minute {
		t.Errorf("expected CacheTTL 30m, got %v", cfg.CacheTTL())
	}
	if cfg.Concurrency() != 4 {
		t.Errorf("expected Concurrency 4, got %d", cfg.Concurrency())
	}
	if cfg.BatchTimeout() != 20*time.Second {
		t.Errorf("expected BatchTimeout 20s, got %v", cfg.BatchTimeout())
	}
	if cfg.UserAgent() != "json-agent/1.0" {
		t.Errorf("expected UserAgent 'json-agent/1.0', got %q", cfg.UserAgent())
	}
	if cfg.MaxBodyBytes() != 4096 {
		t.Errorf("expected MaxBodyBytes 4096, got %d", cfg.MaxBodyBytes())
	}
	if cfg.MaxAttempts() != 3 {
		t.Errorf("expected MaxAttempts 3, got %d", cfg.MaxAttempts())
	}
	if cfg.HostDelay() != 100*time.Millisecond {
		t.Errorf("expected HostDelay 100ms, got %v", cfg.HostDelay())
	}
	if cfg.RandomSeed() != 99 {
		t.Errorf("expected RandomSeed 99, got %d", cfg.RandomSeed())
	}
	if cfg.ListenAddr() != ":9090" {
		t.Errorf("expected ListenAddr ':9090', got %q", cfg.ListenAddr())
	}
	if cfg.LogLevel() != "warn" {
		t.Errorf("expected LogLevel 'warn', got %q", cfg.LogLevel())
	}
}

func TestWithConfigFile_ValidYAML(t *testing.T) {
	path := writeConfigFile(t, "config.yaml", `
timeout: 7s
cacheTTL: 1h
concurrency: 0
backoffInitialDuration: 50ms
backoffMultiplier: 1.5
backoffMaxDuration: 2s
jitter: 10ms
`)

	cfg, err := config.WithConfigFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Timeout() != 7*time.Second {
		t.Errorf("expected Timeout 7s, got %v", cfg.Timeout())
	}
	if cfg.CacheTTL() != time.Hour {
		t.Errorf("expected CacheTTL 1h, got %v", cfg.CacheTTL())
	}
	if cfg.Concurrency() != 0 {
		t.Errorf("expected explicit Concurrency 0, got %d", cfg.Concurrency())
	}
	if cfg.BackoffInitialDuration() != 50*time.Millisecond {
		t.Errorf("expected BackoffInitialDuration 50ms, got %v", cfg.BackoffInitialDuration())
	}
	if cfg.BackoffMultiplier() != 1.5 {
		t.Errorf("expected BackoffMultiplier 1.5, got %v", cfg.BackoffMultiplier())
	}
	if cfg.BackoffMaxDuration() != 2*time.Second {
		t.Errorf("expected BackoffMaxDuration 2s, got %v", cfg.BackoffMaxDuration())
	}
	if cfg.Jitter() != 10*time.Millisecond {
		t.Errorf("expected Jitter 10ms, got %v", cfg.Jitter())
	}
	// untouched keys keep defaults
	if cfg.MaxAttempts() != 1 {
		t.Errorf("expected default MaxAttempts 1, got %d", cfg.MaxAttempts())
	}
}

func TestWithConfigFile_EmptyJSON(t *testing.T) {
	path := writeConfigFile(t, "config.json", `{}`)

	cfg, err := config.WithConfigFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Timeout() != config.DefaultTimeout {
		t.Errorf("expected default Timeout, got %v", cfg.Timeout())
	}
	if cfg.Concurrency() != config.DefaultConcurrency {
		t.Errorf("expected default Concurrency, got %d", cfg.Concurrency())
	}
}
