package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const (
	DefaultTimeout      = 15 * time.Second
	DefaultCacheTTL     = 12 * time.Hour
	DefaultConcurrency  = 16
	DefaultBatchTimeout = 60 * time.Second
	DefaultUserAgent    = "Mozilla/5.0 (compatible; title-fetcher/1.0)"
	DefaultMaxBodyBytes = 10 << 20
	DefaultListenAddr   = ":8080"
	DefaultLogLevel     = "info"
)

type Config struct {
	//===============
	// Fetch
	//===============
	// Maximum time of a single fetch request
	timeout time.Duration
	// User agent that will be used in the request header. In raw string
	userAgent string
	// Maximum number of body bytes read from a response
	maxBodyBytes int64

	//===============
	// Cache
	//===============
	// How long a fetched title stays fresh
	cacheTTL time.Duration

	//===============
	// Batch
	//===============
	// Maximum number of fetches running at once within a batch. Zero means unbounded.
	concurrency int
	// Deadline for a whole batch. Zero disables it.
	batchTimeout time.Duration

	//===============
	// Politeness
	//===============
	// Minimum waiting time between two requests to the same host. Zero disables it.
	hostDelay time.Duration
	// Randomized variation added on top of backoff delays.
	jitter time.Duration
	// Controls the random number generator
	randomSeed int64
	// Maximum attempts per URL. One means no retry.
	maxAttempts int
	// initial delay for backoff
	backoffInitialDuration time.Duration
	// multiplier during exponential backoff
	backoffMultiplier float64
	// capped maximum delay for backoff to stop exponential multiplication
	backoffMaxDuration time.Duration

	//===============
	// Serve
	//===============
	// Address the HTTP API listens on
	listenAddr string
	// Minimum log level: debug, info, warn, error
	logLevel string
}

// configDTO mirrors a config file. Durations are Go duration strings
// such as "15s" or "12h".
type configDTO struct {
	Timeout                string  `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	UserAgent              string  `json:"userAgent,omitempty" yaml:"userAgent,omitempty"`
	MaxBodyBytes           int64   `json:"maxBodyBytes,omitempty" yaml:"maxBodyBytes,omitempty"`
	CacheTTL               string  `json:"cacheTTL,omitempty" yaml:"cacheTTL,omitempty"`
	Concurrency            *int    `json:"concurrency,omitempty" yaml:"concurrency,omitempty"`
	BatchTimeout           string  `json:"batchTimeout,omitempty" yaml:"batchTimeout,omitempty"`
	HostDelay              string  `json:"hostDelay,omitempty" yaml:"hostDelay,omitempty"`
	Jitter                 string  `json:"jitter,omitempty" yaml:"jitter,omitempty"`
	RandomSeed             int64   `json:"randomSeed,omitempty" yaml:"randomSeed,omitempty"`
	MaxAttempts            int     `json:"maxAttempts,omitempty" yaml:"maxAttempts,omitempty"`
	BackoffInitialDuration string  `json:"backoffInitialDuration,omitempty" yaml:"backoffInitialDuration,omitempty"`
	BackoffMultiplier      float64 `json:"backoffMultiplier,omitempty" yaml:"backoffMultiplier,omitempty"`
	BackoffMaxDuration     string  `json:"backoffMaxDuration,omitempty" yaml:"backoffMaxDuration,omitempty"`
	ListenAddr             string  `json:"listenAddr,omitempty" yaml:"listenAddr,omitempty"`
	LogLevel               string  `json:"logLevel,omitempty" yaml:"logLevel,omitempty"`
}

func newConfigFromDTO(dto configDTO) (Config, error) {
	// Start with default config
	cfg := WithDefault()

	// Only override if a non-zero value is provided
	durations := []struct {
		name  string
		raw   string
		apply func(time.Duration) *Config
	}{
		{"timeout", dto.Timeout, cfg.WithTimeout},
		{"cacheTTL", dto.CacheTTL, cfg.WithCacheTTL},
		{"batchTimeout", dto.BatchTimeout, cfg.WithBatchTimeout},
		{"hostDelay", dto.HostDelay, cfg.WithHostDelay},
		{"jitter", dto.Jitter, cfg.WithJitter},
		{"backoffInitialDuration", dto.BackoffInitialDuration, cfg.WithBackoffInitialDuration},
		{"backoffMaxDuration", dto.BackoffMaxDuration, cfg.WithBackoffMaxDuration},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s: %s", ErrConfigParsingFail, d.name, err.Error())
		}
		d.apply(parsed)
	}

	if dto.UserAgent != "" {
		cfg.WithUserAgent(dto.UserAgent)
	}
	if dto.MaxBodyBytes != 0 {
		cfg.WithMaxBodyBytes(dto.MaxBodyBytes)
	}
	// Concurrency may be explicitly set to 0 (unbounded)
	if dto.Concurrency != nil {
		cfg.WithConcurrency(*dto.Concurrency)
	}
	if dto.RandomSeed != 0 {
		cfg.WithRandomSeed(dto.RandomSeed)
	}
	if dto.MaxAttempts != 0 {
		cfg.WithMaxAttempts(dto.MaxAttempts)
	}
	if dto.BackoffMultiplier != 0 {
		cfg.WithBackoffMultiplier(dto.BackoffMultiplier)
	}
	if dto.ListenAddr != "" {
		cfg.WithListenAddr(dto.ListenAddr)
	}
	if dto.LogLevel != "" {
		cfg.WithLogLevel(dto.LogLevel)
	}

	return cfg.Build()
}

// WithConfigFile loads a JSON (.json) or YAML (.yaml, .yml) config file.
// Keys absent from the file keep their default values.
func WithConfigFile(path string) (Config, error) {
	_, err := os.Stat(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
	}
	configContent, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
	}
	cfgDTO := configDTO{}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(configContent, &cfgDTO)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(configContent, &cfgDTO)
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
	}

	return newConfigFromDTO(cfgDTO)
}

// WithDefault creates a new Config with default values for all fields.
func WithDefault() *Config {
	defaultConfig := Config{
		timeout:                DefaultTimeout,
		userAgent:              DefaultUserAgent,
		maxBodyBytes:           DefaultMaxBodyBytes,
		cacheTTL:               DefaultCacheTTL,
		concurrency:            DefaultConcurrency,
		batchTimeout:           DefaultBatchTimeout,
		hostDelay:              0,
		jitter:                 100 * time.Millisecond,
		randomSeed:             time.Now().UnixNano(),
		maxAttempts:            1,
		backoffInitialDuration: 200 * time.Millisecond,
		backoffMultiplier:      2.0,
		backoffMaxDuration:     5 * time.Second,
		listenAddr:             DefaultListenAddr,
		logLevel:               DefaultLogLevel,
	}
	return &defaultConfig
}

func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.timeout = timeout
	return c
}

func (c *Config) WithUserAgent(agent string) *Config {
	c.userAgent = agent
	return c
}

func (c *Config) WithMaxBodyBytes(n int64) *Config {
	c.maxBodyBytes = n
	return c
}

func (c *Config) WithCacheTTL(ttl time.Duration) *Config {
	c.cacheTTL = ttl
	return c
}

func (c *Config) WithConcurrency(concurrency int) *Config {
	c.concurrency = concurrency
	return c
}

func (c *Config) WithBatchTimeout(timeout time.Duration) *Config {
	c.batchTimeout = timeout
	return c
}

func (c *Config) WithHostDelay(delay time.Duration) *Config {
	c.hostDelay = delay
	return c
}

func (c *Config) WithJitter(jitter time.Duration) *Config {
	c.jitter = jitter
	return c
}

func (c *Config) WithRandomSeed(seed int64) *Config {
	c.randomSeed = seed
	return c
}

func (c *Config) WithMaxAttempts(attempts int) *Config {
	c.maxAttempts = attempts
	return c
}

func (c *Config) WithBackoffInitialDuration(duration time.Duration) *Config {
	c.backoffInitialDuration = duration
	return c
}

func (c *Config) WithBackoffMultiplier(multiplier float64) *Config {
	c.backoffMultiplier = multiplier
	return c
}

func (c *Config) WithBackoffMaxDuration(duration time.Duration) *Config {
	c.backoffMaxDuration = duration
	return c
}

func (c *Config) WithListenAddr(addr string) *Config {
	c.listenAddr = addr
	return c
}

func (c *Config) WithLogLevel(level string) *Config {
	c.logLevel = level
	return c
}

func (c *Config) Build() (Config, error) {
	switch {
	case c.timeout <= 0:
		return Config{}, fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	case c.cacheTTL <= 0:
		return Config{}, fmt.Errorf("%w: cacheTTL must be positive", ErrInvalidConfig)
	case c.maxBodyBytes <= 0:
		return Config{}, fmt.Errorf("%w: maxBodyBytes must be positive", ErrInvalidConfig)
	case c.concurrency < 0:
		return Config{}, fmt.Errorf("%w: concurrency cannot be negative", ErrInvalidConfig)
	case c.batchTimeout < 0:
		return Config{}, fmt.Errorf("%w: batchTimeout cannot be negative", ErrInvalidConfig)
	case c.hostDelay < 0:
		return Config{}, fmt.Errorf("%w: hostDelay cannot be negative", ErrInvalidConfig)
	case c.jitter < 0:
		return Config{}, fmt.Errorf("%w: jitter cannot be negative", ErrInvalidConfig)
	case c.maxAttempts < 1:
		return Config{}, fmt.Errorf("%w: maxAttempts must be at least 1", ErrInvalidConfig)
	case c.backoffMultiplier < 1:
		return Config{}, fmt.Errorf("%w: backoffMultiplier must be at least 1", ErrInvalidConfig)
	case c.backoffInitialDuration < 0 || c.backoffMaxDuration < c.backoffInitialDuration:
		return Config{}, fmt.Errorf("%w: backoff durations must satisfy 0 <= initial <= max", ErrInvalidConfig)
	case strings.TrimSpace(c.userAgent) == "":
		return Config{}, fmt.Errorf("%w: userAgent cannot be empty", ErrInvalidConfig)
	}

	if _, err := zapcore.ParseLevel(c.logLevel); err != nil {
		return Config{}, fmt.Errorf("%w: logLevel: %s", ErrInvalidConfig, err.Error())
	}

	return *c, nil
}

func (c Config) Timeout() time.Duration {
	return c.timeout
}

func (c Config) UserAgent() string {
	return c.userAgent
}

func (c Config) MaxBodyBytes() int64 {
	return c.maxBodyBytes
}

func (c Config) CacheTTL() time.Duration {
	return c.cacheTTL
}

func (c Config) Concurrency() int {
	return c.concurrency
}

func (c Config) BatchTimeout() time.Duration {
	return c.batchTimeout
}

func (c Config) HostDelay() time.Duration {
	return c.hostDelay
}

func (c Config) Jitter() time.Duration {
	return c.jitter
}

func (c Config) RandomSeed() int64 {
	return c.randomSeed
}

func (c Config) MaxAttempts() int {
	return c.maxAttempts
}

func (c Config) BackoffInitialDuration() time.Duration {
	return c.backoffInitialDuration
}

func (c Config) BackoffMultiplier() float64 {
	return c.backoffMultiplier
}

func (c Config) BackoffMaxDuration() time.Duration {
	return c.backoffMaxDuration
}

func (c Config) ListenAddr() string {
	return c.listenAddr
}

func (c Config) LogLevel() string {
	return c.logLevel
}
