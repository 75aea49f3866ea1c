package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rohmanhakim/title-fetcher/internal/config"
	"github.com/spf13/cobra"
)

const unsetConcurrency = -1

var (
	cfgFile      string
	timeout      time.Duration
	cacheTTL     time.Duration
	concurrency  int
	batchTimeout time.Duration
	userAgent    string
	maxBodyBytes int64
	maxAttempts  int
	hostDelay    time.Duration
	jitter       time.Duration
	randomSeed   int64
	logLevel     string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "title-fetcher",
	Short: "Fetch page titles for a batch of URLs.",
	Long: `title-fetcher takes a newline separated list of URLs, fetches every
page concurrently and reports the title, HTTP status or error of each one.

Titles are cached in memory for a configurable time, so repeated URLs
inside a long running server are answered without touching the network.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// ExecuteWithIO runs the command line args against the given streams.
func ExecuteWithIO(args []string, stdin io.Reader, stdout io.Writer, stderr io.Writer) error {
	rootCmd.SetArgs(args)
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "config file path, JSON or YAML (e.g., /home/myuser/config.yaml)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "timeout for a single HTTP request")
	rootCmd.PersistentFlags().DurationVar(&cacheTTL, "cache-ttl", 0, "how long fetched titles stay cached")
	rootCmd.PersistentFlags().IntVar(&concurrency, "concurrency", unsetConcurrency, "maximum concurrent fetches per batch (0 for unlimited)")
	rootCmd.PersistentFlags().DurationVar(&batchTimeout, "batch-timeout", 0, "deadline for a whole batch")
	rootCmd.PersistentFlags().StringVar(&userAgent, "user-agent", "", "user agent string for HTTP requests")
	rootCmd.PersistentFlags().Int64Var(&maxBodyBytes, "max-body-bytes", 0, "maximum number of response bytes read per page")
	rootCmd.PersistentFlags().IntVar(&maxAttempts, "max-attempts", 0, "attempts per URL for transient failures (1 disables retry)")
	rootCmd.PersistentFlags().DurationVar(&hostDelay, "host-delay", 0, "minimum delay between requests to the same host")
	rootCmd.PersistentFlags().DurationVar(&jitter, "jitter", 0, "random jitter added to retry backoff")
	rootCmd.PersistentFlags().Int64Var(&randomSeed, "random-seed", 0, "seed for random number generation (0 for current time)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// InitConfigWithError reads in the config file if set, otherwise builds the
// config from defaults and CLI flags, returning any errors.
func InitConfigWithError() (config.Config, error) {
	if cfgFile != "" {
		cfg, err := config.WithConfigFile(cfgFile)
		if err != nil {
			return cfg, fmt.Errorf("error initializing config from file: %w", err)
		}
		return cfg, nil
	}

	// Start with default config and apply overrides using method chaining
	configBuilder := config.WithDefault()

	// Override with CLI flag values where provided
	if timeout > 0 {
		configBuilder = configBuilder.WithTimeout(timeout)
	}

	if cacheTTL > 0 {
		configBuilder = configBuilder.WithCacheTTL(cacheTTL)
	}

	if concurrency != unsetConcurrency {
		configBuilder = configBuilder.WithConcurrency(concurrency)
	}

	if batchTimeout > 0 {
		configBuilder = configBuilder.WithBatchTimeout(batchTimeout)
	}

	if userAgent != "" {
		configBuilder = configBuilder.WithUserAgent(userAgent)
	}

	if maxBodyBytes > 0 {
		configBuilder = configBuilder.WithMaxBodyBytes(maxBodyBytes)
	}

	if maxAttempts > 0 {
		configBuilder = configBuilder.WithMaxAttempts(maxAttempts)
	}

	if hostDelay > 0 {
		configBuilder = configBuilder.WithHostDelay(hostDelay)
	}

	if jitter > 0 {
		configBuilder = configBuilder.WithJitter(jitter)
	}

	if randomSeed != 0 {
		configBuilder = configBuilder.WithRandomSeed(randomSeed)
	}

	if logLevel != "" {
		configBuilder = configBuilder.WithLogLevel(logLevel)
	}

	if listenAddr != "" {
		configBuilder = configBuilder.WithListenAddr(listenAddr)
	}

	cfg, err := configBuilder.Build()
	if err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func ResetFlags() {
	cfgFile = ""
	timeout = 0
	cacheTTL = 0
	concurrency = unsetConcurrency
	batchTimeout = 0
	userAgent = ""
	maxBodyBytes = 0
	maxAttempts = 0
	hostDelay = 0
	jitter = 0
	randomSeed = 0
	logLevel = ""
	listenAddr = ""
	inputFile = ""
}

// Test helper functions to set flag values from tests
func SetConfigFileForTest(path string) {
	cfgFile = path
}

func SetTimeoutForTest(t time.Duration) {
	timeout = t
}

func SetCacheTTLForTest(ttl time.Duration) {
	cacheTTL = ttl
}

func SetConcurrencyForTest(conc int) {
	concurrency = conc
}

func SetBatchTimeoutForTest(t time.Duration) {
	batchTimeout = t
}

func SetUserAgentForTest(agent string) {
	userAgent = agent
}

func SetMaxAttemptsForTest(n int) {
	maxAttempts = n
}

func SetHostDelayForTest(delay time.Duration) {
	hostDelay = delay
}

func SetRandomSeedForTest(seed int64) {
	randomSeed = seed
}

func SetLogLevelForTest(level string) {
	logLevel = level
}

func SetListenAddrForTest(addr string) {
	listenAddr = addr
}
