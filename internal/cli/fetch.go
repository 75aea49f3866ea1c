package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var inputFile string

var errBatchFailed = errors.New("batch failed")

var fetchCmd = &cobra.Command{
	Use:   "fetch [url...]",
	Short: "Fetch titles for URLs given as arguments, in a file, or on stdin",
	Long: `fetch resolves every URL to its page title and prints the batch
result as JSON. URLs are taken from the arguments, from --input-file, or,
when neither is given, from stdin (one URL per line).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := InitConfigWithError()
		if err != nil {
			return err
		}

		logger, err := newLogger(cfg.LogLevel(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer logger.Sync()

		raw, err := readInput(args, inputFile, cmd.InOrStdin())
		if err != nil {
			return err
		}

		a, err := newApp(cfg, logger)
		if err != nil {
			return err
		}

		result := a.orchestrator.Process(cmd.Context(), raw)

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("failed to write result: %w", err)
		}

		if result.HasError() {
			return fmt.Errorf("%w: %s", errBatchFailed, result.Error)
		}
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVar(&inputFile, "input-file", "", "file with one URL per line")
}

// readInput returns the raw URL list from args, a file, or stdin, in that order.
func readInput(args []string, path string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, "\n"), nil
	}
	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read input file: %w", err)
		}
		return string(content), nil
	}
	content, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(content), nil
}

func SetInputFileForTest(path string) {
	inputFile = path
}
