// Package main provides the sim_agent CLI: parse model output into records,
// manage locale profiles and profile cards, and serve the HTTP API.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "sim_agent",
		Short: "Structured-text extraction and repair for story model output",
		Long: `sim_agent extracts the structured block from a model response, repairs it when it
was truncated, assembles a record with mainText, options and coreState, and checks
the content against a locale profile.

Configuration can be loaded from a JSON file using --config. Command-line flags override
config file values, which override environment variables.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config.json file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error (default: LOG_LEVEL or info)")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "Log format: text or json")

	cmd.AddCommand(
		newParseCmd(opts),
		newBatchCmd(opts),
		newProfileCmd(opts),
		newCardCmd(opts),
		newGenerateCmd(opts),
		newServeCmd(opts),
		newTokenCmd(opts),
	)
	return cmd
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
