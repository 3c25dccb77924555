// Package main provides the entry point for the career network gateway and
// its local tooling.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/career-network/internal/observability"
)

var (
	verbose    bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "career_network",
	Short: "Career network gateway",
	Long: "Career network serves the HTTP API behind the networking web app: connection matching, " +
		"cold emails, resume annotation and the network graph. The other commands run the same " +
		"analysis locally.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a JSON or YAML config file")
}

// newLogger builds the process logger. extra enables debug output in
// addition to the --verbose flag.
func newLogger(extra bool) (*zap.Logger, error) {
	logger, err := observability.NewLogger(verbose || extra)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
