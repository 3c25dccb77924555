package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/career-network/internal/network"
	"github.com/jonathan/career-network/internal/observability"
	"github.com/jonathan/career-network/internal/schemas"
	"github.com/jonathan/career-network/internal/types"
)

var (
	layoutSize     float64
	layoutMaxNodes int
	layoutJSON     bool
)

var layoutCmd = &cobra.Command{
	Use:   "layout <connections.json>",
	Short: "Compute the network graph for a connections file",
	Long:  "Validates a JSON array of ranked connections and prints where each one is placed on the network graph.",
	Args:  cobra.ExactArgs(1),
	RunE:  runLayout,
}

func init() {
	defaults := network.DefaultOptions()
	layoutCmd.Flags().Float64Var(&layoutSize, "size", defaults.ContainerSize, "Container size in pixels")
	layoutCmd.Flags().IntVar(&layoutMaxNodes, "max-nodes", defaults.MaxNodes, "Maximum number of connections placed")
	layoutCmd.Flags().BoolVar(&layoutJSON, "json", false, "Print the layout as JSON instead of a table")
	rootCmd.AddCommand(layoutCmd)
}

func runLayout(cmd *cobra.Command, args []string) error {
	people, err := loadConnections(args[0])
	if err != nil {
		return err
	}

	opts := network.DefaultOptions()
	opts.ContainerSize = layoutSize
	opts.MaxNodes = layoutMaxNodes
	layout := network.Compute(people, opts)

	if layoutJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(layout)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintLayout(layout)
	return nil
}

// loadConnections reads and schema-checks a connections file.
func loadConnections(path string) ([]types.PersonData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read connections file: %w", err)
	}
	if err := schemas.Validate(schemas.Connections, data); err != nil {
		return nil, fmt.Errorf("invalid connections file %s: %w", path, err)
	}

	var people []types.PersonData
	if err := json.Unmarshal(data, &people); err != nil {
		return nil, fmt.Errorf("failed to parse connections file: %w", err)
	}
	return people, nil
}
