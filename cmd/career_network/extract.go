package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/career-network/internal/insights"
	"github.com/jonathan/career-network/internal/observability"
	"github.com/jonathan/career-network/internal/resume"
)

var extractConnections string

var extractCmd = &cobra.Command{
	Use:   "extract <resume>",
	Short: "Extract text, skills and characteristics from a resume",
	Long: `Extracts the text of a .docx, .pdf or .html resume and prints the skills
and characteristics found in it. With --connections the networking
portfolio for those connections is printed as well.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&extractConnections, "connections", "c", "", "Connections JSON file to build a portfolio from")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read resume: %w", err)
	}

	text, err := resume.Extract(filepath.Base(path), "", data)
	if err != nil {
		return err
	}

	printer := observability.NewPrinter(cmd.OutOrStdout())
	printer.PrintResumeAnalysis(text, resume.ExtractSkills(text), resume.Characteristics(text))

	if extractConnections == "" {
		return nil
	}
	people, err := loadConnections(extractConnections)
	if err != nil {
		return err
	}
	printer.PrintPortfolio(insights.Build(people, text))
	return nil
}
