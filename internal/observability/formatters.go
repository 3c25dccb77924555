// Package observability provides logger construction and formatted output
// for the command-line tools.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/career-network/internal/insights"
	"github.com/jonathan/career-network/internal/network"
	"github.com/jonathan/career-network/internal/resume"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 64
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 10
)

// Printer handles formatted output for the CLI
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// PrintLayout outputs the laid-out nodes in rank order.
func (p *Printer) PrintLayout(l *network.Layout) {
	if l == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Canvas: %.0fx%.0f  Center: (%.0f, %.0f)\n", l.Size, l.Size, l.Center.X, l.Center.Y))
	sb.WriteString(fmt.Sprintf("Nodes:  %d", len(l.Nodes)))
	if l.Truncated > 0 {
		sb.WriteString(fmt.Sprintf(" (%d dropped)", l.Truncated))
	}
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("%-4s %-22s %8s %8s %6s %6s\n", "RANK", "NAME", "X", "Y", "DIST", "DELAY"))

	for _, n := range l.Nodes {
		sb.WriteString(fmt.Sprintf("%-4d %-22s %8.1f %8.1f %6.0f %5dms\n",
			n.Rank, truncate(n.Name, 22), n.X, n.Y, n.Distance, n.DelayMS))
	}

	p.printBox("NETWORK LAYOUT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintResumeAnalysis outputs extracted skills and characteristics, plus the
// first lines of the text.
func (p *Printer) PrintResumeAnalysis(text string, skills []string, chars []resume.Characteristic) {
	var sb strings.Builder

	lines := strings.Split(strings.TrimSpace(text), "\n")
	sb.WriteString(fmt.Sprintf("Characters: %d  Lines: %d\n\n", len(text), len(lines)))

	if len(chars) > 0 {
		for _, c := range chars {
			sb.WriteString(fmt.Sprintf("%-20s %s\n", c.Label+":", c.Value))
		}
		sb.WriteString("\n")
	}

	if len(skills) > 0 {
		sb.WriteString("Skills:\n")
		for _, s := range skills {
			sb.WriteString(fmt.Sprintf("  • %s\n", s))
		}
		sb.WriteString("\n")
	} else {
		sb.WriteString("No known skills found\n\n")
	}

	sb.WriteString("Preview:\n")
	count := min(len(lines), 5)
	for i := 0; i < count; i++ {
		sb.WriteString("  " + lines[i] + "\n")
	}
	if len(lines) > count {
		sb.WriteString(fmt.Sprintf("  ... and %d more lines", len(lines)-count))
	}

	p.printBox("RESUME ANALYSIS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintPortfolio outputs the industry breakdown and insights.
func (p *Printer) PrintPortfolio(portfolio *insights.Portfolio) {
	if portfolio == nil {
		return
	}

	var sb strings.Builder
	if len(portfolio.TopIndustries) > 0 {
		sb.WriteString("Top industries:\n")
		count := min(len(portfolio.TopIndustries), maxItemsToShow)
		for i := 0; i < count; i++ {
			ind := portfolio.TopIndustries[i]
			sb.WriteString(fmt.Sprintf("  %-30s %4d  %3d%%\n", truncate(ind.Industry, 30), ind.Count, ind.Percent))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Strengths:\n")
	for _, s := range portfolio.Strengths {
		sb.WriteString("  ✓ " + s + "\n")
	}
	sb.WriteString("\nNext steps:\n")
	for _, s := range portfolio.Improvements {
		sb.WriteString("  → " + s + "\n")
	}

	p.printBox("PORTFOLIO INSIGHTS", strings.TrimSuffix(sb.String(), "\n"))
}
