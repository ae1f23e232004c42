// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/winlab-analyzer/internal/prompts"
	"github.com/jonathan/winlab-analyzer/internal/types"
	"github.com/jonathan/winlab-analyzer/internal/visualization"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
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
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n-3]) + "..."
}

// PrintProfile outputs a short summary of the submitted business profile.
func (p *Printer) PrintProfile(profile *types.BusinessProfile) {
	if profile == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Business: %s\n", profile.BusinessName))
	sb.WriteString(fmt.Sprintf("Industry: %s\n", profile.Industry))
	sb.WriteString(fmt.Sprintf("Size:     %s employees\n", profile.CompanySizeLabel()))
	sb.WriteString(fmt.Sprintf("Website:  %s\n", profile.WebsiteURL))

	if findings := prompts.CheckProfile(profile); len(findings) > 0 {
		sb.WriteString("\n")
		for _, f := range findings {
			sb.WriteString(fmt.Sprintf("⚠ %s: %s\n", f.Field, f.Reason))
		}
	}

	p.printBox("BUSINESS PROFILE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSections lists the parsed sections with their sizes.
func (p *Printer) PrintSections(sections types.Sections) {
	if len(sections) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Parsed %d sections:\n\n", len(sections)))
	for _, sec := range sections {
		sb.WriteString(fmt.Sprintf("• %s (%d chars)\n", sec.Key, utf8.RuneCountInString(sec.Content)))
	}

	p.printBox("REPORT SECTIONS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintOpportunities outputs the radar chart scores.
func (p *Printer) PrintOpportunities(radar types.ChartData) {
	if len(radar.Labels) == 0 {
		return
	}

	impact, _ := radar.Dataset(visualization.ImpactDatasetLabel)
	complexity, _ := radar.Dataset(visualization.ComplexityDatasetLabel)

	var sb strings.Builder
	for i, label := range radar.Labels {
		sb.WriteString(fmt.Sprintf("%-24s impact %3s  complexity %3s\n",
			truncate(label, 24), score(impact.Data, i), score(complexity.Data, i)))
	}

	p.printBox("AI OPPORTUNITIES", strings.TrimSuffix(sb.String(), "\n"))
}

func score(data []int, i int) string {
	if i < len(data) {
		return fmt.Sprintf("%d", data[i])
	}
	return "-"
}

// PrintTimeline outputs each roadmap phase with its first items.
func (p *Printer) PrintTimeline(timeline types.Timeline) {
	if len(timeline.Phases) == 0 {
		return
	}

	var sb strings.Builder
	for i, phase := range timeline.Phases {
		sb.WriteString(fmt.Sprintf("%s (%s)\n", phase.Name, phase.Timeline))
		count := min(len(phase.Items), 3)
		for j := 0; j < count; j++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", phase.Items[j]))
		}
		if len(phase.Items) > 3 {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(phase.Items)-3))
		}
		if i < len(timeline.Phases)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("IMPLEMENTATION TIMELINE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintComparison outputs the solution comparison rows.
func (p *Printer) PrintComparison(table types.ComparisonTable) {
	if len(table.Rows) == 0 {
		return
	}

	var sb strings.Builder
	count := min(len(table.Rows), maxItemsToShow)
	for i := 0; i < count; i++ {
		row := table.Rows[i]
		sb.WriteString(fmt.Sprintf("• %s\n", strings.Join(row[:min(2, len(row))], ": ")))
		if len(row) >= 6 {
			sb.WriteString(fmt.Sprintf("  %s complexity, %s, ROI %s\n", row[2], row[4], row[5]))
		}
	}
	if len(table.Rows) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more solutions", len(table.Rows)-maxItemsToShow))
	}

	p.printBox("SOLUTION COMPARISON", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintReport outputs every part of a finished report.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintReport(report *types.Report) {
	if report == nil {
		return
	}

	fmt.Fprintf(p.out, "Report for %s (%s), generated %s\n",
		report.BusinessName, report.Industry, report.GeneratedAt.Format("2006-01-02 15:04 MST"))
	p.PrintSections(report.Sections)
	p.PrintOpportunities(report.Visualizations.OpportunityRadar)
	p.PrintTimeline(report.Visualizations.ImplementationTimeline)
	p.PrintComparison(report.Visualizations.SolutionComparison)
}
