package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jonathan/winlab-analyzer/internal/observability"
	"github.com/jonathan/winlab-analyzer/internal/parsing"
	"github.com/jonathan/winlab-analyzer/internal/types"
	"github.com/jonathan/winlab-analyzer/internal/visualization"
	"github.com/spf13/cobra"
)

var (
	parseSeed    uint64
	parseVerbose bool
)

var parseCmd = &cobra.Command{
	Use:   "parse <completion.md>",
	Short: "Parse a saved completion into sections and charts",
	Long: `Split a raw completion (for example one kept by the debug archive) into report
sections and build the visualization bundle, without calling the completion service.
Use "-" to read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().Uint64Var(&parseSeed, "seed", 0, "Random seed for chart scores (0 picks one)")
	parseCmd.Flags().BoolVarP(&parseVerbose, "verbose", "v", false, "Print a readable summary instead of JSON")
	rootCmd.AddCommand(parseCmd)
}

// parseResult is the JSON printed by the parse command.
type parseResult struct {
	Sections       types.Sections            `json:"sections"`
	Visualizations types.VisualizationBundle `json:"visualizations"`
}

func runParse(cmd *cobra.Command, args []string) error {
	text, err := readInput(cmd.InOrStdin(), args[0])
	if err != nil {
		return err
	}

	rnd := visualization.NewRandomRand()
	if parseSeed != 0 {
		rnd = visualization.NewRand(parseSeed)
	}

	sections := parsing.Parse(text)
	result := parseResult{
		Sections:       sections,
		Visualizations: visualization.NewSynthesizer(rnd).Build(sections),
	}

	if parseVerbose {
		p := observability.NewPrinter(stdout)
		p.PrintSections(result.Sections)
		p.PrintOpportunities(result.Visualizations.OpportunityRadar)
		p.PrintTimeline(result.Visualizations.ImplementationTimeline)
		p.PrintComparison(result.Visualizations.SolutionComparison)
		return nil
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func readInput(stdin io.Reader, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read completion: %w", err)
	}
	return string(data), nil
}
