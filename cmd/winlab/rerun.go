package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/winlab-analyzer/internal/db"
	"github.com/jonathan/winlab-analyzer/internal/pipeline"
	"github.com/spf13/cobra"
)

var rerunCmd = &cobra.Command{
	Use:   "rerun <report-id>",
	Short: "Analyze a stored report's profile again",
	Long: `Load the business profile a stored report was produced from, run a fresh analysis
and store the result as a new report. The original report is kept.`,
	Args: cobra.ExactArgs(1),
	RunE: runRerun,
}

func init() {
	rerunCmd.Flags().StringVar(&modelOverride, "model", "", "Override the configured completion model")
	rootCmd.AddCommand(rerunCmd)
}

func runRerun(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid report ID %q: %w", args[0], err)
	}

	ctx := logger.WithContext(cmd.Context())
	database, err := connectDatabase(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer database.Close()

	return rerunReport(ctx, database, id)
}

func rerunReport(ctx context.Context, database *db.DB, id uuid.UUID) error {
	profile, err := database.GetReportProfile(ctx, id)
	if err != nil {
		return err
	}
	if profile == nil {
		return fmt.Errorf("report %s not found", id)
	}

	deps, err := buildAnalyzer(ctx, cfg, database, pipeline.WithProgress(logProgress))
	if err != nil {
		return err
	}
	defer deps.Close()

	report, err := deps.analyzer.ProduceReport(ctx, profile)
	if err != nil {
		return err
	}

	newID, err := database.SaveReport(ctx, report, profile)
	if err != nil {
		return err
	}
	logger.Info().Str("source_report_id", id.String()).Str("report_id", newID.String()).Msg("report re-analyzed")
	_, err = fmt.Fprintln(stdout, newID.String())
	return err
}
