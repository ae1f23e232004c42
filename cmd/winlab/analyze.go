package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jonathan/winlab-analyzer/internal/archive"
	"github.com/jonathan/winlab-analyzer/internal/db"
	"github.com/jonathan/winlab-analyzer/internal/export"
	"github.com/jonathan/winlab-analyzer/internal/observability"
	"github.com/jonathan/winlab-analyzer/internal/pipeline"
	"github.com/jonathan/winlab-analyzer/internal/types"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	analyzeOutDir      string
	analyzeConcurrency int
	analyzeXLSX        bool
	analyzeSave        bool
	analyzeVerbose     bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <profile.json>...",
	Short: "Analyze one or more business profiles",
	Long: `Run the full analysis for each business profile JSON file. Profiles are analyzed
concurrently and independently: one failure does not stop the others.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeOutDir, "out", "o", "reports", "Directory for report JSON files")
	analyzeCmd.Flags().IntVarP(&analyzeConcurrency, "concurrency", "c", 4, "Maximum analyses in flight")
	analyzeCmd.Flags().BoolVar(&analyzeXLSX, "xlsx", false, "Also write an .xlsx workbook per report")
	analyzeCmd.Flags().BoolVar(&analyzeSave, "save", false, "Store reports in the database (requires DATABASE_URL)")
	analyzeCmd.Flags().BoolVarP(&analyzeVerbose, "verbose", "v", false, "Print a summary of each report")
	analyzeCmd.Flags().StringVar(&modelOverride, "model", "", "Override the configured completion model")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := logger.WithContext(cmd.Context())

	var database *db.DB
	if analyzeSave {
		var err error
		if database, err = connectDatabase(ctx, cfg, true); err != nil {
			return err
		}
		defer database.Close()
	}

	deps, err := buildAnalyzer(ctx, cfg, database, pipeline.WithProgress(logProgress))
	if err != nil {
		return err
	}
	defer deps.Close()

	if err := os.MkdirAll(analyzeOutDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	return analyzeFiles(ctx, deps.analyzer, database, args)
}

func logProgress(e pipeline.ProgressEvent) {
	logger.Debug().Str("step", e.Step).Msg(e.Message)
}

// analyzeFiles runs every profile and joins the failures. Each file gets its
// own goroutine and failures never cancel the other analyses.
func analyzeFiles(ctx context.Context, analyzer *pipeline.Analyzer, database *db.DB, paths []string) error {
	var (
		mu       sync.Mutex
		failures []error
		printMu  sync.Mutex
		names    = newOutputNames()
	)

	g := new(errgroup.Group)
	g.SetLimit(max(analyzeConcurrency, 1))

	for _, path := range paths {
		g.Go(func() error {
			report, err := analyzeFile(ctx, analyzer, database, names, path)
			if err != nil {
				logger.Error().Err(err).Str("profile", path).Msg("analysis failed")
				mu.Lock()
				failures = append(failures, fmt.Errorf("%s: %w", path, err))
				mu.Unlock()
				return nil
			}
			if analyzeVerbose {
				printMu.Lock()
				observability.NewPrinter(stdout).PrintReport(report)
				printMu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(failures) > 0 {
		return fmt.Errorf("%d of %d analyses failed: %w", len(failures), len(paths), errors.Join(failures...))
	}
	return nil
}

func analyzeFile(ctx context.Context, analyzer *pipeline.Analyzer, database *db.DB, names *outputNames, path string) (*types.Report, error) {
	profile, err := readProfile(path)
	if err != nil {
		return nil, err
	}

	fileLogger := logger.With().Str("profile", path).Str("business_name", profile.BusinessName).Logger()
	ctx = fileLogger.WithContext(ctx)

	report, err := analyzer.ProduceReport(ctx, profile)
	if err != nil {
		return nil, err
	}

	base := filepath.Join(analyzeOutDir, names.claim(archive.SanitizeName(profile.BusinessName))+"-report")
	if err := writeJSON(base+".json", report); err != nil {
		return nil, err
	}
	if analyzeXLSX {
		if err := writeWorkbook(base+".xlsx", report); err != nil {
			return nil, err
		}
	}

	if database != nil {
		id, err := database.SaveReport(ctx, report, profile)
		if err != nil {
			return nil, err
		}
		fileLogger.Info().Str("report_id", id.String()).Msg("report stored")
	}

	fileLogger.Info().Str("output", base+".json").Msg("report written")
	return report, nil
}

// outputNames hands out report file names that are unique within one run.
// Profiles sharing a business name get -2, -3... suffixes.
type outputNames struct {
	mu    sync.Mutex
	taken map[string]int
}

func newOutputNames() *outputNames {
	return &outputNames{taken: make(map[string]int)}
}

func (n *outputNames) claim(name string) string {
	n.mu.Lock()
	defer n.mu.Unlock()

	for {
		n.taken[name]++
		count := n.taken[name]
		if count == 1 {
			return name
		}
		candidate := fmt.Sprintf("%s-%d", name, count)
		if _, used := n.taken[candidate]; !used {
			n.taken[candidate] = 1
			return candidate
		}
	}
}

func readProfile(path string) (*types.BusinessProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	var profile types.BusinessProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile JSON: %w", err)
	}
	return &profile, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func writeWorkbook(path string, report *types.Report) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("failed to close %s: %w", path, closeErr)
		}
	}()
	return export.WriteReport(f, report)
}
