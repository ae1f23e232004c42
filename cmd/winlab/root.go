package main

import (
	"io"
	"os"
	"time"

	"github.com/jonathan/winlab-analyzer/internal/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	configPath string
	prettyLogs bool

	cfg    *config.Config
	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "winlab",
	Short: "AI WinLab business analysis service",
	Long: "winlab turns a business profile into an AI adoption report: a structured analysis " +
		"from the completion service plus radar, roadmap, ROI and comparison charts.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().BoolVar(&prettyLogs, "pretty", false, "Human-readable console logs instead of JSON")
}

// setup loads configuration and builds the process logger.
func setup(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg = loaded
	logger = newLogger(cmd.ErrOrStderr(), cfg.LogLevel, prettyLogs)
	return nil
}

func newLogger(out io.Writer, level string, pretty bool) zerolog.Logger {
	if pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

// stdout is swapped in tests.
var stdout io.Writer = os.Stdout
