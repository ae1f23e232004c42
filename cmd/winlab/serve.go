package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonathan/winlab-analyzer/internal/server"
	"github.com/jonathan/winlab-analyzer/internal/server/ratelimit"
	"github.com/spf13/cobra"
)

var (
	servePort    int
	serveMigrate bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that accepts business profiles and returns analysis reports.
Reports, consultations and events are stored when DATABASE_URL is set.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides server.port)")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "Apply the database schema before serving")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx)

	database, err := connectDatabase(ctx, cfg, false)
	if err != nil {
		return err
	}
	deps := server.Dependencies{Shares: server.NewShareService(&cfg.Share)}
	if database != nil {
		defer database.Close()
		if serveMigrate {
			if err := database.Migrate(ctx); err != nil {
				return err
			}
		}
		deps.Store = database
	} else {
		logger.Warn().Msg("DATABASE_URL not set; reports will not be stored")
	}

	analyzerDeps, err := buildAnalyzer(ctx, cfg, database)
	if err != nil {
		return err
	}
	defer analyzerDeps.Close()
	deps.Analyzer = analyzerDeps.analyzer

	port := cfg.Server.Port
	if servePort != 0 {
		port = servePort
	}

	srv := server.New(logger, server.Config{
		Addr:            fmt.Sprintf(":%d", port),
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		RateLimit:       ratelimit.LoadConfig(),
	}, deps)
	return srv.Start(ctx)
}
