package main

import (
	"github.com/jonathan/winlab-analyzer/internal/db"
	"github.com/spf13/cobra"
)

var migratePrint bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	Long:  "Create the reports, consultations and events tables. The schema is idempotent.",
	RunE:  runMigrate,
}

func init() {
	migrateCmd.Flags().BoolVar(&migratePrint, "print", false, "Print the schema instead of applying it")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	if migratePrint {
		_, err := stdout.Write([]byte(db.Schema()))
		return err
	}

	ctx := logger.WithContext(cmd.Context())
	database, err := connectDatabase(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		return err
	}
	logger.Info().Msg("schema applied")
	return nil
}
