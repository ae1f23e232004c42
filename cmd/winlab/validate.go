package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jonathan/winlab-analyzer/internal/schemas"
	"github.com/spf13/cobra"
)

var (
	validateJSONPath    string
	validateSchemaPath  string
	validatePrintSchema bool
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a report JSON file",
	Long: `Check a JSON document against the built-in report schema, or against the schema
given with --schema.`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateJSONPath, "json", "", "Path to JSON document (required)")
	validateCmd.Flags().StringVar(&validateSchemaPath, "schema", "", "Path to a JSON Schema file (defaults to the report schema)")
	validateCmd.Flags().BoolVar(&validatePrintSchema, "print-schema", false, "Print the built-in report schema and exit")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, _ []string) error {
	if validatePrintSchema {
		_, err := fmt.Fprintln(stdout, schemas.ReportSchema())
		return err
	}
	if validateJSONPath == "" {
		return fmt.Errorf("required flag \"json\" not set")
	}

	var err error
	if validateSchemaPath != "" {
		err = schemas.ValidateJSON(validateSchemaPath, validateJSONPath)
	} else {
		data, readErr := os.ReadFile(validateJSONPath)
		if readErr != nil {
			return fmt.Errorf("failed to read %s: %w", validateJSONPath, readErr)
		}
		err = schemas.ValidateReportJSON(data)
	}

	var validationErr *schemas.ValidationError
	if errors.As(err, &validationErr) {
		_, _ = fmt.Fprint(stdout, "Validation failed: ", validationErr.Error())
		return fmt.Errorf("%s is not valid", validateJSONPath)
	}
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(stdout, "Validation passed")
	return nil
}
