package main

import (
	"context"
	"fmt"

	"github.com/jonathan/winlab-analyzer/internal/archive"
	"github.com/jonathan/winlab-analyzer/internal/config"
	"github.com/jonathan/winlab-analyzer/internal/db"
	"github.com/jonathan/winlab-analyzer/internal/llm"
	"github.com/jonathan/winlab-analyzer/internal/pipeline"
	"github.com/jonathan/winlab-analyzer/internal/prompts"
	"github.com/jonathan/winlab-analyzer/internal/visualization"
)

// newCompleter is replaced in tests.
var newCompleter = llm.NewCompleter

// modelOverride replaces the configured model when set by a command flag.
var modelOverride string

// buildArchive returns the raw completion archive selected in cfg.
func buildArchive(ctx context.Context, cfg config.ArchiveConfig) (archive.Archive, error) {
	switch cfg.Backend {
	case config.ArchiveFile:
		return archive.NewFileArchive(cfg.Dir), nil
	case config.ArchiveS3:
		return archive.NewS3Archive(ctx, cfg.Bucket, cfg.Prefix, cfg.Region)
	case config.ArchiveNone, "":
		return archive.Nop{}, nil
	default:
		return nil, fmt.Errorf("unknown archive backend %q", cfg.Backend)
	}
}

// analyzerDeps holds what buildAnalyzer created so the caller can release it.
type analyzerDeps struct {
	analyzer  *pipeline.Analyzer
	completer llm.Completer
}

func (d *analyzerDeps) Close() {
	if d.completer != nil {
		_ = d.completer.Close()
	}
}

// buildAnalyzer wires the pipeline from configuration. database may be nil.
func buildAnalyzer(ctx context.Context, cfg *config.Config, database *db.DB, opts ...pipeline.Option) (*analyzerDeps, error) {
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}

	builder, err := prompts.LoadBuilder(cfg.PersonaFile)
	if err != nil {
		return nil, err
	}

	completion := cfg.LLM.Completion()
	if modelOverride != "" {
		completion = completion.WithModel(modelOverride)
	}
	completer, err := newCompleter(ctx, completion, cfg.GeminiAPIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create completion client: %w", err)
	}

	raw, err := buildArchive(ctx, cfg.Archive)
	if err != nil {
		_ = completer.Close()
		return nil, fmt.Errorf("failed to create archive: %w", err)
	}

	all := []pipeline.Option{pipeline.WithRawArchive(raw)}
	if database != nil {
		all = append(all, pipeline.WithEventRecorder(database))
	}
	all = append(all, opts...)

	analyzer := pipeline.NewAnalyzer(builder, completer, visualization.NewSynthesizer(nil), all...)
	return &analyzerDeps{analyzer: analyzer, completer: completer}, nil
}

// connectDatabase opens the database when one is configured. It returns nil
// without error when DATABASE_URL is unset and required is false.
func connectDatabase(ctx context.Context, cfg *config.Config, required bool) (*db.DB, error) {
	if err := cfg.RequireDatabase(); err != nil {
		if required {
			return nil, err
		}
		return nil, nil
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return database, nil
}
