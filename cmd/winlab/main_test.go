package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jonathan/winlab-analyzer/internal/archive"
	"github.com/jonathan/winlab-analyzer/internal/config"
	"github.com/jonathan/winlab-analyzer/internal/db"
	"github.com/jonathan/winlab-analyzer/internal/llm"
	"github.com/jonathan/winlab-analyzer/internal/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const completionText = "Intro text\n## AI Opportunities\n1. Chatbots: reduces cost\n2. Content Gen: low complexity boost\n3. Scheduling: moderate effort\n" +
	"## Implementation Roadmap\nQuick Wins:\n- Launch FAQ bot\n## Next Steps\nDo X."

// stubCompleter returns completionText, or err when set.
type stubCompleter struct {
	mu     sync.Mutex
	calls  int
	err    error
	closed bool
}

func (s *stubCompleter) Complete(_ context.Context, _ string) (*types.RawCompletion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &types.RawCompletion{Text: completionText, FinishReason: "STOP"}, nil
}

func (s *stubCompleter) Close() error {
	s.closed = true
	return nil
}

// useStubCompleter swaps the completer factory and process globals for the
// duration of the test.
func useStubCompleter(t *testing.T, stub *stubCompleter) *bytes.Buffer {
	t.Helper()

	oldFactory, oldCfg, oldLogger, oldStdout := newCompleter, cfg, logger, stdout
	t.Cleanup(func() {
		newCompleter, cfg, logger, stdout = oldFactory, oldCfg, oldLogger, oldStdout
	})

	newCompleter = func(context.Context, *llm.Config, string) (llm.Completer, error) {
		return stub, nil
	}
	cfg = &config.Config{
		GeminiAPIKey: "test-key",
		LLM:          config.LLMConfig{Transport: "rest", Model: "test-model"},
		Archive:      config.ArchiveConfig{Backend: config.ArchiveNone},
	}
	logger = zerolog.Nop()

	var out bytes.Buffer
	stdout = &out
	return &out
}

func writeProfile(t *testing.T, dir, name string, profile types.BusinessProfile) string {
	t.Helper()
	data, err := json.Marshal(profile)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func validProfile(name string) types.BusinessProfile {
	return types.BusinessProfile{
		BusinessName:  name,
		BusinessEmail: "owner@example.com",
		Industry:      "Retail",
		WebsiteURL:    "https://example.com",
		RevenueModel:  "Retail sales",
		SalesProcess:  "Walk-in customers",
	}
}

func TestBuildArchive(t *testing.T) {
	ctx := context.Background()

	a, err := buildArchive(ctx, config.ArchiveConfig{Backend: config.ArchiveNone})
	require.NoError(t, err)
	assert.IsType(t, archive.Nop{}, a)

	a, err = buildArchive(ctx, config.ArchiveConfig{})
	require.NoError(t, err)
	assert.IsType(t, archive.Nop{}, a)

	a, err = buildArchive(ctx, config.ArchiveConfig{Backend: config.ArchiveFile, Dir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &archive.FileArchive{}, a)

	_, err = buildArchive(ctx, config.ArchiveConfig{Backend: "ftp"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown archive backend")
}

func TestBuildAnalyzer_RequiresAPIKey(t *testing.T) {
	_, err := buildAnalyzer(context.Background(), &config.Config{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestBuildAnalyzer_CompleterError(t *testing.T) {
	useStubCompleter(t, &stubCompleter{})
	newCompleter = func(context.Context, *llm.Config, string) (llm.Completer, error) {
		return nil, errors.New("bad model")
	}

	_, err := buildAnalyzer(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create completion client")
}

func TestConnectDatabase_Optional(t *testing.T) {
	database, err := connectDatabase(context.Background(), &config.Config{}, false)
	assert.NoError(t, err)
	assert.Nil(t, database)

	_, err = connectDatabase(context.Background(), &config.Config{}, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestAnalyzeFiles_WritesReports(t *testing.T) {
	stub := &stubCompleter{}
	useStubCompleter(t, stub)

	dir := t.TempDir()
	oldOut, oldXLSX := analyzeOutDir, analyzeXLSX
	t.Cleanup(func() { analyzeOutDir, analyzeXLSX = oldOut, oldXLSX })
	analyzeOutDir = dir
	analyzeXLSX = true

	paths := []string{
		writeProfile(t, dir, "a.json", validProfile("Acme Bakery")),
		writeProfile(t, dir, "b.json", validProfile("Bolt Bikes")),
	}

	deps, err := buildAnalyzer(context.Background(), cfg, nil)
	require.NoError(t, err)

	require.NoError(t, analyzeFiles(context.Background(), deps.analyzer, nil, paths))
	deps.Close()
	assert.True(t, stub.closed)
	assert.Equal(t, 2, stub.calls)

	data, err := os.ReadFile(filepath.Join(dir, "Acme-Bakery-report.json"))
	require.NoError(t, err)
	var report types.Report
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, "Acme Bakery", report.BusinessName)
	assert.True(t, report.Sections.Has("ai_opportunities"))

	assert.FileExists(t, filepath.Join(dir, "Bolt-Bikes-report.json"))
	assert.FileExists(t, filepath.Join(dir, "Bolt-Bikes-report.xlsx"))
}

func TestAnalyzeFiles_FailuresDoNotStopOthers(t *testing.T) {
	stub := &stubCompleter{}
	useStubCompleter(t, stub)

	dir := t.TempDir()
	oldOut := analyzeOutDir
	t.Cleanup(func() { analyzeOutDir = oldOut })
	analyzeOutDir = dir

	invalid := validProfile("No Email")
	invalid.BusinessEmail = ""
	paths := []string{
		writeProfile(t, dir, "ok.json", validProfile("Acme Bakery")),
		writeProfile(t, dir, "invalid.json", invalid),
		filepath.Join(dir, "missing.json"),
	}

	deps, err := buildAnalyzer(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer deps.Close()

	err = analyzeFiles(context.Background(), deps.analyzer, nil, paths)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 3 analyses failed")
	assert.Contains(t, err.Error(), "invalid.json")
	assert.Contains(t, err.Error(), "missing.json")

	var vErr *types.ValidationError
	assert.ErrorAs(t, err, &vErr)

	assert.Equal(t, 1, stub.calls)
	assert.FileExists(t, filepath.Join(dir, "Acme-Bakery-report.json"))
}

func TestAnalyzeFiles_SameBusinessNameKeepsBothReports(t *testing.T) {
	stub := &stubCompleter{}
	useStubCompleter(t, stub)

	dir := t.TempDir()
	oldOut, oldConcurrency := analyzeOutDir, analyzeConcurrency
	t.Cleanup(func() { analyzeOutDir, analyzeConcurrency = oldOut, oldConcurrency })
	analyzeOutDir = dir
	analyzeConcurrency = 4

	first := validProfile("Acme Bakery")
	second := validProfile("Acme Bakery")
	second.Industry = "Catering"
	paths := []string{
		writeProfile(t, dir, "first.json", first),
		writeProfile(t, dir, "second.json", second),
	}

	deps, err := buildAnalyzer(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer deps.Close()

	require.NoError(t, analyzeFiles(context.Background(), deps.analyzer, nil, paths))

	industries := map[string]bool{}
	for _, name := range []string{"Acme-Bakery-report.json", "Acme-Bakery-2-report.json"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err, name)
		var report types.Report
		require.NoError(t, json.Unmarshal(data, &report), name)
		industries[report.Industry] = true
	}
	assert.Equal(t, map[string]bool{"Retail": true, "Catering": true}, industries)
}

func TestOutputNames_Claim(t *testing.T) {
	names := newOutputNames()
	assert.Equal(t, "Acme", names.claim("Acme"))
	assert.Equal(t, "Acme-2", names.claim("Acme"))
	assert.Equal(t, "Acme-2-2", names.claim("Acme-2"))
	assert.Equal(t, "Acme-3", names.claim("Acme"))
	assert.Equal(t, "Bolt", names.claim("Bolt"))
}

func TestRunParse_JSON(t *testing.T) {
	out := useStubCompleter(t, &stubCompleter{})

	path := filepath.Join(t.TempDir(), "raw.md")
	require.NoError(t, os.WriteFile(path, []byte(completionText), 0o644))

	oldSeed, oldVerbose := parseSeed, parseVerbose
	t.Cleanup(func() { parseSeed, parseVerbose = oldSeed, oldVerbose })
	parseSeed = 7
	parseVerbose = false

	require.NoError(t, runParse(parseCmd, []string{path}))

	var result parseResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, []string{"executive_summary", "ai_opportunities", "implementation_roadmap", "next_steps"}, result.Sections.Keys())
	assert.Len(t, result.Visualizations.OpportunityRadar.Labels, 6)
	assert.Equal(t, "Chatbots", result.Visualizations.OpportunityRadar.Labels[0])
}

func TestRunParse_Stdin(t *testing.T) {
	out := useStubCompleter(t, &stubCompleter{})

	oldVerbose := parseVerbose
	t.Cleanup(func() { parseVerbose = oldVerbose })
	parseVerbose = true

	parseCmd.SetIn(bytes.NewBufferString(completionText))
	t.Cleanup(func() { parseCmd.SetIn(nil) })

	require.NoError(t, runParse(parseCmd, []string{"-"}))
	assert.Contains(t, out.String(), "Chatbots")
	assert.Contains(t, out.String(), "Launch FAQ bot")
}

func TestRunParse_MissingFile(t *testing.T) {
	useStubCompleter(t, &stubCompleter{})
	err := runParse(parseCmd, []string{filepath.Join(t.TempDir(), "nope.md")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read completion")
}

func TestRunValidate(t *testing.T) {
	out := useStubCompleter(t, &stubCompleter{})
	dir := t.TempDir()

	oldJSON, oldSchema := validateJSONPath, validateSchemaPath
	t.Cleanup(func() { validateJSONPath, validateSchemaPath = oldJSON, oldSchema })

	schemaPath := filepath.Join(dir, "person.schema.json")
	require.NoError(t, os.WriteFile(schemaPath, []byte(`{"type":"object","required":["name"]}`), 0o644))
	good := filepath.Join(dir, "good.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"name":"Ada"}`), 0o644))

	validateSchemaPath = schemaPath
	validateJSONPath = good
	require.NoError(t, runValidate(validateCmd, nil))
	assert.Contains(t, out.String(), "Validation passed")

	// Not a report: the built-in schema rejects it.
	out.Reset()
	validateSchemaPath = ""
	err := runValidate(validateCmd, nil)
	require.Error(t, err)
	assert.Contains(t, out.String(), "Validation failed")
}

func TestRunMigrate_Print(t *testing.T) {
	out := useStubCompleter(t, &stubCompleter{})

	old := migratePrint
	t.Cleanup(func() { migratePrint = old })
	migratePrint = true

	require.NoError(t, runMigrate(migrateCmd, nil))
	assert.Contains(t, out.String(), "CREATE TABLE IF NOT EXISTS reports")
}

func TestNewLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "warn", false)
	l.Info().Msg("hidden")
	l.Warn().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	assert.Equal(t, zerolog.InfoLevel, newLogger(&buf, "", false).GetLevel())
}

func TestRerunReport(t *testing.T) {
	out := useStubCompleter(t, &stubCompleter{})

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	profileJSON, err := json.Marshal(validProfile("Acme Bakery"))
	require.NoError(t, err)

	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT profile FROM reports")).WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"profile"}).AddRow(profileJSON))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO reports")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, rerunReport(context.Background(), db.New(conn), id))
	assert.NoError(t, mock.ExpectationsWereMet())

	newID, err := uuid.Parse(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.NotEqual(t, id, newID)
}

func TestRerunReport_NotFound(t *testing.T) {
	useStubCompleter(t, &stubCompleter{})

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT profile FROM reports")).WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"profile"}))

	err = rerunReport(context.Background(), db.New(conn), id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestBuildAnalyzer_ModelOverride(t *testing.T) {
	useStubCompleter(t, &stubCompleter{})

	var gotModel string
	newCompleter = func(_ context.Context, c *llm.Config, _ string) (llm.Completer, error) {
		gotModel = c.Model
		return &stubCompleter{}, nil
	}
	old := modelOverride
	t.Cleanup(func() { modelOverride = old })

	modelOverride = "gemini-1.5-pro"
	deps, err := buildAnalyzer(context.Background(), cfg, nil)
	require.NoError(t, err)
	deps.Close()
	assert.Equal(t, "gemini-1.5-pro", gotModel)
	assert.Equal(t, "test-model", cfg.LLM.Model)
}

func TestRunValidate_PrintSchema(t *testing.T) {
	out := useStubCompleter(t, &stubCompleter{})

	old := validatePrintSchema
	t.Cleanup(func() { validatePrintSchema = old })
	validatePrintSchema = true

	require.NoError(t, runValidate(validateCmd, nil))
	assert.Contains(t, out.String(), `"$schema"`)
}
