package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/jonathan/winlab-analyzer/internal/llm"
	"github.com/jonathan/winlab-analyzer/internal/parsing"
	"github.com/jonathan/winlab-analyzer/internal/prompts"
	"github.com/jonathan/winlab-analyzer/internal/types"
	"github.com/jonathan/winlab-analyzer/internal/visualization"
	"github.com/rs/zerolog"
)

// Analysis lifecycle event types.
const (
	EventAnalysisStarted   = "analysis_started"
	EventAnalysisCompleted = "analysis_completed"
	EventAnalysisError     = "analysis_error"
)

// Pipeline steps reported through ProgressCallback.
const (
	StepBuildPrompt = "build_prompt"
	StepComplete    = "complete"
	StepParse       = "parse_sections"
	StepVisualize   = "visualize"
	StepAssemble    = "assemble"
)

// ProgressEvent represents a progress update during an analysis
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// EventRecorder stores analysis lifecycle events.
type EventRecorder interface {
	RecordEvent(ctx context.Context, eventType string, data map[string]any) error
}

// RawArchive keeps a copy of the raw completion text for troubleshooting.
type RawArchive interface {
	Store(ctx context.Context, businessName, text string) (string, error)
}

// Analyzer runs the prompt, completion, parse, visualize and assemble
// stages for one profile at a time. It holds no per-analysis state, so one
// Analyzer can serve concurrent callers.
type Analyzer struct {
	builder     *prompts.Builder
	completer   llm.Completer
	synthesizer *visualization.Synthesizer
	events      EventRecorder
	archive     RawArchive
	onProgress  ProgressCallback
	now         func() time.Time
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithEventRecorder records lifecycle events. Recording is best effort.
func WithEventRecorder(r EventRecorder) Option {
	return func(a *Analyzer) { a.events = r }
}

// WithRawArchive stores every raw completion. Archiving is best effort.
func WithRawArchive(archive RawArchive) Option {
	return func(a *Analyzer) { a.archive = archive }
}

// WithProgress registers a progress callback.
func WithProgress(cb ProgressCallback) Option {
	return func(a *Analyzer) { a.onProgress = cb }
}

// WithClock overrides the clock used for report timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) { a.now = now }
}

// NewAnalyzer creates an Analyzer. A nil builder or synthesizer is replaced
// by the default one.
func NewAnalyzer(builder *prompts.Builder, completer llm.Completer, synthesizer *visualization.Synthesizer, opts ...Option) *Analyzer {
	if builder == nil {
		builder = prompts.NewBuilder()
	}
	if synthesizer == nil {
		synthesizer = visualization.NewSynthesizer(nil)
	}
	a := &Analyzer{
		builder:     builder,
		completer:   completer,
		synthesizer: synthesizer,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ProduceReport analyzes profile. A *types.ValidationError is returned
// before any network call when the profile is incomplete; completion
// failures are returned as the llm error types unchanged. Parsing and
// visualization never fail.
func (a *Analyzer) ProduceReport(ctx context.Context, profile *types.BusinessProfile) (*types.Report, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx).With().Str("business_name", profile.BusinessName).Logger()
	start := a.now()

	a.recordEvent(ctx, EventAnalysisStarted, map[string]any{
		"business_name": profile.BusinessName,
		"industry":      profile.Industry,
	})

	prompt, err := a.builder.Build(profile)
	if err != nil {
		return nil, err
	}
	for _, finding := range prompts.CheckProfile(profile) {
		logger.Warn().Str("field", finding.Field).Str("reason", finding.Reason).Msg("possible prompt injection in profile")
	}
	a.emitProgress(StepBuildPrompt, fmt.Sprintf("Built prompt (%d bytes)", len(prompt)), nil)

	completion, err := a.completer.Complete(ctx, prompt)
	if err != nil {
		logger.Error().Err(err).Msg("completion failed")
		a.recordEvent(ctx, EventAnalysisError, map[string]any{
			"business_name": profile.BusinessName,
			"error":         err.Error(),
		})
		return nil, err
	}
	a.emitProgress(StepComplete, fmt.Sprintf("Received completion (%d bytes)", len(completion.Text)), nil)

	if a.archive != nil {
		if location, err := a.archive.Store(ctx, profile.BusinessName, completion.Text); err != nil {
			logger.Warn().Err(err).Msg("failed to archive raw completion")
		} else {
			logger.Debug().Str("location", location).Msg("archived raw completion")
		}
	}

	sections := parsing.Parse(completion.Text)
	a.emitProgress(StepParse, fmt.Sprintf("Parsed %d sections", len(sections)), sections.Keys())

	visualizations := a.synthesizer.Build(sections)
	a.emitProgress(StepVisualize, "Built visualizations", nil)

	report := Assemble(profile, completion, sections, visualizations, a.now())
	a.emitProgress(StepAssemble, "Assembled report", nil)

	elapsed := a.now().Sub(start)
	a.recordEvent(ctx, EventAnalysisCompleted, map[string]any{
		"business_name":   profile.BusinessName,
		"processing_time": fmt.Sprintf("%.2fs", elapsed.Seconds()),
	})
	logger.Info().Dur("elapsed", elapsed).Int("sections", len(sections)).Msg("analysis completed")

	return report, nil
}

func (a *Analyzer) recordEvent(ctx context.Context, eventType string, data map[string]any) {
	if a.events == nil {
		return
	}
	if err := a.events.RecordEvent(ctx, eventType, data); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("event_type", eventType).Msg("failed to record event")
	}
}

// emitProgress calls the progress callback if configured
func (a *Analyzer) emitProgress(step, message string, content any) {
	if a.onProgress != nil {
		a.onProgress(ProgressEvent{
			Step:    step,
			Message: message,
			Content: content,
		})
	}
}
