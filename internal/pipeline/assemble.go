// Package pipeline turns a business profile into a finished report.
package pipeline

import (
	"time"

	"github.com/jonathan/winlab-analyzer/internal/types"
)

// Assemble composes a report from the outputs of the earlier stages. It does
// no validation of its own. generatedAt is stored in UTC without a
// monotonic reading so the report survives a JSON round trip unchanged.
func Assemble(
	profile *types.BusinessProfile,
	completion *types.RawCompletion,
	sections types.Sections,
	visualizations types.VisualizationBundle,
	generatedAt time.Time,
) *types.Report {
	report := &types.Report{
		Sections:       sections,
		Visualizations: visualizations,
		GeneratedAt:    generatedAt.UTC().Round(0),
	}
	if completion != nil {
		report.RawText = completion.Text
	}
	if profile != nil {
		report.BusinessName = profile.BusinessName
		report.Industry = profile.Industry
	}
	return report
}
