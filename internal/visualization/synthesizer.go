// Package visualization derives chart data from parsed report sections.
// Extraction is best effort: every builder falls back to defaults rather
// than failing.
package visualization

import "github.com/jonathan/winlab-analyzer/internal/types"

// Synthesizer builds the visualization bundle of a report. It holds no
// per-report state and may be shared between goroutines when its Rand is.
type Synthesizer struct {
	rand Rand
}

// NewSynthesizer creates a Synthesizer. A nil r uses a randomly seeded
// LockedRand.
func NewSynthesizer(r Rand) *Synthesizer {
	if r == nil {
		r = NewRandomRand()
	}
	return &Synthesizer{rand: r}
}

// Build derives all four visualizations from sections.
func (s *Synthesizer) Build(sections types.Sections) types.VisualizationBundle {
	return types.VisualizationBundle{
		OpportunityRadar:       s.OpportunityRadar(sections.Content(string(types.SectionAIOpportunities))),
		ImplementationTimeline: s.ImplementationTimeline(sections.Content(string(types.SectionImplementationRoadmap))),
		ROIProjection:          ROIProjection(),
		SolutionComparison:     s.SolutionComparison(sections),
	}
}
