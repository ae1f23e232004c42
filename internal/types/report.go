//nolint:revive // types is a standard Go package name pattern
package types

import "time"

// CanonicalSectionKey names one of the fixed buckets a report is organized into.
type CanonicalSectionKey string

// Canonical section keys, in report order.
const (
	SectionExecutiveSummary      CanonicalSectionKey = "executive_summary"
	SectionBusinessAnalysis      CanonicalSectionKey = "business_analysis"
	SectionAIOpportunities       CanonicalSectionKey = "ai_opportunities"
	SectionImplementationRoadmap CanonicalSectionKey = "implementation_roadmap"
	SectionROIProjection         CanonicalSectionKey = "roi_projection"
	SectionSolutionsComparison   CanonicalSectionKey = "solutions_comparison"
	SectionNextSteps             CanonicalSectionKey = "next_steps"
)

// CanonicalSectionKeys lists every canonical key in report order.
func CanonicalSectionKeys() []CanonicalSectionKey {
	return []CanonicalSectionKey{
		SectionExecutiveSummary,
		SectionBusinessAnalysis,
		SectionAIOpportunities,
		SectionImplementationRoadmap,
		SectionROIProjection,
		SectionSolutionsComparison,
		SectionNextSteps,
	}
}

// RawCompletion is the unstructured text returned by the completion service.
type RawCompletion struct {
	Text         string `json:"text"`
	FinishReason string `json:"finish_reason,omitempty"`
	Model        string `json:"model,omitempty"`
}

// Section is one heading-delimited block of the completion text.
type Section struct {
	Key     string `json:"key"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Sections is an ordered section collection. Order is document order;
// lookups are by key.
type Sections []Section

// Get returns the section stored under key.
func (s Sections) Get(key string) (Section, bool) {
	for _, sec := range s {
		if sec.Key == key {
			return sec, true
		}
	}
	return Section{}, false
}

// Has reports whether a section is stored under key.
func (s Sections) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// Content returns the body of the section stored under key, or "".
func (s Sections) Content(key string) string {
	sec, _ := s.Get(key)
	return sec.Content
}

// Put stores sec under its key. An existing entry is overwritten in place,
// keeping its first-seen position.
func (s Sections) Put(sec Section) Sections {
	for i := range s {
		if s[i].Key == sec.Key {
			s[i] = sec
			return s
		}
	}
	return append(s, sec)
}

// Keys returns the section keys in order.
func (s Sections) Keys() []string {
	keys := make([]string, len(s))
	for i, sec := range s {
		keys[i] = sec.Key
	}
	return keys
}

// Dataset is one series of a Chart.js style chart.
type Dataset struct {
	Label           string `json:"label"`
	Data            []int  `json:"data"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
	BorderColor     string `json:"borderColor,omitempty"`
	Fill            bool   `json:"fill,omitempty"`
}

// ChartData is a labeled set of series, used for the radar and ROI charts.
type ChartData struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Dataset returns the series with the given label.
func (c ChartData) Dataset(label string) (Dataset, bool) {
	for _, ds := range c.Datasets {
		if ds.Label == label {
			return ds, true
		}
	}
	return Dataset{}, false
}

// TimelinePhase is one roadmap phase.
type TimelinePhase struct {
	Name     string   `json:"name"`
	Timeline string   `json:"timeline"`
	Items    []string `json:"items"`
	Color    string   `json:"color"`
}

// Timeline is the implementation roadmap chart.
type Timeline struct {
	Phases []TimelinePhase `json:"phases"`
}

// ComparisonTable is the solution comparison table.
type ComparisonTable struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// VisualizationBundle holds the four chart structures derived from a report.
type VisualizationBundle struct {
	OpportunityRadar       ChartData       `json:"opportunity_radar"`
	ImplementationTimeline Timeline        `json:"implementation_timeline"`
	ROIProjection          ChartData       `json:"roi_projection"`
	SolutionComparison     ComparisonTable `json:"solution_comparison"`
}

// Report is the finished analysis. It is never mutated after assembly.
type Report struct {
	RawText        string              `json:"raw_text"`
	Sections       Sections            `json:"sections"`
	Visualizations VisualizationBundle `json:"visualizations"`
	BusinessName   string              `json:"business_name"`
	Industry       string              `json:"industry"`
	GeneratedAt    time.Time           `json:"generated_at"`
}
