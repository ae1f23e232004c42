package visualization

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jonathan/winlab-analyzer/internal/types"
)

const maxComparisonRows = 5

var comparisonHeaders = []string{
	"Area",
	"Recommended Solution",
	"Cost Range",
	"Implementation Complexity",
	"Time to Value",
	"Expected ROI",
}

// comparisonSources are tried in order; the first non-empty one is used.
var comparisonSources = []string{
	string(types.SectionSolutionsComparison),
	"ai_solutions",
	string(types.SectionAIOpportunities),
}

var (
	complexityLevels = []string{"Low", "Medium", "High"}
	timeToValue      = []string{"1-2 weeks", "2-4 weeks", "1-2 months", "2-4 months"}
)

var recommendedPattern = regexp.MustCompile(`recommend(?:ed)?\s+([^,.]+)`)

var defaultComparisonRows = [][]string{
	{"Customer Support", "AI Chatbot with Knowledge Base", "$300-500/mo", "Medium", "2-4 weeks", "200-300%"},
	{"Content Creation", "AI Content Generation Suite", "$60-120/mo per user", "Low", "1-2 weeks", "150-250%"},
	{"Sales Process", "AI Sales Assistant", "$30-50/mo per user", "Low", "1-2 weeks", "130-180%"},
	{"Data Analysis", "Predictive Analytics Platform", "$200-600/mo", "High", "1-3 months", "250-400%"},
	{"Decision Support", "AI Recommendation Engine", "$500-1200/mo", "High", "2-4 months", "180-300%"},
}

// SolutionComparison builds the comparison table from the richest solutions
// section available, or returns the default table.
func (s *Synthesizer) SolutionComparison(sections types.Sections) types.ComparisonTable {
	var rows [][]string
	for _, key := range comparisonSources {
		if content := sections.Content(key); strings.TrimSpace(content) != "" {
			rows = s.comparisonRows(content)
			break
		}
	}

	if len(rows) == 0 {
		rows = make([][]string, len(defaultComparisonRows))
		for i, row := range defaultComparisonRows {
			rows[i] = append([]string(nil), row...)
		}
	}

	return types.ComparisonTable{
		Headers: append([]string(nil), comparisonHeaders...),
		Rows:    rows,
	}
}

func (s *Synthesizer) comparisonRows(content string) [][]string {
	items := extractLineItems(content, maxComparisonRows)
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.label,
			recommendedSolution(item),
			s.costRange(),
			complexityLevels[s.rand.Between(0, len(complexityLevels)-1)],
			timeToValue[s.rand.Between(0, len(timeToValue)-1)],
			s.expectedROI(),
		})
	}
	return rows
}

func recommendedSolution(item lineItem) string {
	if m := recommendedPattern.FindStringSubmatch(item.description); m != nil {
		if solution := strings.TrimSpace(m[1]); solution != "" {
			return solution
		}
	}
	return fmt.Sprintf("AI-powered %s System", item.label)
}

func (s *Synthesizer) costRange() string {
	low := s.rand.Between(3, 10) * 50
	high := low + s.rand.Between(2, 8)*50
	return fmt.Sprintf("$%d-%d/mo", low, high)
}

func (s *Synthesizer) expectedROI() string {
	low := s.rand.Between(1, 4) * 50
	high := low + s.rand.Between(1, 3)*50
	return fmt.Sprintf("%d-%d%%", low, high)
}
