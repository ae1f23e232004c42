package visualization

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jonathan/winlab-analyzer/internal/types"
)

// Radar dataset labels.
const (
	ImpactDatasetLabel     = "AI Impact Potential"
	ComplexityDatasetLabel = "Implementation Complexity"
)

const (
	maxOpportunities = 6
	minOpportunities = 3
	minLabelLength   = 3
)

// scoreBand is an inclusive range scores are drawn from.
type scoreBand struct {
	lo, hi int
}

var (
	impactBand     = scoreBand{65, 95}
	complexityBand = scoreBand{40, 75}
)

// complexitySignals narrow the complexity band when a description mentions
// them. The first matching signal wins.
var complexitySignals = []struct {
	pattern *regexp.Regexp
	band    scoreBand
}{
	{regexp.MustCompile(`(?i)low complexity|easy to implement|quick win`), scoreBand{30, 50}},
	{regexp.MustCompile(`(?i)medium complexity|moderate effort`), scoreBand{50, 70}},
	{regexp.MustCompile(`(?i)high complexity|significant effort`), scoreBand{70, 90}},
}

var (
	// lineItemPattern matches "1. Label: description" and "* **Label** description" items.
	lineItemPattern = regexp.MustCompile(`(?m)^[ \t]*(?:\d+\.\s|\*\s)(?:\*\*)?([^*:\r\n]+)(?:\*\*)?:?\s?([^*\r\n]*)`)

	// statedImpact only accepts scores written on a 0-100 scale ("impact: 85%",
	// "impact score 70/100"). Other numbers near "impact" are ratings on
	// smaller scales or durations and fall back to the band.
	statedImpact = regexp.MustCompile(`(?i)\bimpact(?:\s+score)?\s*[:=]?\s*(\d{1,3})\s*(?:%|/\s*100\b)`)
)

var defaultOpportunityLabels = []string{
	"Customer Support",
	"Content Creation",
	"Sales Process",
	"Data Analysis",
	"Decision Making",
	"Marketing",
}

// Opportunity is one scored area of the radar chart.
type Opportunity struct {
	Label       string
	Description string
	Impact      int
	Complexity  int
}

// lineItem is a label and description lifted from a list line.
type lineItem struct {
	label       string
	description string
}

// extractLineItems returns the usable list items of content, at most limit.
func extractLineItems(content string, limit int) []lineItem {
	var items []lineItem
	for _, m := range lineItemPattern.FindAllStringSubmatch(content, -1) {
		label := strings.TrimSpace(m[1])
		if len(label) < minLabelLength {
			continue
		}
		items = append(items, lineItem{
			label:       label,
			description: strings.TrimSpace(m[2]),
		})
		if len(items) >= limit {
			break
		}
	}
	return items
}

// ExtractOpportunities scores the list items of an opportunities section.
// It returns what was found, before any default substitution.
func (s *Synthesizer) ExtractOpportunities(content string) []Opportunity {
	items := extractLineItems(content, maxOpportunities)
	opportunities := make([]Opportunity, 0, len(items))
	for _, item := range items {
		impact := s.impactScore(item.description)
		complexity := s.complexityScore(item.description)
		opportunities = append(opportunities, Opportunity{
			Label:       item.label,
			Description: item.description,
			Impact:      impact,
			Complexity:  complexity,
		})
	}
	return opportunities
}

// OpportunityRadar builds the radar chart. Fewer than three extracted areas
// are replaced by the default business functions with fresh scores.
func (s *Synthesizer) OpportunityRadar(content string) types.ChartData {
	opportunities := s.ExtractOpportunities(content)
	if len(opportunities) < minOpportunities {
		opportunities = s.defaultOpportunities()
	}

	labels := make([]string, len(opportunities))
	impact := make([]int, len(opportunities))
	complexity := make([]int, len(opportunities))
	for i, o := range opportunities {
		labels[i] = o.Label
		impact[i] = o.Impact
		complexity[i] = o.Complexity
	}

	return types.ChartData{
		Labels: labels,
		Datasets: []types.Dataset{
			{
				Label:           ImpactDatasetLabel,
				Data:            impact,
				BackgroundColor: "rgba(74, 108, 247, 0.2)",
				BorderColor:     "rgba(74, 108, 247, 1)",
			},
			{
				Label:           ComplexityDatasetLabel,
				Data:            complexity,
				BackgroundColor: "rgba(142, 68, 173, 0.2)",
				BorderColor:     "rgba(142, 68, 173, 1)",
			},
		},
	}
}

func (s *Synthesizer) defaultOpportunities() []Opportunity {
	opportunities := make([]Opportunity, len(defaultOpportunityLabels))
	for i, label := range defaultOpportunityLabels {
		opportunities[i] = Opportunity{
			Label:      label,
			Impact:     s.draw(impactBand),
			Complexity: s.draw(complexityBand),
		}
	}
	return opportunities
}

func (s *Synthesizer) impactScore(description string) int {
	if n, ok := statedScore(statedImpact, description); ok {
		return n
	}
	return s.draw(impactBand)
}

func (s *Synthesizer) complexityScore(description string) int {
	band := complexityBand
	for _, signal := range complexitySignals {
		if signal.pattern.MatchString(description) {
			band = signal.band
			break
		}
	}
	return s.draw(band)
}

func (s *Synthesizer) draw(band scoreBand) int {
	return clampScore(s.rand.Between(band.lo, band.hi))
}

// statedScore reads an explicit score from text, clamped to [0,100].
func statedScore(pattern *regexp.Regexp, text string) (int, bool) {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return clampScore(n), true
}

func clampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
