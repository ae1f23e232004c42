package visualization

import (
	"fmt"
	"regexp"
	"sync"
	"testing"

	"github.com/jonathan/winlab-analyzer/internal/parsing"
	"github.com/jonathan/winlab-analyzer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lowRand always returns the lower bound and records the requested ranges.
type lowRand struct {
	mu     sync.Mutex
	ranges [][2]int
}

func (r *lowRand) Between(lo, hi int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ranges = append(r.ranges, [2]int{lo, hi})
	return lo
}

const scenarioText = "Intro text\n## AI Opportunities\n1. Chatbots: reduces cost\n2. Content Gen: low complexity boost\n## Next Steps\nDo X."

func TestExtractOpportunities_Scenario(t *testing.T) {
	sections := parsing.Parse(scenarioText)

	for seed := uint64(0); seed < 50; seed++ {
		s := NewSynthesizer(NewRand(seed))
		opportunities := s.ExtractOpportunities(sections.Content("ai_opportunities"))

		require.Len(t, opportunities, 2)
		assert.Equal(t, "Chatbots", opportunities[0].Label)
		assert.Equal(t, "reduces cost", opportunities[0].Description)
		assert.Equal(t, "Content Gen", opportunities[1].Label)

		assert.GreaterOrEqual(t, opportunities[1].Complexity, 30)
		assert.LessOrEqual(t, opportunities[1].Complexity, 50)
		assert.GreaterOrEqual(t, opportunities[0].Complexity, 40)
		assert.LessOrEqual(t, opportunities[0].Complexity, 75)
		for _, o := range opportunities {
			assert.GreaterOrEqual(t, o.Impact, 65)
			assert.LessOrEqual(t, o.Impact, 95)
		}
	}
}

func TestExtractOpportunities_ComplexityBands(t *testing.T) {
	content := "1. Alpha: easy to implement\n2. Bravo: moderate effort needed\n3. Charlie: significant effort\n4. Delta: nothing said\n5. Echo: quick win and high complexity"

	r := &lowRand{}
	opportunities := NewSynthesizer(r).ExtractOpportunities(content)
	require.Len(t, opportunities, 5)

	assert.Equal(t, [][2]int{
		{65, 95}, {30, 50},
		{65, 95}, {50, 70},
		{65, 95}, {70, 90},
		{65, 95}, {40, 75},
		{65, 95}, {30, 50},
	}, r.ranges)
}

func TestExtractOpportunities_StatedImpact(t *testing.T) {
	content := "* **Forecasting**: impact score: 88%, complexity 120\n* **Support Bot** impact=130/100\n* **Routing** impact 70 / 100"

	opportunities := NewSynthesizer(&lowRand{}).ExtractOpportunities(content)
	require.Len(t, opportunities, 3)

	assert.Equal(t, "Forecasting", opportunities[0].Label)
	assert.Equal(t, 88, opportunities[0].Impact)
	assert.Equal(t, 40, opportunities[0].Complexity)
	assert.Equal(t, "Support Bot", opportunities[1].Label)
	assert.Equal(t, 100, opportunities[1].Impact)
	assert.Equal(t, 70, opportunities[2].Impact)
}

func TestExtractOpportunities_NumbersOutsideScaleUseBands(t *testing.T) {
	tests := []struct {
		name           string
		content        string
		wantImpact     [2]int
		wantComplexity [2]int
	}{
		{
			name:           "duration after complexity",
			content:        "1. Chatbots: high complexity 6-12 months rollout",
			wantImpact:     [2]int{65, 95},
			wantComplexity: [2]int{70, 90},
		},
		{
			name:           "five point ratings",
			content:        "1. Forecasting: Impact: 4/5, Complexity: 3/5",
			wantImpact:     [2]int{65, 95},
			wantComplexity: [2]int{40, 75},
		},
		{
			name:           "bare number",
			content:        "1. Support Bot: impact=3",
			wantImpact:     [2]int{65, 95},
			wantComplexity: [2]int{40, 75},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &lowRand{}
			opportunities := NewSynthesizer(r).ExtractOpportunities(tt.content)
			require.Len(t, opportunities, 1)
			assert.Equal(t, [][2]int{tt.wantImpact, tt.wantComplexity}, r.ranges)
			assert.Equal(t, tt.wantImpact[0], opportunities[0].Impact)
			assert.Equal(t, tt.wantComplexity[0], opportunities[0].Complexity)
		})
	}
}

func TestExtractOpportunities_SkipsShortLabelsAndCaps(t *testing.T) {
	content := "1. AI: too short\n2. One: a\n3. Two: b\n4. Three: c\n5. Four: d\n6. Five: e\n7. Six: f\n8. Seven: g"

	opportunities := NewSynthesizer(NewRand(1)).ExtractOpportunities(content)
	require.Len(t, opportunities, 6)
	assert.Equal(t, "One", opportunities[0].Label)
	assert.Equal(t, "Six", opportunities[5].Label)
}

func TestOpportunityRadar_DefaultsWhenTooFew(t *testing.T) {
	inputs := []string{
		"",
		"No list here at all.",
		"1. Chatbots: reduces cost\n2. Content Gen: low complexity boost",
	}

	for _, input := range inputs {
		chart := NewSynthesizer(NewRand(7)).OpportunityRadar(input)
		assert.Equal(t, defaultOpportunityLabels, chart.Labels)

		impact, ok := chart.Dataset(ImpactDatasetLabel)
		require.True(t, ok)
		for _, v := range impact.Data {
			assert.GreaterOrEqual(t, v, 65)
			assert.LessOrEqual(t, v, 95)
		}
		complexity, ok := chart.Dataset(ComplexityDatasetLabel)
		require.True(t, ok)
		for _, v := range complexity.Data {
			assert.GreaterOrEqual(t, v, 40)
			assert.LessOrEqual(t, v, 75)
		}
	}
}

func TestOpportunityRadar_Properties(t *testing.T) {
	inputs := []string{
		"",
		scenarioText,
		"1. Alpha: a\n2. Bravo: b\n3. Charlie: c",
		"* Alpha\n* Bravo\n* Charlie\n* Delta\n* Echo\n* Foxtrot\n* Golf\n* Hotel",
		"1. Huge: impact 999% complexity 500\n2. Negative: impact -5%\n3. Normal: fine",
	}

	for i, input := range inputs {
		for seed := uint64(0); seed < 20; seed++ {
			chart := NewSynthesizer(NewRand(seed)).OpportunityRadar(input)

			assert.GreaterOrEqual(t, len(chart.Labels), 3, "input %d", i)
			assert.LessOrEqual(t, len(chart.Labels), 6, "input %d", i)
			require.Len(t, chart.Datasets, 2)
			for _, ds := range chart.Datasets {
				assert.Len(t, ds.Data, len(chart.Labels))
				for _, v := range ds.Data {
					assert.GreaterOrEqual(t, v, 0)
					assert.LessOrEqual(t, v, 100)
				}
			}
		}
	}
}

func TestImplementationTimeline_ThreePhases(t *testing.T) {
	content := "Quick Wins:\n- Launch FAQ chatbot\n- Automate invoices\n" +
		"Medium Term: Integrate CRM data. Train the team on new tools.\n" +
		"Long Term:\n- Predictive demand planning"

	timeline := NewSynthesizer(NewRand(1)).ImplementationTimeline(content)
	require.Len(t, timeline.Phases, 3)

	assert.Equal(t, types.TimelinePhase{
		Name:     "Quick Wins",
		Timeline: "1-4 weeks",
		Items:    []string{"Launch FAQ chatbot", "Automate invoices"},
		Color:    "#4CAF50",
	}, timeline.Phases[0])
	assert.Equal(t, types.TimelinePhase{
		Name:     "Phase 1",
		Timeline: "1-3 months",
		Items:    []string{"Integrate CRM data.", "Train the team on new tools."},
		Color:    "#2196F3",
	}, timeline.Phases[1])
	assert.Equal(t, types.TimelinePhase{
		Name:     "Phase 2",
		Timeline: "3-6 months",
		Items:    []string{"Predictive demand planning"},
		Color:    "#9C27B0",
	}, timeline.Phases[2])
}

func TestImplementationTimeline_VisionFallback(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		wantPhases int
	}{
		{"empty roadmap", "", 1},
		{"unstructured text", "We will figure it out as we go.", 1},
		{"quick wins only", "Quick Wins:\n- Set up shared inbox rules", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			timeline := NewSynthesizer(NewRand(1)).ImplementationTimeline(tt.content)
			require.Len(t, timeline.Phases, tt.wantPhases)

			last := timeline.Phases[len(timeline.Phases)-1]
			assert.Equal(t, "Long-term Vision", last.Name)
			assert.Equal(t, "6+ months", last.Timeline)
			assert.Equal(t, "#FF9800", last.Color)
			assert.Len(t, last.Items, 4)
		})
	}
}

func TestImplementationTimeline_TriggerPhrases(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantPhase string
		wantItem  string
	}{
		{"quick wins", "Quick Wins:\n- Launch FAQ bot", "Quick Wins", "Launch FAQ bot"},
		{"phase 1", "Phase 1:\n- Launch FAQ bot", "Quick Wins", "Launch FAQ bot"},
		{"first steps", "First Steps:\n- Launch FAQ bot", "Quick Wins", "Launch FAQ bot"},
		{"initial phase", "Initial Phase:\n- Launch FAQ bot", "Quick Wins", "Launch FAQ bot"},
		{"weeks range", "1-4 weeks:\n- Launch FAQ bot", "Quick Wins", "Launch FAQ bot"},
		{"days range sentence", "1-10 days: Launch FAQ bot today.", "Quick Wins", "Launch FAQ bot today."},
		{"short term", "Short Term:\n- Launch FAQ bot", "Quick Wins", "Launch FAQ bot"},

		{"phase 2", "Phase 2:\n- Integrate CRM data", "Phase 1", "Integrate CRM data"},
		{"second step", "Second Step:\n- Integrate CRM data", "Phase 1", "Integrate CRM data"},
		{"medium term", "Medium Term:\n- Integrate CRM data", "Phase 1", "Integrate CRM data"},
		{"medium phase", "Medium Phase:\n- Integrate CRM data", "Phase 1", "Integrate CRM data"},
		{"months range", "2-3 months:\n- Integrate CRM data", "Phase 1", "Integrate CRM data"},
		{"month range singular", "2-3 month:\n- Integrate CRM data", "Phase 1", "Integrate CRM data"},

		{"phase 3", "Phase 3:\n- Predictive planning", "Phase 2", "Predictive planning"},
		{"long term", "Long Term:\n- Predictive planning", "Phase 2", "Predictive planning"},
		{"final phase", "Final Phase:\n- Predictive planning", "Phase 2", "Predictive planning"},
		{"third step", "Third Step:\n- Predictive planning", "Phase 2", "Predictive planning"},
		{"long-term vision", "Long-Term Vision:\n- Predictive planning", "Phase 2", "Predictive planning"},
		{"six plus months", "6+ months:\n- Predictive planning", "Phase 2", "Predictive planning"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			timeline := NewSynthesizer(NewRand(1)).ImplementationTimeline(tt.content)

			require.Len(t, timeline.Phases, 2)
			assert.Equal(t, tt.wantPhase, timeline.Phases[0].Name)
			assert.Equal(t, []string{tt.wantItem}, timeline.Phases[0].Items)
			assert.Equal(t, "Long-term Vision", timeline.Phases[1].Name)
		})
	}
}

func TestImplementationTimeline_EmptyBlockOmitted(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"block cut by next phase", "Quick Wins:\nPhase 2:\n- Integrate CRM data"},
		{"only short sentences", "Quick Wins: Soon.\nMedium Term:\n- Integrate CRM data"},
		{"nothing after trigger", "Medium Term:\n- Integrate CRM data\nLong Term:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			timeline := NewSynthesizer(NewRand(1)).ImplementationTimeline(tt.content)

			names := make([]string, len(timeline.Phases))
			for i, p := range timeline.Phases {
				names[i] = p.Name
			}
			assert.Equal(t, []string{"Phase 1", "Long-term Vision"}, names)
			assert.Equal(t, []string{"Integrate CRM data"}, timeline.Phases[0].Items)
		})
	}
}

func TestImplementationTimeline_CapsItems(t *testing.T) {
	content := "Quick Wins:\n- one task\n- two task\n- three task\n- four task\n- five task\n- six task\n- seven task"

	timeline := NewSynthesizer(NewRand(1)).ImplementationTimeline(content)
	require.NotEmpty(t, timeline.Phases)
	assert.Equal(t, []string{"one task", "two task", "three task", "four task", "five task"}, timeline.Phases[0].Items)
}

func TestImplementationTimeline_ShortSentencesDropped(t *testing.T) {
	content := "Quick Wins: Go now. Automate the weekly report."

	timeline := NewSynthesizer(NewRand(1)).ImplementationTimeline(content)
	require.NotEmpty(t, timeline.Phases)
	assert.Equal(t, []string{"Automate the weekly report."}, timeline.Phases[0].Items)
}

func TestImplementationTimeline_VisionItemsNotShared(t *testing.T) {
	s := NewSynthesizer(NewRand(1))
	first := s.ImplementationTimeline("")
	first.Phases[0].Items[0] = "mutated"

	second := s.ImplementationTimeline("")
	assert.Equal(t, "Full AI-driven Decision Support System", second.Phases[0].Items[0])
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("First sentence here. Second one!  Third?\ntiny.")
	assert.Equal(t, []string{"First sentence here.", "Second one!", "Third?", "tiny."}, got)

	assert.Empty(t, splitSentences("   "))
	assert.Equal(t, []string{"no terminator"}, splitSentences("no terminator"))
}

func TestROIProjection(t *testing.T) {
	chart := ROIProjection()

	assert.Equal(t, []string{"Month 1", "Month 2", "Month 3", "Month 6", "Month 9", "Month 12"}, chart.Labels)

	investment, ok := chart.Dataset(InvestmentDatasetLabel)
	require.True(t, ok)
	returns, ok := chart.Dataset(ReturnDatasetLabel)
	require.True(t, ok)
	net, ok := chart.Dataset(NetROIDatasetLabel)
	require.True(t, ok)

	require.Len(t, investment.Data, 6)
	require.Len(t, returns.Data, 6)
	require.Len(t, net.Data, 6)
	for i := range investment.Data {
		assert.Equal(t, returns.Data[i]-investment.Data[i], net.Data[i])
	}
	assert.Equal(t, []int{-5000, -6000, -3000, 7000, 22000, 45000}, net.Data)

	for _, ds := range chart.Datasets {
		assert.True(t, ds.Fill)
	}
}

func TestSolutionComparison_Defaults(t *testing.T) {
	table := NewSynthesizer(NewRand(1)).SolutionComparison(parsing.Parse("no sections here"))

	assert.Equal(t, comparisonHeaders, table.Headers)
	assert.Equal(t, defaultComparisonRows, table.Rows)
}

func TestSolutionComparison_Extracted(t *testing.T) {
	sections := types.Sections{
		{Key: "solutions_comparison", Content: "1. Customer Support: we recommend Zendesk AI, for tickets\n2. Marketing: automate campaigns"},
	}

	table := NewSynthesizer(&lowRand{}).SolutionComparison(sections)
	require.Len(t, table.Rows, 2)

	assert.Equal(t, []string{"Customer Support", "Zendesk AI", "$150-250/mo", "Low", "1-2 weeks", "50-100%"}, table.Rows[0])
	assert.Equal(t, "AI-powered Marketing System", table.Rows[1][1])
}

func TestSolutionComparison_SourcePriority(t *testing.T) {
	sections := types.Sections{
		{Key: "ai_opportunities", Content: "1. Opportunities Row: x"},
		{Key: "ai_solutions", Content: "1. Solutions Row: y"},
		{Key: "solutions_comparison", Content: "  "},
	}

	table := NewSynthesizer(NewRand(1)).SolutionComparison(sections)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Solutions Row", table.Rows[0][0])

	table = NewSynthesizer(NewRand(1)).SolutionComparison(sections[:1])
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Opportunities Row", table.Rows[0][0])
}

func TestSolutionComparison_RandomBands(t *testing.T) {
	costPattern := regexp.MustCompile(`^\$(\d+)-(\d+)/mo$`)
	roiPattern := regexp.MustCompile(`^(\d+)-(\d+)%$`)

	var content string
	for i := 1; i <= 7; i++ {
		content += fmt.Sprintf("%d. Area Number %d: description\n", i, i)
	}
	sections := types.Sections{{Key: "ai_opportunities", Content: content}}

	for seed := uint64(0); seed < 30; seed++ {
		table := NewSynthesizer(NewRand(seed)).SolutionComparison(sections)
		require.Len(t, table.Rows, 5)
		for _, row := range table.Rows {
			require.Len(t, row, 6)

			var low, high int
			require.Regexp(t, costPattern, row[2])
			_, err := fmt.Sscanf(row[2], "$%d-%d/mo", &low, &high)
			require.NoError(t, err)
			assert.Equal(t, 0, low%50)
			assert.GreaterOrEqual(t, low, 150)
			assert.LessOrEqual(t, low, 500)
			assert.GreaterOrEqual(t, high-low, 100)
			assert.LessOrEqual(t, high-low, 400)

			assert.Contains(t, complexityLevels, row[3])
			assert.Contains(t, timeToValue, row[4])

			require.Regexp(t, roiPattern, row[5])
			_, err = fmt.Sscanf(row[5], "%d-%d%%", &low, &high)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, low, 50)
			assert.LessOrEqual(t, low, 200)
			assert.GreaterOrEqual(t, high-low, 50)
			assert.LessOrEqual(t, high-low, 150)
		}
	}
}

func TestBuild_AllVisualizationsPresent(t *testing.T) {
	bundle := NewSynthesizer(NewRand(3)).Build(parsing.Parse(scenarioText))

	assert.Len(t, bundle.OpportunityRadar.Labels, 6)
	assert.NotEmpty(t, bundle.ImplementationTimeline.Phases)
	assert.Len(t, bundle.ROIProjection.Labels, 6)
	assert.Len(t, bundle.SolutionComparison.Rows, 2)
}

func TestBuild_SameSeedSameBundle(t *testing.T) {
	sections := parsing.Parse(scenarioText)

	first := NewSynthesizer(NewRand(42)).Build(sections)
	second := NewSynthesizer(NewRand(42)).Build(sections)
	assert.Equal(t, first, second)
}

func TestBuild_ConcurrentUse(t *testing.T) {
	s := NewSynthesizer(nil)
	sections := parsing.Parse(scenarioText)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bundle := s.Build(sections)
			assert.Len(t, bundle.ROIProjection.Datasets, 3)
		}()
	}
	wg.Wait()
}

func TestLockedRand_Between(t *testing.T) {
	r := NewRand(9)
	for i := 0; i < 200; i++ {
		v := r.Between(3, 5)
		assert.GreaterOrEqual(t, v, 3)
		assert.LessOrEqual(t, v, 5)
	}
	assert.Equal(t, 4, r.Between(4, 4))

	v := r.Between(10, 1)
	assert.GreaterOrEqual(t, v, 1)
	assert.LessOrEqual(t, v, 10)
}
