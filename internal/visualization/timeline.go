package visualization

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/jonathan/winlab-analyzer/internal/types"
)

const (
	maxPhaseItems     = 5
	minPhases         = 3
	minSentenceLength = 10
)

// phaseRule locates one roadmap phase. A block starts after the first match
// of start and runs until the first match of end, or to the end of the
// roadmap when end is nil.
type phaseRule struct {
	start    *regexp.Regexp
	end      *regexp.Regexp
	name     string
	timeline string
	color    string
}

var phaseRules = []phaseRule{
	{
		start:    regexp.MustCompile(`(?is)(?:Quick Win|Phase 1|First Step|Initial Phase|1-\d+\s+(?:day|week)|Short Term)s?[:\-]\s*`),
		end:      regexp.MustCompile(`(?i)(?:Phase|Step|Long|Medium|\d+-\d+\s+(?:month|day|week))`),
		name:     "Quick Wins",
		timeline: "1-4 weeks",
		color:    "#4CAF50",
	},
	{
		start:    regexp.MustCompile(`(?is)(?:Phase 2|Second Step|Medium Term|Medium Phase|\d+-\d+\s+(?:months?|week))[:\-]\s*`),
		end:      regexp.MustCompile(`(?i)(?:Phase|Step|Long)`),
		name:     "Phase 1",
		timeline: "1-3 months",
		color:    "#2196F3",
	},
	{
		start:    regexp.MustCompile(`(?is)(?:Phase 3|Long Term|Final Phase|Third Step|Long-Term Vision|[6-9]\+\s+months?)[:\-]\s*`),
		name:     "Phase 2",
		timeline: "3-6 months",
		color:    "#9C27B0",
	},
}

// visionPhase is appended when fewer than three phases were found.
var visionPhase = types.TimelinePhase{
	Name:     "Long-term Vision",
	Timeline: "6+ months",
	Items: []string{
		"Full AI-driven Decision Support System",
		"Autonomous Process Optimization",
		"Predictive Business Intelligence",
		"Advanced Customer Experience Personalization",
	},
	Color: "#FF9800",
}

var bulletItemPattern = regexp.MustCompile(`(?m)^[ \t]*(?:-|\*|\d+\.)[ \t]*(.*)$`)

// ImplementationTimeline builds the roadmap chart from an implementation
// roadmap section. Phases without items are left out.
func (s *Synthesizer) ImplementationTimeline(content string) types.Timeline {
	phases := make([]types.TimelinePhase, 0, len(phaseRules)+1)
	for _, rule := range phaseRules {
		block, ok := rule.block(content)
		if !ok {
			continue
		}
		items := phaseItems(block)
		if len(items) == 0 {
			continue
		}
		phases = append(phases, types.TimelinePhase{
			Name:     rule.name,
			Timeline: rule.timeline,
			Items:    items,
			Color:    rule.color,
		})
	}

	if len(phases) < minPhases {
		vision := visionPhase
		vision.Items = append([]string(nil), visionPhase.Items...)
		phases = append(phases, vision)
	}

	return types.Timeline{Phases: phases}
}

func (r phaseRule) block(content string) (string, bool) {
	loc := r.start.FindStringIndex(content)
	if loc == nil {
		return "", false
	}
	block := content[loc[1]:]
	if r.end != nil {
		if end := r.end.FindStringIndex(block); end != nil {
			block = block[:end[0]]
		}
	}
	return block, true
}

// phaseItems returns the bullet items of block, or its longer sentences
// when it has no bullets.
func phaseItems(block string) []string {
	var items []string
	for _, m := range bulletItemPattern.FindAllStringSubmatch(block, -1) {
		if item := strings.TrimSpace(m[1]); item != "" {
			items = append(items, item)
		}
	}

	if len(items) == 0 {
		for _, sentence := range splitSentences(block) {
			if len(sentence) > minSentenceLength {
				items = append(items, sentence)
			}
		}
	}

	if len(items) > maxPhaseItems {
		items = items[:maxPhaseItems]
	}
	return items
}

// splitSentences breaks text at whitespace that follows '.', '!' or '?'.
func splitSentences(text string) []string {
	var (
		sentences []string
		start     int
		prev      rune
	)
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		if unicode.IsSpace(runes[i]) && (prev == '.' || prev == '!' || prev == '?') {
			if sentence := strings.TrimSpace(string(runes[start:i])); sentence != "" {
				sentences = append(sentences, sentence)
			}
			for i < len(runes) && unicode.IsSpace(runes[i]) {
				i++
			}
			start = i
			if i < len(runes) {
				prev = runes[i]
			}
			continue
		}
		prev = runes[i]
	}
	if sentence := strings.TrimSpace(string(runes[start:])); sentence != "" {
		sentences = append(sentences, sentence)
	}
	return sentences
}
