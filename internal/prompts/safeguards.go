package prompts

import (
	"regexp"

	"github.com/jonathan/winlab-analyzer/internal/types"
)

// InjectionFinding flags profile text that reads like instructions to the model.
type InjectionFinding struct {
	Field  string
	Reason string
}

// injectionPatterns are regex patterns for obvious injection attempts.
var injectionPatterns = []struct {
	pattern *regexp.Regexp
	reason  string
}{
	{regexp.MustCompile(`(?i)ignore\s+(all\s+)?(previous|prior|above)\s+instructions?`), "asks to ignore previous instructions"},
	{regexp.MustCompile(`(?i)disregard\s+(all\s+)?(previous|prior|above)`), "asks to disregard earlier text"},
	{regexp.MustCompile(`(?i)forget\s+(all\s+)?(previous|prior|everything)`), "asks to forget earlier text"},
	{regexp.MustCompile(`(?i)\bsystem\s+prompt\b`), "mentions the system prompt"},
	{regexp.MustCompile(`(?i)new\s+instructions?:`), "introduces new instructions"},
}

// CheckProfile scans the free-text fields of a profile for obvious prompt
// injection. It only reports; the prompt is built unchanged.
func CheckProfile(profile *types.BusinessProfile) []InjectionFinding {
	if profile == nil {
		return nil
	}

	fields := []struct {
		name  string
		value string
	}{
		{"businessName", profile.BusinessName},
		{"industry", profile.Industry},
		{"revenueModel", profile.RevenueModel},
		{"salesProcess", profile.SalesProcess},
		{"businessProcesses", profile.BusinessProcesses},
		{"painPoints", profile.PainPoints},
		{"currentTechnology", profile.CurrentTechnology},
	}

	var findings []InjectionFinding
	for _, f := range fields {
		for _, p := range injectionPatterns {
			if p.pattern.MatchString(f.value) {
				findings = append(findings, InjectionFinding{Field: f.name, Reason: p.reason})
				break
			}
		}
	}
	return findings
}
