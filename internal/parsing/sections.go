// Package parsing splits completion text into keyed report sections.
package parsing

import (
	"regexp"
	"strings"

	"github.com/jonathan/winlab-analyzer/internal/types"
)

const executiveSummaryTitle = "Executive Summary"

var (
	// headingPattern matches level-2 and level-3 markdown headings at line start.
	headingPattern = regexp.MustCompile(`(?m)^[ \t]*#{2,3}[ \t]+(.+?)[ \t]*$`)
	keyStripper    = regexp.MustCompile(`[^a-z0-9_\s]`)
	whitespaceRun  = regexp.MustCompile(`\s+`)
)

// sectionAliases maps each canonical key to the derived keys the model is
// known to use instead, in lookup order.
var sectionAliases = []struct {
	canonical types.CanonicalSectionKey
	aliases   []string
}{
	{types.SectionBusinessAnalysis, []string{"business_assessment", "current_state", "business_evaluation"}},
	{types.SectionAIOpportunities, []string{"ai_implementation_opportunities", "opportunity_areas", "ai_solutions"}},
	{types.SectionImplementationRoadmap, []string{"implementation_plan", "roadmap", "deployment_strategy"}},
	{types.SectionROIProjection, []string{"roi_analysis", "return_on_investment", "financial_impact"}},
	{types.SectionSolutionsComparison, []string{"ai_solutions_comparison", "tool_comparison", "technology_options"}},
	{types.SectionNextSteps, []string{"recommended_next_steps", "action_items", "getting_started"}},
}

// Parse splits text on its headings. The text before the first heading is
// always returned as executive_summary, even when empty. Parse never fails.
func Parse(text string) types.Sections {
	matches := headingPattern.FindAllStringSubmatchIndex(text, -1)

	preambleEnd := len(text)
	if len(matches) > 0 {
		preambleEnd = matches[0][0]
	}

	sections := types.Sections{{
		Key:     string(types.SectionExecutiveSummary),
		Title:   executiveSummaryTitle,
		Content: strings.TrimSpace(text[:preambleEnd]),
	}}

	for i, m := range matches {
		title := strings.TrimSpace(text[m[2]:m[3]])

		bodyEnd := len(text)
		if i+1 < len(matches) {
			bodyEnd = matches[i+1][0]
		}

		sections = sections.Put(types.Section{
			Key:     DeriveKey(title),
			Title:   title,
			Content: strings.TrimSpace(text[m[1]:bodyEnd]),
		})
	}

	return resolveAliases(sections)
}

// DeriveKey lowercases title, drops everything outside [a-z0-9_] and
// whitespace, and joins the remaining words with underscores.
func DeriveKey(title string) string {
	key := strings.ToLower(strings.TrimSpace(title))
	key = keyStripper.ReplaceAllString(key, "")
	key = strings.TrimSpace(key)
	return whitespaceRun.ReplaceAllString(key, "_")
}

// resolveAliases copies the first present alias of every missing canonical
// section under the canonical key. The alias entry is left in place.
func resolveAliases(sections types.Sections) types.Sections {
	for _, entry := range sectionAliases {
		canonical := string(entry.canonical)
		if sections.Has(canonical) {
			continue
		}
		for _, alias := range entry.aliases {
			if sec, ok := sections.Get(alias); ok {
				sections = append(sections, types.Section{
					Key:     canonical,
					Title:   sec.Title,
					Content: sec.Content,
				})
				break
			}
		}
	}
	return sections
}
