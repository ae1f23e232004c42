package prompts

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/jonathan/winlab-analyzer/internal/types"
	"gopkg.in/yaml.v3"
)

// Builder merges the consultant persona with a business profile into a
// single completion prompt.
type Builder struct {
	persona     string
	instruction string
}

// NewBuilder returns a Builder using the embedded template.
func NewBuilder() *Builder {
	return newBuilder(DefaultTemplate())
}

// NewBuilderWithPersona returns a Builder whose persona block is replaced
// by the given text. An empty persona keeps the embedded one.
func NewBuilderWithPersona(persona string) *Builder {
	return newBuilder(DefaultTemplate().merge(Template{Persona: persona}))
}

func newBuilder(tmpl *Template) *Builder {
	return &Builder{persona: tmpl.Persona, instruction: tmpl.Instruction}
}

// LoadBuilder returns a Builder customized from path. A .yaml or .yml file
// may set persona and instruction; fields it leaves empty keep the embedded
// text. Any other file is read as plain persona text. An empty path keeps
// the embedded template.
func LoadBuilder(path string) (*Builder, error) {
	if path == "" {
		return NewBuilder(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read persona file %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var override Template
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to parse prompt template %s: %w", path, err)
		}
		return newBuilder(DefaultTemplate().merge(override)), nil
	default:
		return NewBuilderWithPersona(string(data)), nil
	}
}

// Build validates the profile and renders the prompt. Validation failures
// are returned as *types.ValidationError.
func (b *Builder) Build(profile *types.BusinessProfile) (string, error) {
	if err := profile.Validate(); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(b.persona)
	sb.WriteString("\n\n")

	sb.WriteString("## Business Information for Analysis\n")
	fmt.Fprintf(&sb, "- Business Name: %s\n", clean(profile.BusinessName))
	fmt.Fprintf(&sb, "- Industry: %s\n", clean(profile.Industry))
	fmt.Fprintf(&sb, "- Website URL: %s\n", clean(profile.WebsiteURL))
	fmt.Fprintf(&sb, "- Company Size: %s\n", profile.CompanySizeLabel())
	fmt.Fprintf(&sb, "- Primary Revenue Model: %s\n", clean(profile.RevenueModel))

	writeBlock(&sb, "Current Business Processes", profile.BusinessProcesses)
	writeBlock(&sb, "Sales Process", profile.SalesProcess)
	writeBlock(&sb, "Current Pain Points", profile.PainPoints)
	writeBlock(&sb, "Technology Currently In Use", profile.CurrentTechnology)
	writeBlock(&sb, "Business Priorities", formatPriorities(profile.Priorities))
	writeBlock(&sb, "Tools Currently Used", formatTools(profile.Tools))

	sb.WriteString("\n")
	sb.WriteString(b.instruction)

	return sb.String(), nil
}

// writeBlock appends a level-2 block; empty bodies produce nothing.
func writeBlock(sb *strings.Builder, heading, body string) {
	body = strings.TrimSpace(clean(body))
	if body == "" {
		return
	}
	fmt.Fprintf(sb, "\n## %s\n%s\n", heading, body)
}

func formatPriorities(priorities map[string]string) string {
	if len(priorities) == 0 {
		return ""
	}

	areas := make([]string, 0, len(priorities))
	for area := range priorities {
		areas = append(areas, area)
	}
	sort.Strings(areas)

	var sb strings.Builder
	sb.WriteString("The business has indicated the following priorities:\n")
	for _, area := range areas {
		fmt.Fprintf(&sb, "- %s: %s priority\n", area, priorities[area])
	}
	return sb.String()
}

func formatTools(tools *types.Tools) string {
	if tools.IsEmpty() {
		return ""
	}

	crm := strings.TrimSpace(tools.CRM)
	if crm == "" {
		crm = "none"
	}

	var sb strings.Builder
	sb.WriteString("The business currently uses the following tools:\n")
	fmt.Fprintf(&sb, "- CRM System: %s\n", upperFirst(crm))

	var others []string
	for _, tool := range tools.OtherTools {
		if tool = strings.TrimSpace(tool); tool != "" {
			others = append(others, tool)
		}
	}
	if len(others) > 0 {
		fmt.Fprintf(&sb, "- Other Tools: %s\n", strings.Join(others, ", "))
	}
	return sb.String()
}

func upperFirst(s string) string {
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// clean makes user text safe for the JSON request body: invalid UTF-8 is
// replaced and control characters other than newline, carriage return and
// tab are dropped. Everything else is kept verbatim.
func clean(s string) string {
	s = strings.ToValidUTF8(s, "�")
	return strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', '\t':
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
