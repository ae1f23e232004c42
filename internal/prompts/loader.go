// Package prompts loads the embedded LLM prompt templates and builds the
// business analysis prompt sent to the completion service.
package prompts

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed analysis.yaml
var analysisYAML []byte

// Template holds the fixed text around the business information block.
type Template struct {
	Persona     string `yaml:"persona"`
	Instruction string `yaml:"instruction"`
}

var defaultTemplate = sync.OnceValues(func() (*Template, error) {
	return ParseTemplate(analysisYAML)
})

// DefaultTemplate returns the embedded analysis template. It panics if the
// embedded file is broken, which the package tests catch.
func DefaultTemplate() *Template {
	tmpl, err := defaultTemplate()
	if err != nil {
		panic(fmt.Sprintf("failed to load embedded prompt template: %v", err))
	}
	cp := *tmpl
	return &cp
}

// ParseTemplate reads a YAML template. Both persona and instruction must be
// present.
func ParseTemplate(data []byte) (*Template, error) {
	var tmpl Template
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("failed to parse prompt template: %w", err)
	}
	tmpl.Persona = strings.TrimSpace(tmpl.Persona)
	tmpl.Instruction = strings.TrimSpace(tmpl.Instruction)

	switch {
	case tmpl.Persona == "":
		return nil, fmt.Errorf("prompt template has no persona")
	case tmpl.Instruction == "":
		return nil, fmt.Errorf("prompt template has no instruction")
	}
	return &tmpl, nil
}

// merge returns t with the non-empty fields of override applied.
func (t Template) merge(override Template) *Template {
	if s := strings.TrimSpace(override.Persona); s != "" {
		t.Persona = s
	}
	if s := strings.TrimSpace(override.Instruction); s != "" {
		t.Instruction = s
	}
	return &t
}
