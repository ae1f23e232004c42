package prompts

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonathan/winlab-analyzer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProfile() *types.BusinessProfile {
	return &types.BusinessProfile{
		BusinessName:  "Acme Bakery",
		BusinessEmail: "owner@acme.example",
		Industry:      "Food & Beverage",
		WebsiteURL:    "https://acme.example",
		RevenueModel:  "Retail sales",
		SalesProcess:  "Walk-in customers and \"catering\" orders",
		CompanySize:   2,
	}
}

func TestBuild_RequiredOnly(t *testing.T) {
	prompt, err := NewBuilder().Build(sampleProfile())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(prompt, "You are AI WinLab"))
	assert.Contains(t, prompt, "## Business Information for Analysis\n- Business Name: Acme Bakery\n")
	assert.Contains(t, prompt, "- Company Size: 11-50\n")
	assert.Contains(t, prompt, "## Sales Process\nWalk-in customers and \"catering\" orders\n")
	assert.True(t, strings.HasSuffix(prompt, "best represent each insight."))

	for _, heading := range []string{
		"## Current Business Processes",
		"## Current Pain Points",
		"## Technology Currently In Use",
		"## Business Priorities",
		"## Tools Currently Used",
	} {
		assert.NotContains(t, prompt, heading)
	}
}

func TestBuild_OptionalBlocks(t *testing.T) {
	p := sampleProfile()
	p.BusinessProcesses = "Orders tracked on paper"
	p.PainPoints = "Manual scheduling"
	p.CurrentTechnology = "Square POS"
	p.Priorities = map[string]string{"sales": "high", "marketing": "low"}
	p.Tools = &types.Tools{CRM: "hubspot", OtherTools: []string{"Slack", "Notion"}}

	prompt, err := NewBuilder().Build(p)
	require.NoError(t, err)

	assert.Contains(t, prompt, "## Current Business Processes\nOrders tracked on paper\n")
	assert.Contains(t, prompt, "## Current Pain Points\nManual scheduling\n")
	assert.Contains(t, prompt, "## Technology Currently In Use\nSquare POS\n")
	assert.Contains(t, prompt, "- marketing: low priority\n- sales: high priority")
	assert.Contains(t, prompt, "- CRM System: Hubspot\n- Other Tools: Slack, Notion")

	processes := strings.Index(prompt, "## Current Business Processes")
	sales := strings.Index(prompt, "## Sales Process")
	priorities := strings.Index(prompt, "## Business Priorities")
	tools := strings.Index(prompt, "## Tools Currently Used")
	assert.Less(t, processes, sales)
	assert.Less(t, sales, priorities)
	assert.Less(t, priorities, tools)
}

func TestBuild_Deterministic(t *testing.T) {
	p := sampleProfile()
	p.Priorities = map[string]string{"c": "low", "a": "high", "b": "medium"}

	b := NewBuilder()
	first, err := b.Build(p)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := b.Build(p)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestBuild_ToolsWithoutCRM(t *testing.T) {
	p := sampleProfile()
	p.Tools = &types.Tools{OtherTools: []string{"Excel"}}

	prompt, err := NewBuilder().Build(p)
	require.NoError(t, err)
	assert.Contains(t, prompt, "- CRM System: None\n- Other Tools: Excel")
}

func TestBuild_ValidationError(t *testing.T) {
	p := sampleProfile()
	p.BusinessEmail = ""

	prompt, err := NewBuilder().Build(p)
	assert.Empty(t, prompt)

	var vErr *types.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "businessEmail", vErr.Field)
}

func TestBuild_StripsControlCharacters(t *testing.T) {
	p := sampleProfile()
	p.PainPoints = "Line one\x00\x1b[31m\nLine\ttwo"

	prompt, err := NewBuilder().Build(p)
	require.NoError(t, err)
	assert.Contains(t, prompt, "Line one[31m\nLine\ttwo")
	assert.NotContains(t, prompt, "\x00")
	assert.NotContains(t, prompt, "\x1b")
}

func TestLoadBuilder_PersonaFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persona.txt")
	require.NoError(t, os.WriteFile(path, []byte("You are a terse analyst.\n"), 0o600))

	b, err := LoadBuilder(path)
	require.NoError(t, err)

	prompt, err := b.Build(sampleProfile())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(prompt, "You are a terse analyst.\n\n## Business Information"))

	_, err = LoadBuilder(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
