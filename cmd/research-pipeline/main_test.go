package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStagesCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"stages"})
	require.NoError(t, cmd.Execute())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[1], "summary_flow")
	assert.Contains(t, lines[1], "user_input")
	assert.Contains(t, lines[4], "report_flow")
	assert.Contains(t, lines[4], "final_report")
}

func TestRunCommand_RequiresProject(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"run"})
	err := cmd.Execute()
	assert.ErrorContains(t, err, `"project" not set`)
}

func TestRunFlags_Parameters(t *testing.T) {
	f := &runFlags{
		project:       "acme",
		documents:     "gs://acme-base",
		inputs:        []string{"https://example.com/a.pdf", "https://example.com/b.pdf"},
		coreModel:     "gemini-x",
		reportWebhook: "https://hooks.example.com/report",
	}

	p := f.parameters()
	assert.Equal(t, "acme", p.ProjectName)
	assert.Equal(t, "gs://acme-base", p.Documents)
	assert.Equal(t, []any{"https://example.com/a.pdf", "https://example.com/b.pdf"}, p.FlowOptions["input_documents_urls"])
	assert.Equal(t, "gemini-x", p.FlowOptions["core_model"])
	assert.Equal(t, "https://hooks.example.com/report", p.FlowOptions["report_webhook_url"])
	assert.NotContains(t, p.FlowOptions, "small_model")
	assert.NotContains(t, p.FlowOptions, "status_webhook_url")
}
