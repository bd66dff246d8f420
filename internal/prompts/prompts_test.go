package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_FillsParams(t *testing.T) {
	out, err := Render(ExtractMetadata, Params{ProjectName: "acme", FileName: "pitch.pdf"})
	require.NoError(t, err)
	assert.Contains(t, out, `"pitch.pdf"`)
	assert.Contains(t, out, `project "acme"`)
	assert.NotContains(t, out, "{{")
}

func TestRender_EveryTemplate(t *testing.T) {
	require.Len(t, Names(), 8)
	for _, name := range Names() {
		out, err := Render(name, Params{ProjectName: "p", FileName: "f.md"})
		require.NoError(t, err, name)
		assert.NotEmpty(t, out, name)
	}
}

func TestRender_Unknown(t *testing.T) {
	_, err := Render("nope", Params{})
	assert.ErrorIs(t, err, ErrUnknownPrompt)
}
