package llm_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/researchpipeline/internal/llm"
	"github.com/Lllllllleong/researchpipeline/internal/llm/llmtest"
	"github.com/Lllllllleong/researchpipeline/internal/models"
	"github.com/Lllllllleong/researchpipeline/internal/prompts"
)

func TestStripFences(t *testing.T) {
	tests := map[string]string{
		"plain": "plain",
		"```json\n{\"a\":1}\n```":    `{"a":1}`,
		"```\n# Title\n```":          "# Title",
		"  ```markdown\nbody\n```  ": "body",
		"```{\"a\":1}```":            `{"a":1}`,
	}
	for in, want := range tests {
		assert.Equal(t, want, llm.StripFences(in), "StripFences(%q)", in)
	}
}

func TestCheckRefusal(t *testing.T) {
	assert.ErrorIs(t, llm.CheckRefusal("I am unable to help with that."), llm.ErrRefusal)
	assert.NoError(t, llm.CheckRefusal("# Report\n\nAll good."))

	long := "# Report\n\n" + string(make([]byte, 400)) + "as a large language model"
	assert.NoError(t, llm.CheckRefusal(long))
}

func TestStructured_DecodesAndValidates(t *testing.T) {
	fake := llmtest.New()
	data, err := json.Marshal(llmtest.Findings(models.FindingsPerKind))
	require.NoError(t, err)
	fake.Script(prompts.GenerateFindings, "```json\n"+string(data)+"\n```")

	got, err := llm.Structured[models.Findings](context.Background(), fake, llm.Request{Name: prompts.GenerateFindings}, &llm.Schema{Type: llm.TypeObject})
	require.NoError(t, err)
	assert.Len(t, got.Risks, models.FindingsPerKind)
}

func TestStructured_SchemaViolations(t *testing.T) {
	fake := llmtest.New()
	short, err := json.Marshal(llmtest.Findings(3))
	require.NoError(t, err)
	fake.Script(prompts.GenerateFindings, "not json", string(short))

	req := llm.Request{Name: prompts.GenerateFindings}
	schema := &llm.Schema{Type: llm.TypeObject}

	_, err = llm.Structured[models.Findings](context.Background(), fake, req, schema)
	assert.ErrorIs(t, err, llm.ErrSchemaViolation)

	_, err = llm.Structured[models.Findings](context.Background(), fake, req, schema)
	assert.ErrorIs(t, err, llm.ErrSchemaViolation)
	assert.ErrorIs(t, err, models.ErrInvalidPayload)
}

func TestModelID(t *testing.T) {
	assert.Equal(t, "gemini-2.5-flash", llm.ModelID("google/gemini-2.5-flash"))
	assert.Equal(t, "gemini-2.5-flash-lite", llm.ModelID("gemini-2.5-flash-lite"))
}
