package llm

import (
	"testing"

	"cloud.google.com/go/vertexai/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/researchpipeline/internal/documents"
)

func TestToParts_ContextBeforeMessages(t *testing.T) {
	md, err := documents.New(documents.StandardizedFile, "pitch.md", []byte("# Pitch"))
	require.NoError(t, err)
	pdf, err := documents.New(documents.UserInput, "deck.pdf", []byte("%PDF-1.7\x00"))
	require.NoError(t, err)

	parts := toParts([]Message{Doc(md), Doc(pdf), Text("do it")})
	require.Len(t, parts, 4)

	assert.Contains(t, string(parts[0].(genai.Text)), `name="pitch.md"`)
	assert.Contains(t, string(parts[0].(genai.Text)), "# Pitch")
	assert.Contains(t, string(parts[1].(genai.Text)), `mime_type="application/pdf"`)
	blob := parts[2].(genai.Blob)
	assert.Equal(t, "application/pdf", blob.MIMEType)
	assert.Equal(t, pdf.Content(), blob.Data)
	assert.Equal(t, genai.Text("do it"), parts[3])
}

func TestSchema_ToGenai(t *testing.T) {
	s := Object(map[string]*Schema{
		"items": ExactArray(Enum("kind", "a", "b"), 5),
		"date":  NullableString("YYYY-MM-DD"),
	}, "items", "date")

	g := s.toGenai()
	assert.Equal(t, genai.TypeObject, g.Type)
	assert.Equal(t, []string{"items", "date"}, g.Required)
	assert.Equal(t, genai.TypeArray, g.Properties["items"].Type)
	assert.EqualValues(t, 5, g.Properties["items"].MinItems)
	assert.EqualValues(t, 5, g.Properties["items"].MaxItems)
	assert.Equal(t, []string{"a", "b"}, g.Properties["items"].Items.Enum)
	assert.True(t, g.Properties["date"].Nullable)
}
