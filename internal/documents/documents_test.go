package documents

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustNew(t *testing.T, f Family, name, content string) Document {
	t.Helper()
	d, err := New(f, name, []byte(content))
	require.NoError(t, err)
	return d
}

func TestNew_NameValidation(t *testing.T) {
	tests := []struct {
		name    string
		family  Family
		file    string
		content string
		wantErr error
	}{
		{"open family accepts arbitrary name", UserInput, "pitch.pdf", "%PDF", nil},
		{"fixed family accepts listed name", FinalReport, FileShortReport, "# Report", nil},
		{"fixed family rejects other name", FinalReport, "final_report.md", "# Report", ErrUnknownFile},
		{"forward slash rejected", UserInput, "a/b.txt", "x", ErrInvalidName},
		{"backslash rejected", StandardizedFile, `a\b.md`, "x", ErrInvalidName},
		{"dot-dot rejected", UserInput, "..", "x", ErrInvalidName},
		{"empty rejected", UserInput, "", "x", ErrInvalidName},
		{"invalid json rejected", InitialSummary, FileInitialSummary, "{not json", ErrInvalidContent},
		{"invalid yaml rejected", StandardizedFile, "deck.yaml", "key: [unclosed", ErrInvalidContent},
		{"unknown family rejected", Family(99), "x.md", "x", ErrUnknownFamily},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.family, tt.file, []byte(tt.content))
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDocument_Immutable(t *testing.T) {
	src := []byte("original")
	d, err := New(UserInput, "notes.txt", src)
	require.NoError(t, err)

	src[0] = 'X'
	assert.Equal(t, "original", d.Text())

	out := d.Content()
	out[0] = 'Y'
	assert.Equal(t, "original", d.Text())
}

func TestDocument_MimeTypeAndKey(t *testing.T) {
	md := mustNew(t, StandardizedFile, "pitch.md", "# Pitch")
	assert.Equal(t, "text/markdown", md.MimeType())
	assert.Equal(t, "standardized_file/pitch.md", md.Key())
	assert.True(t, md.IsText())

	yml := mustNew(t, StandardizedFile, "pitch.yaml", "title: Pitch\n")
	assert.Equal(t, "application/yaml", yml.MimeType())

	pdf := mustNew(t, UserInput, "deck.pdf", "%PDF-1.7\x00\x01")
	assert.Equal(t, "application/pdf", pdf.MimeType())
	assert.False(t, pdf.IsText())
}

func TestNewJSONAndYAML(t *testing.T) {
	d, err := NewJSON(ReviewFinding, FileRisks, map[string]any{"risks": []int{1, 2}})
	require.NoError(t, err)

	var decoded map[string][]int
	require.NoError(t, d.DecodeJSON(&decoded))
	assert.Equal(t, []int{1, 2}, decoded["risks"])

	y, err := NewYAML(StandardizedFile, "deck.yaml", map[string]string{"title": "Deck"})
	require.NoError(t, err)
	assert.Contains(t, y.Text(), "title: Deck")
}

func TestDocument_MarshalJSON(t *testing.T) {
	text := mustNew(t, FinalReport, FileShortReport, "# Short")
	data, err := json.Marshal(text)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "final_report", got["family"])
	assert.Equal(t, "short_report.md", got["name"])
	assert.Equal(t, "# Short", got["content"])
	assert.NotContains(t, got, "content_encoding")

	bin := mustNew(t, UserInput, "blob.bin", "\xff\xfe\x00")
	data, err = json.Marshal(bin)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "base64", got["content_encoding"])
	assert.Equal(t, "//4A", got["content"])
}

func TestFamily_CanonicalRoundTrip(t *testing.T) {
	for _, f := range Families() {
		parsed, err := ParseFamily(f.CanonicalName())
		require.NoError(t, err)
		assert.Equal(t, f, parsed)
	}

	_, err := ParseFamily("nope")
	assert.ErrorIs(t, err, ErrUnknownFamily)
}

func TestCollection_FilterBy(t *testing.T) {
	c := Collection{
		mustNew(t, UserInput, "a.txt", "a"),
		mustNew(t, StandardizedFile, "a.md", "a"),
		mustNew(t, UserInput, "b.txt", "b"),
		mustNew(t, InitialSummary, FileShortDescription, "s"),
		mustNew(t, UserInput, "c.txt", "c"),
	}

	inputs := c.FilterBy(UserInput)
	assert.Equal(t, []string{"a.txt", "b.txt", "c.txt"}, inputs.Names())
	for _, d := range inputs {
		assert.Equal(t, UserInput, d.Family())
	}

	assert.Equal(t, inputs, inputs.FilterBy(UserInput))
	assert.Empty(t, c.FilterBy(FinalReport))
	assert.Equal(t, []string{"a.md", FileShortDescription}, c.FilterBy(StandardizedFile, InitialSummary).Names())
}

func TestCollection_GetBy(t *testing.T) {
	c := Collection{
		mustNew(t, UserInput, "a.txt", "a"),
		mustNew(t, UserInput, "b.txt", "b"),
		mustNew(t, FinalReport, FileFullReport, "full"),
	}

	d, err := c.GetByFamily(FinalReport)
	require.NoError(t, err)
	assert.Equal(t, FileFullReport, d.Name())

	d, err = c.GetByName("b.txt")
	require.NoError(t, err)
	assert.Equal(t, "b", d.Text())

	_, err = c.GetByFamily(UserInput)
	assert.ErrorIs(t, err, ErrLookup)
	assert.ErrorIs(t, err, ErrAmbiguous)

	_, err = c.GetByName("missing.txt")
	assert.ErrorIs(t, err, ErrLookup)
	assert.ErrorIs(t, err, ErrNoMatch)

	_, err = c.GetByFamily(ReviewFinding)
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestCollection_Extend(t *testing.T) {
	var c Collection
	c = c.Extend(mustNew(t, UserInput, "a.txt", "a"))
	c = c.Extend(mustNew(t, UserInput, "b.txt", "b"), mustNew(t, UserInput, "a.txt", "again"))
	assert.Equal(t, []string{"a.txt", "b.txt", "a.txt"}, c.Names())
}

func TestCollection_ExtendLeavesReceiverIntact(t *testing.T) {
	all := Collection{
		mustNew(t, UserInput, "a.txt", "a"),
		mustNew(t, UserInput, "b.txt", "b"),
		mustNew(t, UserInput, "c.txt", "c"),
	}
	base := all.FilterBy(UserInput)

	first := base.Extend(mustNew(t, UserInput, "x.txt", "x"))
	second := base.Extend(mustNew(t, UserInput, "y.txt", "y"))

	assert.Equal(t, []string{"a.txt", "b.txt", "c.txt", "x.txt"}, first.Names())
	assert.Equal(t, []string{"a.txt", "b.txt", "c.txt", "y.txt"}, second.Names())
	assert.Equal(t, []string{"a.txt", "b.txt", "c.txt"}, base.Names())
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"My Deck v2.PDF":       "my-deck-v2",
		"!!!":                  "file",
		"pitch.pdf":            "pitch",
		"  Whitepaper (final)": "whitepaper-final",
		"archive.tar.gz":       "archive-tar",
		"dir/Über Plan.docx":   "ber-plan",
		"":                     "file",
		"--a--b--.md":          "a-b",
	}

	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), "Slugify(%q)", in)
		assert.Equal(t, Slugify(in), Slugify(in))
	}
}
