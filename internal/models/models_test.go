package models

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validFindings() Findings {
	var f Findings
	for i := range FindingsPerKind {
		id := fmt.Sprintf("%d", i+1)
		f.Risks = append(f.Risks, Risk{
			ID:      "R" + id, Title: "risk", Category: CategoryMarket, Severity: SeverityHigh,
			Horizon: HorizonShort, Confidence: 0.5,
		})
		f.Opportunities = append(f.Opportunities, Opportunity{
			ID: "O" + id, Title: "opp", Category: CategoryTech, Impact: ImpactHigh, Confidence: 1,
		})
		f.Questions = append(f.Questions, Question{ID: "Q" + id, Question: "why?"})
	}
	return f
}

func TestFindings_Validate(t *testing.T) {
	require.NoError(t, validFindings().Validate())

	tests := []struct {
		name   string
		mutate func(*Findings)
		want   string
	}{
		{"too few risks", func(f *Findings) { f.Risks = f.Risks[:4] }, "expected 5 risks, got 4"},
		{"too many questions", func(f *Findings) { f.Questions = append(f.Questions, f.Questions[0]) }, "expected 5 questions, got 6"},
		{"unknown category", func(f *Findings) { f.Risks[2].Category = "vibes" }, `risks[2]: unknown category "vibes"`},
		{"unknown impact", func(f *Findings) { f.Opportunities[0].Impact = "huge" }, `unknown impact "huge"`},
		{"confidence above range", func(f *Findings) { f.Opportunities[1].Confidence = 1.2 }, "outside [0,1]"},
		{"confidence below range", func(f *Findings) { f.Risks[0].Confidence = -0.1 }, "outside [0,1]"},
		{"empty question", func(f *Findings) { f.Questions[3].Question = "" }, "questions[3]: empty question"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validFindings()
			tt.mutate(&f)
			err := f.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidPayload)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestInitialSummary_Validate(t *testing.T) {
	s := InitialSummary{
		ProjectName:  "acme",
		ShortSummary: "short",
		LongSummary:  "long",
		Sources:      []FileDescriptor{{Name: "pitch.pdf"}},
	}
	require.NoError(t, s.Validate())

	s.Sources = nil
	assert.ErrorIs(t, s.Validate(), ErrInvalidPayload)
}

func TestDocumentMetadata_Validate(t *testing.T) {
	m := DocumentMetadata{
		Title:            "Pitch",
		OriginalFilename: "pitch.pdf",
		LanguageDetected: "en",
		SummaryImproved:  "A summary.",
	}
	require.NoError(t, m.Validate())

	m.Title = ""
	err := m.Validate()
	assert.ErrorIs(t, err, ErrInvalidPayload)
	assert.Contains(t, err.Error(), "empty title")
}

func TestStateType_Terminal(t *testing.T) {
	assert.False(t, StatePending.Terminal())
	assert.False(t, StateRunning.Terminal())
	for _, s := range []StateType{StateCompleted, StateFailed, StateCancelled, StateCrashed} {
		assert.True(t, s.Terminal(), s)
	}
}
