package models

import (
	"errors"
	"fmt"
	"slices"
)

// FindingsPerKind is the number of risks, opportunities and questions every
// review must produce.
const FindingsPerKind = 5

type Category string

const (
	CategoryTech        Category = "tech"
	CategoryProduct     Category = "product"
	CategoryMarket      Category = "market"
	CategoryTeam        Category = "team"
	CategoryLegal       Category = "legal"
	CategoryFinance     Category = "finance"
	CategoryGoToMarket  Category = "go_to_market"
	CategoryCompetition Category = "competition"
	CategorySecurity    Category = "security"
	CategoryRegulatory  Category = "regulatory"
)

// Categories lists the closed review taxonomy.
var Categories = []Category{
	CategoryTech, CategoryProduct, CategoryMarket, CategoryTeam, CategoryLegal,
	CategoryFinance, CategoryGoToMarket, CategoryCompetition, CategorySecurity, CategoryRegulatory,
}

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

var Severities = []Severity{SeverityLow, SeverityMedium, SeverityHigh}

type Horizon string

const (
	HorizonShort  Horizon = "short"
	HorizonMedium Horizon = "medium"
	HorizonLong   Horizon = "long"
)

var Horizons = []Horizon{HorizonShort, HorizonMedium, HorizonLong}

type Impact string

const (
	ImpactModerate         Impact = "moderate"
	ImpactHigh             Impact = "high"
	ImpactTransformational Impact = "transformational"
)

var Impacts = []Impact{ImpactModerate, ImpactHigh, ImpactTransformational}

// Citation points at a verbatim snippet in a standardized file.
type Citation struct {
	File  string `json:"file"`
	Quote string `json:"quote"`
}

type Risk struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Category    Category   `json:"category"`
	Severity    Severity   `json:"severity"`
	Horizon     Horizon    `json:"horizon"`
	Description string     `json:"description"`
	Evidence    []Citation `json:"evidence"`
	Mitigation  []string   `json:"mitigation"`
	Confidence  float64    `json:"confidence"`
}

type Opportunity struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Category      Category   `json:"category"`
	Impact        Impact     `json:"impact"`
	Description   string     `json:"description"`
	Prerequisites []string   `json:"prerequisites"`
	Evidence      []Citation `json:"evidence"`
	Confidence    float64    `json:"confidence"`
}

type Question struct {
	ID             string     `json:"id"`
	Question       string     `json:"question"`
	Rationale      string     `json:"rationale"`
	ExpectedSignal string     `json:"expected_signal"`
	Evidence       []Citation `json:"evidence"`
}

// Findings is the structured result of the review stage.
type Findings struct {
	Risks         []Risk        `json:"risks"`
	Opportunities []Opportunity `json:"opportunities"`
	Questions     []Question    `json:"questions"`
}

// Validate enforces cardinality, enum membership and confidence range. All
// problems are reported together, each wrapping ErrInvalidPayload.
func (f Findings) Validate() error {
	var errs []error
	check := func(cond bool, format string, args ...any) {
		if !cond {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidPayload}, args...)...))
		}
	}

	check(len(f.Risks) == FindingsPerKind, "expected %d risks, got %d", FindingsPerKind, len(f.Risks))
	check(len(f.Opportunities) == FindingsPerKind, "expected %d opportunities, got %d", FindingsPerKind, len(f.Opportunities))
	check(len(f.Questions) == FindingsPerKind, "expected %d questions, got %d", FindingsPerKind, len(f.Questions))

	for i, r := range f.Risks {
		check(r.ID != "", "risks[%d]: empty id", i)
		check(slices.Contains(Categories, r.Category), "risks[%d]: unknown category %q", i, r.Category)
		check(slices.Contains(Severities, r.Severity), "risks[%d]: unknown severity %q", i, r.Severity)
		check(slices.Contains(Horizons, r.Horizon), "risks[%d]: unknown horizon %q", i, r.Horizon)
		check(validConfidence(r.Confidence), "risks[%d]: confidence %v outside [0,1]", i, r.Confidence)
	}
	for i, o := range f.Opportunities {
		check(o.ID != "", "opportunities[%d]: empty id", i)
		check(slices.Contains(Categories, o.Category), "opportunities[%d]: unknown category %q", i, o.Category)
		check(slices.Contains(Impacts, o.Impact), "opportunities[%d]: unknown impact %q", i, o.Impact)
		check(validConfidence(o.Confidence), "opportunities[%d]: confidence %v outside [0,1]", i, o.Confidence)
	}
	for i, q := range f.Questions {
		check(q.ID != "", "questions[%d]: empty id", i)
		check(q.Question != "", "questions[%d]: empty question", i)
	}

	return errors.Join(errs...)
}

func validConfidence(c float64) bool {
	return c >= 0 && c <= 1
}

// RisksFile, OpportunitiesFile and QuestionsFile are the persisted shapes of
// the three review documents.
type RisksFile struct {
	Risks []Risk `json:"risks"`
}

type OpportunitiesFile struct {
	Opportunities []Opportunity `json:"opportunities"`
}

type QuestionsFile struct {
	Questions []Question `json:"questions"`
}
