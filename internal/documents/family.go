package documents

import (
	"fmt"
	"slices"
)

// Family is the typed category of a document. Each pipeline stage produces
// exactly one family.
type Family int

const (
	UserInput Family = iota + 1
	InitialSummary
	StandardizedFile
	ReviewFinding
	FinalReport
)

// Canonical file names for families with a fixed file set.
const (
	FileInitialSummary   = "initial_summary.json"
	FileShortDescription = "short_description.md"
	FileLongDescription  = "long_description.md"

	FileRisks         = "risks.json"
	FileOpportunities = "opportunities.json"
	FileQuestions     = "questions.json"

	FileFullReport  = "full_report.md"
	FileShortReport = "short_report.md"
)

// NameConstraint describes which file names a family accepts. A nil Fixed
// set means the family is open: any safe name is allowed.
type NameConstraint struct {
	Fixed []string
}

// Open reports whether the constraint accepts arbitrary names.
func (n NameConstraint) Open() bool {
	return n.Fixed == nil
}

// Allows reports whether name satisfies the constraint.
func (n NameConstraint) Allows(name string) bool {
	return n.Open() || slices.Contains(n.Fixed, name)
}

type familyInfo struct {
	canonical   string
	label       string
	description string
	names       NameConstraint
}

var families = map[Family]familyInfo{
	UserInput: {
		canonical:   "user_input",
		label:       "UserInput",
		description: "Raw user-provided files (any filename, any type).",
	},
	InitialSummary: {
		canonical:   "initial_summary",
		label:       "InitialSummary",
		description: "Initial due diligence summary with project overview and source analysis.",
		names:       NameConstraint{Fixed: []string{FileInitialSummary, FileShortDescription, FileLongDescription}},
	},
	StandardizedFile: {
		canonical:   "standardized_file",
		label:       "StandardizedFile",
		description: "English Markdown version of a single source plus its extracted metadata.",
	},
	ReviewFinding: {
		canonical:   "review_finding",
		label:       "ReviewFinding",
		description: "Investment review findings (risks, opportunities, or questions).",
		names:       NameConstraint{Fixed: []string{FileRisks, FileOpportunities, FileQuestions}},
	},
	FinalReport: {
		canonical:   "final_report",
		label:       "FinalReport",
		description: "Final due diligence reports in markdown format.",
		names:       NameConstraint{Fixed: []string{FileFullReport, FileShortReport}},
	},
}

// Families returns every family in pipeline order.
func Families() []Family {
	return []Family{UserInput, InitialSummary, StandardizedFile, ReviewFinding, FinalReport}
}

// Valid reports whether f is one of the known families.
func (f Family) Valid() bool {
	_, ok := families[f]
	return ok
}

// CanonicalName is the storage folder for the family.
func (f Family) CanonicalName() string {
	return families[f].canonical
}

// Description is a one-line human readable summary of the family.
func (f Family) Description() string {
	return families[f].description
}

// Names returns the family's file name constraint.
func (f Family) Names() NameConstraint {
	return families[f].names
}

func (f Family) String() string {
	if info, ok := families[f]; ok {
		return info.label
	}
	return fmt.Sprintf("Family(%d)", int(f))
}

// ParseFamily maps a canonical name back to its family.
func ParseFamily(canonical string) (Family, error) {
	for f, info := range families {
		if info.canonical == canonical {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFamily, canonical)
}
