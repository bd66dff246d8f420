// Package prompts holds the instruction templates sent to the model, keyed
// by the task that uses them.
package prompts

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"text/template"
)

// ErrUnknownPrompt is returned by Render for a name with no template.
var ErrUnknownPrompt = errors.New("unknown prompt")

// Task names. Each one is also the prompt template key and the request name
// seen by the generator.
const (
	CreateInitialSummary   = "create_initial_summary"
	CreateShortDescription = "create_short_description"
	CreateLongDescription  = "create_long_description"
	ExtractMetadata        = "extract_metadata"
	StandardizeContent     = "standardize_content"
	GenerateFindings       = "generate_findings"
	WriteFullReport        = "write_full_report"
	WriteShortReport       = "write_short_report"
)

// Params are the values available to every template.
type Params struct {
	ProjectName string
	FileName    string
}

var templates = map[string]*template.Template{}

func init() {
	for name, text := range sources {
		templates[name] = template.Must(template.New(name).Option("missingkey=error").Parse(text))
	}
}

// Names lists every registered prompt in sorted order.
func Names() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Render executes the named template with p.
func Render(name string, p Params) (string, error) {
	t, ok := templates[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownPrompt, name)
	}

	var sb strings.Builder
	if err := t.Execute(&sb, p); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}
	return strings.TrimSpace(sb.String()), nil
}
