package fasttrack

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"bastion-hq/palisade/pkg/allocation"
)

// RequiredFieldCount is the number of required fields a valid intake
// template must declare. The fast-track path only exists for the standard
// eight-field intake form; templates with any other shape are rejected.
const RequiredFieldCount = 8

// Identifiers attached to fast-tracked decisions. The baseline is fixed:
// deployments define WHICH fields the intake form requires, never what the
// fast-track outcome is.
const (
	RuleFastTrackBaseline   = "fast-track-baseline"
	ReasonFastTrackBaseline = "Fast Track - Pre-Approved Template Baseline"
)

// Template is a deployment-defined intake template: the set of fields a
// submission must complete to qualify for the fast-track baseline.
type Template struct {
	// Version identifies the template revision, surfaced on decisions for
	// provenance. For Git-sourced templates this is typically a tag or
	// release label maintained alongside the file.
	Version string `yaml:"version" json:"version"`

	// Name is a human-readable template name.
	Name string `yaml:"name" json:"name"`

	// RequiredFields lists the intake fields a submission must provide.
	// Exactly RequiredFieldCount entries.
	RequiredFields []TemplateField `yaml:"required_fields" json:"required_fields"`
}

// TemplateField is one required intake field.
type TemplateField struct {
	// ID is the submission key the field is matched against.
	ID string `yaml:"id" json:"id"`

	// Label is the display name shown on intake forms.
	Label string `yaml:"label" json:"label"`
}

// ParseTemplate parses and validates a YAML template document.
func ParseTemplate(data []byte) (*Template, error) {
	var tpl Template
	if err := yaml.Unmarshal(data, &tpl); err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	if err := tpl.Validate(); err != nil {
		return nil, err
	}
	return &tpl, nil
}

// Validate checks the template shape. All problems are collected into a
// single InvalidTemplateError.
func (t *Template) Validate() error {
	var problems []string

	if t.Name == "" {
		problems = append(problems, "name is required")
	}
	if t.Version == "" {
		problems = append(problems, "version is required")
	}
	if len(t.RequiredFields) != RequiredFieldCount {
		problems = append(problems, fmt.Sprintf("template must declare exactly %d required fields, found %d",
			RequiredFieldCount, len(t.RequiredFields)))
	}

	seen := make(map[string]struct{}, len(t.RequiredFields))
	for i, f := range t.RequiredFields {
		if strings.TrimSpace(f.ID) == "" {
			problems = append(problems, fmt.Sprintf("required field %d has no id", i))
			continue
		}
		if _, dup := seen[f.ID]; dup {
			problems = append(problems, fmt.Sprintf("duplicate field id %q", f.ID))
		}
		seen[f.ID] = struct{}{}
	}

	if len(problems) > 0 {
		return &InvalidTemplateError{Name: t.Name, Errors: problems}
	}
	return nil
}

// MissingFields returns the IDs of required fields that are absent or blank
// in the submitted field values, sorted for stable output.
func (t *Template) MissingFields(fields map[string]string) []string {
	var missing []string
	for _, f := range t.RequiredFields {
		if strings.TrimSpace(fields[f.ID]) == "" {
			missing = append(missing, f.ID)
		}
	}
	sort.Strings(missing)
	return missing
}

// Satisfied reports whether every required field has a non-blank value.
func (t *Template) Satisfied(fields map[string]string) bool {
	return len(t.MissingFields(fields)) == 0
}

// Baseline returns the fixed fast-track outcome: the minimum 20-control
// baseline at LOE A. The returned value is independent of the template
// contents.
func (t *Template) Baseline() allocation.Result {
	return allocation.Result{
		ControlCount: allocation.ControlCountMinimum,
		LOELevel:     allocation.LOEA,
		Reason:       ReasonFastTrackBaseline,
		RuleID:       RuleFastTrackBaseline,
	}
}
