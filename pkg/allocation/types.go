package allocation

import "strings"

// SystemScope identifies where the system under assessment is hosted
// relative to the enterprise boundary. The hosting scope only influences the
// allocation when combined with a sensitive-data flag (rules 5 and 6); scope
// alone never changes the outcome.
type SystemScope string

const (
	// ScopeUnset means no hosting scope has been selected. It is the zero
	// value and is a valid input: selections without a scope simply never
	// match the scope-dependent rules.
	ScopeUnset SystemScope = ""

	// ScopeInternal marks a system hosted inside the enterprise boundary.
	ScopeInternal SystemScope = "internal"

	// ScopeExternal marks a system hosted outside the enterprise boundary
	// (cloud, partner, or supplier hosted).
	ScopeExternal SystemScope = "external"
)

// String returns the scope as a lowercase label, using "unset" for the zero
// value so logs and CLI output never print an empty field.
func (s SystemScope) String() string {
	if s == ScopeUnset {
		return "unset"
	}
	return string(s)
}

// ParseSystemScope parses a scope label from external input (API requests,
// CLI flags, config). Matching is case-insensitive and "unset" is accepted
// as an alias for the empty scope. Any other value is an
// InvalidSelectionError.
func ParseSystemScope(value string) (SystemScope, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "unset":
		return ScopeUnset, nil
	case "internal":
		return ScopeInternal, nil
	case "external":
		return ScopeExternal, nil
	default:
		return ScopeUnset, &InvalidSelectionError{
			Field:  "system_scope",
			Value:  value,
			Reason: `must be "internal", "external", or unset`,
		}
	}
}

// ClassificationSelection captures the classification and hosting facts a
// program owner asserts about a system. Every flag is independent; any
// combination is a valid input to the evaluator.
type ClassificationSelection struct {
	// CUI marks Controlled Unclassified Information.
	CUI bool `json:"cui"`

	// CDIDFARS marks Covered Defense Information under DFARS 252.204-7012.
	CDIDFARS bool `json:"cdi_dfars"`

	// ITAR marks data subject to the International Traffic in Arms
	// Regulations.
	ITAR bool `json:"itar"`

	// EAR marks data subject to the Export Administration Regulations.
	EAR bool `json:"ear"`

	// EAR99Plus marks EAR99 data requiring elevated handling.
	EAR99Plus bool `json:"ear99_plus"`

	// PublicData marks data approved for public release.
	PublicData bool `json:"public_data"`

	// PilotShortDuration marks a short-duration pilot operating under an
	// authority to connect.
	PilotShortDuration bool `json:"pilot_short_duration"`

	// CompetitionSensitive marks competition-sensitive business data.
	CompetitionSensitive bool `json:"competition_sensitive"`

	// Proprietary marks company or third-party proprietary data.
	Proprietary bool `json:"proprietary"`

	// PII marks personally identifiable information.
	PII bool `json:"pii"`

	// SystemScope is the hosting scope of the system. See SystemScope.
	SystemScope SystemScope `json:"system_scope"`
}

// RequiresDFARS reports whether any flag that mandates the full DFARS
// baseline is set. Selections for which this is true are never eligible for
// fast-track routing.
func (s ClassificationSelection) RequiresDFARS() bool {
	return s.CUI || s.CDIDFARS || s.ITAR || s.EAR || s.EAR99Plus
}

// HasSensitiveData reports whether any of the non-DFARS sensitive-data flags
// is set. Rules 5 and 6 require one of these in addition to a hosting scope.
func (s ClassificationSelection) HasSensitiveData() bool {
	return s.CompetitionSensitive || s.Proprietary || s.PII
}

// Validate checks that the selection is well formed. The boolean flags admit
// every combination, so the only malformed input is an unrecognized
// SystemScope value, which is rejected before the rule chain runs.
func (s ClassificationSelection) Validate() error {
	switch s.SystemScope {
	case ScopeUnset, ScopeInternal, ScopeExternal:
		return nil
	default:
		return &InvalidSelectionError{
			Field:  "system_scope",
			Value:  string(s.SystemScope),
			Reason: `must be "internal", "external", or unset`,
		}
	}
}

// LOELevel is the level-of-effort tier attached to an allocation.
type LOELevel string

const (
	// LOEA is the minimum assessment tier (pilots and the default floor).
	LOEA LOELevel = "A"

	// LOEB is the tier for systems handling only public data.
	LOEB LOELevel = "B"

	// LOEC is the tier for internally hosted systems with sensitive data.
	LOEC LOELevel = "C"

	// LOED is the tier for externally hosted systems with sensitive data.
	LOED LOELevel = "D"

	// LOEDFARS is the full DFARS assessment tier.
	LOEDFARS LOELevel = "DFARS"
)

// Control counts are fixed constants. Rules select one of these values and
// nothing in the system computes or adjusts a count.
const (
	// ControlCountMinimum is the 20-control floor applied to pilots and to
	// every selection no other rule claims.
	ControlCountMinimum = 20

	// ControlCountPublic is the 38-control baseline for public data systems.
	ControlCountPublic = 38

	// ControlCountInternal is the 56-control baseline for internal systems
	// with sensitive data.
	ControlCountInternal = 56

	// ControlCountExternal is the 70-control baseline for external systems
	// with sensitive data.
	ControlCountExternal = 70

	// ControlCountFull is the complete 110-control NIST SP 800-171 set
	// required whenever CUI or a DFARS trigger is present.
	ControlCountFull = 110
)

// Reason strings attached to rule outcomes. Downstream GRC tooling displays
// these verbatim, so they are stable constants.
const (
	ReasonCUIOverride      = "CUI Override - Highest Security Level"
	ReasonDFARSRequired    = "DFARS Compliance Required"
	ReasonPublicData       = "LOE B - Public Data"
	ReasonPilotATC         = "LOE A - ATC (Pilot System)"
	ReasonInternalNonDFARS = "LOE C - Internal System (RTX Non-DFARS)"
	ReasonExternalNonDFARS = "LOE D - External System (RTX Non-DFARS)"
	ReasonDefaultMinimum   = "Default minimum controls"
)

// Result is a control allocation decision. Results are immutable values:
// rule outcomes are copied on evaluation and a returned Result is never
// modified by the engine.
type Result struct {
	// ControlCount is the number of security controls allocated. Always one
	// of the fixed ControlCount constants.
	ControlCount int `json:"control_count"`

	// LOELevel is the level-of-effort tier for the assessment.
	LOELevel LOELevel `json:"loe_level"`

	// Reason is the human-readable justification for the allocation.
	Reason string `json:"reason"`

	// RuleID identifies the rule that produced this result.
	RuleID string `json:"rule_id"`
}

// EvaluationTrace records the rules visited during a single evaluation, in
// chain order. The final step is always the matching rule.
type EvaluationTrace struct {
	// Steps lists every rule visited before evaluation stopped.
	Steps []TraceStep `json:"steps"`
}

// TraceStep records the outcome of testing one rule against a selection.
type TraceStep struct {
	// RuleID is the identifier of the rule that was tested.
	RuleID string `json:"rule_id"`

	// Description is the rule's human-readable description.
	Description string `json:"description"`

	// Matched reports whether the rule's predicate accepted the selection.
	Matched bool `json:"matched"`
}
