package allocation

// Rule identifiers, in chain order.
const (
	RuleCUIOverride      = "cui-override"
	RuleDFARSRequired    = "dfars-required"
	RulePublicData       = "public-data"
	RulePilotATC         = "pilot-atc"
	RuleInternalNonDFARS = "internal-non-dfars"
	RuleExternalNonDFARS = "external-non-dfars"
	RuleDefaultMinimum   = "default-minimum"
)

// Rule is one entry in the allocation chain: an explicit (predicate,
// outcome) pair. Keeping the chain as a plain ordered slice of these makes
// the ordering visible in code and testable in isolation.
type Rule struct {
	// ID uniquely identifies the rule within a chain.
	ID string

	// Description is a one-line summary shown by the rules introspection
	// surfaces.
	Description string

	// Matches reports whether the rule claims the selection. Predicates
	// must be pure: no I/O, no mutation, no shared state.
	Matches func(ClassificationSelection) bool

	// Outcome is the result returned when the rule matches. Outcomes are
	// copied out by the evaluator, never returned by reference.
	Outcome Result
}

// DefaultRuleChain returns the standard allocation chain in priority order.
// Each call returns a fresh slice, so callers may reorder or extend their
// copy without affecting other evaluators.
func DefaultRuleChain() []Rule {
	return []Rule{
		{
			ID:          RuleCUIOverride,
			Description: "CUI mandates the full control baseline regardless of any other selection",
			Matches: func(s ClassificationSelection) bool {
				return s.CUI
			},
			Outcome: Result{
				ControlCount: ControlCountFull,
				LOELevel:     LOEDFARS,
				Reason:       ReasonCUIOverride,
				RuleID:       RuleCUIOverride,
			},
		},
		{
			ID:          RuleDFARSRequired,
			Description: "CDI, ITAR, EAR, or EAR99+ data mandates the full DFARS baseline",
			Matches: func(s ClassificationSelection) bool {
				return s.CDIDFARS || s.ITAR || s.EAR || s.EAR99Plus
			},
			Outcome: Result{
				ControlCount: ControlCountFull,
				LOELevel:     LOEDFARS,
				Reason:       ReasonDFARSRequired,
				RuleID:       RuleDFARSRequired,
			},
		},
		{
			ID:          RulePublicData,
			Description: "publicly releasable data receives the LOE B baseline",
			Matches: func(s ClassificationSelection) bool {
				return s.PublicData
			},
			Outcome: Result{
				ControlCount: ControlCountPublic,
				LOELevel:     LOEB,
				Reason:       ReasonPublicData,
				RuleID:       RulePublicData,
			},
		},
		{
			ID:          RulePilotATC,
			Description: "short-duration pilots under an ATC receive the minimum baseline",
			Matches: func(s ClassificationSelection) bool {
				return s.PilotShortDuration
			},
			Outcome: Result{
				ControlCount: ControlCountMinimum,
				LOELevel:     LOEA,
				Reason:       ReasonPilotATC,
				RuleID:       RulePilotATC,
			},
		},
		{
			ID:          RuleInternalNonDFARS,
			Description: "internally hosted systems with sensitive data receive the LOE C baseline",
			Matches: func(s ClassificationSelection) bool {
				return s.SystemScope == ScopeInternal && s.HasSensitiveData()
			},
			Outcome: Result{
				ControlCount: ControlCountInternal,
				LOELevel:     LOEC,
				Reason:       ReasonInternalNonDFARS,
				RuleID:       RuleInternalNonDFARS,
			},
		},
		{
			ID:          RuleExternalNonDFARS,
			Description: "externally hosted systems with sensitive data receive the LOE D baseline",
			Matches: func(s ClassificationSelection) bool {
				return s.SystemScope == ScopeExternal && s.HasSensitiveData()
			},
			Outcome: Result{
				ControlCount: ControlCountExternal,
				LOELevel:     LOED,
				Reason:       ReasonExternalNonDFARS,
				RuleID:       RuleExternalNonDFARS,
			},
		},
		{
			ID:          RuleDefaultMinimum,
			Description: "every remaining selection receives the minimum control floor",
			Matches: func(ClassificationSelection) bool {
				return true
			},
			Outcome: Result{
				ControlCount: ControlCountMinimum,
				LOELevel:     LOEA,
				Reason:       ReasonDefaultMinimum,
				RuleID:       RuleDefaultMinimum,
			},
		},
	}
}
