package types

import (
	"time"

	"bastion-hq/palisade/pkg/allocation"
)

// AllocationResponse is the wire form of a control allocation decision.
type AllocationResponse struct {
	// DecisionID is a unique identifier minted for this decision. It is
	// echoed in logs so a client-reported ID can be matched to server
	// output, but decisions themselves are not stored.
	DecisionID string `json:"decision_id"`

	// ControlCount is the number of security controls allocated.
	ControlCount int `json:"control_count"`

	// LOELevel is the level-of-effort tier for the assessment.
	LOELevel string `json:"loe_level"`

	// Reason is the human-readable justification for the allocation.
	Reason string `json:"reason"`

	// RuleID identifies the rule that produced the result, or
	// "fast-track-baseline" for bypassed submissions.
	RuleID string `json:"rule_id"`

	// FastTracked is true when the template baseline was returned without
	// running the rule chain.
	FastTracked bool `json:"fast_tracked"`

	// TemplateVersion is the intake template version that satisfied the
	// fast-track conditions. Empty for evaluated decisions.
	TemplateVersion string `json:"template_version,omitempty"`

	// EvaluationTimeMS is the server-side processing time in milliseconds.
	EvaluationTimeMS float64 `json:"evaluation_time_ms"`

	// Timestamp is the Unix timestamp (seconds since epoch) of the decision.
	Timestamp int64 `json:"timestamp"`
}

// NewAllocationResponse builds the response for a decided submission.
func NewAllocationResponse(decisionID string, result allocation.Result, fastTracked bool, templateVersion string, elapsed time.Duration) *AllocationResponse {
	return &AllocationResponse{
		DecisionID:       decisionID,
		ControlCount:     result.ControlCount,
		LOELevel:         string(result.LOELevel),
		Reason:           result.Reason,
		RuleID:           result.RuleID,
		FastTracked:      fastTracked,
		TemplateVersion:  templateVersion,
		EvaluationTimeMS: float64(elapsed.Microseconds()) / 1000.0,
		Timestamp:        time.Now().Unix(),
	}
}

// RuleInfo describes one rule in the allocation chain.
type RuleInfo struct {
	// Position is the rule's 1-based position in the chain. Evaluation
	// stops at the first match, so position is priority.
	Position int `json:"position"`

	// ID uniquely identifies the rule.
	ID string `json:"id"`

	// Description is a one-line summary of the rule's predicate.
	Description string `json:"description"`

	// ControlCount is the control count the rule assigns when it matches.
	ControlCount int `json:"control_count"`

	// LOELevel is the level-of-effort tier the rule assigns.
	LOELevel string `json:"loe_level"`

	// Reason is the justification attached to the rule's outcome.
	Reason string `json:"reason"`
}

// RulesResponse lists the allocation chain in evaluation order.
type RulesResponse struct {
	// Count is the number of rules in the chain.
	Count int `json:"count"`

	// Rules is the chain in evaluation order.
	Rules []RuleInfo `json:"rules"`
}

// NewRulesResponse builds the introspection response from a rule chain.
func NewRulesResponse(rules []allocation.Rule) *RulesResponse {
	infos := make([]RuleInfo, len(rules))
	for i, rule := range rules {
		infos[i] = RuleInfo{
			Position:     i + 1,
			ID:           rule.ID,
			Description:  rule.Description,
			ControlCount: rule.Outcome.ControlCount,
			LOELevel:     string(rule.Outcome.LOELevel),
			Reason:       rule.Outcome.Reason,
		}
	}
	return &RulesResponse{
		Count: len(infos),
		Rules: infos,
	}
}
