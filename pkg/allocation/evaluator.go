package allocation

import "fmt"

// Evaluator produces a control allocation for a classification selection.
// Implementations must be safe for concurrent use and must not retain or
// mutate the selection.
type Evaluator interface {
	// Evaluate returns the allocation for the selection. The only error
	// condition is a malformed selection; every valid selection produces a
	// result.
	Evaluate(sel ClassificationSelection) (Result, error)
}

// ChainEvaluator evaluates an ordered rule chain first-match-wins. The zero
// value is not usable; construct one with NewEvaluator or
// NewEvaluatorWithRules.
type ChainEvaluator struct {
	rules []Rule
}

// NewEvaluator returns an evaluator over the default rule chain.
func NewEvaluator() *ChainEvaluator {
	return &ChainEvaluator{rules: DefaultRuleChain()}
}

// NewEvaluatorWithRules returns an evaluator over a custom chain. The chain
// is validated up front: it must be non-empty and every rule needs an ID, a
// predicate, and a non-empty outcome. The slice is copied so later mutation
// by the caller cannot change evaluation order.
func NewEvaluatorWithRules(rules []Rule) (*ChainEvaluator, error) {
	if len(rules) == 0 {
		return nil, ErrEmptyRuleChain
	}

	seen := make(map[string]struct{}, len(rules))
	for i, r := range rules {
		var problems []string
		if r.ID == "" {
			problems = append(problems, "missing ID")
		}
		if r.Matches == nil {
			problems = append(problems, "missing predicate")
		}
		if r.Outcome.ControlCount <= 0 {
			problems = append(problems, "outcome has no control count")
		}
		if r.Outcome.Reason == "" {
			problems = append(problems, "outcome has no reason")
		}
		if _, dup := seen[r.ID]; dup && r.ID != "" {
			problems = append(problems, "duplicate ID")
		}
		if len(problems) > 0 {
			id := r.ID
			if id == "" {
				id = fmt.Sprintf("#%d", i)
			}
			return nil, &RuleDefinitionError{RuleID: id, Errors: problems}
		}
		seen[r.ID] = struct{}{}
	}

	chain := make([]Rule, len(rules))
	copy(chain, rules)
	return &ChainEvaluator{rules: chain}, nil
}

// Evaluate walks the chain in order and returns the outcome of the first
// rule whose predicate accepts the selection. Evaluation short-circuits at
// the first match; later rules are never consulted.
func (e *ChainEvaluator) Evaluate(sel ClassificationSelection) (Result, error) {
	if err := sel.Validate(); err != nil {
		return Result{}, err
	}

	for _, r := range e.rules {
		if r.Matches(sel) {
			return r.Outcome, nil
		}
	}

	return Result{}, ErrNoRuleMatched
}

// EvaluateWithTrace behaves like Evaluate and additionally records every
// rule visited, in order, with the final step being the match.
func (e *ChainEvaluator) EvaluateWithTrace(sel ClassificationSelection) (Result, EvaluationTrace, error) {
	trace := EvaluationTrace{Steps: make([]TraceStep, 0, len(e.rules))}

	if err := sel.Validate(); err != nil {
		return Result{}, trace, err
	}

	for _, r := range e.rules {
		matched := r.Matches(sel)
		trace.Steps = append(trace.Steps, TraceStep{
			RuleID:      r.ID,
			Description: r.Description,
			Matched:     matched,
		})
		if matched {
			return r.Outcome, trace, nil
		}
	}

	return Result{}, trace, ErrNoRuleMatched
}

// Rules returns a copy of the chain in evaluation order, for introspection
// surfaces. Mutating the copy does not affect the evaluator.
func (e *ChainEvaluator) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// Len returns the number of rules in the chain.
func (e *ChainEvaluator) Len() int {
	return len(e.rules)
}
