// Package evaltest provides evaluator test doubles shared by the fast-track
// gate and intake handler tests.
package evaltest

import "bastion-hq/palisade/pkg/allocation"

// CountingEvaluator is a stub allocation.Evaluator that records how many
// times it was invoked. Fast-track bypass tests assert Calls stays zero.
type CountingEvaluator struct {
	// Calls is incremented on every Evaluate invocation.
	Calls int

	// Result is returned on success. Zero value defaults to the minimum
	// baseline so handler tests get a well-formed decision.
	Result allocation.Result

	// Err, when set, is returned instead of Result.
	Err error
}

// Evaluate implements allocation.Evaluator.
func (e *CountingEvaluator) Evaluate(sel allocation.ClassificationSelection) (allocation.Result, error) {
	e.Calls++
	if e.Err != nil {
		return allocation.Result{}, e.Err
	}
	if e.Result == (allocation.Result{}) {
		return allocation.Result{
			ControlCount: allocation.ControlCountMinimum,
			LOELevel:     allocation.LOEA,
			Reason:       allocation.ReasonDefaultMinimum,
			RuleID:       allocation.RuleDefaultMinimum,
		}, nil
	}
	return e.Result, nil
}

// DFARSSelection returns a selection that is never fast-track eligible.
func DFARSSelection() allocation.ClassificationSelection {
	return allocation.ClassificationSelection{ITAR: true}
}

// EligibleSelection returns a selection with no DFARS triggers set.
func EligibleSelection() allocation.ClassificationSelection {
	return allocation.ClassificationSelection{
		Proprietary: true,
		SystemScope: allocation.ScopeInternal,
	}
}
