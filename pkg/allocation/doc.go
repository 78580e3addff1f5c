// Package allocation implements the deterministic control allocation engine
// at the core of Palisade.
//
// The engine maps a ClassificationSelection (the data classification and
// hosting facts a program owner asserts about a system) to a Result (a fixed
// control count, a level-of-effort tier, and a human-readable reason). The
// mapping is an ordered chain of (predicate, outcome) rules evaluated
// first-match-wins:
//
//  1. cui-override        CUI present: full 110-control baseline at LOE DFARS
//  2. dfars-required      any DFARS trigger (CDI, ITAR, EAR, EAR99+): 110 at LOE DFARS
//  3. public-data         publicly releasable data: 38 controls at LOE B
//  4. pilot-atc           short-duration pilot under an ATC: 20 controls at LOE A
//  5. internal-non-dfars  internal hosting with sensitive data: 56 controls at LOE C
//  6. external-non-dfars  external hosting with sensitive data: 70 controls at LOE D
//  7. default-minimum     catch-all: 20 controls at LOE A
//
// Chain position is the only tie-break. A selection that triggers several
// rules receives the outcome of the earliest one, so CUI dominates every
// other classification and the DFARS triggers dominate everything below
// them. The final rule matches unconditionally, which makes evaluation total
// over the valid input domain: every well-formed selection produces a
// result, and no selection ever receives fewer than the 20-control minimum.
//
// Evaluation is a pure function. The evaluator performs no I/O, reads no
// clock, and never mutates the selection or a returned Result. The only
// error path is a malformed selection (an unknown SystemScope value), which
// is rejected by Validate before the chain runs:
//
//	eval := allocation.NewEvaluator()
//	result, err := eval.Evaluate(allocation.ClassificationSelection{
//		PublicData: true,
//	})
//	// result.ControlCount == 38, result.LOELevel == allocation.LOEB
//
// EvaluateWithTrace returns the same decision together with the ordered list
// of rules visited, for diagnostics and for surfacing the chain through the
// rules introspection endpoint.
package allocation
