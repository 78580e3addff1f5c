package allocation

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure conditions.
var (
	// ErrEmptyRuleChain indicates an evaluator was constructed with no rules.
	ErrEmptyRuleChain = errors.New("rule chain is empty")

	// ErrNoRuleMatched indicates a custom rule chain without a catch-all
	// failed to claim a selection. The default chain cannot produce this.
	ErrNoRuleMatched = errors.New("no rule matched the selection")
)

// InvalidSelectionError indicates a malformed selection was rejected before
// rule evaluation.
type InvalidSelectionError struct {
	// Field is the selection field that failed validation.
	Field string

	// Value is the rejected value.
	Value string

	// Reason describes the constraint that was violated.
	Reason string
}

// Error implements the error interface.
func (e *InvalidSelectionError) Error() string {
	return fmt.Sprintf("invalid selection: %s %q %s", e.Field, e.Value, e.Reason)
}

// IsInvalidSelection reports whether err is (or wraps) an
// InvalidSelectionError.
func IsInvalidSelection(err error) bool {
	var ise *InvalidSelectionError
	return errors.As(err, &ise)
}

// RuleDefinitionError indicates a rule in a custom chain failed validation.
type RuleDefinitionError struct {
	// RuleID is the identifier of the invalid rule, or its chain position
	// when the identifier itself is missing.
	RuleID string

	// Errors lists every problem found with the rule.
	Errors []string
}

// Error implements the error interface.
func (e *RuleDefinitionError) Error() string {
	return fmt.Sprintf("invalid rule %q: %s", e.RuleID, strings.Join(e.Errors, "; "))
}
