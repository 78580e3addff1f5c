package fasttrack

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNilEvaluator indicates a gate was constructed without an evaluator.
var ErrNilEvaluator = errors.New("evaluator cannot be nil")

// InvalidTemplateError reports every problem found while validating an
// intake template. Invalid templates are never installed; the gate keeps
// whatever template was active before.
type InvalidTemplateError struct {
	// Name is the template name, when one was parsed.
	Name string

	// Errors lists all validation failures.
	Errors []string
}

// Error implements the error interface.
func (e *InvalidTemplateError) Error() string {
	name := e.Name
	if name == "" {
		name = "(unnamed)"
	}
	return fmt.Sprintf("invalid template %s: %s", name, strings.Join(e.Errors, "; "))
}

// IsInvalidTemplate reports whether err is (or wraps) an
// InvalidTemplateError.
func IsInvalidTemplate(err error) bool {
	var ite *InvalidTemplateError
	return errors.As(err, &ite)
}
