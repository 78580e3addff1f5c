package fasttrack

import (
	"log/slog"
	"sync"

	"bastion-hq/palisade/pkg/allocation"
)

// Decision is the gate's routing outcome: an allocation result plus how it
// was produced.
type Decision struct {
	allocation.Result

	// FastTracked is true when the template baseline was returned without
	// invoking the evaluator.
	FastTracked bool `json:"fast_tracked"`

	// TemplateVersion is the version of the template that satisfied the
	// fast-track conditions. Empty for evaluated decisions.
	TemplateVersion string `json:"template_version,omitempty"`
}

// Gate routes submissions either to the fast-track template baseline or to
// the allocation evaluator. A Gate is safe for concurrent use; the template
// may be swapped at runtime while Route is being called.
type Gate struct {
	evaluator allocation.Evaluator
	logger    *slog.Logger

	mu       sync.RWMutex
	template *Template
}

// NewGate creates a gate in front of the given evaluator. The gate starts
// without a template, which disables the fast-track path until SetTemplate
// installs one.
func NewGate(evaluator allocation.Evaluator, logger *slog.Logger) (*Gate, error) {
	if evaluator == nil {
		return nil, ErrNilEvaluator
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{
		evaluator: evaluator,
		logger:    logger,
	}, nil
}

// SetTemplate validates and installs a template. On validation failure the
// previously installed template (if any) remains active and the error is
// returned.
func (g *Gate) SetTemplate(tpl *Template) error {
	if tpl == nil {
		g.mu.Lock()
		g.template = nil
		g.mu.Unlock()
		g.logger.Info("intake template removed, fast track disabled")
		return nil
	}

	if err := tpl.Validate(); err != nil {
		g.logger.Warn("rejected invalid intake template, keeping previous",
			"template", tpl.Name,
			"error", err)
		return err
	}

	g.mu.Lock()
	g.template = tpl
	g.mu.Unlock()

	g.logger.Info("intake template installed",
		"template", tpl.Name,
		"version", tpl.Version,
		"required_fields", len(tpl.RequiredFields))
	return nil
}

// Template returns the currently installed template, or nil.
func (g *Gate) Template() *Template {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.template
}

// HasTemplate reports whether a template is installed. Readiness checks use
// this when the deployment expects the fast-track path to be available.
func (g *Gate) HasTemplate() bool {
	return g.Template() != nil
}

// Eligible reports whether a selection may take the fast-track path at all.
// Any DFARS trigger disqualifies the selection regardless of flag state or
// template completeness.
func Eligible(sel allocation.ClassificationSelection) bool {
	return !sel.RequiresDFARS()
}

// Route produces a decision for the submission. The selection is validated
// first; a malformed selection is rejected before either path runs.
//
// The fast-track baseline is returned, without invoking the evaluator, only
// when the flag is enabled, the selection is eligible, a template is
// installed, and every required field has a value. In every other case the
// submission is forwarded to the evaluator.
func (g *Gate) Route(sel allocation.ClassificationSelection, fields map[string]string, flags Flags) (Decision, error) {
	if err := sel.Validate(); err != nil {
		return Decision{}, err
	}

	if flags.FastTrackEnabled && Eligible(sel) {
		g.mu.RLock()
		tpl := g.template
		g.mu.RUnlock()

		switch {
		case tpl == nil:
			g.logger.Debug("fast track unavailable, no template installed")
		case !tpl.Satisfied(fields):
			g.logger.Debug("fast track declined, incomplete submission",
				"template", tpl.Name,
				"missing_fields", tpl.MissingFields(fields))
		default:
			g.logger.Debug("fast track baseline applied",
				"template", tpl.Name,
				"version", tpl.Version)
			return Decision{
				Result:          tpl.Baseline(),
				FastTracked:     true,
				TemplateVersion: tpl.Version,
			}, nil
		}
	}

	result, err := g.evaluator.Evaluate(sel)
	if err != nil {
		return Decision{}, err
	}
	return Decision{Result: result}, nil
}
