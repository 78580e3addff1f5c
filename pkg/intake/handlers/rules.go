package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"bastion-hq/palisade/pkg/allocation"
	"bastion-hq/palisade/pkg/intake"
	"bastion-hq/palisade/pkg/intake/types"
)

// RuleLister exposes an evaluation chain in order. *allocation.ChainEvaluator
// satisfies it.
type RuleLister interface {
	Rules() []allocation.Rule
}

// RulesHandler handles GET /api/v1/rules, returning the evaluation chain in
// priority order so clients can see which rule will claim a given
// selection without submitting one.
type RulesHandler struct {
	lister RuleLister
	logger *slog.Logger
}

// NewRulesHandler creates the rule introspection handler.
func NewRulesHandler(lister RuleLister, logger *slog.Logger) *RulesHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RulesHandler{
		lister: lister,
		logger: logger,
	}
}

// ServeHTTP implements http.Handler.
func (h *RulesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		errResp := types.NewMethodNotAllowedError(
			fmt.Sprintf("Method %s not allowed. Use GET instead.", r.Method),
		)
		w.Header().Set("Allow", http.MethodGet)
		if err := intake.WriteErrorResponse(w, errResp); err != nil {
			h.logger.ErrorContext(r.Context(), "failed to write error response", "error", err)
		}
		return
	}

	resp := types.NewRulesResponse(h.lister.Rules())
	if err := intake.WriteJSONResponse(w, http.StatusOK, resp); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to write response", "error", err)
	}
}
