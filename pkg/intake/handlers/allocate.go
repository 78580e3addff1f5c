package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"bastion-hq/palisade/pkg/fasttrack"
	"bastion-hq/palisade/pkg/intake"
	"bastion-hq/palisade/pkg/intake/middleware"
	"bastion-hq/palisade/pkg/intake/types"
	"bastion-hq/palisade/pkg/telemetry/logging"
	"bastion-hq/palisade/pkg/telemetry/metrics"
	"bastion-hq/palisade/pkg/telemetry/stats"
	"bastion-hq/palisade/pkg/telemetry/tracing"
)

// AllocateOptions collects the dependencies of the allocation endpoint.
// Gate is required; the telemetry fields may be nil, in which case the
// corresponding signal is simply not recorded.
type AllocateOptions struct {
	// Gate routes submissions to the fast-track baseline or the evaluator.
	Gate *fasttrack.Gate

	// Flags holds the startup feature flag state, passed by value so the
	// handler's routing behavior is fixed for the process lifetime.
	Flags fasttrack.Flags

	// Metrics receives allocation and routing counters.
	Metrics *metrics.Collector

	// Stats receives decision tallies for scheduled reports.
	Stats *stats.Reporter

	// Tracer opens a span per submission.
	Tracer *tracing.Tracer

	// Logger is the structured logger. Defaults to slog.Default().
	Logger *slog.Logger

	// MaxBodyBytes limits the request body size. Zero applies the
	// package default.
	MaxBodyBytes int64
}

// AllocateHandler handles POST /api/v1/allocations. Each request carries a
// classification selection; the response is the control allocation decision
// for it. Decisions are minted, returned, and logged, never stored.
type AllocateHandler struct {
	gate         *fasttrack.Gate
	flags        fasttrack.Flags
	metrics      *metrics.Collector
	stats        *stats.Reporter
	tracer       *tracing.Tracer
	logger       *slog.Logger
	maxBodyBytes int64
}

// ErrNilGate indicates the allocation handler was constructed without a
// routing gate.
var ErrNilGate = errors.New("gate is nil")

// NewAllocateHandler creates the allocation endpoint handler.
func NewAllocateHandler(opts AllocateOptions) (*AllocateHandler, error) {
	if opts.Gate == nil {
		return nil, ErrNilGate
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AllocateHandler{
		gate:         opts.Gate,
		flags:        opts.Flags,
		metrics:      opts.Metrics,
		stats:        opts.Stats,
		tracer:       opts.Tracer,
		logger:       logger,
		maxBodyBytes: opts.MaxBodyBytes,
	}, nil
}

// ServeHTTP implements http.Handler.
func (h *AllocateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	startTime := time.Now()

	if r.Method != http.MethodPost {
		errResp := types.NewMethodNotAllowedError(
			fmt.Sprintf("Method %s not allowed. Use POST instead.", r.Method),
		)
		w.Header().Set("Allow", http.MethodPost)
		if err := intake.WriteErrorResponse(w, errResp); err != nil {
			h.logger.ErrorContext(ctx, "failed to write error response", "error", err)
		}
		return
	}

	if h.tracer != nil {
		var allocSpan trace.Span
		ctx, allocSpan = h.tracer.Start(ctx, "palisade.intake.allocate")
		defer allocSpan.End()
	}
	// With no tracer this is a no-op span, so attribute calls stay safe.
	span := tracing.SpanFromContext(ctx)

	req, err := intake.ParseAllocationRequest(r, h.maxBodyBytes)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to parse request",
			"request_id", requestID,
			"error", err,
		)
		tracing.SetErrorAttributes(span, err, types.ErrorTypeInvalidRequest)
		h.writeError(ctx, w, intake.HandleError(err))
		return
	}

	ctx = logging.WithProgram(ctx, req.Program)
	tracing.SetSubmissionAttributes(span, requestID, req.Program, req.SystemScope)

	sel, err := req.Selection()
	if err != nil {
		h.recordInvalid()
		h.logger.WarnContext(ctx, "rejected invalid selection",
			"request_id", requestID,
			"system_scope", req.SystemScope,
			"error", err,
		)
		tracing.SetErrorAttributes(span, err, types.ErrorTypeInvalidRequest)
		h.writeError(ctx, w, intake.HandleError(err))
		return
	}

	decision, err := h.gate.Route(sel, req.Fields, h.flags)
	if err != nil {
		h.recordInvalid()
		h.logger.WarnContext(ctx, "gate rejected submission",
			"request_id", requestID,
			"error", err,
		)
		tracing.SetErrorAttributes(span, err, types.ErrorTypeInvalidRequest)
		h.writeError(ctx, w, intake.HandleError(err))
		return
	}

	elapsed := time.Since(startTime)
	decisionID := uuid.New().String()
	ctx = logging.WithDecisionID(ctx, decisionID)

	h.recordDecision(decision, elapsed)
	tracing.SetDecisionAttributes(span,
		decision.RuleID, string(decision.LOELevel), decision.ControlCount, decision.FastTracked)
	tracing.SetTemplateAttributes(span, decision.TemplateVersion)

	h.logger.InfoContext(ctx, "allocation decided",
		"request_id", requestID,
		"decision_id", decisionID,
		"program", req.Program,
		"rule_id", decision.RuleID,
		"control_count", decision.ControlCount,
		"loe_level", string(decision.LOELevel),
		"fast_tracked", decision.FastTracked,
		"evaluation_time_ms", elapsed.Milliseconds(),
	)

	resp := types.NewAllocationResponse(
		decisionID, decision.Result, decision.FastTracked, decision.TemplateVersion, elapsed)
	if err := intake.WriteJSONResponse(w, http.StatusOK, resp); err != nil {
		h.logger.ErrorContext(ctx, "failed to write response",
			"request_id", requestID,
			"error", err,
		)
	}
}

// writeError writes an error envelope, logging any encoding failure.
func (h *AllocateHandler) writeError(ctx context.Context, w http.ResponseWriter, errResp *types.ErrorResponse) {
	if err := intake.WriteErrorResponse(w, errResp); err != nil {
		h.logger.ErrorContext(ctx, "failed to write error response", "error", err)
	}
}

// recordInvalid bumps the rejection counters on every configured sink.
func (h *AllocateHandler) recordInvalid() {
	if h.metrics != nil {
		h.metrics.RecordInvalidSelection()
	}
	if h.stats != nil {
		h.stats.RecordInvalid()
	}
}

// recordDecision bumps the decision counters on every configured sink.
func (h *AllocateHandler) recordDecision(decision fasttrack.Decision, elapsed time.Duration) {
	if h.metrics != nil {
		h.metrics.RecordAllocation(decision.RuleID, string(decision.LOELevel), elapsed)
		outcome := metrics.OutcomeForwarded
		if decision.FastTracked {
			outcome = metrics.OutcomeBypassed
		}
		h.metrics.RecordFastTrackRouting(outcome)
	}
	if h.stats != nil {
		h.stats.RecordDecision(decision.RuleID, string(decision.LOELevel), decision.FastTracked)
	}
}
