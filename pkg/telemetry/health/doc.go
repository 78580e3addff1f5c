// Package health provides liveness and readiness probes for Palisade.
//
// # Overview
//
// The health package implements probe endpoints for Kubernetes and other
// orchestrators, plus a version information endpoint. Components register
// check functions with a Checker; readiness aggregates them.
//
// # Endpoints
//
//   - liveness (default /health): is the process running
//   - readiness (default /ready): can the service take intake traffic
//   - version (default /version): build identification
//
// # Usage
//
//	checker := health.New(5 * time.Second)
//
//	checker.RegisterCheck("template", func(ctx context.Context) error {
//	    if gate.Template() == nil {
//	        return errors.New("intake template not loaded")
//	    }
//	    return nil
//	})
//
//	mux := http.NewServeMux()
//	health.Mount(mux, &cfg.Telemetry.Health, checker, version, commit, buildTime)
//
// # Liveness vs Readiness
//
// Liveness answers 200 whenever the process is alive; orchestrators restart
// the pod when it fails. Readiness runs every registered component check
// concurrently and answers 503 when any component is unhealthy, so traffic
// is routed elsewhere until the component recovers. A service with a broken
// template source keeps serving liveness but fails readiness.
//
// # Component Checks
//
// Checks registered by the service:
//
//   - config: configuration loaded and valid
//   - template: intake template loaded (when the fast-track gate is enabled)
//
// # Example Responses
//
// Readiness while degraded:
//
//	{
//	    "status": "degraded",
//	    "checks": {
//	        "config": {"status": "ok", "duration_ms": 0.1},
//	        "template": {"status": "unhealthy", "message": "intake template not loaded"}
//	    },
//	    "timestamp": "2026-08-25T10:30:00Z"
//	}
package health
