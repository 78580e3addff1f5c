// Package fasttrack implements the pre-approved intake path in front of the
// allocation engine.
//
// Deployments that opt in (via the FastTrackEnabled feature flag) may route
// eligible submissions straight to a fixed template baseline of 20 controls
// at LOE A, skipping rule evaluation entirely. A submission is fast-tracked
// only when all three conditions hold:
//
//   - the feature flag is enabled for this process
//   - the selection carries no DFARS trigger (CUI, CDI, ITAR, EAR, EAR99+)
//   - every required field of the deployment's intake template has a value
//
// If any condition fails the gate forwards the submission to the evaluator,
// so disabling the flag (or removing the template) transparently restores
// full rule evaluation.
//
// The feature flag is read once at startup and passed to Route as an
// immutable Flags value; nothing in this package mutates or caches flag
// state. The template, by contrast, is deployment configuration and may be
// hot-reloaded through SetTemplate; an invalid replacement is rejected and
// the previous template stays active.
package fasttrack
