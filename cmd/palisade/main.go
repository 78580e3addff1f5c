// Palisade is a security control allocation service for system intake.
//
// It evaluates data classification selections against an ordered rule
// chain to decide how many security controls a system must implement and
// at what level of effort it will be assessed, providing:
//   - First-match-wins rule chain evaluation (CUI, DFARS/export, public,
//     pilot, internal/external sensitivity tiers)
//   - Fast-track routing for pre-approved intake templates
//   - Git-backed template distribution with sync and rollback
//   - Prometheus metrics, scheduled decision stats, and OTLP tracing
//
// Usage:
//
//	# Start the intake server with default configuration
//	palisade run
//
//	# Start with custom configuration file
//	palisade run --config /path/to/config.yaml
//
//	# Decide an allocation from the command line
//	palisade evaluate --cui --scope internal
//
//	# Print the rule chain in evaluation order
//	palisade rules
//
//	# Validate configuration and template files
//	palisade validate
//
//	# Show version information
//	palisade version
//
// For complete documentation, see: https://github.com/bastion-hq/palisade
package main

func main() {
	Execute()
}
