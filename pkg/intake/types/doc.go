// Package types defines request and response types for the intake API.
//
// This package contains all data transfer objects (DTOs) used for HTTP
// request/response handling on the allocation endpoints. Wire types are
// kept separate from the domain types in pkg/allocation: handlers decode
// into an AllocationRequest, convert it to a domain selection with
// Selection, and encode the outcome back through AllocationResponse.
//
// # Core Types
//
// Request types:
//   - AllocationRequest: Main request body for /api/v1/allocations
//
// Response types:
//   - AllocationResponse: Decision outcome with control count, LOE level,
//     rationale and timing
//   - RulesResponse: Ordered listing of the evaluation rule chain
//   - RuleInfo: A single rule entry in a RulesResponse
//
// Error types:
//   - ErrorResponse: JSON error envelope
//   - ErrorDetail: Error details with type, message, param, code
//
// # JSON Serialization
//
// All types use standard encoding/json for serialization with appropriate
// struct tags. Field names follow snake_case convention on the wire.
//
// # Conversion
//
// AllocationRequest.Selection translates the wire representation into an
// allocation.ClassificationSelection, rejecting unknown system scope
// values before any rule evaluation takes place. Error responses carry
// machine-readable type and code constants so clients can branch without
// parsing messages.
package types
