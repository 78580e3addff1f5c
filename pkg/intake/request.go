package intake

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"bastion-hq/palisade/pkg/intake/types"
)

const (
	// DefaultMaxBodyBytes is the default request body size limit (1MB).
	// Allocation submissions are small; anything near this limit is
	// malformed or hostile.
	DefaultMaxBodyBytes = 1 * 1024 * 1024
)

// ParseAllocationRequest parses an HTTP request body into an
// AllocationRequest. It enforces the size limit and validates the JSON
// format. Field-level validation (scope parsing) happens later, when the
// request is converted to a domain selection.
//
// Example usage:
//
//	req, err := ParseAllocationRequest(r, maxBytes)
//	if err != nil {
//	    errResp := HandleError(err)
//	    _ = WriteErrorResponse(w, errResp)
//	    return
//	}
func ParseAllocationRequest(r *http.Request, maxBytes int64) (*types.AllocationRequest, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}

	// Read one byte past the limit so an exactly-limit-sized body is
	// distinguishable from an oversized one.
	limitedReader := io.LimitReader(r.Body, maxBytes+1)

	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}

	if int64(len(body)) > maxBytes {
		return nil, &RequestError{
			Message: fmt.Sprintf("request body exceeds maximum size of %d bytes", maxBytes),
			Code:    types.CodeRequestTooLarge,
			Param:   "body",
		}
	}

	if len(body) == 0 {
		return nil, &RequestError{
			Message: "request body is empty",
			Code:    types.CodeInvalidJSON,
			Param:   "body",
		}
	}

	var req types.AllocationRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, &RequestError{
			Message: fmt.Sprintf("invalid JSON: %v", err),
			Code:    types.CodeInvalidJSON,
			Param:   "body",
		}
	}

	return &req, nil
}

// RequestError represents a request parsing or validation error.
type RequestError struct {
	Message string
	Code    string
	Param   string
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	return e.Message
}

// ToErrorResponse converts a RequestError to a client error response.
func (e *RequestError) ToErrorResponse() *types.ErrorResponse {
	return types.NewInvalidRequestError(e.Message, e.Param, e.Code)
}
