package intake

import (
	"context"
	"errors"

	"bastion-hq/palisade/pkg/allocation"
	"bastion-hq/palisade/pkg/intake/types"
)

// HandleError converts error types raised during request handling to the
// wire error envelope. It maps parsing errors, selection validation errors,
// and internal errors to appropriate HTTP status codes and error formats.
//
// Example usage:
//
//	if err != nil {
//	    errResp := HandleError(err)
//	    _ = WriteErrorResponse(w, errResp)
//	    return
//	}
func HandleError(err error) *types.ErrorResponse {
	// Parsing and size-limit errors carry their own code and param.
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.ToErrorResponse()
	}

	// A malformed selection is a client error naming the offending field.
	var selErr *allocation.InvalidSelectionError
	if errors.As(err, &selErr) {
		return types.NewInvalidRequestError(selErr.Error(), selErr.Field, types.CodeInvalidValue)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return types.NewGatewayTimeoutError(
			"Request timeout: the request took too long to complete",
		)
	}

	// Default to internal server error for unknown errors.
	return types.NewServerError(
		"An internal error occurred. Please try again later.",
	)
}
