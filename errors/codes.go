package errors

import (
	"context"
	"errors"
	"net/http"
)

// ErrorCode is a transport-neutral classification of a command failure.
// Codes are string-based for debuggability and natural JSON serialization.
type ErrorCode string

const (
	// CodeNotFound indicates a requested bucket or object does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeAlreadyExists indicates a bucket already exists and cannot be created again.
	CodeAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// CodeForbidden indicates the credentials lack permission for the operation.
	CodeForbidden ErrorCode = "FORBIDDEN"

	// CodeInvalidInput indicates the provided params are missing or malformed.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeUnknownCommand indicates no handler is registered for the command.
	CodeUnknownCommand ErrorCode = "UNKNOWN_COMMAND"

	// CodeUpstream indicates a presigned link or the storage service answered unexpectedly.
	CodeUpstream ErrorCode = "UPSTREAM_ERROR"

	// CodeTimeout indicates an operation exceeded its time limit.
	CodeTimeout ErrorCode = "TIMEOUT"

	// CodeExecutionFailed indicates a command, or part of a batch, failed.
	CodeExecutionFailed ErrorCode = "EXECUTION_FAILED"

	// CodeInternal indicates an unclassified failure.
	CodeInternal ErrorCode = "INTERNAL_ERROR"
)

// CodeOf maps an error returned by a command to its ErrorCode.
// A nil error has no code and returns the empty string.
func CodeOf(err error) ErrorCode {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnknownCommand):
		return CodeUnknownCommand
	case errors.Is(err, ErrBatchFailed):
		// Item errors are joined under the batch failure; the batch outcome wins.
		return CodeExecutionFailed
	case errors.Is(err, ErrInvalidParams),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrInvalidBucketName),
		errors.Is(err, ErrInvalidObjectKey):
		return CodeInvalidInput
	case errors.Is(err, ErrObjectNotFound), errors.Is(err, ErrBucketNotFound):
		return CodeNotFound
	case errors.Is(err, ErrAccessDenied):
		return CodeForbidden
	case errors.Is(err, ErrBucketAlreadyExists), errors.Is(err, ErrCommandExists):
		return CodeAlreadyExists
	case errors.Is(err, ErrUnexpectedStatus):
		return CodeUpstream
	case errors.Is(err, context.DeadlineExceeded):
		return CodeTimeout
	default:
		return CodeInternal
	}
}

// HTTPStatus returns the HTTP status code used to report the given code.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case "":
		return http.StatusOK
	case CodeNotFound, CodeUnknownCommand:
		return http.StatusNotFound
	case CodeAlreadyExists:
		return http.StatusConflict
	case CodeForbidden:
		return http.StatusForbidden
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeUpstream:
		return http.StatusBadGateway
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
