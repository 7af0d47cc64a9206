// Package errors provides error types and handling for simples3 commands.
package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

// Error represents a failed command or SDK call with the bucket and key it touched.
type Error struct {
	// Op is the command or operation that failed (e.g. "CopyItem", "createBucketIfNotExists")
	Op string

	// Bucket is the S3 bucket name (if applicable)
	Bucket string

	// Key is the S3 object key as given by the caller (if applicable)
	Key string

	// Err is the underlying error
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	if e.Bucket != "" && e.Key != "" {
		return fmt.Sprintf("simples3.%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	}
	if e.Bucket != "" {
		return fmt.Sprintf("simples3.%s bucket %s: %v", e.Op, e.Bucket, e.Err)
	}
	if e.Key != "" {
		return fmt.Sprintf("simples3.%s object %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("simples3.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithBucket adds bucket context to an existing error.
func (e *Error) WithBucket(bucket string) *Error {
	e.Bucket = bucket
	return e
}

// WithKey adds object key context to an existing error.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// NewError creates a new Error with the given operation and underlying error.
func NewError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// NewBucketError creates a new Error with bucket context.
func NewBucketError(op, bucket string, err error) *Error {
	return &Error{
		Op:     op,
		Bucket: bucket,
		Err:    err,
	}
}

// NewObjectError creates a new Error with bucket and key context.
func NewObjectError(op, bucket, key string, err error) *Error {
	return &Error{
		Op:     op,
		Bucket: bucket,
		Key:    key,
		Err:    err,
	}
}

// Sentinel errors for command failures.
// These can be used with errors.Is() for error checking.
var (
	// ErrInvalidParams indicates that a command was called without its required params
	ErrInvalidParams = errors.New("simples3: invalid params")

	// ErrUnknownCommand indicates that no handler is registered under the requested name
	ErrUnknownCommand = errors.New("simples3: unknown command")

	// ErrCommandExists indicates that a handler with the same name is already registered
	ErrCommandExists = errors.New("simples3: command already registered")

	// ErrObjectNotFound indicates that the requested object does not exist
	ErrObjectNotFound = errors.New("simples3: object not found")

	// ErrBucketNotFound indicates that the requested bucket does not exist
	ErrBucketNotFound = errors.New("simples3: bucket not found")

	// ErrAccessDenied indicates that access to the resource is denied
	ErrAccessDenied = errors.New("simples3: access denied")

	// ErrInvalidInput indicates that a param value is present but unusable
	ErrInvalidInput = errors.New("simples3: invalid input")

	// ErrBucketAlreadyExists indicates that the bucket name is taken by another account
	ErrBucketAlreadyExists = errors.New("simples3: bucket already exists")

	// ErrBucketAlreadyOwned indicates that the bucket already exists and belongs to the caller
	ErrBucketAlreadyOwned = errors.New("simples3: bucket already owned by you")

	// ErrInvalidBucketName indicates that the bucket name is invalid
	ErrInvalidBucketName = errors.New("simples3: invalid bucket name")

	// ErrInvalidObjectKey indicates that the object key is invalid
	ErrInvalidObjectKey = errors.New("simples3: invalid object key")

	// ErrUnexpectedStatus indicates that a presigned link answered with a non-2xx status
	ErrUnexpectedStatus = errors.New("simples3: unexpected http status")

	// ErrBatchFailed indicates that at least one item of a batch failed
	ErrBatchFailed = errors.New("simples3: batch failed")
)

// FromAWS classifies an SDK error and wraps it with command context.
// The returned error matches both the sentinel for the service error code
// and the original SDK error. A nil err yields nil.
func FromAWS(op, bucket, key string, err error) error {
	if err == nil {
		return nil
	}

	sentinel := classify(key, err)
	if sentinel == nil {
		return NewObjectError(op, bucket, key, err)
	}
	return NewObjectError(op, bucket, key, fmt.Errorf("%w: %w", sentinel, err))
}

func classify(key string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey":
			return ErrObjectNotFound
		case "NoSuchBucket":
			return ErrBucketNotFound
		case "NotFound":
			// HEAD requests carry no body, so S3 only reports a bare NotFound.
			if key == "" {
				return ErrBucketNotFound
			}
			return ErrObjectNotFound
		case "AccessDenied", "Forbidden", "AllAccessDisabled":
			return ErrAccessDenied
		case "BucketAlreadyExists":
			return ErrBucketAlreadyExists
		case "BucketAlreadyOwnedByYou":
			return ErrBucketAlreadyOwned
		case "InvalidBucketName":
			return ErrInvalidBucketName
		case "KeyTooLongError":
			return ErrInvalidObjectKey
		}
	}

	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) {
		switch respErr.HTTPStatusCode() {
		case http.StatusNotFound:
			if key == "" {
				return ErrBucketNotFound
			}
			return ErrObjectNotFound
		case http.StatusForbidden:
			return ErrAccessDenied
		}
	}

	return nil
}

// IsObjectNotFound checks if an error indicates that an object was not found.
func IsObjectNotFound(err error) bool {
	return errors.Is(err, ErrObjectNotFound)
}

// IsBucketNotFound checks if an error indicates that a bucket was not found.
func IsBucketNotFound(err error) bool {
	return errors.Is(err, ErrBucketNotFound)
}

// IsBucketAlreadyOwned checks if an error indicates the bucket already belongs to the caller.
func IsBucketAlreadyOwned(err error) bool {
	return errors.Is(err, ErrBucketAlreadyOwned)
}

// IsAccessDenied checks if an error indicates access was denied.
func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrAccessDenied)
}

// IsInvalidParams checks if an error indicates missing or unusable command params.
func IsInvalidParams(err error) bool {
	return errors.Is(err, ErrInvalidParams) || errors.Is(err, ErrInvalidInput)
}
