package errors

import (
	stderrors "errors"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/status"
)

// Domain is the error domain reported in gRPC error details.
const Domain = "github.com/ebarkhatov/gatehouse"

// Error is the domain error type with structured metadata.
type Error struct {
	Code     Code              // Machine-readable error code
	Message  string            // Message surfaced to the caller and logs
	Metadata map[string]string // Additional context
	Cause    error             // Wrapped underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// As delegates to the standard library errors.As.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Is delegates to the standard library errors.Is.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// ToGRPCStatus converts the error to a gRPC status with errdetails.
// The status message is the wire-visible reason text; the ErrorInfo detail
// carries the machine-readable code for callers that inspect details.
func (e *Error) ToGRPCStatus() error {
	grpcCode := e.Code.GRPCCode()
	st := status.New(grpcCode, e.Message)

	detailed, err := st.WithDetails(
		&errdetails.ErrorInfo{
			Reason:   string(e.Code),
			Domain:   Domain,
			Metadata: e.Metadata,
		},
	)
	if err != nil {
		// If details cannot be attached, the basic status still carries
		// the correct code and reason text.
		return st.Err()
	}
	return detailed.Err()
}

// HandleError converts a domain error chain to a gRPC status error.
// Errors without a domain code map to codes.Unknown.
func HandleError(err error) error {
	if err == nil {
		return nil
	}
	var domainErr *Error
	if As(err, &domainErr) {
		return domainErr.ToGRPCStatus()
	}
	return status.Error(CodeUnknown.GRPCCode(), err.Error())
}
