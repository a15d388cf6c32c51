// Package errors provides structured error handling for the auth service.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Authentication errors
	CodeUserNotFound  Code = "AUTH_USER_NOT_FOUND"
	CodeWrongPassword Code = "AUTH_WRONG_PASSWORD"
	CodeWrongSession  Code = "AUTH_WRONG_SESSION"

	// Store errors
	CodeStoreUnavailable Code = "STORE_UNAVAILABLE"
	CodeSessionDecode    Code = "SESSION_DECODE_FAILED"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	case CodeUserNotFound, CodeWrongPassword, CodeWrongSession:
		return codes.Unauthenticated
	case CodeStoreUnavailable, CodeSessionDecode:
		return codes.Internal
	default:
		return codes.Unknown
	}
}

// GetCode extracts the domain code from an error chain.
// Returns CodeUnknown when the error carries no domain code.
func GetCode(err error) Code {
	if err == nil {
		return CodeUnknown
	}
	var domainErr *Error
	if As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeUnknown
}
