package api

import (
	"errors"
	"fmt"
	"strings"
)

// CodeOTPExpired is the backend error code for an expired OTP token.
const CodeOTPExpired = "ERROR_011"

// Common API errors.
var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("resource not found")
	ErrRateLimited       = errors.New("rate limited")
	ErrServerError       = errors.New("server error")
	ErrBadRequest        = errors.New("bad request")
	ErrOTPExpired        = errors.New("otp token expired")
	ErrTransport         = errors.New("network error")
	ErrMalformedResponse = errors.New("malformed response")
)

// APIError represents an error response from the attendance API.
type APIError struct {
	StatusCode int
	Codes      []string
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "API error %d", e.StatusCode)
	if code := e.Code(); code != "" {
		fmt.Fprintf(&b, " [%s]", code)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	return b.String()
}

// Code returns the first backend error code, which is authoritative.
func (e *APIError) Code() string {
	if len(e.Codes) == 0 {
		return ""
	}
	return e.Codes[0]
}

// Is implements error matching for APIError.
func (e *APIError) Is(target error) bool {
	if e.Code() == CodeOTPExpired && target == ErrOTPExpired {
		return true
	}

	switch e.StatusCode {
	case 400:
		return target == ErrBadRequest
	case 401:
		return target == ErrUnauthorized
	case 403:
		return target == ErrForbidden
	case 404:
		return target == ErrNotFound
	case 429:
		return target == ErrRateLimited
	}
	if e.StatusCode >= 500 {
		return target == ErrServerError
	}
	return false
}

// NewAPIError creates an APIError from an HTTP status code and backend codes.
func NewAPIError(statusCode int, message string, codes ...string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Codes:      codes,
		Message:    message,
	}
}

// ErrorCode returns the backend error code carried by err, if any.
func ErrorCode(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code()
	}
	return ""
}
