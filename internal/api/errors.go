package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/yatube/yatube/internal/models"
)

// Transport-level failures raised before a request reaches the services.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrRateLimited     = errors.New("rate limit exceeded")
)

// Application JSON-RPC error codes
const (
	CodeServerError         = -32000
	CodeNotFound            = -32001
	CodePermissionDenied    = -32002
	CodeInvalidOperation    = -32003
	CodeConstraintViolation = -32004
	CodeUnauthenticated     = -32005
	CodeRateLimited         = -32006
)

// Error represents an API error
type Error struct {
	Code    int
	Message string
}

// NewError creates a new API error
func NewError(code int, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("API error %d: %s", e.Code, e.Message)
}

// invalidParams reports a request the handler could not decode.
func invalidParams(err error) *Error {
	return NewError(ErrInvalidParams, err.Error())
}

type errorMapping struct {
	target error
	status int
	code   int
	msg    string
}

var errorMappings = []errorMapping{
	{models.ErrNotFound, http.StatusNotFound, CodeNotFound, "Not found"},
	{models.ErrPermissionDenied, http.StatusForbidden, CodePermissionDenied, "Permission denied"},
	{models.ErrInvalidOperation, http.StatusBadRequest, CodeInvalidOperation, "Invalid operation"},
	{models.ErrConstraintViolation, http.StatusConflict, CodeConstraintViolation, "Constraint violation"},
	{ErrUnauthenticated, http.StatusUnauthorized, CodeUnauthenticated, "Unauthenticated"},
	{ErrRateLimited, http.StatusTooManyRequests, CodeRateLimited, "Rate limited"},
}

// httpStatus maps an error onto an HTTP status code
func httpStatus(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Code == ErrInvalidParams {
		return http.StatusBadRequest
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status
		}
	}
	return http.StatusInternalServerError
}

// rpcError maps an error onto a JSON-RPC code and message
func rpcError(err error) (int, string) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Code, apiErr.Message
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.code, m.msg
		}
	}
	return CodeServerError, "Server error"
}
