package errors

import (
	"errors"
	"net/http"
)

// Errno values reported to clients alongside the HTTP status.
const (
	ErrnoInvalidParameter         = 107
	ErrnoInvalidToken             = 110
	ErrnoUnknownAuthorizationCode = 165
	ErrnoDisabledClientID         = 166
	ErrnoBackendServiceFailure    = 203
	ErrnoInternalValidationError  = 998
)

// AppError is a typed error that the transport layer can map to a response.
// Two AppErrors match under errors.Is when their errnos are equal, so the
// exported sentinels below can be used as kinds.
type AppError struct {
	Errno   int
	Status  int
	Code    string
	Message string
	Info    map[string]any
}

func (e *AppError) Error() string {
	return e.Message
}

// Is matches on errno so that wrapped instances compare equal to the sentinels.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Errno == e.Errno
}

// Error kinds
var (
	ErrInvalidParameter         = &AppError{Errno: ErrnoInvalidParameter, Status: http.StatusBadRequest, Code: "Bad Request", Message: "Invalid parameter in request body"}
	ErrInvalidToken             = &AppError{Errno: ErrnoInvalidToken, Status: http.StatusUnauthorized, Code: "Unauthorized", Message: "Invalid authentication token in request signature"}
	ErrUnknownAuthorizationCode = &AppError{Errno: ErrnoUnknownAuthorizationCode, Status: http.StatusBadRequest, Code: "Bad Request", Message: "Unknown authorization code"}
	ErrDisabledClient           = &AppError{Errno: ErrnoDisabledClientID, Status: http.StatusServiceUnavailable, Code: "Client Disabled", Message: "This client has been temporarily disabled"}
	ErrBackendServiceFailure    = &AppError{Errno: ErrnoBackendServiceFailure, Status: http.StatusInternalServerError, Code: "Internal Server Error", Message: "System unavailable, try again soon"}
	ErrInternalValidation       = &AppError{Errno: ErrnoInternalValidationError, Status: http.StatusInternalServerError, Code: "Internal Server Error", Message: "An internal validation check failed."}
)

// Sentinels for conditions that never reach the client as-is.
var (
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")
)

// InvalidParameter reports a request that failed schema validation.
func InvalidParameter(reasons ...string) *AppError {
	e := *ErrInvalidParameter
	if len(reasons) > 0 {
		e.Info = map[string]any{"validation": reasons}
	}
	return &e
}

// InvalidToken reports an unusable or missing authentication token.
func InvalidToken(reason string) *AppError {
	e := *ErrInvalidToken
	if reason != "" {
		e.Info = map[string]any{"reason": reason}
	}
	return &e
}

// UnknownAuthorizationCode reports a code or grant that no longer maps to a live session.
func UnknownAuthorizationCode() *AppError {
	e := *ErrUnknownAuthorizationCode
	return &e
}

// DisabledClientID reports a request from an administratively disabled client.
func DisabledClientID(clientID string) *AppError {
	e := *ErrDisabledClient
	e.Info = map[string]any{"clientId": clientID}
	return &e
}

// InternalValidationError reports a broken contract between layers.
func InternalValidationError(op string) *AppError {
	e := *ErrInternalValidation
	e.Info = map[string]any{"op": op}
	return &e
}

// BackendServiceFailure reports an upstream error that carried no usable errno.
func BackendServiceFailure(service string, status int) *AppError {
	e := *ErrBackendServiceFailure
	e.Info = map[string]any{"service": service, "status": status}
	return &e
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// AsAppError returns the first AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
